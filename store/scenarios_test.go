package store

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/andrewpaige1/apex-defense-api/apperr"
	"github.com/andrewpaige1/apex-defense-api/models"
)

type scenarioFixture struct {
	db        *gorm.DB
	owner     *models.User
	project   *models.Project
	scenarios *ScenarioStore
}

func newScenarioFixture(t *testing.T) scenarioFixture {
	t.Helper()
	db := newTestDB(t)
	owner := newTestUser(t, db, "auth|planner")
	project, err := NewProjectStore(db).Create(context.Background(), owner.ID, ProjectInput{Name: "Taiwan Strait"})
	require.NoError(t, err)
	return scenarioFixture{db: db, owner: owner, project: project, scenarios: NewScenarioStore(db)}
}

func (f scenarioFixture) create(t *testing.T, in ScenarioInput) *models.Scenario {
	t.Helper()
	s, err := f.scenarios.Create(context.Background(), f.owner.ID, f.project.ID, in)
	require.NoError(t, err)
	return s
}

func TestScenarioCreateDefaults(t *testing.T) {
	f := newScenarioFixture(t)
	s := f.create(t, ScenarioInput{Name: "Blockade"})

	assert.Equal(t, models.ScenarioConventional, s.ScenarioType)
	assert.Equal(t, models.ScenarioDraft, s.Status)
	assert.Equal(t, 1, s.Version)
	assert.Nil(t, s.ParentScenarioID)
	assert.Equal(t, f.owner.ID, s.CreatorID)
	assert.JSONEq(t, `[]`, string(s.Participants))
	assert.JSONEq(t, `{}`, string(s.Forces))
	assert.JSONEq(t, `{}`, string(s.Results))
}

func TestScenarioCreateValidation(t *testing.T) {
	f := newScenarioFixture(t)
	ctx := context.Background()

	cases := []ScenarioInput{
		{Name: ""},
		{Name: "x", ScenarioType: "naval"},
		{Name: "x", CenterLat: ptr(91.0)},
		{Name: "x", BoundsEast: ptr(-181.0)},
		{Name: "x", Participants: json.RawMessage(`{"a":1}`)},
		{Name: "x", Forces: json.RawMessage(`[1]`)},
	}
	for _, in := range cases {
		_, err := f.scenarios.Create(ctx, f.owner.ID, f.project.ID, in)
		assert.Equal(t, apperr.Validation, apperr.CodeOf(err), "%+v", in)
	}
}

func TestScenarioRequiresOwnedProject(t *testing.T) {
	f := newScenarioFixture(t)
	ctx := context.Background()
	stranger := newTestUser(t, f.db, "auth|stranger")
	s := f.create(t, ScenarioInput{Name: "Blockade"})

	_, err := f.scenarios.Create(ctx, stranger.ID, f.project.ID, ScenarioInput{Name: "Intrusion"})
	assert.Equal(t, apperr.NotFound, apperr.CodeOf(err))

	_, err = f.scenarios.Get(ctx, stranger.ID, f.project.ID, s.ID)
	assert.Equal(t, apperr.NotFound, apperr.CodeOf(err))

	_, err = f.scenarios.Branch(ctx, stranger.ID, f.project.ID, s.ID, "Stolen")
	assert.Equal(t, apperr.NotFound, apperr.CodeOf(err))

	_, err = f.scenarios.List(ctx, stranger.ID, f.project.ID, Page{Limit: DefaultLimit})
	assert.Equal(t, apperr.NotFound, apperr.CodeOf(err))

	_, err = f.scenarios.Get(ctx, f.owner.ID, f.project.ID, "missing")
	assert.Equal(t, apperr.NotFound, apperr.CodeOf(err))
	assert.Equal(t, "Scenario not found", apperr.MessageOf(err))
}

func TestScenarioUpdate(t *testing.T) {
	f := newScenarioFixture(t)
	ctx := context.Background()
	s := f.create(t, ScenarioInput{Name: "Blockade", Description: ptr("Phase one")})

	var p ScenarioPatch
	require.NoError(t, json.Unmarshal([]byte(`{"status":"completed","results":{"winner":"blue"},"objectives":["hold"]}`), &p))
	updated, err := f.scenarios.Update(ctx, f.owner.ID, f.project.ID, s.ID, p)
	require.NoError(t, err)

	assert.Equal(t, models.ScenarioCompleted, updated.Status)
	assert.Equal(t, "Blockade", updated.Name)
	require.NotNil(t, updated.Description)
	assert.Equal(t, "Phase one", *updated.Description)
	assert.JSONEq(t, `{"winner":"blue"}`, string(updated.Results))
	assert.JSONEq(t, `["hold"]`, string(updated.Objectives))

	// Status moves freely between known values.
	require.NoError(t, json.Unmarshal([]byte(`{"status":"draft"}`), &p))
	updated, err = f.scenarios.Update(ctx, f.owner.ID, f.project.ID, s.ID, ScenarioPatch{Status: p.Status})
	require.NoError(t, err)
	assert.Equal(t, models.ScenarioDraft, updated.Status)

	var bad ScenarioPatch
	require.NoError(t, json.Unmarshal([]byte(`{"status":"exploded"}`), &bad))
	_, err = f.scenarios.Update(ctx, f.owner.ID, f.project.ID, s.ID, bad)
	assert.Equal(t, apperr.Validation, apperr.CodeOf(err))
}

func TestScenarioBranchCopiesParent(t *testing.T) {
	f := newScenarioFixture(t)
	ctx := context.Background()
	parent := f.create(t, ScenarioInput{
		Name:             "Baseline",
		Description:      ptr("Opening moves"),
		ScenarioType:     "hybrid",
		BoundsNorth:      ptr(26.0),
		BoundsSouth:      ptr(21.0),
		BoundsEast:       ptr(123.0),
		BoundsWest:       ptr(118.0),
		CenterLat:        ptr(23.7),
		CenterLng:        ptr(120.9),
		ZoomLevel:        ptr(6),
		Participants:     json.RawMessage(`[{"iso":"TWN"},{"iso":"CHN"}]`),
		Forces:           json.RawMessage(`{"blue":{"ships":12}}`),
		Objectives:       json.RawMessage(`["deter"]`),
		SimulationConfig: json.RawMessage(`{"ticks":100}`),
	})
	var p ScenarioPatch
	require.NoError(t, json.Unmarshal([]byte(`{"status":"completed","results":{"outcome":"stalemate"}}`), &p))
	_, err := f.scenarios.Update(ctx, f.owner.ID, f.project.ID, parent.ID, p)
	require.NoError(t, err)

	before, err := f.scenarios.Get(ctx, f.owner.ID, f.project.ID, parent.ID)
	require.NoError(t, err)

	child, err := f.scenarios.Branch(ctx, f.owner.ID, f.project.ID, parent.ID, "Escalation")
	require.NoError(t, err)

	assert.NotEqual(t, parent.ID, child.ID)
	assert.Equal(t, "Escalation", child.Name)
	assert.Equal(t, before.Version+1, child.Version)
	require.NotNil(t, child.ParentScenarioID)
	assert.Equal(t, parent.ID, *child.ParentScenarioID)
	assert.Equal(t, models.ScenarioDraft, child.Status)
	assert.JSONEq(t, `{}`, string(child.Results))

	ignored := cmpopts.IgnoreFields(models.Scenario{},
		"Base", "Name", "CreatorID", "Status", "Results", "Version", "ParentScenarioID", "ParentScenario", "Creator")
	if diff := cmp.Diff(before, child, ignored); diff != "" {
		t.Errorf("branch differs from parent (-parent +branch):\n%s", diff)
	}

	after, err := f.scenarios.Get(ctx, f.owner.ID, f.project.ID, parent.ID)
	require.NoError(t, err)
	if diff := cmp.Diff(before, after); diff != "" {
		t.Errorf("parent changed by branching (-before +after):\n%s", diff)
	}

	grandchild, err := f.scenarios.Branch(ctx, f.owner.ID, f.project.ID, child.ID, "Escalation II")
	require.NoError(t, err)
	assert.Equal(t, before.Version+2, grandchild.Version)
}

func TestScenarioBranchRejectsBlankName(t *testing.T) {
	f := newScenarioFixture(t)
	s := f.create(t, ScenarioInput{Name: "Baseline"})

	_, err := f.scenarios.Branch(context.Background(), f.owner.ID, f.project.ID, s.ID, "")
	assert.Equal(t, apperr.Validation, apperr.CodeOf(err))
}

func TestScenarioLineageAndParentDelete(t *testing.T) {
	f := newScenarioFixture(t)
	ctx := context.Background()

	root := f.create(t, ScenarioInput{Name: "Root"})
	middle, err := f.scenarios.Branch(ctx, f.owner.ID, f.project.ID, root.ID, "Middle")
	require.NoError(t, err)
	leaf, err := f.scenarios.Branch(ctx, f.owner.ID, f.project.ID, middle.ID, "Leaf")
	require.NoError(t, err)

	chain, err := f.scenarios.Lineage(ctx, f.owner.ID, f.project.ID, leaf.ID)
	require.NoError(t, err)
	ids := make([]string, len(chain))
	for i, s := range chain {
		ids[i] = s.ID
	}
	assert.Equal(t, []string{leaf.ID, middle.ID, root.ID}, ids)

	require.NoError(t, f.scenarios.Delete(ctx, f.owner.ID, f.project.ID, middle.ID))

	orphan, err := f.scenarios.Get(ctx, f.owner.ID, f.project.ID, leaf.ID)
	require.NoError(t, err)
	assert.Nil(t, orphan.ParentScenarioID)

	chain, err = f.scenarios.Lineage(ctx, f.owner.ID, f.project.ID, leaf.ID)
	require.NoError(t, err)
	assert.Len(t, chain, 1)

	_, err = f.scenarios.Get(ctx, f.owner.ID, f.project.ID, middle.ID)
	assert.Equal(t, apperr.NotFound, apperr.CodeOf(err))
	assert.Equal(t, apperr.NotFound, apperr.CodeOf(f.scenarios.Delete(ctx, f.owner.ID, f.project.ID, middle.ID)))
}

func TestScenarioLineageStopsOnCycle(t *testing.T) {
	f := newScenarioFixture(t)
	ctx := context.Background()

	a := f.create(t, ScenarioInput{Name: "Alpha"})
	b, err := f.scenarios.Branch(ctx, f.owner.ID, f.project.ID, a.ID, "Bravo")
	require.NoError(t, err)
	require.NoError(t, f.db.Model(&models.Scenario{}).Where("id = ?", a.ID).Update("parent_scenario_id", b.ID).Error)

	chain, err := f.scenarios.Lineage(ctx, f.owner.ID, f.project.ID, b.ID)
	require.NoError(t, err)
	ids := make([]string, len(chain))
	for i, s := range chain {
		ids[i] = s.ID
	}
	assert.Equal(t, []string{b.ID, a.ID}, ids)

	self := f.create(t, ScenarioInput{Name: "Loop"})
	require.NoError(t, f.db.Model(&models.Scenario{}).Where("id = ?", self.ID).Update("parent_scenario_id", self.ID).Error)
	chain, err = f.scenarios.Lineage(ctx, f.owner.ID, f.project.ID, self.ID)
	require.NoError(t, err)
	assert.Len(t, chain, 1)
}

func TestScenarioListPaging(t *testing.T) {
	f := newScenarioFixture(t)
	ctx := context.Background()
	for _, name := range []string{"One", "Two", "Three"} {
		f.create(t, ScenarioInput{Name: name})
	}

	all, err := f.scenarios.List(ctx, f.owner.ID, f.project.ID, Page{Limit: DefaultLimit})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	page, err := f.scenarios.List(ctx, f.owner.ID, f.project.ID, Page{Skip: 2, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, page, 1)

	_, err = f.scenarios.List(ctx, f.owner.ID, f.project.ID, Page{Limit: MaxLimit + 1})
	assert.Equal(t, apperr.Validation, apperr.CodeOf(err))
}
