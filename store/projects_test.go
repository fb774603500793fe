package store

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrewpaige1/apex-defense-api/apperr"
	"github.com/andrewpaige1/apex-defense-api/models"
)

func TestProjectCreateDefaults(t *testing.T) {
	db := newTestDB(t)
	owner := newTestUser(t, db, "auth|owner")
	projects := NewProjectStore(db)

	project, err := projects.Create(context.Background(), owner.ID, ProjectInput{Name: "Baltic Deterrence"})
	require.NoError(t, err)

	assert.NotEmpty(t, project.ID)
	assert.Equal(t, owner.ID, project.OwnerID)
	assert.Equal(t, models.ProjectDraft, project.Status)
	assert.Equal(t, models.DefaultClassification, project.Classification)
	assert.JSONEq(t, `[]`, string(project.Tags))
	assert.JSONEq(t, `{}`, string(project.Settings))
}

func TestProjectCreateRejectsBlankName(t *testing.T) {
	db := newTestDB(t)
	owner := newTestUser(t, db, "auth|owner")

	_, err := NewProjectStore(db).Create(context.Background(), owner.ID, ProjectInput{Name: "   "})
	assert.Equal(t, apperr.Validation, apperr.CodeOf(err))
}

func TestProjectsAreScopedToOwner(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	alice := newTestUser(t, db, "auth|alice")
	bob := newTestUser(t, db, "auth|bob")
	projects := NewProjectStore(db)

	project, err := projects.Create(ctx, alice.ID, ProjectInput{Name: "Pacific Watch"})
	require.NoError(t, err)

	_, err = projects.Get(ctx, bob.ID, project.ID)
	assert.Equal(t, apperr.NotFound, apperr.CodeOf(err))
	assert.Equal(t, "Project not found", apperr.MessageOf(err))

	var p ProjectPatch
	require.NoError(t, json.Unmarshal([]byte(`{"name":"Hijacked"}`), &p))
	_, err = projects.Update(ctx, bob.ID, project.ID, p)
	assert.Equal(t, apperr.NotFound, apperr.CodeOf(err))

	assert.Equal(t, apperr.NotFound, apperr.CodeOf(projects.Delete(ctx, bob.ID, project.ID)))

	listed, err := projects.List(ctx, bob.ID, ProjectFilter{Page: Page{Limit: DefaultLimit}})
	require.NoError(t, err)
	assert.Empty(t, listed)

	got, err := projects.Get(ctx, alice.ID, project.ID)
	require.NoError(t, err)
	assert.Equal(t, "Pacific Watch", got.Name)
}

func TestProjectUpdateOnlyTouchesSuppliedFields(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	owner := newTestUser(t, db, "auth|owner")
	projects := NewProjectStore(db)

	project, err := projects.Create(ctx, owner.ID, ProjectInput{
		Name:        "Sahel Stability",
		Description: ptr("Regional posture review"),
		Tags:        []string{"africa"},
	})
	require.NoError(t, err)

	var p ProjectPatch
	require.NoError(t, json.Unmarshal([]byte(`{"status":"active"}`), &p))
	updated, err := projects.Update(ctx, owner.ID, project.ID, p)
	require.NoError(t, err)

	assert.Equal(t, models.ProjectActive, updated.Status)
	assert.Equal(t, "Sahel Stability", updated.Name)
	require.NotNil(t, updated.Description)
	assert.Equal(t, "Regional posture review", *updated.Description)
	assert.JSONEq(t, `["africa"]`, string(updated.Tags))

	require.NoError(t, json.Unmarshal([]byte(`{"description":null}`), &p))
	updated, err = projects.Update(ctx, owner.ID, project.ID, p)
	require.NoError(t, err)
	assert.Nil(t, updated.Description)
}

func TestProjectUpdateValidation(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	owner := newTestUser(t, db, "auth|owner")
	projects := NewProjectStore(db)
	project, err := projects.Create(ctx, owner.ID, ProjectInput{Name: "Arctic"})
	require.NoError(t, err)

	for _, body := range []string{
		`{"status":"paused"}`,
		`{"name":null}`,
		`{"name":""}`,
		`{"settings":[1,2]}`,
	} {
		var p ProjectPatch
		require.NoError(t, json.Unmarshal([]byte(body), &p))
		_, err := projects.Update(ctx, owner.ID, project.ID, p)
		assert.Equal(t, apperr.Validation, apperr.CodeOf(err), body)
	}
}

func TestProjectListStatusFilter(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	owner := newTestUser(t, db, "auth|owner")
	projects := NewProjectStore(db)

	draft, err := projects.Create(ctx, owner.ID, ProjectInput{Name: "Draft"})
	require.NoError(t, err)
	active, err := projects.Create(ctx, owner.ID, ProjectInput{Name: "Active"})
	require.NoError(t, err)
	var p ProjectPatch
	require.NoError(t, json.Unmarshal([]byte(`{"status":"active"}`), &p))
	_, err = projects.Update(ctx, owner.ID, active.ID, p)
	require.NoError(t, err)

	got, err := projects.List(ctx, owner.ID, ProjectFilter{Status: "draft", Page: Page{Limit: DefaultLimit}})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, draft.ID, got[0].ID)

	_, err = projects.List(ctx, owner.ID, ProjectFilter{Status: "bogus", Page: Page{Limit: DefaultLimit}})
	assert.Equal(t, apperr.Validation, apperr.CodeOf(err))
}

func TestProjectDeleteRemovesScenarios(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	owner := newTestUser(t, db, "auth|owner")
	projects := NewProjectStore(db)
	scenarios := NewScenarioStore(db)

	project, err := projects.Create(ctx, owner.ID, ProjectInput{Name: "Red Sea"})
	require.NoError(t, err)
	_, err = scenarios.Create(ctx, owner.ID, project.ID, ScenarioInput{Name: "Convoy escort"})
	require.NoError(t, err)

	got, err := projects.Get(ctx, owner.ID, project.ID)
	require.NoError(t, err)
	assert.Len(t, got.Scenarios, 1)

	require.NoError(t, projects.Delete(ctx, owner.ID, project.ID))

	var count int64
	require.NoError(t, db.Model(&models.Scenario{}).Count(&count).Error)
	assert.Zero(t, count)
}
