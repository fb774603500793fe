package store

import (
	"context"
	"encoding/json"
	"errors"

	"gorm.io/gorm"

	"github.com/andrewpaige1/apex-defense-api/apperr"
	"github.com/andrewpaige1/apex-defense-api/models"
	"github.com/andrewpaige1/apex-defense-api/patch"
)

// ScenarioStore reaches scenarios only through a project the caller owns.
type ScenarioStore struct {
	db *gorm.DB
}

func NewScenarioStore(db *gorm.DB) *ScenarioStore {
	return &ScenarioStore{db: db}
}

type ScenarioInput struct {
	Name             string          `json:"name"`
	Description      *string         `json:"description"`
	ScenarioType     string          `json:"scenario_type"`
	BoundsNorth      *float64        `json:"bounds_north"`
	BoundsSouth      *float64        `json:"bounds_south"`
	BoundsEast       *float64        `json:"bounds_east"`
	BoundsWest       *float64        `json:"bounds_west"`
	CenterLat        *float64        `json:"center_lat"`
	CenterLng        *float64        `json:"center_lng"`
	ZoomLevel        *int            `json:"zoom_level"`
	Participants     json.RawMessage `json:"participants"`
	Forces           json.RawMessage `json:"forces"`
	Objectives       json.RawMessage `json:"objectives"`
	Timeline         json.RawMessage `json:"timeline"`
	MapLayers        json.RawMessage `json:"map_layers"`
	Annotations      json.RawMessage `json:"annotations"`
	SimulationConfig json.RawMessage `json:"simulation_config"`
}

type ScenarioPatch struct {
	Name             patch.Field[string]          `json:"name"`
	Description      patch.Field[string]          `json:"description"`
	ScenarioType     patch.Field[string]          `json:"scenario_type"`
	Status           patch.Field[string]          `json:"status"`
	BoundsNorth      patch.Field[float64]         `json:"bounds_north"`
	BoundsSouth      patch.Field[float64]         `json:"bounds_south"`
	BoundsEast       patch.Field[float64]         `json:"bounds_east"`
	BoundsWest       patch.Field[float64]         `json:"bounds_west"`
	CenterLat        patch.Field[float64]         `json:"center_lat"`
	CenterLng        patch.Field[float64]         `json:"center_lng"`
	ZoomLevel        patch.Field[int]             `json:"zoom_level"`
	Participants     patch.Field[json.RawMessage] `json:"participants"`
	Forces           patch.Field[json.RawMessage] `json:"forces"`
	Objectives       patch.Field[json.RawMessage] `json:"objectives"`
	Timeline         patch.Field[json.RawMessage] `json:"timeline"`
	MapLayers        patch.Field[json.RawMessage] `json:"map_layers"`
	Annotations      patch.Field[json.RawMessage] `json:"annotations"`
	SimulationConfig patch.Field[json.RawMessage] `json:"simulation_config"`
	Results          patch.Field[json.RawMessage] `json:"results"`
}

func checkBounds(north, south, east, west, lat, lng *float64) error {
	return firstErr(
		checkRange("bounds_north", north, -90, 90),
		checkRange("bounds_south", south, -90, 90),
		checkRange("bounds_east", east, -180, 180),
		checkRange("bounds_west", west, -180, 180),
		checkRange("center_lat", lat, -90, 90),
		checkRange("center_lng", lng, -180, 180),
	)
}

func (in ScenarioInput) validate() error {
	if in.ScenarioType != "" && !models.ScenarioType(in.ScenarioType).Valid() {
		return apperr.Newf(apperr.Validation, "scenario_type %q is not a known scenario type", in.ScenarioType)
	}
	return firstErr(
		checkName("name", in.Name),
		checkBounds(in.BoundsNorth, in.BoundsSouth, in.BoundsEast, in.BoundsWest, in.CenterLat, in.CenterLng),
		checkNonNegative("zoom_level", in.ZoomLevel),
	)
}

func (p ScenarioPatch) validate() error {
	if p.Name.Present() {
		if err := checkName("name", p.Name.Value); err != nil {
			return err
		}
	}
	if p.ScenarioType.Present() && !models.ScenarioType(p.ScenarioType.Value).Valid() {
		return apperr.Newf(apperr.Validation, "scenario_type %q is not a known scenario type", p.ScenarioType.Value)
	}
	if p.Status.Present() && !models.ScenarioStatus(p.Status.Value).Valid() {
		return apperr.Newf(apperr.Validation, "status %q is not a known scenario status", p.Status.Value)
	}
	return firstErr(
		notNull("name", p.Name),
		notNull("scenario_type", p.ScenarioType),
		notNull("status", p.Status),
		checkBounds(p.BoundsNorth.Ptr(), p.BoundsSouth.Ptr(), p.BoundsEast.Ptr(), p.BoundsWest.Ptr(), p.CenterLat.Ptr(), p.CenterLng.Ptr()),
		checkNonNegative("zoom_level", p.ZoomLevel.Ptr()),
	)
}

func ownedScenario(tx *gorm.DB, ownerID, projectID, scenarioID string) (*models.Scenario, error) {
	if _, err := ownedProject(tx, ownerID, projectID); err != nil {
		return nil, err
	}
	var scenario models.Scenario
	if err := tx.Where("id = ? AND project_id = ?", scenarioID, projectID).First(&scenario).Error; err != nil {
		return nil, lookupErr(err, "Scenario")
	}
	return &scenario, nil
}

func (s *ScenarioStore) List(ctx context.Context, ownerID, projectID string, page Page) ([]models.Scenario, error) {
	if err := page.Validate(); err != nil {
		return nil, err
	}
	var scenarios []models.Scenario
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := ownedProject(tx, ownerID, projectID); err != nil {
			return err
		}
		return tx.Where("project_id = ?", projectID).Scopes(byRecent, page.scope).Find(&scenarios).Error
	})
	if err != nil {
		return nil, lookupErr(err, "Project")
	}
	return scenarios, nil
}

func (s *ScenarioStore) Get(ctx context.Context, ownerID, projectID, scenarioID string) (*models.Scenario, error) {
	var scenario *models.Scenario
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		scenario, err = ownedScenario(tx, ownerID, projectID, scenarioID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return scenario, nil
}

// Create adds a scenario authored by the caller to one of the caller's projects.
func (s *ScenarioStore) Create(ctx context.Context, ownerID, projectID string, in ScenarioInput) (*models.Scenario, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	scenario := models.Scenario{
		ProjectID:    projectID,
		CreatorID:    ownerID,
		Name:         in.Name,
		Description:  in.Description,
		ScenarioType: models.ScenarioType(in.ScenarioType),
		BoundsNorth:  in.BoundsNorth,
		BoundsSouth:  in.BoundsSouth,
		BoundsEast:   in.BoundsEast,
		BoundsWest:   in.BoundsWest,
		CenterLat:    in.CenterLat,
		CenterLng:    in.CenterLng,
		ZoomLevel:    in.ZoomLevel,
	}
	docs := []struct {
		name string
		raw  json.RawMessage
		dst  *[]byte
		list bool
	}{
		{"participants", in.Participants, (*[]byte)(&scenario.Participants), true},
		{"forces", in.Forces, (*[]byte)(&scenario.Forces), false},
		{"objectives", in.Objectives, (*[]byte)(&scenario.Objectives), true},
		{"timeline", in.Timeline, (*[]byte)(&scenario.Timeline), true},
		{"map_layers", in.MapLayers, (*[]byte)(&scenario.MapLayers), true},
		{"annotations", in.Annotations, (*[]byte)(&scenario.Annotations), true},
		{"simulation_config", in.SimulationConfig, (*[]byte)(&scenario.SimulationConfig), false},
	}
	for _, d := range docs {
		doc, err := decodeDoc(d.name, d.raw, d.list)
		if err != nil {
			return nil, err
		}
		*d.dst = doc
	}
	scenario.FillDefaults()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := ownedProject(tx, ownerID, projectID); err != nil {
			return err
		}
		return tx.Create(&scenario).Error
	})
	if err != nil {
		return nil, writeErr(err, "create scenario", "Scenario already exists")
	}
	return &scenario, nil
}

func decodeDoc(field string, raw json.RawMessage, list bool) ([]byte, error) {
	if list {
		doc, err := models.ListDoc(raw)
		if err != nil {
			return nil, apperr.Wrap(apperr.Validation, field+" must be a JSON array", err)
		}
		return doc, nil
	}
	doc, err := models.ObjectDoc(raw)
	if err != nil {
		return nil, apperr.Wrap(apperr.Validation, field+" must be a JSON object", err)
	}
	return doc, nil
}

// Update merges the supplied fields. Status accepts any known value from any
// other; no transition order is enforced.
func (s *ScenarioStore) Update(ctx context.Context, ownerID, projectID, scenarioID string, p ScenarioPatch) (*models.Scenario, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}

	var scenario *models.Scenario
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if scenario, err = ownedScenario(tx, ownerID, projectID, scenarioID); err != nil {
			return err
		}

		p.Name.Apply(&scenario.Name)
		p.Description.ApplyPtr(&scenario.Description)
		if p.ScenarioType.Present() {
			scenario.ScenarioType = models.ScenarioType(p.ScenarioType.Value)
		}
		if p.Status.Present() {
			scenario.Status = models.ScenarioStatus(p.Status.Value)
		}
		p.BoundsNorth.ApplyPtr(&scenario.BoundsNorth)
		p.BoundsSouth.ApplyPtr(&scenario.BoundsSouth)
		p.BoundsEast.ApplyPtr(&scenario.BoundsEast)
		p.BoundsWest.ApplyPtr(&scenario.BoundsWest)
		p.CenterLat.ApplyPtr(&scenario.CenterLat)
		p.CenterLng.ApplyPtr(&scenario.CenterLng)
		p.ZoomLevel.ApplyPtr(&scenario.ZoomLevel)

		docs := []struct {
			name string
			f    patch.Field[json.RawMessage]
			dst  *[]byte
			list bool
		}{
			{"participants", p.Participants, (*[]byte)(&scenario.Participants), true},
			{"forces", p.Forces, (*[]byte)(&scenario.Forces), false},
			{"objectives", p.Objectives, (*[]byte)(&scenario.Objectives), true},
			{"timeline", p.Timeline, (*[]byte)(&scenario.Timeline), true},
			{"map_layers", p.MapLayers, (*[]byte)(&scenario.MapLayers), true},
			{"annotations", p.Annotations, (*[]byte)(&scenario.Annotations), true},
			{"simulation_config", p.SimulationConfig, (*[]byte)(&scenario.SimulationConfig), false},
			{"results", p.Results, (*[]byte)(&scenario.Results), false},
		}
		for _, d := range docs {
			if !d.f.Set {
				continue
			}
			doc, err := decodeDoc(d.name, d.f.Value, d.list)
			if err != nil {
				return err
			}
			*d.dst = doc
		}

		return tx.Save(scenario).Error
	})
	if err != nil {
		return nil, writeErr(err, "update scenario", "Scenario already exists")
	}
	return scenario, nil
}

// Delete removes one scenario. Scenarios branched from it keep existing with
// their parent reference cleared by the foreign key.
func (s *ScenarioStore) Delete(ctx context.Context, ownerID, projectID, scenarioID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		scenario, err := ownedScenario(tx, ownerID, projectID, scenarioID)
		if err != nil {
			return err
		}
		if err := tx.Delete(scenario).Error; err != nil {
			return apperr.Wrap(apperr.Internal, "delete scenario", err)
		}
		return nil
	})
}

// Branch copies a scenario into a new row of the same project. The copy gets a
// fresh id, the caller as creator, the given name, the parent's version plus
// one and a back-reference to the parent. Status resets to draft and results
// are not carried over. The parent row is never written.
func (s *ScenarioStore) Branch(ctx context.Context, callerID, projectID, scenarioID, newName string) (*models.Scenario, error) {
	if err := checkName("new_name", newName); err != nil {
		return nil, err
	}

	var child models.Scenario
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		parent, err := ownedScenario(tx, callerID, projectID, scenarioID)
		if err != nil {
			return err
		}

		child = branchOf(parent, callerID, newName)
		return tx.Create(&child).Error
	})
	if err != nil {
		return nil, writeErr(err, "branch scenario", "Scenario already exists")
	}
	return &child, nil
}

func branchOf(parent *models.Scenario, creatorID, name string) models.Scenario {
	parentID := parent.ID
	child := models.Scenario{
		ProjectID:        parent.ProjectID,
		CreatorID:        creatorID,
		Name:             name,
		Description:      clonePtr(parent.Description),
		ScenarioType:     parent.ScenarioType,
		Status:           models.ScenarioDraft,
		BoundsNorth:      clonePtr(parent.BoundsNorth),
		BoundsSouth:      clonePtr(parent.BoundsSouth),
		BoundsEast:       clonePtr(parent.BoundsEast),
		BoundsWest:       clonePtr(parent.BoundsWest),
		CenterLat:        clonePtr(parent.CenterLat),
		CenterLng:        clonePtr(parent.CenterLng),
		ZoomLevel:        clonePtr(parent.ZoomLevel),
		Participants:     models.CloneDoc(parent.Participants),
		Forces:           models.CloneDoc(parent.Forces),
		Objectives:       models.CloneDoc(parent.Objectives),
		Timeline:         models.CloneDoc(parent.Timeline),
		MapLayers:        models.CloneDoc(parent.MapLayers),
		Annotations:      models.CloneDoc(parent.Annotations),
		SimulationConfig: models.CloneDoc(parent.SimulationConfig),
		Version:          parent.Version + 1,
		ParentScenarioID: &parentID,
	}
	child.FillDefaults()
	return child
}

// Lineage returns the scenario followed by each ancestor up to the root,
// resolving one parent reference at a time.
func (s *ScenarioStore) Lineage(ctx context.Context, ownerID, projectID, scenarioID string) ([]models.Scenario, error) {
	var chain []models.Scenario
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := ownedScenario(tx, ownerID, projectID, scenarioID)
		if err != nil {
			return err
		}

		visited := map[string]bool{}
		for current != nil && !visited[current.ID] {
			visited[current.ID] = true
			chain = append(chain, *current)
			if current.ParentScenarioID == nil {
				break
			}

			var parent models.Scenario
			err := tx.Where("id = ? AND project_id = ?", *current.ParentScenarioID, projectID).First(&parent).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				break
			}
			if err != nil {
				return err
			}
			current = &parent
		}
		return nil
	})
	if err != nil {
		return nil, lookupErr(err, "Scenario")
	}
	return chain, nil
}
