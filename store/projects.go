package store

import (
	"context"
	"encoding/json"

	"gorm.io/gorm"

	"github.com/andrewpaige1/apex-defense-api/apperr"
	"github.com/andrewpaige1/apex-defense-api/models"
	"github.com/andrewpaige1/apex-defense-api/patch"
)

// ProjectStore scopes every read and write to the owning user. A project that
// belongs to someone else is reported exactly like one that does not exist.
type ProjectStore struct {
	db *gorm.DB
}

func NewProjectStore(db *gorm.DB) *ProjectStore {
	return &ProjectStore{db: db}
}

type ProjectFilter struct {
	Status string
	Page
}

type ProjectInput struct {
	Name           string          `json:"name"`
	Description    *string         `json:"description"`
	Classification *string         `json:"classification"`
	RegionFocus    *string         `json:"region_focus"`
	Tags           []string        `json:"tags"`
	Settings       json.RawMessage `json:"settings"`
}

type ProjectPatch struct {
	Name           patch.Field[string]          `json:"name"`
	Description    patch.Field[string]          `json:"description"`
	Status         patch.Field[string]          `json:"status"`
	Classification patch.Field[string]          `json:"classification"`
	RegionFocus    patch.Field[string]          `json:"region_focus"`
	Tags           patch.Field[[]string]        `json:"tags"`
	Settings       patch.Field[json.RawMessage] `json:"settings"`
}

func (p ProjectPatch) validate() error {
	if p.Name.Present() {
		if err := checkName("name", p.Name.Value); err != nil {
			return err
		}
	}
	if p.Status.Present() && !models.ProjectStatus(p.Status.Value).Valid() {
		return apperr.Newf(apperr.Validation, "status %q is not a known project status", p.Status.Value)
	}
	return firstErr(
		notNull("name", p.Name),
		notNull("status", p.Status),
		notNull("classification", p.Classification),
	)
}

// ownedProject loads a project only if ownerID owns it.
func ownedProject(tx *gorm.DB, ownerID, projectID string) (*models.Project, error) {
	var project models.Project
	if err := tx.Where("id = ? AND owner_id = ?", projectID, ownerID).First(&project).Error; err != nil {
		return nil, lookupErr(err, "Project")
	}
	return &project, nil
}

func (s *ProjectStore) List(ctx context.Context, ownerID string, f ProjectFilter) ([]models.Project, error) {
	if err := f.Page.Validate(); err != nil {
		return nil, err
	}
	q := s.db.WithContext(ctx).Where("owner_id = ?", ownerID)
	if f.Status != "" {
		if !models.ProjectStatus(f.Status).Valid() {
			return nil, apperr.Newf(apperr.Validation, "status %q is not a known project status", f.Status)
		}
		q = q.Where("status = ?", f.Status)
	}

	var projects []models.Project
	if err := q.Scopes(byRecent, f.Page.scope).Find(&projects).Error; err != nil {
		return nil, apperr.Wrap(apperr.Internal, "list projects", err)
	}
	return projects, nil
}

// Get returns the project with its scenarios, most recently updated first.
func (s *ProjectStore) Get(ctx context.Context, ownerID, projectID string) (*models.Project, error) {
	var project models.Project
	err := s.db.WithContext(ctx).Preload("Scenarios", byRecent).
		Where("id = ? AND owner_id = ?", projectID, ownerID).First(&project).Error
	if err != nil {
		return nil, lookupErr(err, "Project")
	}
	return &project, nil
}

func (s *ProjectStore) Create(ctx context.Context, ownerID string, in ProjectInput) (*models.Project, error) {
	if err := checkName("name", in.Name); err != nil {
		return nil, err
	}
	settings, err := models.ObjectDoc(in.Settings)
	if err != nil {
		return nil, apperr.Wrap(apperr.Validation, "settings must be a JSON object", err)
	}

	project := models.Project{
		OwnerID:        ownerID,
		Name:           in.Name,
		Description:    in.Description,
		Status:         models.ProjectDraft,
		Classification: models.DefaultClassification,
		RegionFocus:    in.RegionFocus,
		Tags:           models.StringsDoc(in.Tags),
		Settings:       settings,
	}
	if in.Classification != nil {
		project.Classification = *in.Classification
	}

	if err := s.db.WithContext(ctx).Create(&project).Error; err != nil {
		return nil, writeErr(err, "create project", "Project already exists")
	}
	return &project, nil
}

// Update merges the supplied fields. Fields the caller left out keep their values.
func (s *ProjectStore) Update(ctx context.Context, ownerID, projectID string, p ProjectPatch) (*models.Project, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}

	var project *models.Project
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if project, err = ownedProject(tx, ownerID, projectID); err != nil {
			return err
		}

		p.Name.Apply(&project.Name)
		p.Description.ApplyPtr(&project.Description)
		if p.Status.Present() {
			project.Status = models.ProjectStatus(p.Status.Value)
		}
		p.Classification.Apply(&project.Classification)
		p.RegionFocus.ApplyPtr(&project.RegionFocus)
		if p.Tags.Set {
			project.Tags = models.StringsDoc(p.Tags.Value)
		}
		if p.Settings.Set {
			doc, err := models.ObjectDoc(p.Settings.Value)
			if err != nil {
				return apperr.Wrap(apperr.Validation, "settings must be a JSON object", err)
			}
			project.Settings = doc
		}

		return tx.Save(project).Error
	})
	if err != nil {
		return nil, writeErr(err, "update project", "Project already exists")
	}
	return project, nil
}

// Delete removes the project and, through the foreign key, its scenarios.
func (s *ProjectStore) Delete(ctx context.Context, ownerID, projectID string) error {
	res := s.db.WithContext(ctx).Where("id = ? AND owner_id = ?", projectID, ownerID).Delete(&models.Project{})
	if res.Error != nil {
		return apperr.Wrap(apperr.Internal, "delete project", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.New(apperr.NotFound, "Project not found")
	}
	return nil
}
