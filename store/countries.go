package store

import (
	"context"
	"encoding/json"
	"strings"

	"gorm.io/gorm"

	"github.com/andrewpaige1/apex-defense-api/apperr"
	"github.com/andrewpaige1/apex-defense-api/models"
	"github.com/andrewpaige1/apex-defense-api/patch"
)

// CountryStore is the shared reference registry of countries, branches and equipment.
type CountryStore struct {
	db *gorm.DB
}

func NewCountryStore(db *gorm.DB) *CountryStore {
	return &CountryStore{db: db}
}

type CountryFilter struct {
	Region string
	Search string
	Page
}

type CountryInput struct {
	Name             string          `json:"name"`
	ISOCode          string          `json:"iso_code"`
	ISOCode2         string          `json:"iso_code_2"`
	Region           *string         `json:"region"`
	Subregion        *string         `json:"subregion"`
	Capital          *string         `json:"capital"`
	Population       *int64          `json:"population"`
	AreaSqKm         *float64        `json:"area_sq_km"`
	GDPUSD           *float64        `json:"gdp_usd"`
	DefenseBudgetUSD *float64        `json:"defense_budget_usd"`
	Lat              *float64        `json:"lat"`
	Lng              *float64        `json:"lng"`
	FlagURL          *string         `json:"flag_url"`
	Metadata         json.RawMessage `json:"metadata"`
}

func (in CountryInput) validate() error {
	return firstErr(
		checkName("name", in.Name),
		checkLetters("iso_code", in.ISOCode, 3),
		checkLetters("iso_code_2", in.ISOCode2, 2),
		checkNonNegative("population", in.Population),
		checkNonNegative("area_sq_km", in.AreaSqKm),
		checkNonNegative("gdp_usd", in.GDPUSD),
		checkNonNegative("defense_budget_usd", in.DefenseBudgetUSD),
		checkRange("lat", in.Lat, -90, 90),
		checkRange("lng", in.Lng, -180, 180),
	)
}

// CountryPatch carries only the fields a caller sent.
type CountryPatch struct {
	Name             patch.Field[string]          `json:"name"`
	Region           patch.Field[string]          `json:"region"`
	Subregion        patch.Field[string]          `json:"subregion"`
	Capital          patch.Field[string]          `json:"capital"`
	Population       patch.Field[int64]           `json:"population"`
	AreaSqKm         patch.Field[float64]         `json:"area_sq_km"`
	GDPUSD           patch.Field[float64]         `json:"gdp_usd"`
	DefenseBudgetUSD patch.Field[float64]         `json:"defense_budget_usd"`
	Lat              patch.Field[float64]         `json:"lat"`
	Lng              patch.Field[float64]         `json:"lng"`
	FlagURL          patch.Field[string]          `json:"flag_url"`
	Metadata         patch.Field[json.RawMessage] `json:"metadata"`
}

func (p CountryPatch) validate() error {
	var nameErr error
	if p.Name.Present() {
		nameErr = checkName("name", p.Name.Value)
	}
	return firstErr(
		notNull("name", p.Name),
		nameErr,
		checkNonNegative("population", p.Population.Ptr()),
		checkNonNegative("area_sq_km", p.AreaSqKm.Ptr()),
		checkNonNegative("gdp_usd", p.GDPUSD.Ptr()),
		checkNonNegative("defense_budget_usd", p.DefenseBudgetUSD.Ptr()),
		checkRange("lat", p.Lat.Ptr(), -90, 90),
		checkRange("lng", p.Lng.Ptr(), -180, 180),
	)
}

type BranchInput struct {
	Name                  string   `json:"name"`
	BranchType            string   `json:"branch_type"`
	PersonnelActive       *int64   `json:"personnel_active"`
	PersonnelReserve      *int64   `json:"personnel_reserve"`
	PersonnelParamilitary *int64   `json:"personnel_paramilitary"`
	BudgetUSD             *float64 `json:"budget_usd"`
}

func (in BranchInput) validate() error {
	if !models.BranchType(in.BranchType).Valid() {
		return apperr.Newf(apperr.Validation, "branch_type %q is not a known branch type", in.BranchType)
	}
	return firstErr(
		checkName("name", in.Name),
		checkNonNegative("personnel_active", in.PersonnelActive),
		checkNonNegative("personnel_reserve", in.PersonnelReserve),
		checkNonNegative("personnel_paramilitary", in.PersonnelParamilitary),
		checkNonNegative("budget_usd", in.BudgetUSD),
	)
}

type EquipmentInput struct {
	Category              string          `json:"category"`
	Name                  string          `json:"name"`
	Model                 *string         `json:"model"`
	Quantity              int64           `json:"quantity"`
	OperationalPercentage *float64        `json:"operational_percentage"`
	YearIntroduced        *int            `json:"year_introduced"`
	CountryOfOrigin       *string         `json:"country_of_origin"`
	Specifications        json.RawMessage `json:"specifications"`
	ConfidenceRating      *float64        `json:"confidence_rating"`
	Source                *string         `json:"source"`
}

func (in EquipmentInput) validate() error {
	if !models.EquipmentCategory(in.Category).Valid() {
		return apperr.Newf(apperr.Validation, "category %q is not a known equipment category", in.Category)
	}
	return firstErr(
		checkName("name", in.Name),
		checkNonNegative("quantity", &in.Quantity),
		checkFraction("operational_percentage", in.OperationalPercentage),
		checkFraction("confidence_rating", in.ConfidenceRating),
	)
}

// List returns countries ordered by name. Search matches name or iso_code case-insensitively.
func (s *CountryStore) List(ctx context.Context, f CountryFilter) ([]models.Country, error) {
	if err := f.Page.Validate(); err != nil {
		return nil, err
	}

	q := s.db.WithContext(ctx).Model(&models.Country{})
	if f.Region != "" {
		q = q.Where("region = ?", f.Region)
	}
	if search := strings.TrimSpace(f.Search); search != "" {
		pattern := "%" + escapeLike(strings.ToLower(search)) + "%"
		q = q.Where(`(LOWER(name) LIKE ? ESCAPE '\' OR LOWER(iso_code) LIKE ? ESCAPE '\')`, pattern, pattern)
	}

	var countries []models.Country
	if err := q.Scopes(byName, f.Page.scope).Find(&countries).Error; err != nil {
		return nil, apperr.Wrap(apperr.Internal, "list countries", err)
	}
	return countries, nil
}

func (s *CountryStore) withForces(db *gorm.DB) *gorm.DB {
	return db.Preload("Branches", byName).Preload("Branches.Equipment", byName)
}

// Get loads a country with its branches and their equipment.
func (s *CountryStore) Get(ctx context.Context, id string) (*models.Country, error) {
	var country models.Country
	if err := s.withForces(s.db.WithContext(ctx)).First(&country, "id = ?", id).Error; err != nil {
		return nil, lookupErr(err, "Country")
	}
	return &country, nil
}

// GetByISO resolves a 3-letter code regardless of the caller's casing.
func (s *CountryStore) GetByISO(ctx context.Context, code string) (*models.Country, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	var country models.Country
	if err := s.withForces(s.db.WithContext(ctx)).First(&country, "iso_code = ?", code).Error; err != nil {
		return nil, lookupErr(err, "Country")
	}
	return &country, nil
}

func (s *CountryStore) Create(ctx context.Context, in CountryInput) (*models.Country, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	metadata, err := models.ObjectDoc(in.Metadata)
	if err != nil {
		return nil, apperr.Wrap(apperr.Validation, "metadata must be a JSON object", err)
	}

	country := models.Country{
		Name:             in.Name,
		ISOCode:          strings.ToUpper(in.ISOCode),
		ISOCode2:         strings.ToUpper(in.ISOCode2),
		Region:           in.Region,
		Subregion:        in.Subregion,
		Capital:          in.Capital,
		Population:       in.Population,
		AreaSqKm:         in.AreaSqKm,
		GDPUSD:           in.GDPUSD,
		DefenseBudgetUSD: in.DefenseBudgetUSD,
		Lat:              in.Lat,
		Lng:              in.Lng,
		FlagURL:          in.FlagURL,
		Metadata:         metadata,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&models.Country{}).Where("iso_code = ?", country.ISOCode).Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return apperr.New(apperr.Conflict, "Country with this ISO code already exists")
		}
		return tx.Create(&country).Error
	})
	if err != nil {
		return nil, writeErr(err, "create country", "Country with this name or ISO code already exists")
	}
	return &country, nil
}

// Update merges the supplied fields into the stored country.
func (s *CountryStore) Update(ctx context.Context, id string, p CountryPatch) (*models.Country, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}

	var country models.Country
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&country, "id = ?", id).Error; err != nil {
			return lookupErr(err, "Country")
		}

		p.Name.Apply(&country.Name)
		p.Region.ApplyPtr(&country.Region)
		p.Subregion.ApplyPtr(&country.Subregion)
		p.Capital.ApplyPtr(&country.Capital)
		p.Population.ApplyPtr(&country.Population)
		p.AreaSqKm.ApplyPtr(&country.AreaSqKm)
		p.GDPUSD.ApplyPtr(&country.GDPUSD)
		p.DefenseBudgetUSD.ApplyPtr(&country.DefenseBudgetUSD)
		p.Lat.ApplyPtr(&country.Lat)
		p.Lng.ApplyPtr(&country.Lng)
		p.FlagURL.ApplyPtr(&country.FlagURL)
		if p.Metadata.Set {
			doc, err := models.ObjectDoc(p.Metadata.Value)
			if err != nil {
				return apperr.Wrap(apperr.Validation, "metadata must be a JSON object", err)
			}
			country.Metadata = doc
		}

		return tx.Save(&country).Error
	})
	if err != nil {
		return nil, writeErr(err, "update country", "Country with this name already exists")
	}
	return &country, nil
}

// Delete removes a country. Branches and equipment go with it through the foreign keys.
func (s *CountryStore) Delete(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Delete(&models.Country{}, "id = ?", id)
	if res.Error != nil {
		return apperr.Wrap(apperr.Internal, "delete country", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.New(apperr.NotFound, "Country not found")
	}
	return nil
}

// ListBranches returns a country's branches with equipment, ordered by name.
func (s *CountryStore) ListBranches(ctx context.Context, countryID string) ([]models.MilitaryBranch, error) {
	var branches []models.MilitaryBranch
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var country models.Country
		if err := tx.Select("id").First(&country, "id = ?", countryID).Error; err != nil {
			return lookupErr(err, "Country")
		}
		return tx.Preload("Equipment", byName).Scopes(byName).
			Where("country_id = ?", countryID).Find(&branches).Error
	})
	if err != nil {
		return nil, lookupErr(err, "Country")
	}
	return branches, nil
}

func (s *CountryStore) CreateBranch(ctx context.Context, countryID string, in BranchInput) (*models.MilitaryBranch, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	branch := models.MilitaryBranch{
		CountryID:             countryID,
		Name:                  in.Name,
		BranchType:            models.BranchType(in.BranchType),
		PersonnelActive:       in.PersonnelActive,
		PersonnelReserve:      in.PersonnelReserve,
		PersonnelParamilitary: in.PersonnelParamilitary,
		BudgetUSD:             in.BudgetUSD,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var country models.Country
		if err := tx.Select("id").First(&country, "id = ?", countryID).Error; err != nil {
			return lookupErr(err, "Country")
		}
		return tx.Create(&branch).Error
	})
	if err != nil {
		return nil, writeErr(err, "create military branch", "Military branch already exists")
	}
	return &branch, nil
}

func (s *CountryStore) CreateEquipment(ctx context.Context, branchID string, in EquipmentInput) (*models.MilitaryEquipment, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	specs, err := models.ObjectDoc(in.Specifications)
	if err != nil {
		return nil, apperr.Wrap(apperr.Validation, "specifications must be a JSON object", err)
	}

	equipment := models.MilitaryEquipment{
		BranchID:              branchID,
		Category:              models.EquipmentCategory(in.Category),
		Name:                  in.Name,
		Model:                 in.Model,
		Quantity:              in.Quantity,
		OperationalPercentage: in.OperationalPercentage,
		YearIntroduced:        in.YearIntroduced,
		CountryOfOrigin:       in.CountryOfOrigin,
		Specifications:        specs,
		ConfidenceRating:      in.ConfidenceRating,
		Source:                in.Source,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var branch models.MilitaryBranch
		if err := tx.Select("id").First(&branch, "id = ?", branchID).Error; err != nil {
			return lookupErr(err, "Military branch")
		}
		return tx.Create(&equipment).Error
	})
	if err != nil {
		return nil, writeErr(err, "create equipment", "Equipment already exists")
	}
	return &equipment, nil
}
