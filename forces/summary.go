// Package forces derives order-of-battle summaries from the country registry.
package forces

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/andrewpaige1/apex-defense-api/apperr"
	"github.com/andrewpaige1/apex-defense-api/models"
)

var (
	aircraftCategories = []models.EquipmentCategory{
		models.CategoryAircraftFighter,
		models.CategoryAircraftAttack,
		models.CategoryAircraftTransport,
	}
	navalCategories = []models.EquipmentCategory{
		models.CategoryNavalCarriers,
		models.CategoryNavalDestroyers,
		models.CategoryNavalFrigates,
		models.CategoryNavalSubmarines,
		models.CategoryNavalPatrol,
	}
)

// Personnel holds branch headcounts summed across a country.
type Personnel struct {
	Active       int64
	Reserve      int64
	Paramilitary int64
}

// Summary is the force rollup for one country.
type Summary struct {
	TotalPersonnel        int64    `json:"total_personnel"`
	ActivePersonnel       int64    `json:"active_personnel"`
	ReservePersonnel      int64    `json:"reserve_personnel"`
	ParamilitaryPersonnel int64    `json:"paramilitary_personnel"`
	TotalTanks            int64    `json:"total_tanks"`
	TotalAircraft         int64    `json:"total_aircraft"`
	TotalNavalVessels     int64    `json:"total_naval_vessels"`
	DefenseBudgetUSD      *float64 `json:"defense_budget_usd"`

	// EquipmentByCategory only holds categories with at least one equipment row.
	EquipmentByCategory map[models.EquipmentCategory]int64 `json:"equipment_by_category"`
}

// Quantity returns the summed quantity for a category, zero when absent.
func (s Summary) Quantity(c models.EquipmentCategory) int64 {
	return s.EquipmentByCategory[c]
}

// Rollup combines personnel sums and per-category equipment sums.
func Rollup(p Personnel, byCategory map[models.EquipmentCategory]int64, budget *float64) Summary {
	if byCategory == nil {
		byCategory = map[models.EquipmentCategory]int64{}
	}
	s := Summary{
		TotalPersonnel:        p.Active + p.Reserve + p.Paramilitary,
		ActivePersonnel:       p.Active,
		ReservePersonnel:      p.Reserve,
		ParamilitaryPersonnel: p.Paramilitary,
		DefenseBudgetUSD:      budget,
		EquipmentByCategory:   byCategory,
	}
	s.TotalTanks = byCategory[models.CategoryTanks]
	for _, c := range aircraftCategories {
		s.TotalAircraft += byCategory[c]
	}
	for _, c := range navalCategories {
		s.TotalNavalVessels += byCategory[c]
	}
	return s
}

// Aggregator computes summaries with SQL aggregates.
type Aggregator struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewAggregator(db *gorm.DB, log *zap.Logger) *Aggregator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Aggregator{db: db, log: log}
}

const personnelColumns = "COALESCE(SUM(personnel_active), 0) AS active, " +
	"COALESCE(SUM(personnel_reserve), 0) AS reserve, " +
	"COALESCE(SUM(personnel_paramilitary), 0) AS paramilitary"

type categoryTotal struct {
	Category models.EquipmentCategory
	Total    int64
}

// Summarize returns the force summary of a country, or NotFound.
func (a *Aggregator) Summarize(ctx context.Context, countryID string) (*Summary, error) {
	var summary Summary
	err := a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var country models.Country
		err := tx.Select("id", "defense_budget_usd").First(&country, "id = ?", countryID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.New(apperr.NotFound, "Country not found")
		}
		if err != nil {
			return err
		}

		var p Personnel
		err = tx.Model(&models.MilitaryBranch{}).
			Select(personnelColumns).
			Where("country_id = ?", countryID).
			Scan(&p).Error
		if err != nil {
			return err
		}

		var totals []categoryTotal
		err = tx.Model(&models.MilitaryEquipment{}).
			Select("military_equipment.category AS category, COALESCE(SUM(military_equipment.quantity), 0) AS total").
			Joins("JOIN military_branches ON military_branches.id = military_equipment.branch_id").
			Where("military_branches.country_id = ?", countryID).
			Group("military_equipment.category").
			Scan(&totals).Error
		if err != nil {
			return err
		}

		byCategory := make(map[models.EquipmentCategory]int64, len(totals))
		for _, t := range totals {
			byCategory[t.Category] = t.Total
		}
		summary = Rollup(p, byCategory, country.DefenseBudgetUSD)
		return nil
	})
	if err != nil {
		var domainErr *apperr.Error
		if errors.As(err, &domainErr) {
			return nil, err
		}
		a.log.Error("Summarize: aggregate query failed", zap.String("country_id", countryID), zap.Error(err))
		return nil, apperr.Wrap(apperr.Internal, "summarize forces", err)
	}
	return &summary, nil
}
