// Package seed loads the reference order of battle shipped with the binary.
package seed

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/andrewpaige1/apex-defense-api/apperr"
	"github.com/andrewpaige1/apex-defense-api/store"
)

//go:embed data.yaml
var data []byte

type Dataset struct {
	Countries []Country `yaml:"countries"`
}

type Country struct {
	Name             string   `yaml:"name"`
	ISOCode          string   `yaml:"iso_code"`
	ISOCode2         string   `yaml:"iso_code_2"`
	Region           *string  `yaml:"region"`
	Subregion        *string  `yaml:"subregion"`
	Capital          *string  `yaml:"capital"`
	Population       *int64   `yaml:"population"`
	AreaSqKm         *float64 `yaml:"area_sq_km"`
	GDPUSD           *float64 `yaml:"gdp_usd"`
	DefenseBudgetUSD *float64 `yaml:"defense_budget_usd"`
	Lat              *float64 `yaml:"lat"`
	Lng              *float64 `yaml:"lng"`
	Branches         []Branch `yaml:"branches"`
}

type Branch struct {
	Name             string      `yaml:"name"`
	BranchType       string      `yaml:"branch_type"`
	PersonnelActive  *int64      `yaml:"personnel_active"`
	PersonnelReserve *int64      `yaml:"personnel_reserve"`
	Equipment        []Equipment `yaml:"equipment"`
}

type Equipment struct {
	Category              string   `yaml:"category"`
	Name                  string   `yaml:"name"`
	Model                 *string  `yaml:"model"`
	Quantity              int64    `yaml:"quantity"`
	OperationalPercentage *float64 `yaml:"operational_percentage"`
	YearIntroduced        *int     `yaml:"year_introduced"`
	CountryOfOrigin       *string  `yaml:"country_of_origin"`
}

// Report counts what a Load call wrote.
type Report struct {
	Countries int
	Branches  int
	Equipment int
	Skipped   int
}

// Parse decodes a dataset, rejecting keys it does not know.
func Parse(raw []byte) (*Dataset, error) {
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	var ds Dataset
	if err := dec.Decode(&ds); err != nil {
		return nil, fmt.Errorf("failed to parse seed data: %w", err)
	}
	return &ds, nil
}

// Default returns the embedded dataset.
func Default() (*Dataset, error) {
	return Parse(data)
}

// Load writes every country whose iso_code is not stored yet, together with
// its branches and equipment. Each country is written in its own transaction,
// so a rerun picks up where a failed one stopped.
func Load(ctx context.Context, db *gorm.DB, ds *Dataset, log *zap.Logger) (Report, error) {
	var report Report
	quiet := db.Session(&gorm.Session{Logger: logger.Default.LogMode(logger.Silent)})
	existing := store.NewCountryStore(quiet)

	for _, c := range ds.Countries {
		_, err := existing.GetByISO(ctx, c.ISOCode)
		if err == nil {
			report.Skipped++
			continue
		}
		if !errors.Is(err, apperr.ErrNotFound) {
			return report, err
		}

		var branches, equipment int
		err = quiet.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			countries := store.NewCountryStore(tx)
			country, err := countries.Create(ctx, c.input())
			if err != nil {
				return err
			}
			for _, b := range c.Branches {
				branch, err := countries.CreateBranch(ctx, country.ID, b.input())
				if err != nil {
					return fmt.Errorf("branch %q: %w", b.Name, err)
				}
				branches++
				for _, e := range b.Equipment {
					if _, err := countries.CreateEquipment(ctx, branch.ID, e.input()); err != nil {
						return fmt.Errorf("equipment %q: %w", e.Name, err)
					}
					equipment++
				}
			}
			return nil
		})
		if err != nil {
			return report, fmt.Errorf("seed %s: %w", c.ISOCode, err)
		}
		report.Countries++
		report.Branches += branches
		report.Equipment += equipment
	}

	log.Info("Load: seed data applied",
		zap.Int("countries", report.Countries),
		zap.Int("branches", report.Branches),
		zap.Int("equipment", report.Equipment),
		zap.Int("skipped", report.Skipped))
	return report, nil
}

func (c Country) input() store.CountryInput {
	return store.CountryInput{
		Name:             c.Name,
		ISOCode:          c.ISOCode,
		ISOCode2:         c.ISOCode2,
		Region:           c.Region,
		Subregion:        c.Subregion,
		Capital:          c.Capital,
		Population:       c.Population,
		AreaSqKm:         c.AreaSqKm,
		GDPUSD:           c.GDPUSD,
		DefenseBudgetUSD: c.DefenseBudgetUSD,
		Lat:              c.Lat,
		Lng:              c.Lng,
	}
}

func (b Branch) input() store.BranchInput {
	return store.BranchInput{
		Name:             b.Name,
		BranchType:       b.BranchType,
		PersonnelActive:  b.PersonnelActive,
		PersonnelReserve: b.PersonnelReserve,
	}
}

func (e Equipment) input() store.EquipmentInput {
	return store.EquipmentInput{
		Category:              e.Category,
		Name:                  e.Name,
		Model:                 e.Model,
		Quantity:              e.Quantity,
		OperationalPercentage: e.OperationalPercentage,
		YearIntroduced:        e.YearIntroduced,
		CountryOfOrigin:       e.CountryOfOrigin,
	}
}
