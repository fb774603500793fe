package models

import "gorm.io/datatypes"

// Country is a reference record in the order-of-battle registry.
type Country struct {
	Base
	Name             string           `gorm:"size:255;uniqueIndex;not null" json:"name"`
	ISOCode          string           `gorm:"column:iso_code;size:3;uniqueIndex;not null" json:"iso_code"`
	ISOCode2         string           `gorm:"column:iso_code_2;size:2;uniqueIndex;not null" json:"iso_code_2"`
	Region           *string          `gorm:"size:100;index" json:"region"`
	Subregion        *string          `gorm:"size:100" json:"subregion"`
	Capital          *string          `gorm:"size:255" json:"capital"`
	Population       *int64           `json:"population"`
	AreaSqKm         *float64         `gorm:"column:area_sq_km" json:"area_sq_km"`
	GDPUSD           *float64         `gorm:"column:gdp_usd" json:"gdp_usd"`
	DefenseBudgetUSD *float64         `gorm:"column:defense_budget_usd" json:"defense_budget_usd"`
	Lat              *float64         `json:"lat"`
	Lng              *float64         `json:"lng"`
	FlagURL          *string          `gorm:"column:flag_url;size:500" json:"flag_url"`
	Metadata         datatypes.JSON   `gorm:"column:extra_data" json:"metadata"`
	Branches         []MilitaryBranch `gorm:"foreignKey:CountryID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"military_branches,omitempty"`
}

func (Country) TableName() string {
	return "countries"
}
