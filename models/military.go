package models

import "gorm.io/datatypes"

// MilitaryBranch is one service of a country's armed forces.
type MilitaryBranch struct {
	Base
	CountryID             string              `gorm:"size:36;not null;index" json:"country_id"`
	Name                  string              `gorm:"size:255;not null" json:"name"`
	BranchType            BranchType          `gorm:"size:50;not null" json:"branch_type"`
	PersonnelActive       *int64              `json:"personnel_active"`
	PersonnelReserve      *int64              `json:"personnel_reserve"`
	PersonnelParamilitary *int64              `json:"personnel_paramilitary"`
	BudgetUSD             *float64            `gorm:"column:budget_usd" json:"budget_usd"`
	Equipment             []MilitaryEquipment `gorm:"foreignKey:BranchID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"equipment,omitempty"`
}

func (MilitaryBranch) TableName() string {
	return "military_branches"
}

// MilitaryEquipment is an inventory line held by a branch.
type MilitaryEquipment struct {
	Base
	BranchID              string            `gorm:"size:36;not null;index" json:"branch_id"`
	Category              EquipmentCategory `gorm:"size:50;not null;index" json:"category"`
	Name                  string            `gorm:"size:255;not null" json:"name"`
	Model                 *string           `gorm:"size:255" json:"model"`
	Quantity              int64             `gorm:"not null" json:"quantity"`
	OperationalPercentage *float64          `json:"operational_percentage"`
	YearIntroduced        *int              `json:"year_introduced"`
	CountryOfOrigin       *string           `gorm:"size:100" json:"country_of_origin"`
	Specifications        datatypes.JSON    `json:"specifications"`
	ConfidenceRating      *float64          `json:"confidence_rating"`
	Source                *string           `gorm:"size:500" json:"source"`
}

func (MilitaryEquipment) TableName() string {
	return "military_equipment"
}
