package models

import "gorm.io/datatypes"

// Project groups the scenarios a single user works on.
type Project struct {
	Base
	OwnerID        string         `gorm:"size:36;not null;index" json:"owner_id"`
	Owner          *User          `gorm:"foreignKey:OwnerID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Name           string         `gorm:"size:255;not null" json:"name"`
	Description    *string        `gorm:"type:text" json:"description"`
	Status         ProjectStatus  `gorm:"size:50;not null;index" json:"status"`
	Classification string         `gorm:"size:50;not null" json:"classification"`
	RegionFocus    *string        `gorm:"size:100" json:"region_focus"`
	Tags           datatypes.JSON `json:"tags"`
	Settings       datatypes.JSON `json:"settings"`
	Scenarios      []Scenario     `gorm:"foreignKey:ProjectID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"scenarios,omitempty"`
}

func (Project) TableName() string {
	return "projects"
}

const DefaultClassification = "unclassified"
