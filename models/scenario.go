package models

import "gorm.io/datatypes"

// Scenario is a conflict simulation inside a project. ParentScenarioID points
// back at the scenario it was branched from and is cleared if that row goes.
type Scenario struct {
	Base
	ProjectID    string         `gorm:"size:36;not null;index" json:"project_id"`
	CreatorID    string         `gorm:"size:36;not null;index" json:"creator_id"`
	Creator      *User          `gorm:"foreignKey:CreatorID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Name         string         `gorm:"size:255;not null" json:"name"`
	Description  *string        `gorm:"type:text" json:"description"`
	ScenarioType ScenarioType   `gorm:"size:50;not null" json:"scenario_type"`
	Status       ScenarioStatus `gorm:"size:50;not null" json:"status"`

	BoundsNorth *float64 `json:"bounds_north"`
	BoundsSouth *float64 `json:"bounds_south"`
	BoundsEast  *float64 `json:"bounds_east"`
	BoundsWest  *float64 `json:"bounds_west"`
	CenterLat   *float64 `json:"center_lat"`
	CenterLng   *float64 `json:"center_lng"`
	ZoomLevel   *int     `json:"zoom_level"`

	Participants     datatypes.JSON `json:"participants"`
	Forces           datatypes.JSON `json:"forces"`
	Objectives       datatypes.JSON `json:"objectives"`
	Timeline         datatypes.JSON `json:"timeline"`
	MapLayers        datatypes.JSON `json:"map_layers"`
	Annotations      datatypes.JSON `json:"annotations"`
	SimulationConfig datatypes.JSON `json:"simulation_config"`
	Results          datatypes.JSON `json:"results"`

	Version          int       `gorm:"not null" json:"version"`
	ParentScenarioID *string   `gorm:"size:36;index" json:"parent_scenario_id"`
	ParentScenario   *Scenario `gorm:"foreignKey:ParentScenarioID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"-"`
}

func (Scenario) TableName() string {
	return "scenarios"
}

// FillDefaults gives absent documents their empty shape.
func (s *Scenario) FillDefaults() {
	s.Participants = List(s.Participants)
	s.Forces = Object(s.Forces)
	s.Objectives = List(s.Objectives)
	s.Timeline = List(s.Timeline)
	s.MapLayers = List(s.MapLayers)
	s.Annotations = List(s.Annotations)
	s.SimulationConfig = Object(s.SimulationConfig)
	s.Results = Object(s.Results)
	if s.ScenarioType == "" {
		s.ScenarioType = ScenarioConventional
	}
	if s.Status == "" {
		s.Status = ScenarioDraft
	}
	if s.Version == 0 {
		s.Version = 1
	}
}
