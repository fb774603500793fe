package models

import "slices"

type BranchType string

const (
	BranchArmy              BranchType = "army"
	BranchNavy              BranchType = "navy"
	BranchAirForce          BranchType = "air_force"
	BranchMarines           BranchType = "marines"
	BranchSpaceForce        BranchType = "space_force"
	BranchCoastGuard        BranchType = "coast_guard"
	BranchSpecialOperations BranchType = "special_operations"
	BranchCyber             BranchType = "cyber"
	BranchOther             BranchType = "other"
)

var BranchTypes = []BranchType{
	BranchArmy, BranchNavy, BranchAirForce, BranchMarines, BranchSpaceForce,
	BranchCoastGuard, BranchSpecialOperations, BranchCyber, BranchOther,
}

func (t BranchType) Valid() bool { return slices.Contains(BranchTypes, t) }

type EquipmentCategory string

const (
	CategoryTanks                EquipmentCategory = "tanks"
	CategoryArmoredVehicles      EquipmentCategory = "armored_vehicles"
	CategoryArtillery            EquipmentCategory = "artillery"
	CategoryMLRS                 EquipmentCategory = "mlrs"
	CategoryAircraftFighter      EquipmentCategory = "aircraft_fighter"
	CategoryAircraftAttack       EquipmentCategory = "aircraft_attack"
	CategoryAircraftTransport    EquipmentCategory = "aircraft_transport"
	CategoryHelicoptersAttack    EquipmentCategory = "helicopters_attack"
	CategoryHelicoptersTransport EquipmentCategory = "helicopters_transport"
	CategoryNavalCarriers        EquipmentCategory = "naval_carriers"
	CategoryNavalDestroyers      EquipmentCategory = "naval_destroyers"
	CategoryNavalFrigates        EquipmentCategory = "naval_frigates"
	CategoryNavalSubmarines      EquipmentCategory = "naval_submarines"
	CategoryNavalPatrol          EquipmentCategory = "naval_patrol"
	CategoryMissilesBallistic    EquipmentCategory = "missiles_ballistic"
	CategoryMissilesCruise       EquipmentCategory = "missiles_cruise"
	CategoryDrones               EquipmentCategory = "drones"
	CategoryOther                EquipmentCategory = "other"
)

var EquipmentCategories = []EquipmentCategory{
	CategoryTanks, CategoryArmoredVehicles, CategoryArtillery, CategoryMLRS,
	CategoryAircraftFighter, CategoryAircraftAttack, CategoryAircraftTransport,
	CategoryHelicoptersAttack, CategoryHelicoptersTransport,
	CategoryNavalCarriers, CategoryNavalDestroyers, CategoryNavalFrigates,
	CategoryNavalSubmarines, CategoryNavalPatrol,
	CategoryMissilesBallistic, CategoryMissilesCruise, CategoryDrones, CategoryOther,
}

func (c EquipmentCategory) Valid() bool { return slices.Contains(EquipmentCategories, c) }

type ProjectStatus string

const (
	ProjectDraft    ProjectStatus = "draft"
	ProjectActive   ProjectStatus = "active"
	ProjectArchived ProjectStatus = "archived"
)

func (s ProjectStatus) Valid() bool {
	return s == ProjectDraft || s == ProjectActive || s == ProjectArchived
}

type ScenarioType string

const (
	ScenarioConventional   ScenarioType = "conventional"
	ScenarioAsymmetric     ScenarioType = "asymmetric"
	ScenarioCyber          ScenarioType = "cyber"
	ScenarioCBRN           ScenarioType = "cbrn"
	ScenarioTerrorResponse ScenarioType = "terror_response"
	ScenarioHybrid         ScenarioType = "hybrid"
)

var ScenarioTypes = []ScenarioType{
	ScenarioConventional, ScenarioAsymmetric, ScenarioCyber,
	ScenarioCBRN, ScenarioTerrorResponse, ScenarioHybrid,
}

func (t ScenarioType) Valid() bool { return slices.Contains(ScenarioTypes, t) }

// ScenarioStatus is a label. Any valid value may replace any other.
type ScenarioStatus string

const (
	ScenarioDraft     ScenarioStatus = "draft"
	ScenarioActive    ScenarioStatus = "active"
	ScenarioCompleted ScenarioStatus = "completed"
	ScenarioArchived  ScenarioStatus = "archived"
)

func (s ScenarioStatus) Valid() bool {
	switch s {
	case ScenarioDraft, ScenarioActive, ScenarioCompleted, ScenarioArchived:
		return true
	}
	return false
}

type Provider string

const (
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
	ProviderGemini    Provider = "gemini"
	ProviderLocal     Provider = "local"
	ProviderNone      Provider = "none"
)

func (p Provider) Valid() bool {
	switch p {
	case ProviderOpenAI, ProviderAnthropic, ProviderGemini, ProviderLocal, ProviderNone:
		return true
	}
	return false
}

// FallbackMode decides what analyze does when a provider call fails.
type FallbackMode string

const (
	FallbackAuto   FallbackMode = "auto"
	FallbackPrompt FallbackMode = "prompt"
	FallbackBlock  FallbackMode = "block"
)

func (m FallbackMode) Valid() bool {
	return m == FallbackAuto || m == FallbackPrompt || m == FallbackBlock
}

type UserRole string

const (
	RoleAdmin     UserRole = "admin"
	RoleAnalyst   UserRole = "analyst"
	RoleReviewer  UserRole = "reviewer"
	RoleCommander UserRole = "commander"
	RoleViewer    UserRole = "viewer"
)

func (r UserRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleAnalyst, RoleReviewer, RoleCommander, RoleViewer:
		return true
	}
	return false
}
