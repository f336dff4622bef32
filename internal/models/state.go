package models

import "strings"

type ProjectStatus string

const (
	ProjectStatusDraft      ProjectStatus = "draft"
	ProjectStatusCollecting ProjectStatus = "collecting"
	ProjectStatusAnalyzing  ProjectStatus = "analyzing"
	ProjectStatusComparing  ProjectStatus = "comparing"
	ProjectStatusDecided    ProjectStatus = "decided"
	ProjectStatusCompleted  ProjectStatus = "completed"
)

// Ready reports whether the project has a comparable set of bids.
func (s ProjectStatus) Ready() bool {
	switch s {
	case ProjectStatusComparing, ProjectStatusDecided, ProjectStatusCompleted:
		return true
	}
	return false
}

type BidStatus string

const (
	BidStatusPending    BidStatus = "pending"
	BidStatusProcessing BidStatus = "processing"
	BidStatusCompleted  BidStatus = "completed"
	BidStatusFailed     BidStatus = "failed"
)

type DocumentStatus string

const (
	DocumentStatusUploaded     DocumentStatus = "uploaded"
	DocumentStatusProcessing   DocumentStatus = "processing"
	DocumentStatusExtracted    DocumentStatus = "extracted"
	DocumentStatusReviewNeeded DocumentStatus = "review_needed"
	DocumentStatusFailed       DocumentStatus = "failed"
	DocumentStatusVerified     DocumentStatus = "verified"
)

// Terminal statuses see no further automatic transition without a re-dispatch.
func (s DocumentStatus) Terminal() bool {
	return s.Succeeded() || s == DocumentStatusFailed
}

func (s DocumentStatus) Succeeded() bool {
	switch s {
	case DocumentStatusExtracted, DocumentStatusVerified, DocumentStatusReviewNeeded:
		return true
	}
	return false
}

// Progress is the coarse percentage shown while the client polls.
func (s DocumentStatus) Progress() int {
	switch s {
	case DocumentStatusProcessing:
		return 50
	case DocumentStatusReviewNeeded:
		return 90
	case DocumentStatusExtracted, DocumentStatusVerified, DocumentStatusFailed:
		return 100
	default:
		return 0
	}
}

type BatchStatus string

const (
	BatchStatusDispatched     BatchStatus = "dispatched"
	BatchStatusDispatchFailed BatchStatus = "dispatch_failed"
	BatchStatusCompleted      BatchStatus = "completed"
	BatchStatusPartial        BatchStatus = "partial"
	BatchStatusFailed         BatchStatus = "failed"
)

type EquipmentType string

const (
	EquipmentOutdoorUnit EquipmentType = "outdoor_unit"
	EquipmentIndoorUnit  EquipmentType = "indoor_unit"
	EquipmentAirHandler  EquipmentType = "air_handler"
	EquipmentThermostat  EquipmentType = "thermostat"
	EquipmentLineSet     EquipmentType = "line_set"
	EquipmentOther       EquipmentType = "other"
)

// ParseEquipmentType maps free-form labels from the extractor onto the known set.
func ParseEquipmentType(s string) EquipmentType {
	s = strings.NewReplacer(" ", "_", "-", "_").Replace(strings.ToLower(strings.TrimSpace(s)))
	switch EquipmentType(s) {
	case EquipmentOutdoorUnit, EquipmentIndoorUnit, EquipmentAirHandler, EquipmentThermostat, EquipmentLineSet:
		return EquipmentType(s)
	}
	switch s {
	case "outdoor", "condenser", "heat_pump":
		return EquipmentOutdoorUnit
	case "indoor", "mini_split_head", "head", "wall_unit":
		return EquipmentIndoorUnit
	case "handler", "ahu":
		return EquipmentAirHandler
	}
	return EquipmentOther
}
