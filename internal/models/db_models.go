package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Project struct {
	bun.BaseModel `bun:"table:projects,alias:p"`

	ID                 string        `bun:"id,pk" json:"id"`
	UserID             string        `bun:"user_id,notnull" json:"user_id"`
	Name               string        `bun:"name,notnull" json:"name"`
	Status             ProjectStatus `bun:"status,notnull" json:"status"`
	NotificationEmail  *string       `bun:"notification_email" json:"notification_email,omitempty"`
	NotifyOnCompletion bool          `bun:"notify_on_completion,notnull" json:"notify_on_completion"`
	NotificationSentAt *time.Time    `bun:"notification_sent_at" json:"notification_sent_at,omitempty"`
	RerunCount         int           `bun:"rerun_count,notnull" json:"rerun_count"`
	CreatedAt          time.Time     `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt          time.Time     `bun:"updated_at,notnull,default:current_timestamp" json:"updated_at"`
}

type Bid struct {
	bun.BaseModel `bun:"table:bids,alias:b"`

	ID                 string           `bun:"id,pk" json:"id"`
	ProjectID          string           `bun:"project_id,notnull" json:"project_id"`
	DocumentID         string           `bun:"document_id,notnull" json:"document_id"`
	Status             BidStatus        `bun:"status,notnull" json:"status"`
	ContractorName     *string          `bun:"contractor_name" json:"contractor_name,omitempty"`
	ConfidenceLevel    *ConfidenceLevel `bun:"confidence_level" json:"confidence_level,omitempty"`
	ProcessingAttempts int              `bun:"processing_attempts,notnull" json:"processing_attempts"`
	LastError          *string          `bun:"last_error" json:"last_error,omitempty"`
	CreatedAt          time.Time        `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt          time.Time        `bun:"updated_at,notnull,default:current_timestamp" json:"updated_at"`
}

type BidScope struct {
	bun.BaseModel `bun:"table:bid_scopes,alias:bs"`

	ID    string `bun:"id,pk" json:"id"`
	BidID string `bun:"bid_id,notnull,unique" json:"bid_id"`

	TotalBidAmount    *float64 `bun:"total_bid_amount" json:"total_bid_amount,omitempty"`
	EquipmentCost     *float64 `bun:"equipment_cost" json:"equipment_cost,omitempty"`
	LaborCost         *float64 `bun:"labor_cost" json:"labor_cost,omitempty"`
	MaterialsCost     *float64 `bun:"materials_cost" json:"materials_cost,omitempty"`
	PermitCost        *float64 `bun:"permit_cost" json:"permit_cost,omitempty"`
	RebatesEstimated  *float64 `bun:"rebates_estimated" json:"rebates_estimated,omitempty"`
	DepositRequired   *float64 `bun:"deposit_required" json:"deposit_required,omitempty"`
	DepositPercentage *float64 `bun:"deposit_percentage" json:"deposit_percentage,omitempty"`
	FinancingOffered  bool     `bun:"financing_offered,notnull" json:"financing_offered"`
	FinancingTerms    *string  `bun:"financing_terms" json:"financing_terms,omitempty"`

	LaborWarrantyYears      *float64 `bun:"labor_warranty_years" json:"labor_warranty_years,omitempty"`
	EquipmentWarrantyYears  *float64 `bun:"equipment_warranty_years" json:"equipment_warranty_years,omitempty"`
	CompressorWarrantyYears *float64 `bun:"compressor_warranty_years" json:"compressor_warranty_years,omitempty"`
	WarrantyDetails         *string  `bun:"warranty_details" json:"warranty_details,omitempty"`

	EstimatedDays      *int    `bun:"estimated_days" json:"estimated_days,omitempty"`
	StartDateAvailable *string `bun:"start_date_available" json:"start_date_available,omitempty"`
	BidDate            *string `bun:"bid_date" json:"bid_date,omitempty"`
	ValidUntil         *string `bun:"valid_until" json:"valid_until,omitempty"`

	PermitsIncluded       bool `bun:"permits_included,notnull" json:"permits_included"`
	DisposalIncluded      bool `bun:"disposal_included,notnull" json:"disposal_included"`
	ElectricalIncluded    bool `bun:"electrical_included,notnull" json:"electrical_included"`
	DuctworkIncluded      bool `bun:"ductwork_included,notnull" json:"ductwork_included"`
	ThermostatIncluded    bool `bun:"thermostat_included,notnull" json:"thermostat_included"`
	LoadCalcIncluded      bool `bun:"load_calc_included,notnull" json:"load_calc_included"`
	CommissioningIncluded bool `bun:"commissioning_included,notnull" json:"commissioning_included"`

	Inclusions      []string        `bun:"inclusions,type:jsonb" json:"inclusions"`
	Exclusions      []string        `bun:"exclusions,type:jsonb" json:"exclusions"`
	ConfidenceLevel ConfidenceLevel `bun:"confidence_level,notnull" json:"confidence_level"`
	CreatedAt       time.Time       `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt       time.Time       `bun:"updated_at,notnull,default:current_timestamp" json:"updated_at"`
}

type BidContractor struct {
	bun.BaseModel `bun:"table:bid_contractors,alias:bc"`

	ID    string `bun:"id,pk" json:"id"`
	BidID string `bun:"bid_id,notnull,unique" json:"bid_id"`

	Name            string          `bun:"name,notnull" json:"name"`
	Company         *string         `bun:"company" json:"company,omitempty"`
	ContactName     *string         `bun:"contact_name" json:"contact_name,omitempty"`
	Phone           *string         `bun:"phone" json:"phone,omitempty"`
	Email           *string         `bun:"email" json:"email,omitempty"`
	Website         *string         `bun:"website" json:"website,omitempty"`
	Address         *string         `bun:"address" json:"address,omitempty"`
	LicenseNumber   *string         `bun:"license_number" json:"license_number,omitempty"`
	LicenseState    *string         `bun:"license_state" json:"license_state,omitempty"`
	Insured         *bool           `bun:"insured" json:"insured,omitempty"`
	YearsInBusiness *int            `bun:"years_in_business" json:"years_in_business,omitempty"`
	Certifications  []string        `bun:"certifications,type:jsonb" json:"certifications"`
	Rating          *float64        `bun:"rating" json:"rating,omitempty"`
	ReviewCount     *int            `bun:"review_count" json:"review_count,omitempty"`
	ConfidenceLevel ConfidenceLevel `bun:"confidence_level,notnull" json:"confidence_level"`
	CreatedAt       time.Time       `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt       time.Time       `bun:"updated_at,notnull,default:current_timestamp" json:"updated_at"`
}

type BidEquipment struct {
	bun.BaseModel `bun:"table:bid_equipment,alias:be"`

	ID              string          `bun:"id,pk" json:"id"`
	BidID           string          `bun:"bid_id,notnull" json:"bid_id"`
	Position        int             `bun:"position,notnull" json:"position"`
	EquipmentType   EquipmentType   `bun:"equipment_type,notnull" json:"equipment_type"`
	Brand           *string         `bun:"brand" json:"brand,omitempty"`
	ModelNumber     *string         `bun:"model_number" json:"model_number,omitempty"`
	ModelName       *string         `bun:"model_name" json:"model_name,omitempty"`
	Quantity        int             `bun:"quantity,notnull" json:"quantity"`
	CapacityBTU     *int            `bun:"capacity_btu" json:"capacity_btu,omitempty"`
	CapacityTons    *float64        `bun:"capacity_tons" json:"capacity_tons,omitempty"`
	SEER2           *float64        `bun:"seer2" json:"seer2,omitempty"`
	HSPF2           *float64        `bun:"hspf2" json:"hspf2,omitempty"`
	EnergyStar      *bool           `bun:"energy_star" json:"energy_star,omitempty"`
	ColdClimate     *bool           `bun:"cold_climate" json:"cold_climate,omitempty"`
	UnitPrice       *float64        `bun:"unit_price" json:"unit_price,omitempty"`
	ConfidenceLevel ConfidenceLevel `bun:"confidence_level,notnull" json:"confidence_level"`
	CreatedAt       time.Time       `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
}

type BidScore struct {
	bun.BaseModel `bun:"table:bid_scores,alias:bsc"`

	ID              string    `bun:"id,pk" json:"id"`
	BidID           string    `bun:"bid_id,notnull,unique" json:"bid_id"`
	ProjectID       string    `bun:"project_id,notnull" json:"project_id"`
	OverallScore    float64   `bun:"overall_score,notnull" json:"overall_score"`
	PriceScore      float64   `bun:"price_score,notnull" json:"price_score"`
	WarrantyScore   float64   `bun:"warranty_score,notnull" json:"warranty_score"`
	EfficiencyScore float64   `bun:"efficiency_score,notnull" json:"efficiency_score"`
	ReputationScore float64   `bun:"reputation_score,notnull" json:"reputation_score"`
	TimelineScore   float64   `bun:"timeline_score,notnull" json:"timeline_score"`
	Rank            int       `bun:"rank,notnull" json:"rank"`
	ComputedAt      time.Time `bun:"computed_at,notnull" json:"computed_at"`
}

// Document tracks one uploaded PDF. Its ID is the handle the extraction
// service echoes back to correlate a per-document result.
type Document struct {
	bun.BaseModel `bun:"table:pdf_uploads,alias:d"`

	ID                  string           `bun:"id,pk" json:"id"`
	ProjectID           string           `bun:"project_id,notnull" json:"project_id"`
	BidID               string           `bun:"bid_id,notnull" json:"bid_id"`
	UserID              string           `bun:"user_id,notnull" json:"user_id"`
	FileName            string           `bun:"file_name,notnull" json:"file_name"`
	StoragePath         string           `bun:"storage_path,notnull" json:"storage_path"`
	FileSizeBytes       int64            `bun:"file_size_bytes,notnull" json:"file_size_bytes"`
	PageCount           int              `bun:"page_count,notnull" json:"page_count"`
	Status              DocumentStatus   `bun:"status,notnull" json:"status"`
	ConfidenceLevel     *ConfidenceLevel `bun:"confidence_level" json:"confidence_level,omitempty"`
	BatchRequestID      *string          `bun:"batch_request_id" json:"batch_request_id,omitempty"`
	ProcessingStartedAt *time.Time       `bun:"processing_started_at" json:"processing_started_at,omitempty"`
	ProcessedAt         *time.Time       `bun:"processed_at" json:"processed_at,omitempty"`
	ErrorMessage        *string          `bun:"error_message" json:"error_message,omitempty"`
	CreatedAt           time.Time        `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt           time.Time        `bun:"updated_at,notnull,default:current_timestamp" json:"updated_at"`
}

type Batch struct {
	bun.BaseModel `bun:"table:extraction_batches,alias:eb"`

	RequestID      string        `bun:"request_id,pk" json:"request_id"`
	ProjectID      string        `bun:"project_id,notnull" json:"project_id"`
	UserID         string        `bun:"user_id,notnull" json:"user_id"`
	DocumentCount  int           `bun:"document_count,notnull" json:"document_count"`
	Priorities     Priorities    `bun:"priorities,type:jsonb" json:"priorities"`
	Status         BatchStatus   `bun:"status,notnull" json:"status"`
	PreviousStatus ProjectStatus `bun:"previous_status,notnull" json:"-"`
	ExternalJobID  *string       `bun:"external_job_id" json:"external_job_id,omitempty"`
	Error          *string       `bun:"error" json:"error,omitempty"`
	CreatedAt      time.Time     `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	CompletedAt    *time.Time    `bun:"completed_at" json:"completed_at,omitempty"`
}

type ContractorQuestion struct {
	bun.BaseModel `bun:"table:contractor_questions,alias:cq"`

	ID          string    `bun:"id,pk" json:"id"`
	ProjectID   string    `bun:"project_id,notnull,unique:question_dedup" json:"project_id"`
	BidID       string    `bun:"bid_id,notnull,unique:question_dedup" json:"bid_id,omitempty"`
	QuestionKey string    `bun:"question_key,notnull,unique:question_dedup" json:"-"`
	Question    string    `bun:"question,notnull" json:"question"`
	Category    *string   `bun:"category" json:"category,omitempty"`
	Priority    *string   `bun:"priority" json:"priority,omitempty"`
	RequestID   string    `bun:"request_id,notnull" json:"request_id"`
	CreatedAt   time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
}

type Faq struct {
	bun.BaseModel `bun:"table:project_faqs,alias:pf"`

	ID        string    `bun:"id,pk" json:"id"`
	ProjectID string    `bun:"project_id,notnull,unique:faq_dedup" json:"project_id"`
	FaqKey    string    `bun:"faq_key,notnull,unique:faq_dedup" json:"-"`
	Question  string    `bun:"question,notnull" json:"question"`
	Answer    string    `bun:"answer,notnull" json:"answer"`
	Category  *string   `bun:"category" json:"category,omitempty"`
	RequestID string    `bun:"request_id,notnull" json:"request_id"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
}
