package extraction

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/blagoySimandov/bidcompare/go/internal/models"
)

type DispatchDocument struct {
	DocumentID string `json:"document_id"`
	FileName   string `json:"file_name"`
	URL        string `json:"url"`
}

type DispatchRequest struct {
	RequestID      string             `json:"request_id"`
	CallbackURL    string             `json:"callback_url"`
	ProjectID      string             `json:"project_id"`
	Documents      []DispatchDocument `json:"documents"`
	UserPriorities models.Priorities  `json:"user_priorities"`
}

type DispatchResponse struct {
	JobID  string `json:"job_id,omitempty"`
	Status string `json:"status,omitempty"`
}

const (
	CallbackStatusSuccess = "success"
	CallbackStatusPartial = "partial"
	CallbackStatusFailed  = "failed"
)

// Envelope is the part of a callback that must be checked before anything
// else is trusted. Result sections stay raw until verification passes.
type Envelope struct {
	RequestID string          `json:"request_id"`
	Signature string          `json:"signature"`
	Timestamp string          `json:"timestamp"`
	Status    string          `json:"status"`
	Error     string          `json:"error,omitempty"`
	Result    json.RawMessage `json:"result,omitempty"`
	Results   json.RawMessage `json:"results,omitempty"`
	Questions json.RawMessage `json:"questions,omitempty"`
	Faqs      json.RawMessage `json:"faqs,omitempty"`
}

func (e *Envelope) hasResults() bool {
	return present(e.Result) || present(e.Results)
}

type Callback struct {
	RequestID string
	Status    string
	Error     string
	Results   []DocumentResult
	Questions []Question
	Faqs      []Faq
}

// DocumentResult is the extractor's output for one document. Every section is
// optional; the normalizer decides what an absent section means.
type DocumentResult struct {
	DocumentID        string             `json:"document_id"`
	Status            string             `json:"status"`
	Error             string             `json:"error,omitempty"`
	OverallConfidence models.Confidence  `json:"overall_confidence"`
	Contractor        *ContractorSection `json:"contractor,omitempty"`
	Pricing           *PricingSection    `json:"pricing,omitempty"`
	Equipment         []EquipmentItem    `json:"equipment,omitempty"`
	Warranty          *WarrantySection   `json:"warranty,omitempty"`
	Timeline          *TimelineSection   `json:"timeline,omitempty"`
	Scope             *ScopeSection      `json:"scope,omitempty"`
	Questions         []Question         `json:"questions,omitempty"`
}

// Failed reports whether the extractor gave up on this document.
func (r *DocumentResult) Failed() bool {
	switch r.Status {
	case "failed", "error":
		return true
	case "":
		return r.Error != ""
	}
	return false
}

type ContractorSection struct {
	Name            *string           `json:"name,omitempty"`
	Company         *string           `json:"company,omitempty"`
	ContactName     *string           `json:"contact_name,omitempty"`
	Phone           *string           `json:"phone,omitempty"`
	Email           *string           `json:"email,omitempty"`
	Website         *string           `json:"website,omitempty"`
	Address         *string           `json:"address,omitempty"`
	LicenseNumber   *string           `json:"license_number,omitempty"`
	LicenseState    *string           `json:"license_state,omitempty"`
	Insured         *bool             `json:"insured,omitempty"`
	YearsInBusiness *int              `json:"years_in_business,omitempty"`
	Certifications  []string          `json:"certifications,omitempty"`
	Rating          *float64          `json:"rating,omitempty"`
	ReviewCount     *int              `json:"review_count,omitempty"`
	Confidence      models.Confidence `json:"confidence"`
}

type PricingSection struct {
	TotalAmount       *float64          `json:"total_amount,omitempty"`
	EquipmentCost     *float64          `json:"equipment_cost,omitempty"`
	LaborCost         *float64          `json:"labor_cost,omitempty"`
	MaterialsCost     *float64          `json:"materials_cost,omitempty"`
	PermitCost        *float64          `json:"permit_cost,omitempty"`
	RebatesEstimated  *float64          `json:"rebates_estimated,omitempty"`
	DepositRequired   *float64          `json:"deposit_required,omitempty"`
	DepositPercentage *float64          `json:"deposit_percentage,omitempty"`
	FinancingOffered  *bool             `json:"financing_offered,omitempty"`
	FinancingTerms    *string           `json:"financing_terms,omitempty"`
	Confidence        models.Confidence `json:"confidence"`
}

type WarrantySection struct {
	LaborYears      *float64          `json:"labor_years,omitempty"`
	EquipmentYears  *float64          `json:"equipment_years,omitempty"`
	CompressorYears *float64          `json:"compressor_years,omitempty"`
	Details         *string           `json:"details,omitempty"`
	Confidence      models.Confidence `json:"confidence"`
}

type TimelineSection struct {
	EstimatedDays      *int              `json:"estimated_days,omitempty"`
	StartDateAvailable *string           `json:"start_date_available,omitempty"`
	BidDate            *string           `json:"bid_date,omitempty"`
	ValidUntil         *string           `json:"valid_until,omitempty"`
	Confidence         models.Confidence `json:"confidence"`
}

type ScopeSection struct {
	Permits         *bool             `json:"permits,omitempty"`
	Disposal        *bool             `json:"disposal,omitempty"`
	Electrical      *bool             `json:"electrical,omitempty"`
	Ductwork        *bool             `json:"ductwork,omitempty"`
	Thermostat      *bool             `json:"thermostat,omitempty"`
	LoadCalculation *bool             `json:"load_calculation,omitempty"`
	Commissioning   *bool             `json:"commissioning,omitempty"`
	Inclusions      []string          `json:"inclusions,omitempty"`
	Exclusions      []string          `json:"exclusions,omitempty"`
	Confidence      models.Confidence `json:"confidence"`
}

type EquipmentItem struct {
	Type         string            `json:"equipment_type"`
	Brand        *string           `json:"brand,omitempty"`
	ModelNumber  *string           `json:"model_number,omitempty"`
	ModelName    *string           `json:"model_name,omitempty"`
	Quantity     *int              `json:"quantity,omitempty"`
	CapacityBTU  *int              `json:"capacity_btu,omitempty"`
	CapacityTons *float64          `json:"capacity_tons,omitempty"`
	SEER2        *float64          `json:"seer2,omitempty"`
	HSPF2        *float64          `json:"hspf2,omitempty"`
	EnergyStar   *bool             `json:"energy_star,omitempty"`
	ColdClimate  *bool             `json:"cold_climate,omitempty"`
	UnitPrice    *float64          `json:"unit_price,omitempty"`
	Confidence   models.Confidence `json:"confidence"`
}

type Question struct {
	DocumentID string  `json:"document_id,omitempty"`
	Question   string  `json:"question"`
	Category   *string `json:"category,omitempty"`
	Priority   *string `json:"priority,omitempty"`
}

type Faq struct {
	Question string  `json:"question"`
	Answer   string  `json:"answer"`
	Category *string `json:"category,omitempty"`
}

// Decode expands a verified envelope into typed results. A single "result"
// object and a "results" array are both accepted and merged.
func (e *Envelope) Decode() (*Callback, error) {
	cb := &Callback{
		RequestID: e.RequestID,
		Status:    e.Status,
		Error:     e.Error,
	}

	if present(e.Result) {
		var single DocumentResult
		if err := json.Unmarshal(e.Result, &single); err != nil {
			return nil, fmt.Errorf("%w: result: %v", ErrValidation, err)
		}
		cb.Results = append(cb.Results, single)
	}
	if present(e.Results) {
		var many []DocumentResult
		if err := json.Unmarshal(e.Results, &many); err != nil {
			return nil, fmt.Errorf("%w: results: %v", ErrValidation, err)
		}
		cb.Results = append(cb.Results, many...)
	}
	if present(e.Questions) {
		if err := json.Unmarshal(e.Questions, &cb.Questions); err != nil {
			return nil, fmt.Errorf("%w: questions: %v", ErrValidation, err)
		}
	}
	if present(e.Faqs) {
		if err := json.Unmarshal(e.Faqs, &cb.Faqs); err != nil {
			return nil, fmt.Errorf("%w: faqs: %v", ErrValidation, err)
		}
	}

	seen := make(map[string]struct{}, len(cb.Results))
	for i, r := range cb.Results {
		if r.DocumentID == "" {
			return nil, fmt.Errorf("%w: result %d has no document_id", ErrValidation, i)
		}
		if _, dup := seen[r.DocumentID]; dup {
			return nil, fmt.Errorf("%w: document %s reported twice", ErrValidation, r.DocumentID)
		}
		seen[r.DocumentID] = struct{}{}
	}

	return cb, nil
}

func present(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}
