package normalizer

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/blagoySimandov/bidcompare/go/internal/extraction"
	"github.com/blagoySimandov/bidcompare/go/internal/models"
)

// Section confidences fall back to the document's overall level when the
// extractor did not report one.
func sectionLevel(c models.Confidence, overall models.ConfidenceLevel) models.ConfidenceLevel {
	return c.LevelOr(overall)
}

func displayName(c *extraction.ContractorSection, fileName string) string {
	if c != nil {
		if s := trimmed(c.Company); s != "" {
			return s
		}
		if s := trimmed(c.Name); s != "" {
			return s
		}
	}
	return fileName
}

func mapContractor(bidID string, c *extraction.ContractorSection, name string, overall models.ConfidenceLevel) *models.BidContractor {
	row := &models.BidContractor{
		BidID:           bidID,
		Name:            name,
		Certifications:  []string{},
		ConfidenceLevel: overall,
	}
	if c == nil {
		return row
	}

	if s := trimmed(c.Name); s != "" {
		row.Name = s
	}
	row.Company = nonEmpty(c.Company)
	row.ContactName = nonEmpty(c.ContactName)
	row.Phone = nonEmpty(c.Phone)
	row.Email = nonEmpty(c.Email)
	row.Website = nonEmpty(c.Website)
	row.Address = nonEmpty(c.Address)
	row.LicenseNumber = nonEmpty(c.LicenseNumber)
	row.LicenseState = nonEmpty(c.LicenseState)
	row.Insured = c.Insured
	row.YearsInBusiness = c.YearsInBusiness
	row.Rating = c.Rating
	row.ReviewCount = c.ReviewCount
	if c.Certifications != nil {
		row.Certifications = c.Certifications
	}
	row.ConfidenceLevel = sectionLevel(c.Confidence, overall)
	return row
}

// mapScope folds pricing, warranty, timeline and scope into one row. Absent
// sections leave their columns NULL and their inclusion flags false.
func mapScope(bidID string, r *extraction.DocumentResult, overall models.ConfidenceLevel) *models.BidScope {
	row := &models.BidScope{
		BidID:           bidID,
		Inclusions:      []string{},
		Exclusions:      []string{},
		ConfidenceLevel: overall,
	}

	if p := r.Pricing; p != nil {
		row.TotalBidAmount = p.TotalAmount
		row.EquipmentCost = p.EquipmentCost
		row.LaborCost = p.LaborCost
		row.MaterialsCost = p.MaterialsCost
		row.PermitCost = p.PermitCost
		row.RebatesEstimated = p.RebatesEstimated
		row.DepositRequired = p.DepositRequired
		row.DepositPercentage = p.DepositPercentage
		row.FinancingOffered = boolOr(p.FinancingOffered, false)
		row.FinancingTerms = nonEmpty(p.FinancingTerms)
	}

	if w := r.Warranty; w != nil {
		row.LaborWarrantyYears = w.LaborYears
		row.EquipmentWarrantyYears = w.EquipmentYears
		row.CompressorWarrantyYears = w.CompressorYears
		row.WarrantyDetails = nonEmpty(w.Details)
	}

	if t := r.Timeline; t != nil {
		row.EstimatedDays = t.EstimatedDays
		row.StartDateAvailable = nonEmpty(t.StartDateAvailable)
		row.BidDate = nonEmpty(t.BidDate)
		row.ValidUntil = nonEmpty(t.ValidUntil)
	}

	if s := r.Scope; s != nil {
		row.PermitsIncluded = boolOr(s.Permits, false)
		row.DisposalIncluded = boolOr(s.Disposal, false)
		row.ElectricalIncluded = boolOr(s.Electrical, false)
		row.DuctworkIncluded = boolOr(s.Ductwork, false)
		row.ThermostatIncluded = boolOr(s.Thermostat, false)
		row.LoadCalcIncluded = boolOr(s.LoadCalculation, false)
		row.CommissioningIncluded = boolOr(s.Commissioning, false)
		if s.Inclusions != nil {
			row.Inclusions = s.Inclusions
		}
		if s.Exclusions != nil {
			row.Exclusions = s.Exclusions
		}
	}

	row.ConfidenceLevel = scopeLevel(r, overall)
	return row
}

// scopeLevel is the weakest reported level across the sections folded into
// the scope row.
func scopeLevel(r *extraction.DocumentResult, overall models.ConfidenceLevel) models.ConfidenceLevel {
	var reported []models.ConfidenceLevel
	if r.Pricing != nil {
		reported = append(reported, sectionLevel(r.Pricing.Confidence, overall))
	}
	if r.Warranty != nil {
		reported = append(reported, sectionLevel(r.Warranty.Confidence, overall))
	}
	if r.Timeline != nil {
		reported = append(reported, sectionLevel(r.Timeline.Confidence, overall))
	}
	if r.Scope != nil {
		reported = append(reported, sectionLevel(r.Scope.Confidence, overall))
	}
	if len(reported) == 0 {
		return overall
	}

	weakest := reported[0]
	for _, level := range reported[1:] {
		if levelRank(level) < levelRank(weakest) {
			weakest = level
		}
	}
	return weakest
}

func levelRank(l models.ConfidenceLevel) int {
	switch l {
	case models.ConfidenceManual:
		return 4
	case models.ConfidenceHigh:
		return 3
	case models.ConfidenceMedium:
		return 2
	default:
		return 1
	}
}

func mapEquipment(items []extraction.EquipmentItem, overall models.ConfidenceLevel) []*models.BidEquipment {
	rows := make([]*models.BidEquipment, 0, len(items))
	for _, item := range items {
		quantity := 1
		if item.Quantity != nil && *item.Quantity > 0 {
			quantity = *item.Quantity
		}
		rows = append(rows, &models.BidEquipment{
			EquipmentType:   models.ParseEquipmentType(item.Type),
			Brand:           nonEmpty(item.Brand),
			ModelNumber:     nonEmpty(item.ModelNumber),
			ModelName:       nonEmpty(item.ModelName),
			Quantity:        quantity,
			CapacityBTU:     item.CapacityBTU,
			CapacityTons:    item.CapacityTons,
			SEER2:           item.SEER2,
			HSPF2:           item.HSPF2,
			EnergyStar:      item.EnergyStar,
			ColdClimate:     item.ColdClimate,
			UnitPrice:       item.UnitPrice,
			ConfidenceLevel: sectionLevel(item.Confidence, overall),
		})
	}
	return rows
}

// artifactKey identifies a question or FAQ by its normalized text so a
// redelivered callback does not duplicate it.
func artifactKey(text string) string {
	normalized := strings.Join(strings.Fields(strings.ToLower(text)), " ")
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}

func trimmed(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

func nonEmpty(s *string) *string {
	v := trimmed(s)
	if v == "" {
		return nil
	}
	return &v
}

func boolOr(b *bool, fallback bool) bool {
	if b == nil {
		return fallback
	}
	return *b
}
