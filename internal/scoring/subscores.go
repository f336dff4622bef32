package scoring

import (
	"math"

	"github.com/blagoySimandov/bidcompare/go/internal/models"
)

// Sub-scores are 0-100. A bid missing the data for a dimension gets the
// neutral score so it is neither rewarded nor punished for the gap.
const neutralScore = 50

const (
	targetLaborYears      = 10.0
	targetEquipmentYears  = 12.0
	targetCompressorYears = 12.0

	minSEER2 = 13.0
	maxSEER2 = 24.0
	minHSPF2 = 7.0
	maxHSPF2 = 11.0
)

type bidFacts struct {
	bid        *models.Bid
	scope      *models.BidScope
	contractor *models.BidContractor
	equipment  []*models.BidEquipment
}

type subScores struct {
	Price      float64
	Warranty   float64
	Efficiency float64
	Reputation float64
	Timeline   float64
}

// relativeLowerBetter scores value against the best (lowest) value in the set.
func relativeLowerBetter(value *float64, best float64) float64 {
	if value == nil || *value <= 0 || best <= 0 {
		return neutralScore
	}
	return clamp(best / *value * 100)
}

func priceScore(scope *models.BidScope, cheapest float64) float64 {
	if scope == nil {
		return neutralScore
	}
	return relativeLowerBetter(scope.TotalBidAmount, cheapest)
}

func timelineScore(scope *models.BidScope, fastest float64) float64 {
	if scope == nil || scope.EstimatedDays == nil {
		return neutralScore
	}
	days := float64(*scope.EstimatedDays)
	return relativeLowerBetter(&days, fastest)
}

func warrantyScore(scope *models.BidScope) float64 {
	if scope == nil {
		return neutralScore
	}

	parts := []struct {
		years  *float64
		target float64
		weight float64
	}{
		{scope.LaborWarrantyYears, targetLaborYears, 0.4},
		{scope.EquipmentWarrantyYears, targetEquipmentYears, 0.4},
		{scope.CompressorWarrantyYears, targetCompressorYears, 0.2},
	}

	total, weight := 0.0, 0.0
	for _, p := range parts {
		if p.years == nil {
			continue
		}
		total += clamp(*p.years/p.target*100) * p.weight
		weight += p.weight
	}
	if weight == 0 {
		return neutralScore
	}
	return round(total / weight)
}

// efficiencyScore rates the best outdoor unit on SEER2 and HSPF2.
func efficiencyScore(equipment []*models.BidEquipment) float64 {
	bestSEER, bestHSPF := 0.0, 0.0
	for _, e := range equipment {
		if e.EquipmentType != models.EquipmentOutdoorUnit {
			continue
		}
		if e.SEER2 != nil && *e.SEER2 > bestSEER {
			bestSEER = *e.SEER2
		}
		if e.HSPF2 != nil && *e.HSPF2 > bestHSPF {
			bestHSPF = *e.HSPF2
		}
	}

	var scores []float64
	if bestSEER > 0 {
		scores = append(scores, clamp((bestSEER-minSEER2)/(maxSEER2-minSEER2)*100))
	}
	if bestHSPF > 0 {
		scores = append(scores, clamp((bestHSPF-minHSPF2)/(maxHSPF2-minHSPF2)*100))
	}
	if len(scores) == 0 {
		return neutralScore
	}
	return round(mean(scores))
}

func reputationScore(c *models.BidContractor) float64 {
	if c == nil {
		return neutralScore
	}

	score := float64(neutralScore)
	if c.Rating != nil {
		score = clamp(*c.Rating / 5 * 100)
	}
	if c.LicenseNumber != nil {
		score += 5
	}
	if c.Insured != nil {
		if *c.Insured {
			score += 5
		} else {
			score -= 15
		}
	}
	if c.YearsInBusiness != nil && *c.YearsInBusiness >= 10 {
		score += 5
	}
	return clamp(score)
}

// overall is the priority-weighted mean of the sub-scores.
func overall(s subScores, p models.Priorities) float64 {
	total := p.Total()
	if total == 0 {
		return 0
	}
	sum := s.Price*p.Price +
		s.Warranty*p.Warranty +
		s.Efficiency*p.Efficiency +
		s.Reputation*p.Reputation +
		s.Timeline*p.Timeline
	return round(sum / total)
}

func clamp(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(100, v))
}

func round(v float64) float64 {
	return math.Round(v*10) / 10
}

func mean(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
