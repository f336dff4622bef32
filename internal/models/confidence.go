package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

type ConfidenceLevel string

const (
	ConfidenceHigh   ConfidenceLevel = "high"
	ConfidenceMedium ConfidenceLevel = "medium"
	ConfidenceLow    ConfidenceLevel = "low"
	ConfidenceManual ConfidenceLevel = "manual"
)

const (
	highConfidenceMin   = 90
	mediumConfidenceMin = 70
)

func (l ConfidenceLevel) Valid() bool {
	switch l {
	case ConfidenceHigh, ConfidenceMedium, ConfidenceLow, ConfidenceManual:
		return true
	}
	return false
}

// BucketScore collapses a 0-100 extraction score into a discrete level.
func BucketScore(score float64) ConfidenceLevel {
	switch {
	case score >= highConfidenceMin:
		return ConfidenceHigh
	case score >= mediumConfidenceMin:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// Confidence is the raw confidence signal from the extractor: either a number
// or an already-bucketed label. It is never stored as-is.
type Confidence struct {
	Score   *float64
	Label   string
	present bool
}

func ScoreConfidence(score float64) Confidence {
	return Confidence{Score: &score, present: true}
}

func LabelConfidence(label string) Confidence {
	return Confidence{Label: label, present: true}
}

func (c Confidence) Present() bool { return c.present }

func (c *Confidence) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*c = Confidence{}
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if f, err := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64); err == nil {
			*c = ScoreConfidence(f)
			return nil
		}
		*c = LabelConfidence(s)
		return nil
	}

	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("confidence must be a number or a label: %w", err)
	}
	*c = ScoreConfidence(f)
	return nil
}

func (c Confidence) MarshalJSON() ([]byte, error) {
	switch {
	case c.Score != nil:
		return json.Marshal(*c.Score)
	case c.present:
		return json.Marshal(c.Label)
	default:
		return []byte("null"), nil
	}
}

// Level buckets the signal. Labels are matched without regard to case and
// come back as the canonical lowercase level; the second return is false when
// the signal is absent or unusable.
func (c Confidence) Level() (ConfidenceLevel, bool) {
	if !c.present {
		return "", false
	}
	if c.Score != nil {
		return BucketScore(*c.Score), true
	}
	level := ConfidenceLevel(strings.ToLower(c.Label))
	if level.Valid() {
		return level, true
	}
	return "", false
}

// LevelOr returns the bucketed level or fallback.
func (c Confidence) LevelOr(fallback ConfidenceLevel) ConfidenceLevel {
	if level, ok := c.Level(); ok {
		return level
	}
	return fallback
}
