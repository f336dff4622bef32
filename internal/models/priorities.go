package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

const maxPriorityWeight = 10

var ErrInvalidPriorities = errors.New("invalid priorities")

// Priorities are the user-declared weights sent along with a batch and used
// later for scoring. All keys are required.
type Priorities struct {
	Price      float64 `json:"price"`
	Warranty   float64 `json:"warranty"`
	Efficiency float64 `json:"efficiency"`
	Reputation float64 `json:"reputation"`
	Timeline   float64 `json:"timeline"`
}

func DefaultPriorities() Priorities {
	return Priorities{Price: 5, Warranty: 3, Efficiency: 3, Reputation: 3, Timeline: 2}
}

// ParsePriorities decodes and validates a priorities object. Unknown keys,
// missing keys and non-numeric values are rejected.
func ParsePriorities(raw json.RawMessage) (Priorities, error) {
	if len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return Priorities{}, fmt.Errorf("%w: priorities are required", ErrInvalidPriorities)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return Priorities{}, fmt.Errorf("%w: %v", ErrInvalidPriorities, err)
	}

	var p Priorities
	targets := map[string]*float64{
		"price":      &p.Price,
		"warranty":   &p.Warranty,
		"efficiency": &p.Efficiency,
		"reputation": &p.Reputation,
		"timeline":   &p.Timeline,
	}

	for key := range fields {
		if _, ok := targets[key]; !ok {
			return Priorities{}, fmt.Errorf("%w: unknown key %q", ErrInvalidPriorities, key)
		}
	}
	for key, target := range targets {
		value, ok := fields[key]
		if !ok {
			return Priorities{}, fmt.Errorf("%w: missing key %q", ErrInvalidPriorities, key)
		}
		if err := json.Unmarshal(value, target); err != nil {
			return Priorities{}, fmt.Errorf("%w: %q must be a number", ErrInvalidPriorities, key)
		}
	}

	if err := p.Validate(); err != nil {
		return Priorities{}, err
	}
	return p, nil
}

func (p Priorities) Validate() error {
	total := 0.0
	for _, w := range p.weights() {
		if math.IsNaN(w) || math.IsInf(w, 0) || w < 0 || w > maxPriorityWeight {
			return fmt.Errorf("%w: weights must be between 0 and %d", ErrInvalidPriorities, maxPriorityWeight)
		}
		total += w
	}
	if total == 0 {
		return fmt.Errorf("%w: at least one weight must be positive", ErrInvalidPriorities)
	}
	return nil
}

func (p Priorities) weights() []float64 {
	return []float64{p.Price, p.Warranty, p.Efficiency, p.Reputation, p.Timeline}
}

func (p Priorities) Total() float64 {
	total := 0.0
	for _, w := range p.weights() {
		total += w
	}
	return total
}
