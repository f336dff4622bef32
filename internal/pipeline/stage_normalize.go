package pipeline

import (
	"context"

	"github.com/blagoySimandov/bidcompare/go/internal/normalizer"
)

type NormalizeStage struct {
	normalizer *normalizer.Normalizer
}

func NewNormalizeStage(n *normalizer.Normalizer) *NormalizeStage {
	return &NormalizeStage{normalizer: n}
}

func (s *NormalizeStage) Name() string {
	return "normalize"
}

func (s *NormalizeStage) Run(ctx context.Context, msg *Message) error {
	report, err := s.normalizer.Apply(ctx, msg.Callback)
	if err != nil {
		return err
	}
	msg.Report = report
	return nil
}
