package pipeline

import (
	"context"

	"github.com/blagoySimandov/bidcompare/go/internal/aggregator"
)

type AggregateStage struct {
	aggregator *aggregator.Aggregator
}

func NewAggregateStage(a *aggregator.Aggregator) *AggregateStage {
	return &AggregateStage{aggregator: a}
}

func (s *AggregateStage) Name() string {
	return "aggregate"
}

// Run re-evaluates the project touched by the callback. It needs the
// normalizer's report to know which project that is.
func (s *AggregateStage) Run(ctx context.Context, msg *Message) error {
	if msg.Report == nil {
		return nil
	}
	eval, err := s.aggregator.Evaluate(ctx, msg.Report.ProjectID, msg.Report.RequestID)
	if err != nil {
		return err
	}
	msg.Evaluation = eval
	return nil
}
