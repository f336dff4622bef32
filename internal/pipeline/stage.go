package pipeline

import (
	"context"

	"github.com/blagoySimandov/bidcompare/go/internal/aggregator"
	"github.com/blagoySimandov/bidcompare/go/internal/extraction"
	"github.com/blagoySimandov/bidcompare/go/internal/normalizer"
)

// Message carries one verified callback through the stages. Each stage fills
// in its own result.
type Message struct {
	Callback   *extraction.Callback
	Report     *normalizer.Report
	Evaluation *aggregator.Evaluation
}

type Stage interface {
	Run(ctx context.Context, msg *Message) error
	Name() string
}
