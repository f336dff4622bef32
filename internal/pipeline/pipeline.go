package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/blagoySimandov/bidcompare/go/internal/extraction"
	"github.com/rs/zerolog/log"
)

// Pipeline runs a verified callback through its stages in order, on the
// caller's goroutine. A stage error stops the run.
type Pipeline struct {
	stages []Stage
}

func NewPipeline(stages ...Stage) *Pipeline {
	return &Pipeline{stages: stages}
}

func (p *Pipeline) Process(ctx context.Context, env *extraction.Envelope) (*Message, error) {
	cb, err := env.Decode()
	if err != nil {
		return nil, err
	}

	msg := &Message{Callback: cb}
	for _, stage := range p.stages {
		start := time.Now()
		if err := stage.Run(ctx, msg); err != nil {
			log.Error().
				Err(err).
				Str("requestID", cb.RequestID).
				Str("stage", stage.Name()).
				Msg("Callback stage failed")
			return msg, fmt.Errorf("%s: %w", stage.Name(), err)
		}
		log.Debug().
			Str("requestID", cb.RequestID).
			Str("stage", stage.Name()).
			Dur("elapsed", time.Since(start)).
			Msg("Callback stage finished")
	}
	return msg, nil
}
