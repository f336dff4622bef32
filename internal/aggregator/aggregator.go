package aggregator

import (
	"context"
	"fmt"
	"time"

	"github.com/blagoySimandov/bidcompare/go/internal/models"
	"github.com/blagoySimandov/bidcompare/go/internal/notify"
	"github.com/blagoySimandov/bidcompare/go/internal/state"
	"github.com/rs/zerolog/log"
)

// MinComparableBids is the smallest set of successful bids worth comparing.
const MinComparableBids = 2

var transitionFrom = []models.ProjectStatus{
	models.ProjectStatusCollecting,
	models.ProjectStatusAnalyzing,
}

type Notifier interface {
	NotifyCompletion(ctx context.Context, projectID string) (*notify.Result, error)
}

type Evaluation struct {
	ProjectID         string               `json:"project_id"`
	Total             int                  `json:"total"`
	Terminal          int                  `json:"terminal"`
	Succeeded         int                  `json:"succeeded"`
	Failed            int                  `json:"failed"`
	AllTerminal       bool                 `json:"all_terminal"`
	Ready             bool                 `json:"ready"`
	Transitioned      bool                 `json:"transitioned"`
	ProjectStatus     models.ProjectStatus `json:"project_status"`
	BatchStatus       models.BatchStatus   `json:"batch_status,omitempty"`
	Notification      *notify.Result       `json:"notification,omitempty"`
	NotificationError string               `json:"notification_error,omitempty"`
}

type Aggregator struct {
	store    state.Store
	notifier Notifier
	now      func() time.Time
}

func New(store state.Store, notifier Notifier) *Aggregator {
	return &Aggregator{store: store, notifier: notifier, now: time.Now}
}

// Evaluate recounts the project's documents and moves the project to
// comparing once every document is terminal and enough of them succeeded.
// It is safe to call any number of times; the transition and the
// notification each happen once.
func (a *Aggregator) Evaluate(ctx context.Context, projectID, requestID string) (*Evaluation, error) {
	docs, err := a.store.ListDocumentsByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to count documents: %w", err)
	}

	eval := &Evaluation{ProjectID: projectID, Total: len(docs)}
	for _, doc := range docs {
		if !doc.Status.Terminal() {
			continue
		}
		eval.Terminal++
		if doc.Status.Succeeded() {
			eval.Succeeded++
		} else {
			eval.Failed++
		}
	}
	eval.AllTerminal = eval.Total > 0 && eval.Terminal == eval.Total
	eval.Ready = eval.AllTerminal && eval.Succeeded >= MinComparableBids

	if requestID != "" {
		status, err := a.finishBatch(ctx, requestID)
		if err != nil {
			return nil, err
		}
		eval.BatchStatus = status
	}

	if eval.Ready {
		moved, err := a.store.TransitionProjectStatus(ctx, projectID, transitionFrom, models.ProjectStatusComparing)
		if err != nil {
			return nil, err
		}
		eval.Transitioned = moved
	}

	project, err := a.store.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	eval.ProjectStatus = project.Status

	if eval.Transitioned {
		log.Info().
			Str("projectID", projectID).
			Int("succeeded", eval.Succeeded).
			Int("failed", eval.Failed).
			Msg("Project ready to compare")
	} else if eval.AllTerminal && !eval.Ready {
		log.Info().
			Str("projectID", projectID).
			Int("succeeded", eval.Succeeded).
			Msg("All documents finished without enough successful bids to compare")
	}

	if eval.Ready && project.Status.Ready() && a.notifier != nil {
		result, err := a.notifier.NotifyCompletion(ctx, projectID)
		if err != nil {
			log.Error().Err(err).Str("projectID", projectID).Msg("Notification gate failed")
			eval.NotificationError = err.Error()
		} else {
			eval.Notification = result
		}
	}

	return eval, nil
}

// finishBatch records the batch outcome once all of its documents are
// terminal. Returns the empty status while documents are outstanding.
func (a *Aggregator) finishBatch(ctx context.Context, requestID string) (models.BatchStatus, error) {
	docs, err := a.store.ListDocumentsByBatch(ctx, requestID)
	if err != nil {
		return "", fmt.Errorf("failed to list batch documents: %w", err)
	}
	if len(docs) == 0 {
		return "", nil
	}

	succeeded := 0
	for _, doc := range docs {
		if !doc.Status.Terminal() {
			return "", nil
		}
		if doc.Status.Succeeded() {
			succeeded++
		}
	}

	status := models.BatchStatusPartial
	switch succeeded {
	case len(docs):
		status = models.BatchStatusCompleted
	case 0:
		status = models.BatchStatusFailed
	}

	if _, err := a.store.FinishBatch(ctx, requestID, status, a.now()); err != nil {
		return "", err
	}
	return status, nil
}
