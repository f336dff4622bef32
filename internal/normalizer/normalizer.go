package normalizer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/blagoySimandov/bidcompare/go/internal/extraction"
	"github.com/blagoySimandov/bidcompare/go/internal/models"
	"github.com/blagoySimandov/bidcompare/go/internal/state"
	"github.com/rs/zerolog/log"
)

// ErrStructural marks a callback that cannot be matched to our records. It is
// never retried and never partially applied.
var ErrStructural = errors.New("structural callback error")

const defaultFailureMessage = "extraction failed"

type OutcomeStatus string

const (
	OutcomeApplied    OutcomeStatus = "applied"
	OutcomeFailed     OutcomeStatus = "failed"
	OutcomeSuperseded OutcomeStatus = "superseded"
	// OutcomeProtected: the document was verified or manually reviewed and
	// the delivery was not applied.
	OutcomeProtected OutcomeStatus = "protected"
	// OutcomeRetained: a failure arrived for a document that already holds a
	// successful result; only the attempt was recorded.
	OutcomeRetained OutcomeStatus = "retained"
)

type Outcome struct {
	DocumentID string                 `json:"document_id"`
	BidID      string                 `json:"bid_id"`
	Status     OutcomeStatus          `json:"status"`
	Document   models.DocumentStatus  `json:"document_status,omitempty"`
	Confidence models.ConfidenceLevel `json:"confidence_level,omitempty"`
	Error      string                 `json:"error,omitempty"`
}

type Report struct {
	RequestID         string    `json:"request_id"`
	ProjectID         string    `json:"project_id"`
	Outcomes          []Outcome `json:"outcomes"`
	Applied           int       `json:"applied"`
	Failed            int       `json:"failed"`
	QuestionsInserted int       `json:"questions_inserted"`
	FaqsInserted      int       `json:"faqs_inserted"`
}

type Normalizer struct {
	store state.Store
}

func New(store state.Store) *Normalizer {
	return &Normalizer{store: store}
}

type resolved struct {
	result *extraction.DocumentResult
	doc    *models.Document
	bid    *models.Bid
	stale  bool
}

// Apply makes the stored bids reflect a verified callback. Every result is
// resolved to its document and bid before anything is written, so an unknown
// document or a cross-project reference rejects the whole callback with no
// writes at all.
func (n *Normalizer) Apply(ctx context.Context, cb *extraction.Callback) (*Report, error) {
	batch, err := n.store.GetBatch(ctx, cb.RequestID)
	if err != nil {
		if errors.Is(err, state.ErrNotFound) {
			return nil, fmt.Errorf("%w: unknown request %s", ErrStructural, cb.RequestID)
		}
		return nil, err
	}

	targets, err := n.resolve(ctx, batch, cb)
	if err != nil {
		return nil, err
	}

	report := &Report{RequestID: batch.RequestID, ProjectID: batch.ProjectID}

	if len(cb.Results) == 0 && cb.Status == extraction.CallbackStatusFailed {
		if err := n.failBatch(ctx, batch, cb.Error, report); err != nil {
			return report, err
		}
		return report, nil
	}

	for _, t := range targets {
		var outcome Outcome
		switch {
		case t.stale:
			outcome = Outcome{DocumentID: t.doc.ID, BidID: t.bid.ID, Status: OutcomeSuperseded}
			log.Warn().
				Str("requestID", batch.RequestID).
				Str("documentID", t.doc.ID).
				Msg("Ignoring result for a document that was re-dispatched")
		case t.result.Failed():
			outcome = n.fail(ctx, t, failureMessage(t.result.Error))
		default:
			outcome = n.applySuccess(ctx, t)
		}

		switch outcome.Status {
		case OutcomeApplied:
			report.Applied++
		case OutcomeFailed:
			report.Failed++
		}
		report.Outcomes = append(report.Outcomes, outcome)
	}

	if report.Applied > 0 {
		n.insertArtifacts(ctx, batch, cb, targets, report)
	}

	log.Info().
		Str("requestID", batch.RequestID).
		Str("projectID", batch.ProjectID).
		Int("applied", report.Applied).
		Int("failed", report.Failed).
		Msg("Callback normalized")

	return report, nil
}

func (n *Normalizer) resolve(ctx context.Context, batch *models.Batch, cb *extraction.Callback) ([]*resolved, error) {
	targets := make([]*resolved, 0, len(cb.Results))
	for i := range cb.Results {
		result := &cb.Results[i]

		doc, err := n.store.GetDocument(ctx, result.DocumentID)
		if err != nil {
			if errors.Is(err, state.ErrNotFound) {
				return nil, fmt.Errorf("%w: unknown document %s", ErrStructural, result.DocumentID)
			}
			return nil, err
		}
		if doc.ProjectID != batch.ProjectID {
			return nil, fmt.Errorf("%w: document %s does not belong to project %s", ErrStructural, doc.ID, batch.ProjectID)
		}

		bid, err := n.store.GetBid(ctx, doc.BidID)
		if err != nil {
			if errors.Is(err, state.ErrNotFound) {
				return nil, fmt.Errorf("%w: document %s has no bid", ErrStructural, doc.ID)
			}
			return nil, err
		}
		if bid.ProjectID != batch.ProjectID {
			return nil, fmt.Errorf("%w: bid %s does not belong to project %s", ErrStructural, bid.ID, batch.ProjectID)
		}

		stale := doc.BatchRequestID == nil || *doc.BatchRequestID != batch.RequestID
		targets = append(targets, &resolved{result: result, doc: doc, bid: bid, stale: stale})
	}
	return targets, nil
}

func (n *Normalizer) applySuccess(ctx context.Context, t *resolved) Outcome {
	r := t.result
	overall := r.OverallConfidence.LevelOr(models.ConfidenceLow)
	name := displayName(r.Contractor, t.doc.FileName)

	docStatus := models.DocumentStatusExtracted
	if overall == models.ConfidenceLow {
		docStatus = models.DocumentStatusReviewNeeded
	}

	err := n.store.RunInTx(ctx, func(ctx context.Context, tx state.Store) error {
		level := overall
		if err := tx.SetDocumentResult(ctx, t.doc.ID, docStatus, &level, nil); err != nil {
			return err
		}
		if err := tx.CompleteBid(ctx, t.bid.ID, &name, overall); err != nil {
			return err
		}
		if err := tx.UpsertBidScope(ctx, mapScope(t.bid.ID, r, overall)); err != nil {
			return err
		}
		if err := tx.UpsertBidContractor(ctx, mapContractor(t.bid.ID, r.Contractor, name, overall)); err != nil {
			return err
		}
		return tx.ReplaceBidEquipment(ctx, t.bid.ID, mapEquipment(r.Equipment, overall))
	})
	if errors.Is(err, state.ErrConflict) {
		log.Info().
			Str("documentID", t.doc.ID).
			Str("bidID", t.bid.ID).
			Msg("Keeping reviewed document; extraction result not applied")
		return Outcome{DocumentID: t.doc.ID, BidID: t.bid.ID, Status: OutcomeProtected, Document: t.doc.Status}
	}
	if err != nil {
		log.Error().
			Err(err).
			Str("documentID", t.doc.ID).
			Str("bidID", t.bid.ID).
			Msg("Failed to apply extraction result")
		return n.fail(ctx, t, fmt.Sprintf("failed to store extraction result: %v", err))
	}

	log.Debug().
		Str("documentID", t.doc.ID).
		Str("bidID", t.bid.ID).
		Str("confidence", string(overall)).
		Int("equipment", len(r.Equipment)).
		Msg("Extraction result applied")

	return Outcome{
		DocumentID: t.doc.ID,
		BidID:      t.bid.ID,
		Status:     OutcomeApplied,
		Document:   docStatus,
		Confidence: overall,
	}
}

// fail converges a bid and its document to failed. It runs in its own
// transaction so it still lands when the apply transaction rolled back. A
// document that already holds a successful result or a review keeps it; the
// bid only records the attempt.
func (n *Normalizer) fail(ctx context.Context, t *resolved, msg string) Outcome {
	outcome := Outcome{
		DocumentID: t.doc.ID,
		BidID:      t.bid.ID,
		Status:     OutcomeFailed,
		Document:   models.DocumentStatusFailed,
		Error:      msg,
	}

	var moved bool
	err := n.store.RunInTx(ctx, func(ctx context.Context, tx state.Store) error {
		var err error
		moved, err = tx.FailDocument(ctx, t.doc.ID, msg)
		if err != nil {
			return err
		}
		if !moved {
			return tx.RecordBidAttempt(ctx, t.bid.ID, msg)
		}
		return tx.FailBid(ctx, t.bid.ID, msg)
	})
	if err != nil {
		log.Error().
			Err(err).
			Str("documentID", t.doc.ID).
			Str("bidID", t.bid.ID).
			Msg("Failed to record extraction failure")
		outcome.Error = errors.Join(errors.New(msg), err).Error()
		return outcome
	}
	if !moved {
		log.Warn().
			Str("documentID", t.doc.ID).
			Str("bidID", t.bid.ID).
			Str("reason", msg).
			Msg("Ignoring failure for a document that already has a result")
		outcome.Status = OutcomeRetained
		outcome.Document = t.doc.Status
	}
	return outcome
}

// failBatch handles a callback that reports the whole batch failed without
// per-document results.
func (n *Normalizer) failBatch(ctx context.Context, batch *models.Batch, reason string, report *Report) error {
	docs, err := n.store.ListDocumentsByBatch(ctx, batch.RequestID)
	if err != nil {
		return err
	}

	msg := failureMessage(reason)
	for _, doc := range docs {
		if doc.Status != models.DocumentStatusProcessing {
			continue
		}
		outcome := n.fail(ctx, &resolved{doc: doc, bid: &models.Bid{ID: doc.BidID}}, msg)
		if outcome.Status == OutcomeFailed {
			report.Failed++
		}
		report.Outcomes = append(report.Outcomes, outcome)
	}

	log.Warn().
		Str("requestID", batch.RequestID).
		Str("reason", msg).
		Int("documents", report.Failed).
		Msg("Extraction batch failed")
	return nil
}

// insertArtifacts stores generated questions and FAQs. They are additive
// side artifacts, so a failure here is logged and does not fail the callback.
func (n *Normalizer) insertArtifacts(ctx context.Context, batch *models.Batch, cb *extraction.Callback, targets []*resolved, report *Report) {
	bidByDocument := make(map[string]string, len(targets))
	for _, t := range targets {
		if !t.stale {
			bidByDocument[t.doc.ID] = t.bid.ID
		}
	}

	var questions []*models.ContractorQuestion
	seen := make(map[string]struct{})
	add := func(q extraction.Question, bidID string) {
		text := strings.TrimSpace(q.Question)
		if text == "" {
			return
		}
		key := artifactKey(text)
		if _, dup := seen[bidID+"/"+key]; dup {
			return
		}
		seen[bidID+"/"+key] = struct{}{}
		questions = append(questions, &models.ContractorQuestion{
			ProjectID:   batch.ProjectID,
			BidID:       bidID,
			QuestionKey: key,
			Question:    text,
			Category:    nonEmpty(q.Category),
			Priority:    nonEmpty(q.Priority),
			RequestID:   batch.RequestID,
		})
	}

	for _, t := range targets {
		if t.stale || t.result.Failed() {
			continue
		}
		for _, q := range t.result.Questions {
			add(q, t.bid.ID)
		}
	}
	for _, q := range cb.Questions {
		add(q, bidByDocument[q.DocumentID])
	}

	var faqs []*models.Faq
	seenFaq := make(map[string]struct{})
	for _, f := range cb.Faqs {
		question := strings.TrimSpace(f.Question)
		answer := strings.TrimSpace(f.Answer)
		if question == "" || answer == "" {
			continue
		}
		key := artifactKey(question)
		if _, dup := seenFaq[key]; dup {
			continue
		}
		seenFaq[key] = struct{}{}
		faqs = append(faqs, &models.Faq{
			ProjectID: batch.ProjectID,
			FaqKey:    key,
			Question:  question,
			Answer:    answer,
			Category:  nonEmpty(f.Category),
			RequestID: batch.RequestID,
		})
	}

	inserted, err := n.store.InsertQuestions(ctx, questions)
	if err != nil {
		log.Error().Err(err).Str("requestID", batch.RequestID).Msg("Failed to store contractor questions")
	}
	report.QuestionsInserted = inserted

	inserted, err = n.store.InsertFaqs(ctx, faqs)
	if err != nil {
		log.Error().Err(err).Str("requestID", batch.RequestID).Msg("Failed to store FAQs")
	}
	report.FaqsInserted = inserted
}

func failureMessage(msg string) string {
	msg = strings.TrimSpace(msg)
	if msg == "" {
		return defaultFailureMessage
	}
	return msg
}
