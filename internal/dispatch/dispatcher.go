package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/blagoySimandov/bidcompare/go/internal/extraction"
	"github.com/blagoySimandov/bidcompare/go/internal/models"
	"github.com/blagoySimandov/bidcompare/go/internal/state"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

var (
	ErrForbidden      = errors.New("forbidden")
	ErrValidation     = errors.New("validation failed")
	ErrDispatchFailed = errors.New("extraction service rejected the batch")
)

const defaultSigningWorkers = 4

type URLSigner interface {
	SignedReadURL(ctx context.Context, objectName string, ttl time.Duration) (string, error)
}

type ExtractionClient interface {
	SubmitBatch(ctx context.Context, req *extraction.DispatchRequest) (*extraction.DispatchResponse, error)
}

type Options struct {
	CallbackURL    string
	SignedURLTTL   time.Duration
	SigningWorkers int
}

type Request struct {
	UserID      string
	ProjectID   string
	DocumentIDs []string
	Priorities  json.RawMessage
}

type Result struct {
	RequestID     string               `json:"request_id"`
	ProjectID     string               `json:"project_id"`
	DocumentCount int                  `json:"document_count"`
	ProjectStatus models.ProjectStatus `json:"project_status"`
	Rerun         bool                 `json:"rerun"`
	JobID         string               `json:"job_id,omitempty"`
}

// Dispatcher hands a set of uploaded documents to the extraction service as
// one batch. State is committed before the outbound call and reverted if the
// service refuses the batch.
type Dispatcher struct {
	store  state.Store
	signer URLSigner
	client ExtractionClient
	opts   Options
	now    func() time.Time
}

func New(store state.Store, signer URLSigner, client ExtractionClient, opts Options) *Dispatcher {
	if opts.SigningWorkers <= 0 {
		opts.SigningWorkers = defaultSigningWorkers
	}
	if opts.SignedURLTTL <= 0 {
		opts.SignedURLTTL = time.Hour
	}
	return &Dispatcher{
		store:  store,
		signer: signer,
		client: client,
		opts:   opts,
		now:    time.Now,
	}
}

func (d *Dispatcher) Dispatch(ctx context.Context, req Request) (*Result, error) {
	project, docs, priorities, err := d.validate(ctx, req)
	if err != nil {
		return nil, err
	}

	urls, err := d.signURLs(ctx, docs)
	if err != nil {
		return nil, err
	}

	requestID := uuid.New().String()
	rerun := false
	for _, doc := range docs {
		if doc.Status.Terminal() {
			rerun = true
			break
		}
	}

	batch := &models.Batch{
		RequestID:      requestID,
		ProjectID:      project.ID,
		UserID:         req.UserID,
		DocumentCount:  len(docs),
		Priorities:     priorities,
		Status:         models.BatchStatusDispatched,
		PreviousStatus: project.Status,
	}
	if err := d.commit(ctx, batch, docs, rerun); err != nil {
		return nil, err
	}

	payload := &extraction.DispatchRequest{
		RequestID:      requestID,
		CallbackURL:    d.opts.CallbackURL,
		ProjectID:      project.ID,
		Documents:      make([]extraction.DispatchDocument, len(docs)),
		UserPriorities: priorities,
	}
	for i, doc := range docs {
		payload.Documents[i] = extraction.DispatchDocument{
			DocumentID: doc.ID,
			FileName:   doc.FileName,
			URL:        urls[i],
		}
	}

	resp, err := d.client.SubmitBatch(ctx, payload)
	if err != nil {
		if revertErr := d.revert(ctx, batch, err); revertErr != nil {
			log.Error().Err(revertErr).Str("requestID", requestID).Msg("Failed to revert rejected dispatch")
			return nil, errors.Join(fmt.Errorf("%w: %v", ErrDispatchFailed, err), revertErr)
		}
		log.Warn().Err(err).
			Str("requestID", requestID).
			Str("projectID", project.ID).
			Msg("Extraction service rejected batch")
		return nil, fmt.Errorf("%w: %v", ErrDispatchFailed, err)
	}

	var jobID *string
	if resp != nil && resp.JobID != "" {
		jobID = &resp.JobID
	}
	if err := d.store.MarkBatchDispatched(ctx, requestID, jobID); err != nil {
		log.Warn().Err(err).Str("requestID", requestID).Msg("Failed to record external job id")
	}

	log.Info().
		Str("requestID", requestID).
		Str("projectID", project.ID).
		Int("documents", len(docs)).
		Bool("rerun", rerun).
		Msg("Batch dispatched")

	result := &Result{
		RequestID:     requestID,
		ProjectID:     project.ID,
		DocumentCount: len(docs),
		ProjectStatus: models.ProjectStatusAnalyzing,
		Rerun:         rerun,
	}
	if jobID != nil {
		result.JobID = *jobID
	}
	return result, nil
}

func (d *Dispatcher) validate(ctx context.Context, req Request) (*models.Project, []*models.Document, models.Priorities, error) {
	var none models.Priorities

	project, err := d.store.GetProject(ctx, req.ProjectID)
	if err != nil {
		return nil, nil, none, err
	}
	if project.UserID != req.UserID {
		return nil, nil, none, ErrForbidden
	}
	if !dispatchable(project.Status) {
		return nil, nil, none, fmt.Errorf("%w: project is %s", ErrValidation, project.Status)
	}

	priorities, err := models.ParsePriorities(req.Priorities)
	if err != nil {
		return nil, nil, none, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	ids := unique(req.DocumentIDs)
	if len(ids) == 0 {
		return nil, nil, none, fmt.Errorf("%w: at least one document is required", ErrValidation)
	}

	found, err := d.store.GetDocuments(ctx, ids)
	if err != nil {
		return nil, nil, none, err
	}
	byID := make(map[string]*models.Document, len(found))
	for _, doc := range found {
		byID[doc.ID] = doc
	}

	docs := make([]*models.Document, 0, len(ids))
	for _, id := range ids {
		doc, ok := byID[id]
		if !ok || doc.ProjectID != project.ID {
			return nil, nil, none, fmt.Errorf("%w: document %s does not belong to project", ErrValidation, id)
		}
		if doc.Status == models.DocumentStatusProcessing {
			return nil, nil, none, fmt.Errorf("%w: document %s is already processing", ErrValidation, id)
		}
		docs = append(docs, doc)
	}

	return project, docs, priorities, nil
}

// signURLs mints one read URL per document, bounded to SigningWorkers at a
// time. The result is index-aligned with docs.
func (d *Dispatcher) signURLs(ctx context.Context, docs []*models.Document) ([]string, error) {
	urls := make([]string, len(docs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.opts.SigningWorkers)
	for i, doc := range docs {
		g.Go(func() error {
			url, err := d.signer.SignedReadURL(gctx, doc.StoragePath, d.opts.SignedURLTTL)
			if err != nil {
				return fmt.Errorf("failed to sign url for document %s: %w", doc.ID, err)
			}
			urls[i] = url
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return urls, nil
}

func (d *Dispatcher) commit(ctx context.Context, batch *models.Batch, docs []*models.Document, rerun bool) error {
	ids := make([]string, len(docs))
	bidIDs := make([]string, len(docs))
	for i, doc := range docs {
		ids[i] = doc.ID
		bidIDs[i] = doc.BidID
	}

	err := d.store.RunInTx(ctx, func(ctx context.Context, tx state.Store) error {
		current, err := tx.GetDocuments(ctx, ids)
		if err != nil {
			return err
		}
		for _, doc := range current {
			if doc.Status == models.DocumentStatusProcessing {
				return fmt.Errorf("%w: document %s is already processing", ErrValidation, doc.ID)
			}
		}

		if err := tx.CreateBatch(ctx, batch); err != nil {
			return err
		}
		if err := tx.MarkDocumentsProcessing(ctx, ids, batch.RequestID, d.now()); err != nil {
			return err
		}
		if err := tx.MarkBidsProcessing(ctx, bidIDs); err != nil {
			return err
		}
		if err := tx.SetProjectStatus(ctx, batch.ProjectID, models.ProjectStatusAnalyzing); err != nil {
			return err
		}
		if rerun {
			return tx.IncrementRerunCount(ctx, batch.ProjectID)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrValidation) {
			return err
		}
		return fmt.Errorf("failed to commit dispatch: %w", err)
	}
	return nil
}

// revert undoes commit for a batch the extraction service never accepted.
func (d *Dispatcher) revert(ctx context.Context, batch *models.Batch, cause error) error {
	msg := "dispatch failed: " + cause.Error()
	return d.store.RunInTx(ctx, func(ctx context.Context, tx state.Store) error {
		if _, err := tx.RevertDispatch(ctx, batch.RequestID, msg); err != nil {
			return err
		}
		_, err := tx.TransitionProjectStatus(ctx, batch.ProjectID,
			[]models.ProjectStatus{models.ProjectStatusAnalyzing}, batch.PreviousStatus)
		if err != nil {
			return err
		}
		return tx.FailBatchDispatch(ctx, batch.RequestID, msg)
	})
}

func dispatchable(status models.ProjectStatus) bool {
	switch status {
	case models.ProjectStatusDraft, models.ProjectStatusCollecting,
		models.ProjectStatusAnalyzing, models.ProjectStatusComparing:
		return true
	}
	return false
}

func unique(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
