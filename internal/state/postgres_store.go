package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/blagoySimandov/bidcompare/go/internal/db"
	"github.com/blagoySimandov/bidcompare/go/internal/models"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// BunStore implements Store on top of bun. The same code runs on PostgreSQL
// in production and on SQLite for local runs and tests.
type BunStore struct {
	db   bun.IDB
	root *bun.DB
}

func NewPostgresStore(connectionString string) (*BunStore, error) {
	return NewBunStore(context.Background(), db.NewBunPostgresClient(connectionString))
}

func NewBunStore(ctx context.Context, bunDB *bun.DB) (*BunStore, error) {
	store := &BunStore{db: bunDB, root: bunDB}

	if err := store.InitializeDatabase(ctx); err != nil {
		bunDB.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return store, nil
}

var scopeUpdateColumns = []string{
	"total_bid_amount", "equipment_cost", "labor_cost", "materials_cost", "permit_cost",
	"rebates_estimated", "deposit_required", "deposit_percentage", "financing_offered", "financing_terms",
	"labor_warranty_years", "equipment_warranty_years", "compressor_warranty_years", "warranty_details",
	"estimated_days", "start_date_available", "bid_date", "valid_until",
	"permits_included", "disposal_included", "electrical_included", "ductwork_included",
	"thermostat_included", "load_calc_included", "commissioning_included",
	"inclusions", "exclusions", "confidence_level", "updated_at",
}

var contractorUpdateColumns = []string{
	"name", "company", "contact_name", "phone", "email", "website", "address",
	"license_number", "license_state", "insured", "years_in_business", "certifications",
	"rating", "review_count", "confidence_level", "updated_at",
}

var scoreUpdateColumns = []string{
	"overall_score", "price_score", "warranty_score", "efficiency_score",
	"reputation_score", "timeline_score", "rank", "computed_at",
}

func now() time.Time {
	return time.Now().UTC()
}

func notFound(err error, what, id string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %s: %w", what, id, ErrNotFound)
	}
	return fmt.Errorf("failed to get %s: %w", what, err)
}

func (s *BunStore) RunInTx(ctx context.Context, fn func(ctx context.Context, tx Store) error) error {
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		return fn(ctx, &BunStore{db: tx})
	})
}

func (s *BunStore) CreateProject(ctx context.Context, project *models.Project) error {
	if project.ID == "" {
		project.ID = uuid.New().String()
	}
	if project.Status == "" {
		project.Status = models.ProjectStatusDraft
	}
	t := now()
	project.CreatedAt = t
	project.UpdatedAt = t

	if _, err := s.db.NewInsert().Model(project).Exec(ctx); err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}
	return nil
}

func (s *BunStore) GetProject(ctx context.Context, projectID string) (*models.Project, error) {
	var project models.Project
	err := s.db.NewSelect().
		Model(&project).
		Where("id = ?", projectID).
		Scan(ctx)
	if err != nil {
		return nil, notFound(err, "project", projectID)
	}
	return &project, nil
}

func (s *BunStore) SetProjectStatus(ctx context.Context, projectID string, status models.ProjectStatus) error {
	_, err := s.db.NewUpdate().
		Model((*models.Project)(nil)).
		Set("status = ?", status).
		Set("updated_at = ?", now()).
		Where("id = ?", projectID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to set project status: %w", err)
	}
	return nil
}

func (s *BunStore) TransitionProjectStatus(ctx context.Context, projectID string, from []models.ProjectStatus, to models.ProjectStatus) (bool, error) {
	res, err := s.db.NewUpdate().
		Model((*models.Project)(nil)).
		Set("status = ?", to).
		Set("updated_at = ?", now()).
		Where("id = ?", projectID).
		Where("status IN (?)", bun.In(from)).
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to transition project status: %w", err)
	}
	return affectedOne(res)
}

func (s *BunStore) IncrementRerunCount(ctx context.Context, projectID string) error {
	_, err := s.db.NewUpdate().
		Model((*models.Project)(nil)).
		Set("rerun_count = rerun_count + 1").
		Set("updated_at = ?", now()).
		Where("id = ?", projectID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to increment rerun count: %w", err)
	}
	return nil
}

// ClaimNotification sets notification_sent_at only if it is still NULL and
// reports whether this caller won the claim.
func (s *BunStore) ClaimNotification(ctx context.Context, projectID string, at time.Time) (bool, error) {
	res, err := s.db.NewUpdate().
		Model((*models.Project)(nil)).
		Set("notification_sent_at = ?", at.UTC()).
		Set("updated_at = ?", now()).
		Where("id = ?", projectID).
		Where("notification_sent_at IS NULL").
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to claim notification: %w", err)
	}
	return affectedOne(res)
}

func (s *BunStore) CreateDocument(ctx context.Context, doc *models.Document) error {
	if doc.ID == "" {
		doc.ID = uuid.New().String()
	}
	if doc.Status == "" {
		doc.Status = models.DocumentStatusUploaded
	}
	t := now()
	doc.CreatedAt = t
	doc.UpdatedAt = t

	if _, err := s.db.NewInsert().Model(doc).Exec(ctx); err != nil {
		return fmt.Errorf("failed to create document: %w", err)
	}
	return nil
}

func (s *BunStore) GetDocument(ctx context.Context, documentID string) (*models.Document, error) {
	var doc models.Document
	err := s.db.NewSelect().
		Model(&doc).
		Where("id = ?", documentID).
		Scan(ctx)
	if err != nil {
		return nil, notFound(err, "document", documentID)
	}
	return &doc, nil
}

func (s *BunStore) GetDocuments(ctx context.Context, documentIDs []string) ([]*models.Document, error) {
	docs := []*models.Document{}
	if len(documentIDs) == 0 {
		return docs, nil
	}
	err := s.db.NewSelect().
		Model(&docs).
		Where("id IN (?)", bun.In(documentIDs)).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get documents: %w", err)
	}
	return docs, nil
}

func (s *BunStore) ListDocumentsByProject(ctx context.Context, projectID string) ([]*models.Document, error) {
	docs := []*models.Document{}
	err := s.db.NewSelect().
		Model(&docs).
		Where("project_id = ?", projectID).
		Order("created_at ASC", "id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	return docs, nil
}

func (s *BunStore) ListDocumentsByBatch(ctx context.Context, requestID string) ([]*models.Document, error) {
	docs := []*models.Document{}
	err := s.db.NewSelect().
		Model(&docs).
		Where("batch_request_id = ?", requestID).
		Order("created_at ASC", "id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list batch documents: %w", err)
	}
	return docs, nil
}

func (s *BunStore) MarkDocumentsProcessing(ctx context.Context, documentIDs []string, requestID string, at time.Time) error {
	_, err := s.db.NewUpdate().
		Model((*models.Document)(nil)).
		Set("status = ?", models.DocumentStatusProcessing).
		Set("batch_request_id = ?", requestID).
		Set("processing_started_at = ?", at.UTC()).
		Set("processed_at = NULL").
		Set("error_message = NULL").
		Set("updated_at = ?", now()).
		Where("id IN (?)", bun.In(documentIDs)).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to mark documents processing: %w", err)
	}
	return nil
}

// reviewedDocument matches documents a person has signed off on. Callbacks
// never overwrite them.
const reviewedDocument = "(status = ? OR COALESCE(confidence_level, '') = ?)"

var succeededDocumentStatuses = []models.DocumentStatus{
	models.DocumentStatusExtracted,
	models.DocumentStatusReviewNeeded,
	models.DocumentStatusVerified,
}

// SetDocumentResult records an extraction outcome. A verified or manually
// reviewed document is left as it is and ErrConflict is returned.
func (s *BunStore) SetDocumentResult(ctx context.Context, documentID string, status models.DocumentStatus, level *models.ConfidenceLevel, errMsg *string) error {
	t := now()
	res, err := s.db.NewUpdate().
		Model((*models.Document)(nil)).
		Set("status = ?", status).
		Set("confidence_level = ?", level).
		Set("error_message = ?", errMsg).
		Set("processed_at = ?", t).
		Set("updated_at = ?", t).
		Where("id = ?", documentID).
		Where("NOT "+reviewedDocument, models.DocumentStatusVerified, models.ConfidenceManual).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to set document result: %w", err)
	}
	ok, err := affectedOne(res)
	if err != nil {
		return err
	}
	if !ok {
		return s.conflictOrNotFound(ctx, documentID)
	}
	return nil
}

// FailDocument moves a document to failed unless it already holds a
// successful result or a review. It reports whether the document moved.
func (s *BunStore) FailDocument(ctx context.Context, documentID, errMsg string) (bool, error) {
	t := now()
	res, err := s.db.NewUpdate().
		Model((*models.Document)(nil)).
		Set("status = ?", models.DocumentStatusFailed).
		Set("confidence_level = NULL").
		Set("error_message = ?", errMsg).
		Set("processed_at = ?", t).
		Set("updated_at = ?", t).
		Where("id = ?", documentID).
		Where("status NOT IN (?)", bun.In(succeededDocumentStatuses)).
		Where("NOT "+reviewedDocument, models.DocumentStatusVerified, models.ConfidenceManual).
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to mark document failed: %w", err)
	}
	ok, err := affectedOne(res)
	if err != nil {
		return false, err
	}
	if ok {
		return true, nil
	}
	if err := s.conflictOrNotFound(ctx, documentID); !errors.Is(err, ErrConflict) {
		return false, err
	}
	return false, nil
}

func (s *BunStore) conflictOrNotFound(ctx context.Context, documentID string) error {
	exists, err := s.db.NewSelect().
		Model((*models.Document)(nil)).
		Where("id = ?", documentID).
		Exists(ctx)
	if err != nil {
		return fmt.Errorf("failed to check document: %w", err)
	}
	if !exists {
		return fmt.Errorf("document %s: %w", documentID, ErrNotFound)
	}
	return fmt.Errorf("document %s: %w", documentID, ErrConflict)
}

// RevertDispatch returns the documents of a rejected batch, and their bids,
// to their pre-dispatch state. Documents a callback already moved past
// processing are left alone.
func (s *BunStore) RevertDispatch(ctx context.Context, requestID, errMsg string) (int, error) {
	var reverted int
	err := s.RunInTx(ctx, func(ctx context.Context, tx Store) error {
		txs := tx.(*BunStore)

		var bidIDs []string
		err := txs.db.NewSelect().
			Model((*models.Document)(nil)).
			Column("bid_id").
			Where("batch_request_id = ?", requestID).
			Where("status = ?", models.DocumentStatusProcessing).
			Scan(ctx, &bidIDs)
		if err != nil {
			return fmt.Errorf("failed to find dispatched documents: %w", err)
		}
		if len(bidIDs) == 0 {
			return nil
		}

		t := now()
		res, err := txs.db.NewUpdate().
			Model((*models.Document)(nil)).
			Set("status = ?", models.DocumentStatusUploaded).
			Set("processing_started_at = NULL").
			Set("error_message = ?", errMsg).
			Set("updated_at = ?", t).
			Where("batch_request_id = ?", requestID).
			Where("status = ?", models.DocumentStatusProcessing).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to revert documents: %w", err)
		}
		n, _ := res.RowsAffected()
		reverted = int(n)

		_, err = txs.db.NewUpdate().
			Model((*models.Bid)(nil)).
			Set("status = ?", models.BidStatusPending).
			Set("last_error = ?", errMsg).
			Set("updated_at = ?", t).
			Where("id IN (?)", bun.In(bidIDs)).
			Where("status = ?", models.BidStatusProcessing).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to revert bids: %w", err)
		}
		return nil
	})
	return reverted, err
}

func (s *BunStore) CreateBid(ctx context.Context, bid *models.Bid) error {
	if bid.ID == "" {
		bid.ID = uuid.New().String()
	}
	if bid.Status == "" {
		bid.Status = models.BidStatusPending
	}
	t := now()
	bid.CreatedAt = t
	bid.UpdatedAt = t

	if _, err := s.db.NewInsert().Model(bid).Exec(ctx); err != nil {
		return fmt.Errorf("failed to create bid: %w", err)
	}
	return nil
}

func (s *BunStore) GetBid(ctx context.Context, bidID string) (*models.Bid, error) {
	var bid models.Bid
	err := s.db.NewSelect().
		Model(&bid).
		Where("id = ?", bidID).
		Scan(ctx)
	if err != nil {
		return nil, notFound(err, "bid", bidID)
	}
	return &bid, nil
}

func (s *BunStore) ListBidsByProject(ctx context.Context, projectID string) ([]*models.Bid, error) {
	bids := []*models.Bid{}
	err := s.db.NewSelect().
		Model(&bids).
		Where("project_id = ?", projectID).
		Order("created_at ASC", "id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list bids: %w", err)
	}
	return bids, nil
}

func (s *BunStore) MarkBidsProcessing(ctx context.Context, bidIDs []string) error {
	if len(bidIDs) == 0 {
		return nil
	}
	_, err := s.db.NewUpdate().
		Model((*models.Bid)(nil)).
		Set("status = ?", models.BidStatusProcessing).
		Set("updated_at = ?", now()).
		Where("id IN (?)", bun.In(bidIDs)).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to mark bids processing: %w", err)
	}
	return nil
}

func (s *BunStore) CompleteBid(ctx context.Context, bidID string, contractorName *string, level models.ConfidenceLevel) error {
	res, err := s.db.NewUpdate().
		Model((*models.Bid)(nil)).
		Set("status = ?", models.BidStatusCompleted).
		Set("contractor_name = ?", contractorName).
		Set("confidence_level = ?", level).
		Set("processing_attempts = processing_attempts + 1").
		Set("last_error = NULL").
		Set("updated_at = ?", now()).
		Where("id = ?", bidID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to complete bid: %w", err)
	}
	if ok, err := affectedOne(res); err != nil || !ok {
		return notFoundOr(err, "bid", bidID)
	}
	return nil
}

func (s *BunStore) FailBid(ctx context.Context, bidID, errMsg string) error {
	res, err := s.db.NewUpdate().
		Model((*models.Bid)(nil)).
		Set("status = ?", models.BidStatusFailed).
		Set("processing_attempts = processing_attempts + 1").
		Set("last_error = ?", errMsg).
		Set("updated_at = ?", now()).
		Where("id = ?", bidID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to mark bid failed: %w", err)
	}
	if ok, err := affectedOne(res); err != nil || !ok {
		return notFoundOr(err, "bid", bidID)
	}
	return nil
}

// RecordBidAttempt counts a delivery that did not change the bid's outcome.
func (s *BunStore) RecordBidAttempt(ctx context.Context, bidID, errMsg string) error {
	res, err := s.db.NewUpdate().
		Model((*models.Bid)(nil)).
		Set("processing_attempts = processing_attempts + 1").
		Set("last_error = ?", errMsg).
		Set("updated_at = ?", now()).
		Where("id = ?", bidID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to record bid attempt: %w", err)
	}
	if ok, err := affectedOne(res); err != nil || !ok {
		return notFoundOr(err, "bid", bidID)
	}
	return nil
}

func (s *BunStore) UpsertBidScope(ctx context.Context, scope *models.BidScope) error {
	if scope.ID == "" {
		scope.ID = uuid.New().String()
	}
	t := now()
	scope.CreatedAt = t
	scope.UpdatedAt = t

	query := s.db.NewInsert().
		Model(scope).
		On("CONFLICT (bid_id) DO UPDATE")
	for _, col := range scopeUpdateColumns {
		query = query.Set("? = EXCLUDED.?", bun.Ident(col), bun.Ident(col))
	}

	if _, err := query.Exec(ctx); err != nil {
		return fmt.Errorf("failed to upsert bid scope: %w", err)
	}
	return nil
}

func (s *BunStore) UpsertBidContractor(ctx context.Context, contractor *models.BidContractor) error {
	if contractor.ID == "" {
		contractor.ID = uuid.New().String()
	}
	t := now()
	contractor.CreatedAt = t
	contractor.UpdatedAt = t

	query := s.db.NewInsert().
		Model(contractor).
		On("CONFLICT (bid_id) DO UPDATE")
	for _, col := range contractorUpdateColumns {
		query = query.Set("? = EXCLUDED.?", bun.Ident(col), bun.Ident(col))
	}

	if _, err := query.Exec(ctx); err != nil {
		return fmt.Errorf("failed to upsert bid contractor: %w", err)
	}
	return nil
}

// ReplaceBidEquipment deletes every equipment row of the bid and inserts the
// given set. Equipment lists are always whole-document, never incremental.
func (s *BunStore) ReplaceBidEquipment(ctx context.Context, bidID string, equipment []*models.BidEquipment) error {
	_, err := s.db.NewDelete().
		Model((*models.BidEquipment)(nil)).
		Where("bid_id = ?", bidID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete bid equipment: %w", err)
	}

	if len(equipment) == 0 {
		return nil
	}

	t := now()
	for i, item := range equipment {
		if item.ID == "" {
			item.ID = uuid.New().String()
		}
		item.BidID = bidID
		item.Position = i
		item.CreatedAt = t
	}

	if _, err := s.db.NewInsert().Model(&equipment).Exec(ctx); err != nil {
		return fmt.Errorf("failed to insert bid equipment: %w", err)
	}
	return nil
}

func (s *BunStore) GetBidScope(ctx context.Context, bidID string) (*models.BidScope, error) {
	var scope models.BidScope
	err := s.db.NewSelect().
		Model(&scope).
		Where("bid_id = ?", bidID).
		Scan(ctx)
	if err != nil {
		return nil, notFound(err, "bid scope", bidID)
	}
	return &scope, nil
}

func (s *BunStore) GetBidContractor(ctx context.Context, bidID string) (*models.BidContractor, error) {
	var contractor models.BidContractor
	err := s.db.NewSelect().
		Model(&contractor).
		Where("bid_id = ?", bidID).
		Scan(ctx)
	if err != nil {
		return nil, notFound(err, "bid contractor", bidID)
	}
	return &contractor, nil
}

func (s *BunStore) ListBidEquipment(ctx context.Context, bidID string) ([]*models.BidEquipment, error) {
	equipment := []*models.BidEquipment{}
	err := s.db.NewSelect().
		Model(&equipment).
		Where("bid_id = ?", bidID).
		Order("position ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list bid equipment: %w", err)
	}
	return equipment, nil
}

func (s *BunStore) UpsertBidScore(ctx context.Context, score *models.BidScore) error {
	if score.ID == "" {
		score.ID = uuid.New().String()
	}
	if score.ComputedAt.IsZero() {
		score.ComputedAt = now()
	}

	query := s.db.NewInsert().
		Model(score).
		On("CONFLICT (bid_id) DO UPDATE")
	for _, col := range scoreUpdateColumns {
		query = query.Set("? = EXCLUDED.?", bun.Ident(col), bun.Ident(col))
	}

	if _, err := query.Exec(ctx); err != nil {
		return fmt.Errorf("failed to upsert bid score: %w", err)
	}
	return nil
}

func (s *BunStore) ListBidScores(ctx context.Context, projectID string) ([]*models.BidScore, error) {
	scores := []*models.BidScore{}
	err := s.db.NewSelect().
		Model(&scores).
		Where("project_id = ?", projectID).
		Order("rank ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list bid scores: %w", err)
	}
	return scores, nil
}

func (s *BunStore) CreateBatch(ctx context.Context, batch *models.Batch) error {
	batch.CreatedAt = now()
	if _, err := s.db.NewInsert().Model(batch).Exec(ctx); err != nil {
		return fmt.Errorf("failed to create batch: %w", err)
	}
	return nil
}

func (s *BunStore) GetBatch(ctx context.Context, requestID string) (*models.Batch, error) {
	var batch models.Batch
	err := s.db.NewSelect().
		Model(&batch).
		Where("request_id = ?", requestID).
		Scan(ctx)
	if err != nil {
		return nil, notFound(err, "batch", requestID)
	}
	return &batch, nil
}

func (s *BunStore) LatestBatch(ctx context.Context, projectID string) (*models.Batch, error) {
	var batch models.Batch
	err := s.db.NewSelect().
		Model(&batch).
		Where("project_id = ?", projectID).
		Where("status != ?", models.BatchStatusDispatchFailed).
		Order("created_at DESC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, notFound(err, "batch for project", projectID)
	}
	return &batch, nil
}

func (s *BunStore) MarkBatchDispatched(ctx context.Context, requestID string, externalJobID *string) error {
	_, err := s.db.NewUpdate().
		Model((*models.Batch)(nil)).
		Set("external_job_id = ?", externalJobID).
		Where("request_id = ?", requestID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to record batch dispatch: %w", err)
	}
	return nil
}

func (s *BunStore) FailBatchDispatch(ctx context.Context, requestID, errMsg string) error {
	_, err := s.db.NewUpdate().
		Model((*models.Batch)(nil)).
		Set("status = ?", models.BatchStatusDispatchFailed).
		Set("error = ?", errMsg).
		Set("completed_at = ?", now()).
		Where("request_id = ?", requestID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to mark batch dispatch failed: %w", err)
	}
	return nil
}

// FinishBatch records the final batch status once; later calls are no-ops.
func (s *BunStore) FinishBatch(ctx context.Context, requestID string, status models.BatchStatus, at time.Time) (bool, error) {
	res, err := s.db.NewUpdate().
		Model((*models.Batch)(nil)).
		Set("status = ?", status).
		Set("completed_at = ?", at.UTC()).
		Where("request_id = ?", requestID).
		Where("status = ?", models.BatchStatusDispatched).
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to finish batch: %w", err)
	}
	return affectedOne(res)
}

func (s *BunStore) InsertQuestions(ctx context.Context, questions []*models.ContractorQuestion) (int, error) {
	if len(questions) == 0 {
		return 0, nil
	}
	t := now()
	for _, q := range questions {
		if q.ID == "" {
			q.ID = uuid.New().String()
		}
		q.CreatedAt = t
	}

	res, err := s.db.NewInsert().
		Model(&questions).
		On("CONFLICT (project_id, bid_id, question_key) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to insert contractor questions: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

func (s *BunStore) InsertFaqs(ctx context.Context, faqs []*models.Faq) (int, error) {
	if len(faqs) == 0 {
		return 0, nil
	}
	t := now()
	for _, f := range faqs {
		if f.ID == "" {
			f.ID = uuid.New().String()
		}
		f.CreatedAt = t
	}

	res, err := s.db.NewInsert().
		Model(&faqs).
		On("CONFLICT (project_id, faq_key) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to insert faqs: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

func (s *BunStore) ListQuestions(ctx context.Context, projectID string) ([]*models.ContractorQuestion, error) {
	questions := []*models.ContractorQuestion{}
	err := s.db.NewSelect().
		Model(&questions).
		Where("project_id = ?", projectID).
		Order("created_at ASC", "id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list contractor questions: %w", err)
	}
	return questions, nil
}

func (s *BunStore) ListFaqs(ctx context.Context, projectID string) ([]*models.Faq, error) {
	faqs := []*models.Faq{}
	err := s.db.NewSelect().
		Model(&faqs).
		Where("project_id = ?", projectID).
		Order("created_at ASC", "id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list faqs: %w", err)
	}
	return faqs, nil
}

func (s *BunStore) Close() error {
	if s.root == nil {
		return nil
	}
	return s.root.Close()
}

func affectedOne(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n == 1, nil
}

func notFoundOr(err error, what, id string) error {
	if err != nil {
		return err
	}
	return fmt.Errorf("%s %s: %w", what, id, ErrNotFound)
}
