package state

import (
	"context"
	"errors"
	"time"

	"github.com/blagoySimandov/bidcompare/go/internal/models"
)

var (
	ErrNotFound = errors.New("not found")
	// ErrConflict means the row exists but its current state forbids the write.
	ErrConflict = errors.New("conflict")
)

type Store interface {
	// RunInTx runs fn against a store bound to a single transaction. The
	// transaction commits when fn returns nil and rolls back otherwise.
	RunInTx(ctx context.Context, fn func(ctx context.Context, tx Store) error) error

	CreateProject(ctx context.Context, project *models.Project) error
	GetProject(ctx context.Context, projectID string) (*models.Project, error)
	SetProjectStatus(ctx context.Context, projectID string, status models.ProjectStatus) error
	TransitionProjectStatus(ctx context.Context, projectID string, from []models.ProjectStatus, to models.ProjectStatus) (bool, error)
	IncrementRerunCount(ctx context.Context, projectID string) error
	ClaimNotification(ctx context.Context, projectID string, at time.Time) (bool, error)

	CreateDocument(ctx context.Context, doc *models.Document) error
	GetDocument(ctx context.Context, documentID string) (*models.Document, error)
	GetDocuments(ctx context.Context, documentIDs []string) ([]*models.Document, error)
	ListDocumentsByProject(ctx context.Context, projectID string) ([]*models.Document, error)
	ListDocumentsByBatch(ctx context.Context, requestID string) ([]*models.Document, error)
	MarkDocumentsProcessing(ctx context.Context, documentIDs []string, requestID string, at time.Time) error
	SetDocumentResult(ctx context.Context, documentID string, status models.DocumentStatus, level *models.ConfidenceLevel, errMsg *string) error
	FailDocument(ctx context.Context, documentID, errMsg string) (bool, error)
	RevertDispatch(ctx context.Context, requestID, errMsg string) (int, error)

	CreateBid(ctx context.Context, bid *models.Bid) error
	GetBid(ctx context.Context, bidID string) (*models.Bid, error)
	ListBidsByProject(ctx context.Context, projectID string) ([]*models.Bid, error)
	MarkBidsProcessing(ctx context.Context, bidIDs []string) error
	CompleteBid(ctx context.Context, bidID string, contractorName *string, level models.ConfidenceLevel) error
	FailBid(ctx context.Context, bidID, errMsg string) error
	RecordBidAttempt(ctx context.Context, bidID, errMsg string) error

	UpsertBidScope(ctx context.Context, scope *models.BidScope) error
	UpsertBidContractor(ctx context.Context, contractor *models.BidContractor) error
	ReplaceBidEquipment(ctx context.Context, bidID string, equipment []*models.BidEquipment) error
	GetBidScope(ctx context.Context, bidID string) (*models.BidScope, error)
	GetBidContractor(ctx context.Context, bidID string) (*models.BidContractor, error)
	ListBidEquipment(ctx context.Context, bidID string) ([]*models.BidEquipment, error)
	UpsertBidScore(ctx context.Context, score *models.BidScore) error
	ListBidScores(ctx context.Context, projectID string) ([]*models.BidScore, error)

	CreateBatch(ctx context.Context, batch *models.Batch) error
	GetBatch(ctx context.Context, requestID string) (*models.Batch, error)
	LatestBatch(ctx context.Context, projectID string) (*models.Batch, error)
	MarkBatchDispatched(ctx context.Context, requestID string, externalJobID *string) error
	FailBatchDispatch(ctx context.Context, requestID, errMsg string) error
	FinishBatch(ctx context.Context, requestID string, status models.BatchStatus, at time.Time) (bool, error)

	InsertQuestions(ctx context.Context, questions []*models.ContractorQuestion) (int, error)
	InsertFaqs(ctx context.Context, faqs []*models.Faq) (int, error)
	ListQuestions(ctx context.Context, projectID string) ([]*models.ContractorQuestion, error)
	ListFaqs(ctx context.Context, projectID string) ([]*models.Faq, error)

	Close() error
}
