// Package statetest provides an in-memory SQLite store and fixtures for tests
// in other packages.
package statetest

import (
	"context"
	"testing"

	"github.com/blagoySimandov/bidcompare/go/internal/db"
	"github.com/blagoySimandov/bidcompare/go/internal/models"
	"github.com/blagoySimandov/bidcompare/go/internal/state"
	"github.com/google/uuid"
)

func NewStore(t testing.TB) *state.BunStore {
	t.Helper()

	bunDB, err := db.NewBunSQLiteClient(":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	store, err := state.NewBunStore(context.Background(), bunDB)
	if err != nil {
		t.Fatalf("init store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func Project(t testing.TB, store state.Store, userID string, status models.ProjectStatus) *models.Project {
	t.Helper()

	project := &models.Project{UserID: userID, Name: "Test house", Status: status}
	if err := store.CreateProject(context.Background(), project); err != nil {
		t.Fatalf("create project: %v", err)
	}
	return project
}

// Document creates a bid stub and its document in the given status.
func Document(t testing.TB, store state.Store, project *models.Project, fileName string, status models.DocumentStatus) *models.Document {
	t.Helper()
	ctx := context.Background()

	docID := uuid.New().String()
	bid := &models.Bid{ProjectID: project.ID, DocumentID: docID, Status: models.BidStatusPending}
	if err := store.CreateBid(ctx, bid); err != nil {
		t.Fatalf("create bid: %v", err)
	}
	doc := &models.Document{
		ID:            docID,
		ProjectID:     project.ID,
		BidID:         bid.ID,
		UserID:        project.UserID,
		FileName:      fileName,
		StoragePath:   "projects/" + project.ID + "/" + fileName,
		FileSizeBytes: 1024,
		PageCount:     2,
		Status:        status,
	}
	if err := store.CreateDocument(ctx, doc); err != nil {
		t.Fatalf("create document: %v", err)
	}
	return doc
}

// Dispatched creates a batch row and moves the documents into processing
// under it, the way a successful dispatch leaves them.
func Dispatched(t testing.TB, store state.Store, project *models.Project, requestID string, docs ...*models.Document) *models.Batch {
	t.Helper()
	ctx := context.Background()

	batch := &models.Batch{
		RequestID:      requestID,
		ProjectID:      project.ID,
		UserID:         project.UserID,
		DocumentCount:  len(docs),
		Priorities:     models.DefaultPriorities(),
		Status:         models.BatchStatusDispatched,
		PreviousStatus: project.Status,
	}
	if err := store.CreateBatch(ctx, batch); err != nil {
		t.Fatalf("create batch: %v", err)
	}

	ids := make([]string, 0, len(docs))
	bidIDs := make([]string, 0, len(docs))
	for _, d := range docs {
		ids = append(ids, d.ID)
		bidIDs = append(bidIDs, d.BidID)
	}
	if err := store.MarkDocumentsProcessing(ctx, ids, requestID, batch.CreatedAt); err != nil {
		t.Fatalf("mark processing: %v", err)
	}
	if err := store.MarkBidsProcessing(ctx, bidIDs); err != nil {
		t.Fatalf("mark bids processing: %v", err)
	}
	return batch
}
