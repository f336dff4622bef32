package state_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/blagoySimandov/bidcompare/go/internal/models"
	"github.com/blagoySimandov/bidcompare/go/internal/state"
	"github.com/blagoySimandov/bidcompare/go/internal/state/statetest"
)

func strPtr(s string) *string { return &s }

func TestGetMissingReturnsErrNotFound(t *testing.T) {
	store := statetest.NewStore(t)
	ctx := context.Background()

	if _, err := store.GetProject(ctx, "missing"); !errors.Is(err, state.ErrNotFound) {
		t.Errorf("GetProject() error = %v, want ErrNotFound", err)
	}
	if _, err := store.GetDocument(ctx, "missing"); !errors.Is(err, state.ErrNotFound) {
		t.Errorf("GetDocument() error = %v, want ErrNotFound", err)
	}
	if _, err := store.GetBatch(ctx, "missing"); !errors.Is(err, state.ErrNotFound) {
		t.Errorf("GetBatch() error = %v, want ErrNotFound", err)
	}
	if err := store.FailBid(ctx, "missing", "boom"); !errors.Is(err, state.ErrNotFound) {
		t.Errorf("FailBid() error = %v, want ErrNotFound", err)
	}
}

func TestTransitionProjectStatus(t *testing.T) {
	store := statetest.NewStore(t)
	ctx := context.Background()
	project := statetest.Project(t, store, "user-1", models.ProjectStatusAnalyzing)

	from := []models.ProjectStatus{models.ProjectStatusCollecting, models.ProjectStatusAnalyzing}

	moved, err := store.TransitionProjectStatus(ctx, project.ID, from, models.ProjectStatusComparing)
	if err != nil {
		t.Fatalf("TransitionProjectStatus() error = %v", err)
	}
	if !moved {
		t.Fatal("first transition should apply")
	}

	moved, err = store.TransitionProjectStatus(ctx, project.ID, from, models.ProjectStatusComparing)
	if err != nil {
		t.Fatalf("TransitionProjectStatus() error = %v", err)
	}
	if moved {
		t.Error("second transition should be a no-op")
	}

	got, _ := store.GetProject(ctx, project.ID)
	if got.Status != models.ProjectStatusComparing {
		t.Errorf("status = %s, want comparing", got.Status)
	}
}

func TestClaimNotificationOnlyOnce(t *testing.T) {
	store := statetest.NewStore(t)
	ctx := context.Background()
	project := statetest.Project(t, store, "user-1", models.ProjectStatusComparing)

	first, err := store.ClaimNotification(ctx, project.ID, time.Now())
	if err != nil {
		t.Fatalf("ClaimNotification() error = %v", err)
	}
	second, err := store.ClaimNotification(ctx, project.ID, time.Now())
	if err != nil {
		t.Fatalf("ClaimNotification() error = %v", err)
	}

	if !first || second {
		t.Errorf("claims = (%v, %v), want (true, false)", first, second)
	}

	got, _ := store.GetProject(ctx, project.ID)
	if got.NotificationSentAt == nil {
		t.Error("notification_sent_at not set")
	}
}

func TestUpsertBidScopeReplacesValues(t *testing.T) {
	store := statetest.NewStore(t)
	ctx := context.Background()
	project := statetest.Project(t, store, "user-1", models.ProjectStatusCollecting)
	doc := statetest.Document(t, store, project, "a.pdf", models.DocumentStatusUploaded)

	total := 12000.0
	scope := &models.BidScope{
		BidID:           doc.BidID,
		TotalBidAmount:  &total,
		Inclusions:      []string{"permits"},
		ConfidenceLevel: models.ConfidenceMedium,
	}
	if err := store.UpsertBidScope(ctx, scope); err != nil {
		t.Fatalf("UpsertBidScope() error = %v", err)
	}

	revised := 11500.0
	again := &models.BidScope{
		BidID:           doc.BidID,
		TotalBidAmount:  &revised,
		Inclusions:      []string{"permits", "disposal"},
		ConfidenceLevel: models.ConfidenceHigh,
	}
	if err := store.UpsertBidScope(ctx, again); err != nil {
		t.Fatalf("UpsertBidScope() second error = %v", err)
	}

	got, err := store.GetBidScope(ctx, doc.BidID)
	if err != nil {
		t.Fatalf("GetBidScope() error = %v", err)
	}
	if got.TotalBidAmount == nil || *got.TotalBidAmount != revised {
		t.Errorf("total = %v, want %v", got.TotalBidAmount, revised)
	}
	if len(got.Inclusions) != 2 {
		t.Errorf("inclusions = %v, want 2 entries", got.Inclusions)
	}
	if got.ConfidenceLevel != models.ConfidenceHigh {
		t.Errorf("confidence = %s, want high", got.ConfidenceLevel)
	}
}

func TestReplaceBidEquipment(t *testing.T) {
	store := statetest.NewStore(t)
	ctx := context.Background()
	project := statetest.Project(t, store, "user-1", models.ProjectStatusCollecting)
	doc := statetest.Document(t, store, project, "a.pdf", models.DocumentStatusUploaded)

	first := []*models.BidEquipment{
		{EquipmentType: models.EquipmentOutdoorUnit, Quantity: 1, ConfidenceLevel: models.ConfidenceHigh},
		{EquipmentType: models.EquipmentIndoorUnit, Quantity: 2, ConfidenceLevel: models.ConfidenceHigh},
		{EquipmentType: models.EquipmentThermostat, Quantity: 1, ConfidenceLevel: models.ConfidenceLow},
	}
	if err := store.ReplaceBidEquipment(ctx, doc.BidID, first); err != nil {
		t.Fatalf("ReplaceBidEquipment() error = %v", err)
	}

	second := []*models.BidEquipment{
		{EquipmentType: models.EquipmentOutdoorUnit, Brand: strPtr("Mitsubishi"), Quantity: 1, ConfidenceLevel: models.ConfidenceHigh},
	}
	if err := store.ReplaceBidEquipment(ctx, doc.BidID, second); err != nil {
		t.Fatalf("ReplaceBidEquipment() second error = %v", err)
	}

	got, err := store.ListBidEquipment(ctx, doc.BidID)
	if err != nil {
		t.Fatalf("ListBidEquipment() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("equipment rows = %d, want 1", len(got))
	}
	if got[0].Brand == nil || *got[0].Brand != "Mitsubishi" {
		t.Errorf("brand = %v, want Mitsubishi", got[0].Brand)
	}

	if err := store.ReplaceBidEquipment(ctx, doc.BidID, nil); err != nil {
		t.Fatalf("ReplaceBidEquipment(nil) error = %v", err)
	}
	got, _ = store.ListBidEquipment(ctx, doc.BidID)
	if len(got) != 0 {
		t.Errorf("equipment rows = %d, want 0", len(got))
	}
}

func TestInsertQuestionsDeduplicates(t *testing.T) {
	store := statetest.NewStore(t)
	ctx := context.Background()
	project := statetest.Project(t, store, "user-1", models.ProjectStatusCollecting)
	doc := statetest.Document(t, store, project, "a.pdf", models.DocumentStatusUploaded)

	batch := func() []*models.ContractorQuestion {
		return []*models.ContractorQuestion{
			{ProjectID: project.ID, BidID: doc.BidID, QuestionKey: "k1", Question: "Is the permit included?", RequestID: "r1"},
			{ProjectID: project.ID, BidID: doc.BidID, QuestionKey: "k2", Question: "Who handles disposal?", RequestID: "r1"},
		}
	}

	n, err := store.InsertQuestions(ctx, batch())
	if err != nil {
		t.Fatalf("InsertQuestions() error = %v", err)
	}
	if n != 2 {
		t.Errorf("inserted = %d, want 2", n)
	}

	n, err = store.InsertQuestions(ctx, batch())
	if err != nil {
		t.Fatalf("InsertQuestions() replay error = %v", err)
	}
	if n != 0 {
		t.Errorf("replay inserted = %d, want 0", n)
	}

	questions, _ := store.ListQuestions(ctx, project.ID)
	if len(questions) != 2 {
		t.Errorf("questions = %d, want 2", len(questions))
	}
}

func TestRevertDispatch(t *testing.T) {
	store := statetest.NewStore(t)
	ctx := context.Background()
	project := statetest.Project(t, store, "user-1", models.ProjectStatusCollecting)
	a := statetest.Document(t, store, project, "a.pdf", models.DocumentStatusUploaded)
	b := statetest.Document(t, store, project, "b.pdf", models.DocumentStatusUploaded)
	statetest.Dispatched(t, store, project, "req-1", a, b)

	n, err := store.RevertDispatch(ctx, "req-1", "extraction service unavailable")
	if err != nil {
		t.Fatalf("RevertDispatch() error = %v", err)
	}
	if n != 2 {
		t.Errorf("reverted = %d, want 2", n)
	}

	for _, d := range []*models.Document{a, b} {
		doc, _ := store.GetDocument(ctx, d.ID)
		if doc.Status != models.DocumentStatusUploaded {
			t.Errorf("document %s status = %s, want uploaded", doc.FileName, doc.Status)
		}
		bid, _ := store.GetBid(ctx, d.BidID)
		if bid.Status != models.BidStatusPending {
			t.Errorf("bid status = %s, want pending", bid.Status)
		}
		if bid.LastError == nil {
			t.Error("bid last_error not recorded")
		}
	}
}

func TestFinishBatchOnce(t *testing.T) {
	store := statetest.NewStore(t)
	ctx := context.Background()
	project := statetest.Project(t, store, "user-1", models.ProjectStatusCollecting)
	a := statetest.Document(t, store, project, "a.pdf", models.DocumentStatusUploaded)
	statetest.Dispatched(t, store, project, "req-1", a)

	done, err := store.FinishBatch(ctx, "req-1", models.BatchStatusCompleted, time.Now())
	if err != nil || !done {
		t.Fatalf("FinishBatch() = %v, %v; want true, nil", done, err)
	}
	done, err = store.FinishBatch(ctx, "req-1", models.BatchStatusFailed, time.Now())
	if err != nil || done {
		t.Fatalf("FinishBatch() replay = %v, %v; want false, nil", done, err)
	}

	batch, _ := store.GetBatch(ctx, "req-1")
	if batch.Status != models.BatchStatusCompleted {
		t.Errorf("batch status = %s, want completed", batch.Status)
	}
}

func TestRunInTxRollsBack(t *testing.T) {
	store := statetest.NewStore(t)
	ctx := context.Background()
	project := statetest.Project(t, store, "user-1", models.ProjectStatusCollecting)
	doc := statetest.Document(t, store, project, "a.pdf", models.DocumentStatusUploaded)

	boom := errors.New("boom")
	err := store.RunInTx(ctx, func(ctx context.Context, tx state.Store) error {
		if err := tx.CompleteBid(ctx, doc.BidID, strPtr("Acme"), models.ConfidenceHigh); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("RunInTx() error = %v, want boom", err)
	}

	bid, _ := store.GetBid(ctx, doc.BidID)
	if bid.Status != models.BidStatusPending {
		t.Errorf("bid status = %s, want pending after rollback", bid.Status)
	}
}

func TestDocumentResultGuards(t *testing.T) {
	store := statetest.NewStore(t)
	ctx := context.Background()
	project := statetest.Project(t, store, "user-1", models.ProjectStatusAnalyzing)
	extracted := statetest.Document(t, store, project, "a.pdf", models.DocumentStatusUploaded)
	verified := statetest.Document(t, store, project, "b.pdf", models.DocumentStatusUploaded)
	processing := statetest.Document(t, store, project, "c.pdf", models.DocumentStatusUploaded)
	statetest.Dispatched(t, store, project, "req-1", extracted, verified, processing)

	high := models.ConfidenceHigh
	manual := models.ConfidenceManual
	if err := store.SetDocumentResult(ctx, extracted.ID, models.DocumentStatusExtracted, &high, nil); err != nil {
		t.Fatalf("SetDocumentResult() error = %v", err)
	}
	if err := store.SetDocumentResult(ctx, verified.ID, models.DocumentStatusVerified, &manual, nil); err != nil {
		t.Fatalf("SetDocumentResult() error = %v", err)
	}

	if err := store.SetDocumentResult(ctx, verified.ID, models.DocumentStatusExtracted, &high, nil); !errors.Is(err, state.ErrConflict) {
		t.Errorf("SetDocumentResult(verified) error = %v, want ErrConflict", err)
	}
	if err := store.SetDocumentResult(ctx, "missing", models.DocumentStatusExtracted, &high, nil); !errors.Is(err, state.ErrNotFound) {
		t.Errorf("SetDocumentResult(missing) error = %v, want ErrNotFound", err)
	}

	tests := []struct {
		name      string
		id        string
		wantMoved bool
		wantErr   error
		want      models.DocumentStatus
	}{
		{"processing fails", processing.ID, true, nil, models.DocumentStatusFailed},
		{"extracted is kept", extracted.ID, false, nil, models.DocumentStatusExtracted},
		{"verified is kept", verified.ID, false, nil, models.DocumentStatusVerified},
		{"missing document", "missing", false, state.ErrNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			moved, err := store.FailDocument(ctx, tt.id, "boom")
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("FailDocument() error = %v, want %v", err, tt.wantErr)
			}
			if moved != tt.wantMoved {
				t.Errorf("moved = %v, want %v", moved, tt.wantMoved)
			}
			if tt.want == "" {
				return
			}
			doc, _ := store.GetDocument(ctx, tt.id)
			if doc.Status != tt.want {
				t.Errorf("status = %s, want %s", doc.Status, tt.want)
			}
		})
	}
}

func TestRecordBidAttempt(t *testing.T) {
	store := statetest.NewStore(t)
	ctx := context.Background()
	project := statetest.Project(t, store, "user-1", models.ProjectStatusAnalyzing)
	doc := statetest.Document(t, store, project, "a.pdf", models.DocumentStatusUploaded)

	if err := store.CompleteBid(ctx, doc.BidID, strPtr("Acme"), models.ConfidenceHigh); err != nil {
		t.Fatalf("CompleteBid() error = %v", err)
	}
	if err := store.RecordBidAttempt(ctx, doc.BidID, "late failure"); err != nil {
		t.Fatalf("RecordBidAttempt() error = %v", err)
	}

	bid, _ := store.GetBid(ctx, doc.BidID)
	if bid.Status != models.BidStatusCompleted || bid.ProcessingAttempts != 2 {
		t.Errorf("bid = %s with %d attempts, want completed with 2", bid.Status, bid.ProcessingAttempts)
	}
	if bid.LastError == nil || *bid.LastError != "late failure" {
		t.Errorf("last_error = %v", bid.LastError)
	}
}
