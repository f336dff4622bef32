package registrar_test

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/blagoySimandov/bidcompare/go/internal/models"
	"github.com/blagoySimandov/bidcompare/go/internal/registrar"
	"github.com/blagoySimandov/bidcompare/go/internal/services"
	"github.com/blagoySimandov/bidcompare/go/internal/state"
	"github.com/blagoySimandov/bidcompare/go/internal/state/statetest"
)

type memoryObjects struct {
	mu      sync.Mutex
	objects map[string][]byte
	err     error
}

func (m *memoryObjects) Put(_ context.Context, name, _ string, body io.Reader) error {
	if m.err != nil {
		return m.err
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.objects == nil {
		m.objects = map[string][]byte{}
	}
	m.objects[name] = data
	return nil
}

type stubInspector struct {
	pages int
	err   error
}

func (s stubInspector) Inspect(data []byte) (*services.PDFInfo, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &services.PDFInfo{PageCount: s.pages, SizeBytes: int64(len(data))}, nil
}

var pdfBytes = []byte("%PDF-1.7 test body")

func TestRegisterCreatesStubAndCollects(t *testing.T) {
	store := statetest.NewStore(t)
	ctx := context.Background()
	project := statetest.Project(t, store, "user-1", models.ProjectStatusDraft)
	objects := &memoryObjects{}

	r := registrar.New(store, objects, stubInspector{pages: 3}, 1<<20)
	reg, err := r.Register(ctx, registrar.Upload{
		UserID:    "user-1",
		ProjectID: project.ID,
		FileName:  "C:\\bids\\Acme Heating.pdf",
		Data:      pdfBytes,
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if reg.FileName != "Acme Heating.pdf" {
		t.Errorf("file name = %q, want base name", reg.FileName)
	}
	if reg.PageCount != 3 {
		t.Errorf("page count = %d, want 3", reg.PageCount)
	}

	doc, err := store.GetDocument(ctx, reg.DocumentID)
	if err != nil {
		t.Fatalf("GetDocument() error = %v", err)
	}
	if doc.Status != models.DocumentStatusUploaded {
		t.Errorf("document status = %s, want uploaded", doc.Status)
	}
	if _, ok := objects.objects[doc.StoragePath]; !ok {
		t.Errorf("object %s not stored", doc.StoragePath)
	}

	bid, err := store.GetBid(ctx, reg.BidID)
	if err != nil {
		t.Fatalf("GetBid() error = %v", err)
	}
	if bid.Status != models.BidStatusPending || bid.DocumentID != reg.DocumentID {
		t.Errorf("bid = %+v, want pending stub linked to document", bid)
	}

	got, _ := store.GetProject(ctx, project.ID)
	if got.Status != models.ProjectStatusCollecting {
		t.Errorf("project status = %s, want collecting", got.Status)
	}
}

func TestRegisterKeepsLaterProjectStatus(t *testing.T) {
	store := statetest.NewStore(t)
	ctx := context.Background()
	project := statetest.Project(t, store, "user-1", models.ProjectStatusComparing)

	r := registrar.New(store, &memoryObjects{}, stubInspector{pages: 1}, 0)
	if _, err := r.Register(ctx, registrar.Upload{UserID: "user-1", ProjectID: project.ID, FileName: "c.pdf", Data: pdfBytes}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	got, _ := store.GetProject(ctx, project.ID)
	if got.Status != models.ProjectStatusComparing {
		t.Errorf("project status = %s, want comparing", got.Status)
	}
}

func TestRegisterRejects(t *testing.T) {
	store := statetest.NewStore(t)
	project := statetest.Project(t, store, "user-1", models.ProjectStatusCollecting)
	decided := statetest.Project(t, store, "user-1", models.ProjectStatusDecided)

	tests := []struct {
		name      string
		upload    registrar.Upload
		inspector stubInspector
		objects   *memoryObjects
		wantErr   error
	}{
		{
			name:    "unknown project",
			upload:  registrar.Upload{UserID: "user-1", ProjectID: "missing", FileName: "a.pdf", Data: pdfBytes},
			wantErr: state.ErrNotFound,
		},
		{
			name:    "someone else's project",
			upload:  registrar.Upload{UserID: "user-2", ProjectID: project.ID, FileName: "a.pdf", Data: pdfBytes},
			wantErr: registrar.ErrForbidden,
		},
		{
			name:    "decided project",
			upload:  registrar.Upload{UserID: "user-1", ProjectID: decided.ID, FileName: "a.pdf", Data: pdfBytes},
			wantErr: registrar.ErrValidation,
		},
		{
			name:    "not a pdf name",
			upload:  registrar.Upload{UserID: "user-1", ProjectID: project.ID, FileName: "a.docx", Data: pdfBytes},
			wantErr: registrar.ErrValidation,
		},
		{
			name:    "empty file",
			upload:  registrar.Upload{UserID: "user-1", ProjectID: project.ID, FileName: "a.pdf"},
			wantErr: registrar.ErrValidation,
		},
		{
			name:    "too large",
			upload:  registrar.Upload{UserID: "user-1", ProjectID: project.ID, FileName: "a.pdf", Data: make([]byte, 2048)},
			wantErr: registrar.ErrValidation,
		},
		{
			name:      "unreadable pdf",
			upload:    registrar.Upload{UserID: "user-1", ProjectID: project.ID, FileName: "a.pdf", Data: pdfBytes},
			inspector: stubInspector{err: services.ErrInvalidPDF},
			wantErr:   registrar.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inspector := tt.inspector
			if inspector.err == nil {
				inspector.pages = 1
			}
			r := registrar.New(store, &memoryObjects{}, inspector, 1024)

			_, err := r.Register(context.Background(), tt.upload)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Register() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	docs, _ := store.ListDocumentsByProject(context.Background(), project.ID)
	if len(docs) != 0 {
		t.Errorf("documents = %d, want none after rejected uploads", len(docs))
	}
}

func TestRegisterStorageFailureWritesNothing(t *testing.T) {
	store := statetest.NewStore(t)
	ctx := context.Background()
	project := statetest.Project(t, store, "user-1", models.ProjectStatusDraft)

	r := registrar.New(store, &memoryObjects{err: errors.New("bucket unavailable")}, stubInspector{pages: 1}, 0)
	if _, err := r.Register(ctx, registrar.Upload{UserID: "user-1", ProjectID: project.ID, FileName: "a.pdf", Data: pdfBytes}); err == nil {
		t.Fatal("Register() error = nil, want storage error")
	}

	docs, _ := store.ListDocumentsByProject(ctx, project.ID)
	bids, _ := store.ListBidsByProject(ctx, project.ID)
	if len(docs) != 0 || len(bids) != 0 {
		t.Errorf("rows = (%d docs, %d bids), want none", len(docs), len(bids))
	}
	got, _ := store.GetProject(ctx, project.ID)
	if got.Status != models.ProjectStatusDraft {
		t.Errorf("project status = %s, want draft", got.Status)
	}
}

func TestCreateProject(t *testing.T) {
	store := statetest.NewStore(t)
	r := registrar.New(store, &memoryObjects{}, stubInspector{pages: 1}, 0)

	project, err := r.CreateProject(context.Background(), registrar.NewProject{
		UserID:             "user-1",
		Name:               "  Maple St  ",
		NotificationEmail:  "owner@example.com",
		NotifyOnCompletion: true,
	})
	if err != nil {
		t.Fatalf("CreateProject() error = %v", err)
	}
	if project.Name != "Maple St" || project.Status != models.ProjectStatusDraft {
		t.Errorf("project = %+v", project)
	}

	if _, err := r.CreateProject(context.Background(), registrar.NewProject{UserID: "user-1"}); !errors.Is(err, registrar.ErrValidation) {
		t.Errorf("CreateProject(no name) error = %v, want ErrValidation", err)
	}
	if _, err := r.CreateProject(context.Background(), registrar.NewProject{UserID: "user-1", Name: "x", NotificationEmail: "nope"}); !errors.Is(err, registrar.ErrValidation) {
		t.Errorf("CreateProject(bad email) error = %v, want ErrValidation", err)
	}
}
