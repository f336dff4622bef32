package registrar

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/blagoySimandov/bidcompare/go/internal/models"
	"github.com/blagoySimandov/bidcompare/go/internal/services"
	"github.com/blagoySimandov/bidcompare/go/internal/state"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

var (
	ErrForbidden  = errors.New("forbidden")
	ErrValidation = errors.New("validation failed")
)

const pdfContentType = "application/pdf"

type ObjectStore interface {
	Put(ctx context.Context, objectName, contentType string, body io.Reader) error
}

type Inspector interface {
	Inspect(data []byte) (*services.PDFInfo, error)
}

type Upload struct {
	UserID    string
	ProjectID string
	FileName  string
	Data      []byte
}

type Registration struct {
	DocumentID string                `json:"document_id"`
	BidID      string                `json:"bid_id"`
	FileName   string                `json:"file_name"`
	PageCount  int                   `json:"page_count"`
	Status     models.DocumentStatus `json:"status"`
}

// Registrar records uploaded bid PDFs. Each upload gets a document record and
// a pending bid stub; the document ID is what the extraction service later
// echoes back.
type Registrar struct {
	store     state.Store
	objects   ObjectStore
	inspector Inspector
	maxBytes  int64
}

func New(store state.Store, objects ObjectStore, inspector Inspector, maxBytes int64) *Registrar {
	return &Registrar{
		store:     store,
		objects:   objects,
		inspector: inspector,
		maxBytes:  maxBytes,
	}
}

type NewProject struct {
	UserID             string
	Name               string
	NotificationEmail  string
	NotifyOnCompletion bool
}

func (r *Registrar) CreateProject(ctx context.Context, req NewProject) (*models.Project, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: project name is required", ErrValidation)
	}

	project := &models.Project{
		UserID:             req.UserID,
		Name:               name,
		Status:             models.ProjectStatusDraft,
		NotifyOnCompletion: req.NotifyOnCompletion,
	}
	if email := strings.TrimSpace(req.NotificationEmail); email != "" {
		if !strings.Contains(email, "@") {
			return nil, fmt.Errorf("%w: invalid notification email", ErrValidation)
		}
		project.NotificationEmail = &email
	}

	if err := r.store.CreateProject(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}

func (r *Registrar) Register(ctx context.Context, upload Upload) (*Registration, error) {
	project, err := r.store.GetProject(ctx, upload.ProjectID)
	if err != nil {
		return nil, err
	}
	if project.UserID != upload.UserID {
		return nil, ErrForbidden
	}
	if !acceptsUploads(project.Status) {
		return nil, fmt.Errorf("%w: project is %s", ErrValidation, project.Status)
	}

	fileName, err := cleanFileName(upload.FileName)
	if err != nil {
		return nil, err
	}
	if len(upload.Data) == 0 {
		return nil, fmt.Errorf("%w: file is empty", ErrValidation)
	}
	if r.maxBytes > 0 && int64(len(upload.Data)) > r.maxBytes {
		return nil, fmt.Errorf("%w: file exceeds %d bytes", ErrValidation, r.maxBytes)
	}

	info, err := r.inspector.Inspect(upload.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	docID := uuid.New().String()
	objectName := path.Join("projects", project.ID, docID+".pdf")
	if err := r.objects.Put(ctx, objectName, pdfContentType, bytes.NewReader(upload.Data)); err != nil {
		return nil, fmt.Errorf("failed to store upload: %w", err)
	}

	bid := &models.Bid{
		ID:         uuid.New().String(),
		ProjectID:  project.ID,
		DocumentID: docID,
		Status:     models.BidStatusPending,
	}
	doc := &models.Document{
		ID:            docID,
		ProjectID:     project.ID,
		BidID:         bid.ID,
		UserID:        upload.UserID,
		FileName:      fileName,
		StoragePath:   objectName,
		FileSizeBytes: info.SizeBytes,
		PageCount:     info.PageCount,
		Status:        models.DocumentStatusUploaded,
	}

	err = r.store.RunInTx(ctx, func(ctx context.Context, tx state.Store) error {
		if err := tx.CreateBid(ctx, bid); err != nil {
			return err
		}
		if err := tx.CreateDocument(ctx, doc); err != nil {
			return err
		}
		_, err := tx.TransitionProjectStatus(ctx, project.ID,
			[]models.ProjectStatus{models.ProjectStatusDraft}, models.ProjectStatusCollecting)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to register upload: %w", err)
	}

	log.Info().
		Str("projectID", project.ID).
		Str("documentID", docID).
		Int("pages", info.PageCount).
		Msg("Bid document registered")

	return &Registration{
		DocumentID: docID,
		BidID:      bid.ID,
		FileName:   fileName,
		PageCount:  info.PageCount,
		Status:     doc.Status,
	}, nil
}

func acceptsUploads(status models.ProjectStatus) bool {
	switch status {
	case models.ProjectStatusDraft, models.ProjectStatusCollecting,
		models.ProjectStatusAnalyzing, models.ProjectStatusComparing:
		return true
	}
	return false
}

func cleanFileName(name string) (string, error) {
	name = strings.TrimSpace(path.Base(strings.ReplaceAll(name, "\\", "/")))
	if name == "" || name == "." || name == "/" {
		return "", fmt.Errorf("%w: file name is required", ErrValidation)
	}
	if !strings.EqualFold(path.Ext(name), ".pdf") {
		return "", fmt.Errorf("%w: only PDF files are accepted", ErrValidation)
	}
	if len(name) > 255 {
		name = name[len(name)-255:]
	}
	return name, nil
}
