package api

import (
	"net/http"
	"time"

	"github.com/blagoySimandov/bidcompare/go/internal/logging"
	"github.com/blagoySimandov/bidcompare/go/internal/models"
	"github.com/gorilla/mux"
)

type DocumentStatusView struct {
	DocumentID          string                  `json:"document_id"`
	BidID               string                  `json:"bid_id"`
	FileName            string                  `json:"file_name"`
	Status              models.DocumentStatus   `json:"status"`
	Progress            int                     `json:"progress"`
	ConfidenceLevel     *models.ConfidenceLevel `json:"confidence_level,omitempty"`
	ErrorMessage        *string                 `json:"error_message,omitempty"`
	Stale               bool                    `json:"stale"`
	ProcessingStartedAt *time.Time              `json:"processing_started_at,omitempty"`
	ProcessedAt         *time.Time              `json:"processed_at,omitempty"`
}

type ProjectStatusView struct {
	ProjectID          string               `json:"project_id"`
	Status             models.ProjectStatus `json:"status"`
	Ready              bool                 `json:"ready"`
	Total              int                  `json:"total"`
	Processing         int                  `json:"processing"`
	Succeeded          int                  `json:"succeeded"`
	Failed             int                  `json:"failed"`
	Progress           int                  `json:"progress"`
	NotificationSentAt *time.Time           `json:"notification_sent_at,omitempty"`
	Documents          []DocumentStatusView `json:"documents"`
}

// buildStatus summarises a project for polling. A document is stale when it
// has been processing for longer than staleAfter; nothing acts on that here.
func buildStatus(project *models.Project, docs []*models.Document, now time.Time, staleAfter time.Duration) *ProjectStatusView {
	view := &ProjectStatusView{
		ProjectID:          project.ID,
		Status:             project.Status,
		Ready:              project.Status.Ready(),
		Total:              len(docs),
		NotificationSentAt: project.NotificationSentAt,
		Documents:          make([]DocumentStatusView, 0, len(docs)),
	}

	progress := 0
	for _, doc := range docs {
		d := DocumentStatusView{
			DocumentID:          doc.ID,
			BidID:               doc.BidID,
			FileName:            doc.FileName,
			Status:              doc.Status,
			Progress:            doc.Status.Progress(),
			ConfidenceLevel:     doc.ConfidenceLevel,
			ErrorMessage:        doc.ErrorMessage,
			ProcessingStartedAt: doc.ProcessingStartedAt,
			ProcessedAt:         doc.ProcessedAt,
		}

		switch {
		case doc.Status == models.DocumentStatusProcessing:
			view.Processing++
			if staleAfter > 0 && doc.ProcessingStartedAt != nil && now.Sub(*doc.ProcessingStartedAt) > staleAfter {
				d.Stale = true
			}
		case doc.Status.Succeeded():
			view.Succeeded++
		case doc.Status == models.DocumentStatusFailed:
			view.Failed++
		}

		progress += d.Progress
		view.Documents = append(view.Documents, d)
	}
	if len(docs) > 0 {
		view.Progress = progress / len(docs)
	}
	return view
}

func (h *ProjectHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	projectID := mux.Vars(r)["projectID"]

	project, err := h.ownedProject(r, user.ID, projectID)
	if err != nil {
		writeError(w, r, "status", err)
		return
	}
	logging.EnrichProject(r.Context(), project.ID, string(project.Status))

	docs, err := h.store.ListDocumentsByProject(r.Context(), project.ID)
	if err != nil {
		writeError(w, r, "status", err)
		return
	}

	writeJSON(w, http.StatusOK, buildStatus(project, docs, h.now(), h.staleAfter))
}
