package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/blagoySimandov/bidcompare/go/internal/auth"
	"github.com/blagoySimandov/bidcompare/go/internal/dispatch"
	"github.com/blagoySimandov/bidcompare/go/internal/logging"
	"github.com/blagoySimandov/bidcompare/go/internal/models"
	"github.com/blagoySimandov/bidcompare/go/internal/registrar"
	"github.com/blagoySimandov/bidcompare/go/internal/scoring"
	"github.com/blagoySimandov/bidcompare/go/internal/state"
	"github.com/gorilla/mux"
)

const (
	uploadFormField     = "file"
	multipartOverhead   = 1 << 20
	maxJSONRequestBytes = 1 << 20
)

// ProjectHandler serves the user-facing project endpoints.
type ProjectHandler struct {
	store      state.Store
	registrar  *registrar.Registrar
	dispatcher *dispatch.Dispatcher
	scorer     *scoring.Scorer
	maxUpload  int64
	staleAfter time.Duration
	now        func() time.Time
}

func NewProjectHandler(
	store state.Store,
	reg *registrar.Registrar,
	dispatcher *dispatch.Dispatcher,
	scorer *scoring.Scorer,
	maxUpload int64,
	staleAfter time.Duration,
) *ProjectHandler {
	return &ProjectHandler{
		store:      store,
		registrar:  reg,
		dispatcher: dispatcher,
		scorer:     scorer,
		maxUpload:  maxUpload,
		staleAfter: staleAfter,
		now:        time.Now,
	}
}

type CreateProjectRequest struct {
	Name               string `json:"name"`
	NotificationEmail  string `json:"notification_email"`
	NotifyOnCompletion bool   `json:"notify_on_completion"`
}

type DispatchRequest struct {
	DocumentIDs []string        `json:"document_ids"`
	Priorities  json.RawMessage `json:"priorities"`
}

func currentUser(w http.ResponseWriter, r *http.Request) (*auth.User, bool) {
	user, ok := auth.GetUserFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
		return nil, false
	}
	logging.EnrichUser(r.Context(), user.ID, user.Email)
	return user, true
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxJSONRequestBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func (h *ProjectHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req CreateProjectRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, r, "invalid request body")
		return
	}

	project, err := h.registrar.CreateProject(r.Context(), registrar.NewProject{
		UserID:             user.ID,
		Name:               req.Name,
		NotificationEmail:  req.NotificationEmail,
		NotifyOnCompletion: req.NotifyOnCompletion,
	})
	if err != nil {
		writeError(w, r, "create_project", err)
		return
	}

	logging.EnrichProject(r.Context(), project.ID, string(project.Status))
	writeJSON(w, http.StatusCreated, project)
}

func (h *ProjectHandler) UploadDocument(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	projectID := mux.Vars(r)["projectID"]
	logging.EnrichProject(r.Context(), projectID, "")

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload+multipartOverhead)
	file, header, err := r.FormFile(uploadFormField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "file too large"})
			return
		}
		badRequest(w, r, fmt.Sprintf("multipart field %q is required", uploadFormField))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.maxUpload+1))
	if err != nil {
		badRequest(w, r, "failed to read upload")
		return
	}

	reg, err := h.registrar.Register(r.Context(), registrar.Upload{
		UserID:    user.ID,
		ProjectID: projectID,
		FileName:  header.Filename,
		Data:      data,
	})
	if err != nil {
		writeError(w, r, "upload", err)
		return
	}

	logging.EnrichDocument(r.Context(), reg.DocumentID)
	writeJSON(w, http.StatusCreated, reg)
}

func (h *ProjectHandler) DispatchBatch(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	projectID := mux.Vars(r)["projectID"]
	logging.EnrichProject(r.Context(), projectID, "")

	var req DispatchRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, r, "invalid request body")
		return
	}

	result, err := h.dispatcher.Dispatch(r.Context(), dispatch.Request{
		UserID:      user.ID,
		ProjectID:   projectID,
		DocumentIDs: req.DocumentIDs,
		Priorities:  req.Priorities,
	})
	if err != nil {
		writeError(w, r, "dispatch", err)
		return
	}

	logging.EnrichBatch(r.Context(), result.RequestID, result.DocumentCount)
	writeJSON(w, http.StatusAccepted, result)
}

func (h *ProjectHandler) RecomputeScores(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	projectID := mux.Vars(r)["projectID"]
	logging.EnrichProject(r.Context(), projectID, "")

	scores, err := h.scorer.Recompute(r.Context(), user.ID, projectID)
	if err != nil {
		writeError(w, r, "scores", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"project_id": projectID, "scores": scores})
}

func (h *ProjectHandler) GetComparison(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	projectID := mux.Vars(r)["projectID"]
	logging.EnrichProject(r.Context(), projectID, "")

	cmp, err := h.scorer.Comparison(r.Context(), user.ID, projectID)
	if err != nil {
		writeError(w, r, "comparison", err)
		return
	}
	writeJSON(w, http.StatusOK, cmp)
}

func (h *ProjectHandler) ownedProject(r *http.Request, userID, projectID string) (*models.Project, error) {
	project, err := h.store.GetProject(r.Context(), projectID)
	if err != nil {
		return nil, err
	}
	if project.UserID != userID {
		return nil, errForbidden
	}
	return project, nil
}
