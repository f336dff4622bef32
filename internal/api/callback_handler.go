package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/blagoySimandov/bidcompare/go/internal/extraction"
	"github.com/blagoySimandov/bidcompare/go/internal/logging"
	"github.com/blagoySimandov/bidcompare/go/internal/models"
	"github.com/blagoySimandov/bidcompare/go/internal/normalizer"
	"github.com/blagoySimandov/bidcompare/go/internal/notify"
	"github.com/blagoySimandov/bidcompare/go/internal/pipeline"
	"github.com/rs/zerolog/log"
)

const defaultMaxCallbackBytes = 10 << 20

type CallbackResponse struct {
	RequestID     string               `json:"request_id"`
	Status        string               `json:"status"`
	Applied       int                  `json:"applied"`
	Failed        int                  `json:"failed"`
	Outcomes      []normalizer.Outcome `json:"outcomes"`
	ProjectStatus models.ProjectStatus `json:"project_status,omitempty"`
	Ready         bool                 `json:"ready"`
	Notification  *notify.Result       `json:"notification,omitempty"`
}

// CallbackHandler receives extraction results. It is not behind user auth;
// the HMAC signature is the only credential, and it is checked before the
// body is used for anything.
type CallbackHandler struct {
	verifier *extraction.Verifier
	pipeline *pipeline.Pipeline
	maxBytes int64
}

func NewCallbackHandler(verifier *extraction.Verifier, p *pipeline.Pipeline, maxBytes int64) *CallbackHandler {
	if maxBytes <= 0 {
		maxBytes = defaultMaxCallbackBytes
	}
	return &CallbackHandler{verifier: verifier, pipeline: p, maxBytes: maxBytes}
}

func (h *CallbackHandler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "callback too large"})
			return
		}
		badRequest(w, r, "invalid callback")
		return
	}

	env, err := h.verifier.Verify(body, r.Header.Get(extraction.BodySignatureHeader))
	if err != nil {
		// The reason stays in debug logs; callers only learn the class.
		log.Debug().Err(err).Str("traceID", logging.GetTraceID(r.Context())).Msg("Callback rejected")
		logging.EnrichError(r.Context(), errors.New("callback rejected"), "verify")
		if errors.Is(err, extraction.ErrUnauthenticated) {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
			return
		}
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid callback"})
		return
	}
	logging.EnrichBatch(r.Context(), env.RequestID, 0)

	msg, err := h.pipeline.Process(r.Context(), env)
	if err != nil {
		logging.EnrichError(r.Context(), err, "process")
		switch {
		case errors.Is(err, extraction.ErrValidation):
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid callback"})
		case errors.Is(err, normalizer.ErrStructural):
			log.Warn().Err(err).Str("requestID", env.RequestID).Msg("Callback does not match our records")
			writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: "callback does not match a dispatched batch"})
		default:
			log.Error().Err(err).Str("requestID", env.RequestID).Msg("Failed to process callback")
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: internalServerError})
		}
		return
	}

	resp := CallbackResponse{RequestID: env.RequestID, Status: "accepted"}
	if msg.Report != nil {
		resp.Applied = msg.Report.Applied
		resp.Failed = msg.Report.Failed
		resp.Outcomes = msg.Report.Outcomes
		logging.EnrichProject(r.Context(), msg.Report.ProjectID, "")
		logging.EnrichCallback(r.Context(), env.Status, msg.Report.Applied, msg.Report.Failed)
	}
	if eval := msg.Evaluation; eval != nil {
		resp.ProjectStatus = eval.ProjectStatus
		resp.Ready = eval.Ready
		resp.Notification = eval.Notification
		logging.EnrichProject(r.Context(), eval.ProjectID, string(eval.ProjectStatus))
		if eval.Notification != nil {
			logging.EnrichNotification(r.Context(), string(eval.Notification.Status))
		}
		if eval.NotificationError != "" {
			logging.EnrichMetadata(r.Context(), "notification_error", eval.NotificationError)
		}
	}

	writeJSON(w, http.StatusOK, resp)
}
