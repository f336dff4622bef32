package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/blagoySimandov/bidcompare/go/internal/aggregator"
	"github.com/blagoySimandov/bidcompare/go/internal/api"
	"github.com/blagoySimandov/bidcompare/go/internal/auth"
	"github.com/blagoySimandov/bidcompare/go/internal/config"
	"github.com/blagoySimandov/bidcompare/go/internal/dispatch"
	"github.com/blagoySimandov/bidcompare/go/internal/extraction"
	"github.com/blagoySimandov/bidcompare/go/internal/models"
	"github.com/blagoySimandov/bidcompare/go/internal/normalizer"
	"github.com/blagoySimandov/bidcompare/go/internal/notify"
	"github.com/blagoySimandov/bidcompare/go/internal/pipeline"
	"github.com/blagoySimandov/bidcompare/go/internal/registrar"
	"github.com/blagoySimandov/bidcompare/go/internal/scoring"
	"github.com/blagoySimandov/bidcompare/go/internal/services"
	"github.com/blagoySimandov/bidcompare/go/internal/state"
	"github.com/blagoySimandov/bidcompare/go/internal/state/statetest"
	"github.com/gorilla/mux"
)

const (
	webhookSecret = "test-webhook-secret"
	priorities    = `{"price":5,"warranty":3,"efficiency":3,"reputation":2,"timeline":1}`
)

type memoryBucket struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (b *memoryBucket) Put(_ context.Context, name, _ string, body io.Reader) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.objects == nil {
		b.objects = map[string][]byte{}
	}
	b.objects[name] = data
	return nil
}

func (b *memoryBucket) SignedReadURL(_ context.Context, name string, _ time.Duration) (string, error) {
	return "https://storage.example.com/" + name + "?sig=abc", nil
}

type stubInspector struct{}

func (stubInspector) Inspect(data []byte) (*services.PDFInfo, error) {
	return &services.PDFInfo{PageCount: 2, SizeBytes: int64(len(data))}, nil
}

type fakeExtraction struct {
	mu       sync.Mutex
	requests []*extraction.DispatchRequest
	err      error
}

func (f *fakeExtraction) SubmitBatch(_ context.Context, req *extraction.DispatchRequest) (*extraction.DispatchResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	return &extraction.DispatchResponse{JobID: "job-" + req.RequestID}, nil
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []services.Email
}

func (m *recordingMailer) Send(_ context.Context, email services.Email) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, email)
	return nil
}

func (m *recordingMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

type tokens map[string]*auth.User

func (t tokens) VerifyToken(token string) (*auth.User, error) {
	if user, ok := t[token]; ok {
		return user, nil
	}
	return nil, auth.ErrInvalidToken
}

type testAPI struct {
	t          *testing.T
	store      *state.BunStore
	router     *mux.Router
	extraction *fakeExtraction
	mailer     *recordingMailer
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	store := statetest.NewStore(t)
	bucket := &memoryBucket{}
	client := &fakeExtraction{}
	mailer := &recordingMailer{}

	reg := registrar.New(store, bucket, stubInspector{}, 1<<20)
	disp := dispatch.New(store, bucket, client, dispatch.Options{
		CallbackURL:  "https://bids.example.com" + config.CallbackPath,
		SignedURLTTL: time.Hour,
	})
	gate := notify.NewGate(store, mailer, "https://app.example.com", time.Second)
	pipe := pipeline.NewPipeline(
		pipeline.NewNormalizeStage(normalizer.New(store)),
		pipeline.NewAggregateStage(aggregator.New(store, gate)),
	)

	projects := api.NewProjectHandler(store, reg, disp, scoring.New(store), 1<<20, 30*time.Minute)
	callbacks := api.NewCallbackHandler(extraction.NewVerifier(webhookSecret, time.Hour, 5*time.Minute), pipe, 0)
	authMW := auth.NewMiddleware(tokens{
		"token-1": {ID: "user-1", Email: "owner@example.com"},
		"token-2": {ID: "user-2"},
	})

	router := api.SetupRoutes(projects, callbacks, authMW, api.RouterOptions{
		AllowedOrigin: "http://localhost:5173",
		Logger:        slog.New(slog.NewJSONHandler(io.Discard, nil)),
	})

	return &testAPI{t: t, store: store, router: router, extraction: client, mailer: mailer}
}

func (a *testAPI) do(method, path, token string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func (a *testAPI) postJSON(path, token string, v any) *httptest.ResponseRecorder {
	var body []byte
	switch b := v.(type) {
	case string:
		body = []byte(b)
	default:
		var err error
		if body, err = json.Marshal(v); err != nil {
			a.t.Fatalf("marshal: %v", err)
		}
	}
	return a.do(http.MethodPost, path, token, bytes.NewReader(body), "application/json")
}

func (a *testAPI) createProject(token string) *models.Project {
	a.t.Helper()
	rec := a.postJSON("/api/v1/projects", token, map[string]any{
		"name":                 "Maple St heat pump",
		"notification_email":   "owner@example.com",
		"notify_on_completion": true,
	})
	if rec.Code != http.StatusCreated {
		a.t.Fatalf("create project status = %d, body = %s", rec.Code, rec.Body)
	}
	var project models.Project
	decode(a.t, rec, &project)
	return &project
}

func (a *testAPI) upload(token, projectID, fileName string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", fileName)
	if err != nil {
		a.t.Fatal(err)
	}
	part.Write([]byte("%PDF-1.7 bid for " + fileName))
	mw.Close()
	return a.do(http.MethodPost, "/api/v1/projects/"+projectID+"/documents", token, &buf, mw.FormDataContentType())
}

func (a *testAPI) uploadOK(token, projectID, fileName string) *registrar.Registration {
	a.t.Helper()
	rec := a.upload(token, projectID, fileName)
	if rec.Code != http.StatusCreated {
		a.t.Fatalf("upload status = %d, body = %s", rec.Code, rec.Body)
	}
	var reg registrar.Registration
	decode(a.t, rec, &reg)
	return &reg
}

func (a *testAPI) dispatch(token, projectID string, docIDs ...string) *httptest.ResponseRecorder {
	return a.postJSON("/api/v1/projects/"+projectID+"/dispatch", token,
		`{"document_ids":`+mustJSON(a.t, docIDs)+`,"priorities":`+priorities+`}`)
}

func (a *testAPI) callback(body []byte, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, config.CallbackPath, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %s: %v", rec.Body, err)
	}
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}

func successResult(documentID string, confidence any) map[string]any {
	return map[string]any{
		"document_id":        documentID,
		"status":             "success",
		"overall_confidence": confidence,
		"contractor": map[string]any{
			"company":        "Acme Heating",
			"license_number": "HVAC-123",
			"confidence":     confidence,
		},
		"pricing":  map[string]any{"total_amount": 14250.5, "confidence": confidence},
		"warranty": map[string]any{"labor_years": 10, "confidence": confidence},
		"scope":    map[string]any{"permits": true, "inclusions": []string{"permits", "disposal"}, "confidence": confidence},
		"equipment": []map[string]any{
			{"equipment_type": "outdoor_unit", "brand": "Mitsubishi", "seer2": 20.5, "confidence": confidence},
			{"equipment_type": "indoor unit", "quantity": 2, "confidence": confidence},
		},
	}
}

func failedResult(documentID string) map[string]any {
	return map[string]any{"document_id": documentID, "status": "failed", "error": "document unreadable"}
}

type callbackOptions struct {
	timestamp time.Time
	mutate    func(map[string]any)
}

func signedCallback(t *testing.T, requestID string, opts callbackOptions, results ...map[string]any) []byte {
	t.Helper()
	ts := opts.timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	stamp := ts.UTC().Format(time.RFC3339)

	payload := map[string]any{
		"request_id": requestID,
		"timestamp":  stamp,
		"signature":  extraction.Sign([]byte(webhookSecret), requestID, stamp),
		"status":     "success",
		"results":    results,
	}
	if opts.mutate != nil {
		opts.mutate(payload)
	}
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatal(err)
	}
	return body
}

// setupDispatched creates a project with n uploaded documents and dispatches
// them all. It returns the project, the registrations and the request id.
func setupDispatched(t *testing.T, a *testAPI, n int) (*models.Project, []*registrar.Registration, string) {
	t.Helper()
	project := a.createProject("token-1")

	var regs []*registrar.Registration
	var ids []string
	for i := 0; i < n; i++ {
		reg := a.uploadOK("token-1", project.ID, []string{"acme.pdf", "bolt.pdf", "cool.pdf", "dash.pdf"}[i])
		regs = append(regs, reg)
		ids = append(ids, reg.DocumentID)
	}

	rec := a.dispatch("token-1", project.ID, ids...)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("dispatch status = %d, body = %s", rec.Code, rec.Body)
	}
	var result dispatch.Result
	decode(t, rec, &result)
	return project, regs, result.RequestID
}

func TestEndToEndBatchScenario(t *testing.T) {
	a := newTestAPI(t)
	ctx := context.Background()
	project, regs, requestID := setupDispatched(t, a, 3)

	if len(a.extraction.requests) != 1 {
		t.Fatalf("outbound requests = %d, want 1", len(a.extraction.requests))
	}
	sent := a.extraction.requests[0]
	if sent.RequestID != requestID || len(sent.Documents) != 3 {
		t.Fatalf("outbound request = %+v", sent)
	}
	if sent.CallbackURL != "https://bids.example.com/api/v1/extraction/callback" {
		t.Errorf("callback url = %s", sent.CallbackURL)
	}

	first := signedCallback(t, requestID, callbackOptions{}, successResult(regs[0].DocumentID, 95))
	rec := a.callback(first, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("callback status = %d, body = %s", rec.Code, rec.Body)
	}

	bid, err := a.store.GetBid(ctx, regs[0].BidID)
	if err != nil {
		t.Fatal(err)
	}
	if bid.Status != models.BidStatusCompleted {
		t.Errorf("bid status = %s, want completed", bid.Status)
	}
	if bid.ConfidenceLevel == nil || *bid.ConfidenceLevel != models.ConfidenceHigh {
		t.Errorf("bid confidence = %v, want high", bid.ConfidenceLevel)
	}
	if bid.ContractorName == nil || *bid.ContractorName != "Acme Heating" {
		t.Errorf("contractor name = %v", bid.ContractorName)
	}

	// Duplicate delivery.
	rec = a.callback(first, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("duplicate callback status = %d, body = %s", rec.Code, rec.Body)
	}
	equipment, _ := a.store.ListBidEquipment(ctx, regs[0].BidID)
	if len(equipment) != 2 {
		t.Errorf("equipment rows = %d, want 2 after duplicate delivery", len(equipment))
	}
	scope, err := a.store.GetBidScope(ctx, regs[0].BidID)
	if err != nil || scope.TotalBidAmount == nil || *scope.TotalBidAmount != 14250.5 {
		t.Errorf("scope = %+v, err = %v", scope, err)
	}
	bid, _ = a.store.GetBid(ctx, regs[0].BidID)
	if bid.ProcessingAttempts != 2 {
		t.Errorf("processing attempts = %d, want 2", bid.ProcessingAttempts)
	}

	got, _ := a.store.GetProject(ctx, project.ID)
	if got.Status != models.ProjectStatusAnalyzing {
		t.Errorf("project status = %s, want analyzing while documents are outstanding", got.Status)
	}

	rest := signedCallback(t, requestID, callbackOptions{}, successResult(regs[1].DocumentID, "medium"), failedResult(regs[2].DocumentID))
	rec = a.callback(rest, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("second callback status = %d, body = %s", rec.Code, rec.Body)
	}
	var resp api.CallbackResponse
	decode(t, rec, &resp)
	if !resp.Ready || resp.ProjectStatus != models.ProjectStatusComparing {
		t.Errorf("response = %+v, want ready and comparing", resp)
	}
	if resp.Applied != 1 || resp.Failed != 1 {
		t.Errorf("applied/failed = %d/%d, want 1/1", resp.Applied, resp.Failed)
	}
	if resp.Notification == nil || resp.Notification.Status != notify.ResultSent {
		t.Errorf("notification = %+v, want sent", resp.Notification)
	}

	// A late duplicate must not send a second email.
	a.callback(rest, nil)
	if a.mailer.count() != 1 {
		t.Errorf("emails sent = %d, want 1", a.mailer.count())
	}

	batch, _ := a.store.GetBatch(ctx, requestID)
	if batch.Status != models.BatchStatusPartial {
		t.Errorf("batch status = %s, want partial", batch.Status)
	}

	rec = a.do(http.MethodGet, "/api/v1/projects/"+project.ID+"/status", "token-1", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status code = %d", rec.Code)
	}
	var status api.ProjectStatusView
	decode(t, rec, &status)
	if !status.Ready || status.Succeeded != 2 || status.Failed != 1 || status.Progress != 100 {
		t.Errorf("status = %+v", status)
	}
	for _, doc := range status.Documents {
		if doc.DocumentID == regs[2].DocumentID && doc.ErrorMessage == nil {
			t.Error("failed document should carry its error message")
		}
	}

	rec = a.postJSON("/api/v1/projects/"+project.ID+"/scores", "token-1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("scores status = %d, body = %s", rec.Code, rec.Body)
	}
	rec = a.do(http.MethodGet, "/api/v1/projects/"+project.ID+"/comparison", "token-1", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("comparison status = %d, body = %s", rec.Code, rec.Body)
	}
	var cmp scoring.Comparison
	decode(t, rec, &cmp)
	if len(cmp.Bids) != 2 {
		t.Errorf("compared bids = %d, want 2", len(cmp.Bids))
	}
}

func TestOneSuccessDoesNotCompleteProject(t *testing.T) {
	a := newTestAPI(t)
	project, regs, requestID := setupDispatched(t, a, 3)

	body := signedCallback(t, requestID, callbackOptions{},
		successResult(regs[0].DocumentID, 92),
		failedResult(regs[1].DocumentID),
		failedResult(regs[2].DocumentID),
	)
	rec := a.callback(body, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("callback status = %d, body = %s", rec.Code, rec.Body)
	}

	got, _ := a.store.GetProject(context.Background(), project.ID)
	if got.Status == models.ProjectStatusComparing {
		t.Error("project must not be comparable with a single successful bid")
	}
	if a.mailer.count() != 0 {
		t.Errorf("emails sent = %d, want 0", a.mailer.count())
	}
}

func TestCallbackRejectionsWriteNothing(t *testing.T) {
	a := newTestAPI(t)
	_, regs, requestID := setupDispatched(t, a, 2)
	result := successResult(regs[0].DocumentID, 95)

	valid := signedCallback(t, requestID, callbackOptions{}, result)
	tampered := bytes.Replace(valid, []byte("14250.5"), []byte("1.5"), 1)

	tests := []struct {
		name       string
		body       []byte
		headers    map[string]string
		wantStatus int
	}{
		{
			name:       "body changed after signing",
			body:       tampered,
			headers:    map[string]string{extraction.BodySignatureHeader: extraction.SignBody([]byte(webhookSecret), valid)},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "timestamp changed after signing",
			body: signedCallback(t, requestID, callbackOptions{mutate: func(p map[string]any) {
				p["timestamp"] = time.Now().Add(-time.Minute).UTC().Format(time.RFC3339)
			}}, result),
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "request id changed after signing",
			body: signedCallback(t, requestID, callbackOptions{mutate: func(p map[string]any) {
				p["request_id"] = "someone-elses-batch"
			}}, result),
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "signed with another secret",
			body: signedCallback(t, requestID, callbackOptions{mutate: func(p map[string]any) {
				p["signature"] = extraction.Sign([]byte("wrong"), requestID, p["timestamp"].(string))
			}}, result),
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "stale timestamp",
			body:       signedCallback(t, requestID, callbackOptions{timestamp: time.Now().Add(-2 * time.Hour)}, result),
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "missing signature",
			body: signedCallback(t, requestID, callbackOptions{mutate: func(p map[string]any) {
				delete(p, "signature")
			}}, result),
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "missing results",
			body: signedCallback(t, requestID, callbackOptions{mutate: func(p map[string]any) {
				delete(p, "results")
			}}),
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "not json",
			body:       []byte("{"),
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unknown batch",
			body:       signedCallback(t, "never-dispatched", callbackOptions{}, result),
			wantStatus: http.StatusUnprocessableEntity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := a.callback(tt.body, tt.headers)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body)
			}
		})
	}

	for _, reg := range regs {
		bid, _ := a.store.GetBid(context.Background(), reg.BidID)
		if bid.Status != models.BidStatusProcessing || bid.ProcessingAttempts != 0 {
			t.Errorf("bid %s = %s with %d attempts, want untouched", reg.BidID, bid.Status, bid.ProcessingAttempts)
		}
		if _, err := a.store.GetBidScope(context.Background(), reg.BidID); err == nil {
			t.Errorf("bid %s has a scope row after rejected callbacks", reg.BidID)
		}
	}
}

func TestUnauthenticatedCallbackBodiesMatch(t *testing.T) {
	a := newTestAPI(t)
	_, regs, requestID := setupDispatched(t, a, 1)
	result := successResult(regs[0].DocumentID, 95)

	badSig := a.callback(signedCallback(t, requestID, callbackOptions{mutate: func(p map[string]any) {
		p["signature"] = "AAAA"
	}}, result), nil)
	stale := a.callback(signedCallback(t, requestID, callbackOptions{timestamp: time.Now().Add(-3 * time.Hour)}, result), nil)

	if badSig.Body.String() != stale.Body.String() {
		t.Errorf("rejection bodies differ: %q vs %q", badSig.Body, stale.Body)
	}
}

func TestCallbackCrossProjectDocumentRejected(t *testing.T) {
	a := newTestAPI(t)
	_, regs, requestID := setupDispatched(t, a, 1)
	_, otherRegs, _ := setupDispatched(t, a, 1)

	body := signedCallback(t, requestID, callbackOptions{},
		successResult(regs[0].DocumentID, 95),
		successResult(otherRegs[0].DocumentID, 95),
	)
	rec := a.callback(body, nil)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422 (body %s)", rec.Code, rec.Body)
	}

	for _, reg := range []*registrar.Registration{regs[0], otherRegs[0]} {
		bid, _ := a.store.GetBid(context.Background(), reg.BidID)
		if bid.Status != models.BidStatusProcessing {
			t.Errorf("bid status = %s, want processing", bid.Status)
		}
	}
}

func TestDispatchFailureReturnsBadGateway(t *testing.T) {
	a := newTestAPI(t)
	a.extraction.err = &extraction.APIError{StatusCode: 500, Body: "down"}
	project := a.createProject("token-1")
	reg := a.uploadOK("token-1", project.ID, "acme.pdf")

	rec := a.dispatch("token-1", project.ID, reg.DocumentID)
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502 (body %s)", rec.Code, rec.Body)
	}

	doc, _ := a.store.GetDocument(context.Background(), reg.DocumentID)
	if doc.Status != models.DocumentStatusUploaded {
		t.Errorf("document status = %s, want uploaded", doc.Status)
	}
	got, _ := a.store.GetProject(context.Background(), project.ID)
	if got.Status != models.ProjectStatusCollecting {
		t.Errorf("project status = %s, want collecting", got.Status)
	}
}

func TestUserRoutesRequireOwner(t *testing.T) {
	a := newTestAPI(t)
	project := a.createProject("token-1")
	reg := a.uploadOK("token-1", project.ID, "acme.pdf")

	tests := []struct {
		name       string
		rec        *httptest.ResponseRecorder
		wantStatus int
	}{
		{"no token", a.do(http.MethodGet, "/api/v1/projects/"+project.ID+"/status", "", nil, ""), http.StatusUnauthorized},
		{"bad token", a.do(http.MethodGet, "/api/v1/projects/"+project.ID+"/status", "nope", nil, ""), http.StatusUnauthorized},
		{"status as other user", a.do(http.MethodGet, "/api/v1/projects/"+project.ID+"/status", "token-2", nil, ""), http.StatusForbidden},
		{"upload as other user", a.upload("token-2", project.ID, "x.pdf"), http.StatusForbidden},
		{"dispatch as other user", a.dispatch("token-2", project.ID, reg.DocumentID), http.StatusForbidden},
		{"comparison as other user", a.do(http.MethodGet, "/api/v1/projects/"+project.ID+"/comparison", "token-2", nil, ""), http.StatusForbidden},
		{"unknown project", a.do(http.MethodGet, "/api/v1/projects/missing/status", "token-1", nil, ""), http.StatusNotFound},
		{"non pdf upload", a.upload("token-1", project.ID, "notes.txt"), http.StatusBadRequest},
		{"bad priorities", a.postJSON("/api/v1/projects/"+project.ID+"/dispatch", "token-1", `{"document_ids":["`+reg.DocumentID+`"],"priorities":{"price":"high"}}`), http.StatusBadRequest},
		{"unknown body field", a.postJSON("/api/v1/projects", "token-1", `{"name":"x","budget":1}`), http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d (body %s)", tt.rec.Code, tt.wantStatus, tt.rec.Body)
			}
		})
	}
}

func TestCORSPreflight(t *testing.T) {
	a := newTestAPI(t)

	rec := a.do(http.MethodOptions, "/api/v1/projects", "", nil, "")
	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Errorf("allow origin = %q", got)
	}
}
