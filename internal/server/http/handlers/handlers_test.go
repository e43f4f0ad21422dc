package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/polkiloo/phonetrack/internal/app"
	domainErrors "github.com/polkiloo/phonetrack/internal/domain/errors"
	"github.com/polkiloo/phonetrack/internal/domain/model"
	"github.com/polkiloo/phonetrack/internal/logger"
	"github.com/polkiloo/phonetrack/internal/server/http/dto"
	testhelpers "github.com/polkiloo/phonetrack/internal/test"
	"github.com/polkiloo/phonetrack/internal/usecase"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fixture struct {
	router     *gin.Engine
	remote     *testhelpers.PhoneNumberRemoteStub
	extraction *testhelpers.ExtractionRemoteStub
}

func newFixture(t *testing.T, records ...model.PhoneNumber) *fixture {
	t.Helper()
	remote := testhelpers.NewPhoneNumberRemoteStub(records...)
	extraction := &testhelpers.ExtractionRemoteStub{}
	engine := usecase.NewEngine(remote, &testhelpers.CacheStoreStub{}, logger.Discard(), nil)
	t.Cleanup(engine.Close)
	if err := engine.Refresh(context.Background()); err != nil {
		t.Fatalf("seed refresh: %v", err)
	}
	tracker := app.NewTracker(engine, usecase.NewImportWorkflow(extraction, engine, "", logger.Discard()))

	numbers := NewPhoneNumberHandler(tracker)
	imports := NewImportHandler(tracker)
	router := gin.New()
	router.GET("/api/phone-numbers", numbers.List)
	router.POST("/api/phone-numbers", numbers.Create)
	router.POST("/api/phone-numbers/refresh", numbers.Refresh)
	router.POST("/api/phone-numbers/bulk", numbers.Bulk)
	router.GET("/api/phone-numbers/:id", numbers.Get)
	router.PATCH("/api/phone-numbers/:id", numbers.Modify)
	router.DELETE("/api/phone-numbers/:id", numbers.Delete)
	router.POST("/api/phone-numbers/:id/used", numbers.MarkUsed)
	router.POST("/api/phone-numbers/:id/tried", numbers.MarkTried)
	router.GET("/api/import", imports.Status)
	router.POST("/api/import/upload", imports.Upload)
	router.POST("/api/import/review", imports.Review)
	router.PUT("/api/import/candidates", imports.ReplaceCandidates)
	router.DELETE("/api/import/candidates/:number", imports.RemoveCandidate)
	router.POST("/api/import/confirm", imports.Confirm)
	router.POST("/api/import/reset", imports.Reset)

	return &fixture{router: router, remote: remote, extraction: extraction}
}

func (f *fixture) do(t *testing.T, method, path string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %s: %v", w.Body.String(), err)
	}
	return out
}

func TestStatusFor(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"duplicate", &domainErrors.DuplicateError{Number: "1"}, http.StatusConflict},
		{"not confirmed", &domainErrors.NotConfirmedError{Detail: "x"}, http.StatusConflict},
		{"import busy", domainErrors.ErrImportInProgress, http.StatusConflict},
		{"invalid draft", domainErrors.ErrInvalidDraft, http.StatusUnprocessableEntity},
		{"invalid amount", domainErrors.ErrInvalidAmount, http.StatusUnprocessableEntity},
		{"empty image", domainErrors.ErrEmptyImage, http.StatusBadRequest},
		{"not found", domainErrors.ErrNotFound, http.StatusNotFound},
		{"remote not found", &domainErrors.SyncError{Kind: domainErrors.KindNotFound}, http.StatusNotFound},
		{"closed", domainErrors.ErrClosed, http.StatusServiceUnavailable},
		{"validation", &domainErrors.SyncError{Kind: domainErrors.KindValidation}, http.StatusUnprocessableEntity},
		{"network", &domainErrors.SyncError{Kind: domainErrors.KindNetwork}, http.StatusBadGateway},
		{"decode", &domainErrors.SyncError{Kind: domainErrors.KindDecode}, http.StatusBadGateway},
		{"server", &domainErrors.SyncError{Kind: domainErrors.KindServer}, http.StatusBadGateway},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := StatusFor(tc.err); got != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, got)
			}
		})
	}
}

func TestRecordID(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Params = gin.Params{{Key: "id", Value: "nope"}}
	if _, err := RecordID(c); err == nil {
		t.Fatal("expected error for malformed id")
	}
	id := uuid.New()
	c.Params = gin.Params{{Key: "id", Value: id.String()}}
	got, err := RecordID(c)
	if err != nil || got != id {
		t.Fatalf("expected %s, got %s (%v)", id, got, err)
	}
}

func TestListAndGet(t *testing.T) {
	rec := testhelpers.RandomRecord()
	f := newFixture(t, rec)

	w := f.do(t, http.MethodGet, "/api/phone-numbers", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	list := decode[[]model.PhoneNumber](t, w)
	if len(list) != 1 || !list[0].Equal(rec) {
		t.Fatalf("unexpected list %+v", list)
	}

	w = f.do(t, http.MethodGet, "/api/phone-numbers/"+rec.ID.String(), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	w = f.do(t, http.MethodGet, "/api/phone-numbers/"+uuid.NewString(), nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	w = f.do(t, http.MethodGet, "/api/phone-numbers/not-a-uuid", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestCreate(t *testing.T) {
	f := newFixture(t, model.PhoneNumber{ID: uuid.New(), Number: "555-123-4567"})

	w := f.do(t, http.MethodPost, "/api/phone-numbers", []byte(`{"number":"5550001111","name":"front desk"}`))
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	created := decode[model.PhoneNumber](t, w)
	if created.Number != "5550001111" || created.DisplayName() != "front desk" || created.NumberOfPoints != 0 {
		t.Fatalf("unexpected record %+v", created)
	}

	before := f.remote.Calls("create")
	w = f.do(t, http.MethodPost, "/api/phone-numbers", []byte(`{"number":"5551234567"}`))
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate, got %d", w.Code)
	}
	resp := decode[dto.ErrorResponse](t, w)
	if resp.Error != "phone number 5551234567 already exists" {
		t.Fatalf("unexpected error message %q", resp.Error)
	}
	if f.remote.Calls("create") != before {
		t.Fatal("expected no remote call for duplicate")
	}

	w = f.do(t, http.MethodPost, "/api/phone-numbers", []byte(`{"name":"x"}`))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing number, got %d", w.Code)
	}
}

func TestCreateMapsRemoteFailures(t *testing.T) {
	f := newFixture(t)
	f.remote.CreateFn = func(context.Context, model.PhoneNumber) (model.PhoneNumber, error) {
		return model.PhoneNumber{}, &domainErrors.SyncError{Kind: domainErrors.KindValidation, Op: "create", Status: http.StatusBadRequest, Message: "Invalid phone number"}
	}
	w := f.do(t, http.MethodPost, "/api/phone-numbers", []byte(`{"number":"12"}`))
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", w.Code)
	}
	resp := decode[dto.ErrorResponse](t, w)
	if resp.Error != "Invalid phone number" || resp.Kind != "validation" {
		t.Fatalf("unexpected error body %+v", resp)
	}

	f.remote.CreateFn = func(context.Context, model.PhoneNumber) (model.PhoneNumber, error) {
		return model.PhoneNumber{}, &domainErrors.SyncError{Kind: domainErrors.KindNetwork, Op: "create", Err: errors.New("refused")}
	}
	w = f.do(t, http.MethodPost, "/api/phone-numbers", []byte(`{"number":"5559990000"}`))
	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", w.Code)
	}
}

func TestModify(t *testing.T) {
	rec := model.PhoneNumber{ID: uuid.New(), Number: "5551234567"}
	f := newFixture(t, rec)
	path := "/api/phone-numbers/" + rec.ID.String()

	w := f.do(t, http.MethodPatch, path, []byte(`{"amount_spent":42.5,"derive_points":true}`))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	got := decode[model.PhoneNumber](t, w)
	if got.NumberOfPoints != 42 || got.AmountSpent != 42.5 {
		t.Fatalf("unexpected record %+v", got)
	}

	w = f.do(t, http.MethodPatch, path, []byte(`{"number_of_points":-1}`))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for negative points, got %d", w.Code)
	}

	f.remote.UpdateFn = func(context.Context, uuid.UUID, model.UpdatePayload) (model.PhoneNumber, error) {
		return model.PhoneNumber{}, &domainErrors.SyncError{Kind: domainErrors.KindServer, Op: "update", Status: http.StatusInternalServerError, Message: "Internal Server Error"}
	}
	w = f.do(t, http.MethodPatch, path, []byte(`{"has_redeem_value":true}`))
	if w.Code != http.StatusAccepted {
		t.Fatalf("expected 202 when the update failed remotely, got %d", w.Code)
	}
	if w.Header().Get(SyncErrorHeader) != "Internal Server Error" {
		t.Fatalf("expected sync error header, got %q", w.Header().Get(SyncErrorHeader))
	}
	unchanged := decode[model.PhoneNumber](t, w)
	if unchanged.HasRedeemValue || unchanged.NumberOfPoints != 42 {
		t.Fatalf("expected last known-good record, got %+v", unchanged)
	}

	w = f.do(t, http.MethodPatch, "/api/phone-numbers/"+uuid.NewString(), []byte(`{}`))
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestMarkUsedAndTried(t *testing.T) {
	rec := model.PhoneNumber{ID: uuid.New(), Number: "5551234567"}
	f := newFixture(t, rec)

	w := f.do(t, http.MethodPost, "/api/phone-numbers/"+rec.ID.String()+"/used", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if got := decode[model.PhoneNumber](t, w); got.LastUsed == nil {
		t.Fatal("expected last_used to be set")
	}
	w = f.do(t, http.MethodPost, "/api/phone-numbers/"+rec.ID.String()+"/tried", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if got := decode[model.PhoneNumber](t, w); got.LastTried == nil || got.LastUsed == nil {
		t.Fatalf("expected both timestamps, got %+v", got)
	}
}

func TestDelete(t *testing.T) {
	keep := model.PhoneNumber{ID: uuid.New(), Number: "5550000000"}
	rec := model.PhoneNumber{ID: uuid.New(), Number: "5551234567"}
	f := newFixture(t, keep, rec)

	f.remote.DeleteFn = func(context.Context, model.PhoneNumber) (model.DeleteResponse, error) {
		return model.DeleteResponse{Detail: "Phone number not deleted."}, nil
	}
	w := f.do(t, http.MethodDelete, "/api/phone-numbers/"+rec.ID.String(), nil)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 without confirmation, got %d", w.Code)
	}

	f.remote.DeleteFn = nil
	w = f.do(t, http.MethodDelete, "/api/phone-numbers/"+rec.ID.String(), nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
	w = f.do(t, http.MethodDelete, "/api/phone-numbers/"+rec.ID.String(), nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for second delete, got %d", w.Code)
	}
}

func TestRefreshServesLastKnownGood(t *testing.T) {
	rec := testhelpers.RandomRecord()
	f := newFixture(t, rec)
	f.remote.FetchAllFn = func(context.Context) ([]model.PhoneNumber, error) {
		return nil, &domainErrors.SyncError{Kind: domainErrors.KindNetwork, Op: "fetch_all", Message: "service unreachable", Err: errors.New("dial")}
	}

	w := f.do(t, http.MethodPost, "/api/phone-numbers/refresh", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if w.Header().Get(SyncErrorHeader) == "" {
		t.Fatal("expected sync error header")
	}
	list := decode[[]model.PhoneNumber](t, w)
	if len(list) != 1 || !list[0].Equal(rec) {
		t.Fatalf("expected cached list, got %+v", list)
	}
}

func TestBulk(t *testing.T) {
	f := newFixture(t, testhelpers.RandomRecord(), testhelpers.RandomRecord())

	w := f.do(t, http.MethodPost, "/api/phone-numbers/bulk", []byte(`{"has_redeem_value":true,"number_of_points":3}`))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	for _, r := range decode[[]model.PhoneNumber](t, w) {
		if !r.HasRedeemValue || r.NumberOfPoints != 3 {
			t.Fatalf("expected bulk values, got %+v", r)
		}
	}

	w = f.do(t, http.MethodPost, "/api/phone-numbers/bulk", []byte(`{"number_of_points":-2}`))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for negative points, got %d", w.Code)
	}
}

func TestImportFlow(t *testing.T) {
	f := newFixture(t)
	f.extraction.Candidates = []string{"5550001111", "5550002222"}

	w := f.do(t, http.MethodGet, "/api/import", nil)
	if status := decode[dto.ImportStatusResponse](t, w); status.Phase != "IDLE" {
		t.Fatalf("expected idle, got %s", status.Phase)
	}

	w = f.do(t, http.MethodPost, "/api/import/upload?file_name=receipt.jpeg", []byte{0xff, 0xd8})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	status := decode[dto.ImportStatusResponse](t, w)
	if status.Phase != "READY" || len(status.Candidates) != 2 {
		t.Fatalf("unexpected status %+v", status)
	}
	if f.extraction.Uploads[0].FileName != "receipt.jpeg" {
		t.Fatalf("expected file name from query, got %q", f.extraction.Uploads[0].FileName)
	}

	w = f.do(t, http.MethodPut, "/api/import/candidates", []byte(`{"numbers":["5550001111","5550002222","5550003333"]}`))
	if status := decode[dto.ImportStatusResponse](t, w); len(status.Candidates) != 3 {
		t.Fatalf("expected three candidates, got %+v", status)
	}

	w = f.do(t, http.MethodDelete, "/api/import/candidates/5550003333", nil)
	if status := decode[dto.ImportStatusResponse](t, w); len(status.Candidates) != 2 {
		t.Fatalf("expected two candidates, got %+v", status)
	}

	w = f.do(t, http.MethodPost, "/api/import/review", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	f.remote.SetRecords(
		model.PhoneNumber{ID: uuid.New(), Number: "5550001111"},
		model.PhoneNumber{ID: uuid.New(), Number: "5550002222"},
	)
	w = f.do(t, http.MethodPost, "/api/import/confirm", nil)
	status = decode[dto.ImportStatusResponse](t, w)
	if status.Phase != "CONFIRMED" || len(status.Candidates) != 0 {
		t.Fatalf("unexpected status %+v", status)
	}
	list := decode[[]model.PhoneNumber](t, f.do(t, http.MethodGet, "/api/phone-numbers", nil))
	if len(list) != 2 {
		t.Fatalf("expected refetched collection, got %d", len(list))
	}

	w = f.do(t, http.MethodPost, "/api/import/reset", nil)
	if status := decode[dto.ImportStatusResponse](t, w); status.Phase != "IDLE" {
		t.Fatalf("expected idle after reset, got %s", status.Phase)
	}
}

func TestImportErrors(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/api/import/upload", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty image, got %d", w.Code)
	}

	f.extraction.ConfirmFn = func(context.Context) error {
		return &domainErrors.SyncError{Kind: domainErrors.KindServer, Op: "confirm_candidates", Status: http.StatusInternalServerError}
	}
	w = f.do(t, http.MethodPost, "/api/import/confirm", nil)
	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", w.Code)
	}
	if w.Header().Get(SyncErrorHeader) != "Failed to confirm numbers. Please try again." {
		t.Fatalf("unexpected header %q", w.Header().Get(SyncErrorHeader))
	}

	w = f.do(t, http.MethodPut, "/api/import/candidates", []byte(`{}`))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without numbers, got %d", w.Code)
	}
}

func TestUploadOverLimitIsRejected(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/api/import/upload", io.NopCloser(bytes.NewReader(make([]byte, 64))))
	req.ContentLength = -1
	w := httptest.NewRecorder()
	req.Body = http.MaxBytesReader(w, req.Body, 16)
	f.router.ServeHTTP(w, req)

	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d", w.Code)
	}
	if len(f.extraction.Uploads) != 0 {
		t.Fatalf("expected no upload, got %d", len(f.extraction.Uploads))
	}
}
