package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

type fakeIdempotencyStore struct {
	checkCalls  int
	updateCalls int
	stored      map[string][]byte
}

func newFakeIdempotencyStore() *fakeIdempotencyStore {
	return &fakeIdempotencyStore{stored: make(map[string][]byte)}
}

func (s *fakeIdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	s.checkCalls++
	if existing, ok := s.stored[key]; ok {
		return true, existing, nil
	}
	s.stored[key] = []byte("processing")
	return false, nil, nil
}

func (s *fakeIdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	s.updateCalls++
	s.stored[key] = response
	return nil
}

func TestIdempotencyMiddleware_FirstRequestPassesThrough(t *testing.T) {
	store := newFakeIdempotencyStore()
	mw := NewIdempotencyMiddleware(store)

	handlerCalls := 0
	handler := mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerCalls++
		w.WriteHeader(http.StatusAccepted)
		w.Write([]byte(`{"reference_id":"TXN1"}`))
	}))

	req := httptest.NewRequest(http.MethodPost, "/deposits", strings.NewReader("{}"))
	req.Header.Set(IdempotencyKeyHeader, "key-1")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if handlerCalls != 1 {
		t.Errorf("handler calls = %d, want 1", handlerCalls)
	}
	if store.updateCalls != 1 {
		t.Errorf("update calls = %d, want 1", store.updateCalls)
	}
	if rec.Code != http.StatusAccepted {
		t.Errorf("status = %d, want 202", rec.Code)
	}
}

func TestIdempotencyMiddleware_ReplaysStoredResponse(t *testing.T) {
	store := newFakeIdempotencyStore()
	store.stored["key-1"] = []byte(`{"reference_id":"TXN1"}`)
	mw := NewIdempotencyMiddleware(store)

	handler := mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler must not run for a replayed key")
	}))

	req := httptest.NewRequest(http.MethodPost, "/deposits", strings.NewReader("{}"))
	req.Header.Set(IdempotencyKeyHeader, "key-1")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Header().Get("X-Idempotency-Replay") != "true" {
		t.Error("expected replay header")
	}
	if got := rec.Body.String(); got != `{"reference_id":"TXN1"}` {
		t.Errorf("unexpected replayed body: %s", got)
	}
}

func TestIdempotencyMiddleware_SkipsRequestsWithoutKey(t *testing.T) {
	store := newFakeIdempotencyStore()
	mw := NewIdempotencyMiddleware(store)

	handler := mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))

	req := httptest.NewRequest(http.MethodPost, "/deposits", strings.NewReader("{}"))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if store.checkCalls != 0 {
		t.Errorf("check calls = %d, want 0", store.checkCalls)
	}
}

func TestIdempotencyMiddleware_SkipsGetRequests(t *testing.T) {
	store := newFakeIdempotencyStore()
	mw := NewIdempotencyMiddleware(store)

	handler := mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/transactions/TXN1", nil)
	req.Header.Set(IdempotencyKeyHeader, "key-1")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if store.checkCalls != 0 {
		t.Errorf("check calls = %d, want 0", store.checkCalls)
	}
}

func TestIdempotencyMiddleware_FailedResponsesNotStored(t *testing.T) {
	store := newFakeIdempotencyStore()
	mw := NewIdempotencyMiddleware(store)

	handler := mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))

	req := httptest.NewRequest(http.MethodPost, "/withdrawals", strings.NewReader("{}"))
	req.Header.Set(IdempotencyKeyHeader, "key-1")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if store.updateCalls != 0 {
		t.Errorf("update calls = %d, want 0 for non-2xx response", store.updateCalls)
	}
}
