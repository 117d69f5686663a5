package httpclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	herrors "github.com/FL1CKfps/Harmony-player/internal/errors"
)

type countingObserver struct{ n atomic.Int32 }

func (o *countingObserver) ObserveRequest(string, int, time.Duration) { o.n.Add(1) }

func TestGetDecodesAndSendsParams(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search/songs" {
			t.Errorf("path = %q, want /search/songs", r.URL.Path)
		}
		if got := r.URL.Query().Get("query"); got != "tum hi ho" {
			t.Errorf("query = %q, want %q", got, "tum hi ho")
		}
		if got := r.URL.Query().Get("key"); got != "secret" {
			t.Errorf("key = %q, want %q", got, "secret")
		}
		w.Write([]byte(`{"status":"ok"}`))
	}))
	defer srv.Close()

	obs := &countingObserver{}
	c := New("saavn", srv.URL+"/", WithDefaultParam("key", "secret"), WithObserver(obs))

	var out struct {
		Status string `json:"status"`
	}
	if err := c.Get(context.Background(), "/search/songs", map[string]string{"query": "tum hi ho"}, &out); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if out.Status != "ok" {
		t.Errorf("Status = %q, want %q", out.Status, "ok")
	}
	if obs.n.Load() != 1 {
		t.Errorf("observed %d requests, want 1", obs.n.Load())
	}
}

func TestGetRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := New("saavn", srv.URL, WithRetryWait(time.Millisecond))
	if err := c.Get(context.Background(), "/", nil, nil); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if calls.Load() != 3 {
		t.Errorf("calls = %d, want 3", calls.Load())
	}
}

func TestGetGivesUpAfterRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"message":"down"}`))
	}))
	defer srv.Close()

	c := New("saavn", srv.URL, WithRetryWait(time.Millisecond))
	err := c.Get(context.Background(), "/", nil, nil)
	if err == nil {
		t.Fatal("Get() error = nil, want failure")
	}
	if calls.Load() != maxRetries+1 {
		t.Errorf("calls = %d, want %d", calls.Load(), maxRetries+1)
	}
	if !errors.Is(err, herrors.ErrSearchProvider) {
		t.Errorf("errors.Is(err, ErrSearchProvider) = false for %v", err)
	}
	if StatusCode(err) != http.StatusInternalServerError {
		t.Errorf("StatusCode() = %d, want 500", StatusCode(err))
	}
}

func TestGetClientErrors(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		wantMsg   string
		wantLimit bool
	}{
		{"youtube envelope", http.StatusForbidden, `{"error":{"code":403,"message":"quotaExceeded"}}`, "youtube API error 403: quotaExceeded", false},
		{"plain", http.StatusNotFound, `not json`, "youtube API error 404: Not Found", false},
		{"rate limited", http.StatusTooManyRequests, `{}`, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			err := New("youtube", srv.URL).Get(context.Background(), "/videos", nil, nil)
			if err == nil {
				t.Fatal("Get() error = nil")
			}
			if calls.Load() != 1 {
				t.Errorf("calls = %d, want 1 (no retry on 4xx)", calls.Load())
			}
			if tt.wantMsg != "" && err.Error() != tt.wantMsg {
				t.Errorf("Error() = %q, want %q", err.Error(), tt.wantMsg)
			}
			if got := errors.Is(err, herrors.ErrRateLimited); got != tt.wantLimit {
				t.Errorf("errors.Is(err, ErrRateLimited) = %v, want %v", got, tt.wantLimit)
			}
		})
	}
}

func TestGetHonorsContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := New("saavn", srv.URL).Get(ctx, "/", nil, nil)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Get() error = %v, want context.Canceled", err)
	}
}
