package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
)

func TestVisionDescribe(t *testing.T) {
	var got visionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat/completions" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"  A triangle with sides 3, 4 and x.  "}}]}`))
	}))
	defer srv.Close()

	svc := NewVisionService("vision-key", srv.URL+"/api", "glm-4.5v", nil)
	desc, err := svc.Describe(context.Background(), "data:image/png;base64,iVBORw0KGgo=")
	if err != nil {
		t.Fatalf("Describe: %v", err)
	}
	if desc != "A triangle with sides 3, 4 and x." {
		t.Fatalf("description = %q", desc)
	}
	if got.Model != "glm-4.5v" || len(got.Messages) != 1 || len(got.Messages[0].Content) != 2 {
		t.Fatalf("unexpected request: %+v", got)
	}
	if got.Messages[0].Content[0].ImageURL == nil || !strings.HasPrefix(got.Messages[0].Content[0].ImageURL.URL, "data:image/png") {
		t.Fatalf("image part missing: %+v", got.Messages[0].Content[0])
	}
}

func TestVisionDescribeSingleAttempt(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	svc := NewVisionService("vision-key", srv.URL, "", nil)
	if _, err := svc.Describe(context.Background(), "https://example.com/a.png"); err == nil {
		t.Fatal("expected error")
	}
	if calls.Load() != 1 {
		t.Fatalf("calls = %d, want 1", calls.Load())
	}
}

func TestVisionDisabled(t *testing.T) {
	var svc *VisionService
	if svc.Enabled() {
		t.Fatal("nil service reported enabled")
	}
	_, err := NewVisionService("", "", "", nil).Describe(context.Background(), "x")
	if !errors.Is(err, ErrAIUnavailable) {
		t.Fatalf("error = %v", err)
	}
	_, err = NewVisionService("k", "", "", nil).Describe(context.Background(), " ")
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("error = %v", err)
	}
}
