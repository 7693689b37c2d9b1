package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/iho/pocketledger/internal/domain"
)

func TestReportHandler_Download(t *testing.T) {
	h := NewReportHandler(&reportServiceStub{
		writeFn: func(ctx context.Context, ownerID string, w io.Writer) error {
			_, err := io.WriteString(w, "%PDF-1.3 fake")
			return err
		},
	})

	rec := httptest.NewRecorder()
	h.Download(rec, asUser(httptest.NewRequest(http.MethodGet, "/api/v1/report.pdf", nil)))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Fatalf("unexpected content type %s", ct)
	}
	if rec.Header().Get("Content-Disposition") == "" {
		t.Fatalf("expected attachment disposition")
	}
	if rec.Body.String() != "%PDF-1.3 fake" {
		t.Fatalf("unexpected body %q", rec.Body.String())
	}
}

func TestReportHandler_DownloadErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"unknown user", domain.ErrUserNotFound, http.StatusNotFound},
		{"render failure", errors.New("font missing"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewReportHandler(&reportServiceStub{
				writeFn: func(ctx context.Context, ownerID string, w io.Writer) error {
					io.WriteString(w, "%PDF-partial")
					return tt.err
				},
			})

			rec := httptest.NewRecorder()
			h.Download(rec, asUser(httptest.NewRequest(http.MethodGet, "/api/v1/report.pdf", nil)))

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d", tt.wantStatus, rec.Code)
			}
			if rec.Header().Get("Content-Type") != "application/json" {
				t.Fatalf("partial document must not be sent")
			}
		})
	}
}
