package handler

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strconv"
)

// ReportService defines the behavior needed by ReportHandler.
type ReportService interface {
	ContentType() string
	Write(ctx context.Context, ownerID string, w io.Writer) error
}

// ReportHandler serves the printable expense report.
type ReportHandler struct {
	reports ReportService
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(reports ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// Download renders the report as an attachment. The document is buffered
// so a rendering failure can still produce an error status.
func (h *ReportHandler) Download(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := h.reports.Write(r.Context(), user.ID, &buf); err != nil {
		writeDomainError(w, "failed to render report", err)
		return
	}

	w.Header().Set("Content-Type", h.reports.ContentType())
	w.Header().Set("Content-Disposition", `attachment; filename="expense-report.pdf"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}
