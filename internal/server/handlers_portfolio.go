package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/rsmishra/nivesh/internal/services/portfolio"
)

// maxUploadSize caps statement uploads at 20MB.
const maxUploadSize = 20 << 20

// handlePortfolioUpload handles POST /api/portfolio/upload - ingest a demat
// statement PDF sent as multipart form field "file".
func (s *Server) handlePortfolioUpload(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		WriteError(w, http.StatusBadRequest, fmt.Sprintf("Invalid multipart form: %v", err))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Form field 'file' is required")
		return
	}
	defer file.Close()

	if !strings.EqualFold(filepath.Ext(header.Filename), ".pdf") {
		WriteError(w, http.StatusBadRequest, "Only PDF statements are supported")
		return
	}

	tmp, err := os.CreateTemp("", "statement-*.pdf")
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Failed to stage upload")
		return
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, file); err != nil {
		tmp.Close()
		WriteError(w, http.StatusInternalServerError, "Failed to stage upload")
		return
	}
	tmp.Close()

	snapshot, err := s.app.PortfolioService.IngestStatement(r.Context(), tmp.Name())
	if err != nil {
		if errors.Is(err, portfolio.ErrExtractionNotConfigured) {
			WriteError(w, http.StatusServiceUnavailable, err.Error())
			return
		}
		WriteError(w, http.StatusUnprocessableEntity, fmt.Sprintf("Failed to process statement: %v", err))
		return
	}

	WriteJSON(w, http.StatusOK, snapshot)
}

// handlePortfolioRefresh handles POST /api/portfolio/refresh - re-enrich the
// latest snapshot with current prices.
func (s *Server) handlePortfolioRefresh(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	snapshot, err := s.app.PortfolioService.Refresh(r.Context())
	if err != nil {
		WriteError(w, http.StatusNotFound, fmt.Sprintf("Refresh failed: %v", err))
		return
	}

	WriteJSON(w, http.StatusOK, snapshot)
}

// handlePortfolioGet handles GET /api/portfolio - return the latest snapshot.
func (s *Server) handlePortfolioGet(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	snapshot, err := s.app.PortfolioService.Latest(r.Context())
	if err != nil {
		WriteError(w, http.StatusNotFound, "No portfolio found, upload a statement first")
		return
	}

	WriteJSON(w, http.StatusOK, snapshot)
}

// handlePortfolioSummary handles GET /api/portfolio/summary.
func (s *Server) handlePortfolioSummary(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	snapshot, err := s.app.PortfolioService.Latest(r.Context())
	if err != nil {
		WriteError(w, http.StatusNotFound, "No portfolio found, upload a statement first")
		return
	}

	WriteJSON(w, http.StatusOK, snapshot.Summary())
}
