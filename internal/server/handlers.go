package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/TheCodeHarbor/valvoline-pds-api/internal/pds"
	"github.com/TheCodeHarbor/valvoline-pds-api/internal/storage"
)

const (
	outputSummary    = "summary"
	outputComparison = "comparison"

	maxUploadMemory = 10 << 20
)

type answerRequest struct {
	ProductAURL  string `json:"product_a_url"`
	ProductAFile string `json:"product_a_file"`
	ProductBURL  string `json:"product_b_url"`
	ProductBFile string `json:"product_b_file"`
	Locale       string `json:"locale"`
	// ExpectedOutput selects "summary" (product A only) or "comparison".
	ExpectedOutput string `json:"expected_output"`
}

var errMissingSource = errors.New("a product source (url or file) is required")

type errorResponse struct {
	Error string `json:"error"`
}

type uploadResponse struct {
	Path string `json:"path"`
}

type healthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Service: "valvoline-pds-api"})
}

// handleUpload stores a multipart PDF upload and returns its stored path,
// which later /answer requests reference as product_a_file / product_b_file.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("parse multipart form: %w", err))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("missing 'file' field: %w", err))
		return
	}
	defer file.Close()

	path, err := s.store.SavePDF(file)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	s.logger.Info("stored upload", "name", header.Filename, "path", path)
	writeJSON(w, http.StatusOK, uploadResponse{Path: path})
}

// handleAnswer resolves one or two product sources, runs extraction, and
// returns the localized reply plus the structured records.
func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}

	locale := req.Locale
	if locale == "" {
		locale = s.defaultLocale
	}
	output := req.ExpectedOutput
	if output == "" {
		output = outputSummary
	}

	docA, err := s.resolveSource(r, req.ProductAURL, req.ProductAFile)
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}

	var result *pds.AnswerResult
	switch output {
	case outputSummary:
		result, err = s.service.Summarize(docA, locale)
	case outputComparison:
		var docB pds.SourceDocument
		docB, err = s.resolveSource(r, req.ProductBURL, req.ProductBFile)
		if err == nil {
			result, err = s.service.Compare(docA, docB, locale)
		}
	default:
		s.writeError(w, http.StatusBadRequest,
			fmt.Errorf("expected_output must be %q or %q", outputSummary, outputComparison))
		return
	}
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleDriveSync(w http.ResponseWriter, r *http.Request) {
	if s.syncer == nil {
		s.writeError(w, http.StatusServiceUnavailable, errors.New("drive sync is not configured"))
		return
	}
	result, err := s.syncer.SyncFolder(r.Context(), s.driveFolderID)
	if err != nil {
		s.writeError(w, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// resolveSource turns an answer-request source into document bytes. A file
// reference is confined to the data directory; URLs are fetched as-is.
func (s *Server) resolveSource(r *http.Request, url, file string) (pds.SourceDocument, error) {
	switch {
	case url != "":
		data, err := s.store.Fetch(r.Context(), url)
		if err != nil {
			return pds.SourceDocument{}, err
		}
		return pds.SourceDocument{SourceID: url, Data: data}, nil
	case file != "":
		path := filepath.Join(s.store.DataDir(), storage.SafeName(file))
		data, err := s.store.Fetch(r.Context(), path)
		if err != nil {
			return pds.SourceDocument{}, err
		}
		return pds.SourceDocument{SourceID: path, Data: data}, nil
	default:
		return pds.SourceDocument{}, errMissingSource
	}
}

// statusFor maps pipeline errors to HTTP statuses: caller mistakes are 400,
// documents we fetched but could not make sense of are 422.
func statusFor(err error) int {
	var fetchErr *storage.FetchError
	var localeErr *pds.UnsupportedLocaleError
	var extractErr *pds.ExtractionError
	var emptyErr *pds.EmptyDocumentError

	switch {
	case errors.Is(err, errMissingSource):
		return http.StatusBadRequest
	case errors.As(err, &fetchErr), errors.As(err, &localeErr):
		return http.StatusBadRequest
	case errors.As(err, &extractErr), errors.As(err, &emptyErr):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "status", status, "error", err)
	} else {
		s.logger.Warn("request rejected", "status", status, "error", err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
