package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-logr/logr"

	"markscan/internal/metrics"
	"markscan/internal/pipeline"
	"markscan/internal/store"
	"markscan/internal/types"
)

// Handler serves the scan API. Scanner is used as a template: each request
// runs on its own copy so observers never leak between requests.
type Handler struct {
	Scanner pipeline.Scanner
	Reports store.Reports
	Log     logr.Logger
}

type scanRequest struct {
	Target string `json:"target"`
}

type scanList struct {
	Scans []string `json:"scans"`
}

type fileList struct {
	ID    string   `json:"id"`
	Files []string `json:"files"`
}

type errorBody struct {
	Error string `json:"error"`
}

// Routes returns the API mux wrapped in CORS.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/scans", h.createScan)
	mux.HandleFunc("GET /v1/scans", h.listScans)
	mux.HandleFunc("GET /v1/scans/stream", h.streamScan)
	mux.HandleFunc("GET /v1/scans/{id}", h.getScan)
	mux.HandleFunc("GET /v1/scans/{id}/files", h.listFiles)
	mux.Handle("GET /metrics", metrics.Handler())
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	return CORS(mux)
}

func (h *Handler) createScan(w http.ResponseWriter, r *http.Request) {
	var req scanRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<16)).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body: " + err.Error()})
		return
	}
	report, err := h.runScan(r.Context(), strings.TrimSpace(req.Target), nil)
	if err != nil {
		h.Log.Error(err, "scan failed", "target", req.Target)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusCreated, report)
}

// runScan scans and stores the report. A storage failure fails the request
// so clients never receive an ID they cannot fetch.
func (h *Handler) runScan(ctx context.Context, target string, observe func(pipeline.Event)) (types.Report, error) {
	s := h.Scanner
	s.Observer = observe
	if s.Logger.GetSink() == nil {
		s.Logger = h.Log
	}
	report, err := s.Scan(ctx, target)
	if err != nil {
		return types.Report{}, err
	}
	if err := h.Reports.Save(ctx, report); err != nil {
		return types.Report{}, err
	}
	return report, nil
}

func (h *Handler) listScans(w http.ResponseWriter, r *http.Request) {
	ids, err := h.Reports.IDs(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: err.Error()})
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, scanList{Scans: ids})
}

func (h *Handler) getScan(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PathValue("id"))
	report, err := h.Reports.Load(r.Context(), id)
	if err != nil {
		writeStoreError(w, id, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *Handler) listFiles(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PathValue("id"))
	files, err := h.Reports.Files(r.Context(), id)
	if err != nil {
		writeStoreError(w, id, err)
		return
	}
	writeJSON(w, http.StatusOK, fileList{ID: id, Files: files})
}

func writeStoreError(w http.ResponseWriter, id string, err error) {
	switch {
	case errors.Is(err, store.ErrInvalidKey):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
	case errors.Is(err, store.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: "scan " + id + " not found"})
	default:
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: err.Error()})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
