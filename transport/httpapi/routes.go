package httpapi

import (
	"bufio"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/qrgen/core/generate"
	"github.com/dmitrymomot/qrgen/core/health"
	"github.com/dmitrymomot/qrgen/core/qr"
)

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]any{
		"service": "qrgen",
		"version": h.version,
		"endpoints": map[string]string{
			"generate": "POST /qr/generate",
			"batch":    "POST /qr/batch",
			"upload":   "POST /qr/upload",
			"wifi":     "POST /qr/wifi",
			"vcard":    "POST /qr/vcard",
			"url":      "POST /qr/url",
			"download": "GET /qr/download/{id}",
			"stats":    "GET /qr/stats",
			"health":   "GET /health",
		},
	})
}

func (h *Handler) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	if err := validateContent(req.Data); err != nil {
		h.writeError(w, r, err)
		return
	}

	params, err := req.toParams()
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	params.Data = req.Data

	a, err := h.svc.Generate(r.Context(), params)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.scheduleReplication(a)
	h.writeJSON(w, http.StatusOK, h.newQRResponse(a, true))
}

func (h *Handler) handleBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	if len(req.Items) == 0 {
		h.writeError(w, r, fmt.Errorf("%w: items is empty", errInvalidBody))
		return
	}
	if len(req.Items) > maxBatchSize {
		h.writeError(w, r, fmt.Errorf("%w: batch size %d exceeds limit of %d", errInvalidBody, len(req.Items), maxBatchSize))
		return
	}

	params, err := req.toParams()
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	// Validate every item up front so a bad one fails the batch before any
	// artifact is produced.
	for i, item := range req.Items {
		if err := validateContent(item); err != nil {
			h.writeError(w, r, fmt.Errorf("item %d: %w", i, err))
			return
		}
	}

	artifacts, err := h.svc.GenerateBatch(r.Context(), req.Items, params)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	results := make([]qrResponse, 0, len(artifacts))
	for _, a := range artifacts {
		h.scheduleReplication(a)
		results = append(results, h.newQRResponse(a, false))
	}

	h.writeJSON(w, http.StatusOK, results)
}

// handleUpload accepts a .txt or .csv file with one payload per line and
// generates a code for each line using default render settings.
func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		h.writeError(w, r, fmt.Errorf("%w: missing file field", errInvalidBody))
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if ext != ".txt" && ext != ".csv" {
		h.writeError(w, r, fmt.Errorf("%w: unsupported file type %q, expected .txt or .csv", errInvalidBody, ext))
		return
	}

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		lines = append(lines, line)
		if len(lines) > maxUploadLines {
			h.writeError(w, r, fmt.Errorf("%w: file exceeds %d lines", errInvalidBody, maxUploadLines))
			return
		}
	}
	if err := scanner.Err(); err != nil {
		h.writeError(w, r, fmt.Errorf("%w: %s", errInvalidBody, err))
		return
	}
	if len(lines) == 0 {
		h.writeError(w, r, fmt.Errorf("%w: file contains no payloads", errInvalidBody))
		return
	}

	for _, line := range lines {
		if err := validateContent(line); err != nil {
			h.writeError(w, r, err)
			return
		}
	}

	artifacts, err := h.svc.GenerateBatch(r.Context(), lines, generate.Params{})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	results := make([]qrResponse, 0, len(artifacts))
	for _, a := range artifacts {
		h.scheduleReplication(a)
		results = append(results, h.newQRResponse(a, false))
	}

	h.writeJSON(w, http.StatusOK, results)
}

func (h *Handler) handleWiFi(w http.ResponseWriter, r *http.Request) {
	var req wifiRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if req.SSID == "" {
		h.writeError(w, r, fmt.Errorf("%w: ssid is required", qr.ErrEmptyContent))
		return
	}

	params, err := req.toParams()
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	a, err := h.svc.GenerateWiFi(r.Context(), req.SSID, req.Password, req.Security, req.Hidden, params)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.scheduleReplication(a)
	h.writeJSON(w, http.StatusOK, h.newQRResponse(a, true))
}

func (h *Handler) handleVCard(w http.ResponseWriter, r *http.Request) {
	var req vcardRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if req.Name == "" {
		h.writeError(w, r, fmt.Errorf("%w: name is required", qr.ErrEmptyContent))
		return
	}

	params, err := req.toParams()
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	a, err := h.svc.GenerateVCard(r.Context(), req.Name, req.Phone, req.Email, req.Org, params)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.scheduleReplication(a)
	h.writeJSON(w, http.StatusOK, h.newQRResponse(a, true))
}

func (h *Handler) handleURL(w http.ResponseWriter, r *http.Request) {
	var req urlRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if req.URL == "" {
		h.writeError(w, r, fmt.Errorf("%w: url is required", qr.ErrEmptyContent))
		return
	}
	if err := validateContent(req.URL); err != nil {
		h.writeError(w, r, err)
		return
	}

	params, err := req.toParams()
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	a, err := h.svc.GenerateURL(r.Context(), req.URL, params)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.scheduleReplication(a)
	h.writeJSON(w, http.StatusOK, h.newQRResponse(a, true))
}

func (h *Handler) handleDownload(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	a, err := h.cache.Get(id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	filename := fmt.Sprintf("qr-code-%s.%s", a.ID, a.Format.Ext())
	w.Header().Set("Content-Type", a.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(a.Bytes)
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	stats := h.cache.Stats()

	resp := map[string]any{
		"total_qr_codes":     stats.Count,
		"memory_usage_bytes": stats.TotalBytes,
		"average_size_bytes": stats.AverageBytes,
	}
	if h.jobs != nil {
		jobStats := h.jobs.Stats()
		resp["replication"] = map[string]any{
			"completed": jobStats.Done,
			"failed":    jobStats.Failed,
			"dropped":   jobStats.Dropped,
			"queued":    jobStats.Queued,
		}
	}

	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if h.checker == nil {
		h.writeJSON(w, http.StatusOK, map[string]string{"status": health.StatusHealthy})
		return
	}

	report := h.checker.Report(r.Context())
	status := http.StatusOK
	if report.Status == health.StatusUnhealthy {
		status = http.StatusServiceUnavailable
	}
	h.writeJSON(w, status, report)
}

func (h *Handler) handleReady(w http.ResponseWriter, r *http.Request) {
	if h.checker != nil {
		if err := h.checker.Ready(r.Context()); err != nil {
			h.writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: err.Error()})
			return
		}
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (h *Handler) handleLive(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}
