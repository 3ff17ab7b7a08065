package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/a3tai/mcp-docintel/internal/docintel"
)

// multipartOverhead is allowed on top of the file size limit for form fields and boundaries
const multipartOverhead = 1 << 20

func (h *Handler) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req docintel.AnalyzeRequest

	if err := readJson(w, r, &req); err != nil {
		writeError(w, statusForBody(err), err)
		return
	}

	writeJson(w, h.service.Analyze(req))
}

func (h *Handler) handleField(w http.ResponseWriter, r *http.Request) {
	var req docintel.ExtractFieldRequest

	if err := readJson(w, r, &req); err != nil {
		writeError(w, statusForBody(err), err)
		return
	}

	result, err := h.service.ExtractField(req)

	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	writeJson(w, result)
}

// UploadResult is returned by the upload endpoint
type UploadResult struct {
	Status   string `json:"status"`
	Message  string `json:"message,omitempty"`
	Filename string `json:"filename,omitempty"`
	Data     any    `json:"data,omitempty"`
	Document any    `json:"document,omitempty"`
	Profile  any    `json:"profile,omitempty"`
}

// handleUpload reads the multipart "file", recovers its text and analyses
// it. Optional form values: labels (comma separated) and key, which also
// attaches the result to that profile.
func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxFileSize+multipartOverhead)

	file, header, err := r.FormFile("file")

	if err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			writeError(w, http.StatusRequestEntityTooLarge, err)
			return
		}
		writeError(w, http.StatusBadRequest, fmt.Errorf("missing file: %w", err))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)

	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	labels := splitLabels(r.FormValue("labels"))
	contentType := header.Header.Get("Content-Type")

	var result *docintel.ReadFileResult

	if contentType == "" || contentType == "application/octet-stream" {
		result, err = h.service.ReadBytes(r.Context(), header.Filename, data, labels)
	} else {
		result, err = h.service.ReadUpload(r.Context(), header.Filename, contentType, data, labels)
	}

	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	if result.Document.Empty() {
		writeJson(w, UploadResult{Status: "failed", Message: "No text extracted."})
		return
	}

	response := UploadResult{
		Status:   "success",
		Filename: header.Filename,
		Data:     result.Result,
		Document: result.Document,
	}

	if key := strings.TrimSpace(r.FormValue("key")); key != "" {
		p, err := h.service.AttachResult(r.Context(), key, result.Result)

		if err != nil {
			writeError(w, statusFor(err), err)
			return
		}

		response.Profile = p
	}

	writeJson(w, response)
}

func splitLabels(value string) []string {
	var labels []string
	for _, l := range strings.Split(value, ",") {
		if l = strings.TrimSpace(l); l != "" {
			labels = append(labels, l)
		}
	}
	return labels
}

// statusForBody distinguishes oversized bodies from malformed ones
func statusForBody(err error) int {
	var maxBytes *http.MaxBytesError
	if errors.As(err, &maxBytes) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusBadRequest
}
