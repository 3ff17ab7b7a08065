package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/a3tai/mcp-docintel/internal/docintel"
)

var errNoFormInput = errors.New("either text or fields is required")

func (h *Handler) handleFormMap(w http.ResponseWriter, r *http.Request) {
	var req docintel.FormMapRequest

	if err := readJson(w, r, &req); err != nil {
		writeError(w, statusForBody(err), err)
		return
	}

	if strings.TrimSpace(req.Text) == "" && len(req.Fields) == 0 {
		writeError(w, http.StatusBadRequest, errNoFormInput)
		return
	}

	result, err := h.service.MapForm(req)

	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	writeJson(w, result)
}

func (h *Handler) handleFormCheck(w http.ResponseWriter, r *http.Request) {
	var req docintel.FormCheckRequest

	if err := readJson(w, r, &req); err != nil {
		writeError(w, statusForBody(err), err)
		return
	}

	if strings.TrimSpace(req.Text) == "" && len(req.Fields) == 0 {
		writeError(w, http.StatusBadRequest, errNoFormInput)
		return
	}

	result, err := h.service.CheckForm(req)

	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	writeJson(w, result)
}
