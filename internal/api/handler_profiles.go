package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/a3tai/mcp-docintel/internal/docintel"
)

func (h *Handler) handleProfileGet(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.GetProfile(r.Context(), chi.URLParam(r, "key"))

	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	writeJson(w, p)
}

// handleProfileAttach analyses the posted text and merges it into the
// profile named in the path.
func (h *Handler) handleProfileAttach(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Text string `json:"text"`
	}

	if err := readJson(w, r, &body); err != nil {
		writeError(w, statusForBody(err), err)
		return
	}

	result, err := h.service.UpdateProfile(r.Context(), docintel.ProfileUpdateRequest{
		Key:  chi.URLParam(r, "key"),
		Text: body.Text,
	})

	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	writeJson(w, result)
}
