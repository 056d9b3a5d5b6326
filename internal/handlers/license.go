package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cheetahbyte/licensemgr/internal/handlers/dto"
	"github.com/cheetahbyte/licensemgr/internal/registry"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

func (h *Handlers) ListLicenses(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, h.Services.License().ListLicenses(r.Context()))
}

func (h *Handlers) GetLicense(w http.ResponseWriter, r *http.Request) {
	result, err := h.Services.License().GetLicense(r.Context(), chi.URLParam(r, "key"))
	if err != nil {
		writeMessage(w, r, http.StatusNotFound, msgNotFound)
		return
	}

	writeJSON(w, r, http.StatusOK, result)
}

func (h *Handlers) CreateLicense(w http.ResponseWriter, r *http.Request) {
	var data dto.LicenseCreationRequest
	if err := h.decodeJSON(w, r, &data); err != nil {
		slog.WarnContext(r.Context(), "failed to read body", "err", err.Error())
		return
	}

	if err := h.validate.Struct(data); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			h.writeError(w, r, registry.ErrHostRequired)
			return
		}
		h.writeError(w, r, err)
		return
	}

	result, err := h.Services.License().NewLicense(r.Context(), data)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, result)
}

func (h *Handlers) DeleteLicense(w http.ResponseWriter, r *http.Request) {
	if err := h.Services.License().DeleteLicense(r.Context(), chi.URLParam(r, "key")); err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.LicenseDeletionResponse{Success: true})
}
