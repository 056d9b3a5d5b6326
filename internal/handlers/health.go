package handlers

import (
	"net/http"

	"github.com/cheetahbyte/licensemgr/internal/handlers/dto"
)

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, dto.HealthResponse{
		Status:   "ok",
		Licenses: h.Services.License().Count(),
	})
}
