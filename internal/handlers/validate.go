package handlers

import (
	"net/http"

	"github.com/cheetahbyte/licensemgr/internal/handlers/dto"
	"github.com/cheetahbyte/licensemgr/internal/registry"
)

var rejections = map[registry.Status]string{
	registry.StatusInvalid:      "Invalid License",
	registry.StatusExpired:      "Expired License",
	registry.StatusWrongProduct: "License for incorrect product",
}

func (h *Handlers) ValidateLicense(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	status := h.Services.License().ValidateLicense(r.Context(), q.Get("license"), q.Get("host"))
	if status == registry.StatusValid {
		writeJSON(w, r, http.StatusOK, dto.LicenseValidationResponse{Status: "License valid"})
		return
	}

	msg, ok := rejections[status]
	if !ok {
		msg = rejections[registry.StatusInvalid]
	}
	writeMessage(w, r, http.StatusForbidden, msg)
}
