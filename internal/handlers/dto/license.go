package dto

// LicenseCreationRequest carries expires as any JSON number of epoch
// milliseconds; fractions are truncated.
type LicenseCreationRequest struct {
	Host    string  `json:"host" validate:"required"`
	Expires float64 `json:"expires"`
}

type LicenseResponse struct {
	Key     string `json:"key"`
	Host    string `json:"host"`
	Expires int64  `json:"expires"`
}

type LicenseDeletionResponse struct {
	Success bool `json:"success"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
