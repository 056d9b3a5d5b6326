package dto

type LicenseValidationResponse struct {
	Status string `json:"status"`
}
