package dto

// Error codes shared by both HTTP surfaces.
const (
	CodeValidation    = "validation"
	CodeUnknownStatus = "unknown_status"
	CodeInvalidOTP    = "invalid_otp"
	CodeNotFound      = "not_found"
	CodeForbidden     = "forbidden"
	CodeUnavailable   = "delivery_service_unavailable"
	CodeInFlight      = "submission_in_flight"
	CodeDialogClosed  = "dialog_closed"
	CodeBadRequest    = "bad_request"
	CodeDependency    = "dependency_unavailable"
	CodeInternal      = "internal"
)

// ErrorResponse is the JSON error body.
type ErrorResponse struct {
	Code    string   `json:"code"`
	Error   string   `json:"error"`
	Status  string   `json:"status,omitempty"`
	Missing []string `json:"missing,omitempty"`
}
