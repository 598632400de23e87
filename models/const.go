package models

// ============================================================
// AUTH SERVICE ENDPOINTS
// ============================================================

const (
	DefaultBaseURL = "http://localhost:5003"

	PathProcessFrame = "/api/process_frame"
	PathConfirmAuth  = "/api/confirm_auth"
	PathAuthStats    = "/api/auth_stats"
)

// ============================================================
// KIOSK DEFAULTS
// ============================================================

const (
	DefaultOfficerID = "OFFICER_001"
	NotAvailable     = "N/A"

	FrameMIMEType = "image/jpeg"
)
