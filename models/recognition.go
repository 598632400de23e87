package models

import "fmt"

// ============================================================
// IDENTITY RECORD
// ============================================================

// Record is the voter record the auth service returns for a recognised face.
type Record struct {
	UniqueID          string `json:"unique_id"`
	NIC               string `json:"nic"`
	FullName          string `json:"full_name"`
	Address           string `json:"address,omitempty"`
	ElectoralDivision string `json:"electoral_division,omitempty"`
	FaceImagePath     string `json:"face_image_path,omitempty"`
}

func (r *Record) String() string {
	if r == nil {
		return "nil"
	}
	return fmt.Sprintf("Record{ID: %s, NIC: %s, Name: %s}", r.UniqueID, r.NIC, r.FullName)
}

// ============================================================
// PROCESS FRAME
// ============================================================

type ProcessFrameRequest struct {
	Image     string `json:"image"` // data URL, "data:image/jpeg;base64,..."
	OfficerID string `json:"officer_id"`
}

type ProcessFrameResponse struct {
	Success    bool    `json:"success"`
	Detected   bool    `json:"detected"`
	Voter      *Record `json:"voter,omitempty"`
	Confidence float64 `json:"confidence,omitempty"`
	Error      string  `json:"error,omitempty"`
}

// IsMatch reports whether the response carries a record to display.
func (r *ProcessFrameResponse) IsMatch() bool {
	return r != nil && r.Success && r.Detected && r.Voter != nil
}

func (r *ProcessFrameResponse) String() string {
	if r == nil {
		return "nil"
	}
	if !r.Success {
		return fmt.Sprintf("ProcessFrame{Success: false, Error: %q}", r.Error)
	}
	return fmt.Sprintf("ProcessFrame{Detected: %v, Voter: %s, Confidence: %.2f%%}",
		r.Detected, r.Voter, r.Confidence*100)
}

// ============================================================
// CONFIRM AUTH
// ============================================================

type ConfirmRequest struct {
	UniqueID   string  `json:"unique_id"`
	NIC        string  `json:"nic"`
	FullName   string  `json:"full_name"`
	OfficerID  string  `json:"officer_id"`
	Confidence float64 `json:"confidence"`
}

type ConfirmResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// ============================================================
// STATS
// ============================================================

// AuthStats is whatever counters the auth service reports; the kiosk only displays them.
type AuthStats map[string]any
