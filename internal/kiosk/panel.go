package kiosk

import (
	"fmt"

	"checkin-kiosk/models"
)

// ============================================================
// RESULT PANEL
// ============================================================

type PanelState string

const (
	PanelNoDetection PanelState = "no_detection"
	PanelDetailShown PanelState = "detail"
)

type ConfidenceStyle string

const (
	StylePositive   ConfidenceStyle = "positive"
	StyleCautionary ConfidenceStyle = "cautionary"
	StyleNegative   ConfidenceStyle = "negative"
)

const (
	positiveThreshold   = 0.70
	cautionaryThreshold = 0.50
)

// Panel is everything the result panel shows. It is a value; views get copies.
type Panel struct {
	State          PanelState      `json:"state"`
	UniqueID       string          `json:"unique_id,omitempty"`
	NIC            string          `json:"nic,omitempty"`
	Name           string          `json:"name,omitempty"`
	Address        string          `json:"address,omitempty"`
	Division       string          `json:"division,omitempty"`
	Confidence     string          `json:"confidence,omitempty"`
	Style          ConfidenceStyle `json:"style,omitempty"`
	PhotoURL       string          `json:"photo_url,omitempty"`
	ConfirmEnabled bool            `json:"confirm_enabled"`
}

// StyleFor buckets a confidence score. Both thresholds are exclusive:
// 0.70 is cautionary, 0.50 is negative.
func StyleFor(confidence float64) ConfidenceStyle {
	switch {
	case confidence > positiveThreshold:
		return StylePositive
	case confidence > cautionaryThreshold:
		return StyleCautionary
	default:
		return StyleNegative
	}
}

// FormatConfidence renders a [0,1] score as a percentage with one decimal.
func FormatConfidence(confidence float64) string {
	return fmt.Sprintf("%.1f%%", confidence*100)
}

func noDetectionPanel() Panel {
	return Panel{State: PanelNoDetection}
}

func detailPanel(record *models.Record, confidence float64, photoURL string) Panel {
	return Panel{
		State:          PanelDetailShown,
		UniqueID:       record.UniqueID,
		NIC:            record.NIC,
		Name:           record.FullName,
		Address:        orNotAvailable(record.Address),
		Division:       orNotAvailable(record.ElectoralDivision),
		Confidence:     FormatConfidence(confidence),
		Style:          StyleFor(confidence),
		PhotoURL:       photoURL,
		ConfirmEnabled: true,
	}
}

func orNotAvailable(s string) string {
	if s == "" {
		return models.NotAvailable
	}
	return s
}

// ============================================================
// START/STOP TOGGLE
// ============================================================

const (
	LabelStart = "Start Authentication"
	LabelStop  = "Stop Authentication"

	StyleStartButton = "btn-success"
	StyleStopButton  = "btn-danger"
)

type Toggle struct {
	Active bool   `json:"active"`
	Label  string `json:"label"`
	Style  string `json:"style"`
}

func toggleFor(active bool) Toggle {
	if active {
		return Toggle{Active: true, Label: LabelStop, Style: StyleStopButton}
	}
	return Toggle{Active: false, Label: LabelStart, Style: StyleStartButton}
}
