package kiosk

import (
	"testing"

	"checkin-kiosk/models"

	"github.com/stretchr/testify/assert"
)

func TestStyleFor(t *testing.T) {
	tests := []struct {
		confidence float64
		want       ConfidenceStyle
	}{
		{1.0, StylePositive},
		{0.75, StylePositive},
		{0.7000001, StylePositive},
		{0.70, StyleCautionary},
		{0.60, StyleCautionary},
		{0.5000001, StyleCautionary},
		{0.50, StyleNegative},
		{0.40, StyleNegative},
		{0, StyleNegative},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StyleFor(tt.confidence), "confidence %v", tt.confidence)
	}
}

func TestFormatConfidence(t *testing.T) {
	assert.Equal(t, "81.2%", FormatConfidence(0.81234))
	assert.Equal(t, "100.0%", FormatConfidence(1))
	assert.Equal(t, "0.0%", FormatConfidence(0))
}

func TestDetailPanel_Fallbacks(t *testing.T) {
	p := detailPanel(&models.Record{UniqueID: "U", NIC: "N", FullName: "F"}, 0.3, "")
	assert.Equal(t, PanelDetailShown, p.State)
	assert.Equal(t, models.NotAvailable, p.Address)
	assert.Equal(t, models.NotAvailable, p.Division)
	assert.Equal(t, "30.0%", p.Confidence)
	assert.Equal(t, StyleNegative, p.Style)
	assert.True(t, p.ConfirmEnabled)
}

func TestNoDetectionPanel(t *testing.T) {
	p := noDetectionPanel()
	assert.Equal(t, PanelNoDetection, p.State)
	assert.False(t, p.ConfirmEnabled)
	assert.Empty(t, p.NIC)
}

func TestToggleFor(t *testing.T) {
	assert.Equal(t, Toggle{Active: true, Label: LabelStop, Style: StyleStopButton}, toggleFor(true))
	assert.Equal(t, Toggle{Active: false, Label: LabelStart, Style: StyleStartButton}, toggleFor(false))
}
