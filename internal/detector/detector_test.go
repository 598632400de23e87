package detector

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLargestFace(t *testing.T) {
	rects := []image.Rectangle{
		image.Rect(0, 0, 50, 50),     // too small
		image.Rect(10, 10, 110, 110), // 100x100
		image.Rect(0, 0, 300, 60),    // wide but too short
		image.Rect(200, 200, 290, 290),
	}

	face, ok := LargestFace(rects, 80)
	assert.True(t, ok)
	assert.Equal(t, image.Rect(10, 10, 110, 110), face)
}

func TestLargestFace_NoneValid(t *testing.T) {
	_, ok := LargestFace([]image.Rectangle{image.Rect(0, 0, 20, 20)}, 80)
	assert.False(t, ok)

	_, ok = LargestFace(nil, 0)
	assert.False(t, ok)
}

func TestNewFaceDetector_MissingCascade(t *testing.T) {
	_, err := NewFaceDetector("/nonexistent/cascade.xml", 80)
	assert.Error(t, err)
}
