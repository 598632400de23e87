package cvimage

import (
	"bytes"
	"image/jpeg"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

func TestFromBGRAndEncode(t *testing.T) {
	const w, h = 64, 48
	pixels := bytes.Repeat([]byte{0x20, 0x80, 0xe0}, w*h)

	mat, err := FromBGR(w, h, pixels)
	require.NoError(t, err)
	defer mat.Close()

	assert.Equal(t, w, mat.Cols())
	assert.Equal(t, h, mat.Rows())

	frame, err := EncodeJPEG(mat, 80)
	require.NoError(t, err)
	assert.Equal(t, w, frame.Width)
	assert.Equal(t, h, frame.Height)

	cfg, err := jpeg.DecodeConfig(bytes.NewReader(frame.JPEG))
	require.NoError(t, err)
	assert.Equal(t, w, cfg.Width)
	assert.Equal(t, h, cfg.Height)
}

func TestEncodeJPEG_EmptyMat(t *testing.T) {
	mat := gocv.NewMat()
	defer mat.Close()

	_, err := EncodeJPEG(mat, 80)
	require.Error(t, err)
}
