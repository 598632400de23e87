// Package cvimage converts between OpenCV mats and camera frames.
package cvimage

import (
	"fmt"

	"checkin-kiosk/internal/camera"

	"gocv.io/x/gocv"
)

// EncodeJPEG encodes mat as a JPEG frame at the given quality (1-100).
func EncodeJPEG(mat gocv.Mat, quality int) (camera.Frame, error) {
	if mat.Empty() {
		return camera.Frame{}, fmt.Errorf("empty mat")
	}

	buf, err := gocv.IMEncodeWithParams(gocv.JPEGFileExt, mat, []int{int(gocv.IMWriteJpegQuality), quality})
	if err != nil {
		return camera.Frame{}, fmt.Errorf("IMEncode failed: %w", err)
	}
	defer buf.Close()

	// GetBytes aliases native memory freed by Close
	data := append([]byte(nil), buf.GetBytes()...)

	return camera.Frame{JPEG: data, Width: mat.Cols(), Height: mat.Rows()}, nil
}

// FromBGR copies packed BGR24 pixels into a new mat. The caller closes it.
func FromBGR(width, height int, bgr []byte) (gocv.Mat, error) {
	view, err := gocv.NewMatFromBytes(height, width, gocv.MatTypeCV8UC3, bgr)
	if err != nil {
		return gocv.Mat{}, fmt.Errorf("NewMatFromBytes: %w", err)
	}
	defer view.Close()

	if view.Empty() {
		return gocv.Mat{}, fmt.Errorf("empty mat")
	}

	// view borrows bgr; the clone owns its pixels
	return view.Clone(), nil
}
