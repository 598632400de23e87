// Package detector finds faces locally with an OpenCV Haar cascade so the
// CLI can sanity-check an image before sending it to the auth service.
package detector

import (
	"fmt"
	"image"
	"log"

	"gocv.io/x/gocv"
)

const DefaultCascadePath = "haarcascade_frontalface_default.xml"

// FaceDetector wraps a loaded cascade classifier.
type FaceDetector struct {
	Classifier  gocv.CascadeClassifier
	MinFaceSize int
}

// NewFaceDetector loads the cascade at path.
func NewFaceDetector(path string, minFaceSize int) (*FaceDetector, error) {
	classifier := gocv.NewCascadeClassifier()
	if !classifier.Load(path) {
		classifier.Close()
		return nil, fmt.Errorf("failed to load face cascade classifier %s", path)
	}

	log.Println("✅ Face detector initialized")
	log.Printf("   Min face size: %dx%d", minFaceSize, minFaceSize)

	return &FaceDetector{Classifier: classifier, MinFaceSize: minFaceSize}, nil
}

// Close releases resources used by the detector
func (fd *FaceDetector) Close() {
	fd.Classifier.Close()
}

// Detect returns every face rectangle in a BGR image.
func (fd *FaceDetector) Detect(img gocv.Mat) []image.Rectangle {
	if img.Empty() {
		return nil
	}

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(img, &gray, gocv.ColorBGRToGray)

	return fd.Classifier.DetectMultiScale(gray)
}

// LargestFace picks the biggest rectangle whose sides are both at least
// minSize.
func LargestFace(rects []image.Rectangle, minSize int) (image.Rectangle, bool) {
	var largest image.Rectangle
	maxArea := 0

	for _, rect := range rects {
		area := rect.Dx() * rect.Dy()
		if area > maxArea && rect.Dx() >= minSize && rect.Dy() >= minSize {
			maxArea = area
			largest = rect
		}
	}

	return largest, maxArea > 0
}
