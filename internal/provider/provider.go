package provider

import (
	"context"
	"errors"

	"github.com/expressionlab/moodmirror/internal/imaging"
)

// ErrNoFace is returned by aligners and classifiers when no detectable face is
// present in the input image.
var ErrNoFace = errors.New("no face detected in image")

// AlignedFace is a normalized face crop produced by a FaceAligner.
type AlignedFace struct {
	// Bytes is the cropped, normalized face re-encoded as JPEG.
	Bytes []byte
	// BoundingBox is the face region in the source image, relative coordinates.
	BoundingBox imaging.BoundingBox
	// Confidence is the detector's confidence for this face, 0.0 to 1.0.
	Confidence float64
}

// EmotionClassification is a single classifier verdict over the closed
// emotion vocabulary.
type EmotionClassification struct {
	Label        string             `json:"label"`
	Confidence   float64            `json:"confidence"`
	Distribution map[string]float64 `json:"distribution"`
}

// FaceAligner locates the dominant face in a bitmap and returns its
// normalized crop. When several faces are present the largest one wins.
type FaceAligner interface {
	AlignFace(ctx context.Context, image []byte) (*AlignedFace, error)
}

// FaceEmbedder extracts an identity embedding from an aligned face crop.
type FaceEmbedder interface {
	ExtractEmbedding(ctx context.Context, face []byte) ([]float32, error)
}

// EmotionClassifier labels the dominant face of an image with one emotion
// from the closed vocabulary, along with the full probability distribution.
type EmotionClassifier interface {
	ClassifyEmotion(ctx context.Context, image []byte) (*EmotionClassification, error)
}
