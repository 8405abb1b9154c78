// Package mock provides a deterministic in-process face pipeline for tests
// and local development without a model service or AWS credentials.
package mock

import (
	"context"
	"crypto/sha256"
	"math"

	"github.com/expressionlab/moodmirror/internal/domain"
	"github.com/expressionlab/moodmirror/internal/imaging"
	"github.com/expressionlab/moodmirror/internal/provider"
)

const (
	embeddingDimension = 512
	// minImageBytes separates "plausible camera capture" from junk so the
	// no-face path stays testable.
	minImageBytes = 1000
)

// Provider implements all three pipeline interfaces deterministically: the
// same input bytes always produce the same embedding and the same emotion.
type Provider struct{}

// New creates a new mock provider
func New() *Provider {
	return &Provider{}
}

var (
	_ provider.FaceAligner       = (*Provider)(nil)
	_ provider.FaceEmbedder      = (*Provider)(nil)
	_ provider.EmotionClassifier = (*Provider)(nil)
)

// AlignFace simulates detection: inputs below the size floor report no face,
// anything else yields a fixed centered bounding box over the original bytes.
func (p *Provider) AlignFace(ctx context.Context, image []byte) (*provider.AlignedFace, error) {
	if len(image) < minImageBytes {
		return nil, provider.ErrNoFace
	}

	return &provider.AlignedFace{
		Bytes: image,
		BoundingBox: imaging.BoundingBox{
			Left:   0.1,
			Top:    0.1,
			Width:  0.8,
			Height: 0.8,
		},
		Confidence: 0.99,
	}, nil
}

// ExtractEmbedding derives a unit-norm embedding from the image hash.
func (p *Provider) ExtractEmbedding(ctx context.Context, face []byte) ([]float32, error) {
	if len(face) < minImageBytes {
		return nil, provider.ErrNoFace
	}
	return generateEmbedding(face), nil
}

// ClassifyEmotion derives a label from the image hash, so a given image is
// always classified the same way.
func (p *Provider) ClassifyEmotion(ctx context.Context, image []byte) (*provider.EmotionClassification, error) {
	if len(image) < minImageBytes {
		return nil, provider.ErrNoFace
	}

	hash := sha256.Sum256(image)
	dominant := domain.Vocabulary[int(hash[0])%len(domain.Vocabulary)]

	// Dominant label takes 0.6, the rest split the remainder evenly.
	rest := 0.4 / float64(len(domain.Vocabulary)-1)
	distribution := make(map[string]float64, len(domain.Vocabulary))
	for _, label := range domain.Vocabulary {
		if label == dominant {
			distribution[label] = 0.6
		} else {
			distribution[label] = rest
		}
	}

	return &provider.EmotionClassification{
		Label:        dominant,
		Confidence:   0.6,
		Distribution: distribution,
	}, nil
}

// generateEmbedding derives a deterministic unit-norm vector from the image hash.
func generateEmbedding(image []byte) []float32 {
	hash := sha256.Sum256(image)
	embedding := make([]float64, embeddingDimension)
	hashLen := len(hash)

	for i := 0; i < embeddingDimension; i++ {
		idx := i % hashLen
		embedding[i] = (float64(hash[idx])/255.0)*2 - 1
	}

	norm := 0.0
	for _, v := range embedding {
		norm += v * v
	}
	norm = math.Sqrt(norm)

	result := make([]float32, embeddingDimension)
	for i, v := range embedding {
		result[i] = float32(v / norm)
	}

	return result
}
