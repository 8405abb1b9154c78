package deepface

import (
	"context"
	"encoding/base64"
	"fmt"
	"math"

	"github.com/expressionlab/moodmirror/internal/domain"
	"github.com/expressionlab/moodmirror/internal/imaging"
	"github.com/expressionlab/moodmirror/internal/provider"
)

const (
	// minFaceArea is the minimum face area (in pixels²) for reliable detection
	minFaceArea = 2500 // 50x50 pixels
	// maxFaceArea is used for confidence scaling
	maxFaceArea = 250000 // 500x500 pixels
)

// Provider implements face alignment, embedding extraction and emotion
// classification against a DeepFace API service.
type Provider struct {
	client *Client
}

// NewProvider creates a new DeepFace provider
func NewProvider(config Config) *Provider {
	return &Provider{
		client: NewClient(config),
	}
}

var (
	_ provider.FaceAligner       = (*Provider)(nil)
	_ provider.FaceEmbedder      = (*Provider)(nil)
	_ provider.EmotionClassifier = (*Provider)(nil)
)

// AlignFace detects faces in the image and returns the normalized crop of the
// largest one. Returns provider.ErrNoFace when the detector finds nothing.
func (p *Provider) AlignFace(ctx context.Context, image []byte) (*provider.AlignedFace, error) {
	imageBase64 := base64.StdEncoding.EncodeToString(image)

	resp, err := p.client.Analyze(ctx, imageBase64, nil)
	if err != nil {
		return nil, fmt.Errorf("align face: %w", err)
	}
	if len(resp.Results) == 0 {
		return nil, provider.ErrNoFace
	}

	best := largestRegion(resp.Results)
	box, err := imaging.PixelBox(image, best.Region.X, best.Region.Y, best.Region.W, best.Region.H)
	if err != nil {
		return nil, fmt.Errorf("align face: %w", err)
	}

	cropped, err := imaging.CropFace(image, box)
	if err != nil {
		return nil, fmt.Errorf("align face: %w", err)
	}
	normalized, err := imaging.Normalize(cropped)
	if err != nil {
		return nil, fmt.Errorf("align face: %w", err)
	}

	confidence := best.FaceConfidence
	if confidence == 0 {
		// Older DeepFace builds omit face_confidence; estimate from area.
		confidence = calculateConfidence(float64(best.Region.W * best.Region.H))
	}

	return &provider.AlignedFace{
		Bytes:       normalized,
		BoundingBox: box,
		Confidence:  confidence,
	}, nil
}

// ExtractEmbedding generates the identity embedding for an aligned face crop.
func (p *Provider) ExtractEmbedding(ctx context.Context, face []byte) ([]float32, error) {
	imageBase64 := base64.StdEncoding.EncodeToString(face)

	resp, err := p.client.Represent(ctx, imageBase64)
	if err != nil {
		return nil, fmt.Errorf("extract embedding: %w", err)
	}
	if len(resp.Results) == 0 {
		return nil, provider.ErrNoFace
	}

	raw := resp.Results[0].Embedding
	embedding := make([]float32, len(raw))
	for i, v := range raw {
		embedding[i] = float32(v)
	}
	return embedding, nil
}

// ClassifyEmotion runs the emotion action against the image and maps the
// result onto the closed vocabulary. DeepFace reports the seven vocabulary
// labels natively, scored 0-100.
func (p *Provider) ClassifyEmotion(ctx context.Context, image []byte) (*provider.EmotionClassification, error) {
	imageBase64 := base64.StdEncoding.EncodeToString(image)

	resp, err := p.client.Analyze(ctx, imageBase64, []string{"emotion"})
	if err != nil {
		return nil, fmt.Errorf("classify emotion: %w", err)
	}
	if len(resp.Results) == 0 {
		return nil, provider.ErrNoFace
	}

	best := largestRegion(resp.Results)
	if len(best.Emotion) == 0 {
		return nil, fmt.Errorf("classify emotion: %w", ErrInvalidResponse)
	}

	distribution := make(map[string]float64, len(best.Emotion))
	total := 0.0
	for label, score := range best.Emotion {
		if !domain.IsValidLabel(label) {
			continue
		}
		distribution[label] = score
		total += score
	}
	if total == 0 {
		return nil, fmt.Errorf("classify emotion: %w", ErrInvalidResponse)
	}

	top := ""
	for label := range distribution {
		distribution[label] /= total
		if top == "" || distribution[label] > distribution[top] {
			top = label
		}
	}

	return &provider.EmotionClassification{
		Label:        top,
		Confidence:   distribution[top],
		Distribution: distribution,
	}, nil
}

// largestRegion returns the analyze result covering the biggest face area.
func largestRegion(results []AnalyzeResult) AnalyzeResult {
	best := results[0]
	for _, r := range results[1:] {
		if r.Region.W*r.Region.H > best.Region.W*best.Region.H {
			best = r
		}
	}
	return best
}

// calculateConfidence estimates confidence based on face area
// DeepFace doesn't always return confidence, so we estimate based on face size
func calculateConfidence(faceArea float64) float64 {
	if faceArea < minFaceArea {
		return 0.5
	}
	normalized := math.Min(1.0, (faceArea-minFaceArea)/(maxFaceArea-minFaceArea))
	return 0.7 + (normalized * 0.29)
}
