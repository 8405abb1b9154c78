package rekognition

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"

	"github.com/expressionlab/moodmirror/internal/domain"
	"github.com/expressionlab/moodmirror/internal/imaging"
	"github.com/expressionlab/moodmirror/internal/provider"
)

const (
	// maxImageSize is the maximum image size supported by AWS Rekognition (5MB)
	maxImageSize = 5 * 1024 * 1024
	// minImageSize is the minimum image size for valid processing
	minImageSize = 100
)

// emotionLabels maps Rekognition emotion types onto the closed vocabulary.
// CALM and CONFUSED both fold into neutral; UNKNOWN is dropped.
var emotionLabels = map[types.EmotionName]string{
	types.EmotionNameHappy:     domain.LabelHappy,
	types.EmotionNameSad:       domain.LabelSad,
	types.EmotionNameAngry:     domain.LabelAngry,
	types.EmotionNameFear:      domain.LabelFear,
	types.EmotionNameSurprised: domain.LabelSurprise,
	types.EmotionNameDisgusted: domain.LabelDisgust,
	types.EmotionNameCalm:      domain.LabelNeutral,
	types.EmotionNameConfused:  domain.LabelNeutral,
}

// Provider implements face alignment and emotion classification on top of the
// AWS Rekognition DetectFaces API. Rekognition does not expose identity
// embeddings, so it carries no FaceEmbedder implementation.
type Provider struct {
	client *Client
}

var (
	_ provider.FaceAligner       = (*Provider)(nil)
	_ provider.EmotionClassifier = (*Provider)(nil)
)

// NewProvider creates a new Rekognition provider
func NewProvider(ctx context.Context, cfg Config) (*Provider, error) {
	client, err := NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create rekognition client: %w", err)
	}
	return &Provider{client: client}, nil
}

// validateImage checks if image data is valid for Rekognition processing
func validateImage(image []byte) error {
	if len(image) == 0 {
		return ErrInvalidImage
	}
	if len(image) < minImageSize {
		return fmt.Errorf("%w: image too small (%d bytes, minimum %d)", ErrInvalidImage, len(image), minImageSize)
	}
	if len(image) > maxImageSize {
		return fmt.Errorf("%w: image too large (%d bytes, maximum %d)", ErrInvalidImage, len(image), maxImageSize)
	}
	return nil
}

// AlignFace detects faces via DetectFaces and returns the normalized crop of
// the largest one. Rekognition bounding boxes are already relative, so they
// feed the cropper directly.
func (p *Provider) AlignFace(ctx context.Context, image []byte) (*provider.AlignedFace, error) {
	detail, err := p.detectLargestFace(ctx, image, types.AttributeDefault)
	if err != nil {
		return nil, fmt.Errorf("align face: %w", err)
	}

	bb := detail.BoundingBox
	if bb == nil || bb.Left == nil || bb.Top == nil || bb.Width == nil || bb.Height == nil {
		return nil, fmt.Errorf("align face: %w", provider.ErrNoFace)
	}

	box := imaging.BoundingBox{
		Left:   float64(*bb.Left),
		Top:    float64(*bb.Top),
		Width:  float64(*bb.Width),
		Height: float64(*bb.Height),
	}

	cropped, err := imaging.CropFace(image, box)
	if err != nil {
		return nil, fmt.Errorf("align face: %w", err)
	}
	normalized, err := imaging.Normalize(cropped)
	if err != nil {
		return nil, fmt.Errorf("align face: %w", err)
	}

	confidence := 0.0
	if detail.Confidence != nil {
		confidence = float64(*detail.Confidence) / 100.0
	}

	return &provider.AlignedFace{
		Bytes:       normalized,
		BoundingBox: box,
		Confidence:  confidence,
	}, nil
}

// ClassifyEmotion runs DetectFaces with full attributes and reduces the
// emotion scores of the largest face onto the closed vocabulary.
func (p *Provider) ClassifyEmotion(ctx context.Context, image []byte) (*provider.EmotionClassification, error) {
	detail, err := p.detectLargestFace(ctx, image, types.AttributeAll)
	if err != nil {
		return nil, fmt.Errorf("classify emotion: %w", err)
	}
	if len(detail.Emotions) == 0 {
		return nil, fmt.Errorf("classify emotion: %w", provider.ErrNoFace)
	}

	// Scores for types folding into the same label accumulate before
	// normalization.
	distribution := make(map[string]float64, len(domain.Vocabulary))
	total := 0.0
	for _, emotion := range detail.Emotions {
		label, ok := emotionLabels[emotion.Type]
		if !ok || emotion.Confidence == nil {
			continue
		}
		score := float64(*emotion.Confidence)
		distribution[label] += score
		total += score
	}
	if total == 0 {
		return nil, fmt.Errorf("classify emotion: %w", provider.ErrNoFace)
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

// detectLargestFace calls DetectFaces and returns the detail with the biggest
// bounding box area, or provider.ErrNoFace when nothing was detected.
func (p *Provider) detectLargestFace(ctx context.Context, image []byte, attrs types.Attribute) (*types.FaceDetail, error) {
	if err := validateImage(image); err != nil {
		return nil, err
	}

	input := &rekognition.DetectFacesInput{
		Image: &types.Image{
			Bytes: image,
		},
		Attributes: []types.Attribute{attrs},
	}

	output, err := p.client.rekognition.DetectFaces(ctx, input)
	if err != nil {
		return nil, parseAWSError(err)
	}
	if len(output.FaceDetails) == 0 {
		return nil, provider.ErrNoFace
	}

	best := &output.FaceDetails[0]
	bestArea := boxArea(best.BoundingBox)
	for i := 1; i < len(output.FaceDetails); i++ {
		if area := boxArea(output.FaceDetails[i].BoundingBox); area > bestArea {
			best = &output.FaceDetails[i]
			bestArea = area
		}
	}
	return best, nil
}

func boxArea(box *types.BoundingBox) float64 {
	if box == nil || box.Width == nil || box.Height == nil {
		return 0
	}
	return float64(*box.Width) * float64(*box.Height)
}
