package face

import (
	"context"
	"fmt"

	"github.com/expressionlab/moodmirror/internal/config"
	"github.com/expressionlab/moodmirror/internal/provider"
	"github.com/expressionlab/moodmirror/internal/provider/deepface"
	"github.com/expressionlab/moodmirror/internal/provider/mock"
	"github.com/expressionlab/moodmirror/internal/provider/rekognition"
)

// ProviderType defines supported face pipeline provider types
type ProviderType string

const (
	// ProviderTypeDeepFace is the DeepFace provider (local, for dev/test)
	ProviderTypeDeepFace ProviderType = "deepface"
	// ProviderTypeRekognition is the AWS Rekognition provider (cloud, for prod)
	ProviderTypeRekognition ProviderType = "rekognition"
	// ProviderTypeMock is the deterministic in-process provider (tests only)
	ProviderTypeMock ProviderType = "mock"
)

// Pipeline bundles the three model-backed stages of a search: face
// alignment, identity embedding and emotion classification. The stages may be
// served by different providers.
type Pipeline struct {
	Aligner    provider.FaceAligner
	Embedder   provider.FaceEmbedder
	Classifier provider.EmotionClassifier
}

// NewPipeline builds a Pipeline from configuration.
//
// Rekognition does not expose identity embeddings, so when it is selected the
// embedding stage still runs against DeepFace; alignment and emotion
// classification go to AWS.
//
// Environment variables:
//   - FACE_PROVIDER: "deepface", "rekognition" or "mock" (default: "deepface")
//   - DEEPFACE_URL: DeepFace API URL (default: "http://localhost:5000")
//   - AWS_REGION: AWS region for Rekognition (default: "us-east-1")
//   - AWS_ACCESS_KEY_ID: AWS credentials (via AWS SDK credential chain)
//   - AWS_SECRET_ACCESS_KEY: AWS credentials (via AWS SDK credential chain)
func NewPipeline(ctx context.Context, cfg *config.Config) (*Pipeline, error) {
	providerType := ProviderType(cfg.ProviderType)

	switch providerType {
	case ProviderTypeRekognition:
		rek, err := rekognition.NewProvider(ctx, rekognition.Config{
			Region: cfg.AWSRegion,
		})
		if err != nil {
			return nil, fmt.Errorf("create rekognition provider: %w", err)
		}
		df := createDeepFaceProvider(cfg)
		return &Pipeline{
			Aligner:    rek,
			Embedder:   df,
			Classifier: rek,
		}, nil

	case ProviderTypeDeepFace, "":
		// Default to DeepFace for dev/test environments
		df := createDeepFaceProvider(cfg)
		return &Pipeline{
			Aligner:    df,
			Embedder:   df,
			Classifier: df,
		}, nil

	case ProviderTypeMock:
		m := mock.New()
		return &Pipeline{
			Aligner:    m,
			Embedder:   m,
			Classifier: m,
		}, nil

	default:
		return nil, fmt.Errorf("unknown provider type: %s (supported: %s, %s, %s)",
			cfg.ProviderType, ProviderTypeDeepFace, ProviderTypeRekognition, ProviderTypeMock)
	}
}

// createDeepFaceProvider creates a DeepFace provider instance
func createDeepFaceProvider(cfg *config.Config) *deepface.Provider {
	deepfaceConfig := deepface.DefaultConfig()
	if cfg.DeepFaceURL != "" {
		deepfaceConfig.BaseURL = cfg.DeepFaceURL
	}

	return deepface.NewProvider(deepfaceConfig)
}
