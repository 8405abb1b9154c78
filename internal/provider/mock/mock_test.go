package mock

import (
	"bytes"
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/expressionlab/moodmirror/internal/domain"
	"github.com/expressionlab/moodmirror/internal/provider"
)

func validImage() []byte {
	return bytes.Repeat([]byte{0xAB, 0x12}, 600)
}

func TestAlignFace(t *testing.T) {
	p := New()

	face, err := p.AlignFace(context.Background(), validImage())
	require.NoError(t, err)

	assert.Equal(t, validImage(), face.Bytes)
	assert.Equal(t, 0.99, face.Confidence)
}

func TestAlignFace_TooSmall(t *testing.T) {
	p := New()

	_, err := p.AlignFace(context.Background(), []byte("tiny"))
	assert.ErrorIs(t, err, provider.ErrNoFace)
}

func TestExtractEmbedding_Deterministic(t *testing.T) {
	p := New()

	first, err := p.ExtractEmbedding(context.Background(), validImage())
	require.NoError(t, err)
	second, err := p.ExtractEmbedding(context.Background(), validImage())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, first, embeddingDimension)

	norm := 0.0
	for _, v := range first {
		norm += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, math.Sqrt(norm), 1e-5)
}

func TestExtractEmbedding_DiffersAcrossImages(t *testing.T) {
	p := New()

	a, err := p.ExtractEmbedding(context.Background(), validImage())
	require.NoError(t, err)
	b, err := p.ExtractEmbedding(context.Background(), bytes.Repeat([]byte{0xCD, 0x34}, 600))
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestClassifyEmotion(t *testing.T) {
	p := New()

	first, err := p.ClassifyEmotion(context.Background(), validImage())
	require.NoError(t, err)
	second, err := p.ClassifyEmotion(context.Background(), validImage())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.True(t, domain.IsValidLabel(first.Label))
	assert.Equal(t, 0.6, first.Confidence)
	assert.Len(t, first.Distribution, len(domain.Vocabulary))

	sum := 0.0
	for _, v := range first.Distribution {
		sum += v
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestClassifyEmotion_TooSmall(t *testing.T) {
	p := New()

	_, err := p.ClassifyEmotion(context.Background(), nil)
	assert.ErrorIs(t, err, provider.ErrNoFace)
}
