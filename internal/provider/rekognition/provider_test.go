package rekognition

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/jpeg"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/expressionlab/moodmirror/internal/domain"
	"github.com/expressionlab/moodmirror/internal/provider"
)

type fakeAPI struct {
	output *rekognition.DetectFacesOutput
	err    error
	input  *rekognition.DetectFacesInput
}

func (f *fakeAPI) DetectFaces(ctx context.Context, params *rekognition.DetectFacesInput, optFns ...func(*rekognition.Options)) (*rekognition.DetectFacesOutput, error) {
	f.input = params
	return f.output, f.err
}

func newTestProvider(api *fakeAPI) *Provider {
	return &Provider{client: &Client{rekognition: api, config: DefaultConfig()}}
}

func testJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h)), nil))
	data := buf.Bytes()
	require.GreaterOrEqual(t, len(data), minImageSize)
	return data
}

func faceDetail(left, top, width, height, confidence float32) types.FaceDetail {
	return types.FaceDetail{
		BoundingBox: &types.BoundingBox{
			Left:   aws.Float32(left),
			Top:    aws.Float32(top),
			Width:  aws.Float32(width),
			Height: aws.Float32(height),
		},
		Confidence: aws.Float32(confidence),
	}
}

func TestAlignFace_PicksLargestFace(t *testing.T) {
	small := faceDetail(0.0, 0.0, 0.1, 0.1, 99.0)
	large := faceDetail(0.25, 0.25, 0.5, 0.5, 95.0)

	api := &fakeAPI{output: &rekognition.DetectFacesOutput{
		FaceDetails: []types.FaceDetail{small, large},
	}}
	p := newTestProvider(api)

	face, err := p.AlignFace(context.Background(), testJPEG(t, 100, 100))
	require.NoError(t, err)

	assert.InDelta(t, 0.95, face.Confidence, 1e-6)
	assert.InDelta(t, 0.25, face.BoundingBox.Left, 1e-6)
	assert.NotEmpty(t, face.Bytes)
	assert.Equal(t, []types.Attribute{types.AttributeDefault}, api.input.Attributes)
}

func TestAlignFace_NoFace(t *testing.T) {
	p := newTestProvider(&fakeAPI{output: &rekognition.DetectFacesOutput{}})

	_, err := p.AlignFace(context.Background(), testJPEG(t, 64, 64))
	assert.ErrorIs(t, err, provider.ErrNoFace)
}

func TestAlignFace_RejectsEmptyImage(t *testing.T) {
	p := newTestProvider(&fakeAPI{})

	_, err := p.AlignFace(context.Background(), nil)
	assert.ErrorIs(t, err, ErrInvalidImage)
}

func TestClassifyEmotion_FoldsCalmAndConfusedIntoNeutral(t *testing.T) {
	detail := faceDetail(0.1, 0.1, 0.8, 0.8, 99.0)
	detail.Emotions = []types.Emotion{
		{Type: types.EmotionNameHappy, Confidence: aws.Float32(40.0)},
		{Type: types.EmotionNameCalm, Confidence: aws.Float32(30.0)},
		{Type: types.EmotionNameConfused, Confidence: aws.Float32(20.0)},
		{Type: types.EmotionNameSad, Confidence: aws.Float32(10.0)},
	}

	api := &fakeAPI{output: &rekognition.DetectFacesOutput{
		FaceDetails: []types.FaceDetail{detail},
	}}
	p := newTestProvider(api)

	result, err := p.ClassifyEmotion(context.Background(), testJPEG(t, 64, 64))
	require.NoError(t, err)

	// CALM 30 + CONFUSED 20 outweigh HAPPY 40 once folded into neutral.
	assert.Equal(t, domain.LabelNeutral, result.Label)
	assert.InDelta(t, 0.5, result.Confidence, 1e-6)
	assert.InDelta(t, 0.4, result.Distribution[domain.LabelHappy], 1e-6)
	assert.InDelta(t, 0.1, result.Distribution[domain.LabelSad], 1e-6)
	assert.Equal(t, []types.Attribute{types.AttributeAll}, api.input.Attributes)

	for label := range result.Distribution {
		assert.True(t, domain.IsValidLabel(label), label)
	}
}

func TestClassifyEmotion_NoEmotions(t *testing.T) {
	detail := faceDetail(0.1, 0.1, 0.8, 0.8, 99.0)
	p := newTestProvider(&fakeAPI{output: &rekognition.DetectFacesOutput{
		FaceDetails: []types.FaceDetail{detail},
	}})

	_, err := p.ClassifyEmotion(context.Background(), testJPEG(t, 64, 64))
	assert.ErrorIs(t, err, provider.ErrNoFace)
}

func TestParseAWSError(t *testing.T) {
	tests := []struct {
		name string
		code string
		want error
	}{
		{"access denied", errCodeAccessDenied, ErrInvalidCredentials},
		{"throttled", errCodeThrottling, ErrThrottled},
		{"invalid image", errCodeInvalidImage, ErrInvalidImage},
		{"no face", errCodeInvalidParameter, provider.ErrNoFace},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			apiErr := &smithy.GenericAPIError{Code: tt.code, Message: "boom"}
			assert.ErrorIs(t, parseAWSError(apiErr), tt.want)
		})
	}

	plain := errors.New("network down")
	assert.Equal(t, plain, parseAWSError(plain))
	assert.NoError(t, parseAWSError(nil))
}
