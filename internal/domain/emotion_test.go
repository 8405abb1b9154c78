package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(label string, confidence float64) EmotionRecord {
	return EmotionRecord{
		ID:         uuid.New(),
		Label:      label,
		Confidence: confidence,
		Distribution: map[string]float64{
			label: confidence,
		},
	}
}

func TestAggregateRecords_MajorityVote(t *testing.T) {
	sessionID := uuid.New()

	records := []EmotionRecord{
		record(LabelHappy, 0.9),
		record(LabelHappy, 0.8),
		record(LabelSad, 0.99),
	}

	agg := AggregateRecords(sessionID, records)
	require.NotNil(t, agg)

	assert.Equal(t, LabelHappy, agg.Dominant)
	assert.InDelta(t, 2.0/3.0, agg.Confidence, 1e-9)
	assert.InDelta(t, 2.0/3.0, agg.Distribution[LabelHappy], 1e-9)
	assert.InDelta(t, 1.0/3.0, agg.Distribution[LabelSad], 1e-9)
	assert.Equal(t, sessionID, agg.SessionID)
}

func TestAggregateRecords_OneVotePerImage(t *testing.T) {
	// A single overconfident sad image must not outvote two happy ones even
	// though its probability mass is larger.
	records := []EmotionRecord{
		record(LabelHappy, 0.51),
		record(LabelHappy, 0.52),
		record(LabelSad, 1.0),
	}

	agg := AggregateRecords(uuid.New(), records)
	require.NotNil(t, agg)
	assert.Equal(t, LabelHappy, agg.Dominant)
}

func TestAggregateRecords_TieBreaksOnFirstEncountered(t *testing.T) {
	records := []EmotionRecord{
		record(LabelSurprise, 0.7),
		record(LabelNeutral, 0.7),
		record(LabelNeutral, 0.6),
		record(LabelSurprise, 0.9),
	}

	agg := AggregateRecords(uuid.New(), records)
	require.NotNil(t, agg)

	assert.Equal(t, LabelSurprise, agg.Dominant)
	assert.InDelta(t, 0.5, agg.Confidence, 1e-9)
}

func TestAggregateRecords_SingleRecord(t *testing.T) {
	agg := AggregateRecords(uuid.New(), []EmotionRecord{record(LabelAngry, 0.8)})
	require.NotNil(t, agg)

	assert.Equal(t, LabelAngry, agg.Dominant)
	assert.Equal(t, 1.0, agg.Confidence)
	assert.Equal(t, map[string]float64{LabelAngry: 1.0}, agg.Distribution)
}

func TestAggregateRecords_Empty(t *testing.T) {
	assert.Nil(t, AggregateRecords(uuid.New(), nil))
	assert.Nil(t, AggregateRecords(uuid.New(), []EmotionRecord{}))
}

func TestAggregateRecords_DistributionSumsToOne(t *testing.T) {
	records := []EmotionRecord{
		record(LabelHappy, 0.9),
		record(LabelSad, 0.9),
		record(LabelFear, 0.9),
		record(LabelHappy, 0.9),
		record(LabelDisgust, 0.9),
	}

	agg := AggregateRecords(uuid.New(), records)
	require.NotNil(t, agg)

	sum := 0.0
	for _, v := range agg.Distribution {
		sum += v
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestEmotionStatement(t *testing.T) {
	statement := EmotionStatement(LabelHappy, 2.0/3.0)

	assert.Contains(t, statement, "HAPPY")
	assert.Contains(t, statement, "66.7%")
}

func TestIsValidLabel(t *testing.T) {
	for _, label := range Vocabulary {
		assert.True(t, IsValidLabel(label), label)
	}
	assert.False(t, IsValidLabel("bored"))
	assert.False(t, IsValidLabel(""))
	assert.False(t, IsValidLabel("HAPPY"))
}

func TestNewSession_ExpiryArithmetic(t *testing.T) {
	ttl := 24 * time.Hour
	session := NewSession(uuid.New(), "Ada", true, ttl)

	assert.Equal(t, SessionActive, session.Status)
	assert.Equal(t, session.CreatedAt.Add(ttl), session.ExpiresAt)
	assert.False(t, session.IsExpired())

	past := &Session{ExpiresAt: time.Now().Add(-time.Minute)}
	assert.True(t, past.IsExpired())
}
