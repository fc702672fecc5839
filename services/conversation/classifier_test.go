package conversation

import (
	"context"
	"testing"

	"bookline/models"

	genai "github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeywordClassifier(t *testing.T) {
	tests := []struct {
		text string
		want models.IntentType
	}{
		{"I'd like to book an appointment", models.IntentBook},
		{"Je voudrais un RDV demain à 14h", models.IntentBook},
		{"can you schedule me in?", models.IntentBook},
		{"I need to cancel my booking", models.IntentCancel},
		{"annuler mon rendez-vous svp", models.IntentCancel},
		{"can we reschedule my appointment?", models.IntentModify},
		{"what are your hours?", models.IntentHoursInfo},
		{"quels sont vos horaires?", models.IntentHoursInfo},
		{"how much does a massage cost?", models.IntentServiceInfo},
		{"hello there", models.IntentGreeting},
		{"bonjour!", models.IntentGreeting},
		{"the weather is nice", models.IntentOther},
	}

	c := NewKeywordClassifier()
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			intent, err := c.Classify(context.Background(), tt.text, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, intent.Type)
			assert.Greater(t, intent.Confidence, 0.0)
			assert.LessOrEqual(t, intent.Confidence, 1.0)
		})
	}
}

func TestCandidateText(t *testing.T) {
	// Blocked prompts come back without candidates or content; neither
	// shape may panic, both must signal fallback.
	_, ok := candidateText(nil)
	assert.False(t, ok)

	_, ok = candidateText(&genai.GenerateContentResponse{})
	assert.False(t, ok)

	_, ok = candidateText(&genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: nil}},
	})
	assert.False(t, ok)

	text, ok := candidateText(&genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: &genai.Content{
			Parts: []genai.Part{genai.Text(`{"type":`), genai.Text(`"book"}`)},
		}}},
	})
	require.True(t, ok)
	assert.Equal(t, `{"type":"book"}`, text)
}

func TestParseIntentJSON(t *testing.T) {
	intent, err := parseIntentJSON("```json\n{\"type\":\"book\",\"confidence\":0.95}\n```")
	require.NoError(t, err)
	assert.Equal(t, models.IntentBook, intent.Type)
	assert.InDelta(t, 0.95, intent.Confidence, 1e-9)

	// Unknown types collapse to "other" rather than leaking upstream.
	intent, err = parseIntentJSON(`{"type":"order_pizza","confidence":0.9}`)
	require.NoError(t, err)
	assert.Equal(t, models.IntentOther, intent.Type)

	_, err = parseIntentJSON("I think they want to book something")
	assert.Error(t, err)
}
