package conversation

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"bookline/models"
	"bookline/utils"

	genai "github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

const classifyPrompt = `Classify the intent of the last user message in a booking conversation.
Respond with JSON only, no prose:
{"type":"book|modify|cancel|service_info|hours_info|greeting|other","confidence":0.0,"entities":[{"type":"date|time|service|name","value":"...","confidence":0.0}]}

Conversation:
%s
Last user message: %s`

// GeminiClassifier classifies intents with Gemini. Any model or parse
// failure falls back to the keyword classifier, so classification never
// fails from the engine's point of view.
type GeminiClassifier struct {
	model    *genai.GenerativeModel
	fallback *KeywordClassifier
}

func NewGeminiClassifier(apiKey string) (*GeminiClassifier, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel("models/gemini-1.5-pro")
	return &GeminiClassifier{
		model:    model,
		fallback: NewKeywordClassifier(),
	}, nil
}

func (g *GeminiClassifier) Classify(ctx context.Context, text string, history []models.Message) (models.Intent, error) {
	logger := utils.GetLogger()

	var transcript strings.Builder
	for _, m := range history {
		transcript.WriteString(m.Role + ": " + m.Text + "\n")
	}

	resp, err := g.model.GenerateContent(ctx, genai.Text(fmt.Sprintf(classifyPrompt, transcript.String(), text)))
	if err != nil {
		logger.Warn("gemini classify failed, using keyword fallback", zap.Error(err))
		return g.fallback.Classify(ctx, text, history)
	}

	raw, ok := candidateText(resp)
	if !ok {
		// Safety-blocked prompts return no candidates or nil content.
		logger.Warn("gemini returned no usable candidate, using keyword fallback")
		return g.fallback.Classify(ctx, text, history)
	}

	intent, err := parseIntentJSON(raw)
	if err != nil {
		logger.Warn("gemini returned unparseable intent, using keyword fallback", zap.Error(err))
		return g.fallback.Classify(ctx, text, history)
	}
	return intent, nil
}

// candidateText concatenates the text parts of the first candidate.
// A response without candidates or content reports false.
func candidateText(resp *genai.GenerateContentResponse) (string, bool) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", false
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if textPart, ok := part.(genai.Text); ok {
			sb.WriteString(string(textPart))
		}
	}
	return sb.String(), true
}

// parseIntentJSON reads the model's JSON reply, tolerating markdown fences.
func parseIntentJSON(raw string) (models.Intent, error) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")

	var intent models.Intent
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &intent); err != nil {
		return models.Intent{}, fmt.Errorf("invalid intent JSON: %w", err)
	}
	switch intent.Type {
	case models.IntentBook, models.IntentModify, models.IntentCancel,
		models.IntentServiceInfo, models.IntentHoursInfo, models.IntentGreeting, models.IntentOther:
	default:
		intent.Type = models.IntentOther
		intent.Confidence = 0.3
	}
	return intent, nil
}
