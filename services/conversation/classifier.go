package conversation

import (
	"context"
	"strings"

	"bookline/models"
)

// IntentClassifier turns a raw message into a typed intent. A keyword
// matcher and an LLM-backed classifier are interchangeable behind this
// single call; the engine never inspects which one it holds.
type IntentClassifier interface {
	Classify(ctx context.Context, text string, history []models.Message) (models.Intent, error)
}

// KeywordClassifier is the rule-based classifier. It never fails; text
// that matches nothing is classified as "other" with low confidence.
type KeywordClassifier struct{}

func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{}
}

var intentKeywords = []struct {
	intent   models.IntentType
	keywords []string
}{
	// Order matters: cancel/modify before book so "cancel my booking"
	// is not read as a booking request.
	{models.IntentCancel, []string{"cancel", "annuler", "annulation"}},
	{models.IntentModify, []string{"reschedule", "postpone", "move my", "change my", "modifier", "déplacer", "reporter"}},
	{models.IntentBook, []string{"book", "appointment", "schedule", "reserve", "reservation", "rdv", "rendez-vous", "réserver", "réservation"}},
	{models.IntentHoursInfo, []string{"hours", "open", "close", "when are you", "horaires", "ouvert", "fermé"}},
	{models.IntentServiceInfo, []string{"service", "offer", "price", "cost", "how much", "prix", "tarif", "combien"}},
}

var greetingWords = []string{"hi", "hello", "hey", "good morning", "good afternoon", "bonjour", "salut", "bonsoir"}

func (c *KeywordClassifier) Classify(ctx context.Context, text string, history []models.Message) (models.Intent, error) {
	lower := strings.ToLower(text)

	for _, entry := range intentKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(lower, kw) {
				return models.Intent{
					Type:       entry.intent,
					Confidence: 0.9,
					Entities:   []models.Entity{{Type: "keyword", Value: kw, Confidence: 0.9}},
				}, nil
			}
		}
	}

	for _, g := range greetingWords {
		if strings.HasPrefix(lower, g) {
			return models.Intent{Type: models.IntentGreeting, Confidence: 0.8}, nil
		}
	}

	return models.Intent{Type: models.IntentOther, Confidence: 0.3}, nil
}
