package llm

import "github.com/andrew/ai-gateway/pkg/models"

// charsPerToken is the rough character-to-token ratio used for pre-flight
// estimates. Estimates are a best-effort quota signal, never a billing
// source of truth.
const charsPerToken = 4

// EstimateTextTokens returns a cheap token estimate proportional to the
// character length of the text. Non-empty text always estimates to at
// least one token.
func EstimateTextTokens(text string) int {
	if len(text) == 0 {
		return 0
	}
	return (len(text) + charsPerToken - 1) / charsPerToken
}

// EstimateMessageTokens sums the estimate over all message contents.
func EstimateMessageTokens(messages []models.Message) int {
	total := 0
	for _, msg := range messages {
		total += EstimateTextTokens(msg.Content)
	}
	return total
}
