/*
Package ai provides optional Gemini-generated briefs for deal alerts.

When no API key is configured the feature is skipped entirely; a brief is
decoration on top of an alert, never a requirement for sending one.
*/
package ai

import (
	"context"
	"encoding/json"
	"fmt"

	"google.golang.org/genai"
)

// DealBrief is the structured summary attached to an alert email.
type DealBrief struct {
	Summary   []string `json:"summary"`
	BestValue string   `json:"best_value"`
}

var systemInstruction = `
You are a sports-card market analyst. You receive a short list of live
marketplace listings that a monitoring tool has already flagged as
underpriced against the buyer's own price ceilings, sometimes with a
recent average sold price for comparable cards.

Your task is to brief the buyer in a few plain sentences:

1. Summarize what was found: which cards, how far under the ceiling, and
   how the asking prices compare to the recent sold averages when one is
   given. Quote concrete dollar figures from the input; never invent
   numbers the input does not contain.
2. Call out the single best value in the batch and say why in one
   sentence (largest discount to comparable sales, low-bid auction
   closing soon, scarce print run).
3. Mention anything that looks too good to be true: a price dramatically
   under comparables often means a damaged card, a reprint, or a
   misleading title.

Keep each bullet under 25 words. Do not give purchase instructions or
financial advice; describe the numbers.
`

// GenerateBrief summarizes one owner's deals via the Gemini API.
func GenerateBrief(dealsText string, apiKey string, modelName string) (*DealBrief, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	ctx := context.Background()
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	prompt := fmt.Sprintf("Flagged listings:\n\n---\n%s", dealsText)

	systemContent := &genai.Content{
		Parts: []*genai.Part{
			{Text: systemInstruction},
		},
		Role: "system",
	}

	userContent := &genai.Content{
		Parts: []*genai.Part{
			{Text: prompt},
		},
		Role: "user",
	}

	contents := []*genai.Content{systemContent, userContent}

	resp, err := client.Models.GenerateContent(ctx, modelName, contents, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   getResponseSchema(),
	})
	if err != nil {
		return nil, fmt.Errorf("gemini API call failed: %w", err)
	}

	respText := resp.Text()

	var brief DealBrief
	if err := json.Unmarshal([]byte(respText), &brief); err != nil {
		return nil, fmt.Errorf("failed to unmarshal gemini JSON response: %w. Raw text: %s", err, respText)
	}

	return &brief, nil
}

func getResponseSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"summary": {
				Type:        genai.TypeArray,
				Items:       &genai.Schema{Type: genai.TypeString},
				Description: "2-4 short bullet points describing the flagged listings.",
			},
			"best_value": {
				Type:        genai.TypeString,
				Description: "One sentence naming the single best value and why.",
			},
		},
		Required: []string{"summary", "best_value"},
	}
}
