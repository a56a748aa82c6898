package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"google.golang.org/genai"
)

type GeminiService interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
	GenerateText(ctx context.Context, prompt string, temperature float32) (string, error)
	GenerateTextWithRetry(ctx context.Context, prompt string, temperature float32, maxRetries int) (string, error)
}

type geminiService struct {
	client     *genai.Client
	modelName  string
	embedModel string
}

func NewGeminiService(apiKey string) (GeminiService, error) {
	ctx := context.Background()

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &geminiService{
		client:     client,
		modelName:  "gemini-2.5-flash",
		embedModel: "text-embedding-004",
	}, nil
}

// GenerateEmbedding implements GeminiService.
func (g *geminiService) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	if len(text) > 40000 {
		text = text[:40000]
	}

	result, err := g.client.Models.EmbedContent(ctx, g.embedModel, genai.Text(text), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embedding: %w", err)
	}

	if result == nil || len(result.Embeddings) == 0 {
		return nil, fmt.Errorf("empty embedding result")
	}

	return result.Embeddings[0].Values, nil
}

// GenerateText implements GeminiService.
func (g *geminiService) GenerateText(ctx context.Context, prompt string, temperature float32) (string, error) {
	config := &genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: 2048,
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.modelName, genai.Text(prompt), config)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	if resp == nil {
		return "", fmt.Errorf("no response generated (nil response)")
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("no text content in response")
	}

	return text, nil
}

// GenerateTextWithRetry implements GeminiService.
func (g *geminiService) GenerateTextWithRetry(ctx context.Context, prompt string, temperature float32, maxRetries int) (string, error) {
	var lastErr error

	for attempt := 1; attempt <= maxRetries; attempt++ {
		result, err := g.GenerateText(ctx, prompt, temperature)
		if err == nil {
			return result, nil
		}

		lastErr = err

		select {
		case <-ctx.Done():
			return "", fmt.Errorf("context cancelled: %w", ctx.Err())
		default:
		}

		if attempt < maxRetries {
			log.Printf("⚠️  Attempt %d failed: %v. Retrying...\n", attempt, err)
		}
	}

	return "", fmt.Errorf("failed after %d attempts: %w", maxRetries, lastErr)
}

type geminiRewriter struct {
	gemini        GeminiService
	promptBuilder *PromptBuilder
	maxRetries    int
}

// NewGeminiRewriter rewrites prompts with Gemini instead of the simulated
// tag. Opt-in via GEMINI_API_KEY.
func NewGeminiRewriter(gemini GeminiService, maxRetries int) PromptRewriter {
	return &geminiRewriter{
		gemini:        gemini,
		promptBuilder: NewPromptBuilder(),
		maxRetries:    maxRetries,
	}
}

// Rewrite implements PromptRewriter.
func (r *geminiRewriter) Rewrite(ctx context.Context, source, sourceModel, targetModel string) (string, error) {
	instruction := r.promptBuilder.BuildRewritePrompt(source, sourceModel, targetModel)

	rewritten, err := r.gemini.GenerateTextWithRetry(ctx, instruction, 0.3, r.maxRetries)
	if err != nil {
		return "", err
	}

	rewritten = strings.TrimSpace(rewritten)
	if rewritten == "" {
		return "", fmt.Errorf("empty rewrite for prompt")
	}

	return rewritten, nil
}

type geminiScorer struct {
	gemini        GeminiService
	promptBuilder *PromptBuilder
	maxRetries    int
}

// NewGeminiScorer asks Gemini for the rubric sub-scores instead of drawing
// them at random. Opt-in via GEMINI_API_KEY.
func NewGeminiScorer(gemini GeminiService, maxRetries int) ScoreProvider {
	return &geminiScorer{
		gemini:        gemini,
		promptBuilder: NewPromptBuilder(),
		maxRetries:    maxRetries,
	}
}

type geminiScoreResponse struct {
	Clarity     int `json:"clarity"`
	Specificity int `json:"specificity"`
	Safety      int `json:"safety"`
}

// SubScores implements ScoreProvider.
func (s *geminiScorer) SubScores(ctx context.Context, prompt, model string) (int, int, int, error) {
	instruction := s.promptBuilder.BuildScorePrompt(prompt, model)

	response, err := s.gemini.GenerateTextWithRetry(ctx, instruction, 0.2, s.maxRetries)
	if err != nil {
		return 0, 0, 0, err
	}

	var scores geminiScoreResponse
	if err := parseJSONResponse(response, &scores); err != nil {
		return 0, 0, 0, fmt.Errorf("failed to parse score response: %w", err)
	}

	return scores.Clarity, scores.Specificity, scores.Safety, nil
}

func parseJSONResponse(response string, target interface{}) error {
	jsonStr := extractJSON(response)
	if jsonStr == "" {
		return fmt.Errorf("no JSON object found in response")
	}
	return json.Unmarshal([]byte(jsonStr), target)
}

// extractJSON pulls the first JSON object out of a model response that may
// be wrapped in markdown fences or prose.
func extractJSON(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end < start {
		return ""
	}

	return text[start : end+1]
}
