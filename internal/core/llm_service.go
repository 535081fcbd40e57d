package core

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"carouselcraft.io/carousel-studio/internal/config"
	"github.com/google/generative-ai-go/genai"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"
)

const defaultModelName = "gemini-1.5-flash-latest"

// TextGenerator produces free text for a system instruction and a prompt.
type TextGenerator interface {
	GenerateText(ctx context.Context, systemInstruction, prompt string) (string, error)
}

type LLMService struct {
	client    *genai.Client
	modelName string
	limiter   *rate.Limiter
}

// NewLLMService returns a service without a client when no API key is
// configured; every call then fails with ErrLLMUnavailable.
func NewLLMService() *LLMService {
	interval := config.AppConfig.AIRateInterval
	if interval <= 0 {
		interval = 2 * time.Second
	}
	modelName := config.AppConfig.GeminiModel
	if modelName == "" {
		modelName = defaultModelName
	}
	s := &LLMService{modelName: modelName, limiter: rate.NewLimiter(rate.Every(interval), 2)}

	if config.AppConfig.GeminiAPIKey == "" {
		return s
	}
	client, err := genai.NewClient(context.Background(), option.WithAPIKey(config.AppConfig.GeminiAPIKey))
	if err != nil {
		log.Fatalf("Failed to create GenAI client: %v", err)
	}
	s.client = client
	return s
}

func (s *LLMService) Close() {
	if s.client != nil {
		if err := s.client.Close(); err != nil {
			log.Printf("Error closing GenAI client: %v", err)
		} else {
			log.Println("GenAI client closed.")
		}
	}
}

func (s *LLMService) GenerateText(ctx context.Context, systemInstruction, prompt string) (string, error) {
	if s.client == nil {
		return "", ErrLLMUnavailable
	}
	if err := s.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter wait failed: %w", err)
	}

	model := s.client.GenerativeModel(s.modelName)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(systemInstruction)},
	}
	temp := float32(0.8)
	maxTokens := int32(8192)
	model.GenerationConfig = genai.GenerationConfig{
		Temperature:      &temp,
		MaxOutputTokens:  &maxTokens,
		ResponseMIMEType: "application/json",
	}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini generation request failed: %w", err)
	}

	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini returned no candidates")
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			text.WriteString(string(txt))
		} else {
			log.Printf("Gemini response part was not text: %T", part)
		}
	}
	if text.Len() == 0 {
		return "", fmt.Errorf("gemini returned an empty text response")
	}
	return text.String(), nil
}
