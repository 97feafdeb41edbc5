package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"misswong/essay-grader/internal/models"
)

// ErrMissingAPIKey is an input error: nothing is mutated and nothing is
// sent upstream without a configured key.
var ErrMissingAPIKey = errors.New("API Key is missing. Please go to Settings")

// AnalyzeOptions carries the grading configuration in effect for one run.
type AnalyzeOptions struct {
	APIKey string
	Level  models.GradingLevel
	Model  string
}

type EssayGrader interface {
	AnalyzeEssay(ctx context.Context, item models.UploadItem, opts AnalyzeOptions) (*models.GradingResult, error)
}

type essayGrader struct {
	normalizer    ImageNormalizer
	geminiService GeminiService
	promptBuilder *PromptBuilder
}

func NewEssayGrader(normalizer ImageNormalizer, geminiService GeminiService) EssayGrader {
	return &essayGrader{
		normalizer:    normalizer,
		geminiService: geminiService,
		promptBuilder: NewPromptBuilder(),
	}
}

// AnalyzeEssay runs the full pipeline for one essay image: normalize the
// image, build the level-specific prompt, call the model, decode the
// reply and attach the preprocessed image and model identifier.
func (g *essayGrader) AnalyzeEssay(ctx context.Context, item models.UploadItem, opts AnalyzeOptions) (*models.GradingResult, error) {
	if opts.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	file, err := os.Open(item.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open essay image: %w", err)
	}
	defer file.Close()

	normalized, err := g.normalizer.Normalize(file)
	if err != nil {
		return nil, err
	}

	level := models.NormalizeLevel(string(opts.Level))
	prompt := g.promptBuilder.BuildEssayPrompt(level)

	log.Printf("🤖 Grading essay %s at %s level with model %s", item.ID, level, opts.Model)

	text, err := g.geminiService.GradeEssayImage(ctx, opts.APIKey, opts.Model, prompt, normalized.Base64Data)
	if err != nil {
		return nil, err
	}

	result, err := DecodeGradingResult(text)
	if err != nil {
		return nil, err
	}

	result.ProcessedImageBase64 = normalized.Base64Data
	result.ModelUsed = opts.Model

	return result, nil
}
