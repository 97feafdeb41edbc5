package services

import (
	"context"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"misswong/essay-grader/internal/models"
)

type fakeGemini struct {
	apiKey string
	model  string
	prompt string
	data   string
	reply  string
	err    error
}

func (f *fakeGemini) GradeEssayImage(ctx context.Context, apiKey, model, prompt, imageBase64 string) (string, error) {
	f.apiKey = apiKey
	f.model = model
	f.prompt = prompt
	f.data = imageBase64
	return f.reply, f.err
}

func writeTestImage(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "essay.png")
	file, err := os.Create(path)
	require.NoError(t, err)
	defer file.Close()

	require.NoError(t, png.Encode(file, gradientImage(100, 60)))
	return path
}

func TestAnalyzeEssayPipeline(t *testing.T) {
	gemini := &fakeGemini{reply: `{"studentName": "Ann", "score": 85, "correctedText": "Fixed."}`}
	grader := NewEssayGrader(NewImageNormalizer(), gemini)

	item := models.UploadItem{ID: "a", FilePath: writeTestImage(t)}
	opts := AnalyzeOptions{APIKey: "key", Level: models.LevelUniversity, Model: "gemini-custom"}

	result, err := grader.AnalyzeEssay(context.Background(), item, opts)
	require.NoError(t, err)

	assert.Equal(t, "Ann", result.StudentName)
	assert.Equal(t, 85, result.Score)
	assert.Equal(t, "gemini-custom", result.ModelUsed)
	assert.NotEmpty(t, result.ProcessedImageBase64)

	// The upstream call carries the configured key and model, the
	// level-specific prompt and the normalized image payload.
	assert.Equal(t, "key", gemini.apiKey)
	assert.Equal(t, "gemini-custom", gemini.model)
	assert.Contains(t, gemini.prompt, "University")
	assert.Equal(t, result.ProcessedImageBase64, gemini.data)
}

func TestAnalyzeEssayRequiresAPIKey(t *testing.T) {
	grader := NewEssayGrader(NewImageNormalizer(), &fakeGemini{})

	_, err := grader.AnalyzeEssay(context.Background(), models.UploadItem{ID: "a"}, AnalyzeOptions{})
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestAnalyzeEssayMissingFile(t *testing.T) {
	grader := NewEssayGrader(NewImageNormalizer(), &fakeGemini{})

	item := models.UploadItem{ID: "a", FilePath: filepath.Join(t.TempDir(), "gone.png")}
	_, err := grader.AnalyzeEssay(context.Background(), item, AnalyzeOptions{APIKey: "key"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open essay image")
}

func TestAnalyzeEssayMalformedModelOutput(t *testing.T) {
	gemini := &fakeGemini{reply: "this is not json at all"}
	grader := NewEssayGrader(NewImageNormalizer(), gemini)

	item := models.UploadItem{ID: "a", FilePath: writeTestImage(t)}
	_, err := grader.AnalyzeEssay(context.Background(), item, AnalyzeOptions{APIKey: "key", Model: "m"})
	assert.ErrorIs(t, err, ErrOutputFormat)
}
