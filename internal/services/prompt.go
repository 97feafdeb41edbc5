package services

import (
	"fmt"

	"misswong/essay-grader/internal/models"
)

type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// levelRubric maps a grading level to the rubric and tone instructions
// embedded in the prompt.
func levelRubric(level models.GradingLevel) string {
	switch level {
	case models.LevelPrimary:
		return "Student Level: Primary School. Criteria: Basic spelling, simple tenses. Tone: Very encouraging, simple words."
	case models.LevelUniversity:
		return "Student Level: University. Criteria: Argumentation, academic vocabulary. Tone: Formal & critical."
	default:
		return "Student Level: Secondary School. Criteria: Grammar, variety, structure. Tone: Constructive."
	}
}

// BuildEssayPrompt creates the combined OCR-and-grading instruction for
// one essay image. The model transcribes the handwriting exactly as
// written, grades it against the level rubric with British English as the
// house style, and replies with a single JSON object using the
// {{{original|||correction|||reason}}} marker for every detected error.
func (pb *PromptBuilder) BuildEssayPrompt(level models.GradingLevel) string {
	return fmt.Sprintf(`You are an expert OCR and ESL English teacher.
**STEP 1: OCR TRANSCRIPTION**
Transcribe the English text EXACTLY as written, preserving all errors. Detect the student's name.
**STEP 2: ANALYSIS**
Analyze based on: %s

**IMPORTANT: LANGUAGE SETTINGS**
1. **Feedback & Output:** Use **British English** (UK) for all your comments, suggestions, and corrections (e.g., use 'colour', 'organise', 'programme').
2. **Grading Policy:** Accept **US English** spellings (e.g., 'color', 'organize', 'center') as **valid**. Do NOT mark US spelling as an error unless the student is inconsistent (mixing US/UK styles).
3. **Correction Logic:** If you correct a sentence for other reasons (grammar/vocab), output the corrected version in British English, but do not purely "correct" US spelling to UK spelling if that was the only "mistake".

**STEP 3: OUTPUT JSON**
IMPORTANT: Return VALID JSON. Escape double quotes in strings.
Return result in this JSON format:
{
  "studentName": "Detected Name or 'Unknown'",
  "ocrText": "Raw transcription",
  "title": "Inferred Title",
  "score": 0-100,
  "diffText": "The complete essay text. BUT for every error found, replace the error with this specific pattern: {{{original_word|||corrected_word|||explanation_why}}}. Example: I {{{go|||went|||Use past tense}}} to school.",
  "correctedText": "Clean corrected version.",
  "comments": "Detailed feedback in British English.",
  "suggestions": ["Suggestion 1", "Suggestion 2"],
  "spellingErrors": ["wrong -> right", "mistake -> correction"],
  "strengthSummary": "One short sentence highlighting the best part.",
  "improvementSummary": "One short sentence highlighting the main improvement."
}`, levelRubric(level))
}
