package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"misswong/essay-grader/internal/models"
)

// ErrOutputFormat marks model output that stayed unparseable after the
// repair pass. No further repair heuristics are attempted.
var ErrOutputFormat = errors.New("AI output format error")

// ParseModelJSON decodes a JSON payload embedded in a model's free-form
// text reply. Code-fence markers are stripped first; if the initial parse
// fails, a single repair pass doubles every backslash that does not start
// a recognized escape sequence, then parsing is attempted once more.
func ParseModelJSON(text string, target interface{}) error {
	clean := strings.ReplaceAll(text, "```json", "")
	clean = strings.ReplaceAll(clean, "```", "")
	clean = strings.TrimSpace(clean)

	if err := json.Unmarshal([]byte(clean), target); err == nil {
		return nil
	}

	repaired := repairEscapes(clean)
	if err := json.Unmarshal([]byte(repaired), target); err != nil {
		return fmt.Errorf("%w: %v", ErrOutputFormat, err)
	}
	return nil
}

// repairEscapes doubles any backslash not already followed by one of the
// JSON escape characters " \ / b f n r t u. Valid escape pairs are kept
// intact and skipped so the second half of a `\\` pair is never touched.
func repairEscapes(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' {
			b.WriteByte(c)
			continue
		}
		if i+1 < len(s) && isEscapeChar(s[i+1]) {
			b.WriteByte(c)
			b.WriteByte(s[i+1])
			i++
			continue
		}
		b.WriteString(`\\`)
	}

	return b.String()
}

func isEscapeChar(c byte) bool {
	switch c {
	case '"', '\\', '/', 'b', 'f', 'n', 'r', 't', 'u':
		return true
	}
	return false
}

// DecodeGradingResult parses the model's reply into a GradingResult and
// applies defaulting for optional fields once, at this boundary.
func DecodeGradingResult(text string) (*models.GradingResult, error) {
	var result models.GradingResult
	if err := ParseModelJSON(text, &result); err != nil {
		return nil, err
	}

	if result.StudentName == "" {
		result.StudentName = "Unknown"
	}
	if result.Title == "" {
		result.Title = "Untitled"
	}
	if result.DiffText == "" {
		result.DiffText = result.CorrectedText
	}
	if result.Suggestions == nil {
		result.Suggestions = []string{}
	}
	if result.SpellingErrors == nil {
		result.SpellingErrors = []string{}
	}

	return &result, nil
}
