package services

import (
	"regexp"
	"strings"

	"misswong/essay-grader/internal/models"
)

var (
	markerPattern = regexp.MustCompile(`(?s)\{\{\{.*?\}\}\}`)
	legacyPattern = regexp.MustCompile(`</?(?:del|ins)>`)
)

// ParseAnnotated splits annotated correction text into display segments.
// Text using the `{{{original|||correction|||reason}}}` marker format
// yields annotation triples; the legacy `<del>`/`<ins>` tag format yields
// deletion/insertion spans; anything else passes through as plain text.
// The pass is stateless and idempotent.
//
// There is no escape syntax for literal delimiters: the interior is split
// on at most two `|||` separators, so any further separator text stays
// inside the reason field.
func ParseAnnotated(text string) []models.Segment {
	if text == "" {
		return nil
	}
	if strings.Contains(text, "{{{") {
		return parseMarkerSegments(text)
	}
	if legacyPattern.MatchString(text) {
		return parseLegacySegments(text)
	}
	return []models.Segment{{Kind: models.SegmentPlain, Text: text}}
}

func parseMarkerSegments(text string) []models.Segment {
	var segments []models.Segment
	last := 0

	for _, loc := range markerPattern.FindAllStringIndex(text, -1) {
		if plain := text[last:loc[0]]; plain != "" {
			segments = append(segments, models.Segment{Kind: models.SegmentPlain, Text: plain})
		}

		inner := text[loc[0]+3 : loc[1]-3]
		parts := strings.SplitN(inner, "|||", 3)

		seg := models.Segment{Kind: models.SegmentAnnotation, Original: parts[0]}
		if len(parts) > 1 {
			seg.Correction = parts[1]
		}
		if len(parts) > 2 {
			seg.Reason = parts[2]
		}
		segments = append(segments, seg)

		last = loc[1]
	}

	if plain := text[last:]; plain != "" {
		segments = append(segments, models.Segment{Kind: models.SegmentPlain, Text: plain})
	}

	return segments
}

func parseLegacySegments(text string) []models.Segment {
	// Styled classification only applies when both tag kinds are present;
	// otherwise the tags are stripped and the text stays plain.
	classify := strings.Contains(text, "<del>") && strings.Contains(text, "<ins>")

	var segments []models.Segment
	last := 0
	prevTag := ""

	emit := func(part string) {
		if part == "" {
			return
		}
		kind := models.SegmentPlain
		if classify {
			switch prevTag {
			case "<del>":
				kind = models.SegmentDeletion
			case "<ins>":
				kind = models.SegmentInsertion
			}
		}
		switch kind {
		case models.SegmentDeletion:
			segments = append(segments, models.Segment{Kind: kind, Original: part})
		case models.SegmentInsertion:
			segments = append(segments, models.Segment{Kind: kind, Correction: part})
		default:
			segments = append(segments, models.Segment{Kind: kind, Text: part})
		}
	}

	for _, loc := range legacyPattern.FindAllStringIndex(text, -1) {
		emit(text[last:loc[0]])
		prevTag = text[loc[0]:loc[1]]
		last = loc[1]
	}
	emit(text[last:])

	return segments
}
