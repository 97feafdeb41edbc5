package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"misswong/essay-grader/internal/models"
)

func TestParseAnnotatedMarkerFormat(t *testing.T) {
	segments := ParseAnnotated("I {{{go|||went|||Use past tense}}} to school.")

	require.Len(t, segments, 3)

	assert.Equal(t, models.SegmentPlain, segments[0].Kind)
	assert.Equal(t, "I ", segments[0].Text)

	assert.Equal(t, models.SegmentAnnotation, segments[1].Kind)
	assert.Equal(t, "go", segments[1].Original)
	assert.Equal(t, "went", segments[1].Correction)
	assert.Equal(t, "Use past tense", segments[1].Reason)

	assert.Equal(t, models.SegmentPlain, segments[2].Kind)
	assert.Equal(t, " to school.", segments[2].Text)
}

func TestParseAnnotatedEmptyReason(t *testing.T) {
	segments := ParseAnnotated("{{{teh|||the|||}}}")

	require.Len(t, segments, 1)
	assert.Equal(t, models.SegmentAnnotation, segments[0].Kind)
	assert.Equal(t, "teh", segments[0].Original)
	assert.Equal(t, "the", segments[0].Correction)
	assert.Empty(t, segments[0].Reason)
}

func TestParseAnnotatedExtraSeparatorStaysInReason(t *testing.T) {
	segments := ParseAnnotated("{{{a|||b|||first ||| second}}}")

	require.Len(t, segments, 1)
	assert.Equal(t, "a", segments[0].Original)
	assert.Equal(t, "b", segments[0].Correction)
	assert.Equal(t, "first ||| second", segments[0].Reason)
}

func TestParseAnnotatedMultilineMarker(t *testing.T) {
	segments := ParseAnnotated("start {{{one\ntwo|||three|||spans\nlines}}} end")

	require.Len(t, segments, 3)
	assert.Equal(t, "one\ntwo", segments[1].Original)
	assert.Equal(t, "spans\nlines", segments[1].Reason)
}

func TestParseAnnotatedAdjacentMarkers(t *testing.T) {
	segments := ParseAnnotated("{{{a|||b|||r1}}}{{{c|||d|||r2}}}")

	require.Len(t, segments, 2)
	assert.Equal(t, models.SegmentAnnotation, segments[0].Kind)
	assert.Equal(t, models.SegmentAnnotation, segments[1].Kind)
	assert.Equal(t, "c", segments[1].Original)
}

func TestParseAnnotatedLegacyTags(t *testing.T) {
	segments := ParseAnnotated("I <del>go</del><ins>went</ins> to school.")

	require.Len(t, segments, 4)

	assert.Equal(t, models.SegmentPlain, segments[0].Kind)
	assert.Equal(t, "I ", segments[0].Text)

	assert.Equal(t, models.SegmentDeletion, segments[1].Kind)
	assert.Equal(t, "go", segments[1].Original)

	assert.Equal(t, models.SegmentInsertion, segments[2].Kind)
	assert.Equal(t, "went", segments[2].Correction)

	assert.Equal(t, models.SegmentPlain, segments[3].Kind)
	assert.Equal(t, " to school.", segments[3].Text)
}

func TestParseAnnotatedLegacyRequiresBothTags(t *testing.T) {
	// One tag kind alone is stripped without styling.
	segments := ParseAnnotated("keep <del>this</del> plain")

	for _, seg := range segments {
		assert.Equal(t, models.SegmentPlain, seg.Kind)
	}
}

func TestParseAnnotatedPlainText(t *testing.T) {
	segments := ParseAnnotated("Nothing to correct here.")

	require.Len(t, segments, 1)
	assert.Equal(t, models.SegmentPlain, segments[0].Kind)
	assert.Equal(t, "Nothing to correct here.", segments[0].Text)
}

func TestParseAnnotatedEmptyText(t *testing.T) {
	assert.Empty(t, ParseAnnotated(""))
}
