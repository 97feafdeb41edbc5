package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"misswong/essay-grader/internal/models"
)

func newSessionWith(ids ...string) *BatchSession {
	session := NewBatchSession()
	for _, id := range ids {
		session.Add(models.UploadItem{ID: id, Filename: id + ".jpg"})
	}
	return session
}

func TestSessionAddSetsIdleStatus(t *testing.T) {
	session := NewBatchSession()
	session.Add(models.UploadItem{ID: "a", Status: models.UploadDone})

	items := session.Items()
	require.Len(t, items, 1)
	assert.Equal(t, models.UploadIdle, items[0].Status)
}

func TestSessionItemsKeepSubmissionOrder(t *testing.T) {
	session := newSessionWith("a", "b", "c")

	items := session.Items()
	require.Len(t, items, 3)
	assert.Equal(t, "a", items[0].ID)
	assert.Equal(t, "b", items[1].ID)
	assert.Equal(t, "c", items[2].ID)
}

func TestSessionItemsSnapshotIsolation(t *testing.T) {
	session := newSessionWith("a")

	snapshot := session.Items()
	snapshot[0].Status = models.UploadDone
	snapshot[0].ErrorMsg = "mutated"

	fresh := session.Items()
	assert.Equal(t, models.UploadIdle, fresh[0].Status)
	assert.Empty(t, fresh[0].ErrorMsg)
}

func TestSessionRemove(t *testing.T) {
	session := newSessionWith("a", "b")

	removed, err := session.Remove("a")
	require.NoError(t, err)
	assert.Equal(t, "a", removed.ID)

	items := session.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "b", items[0].ID)

	_, err = session.Remove("missing")
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestSessionRemoveBlockedWhileAnalyzing(t *testing.T) {
	session := newSessionWith("a")
	require.True(t, session.MarkAnalyzing("a"))

	_, err := session.Remove("a")
	require.Error(t, err)

	items := session.Items()
	require.Len(t, items, 1)
	assert.Equal(t, models.UploadAnalyzing, items[0].Status)
}

func TestSessionPendingIncludesIdleAndErrored(t *testing.T) {
	session := newSessionWith("a", "b", "c")

	require.True(t, session.MarkAnalyzing("a"))
	require.True(t, session.MarkDone("a", &models.GradingResult{Score: 90}))

	require.True(t, session.MarkAnalyzing("b"))
	require.True(t, session.MarkError("b", "boom"))

	assert.Equal(t, []string{"b", "c"}, session.Pending())
}

func TestSessionStatusTransitions(t *testing.T) {
	session := newSessionWith("a")

	// Done and error require an analyzing item first.
	assert.False(t, session.MarkDone("a", nil))
	assert.False(t, session.MarkError("a", "x"))

	require.True(t, session.MarkAnalyzing("a"))
	assert.Equal(t, "a", session.ActiveID())

	// Analyzing cannot be re-entered.
	assert.False(t, session.MarkAnalyzing("a"))

	require.True(t, session.MarkDone("a", &models.GradingResult{Score: 75}))

	// Done items stay done.
	assert.False(t, session.MarkAnalyzing("a"))
	assert.False(t, session.MarkError("a", "x"))

	item, ok := session.Get("a")
	require.True(t, ok)
	assert.Equal(t, models.UploadDone, item.Status)
	require.NotNil(t, item.Result)
	assert.Equal(t, 75, item.Result.Score)
}

func TestSessionErrorRetryClearsMessage(t *testing.T) {
	session := newSessionWith("a")

	require.True(t, session.MarkAnalyzing("a"))
	require.True(t, session.MarkError("a", "server is busy"))

	item, _ := session.Get("a")
	assert.Equal(t, models.UploadError, item.Status)
	assert.Equal(t, "server is busy", item.ErrorMsg)

	// Errored items are eligible for another attempt.
	require.True(t, session.MarkAnalyzing("a"))

	item, _ = session.Get("a")
	assert.Equal(t, models.UploadAnalyzing, item.Status)
	assert.Empty(t, item.ErrorMsg)
}

func TestSessionRemoveClearsActiveID(t *testing.T) {
	session := newSessionWith("a")

	require.True(t, session.MarkAnalyzing("a"))
	require.True(t, session.MarkError("a", "x"))

	_, err := session.Remove("a")
	require.NoError(t, err)
	assert.Empty(t, session.ActiveID())
}
