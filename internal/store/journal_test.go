package store

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJournalRepository_Sessions(t *testing.T) {
	s := newTestStore(t)
	journal := s.Journal()

	session, err := journal.StartSession()
	require.NoError(t, err)

	_, err = uuid.Parse(session.ID)
	assert.NoError(t, err, "session ID should be a UUID")

	got, err := journal.GetSession(session.ID)
	require.NoError(t, err)
	assert.Equal(t, session.ID, got.ID)
	assert.False(t, got.EndedAt.Valid)

	require.NoError(t, journal.EndSession(session.ID))

	got, err = journal.GetSession(session.ID)
	require.NoError(t, err)
	assert.True(t, got.EndedAt.Valid)
}

func TestJournalRepository_UnknownSession(t *testing.T) {
	s := newTestStore(t)
	journal := s.Journal()

	assert.ErrorIs(t, journal.EndSession("nope"), ErrNotFound)

	_, err := journal.GetSession("nope")
	assert.ErrorIs(t, err, ErrNotFound)

	err = journal.Record(&ActionEvent{SessionID: "nope", Action: "click", Hand: "Right", Gesture: "click"})
	assert.Error(t, err, "foreign key should reject events of unknown sessions")
}

func TestJournalRepository_RecordEvents(t *testing.T) {
	s := newTestStore(t)
	journal := s.Journal()

	session, err := journal.StartSession()
	require.NoError(t, err)

	first := &ActionEvent{SessionID: session.ID, Action: "grab_down", Hand: "Right", Gesture: "grab", Score: 0.91, X: 100, Y: 200}
	second := &ActionEvent{SessionID: session.ID, Action: "navigate_back", Hand: "Left", Gesture: "go_back", Score: 0.77}
	require.NoError(t, journal.Record(first))
	require.NoError(t, journal.Record(second))

	assert.NotZero(t, first.ID)
	assert.False(t, first.CreatedAt.IsZero())

	events, err := journal.Events(session.ID)
	require.NoError(t, err)
	require.Len(t, events, 2)

	assert.Equal(t, "grab_down", events[0].Action)
	assert.Equal(t, 100, events[0].X)
	assert.Equal(t, 200, events[0].Y)
	assert.Equal(t, 0.91, events[0].Score)
	assert.Equal(t, "navigate_back", events[1].Action)
	assert.Equal(t, "Left", events[1].Hand)

	other, err := journal.StartSession()
	require.NoError(t, err)
	events, err = journal.Events(other.ID)
	require.NoError(t, err)
	assert.Empty(t, events)
}
