package app

import (
	"github.com/rs/zerolog"

	"github.com/ayusman/hcs/internal/control"
	"github.com/ayusman/hcs/internal/detector"
	"github.com/ayusman/hcs/internal/gesture"
	"github.com/ayusman/hcs/internal/metrics"
	"github.com/ayusman/hcs/internal/store"
)

// Journal records the actions of one session in the store.
type Journal struct {
	repo    *store.JournalRepository
	session *store.Session
	log     zerolog.Logger
}

// StartJournal opens a new journal session.
func StartJournal(repo *store.JournalRepository, log zerolog.Logger) (*Journal, error) {
	session, err := repo.StartSession()
	if err != nil {
		return nil, err
	}
	log = log.With().Str("component", "journal").Str("session", session.ID).Logger()
	log.Info().Msg("journal session started")
	return &Journal{repo: repo, session: session, log: log}, nil
}

// SessionID returns the ID of the journal session.
func (j *Journal) SessionID() string {
	return j.session.ID
}

// Record stores one action. Failures are logged and never stop the loop.
func (j *Journal) Record(e control.Event) {
	event := &store.ActionEvent{
		SessionID: j.session.ID,
		Action:    e.Action.String(),
		Hand:      e.Hand.String(),
		X:         e.Position.X,
		Y:         e.Position.Y,
		CreatedAt: e.Time,
	}
	if e.Score > 0 {
		event.Gesture = e.Gesture.String()
		event.Score = e.Score
	}
	if err := j.repo.Record(event); err != nil {
		j.log.Warn().Err(err).Stringer("action", e.Action).Msg("failed to record action")
	}
}

// Close ends the journal session.
func (j *Journal) Close() error {
	return j.repo.EndSession(j.session.ID)
}

// Observe wires the controller callbacks to metrics and the journal.
// Either may be nil.
func Observe(ctrl *control.Controller, m *metrics.Metrics, j *Journal) {
	ctrl.OnAction = func(e control.Event) {
		m.Action(e.Action.String())
		if j != nil {
			j.Record(e)
		}
	}
	ctrl.OnClassify = func(hand detector.HandType, result *gesture.ClassificationResult) {
		label := "unclassified"
		if result != nil {
			label = result.Type.String()
		}
		m.Classification(hand.String(), label)
	}
}
