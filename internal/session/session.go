// Package session tracks one in-progress quote: the attached mesh snapshot,
// its print configuration and where the quote is in its lifecycle.
package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Simplici0/printquote/internal/catalog"
	"github.com/Simplici0/printquote/internal/geometry"
	"github.com/Simplici0/printquote/internal/pricing"
)

var (
	// ErrNoFile is returned for operations that need an attached snapshot.
	ErrNoFile = errors.New("no file attached")
	// ErrSubmitted is returned for any change after the quote was submitted.
	ErrSubmitted = errors.New("quote already submitted")
	// ErrNotFound is returned by stores for unknown or expired sessions.
	ErrNotFound = errors.New("session not found")
)

// State is the lifecycle position of a session.
type State string

const (
	StateNoFile      State = "no_file"
	StateConfiguring State = "configuring"
	StateSubmitted   State = "submitted"
)

// Session is owned by exactly one client. Concurrent writers are
// last-write-wins at the store.
type Session struct {
	ID            string                `json:"id"`
	State         State                 `json:"state"`
	Snapshot      *geometry.Snapshot    `json:"snapshot,omitempty"`
	Configuration pricing.Configuration `json:"configuration"`
	SubmissionID  int64                 `json:"submission_id,omitempty"`
	CreatedAt     time.Time             `json:"created_at"`
	UpdatedAt     time.Time             `json:"updated_at"`
}

// New returns an empty session with a random id.
func New() *Session {
	now := time.Now().UTC()
	return &Session{
		ID:        uuid.NewString(),
		State:     StateNoFile,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Attach installs a new snapshot. The configuration is always reset to the
// catalog defaults, also when it replaces an earlier file. A degenerate
// snapshot leaves the session as it was.
func (s *Session) Attach(snapshot geometry.Snapshot, c *catalog.Catalog) error {
	if s.State == StateSubmitted {
		return ErrSubmitted
	}
	if err := snapshot.Validate(); err != nil {
		return err
	}
	s.Snapshot = &snapshot
	s.Configuration = pricing.DefaultConfiguration(c)
	s.State = StateConfiguring
	s.touch()
	return nil
}

// Detach discards the snapshot and its configuration.
func (s *Session) Detach() error {
	if s.State == StateSubmitted {
		return ErrSubmitted
	}
	s.Snapshot = nil
	s.Configuration = pricing.Configuration{}
	s.State = StateNoFile
	s.touch()
	return nil
}

// Edit applies fn to a copy of the configuration and keeps the result only
// if fn succeeds.
func (s *Session) Edit(fn func(geometry.Snapshot, pricing.Configuration) (pricing.Configuration, error)) error {
	if err := s.requireConfiguring(); err != nil {
		return err
	}
	cfg, err := fn(*s.Snapshot, s.Configuration)
	if err != nil {
		return err
	}
	s.Configuration = cfg
	s.touch()
	return nil
}

// Estimate computes the current quote.
func (s *Session) Estimate(profile catalog.PricingProfile) (pricing.Estimate, error) {
	if s.Snapshot == nil {
		return pricing.Estimate{}, ErrNoFile
	}
	return pricing.Calculate(*s.Snapshot, s.Configuration, profile), nil
}

// MarkSubmitted moves the session to its terminal state.
func (s *Session) MarkSubmitted(submissionID int64) error {
	if err := s.requireConfiguring(); err != nil {
		return err
	}
	s.SubmissionID = submissionID
	s.State = StateSubmitted
	s.touch()
	return nil
}

func (s *Session) requireConfiguring() error {
	switch s.State {
	case StateConfiguring:
		if s.Snapshot == nil {
			return fmt.Errorf("%w: configuring session without snapshot", ErrNoFile)
		}
		return nil
	case StateSubmitted:
		return ErrSubmitted
	default:
		return ErrNoFile
	}
}

func (s *Session) touch() {
	s.UpdatedAt = time.Now().UTC()
}
