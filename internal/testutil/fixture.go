// fixture.go - Shared test fixtures for handler tests
package testutil

import (
	"testing"
	"time"

	"github.com/filedrop/backend/internal/notify"
	"github.com/filedrop/backend/internal/preview"
	"github.com/filedrop/backend/internal/tracker"
)

// Fixture bundles a tracker with its collaborators, wired with timers far
// enough away that tests drive all progress explicitly.
type Fixture struct {
	Tracker *tracker.Tracker
	Store   *preview.MemStore
	Hub     *notify.Hub
}

// NewFixture creates a Fixture and registers its cleanup with t.
func NewFixture(t *testing.T) *Fixture {
	t.Helper()

	store := preview.NewMemStore()
	hub := notify.NewHub()
	trk := tracker.New(tracker.Config{
		TickInterval:  time.Hour,
		CompleteDelay: time.Hour,
	}, store, hub)

	t.Cleanup(func() {
		trk.Close()
		hub.Close()
	})

	return &Fixture{Tracker: trk, Store: store, Hub: hub}
}

// IntakeOne tracks a single file and returns its record id.
func (f *Fixture) IntakeOne(t *testing.T, name, mimeType string, data []byte) string {
	t.Helper()

	recs := f.Tracker.Intake([]tracker.IntakeFile{{
		Name:     name,
		MimeType: mimeType,
		Data:     data,
	}})
	if len(recs) != 1 {
		t.Fatalf("expected 1 record from intake, got %d", len(recs))
	}
	return recs[0].ID
}
