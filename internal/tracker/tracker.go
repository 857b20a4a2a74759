// Package tracker owns the drop zone's tracked file collection and drives
// the simulated upload lifecycle of each record.
package tracker

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/filedrop/backend/internal/filemeta"
	"github.com/filedrop/backend/internal/models"
	"github.com/filedrop/backend/internal/notify"
	"github.com/filedrop/backend/internal/preview"
)

// Errors returned by Retrieve.
var (
	ErrNotFound    = errors.New("record not found")
	ErrNotComplete = errors.New("record not complete")
)

// ProgressStep is how far a single tick advances a record.
const ProgressStep = 10

const watcherBuffer = 8

// Config controls the simulated upload timing.
type Config struct {
	TickInterval  time.Duration // period between progress ticks
	CompleteDelay time.Duration // delay from intake to forced completion
}

// DefaultConfig returns the reference widget timing.
func DefaultConfig() Config {
	return Config{
		TickInterval:  200 * time.Millisecond,
		CompleteDelay: 2 * time.Second,
	}
}

// IntakeFile is one raw file handed to Intake by the drop/select boundary.
type IntakeFile struct {
	Name     string
	MimeType string
	Data     []byte
}

// recordTimers holds the two scheduled tasks driving one record. Both are
// dead once the record completes or is removed.
type recordTimers struct {
	stopTick chan struct{}
	complete *time.Timer
}

// Tracker owns the tracked collection. All mutations go through the tracker's
// lock and install a fresh snapshot, so readers holding an older snapshot
// never see a partial update.
type Tracker struct {
	mu       sync.RWMutex
	cfg      Config
	store    preview.Store
	hub      *notify.Hub
	records  []*models.Record
	index    map[string]*models.Record
	timers   map[string]*recordTimers
	snapshot models.Snapshot
	watchers map[int]chan models.Snapshot
	nextID   int
	closed   bool
}

// New creates a Tracker backed by the given preview store and notification hub.
func New(cfg Config, store preview.Store, hub *notify.Hub) *Tracker {
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = DefaultConfig().TickInterval
	}
	if cfg.CompleteDelay <= 0 {
		cfg.CompleteDelay = DefaultConfig().CompleteDelay
	}
	return &Tracker{
		cfg:      cfg,
		store:    store,
		hub:      hub,
		index:    make(map[string]*models.Record),
		timers:   make(map[string]*recordTimers),
		snapshot: models.Snapshot{Records: []models.Record{}},
		watchers: make(map[int]chan models.Snapshot),
	}
}

// Intake creates one record per file, appends them in the order supplied,
// and starts the simulated upload for each: a periodic ticker plus a single
// forced-completion timer.
func (t *Tracker) Intake(files []IntakeFile) []models.Record {
	if len(files) == 0 {
		return []models.Record{}
	}

	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return []models.Record{}
	}

	added := make([]*models.Record, 0, len(files))
	for _, f := range files {
		blob := t.store.Put(f.Name, f.Data)
		rec := &models.Record{
			ID:        uuid.New().String(),
			Name:      f.Name,
			SizeBytes: int64(len(f.Data)),
			MimeType:  f.MimeType,
			PreviewID: blob.ID,
			Progress:  0,
			Status:    models.RecordStatusPending,
			SizeLabel: filemeta.FormatSize(int64(len(f.Data))),
			Icon:      string(filemeta.Icon(f.MimeType)),
			AddedAt:   time.Now(),
		}
		t.records = append(t.records, rec)
		t.index[rec.ID] = rec
		t.timers[rec.ID] = &recordTimers{stopTick: make(chan struct{})}
		added = append(added, rec)
		fmt.Printf("[Tracker %s] Tracking %s (%s)\n", rec.ID[:8], rec.Name, rec.SizeLabel)
	}
	t.publishLocked()

	out := make([]models.Record, 0, len(added))
	for _, rec := range added {
		tm := t.timers[rec.ID]
		id := rec.ID
		tm.complete = time.AfterFunc(t.cfg.CompleteDelay, func() { t.Complete(id) })
		go t.runTicker(id, tm.stopTick)
		out = append(out, *rec)
	}
	t.mu.Unlock()

	return out
}

// runTicker advances one record on a fixed period until it completes or its
// stop channel closes.
func (t *Tracker) runTicker(id string, stop <-chan struct{}) {
	ticker := time.NewTicker(t.cfg.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if !t.Tick(id) {
				return
			}
		}
	}
}

// Tick advances a record's progress by one step, clamped to 100. It reports
// whether the record still has progress left to make; once a record reaches
// 100 further ticks are no-ops.
func (t *Tracker) Tick(id string) bool {
	t.mu.Lock()

	rec, ok := t.index[id]
	if !ok || rec.Progress >= 100 {
		t.mu.Unlock()
		return false
	}

	rec.Progress += ProgressStep
	if rec.Progress >= 100 {
		t.completeLocked(rec)
		t.mu.Unlock()
		t.announceComplete(id, rec.Name)
		return false
	}

	rec.Status = models.RecordStatusUploading
	t.publishLocked()
	t.mu.Unlock()
	return true
}

// Complete forces a record to 100% regardless of how far its ticker got and
// cancels both of its scheduled tasks. Idempotent; the success notification
// is emitted exactly once.
func (t *Tracker) Complete(id string) {
	t.mu.Lock()

	rec, ok := t.index[id]
	if !ok || rec.Status == models.RecordStatusComplete {
		t.mu.Unlock()
		return
	}

	t.completeLocked(rec)
	t.mu.Unlock()
	t.announceComplete(id, rec.Name)
}

// completeLocked freezes a record at 100% and stops its scheduled tasks.
// The caller must hold the lock and announce the completion after releasing
// it.
func (t *Tracker) completeLocked(rec *models.Record) {
	rec.Progress = 100
	rec.Status = models.RecordStatusComplete
	t.stopTimersLocked(rec.ID)
	t.publishLocked()
}

func (t *Tracker) announceComplete(id, name string) {
	fmt.Printf("[Tracker %s] Upload complete: %s\n", id[:8], name)
	t.hub.Publish(notify.UploadComplete(id, name))
}

// Remove discards a record, stops its scheduled tasks and releases its
// preview blob. Removing an unknown id is a silent no-op.
func (t *Tracker) Remove(id string) {
	t.mu.Lock()

	rec, ok := t.index[id]
	if !ok {
		t.mu.Unlock()
		return
	}

	t.stopTimersLocked(id)
	delete(t.index, id)
	for i, r := range t.records {
		if r.ID == id {
			t.records = append(t.records[:i], t.records[i+1:]...)
			break
		}
	}
	previewID, name := rec.PreviewID, rec.Name
	t.publishLocked()
	t.mu.Unlock()

	t.store.Release(previewID)
	t.hub.Publish(notify.FileRemoved(id, name))
}

// Retrieve exposes a completed record and the preview blob backing it for a
// client-side save action. Records still uploading cannot be retrieved.
func (t *Tracker) Retrieve(id string) (models.Record, *preview.Blob, error) {
	t.mu.RLock()
	rec, ok := t.index[id]
	if !ok {
		t.mu.RUnlock()
		return models.Record{}, nil, ErrNotFound
	}
	if rec.Progress < 100 {
		t.mu.RUnlock()
		return models.Record{}, nil, ErrNotComplete
	}
	out := *rec
	t.mu.RUnlock()

	blob, err := t.store.Get(out.PreviewID)
	if err != nil {
		return models.Record{}, nil, err
	}
	return out, blob, nil
}

// Get returns a copy of a single record.
func (t *Tracker) Get(id string) (models.Record, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	rec, ok := t.index[id]
	if !ok {
		return models.Record{}, false
	}
	return *rec, true
}

// Snapshot returns the current immutable view of the collection.
func (t *Tracker) Snapshot() models.Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.snapshot
}

// Version returns the current snapshot version.
func (t *Tracker) Version() int64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.snapshot.Version
}

// Len returns the number of tracked records.
func (t *Tracker) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.records)
}

// Subscribe registers a watcher that receives every new snapshot. Slow
// watchers miss intermediate versions instead of blocking mutations.
func (t *Tracker) Subscribe() (int, <-chan models.Snapshot) {
	t.mu.Lock()
	defer t.mu.Unlock()

	id := t.nextID
	t.nextID++
	ch := make(chan models.Snapshot, watcherBuffer)
	t.watchers[id] = ch
	return id, ch
}

// Unsubscribe removes a watcher and closes its channel.
func (t *Tracker) Unsubscribe(id int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if ch, ok := t.watchers[id]; ok {
		delete(t.watchers, id)
		close(ch)
	}
}

// Close stops every scheduled task and closes all watcher channels. Records
// are left in place; the process is shutting down anyway.
func (t *Tracker) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return
	}
	t.closed = true
	for id := range t.timers {
		t.stopTimersLocked(id)
	}
	for id, ch := range t.watchers {
		delete(t.watchers, id)
		close(ch)
	}
}

// stopTimersLocked cancels both scheduled tasks for a record. Safe to call
// once per record; subsequent calls are no-ops.
func (t *Tracker) stopTimersLocked(id string) {
	tm, ok := t.timers[id]
	if !ok {
		return
	}
	close(tm.stopTick)
	if tm.complete != nil {
		tm.complete.Stop()
	}
	delete(t.timers, id)
}

// publishLocked installs a fresh snapshot and fans it out to watchers.
func (t *Tracker) publishLocked() {
	recs := make([]models.Record, len(t.records))
	for i, r := range t.records {
		recs[i] = *r
	}
	t.snapshot = models.Snapshot{
		Version: t.snapshot.Version + 1,
		Records: recs,
	}
	for _, ch := range t.watchers {
		select {
		case ch <- t.snapshot:
		default:
		}
	}
}
