// Package scheduler is the bounded work dispatcher (§4.6 C6): a manual
// queue, a timer loop that enqueues per-artist scheduled runs, and a
// worker pool capped at max_concurrent_artists. Grounded on the teacher's
// internal/watcher ticker-driven dispatch loop, generalized from a single
// interval string into the daily/weekly/monthly rule set the Design Notes
// call for, with dedup and a bounded completed-task history added on top.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nyxaria/kmfetch/pkg/models"
	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("component", "scheduler")

const (
	dispatchInterval = 1 * time.Second
	completedCap     = 100
	drainTimeout     = 10 * time.Second
)

// ArtistDownloader is the subset of internal/downloader.Downloader the
// scheduler depends on, kept as a local interface to avoid a package
// cycle and to make the dispatcher trivially testable with a fake.
type ArtistDownloader interface {
	DownloadArtist(ctx context.Context, artist models.Artist, fromDate, untilDate *time.Time) (models.ArtistResult, error)
}

// ArtistSource resolves artist records for timer inspection and enqueue.
type ArtistSource interface {
	ListArtists() ([]models.Artist, error)
	GetArtist(id string) (models.Artist, bool, error)
}

// SessionController is the HTTPClient subset cancel_all drives.
type SessionController interface {
	Stop()
	Resume()
}

// CompletionFunc receives one artist run's summary after its task
// finishes, success or failure. Used to feed internal/reporter without
// the scheduler importing it directly.
type CompletionFunc func(models.ArtistRunSummary)

// Scheduler dispatches download_artist tasks under a worker-count cap.
type Scheduler struct {
	downloader  ArtistDownloader
	artists     ArtistSource
	session     SessionController
	maxWorkers  int
	onComplete  CompletionFunc
	globalTimer *models.Timer

	mu         sync.Mutex
	queue      []*task
	queuedKeys map[key]bool
	active     map[string]*task
	completed  []*task

	nextRunMu sync.Mutex
	nextRun   map[string]time.Time

	running sync.WaitGroup
}

// New returns a Scheduler with the given artist-level concurrency cap and
// global fallback timer (may be nil if no global schedule is configured).
func New(downloader ArtistDownloader, artists ArtistSource, session SessionController, maxWorkers int, globalTimer *models.Timer) *Scheduler {
	if maxWorkers <= 0 {
		maxWorkers = 1
	}
	return &Scheduler{
		downloader:  downloader,
		artists:     artists,
		session:     session,
		maxWorkers:  maxWorkers,
		globalTimer: globalTimer,
		queuedKeys:  make(map[key]bool),
		active:      make(map[string]*task),
		nextRun:     make(map[string]time.Time),
	}
}

// SetGlobalTimer updates the fallback schedule used for artists with no
// per-artist timer. Safe to call concurrently with Run.
func (s *Scheduler) SetGlobalTimer(t *models.Timer) {
	s.nextRunMu.Lock()
	defer s.nextRunMu.Unlock()
	s.globalTimer = t
}

// SetOnComplete installs a hook invoked after every task finishes. Not
// safe to call once Run has started dispatching.
func (s *Scheduler) SetOnComplete(fn CompletionFunc) {
	s.onComplete = fn
}

// QueueManual enqueues a single artist; returns the task id and false if
// an equal-keyed task was already queued (no-op in that case).
func (s *Scheduler) QueueManual(artistID string, fromDate, untilDate *time.Time) (string, bool) {
	return s.enqueue(artistID, fromDate, untilDate, "manual")
}

// QueueBatch enqueues several artists, skipping duplicates individually.
func (s *Scheduler) QueueBatch(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if taskID, ok := s.enqueue(id, nil, nil, "manual"); ok {
			out = append(out, taskID)
		}
	}
	return out
}

func (s *Scheduler) enqueue(artistID string, fromDate, untilDate *time.Time, kind string) (string, bool) {
	k := keyOf(artistID, fromDate, untilDate)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.queuedKeys[k] {
		return "", false
	}
	t := &task{
		id:       uuid.NewString(),
		artistID: artistID,
		from:     fromDate,
		until:    untilDate,
		kind:     kind,
		enqueued: time.Now(),
	}
	s.queue = append(s.queue, t)
	s.queuedKeys[k] = true
	return t.id, true
}

// Run blocks, driving the dispatch loop and the timer loop until ctx is
// cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(dispatchInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.dispatchOnce(ctx)
			s.checkTimers(ctx)
		}
	}
}

// dispatchOnce pops and submits work while capacity and queued tasks remain.
func (s *Scheduler) dispatchOnce(ctx context.Context) {
	for {
		s.mu.Lock()
		if len(s.active) >= s.maxWorkers || len(s.queue) == 0 {
			s.mu.Unlock()
			return
		}
		t := s.queue[0]
		s.queue = s.queue[1:]
		delete(s.queuedKeys, keyOf(t.artistID, t.from, t.until))
		s.active[t.id] = t
		s.mu.Unlock()

		s.running.Add(1)
		go s.runTask(ctx, t)
	}
}

func (s *Scheduler) runTask(ctx context.Context, t *task) {
	defer s.running.Done()
	now := time.Now()
	s.mu.Lock()
	t.started = &now
	s.mu.Unlock()

	artist, ok, err := s.artists.GetArtist(t.artistID)
	var result models.ArtistResult
	if err != nil {
		t.errMsg = fmt.Sprintf("lookup artist: %v", err)
	} else if !ok {
		t.errMsg = fmt.Sprintf("unknown artist id %q", t.artistID)
	} else {
		result, err = s.downloader.DownloadArtist(ctx, artist, t.from, t.until)
		if err != nil {
			t.errMsg = err.Error()
			log.WithError(err).WithField("artist_id", t.artistID).Warn("download_artist failed")
		}
	}

	finished := time.Now()
	s.mu.Lock()
	t.finished = &finished
	delete(s.active, t.id)
	s.completed = append(s.completed, t)
	if len(s.completed) > completedCap {
		s.completed = s.completed[len(s.completed)-completedCap:]
	}
	s.mu.Unlock()

	if s.onComplete != nil {
		s.onComplete(models.ArtistRunSummary{
			ArtistID:   t.artistID,
			ArtistName: artist.Name,
			Service:    artist.Service,
			Result:     result,
			Duration:   finished.Sub(*t.started),
		})
	}
}

// CancelAll clears the queued set, stops the HTTP session, waits up to
// drainTimeout for active tasks to finish, logs any residue, then resumes
// the session so future tasks work again (§4.6, §5 Cancellation).
func (s *Scheduler) CancelAll() {
	s.mu.Lock()
	s.queue = nil
	s.queuedKeys = make(map[key]bool)
	activeCount := len(s.active)
	s.mu.Unlock()

	log.WithField("active", activeCount).Info("cancel_all: clearing queue and draining active tasks")
	s.session.Stop()

	done := make(chan struct{})
	go func() {
		s.running.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(drainTimeout):
		s.mu.Lock()
		residue := len(s.active)
		s.mu.Unlock()
		if residue > 0 {
			log.WithField("residue", residue).Warn("cancel_all: active tasks did not drain within timeout")
		}
	}

	s.session.Resume()
}

// Status returns a point-in-time snapshot of the dispatcher.
func (s *Scheduler) Status() models.QueueStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	status := models.QueueStatus{}
	for _, t := range s.queue {
		status.Queued = append(status.Queued, t.toModel(models.TaskQueued))
	}
	for _, t := range s.active {
		status.Running = append(status.Running, t.toModel(models.TaskRunning))
	}
	return status
}

func (t *task) toModel(st models.TaskStatus) models.DownloadTask {
	dt := models.DownloadTask{
		ID:       t.id,
		Kind:     models.TaskDownloadArtist,
		ArtistID: t.artistID,
		Status:   st,
		Enqueued: t.enqueued,
		Started:  t.started,
		Finished: t.finished,
		Error:    t.errMsg,
	}
	return dt
}
