// Package daemon provides the long-running background refresh service.
package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/theirongolddev/cclock/internal/config"
	"github.com/theirongolddev/cclock/internal/ledger"
	"github.com/theirongolddev/cclock/internal/pipeline"
)

// Config controls the daemon runtime behavior.
type Config struct {
	Config       config.Config
	LedgerPath   string
	ManifestPath string
	Interval     time.Duration
	Addr         string
	EventsBuffer int
}

// Snapshot is a compact ledger state for status/event payloads.
type Snapshot struct {
	At              time.Time `json:"at"`
	Sessions        int       `json:"sessions"`
	ActiveDays      int       `json:"active_days"`
	TotalActiveSecs int64     `json:"total_active_secs"`
	TodayActiveSecs int64     `json:"today_active_secs"`
	TodaySessions   int       `json:"today_sessions"`
	Tokens          int64     `json:"tokens"`
	SyncedDays      int       `json:"synced_days"`
}

// Delta captures snapshot deltas between refresh ticks.
type Delta struct {
	Sessions        int   `json:"sessions"`
	TodayActiveSecs int64 `json:"today_active_secs"`
	Tokens          int64 `json:"tokens"`
	SyncedDays      int   `json:"synced_days"`
}

func (d Delta) isZero() bool {
	return d.Sessions == 0 &&
		d.TodayActiveSecs == 0 &&
		d.Tokens == 0 &&
		d.SyncedDays == 0
}

// Event is emitted whenever the ledger snapshot changes.
type Event struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Snapshot  Snapshot  `json:"snapshot"`
	Delta     Delta     `json:"delta"`
}

// Status is served at /v1/status.
type Status struct {
	StartedAt          time.Time `json:"started_at"`
	LastRefreshAt      time.Time `json:"last_refresh_at"`
	RefreshIntervalSec int       `json:"refresh_interval_sec"`
	RefreshCount       int64     `json:"refresh_count"`
	ProjectsDir        string    `json:"projects_dir"`
	Summary            Snapshot  `json:"summary"`
	LastError          string    `json:"last_error,omitempty"`
	EventCount         int       `json:"event_count"`
	SubscriberCount    int       `json:"subscriber_count"`
}

// Service provides the daemon runtime and HTTP API. Each tick re-scans the
// transcript directory and upserts changed sessions. The orchestrator is
// never run from here; posting stays an explicit `cclock sync`.
type Service struct {
	cfg Config

	mu          sync.RWMutex
	startedAt   time.Time
	lastRefresh time.Time
	refreshes   int64
	lastError   string
	hasSnapshot bool
	snapshot    Snapshot
	nextEventID int64
	events      []Event

	nextSubID int
	subs      map[int]chan Event
}

// New returns a new daemon service with the provided config.
func New(cfg Config) *Service {
	if cfg.Interval < 10*time.Second {
		cfg.Interval = 5 * time.Minute
	}
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:7823"
	}

	return &Service{
		cfg:       cfg,
		startedAt: time.Now(),
		subs:      make(map[int]chan Event),
	}
}

// Run starts HTTP endpoints and the refresh loop until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/v1/status", s.handleStatus)
	mux.HandleFunc("/v1/events", s.handleEvents)
	mux.HandleFunc("/v1/stream", s.handleStream)

	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Seed initial snapshot so status is useful immediately.
	s.refreshOnce()

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		case <-ticker.C:
			s.refreshOnce()
		case err := <-errCh:
			return fmt.Errorf("daemon http server: %w", err)
		}
	}
}

func (s *Service) refreshOnce() {
	snap, err := s.buildSnapshot()
	now := time.Now()
	if err != nil {
		s.mu.Lock()
		s.lastError = err.Error()
		s.lastRefresh = now
		s.refreshes++
		s.mu.Unlock()
		log.Printf("cclock daemon refresh error: %v", err)
		return
	}

	var (
		ev      Event
		publish bool
	)

	s.mu.Lock()
	prev := s.snapshot
	prevExists := s.hasSnapshot

	s.hasSnapshot = true
	s.snapshot = snap
	s.lastRefresh = now
	s.refreshes++
	s.lastError = ""

	if !prevExists {
		s.nextEventID++
		ev = Event{
			ID:        s.nextEventID,
			Type:      "snapshot",
			Timestamp: now,
			Snapshot:  snap,
			Delta:     Delta{},
		}
		publish = true
	} else {
		delta := diffSnapshots(prev, snap)
		if !delta.isZero() {
			s.nextEventID++
			ev = Event{
				ID:        s.nextEventID,
				Type:      "activity_delta",
				Timestamp: now,
				Snapshot:  snap,
				Delta:     delta,
			}
			publish = true
		}
	}
	s.mu.Unlock()

	if publish {
		s.publishEvent(ev)
	}
}

// buildSnapshot runs one refresh pass and reads the resulting ledger state.
// The store is opened per tick so the daemon never holds the single-writer
// handle between refreshes.
func (s *Service) buildSnapshot() (Snapshot, error) {
	store, err := ledger.Open(s.cfg.LedgerPath)
	if err != nil {
		return Snapshot{}, err
	}
	defer func() { _ = store.Close() }()

	if _, err := pipeline.Refresh(store, pipeline.RefreshOptions{
		ProjectsDir:   config.ClaudeProjectsDir(s.cfg.Config),
		IdleThreshold: config.IdleThreshold(s.cfg.Config),
		ManifestPath:  s.cfg.ManifestPath,
	}); err != nil {
		return Snapshot{}, err
	}

	sessions, err := store.LoadAllSessions()
	if err != nil {
		return Snapshot{}, err
	}
	syncedDays, err := store.SyncedDays(s.cfg.Config.Clockify.WorkspaceID)
	if err != nil {
		return Snapshot{}, err
	}

	stats := pipeline.Summarize(sessions)

	now := time.Now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)
	today := pipeline.FilterByTime(sessions, dayStart, dayStart.Add(24*time.Hour))

	var todaySecs int64
	for _, sess := range today {
		todaySecs += int64(sess.Duration / time.Second)
	}

	return Snapshot{
		At:              now,
		Sessions:        stats.TotalSessions,
		ActiveDays:      stats.ActiveDays,
		TotalActiveSecs: stats.TotalActiveSecs,
		TodayActiveSecs: todaySecs,
		TodaySessions:   len(today),
		Tokens:          stats.Tokens.Total(),
		SyncedDays:      len(syncedDays),
	}, nil
}

func diffSnapshots(prev, curr Snapshot) Delta {
	return Delta{
		Sessions:        curr.Sessions - prev.Sessions,
		TodayActiveSecs: curr.TodayActiveSecs - prev.TodayActiveSecs,
		Tokens:          curr.Tokens - prev.Tokens,
		SyncedDays:      curr.SyncedDays - prev.SyncedDays,
	}
}

func (s *Service) publishEvent(ev Event) {
	s.mu.Lock()
	s.events = append(s.events, ev)
	if len(s.events) > s.cfg.EventsBuffer {
		s.events = s.events[len(s.events)-s.cfg.EventsBuffer:]
	}

	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	s.mu.Unlock()
}

func (s *Service) snapshotStatus() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Status{
		StartedAt:          s.startedAt,
		LastRefreshAt:      s.lastRefresh,
		RefreshIntervalSec: int(s.cfg.Interval.Seconds()),
		RefreshCount:       s.refreshes,
		ProjectsDir:        config.ClaudeProjectsDir(s.cfg.Config),
		Summary:            s.snapshot,
		LastError:          s.lastError,
		EventCount:         len(s.events),
		SubscriberCount:    len(s.subs),
	}
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Service) handleStatus(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.snapshotStatus())
}

func (s *Service) handleEvents(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	events := make([]Event, len(s.events))
	copy(events, s.events)
	s.mu.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(events)
}

func (s *Service) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := make(chan Event, 16)
	id := s.addSubscriber(ch)
	defer s.removeSubscriber(id)

	// Send current snapshot immediately.
	current := Event{
		Type:      "snapshot",
		Timestamp: time.Now(),
		Snapshot:  s.snapshotStatus().Summary,
	}
	writeSSE(w, current)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-ch:
			writeSSE(w, ev)
			flusher.Flush()
		}
	}
}

func writeSSE(w http.ResponseWriter, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	_, _ = fmt.Fprintf(w, "event: %s\n", ev.Type)
	_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
}

func (s *Service) addSubscriber(ch chan Event) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSubID++
	id := s.nextSubID
	s.subs[id] = ch
	return id
}

func (s *Service) removeSubscriber(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
}
