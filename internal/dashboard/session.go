package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/soundseeker/seekerctl/internal/config"
	"github.com/soundseeker/seekerctl/internal/core"
	"github.com/soundseeker/seekerctl/internal/events"
)

const inboxSize = 256

// Options configure a Session.
type Options struct {
	PollInterval   time.Duration
	LogCapacity    int
	ReplayLogs     bool
	StrictOrdering bool
	Errors         ErrorSink
}

// OptionsFromSettings maps the dashboard section of the settings file.
func OptionsFromSettings(s config.DashboardSettings) Options {
	return Options{
		PollInterval:   s.PollInterval,
		LogCapacity:    s.LogCapacity,
		ReplayLogs:     s.ReplayLogs,
		StrictOrdering: s.StrictOrdering,
	}
}

// ConnectionState describes the push channel.
type ConnectionState struct {
	Connected bool
	Transport string
	Err       error // Why the last connection ended
}

// Session is the single actor owning the dashboard components. Push events,
// poll ticks, network completions and operator intents all run on the
// goroutine executing Run, one at a time.
type Session struct {
	svc  core.DownloadService
	opts Options

	Log       *LogBuffer
	Status    *Synchronizer
	Commands  *Dispatcher
	Playlists *Registry
	Library   *Library

	conn    ConnectionState
	connHub Hub[ConnectionState]

	inbox  chan func()
	ctx    context.Context
	cancel context.CancelFunc
}

// NewSession wires the components around svc. Nothing runs until Run.
func NewSession(svc core.DownloadService, opts Options) *Session {
	if opts.PollInterval <= 0 {
		opts.PollInterval = config.DefaultPollInterval
	}
	opts.Errors = opts.Errors.orDefault()

	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		svc:    svc,
		opts:   opts,
		inbox:  make(chan func(), inboxSize),
		ctx:    ctx,
		cancel: cancel,
	}

	runner := actorRunner{s}
	s.Log = NewLogBuffer(opts.LogCapacity)
	s.Status = NewSynchronizer(opts.StrictOrdering)
	s.Commands = NewDispatcher(svc, runner, s.Log, opts.Errors)
	s.Playlists = NewRegistry(svc, runner, s.Log, opts.Errors)
	s.Library = NewLibrary(svc, runner, s.Status, opts.Errors)
	return s
}

// actorRunner performs calls on their own goroutine and posts the
// completion to the session inbox.
type actorRunner struct {
	s *Session
}

func (r actorRunner) Run(call func(ctx context.Context) func()) {
	go func() {
		if done := call(r.s.ctx); done != nil {
			r.s.post(done)
		}
	}()
}

func (s *Session) post(fn func()) {
	select {
	case s.inbox <- fn:
	case <-s.ctx.Done():
	}
}

// Run processes events until ctx is done. It returns an error only if the
// push stream cannot be opened.
func (s *Session) Run(ctx context.Context) error {
	stop := context.AfterFunc(ctx, s.cancel)
	defer stop()
	defer s.cancel()

	if s.opts.ReplayLogs {
		s.replayLogs()
	}

	stream, err := s.svc.StreamEvents(s.ctx)
	if err != nil {
		return fmt.Errorf("open push stream: %w", err)
	}

	s.Playlists.Refresh()
	s.Library.Refresh()

	ticker := time.NewTicker(s.opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return nil
		case fn := <-s.inbox:
			fn()
		case msg, ok := <-stream:
			if !ok {
				stream = nil
				continue
			}
			s.handle(msg)
		case <-ticker.C:
			s.poll()
		}
	}
}

func (s *Session) replayLogs() {
	entries, err := s.svc.Logs(s.ctx)
	if err != nil {
		s.opts.Errors("Error loading log history: %v", err)
		return
	}
	for _, e := range entries {
		s.Log.AppendEntry(e)
	}
}

// handle dispatches one push event to its component.
func (s *Session) handle(msg any) {
	switch m := msg.(type) {
	case events.LogMessageMsg:
		s.Log.AppendEntry(m.LogEntry)
	case events.StatusUpdateMsg:
		s.Status.Apply(m.Status, SourcePush)
	case events.RecentDownloadsMsg:
		s.Library.Refresh()
	case events.StreamConnectedMsg:
		s.setConnection(ConnectionState{Connected: true, Transport: m.Transport})
	case events.StreamDisconnectedMsg:
		s.opts.Errors("Push channel (%s) lost: %v", m.Transport, m.Err)
		s.setConnection(ConnectionState{Transport: m.Transport, Err: m.Err})
	}
}

// poll refreshes the library, but only while no run is active.
func (s *Session) poll() {
	if s.Status.Status().Running {
		return
	}
	s.Library.Refresh()
}

func (s *Session) setConnection(c ConnectionState) {
	s.conn = c
	s.connHub.Notify(c)
}

// Connection returns the push channel state. Call it on the actor.
func (s *Session) Connection() ConnectionState { return s.conn }

func (s *Session) SubscribeConnection(fn func(ConnectionState)) func() {
	return s.connHub.Subscribe(fn)
}

// Do queues fn onto the actor. It is safe to call from any goroutine.
func (s *Session) Do(fn func()) {
	s.post(fn)
}

// Operator intents. Safe to call from any goroutine.

func (s *Session) Start() { s.Do(s.Commands.Start) }

func (s *Session) Pause() { s.Do(s.Commands.Pause) }

func (s *Session) Stop() { s.Do(s.Commands.Stop) }

func (s *Session) AddPlaylist(url string) { s.Do(func() { s.Playlists.Add(url) }) }

func (s *Session) RemovePlaylist(url string) { s.Do(func() { s.Playlists.Remove(url) }) }

func (s *Session) RefreshPlaylists() { s.Do(s.Playlists.Refresh) }

// Close stops the actor and any in-flight calls.
func (s *Session) Close() {
	s.cancel()
}
