// Package usecase provides race orchestration and preset management.
package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/whhaicheng/racesim/internal/domain/race"
	"github.com/whhaicheng/racesim/internal/infra/random"
)

var (
	// ErrControllerClosed is returned when the controller has been shut down.
	ErrControllerClosed = errors.New("race controller closed")

	// ErrNotStarted is returned when an operation needs a race and none was started.
	ErrNotStarted = errors.New("race not started")
)

const (
	defaultInboxSize = 64
	tracerName       = "github.com/whhaicheng/racesim/internal/app/usecase"
)

// Renderer receives one read-only frame per tick. It has no feedback into
// the simulation; a failing renderer is logged and otherwise ignored.
type Renderer interface {
	Render(ctx context.Context, frame race.Frame) error
}

// RendererFunc adapts a function to the Renderer interface.
type RendererFunc func(ctx context.Context, frame race.Frame) error

// Render calls f.
func (f RendererFunc) Render(ctx context.Context, frame race.Frame) error {
	return f(ctx, frame)
}

// SeedSource supplies one seed per racer.
type SeedSource func() (int64, error)

// Option configures a RaceUseCase.
type Option func(*RaceUseCase)

// WithTickerFactory replaces the wall-clock ticker.
func WithTickerFactory(f TickerFactory) Option {
	return func(uc *RaceUseCase) { uc.tickers = f }
}

// WithClock replaces time.Now for elapsed-time reporting.
func WithClock(now func() time.Time) Option {
	return func(uc *RaceUseCase) { uc.now = now }
}

// WithSeedSource replaces the crypto-backed racer seeds.
func WithSeedSource(s SeedSource) Option {
	return func(uc *RaceUseCase) { uc.seeds = s }
}

// WithInboxSize sets the capacity of the controller and racer inboxes.
func WithInboxSize(n int) Option {
	return func(uc *RaceUseCase) {
		if n > 0 {
			uc.inboxSize = n
		}
	}
}

// WithTracer sets the tracer used for race spans.
func WithTracer(t trace.Tracer) Option {
	return func(uc *RaceUseCase) {
		if t != nil {
			uc.tracer = t
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(uc *RaceUseCase) {
		if l != nil {
			uc.logger = l
		}
	}
}

// RaceUseCase is the race controller. It owns the racers, the timer and the
// snapshot of last reported positions. All of that state lives in a single
// goroutine fed by a bounded inbox; public methods only exchange messages
// with it.
type RaceUseCase struct {
	renderer  Renderer
	tickers   TickerFactory
	now       func() time.Time
	seeds     SeedSource
	inboxSize int
	logger    *slog.Logger
	tracer    trace.Tracer

	inbox     chan any
	quit      chan struct{}
	closed    chan struct{}
	closeOnce sync.Once

	// owned by the loop goroutine
	current *raceRun
}

// raceRun is the state of one started race.
type raceRun struct {
	id        race.RaceID
	params    race.Parameters
	racers    []*racerActor
	index     map[race.RacerID]int
	positions map[race.RacerID]int
	standings []race.Standing
	startTime time.Time
	tick      uint64
	timer     *timerHandle
	cancel    context.CancelFunc
	finished  chan struct{}
	over      bool
	span      trace.Span
}

// Inbox messages.
type (
	startCommand struct {
		params race.Parameters
		reply  chan startResult
	}
	startResult struct {
		id  race.RaceID
		err error
	}
	stopCommand struct {
		reply chan error
	}
	snapshotQuery struct {
		reply chan snapshotResult
	}
	snapshotResult struct {
		frame race.Frame
		err   error
	}
	finishedQuery struct {
		reply chan (<-chan struct{})
	}
	timerFired struct {
		raceID race.RaceID
	}
	positionUpdate struct {
		raceID race.RaceID
		report race.PositionReport
	}
)

// raceMailbox tags racer replies with the race they belong to, so replies
// arriving after a restart are recognised as stale.
type raceMailbox struct {
	raceID race.RaceID
	uc     *RaceUseCase
}

// Tell implements race.Mailbox. It waits for inbox space and only fails once
// the controller is closed; the controller never waits on a racer, so a
// racer waiting here cannot deadlock it.
func (m raceMailbox) Tell(report race.PositionReport) bool {
	select {
	case m.uc.inbox <- positionUpdate{raceID: m.raceID, report: report}:
		return true
	case <-m.uc.closed:
		return false
	}
}

// NewRaceUseCase creates a controller and starts its message loop.
// Call Close to release it.
func NewRaceUseCase(renderer Renderer, opts ...Option) *RaceUseCase {
	uc := &RaceUseCase{
		renderer:  renderer,
		tickers:   NewRealTicker,
		now:       time.Now,
		seeds:     random.NewSeed,
		inboxSize: defaultInboxSize,
		logger:    slog.Default(),
		tracer:    otel.Tracer(tracerName),
		quit:      make(chan struct{}),
		closed:    make(chan struct{}),
	}

	for _, opt := range opts {
		opt(uc)
	}
	if uc.renderer == nil {
		uc.renderer = RendererFunc(func(context.Context, race.Frame) error { return nil })
	}

	uc.inbox = make(chan any, uc.inboxSize)
	go uc.loop()

	return uc
}

// =============================================================================
// Public API
// =============================================================================

// Start validates params, then spawns the racers, initializes every snapshot
// entry to zero and schedules the polling timer. A race that is already
// running is stopped first, including its timer.
func (uc *RaceUseCase) Start(ctx context.Context, params race.Parameters) (race.RaceID, error) {
	if err := params.Validate(); err != nil {
		return "", err
	}

	reply := make(chan startResult, 1)
	if err := uc.ask(ctx, startCommand{params: params, reply: reply}); err != nil {
		return "", err
	}

	select {
	case res := <-reply:
		return res.id, res.err
	case <-ctx.Done():
		return "", ctx.Err()
	case <-uc.closed:
		return "", ErrControllerClosed
	}
}

// Stop cancels the timer and the racers of the current race.
// Stopping when nothing runs is a no-op.
func (uc *RaceUseCase) Stop(ctx context.Context) error {
	reply := make(chan error, 1)
	if err := uc.ask(ctx, stopCommand{reply: reply}); err != nil {
		return err
	}

	select {
	case err := <-reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-uc.closed:
		return ErrControllerClosed
	}
}

// Snapshot returns the current frame without rendering it.
func (uc *RaceUseCase) Snapshot(ctx context.Context) (race.Frame, error) {
	reply := make(chan snapshotResult, 1)
	if err := uc.ask(ctx, snapshotQuery{reply: reply}); err != nil {
		return race.Frame{}, err
	}

	select {
	case res := <-reply:
		return res.frame, res.err
	case <-ctx.Done():
		return race.Frame{}, ctx.Err()
	case <-uc.closed:
		return race.Frame{}, ErrControllerClosed
	}
}

// Finished returns a channel closed when the current race ends, either
// because every racer completed or because it was stopped.
func (uc *RaceUseCase) Finished(ctx context.Context) (<-chan struct{}, error) {
	reply := make(chan (<-chan struct{}), 1)
	if err := uc.ask(ctx, finishedQuery{reply: reply}); err != nil {
		return nil, err
	}

	select {
	case ch := <-reply:
		if ch == nil {
			return nil, ErrNotStarted
		}
		return ch, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-uc.closed:
		return nil, ErrControllerClosed
	}
}

// Wait blocks until the current race ends or ctx is done.
func (uc *RaceUseCase) Wait(ctx context.Context) error {
	finished, err := uc.Finished(ctx)
	if err != nil {
		return err
	}

	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-uc.closed:
		return ErrControllerClosed
	}
}

// Close stops the current race and the message loop. It is safe to call more than once.
func (uc *RaceUseCase) Close() {
	uc.closeOnce.Do(func() { close(uc.quit) })
	<-uc.closed
}

// =============================================================================
// Message loop
// =============================================================================

// ask delivers a request from an external caller, waiting for inbox space.
func (uc *RaceUseCase) ask(ctx context.Context, msg any) error {
	select {
	case uc.inbox <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-uc.closed:
		return ErrControllerClosed
	}
}

// tellSelf queues an internal event without blocking.
func (uc *RaceUseCase) tellSelf(msg any) bool {
	select {
	case <-uc.closed:
		return false
	default:
	}

	select {
	case uc.inbox <- msg:
		return true
	default:
		return false
	}
}

func (uc *RaceUseCase) loop() {
	defer close(uc.closed)
	defer uc.stopRace("controller closed")

	for {
		select {
		case <-uc.quit:
			return
		case msg := <-uc.inbox:
			uc.receive(msg)
		}
	}
}

func (uc *RaceUseCase) receive(msg any) {
	switch m := msg.(type) {
	case startCommand:
		id, err := uc.onStart(m.params)
		m.reply <- startResult{id: id, err: err}
	case stopCommand:
		uc.stopRace("stopped")
		m.reply <- nil
	case snapshotQuery:
		if uc.current == nil {
			m.reply <- snapshotResult{err: ErrNotStarted}
			return
		}
		m.reply <- snapshotResult{frame: uc.frame()}
	case finishedQuery:
		if uc.current == nil {
			m.reply <- nil
			return
		}
		m.reply <- uc.current.finished
	case timerFired:
		uc.onTimerFired(m.raceID)
	case positionUpdate:
		uc.onPositionUpdate(m.raceID, m.report)
	default:
		uc.logger.Warn("Race: unknown message", "type", fmt.Sprintf("%T", msg))
	}
}

// onStart replaces any current race with a fresh one.
// The current race keeps running if seeding the new one fails.
func (uc *RaceUseCase) onStart(params race.Parameters) (race.RaceID, error) {
	seeds := make([]int64, params.RacerCount)
	for i := range seeds {
		seed, err := uc.seeds()
		if err != nil {
			return "", fmt.Errorf("seed racer %d: %w", i, err)
		}
		seeds[i] = seed
	}

	uc.stopRace("restarted")

	ctx, cancel := context.WithCancel(context.Background())
	run := &raceRun{
		id:        race.NewRaceID(),
		params:    params,
		racers:    make([]*racerActor, 0, params.RacerCount),
		index:     make(map[race.RacerID]int, params.RacerCount),
		positions: make(map[race.RacerID]int, params.RacerCount),
		startTime: uc.now(),
		cancel:    cancel,
		finished:  make(chan struct{}),
	}
	logger := uc.logger.With("race_id", run.id)

	_, run.span = uc.tracer.Start(context.Background(), "race",
		trace.WithAttributes(
			attribute.String("race.id", string(run.id)),
			attribute.Int("race.racers", params.RacerCount),
			attribute.Int("race.length", params.RaceLength),
			attribute.String("race.tick_interval", params.TickInterval.String()),
			attribute.String("race.factor_policy", params.FactorPolicy.String()),
		))

	for i := 0; i < params.RacerCount; i++ {
		a := newRacerActor(i, seeds[i], uc.inboxSize, logger)
		run.racers = append(run.racers, a)
		run.index[a.id] = i
		run.positions[a.id] = 0

		go a.run(ctx)
		a.tell(race.StartRace{RaceLength: params.RaceLength, Policy: params.FactorPolicy})
	}

	raceID := run.id
	run.timer = startTimer(uc.tickers, params.TickInterval, func() {
		if !uc.tellSelf(timerFired{raceID: raceID}) {
			logger.Warn("Race: tick dropped, controller inbox full")
		}
	})
	uc.current = run

	logger.Info("Race: started",
		"racers", params.RacerCount,
		"race_length", params.RaceLength,
		"tick_interval", params.TickInterval,
		"factor_policy", params.FactorPolicy,
		"stop_when_finished", params.StopWhenFinished)

	return run.id, nil
}

// onTimerFired polls every racer and renders the snapshot as it stands.
// Replies to this round land later and show up in the next frame.
func (uc *RaceUseCase) onTimerFired(raceID race.RaceID) {
	run := uc.current
	if run == nil || run.id != raceID || run.over {
		return
	}
	run.tick++

	if run.params.StopWhenFinished && uc.allFinished() {
		uc.render(uc.finalFrame())
		uc.finishRace("all racers finished")
		return
	}

	mailbox := raceMailbox{raceID: run.id, uc: uc}
	for _, a := range run.racers {
		if !a.tell(race.RequestPosition{ReplyTo: mailbox}) {
			uc.logger.Warn("Race: position request dropped", "race_id", run.id, "racer_index", a.index)
		}
	}

	frame := uc.frame()
	run.span.AddEvent("tick", trace.WithAttributes(
		attribute.Int64("race.tick", int64(run.tick)),
		attribute.Int("race.finished_racers", frame.FinishedCount()),
	))
	uc.render(frame)
}

// onPositionUpdate overwrites the racer's snapshot entry. Replies for another
// race or from an unknown racer are ignored.
func (uc *RaceUseCase) onPositionUpdate(raceID race.RaceID, report race.PositionReport) {
	run := uc.current
	if run == nil || run.id != raceID {
		uc.logger.Debug("Race: stale position report ignored", "race_id", raceID, "racer_id", report.From)
		return
	}

	idx, ok := run.index[report.From]
	if !ok {
		uc.logger.Debug("Race: report from unknown racer ignored", "race_id", raceID, "racer_id", report.From)
		return
	}

	run.positions[report.From] = report.Position

	if report.Position >= run.params.RaceLength && !uc.hasStanding(report.From) {
		run.standings = append(run.standings, race.Standing{
			Place:      len(run.standings) + 1,
			Index:      idx,
			RacerID:    report.From,
			FinishTick: run.tick,
		})
		run.span.AddEvent("racer.finished", trace.WithAttributes(
			attribute.Int("racer.index", idx),
			attribute.Int("racer.place", len(run.standings)),
			attribute.Int64("race.tick", int64(run.tick)),
		))
		uc.logger.Info("Race: racer crossed the line",
			"race_id", run.id,
			"racer_index", idx,
			"place", len(run.standings),
			"tick", run.tick)
	}
}

func (uc *RaceUseCase) render(frame race.Frame) {
	if err := uc.renderer.Render(context.Background(), frame); err != nil {
		if uc.current != nil {
			uc.current.span.RecordError(err)
		}
		uc.logger.Warn("Race: render failed", "race_id", frame.RaceID, "tick", frame.Tick, "error", err)
	}
}

// finishRace ends polling but keeps the snapshot readable.
func (uc *RaceUseCase) finishRace(reason string) {
	run := uc.current
	if run == nil || run.over {
		return
	}
	run.over = true
	run.timer.Cancel()
	run.cancel()
	close(run.finished)

	run.span.SetAttributes(
		attribute.String("race.end_reason", reason),
		attribute.Int64("race.ticks", int64(run.tick)),
		attribute.Int("race.finished_racers", len(run.standings)),
		attribute.IntSlice("race.positions", uc.frame().Positions()),
	)
	run.span.End()

	uc.logger.Info("Race: over",
		"race_id", run.id,
		"reason", reason,
		"ticks", run.tick,
		"elapsed", uc.now().Sub(run.startTime).Round(time.Millisecond))
}

// stopRace finishes the current race, if any.
func (uc *RaceUseCase) stopRace(reason string) {
	uc.finishRace(reason)
}

func (uc *RaceUseCase) allFinished() bool {
	run := uc.current
	for _, a := range run.racers {
		if run.positions[a.id] < run.params.RaceLength {
			return false
		}
	}
	return true
}

func (uc *RaceUseCase) hasStanding(id race.RacerID) bool {
	for _, s := range uc.current.standings {
		if s.RacerID == id {
			return true
		}
	}
	return false
}

// frame builds the snapshot in spawn order.
func (uc *RaceUseCase) frame() race.Frame {
	run := uc.current
	elapsed := uc.now().Sub(run.startTime)

	entries := make([]race.Entry, len(run.racers))
	for i, a := range run.racers {
		pos := run.positions[a.id]
		entries[i] = race.Entry{
			Index:    i,
			RacerID:  a.id,
			Position: pos,
			Finished: pos >= run.params.RaceLength,
		}
	}

	standings := make([]race.Standing, len(run.standings))
	copy(standings, run.standings)

	return race.Frame{
		RaceID:         run.id,
		Tick:           run.tick,
		ElapsedSeconds: int(elapsed / time.Second),
		Elapsed:        elapsed,
		RaceLength:     run.params.RaceLength,
		Entries:        entries,
		Standings:      standings,
		Finished:       run.over,
	}
}

func (uc *RaceUseCase) finalFrame() race.Frame {
	f := uc.frame()
	f.Finished = true
	return f
}
