package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/whhaicheng/racesim/internal/domain/race"
	"github.com/whhaicheng/racesim/internal/domain/racer"
)

// racerActor owns one racer's state. Its inbox is drained by a single
// goroutine, so the state needs no lock.
type racerActor struct {
	id     race.RacerID
	index  int
	inbox  chan any
	state  *racer.State
	rnd    *rand.Rand
	logger *slog.Logger
	done   chan struct{}
}

func newRacerActor(index int, seed int64, inboxSize int, logger *slog.Logger) *racerActor {
	id := race.NewRacerID()
	return &racerActor{
		id:     id,
		index:  index,
		inbox:  make(chan any, inboxSize),
		state:  racer.New(),
		rnd:    rand.New(rand.NewSource(seed)),
		logger: logger.With("racer_id", id, "racer_index", index),
		done:   make(chan struct{}),
	}
}

// tell queues msg without blocking and reports whether it was accepted.
func (a *racerActor) tell(msg any) bool {
	select {
	case a.inbox <- msg:
		return true
	default:
		return false
	}
}

// run processes messages until ctx is cancelled.
func (a *racerActor) run(ctx context.Context) {
	defer close(a.done)

	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-a.inbox:
			a.receive(msg)
		}
	}
}

func (a *racerActor) receive(msg any) {
	switch m := msg.(type) {
	case race.StartRace:
		if err := a.state.Start(float64(m.RaceLength), m.Policy, a.rnd); err != nil {
			a.logger.Warn("Racer: start ignored", "error", err)
			return
		}
		a.logger.Debug("Racer: started",
			"race_length", m.RaceLength,
			"adjustment_factor", a.state.SpeedAdjustmentFactor,
			"speed", a.state.CurrentSpeed)

	case race.RequestPosition:
		before := a.state.Phase
		res := a.state.Advance(a.rnd)
		if before == racer.PhaseRunning {
			a.logger.Debug("Racer: slice",
				"factor", res.Factor,
				"speed", res.Speed,
				"position", res.Position)
			if res.Phase == racer.PhaseCompleted {
				a.logger.Info("Racer: finished", "slices", a.state.Slices)
			}
		}

		report := race.PositionReport{From: a.id, Position: a.state.ReportedPosition()}
		if m.ReplyTo == nil {
			return
		}
		if !m.ReplyTo.Tell(report) {
			a.logger.Warn("Racer: position report dropped", "position", report.Position)
		}

	default:
		a.logger.Warn("Racer: unknown message", "type", fmt.Sprintf("%T", msg))
	}
}
