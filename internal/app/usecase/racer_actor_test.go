package usecase

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whhaicheng/racesim/internal/domain/race"
	"github.com/whhaicheng/racesim/internal/domain/racer"
)

// chanMailbox collects reports on a buffered channel.
type chanMailbox chan race.PositionReport

func (c chanMailbox) Tell(r race.PositionReport) bool {
	select {
	case c <- r:
		return true
	default:
		return false
	}
}

func startActor(t *testing.T, seed int64) *racerActor {
	t.Helper()
	a := newRacerActor(0, seed, 8, slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx, cancel := context.WithCancel(context.Background())
	go a.run(ctx)
	t.Cleanup(func() {
		cancel()
		<-a.done
	})
	return a
}

func receiveReport(t *testing.T, box chanMailbox) race.PositionReport {
	t.Helper()
	select {
	case r := <-box:
		return r
	case <-time.After(eventually):
		t.Fatal("no position report")
		return race.PositionReport{}
	}
}

func TestRacerActor_ReportsBeforeStart(t *testing.T) {
	a := startActor(t, 1)
	box := make(chanMailbox, 1)

	require.True(t, a.tell(race.RequestPosition{ReplyTo: box}))
	r := receiveReport(t, box)
	assert.Equal(t, a.id, r.From)
	assert.Equal(t, 0, r.Position)
}

func TestRacerActor_RunsToCompletion(t *testing.T) {
	a := startActor(t, 2)
	box := make(chanMailbox, 1)

	require.True(t, a.tell(race.StartRace{RaceLength: 20, Policy: racer.FactorFixed}))

	last := 0
	for i := 0; i < 100 && last < 20; i++ {
		require.True(t, a.tell(race.RequestPosition{ReplyTo: box}))
		r := receiveReport(t, box)
		assert.GreaterOrEqual(t, r.Position, last)
		last = r.Position
	}
	assert.Equal(t, 20, last)

	// Completed racers keep reporting the finish line.
	require.True(t, a.tell(race.RequestPosition{ReplyTo: box}))
	assert.Equal(t, 20, receiveReport(t, box).Position)
}

func TestRacerActor_IgnoresSecondStartAndUnknownMessages(t *testing.T) {
	a := startActor(t, 3)
	box := make(chanMailbox, 1)

	require.True(t, a.tell(race.StartRace{RaceLength: 3, Policy: racer.FactorPerSlice}))
	require.True(t, a.tell(race.RequestPosition{ReplyTo: box}))
	receiveReport(t, box)

	require.True(t, a.tell(race.StartRace{RaceLength: 1000, Policy: racer.FactorPerSlice}))
	require.True(t, a.tell(struct{}{}))

	// Every slice covers more than one unit, so three slices finish a race of 3.
	var last race.PositionReport
	for i := 0; i < 2; i++ {
		require.True(t, a.tell(race.RequestPosition{ReplyTo: box}))
		last = receiveReport(t, box)
	}
	assert.Equal(t, 3, last.Position)
}

func TestRacerActor_TellNeverBlocks(t *testing.T) {
	a := newRacerActor(0, 4, 1, slog.New(slog.NewTextHandler(io.Discard, nil)))

	assert.True(t, a.tell(race.RequestPosition{}))
	assert.False(t, a.tell(race.RequestPosition{}), "full inbox drops the message")
}
