package race

import "github.com/whhaicheng/racesim/internal/domain/racer"

// Messages exchanged between the controller and its racers.
// Every racer and the controller process their inbox one message at a time.

// StartRace is sent once by the controller to every racer it spawns.
type StartRace struct {
	RaceLength int
	Policy     racer.FactorPolicy
}

// RequestPosition asks a racer to advance one time-slice and report back.
type RequestPosition struct {
	ReplyTo Mailbox
}

// PositionReport is the racer's reply to RequestPosition.
type PositionReport struct {
	From     RacerID
	Position int
}

// Mailbox accepts position reports. Tell may wait for inbox space but never
// for the receiver to process the message; it reports whether the message
// was queued.
type Mailbox interface {
	Tell(report PositionReport) bool
}
