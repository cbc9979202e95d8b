// Package booking drives one reservation attempt from seat selection to commit.
package booking

import (
	"context"
	"errors"
	"strings"

	"ktx-reserve-cli/model"
)

var (
	// ErrSeatRequired is returned when a step needs a selected seat and none is set.
	ErrSeatRequired = errors.New("select a seat first")
	// ErrInFlight is returned when a submission is attempted while one is outstanding.
	ErrInFlight = errors.New("reservation request already in flight")
	// ErrWrongState is returned when a transition is not allowed from the current state.
	ErrWrongState = errors.New("booking step not allowed now")
)

type State int

const (
	StateSelecting State = iota
	StateConfirming
	StateSubmitting
	StateBooked
)

func (s State) String() string {
	switch s {
	case StateSelecting:
		return "selecting"
	case StateConfirming:
		return "confirming"
	case StateSubmitting:
		return "submitting"
	case StateBooked:
		return "booked"
	default:
		return "unknown"
	}
}

// Flow is the state of one booking attempt. A failed submission returns to
// StateConfirming with the failure recorded in Err.
type Flow struct {
	TrainID    int64
	SeatNumber string

	state State
	err   error
}

func NewFlow(trainID int64, seatNumber string) Flow {
	return Flow{TrainID: trainID, SeatNumber: seatNumber}
}

func (f Flow) State() State {
	return f.state
}

// Err is the failure of the last submission, cleared by the next one.
func (f Flow) Err() error {
	return f.err
}

// Submitting reports whether the submit control must stay disabled.
func (f Flow) Submitting() bool {
	return f.state == StateSubmitting
}

// Choose records the seat picked on the selection screen.
func (f *Flow) Choose(seatNumber string) {
	if f.state == StateSelecting {
		f.SeatNumber = seatNumber
	}
}

// Proceed moves from selection to confirmation. It never touches the network.
func (f *Flow) Proceed() error {
	if f.state != StateSelecting {
		return ErrWrongState
	}
	if strings.TrimSpace(f.SeatNumber) == "" {
		return ErrSeatRequired
	}
	f.state = StateConfirming
	f.err = nil
	return nil
}

// Back returns from confirmation to selection, keeping the chosen seat.
func (f *Flow) Back() error {
	if f.state != StateConfirming {
		return ErrWrongState
	}
	f.state = StateSelecting
	f.err = nil
	return nil
}

// Begin marks the submission as in flight.
func (f *Flow) Begin() error {
	switch f.state {
	case StateSubmitting:
		return ErrInFlight
	case StateConfirming:
	default:
		return ErrWrongState
	}
	if strings.TrimSpace(f.SeatNumber) == "" {
		return ErrSeatRequired
	}
	f.state = StateSubmitting
	f.err = nil
	return nil
}

// Complete records the outcome of the in-flight submission.
func (f *Flow) Complete(err error) {
	if f.state != StateSubmitting {
		return
	}
	if err != nil {
		f.state = StateConfirming
		f.err = err
		return
	}
	f.state = StateBooked
}

// Creator issues create-reservation requests for an authenticated user.
type Creator interface {
	CreateReservation(ctx context.Context, req model.ReservationRequest) (model.Reservation, error)
}

// Canceller issues cancel-reservation requests for an authenticated user.
type Canceller interface {
	CancelReservation(ctx context.Context, reservationID int64) error
}

// Submit sends the create-reservation request. An empty seat is rejected before any request.
func Submit(ctx context.Context, creator Creator, trainID int64, seatNumber string) (model.Reservation, error) {
	seatNumber = strings.TrimSpace(seatNumber)
	if seatNumber == "" {
		return model.Reservation{}, ErrSeatRequired
	}
	if trainID <= 0 {
		return model.Reservation{}, errors.New("train id is required")
	}
	return creator.CreateReservation(ctx, model.ReservationRequest{TrainId: trainID, SeatNumber: seatNumber})
}

// Cancel sends the cancel-reservation request. Callers re-fetch the list on success and leave
// it untouched on failure.
func Cancel(ctx context.Context, canceller Canceller, reservationID int64) error {
	if reservationID <= 0 {
		return errors.New("reservation id is required")
	}
	return canceller.CancelReservation(ctx, reservationID)
}
