package seating

import "ktx-reserve-cli/model"

// Selection holds at most one chosen seat.
type Selection struct {
	seatNumber string
}

// NewSelection starts with a seat carried over from an earlier screen, which may be empty.
func NewSelection(seatNumber string) Selection {
	return Selection{seatNumber: seatNumber}
}

// Select replaces the current choice with seat. Reserved seats are refused.
func (s *Selection) Select(seat model.Seat) bool {
	if seat.Reserved {
		return false
	}
	s.seatNumber = seat.SeatNumber
	return true
}

func (s *Selection) Clear() {
	s.seatNumber = ""
}

func (s Selection) SeatNumber() string {
	return s.seatNumber
}

func (s Selection) Empty() bool {
	return s.seatNumber == ""
}

func (s Selection) IsSelected(seat model.Seat) bool {
	return s.seatNumber != "" && s.seatNumber == seat.SeatNumber
}

// Status is what a seat cell shows.
type Status int

const (
	StatusAvailable Status = iota
	StatusSelected
	StatusReserved
)

// CellState is the complete display state of one seat cell.
type CellState struct {
	Status  Status
	Focused bool
}

// Cell derives a seat's display state. Reserved wins over selected so a seat
// taken since it was chosen never shows as chosen.
func (s Selection) Cell(seat model.Seat, focused bool) CellState {
	state := CellState{Status: StatusAvailable, Focused: focused}
	switch {
	case seat.Reserved:
		state.Status = StatusReserved
	case s.IsSelected(seat):
		state.Status = StatusSelected
	}
	return state
}
