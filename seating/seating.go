// Package seating groups a train's seat snapshot into the four lettered rows
// shown on screen, pages them and tracks the single selected seat.
package seating

import (
	"errors"
	"sort"
	"strconv"
	"strings"

	"ktx-reserve-cli/model"
)

// PageSize is the number of seats shown per row on one page.
const PageSize = 20

// Rows lists the row letters in display order. The aisle sits between B and C.
var Rows = [4]string{"A", "B", "C", "D"}

// AisleAfter is the index in Rows after which the aisle is drawn.
const AisleAfter = 1

// ErrNoRow is returned by ParseSeatNumber when a seat number has no row letter in A–D.
var ErrNoRow = errors.New("seat number has no row letter")

// Position is a parsed seat number.
type Position struct {
	Row    int // index into Rows
	Number int
}

// ParseSeatNumber extracts the row letter and number from seat numbers such as "12A" or "a12".
// The first A–D letter anywhere in s picks the row, case-insensitively; the first run of
// digits is the number, and a missing or unparseable run reads as 0.
func ParseSeatNumber(s string) (Position, error) {
	row := -1
scan:
	for _, r := range s {
		switch r {
		case 'A', 'a':
			row = 0
		case 'B', 'b':
			row = 1
		case 'C', 'c':
			row = 2
		case 'D', 'd':
			row = 3
		default:
			continue
		}
		break scan
	}
	if row < 0 {
		return Position{}, ErrNoRow
	}
	return Position{Row: row, Number: seatIndex(s)}, nil
}

func seatIndex(s string) int {
	start := strings.IndexFunc(s, isDigit)
	if start < 0 {
		return 0
	}
	end := start
	for end < len(s) && isDigit(rune(s[end])) {
		end++
	}
	n, err := strconv.Atoi(s[start:end])
	if err != nil {
		return 0
	}
	return n
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

// Layout is the seat snapshot partitioned into rows A–D, each sorted by seat number.
type Layout struct {
	rows    [4][]model.Seat
	dropped []model.Seat
}

// Group partitions seats into rows. Seats whose number has no row letter are left out of
// every row and reported by Dropped. Seats with equal numbers keep their server order.
func Group(seats []model.Seat) Layout {
	var layout Layout
	for _, seat := range seats {
		pos, err := ParseSeatNumber(seat.SeatNumber)
		if err != nil {
			layout.dropped = append(layout.dropped, seat)
			continue
		}
		layout.rows[pos.Row] = append(layout.rows[pos.Row], seat)
	}
	for i := range layout.rows {
		row := layout.rows[i]
		sort.SliceStable(row, func(a, b int) bool {
			return seatIndex(row[a].SeatNumber) < seatIndex(row[b].SeatNumber)
		})
	}
	return layout
}

// Row returns every seat of row index i in order.
func (l Layout) Row(i int) []model.Seat {
	if i < 0 || i >= len(l.rows) {
		return nil
	}
	return l.rows[i]
}

// Dropped returns the seats that could not be placed in a row.
func (l Layout) Dropped() []model.Seat {
	return l.dropped
}

// Len returns the number of seats placed in rows.
func (l Layout) Len() int {
	total := 0
	for _, row := range l.rows {
		total += len(row)
	}
	return total
}

// TotalPages is ceil(longest row / PageSize), or 0 when every row is empty.
func (l Layout) TotalPages() int {
	longest := 0
	for _, row := range l.rows {
		longest = max(longest, len(row))
	}
	return (longest + PageSize - 1) / PageSize
}

// Page returns the window of row i shown on page p.
func (l Layout) Page(i int, p int) []model.Seat {
	row := l.Row(i)
	start := p * PageSize
	if p < 0 || start >= len(row) {
		return nil
	}
	end := min(start+PageSize, len(row))
	return row[start:end]
}

// Locate finds a seat by its exact seat number and returns its row and row-relative index.
func (l Layout) Locate(seatNumber string) (row int, index int, ok bool) {
	if seatNumber == "" {
		return 0, 0, false
	}
	pos, err := ParseSeatNumber(seatNumber)
	if err != nil {
		return 0, 0, false
	}
	for i, seat := range l.rows[pos.Row] {
		if seat.SeatNumber == seatNumber {
			return pos.Row, i, true
		}
	}
	return 0, 0, false
}

// InitialPage is the page holding a previously chosen seat, or 0 when it is not in the layout.
func (l Layout) InitialPage(previous string) int {
	_, index, ok := l.Locate(previous)
	if !ok {
		return 0
	}
	return index / PageSize
}
