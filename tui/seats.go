package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
	"ktx-reserve-cli/booking"
	"ktx-reserve-cli/format"
	"ktx-reserve-cli/model"
	"ktx-reserve-cli/seating"
	"ktx-reserve-cli/service"
)

const seatCellWidth = 4

// seatGrid is the seat screen: the grouped snapshot, the single selection and a cursor
// over the current page.
type seatGrid struct {
	layout    seating.Layout
	selection seating.Selection
	page      int
	row       int
	col       int
}

// newSeatGrid lays out a fresh snapshot and reopens the page holding previous. A previous
// seat that vanished or was reserved meanwhile is not carried over.
func newSeatGrid(seats []model.Seat, previous string) seatGrid {
	g := seatGrid{layout: seating.Group(seats)}
	if row, index, ok := g.layout.Locate(previous); ok {
		seat := g.layout.Row(row)[index]
		g.selection.Select(seat)
		g.page = g.layout.InitialPage(previous)
		g.row = row
		g.col = index % seating.PageSize
	}
	g.clamp()
	return g
}

func (g seatGrid) pageRow(row int) []model.Seat {
	return g.layout.Page(row, g.page)
}

func (g seatGrid) focused() (model.Seat, bool) {
	seats := g.pageRow(g.row)
	if g.col < 0 || g.col >= len(seats) {
		return model.Seat{}, false
	}
	return seats[g.col], true
}

func (g *seatGrid) move(dRow, dCol int) {
	g.row = min(max(g.row+dRow, 0), len(seating.Rows)-1)
	g.col = max(g.col+dCol, 0)
	g.clamp()
}

// setPage reports false when p is outside the layout, which is how the page controls stay
// disabled at the bounds.
func (g *seatGrid) setPage(p int) bool {
	if p < 0 || p >= g.layout.TotalPages() {
		return false
	}
	g.page = p
	g.clamp()
	return true
}

// reset empties the grid after a failed load, dropping any chosen seat.
func (g *seatGrid) reset() {
	g.layout = seating.Layout{}
	g.selection.Clear()
	g.page, g.row, g.col = 0, 0, 0
}

func (g *seatGrid) clamp() {
	if n := len(g.pageRow(g.row)); g.col >= n {
		g.col = max(n-1, 0)
	}
}

func (m appModel) openSeats() (appModel, tea.Cmd) {
	m.notice = ""
	var cmd tea.Cmd
	var ok bool
	m, cmd, ok = m.requireLogin(stateLoadingSeats)
	if !ok {
		return m, cmd
	}
	m.state = stateLoadingSeats
	return m, tea.Batch(m.fetchSeatsCmd(m.train.Id), m.spinner.Tick)
}

func (m appModel) fetchSeatsCmd(trainID int64) tea.Cmd {
	api := m.api()
	return func() tea.Msg {
		ctx := context.Background()
		seats, err := api.ListSeats(ctx, trainID)
		return seatsMsg{trainID: trainID, seats: seats, err: err}
	}
}

func (m appModel) handleSeats(msg seatsMsg) (tea.Model, tea.Cmd) {
	if m.state != stateLoadingSeats || msg.trainID != m.train.Id {
		return m, nil
	}
	m.state = stateSelectSeat
	if msg.err != nil {
		m.logger.Warn("load seats", zap.Int64("train_id", msg.trainID), zap.Error(msg.err))
		m.seats.reset()
		m.flow.Choose("")
		m.notice = service.Message(msg.err, "Failed to load seats.")
		m.syncPager()
		return m, nil
	}

	m.seats = newSeatGrid(msg.seats, m.flow.SeatNumber)
	for _, seat := range m.seats.layout.Dropped() {
		m.logger.Debug("seat without row letter left out of layout",
			zap.Int64("train_id", msg.trainID),
			zap.Int64("seat_id", seat.Id),
			zap.String("seat_number", seat.SeatNumber))
	}
	m.flow.Choose(m.seats.selection.SeatNumber())
	m.syncPager()
	return m, nil
}

func (m *appModel) syncPager() {
	m.pager.SetTotalPages(max(m.seats.layout.TotalPages(), 1))
	m.pager.Page = m.seats.page
}

func (m appModel) handleSeatKey(msg tea.KeyMsg) (appModel, tea.Cmd, bool) {
	switch msg.String() {
	case "up", "k":
		m.seats.move(-1, 0)
	case "down", "j":
		m.seats.move(1, 0)
	case "left", "h":
		m.seats.move(0, -1)
	case "right", "l":
		m.seats.move(0, 1)
	case "enter", " ":
		m.selectFocusedSeat()
	case "[", "pgup":
		if m.seats.setPage(m.seats.page - 1) {
			m.syncPager()
		}
	case "]", "pgdown":
		if m.seats.setPage(m.seats.page + 1) {
			m.syncPager()
		}
	case "tab", "c":
		return m.proceedToConfirm()
	default:
		return m, nil, false
	}
	return m, nil, true
}

func (m *appModel) selectFocusedSeat() {
	seat, ok := m.seats.focused()
	if !ok {
		return
	}
	if !m.seats.selection.Select(seat) {
		m.notice = fmt.Sprintf("Seat %s is already reserved.", seat.SeatNumber)
		return
	}
	m.notice = ""
	m.flow.Choose(seat.SeatNumber)
}

func (m appModel) proceedToConfirm() (appModel, tea.Cmd, bool) {
	m.flow.Choose(m.seats.selection.SeatNumber())
	if err := m.flow.Proceed(); err != nil {
		if errors.Is(err, booking.ErrSeatRequired) {
			m.notice = "Select a seat first."
		}
		return m, nil, true
	}
	m.notice = ""
	m.state = stateLoadingConfirm
	return m, tea.Batch(m.fetchConfirmTrainCmd(m.flow.TrainID), m.spinner.Tick), true
}

func (m appModel) seatsView() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("Seats • %s", strings.TrimSpace(m.train.Name))))
	b.WriteString("\n")
	b.WriteString(hint(fmt.Sprintf("%s → %s • %s • %s",
		strings.TrimSpace(m.train.DepartureStation),
		strings.TrimSpace(m.train.ArrivalStation),
		format.Clock(m.train.DepartureTime),
		format.Price(m.train.Price))))
	b.WriteString("\n\n")

	if m.seats.layout.Len() == 0 {
		b.WriteString("No seats to show for this train.")
		return b.String()
	}

	b.WriteString(m.renderSeatGrid())
	b.WriteString("\n")
	if controls := m.pageControls(); controls != "" {
		b.WriteString(controls)
		b.WriteString("\n")
	}

	selected := "none"
	if !m.seats.selection.Empty() {
		selected = m.seats.selection.SeatNumber()
	}
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("Selected: %s  ", selected))
	b.WriteString(action("tab continue", !m.seats.selection.Empty()))
	b.WriteString("\n\n")
	b.WriteString(hint("Legend: ") +
		cellStyle(seating.CellState{Status: seating.StatusAvailable}).Render("available") + " • " +
		cellStyle(seating.CellState{Status: seating.StatusSelected}).Render("selected") + " • " +
		cellStyle(seating.CellState{Status: seating.StatusReserved}).Render("reserved"))
	return b.String()
}

// renderSeatGrid draws rows A and B, the aisle, then rows C and D for the current page.
func (m appModel) renderSeatGrid() string {
	widest := 0
	for i := range seating.Rows {
		widest = max(widest, len(m.seats.pageRow(i)))
	}
	gridWidth := widest*(seatCellWidth+1) - 1

	var b strings.Builder
	for i, label := range seating.Rows {
		b.WriteString(fmt.Sprintf("%s ", label))
		for j, seat := range m.seats.pageRow(i) {
			focused := i == m.seats.row && j == m.seats.col
			state := m.seats.selection.Cell(seat, focused)
			b.WriteString(cellStyle(state).Render(padCell(seat.SeatNumber, seatCellWidth)))
			b.WriteString(" ")
		}
		b.WriteString("\n")
		if i == seating.AisleAfter {
			b.WriteString("  ")
			b.WriteString(hint(padCell("aisle", max(gridWidth, 5))))
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (m appModel) pageControls() string {
	total := m.seats.layout.TotalPages()
	if total <= 1 {
		return ""
	}
	prev := action("[ prev", m.seats.page > 0)
	next := action("next ]", m.seats.page < total-1)
	return prev + "  " + m.pager.View() + "  " + next
}

func padCell(text string, width int) string {
	if width <= 0 {
		return ""
	}
	if text == "" {
		return strings.Repeat(" ", width)
	}
	runes := []rune(text)
	if len(runes) >= width {
		return string(runes[:width])
	}
	padding := width - len(runes)
	left := padding / 2
	right := padding - left
	return strings.Repeat(" ", left) + text + strings.Repeat(" ", right)
}
