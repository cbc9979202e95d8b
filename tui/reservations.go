package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
	"ktx-reserve-cli/booking"
	"ktx-reserve-cli/format"
	"ktx-reserve-cli/model"
	"ktx-reserve-cli/service"
)

type reservationItem struct {
	reservation model.Reservation
}

func (r reservationItem) Title() string {
	return fmt.Sprintf("%s • Seat %s", strings.TrimSpace(r.reservation.TrainName), r.reservation.SeatNumber)
}

func (r reservationItem) Description() string {
	res := r.reservation
	parts := []string{
		fmt.Sprintf("%s → %s", strings.TrimSpace(res.DepartureStation), strings.TrimSpace(res.ArrivalStation)),
	}
	if !res.DepartureTime.IsZero() {
		parts = append(parts, fmt.Sprintf("%s → %s", format.DateTime(res.DepartureTime), format.Clock(res.ArrivalTime)))
	}
	parts = append(parts, format.Price(res.Price))
	if !res.ReservedAt.IsZero() {
		parts = append(parts, "reserved "+format.DateTime(res.ReservedAt))
	}
	return strings.Join(parts, " • ")
}

func (r reservationItem) FilterValue() string {
	return strings.ToLower(strings.Join([]string{
		r.reservation.TrainName,
		r.reservation.SeatNumber,
		r.reservation.DepartureStation,
		r.reservation.ArrivalStation,
	}, " "))
}

func buildReservationItems(reservations []model.Reservation) []list.Item {
	items := make([]list.Item, 0, len(reservations))
	for _, reservation := range reservations {
		items = append(items, reservationItem{reservation: reservation})
	}
	return items
}

func (m appModel) openReservations() (appModel, tea.Cmd) {
	m.notice = ""
	var cmd tea.Cmd
	var ok bool
	m, cmd, ok = m.requireLogin(stateLoadingReservations)
	if !ok {
		return m, cmd
	}
	m.state = stateLoadingReservations
	return m, tea.Batch(m.fetchReservationsCmd(), m.spinner.Tick)
}

func (m appModel) fetchReservationsCmd() tea.Cmd {
	api := m.api()
	return func() tea.Msg {
		ctx := context.Background()
		reservations, err := api.ListReservations(ctx)
		return reservationsMsg{reservations: reservations, err: err}
	}
}

func (m appModel) handleReservations(msg reservationsMsg) (tea.Model, tea.Cmd) {
	if m.state != stateLoadingReservations {
		return m, nil
	}
	if msg.err != nil {
		m.logger.Warn("load reservations", zap.Error(msg.err))
		if next, cmd, ok := m.redirectOnLogin(msg.err, stateLoadingReservations); ok {
			return next, cmd
		}
		return m, errCmd(errors.New(service.Message(msg.err, "Failed to load reservations.")), stateSelectTrain)
	}
	m.reservationList.SetItems(buildReservationItems(msg.reservations))
	m.state = stateReservations
	return m, nil
}

func (m appModel) handleReservationsKey(msg tea.KeyMsg) (appModel, tea.Cmd, bool) {
	switch msg.String() {
	case "x", "d", "delete":
		item, ok := m.reservationList.SelectedItem().(reservationItem)
		if !ok {
			return m, nil, true
		}
		m.notice = ""
		m.cancelFor = item.reservation
		m.state = stateConfirmCancel
		return m, nil, true
	}
	return m, nil, false
}

func (m appModel) handleConfirmCancelKey(msg tea.KeyMsg) (appModel, tea.Cmd, bool) {
	switch msg.String() {
	case "y", "enter":
		m.cancelling = true
		return m, tea.Batch(m.cancelReservationCmd(m.cancelFor.ReservationId), m.spinner.Tick), true
	case "n":
		m.state = stateReservations
		return m, nil, true
	}
	return m, nil, false
}

func (m appModel) cancelReservationCmd(reservationID int64) tea.Cmd {
	api := m.api()
	return func() tea.Msg {
		ctx := context.Background()
		err := booking.Cancel(ctx, api, reservationID)
		return reservationCancelledMsg{reservationID: reservationID, err: err}
	}
}

// handleReservationCancelled re-fetches the list after a cancellation. A failure leaves the
// list exactly as it was.
func (m appModel) handleReservationCancelled(msg reservationCancelledMsg) (tea.Model, tea.Cmd) {
	if !m.cancelling {
		return m, nil
	}
	m.cancelling = false
	if msg.err != nil {
		m.logger.Warn("cancel reservation", zap.Int64("reservation_id", msg.reservationID), zap.Error(msg.err))
		if next, cmd, ok := m.redirectOnLogin(msg.err, stateLoadingReservations); ok {
			return next, cmd
		}
		m.state = stateReservations
		m.notice = service.Message(msg.err, "Failed to cancel the reservation.")
		return m, nil
	}
	m.logger.Info("reservation cancelled", zap.Int64("reservation_id", msg.reservationID))
	m.cancelFor = model.Reservation{}
	m.trains = nil
	m.flash = "Reservation cancelled."
	m.state = stateLoadingReservations
	return m, tea.Batch(m.fetchReservationsCmd(), m.spinner.Tick)
}

func (m appModel) reservationsView() string {
	if len(m.reservationList.Items()) == 0 {
		return "No reservations yet." + "\n\n" + hint("Press ctrl+t to browse trains.")
	}
	return m.reservationList.View()
}

func (m appModel) confirmCancelView() string {
	res := m.cancelFor
	rows := []string{
		titleStyle.Render("Cancel this reservation?"),
		"",
		labelStyle.Render("Train") + strings.TrimSpace(res.TrainName),
		labelStyle.Render("Seat") + res.SeatNumber,
		labelStyle.Render("Route") + fmt.Sprintf("%s → %s", strings.TrimSpace(res.DepartureStation), strings.TrimSpace(res.ArrivalStation)),
		"",
	}
	if m.cancelling {
		rows = append(rows, m.spinner.View()+" Cancelling...")
	} else {
		rows = append(rows, action("y cancel it", true)+"  "+hint("n keep it"))
	}
	return panelStyle.Render(strings.Join(rows, "\n"))
}
