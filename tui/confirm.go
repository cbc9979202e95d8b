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
	"ktx-reserve-cli/service"
	"ktx-reserve-cli/store"
)

func (m appModel) fetchConfirmTrainCmd(trainID int64) tea.Cmd {
	api := m.api()
	return func() tea.Msg {
		ctx := context.Background()
		train, err := api.GetTrain(ctx, trainID)
		return confirmTrainMsg{train: train, err: err}
	}
}

func (m appModel) handleConfirmTrain(msg confirmTrainMsg) (tea.Model, tea.Cmd) {
	if m.state != stateLoadingConfirm {
		return m, nil
	}
	if msg.err != nil {
		_ = m.flow.Back()
		m.logger.Warn("load train details", zap.Int64("train_id", m.flow.TrainID), zap.Error(msg.err))
		if next, cmd, ok := m.redirectOnLogin(msg.err, stateLoadingSeats); ok {
			return next, cmd
		}
		fallback := "Failed to load train details."
		if errors.Is(msg.err, service.ErrTrainNotFound) {
			fallback = "Train not found."
		}
		return m, errCmd(errors.New(service.Message(msg.err, fallback)), stateSelectSeat)
	}
	m.train = msg.train
	m.state = stateConfirm
	return m, nil
}

func (m appModel) handleConfirmKey(msg tea.KeyMsg) (appModel, tea.Cmd, bool) {
	switch msg.String() {
	case "enter", "y":
		return m.submitReservation()
	}
	return m, nil, false
}

func (m appModel) submitReservation() (appModel, tea.Cmd, bool) {
	if err := m.flow.Begin(); err != nil {
		if errors.Is(err, booking.ErrSeatRequired) {
			m.notice = "Select a seat first."
		}
		return m, nil, true
	}
	m.notice = ""
	return m, tea.Batch(m.createReservationCmd(m.flow.TrainID, m.flow.SeatNumber), m.spinner.Tick), true
}

func (m appModel) createReservationCmd(trainID int64, seatNumber string) tea.Cmd {
	api := m.api()
	train := m.train
	logger := m.logger
	return func() tea.Msg {
		ctx := context.Background()
		reservation, err := booking.Submit(ctx, api, trainID, seatNumber)
		if err == nil {
			if err := store.RememberTrain(train); err != nil {
				logger.Warn("remember train", zap.Error(err))
			}
		}
		return reservationCreatedMsg{reservation: reservation, err: err}
	}
}

func (m appModel) handleReservationCreated(msg reservationCreatedMsg) (tea.Model, tea.Cmd) {
	if !m.flow.Submitting() {
		return m, nil
	}
	m.flow.Complete(msg.err)
	if msg.err != nil {
		m.logger.Warn("create reservation",
			zap.Int64("train_id", m.flow.TrainID),
			zap.String("seat", m.flow.SeatNumber),
			zap.Error(msg.err))
		if errors.Is(msg.err, service.ErrLoginRequired) {
			_ = m.flow.Back()
			next, cmd, _ := m.redirectOnLogin(msg.err, stateLoadingSeats)
			return next, cmd
		}
		m.notice = service.Message(msg.err, "Reservation failed.")
		return m, nil
	}

	m.logger.Info("reservation created",
		zap.Int64("reservation_id", msg.reservation.ReservationId),
		zap.Int64("train_id", m.flow.TrainID),
		zap.String("seat", m.flow.SeatNumber))
	m.flow = booking.Flow{}
	m.trains = nil
	m.flash = "Reservation complete."
	m.state = stateLoadingReservations
	return m, tea.Batch(m.fetchReservationsCmd(), m.spinner.Tick)
}

// backToSeats returns to a freshly loaded seat screen that reopens the chosen seat's page.
func (m appModel) backToSeats() (appModel, tea.Cmd) {
	_ = m.flow.Back()
	return m.openSeats()
}

func (m appModel) confirmView() string {
	train := m.train
	rows := []string{
		titleStyle.Render("Confirm reservation"),
		"",
		labelStyle.Render("Train") + strings.TrimSpace(train.Name),
		labelStyle.Render("Route") + fmt.Sprintf("%s → %s", strings.TrimSpace(train.DepartureStation), strings.TrimSpace(train.ArrivalStation)),
		labelStyle.Render("Departs") + format.DateTime(train.DepartureTime),
		labelStyle.Render("Arrives") + format.DateTime(train.ArrivalTime),
		labelStyle.Render("Duration") + format.Duration(train.DepartureTime, train.ArrivalTime),
		labelStyle.Render("Seat") + m.flow.SeatNumber,
		labelStyle.Render("Fare") + priceStyle.Render(format.Price(train.Price)),
		"",
	}
	if m.flow.Submitting() {
		rows = append(rows, action("enter reserve", false)+"  "+m.spinner.View()+" Reserving...")
	} else {
		rows = append(rows, action("enter reserve", true)+"  "+hint("esc change seat"))
	}
	return panelStyle.Render(strings.Join(rows, "\n"))
}
