package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"ktx-reserve-cli/model"
)

// Backends answer an empty history with one of these messages instead of an empty array.
var noReservationMarkers = []string{
	"no reservations",
	"예매 내역이 없습니다",
}

// CreateReservation books a seat for the session's user.
func (c *Client) CreateReservation(ctx context.Context, req model.ReservationRequest) (model.Reservation, error) {
	if !c.session.LoggedIn() {
		return model.Reservation{}, ErrLoginRequired
	}
	if req.TrainId <= 0 || strings.TrimSpace(req.SeatNumber) == "" {
		return model.Reservation{}, errors.New("train id and seat number are required")
	}
	endpoint := fmt.Sprintf("%s/api/v1/reservations?%s", c.endpoints.Reservation, c.userQuery())

	var reservation model.Reservation
	if err := c.do(ctx, http.MethodPost, endpoint, req, &reservation); err != nil {
		return model.Reservation{}, err
	}
	return reservation, nil
}

// ListReservations returns the session user's reservations. A 404 or a
// "no reservations" message is an empty history, not an error.
func (c *Client) ListReservations(ctx context.Context) ([]model.Reservation, error) {
	if !c.session.LoggedIn() {
		return nil, ErrLoginRequired
	}
	endpoint := fmt.Sprintf("%s/api/v1/reservations?%s", c.endpoints.Reservation, c.userQuery())

	var reservations []model.Reservation
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &reservations); err != nil {
		if IsNotFound(err) || isNoReservations(err) {
			return []model.Reservation{}, nil
		}
		return nil, err
	}
	if reservations == nil {
		reservations = []model.Reservation{}
	}
	return reservations, nil
}

// CancelReservation deletes one reservation.
func (c *Client) CancelReservation(ctx context.Context, reservationID int64) error {
	if !c.session.LoggedIn() {
		return ErrLoginRequired
	}
	if reservationID <= 0 {
		return errors.New("reservation id is required")
	}
	endpoint := fmt.Sprintf("%s/api/v1/reservations/%d", c.endpoints.Reservation, reservationID)
	return c.do(ctx, http.MethodDelete, endpoint, nil, nil)
}

func (c *Client) userQuery() string {
	return url.Values{"userId": {c.session.Token()}}.Encode()
}

func isNoReservations(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	text := strings.ToLower(apiErr.Message)
	if text == "" {
		text = strings.ToLower(apiErr.Body)
	}
	for _, marker := range noReservationMarkers {
		if strings.Contains(text, marker) {
			return true
		}
	}
	return false
}
