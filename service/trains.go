package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"ktx-reserve-cli/model"
)

// ErrTrainNotFound is returned by GetTrain when the listing has no train with the id.
var ErrTrainNotFound = errors.New("train not found")

// ListTrains returns every train currently offered.
func (c *Client) ListTrains(ctx context.Context) ([]model.Train, error) {
	endpoint := fmt.Sprintf("%s/api/v1/trains", c.endpoints.Train)

	var trains []model.Train
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &trains); err != nil {
		return nil, err
	}
	return trains, nil
}

// GetTrain looks a train up in the listing; the train service has no single-train endpoint.
func (c *Client) GetTrain(ctx context.Context, trainID int64) (model.Train, error) {
	if trainID <= 0 {
		return model.Train{}, errors.New("train id is required")
	}
	trains, err := c.ListTrains(ctx)
	if err != nil {
		return model.Train{}, err
	}
	for _, train := range trains {
		if train.Id == trainID {
			return train, nil
		}
	}
	return model.Train{}, ErrTrainNotFound
}

// ListSeats fetches the full seat list for a train in one request, in server order.
func (c *Client) ListSeats(ctx context.Context, trainID int64) ([]model.Seat, error) {
	if trainID <= 0 {
		return nil, errors.New("train id is required")
	}
	query := url.Values{"trainId": {fmt.Sprint(trainID)}}
	endpoint := fmt.Sprintf("%s/api/v1/seats?%s", c.endpoints.Seat, query.Encode())

	var seats []model.Seat
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &seats); err != nil {
		return nil, err
	}
	return seats, nil
}
