package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"ktx-reserve-cli/booking"
	"ktx-reserve-cli/format"
	"ktx-reserve-cli/model"
	"ktx-reserve-cli/seating"
	"ktx-reserve-cli/service"
	"ktx-reserve-cli/store"
)

func newReserveCommand(c *cli) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reserve <trainId> [seat]",
		Short: "Reserve a seat",
		Long: `Reserve a seat on a train. Without a seat argument the open seats are listed
to pick from. The reservation is only sent after confirming, or with --yes.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			trainID, err := parseID(args[0], "train")
			if err != nil {
				return err
			}
			api := c.api()
			if !api.Session().LoggedIn() {
				return failure(service.ErrLoginRequired, "")
			}
			ctx := cmd.Context()

			train, err := api.GetTrain(ctx, trainID)
			if errors.Is(err, service.ErrTrainNotFound) {
				return fmt.Errorf("train %d not found", trainID)
			}
			if err != nil {
				return failure(err, "failed to load train details")
			}

			var seatNumber string
			if len(args) == 2 {
				seatNumber = args[1]
			} else if seatNumber, err = c.chooseSeat(ctx, api, trainID); err != nil {
				return err
			}

			if !yes {
				ok, err := confirm(fmt.Sprintf("Reserve seat %s on %s (%s → %s, %s) for %s",
					seatNumber, train.Name, train.DepartureStation, train.ArrivalStation,
					format.DateTime(train.DepartureTime), format.Price(train.Price)))
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), "Nothing reserved.")
					return nil
				}
			}

			res, err := booking.Submit(ctx, api, trainID, seatNumber)
			if errors.Is(err, booking.ErrSeatRequired) {
				return errors.New("select a seat first")
			}
			if err != nil {
				c.logger.Warn("create reservation", zap.Int64("train_id", trainID), zap.String("seat", seatNumber), zap.Error(err))
				return failure(err, "reservation failed")
			}

			c.logger.Info("reservation created",
				zap.Int64("reservation_id", res.ReservationId),
				zap.Int64("train_id", trainID),
				zap.String("seat", res.SeatNumber))
			if err := store.RememberTrain(train); err != nil {
				c.logger.Warn("remember train", zap.Error(err))
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Reserved seat %s on %s (reservation %d).\n", res.SeatNumber, train.Name, res.ReservationId)
			if res.TrainName == "" {
				res.TrainName = train.Name
				res.DepartureStation = train.DepartureStation
				res.ArrivalStation = train.ArrivalStation
				res.DepartureTime = train.DepartureTime
				res.Price = train.Price
			}
			renderReservations(out, []model.Reservation{res})
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "reserve without asking for confirmation")
	return cmd
}

// chooseSeat lists the open seats in row order for the user to pick from.
func (c *cli) chooseSeat(ctx context.Context, api *service.Client, trainID int64) (string, error) {
	seats, err := api.ListSeats(ctx, trainID)
	if err != nil {
		return "", failure(err, "failed to load seats")
	}
	layout := seating.Group(seats)
	var open []string
	for i := range seating.Rows {
		for _, seat := range layout.Row(i) {
			if !seat.Reserved {
				open = append(open, seat.SeatNumber)
			}
		}
	}
	if len(open) == 0 {
		return "", fmt.Errorf("no open seats on train %d", trainID)
	}
	index, err := choose("Select Seat", open)
	if err != nil {
		return "", err
	}
	return open[index], nil
}
