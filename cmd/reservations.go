package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"ktx-reserve-cli/booking"
	"ktx-reserve-cli/format"
	"ktx-reserve-cli/model"
	"ktx-reserve-cli/service"
)

func newReservationsCommand(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reservations",
		Short: "List your reservations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.printReservations(cmd)
		},
	}
	cmd.AddCommand(newCancelCommand(c))
	return cmd
}

func (c *cli) printReservations(cmd *cobra.Command) error {
	reservations, err := c.api().ListReservations(cmd.Context())
	if err != nil {
		return failure(err, "failed to load reservations")
	}
	if len(reservations) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No reservations yet.")
		return nil
	}
	renderReservations(cmd.OutOrStdout(), reservations)
	return nil
}

func newCancelCommand(c *cli) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "cancel [reservationId]",
		Short: "Cancel a reservation",
		Long: `Cancel a reservation. Without an id your reservations are listed to pick from.
The cancellation is only sent after confirming, or with --yes.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api := c.api()
			if !api.Session().LoggedIn() {
				return failure(service.ErrLoginRequired, "")
			}
			ctx := cmd.Context()

			var reservationID int64
			if len(args) == 1 {
				id, err := parseID(args[0], "reservation")
				if err != nil {
					return err
				}
				reservationID = id
			} else {
				reservations, err := api.ListReservations(ctx)
				if err != nil {
					return failure(err, "failed to load reservations")
				}
				if len(reservations) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No reservations yet.")
					return nil
				}
				labels := make([]string, len(reservations))
				for i, res := range reservations {
					labels[i] = reservationLabel(res)
				}
				index, err := choose("Select Reservation", labels)
				if err != nil {
					return err
				}
				reservationID = reservations[index].ReservationId
			}

			if !yes {
				ok, err := confirm(fmt.Sprintf("Cancel reservation %d", reservationID))
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), "Reservation kept.")
					return nil
				}
			}

			if err := booking.Cancel(ctx, api, reservationID); err != nil {
				c.logger.Warn("cancel reservation", zap.Int64("reservation_id", reservationID), zap.Error(err))
				return failure(err, "failed to cancel the reservation")
			}
			c.logger.Info("reservation cancelled", zap.Int64("reservation_id", reservationID))
			fmt.Fprintf(cmd.OutOrStdout(), "Reservation %d cancelled.\n", reservationID)
			return c.printReservations(cmd)
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "cancel without asking for confirmation")
	return cmd
}

func reservationLabel(res model.Reservation) string {
	parts := []string{fmt.Sprintf("#%d", res.ReservationId)}
	if name := strings.TrimSpace(res.TrainName); name != "" {
		parts = append(parts, name)
	}
	parts = append(parts, "seat "+res.SeatNumber)
	if !res.DepartureTime.IsZero() {
		parts = append(parts, format.DateTime(res.DepartureTime))
	}
	return strings.Join(parts, " • ")
}

func renderReservations(out io.Writer, reservations []model.Reservation) {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.AppendHeader(table.Row{"ID", "Train", "Seat", "Route", "Departs", "Fare", "Reserved"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, WidthMax: 20},
		{Number: 6, Align: text.AlignRight},
	})
	for _, res := range reservations {
		route := "-"
		if res.DepartureStation != "" || res.ArrivalStation != "" {
			route = fmt.Sprintf("%s → %s", strings.TrimSpace(res.DepartureStation), strings.TrimSpace(res.ArrivalStation))
		}
		t.AppendRow(table.Row{
			res.ReservationId,
			strings.TrimSpace(res.TrainName),
			res.SeatNumber,
			route,
			format.DateTime(res.DepartureTime),
			format.Price(res.Price),
			format.DateTime(res.ReservedAt),
		})
	}
	t.Render()
}
