package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
	"ktx-reserve-cli/format"
	"ktx-reserve-cli/model"
)

func newTrainsCommand(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "trains",
		Short: "List trains in service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			trains, err := c.api().ListTrains(cmd.Context())
			if err != nil {
				return failure(err, "failed to load trains")
			}
			if len(trains) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No trains in service.")
				return nil
			}
			renderTrains(cmd.OutOrStdout(), trains)
			return nil
		},
	}
}

func renderTrains(out io.Writer, trains []model.Train) {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.AppendHeader(table.Row{"ID", "Train", "Route", "Departs", "Arrives", "Duration", "Fare", "Seats"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, WidthMax: 20},
		{Number: 7, Align: text.AlignRight},
		{Number: 8, Align: text.AlignRight},
	})
	for _, train := range trains {
		t.AppendRow(table.Row{
			train.Id,
			strings.TrimSpace(train.Name),
			fmt.Sprintf("%s → %s", strings.TrimSpace(train.DepartureStation), strings.TrimSpace(train.ArrivalStation)),
			format.Clock(train.DepartureTime),
			format.Clock(train.ArrivalTime),
			format.Duration(train.DepartureTime, train.ArrivalTime),
			format.Price(train.Price),
			train.AvailableSeats,
		})
	}
	t.Render()
}
