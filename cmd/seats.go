package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"ktx-reserve-cli/model"
	"ktx-reserve-cli/seating"
)

func newSeatsCommand(c *cli) *cobra.Command {
	var page int
	var seat string

	cmd := &cobra.Command{
		Use:   "seats <trainId>",
		Short: "Show one page of a train's seat map",
		Long: `Show one page of a train's seat map, rows A and B, the aisle, then C and D.
Reserved seats show as "--"; the seat given with --seat is bracketed and its page is
shown unless --page says otherwise.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			trainID, err := parseID(args[0], "train")
			if err != nil {
				return err
			}
			seats, err := c.api().ListSeats(cmd.Context(), trainID)
			if err != nil {
				return failure(err, "failed to load seats")
			}

			layout := seating.Group(seats)
			for _, dropped := range layout.Dropped() {
				c.logger.Debug("seat without row letter left out of layout",
					zap.Int64("train_id", trainID),
					zap.Int64("seat_id", dropped.Id),
					zap.String("seat_number", dropped.SeatNumber))
			}
			out := cmd.OutOrStdout()
			if layout.Len() == 0 {
				fmt.Fprintln(out, "No seats to show for this train.")
				return nil
			}

			var selection seating.Selection
			seat = strings.TrimSpace(seat)
			if seat != "" {
				row, index, ok := layout.Locate(seat)
				if !ok {
					return fmt.Errorf("seat %s not found on train %d", seat, trainID)
				}
				selection.Select(layout.Row(row)[index])
			}

			current := layout.InitialPage(seat)
			if cmd.Flags().Changed("page") {
				current = page - 1
			}
			if current < 0 || current >= layout.TotalPages() {
				return fmt.Errorf("page %d out of range (1-%d)", page, layout.TotalPages())
			}

			renderSeatMap(out, layout, current, selection)
			if seat != "" && selection.Empty() {
				fmt.Fprintf(out, "Seat %s is already reserved.\n", seat)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "page to show, starting at 1")
	cmd.Flags().StringVar(&seat, "seat", "", "seat to highlight, e.g. 21A")
	return cmd
}

func renderSeatMap(out io.Writer, layout seating.Layout, page int, selection seating.Selection) {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleLight)
	for i, label := range seating.Rows {
		row := table.Row{label}
		for _, seat := range layout.Page(i, page) {
			row = append(row, seatCell(seat, selection))
		}
		t.AppendRow(row)
		if i == seating.AisleAfter {
			t.AppendSeparator()
		}
	}
	t.Render()

	status := fmt.Sprintf("Page %d/%d", page+1, layout.TotalPages())
	if !selection.Empty() {
		status += " • Selected: " + selection.SeatNumber()
	}
	fmt.Fprintln(out, status)
}

func seatCell(seat model.Seat, selection seating.Selection) string {
	switch selection.Cell(seat, false).Status {
	case seating.StatusReserved:
		return "--"
	case seating.StatusSelected:
		return "[" + seat.SeatNumber + "]"
	default:
		return seat.SeatNumber
	}
}
