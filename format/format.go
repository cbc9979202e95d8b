// Package format renders fares and train times for both the terminal UI and the command output.
package format

import (
	"fmt"
	"math"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"ktx-reserve-cli/model"
)

var wonPrinter = message.NewPrinter(language.Korean)

// Price renders a fare in won with digit grouping, e.g. ₩59,800.
func Price(price float64) string {
	if price <= 0 {
		return "-"
	}
	return wonPrinter.Sprintf("₩%d", int64(math.Round(price)))
}

func Clock(ts model.Timestamp) string {
	if ts.IsZero() {
		return "--:--"
	}
	return ts.Format("15:04")
}

func DateTime(ts model.Timestamp) string {
	if ts.IsZero() {
		return "-"
	}
	return ts.Format("2006-01-02 15:04")
}

// Duration renders the trip length as "2h 30m", or "-" when it is zero or unknown.
func Duration(departure, arrival model.Timestamp) string {
	if departure.IsZero() || arrival.IsZero() {
		return "-"
	}
	diff := arrival.Sub(departure.Time)
	if diff < 0 {
		diff = -diff
	}
	minutes := int(diff / time.Minute)
	if minutes == 0 {
		return "-"
	}
	return fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
}
