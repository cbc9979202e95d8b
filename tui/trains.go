package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
	"ktx-reserve-cli/format"
	"ktx-reserve-cli/model"
	"ktx-reserve-cli/store"
)

// Trains with fewer free seats than this are flagged in the list.
const lowSeatThreshold = 10

type trainItem struct {
	train  model.Train
	recent bool
}

func (t trainItem) Title() string {
	return fmt.Sprintf("%s • %s", strings.TrimSpace(t.train.Name), format.Price(t.train.Price))
}

func (t trainItem) Description() string {
	parts := []string{}
	if t.recent {
		parts = append(parts, "Recent")
	}
	parts = append(parts,
		fmt.Sprintf("%s %s → %s %s",
			format.Clock(t.train.DepartureTime), strings.TrimSpace(t.train.DepartureStation),
			format.Clock(t.train.ArrivalTime), strings.TrimSpace(t.train.ArrivalStation)),
		format.Duration(t.train.DepartureTime, t.train.ArrivalTime),
	)
	seats := fmt.Sprintf("%d seats left", t.train.AvailableSeats)
	if t.train.AvailableSeats < lowSeatThreshold {
		seats = lowSeats.Render(seats)
	}
	parts = append(parts, seats)
	return strings.Join(parts, " • ")
}

func (t trainItem) FilterValue() string {
	return strings.ToLower(strings.Join([]string{
		t.train.Name,
		t.train.DepartureStation,
		t.train.ArrivalStation,
	}, " "))
}

// buildTrainItems lists recently booked trains first, then the rest in server order.
func buildTrainItems(trains []model.Train, recents []store.RecentTrain) []list.Item {
	byID := make(map[int64]model.Train, len(trains))
	for _, train := range trains {
		byID[train.Id] = train
	}

	items := make([]list.Item, 0, len(trains))
	used := map[int64]bool{}
	for _, recent := range recents {
		if train, ok := byID[recent.ID]; ok && !used[train.Id] {
			items = append(items, trainItem{train: train, recent: true})
			used[train.Id] = true
		}
	}
	for _, train := range trains {
		if !used[train.Id] {
			items = append(items, trainItem{train: train})
		}
	}
	return items
}

func (m appModel) fetchTrainsCmd() tea.Cmd {
	api := m.api()
	logger := m.logger
	return func() tea.Msg {
		ctx := context.Background()
		trains, err := api.ListTrains(ctx)
		if err != nil {
			return trainsMsg{err: err}
		}
		recents, err := store.LoadRecentTrains()
		if err != nil {
			logger.Debug("load recent trains", zap.Error(err))
		}
		return trainsMsg{trains: trains, recents: recents}
	}
}

func (m appModel) trainsView() string {
	if len(m.trains) == 0 {
		return "No trains in service." + "\n\n" + hint("Press ctrl+r for your reservations or ctrl+c to quit.")
	}
	return m.trainList.View()
}
