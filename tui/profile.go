package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
	"ktx-reserve-cli/service"
)

func (m appModel) openProfile() (appModel, tea.Cmd) {
	m.notice = ""
	var cmd tea.Cmd
	var ok bool
	m, cmd, ok = m.requireLogin(stateLoadingProfile)
	if !ok {
		return m, cmd
	}
	m.state = stateLoadingProfile
	return m, tea.Batch(m.fetchProfileCmd(), m.spinner.Tick)
}

func (m appModel) fetchProfileCmd() tea.Cmd {
	api := m.api()
	return func() tea.Msg {
		ctx := context.Background()
		user, err := api.GetProfile(ctx)
		return profileMsg{user: user, err: err}
	}
}

func (m appModel) handleProfile(msg profileMsg) (tea.Model, tea.Cmd) {
	if m.state != stateLoadingProfile {
		return m, nil
	}
	if msg.err != nil {
		m.logger.Warn("load profile", zap.Error(msg.err))
		if next, cmd, ok := m.redirectOnLogin(msg.err, stateLoadingProfile); ok {
			return next, cmd
		}
		return m, errCmd(errors.New(service.Message(msg.err, "Failed to load profile.")), stateSelectTrain)
	}
	m.profile = msg.user
	m.state = stateProfile
	return m, nil
}

func (m appModel) profileView() string {
	user := m.profile
	name := user.Name
	if name == "" {
		name = "-"
	}
	rows := []string{
		titleStyle.Render(fmt.Sprintf("Hello, %s", user.DisplayName())),
		"",
		labelStyle.Render("User ID") + fmt.Sprint(user.Id),
	}
	if user.Username != "" {
		rows = append(rows, labelStyle.Render("Username")+user.Username)
	}
	rows = append(rows,
		labelStyle.Render("Name")+name,
		labelStyle.Render("Email")+user.Email,
		"",
		hint("ctrl+r my reservations • ctrl+o log out"),
	)
	return panelStyle.Render(strings.Join(rows, "\n"))
}
