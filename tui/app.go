package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/paginator"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
	"ktx-reserve-cli/booking"
	"ktx-reserve-cli/model"
	"ktx-reserve-cli/service"
	"ktx-reserve-cli/session"
	"ktx-reserve-cli/store"
)

type appState int

const (
	stateLoadingTrains appState = iota
	stateSelectTrain
	stateLoadingSeats
	stateSelectSeat
	stateLoadingConfirm
	stateConfirm
	stateLoadingReservations
	stateReservations
	stateConfirmCancel
	stateLogin
	stateSignup
	stateLoadingProfile
	stateProfile
	stateError
)

type appModel struct {
	client   *service.Client
	sessions *session.Manager
	logger   *zap.Logger

	state     appState
	lastState appState
	err       error

	// notice is an error shown inline on the current screen; flash is a success message.
	notice string
	flash  string

	width  int
	height int

	trains  []model.Train
	recents []store.RecentTrain
	train   model.Train

	trainList       list.Model
	reservationList list.Model

	seats     seatGrid
	pager     paginator.Model
	flow      booking.Flow
	cancelFor model.Reservation

	cancelling  bool
	authPending bool
	afterLogin  appState

	login   form
	signup  form
	profile model.User

	spinner spinner.Model
}

type errMsg struct {
	err         error
	returnState appState
}

type trainsMsg struct {
	trains  []model.Train
	recents []store.RecentTrain
	err     error
}

type seatsMsg struct {
	trainID int64
	seats   []model.Seat
	err     error
}

type confirmTrainMsg struct {
	train model.Train
	err   error
}

type reservationCreatedMsg struct {
	reservation model.Reservation
	err         error
}

type reservationsMsg struct {
	reservations []model.Reservation
	err          error
}

type reservationCancelledMsg struct {
	reservationID int64
	err           error
}

type loginMsg struct {
	session model.Session
	err     error
}

type signupMsg struct {
	username string
	err      error
}

type profileMsg struct {
	user model.User
	err  error
}

// New builds the interactive program model. sessions is the only source of the login state;
// every request goes through a client bound to its current session.
func New(client *service.Client, sessions *session.Manager, logger *zap.Logger) tea.Model {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := appModel{
		client:     client,
		sessions:   sessions,
		logger:     logger,
		state:      stateLoadingTrains,
		afterLogin: stateSelectTrain,
	}

	m.trainList = newList("Trains")
	m.reservationList = newList("My Reservations")
	m.reservationList.SetFilteringEnabled(false)

	m.pager = paginator.New()
	m.pager.Type = paginator.Arabic

	m.login = newLoginForm()
	m.signup = newSignupForm()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("5"))
	m.spinner = sp

	return m
}

func (m appModel) Init() tea.Cmd {
	return tea.Batch(m.fetchTrainsCmd(), m.spinner.Tick)
}

// api is a client bound to the current session.
func (m appModel) api() *service.Client {
	return m.client.WithSession(m.sessions.Current())
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeLists()
		return m, nil

	case tea.KeyMsg:
		if !m.busy() {
			m.flash = ""
		}
		if m.state == stateLogin || m.state == stateSignup {
			return m.handleFormKey(msg)
		}
		if m.handleFilterInput(msg) {
			return m, nil
		}
		var cmd tea.Cmd
		var handled bool
		m, cmd, handled = m.handleKey(msg)
		if handled {
			return m, cmd
		}
		// fallthrough to component update
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		if m.isLoadingState() {
			return m, cmd
		}
		return m, nil

	case errMsg:
		m.err = msg.err
		m.lastState = msg.returnState
		m.state = stateError
		return m, nil

	case trainsMsg:
		if m.state != stateLoadingTrains {
			return m, nil
		}
		if msg.err != nil {
			m.logger.Warn("load trains", zap.Error(msg.err))
			return m, errCmd(errors.New(service.Message(msg.err, "Failed to load trains.")), stateLoadingTrains)
		}
		m.trains = msg.trains
		m.recents = msg.recents
		m.trainList.SetItems(buildTrainItems(msg.trains, msg.recents))
		m.state = stateSelectTrain
		return m, nil

	case seatsMsg:
		return m.handleSeats(msg)

	case confirmTrainMsg:
		return m.handleConfirmTrain(msg)

	case reservationCreatedMsg:
		return m.handleReservationCreated(msg)

	case reservationsMsg:
		return m.handleReservations(msg)

	case reservationCancelledMsg:
		return m.handleReservationCancelled(msg)

	case loginMsg:
		return m.handleLogin(msg)

	case signupMsg:
		return m.handleSignup(msg)

	case profileMsg:
		return m.handleProfile(msg)
	}

	var cmd tea.Cmd
	switch m.state {
	case stateSelectTrain:
		m.trainList, cmd = m.trainList.Update(msg)
	case stateReservations:
		m.reservationList, cmd = m.reservationList.Update(msg)
	case stateLogin:
		cmd = m.login.update(msg)
	case stateSignup:
		cmd = m.signup.update(msg)
	}
	return m, cmd
}

func (m appModel) View() string {
	header := m.headerView()
	body := ""
	switch m.state {
	case stateLoadingTrains, stateLoadingSeats, stateLoadingConfirm, stateLoadingReservations, stateLoadingProfile:
		body = m.loadingView()
	case stateSelectTrain:
		body = m.trainsView()
	case stateSelectSeat:
		body = m.seatsView()
	case stateConfirm:
		body = m.confirmView()
	case stateReservations:
		body = m.reservationsView()
	case stateConfirmCancel:
		body = m.confirmCancelView()
	case stateLogin:
		body = m.loginView()
	case stateSignup:
		body = m.signupView()
	case stateProfile:
		body = m.profileView()
	case stateError:
		body = errorStyle.Render(m.err.Error()) + "\n\n" + hint("Press esc to go back or ctrl+c to quit.")
	}
	if body == "" {
		return header
	}
	return header + "\n\n" + m.statusLine() + body
}

func (m appModel) statusLine() string {
	var lines []string
	if m.flash != "" {
		lines = append(lines, flashStyle.Render(m.flash))
	}
	if m.notice != "" && m.state != stateError {
		lines = append(lines, errorStyle.Render(m.notice))
	}
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n\n"
}

func (m appModel) headerView() string {
	title := titleStyle.Render("KTX Reserve")
	sub := []string{}
	if current := m.sessions.Current(); current.LoggedIn() {
		name := current.Username
		if name == "" {
			name = fmt.Sprintf("user #%d", current.UserId)
		}
		sub = append(sub, "Signed in: "+name)
	} else {
		sub = append(sub, "Not signed in")
	}
	switch m.state {
	case stateSelectSeat, stateLoadingConfirm, stateConfirm:
		if m.train.Name != "" {
			sub = append(sub, "Train: "+strings.TrimSpace(m.train.Name))
		}
		if seat := m.flow.SeatNumber; seat != "" {
			sub = append(sub, "Seat: "+seat)
		}
	}
	meta := "\n" + lipgloss.NewStyle().Faint(true).Render(strings.Join(sub, " • "))

	hints := "ctrl+c quit • esc back • ctrl+t trains • ctrl+r reservations • ctrl+p my page • ctrl+l login • ctrl+o logout"
	switch m.state {
	case stateSelectTrain:
		hints = "ctrl+c quit • type to filter • enter choose seats • ctrl+r reservations • ctrl+p my page • ctrl+l login • ctrl+o logout"
	case stateSelectSeat:
		hints = "ctrl+c quit • esc back • arrows move • enter select • [ ] page • tab continue"
	case stateConfirm:
		hints = "ctrl+c quit • esc back to seats • enter reserve"
	case stateReservations:
		hints = "ctrl+c quit • esc back • x cancel reservation • ctrl+t trains"
	case stateConfirmCancel:
		hints = "y cancel reservation • n keep it"
	case stateLogin:
		hints = "ctrl+c quit • esc back • tab next field • enter log in • ctrl+n sign up"
	case stateSignup:
		hints = "ctrl+c quit • esc back • tab next field • enter sign up"
	}
	filterLine := ""
	if listPtr := m.activeList(); listPtr != nil {
		if filter := listPtr.FilterValue(); filter != "" {
			filterLine = "\n" + hint(fmt.Sprintf("Filter: %s", filter))
		}
	}
	return title + meta + filterLine + "\n" + hint(hints)
}

// busy reports whether a submission is in flight. Navigation waits for it to settle, as it
// does for a screen that is still loading.
func (m appModel) busy() bool {
	return m.flow.Submitting() || m.cancelling || m.authPending
}

func (m appModel) handleKey(msg tea.KeyMsg) (appModel, tea.Cmd, bool) {
	key := msg.String()
	if key == "ctrl+c" {
		return m, tea.Quit, true
	}
	// Keys that navigate would open a second request for a screen still waiting on its first.
	if m.isLoadingState() {
		return m, nil, true
	}

	switch key {
	case "q":
		return m, tea.Quit, true
	case "esc":
		if listPtr := m.activeList(); listPtr != nil {
			if listPtr.SettingFilter() || listPtr.IsFiltered() {
				listPtr.ResetFilter()
				return m, nil, true
			}
		}
		next, cmd := m.goBack()
		return next, cmd, true
	case "ctrl+t":
		next, cmd := m.openTrains()
		return next, cmd, true
	case "ctrl+r":
		next, cmd := m.openReservations()
		return next, cmd, true
	case "ctrl+p":
		next, cmd := m.openProfile()
		return next, cmd, true
	case "ctrl+l":
		next, cmd := m.openLogin(stateSelectTrain, "")
		return next, cmd, true
	case "ctrl+o":
		next, cmd := m.logout()
		return next, cmd, true
	}

	switch m.state {
	case stateSelectTrain:
		if msg.Type == tea.KeyEnter {
			item, ok := m.trainList.SelectedItem().(trainItem)
			if !ok {
				return m, nil, true
			}
			m.train = item.train
			m.flow = booking.NewFlow(item.train.Id, "")
			next, cmd := m.openSeats()
			return next, cmd, true
		}
	case stateSelectSeat:
		return m.handleSeatKey(msg)
	case stateConfirm:
		return m.handleConfirmKey(msg)
	case stateReservations:
		return m.handleReservationsKey(msg)
	case stateConfirmCancel:
		return m.handleConfirmCancelKey(msg)
	}
	return m, nil, false
}

func (m appModel) goBack() (appModel, tea.Cmd) {
	m.notice = ""
	switch m.state {
	case stateSelectSeat:
		m.state = stateSelectTrain
	case stateConfirm:
		return m.backToSeats()
	case stateReservations, stateProfile:
		return m.openTrains()
	case stateConfirmCancel:
		m.state = stateReservations
	case stateError:
		m.err = nil
		return m.resume(m.lastState)
	default:
		return m, nil
	}
	return m, nil
}

// resume re-enters a screen, fetching whatever it needs.
func (m appModel) resume(state appState) (appModel, tea.Cmd) {
	switch state {
	case stateLoadingSeats, stateSelectSeat:
		if m.train.Id != 0 {
			return m.openSeats()
		}
	case stateLoadingReservations, stateReservations:
		return m.openReservations()
	case stateLoadingProfile, stateProfile:
		return m.openProfile()
	case stateLoadingTrains:
		m.state = stateLoadingTrains
		return m, tea.Batch(m.fetchTrainsCmd(), m.spinner.Tick)
	}
	return m.openTrains()
}

func (m appModel) openTrains() (appModel, tea.Cmd) {
	m.notice = ""
	if len(m.trains) == 0 {
		m.state = stateLoadingTrains
		return m, tea.Batch(m.fetchTrainsCmd(), m.spinner.Tick)
	}
	m.trainList.SetItems(buildTrainItems(m.trains, m.recents))
	m.state = stateSelectTrain
	return m, nil
}

// requireLogin sends the user to the login screen when there is no session. target is
// re-entered after a successful login.
func (m appModel) requireLogin(target appState) (appModel, tea.Cmd, bool) {
	if m.sessions.LoggedIn() {
		return m, nil, true
	}
	next, cmd := m.openLogin(target, service.Message(service.ErrLoginRequired, ""))
	return next, cmd, false
}

// redirectOnLogin handles a request that failed for lack of a session.
func (m appModel) redirectOnLogin(err error, target appState) (appModel, tea.Cmd, bool) {
	if !errors.Is(err, service.ErrLoginRequired) {
		return m, nil, false
	}
	next, cmd := m.openLogin(target, service.Message(err, ""))
	return next, cmd, true
}

func (m *appModel) handleFilterInput(msg tea.KeyMsg) bool {
	listPtr := m.activeList()
	if listPtr == nil {
		return false
	}
	if !listPtr.FilteringEnabled() {
		return false
	}
	switch msg.Type {
	case tea.KeyRunes:
		if len(msg.Runes) == 0 {
			return false
		}
		m.appendFilter(listPtr, string(msg.Runes))
		return true
	case tea.KeySpace:
		m.appendFilter(listPtr, " ")
		return true
	case tea.KeyBackspace, tea.KeyDelete:
		if listPtr.FilterValue() == "" {
			return false
		}
		m.popFilter(listPtr)
		return true
	default:
		return false
	}
}

func (m *appModel) appendFilter(listPtr *list.Model, value string) {
	if value == "" {
		return
	}
	current := listPtr.FilterValue()
	listPtr.SetFilterText(current + value)
}

func (m *appModel) popFilter(listPtr *list.Model) {
	value := listPtr.FilterValue()
	if value == "" {
		return
	}
	value = trimLastRune(value)
	if value == "" {
		listPtr.ResetFilter()
		return
	}
	listPtr.SetFilterText(value)
}

func trimLastRune(value string) string {
	runes := []rune(value)
	if len(runes) <= 1 {
		return ""
	}
	return string(runes[:len(runes)-1])
}

func (m *appModel) activeList() *list.Model {
	switch m.state {
	case stateSelectTrain:
		return &m.trainList
	case stateReservations:
		return &m.reservationList
	default:
		return nil
	}
}

func (m appModel) isLoadingState() bool {
	return m.fetching() || m.busy()
}

// fetching reports whether the current screen is waiting for its data.
func (m appModel) fetching() bool {
	return m.state == stateLoadingTrains ||
		m.state == stateLoadingSeats ||
		m.state == stateLoadingConfirm ||
		m.state == stateLoadingReservations ||
		m.state == stateLoadingProfile
}

func (m appModel) loadingView() string {
	title := "Loading"
	switch m.state {
	case stateLoadingTrains:
		title = "Loading trains"
	case stateLoadingSeats:
		title = "Loading seats"
	case stateLoadingConfirm:
		title = "Loading train details"
	case stateLoadingReservations:
		title = "Loading reservations"
	case stateLoadingProfile:
		title = "Loading profile"
	}

	return fmt.Sprintf("%s %s\n\n%s", m.spinner.View(), title, hint("Fetching data..."))
}

func (m *appModel) resizeLists() {
	if m.width == 0 || m.height == 0 {
		return
	}
	h := m.height - 8
	if h < 6 {
		h = 6
	}
	m.trainList.SetSize(m.width, h)
	m.reservationList.SetSize(m.width, h)
}

func newList(title string) list.Model {
	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = true
	l := list.New([]list.Item{}, delegate, 0, 0)
	l.Title = title
	l.Filter = caseInsensitiveFilter
	l.SetFilteringEnabled(true)
	l.SetShowFilter(true)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	return l
}

func hint(text string) string {
	return lipgloss.NewStyle().Faint(true).Render(text)
}

func errCmd(err error, returnState appState) tea.Cmd {
	return func() tea.Msg {
		return errMsg{err: err, returnState: returnState}
	}
}

func caseInsensitiveFilter(term string, targets []string) []list.Rank {
	term = strings.ToLower(term)
	lower := make([]string, len(targets))
	for i, t := range targets {
		lower[i] = strings.ToLower(t)
	}
	return list.DefaultFilter(term, lower)
}
