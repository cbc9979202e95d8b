package tui

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-chi/chi/v5"
	"ktx-reserve-cli/booking"
	"ktx-reserve-cli/model"
	"ktx-reserve-cli/service"
	"ktx-reserve-cli/session"
	"ktx-reserve-cli/store"
)

type testItem struct {
	value string
}

func (t testItem) Title() string       { return t.value }
func (t testItem) Description() string { return "" }
func (t testItem) FilterValue() string { return strings.ToLower(t.value) }

type memorySessions struct {
	session model.Session
}

func (p *memorySessions) Load() (model.Session, error) { return p.session, nil }
func (p *memorySessions) Save(s model.Session) error {
	p.session = s
	return nil
}
func (p *memorySessions) Clear() error {
	p.session = model.Session{}
	return nil
}

// backend is a fake of all four services behind one router.
type backend struct {
	trains       []model.Train
	seats        []model.Seat
	reservations []model.Reservation

	seatsStatus  int
	createStatus int
	createBody   string
	listStatus   int
	cancelStatus int
	cancelBody   string

	// A non-nil gate holds the request until the test closes it.
	listGate   chan struct{}
	createGate chan struct{}

	creates     int32
	lists       int32
	cancels     int32
	seatFetches int32
}

func (b *backend) router() http.Handler {
	writeJSON := func(w http.ResponseWriter, status int, v any) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(v)
	}
	fail := func(w http.ResponseWriter, status int, body string) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}

	r := chi.NewRouter()
	r.Get("/api/v1/trains", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, b.trains)
	})
	r.Get("/api/v1/seats", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&b.seatFetches, 1)
		if b.seatsStatus != 0 {
			fail(w, b.seatsStatus, "")
			return
		}
		writeJSON(w, http.StatusOK, b.seats)
	})
	r.Post("/api/v1/users/login", func(w http.ResponseWriter, r *http.Request) {
		var creds model.Credentials
		_ = json.NewDecoder(r.Body).Decode(&creds)
		if creds.Password != "secret" {
			fail(w, http.StatusUnauthorized, `{"message":"invalid credentials"}`)
			return
		}
		writeJSON(w, http.StatusOK, 7)
	})
	r.Post("/api/v1/users/sign-up", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})
	r.Get("/api/v1/users/{id}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, model.User{Id: 7, Email: "kim@example.com", Username: "kim"})
	})
	r.Post("/api/v1/reservations", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&b.creates, 1)
		if b.createGate != nil {
			<-b.createGate
		}
		if b.createStatus != 0 {
			fail(w, b.createStatus, b.createBody)
			return
		}
		var req model.ReservationRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		res := model.Reservation{ReservationId: 100, TrainId: req.TrainId, SeatNumber: req.SeatNumber}
		b.reservations = append(b.reservations, res)
		writeJSON(w, http.StatusCreated, res)
	})
	r.Get("/api/v1/reservations", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&b.lists, 1)
		if b.listGate != nil {
			<-b.listGate
		}
		if b.listStatus != 0 {
			fail(w, b.listStatus, "")
			return
		}
		writeJSON(w, http.StatusOK, b.reservations)
	})
	r.Delete("/api/v1/reservations/{id}", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&b.cancels, 1)
		if b.cancelStatus != 0 {
			fail(w, b.cancelStatus, b.cancelBody)
			return
		}
		id := chi.URLParam(r, "id")
		kept := b.reservations[:0]
		for _, res := range b.reservations {
			if fmt.Sprint(res.ReservationId) != id {
				kept = append(kept, res)
			}
		}
		b.reservations = kept
		w.WriteHeader(http.StatusNoContent)
	})
	return r
}

func isolateHome(t *testing.T) {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(home, ".cache"))
}

func newTestModel(t *testing.T, b *backend, loggedIn bool) appModel {
	t.Helper()
	isolateHome(t)
	server := httptest.NewServer(b.router())
	t.Cleanup(server.Close)

	client := service.NewClient(server.Client(), service.Endpoints{
		User:        server.URL,
		Train:       server.URL,
		Seat:        server.URL,
		Reservation: server.URL,
	}, nil)
	persist := &memorySessions{}
	if loggedIn {
		persist.session = model.Session{UserId: 7, Username: "kim"}
	}
	return New(client, session.NewManager(client, persist, nil), nil).(appModel)
}

// collect runs cmd and returns the messages it produces, skipping spinner ticks.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	switch msg := msg.(type) {
	case nil, spinner.TickMsg:
		return nil
	case tea.BatchMsg:
		var out []tea.Msg
		for _, c := range msg {
			out = append(out, collect(c)...)
		}
		return out
	default:
		return []tea.Msg{msg}
	}
}

func update(m appModel, msg tea.Msg) (appModel, tea.Cmd) {
	next, cmd := m.Update(msg)
	return next.(appModel), cmd
}

// settle feeds every message produced by cmd back into the model until nothing is left.
func settle(t *testing.T, m appModel, cmd tea.Cmd) appModel {
	t.Helper()
	for depth := 0; cmd != nil; depth++ {
		if depth > 10 {
			t.Fatal("commands did not settle")
		}
		var next []tea.Cmd
		for _, msg := range collect(cmd) {
			var c tea.Cmd
			m, c = update(m, msg)
			next = append(next, c)
		}
		cmd = tea.Batch(next...)
	}
	return m
}

func press(m appModel, key string) (appModel, tea.Cmd) {
	var msg tea.KeyMsg
	switch key {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		msg = tea.KeyMsg{Type: tea.KeyTab}
	case "right":
		msg = tea.KeyMsg{Type: tea.KeyRight}
	case "down":
		msg = tea.KeyMsg{Type: tea.KeyDown}
	case "ctrl+r":
		msg = tea.KeyMsg{Type: tea.KeyCtrlR}
	case "ctrl+t":
		msg = tea.KeyMsg{Type: tea.KeyCtrlT}
	case "ctrl+p":
		msg = tea.KeyMsg{Type: tea.KeyCtrlP}
	case "ctrl+n":
		msg = tea.KeyMsg{Type: tea.KeyCtrlN}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
	return update(m, msg)
}

func sampleTrain() model.Train {
	return model.Train{Id: 1, Name: "KTX 101", Price: 59800, DepartureStation: "Seoul", ArrivalStation: "Busan", AvailableSeats: 40}
}

func rowSeats(letter string, n int) []model.Seat {
	seats := make([]model.Seat, 0, n)
	for i := 1; i <= n; i++ {
		seats = append(seats, model.Seat{Id: int64(len(seats) + 1), SeatNumber: fmt.Sprintf("%d%s", i, letter)})
	}
	return seats
}

// collectAsync runs cmd off the test goroutine so a gated request can be held open.
func collectAsync(cmd tea.Cmd) <-chan []tea.Msg {
	out := make(chan []tea.Msg, 1)
	go func() { out <- collect(cmd) }()
	return out
}

func await(t *testing.T, results <-chan []tea.Msg) []tea.Msg {
	t.Helper()
	select {
	case msgs := <-results:
		return msgs
	case <-time.After(5 * time.Second):
		t.Fatal("request did not complete")
		return nil
	}
}

// openSeatScreen loads the trains and enters the seat screen of the first one.
func openSeatScreen(t *testing.T, b *backend) appModel {
	t.Helper()
	m := newTestModel(t, b, true)
	m = settle(t, m, m.Init())
	if m.state != stateSelectTrain {
		t.Fatalf("expected train list, got state %d", m.state)
	}
	m, cmd := press(m, "enter")
	return settle(t, m, cmd)
}

func newFilterModel(t *testing.T, items []list.Item) *appModel {
	m := newTestModel(t, &backend{}, false)
	m.state = stateSelectTrain
	m.trainList = newList("Trains")
	m.trainList.SetItems(items)
	return &m
}

func TestHandleFilterInput_AppendsRunes(t *testing.T) {
	m := newFilterModel(t, []list.Item{
		testItem{value: "KTX 101"},
		testItem{value: "SRT 305"},
	})

	if !m.handleFilterInput(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("k")}) {
		t.Fatal("expected filter input to be handled")
	}
	if got := m.trainList.FilterValue(); got != "k" {
		t.Fatalf("expected filter value to be %q, got %q", "k", got)
	}

	if !m.handleFilterInput(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("t")}) {
		t.Fatal("expected filter input to be handled")
	}
	if got := m.trainList.FilterValue(); got != "kt" {
		t.Fatalf("expected filter value to be %q, got %q", "kt", got)
	}
}

func TestHandleFilterInput_Backspace(t *testing.T) {
	m := newFilterModel(t, []list.Item{
		testItem{value: "KTX 101"},
	})

	_ = m.handleFilterInput(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("k")})
	_ = m.handleFilterInput(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("t")})

	if !m.handleFilterInput(tea.KeyMsg{Type: tea.KeyBackspace}) {
		t.Fatal("expected backspace to be handled")
	}
	if got := m.trainList.FilterValue(); got != "k" {
		t.Fatalf("expected filter value to be %q, got %q", "k", got)
	}
}

func TestHandleFilterInput_Space(t *testing.T) {
	m := newFilterModel(t, []list.Item{
		testItem{value: "Seoul Busan"},
	})

	_ = m.handleFilterInput(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("s")})
	if !m.handleFilterInput(tea.KeyMsg{Type: tea.KeySpace}) {
		t.Fatal("expected space to be handled")
	}
	if got := m.trainList.FilterValue(); got != "s " {
		t.Fatalf("expected filter value to be %q, got %q", "s ", got)
	}
}

func TestHandleFilterInput_DisabledOnReservations(t *testing.T) {
	m := newTestModel(t, &backend{}, true)
	m.state = stateReservations
	if m.handleFilterInput(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")}) {
		t.Fatal("expected reservation list to leave keys to the screen")
	}
}

func TestTrains_EmptyList(t *testing.T) {
	m := newTestModel(t, &backend{trains: []model.Train{}}, false)
	m = settle(t, m, m.Init())

	if m.state != stateSelectTrain {
		t.Fatalf("expected train list, got state %d", m.state)
	}
	if !strings.Contains(m.View(), "No trains in service.") {
		t.Fatalf("expected empty notice, got %q", m.View())
	}
}

func TestTrains_RecentFirst(t *testing.T) {
	b := &backend{trains: []model.Train{
		{Id: 1, Name: "KTX 101"},
		{Id: 2, Name: "KTX 202"},
	}}
	m := newTestModel(t, b, false)
	if err := store.RememberTrain(model.Train{Id: 2, Name: "KTX 202"}); err != nil {
		t.Fatalf("remember train: %v", err)
	}
	m = settle(t, m, m.Init())

	items := m.trainList.Items()
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	first := items[0].(trainItem)
	if first.train.Id != 2 || !first.recent {
		t.Fatalf("expected recent train first, got %+v", first)
	}
}

func TestOpenSeats_RequiresLogin(t *testing.T) {
	b := &backend{trains: []model.Train{sampleTrain()}}
	m := newTestModel(t, b, false)
	m = settle(t, m, m.Init())

	m, _ = press(m, "enter")
	if m.state != stateLogin {
		t.Fatalf("expected login screen, got state %d", m.state)
	}
	if m.notice != "Login required." {
		t.Fatalf("expected login notice, got %q", m.notice)
	}
	if m.afterLogin != stateLoadingSeats {
		t.Fatalf("expected seat screen after login, got %d", m.afterLogin)
	}
	if atomic.LoadInt32(&b.seatFetches) != 0 {
		t.Fatal("expected no seat request without a session")
	}
}

func TestLogin_ResumesSeatScreen(t *testing.T) {
	b := &backend{trains: []model.Train{sampleTrain()}, seats: rowSeats("A", 3)}
	m := newTestModel(t, b, false)
	m = settle(t, m, m.Init())
	m, _ = press(m, "enter")

	m.login.inputs[0].SetValue("kim")
	m.login.inputs[1].SetValue("secret")
	_ = m.login.focusField(1)
	m, cmd := press(m, "enter")
	if !m.authPending {
		t.Fatal("expected login in flight")
	}
	m = settle(t, m, cmd)

	if !m.sessions.LoggedIn() {
		t.Fatal("expected session after login")
	}
	if m.state != stateSelectSeat {
		t.Fatalf("expected seat screen, got state %d", m.state)
	}
	if m.seats.layout.Len() != 3 {
		t.Fatalf("expected 3 seats, got %d", m.seats.layout.Len())
	}
}

func TestLogin_FailureShowsServerMessage(t *testing.T) {
	m := newTestModel(t, &backend{}, false)
	m, _ = m.openLogin(stateSelectTrain, "")
	m.login.inputs[0].SetValue("kim")
	m.login.inputs[1].SetValue("wrong")
	_ = m.login.focusField(1)

	m, cmd := press(m, "enter")
	m = settle(t, m, cmd)

	if m.state != stateLogin || m.notice != "invalid credentials" {
		t.Fatalf("expected login error, got state %d notice %q", m.state, m.notice)
	}
	if m.sessions.LoggedIn() {
		t.Fatal("expected no session")
	}
}

func TestSeats_LoadFailureLeavesEmptyGrid(t *testing.T) {
	b := &backend{trains: []model.Train{sampleTrain()}, seatsStatus: http.StatusInternalServerError}
	m := openSeatScreen(t, b)

	if m.state != stateSelectSeat {
		t.Fatalf("expected seat screen, got state %d", m.state)
	}
	if m.seats.layout.Len() != 0 {
		t.Fatalf("expected empty seat grid, got %d seats", m.seats.layout.Len())
	}
	if m.notice != "Failed to load seats." {
		t.Fatalf("expected fallback message, got %q", m.notice)
	}
	if atomic.LoadInt32(&b.seatFetches) != 1 {
		t.Fatalf("expected a single attempt, got %d", b.seatFetches)
	}
}

func TestSeats_ReservedSeatRefused(t *testing.T) {
	seats := rowSeats("A", 2)
	seats[0].Reserved = true
	m := openSeatScreen(t, &backend{trains: []model.Train{sampleTrain()}, seats: seats})

	m, _ = press(m, "enter")
	if !m.seats.selection.Empty() || m.flow.SeatNumber != "" {
		t.Fatalf("expected reserved seat refused, got %q", m.seats.selection.SeatNumber())
	}
	if !strings.Contains(m.notice, "already reserved") {
		t.Fatalf("expected reserved notice, got %q", m.notice)
	}

	m, _ = press(m, "right")
	m, _ = press(m, "enter")
	if got := m.seats.selection.SeatNumber(); got != "2A" {
		t.Fatalf("expected 2A selected, got %q", got)
	}
}

func TestProceed_WithoutSeatIsRejectedLocally(t *testing.T) {
	b := &backend{trains: []model.Train{sampleTrain()}, seats: rowSeats("A", 2)}
	m := openSeatScreen(t, b)

	m, cmd := press(m, "tab")
	if cmd != nil {
		t.Fatal("expected no command without a seat")
	}
	if m.state != stateSelectSeat || m.notice != "Select a seat first." {
		t.Fatalf("expected to stay on seats, got state %d notice %q", m.state, m.notice)
	}
	if atomic.LoadInt32(&b.creates) != 0 {
		t.Fatal("expected no reservation request")
	}
}

func TestSubmit_FailureStaysOnConfirm(t *testing.T) {
	b := &backend{
		trains:       []model.Train{sampleTrain()},
		seats:        rowSeats("A", 3),
		createStatus: http.StatusConflict,
		createBody:   `{"message":"seat already taken"}`,
	}
	m := openSeatScreen(t, b)
	m, _ = press(m, "enter")
	m, cmd := press(m, "tab")
	m = settle(t, m, cmd)
	if m.state != stateConfirm {
		t.Fatalf("expected confirmation, got state %d", m.state)
	}

	m, submit := press(m, "enter")
	if !m.flow.Submitting() {
		t.Fatal("expected submission in flight")
	}
	if _, again := press(m, "enter"); again != nil {
		t.Fatal("expected submit to be ignored while in flight")
	}
	m = settle(t, m, submit)

	if m.state != stateConfirm {
		t.Fatalf("expected to stay on confirmation, got state %d", m.state)
	}
	if m.notice != "seat already taken" {
		t.Fatalf("expected server message, got %q", m.notice)
	}
	if m.flow.State() != booking.StateConfirming {
		t.Fatalf("expected submit re-enabled, got %s", m.flow.State())
	}
	if atomic.LoadInt32(&b.creates) != 1 {
		t.Fatalf("expected one create request, got %d", b.creates)
	}
	if _, retry := press(m, "enter"); retry == nil {
		t.Fatal("expected submit to be available again")
	}
}

func TestSubmit_PendingRequestBlocksNavigation(t *testing.T) {
	b := &backend{
		trains:       []model.Train{sampleTrain()},
		seats:        rowSeats("A", 3),
		createStatus: http.StatusConflict,
		createBody:   `{"message":"seat already taken"}`,
		createGate:   make(chan struct{}),
	}
	m := openSeatScreen(t, b)
	m, _ = press(m, "enter")
	m, cmd := press(m, "tab")
	m = settle(t, m, cmd)

	m, submit := press(m, "enter")
	results := collectAsync(submit)

	for _, key := range []string{"enter", "esc", "ctrl+r", "ctrl+t", "ctrl+p"} {
		var next tea.Cmd
		m, next = press(m, key)
		if next != nil {
			t.Fatalf("expected %s to be ignored while reserving", key)
		}
		if m.state != stateConfirm || !m.flow.Submitting() {
			t.Fatalf("expected to stay on pending confirmation after %s, got state %d", key, m.state)
		}
	}
	if !strings.Contains(m.View(), "Reserving...") {
		t.Fatal("expected reserve action disabled while the request is pending")
	}

	close(b.createGate)
	for _, msg := range await(t, results) {
		m, _ = update(m, msg)
	}
	if atomic.LoadInt32(&b.creates) != 1 {
		t.Fatalf("expected one create request, got %d", b.creates)
	}
	if m.flow.Submitting() || strings.Contains(m.View(), "Reserving...") {
		t.Fatal("expected reserve action re-enabled after the reply")
	}
}

func TestSubmit_SuccessOpensReservations(t *testing.T) {
	b := &backend{trains: []model.Train{sampleTrain()}, seats: rowSeats("A", 3)}
	m := openSeatScreen(t, b)
	m, _ = press(m, "enter")
	m, cmd := press(m, "tab")
	m = settle(t, m, cmd)
	m, cmd = press(m, "enter")
	m = settle(t, m, cmd)

	if m.state != stateReservations {
		t.Fatalf("expected reservations, got state %d", m.state)
	}
	if len(m.reservationList.Items()) != 1 {
		t.Fatalf("expected 1 reservation, got %d", len(m.reservationList.Items()))
	}
	recents, err := store.LoadRecentTrains()
	if err != nil || len(recents) != 1 || recents[0].ID != 1 {
		t.Fatalf("expected train remembered, got %+v, %v", recents, err)
	}
}

func TestBackFromConfirm_RestoresSeatPage(t *testing.T) {
	b := &backend{trains: []model.Train{sampleTrain()}, seats: rowSeats("A", 25)}
	m := openSeatScreen(t, b)

	m, _ = press(m, "]")
	if m.seats.page != 1 {
		t.Fatalf("expected page 2, got %d", m.seats.page+1)
	}
	if _, cmd := press(m, "]"); cmd != nil || m.seats.page != 1 {
		t.Fatal("expected next page disabled on the last page")
	}
	m, _ = press(m, "enter")
	if got := m.flow.SeatNumber; got != "21A" {
		t.Fatalf("expected 21A, got %q", got)
	}
	m, cmd := press(m, "tab")
	m = settle(t, m, cmd)

	m, cmd = press(m, "esc")
	m = settle(t, m, cmd)
	if m.state != stateSelectSeat {
		t.Fatalf("expected seat screen, got state %d", m.state)
	}
	if m.seats.page != 1 {
		t.Fatalf("expected page of 21A restored, got %d", m.seats.page)
	}
	if got := m.seats.selection.SeatNumber(); got != "21A" {
		t.Fatalf("expected 21A still selected, got %q", got)
	}
	if atomic.LoadInt32(&b.seatFetches) != 2 {
		t.Fatalf("expected seats re-fetched, got %d fetches", b.seatFetches)
	}
}

func TestConfirm_TrainNotFound(t *testing.T) {
	b := &backend{trains: []model.Train{sampleTrain()}, seats: rowSeats("A", 2)}
	m := openSeatScreen(t, b)
	m, _ = press(m, "enter")
	b.trains = []model.Train{}

	m, cmd := press(m, "tab")
	m = settle(t, m, cmd)
	if m.state != stateError || m.err.Error() != "Train not found." {
		t.Fatalf("expected train not found, got state %d err %v", m.state, m.err)
	}
	if m.flow.State() != booking.StateSelecting {
		t.Fatalf("expected flow back to selecting, got %s", m.flow.State())
	}
}

func TestReservations_NotFoundIsEmpty(t *testing.T) {
	b := &backend{listStatus: http.StatusNotFound}
	m := newTestModel(t, b, true)

	m, cmd := m.openReservations()
	m = settle(t, m, cmd)

	if m.state != stateReservations {
		t.Fatalf("expected reservations, got state %d", m.state)
	}
	if m.notice != "" || m.err != nil {
		t.Fatalf("expected no error, got %q / %v", m.notice, m.err)
	}
	if !strings.Contains(m.View(), "No reservations yet.") {
		t.Fatal("expected empty reservations view")
	}
}

func TestReservations_SingleFetchWhileLoading(t *testing.T) {
	b := &backend{reservations: reservationsFixture(), listGate: make(chan struct{})}
	m := newTestModel(t, b, true)
	m = settle(t, m, m.Init())

	m, cmd := press(m, "ctrl+r")
	if m.state != stateLoadingReservations {
		t.Fatalf("expected reservations loading, got state %d", m.state)
	}
	results := collectAsync(cmd)

	for _, key := range []string{"ctrl+r", "ctrl+r", "ctrl+t", "ctrl+p", "esc", "enter"} {
		var next tea.Cmd
		m, next = press(m, key)
		if next != nil {
			t.Fatalf("expected %s to be ignored while loading", key)
		}
		if m.state != stateLoadingReservations {
			t.Fatalf("expected to keep loading after %s, got state %d", key, m.state)
		}
	}

	close(b.listGate)
	for _, msg := range await(t, results) {
		m, _ = update(m, msg)
	}
	if m.state != stateReservations || len(m.reservationList.Items()) != 2 {
		t.Fatalf("expected 2 reservations, got state %d", m.state)
	}
	if atomic.LoadInt32(&b.lists) != 1 {
		t.Fatalf("expected a single list request, got %d", b.lists)
	}
}

func TestSeats_SingleFetchWhileLoading(t *testing.T) {
	b := &backend{trains: []model.Train{sampleTrain()}, seats: rowSeats("A", 3)}
	m := newTestModel(t, b, true)
	m = settle(t, m, m.Init())

	m, cmd := press(m, "enter")
	if m.state != stateLoadingSeats {
		t.Fatalf("expected seats loading, got state %d", m.state)
	}
	for _, key := range []string{"ctrl+t", "enter", "esc"} {
		var next tea.Cmd
		m, next = press(m, key)
		if next != nil || m.state != stateLoadingSeats {
			t.Fatalf("expected %s to be ignored while loading, got state %d", key, m.state)
		}
	}
	m = settle(t, m, cmd)

	if m.state != stateSelectSeat {
		t.Fatalf("expected seat screen, got state %d", m.state)
	}
	if atomic.LoadInt32(&b.seatFetches) != 1 {
		t.Fatalf("expected a single seat request, got %d", b.seatFetches)
	}
}

func TestSeats_FailedReloadDropsSelection(t *testing.T) {
	b := &backend{trains: []model.Train{sampleTrain()}, seats: rowSeats("A", 3)}
	m := openSeatScreen(t, b)
	m, _ = press(m, "enter")
	if m.seats.selection.SeatNumber() != "1A" {
		t.Fatalf("expected 1A selected, got %q", m.seats.selection.SeatNumber())
	}

	b.seatsStatus = http.StatusInternalServerError
	m, cmd := m.openSeats()
	m = settle(t, m, cmd)

	if !m.seats.selection.Empty() || m.flow.SeatNumber != "" {
		t.Fatalf("expected selection dropped, got %q / %q", m.seats.selection.SeatNumber(), m.flow.SeatNumber)
	}
	if m.seats.layout.Len() != 0 || m.seats.page != 0 {
		t.Fatalf("expected empty first page, got %d seats on page %d", m.seats.layout.Len(), m.seats.page)
	}
}

func TestForms_ReceiveCursorBlink(t *testing.T) {
	m := newTestModel(t, &backend{}, false)
	m, _ = m.openLogin(stateSelectTrain, "")
	if _, cmd := update(m, cursor.Blink()); cmd == nil {
		t.Fatal("expected login cursor to keep blinking")
	}

	m, _ = press(m, "ctrl+n")
	if m.state != stateSignup {
		t.Fatalf("expected sign-up screen, got state %d", m.state)
	}
	if _, cmd := update(m, cursor.Blink()); cmd == nil {
		t.Fatal("expected sign-up cursor to keep blinking")
	}
}

func TestReservations_RequiresLogin(t *testing.T) {
	b := &backend{}
	m := newTestModel(t, b, false)

	m, _ = m.openReservations()
	if m.state != stateLogin {
		t.Fatalf("expected login, got state %d", m.state)
	}
	if atomic.LoadInt32(&b.lists) != 0 {
		t.Fatal("expected no request without a session")
	}
}

func reservationsFixture() []model.Reservation {
	return []model.Reservation{
		{ReservationId: 1, TrainName: "KTX 101", SeatNumber: "1A"},
		{ReservationId: 2, TrainName: "KTX 202", SeatNumber: "3C"},
	}
}

func TestCancel_FailureKeepsList(t *testing.T) {
	b := &backend{
		reservations: reservationsFixture(),
		cancelStatus: http.StatusInternalServerError,
		cancelBody:   `{"message":"cannot cancel after departure"}`,
	}
	m := newTestModel(t, b, true)
	m, cmd := m.openReservations()
	m = settle(t, m, cmd)

	m, _ = press(m, "x")
	if m.state != stateConfirmCancel || m.cancelFor.ReservationId != 1 {
		t.Fatalf("expected cancel confirmation for 1, got state %d", m.state)
	}
	m, cmd = press(m, "y")
	m = settle(t, m, cmd)

	if m.state != stateReservations {
		t.Fatalf("expected reservations, got state %d", m.state)
	}
	if m.notice != "cannot cancel after departure" {
		t.Fatalf("expected server message, got %q", m.notice)
	}
	if len(m.reservationList.Items()) != 2 {
		t.Fatalf("expected list unchanged, got %d items", len(m.reservationList.Items()))
	}
	if atomic.LoadInt32(&b.lists) != 1 {
		t.Fatalf("expected no re-fetch, got %d", b.lists)
	}
}

func TestCancel_SuccessRefetches(t *testing.T) {
	b := &backend{reservations: reservationsFixture()}
	m := newTestModel(t, b, true)
	m, cmd := m.openReservations()
	m = settle(t, m, cmd)

	m, _ = press(m, "x")
	m, cmd = press(m, "y")
	m = settle(t, m, cmd)

	if m.state != stateReservations {
		t.Fatalf("expected reservations, got state %d", m.state)
	}
	if len(m.reservationList.Items()) != 1 {
		t.Fatalf("expected 1 reservation left, got %d", len(m.reservationList.Items()))
	}
	if atomic.LoadInt32(&b.cancels) != 1 || atomic.LoadInt32(&b.lists) != 2 {
		t.Fatalf("expected one cancel and a re-fetch, got %d / %d", b.cancels, b.lists)
	}
}

func TestCancel_DeclineKeepsReservation(t *testing.T) {
	b := &backend{reservations: reservationsFixture()}
	m := newTestModel(t, b, true)
	m, cmd := m.openReservations()
	m = settle(t, m, cmd)

	m, _ = press(m, "x")
	m, cmd = press(m, "n")
	if cmd != nil || m.state != stateReservations {
		t.Fatalf("expected back on reservations, got state %d", m.state)
	}
	if atomic.LoadInt32(&b.cancels) != 0 {
		t.Fatal("expected no cancel request")
	}
}

func TestProfile(t *testing.T) {
	m := newTestModel(t, &backend{}, true)
	m, cmd := m.openProfile()
	m = settle(t, m, cmd)

	if m.state != stateProfile {
		t.Fatalf("expected profile, got state %d", m.state)
	}
	if !strings.Contains(m.View(), "Hello, kim") {
		t.Fatalf("expected display name in view, got %q", m.View())
	}
}

func TestLogout(t *testing.T) {
	m := newTestModel(t, &backend{trains: []model.Train{sampleTrain()}}, true)
	m = settle(t, m, m.Init())

	m, _ = update(m, tea.KeyMsg{Type: tea.KeyCtrlO})
	if m.sessions.LoggedIn() {
		t.Fatal("expected logged out")
	}
	if m.state != stateSelectTrain || m.flash != "Logged out." {
		t.Fatalf("expected train list with notice, got state %d flash %q", m.state, m.flash)
	}
}

func TestSignup_ReturnsToLogin(t *testing.T) {
	m := newTestModel(t, &backend{}, false)
	m, _ = m.openLogin(stateSelectTrain, "")
	m, _ = update(m, tea.KeyMsg{Type: tea.KeyCtrlN})
	if m.state != stateSignup {
		t.Fatalf("expected sign up, got state %d", m.state)
	}
	values := []string{"park", "pw", "Park", "park@example.com"}
	for i, v := range values {
		m.signup.inputs[i].SetValue(v)
	}
	_ = m.signup.focusField(3)

	m, cmd := press(m, "enter")
	for _, msg := range collect(cmd) {
		m, _ = update(m, msg)
	}

	if m.state != stateLogin {
		t.Fatalf("expected login, got state %d", m.state)
	}
	if got := m.login.value(0); got != "park" {
		t.Fatalf("expected username carried over, got %q", got)
	}
	if m.sessions.LoggedIn() {
		t.Fatal("expected sign up not to log in")
	}
}

func TestSeatGrid_RestoresReservedSeatPageWithoutSelecting(t *testing.T) {
	seats := rowSeats("A", 25)
	seats[20].Reserved = true

	g := newSeatGrid(seats, "21A")
	if g.page != 1 {
		t.Fatalf("expected page 1, got %d", g.page)
	}
	if !g.selection.Empty() {
		t.Fatalf("expected reserved seat not carried over, got %q", g.selection.SeatNumber())
	}
}

func TestSeatGrid_MoveClampsToRow(t *testing.T) {
	seats := append(rowSeats("A", 5), rowSeats("C", 2)...)
	g := newSeatGrid(seats, "")

	g.move(0, 10)
	if g.col != 4 {
		t.Fatalf("expected last seat of row A, got col %d", g.col)
	}
	g.move(2, 0)
	if g.row != 2 || g.col != 1 {
		t.Fatalf("expected clamp into row C, got row %d col %d", g.row, g.col)
	}
	g.move(5, 0)
	if g.row != 3 {
		t.Fatalf("expected last row, got %d", g.row)
	}
	if _, ok := g.focused(); ok {
		t.Fatal("expected no seat under cursor in empty row D")
	}
	if g.setPage(1) || g.setPage(-1) {
		t.Fatal("expected single page layout to refuse paging")
	}
}
