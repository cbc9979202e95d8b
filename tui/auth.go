package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
	"ktx-reserve-cli/model"
	"ktx-reserve-cli/service"
)

type form struct {
	labels []string
	inputs []textinput.Model
	focus  int
}

func newForm(labels []string, secret map[int]bool) form {
	f := form{labels: labels, inputs: make([]textinput.Model, len(labels))}
	for i, label := range labels {
		ti := textinput.New()
		ti.Placeholder = strings.ToLower(label)
		ti.Prompt = ""
		ti.CharLimit = 64
		if secret[i] {
			ti.EchoMode = textinput.EchoPassword
			ti.EchoCharacter = '•'
		}
		f.inputs[i] = ti
	}
	return f
}

func newLoginForm() form {
	return newForm([]string{"Username", "Password"}, map[int]bool{1: true})
}

func newSignupForm() form {
	return newForm([]string{"Username", "Password", "Name", "Email"}, map[int]bool{1: true})
}

func (f *form) focusField(i int) tea.Cmd {
	for j := range f.inputs {
		f.inputs[j].Blur()
	}
	f.focus = (i + len(f.inputs)) % len(f.inputs)
	return f.inputs[f.focus].Focus()
}

func (f *form) reset() {
	for i := range f.inputs {
		f.inputs[i].Reset()
	}
	f.focus = 0
}

func (f form) value(i int) string {
	return f.inputs[i].Value()
}

func (f *form) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return cmd
}

func (f form) view() string {
	rows := make([]string, 0, len(f.inputs))
	for i, input := range f.inputs {
		rows = append(rows, labelStyle.Render(f.labels[i])+input.View())
	}
	return strings.Join(rows, "\n")
}

// openLogin shows the login form. target is the screen entered after a successful login.
func (m appModel) openLogin(target appState, notice string) (appModel, tea.Cmd) {
	m.afterLogin = target
	m.notice = notice
	m.state = stateLogin
	m.login.inputs[1].Reset()
	return m, m.login.focusField(0)
}

// handleFormKey owns the keyboard while a form is shown so printable keys reach the inputs.
func (m appModel) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	if m.authPending {
		return m, nil
	}

	f := &m.login
	if m.state == stateSignup {
		f = &m.signup
	}
	switch msg.String() {
	case "esc":
		if m.state == stateSignup {
			return m.openLogin(m.afterLogin, "")
		}
		return m.openTrains()
	case "ctrl+n":
		if m.state == stateLogin {
			m.notice = ""
			m.state = stateSignup
			m.signup.reset()
			return m, m.signup.focusField(0)
		}
	case "tab", "down":
		return m, f.focusField(f.focus + 1)
	case "shift+tab", "up":
		return m, f.focusField(f.focus - 1)
	case "enter":
		if f.focus < len(f.inputs)-1 {
			return m, f.focusField(f.focus + 1)
		}
		if m.state == stateSignup {
			return m.submitSignup()
		}
		return m.submitLogin()
	}
	return m, f.update(msg)
}

func (m appModel) submitLogin() (tea.Model, tea.Cmd) {
	creds := model.Credentials{
		Username: strings.TrimSpace(m.login.value(0)),
		Password: m.login.value(1),
	}
	if creds.Username == "" || creds.Password == "" {
		m.notice = "Enter your username and password."
		return m, nil
	}
	m.notice = ""
	m.authPending = true
	return m, tea.Batch(m.loginCmd(creds), m.spinner.Tick)
}

func (m appModel) loginCmd(creds model.Credentials) tea.Cmd {
	sessions := m.sessions
	return func() tea.Msg {
		ctx := context.Background()
		current, err := sessions.Login(ctx, creds)
		return loginMsg{session: current, err: err}
	}
}

func (m appModel) handleLogin(msg loginMsg) (tea.Model, tea.Cmd) {
	if !m.authPending || m.state != stateLogin {
		return m, nil
	}
	m.authPending = false
	if msg.err != nil {
		m.logger.Warn("login", zap.Error(msg.err))
		m.notice = service.Message(msg.err, "Login failed.")
		return m, nil
	}
	m.login.inputs[1].Reset()
	m.flash = fmt.Sprintf("Welcome, %s.", msg.session.Username)
	target := m.afterLogin
	m.afterLogin = stateSelectTrain
	return m.resume(target)
}

func (m appModel) submitSignup() (tea.Model, tea.Cmd) {
	req := model.SignUpRequest{
		Username: strings.TrimSpace(m.signup.value(0)),
		Password: m.signup.value(1),
		Name:     strings.TrimSpace(m.signup.value(2)),
		Email:    strings.TrimSpace(m.signup.value(3)),
	}
	if req.Username == "" || req.Password == "" || req.Name == "" || req.Email == "" {
		m.notice = "All fields are required."
		return m, nil
	}
	m.notice = ""
	m.authPending = true
	return m, tea.Batch(m.signupCmd(req), m.spinner.Tick)
}

func (m appModel) signupCmd(req model.SignUpRequest) tea.Cmd {
	sessions := m.sessions
	return func() tea.Msg {
		ctx := context.Background()
		err := sessions.SignUp(ctx, req)
		return signupMsg{username: req.Username, err: err}
	}
}

// handleSignup returns to the login form with the new username filled in.
func (m appModel) handleSignup(msg signupMsg) (tea.Model, tea.Cmd) {
	if !m.authPending || m.state != stateSignup {
		return m, nil
	}
	m.authPending = false
	if msg.err != nil {
		m.logger.Warn("sign up", zap.Error(msg.err))
		m.notice = service.Message(msg.err, "Sign up failed.")
		return m, nil
	}
	m.signup.reset()
	m, _ = m.openLogin(m.afterLogin, "")
	m.login.inputs[0].SetValue(msg.username)
	m.flash = "Account created. Log in to continue."
	return m, m.login.focusField(1)
}

func (m appModel) logout() (appModel, tea.Cmd) {
	if err := m.sessions.Logout(); err != nil {
		m.logger.Warn("logout", zap.Error(err))
		m.notice = "Failed to clear the saved session."
		return m, nil
	}
	m.profile = model.User{}
	m.reservationList.SetItems(nil)
	m.flash = "Logged out."
	return m.openTrains()
}

func (m appModel) loginView() string {
	rows := []string{titleStyle.Render("Log in"), "", m.login.view(), ""}
	if m.authPending {
		rows = append(rows, m.spinner.View()+" Logging in...")
	} else {
		rows = append(rows, action("enter log in", true)+"  "+hint("ctrl+n create an account"))
	}
	return panelStyle.Render(strings.Join(rows, "\n"))
}

func (m appModel) signupView() string {
	rows := []string{titleStyle.Render("Sign up"), "", m.signup.view(), ""}
	if m.authPending {
		rows = append(rows, m.spinner.View()+" Creating account...")
	} else {
		rows = append(rows, action("enter sign up", true)+"  "+hint("esc back to log in"))
	}
	return panelStyle.Render(strings.Join(rows, "\n"))
}
