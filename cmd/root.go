// Package cmd builds the command tree. The bare command opens the interactive screen;
// the subcommands run the same operations once and print tables for scripts.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"ktx-reserve-cli/config"
	"ktx-reserve-cli/logging"
	"ktx-reserve-cli/service"
	"ktx-reserve-cli/session"
	"ktx-reserve-cli/store"
	"ktx-reserve-cli/tui"
)

const appName = "ktx-reserve-cli"

// cli carries what every command needs once the configuration is loaded.
type cli struct {
	version string
	commit  string
	cfgFile string

	cfg      config.Config
	logger   *zap.Logger
	client   *service.Client
	sessions *session.Manager
}

// Execute runs the command tree against os.Args.
func Execute(version, commit string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	c := &cli{version: version, commit: commit}
	defer c.close()
	return newRootCommand(c).ExecuteContext(ctx)
}

func newRootCommand(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:   "ktx",
		Short: "Reserve KTX train seats from the terminal",
		Long: `Browse trains, pick a seat and manage your reservations.
Run without a command to open the interactive screen.`,
		Version:       c.versionString(),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			program := tea.NewProgram(tui.New(c.client, c.sessions, c.logger), tea.WithAltScreen(), tea.WithContext(cmd.Context()))
			_, err := program.Run()
			return err
		},
	}
	root.SetVersionTemplate("{{.Version}}\n")
	root.PersistentFlags().StringVar(&c.cfgFile, "config", "", "config file (default ./ktx.yaml, then ktx.yaml in the user config dir)")

	root.AddCommand(
		newTrainsCommand(c),
		newSeatsCommand(c),
		newReserveCommand(c),
		newReservationsCommand(c),
		newLoginCommand(c),
		newSignupCommand(c),
		newLogoutCommand(c),
		newMeCommand(c),
		newVersionCommand(c),
	)
	return root
}

func (c *cli) setup() error {
	if c.client != nil {
		return nil
	}
	cfg, err := config.Load(c.cfgFile)
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return err
	}

	c.cfg = cfg
	c.logger = logger
	c.client = service.NewClient(&http.Client{Timeout: cfg.HTTPTimeout}, cfg.Endpoints(), logger)
	c.sessions = session.NewManager(c.client, store.SessionStore{}, logger)
	return nil
}

// api returns a client carrying the current session.
func (c *cli) api() *service.Client {
	return c.client.WithSession(c.sessions.Current())
}

func (c *cli) close() {
	if c.logger != nil {
		_ = c.logger.Sync()
	}
}

func (c *cli) versionString() string {
	v := fmt.Sprintf("%s %s", appName, c.version)
	if c.commit != "none" && c.commit != "" {
		v += fmt.Sprintf(" (%s)", c.commit)
	}
	return v
}

func newVersionCommand(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Args:  cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), c.versionString())
		},
	}
}

// failure turns err into the line printed for the user: the server's own message when it
// sent one, otherwise fallback with the cause attached.
func failure(err error, fallback string) error {
	if errors.Is(err, service.ErrLoginRequired) {
		return errors.New("login required: run `ktx login` first")
	}
	var apiErr *service.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return errors.New(apiErr.Message)
	}
	return fmt.Errorf("%s: %w", fallback, err)
}

func parseID(arg string, what string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s id %q", what, arg)
	}
	return id, nil
}
