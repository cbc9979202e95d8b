package cmd

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"ktx-reserve-cli/model"
)

func newLoginCommand(c *cli) *cobra.Command {
	var username string
	var passwordStdin bool

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and remember the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			username, err := askIfEmpty(username, "Username")
			if err != nil {
				return err
			}
			password, err := c.password(cmd, passwordStdin)
			if err != nil {
				return err
			}

			s, err := c.sessions.Login(cmd.Context(), model.Credentials{Username: username, Password: password})
			if err != nil {
				return failure(err, "login failed")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s (user %d).\n", s.Username, s.UserId)
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "username")
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "read the password from standard input")
	return cmd
}

func newSignupCommand(c *cli) *cobra.Command {
	var req model.SignUpRequest
	var passwordStdin bool

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if req.Username, err = askIfEmpty(req.Username, "Username"); err != nil {
				return err
			}
			if req.Password, err = c.password(cmd, passwordStdin); err != nil {
				return err
			}
			if req.Name, err = askIfEmpty(req.Name, "Name"); err != nil {
				return err
			}
			if req.Email, err = askIfEmpty(req.Email, "Email"); err != nil {
				return err
			}

			if err := c.sessions.SignUp(cmd.Context(), req); err != nil {
				return failure(err, "sign up failed")
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Account created. Run `ktx login` to continue.")
			return nil
		},
	}
	cmd.Flags().StringVarP(&req.Username, "username", "u", "", "username")
	cmd.Flags().StringVar(&req.Name, "name", "", "full name")
	cmd.Flags().StringVar(&req.Email, "email", "", "email address")
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "read the password from standard input")
	return cmd
}

func (c *cli) password(cmd *cobra.Command, fromStdin bool) (string, error) {
	if fromStdin {
		return readSecret(cmd.InOrStdin())
	}
	return askSecret("Password")
}

func newLogoutCommand(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !c.sessions.LoggedIn() {
				fmt.Fprintln(cmd.OutOrStdout(), "Not logged in.")
				return nil
			}
			if err := c.sessions.Logout(); err != nil {
				return fmt.Errorf("logout: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
			return nil
		},
	}
}

func newMeCommand(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Show your profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := c.api().GetProfile(cmd.Context())
			if err != nil {
				return failure(err, "failed to load profile")
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Hello, %s\n", user.DisplayName())
			t := table.NewWriter()
			t.SetOutputMirror(out)
			t.AppendRows([]table.Row{
				{"User ID", user.Id},
				{"Username", orDash(user.Username)},
				{"Name", orDash(user.Name)},
				{"Email", orDash(user.Email)},
			})
			t.Render()
			return nil
		},
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
