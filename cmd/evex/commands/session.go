package commands

import (
	"errors"
	"fmt"
	"os"

	"evex/pkg/fetch"
	"evex/pkg/forms"
	"evex/pkg/guard"
	"evex/pkg/models"
	"evex/pkg/session"

	"github.com/spf13/cobra"
)

func newLoginCommand(app *cli) *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "login <username>",
		Short: "Sign in and keep the tokens in the token file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				password = os.Getenv("EVEX_PASSWORD")
			}
			req, err := forms.Login(models.LoginRequest{Username: args[0], Password: password})
			var ferrs forms.Errors
			if errors.As(err, &ferrs) {
				return errors.New(ferrs.Message())
			}

			role, err := app.entry.Holder.Login(cmd.Context(), req.Username, req.Password)
			if err != nil {
				return errors.New(fetch.Or(err, "Invalid username or password"))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s (%s). Dashboard: %s\n", req.Username, role, guard.AreaPath(role))
			return nil
		},
	}

	cmd.Flags().StringVarP(&password, "password", "p", "", "password (default $EVEX_PASSWORD)")
	return cmd
}

func newLogoutCommand(app *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored tokens",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.entry.Holder.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
			return nil
		},
	}
}

func newWhoamiCommand(app *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.ensure(cmd.Context())
			out := cmd.OutOrStdout()
			switch st := s.(type) {
			case session.Authenticated:
				u := st.User
				fmt.Fprintf(out, "%s (%s) [%s] %s\n", u.DisplayName(), u.Username, u.Role(), u.Email)
			case session.Anonymous:
				fmt.Fprintln(out, "Not logged in.")
			default:
				return errors.New(fetch.Message(err))
			}
			return nil
		},
	}
}

// signedIn fails with a hint unless the session is authenticated.
func signedIn(cmd *cobra.Command, app *cli) error {
	s, err := app.ensure(cmd.Context())
	switch d := guard.Authenticated(s); d.Kind {
	case guard.Allow:
		return nil
	case guard.Loading:
		return errors.New(fetch.Message(err))
	}
	return errors.New("not logged in, run `evex login <username>` first")
}
