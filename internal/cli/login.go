package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vietddude/authkit/internal/control"
	"github.com/vietddude/authkit/internal/core/apperr"
	"github.com/vietddude/authkit/internal/core/config"
	"github.com/vietddude/authkit/internal/core/present"
)

var (
	loginEmail    string
	loginPassword string
	loginCode     string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and store the session",
	Run: func(cmd *cobra.Command, args []string) {
		if loginPassword == "" {
			loginPassword = os.Getenv("AUTHKIT_PASSWORD")
		}
		withApp(func(ctx context.Context, app *control.App) error {
			res, err := app.Client.Login(ctx, loginEmail, loginPassword)
			if err != nil {
				return err
			}
			if res.TwoFactorRequired {
				if loginCode == "" {
					return apperr.AuthenticationError{
						Base:   apperr.NewBase("A second factor is required. Run again with --code", nil),
						Reason: "two_factor_required",
					}
				}
				if res, err = app.Client.VerifyTwoFactor(ctx, res.ChallengeToken, loginCode); err != nil {
					return err
				}
			}
			if res.User != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s\n", res.User.Email)
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "Signed in")
			}
			return nil
		})
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Revoke and forget the stored session",
	Run: func(cmd *cobra.Command, args []string) {
		withApp(func(ctx context.Context, app *control.App) error {
			if err := app.Client.Logout(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
			return nil
		})
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in account",
	Run: func(cmd *cobra.Command, args []string) {
		withApp(func(ctx context.Context, app *control.App) error {
			u, err := app.Client.CurrentUser(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", u.Email, u.ID)
			return nil
		})
	},
}

func init() {
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "account email")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "account password (or AUTHKIT_PASSWORD)")
	loginCmd.Flags().StringVar(&loginCode, "code", "", "second-factor code")
	_ = loginCmd.MarkFlagRequired("email")

	rootCmd.AddCommand(loginCmd, logoutCmd, whoamiCmd)
}

// withApp builds the app, runs fn until SIGINT/SIGTERM and presents any
// failure on stderr.
func withApp(fn func(ctx context.Context, app *control.App) error) {
	cfg := loadConfig()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := newApp(ctx, cfg)
	if err != nil {
		slog.Error("Failed to initialize", "error", err)
		os.Exit(1)
	}

	err = fn(ctx, app)
	app.Close()
	if err == nil {
		return
	}

	ce, ok := apperr.As(err)
	if !ok {
		slog.Info("Interrupted", "error", err)
		os.Exit(130)
	}
	app.Dispatcher.Dispatch(ctx, ce)
	os.Exit(1)
}

func newApp(ctx context.Context, cfg *config.AppConfig) (*control.App, error) {
	return control.NewApp(ctx, cfg, present.WriterPresenter{W: os.Stderr})
}
