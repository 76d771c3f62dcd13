package main

import (
	"bufio"
	"context"
	"fmt"
	"time"

	"github.com/ethanbaker/docchat/internal/callback"
	"github.com/ethanbaker/docchat/pkg/sdk"
	"github.com/spf13/cobra"
)

func newSignUpCmd() *cobra.Command {
	var req sdk.SignUpRequest

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account",
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			in := bufio.NewReader(cmd.InOrStdin())
			fields := []struct {
				value *string
				label string
			}{
				{&req.Username, "Username: "},
				{&req.Email, "Email: "},
				{&req.FullName, "Full name: "},
			}
			for _, f := range fields {
				if *f.value != "" {
					continue
				}
				v, err := prompt(cmd, in, f.label)
				if err != nil {
					return err
				}
				*f.value = v
			}
			if req.Password == "" {
				pw, err := promptPassword(cmd, in, "Password: ")
				if err != nil {
					return err
				}
				req.Password = pw
			}

			profile, err := a.orch.SignUp(cmd.Context(), &req)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Account created for %s.\n", profile.Username)
			return nil
		}),
	}

	cmd.Flags().StringVar(&req.Username, "username", "", "account username")
	cmd.Flags().StringVar(&req.Email, "email", "", "account email")
	cmd.Flags().StringVar(&req.FullName, "full-name", "", "your full name")
	cmd.Flags().StringVar(&req.Password, "password", "", "account password (prompted when omitted)")
	return cmd
}

func newSignInCmd() *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "signin",
		Short: "Sign in with a username and password",
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			in := bufio.NewReader(cmd.InOrStdin())
			if username == "" {
				v, err := prompt(cmd, in, "Username: ")
				if err != nil {
					return err
				}
				username = v
			}
			if password == "" {
				pw, err := promptPassword(cmd, in, "Password: ")
				if err != nil {
					return err
				}
				password = pw
			}

			if err := a.orch.SignIn(cmd.Context(), username, password); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s.\n", username)
			return nil
		}),
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "account username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password (prompted when omitted)")
	return cmd
}

func newSignInGoogleCmd() *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "signin-google",
		Short: "Sign in with Google in your browser",
		Long:  "Starts a local listener for the OAuth callback, prints the Google sign-in URL and waits for the browser to return.",
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			server := callback.New(a.orch, a.cfg, a.logger)
			callbackURL, err := server.Start()
			if err != nil {
				return err
			}
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				server.Shutdown(ctx)
			}()

			fmt.Fprintf(cmd.OutOrStdout(), "Open this URL in your browser to sign in:\n  %s\n", a.orch.GoogleLoginURL())
			fmt.Fprintf(cmd.ErrOrStderr(), "Waiting for the redirect to %s ...\n", callbackURL)

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			if err := server.Wait(ctx); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Signed in.")
			return nil
		}),
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Minute, "how long to wait for the browser")
	return cmd
}

func newSignOutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "signout",
		Short: "Sign out and forget the bound resource",
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			a.orch.SignOut(cmd.Context())
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
			return nil
		}),
	}
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the session and the bound resource",
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			out := cmd.OutOrStdout()

			cred, ok := a.session.Credential()
			if !ok {
				fmt.Fprintln(out, "Session:  signed out")
				return nil
			}

			fmt.Fprintf(out, "Session:  signed in (token %s", cred.Redacted())
			if !cred.IssuedAt.IsZero() {
				fmt.Fprintf(out, ", issued %s", cred.IssuedAt.Local().Format(time.RFC1123))
			}
			fmt.Fprintln(out, ")")

			binding, ok := a.orch.Binding()
			if !ok {
				fmt.Fprintln(out, "Resource: none")
				return nil
			}
			fmt.Fprintf(out, "Resource: %s (%s)\n", binding.DisplayName, binding.Kind)
			return nil
		}),
	}
}

func newProfileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "profile",
		Short: "Show the signed-in account",
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			profile, err := a.orch.Profile(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Username:  %s\n", profile.Username)
			fmt.Fprintf(out, "Email:     %s\n", profile.Email)
			fmt.Fprintf(out, "Full name: %s\n", profile.FullName)
			return nil
		}),
	}
}
