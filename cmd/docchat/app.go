package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ethanbaker/docchat/internal/orchestrator"
	"github.com/ethanbaker/docchat/pkg/auth"
	"github.com/ethanbaker/docchat/pkg/resource"
	"github.com/ethanbaker/docchat/pkg/sdk"
	"github.com/ethanbaker/docchat/pkg/store"
	"github.com/ethanbaker/docchat/pkg/transcript"
	"github.com/ethanbaker/docchat/pkg/utils"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"
)

// app wires the client core for a single command invocation
type app struct {
	cfg     *utils.Config
	logger  *zap.Logger
	store   store.Store
	session *auth.Session
	binder  *resource.Binder
	orch    *orchestrator.Orchestrator
	nav     *hintNavigator

	start orchestrator.View // view reached by restoring state
}

func newApp(cmd *cobra.Command) (*app, error) {
	envFile, _ := cmd.Flags().GetString("env-file")
	cfg, err := utils.NewConfigFromEnv(envFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration: %w", err)
	}

	logger, err := utils.NewLogger(cfg)
	if err != nil {
		return nil, err
	}

	s, err := store.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open state store: %w", err)
	}

	session := auth.NewSession(s, logger)
	client := sdk.NewClient(cfg.BackendURL(), session, session,
		sdk.WithTimeout(cfg.RequestTimeout()),
		sdk.WithLogger(logger),
	)
	binder := resource.NewBinder(s, client, logger)
	nav := &hintNavigator{w: cmd.ErrOrStderr()}

	orch, err := orchestrator.New(orchestrator.Options{
		Session:    session,
		Backend:    client,
		Binder:     binder,
		Transcript: transcript.New(),
		Navigator:  nav,
		Logger:     logger,
		Greeting:   cfg.GreetingEnabled(),
	})
	if err != nil {
		s.Close()
		return nil, err
	}

	a := &app{
		cfg:     cfg,
		logger:  logger,
		store:   s,
		session: session,
		binder:  binder,
		orch:    orch,
		nav:     nav,
	}

	// Restoring state is silent; hints are for transitions the user caused
	a.start = orch.Start(cmd.Context())
	nav.enabled = true

	return a, nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		a.logger.Warn("failed to close state store", zap.Error(err))
	}
	_ = a.logger.Sync()
}

// withApp runs fn with a wired app and closes it afterwards
func withApp(fn func(cmd *cobra.Command, args []string, a *app) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()
		return fn(cmd, args, a)
	}
}

// hintNavigator turns navigation directives into next-step hints
type hintNavigator struct {
	w       io.Writer
	enabled bool
}

func (n *hintNavigator) Goto(v orchestrator.View) {
	if !n.enabled {
		return
	}

	switch v {
	case orchestrator.ViewLanding:
		fmt.Fprintln(n.w, "You are signed out. Run 'docchat signin' to continue.")
	case orchestrator.ViewSignIn:
		fmt.Fprintln(n.w, "Run 'docchat signin' to sign in.")
	case orchestrator.ViewUpload:
		fmt.Fprintln(n.w, "Upload a PDF with 'docchat upload <file>' or add a video with 'docchat video <url>'.")
	case orchestrator.ViewConversation:
		fmt.Fprintln(n.w, "Ask with 'docchat ask <question>' or start a conversation with 'docchat chat'.")
	}
}

// prompt reads one line from in
func prompt(cmd *cobra.Command, in *bufio.Reader, label string) (string, error) {
	fmt.Fprint(cmd.ErrOrStderr(), label)

	line, err := in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", fmt.Errorf("failed to read %s: %w", strings.TrimSuffix(strings.ToLower(label), ": "), err)
	}
	return strings.TrimSpace(line), nil
}

// promptPassword reads a password without echo when attached to a terminal
func promptPassword(cmd *cobra.Command, in *bufio.Reader, label string) (string, error) {
	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(cmd.ErrOrStderr(), label)
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return string(b), nil
	}
	return prompt(cmd, in, label)
}
