package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ethanbaker/docchat/internal/orchestrator"
	"github.com/ethanbaker/docchat/pkg/errs"
	"github.com/ethanbaker/docchat/pkg/resource"
	"github.com/ethanbaker/docchat/pkg/transcript"
	"github.com/ethanbaker/docchat/pkg/utils"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newAskCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask one question about the bound resource",
		Args:  cobra.MinimumNArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			turn, err := a.orch.Ask(cmd.Context(), strings.Join(args, " "))
			if turn.Text != "" {
				fmt.Fprintln(cmd.OutOrStdout(), turn.Text)
			}
			return err
		}),
	}
}

func newChatCmd() *cobra.Command {
	var exportPath string

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive conversation about the bound resource",
		Long:  "Starts a conversation about the bound resource. Type 'exit' to quit, '/url' for a fresh link and '/export <file>' to save the transcript.",
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			if _, ok := a.orch.Binding(); !ok {
				if a.start == orchestrator.ViewLanding {
					return errs.ErrUnauthorized
				}
				return errs.ErrNotBound
			}

			if refresher := startRefresher(a); refresher != nil {
				defer refresher.Stop()
			}

			err := startInteractiveSession(cmd.Context(), a.orch, cmd.InOrStdin(), cmd.OutOrStdout())

			if exportPath != "" {
				if exportErr := exportTranscript(a.orch, exportPath); exportErr != nil {
					return exportErr
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Transcript saved to %s\n", exportPath)
			}
			return err
		}),
	}

	cmd.Flags().StringVar(&exportPath, "export", "", "write the transcript as YAML to this file on exit")
	return cmd
}

// startRefresher keeps the bound document's link fresh while chatting
func startRefresher(a *app) *resource.Refresher {
	spec := a.cfg.Get(utils.KeyAccessURLRefresh)
	if spec == "" {
		return nil
	}

	r, err := resource.NewRefresher(a.binder, spec, a.cfg.RequestTimeout(), a.logger)
	if err != nil {
		a.logger.Warn("access url refresh disabled", zap.String("schedule", spec), zap.Error(err))
		return nil
	}
	r.Start()
	return r
}

// startInteractiveSession runs the question loop until 'exit', end of input
// or the session ends
func startInteractiveSession(ctx context.Context, o *orchestrator.Orchestrator, in io.Reader, out io.Writer) error {
	binding, _ := o.Binding()
	fmt.Fprintf(out, "Chatting about %s. Type 'exit' to quit.\n", binding.DisplayName)

	for _, turn := range o.Transcript() {
		printTurn(out, turn)
	}

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "\n> ")

		if !scanner.Scan() {
			break
		}

		input := strings.TrimSpace(scanner.Text())

		if input == "exit" {
			break
		}

		if input == "" {
			continue
		}

		if strings.HasPrefix(input, "/") {
			handleChatCommand(ctx, o, input, out)
			continue
		}

		turn, err := o.Ask(ctx, input)
		if turn.Text != "" {
			printTurn(out, turn)
		}
		if err != nil {
			if notice := orchestrator.Notice(err); notice != "" {
				fmt.Fprintf(out, "Error: %s\n", notice)
			}
			if errors.Is(err, errs.ErrUnauthorized) {
				return err
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading input: %w", err)
	}

	return nil
}

func handleChatCommand(ctx context.Context, o *orchestrator.Orchestrator, input string, out io.Writer) {
	name, arg, _ := strings.Cut(input, " ")
	arg = strings.TrimSpace(arg)

	switch name {
	case "/url":
		url, err := o.ResolveAccessURL(ctx)
		if err != nil {
			fmt.Fprintf(out, "Error: %s\n", orchestrator.Notice(err))
			return
		}
		fmt.Fprintln(out, url)
	case "/export":
		if arg == "" {
			fmt.Fprintln(out, "Usage: /export <file>")
			return
		}
		if err := exportTranscript(o, arg); err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			return
		}
		fmt.Fprintf(out, "Transcript saved to %s\n", arg)
	default:
		fmt.Fprintf(out, "Unknown command %s. Available: /url, /export <file>, exit\n", name)
	}
}

func exportTranscript(o *orchestrator.Orchestrator, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	return o.ExportTranscript(f)
}

func printTurn(out io.Writer, turn transcript.Turn) {
	switch turn.Role {
	case transcript.RoleAssistant:
		fmt.Fprintf(out, "Assistant: %s\n", turn.Text)
	default:
		fmt.Fprintf(out, "You: %s\n", turn.Text)
	}
}
