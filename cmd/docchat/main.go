package main

import (
	"fmt"
	"os"

	"github.com/ethanbaker/docchat/internal/orchestrator"
	"github.com/ethanbaker/docchat/pkg/utils"
	"github.com/spf13/cobra"
)

// Version info set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "docchat",
		Short:         "docchat: ask questions about your documents and videos",
		Long:          "docchat uploads a PDF or registers a YouTube video with the question-answering backend and lets you chat about it.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().String("env-file", utils.EnvFile(), "path to .env file")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newSignUpCmd())
	cmd.AddCommand(newSignInCmd())
	cmd.AddCommand(newSignInGoogleCmd())
	cmd.AddCommand(newSignOutCmd())
	cmd.AddCommand(newStatusCmd())
	cmd.AddCommand(newProfileCmd())
	cmd.AddCommand(newUploadCmd())
	cmd.AddCommand(newVideoCmd())
	cmd.AddCommand(newDocURLCmd())
	cmd.AddCommand(newClearContextCmd())
	cmd.AddCommand(newAskCmd())
	cmd.AddCommand(newChatCmd())
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "docchat %s (commit: %s, built: %s)\n", Version, Commit, Date)
		},
	}
}

func execute(cmd *cobra.Command) int {
	if err := cmd.Execute(); err != nil {
		msg := orchestrator.Notice(err)
		if msg == "" {
			msg = err.Error()
		}
		fmt.Fprintln(cmd.ErrOrStderr(), "Error:", msg)
		return 1
	}
	return 0
}

func main() {
	os.Exit(execute(newRootCmd()))
}
