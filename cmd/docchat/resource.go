package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newUploadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload a PDF and make it the resource under discussion",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			binding, err := a.orch.UploadDocumentFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Uploaded %s.\n", binding.DisplayName)
			if binding.AccessURL != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "View it at %s\n", binding.AccessURL)
			}
			return nil
		}),
	}
}

func newVideoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "video <youtube-url>",
		Short: "Register a YouTube video and make it the resource under discussion",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			binding, err := a.orch.RegisterVideo(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Loaded video %s.\nWatch it at %s\n", binding.StorageKey, binding.AccessURL)
			return nil
		}),
	}
}

func newDocURLCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doc-url",
		Short: "Print a fresh link to the bound resource",
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			url, err := a.orch.ResolveAccessURL(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), url)
			return nil
		}),
	}
}

func newClearContextCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear-context",
		Short: "Delete every uploaded resource on the server and unbind locally",
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			if err := a.orch.DeleteContext(cmd.Context()); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Context cleared.")
			return nil
		}),
	}
}
