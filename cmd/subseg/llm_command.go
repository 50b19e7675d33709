package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"subseg/internal/preflight"
)

func newLLMCommand(sess *session) *cobra.Command {
	llmCmd := &cobra.Command{
		Use:   "llm",
		Short: "Text-generation service utilities",
	}
	llmCmd.AddCommand(newLLMCheckCommand(sess))
	return llmCmd
}

func newLLMCheckCommand(sess *session) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify the configured LLM endpoint answers JSON requests",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := sess.load()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			settings := cfg.GetLLM()
			fmt.Fprintln(out, renderStatusLine("Endpoint", statusInfo, settings.BaseURL, colorize))

			result := preflight.CheckLLM(cmd.Context(), "LLM", settings)
			fmt.Fprintln(out, renderCheck(result, colorize))
			if !result.Passed {
				return errors.New("llm check failed")
			}
			return nil
		},
	}
}

func newCheckCommand(sess *session) *cobra.Command {
	var input string

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check paths, engines, cache, and LLM access before a run",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := sess.load()
			if err != nil {
				return err
			}
			if input != "" {
				path, err := expandInput(input)
				if err != nil {
					return err
				}
				cfg.Input.Path = path
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			for _, line := range renderSectionHeader("Preflight", colorize) {
				fmt.Fprintln(out, line)
			}
			results := preflight.RunAll(cmd.Context(), cfg)
			for _, r := range results {
				fmt.Fprintln(out, renderCheck(r, colorize))
			}
			if !preflight.Ready(results) {
				return errors.New("preflight checks failed")
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "Transcript file to check")
	return cmd
}

func renderCheck(r preflight.Result, colorize bool) string {
	kind := statusOK
	switch {
	case r.Passed:
	case r.Optional:
		kind = statusWarn
	default:
		kind = statusError
	}
	return renderStatusLine(r.Name, kind, r.Detail, colorize)
}
