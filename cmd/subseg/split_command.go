package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"subseg/internal/config"
	"subseg/internal/language"
	"subseg/internal/logging"
	"subseg/internal/pipeline"
)

type splitFlags struct {
	input       string
	column      string
	sheet       string
	outputDir   string
	language    string
	engine      string
	maxLength   int
	workers     int
	noComma     bool
	noConnector bool
	noLongSplit bool
	noSemantic  bool
	resume      bool
	printOutput bool
}

func newSplitCommand(sess *session) *cobra.Command {
	var flags splitFlags

	cmd := &cobra.Command{
		Use:   "split [input]",
		Short: "Split a transcript into subtitle segments",
		Long: "Split a transcript (.xlsx, .csv, or .txt) into sentences, clause fragments, and\n" +
			"length-bounded segments. Each stage writes split_by_<stage>.txt to the output\n" +
			"directory; --resume continues from the furthest checkpoint produced under the\n" +
			"same settings.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				flags.input = args[0]
			}
			cfg, err := sess.load()
			if err != nil {
				return err
			}
			if err := applySplitFlags(cmd, cfg, flags); err != nil {
				return err
			}

			logger, err := sess.logger(cfg, "cli-split")
			if err != nil {
				return err
			}
			logging.PruneLogs(logger, cfg.Paths.LogDir, "*.log", cfg.Logging.RetentionDays,
				filepath.Join(cfg.Paths.LogDir, logging.LogFileName))

			coordinator, closer, err := pipeline.Build(cfg, logger)
			if err != nil {
				return err
			}
			defer func() {
				if err := closer(); err != nil {
					logger.Warn("failed to close llm cache", logging.Error(err))
				}
			}()

			result, err := coordinator.Run(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if flags.printOutput {
				for _, line := range result.Lines {
					fmt.Fprintln(out, line)
				}
				return nil
			}
			printSplitSummary(out, cfg, result, shouldColorize(out))
			return nil
		},
	}

	cmd.Flags().StringVarP(&flags.input, "input", "i", "", "Transcript file (.xlsx, .csv, .txt)")
	cmd.Flags().StringVar(&flags.column, "column", "", "Column holding transcript text")
	cmd.Flags().StringVar(&flags.sheet, "sheet", "", "Worksheet name for .xlsx input")
	cmd.Flags().StringVarP(&flags.outputDir, "output-dir", "o", "", "Directory for checkpoint files")
	cmd.Flags().StringVarP(&flags.language, "language", "l", "", "Transcript language code (en, zh, ja, ...)")
	cmd.Flags().StringVar(&flags.engine, "engine", "", "Linguistic engine: auto, prose, or rules")
	cmd.Flags().IntVar(&flags.maxLength, "max-length", 0, "Length budget per segment (words, or characters for unspaced scripts)")
	cmd.Flags().IntVarP(&flags.workers, "workers", "w", 0, "Concurrent semantic split requests")
	cmd.Flags().BoolVar(&flags.noComma, "no-comma", false, "Skip the comma stage")
	cmd.Flags().BoolVar(&flags.noConnector, "no-connector", false, "Skip the connector stage")
	cmd.Flags().BoolVar(&flags.noLongSplit, "no-long-split", false, "Pass sentences through the nlp stage without length splits")
	cmd.Flags().BoolVar(&flags.noSemantic, "no-semantic", false, "Skip the semantic stage")
	cmd.Flags().BoolVar(&flags.resume, "resume", false, "Resume from the furthest existing checkpoint")
	cmd.Flags().BoolVar(&flags.printOutput, "print", false, "Print the final segments instead of a summary")
	return cmd
}

func applySplitFlags(cmd *cobra.Command, cfg *config.Config, flags splitFlags) error {
	changed := cmd.Flags().Changed
	if strings.TrimSpace(flags.input) != "" {
		path, err := expandInput(flags.input)
		if err != nil {
			return err
		}
		cfg.Input.Path = path
	}
	if strings.TrimSpace(flags.column) != "" {
		cfg.Input.Column = strings.TrimSpace(flags.column)
	}
	if strings.TrimSpace(flags.sheet) != "" {
		cfg.Input.Sheet = strings.TrimSpace(flags.sheet)
	}
	if strings.TrimSpace(flags.outputDir) != "" {
		dir, err := config.ExpandPath(strings.TrimSpace(flags.outputDir))
		if err != nil {
			return fmt.Errorf("resolve output dir: %w", err)
		}
		cfg.Paths.OutputDir = dir
	}
	if strings.TrimSpace(flags.language) != "" {
		lang := language.Normalize(flags.language)
		if lang == "" {
			return fmt.Errorf("unrecognized language %q", flags.language)
		}
		cfg.Split.Language = lang
	}
	if strings.TrimSpace(flags.engine) != "" {
		cfg.Split.NLPEngine = strings.ToLower(strings.TrimSpace(flags.engine))
	}
	if changed("max-length") {
		cfg.Split.MaxSplitLength = flags.maxLength
	}
	if changed("workers") {
		cfg.Split.MaxWorkers = flags.workers
	}
	if flags.noComma {
		cfg.Split.Comma = false
	}
	if flags.noConnector {
		cfg.Split.Connector = false
	}
	if flags.noLongSplit {
		cfg.Split.LongSplit = false
	}
	if flags.noSemantic {
		cfg.Split.Semantic = false
	}
	if flags.resume {
		cfg.Split.Resume = true
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid split options: %w", err)
	}
	return nil
}

func printSplitSummary(out io.Writer, cfg *config.Config, result pipeline.Result, colorize bool) {
	for _, line := range renderSectionHeader("Split summary", colorize) {
		fmt.Fprintln(out, line)
	}
	rows := make([][]string, 0, len(result.Stages))
	for _, sr := range result.Stages {
		rows = append(rows, []string{
			string(sr.Stage),
			stageStatus(sr),
			countCell(sr.Status, sr.In),
			countCell(sr.Status, sr.Out),
			countCell(sr.Status, sr.Splits()),
			countCell(sr.Status, sr.Failed),
			durationCell(sr),
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Stage", "Status", "In", "Out", "Splits", "Failed", "Time"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight},
	))

	for _, sr := range result.Stages {
		if sr.Failed > 0 {
			note := fmt.Sprintf("%d units kept unsplit after engine or service failures", sr.Failed)
			fmt.Fprintln(out, renderStatusLine(string(sr.Stage), stageKind(sr), note, colorize))
		}
	}

	kind := statusOK
	message := fmt.Sprintf("%d segments", len(result.Lines))
	if cfg.Split.Semantic && !cfg.SemanticReady() {
		kind = statusWarn
		message += " (semantic stage skipped: no api key)"
	}
	fmt.Fprintln(out, renderStatusLine("Result", kind, message, colorize))
	fmt.Fprintln(out, renderStatusLine("Output", statusInfo, result.Output, colorize))
	fmt.Fprintln(out, renderStatusLine("Run", statusInfo, result.RunID, colorize))
	if result.Usage.Requests > 0 {
		usage := fmt.Sprintf("%d requests, %d retries, %d/%d tokens",
			result.Usage.Requests, result.Usage.Retries,
			result.Usage.PromptTokens, result.Usage.CompletionTokens)
		fmt.Fprintln(out, renderStatusLine("LLM usage", statusInfo, usage, colorize))
	}
}

func stageStatus(sr pipeline.StageResult) string {
	if sr.Note != "" {
		return sr.Status + " (" + sr.Note + ")"
	}
	return sr.Status
}

func countCell(status string, n int) string {
	if status != pipeline.StatusRan {
		return "-"
	}
	return strconv.Itoa(n)
}

func durationCell(sr pipeline.StageResult) string {
	if sr.Status != pipeline.StatusRan {
		return "-"
	}
	return sr.Duration.Round(time.Millisecond).String()
}

func expandInput(path string) (string, error) {
	expanded, err := config.ExpandPath(strings.TrimSpace(path))
	if err != nil {
		return "", fmt.Errorf("resolve input path: %w", err)
	}
	return expanded, nil
}
