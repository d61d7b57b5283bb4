package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/epuerta/codex-patch/internal/config"
	"github.com/epuerta/codex-patch/internal/logging"
)

var (
	// Version is set during build
	Version = "dev"
	// GitCommit is set during build
	GitCommit = "none"
	// BuildDate is set during build
	BuildDate = "unknown"
)

// app carries what every subcommand needs once flags and config are resolved
type app struct {
	cfg    *config.Config
	logger logging.Logger
}

func newApp() *app {
	return &app{logger: logging.NewNilLogger()}
}

// newRootCmd builds the command tree around a
func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "codex-patch",
		Short: "Apply V4A patch operations to a workspace",
		Long: `codex-patch applies create, update and delete operations written in the
V4A diff format to files under a workspace root.

Examples:
  codex-patch apply ops.json
  cat ops.json | codex-patch apply --dry-run
  codex-patch diff main.go fix.diff
  codex-patch watch ./inbox --root ./project`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
	}

	rootCmd.PersistentFlags().String("config", "", "Path to a config file (default: ~/.codex-patch/config.yaml)")
	rootCmd.PersistentFlags().StringP("root", "r", "", "Workspace root every operation is confined to (default: current directory)")

	// Add logging flags
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging to a file")
	rootCmd.PersistentFlags().String("log-file", "", "Path to the log file (default: ~/.cache/codex-patch/logs/codex-patch-<timestamp>.log)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log to stderr")

	rootCmd.AddCommand(
		applyCmd(a),
		diffCmd(a),
		previewCmd(a),
		watchCmd(a),
		historyCmd(a),
		toolSchemaCmd(a),
		toolCallCmd(a),
		completionCmd(),
	)

	return rootCmd
}

// addApplyFlags registers the flags shared by commands that write files
func addApplyFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("dry-run", false, "Compute every change but write nothing")
	cmd.Flags().Bool("confirm", false, "Ask before each change is written")
	cmd.Flags().String("journal", "", "Path to the operation journal (default: ~/.codex-patch/journal.db)")
	cmd.Flags().Bool("no-journal", false, "Do not record operations")
	cmd.Flags().Int("fuzz-warn", config.DefaultFuzzWarnThreshold, "Warn when context matching needs at least this much fuzz (negative disables)")
}

// init loads configuration and sets up the logger
func (a *app) init(cmd *cobra.Command) error {
	cfg, err := config.LoadWithFlags(cmd.Flags())
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}
	if noJournal, _ := cmd.Flags().GetBool("no-journal"); noJournal {
		cfg.JournalPath = ""
	}
	a.cfg = cfg

	verbose, _ := cmd.Flags().GetBool("verbose")
	switch {
	case cfg.Debug:
		logPath := cfg.LogFile
		if logPath == "" {
			logPath = defaultLogPath(cmd)
		}
		fileLogger, err := logging.NewFileLogger(logPath)
		if err != nil {
			return fmt.Errorf("error creating file logger: %w", err)
		}
		a.logger = fileLogger
		createLatestLogSymlink(cmd, a.logger, logPath)

		a.logger.Log("--- codex-patch %s --- Version: %s, Commit: %s, Built: %s", cmd.Name(), Version, GitCommit, BuildDate)
		a.logger.Log("Debug logging enabled. Log file: %s", logPath)
	case verbose:
		a.logger = logging.NewWriterLogger(cmd.ErrOrStderr())
	}

	a.logger.Log("Config loaded: Root=%s, DryRun=%v, Confirm=%v, Journal=%s", cfg.Root, cfg.DryRun, cfg.Confirm, cfg.JournalPath)
	return nil
}

func (a *app) close() {
	if a.logger == nil {
		return
	}
	if err := a.logger.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Error closing logger: %v\n", err)
	}
}

// completionCmd creates the completion command for shell completion scripts
func completionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for codex-patch.
To load completions:

Bash:
  $ source <(codex-patch completion bash)

Zsh:
  $ source <(codex-patch completion zsh)

Fish:
  $ codex-patch completion fish | source
`,
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"bash", "zsh", "fish"},
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(cmd.OutOrStdout())
			case "zsh":
				return cmd.Root().GenZshCompletion(cmd.OutOrStdout())
			default:
				return cmd.Root().GenFishCompletion(cmd.OutOrStdout(), true)
			}
		},
	}

	return cmd
}

func defaultLogPath(cmd *cobra.Command) string {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: Could not get user cache directory: %v. Logging to current dir.\n", err)
		cacheDir = "."
	}
	logDir := filepath.Join(cacheDir, "codex-patch", "logs")
	logFile := fmt.Sprintf("codex-patch-%s.log", time.Now().Format("20060102-150405"))
	return filepath.Join(logDir, logFile)
}

// createLatestLogSymlink attempts to create or update the latest.log symlink.
func createLatestLogSymlink(cmd *cobra.Command, logger logging.Logger, logPath string) {
	if runtime.GOOS == "windows" {
		// Symlinks are tricky on Windows, skip for now.
		return
	}
	linkPath := filepath.Join(filepath.Dir(logPath), "latest.log")

	_ = os.Remove(linkPath)
	if err := os.Symlink(filepath.Base(logPath), linkPath); err != nil {
		// Log the error but don't fail the application
		logger.Log("Warning: Failed to create/update latest.log symlink: %v", err)
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: Failed to create/update latest.log symlink: %v\n", err)
	}
}

func run() int {
	a := newApp()
	defer a.close()

	if err := newRootCmd(a).Execute(); err != nil {
		a.logger.Log("Command execution failed: %v", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// main is the entry point of the application
func main() {
	os.Exit(run())
}
