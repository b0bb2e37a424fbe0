package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/echonote/internal/infrastructure/config"
	"github.com/emiliopalmerini/echonote/internal/infrastructure/logging"
)

var rootCmd = &cobra.Command{
	Use:   "echonote",
	Short: "Audio transcription service and history browser",
	Long: `echonote turns uploaded audio into text through Deepgram and keeps a
searchable history of every transcript.

Run "echonote serve" to start the web app and API, then use "echonote
transcribe" and "echonote history" against it from the terminal.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

var (
	configPath string

	cfg    *config.Config
	logger *slog.Logger
)

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML config file")
}

func loadConfig(cmd *cobra.Command, args []string) error {
	c, err := config.Load(configPath)
	if err != nil {
		return err
	}

	l, err := logging.New(cmd.ErrOrStderr(), c.Log.Level, c.Log.Format)
	if err != nil {
		return err
	}
	slog.SetDefault(l)

	cfg, logger = c, l
	return nil
}
