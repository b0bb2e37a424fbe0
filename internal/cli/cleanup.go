package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/echonote/internal/adapters/storage"
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Delete stale upload files",
	Long: `Delete transient audio files left in UPLOAD_DIR by interrupted uploads.

Examples:
  echonote cleanup                          # Delete files older than 1h
  echonote cleanup --older-than 24h         # Only files older than a day
  echonote cleanup --older-than 0 --dry-run # Preview every file`,
	Args: cobra.NoArgs,
	RunE: runCleanup,
}

var (
	cleanupOlderThan time.Duration
	cleanupDryRun    bool
)

func init() {
	rootCmd.AddCommand(cleanupCmd)

	cleanupCmd.Flags().DurationVar(&cleanupOlderThan, "older-than", time.Hour, "Only delete files last modified before this long ago")
	cleanupCmd.Flags().BoolVar(&cleanupDryRun, "dry-run", false, "Preview what would be deleted")
}

func runCleanup(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	if cleanupOlderThan < 0 {
		return errors.New("--older-than must not be negative")
	}
	if cfg.Server.UploadDir == "" {
		return errors.New("UPLOAD_DIR is required")
	}

	blobs, err := storage.NewBlobStore(cfg.Server.UploadDir, 0)
	if err != nil {
		return err
	}

	swept, err := blobs.Sweep(cmd.Context(), cleanupOlderThan, cleanupDryRun)
	if err != nil {
		return err
	}

	if len(swept) == 0 {
		fmt.Fprintln(out, "No files to delete")
		return nil
	}

	if cleanupDryRun {
		fmt.Fprintf(out, "Would delete %d file(s):\n", len(swept))
		for _, name := range swept {
			fmt.Fprintf(out, "  - %s\n", name)
		}
		return nil
	}

	fmt.Fprintf(out, "Deleted %d file(s) from %s\n", len(swept), blobs.Dir())
	return nil
}
