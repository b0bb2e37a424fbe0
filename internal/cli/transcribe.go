package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/echonote/internal/browser"
	"github.com/emiliopalmerini/echonote/internal/domain"
)

var transcribeCmd = &cobra.Command{
	Use:   "transcribe <file>",
	Short: "Upload an audio file to a running server and print the transcript",
	Long: `Upload an MP3, WAV or M4A file to an echonote server and print the
transcript it returns. The MIME type is taken from the file extension.

Examples:
  echonote transcribe memo.m4a
  echonote transcribe call.mp3 --server http://echonote.internal:5000`,
	Args: cobra.ExactArgs(1),
	RunE: runTranscribe,
}

var transcribeServer string

func init() {
	rootCmd.AddCommand(transcribeCmd)
	transcribeCmd.Flags().StringVar(&transcribeServer, "server", defaultServerURL, "echonote server URL")
}

func runTranscribe(cmd *cobra.Command, args []string) error {
	path := args[0]
	out := cmd.OutOrStdout()

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open audio file: %w", err)
	}
	defer f.Close()

	client := browser.NewClient(transcribeServer, nil)
	res, err := client.Upload(cmd.Context(), path, domain.MIMETypeForFile(path), f)

	var apiErr *browser.APIError
	if err != nil && res != nil && errors.As(err, &apiErr) {
		// Transcribed but not stored: still show the text.
		fmt.Fprintln(out, res.Transcription)
		return fmt.Errorf("%s (%s was not saved)", apiErr.Message, res.Filename)
	}
	if err != nil {
		return err
	}

	fmt.Fprintln(out, res.Transcription)
	logger.Info("transcription stored", "filename", res.Filename, "id", res.ID)
	return nil
}
