package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/echonote/internal/browser"
	"github.com/emiliopalmerini/echonote/internal/domain"
	"github.com/emiliopalmerini/echonote/internal/util"
)

const (
	defaultServerURL = "http://localhost:5000"
	previewWidth     = 60
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Browse, search, copy, export and delete transcripts",
	Long: `Browse the transcript history of a running echonote server.

Without action flags, lists transcripts newest first. --search filters the
list by transcript text, ignoring case.

Examples:
  echonote history                          # List everything
  echonote history --search standup         # Only matching transcripts
  echonote history --copy <id>              # Copy text to the clipboard
  echonote history --export <id>            # Write <filename>.txt
  echonote history --export <id> -o -       # Print the text
  echonote history --delete <id>            # Delete after confirmation
  echonote history --delete <id> --yes      # Delete without asking`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

var (
	historyServer string
	historySearch string
	historyCopy   string
	historyExport string
	historyOutput string
	historyDelete string
	historyYes    bool
)

// newHistoryBrowser is swapped in tests.
var newHistoryBrowser = func(server string) *browser.Browser {
	return browser.New(browser.NewClient(server, nil))
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().StringVar(&historyServer, "server", defaultServerURL, "echonote server URL")
	historyCmd.Flags().StringVar(&historySearch, "search", "", "Filter transcripts containing this text")
	historyCmd.Flags().StringVar(&historyCopy, "copy", "", "Copy the transcript with this ID to the clipboard")
	historyCmd.Flags().StringVar(&historyExport, "export", "", "Export the transcript with this ID as a text file")
	historyCmd.Flags().StringVarP(&historyOutput, "output", "o", "", "Export destination (default <filename>.txt, - for stdout)")
	historyCmd.Flags().StringVar(&historyDelete, "delete", "", "Delete the transcript with this ID")
	historyCmd.Flags().BoolVarP(&historyYes, "yes", "y", false, "Do not ask before deleting")

	historyCmd.MarkFlagsMutuallyExclusive("copy", "export", "delete")
}

func runHistory(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	b := newHistoryBrowser(historyServer)
	if err := b.Load(ctx); err != nil {
		return fmt.Errorf("failed to load transcriptions: %w", err)
	}

	switch {
	case historyCopy != "":
		if err := b.Copy(historyCopy); err != nil {
			return err
		}
		fmt.Fprintf(out, "Copied transcript %s to the clipboard\n", historyCopy)
		return nil

	case historyExport != "":
		return exportTranscript(b, historyExport, historyOutput, out)

	case historyDelete != "":
		confirm := confirmFromTerminal(os.Stdin, cmd.ErrOrStderr())
		if historyYes {
			confirm = func(domain.Transcript) bool { return true }
		}
		err := b.Delete(ctx, historyDelete, confirm)
		if errors.Is(err, browser.ErrCancelled) {
			fmt.Fprintln(out, "Cancelled")
			return nil
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Deleted transcript %s\n", historyDelete)
		return nil
	}

	b.SetSearch(historySearch)
	return printHistory(out, b.Visible(), historySearch)
}

func exportTranscript(b *browser.Browser, id, output string, stdout io.Writer) error {
	t, err := b.Find(id)
	if err != nil {
		return err
	}

	if output == "-" {
		if err := b.Export(stdout, id); err != nil {
			return err
		}
		fmt.Fprintln(stdout)
		return nil
	}

	if output == "" {
		output = filepath.Base(t.ExportName())
	}

	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	if err := b.Export(f, id); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	fmt.Fprintf(stdout, "Exported transcript %s to %s\n", id, output)
	return nil
}

func printHistory(w io.Writer, list []domain.Transcript, search string) error {
	if len(list) == 0 {
		if search != "" {
			fmt.Fprintf(w, "No transcriptions match %q\n", search)
		} else {
			fmt.Fprintln(w, "No transcriptions yet")
		}
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCREATED\tFILENAME\tTRANSCRIPT")
	for _, t := range list {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			t.ID,
			util.FormatDateTime(t.CreatedAt),
			t.Filename,
			util.Preview(t.ExportText(), previewWidth),
		)
	}
	return tw.Flush()
}
