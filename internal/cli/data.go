package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	dataio "github.com/matzehuels/cardsheet/pkg/io"
)

// dataCommand creates the data backup command.
func (c *CLI) dataCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "data",
		Short: "Back up and restore forms, submissions and card settings",
	}

	cmd.AddCommand(c.dataExportCommand())
	cmd.AddCommand(c.dataImportCommand())

	return cmd
}

// dataExportCommand creates the "data export" subcommand.
func (c *CLI) dataExportCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write all documents to a JSON file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if output == "" {
				output = fmt.Sprintf("cardsheet-backup-%s.json", time.Now().Format("2006-01-02"))
			}
			return c.withStore(cmd.Context(), func(ctx context.Context, b *backends) error {
				d, err := dataio.ExportJSON(ctx, b.store, output)
				if err != nil {
					return err
				}
				printSuccess("Exported %d forms and %d submissions", len(d.Forms), len(d.Submissions))
				printFile(output)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: cardsheet-backup-<date>.json)")

	return cmd
}

// dataImportCommand creates the "data import" subcommand.
func (c *CLI) dataImportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Restore documents from a JSON backup",
		Long: `Restore documents from a JSON backup.

Documents get new ids in the target store. Forms whose name already exists are
skipped together with their submissions.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(args[0]); err != nil {
				return err
			}
			return c.withStore(cmd.Context(), func(ctx context.Context, b *backends) error {
				st := startStage(loggerFromContext(ctx), "backup restored")
				stats, err := dataio.ImportJSON(ctx, b.store, args[0])
				if err != nil {
					return err
				}
				st.done("file", args[0], "forms", stats.Forms, "submissions", stats.Submissions)
				printSuccess("Restored %d forms and %d submissions", stats.Forms, stats.Submissions)
				if stats.SkippedForms > 0 || stats.SkippedSubmissions > 0 {
					printWarning("Skipped %d forms and %d submissions", stats.SkippedForms, stats.SkippedSubmissions)
				}
				if stats.Settings {
					printDetail("Card backgrounds restored")
				}
				return nil
			})
		},
	}
}

// withStore opens the configured backends for the duration of fn.
func (c *CLI) withStore(ctx context.Context, fn func(context.Context, *backends) error) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	b, err := openBackends(ctx, cfg, false, loggerFromContext(ctx))
	if err != nil {
		return err
	}
	defer b.close(context.WithoutCancel(ctx))
	return fn(ctx, b)
}
