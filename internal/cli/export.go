package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/matzehuels/cardsheet/pkg/compose"
	"github.com/matzehuels/cardsheet/pkg/forms"
	"github.com/matzehuels/cardsheet/pkg/pipeline"
	"github.com/matzehuels/cardsheet/pkg/render/sink"
	"github.com/matzehuels/cardsheet/pkg/storage"
)

// exportOptions holds command-line flags for the export command.
type exportOptions struct {
	output     string
	preview    string
	previewDPI int
	pick       bool
	ids        []string
	filter     forms.Filter
	pipeline   pipeline.Options
}

// exportCommand creates the export command.
func (c *CLI) exportCommand() *cobra.Command {
	var opts exportOptions

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export ID cards to a printable PDF",
		Long: `Export ID cards to a printable PDF.

Cards are rendered for every stored submission, or for the submissions
matched by --school, --class, --section and --name (case-insensitive
substrings), or for the ids given with --ids. Cards that fail to render are
skipped and reported.`,
		Example: `  # Every card, default layout
  cardsheet export

  # One school on A3 at print quality with crop marks
  cardsheet export --school "Green Valley" --page-size a3 --quality print --crop-marks

  # Pick the school interactively and preview the first page
  cardsheet export --pick --preview first-page.png`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runExport(cmd.Context(), opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.output, "output", "o", "", "output PDF path (default: suggested file name)")
	f.StringVar(&opts.preview, "preview", "", "also write the first page as PNG to this path")
	f.IntVar(&opts.previewDPI, "preview-dpi", sink.DefaultPreviewDPI, "preview resolution")
	f.BoolVar(&opts.pick, "pick", false, "choose the school interactively")
	f.StringSliceVar(&opts.ids, "ids", nil, "export only these submission ids")
	f.StringVar(&opts.filter.School, "school", "", "filter by school name")
	f.StringVar(&opts.filter.Class, "class", "", "filter by class")
	f.StringVar(&opts.filter.Section, "section", "", "filter by section")
	f.StringVar(&opts.filter.Name, "name", "", "filter by student name")
	f.StringVar(&opts.pipeline.Layout, "layout", "", "sheet layout: "+layoutKeys())
	f.StringVar(&opts.pipeline.PageSize, "page-size", "", "page size: "+pageSizeKeys())
	f.StringVar((*string)(&opts.pipeline.Quality), "quality", "", "raster quality: standard, high, print")
	f.BoolVar(&opts.pipeline.IncludeBleed, "bleed", false, "add 3mm bleed around each card")
	f.BoolVar(&opts.pipeline.IncludeCropMarks, "crop-marks", false, "draw crop marks at card corners")

	return cmd
}

func (c *CLI) runExport(ctx context.Context, opts exportOptions) error {
	logger := loggerFromContext(ctx)

	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	b, err := openBackends(ctx, cfg, false, logger)
	if err != nil {
		return err
	}
	defer b.close(context.WithoutCancel(ctx))

	if opts.pick {
		school, err := pickSchool(ctx, b.store)
		if err != nil {
			return err
		}
		if school == "" {
			printInfo("No school selected")
			return nil
		}
		opts.filter.School = school
	}

	popts := exportDefaults(cfg)
	mergeOptions(&popts, opts.pipeline)
	popts.School = opts.filter.School

	popts.SetDefaults()

	st := startStage(logger, "cards loaded")
	cards, err := pipeline.LoadCards(ctx, b.store, pipeline.Selection{SubmissionIDs: opts.ids, Filter: opts.filter})
	if err != nil {
		return err
	}
	st.done("count", len(cards))

	logger = exportLogger(logger, popts)
	spinner := newExportSpinner(ctx, os.Stderr, fmt.Sprintf("Rendering %d cards", len(cards)))
	spinner.Start()
	result, err := b.runner(logger).Export(ctx, cards, popts, func(pct int) {
		spinner.Report(pct)
		logger.Debug("export progress", "percent", pct)
	})
	if err != nil {
		spinner.Fail("Export failed")
		return err
	}
	spinner.Succeed(fmt.Sprintf("Exported %d cards on %d pages", result.Stats.Rendered, result.Stats.Pages))

	out := opts.output
	if out == "" {
		out = result.Filename
	}
	if err := writeFile(out, result.PDF); err != nil {
		return err
	}
	printFile(out)

	if opts.preview != "" {
		png, err := sink.RenderPagePNG(result.Pages[0], float64(opts.previewDPI))
		if err != nil {
			return fmt.Errorf("render preview: %w", err)
		}
		if err := writeFile(opts.preview, png); err != nil {
			return err
		}
		printFile(opts.preview)
	}

	printExportStats(result)
	return nil
}

// mergeOptions overlays the flags that were set on the configured defaults.
func mergeOptions(dst *pipeline.Options, flags pipeline.Options) {
	if flags.Layout != "" {
		dst.Layout = flags.Layout
	}
	if flags.PageSize != "" {
		dst.PageSize = flags.PageSize
	}
	if flags.Quality != "" {
		dst.Quality = flags.Quality
	}
	dst.IncludeBleed = flags.IncludeBleed
	dst.IncludeCropMarks = flags.IncludeCropMarks
}

// pickSchool lets the user choose a school on an interactive terminal. It
// returns "" when the user quits without choosing.
func pickSchool(ctx context.Context, store storage.Store) (string, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return "", fmt.Errorf("--pick needs an interactive terminal; use --school instead")
	}
	all, err := store.Forms().List(ctx, false)
	if err != nil {
		return "", err
	}
	counts, err := store.Submissions().CountByForm(ctx)
	if err != nil {
		return "", err
	}
	schools := forms.GroupBySchool(all, counts)
	if len(schools) == 0 {
		return "", fmt.Errorf("no schools have forms yet")
	}

	final, err := tea.NewProgram(NewSchoolListModel(schools), tea.WithContext(ctx)).Run()
	if err != nil {
		return "", fmt.Errorf("school picker: %w", err)
	}
	if m, ok := final.(SchoolListModel); ok && m.Selected != nil {
		return m.Selected.SchoolName, nil
	}
	return "", nil
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func layoutKeys() string {
	var keys []string
	for _, l := range compose.Layouts() {
		keys = append(keys, l.Key)
	}
	return strings.Join(keys, ", ")
}

func pageSizeKeys() string {
	var keys []string
	for _, p := range compose.PageSizes() {
		keys = append(keys, p.Key)
	}
	return strings.Join(keys, ", ")
}
