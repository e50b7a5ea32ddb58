package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/cardsheet/pkg/forms"
)

// formsCommand creates the forms command.
func (c *CLI) formsCommand() *cobra.Command {
	var school string

	cmd := &cobra.Command{
		Use:   "forms",
		Short: "List forms grouped by school",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runForms(cmd.Context(), school)
		},
	}
	cmd.Flags().StringVar(&school, "school", "", "only this school (exact name)")

	return cmd
}

func (c *CLI) runForms(ctx context.Context, school string) error {
	return c.withStore(ctx, func(ctx context.Context, b *backends) error {
		return listForms(ctx, b, school)
	})
}

func listForms(ctx context.Context, b *backends, school string) error {
	var (
		list []forms.FormConfig
		err  error
	)
	if school != "" {
		list, err = b.store.Forms().ListBySchool(ctx, school)
	} else {
		list, err = b.store.Forms().List(ctx, false)
	}
	if err != nil {
		return err
	}
	counts, err := b.store.Submissions().CountByForm(ctx)
	if err != nil {
		return err
	}

	schools := forms.GroupBySchool(list, counts)
	if len(schools) == 0 {
		printInfo("No forms yet")
		return nil
	}
	for _, s := range schools {
		fmt.Println(StyleTitle.Render(s.SchoolName) + " " + StyleDim.Render(fmt.Sprintf("(%d submissions)", s.TotalSubmissions)))
		fmt.Println(formsTable(s.Forms, counts))
	}
	return nil
}

func formsTable(list []forms.FormConfig, counts map[string]int) string {
	rows := make([][]string, len(list))
	for i, f := range list {
		status := StyleSuccess.Render("active")
		if !f.IsActive {
			status = StyleDim.Render("inactive")
		}
		rows[i] = []string{f.FormName, f.ID, status, strconv.Itoa(len(f.SelectedFields)), strconv.Itoa(counts[f.ID])}
	}
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Form", "ID", "Status", "Fields", "Submissions").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if col == 1 {
				return lipgloss.NewStyle().Foreground(colorDim)
			}
			return lipgloss.NewStyle()
		}).
		Render()
}

// fieldsCommand creates the fields command listing the field catalog.
func (c *CLI) fieldsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "fields",
		Short: "List the fields a form can be built from",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, key := range forms.Keys() {
				def := forms.Catalog[key]
				detail := string(def.Type) + ", " + string(def.Validation)
				if len(def.Options) > 0 {
					detail += ": " + strings.Join(def.Options, " ")
				}
				printKeyValue(string(key), def.Label+" "+StyleDim.Render("("+detail+")"))
			}
			return nil
		},
	}
}
