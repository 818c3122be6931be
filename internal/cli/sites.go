package cli

import (
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/ppiankov/fundscrape/internal/extract/adapters"
	"github.com/spf13/cobra"
)

// sitesCmd represents the sites command
var sitesCmd = &cobra.Command{
	Use:   "sites",
	Short: "List supported sites and the fields extracted for each",
	Run: func(cmd *cobra.Command, args []string) {
		printSites(os.Stdout, adapters.NewRegistry())
	},
}

func init() {
	rootCmd.AddCommand(sitesCmd)
}

func printSites(w io.Writer, registry *adapters.Registry) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Site", "Sheet", "Fields", "Input", "Output"})

	for _, name := range registry.Names() {
		site, err := registry.Get(name)
		if err != nil {
			continue
		}
		for i, tbl := range site.Tables() {
			row := table.Row{"", tbl.Kind.SheetName(), strings.Join(tbl.Taxonomy, "\n"), "", ""}
			if i == 0 {
				row[0] = site.Name() + "\n" + site.Title()
				row[3] = site.DefaultInput()
				row[4] = site.DefaultOutput()
			}
			t.AppendRow(row)
		}
		t.AppendSeparator()
	}

	t.SetStyle(table.StyleRounded)
	t.Render()
}
