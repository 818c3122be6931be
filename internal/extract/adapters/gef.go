package adapters

import (
	"github.com/ppiankov/fundscrape/internal/extract"
	"github.com/ppiankov/fundscrape/internal/input"
	"github.com/ppiankov/fundscrape/internal/model"
	"golang.org/x/net/html"
)

// GEFPrefix is the Global Environment Facility project page prefix
const GEFPrefix = "https://www.thegef.org/projects-operations/projects/"

// GEF taxonomies
var (
	GEFTimelineFields = model.Taxonomy{
		"Received by GEF",
		"Preparation Grant Approved",
		"Concept Approved",
		"Project Approved for Implementation",
		"Project Closed",
		"Project Cancelled",
	}
	GEFFinanceFields = model.Taxonomy{
		"Co-financing Total",
		"GEF Project Grant",
		"GEF Agency Fees",
	}
)

// NewGEFSite creates the Global Environment Facility adapter. Timeline and
// financials are separate Drupal views and are validated independently.
func NewGEFSite() *BaseSite {
	return &BaseSite{
		name:   "gef",
		title:  "Global Environment Facility",
		prefix: GEFPrefix,
		tables: []*extract.Table{
			gefView(model.TableTimeline, GEFTimelineFields, "div.project-timeline", nil),
			gefView(model.TableFinance, GEFFinanceFields, "div.project-financials", extract.NormalizeAmount),
		},
		format: input.Format{
			IDColumn:   1,
			NameColumn: 0,
			IsHeader: func(row []string) bool {
				return row[0] == "Title"
			},
		},
		defaultInput:  "gef.csv",
		defaultOutput: "gef-scraped.xlsx",
	}
}

// gefView builds a table over a views block: each div.views-field carries
// its label in the first span and its value in a div.field-content. A
// label without a field-content node is present but empty.
func gefView(kind model.TableKind, taxonomy model.Taxonomy, container string, normalize func(string) string) *extract.Table {
	return &extract.Table{
		Kind:      kind,
		Taxonomy:  taxonomy,
		Container: extract.Container(container),
		Items:     extract.Items("div.views-field"),
		Label: func(item *html.Node) string {
			return extract.FirstChildText(extract.FirstTag(item, "span"))
		},
		Match: extract.ExactFirst,
		Chain: extract.Chain{
			{Name: "field-content", Extract: func(item *html.Node) string {
				return extract.FirstChildText(extract.SelectFirst(item, "div.field-content"))
			}},
		},
		Normalize: normalize,
	}
}
