package adapters

import (
	"strings"

	"github.com/ppiankov/fundscrape/internal/extract"
	"github.com/ppiankov/fundscrape/internal/input"
	"github.com/ppiankov/fundscrape/internal/model"
	"golang.org/x/net/html"
)

// GCFPrefix is the Green Climate Fund project page prefix
const GCFPrefix = "https://www.greenclimate.fund/project/"

// GCF taxonomies
var (
	GCFTimelineFields = model.Taxonomy{
		"Concept note received",
		"Funding proposal received",
		"Approved by GCF Board",
		"Under implementation",
		"Completed",
	}
	GCFFinanceFields = model.Taxonomy{
		"Total GCF Financing",
		"Total Co-Financing",
	}
	GCFMetaFields = model.Taxonomy{
		"Status",
		"Date approved",
		"Est. completion",
		"ESS Category",
	}
)

// NewGCFSite creates the Green Climate Fund adapter. The timeline is the
// only Vue-rendered component on a project page; a page without it is not a
// project record and contributes nothing to any table.
func NewGCFSite() *BaseSite {
	return &BaseSite{
		name:   "gcf",
		title:  "Green Climate Fund",
		prefix: GCFPrefix,
		tables: []*extract.Table{
			gcfTimeline(),
			gcfFinance(),
			gcfMeta(),
		},
		gate: model.TableTimeline,
		format: input.Format{
			IDColumn:   0,
			NameColumn: 1,
			IsHeader: func(row []string) bool {
				return strings.Contains(row[0], "Ref #")
			},
		},
		defaultInput:  "gcf.csv",
		defaultOutput: "gcf-scraped.xlsx",
	}
}

func gcfTimeline() *extract.Table {
	// The date sits in the first paragraph next to the h6 label, wrapped in
	// zero, one or two layers of markup
	paragraph := func(item *html.Node) *html.Node {
		return extract.FirstTag(item.Parent, "p")
	}
	strong := func(item *html.Node) *html.Node {
		return extract.FirstTag(paragraph(item), "strong")
	}

	return &extract.Table{
		Kind:      model.TableTimeline,
		Taxonomy:  GCFTimelineFields,
		Container: extract.Container("div.vue-component"),
		Items:     extract.Items("h6"),
		Label:     extract.FirstChildText,
		Match:     extract.ExactFirst,
		Chain: extract.Chain{
			{Name: "strong-span", Extract: func(item *html.Node) string {
				return extract.FirstChildText(extract.FirstTag(strong(item), "span"))
			}},
			{Name: "strong", Extract: func(item *html.Node) string {
				return extract.FirstChildText(strong(item))
			}},
			{Name: "paragraph", Extract: func(item *html.Node) string {
				return extract.FirstChildText(paragraph(item))
			}},
		},
	}
}

func gcfFinance() *extract.Table {
	return &extract.Table{
		Kind:      model.TableFinance,
		Taxonomy:  GCFFinanceFields,
		Container: extract.DocumentRoot,
		Items:     extract.Items("td[data-header]"),
		Label: func(item *html.Node) string {
			return extract.GetAttribute(item, "data-header")
		},
		Match: extract.ExactFirst,
		Chain: extract.Chain{
			{Name: "cell", Extract: extract.FirstChildText},
		},
		Normalize: extract.NormalizeAmount,
	}
}

func gcfMeta() *extract.Table {
	content := func(item *html.Node) *html.Node {
		return extract.SelectFirst(item.Parent, "span.node-content.text-primary")
	}

	return &extract.Table{
		Kind:      model.TableMeta,
		Taxonomy:  GCFMetaFields,
		Container: extract.Container("div.meta-information"),
		Items:     extract.Items("span.node-label"),
		Label:     extract.TextContent,
		Match:     extract.SubstringLast,
		Chain: extract.Chain{
			{Name: "nested-span", Extract: func(item *html.Node) string {
				return extract.FirstChildText(extract.FirstTag(content(item), "span"))
			}},
			{Name: "content", Extract: func(item *html.Node) string {
				return strings.TrimLeft(extract.FirstChildText(content(item)), " \t\r\n")
			}},
		},
	}
}
