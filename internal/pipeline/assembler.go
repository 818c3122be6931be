package pipeline

import (
	"github.com/ppiankov/fundscrape/internal/extract"
	"github.com/ppiankov/fundscrape/internal/extract/adapters"
	"github.com/ppiankov/fundscrape/internal/model"
	"golang.org/x/net/html"
)

// Assembly is the extraction result for one project. Records is aligned
// with the site's tables; a nil entry means no row for that table.
type Assembly struct {
	Records []*model.Record
	Invalid []model.TableKind
}

// Assemble extracts every table of site from doc. With a gated site a
// missing gate container yields no records at all; otherwise each table
// stands or falls on its own container.
func Assemble(site adapters.Site, p model.Project, doc *html.Node) Assembly {
	tables := site.Tables()
	out := Assembly{Records: make([]*model.Record, len(tables))}
	url := site.ProjectURL(p.ID)

	record := func(outcomes []model.Outcome) *model.Record {
		return &model.Record{ID: p.ID, Name: p.Name, URL: url, Outcomes: outcomes}
	}

	if gate := site.Gate(); gate != "" {
		results := make([][]model.Outcome, len(tables))
		for i, t := range tables {
			if t.Kind != gate {
				continue
			}
			outcomes, ok := extract.Locate(doc, t)
			if !ok {
				out.Invalid = append(out.Invalid, gate)
				return out
			}
			results[i] = outcomes
		}

		for i, t := range tables {
			if results[i] == nil {
				outcomes, ok := extract.Locate(doc, t)
				if !ok {
					outcomes = extract.Absent(len(t.Taxonomy))
				}
				results[i] = outcomes
			}
			out.Records[i] = record(results[i])
		}
		return out
	}

	for i, t := range tables {
		outcomes, ok := extract.Locate(doc, t)
		if !ok {
			out.Invalid = append(out.Invalid, t.Kind)
			continue
		}
		out.Records[i] = record(outcomes)
	}
	return out
}

// Accumulator owns the result tables for one run. Only the scrape loop
// appends to it; exporters receive snapshots.
type Accumulator struct {
	tables []*model.Table
}

// NewAccumulator creates empty tables for every table of site
func NewAccumulator(site adapters.Site) *Accumulator {
	specs := site.Tables()
	tables := make([]*model.Table, len(specs))
	for i, t := range specs {
		tables[i] = model.NewTable(t.Kind, t.Taxonomy)
	}
	return &Accumulator{tables: tables}
}

// Add appends an assembly's records to their tables
func (a *Accumulator) Add(asm Assembly) {
	for i, r := range asm.Records {
		if r != nil && i < len(a.tables) {
			a.tables[i].Append(*r)
		}
	}
}

// Tables returns a snapshot of the accumulated tables
func (a *Accumulator) Tables() []*model.Table {
	snapshot := make([]*model.Table, len(a.tables))
	for i, t := range a.tables {
		snapshot[i] = t.Clone()
	}
	return snapshot
}
