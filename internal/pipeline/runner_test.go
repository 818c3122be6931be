package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/ppiankov/fundscrape/internal/extract/adapters"
	"github.com/ppiankov/fundscrape/internal/model"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

// fakeSource serves canned pages by URL
type fakeSource struct {
	pages   map[string]string
	errs    map[string]error
	calls   int
	onFetch func(call int)
}

func (f *fakeSource) Fetch(ctx context.Context, url string) (*html.Node, error) {
	f.calls++
	if f.onFetch != nil {
		f.onFetch(f.calls)
	}
	if err := f.errs[url]; err != nil {
		return nil, err
	}
	page, ok := f.pages[url]
	if !ok {
		return nil, fmt.Errorf("no page for %s", url)
	}
	return html.Parse(strings.NewReader(page))
}

// recordingExporter captures what it was asked to write
type recordingExporter struct {
	tables []*model.Table
	calls  int
	err    error
}

func (e *recordingExporter) Write(tables []*model.Table) error {
	e.calls++
	e.tables = tables
	return e.err
}

func gcfPage(steps map[string]string) string {
	var b strings.Builder
	b.WriteString(`<html><body><div class="vue-component">`)
	for label, date := range steps {
		fmt.Fprintf(&b, `<div><h6>%s</h6><p><strong><span>%s</span></strong></p></div>`, label, date)
	}
	b.WriteString(`</div><table><tr><td data-header="Total GCF Financing">USD 1,000</td></tr></table>`)
	b.WriteString(`<div class="meta-information"><div><span class="node-label">Status</span><span class="node-content text-primary"><span>Completed</span></span></div></div>`)
	b.WriteString(`</body></html>`)
	return b.String()
}

const gcfMissingTimeline = `<html><body><table><tr><td data-header="Total GCF Financing">5</td></tr></table></body></html>`

func ids(t *model.Table) []string {
	out := make([]string, 0, t.Len())
	for _, r := range t.Records {
		out = append(out, r.ID)
	}
	return out
}

func TestRunner_ExampleProject(t *testing.T) {
	site := adapters.NewGCFSite()
	source := &fakeSource{pages: map[string]string{
		site.ProjectURL("FP001"): `<html><body><div class="vue-component">
			<div><h6>Concept note received</h6><p><strong><span>2021-01-01</span></strong></p></div>
			<div><h6>Funding proposal received</h6><p>2021-06-01</p></div>
		</div></body></html>`,
	}}

	runner := NewRunner(site, source, model.RunConfig{}, nil)
	acc, report, err := runner.Run(context.Background(), []model.Project{{ID: "FP001", Name: "Example Project"}})
	require.NoError(t, err)
	require.Equal(t, 1, report.Processed)

	tables := acc.Tables()
	require.Len(t, tables, 3)

	want := [][]string{{
		"FP001", "Example Project", adapters.GCFPrefix + "FP001",
		"2021-01-01", "2021-06-01", "na", "na", "na",
	}}
	if diff := cmp.Diff(want, tables[0].Rows()); diff != "" {
		t.Errorf("timeline rows mismatch (-want +got):\n%s", diff)
	}

	// Finance and meta rows exist because the gate passed, all labels absent
	require.Equal(t, []string{"na", "na"}, tables[1].Rows()[0][3:])
	require.Equal(t, []string{"na", "na", "na", "na"}, tables[2].Rows()[0][3:])
}

func TestRunner_GatedSiteOrderAndInvalid(t *testing.T) {
	site := adapters.NewGCFSite()
	source := &fakeSource{pages: map[string]string{
		site.ProjectURL("FP003"): gcfPage(map[string]string{"Completed": "2024-01-01"}),
		site.ProjectURL("FP001"): gcfMissingTimeline,
		site.ProjectURL("FP002"): gcfPage(map[string]string{"Concept note received": "2020-02-02"}),
	}}
	var invalidLog bytes.Buffer

	runner := NewRunner(site, source, model.RunConfig{}, &invalidLog)
	acc, report, err := runner.Run(context.Background(), []model.Project{
		{ID: "FP003", Name: "Third"},
		{ID: "FP001", Name: "First"},
		{ID: "FP002", Name: "Second"},
	})
	require.NoError(t, err)

	for _, table := range acc.Tables() {
		require.Equal(t, []string{"FP003", "FP002"}, ids(table), "table %s", table.Kind)
		for _, row := range table.Rows() {
			require.Len(t, row, 3+len(table.Taxonomy))
		}
	}

	require.Equal(t, []model.Invalid{{ID: "FP001", Table: model.TableTimeline}}, report.Invalid)
	require.Equal(t, "FP001\ttimeline\n", invalidLog.String())
	require.Equal(t, 3, report.Processed)

	finance := acc.Tables()[1]
	require.Equal(t, []string{"1000", "na"}, finance.Rows()[0][3:])
}

func TestRunner_IndependentGates(t *testing.T) {
	site := adapters.NewGEFSite()
	source := &fakeSource{pages: map[string]string{
		site.ProjectURL("1"): `<div class="project-timeline"><div class="views-field"><span>Received by GEF</span><div class="field-content">2016-05-10</div></div></div>`,
		site.ProjectURL("2"): `<div class="project-financials"><div class="views-field"><span>GEF Project Grant</span><div class="field-content">4,566,210</div></div></div>`,
		site.ProjectURL("3"): `<div>nothing here</div>`,
	}}

	runner := NewRunner(site, source, model.RunConfig{}, nil)
	acc, report, err := runner.Run(context.Background(), []model.Project{
		{ID: "1", Name: "One"}, {ID: "2", Name: "Two"}, {ID: "3", Name: "Three"},
	})
	require.NoError(t, err)

	tables := acc.Tables()
	require.Equal(t, []string{"1"}, ids(tables[0]))
	require.Equal(t, []string{"2"}, ids(tables[1]))
	require.Equal(t, []string{"na", "4566210", "na"}, tables[1].Rows()[0][3:])
	require.Equal(t, []model.Invalid{
		{ID: "1", Table: model.TableFinance},
		{ID: "2", Table: model.TableTimeline},
		{ID: "3", Table: model.TableTimeline},
		{ID: "3", Table: model.TableFinance},
	}, report.Invalid)
}

func TestRunner_InterruptFlushesAccumulatedRows(t *testing.T) {
	site := adapters.NewGCFSite()
	projects := make([]model.Project, 5)
	pages := make(map[string]string)
	for i := range projects {
		id := fmt.Sprintf("FP%03d", i+1)
		projects[i] = model.Project{ID: id, Name: "Project " + id}
		pages[site.ProjectURL(id)] = gcfPage(map[string]string{"Completed": "2024-01-01"})
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	const n = 3
	source := &fakeSource{pages: pages, onFetch: func(call int) {
		if call == n {
			cancel()
		}
	}}

	acc, report, err := NewRunner(site, source, model.RunConfig{}, nil).Run(ctx, projects)
	require.ErrorIs(t, err, ErrInterrupted)
	require.True(t, report.Interrupted)
	require.Equal(t, n, source.calls, "no fetch after cancellation")

	exporter := &recordingExporter{}
	status, finishErr := Finish(acc, err, exporter)
	require.Equal(t, StatusInterrupted, status)
	require.Equal(t, 1, status.ExitCode())
	require.ErrorIs(t, finishErr, ErrInterrupted)

	require.Equal(t, 1, exporter.calls)
	for _, table := range exporter.tables {
		require.Equal(t, []string{"FP001", "FP002", "FP003"}, ids(table))
	}
}

func TestRunner_CancelledMidFetchDropsProject(t *testing.T) {
	site := adapters.NewGCFSite()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	source := &fakeSource{
		pages: map[string]string{site.ProjectURL("A"): gcfPage(map[string]string{"Completed": "x"})},
		errs:  map[string]error{site.ProjectURL("B"): context.Canceled},
		onFetch: func(call int) {
			if call == 2 {
				cancel()
			}
		},
	}

	acc, _, err := NewRunner(site, source, model.RunConfig{}, nil).Run(ctx, []model.Project{{ID: "A"}, {ID: "B"}, {ID: "C"}})
	require.ErrorIs(t, err, ErrInterrupted)
	require.Equal(t, []string{"A"}, ids(acc.Tables()[0]))
}

func TestFinish_FlushFailure(t *testing.T) {
	acc := NewAccumulator(adapters.NewGEFSite())
	exporter := &recordingExporter{err: errors.New("disk full")}

	status, err := Finish(acc, ErrInterrupted, exporter)
	require.Equal(t, StatusFlushFailed, status)
	require.Equal(t, 2, status.ExitCode())
	require.ErrorContains(t, err, "disk full")
	require.Equal(t, 1, exporter.calls, "flush is attempted exactly once")
}

func TestRunner_AbortPolicy(t *testing.T) {
	site := adapters.NewGEFSite()
	boom := errors.New("connection reset")
	source := &fakeSource{
		pages: map[string]string{site.ProjectURL("1"): `<div class="project-timeline"></div>`},
		errs:  map[string]error{site.ProjectURL("2"): boom},
	}

	acc, _, err := NewRunner(site, source, model.RunConfig{FailurePolicy: model.FailureAbort}, nil).
		Run(context.Background(), []model.Project{{ID: "1"}, {ID: "2"}, {ID: "3"}})
	require.ErrorIs(t, err, boom)
	require.Equal(t, 2, source.calls)

	exporter := &recordingExporter{}
	status, finishErr := Finish(acc, err, exporter)
	require.Equal(t, StatusFailed, status)
	require.Equal(t, 3, status.ExitCode())
	require.ErrorIs(t, finishErr, boom)
	require.Zero(t, exporter.calls, "fatal errors export nothing")
}

func TestRunner_SkipPolicy(t *testing.T) {
	site := adapters.NewGEFSite()
	timeline := `<div class="project-timeline"></div>`
	source := &fakeSource{
		pages: map[string]string{site.ProjectURL("1"): timeline, site.ProjectURL("3"): timeline},
		errs:  map[string]error{site.ProjectURL("2"): errors.New("unexpected status: 500")},
	}

	acc, report, err := NewRunner(site, source, model.RunConfig{FailurePolicy: model.FailureSkip}, nil).
		Run(context.Background(), []model.Project{{ID: "1"}, {ID: "2"}, {ID: "3"}})
	require.NoError(t, err)
	require.Equal(t, []string{"1", "3"}, ids(acc.Tables()[0]))
	require.Equal(t, []model.Skipped{{ID: "2", Error: "unexpected status: 500"}}, report.Skipped)
	require.Equal(t, 2, report.Processed)

	exporter := &recordingExporter{}
	status, err := Finish(acc, nil, exporter)
	require.NoError(t, err)
	require.Equal(t, StatusCompleted, status)
	require.Zero(t, status.ExitCode())
	require.Equal(t, 1, exporter.calls)
}

func TestAccumulator_SnapshotIsIndependent(t *testing.T) {
	site := adapters.NewGEFSite()
	acc := NewAccumulator(site)

	acc.Add(Assembly{Records: []*model.Record{{ID: "1", Outcomes: make([]model.Outcome, 6)}, nil}})
	snapshot := acc.Tables()
	acc.Add(Assembly{Records: []*model.Record{{ID: "2", Outcomes: make([]model.Outcome, 6)}, nil}})

	require.Equal(t, 1, snapshot[0].Len())
	require.Equal(t, 2, acc.Tables()[0].Len())
	require.Zero(t, acc.Tables()[1].Len())
}
