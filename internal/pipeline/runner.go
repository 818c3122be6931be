package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/ppiankov/fundscrape/internal/extract/adapters"
	"github.com/ppiankov/fundscrape/internal/model"
	"golang.org/x/net/html"
)

// ErrInterrupted is returned when the run was cancelled before every
// project was processed
var ErrInterrupted = errors.New("interrupted")

// FetchResult is the outcome of fetching one project's page
type FetchResult struct {
	Project model.Project
	URL     string
	Doc     *html.Node
	Err     error
}

// Runner processes projects one at a time: fetch, extract, append
type Runner struct {
	site          adapters.Site
	source        Source
	policy        model.FailurePolicy
	progressEvery int
	invalidLog    io.Writer // nil disables
	now           func() time.Time
}

// NewRunner creates a runner. invalidLog, when non-nil, receives one
// "id<TAB>table" line per structurally invalid project.
func NewRunner(site adapters.Site, source Source, cfg model.RunConfig, invalidLog io.Writer) *Runner {
	policy := cfg.FailurePolicy
	if policy == "" {
		policy = model.FailureAbort
	}
	return &Runner{
		site:          site,
		source:        source,
		policy:        policy,
		progressEvery: cfg.ProgressEvery,
		invalidLog:    invalidLog,
		now:           time.Now,
	}
}

// Run scrapes projects in input order. Cancellation is checked between
// projects; on cancellation the accumulator holds every project completed so
// far and ErrInterrupted is returned. Under the abort policy a fetch failure
// ends the run with that error.
func (r *Runner) Run(ctx context.Context, projects []model.Project) (*Accumulator, *model.Report, error) {
	acc := NewAccumulator(r.site)
	report := &model.Report{
		Site:      r.site.Name(),
		StartedAt: r.now(),
		Total:     len(projects),
	}
	defer func() { report.FinishedAt = r.now() }()

	for i, p := range projects {
		if ctx.Err() != nil {
			report.Interrupted = true
			return acc, report, ErrInterrupted
		}
		if r.progressEvery > 0 && i%r.progressEvery == 0 {
			slog.InfoContext(ctx, "progress", "processed", i, "total", len(projects))
		}

		res := r.fetch(ctx, p)
		if res.Err != nil {
			if ctx.Err() != nil {
				report.Interrupted = true
				return acc, report, ErrInterrupted
			}
			if r.policy == model.FailureSkip {
				slog.WarnContext(ctx, "fetch failed, skipping project", "id", res.Project.ID, "url", res.URL, "err", res.Err)
				report.Skipped = append(report.Skipped, model.Skipped{ID: res.Project.ID, Error: res.Err.Error()})
				continue
			}
			return acc, report, fmt.Errorf("project %s: %w", res.Project.ID, res.Err)
		}

		asm := Assemble(r.site, res.Project, res.Doc)
		for _, kind := range asm.Invalid {
			slog.WarnContext(ctx, "container not found, assuming invalid entry", "id", p.ID, "table", kind)
			report.Invalid = append(report.Invalid, model.Invalid{ID: p.ID, Table: kind})
			r.recordInvalid(ctx, p.ID, kind)
		}
		acc.Add(asm)
		report.Processed++
	}

	return acc, report, nil
}

func (r *Runner) fetch(ctx context.Context, p model.Project) FetchResult {
	url := r.site.ProjectURL(p.ID)
	doc, err := r.source.Fetch(ctx, url)
	return FetchResult{Project: p, URL: url, Doc: doc, Err: err}
}

func (r *Runner) recordInvalid(ctx context.Context, id string, kind model.TableKind) {
	if r.invalidLog == nil {
		return
	}
	if _, err := fmt.Fprintf(r.invalidLog, "%s\t%s\n", id, kind); err != nil {
		slog.WarnContext(ctx, "record invalid id failed", "id", id, "err", err)
	}
}
