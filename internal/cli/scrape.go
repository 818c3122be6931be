package cli

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/ppiankov/fundscrape/internal/export"
	"github.com/ppiankov/fundscrape/internal/extract/adapters"
	"github.com/ppiankov/fundscrape/internal/input"
	"github.com/ppiankov/fundscrape/internal/model"
	"github.com/ppiankov/fundscrape/internal/pipeline"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var (
	outFile       string
	invalidFile   string
	timeout       time.Duration
	userAgent     string
	rps           float64
	useCache      bool
	noRobots      bool
	onError       string
	progressEvery int
	httpProxy     string
	httpsProxy    string
)

// scrapeCmd represents the scrape command
var scrapeCmd = &cobra.Command{
	Use:   "scrape <site> [input.csv]",
	Short: "Scrape every project in a project list into a workbook",
	Long: `Scrape fetches the record page of every project listed in the input
CSV, in order, and writes one workbook sheet per table.

The input defaults to the site's conventional file (gcf.csv, gef.csv) and
the output to <site>-scraped.xlsx.

Press Ctrl-C to stop early: the projects completed so far are saved and
the command exits with status 1 (2 if saving failed).

Example:
  fundscrape scrape gcf
  fundscrape scrape gef projects.csv --out gef.xlsx
  fundscrape scrape gcf --on-error skip --cache --rps 1`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runScrape,
}

func init() {
	rootCmd.AddCommand(scrapeCmd)
	defaults := model.DefaultConfig()

	// Output flags
	scrapeCmd.Flags().StringVarP(&outFile, "out", "o", "", "output workbook path (default: site convention)")
	scrapeCmd.Flags().StringVar(&invalidFile, "invalid-file", defaults.Output.InvalidFile, "file receiving invalid project ids (empty disables)")

	// HTTP flags
	scrapeCmd.Flags().DurationVar(&timeout, "timeout", defaults.HTTP.Timeout, "per-request timeout")
	scrapeCmd.Flags().StringVar(&userAgent, "ua", defaults.HTTP.UserAgent, "HTTP User-Agent")
	scrapeCmd.Flags().Float64Var(&rps, "rps", defaults.RateLimiting.RequestsPerSecond, "max requests per second per host (0 = unlimited)")
	scrapeCmd.Flags().BoolVar(&useCache, "cache", defaults.Cache.Enabled, "cache fetched pages in memory and on disk")
	scrapeCmd.Flags().BoolVar(&noRobots, "no-robots", !defaults.HTTP.RespectRobots, "ignore robots.txt")
	scrapeCmd.Flags().StringVar(&httpProxy, "http-proxy", "", "HTTP proxy URL (overrides HTTP_PROXY env var)")
	scrapeCmd.Flags().StringVar(&httpsProxy, "https-proxy", "", "HTTPS proxy URL (overrides HTTPS_PROXY env var)")

	// Run flags
	scrapeCmd.Flags().StringVar(&onError, "on-error", string(defaults.Run.FailurePolicy), "fetch failure policy: abort or skip")
	scrapeCmd.Flags().IntVar(&progressEvery, "progress-every", defaults.Run.ProgressEvery, "log progress every N projects (0 disables)")
}

func runScrape(cmd *cobra.Command, args []string) error {
	site, err := adapters.NewRegistry().Get(args[0])
	if err != nil {
		return err
	}

	inputPath := site.DefaultInput()
	if len(args) > 1 {
		inputPath = args[1]
	}

	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}
	if err := applyScrapeFlags(cmd.Flags(), cfg); err != nil {
		return err
	}

	outPath := cfg.Output.File
	if outPath == "" {
		outPath = site.DefaultOutput()
	}

	projects, err := input.ReadProjectsFromFile(inputPath, site.InputFormat())
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  fundscrape: %s\n", site.Title())
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Input file:   %s (%d projects)\n", inputPath, len(projects))
	fmt.Fprintf(os.Stderr, "  Output file:  %s\n", outPath)
	fmt.Fprintf(os.Stderr, "  On error:     %s\n", cfg.Run.FailurePolicy)
	fmt.Fprintf(os.Stderr, "  Robots.txt:   %v\n", cfg.HTTP.RespectRobots)
	fmt.Fprintf(os.Stderr, "  Cache:        %v\n", cfg.Cache.Enabled)
	fmt.Fprintf(os.Stderr, "\n")

	invalidLog, closeInvalid, err := openInvalidLog(cfg.Output.InvalidFile)
	if err != nil {
		return err
	}
	defer closeInvalid()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner := pipeline.NewRunner(site, pipeline.NewFetcher(cfg), cfg.Run, invalidLog)
	acc, report, runErr := runner.Run(ctx, projects)

	// A second signal during the flush terminates the process
	stop()

	status, err := pipeline.Finish(acc, runErr, export.NewWorkbook(outPath))
	printSummary(os.Stderr, acc.Tables(), report, status, outPath)

	if status == pipeline.StatusCompleted {
		return nil
	}
	return &ExitError{Code: status.ExitCode(), Err: err}
}

// applyScrapeFlags overrides cfg with the flags set on the command line
func applyScrapeFlags(flags *pflag.FlagSet, cfg *model.Config) error {
	if flags.Changed("out") {
		cfg.Output.File = outFile
	}
	if flags.Changed("invalid-file") {
		cfg.Output.InvalidFile = invalidFile
	}
	if flags.Changed("timeout") {
		cfg.HTTP.Timeout = timeout
	}
	if flags.Changed("ua") {
		cfg.HTTP.UserAgent = userAgent
	}
	if flags.Changed("rps") {
		cfg.RateLimiting.RequestsPerSecond = rps
	}
	if flags.Changed("cache") {
		cfg.Cache.Enabled = useCache
	}
	if flags.Changed("no-robots") {
		cfg.HTTP.RespectRobots = !noRobots
	}
	if flags.Changed("http-proxy") {
		cfg.HTTP.HTTPProxy = httpProxy
	}
	if flags.Changed("https-proxy") {
		cfg.HTTP.HTTPSProxy = httpsProxy
	}
	if flags.Changed("progress-every") {
		cfg.Run.ProgressEvery = progressEvery
	}
	if flags.Changed("on-error") {
		cfg.Run.FailurePolicy = model.FailurePolicy(onError)
	}

	switch cfg.Run.FailurePolicy {
	case model.FailureAbort, model.FailureSkip:
		return nil
	default:
		return fmt.Errorf("invalid failure policy %q (want %s or %s)", cfg.Run.FailurePolicy, model.FailureAbort, model.FailureSkip)
	}
}

// openInvalidLog truncates path and returns a writer for it. An empty path
// disables the log.
func openInvalidLog(path string) (io.Writer, func(), error) {
	if path == "" {
		return nil, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("create invalid id file: %w", err)
	}
	return f, func() {
		if err := f.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: close %s: %v\n", path, err)
		}
	}, nil
}

func printSummary(w io.Writer, tables []*model.Table, report *model.Report, status pipeline.Status, outPath string) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle("Run summary: " + status.String())
	t.AppendHeader(table.Row{"Sheet", "Rows"})
	for _, tbl := range tables {
		t.AppendRow(table.Row{tbl.Kind.SheetName(), tbl.Len()})
	}
	t.AppendSeparator()
	t.AppendRow(table.Row{"Processed", fmt.Sprintf("%d/%d", report.Processed, report.Total)})
	t.AppendRow(table.Row{"Invalid", len(report.Invalid)})
	t.AppendRow(table.Row{"Skipped", len(report.Skipped)})
	t.AppendRow(table.Row{"Elapsed", report.FinishedAt.Sub(report.StartedAt).Round(time.Millisecond)})
	if status == pipeline.StatusCompleted || status == pipeline.StatusInterrupted {
		t.AppendRow(table.Row{"Output", outPath})
	}
	t.SetStyle(table.StyleRounded)
	t.Render()
}
