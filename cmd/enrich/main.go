package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"enrich/internal/config"
	"enrich/internal/metrics"
	"enrich/internal/metrics/datadog"
	"enrich/internal/output"
	"enrich/internal/picklist"
	"enrich/internal/schema"
	"enrich/internal/store"
	"enrich/internal/template"
	"enrich/internal/transform"
	"enrich/internal/workbook"

	// register all persistence backends with the store factory.
	// flags select which one to use but the binary supports all of them.
	_ "enrich/internal/store/mssql"
	_ "enrich/internal/store/postgres"
	_ "enrich/internal/store/sqlite"
)

// main is the entry point for the enrichment binary. It builds the schema
// index, parses reference files, transforms every template given on the
// command line, and writes the enriched grids.
func main() {
	var (
		schemaPath    string
		refsFlag      string
		country       string
		skipOperation bool
		outDir        string
		format        string
		zipOut        bool
		configPath    string
		saveConfig    string
		keywordsPath  string
		storeKind     string
		storeDSN      string
		metricsFlg    string
		metricsTags   string
	)

	flag.StringVar(&schemaPath, "schema", "", "schema dictionary XML path (required)")
	flag.StringVar(&refsFlag, "refs", "", "comma-separated picklist reference files (csv or xlsx)")
	flag.StringVar(&country, "country", "GBR", "preferred country code for entity matching")
	flag.BoolVar(&skipOperation, "skip-operation", false, "pass the operation column through without schema lookup")
	flag.StringVar(&outDir, "out", ".", "output directory")
	flag.StringVar(&format, "format", "csv", "output format (csv or xlsx)")
	flag.BoolVar(&zipOut, "zip", false, "bundle all outputs into one zip archive")
	flag.StringVar(&configPath, "config", "", "load a saved run configuration JSON")
	flag.StringVar(&saveConfig, "save-config", "", "write the effective run configuration to this path")
	flag.StringVar(&keywordsPath, "keywords", "", "keyword classification overrides JSON")
	flag.StringVar(&storeKind, "store", "", "run-history backend (sqlite, postgres, mssql; empty disables)")
	flag.StringVar(&storeDSN, "store-dsn", "", "run-history backend DSN")
	flag.StringVar(&metricsFlg, "metrics", "", "metrics backend (datadog or none)")
	flag.StringVar(&metricsTags, "metrics-tags", "", "extra metric tags, comma-separated (e.g. env:prod,team:hr)")
	verbose := flag.Bool("v", false, "enable verbose logs")

	flag.Parse()

	if schemaPath == "" {
		fatalf("missing -schema")
	}
	if format != "csv" && format != "xlsx" {
		fatalf("unsupported -format %q (want csv or xlsx)", format)
	}
	templatePaths := flag.Args()
	if len(templatePaths) == 0 {
		fatalf("no template files given")
	}

	// A loaded configuration supplies defaults; explicit flags override it.
	var assignments map[string]string
	if configPath != "" {
		saved, err := config.Load(configPath)
		if err != nil {
			fatalf("load config: %v", err)
		}
		set := map[string]bool{}
		flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
		if !set["country"] && saved.Country != "" {
			country = saved.Country
		}
		if !set["skip-operation"] {
			skipOperation = saved.SkipOperation
		}
		assignments = saved.Assignments
		if *verbose {
			log.Printf("config: loaded %s (saved %s, %d assignments)",
				configPath, saved.SavedAt.Format(time.RFC3339), len(saved.Assignments))
		}
	}

	keywords := transform.DefaultKeywords()
	if keywordsPath != "" {
		kw, err := transform.LoadKeywordsFile(keywordsPath)
		if err != nil {
			fatalf("load keywords: %v", err)
		}
		keywords = kw
	}

	// Metrics backend: flag → env → disabled.
	backendName := metricsFlg
	if backendName == "" {
		backendName = os.Getenv("METRICS_BACKEND")
	}
	var m metrics.Backend = metrics.Nop{}
	switch backendName {
	case "datadog":
		// The backend buffers and submits periodically, with one final submit
		// at Close(); a long batch over many templates produces a real time
		// series instead of a single spike.
		extraTags := datadog.ParseTagsCSV(metricsTags)
		if metricsTags == "" {
			extraTags = datadog.ParseTagsCSV(os.Getenv("METRICS_TAGS"))
		}
		b, err := datadog.NewBackend(context.Background(), datadog.Options{
			JobName: "enrich",
			Tags:    extraTags,
		})
		if err != nil {
			log.Printf("metrics: failed to init datadog backend: %v; metrics disabled", err)
		} else {
			if *verbose {
				log.Printf("metrics: backend=%v tags=%v", backendName, extraTags)
			}
			m = b
			defer func() {
				if err := b.Close(); err != nil {
					log.Printf("metrics: datadog close/flush error: %v", err)
				}
			}()
		}
	case "", "none":
		if *verbose {
			log.Printf("metrics: disabled (backend=%q)", backendName)
		}
	default:
		log.Printf("metrics: unknown backend %q; metrics disabled", backendName)
	}

	ctx := context.Background()
	start := time.Now()

	raw, err := os.ReadFile(schemaPath)
	if err != nil {
		fatalf("read schema: %v", err)
	}
	ix, err := schema.Build(raw)
	if err != nil {
		fatalf("build schema index: %v", err)
	}
	if *verbose {
		log.Printf("schema: %d entities, %d properties", ix.Entities(), ix.Properties())
	}

	refStore := loadReferences(splitCSVFlag(refsFlag), *verbose)

	templates, templateNames := loadTemplates(templatePaths, m)
	if len(templates) == 0 {
		fatalf("no valid templates to process")
	}

	for _, name := range transform.MissingIdentity(templates) {
		log.Printf("warning: template %s has no identity column (userId or personIdExternal)", name)
	}
	if !skipOperation {
		for _, name := range transform.HasOperation(templates) {
			log.Printf("note: template %s carries an operation column; use -skip-operation to pass it through", name)
		}
	}

	// Auto-derived assignments first, then the loaded configuration on top:
	// explicitly saved choices beat anything inferred from references or data.
	cands := transform.Candidates(templates, ix, keywords)
	effective := transform.AutoAssign(cands, refStore, templates)
	for col, vals := range assignments {
		effective[col] = vals
	}
	if *verbose {
		log.Printf("picklists: %d candidate columns, %d assigned", len(cands), len(effective))
	}

	opts := transform.Options{
		Country:       country,
		SkipOperation: skipOperation,
		Assignments:   effective,
		Keywords:      keywords,
	}

	// Templates are independent of each other once the shared index and
	// assignments exist, so transform them concurrently.
	results := make([]transform.Result, len(templates))
	var wg sync.WaitGroup
	for i, t := range templates {
		wg.Add(1)
		go func(i int, t *template.Template) {
			defer wg.Done()
			results[i] = transform.Template(t, ix, opts)
		}(i, t)
	}
	wg.Wait()

	var files []output.File
	resolved, unresolved := 0, 0
	for i, res := range results {
		for _, col := range res.Unresolved {
			log.Printf("warning: %s: column %q has no definition in the schema dictionary", res.Template, col)
		}
		resolved += len(res.Columns) - len(res.Unresolved)
		unresolved += len(res.Unresolved)

		grid := transform.Grid(res.Columns)
		data, err := renderGrid(grid, format)
		if err != nil {
			fatalf("render %s: %v", res.Template, err)
		}
		files = append(files, output.File{
			Name: output.EnrichedName(templateNames[i], format),
			Data: data,
		})

		if *verbose {
			entity := res.EntityType
			if entity == "" {
				entity = "(none)"
			}
			log.Printf("%s: entity=%s columns=%d unresolved=%d",
				res.Template, entity, len(res.Columns), len(res.Unresolved))
		}
	}

	if err := writeOutputs(outDir, files, zipOut); err != nil {
		fatalf("%v", err)
	}

	m.IncCounter(metrics.TemplatesTotal, float64(len(templates)), metrics.Labels{"status": "ok"})
	m.IncCounter(metrics.ColumnsTotal, float64(resolved), metrics.Labels{"kind": "resolved"})
	m.IncCounter(metrics.ColumnsTotal, float64(unresolved), metrics.Labels{"kind": "unresolved"})
	m.IncCounter(metrics.ColumnsTotal, float64(len(effective)), metrics.Labels{"kind": "picklist"})
	m.ObserveHistogram(metrics.RunDurationSeconds, time.Since(start).Seconds(), nil)

	if storeKind != "" {
		saveHistory(ctx, store.Config{Kind: storeKind, DSN: storeDSN}, store.RunRecord{
			ID:                uuid.NewString(),
			Job:               "enrich",
			Country:           country,
			StartedAt:         start.UTC(),
			FinishedAt:        time.Now().UTC(),
			Templates:         len(templates),
			ColumnsResolved:   resolved,
			ColumnsUnresolved: unresolved,
		}, effective)
	}

	if saveConfig != "" {
		run := config.Run{
			Country:       country,
			SkipOperation: skipOperation,
			FilesUsed: config.FilesUsed{
				SchemaDictionary:   filepath.Base(schemaPath),
				PicklistReferences: baseNames(splitCSVFlag(refsFlag)),
				Templates:          baseNames(templateNames),
			},
			Assignments: effective,
		}
		if err := run.Save(saveConfig); err != nil {
			fatalf("save config: %v", err)
		}
		if *verbose {
			log.Printf("config: saved %s", saveConfig)
		}
	}

	if *verbose {
		log.Printf("completed %d templates in %s",
			len(templates), time.Since(start).Truncate(time.Millisecond))
	}
}

// loadReferences parses each reference file by extension and merges them in
// argument order. A malformed file is skipped with a warning; the remaining
// sources still apply.
func loadReferences(paths []string, verbose bool) *picklist.Store {
	var parts []picklist.Parsed
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			log.Printf("warning: skipping reference %s: %v", path, err)
			continue
		}

		switch strings.ToLower(filepath.Ext(path)) {
		case ".xlsx", ".xlsm":
			sheets, err := workbook.Open(data)
			if err != nil {
				log.Printf("warning: skipping reference %s: %v", path, err)
				continue
			}
			parts = append(parts, picklist.ParseWorkbook(sheets))
		default:
			t, err := picklist.ParseCSV(data, path)
			if err != nil {
				log.Printf("warning: skipping reference %s: %v", path, err)
				continue
			}
			parts = append(parts, picklist.Parsed{
				Tables: map[string]*picklist.Table{t.Name: t},
			})
		}
	}

	s := picklist.Merge(parts...)
	if verbose {
		log.Printf("references: %d tables, %d auto-mapped columns", len(s.Tables), len(s.AutoMap))
	}
	return s
}

// loadTemplates decodes each template file by extension. Invalid templates are
// excluded with a warning and counted, the rest proceed. The second return
// value keeps the source paths aligned with the kept templates for output
// naming.
func loadTemplates(paths []string, m metrics.Backend) ([]*template.Template, []string) {
	var (
		templates []*template.Template
		names     []string
		invalid   int
	)
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			log.Printf("warning: skipping template %s: %v", path, err)
			invalid++
			continue
		}

		name := filepath.Base(path)
		var t *template.Template
		switch strings.ToLower(filepath.Ext(path)) {
		case ".xlsx", ".xlsm":
			t, err = template.FromWorkbook(name, data)
		default:
			t, err = template.FromCSV(name, data)
		}
		if err != nil {
			log.Printf("warning: skipping template %s: %v", path, err)
			invalid++
			continue
		}
		templates = append(templates, t)
		names = append(names, path)
	}
	if invalid > 0 {
		m.IncCounter(metrics.TemplatesTotal, float64(invalid), metrics.Labels{"status": "invalid"})
	}
	return templates, names
}

func renderGrid(grid [][]string, format string) ([]byte, error) {
	if format == "xlsx" {
		return output.XLSXBytes(grid)
	}
	return output.CSVBytes(grid)
}

// writeOutputs writes each artifact into dir, or one bundled zip when asked.
func writeOutputs(dir string, files []output.File, zipOut bool) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	if zipOut {
		data, err := output.ZipBytes(files)
		if err != nil {
			return fmt.Errorf("bundle zip: %w", err)
		}
		path := filepath.Join(dir, "enriched_templates.zip")
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		log.Printf("wrote %s (%d files)", path, len(files))
		return nil
	}

	for _, f := range files {
		path := filepath.Join(dir, f.Name)
		if err := os.WriteFile(path, f.Data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		log.Printf("wrote %s", path)
	}
	return nil
}

// saveHistory persists the run record and its assignments. History is
// best-effort: a failed save logs and never fails the run that already wrote
// its outputs.
func saveHistory(ctx context.Context, cfg store.Config, rec store.RunRecord, assignments map[string]string) {
	repo, err := store.New(ctx, cfg)
	if err != nil {
		log.Printf("warning: run history disabled: %v", err)
		return
	}
	defer repo.Close()

	if err := repo.EnsureSchema(ctx); err != nil {
		log.Printf("warning: run history schema: %v", err)
		return
	}
	if err := repo.SaveRun(ctx, rec); err != nil {
		log.Printf("warning: save run: %v", err)
		return
	}
	if err := repo.SaveAssignments(ctx, rec.ID, assignments); err != nil {
		log.Printf("warning: save assignments: %v", err)
		return
	}
	log.Printf("run %s recorded (%s)", rec.ID, cfg.Kind)
}

func splitCSVFlag(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func baseNames(paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		out = append(out, filepath.Base(p))
	}
	return out
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
