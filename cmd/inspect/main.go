package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"enrich/internal/match"
	"enrich/internal/schema"
	"enrich/internal/store"
	"enrich/internal/template"
	"enrich/internal/transform"

	_ "enrich/internal/store/mssql"
	_ "enrich/internal/store/postgres"
	_ "enrich/internal/store/sqlite"
)

// main is the entry point for the inspection binary. It reports what the
// enrichment engine would do without writing any outputs: index statistics,
// per-template entity matches, unresolved columns, picklist candidates, and
// saved run history.
func main() {
	var (
		schemaPath  string
		country     string
		storeKind   string
		storeDSN    string
		listRuns    int
		assignments string
	)

	flag.StringVar(&schemaPath, "schema", "", "schema dictionary XML path")
	flag.StringVar(&country, "country", "GBR", "preferred country code for entity matching")
	flag.StringVar(&storeKind, "store", "", "run-history backend (sqlite, postgres, mssql)")
	flag.StringVar(&storeDSN, "store-dsn", "", "run-history backend DSN")
	flag.IntVar(&listRuns, "runs", 0, "list the N most recent runs from the history store")
	flag.StringVar(&assignments, "assignments", "", "print the saved assignments of this run ID")

	flag.Parse()

	if storeKind != "" && (listRuns > 0 || assignments != "") {
		inspectHistory(storeKind, storeDSN, listRuns, assignments)
		return
	}

	if schemaPath == "" {
		fatalf("missing -schema")
	}

	raw, err := os.ReadFile(schemaPath)
	if err != nil {
		fatalf("read schema: %v", err)
	}
	ix, err := schema.Build(raw)
	if err != nil {
		fatalf("build schema index: %v", err)
	}

	fmt.Printf("schema: %d entities, %d properties, %d distinct names\n",
		ix.Entities(), ix.Properties(), len(ix.Global))

	kw := transform.DefaultKeywords()
	var templates []*template.Template
	for _, path := range flag.Args() {
		t, err := loadTemplate(path)
		if err != nil {
			log.Printf("warning: skipping %s: %v", path, err)
			continue
		}
		templates = append(templates, t)

		m := match.Best(schema.NormalizeSet(t.Columns), ix, country)
		entity := m.EntityType
		if entity == "" {
			entity = "(none)"
		}
		fmt.Printf("\n%s: entity=%s matched=%d ratio=%.3f bonus=%+d\n",
			t.Name, entity, m.MatchedColumns, m.MatchRatio, m.CountryBonus)

		for _, col := range t.Columns {
			norm := schema.Normalize(col)
			p := match.Resolve(norm, m.EntityType, ix)
			if p == nil {
				fmt.Printf("  %-32s UNRESOLVED\n", col)
				continue
			}
			scope := "global"
			if p.EntityType == m.EntityType {
				scope = "entity"
			}
			fmt.Printf("  %-32s %-10s %-8s %s\n", col, schema.FriendlyType(p.EdmType), scope, p.DisplayLabel())
		}
	}

	if len(templates) > 0 {
		cands := transform.Candidates(templates, ix, kw)
		fmt.Printf("\npicklist candidates: %d\n", len(cands))
		for _, c := range cands {
			fmt.Printf("  %-32s (first seen in %s)\n", c.Column, c.Template)
		}
		for _, name := range transform.MissingIdentity(templates) {
			fmt.Printf("missing identity column: %s\n", name)
		}
	}
}

func inspectHistory(kind, dsn string, listRuns int, runID string) {
	ctx := context.Background()
	repo, err := store.New(ctx, store.Config{Kind: kind, DSN: dsn})
	if err != nil {
		fatalf("open store: %v", err)
	}
	defer repo.Close()

	if runID != "" {
		got, err := repo.LoadAssignments(ctx, runID)
		if err != nil {
			fatalf("load assignments: %v", err)
		}
		fmt.Printf("run %s: %d assignments\n", runID, len(got))
		for col, vals := range got {
			fmt.Printf("  %-32s %s\n", col, vals)
		}
		return
	}

	runs, err := repo.ListRuns(ctx, listRuns)
	if err != nil {
		fatalf("list runs: %v", err)
	}
	for _, r := range runs {
		fmt.Printf("%s  %s  country=%s templates=%d resolved=%d unresolved=%d  %s\n",
			r.StartedAt.Format("2006-01-02 15:04:05"), r.ID, r.Country,
			r.Templates, r.ColumnsResolved, r.ColumnsUnresolved,
			r.FinishedAt.Sub(r.StartedAt).String())
	}
}

func loadTemplate(path string) (*template.Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	name := filepath.Base(path)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return template.FromWorkbook(name, data)
	default:
		return template.FromCSV(name, data)
	}
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
