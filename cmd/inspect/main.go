// Command inspect converts profile files without a sink. With -file it prints
// the metadata and profile documents of one file as indented JSON. With -dir
// it converts every file in a directory and checks the resulting documents.
//
// Usage:
//
//	go run ./cmd/inspect -file data/2901237/R2901237_001.nc
//	go run ./cmd/inspect -dir data/2901237
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"

	"github.com/couchcryptid/argo-profile-etl/internal/adapter/netcdf"
	"github.com/couchcryptid/argo-profile-etl/internal/domain"
	"github.com/couchcryptid/argo-profile-etl/internal/observability"
	"github.com/couchcryptid/argo-profile-etl/internal/pipeline"
)

func main() {
	file := flag.String("file", "", "profile file to print as JSON")
	dir := flag.String("dir", "", "directory of profile files to check")
	verbose := flag.Bool("v", false, "log per-file progress")
	flag.Parse()

	if (*file == "") == (*dir == "") {
		flag.Usage()
		os.Exit(1)
	}

	logger := sharedobs.NewLogger(logLevel(*verbose, *file != ""), "text")

	var code int
	if *file != "" {
		code = printFile(*file, logger)
	} else {
		code = checkDir(*dir, logger)
	}
	os.Exit(code)
}

// logLevel picks the log level. Logs share stdout with the JSON document in
// -file mode, so only errors are logged there unless -v is set.
func logLevel(verbose, printing bool) string {
	switch {
	case verbose:
		return "debug"
	case printing:
		return "error"
	default:
		return "warn"
	}
}

// printFile writes {"metadata": ..., "profile": ...} to stdout.
func printFile(path string, logger *slog.Logger) int {
	rec := &recorder{}
	p := pipeline.New(netcdf.Opener{}, rec, logger, observability.NewMetricsForTesting())

	if _, err := p.ProcessFile(context.Background(), domain.NewMetaCache(), path); err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		return 1
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	err := enc.Encode(struct {
		Metadata domain.MetaRecord    `json:"metadata"`
		Profile  domain.ProfileRecord `json:"profile"`
	}{rec.metas[0], rec.profiles[0]})
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: encode: %v\n", err)
		return 1
	}
	return 0
}

func checkDir(dir string, logger *slog.Logger) int {
	paths, err := netcdf.ListFiles(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		return 1
	}

	fmt.Println("=== Argo Profile Conversion Check ===")
	fmt.Println()

	rec := &recorder{}
	p := pipeline.New(netcdf.Opener{}, rec, logger, observability.NewMetricsForTesting())
	summary, err := p.Run(context.Background(), paths)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		return 1
	}

	phases := []*phase{
		checkConversion(summary),
		checkModeExclusivity(rec.profiles),
		checkLinkage(rec.metas, rec.profiles),
		checkQueryFields(rec.profiles),
	}

	allPassed := true
	for _, ph := range phases {
		status := "\033[32mPASS\033[0m"
		if !ph.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(ph.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", ph.name, status)
	}

	fmt.Println()
	fmt.Printf("Files: %d total, %d converted, %d skipped. Documents: %d metadata, %d profiles\n",
		summary.Files, summary.Converted, summary.Skipped, len(rec.metas), len(rec.profiles))

	for _, ph := range phases {
		if ph.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", ph.name)
		for i, e := range ph.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll checks passed.")
		return 0
	}
	fmt.Println("\nCheck FAILED.")
	return 1
}
