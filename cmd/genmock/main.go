// Command genmock writes synthetic Argo profile files for local runs of the
// ETL and inspect commands. Each file holds one profile built by the same
// fixture the unit tests use.
//
// Usage:
//
//	go run ./cmd/genmock -out data/2901237 -platform 2901237 -cycles 5 -mode R
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/couchcryptid/argo-profile-etl/internal/domain"
	"github.com/couchcryptid/argo-profile-etl/internal/domain/argotest"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "", "directory to write profile files into")
	platform := flag.String("platform", "2901237", "platform number")
	cycles := flag.Int("cycles", 3, "number of cycles to write, starting at 1")
	mode := flag.String("mode", domain.ModeRealtime, "DATA_MODE of every profile (R, A or D)")
	flag.Parse()

	if *out == "" || *cycles < 1 {
		flag.Usage()
		return fmt.Errorf("missing required flags: -out, -cycles >= 1")
	}
	if err := os.MkdirAll(*out, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", *out, err)
	}

	paths, err := generate(*out, *platform, *cycles, *mode)
	if err != nil {
		return err
	}
	for _, p := range paths {
		log.Printf("wrote %s", p)
	}
	log.Printf("total: %d files", len(paths))
	return nil
}

// generate writes cycles 1..n for platform into dir.
func generate(dir, platform string, n int, mode string) ([]string, error) {
	paths := make([]string, 0, n)
	for cycle := 1; cycle <= n; cycle++ {
		path := filepath.Join(dir, fileName(platform, cycle, mode))
		if err := writeContainer(path, argotest.Profile(platform, cycle, mode)); err != nil {
			return nil, fmt.Errorf("cycle %d: %w", cycle, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// fileName follows the GDAC naming: D for delayed-mode files, R otherwise.
func fileName(platform string, cycle int, mode string) string {
	prefix := "R"
	if mode == "D" {
		prefix = "D"
	}
	return fmt.Sprintf("%s%s_%03d.nc", prefix, platform, cycle)
}
