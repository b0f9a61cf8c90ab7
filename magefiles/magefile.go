//go:build mage

// Package main contains Mage build targets for research-impact developer tooling.
package main

import (
	"bufio"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// projectDirs lists the working directories the CLI writes to or reads from.
var projectDirs = []string{
	".secrets",
	"output/impact",
	"output/funding",
}

// Init creates the project directory structure.
func Init() error {
	for _, dir := range projectDirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
		fmt.Println("  ", dir)
	}
	fmt.Println("Project directories initialized.")
	return nil
}

const (
	binDir  = "bin"
	binName = "research-impact"
	cmdPkg  = "./cmd/research-impact"
)

func binPath() string { return filepath.Join(binDir, binName) }

// Build compiles the CLI binary into bin/.
func Build() error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", binDir, err)
	}
	if err := sh.RunV("go", "build", "-o", binPath(), cmdPkg); err != nil {
		return fmt.Errorf("go build: %w", err)
	}
	fmt.Printf("Built %s\n", binPath())
	return nil
}

// Test runs the unit tests with the race detector.
func Test() error {
	return sh.RunV("go", "test", "-race", "./...")
}

// Impact builds the CLI and runs the impact pipeline for the configured authors.
func Impact() error {
	mg.Deps(Init, Build)
	return sh.RunV(binPath(), "impact")
}

// Funding groups the funding collection targets.
type Funding mg.Namespace

// Scrape scrapes the IDRC funding page.
func (Funding) Scrape() error {
	mg.Deps(Init, Build)
	return sh.RunV(binPath(), "funding", "scrape")
}

// Aggregate collects NIH RePORTER, Grants.gov, and IDRC opportunities.
func (Funding) Aggregate() error {
	mg.Deps(Init, Build)
	return sh.RunV(binPath(), "funding", "aggregate")
}

// Stats prints project metrics: Go production/test LOC and documentation word count.
func Stats() error {
	var prod, tests, words int
	err := filepath.WalkDir(".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if name := d.Name(); name != "." && (strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") || name == binDir) {
				return filepath.SkipDir
			}
			return nil
		}
		switch ext := filepath.Ext(path); {
		case ext == ".go":
			n, err := countLines(path)
			if err != nil {
				return err
			}
			if strings.HasSuffix(path, "_test.go") {
				tests += n
			} else {
				prod += n
			}
		case ext == ".md" || ext == ".yaml" || ext == ".yml":
			n, err := countWords(path)
			if err != nil {
				return err
			}
			words += n
		}
		return nil
	})
	if err != nil {
		return err
	}

	fmt.Printf("Lines of code (Go, production): %d\n", prod)
	fmt.Printf("Lines of code (Go, tests):      %d\n", tests)
	fmt.Printf("Words (documentation):           %d\n", words)
	return nil
}

// countLines counts the non-blank lines of a file.
func countLines(path string) (int, error) {
	return scanFile(path, bufio.ScanLines, func(tok string) bool { return strings.TrimSpace(tok) != "" })
}

// countWords counts whitespace-separated tokens in a file.
func countWords(path string) (int, error) {
	return scanFile(path, bufio.ScanWords, func(string) bool { return true })
}

func scanFile(path string, split bufio.SplitFunc, keep func(string) bool) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("reading %s: %w", path, err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	sc.Split(split)
	n := 0
	for sc.Scan() {
		if keep(sc.Text()) {
			n++
		}
	}
	if err := sc.Err(); err != nil {
		return 0, fmt.Errorf("reading %s: %w", path, err)
	}
	return n, nil
}
