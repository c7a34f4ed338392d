//go:build mage

// Package main contains Mage build targets for amidict developer tooling.
package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// projectDirs lists the working directories the CLI targets write to.
var projectDirs = []string{
	"dictionaries",
	"corpus",
	"output/annotated",
	"output/encyclopedia",
	"cache",
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
	binName = "amidict"
	cmdPkg  = "./cmd/amidict"
)

// Build compiles the CLI binary into bin/.
func Build() error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", binDir, err)
	}
	out := filepath.Join(binDir, binName)
	ldflags := "-X main.version=" + version()
	if err := sh.RunV("go", "build", "-ldflags", ldflags, "-o", out, cmdPkg); err != nil {
		return fmt.Errorf("go build: %w", err)
	}
	fmt.Printf("Built %s\n", out)
	return nil
}

// version returns the git description of HEAD, or "dev".
func version() string {
	v, err := sh.Output("git", "describe", "--tags", "--always", "--dirty")
	if err != nil || v == "" {
		return "dev"
	}
	return v
}

// Test runs the unit tests.
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// Dictionary builds dictionaries/<name>.xml from dictionaries/<name>.txt
// with Wikipedia and Wikidata enrichment, then validates it.
func Dictionary(name string) error {
	mg.Deps(Init, Build)
	bin := filepath.Join(binDir, binName)
	words := filepath.Join("dictionaries", name+".txt")
	out := filepath.Join("dictionaries", name+".xml")
	if err := sh.RunV(bin, "build", "--words", words, "--out", out,
		"--wikipedia", "--wikidata", "--cache", filepath.Join("cache", "fetch.db")); err != nil {
		return err
	}
	return sh.RunV(bin, "validate", out)
}

// Annotate marks up corpus/<doc>.html with dictionaries/<name>.xml.
func Annotate(name, doc string) error {
	mg.Deps(Init, Build)
	bin := filepath.Join(binDir, binName)
	return sh.RunV(bin, "annotate",
		"--dict", filepath.Join("dictionaries", name+".xml"),
		"--in", filepath.Join("corpus", doc+".html"),
		"--out", filepath.Join("output", "annotated", doc+".html"),
		"--counts")
}

// Stats prints Go production and test line counts and the number of
// entries in every dictionary under dictionaries/.
func Stats() error {
	prod, test, err := countGoLines(".")
	if err != nil {
		return err
	}
	fmt.Printf("Lines of code (Go, production): %d\n", prod)
	fmt.Printf("Lines of code (Go, tests):      %d\n", test)

	dicts, err := filepath.Glob(filepath.Join("dictionaries", "*.xml"))
	if err != nil {
		return err
	}
	for _, path := range dicts {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		fmt.Printf("%-32s %d entries\n", filepath.Base(path)+":", strings.Count(string(data), "<entry "))
	}
	return nil
}

// countGoLines counts non-blank lines in Go files below root, split into
// production and _test.go files. The _examples and vendor trees are skipped.
func countGoLines(root string) (prod, test int, err error) {
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if name := d.Name(); name == "_examples" || name == "vendor" {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".go" {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		n := 0
		for _, line := range strings.Split(string(data), "\n") {
			if strings.TrimSpace(line) != "" {
				n++
			}
		}
		if strings.HasSuffix(path, "_test.go") {
			test += n
		} else {
			prod += n
		}
		return nil
	})
	return prod, test, err
}
