//go:build mage

// Package main contains Mage build targets for paper-embeddings developer tooling.
package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// projectDirs lists the working directories a dataset build expects.
var projectDirs = []string{
	"data",
	".secrets",
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
	binName = "paper-embeddings"
	cmdPkg  = "./cmd/paper-embeddings"
)

// Build compiles the CLI binary into bin/.
func Build() error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", binDir, err)
	}
	out := filepath.Join(binDir, binName)
	if err := sh.RunV("go", "build", "-o", out, cmdPkg); err != nil {
		return fmt.Errorf("go build: %w", err)
	}
	fmt.Printf("Built %s\n", out)
	return nil
}

// Test runs the unit tests.
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// Dataset builds the binary and runs "build" with ./paper-embeddings.yaml,
// writing data/final_embedding.npy and its report.
func Dataset() error {
	mg.Deps(Init, Build)
	return sh.RunV(filepath.Join(binDir, binName), "build",
		"--config", "paper-embeddings.yaml",
		"--output", filepath.Join("data", "final_embedding.npy"),
		"--report")
}

// Stats prints project metrics: Go production/test LOC and the word count
// of the markdown docs.
func Stats() error {
	prodLines, err := countGoLines(".", false)
	if err != nil {
		return err
	}
	testLines, err := countGoLines(".", true)
	if err != nil {
		return err
	}
	docWords, err := countDocWords(".")
	if err != nil {
		return err
	}

	fmt.Printf("Lines of code (Go, production): %d\n", prodLines)
	fmt.Printf("Lines of code (Go, tests):      %d\n", testLines)
	fmt.Printf("Words (markdown):               %d\n", docWords)
	return nil
}

// skipDir reports whether a walk should not descend into the directory
// name. Hidden directories, "_"-prefixed directories (ignored by the Go
// tool), testdata, and build output are not part of the project's source.
func skipDir(root, path, name string) bool {
	if path == root {
		return false
	}
	return strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") ||
		name == "testdata" || name == binDir || name == "data"
}

// walkFiles calls fn for every regular file under root whose extension is
// in exts, skipping directories rejected by skipDir.
func walkFiles(root string, exts []string, fn func(path string, data []byte) error) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if skipDir(root, path, d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if !slices.Contains(exts, filepath.Ext(path)) {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		return fn(path, data)
	})
}

// countGoLines counts non-blank lines in Go files under root. With testOnly
// it counts _test.go files, otherwise the rest.
func countGoLines(root string, testOnly bool) (int, error) {
	total := 0
	err := walkFiles(root, []string{".go"}, func(path string, data []byte) error {
		if strings.HasSuffix(path, "_test.go") != testOnly {
			return nil
		}
		for _, line := range strings.Split(string(data), "\n") {
			if strings.TrimSpace(line) != "" {
				total++
			}
		}
		return nil
	})
	return total, err
}

// countDocWords counts whitespace-separated words in the .md files under root.
func countDocWords(root string) (int, error) {
	total := 0
	err := walkFiles(root, []string{".md"}, func(_ string, data []byte) error {
		total += len(strings.Fields(string(data)))
		return nil
	})
	return total, err
}
