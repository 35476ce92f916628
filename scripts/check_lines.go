// If you are AI: This script enforces a per-file line-count ceiling
// across the Go source tree, keeping individual files small enough to
// review at a glance.

//go:build ignore

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const maxLinesPerFile = 300

func isCheckedGoFile(path string) bool {
	if !strings.HasSuffix(path, ".go") {
		return false
	}
	return !strings.Contains(path, "/vendor/") && !strings.Contains(path, "/testdata/")
}

func countLines(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return strings.Count(string(data), "\n"), nil
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <directory>\n", os.Args[0])
		os.Exit(1)
	}
	root := os.Args[1]

	var oversized []string
	walkErr := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !isCheckedGoFile(path) {
			return nil
		}
		lines, err := countLines(path)
		if err != nil {
			return err
		}
		if lines > maxLinesPerFile {
			oversized = append(oversized, fmt.Sprintf("%s: %d lines (max %d)", path, lines, maxLinesPerFile))
		}
		return nil
	})
	if walkErr != nil {
		fmt.Fprintf(os.Stderr, "error walking %s: %v\n", root, walkErr)
		os.Exit(1)
	}

	if len(oversized) > 0 {
		fmt.Fprintf(os.Stderr, "files exceeding %d lines:\n", maxLinesPerFile)
		for _, f := range oversized {
			fmt.Fprintf(os.Stderr, "  %s\n", f)
		}
		os.Exit(1)
	}
}
