package main

import (
	"fmt"
	"os"
)

// preflight creates the output directory if needed and checks that new
// layers can be created in it.
func preflight(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("output_dir: %w", err)
	}
	fi, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("output_dir: %w", err)
	}
	if !fi.IsDir() {
		return fmt.Errorf("output_dir: %s is not a directory", dir)
	}
	if err := checkWritable(dir); err != nil {
		return fmt.Errorf("output_dir: %s is not writable: %w", dir, err)
	}
	return nil
}
