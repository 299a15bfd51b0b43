package file

import (
	"bufio"
	"context"
	"strings"

	"topnsplit/internal/datasource"
)

// ReadList reads a list file and returns its entries in order.
//
// Blank lines and lines starting with '#' are skipped. A line may hold
// several comma-separated entries, so both
//
//	farming
//	forestry, fishing
//
// yield [farming forestry fishing]. Entries are trimmed; empty entries are
// dropped. Duplicates are kept; callers de-duplicate if they need to.
func ReadList(ctx context.Context, src datasource.Source) ([]string, error) {
	rc, err := src.Open(ctx)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	var out []string
	scanner := bufio.NewScanner(rc)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		for _, part := range strings.Split(line, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
