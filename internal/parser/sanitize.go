package parser

import (
	"fmt"
	"strings"
)

// Sanitize normalizes header names and drops rows whose width differs from
// the header. It returns the number of rows dropped by this call.
func Sanitize(t *Table) int {
	if t == nil {
		return 0
	}
	for i, c := range t.Columns {
		c = strings.TrimSpace(strings.TrimPrefix(c, "\ufeff"))
		if c == "" {
			c = fmt.Sprintf("column_%d", i+1)
		}
		t.Columns[i] = c
	}
	kept := t.Rows[:0]
	dropped := 0
	for _, row := range t.Rows {
		if len(row) != len(t.Columns) {
			dropped++
			continue
		}
		kept = append(kept, row)
	}
	t.Rows = kept
	t.Dropped += dropped
	return dropped
}
