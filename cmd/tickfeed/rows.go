package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/bft-labs/tickfeed/pkg/table"
)

// rowLine is one JSON line on stdin or stdout.
type rowLine struct {
	Table string         `json:"table"`
	Row   map[string]any `json:"row"`
}

// writeRows writes one JSON line per row of t. Null sentinels become null.
func writeRows(w io.Writer, t *table.Table) error {
	enc := json.NewEncoder(w)
	for _, row := range t.All() {
		line := rowLine{Table: t.Name(), Row: make(map[string]any, row.Len())}
		for k, v := range row.All() {
			if table.IsNull(v) {
				v = nil
			}
			line.Row[fmt.Sprint(k)] = v
		}
		if err := enc.Encode(line); err != nil {
			return err
		}
	}
	return nil
}

// readRows groups JSON-line rows into tables, in order of first appearance.
func readRows(r io.Reader) ([]*table.Table, error) {
	var (
		order  []*table.Table
		byName = map[string]*table.Table{}
	)

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64<<10), 16<<20)
	for n := 1; sc.Scan(); n++ {
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		var line rowLine
		if err := json.Unmarshal([]byte(text), &line); err != nil {
			return nil, fmt.Errorf("line %d: %w", n, err)
		}

		t, ok := byName[line.Table]
		if !ok {
			var err error
			if t, err = table.New(line.Table); err != nil {
				return nil, fmt.Errorf("line %d: %w", n, err)
			}
			byName[line.Table] = t
			order = append(order, t)
		}
		if err := t.AddRow(line.Row); err != nil {
			return nil, fmt.Errorf("line %d: table %s: %w", n, line.Table, err)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return order, nil
}
