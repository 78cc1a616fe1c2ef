// Package template loads and validates the JSON template files that name a
// Marigraph session's worker columns and wiring rules. It is
// the minimal loader carved out from the Non-goal "template file parsing" —
// schema validation (unique column ids, dangling wiring references) is the
// one piece it requires, and it's what gives the router real
// WorkerSpec/WiringRule values to dispatch with.
package template

import (
	"encoding/json"
	"fmt"
	"os"
)

// Column describes one worker column: its stable id, a free-form kind
// string selecting worker behavior, and arbitrary string options passed
// through to the worker's environment.
type Column struct {
	ID      string            `json:"id"`
	Type    string            `json:"type"`
	Options map[string]string `json:"options,omitempty"`
}

// EventRef names the (column, event) pair a wiring rule fires on.
type EventRef struct {
	Column string `json:"column"`
	Event  string `json:"event"`
}

// ActionRef names the (column, action) pair a wiring rule performs. Column
// may be "*" to broadcast to every column but the source.
type ActionRef struct {
	Column string `json:"column"`
	Action string `json:"action"`
}

// WiringEntry is one declarative rule: "when On fires, do Do".
type WiringEntry struct {
	On EventRef  `json:"on"`
	Do ActionRef `json:"do"`
}

// Template is the parsed form of a template file: a session name, its
// worker columns, and the wiring table connecting their events to actions.
type Template struct {
	Name    string        `json:"name"`
	Columns []Column      `json:"columns"`
	Wiring  []WiringEntry `json:"wiring"`
}

const wildcardTarget = "*"

// Load reads and validates a template file at path.
func Load(path string) (*Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("template: reading %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates template JSON from data.
func Parse(data []byte) (*Template, error) {
	var t Template
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("template: decoding: %w", err)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

// Validate enforces its configuration invariants: column ids are
// unique, and every wiring source/non-wildcard target references a known
// column id. Dangling wiring references are fatal at startup. Column types
// are not checked: any type string is accepted.
func (t *Template) Validate() error {
	ids := make(map[string]struct{}, len(t.Columns))
	for _, col := range t.Columns {
		if col.ID == "" {
			return fmt.Errorf("template: column with empty id")
		}
		if _, dup := ids[col.ID]; dup {
			return fmt.Errorf("template: duplicate column id %q", col.ID)
		}
		ids[col.ID] = struct{}{}
	}

	for i, w := range t.Wiring {
		if _, ok := ids[w.On.Column]; !ok {
			return fmt.Errorf("template: wiring[%d]: on.column %q is not a declared column", i, w.On.Column)
		}
		if w.Do.Column != wildcardTarget {
			if _, ok := ids[w.Do.Column]; !ok {
				return fmt.Errorf("template: wiring[%d]: do.column %q is not a declared column", i, w.Do.Column)
			}
		}
		if w.On.Event == "" {
			return fmt.Errorf("template: wiring[%d]: on.event is required", i)
		}
		if w.Do.Action == "" {
			return fmt.Errorf("template: wiring[%d]: do.action is required", i)
		}
	}
	return nil
}

// ColumnIDs returns the ids of every declared column, in declaration order.
func (t *Template) ColumnIDs() []string {
	ids := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		ids[i] = col.ID
	}
	return ids
}
