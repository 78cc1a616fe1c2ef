package template

import "github.com/superposition/marigraph/internal/router"

// WorkerSpecs converts a template's columns into router.WorkerSpec values,
// one subprocess per column. command is the worker binary to exec (the
// caller's own `marigraph worker` re-exec path); args come first, followed
// by a `-column <id> -kind <type>` pair so the worker binary can select its
// behavior.
func (t *Template) WorkerSpecs(command string, args ...string) []router.WorkerSpec {
	specs := make([]router.WorkerSpec, len(t.Columns))
	for i, col := range t.Columns {
		specs[i] = router.WorkerSpec{
			ID:      col.ID,
			Kind:    col.Type,
			Command: command,
			Args:    append(append([]string{}, args...), "-column", col.ID, "-kind", col.Type),
			Options: col.Options,
		}
	}
	return specs
}

// WiringRules converts a template's wiring table into router.WiringRule
// values, preserving declaration order (declarative wiring rules must
// fire in table order for a single inbound event).
func (t *Template) WiringRules() []router.WiringRule {
	rules := make([]router.WiringRule, len(t.Wiring))
	for i, w := range t.Wiring {
		rules[i] = router.WiringRule{
			Source:     w.On.Column,
			EventName:  w.On.Event,
			Target:     w.Do.Column,
			ActionName: w.Do.Action,
		}
	}
	return rules
}
