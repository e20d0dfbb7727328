package feed

import "github.com/leapstack-labs/pbconsole/pkg/core"

// Highlight returns the ids of steps in current that changed since previous.
//
// A step is changed when it is new or when its active or check flag differs.
// With no previous collection nothing is marked, so a first render never highlights.
func Highlight(previous, current []core.Step) map[string]bool {
	changed := make(map[string]bool)
	if len(previous) == 0 {
		return changed
	}

	prevByID := make(map[string]core.Step, len(previous))
	for _, s := range previous {
		prevByID[s.ID] = s
	}

	for _, s := range current {
		prev, ok := prevByID[s.ID]
		if !ok || prev.Active != s.Active || prev.Check != s.Check {
			changed[s.ID] = true
		}
	}
	return changed
}
