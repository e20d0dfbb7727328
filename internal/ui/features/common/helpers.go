// Package common provides shared types and utilities for UI features.
package common

import (
	"strings"
	"time"

	"github.com/leapstack-labs/pbconsole/pkg/core"
)

// Display layouts.
const (
	DateLayout     = "02/01/2006 15:04"
	DateTimeLayout = "02/01/2006 15:04:05"
)

// inputLayouts are the timestamp shapes the backend is known to send.
var inputLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	time.RFC1123,
	time.RFC1123Z,
	"2006-01-02",
}

// ParseTime parses a backend timestamp in any known layout.
func ParseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range inputLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatDate formats a backend timestamp as day/month/year hour:minute.
// Empty input renders as "-", unparsable input is returned unchanged.
func FormatDate(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	t, ok := ParseTime(s)
	if !ok {
		return s
	}
	return t.Format(DateLayout)
}

// FormatDateTime is FormatDate with seconds, used for log timestamps.
func FormatDateTime(s string) string {
	t, ok := ParseTime(s)
	if !ok {
		return s
	}
	return t.Format(DateTimeLayout)
}

// OrDash returns "-" for empty strings.
func OrDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

// StateClass returns the CSS class for a playbook state.
// RUNNING is shown as success and END as error; other states are unstyled.
func StateClass(state core.PlaybookState) string {
	switch state {
	case core.PlaybookRunning:
		return "state--success"
	case core.PlaybookEnded:
		return "state--error"
	default:
		return ""
	}
}

// PlaybookTypeClass returns the badge class for a playbook type.
func PlaybookTypeClass(t string) string {
	switch strings.ToLower(strings.TrimSpace(t)) {
	case "detection", "detección":
		return "pb-type--detection"
	case "mitigation", "mitigación":
		return "pb-type--mitigation"
	case "remediation", "remediación":
		return "pb-type--remediation"
	case "validation", "validación":
		return "pb-type--validation"
	case "deployment", "despliegue":
		return "pb-type--deployment"
	case "prevention", "prevención":
		return "pb-type--prevention"
	default:
		return "pb-type--default"
	}
}

// NewPlaybookItem prepares a playbook for display.
func NewPlaybookItem(systemID string, pb core.Playbook) PlaybookItem {
	return PlaybookItem{
		ID:          pb.ID,
		SystemID:    systemID,
		Name:        pb.Name,
		Description: pb.Description,
		Type:        OrDash(pb.Type),
		TypeClass:   PlaybookTypeClass(pb.Type),
		CreatedBy:   OrDash(pb.CreatedBy),
		Created:     FormatDate(pb.Created),
		Started:     FormatDate(pb.Started),
		State:       string(pb.State),
		StateClass:  StateClass(pb.State),
	}
}

// NewSystemItems prepares systems (with their playbooks attached) for display.
func NewSystemItems(systems []core.System) []SystemItem {
	items := make([]SystemItem, len(systems))
	for i, s := range systems {
		item := SystemItem{ID: s.ID, Name: s.Name, Description: s.Description}
		for _, pb := range s.Playbooks {
			item.Playbooks = append(item.Playbooks, NewPlaybookItem(s.ID, pb))
		}
		items[i] = item
	}
	return items
}
