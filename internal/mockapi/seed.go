package mockapi

import (
	"context"
	"fmt"
	"time"

	"github.com/leapstack-labs/pbconsole/pkg/core"
)

type seedStep struct {
	name, description, stepType string
	active, checked             bool
}

type seedLog struct {
	shape, body string
}

type seedPlaybook struct {
	playbook core.Playbook
	steps    []seedStep
	logs     []seedLog
}

func demoData() []seedPlaybook {
	return []seedPlaybook{
		{
			playbook: core.Playbook{
				ID: "pb-001", Name: "Ransomware containment", Type: "Mitigation",
				Description: "Isolate infected hosts and stop lateral movement",
				CreatedBy:   "soc-team", State: core.PlaybookRunning,
			},
			steps: []seedStep{
				{name: "Detect encryption activity", description: "Confirm mass file changes", stepType: "detection", checked: true},
				{name: "Isolate host", description: "Quarantine the endpoint from the network", stepType: "action", active: true},
				{name: "Block C2 domains", description: "Push indicators to the proxy", stepType: "action"},
				{name: "Notify owners", description: "Open a ticket for the asset owners", stepType: "notification"},
			},
			logs: []seedLog{
				{ShapeText, "Playbook started"},
				{ShapeMessage, "Encryption activity confirmed on host-17"},
				{ShapeString, "Isolating host-17"},
			},
		},
		{
			playbook: core.Playbook{
				ID: "pb-002", Name: "Phishing triage", Type: "Detection",
				Description: "Analyse reported emails and purge matches",
				CreatedBy:   "analyst", State: core.PlaybookRunning,
			},
			steps: []seedStep{
				{name: "Parse report", description: "Extract headers and URLs", stepType: "analysis", active: true},
				{name: "Detonate attachments", description: "Run attachments in the sandbox", stepType: "analysis"},
				{name: "Purge mailboxes", description: "Remove matching messages", stepType: "action"},
			},
			logs: []seedLog{
				{ShapeText, "Report received"},
			},
		},
		{
			playbook: core.Playbook{
				ID: "pb-003", Name: "Emergency patch rollout", Type: "Deployment",
				Description: "Deploy the vendor hotfix to exposed servers",
				CreatedBy:   "ops", State: core.PlaybookEnded,
			},
			steps: []seedStep{
				{name: "Stage patch", stepType: "action", checked: true},
				{name: "Deploy to canary", stepType: "action", checked: true},
				{name: "Deploy fleet-wide", stepType: "action", checked: true},
			},
			logs: []seedLog{
				{ShapeText, "Patch staged"},
				{ShapeMessage, "Canary healthy"},
				{ShapeString, "Playbook finished"},
			},
		},
	}
}

// Seed inserts the demo playbooks when the store is empty.
// It reports whether anything was inserted.
func (s *Store) Seed(ctx context.Context, now time.Time) (bool, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM playbooks`).Scan(&n); err != nil {
		return false, fmt.Errorf("failed to count playbooks: %w", err)
	}
	if n > 0 {
		return false, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	created := now.Add(-2 * time.Hour).UTC().Format(time.RFC3339)
	started := now.Add(-90 * time.Minute).UTC().Format(time.RFC3339)
	ts := now.UTC().Format(time.RFC3339)

	for _, sp := range demoData() {
		pb := sp.playbook
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO playbooks (id, name, description, playbook_type, created_by, created, started, modified, state)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			pb.ID, pb.Name, pb.Description, pb.Type, pb.CreatedBy, created, started, ts, string(pb.State)); err != nil {
			return false, fmt.Errorf("failed to seed playbook %s: %w", pb.ID, err)
		}
		for i, st := range sp.steps {
			id := fmt.Sprintf("%s-s%d", pb.ID, i+1)
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO steps (id, playbook_id, position, name, description, step_type, active, checked, last_modified)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				id, pb.ID, i, st.name, st.description, st.stepType, st.active, st.checked, ts); err != nil {
				return false, fmt.Errorf("failed to seed step %s: %w", id, err)
			}
		}
		for _, l := range sp.logs {
			if err := appendLog(ctx, tx, pb.ID, l.shape, l.body, started); err != nil {
				return false, err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit seed: %w", err)
	}
	s.logger.Info("seeded demo playbooks", "count", len(demoData()))
	return true, nil
}
