// Package common provides shared types and utilities for UI features.
package common

// LayoutData holds what the page shell needs on every page.
type LayoutData struct {
	Title       string
	User        string
	CurrentPath string
	// UpdatesURL is the SSE endpoint the page subscribes to on load, if any.
	UpdatesURL string
}

// PlaybookItem is a playbook prepared for display.
type PlaybookItem struct {
	ID          string
	SystemID    string
	Name        string
	Description string
	Type        string
	TypeClass   string
	CreatedBy   string
	Created     string
	Started     string
	State       string
	StateClass  string
}

// SystemItem is a system with its playbooks prepared for display.
type SystemItem struct {
	ID          string
	Name        string
	Description string
	Playbooks   []PlaybookItem
}
