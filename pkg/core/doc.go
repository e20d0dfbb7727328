// Package core defines the shared language of pbconsole.
//
// This package contains:
//   - Domain entities (System, Playbook, Step, LogEntry)
//   - Derived status values (PlaybookState, StepStatus)
//
// The Golden Rule: pkg/core imports ONLY stdlib.
// All other packages depend on core, not the reverse.
package core
