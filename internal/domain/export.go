package domain

import "time"

// ExportDocument is the backup layout of every persisted document.
// On import only the fields present in the document are applied; an empty
// task or session list is present and clears the stored one.
type ExportDocument struct {
	Settings   *Settings   `json:"settings,omitempty" yaml:"settings,omitempty"`
	Tasks      []*Task     `json:"tasks" yaml:"tasks"`
	Sessions   []*Session  `json:"sessions" yaml:"sessions"`
	Statistics *Statistics `json:"statistics,omitempty" yaml:"statistics,omitempty"`
	ExportDate time.Time   `json:"exportDate" yaml:"exportDate"`
}
