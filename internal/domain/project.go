package domain

import (
	"strings"
	"time"
)

// ProjectStatus is the lifecycle state of a saved project.
type ProjectStatus string

const (
	StatusSaved      ProjectStatus = "saved"
	StatusInProgress ProjectStatus = "in-progress"
	StatusCompleted  ProjectStatus = "completed"
)

// Valid reports whether s is one of the three known statuses.
func (s ProjectStatus) Valid() bool {
	switch s {
	case StatusSaved, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// Project is an idea the user chose to keep.
type Project struct {
	ID           string        `json:"id"`
	Title        string        `json:"title" validate:"required"`
	Category     string        `json:"category"`
	Tags         []string      `json:"tags"`
	Difficulty   string        `json:"difficulty"`
	Status       ProjectStatus `json:"status" validate:"required,oneof=saved in-progress completed"`
	DateSaved    time.Time     `json:"dateSaved"`
	Instructions string        `json:"instructions"`
	Requirements []string      `json:"requirements"`
	Notes        string        `json:"notes,omitempty"`
	UserID       string        `json:"user_id,omitempty"`
}

// Normalize trims the title and defaults the status to saved.
func (p Project) Normalize() Project {
	p.Title = strings.TrimSpace(p.Title)
	if p.Status == "" {
		p.Status = StatusSaved
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	if p.Requirements == nil {
		p.Requirements = []string{}
	}
	return p
}

// ProjectPatch is a partial update. Nil fields are left untouched.
type ProjectPatch struct {
	Title        *string        `json:"title,omitempty" validate:"omitempty,min=1"`
	Category     *string        `json:"category,omitempty"`
	Tags         []string       `json:"tags,omitempty"`
	Difficulty   *string        `json:"difficulty,omitempty"`
	Status       *ProjectStatus `json:"status,omitempty" validate:"omitempty,oneof=saved in-progress completed"`
	Instructions *string        `json:"instructions,omitempty"`
	Requirements []string       `json:"requirements,omitempty"`
	Notes        *string        `json:"notes,omitempty"`
	UserID       *string        `json:"user_id,omitempty"`
}

// Apply returns p with the non-nil fields of patch merged in.
func (patch ProjectPatch) Apply(p Project) Project {
	if patch.Title != nil {
		p.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Category != nil {
		p.Category = *patch.Category
	}
	if patch.Tags != nil {
		p.Tags = append([]string(nil), patch.Tags...)
	}
	if patch.Difficulty != nil {
		p.Difficulty = *patch.Difficulty
	}
	if patch.Status != nil {
		p.Status = *patch.Status
	}
	if patch.Instructions != nil {
		p.Instructions = *patch.Instructions
	}
	if patch.Requirements != nil {
		p.Requirements = append([]string(nil), patch.Requirements...)
	}
	if patch.Notes != nil {
		p.Notes = *patch.Notes
	}
	if patch.UserID != nil {
		p.UserID = *patch.UserID
	}
	return p
}
