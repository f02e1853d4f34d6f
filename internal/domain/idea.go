package domain

import "time"

// Difficulty is the skill tier of an idea template.
type Difficulty string

const (
	Beginner     Difficulty = "beginner"
	Intermediate Difficulty = "intermediate"
	Advanced     Difficulty = "advanced"
)

// TimeBucket is the estimated build time of an idea template.
type TimeBucket string

const (
	TimeUnder2h   TimeBucket = "lt-2h"
	Time2to5h     TimeBucket = "2-5h"
	Time5to10h    TimeBucket = "5-10h"
	TimeOver10h   TimeBucket = "10h-plus"
	TimeAnyBucket TimeBucket = "any"
)

// ProjectIdea is a read-only template. Templates are loaded once from a
// static table and are never created, mutated or destroyed at runtime.
type ProjectIdea struct {
	ID            string     `json:"id" yaml:"id"`
	Title         string     `json:"title" yaml:"title"`
	Description   string     `json:"description" yaml:"description"`
	Difficulty    Difficulty `json:"difficulty" yaml:"difficulty"`
	EstimatedTime TimeBucket `json:"estimatedTime" yaml:"estimated_time"`
	Components    []string   `json:"components" yaml:"components"`
	Category      string     `json:"category" yaml:"category"`
	Instructions  []string   `json:"instructions" yaml:"instructions"`
	CreatedAt     time.Time  `json:"created_at" yaml:"-"`
}

// GenerateRequest describes what the user wants to build.
type GenerateRequest struct {
	Skill      string   `json:"skill,omitempty"`
	Categories []string `json:"categories,omitempty"`
	Components []string `json:"components,omitempty"`
	Time       string   `json:"time,omitempty"`
	Notes      string   `json:"notes,omitempty"`
}
