package ideas

import (
	"slices"
	"strings"

	"github.com/MrSnakeDoc/atal/internal/domain"
)

const (
	// MinSuggestions is the floor reached by appending the universal template.
	MinSuggestions = 3
	// MaxSuggestions caps the result size.
	MaxSuggestions = 5
)

// Candidate is a template with the number of requested components it uses.
type Candidate struct {
	Idea    domain.ProjectIdea
	Matches int
}

// Generate filters templates for req and returns between min(3, available)
// and 5 suggestions. templates is never modified.
func Generate(templates []domain.ProjectIdea, req domain.GenerateRequest) []domain.ProjectIdea {
	allowed := allowedDifficulties(req.Skill)
	bucket := domain.TimeBucket(strings.TrimSpace(req.Time))
	categories := categoryTokens(req.Categories)

	candidates := make([]Candidate, 0, len(templates))
	for _, t := range templates {
		if !allowed[t.Difficulty] {
			continue
		}
		if bucket != "" && bucket != domain.TimeAnyBucket && t.EstimatedTime != bucket {
			continue
		}
		if len(categories) > 0 && !matchesCategory(t.Category, categories) {
			continue
		}
		candidates = append(candidates, Candidate{
			Idea:    t,
			Matches: CountComponentMatches(t.Components, req.Components),
		})
	}

	RankCandidates(candidates)

	result := make([]domain.ProjectIdea, 0, MaxSuggestions)
	for _, c := range candidates {
		result = append(result, c.Idea)
	}

	if len(result) < MinSuggestions && !containsID(result, universal.ID) {
		result = append(result, Universal())
	}

	if len(result) > MaxSuggestions {
		result = result[:MaxSuggestions]
	}
	return result
}

// RankCandidates sorts by descending match count. Ties keep their order.
func RankCandidates(candidates []Candidate) {
	slices.SortStableFunc(candidates, func(a, b Candidate) int {
		return b.Matches - a.Matches
	})
}

// CountComponentMatches counts the template components that match any
// requested component by case-insensitive substring in either direction.
func CountComponentMatches(templateComponents, requested []string) int {
	if len(requested) == 0 {
		return 0
	}

	wanted := make([]string, 0, len(requested))
	for _, r := range requested {
		if r = strings.ToLower(strings.TrimSpace(r)); r != "" {
			wanted = append(wanted, r)
		}
	}

	count := 0
	for _, tc := range templateComponents {
		name := strings.ToLower(tc)
		for _, w := range wanted {
			if strings.Contains(name, w) || strings.Contains(w, name) {
				count++
				break
			}
		}
	}
	return count
}

// allowedDifficulties maps a skill tier to the template tiers it may see.
// An empty skill is treated as beginner.
func allowedDifficulties(skill string) map[domain.Difficulty]bool {
	switch domain.Difficulty(strings.ToLower(strings.TrimSpace(skill))) {
	case domain.Beginner, "":
		return map[domain.Difficulty]bool{domain.Beginner: true}
	case domain.Intermediate:
		return map[domain.Difficulty]bool{domain.Beginner: true, domain.Intermediate: true}
	default:
		return map[domain.Difficulty]bool{
			domain.Beginner:     true,
			domain.Intermediate: true,
			domain.Advanced:     true,
		}
	}
}

// categoryTokens lowercases the requested categories. A request containing
// "all" disables the category filter.
func categoryTokens(categories []string) []string {
	tokens := make([]string, 0, len(categories))
	for _, c := range categories {
		c = strings.ToLower(strings.TrimSpace(c))
		if c == "" {
			continue
		}
		if c == "all" {
			return nil
		}
		tokens = append(tokens, c)
	}
	return tokens
}

func matchesCategory(category string, tokens []string) bool {
	category = strings.ToLower(category)
	for _, tok := range tokens {
		if strings.Contains(category, tok) || strings.Contains(tok, category) {
			return true
		}
	}
	return false
}

func containsID(ideas []domain.ProjectIdea, id string) bool {
	for _, i := range ideas {
		if i.ID == id {
			return true
		}
	}
	return false
}
