// Package heuristic implements the keyword-overlap fallback scorer used when
// no trained pipeline is available, e.g. when the labeled history holds a
// single class. It is a pure substring match with no learning step and is
// materially lower-precision than the trained pipeline; it exists only as a
// degraded mode.
package heuristic

import "strings"

const (
	requiredPoints  = 10
	synonymPoints   = 5
	desirablePoints = 3
)

// CompetencyProfile is the structured competency extraction for one
// requisition, produced by the AI extractor. Field names follow the
// extraction schema.
type CompetencyProfile struct {
	Required  []string            `json:"obrigatorias" mapstructure:"obrigatorias"`
	Desirable []string            `json:"desejaveis" mapstructure:"desejaveis"`
	Synonyms  map[string][]string `json:"sinonimos" mapstructure:"sinonimos"`
}

// Empty reports whether the profile carries no competencies at all.
func (p *CompetencyProfile) Empty() bool {
	return p == nil || (len(p.Required) == 0 && len(p.Desirable) == 0 && len(p.Synonyms) == 0)
}

// Score computes the keyword-overlap score of a candidate's text against the
// competency profile: +10 per required competency found as a
// case-insensitive substring, +5 for the first matching synonym of each
// required competency, +3 per desirable competency found. Deterministic and
// side-effect free.
func Score(candidateText string, profile *CompetencyProfile) int {
	if profile.Empty() {
		return 0
	}

	text := strings.ToLower(candidateText)
	score := 0

	for _, competency := range profile.Required {
		if containsFold(text, competency) {
			score += requiredPoints
		}
		for _, synonym := range profile.Synonyms[competency] {
			if containsFold(text, synonym) {
				score += synonymPoints
				break
			}
		}
	}

	for _, competency := range profile.Desirable {
		if containsFold(text, competency) {
			score += desirablePoints
		}
	}

	return score
}

// containsFold reports whether the already-lowercased text contains the
// term, case-insensitively on the term side.
func containsFold(loweredText, term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return false
	}
	return strings.Contains(loweredText, term)
}
