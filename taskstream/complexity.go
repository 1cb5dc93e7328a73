package taskstream

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/cliky/cliky/models"
)

// ComplexThreshold is the score at or above which a task is considered
// complex and becomes a candidate for subtask expansion.
const ComplexThreshold = 7

// maxComplexity caps the additive score.
const maxComplexity = 10

// riskKeywords flag domains that historically blow up estimates. Matched
// case-insensitively as substrings of title+description+details.
var riskKeywords = []string{
	"integration",
	"authentication",
	"authorization",
	"deployment",
	"migration",
	"refactor",
	"optimization",
	"architecture",
	"security",
	"performance",
	"database",
	"api",
	"third-party",
	"payment",
	"real-time",
	"websocket",
	"microservice",
}

// hoursPattern extracts the first integer preceding an hour-unit token.
// Unit tokens cover the English forms plus the non-English ones the
// upstream generator has been seen to emit.
var hoursPattern = regexp.MustCompile(`(?i)(\d+)\s*(?:hours?|hrs?|horas?|stunden?)`)

// Score computes a 0-10 complexity score from the task's fields using an
// additive point system. Pure and deterministic: equal inputs always
// produce equal scores.
func Score(t models.Task) int {
	score := 0

	// Estimated duration
	if h, ok := parseEstimatedHours(t.EstimatedTime); ok {
		switch {
		case h >= 6:
			score += 3
		case h >= 4:
			score += 2
		case h >= 2:
			score += 1
		}
	}

	// Combined text length
	switch l := len(t.Description) + len(t.Details); {
	case l >= 200:
		score += 2
	case l >= 100:
		score += 1
	}

	// Dependency fan-in
	switch {
	case len(t.Dependencies) >= 2:
		score += 2
	case len(t.Dependencies) >= 1:
		score += 1
	}

	// Priority weight
	switch t.Priority {
	case models.PriorityHigh:
		score += 2
	case models.PriorityMedium:
		score += 1
	}

	// Risk keywords: flat +1 no matter how many match.
	haystack := strings.ToLower(t.Title + " " + t.Description + " " + t.Details)
	for _, kw := range riskKeywords {
		if strings.Contains(haystack, kw) {
			score++
			break
		}
	}

	if score > maxComplexity {
		score = maxComplexity
	}
	return score
}

// IsComplex reports whether a task's score marks it for expansion.
func IsComplex(t models.Task) bool {
	return t.Complexity >= ComplexThreshold
}

// parseEstimatedHours pulls the leading hour count out of a free-text
// duration such as "3-4 hours" or "2 hrs". The first integer before a
// recognized unit wins; anything else reports no estimate.
func parseEstimatedHours(estimate string) (int, bool) {
	if estimate == "" {
		return 0, false
	}
	m := hoursPattern.FindStringSubmatch(estimate)
	if m == nil {
		return 0, false
	}
	h, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return h, true
}
