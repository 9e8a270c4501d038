package response

import (
	"regexp"
	"strings"
)

// Safety filter categories. Each triggered category costs 0.1 safety score.
var safetyFilters = map[string][]*regexp.Regexp{
	"inappropriate_content": {
		regexp.MustCompile(`(?i)\b(damn|hell|crap)\b`),
		regexp.MustCompile(`(?i)\b(stupid|dumb|idiotic)\b`),
	},
	"overpromising": {
		regexp.MustCompile(`(?i)\b(guarantee|promised|definitely will)\b`),
		regexp.MustCompile(`(?i)\b(best|perfect|amazing) (deal|price|ever)\b`),
	},
	"pushy_sales": {
		regexp.MustCompile(`(?i)\b(buy now|limited time|act fast)\b`),
		regexp.MustCompile(`(?i)\b(you have to|you must|you need to buy)\b`),
	},
}

var saferAlternatives = map[string]string{
	"damn":            "very",
	"hell":            "really",
	"crap":            "poor quality",
	"stupid":          "not ideal",
	"dumb":            "not the best",
	"guarantee":       "believe",
	"definitely will": "should",
}

// validationResult is the outcome of the safety pass.
type validationResult struct {
	passed      bool
	sanitized   string
	safetyScore float64
	issues      []string
}

// validate runs the safety filters over a drafted message, softening matches
// where a safer synonym exists. The pass threshold is a safety score of at
// least 0.7 with fewer than 3 distinct issue types.
func validate(message string) validationResult {
	sanitized := message
	score := 1.0
	var issues []string

	for _, name := range []string{"inappropriate_content", "overpromising", "pushy_sales"} {
		for _, pattern := range safetyFilters[name] {
			if !pattern.MatchString(sanitized) {
				continue
			}
			sanitized = pattern.ReplaceAllStringFunc(sanitized, saferAlternative)
			score -= 0.1
			issues = append(issues, name+"_detected")
		}
	}

	if len(sanitized) > 800 {
		issues = append(issues, "response_too_long")
		score -= 0.05
	}

	words := strings.Fields(strings.ToLower(sanitized))
	if len(words) > 0 {
		unique := make(map[string]struct{}, len(words))
		for _, w := range words {
			unique[w] = struct{}{}
		}
		if float64(len(unique))/float64(len(words)) < 0.6 {
			issues = append(issues, "repetitive_content")
			score -= 0.1
		}
	}

	if score < 0 {
		score = 0
	}
	return validationResult{
		passed:      score >= 0.7 && len(distinctIssueTypes(issues)) < 3,
		sanitized:   sanitized,
		safetyScore: score,
		issues:      issues,
	}
}

func saferAlternative(match string) string {
	if alt, ok := saferAlternatives[strings.ToLower(match)]; ok {
		return alt
	}
	return match
}

func distinctIssueTypes(issues []string) map[string]struct{} {
	types := make(map[string]struct{}, len(issues))
	for _, i := range issues {
		types[i] = struct{}{}
	}
	return types
}
