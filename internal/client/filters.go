package client

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	subjectFilterPattern = regexp.MustCompile(`(?i)subject\s+([a-zA-Z_]+)`)
	yearFilterPattern    = regexp.MustCompile(`(?i)(?:year|in)\s+(\d{4})`)
	extraSpacePattern    = regexp.MustCompile(`\s+`)
)

// ParseQueryFilters pulls inline subject and year filters out of a typed
// question, e.g. "give me biology questions in 2012 about cells" narrows to
// biology 2012 and the cleaned question is what gets embedded.
func ParseQueryFilters(query string) (cleaned string, subject string, year int) {
	if m := subjectFilterPattern.FindStringSubmatch(query); m != nil {
		subject = strings.ToLower(strings.ReplaceAll(m[1], "_", " "))
		query = subjectFilterPattern.ReplaceAllString(query, "")
	}

	if m := yearFilterPattern.FindStringSubmatch(query); m != nil {
		year, _ = strconv.Atoi(m[1])
		query = yearFilterPattern.ReplaceAllString(query, "")
	}

	cleaned = strings.TrimSpace(extraSpacePattern.ReplaceAllString(query, " "))
	return cleaned, subject, year
}
