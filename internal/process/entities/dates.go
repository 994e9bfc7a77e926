package entities

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

const (
	isoDateLayout = "2006-01-02"
	minValidYear  = 1900
	maxValidYear  = 2100
	monthsPerQtr  = 3
)

const monthAlternation = `(?:jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|june?|july?|aug(?:ust)?|sep(?:t(?:ember)?)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?)`

// Date pattern families, applied in this order. A span matched by an earlier
// family is not re-read by a later one, so "15 March 2024" never also yields
// a month-year hit.
var dateFamilies = []*regexp.Regexp{
	regexp.MustCompile(`\b\d{4}-\d{1,2}-\d{1,2}\b`),
	regexp.MustCompile(`\b\d{1,2}/\d{1,2}/\d{4}\b`),
	regexp.MustCompile(`(?i)\b` + monthAlternation + `\.?\s+\d{1,2}(?:st|nd|rd|th)?,?\s+\d{4}\b`),
	regexp.MustCompile(`(?i)\b\d{1,2}(?:st|nd|rd|th)?\s+` + monthAlternation + `\.?,?\s+\d{4}\b`),
	regexp.MustCompile(`(?i)\bQ[1-4]\s*[-/ ]?\s*\d{4}\b`),
	regexp.MustCompile(`(?i)\b` + monthAlternation + `\.?,?\s+\d{4}\b`),
}

var (
	quarterPattern   = regexp.MustCompile(`(?i)^Q([1-4])\s*[-/ ]?\s*(\d{4})$`)
	monthYearPattern = regexp.MustCompile(`(?i)^(` + monthAlternation + `)\.?,?\s+(\d{4})$`)
	ordinalSuffix    = regexp.MustCompile(`(?i)\b(\d{1,2})(?:st|nd|rd|th)\b`)
)

// Layouts tried before falling back to dateparse, so the common written
// forms are resolved deterministically.
var strictLayouts = []string{
	isoDateLayout,
	"2006-1-2",
	"1/2/2006",
	"January 2, 2006",
	"January 2 2006",
	"Jan 2, 2006",
	"Jan 2 2006",
	"Jan. 2, 2006",
	"2 January 2006",
	"2 January, 2006",
	"2 Jan 2006",
	"2 Jan. 2006",
}

var monthByPrefix = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "aug": time.August, "sep": time.September,
	"oct": time.October, "nov": time.November, "dec": time.December,
}

// ParseDate normalises a date fragment to ISO YYYY-MM-DD. Partial dates
// anchor to the start of their period: quarters to the first day of the
// quarter, month-year to day 1. It reports false for anything it cannot
// read as a valid calendar date.
func ParseDate(fragment string) (string, bool) {
	s := strings.TrimSpace(strings.Trim(fragment, " \t\n.,;:()[]"))
	if s == "" {
		return "", false
	}

	if m := quarterPattern.FindStringSubmatch(s); m != nil {
		q, _ := strconv.Atoi(m[1])
		year, _ := strconv.Atoi(m[2])

		return formatDate(year, time.Month((q-1)*monthsPerQtr+1), 1)
	}

	if m := monthYearPattern.FindStringSubmatch(s); m != nil {
		year, _ := strconv.Atoi(m[2])

		month, ok := monthByPrefix[strings.ToLower(m[1])[:3]]
		if !ok {
			return "", false
		}

		return formatDate(year, month, 1)
	}

	s = ordinalSuffix.ReplaceAllString(s, "$1")
	s = strings.Join(strings.Fields(s), " ")

	for _, layout := range strictLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return validDate(t)
		}
	}

	t, ok := parseLoose(s)
	if !ok {
		return "", false
	}

	return validDate(t)
}

// parseLoose hands the long tail of formats to dateparse. Malformed input
// must never escape as a panic.
func parseLoose(s string) (t time.Time, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
		}
	}()

	parsed, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return time.Time{}, false
	}

	return parsed, true
}

func formatDate(year int, month time.Month, day int) (string, bool) {
	return validDate(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

func validDate(t time.Time) (string, bool) {
	if t.Year() < minValidYear || t.Year() > maxValidYear {
		return "", false
	}

	return t.Format(isoDateLayout), true
}

// extractDates runs every date family over text and returns sorted,
// deduplicated ISO dates.
func extractDates(text string) []string {
	var consumed [][2]int

	seen := make(map[string]bool)

	for _, family := range dateFamilies {
		for _, loc := range family.FindAllStringIndex(text, -1) {
			if overlaps(consumed, loc) {
				continue
			}

			consumed = append(consumed, [2]int{loc[0], loc[1]})

			if iso, ok := ParseDate(text[loc[0]:loc[1]]); ok {
				seen[iso] = true
			}
		}
	}

	return sortedKeys(seen)
}

func overlaps(spans [][2]int, loc []int) bool {
	for _, s := range spans {
		if loc[0] < s[1] && s[0] < loc[1] {
			return true
		}
	}

	return false
}

func sortedKeys(set map[string]bool) []string {
	if len(set) == 0 {
		return nil
	}

	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}

	sort.Strings(out)

	return out
}
