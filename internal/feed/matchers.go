package feed

import (
	"regexp"
	"strconv"
	"strings"
)

// TabMatch is the normalized identity of a source tab.
type TabMatch struct {
	Year      int
	Month     int
	MonthName string
}

// Matcher tries to read a (year, month) pair out of a tab title. Matchers are
// pure functions tried in a fixed priority order until one succeeds.
type Matcher func(title string) (TabMatch, bool)

var spanishMonths = map[string]int{
	"enero": 1, "febrero": 2, "marzo": 3, "abril": 4,
	"mayo": 5, "junio": 6, "julio": 7, "agosto": 8,
	"septiembre": 9, "setiembre": 9, "octubre": 10,
	"noviembre": 11, "diciembre": 12,
}

var englishMonths = map[string]int{
	"january": 1, "february": 2, "march": 3, "april": 4,
	"may": 5, "june": 6, "july": 7, "august": 8,
	"september": 9, "october": 10, "november": 11, "december": 12,
}

var (
	namedTabRe   = regexp.MustCompile(`(?i)^\s*([a-záéíóúñ]+)[\s\-_]+(\d{4})\s*$`)
	isoTabRe     = regexp.MustCompile(`^\s*(\d{4})[\-/.](\d{1,2})\s*$`)
	slashedTabRe = regexp.MustCompile(`^\s*(\d{1,2})[\-/.](\d{4})\s*$`)
)

func matchNamedMonth(months map[string]int) Matcher {
	return func(title string) (TabMatch, bool) {
		m := namedTabRe.FindStringSubmatch(title)
		if m == nil {
			return TabMatch{}, false
		}
		name := strings.ToLower(m[1])
		month, ok := months[name]
		if !ok {
			return TabMatch{}, false
		}
		year, _ := strconv.Atoi(m[2])
		return TabMatch{Year: year, Month: month, MonthName: name}, true
	}
}

func matchISO(title string) (TabMatch, bool) {
	m := isoTabRe.FindStringSubmatch(title)
	if m == nil {
		return TabMatch{}, false
	}
	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	if month < 1 || month > 12 {
		return TabMatch{}, false
	}
	return TabMatch{Year: year, Month: month}, true
}

func matchSlashed(title string) (TabMatch, bool) {
	m := slashedTabRe.FindStringSubmatch(title)
	if m == nil {
		return TabMatch{}, false
	}
	month, _ := strconv.Atoi(m[1])
	year, _ := strconv.Atoi(m[2])
	if month < 1 || month > 12 {
		return TabMatch{}, false
	}
	return TabMatch{Year: year, Month: month}, true
}

// tabMatchers is the priority order: the spreadsheet is maintained in Spanish,
// so Spanish month names win over English, then the numeric formats.
var tabMatchers = []Matcher{
	matchNamedMonth(spanishMonths),
	matchNamedMonth(englishMonths),
	matchISO,
	matchSlashed,
}

// MatchTabTitle normalizes a tab title to (year, month). ok is false when no
// matcher recognizes the title.
func MatchTabTitle(title string) (TabMatch, bool) {
	for _, m := range tabMatchers {
		if match, ok := m(title); ok {
			return match, true
		}
	}
	return TabMatch{}, false
}
