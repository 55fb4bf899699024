package timetable

import (
	"classsync-backend/pkg/htmlutil"
	"classsync-backend/pkg/textutil"
	"regexp"
	"strconv"

	"github.com/PuerkitoBio/goquery"
)

// Rates are the attendance rates the portal itself displays, in the range [0, 1].
type Rates struct {
	Class  float64
	Campus float64
	// Found is set when at least one of the rates was present on the page.
	Found bool
}

var (
	classRateSelectors  = []string{"#classAttendanceRate", "[id$='classAttendanceRate']", ".class-attendance-rate", "[data-rate='class']"}
	campusRateSelectors = []string{"#campusAttendanceRate", "[id$='campusAttendanceRate']", ".campus-attendance-rate", "[data-rate='campus']"}

	classRateLabels  = []string{"classattendance", "courseattendance"}
	campusRateLabels = []string{"campusattendance", "oncampus"}
)

var rateRegex = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(%?)`)

const maxLabelLength = 80

func parseRate(text string) (float64, bool) {
	match := rateRegex.FindStringSubmatch(text)
	if match == nil {
		return 0, false
	}
	value, err := strconv.ParseFloat(match[1], 64)
	if err != nil || value < 0 {
		return 0, false
	}
	// bare numbers above 1 are percentages too
	if match[2] == "%" || value > 1 {
		value /= 100
	}
	if value > 1 {
		return 0, false
	}
	return value, true
}

func findRate(doc *goquery.Document, selectors, labels []string) (float64, bool) {
	for _, selector := range selectors {
		sel := doc.Find(selector)
		if sel.Length() == 0 {
			continue
		}
		if rate, ok := parseRate(htmlutil.Text(sel.First())); ok {
			return rate, true
		}
	}

	rate, found := 0.0, false
	doc.Find("span, div, td, li, p, label").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := htmlutil.Text(s)
		if text == "" || len(text) > maxLabelLength {
			return true
		}
		if !textutil.MatchName(text, labels) {
			return true
		}
		// a wrapper holding several labels is skipped in favor of the element holding this one
		nested := s.Find("*").FilterFunction(func(_ int, child *goquery.Selection) bool {
			return textutil.MatchName(htmlutil.Text(child), labels)
		})
		if nested.Length() > 0 {
			return true
		}
		rate, found = parseRate(text)
		if !found {
			rate, found = parseRate(htmlutil.Text(s.Next()))
		}
		return !found
	})
	return rate, found
}

// ExtractAttendanceRates reads the class and campus attendance rates shown by the portal.
func ExtractAttendanceRates(doc *goquery.Document) Rates {
	if doc == nil {
		return Rates{}
	}
	class, classFound := findRate(doc, classRateSelectors, classRateLabels)
	campus, campusFound := findRate(doc, campusRateSelectors, campusRateLabels)
	return Rates{
		Class:  class,
		Campus: campus,
		Found:  classFound || campusFound,
	}
}
