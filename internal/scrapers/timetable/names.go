package timetable

import (
	"classsync-backend/pkg/htmlutil"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// coursePrefix strips the delivery suffix off a course code, "CP3406-LA" becomes "CP3406".
func coursePrefix(code string) string {
	prefix, _, _ := strings.Cut(code, "-")
	return strings.TrimSpace(prefix)
}

// resolveCourseName looks anywhere on the page for a "CODE - Name" title or a code element
// followed by a name element. It returns an empty string when nothing is found.
func resolveCourseName(doc *goquery.Document, code string) string {
	prefix := coursePrefix(code)
	if prefix == "" {
		return ""
	}

	name := ""
	doc.Find(".course-title, .course-name, h3, h4, .ui-accordion-header, li.course-item a").
		EachWithBreak(func(_ int, s *goquery.Selection) bool {
			text := htmlutil.Text(s)
			head, tail, found := strings.Cut(text, " - ")
			if !found || !strings.HasPrefix(strings.TrimSpace(head), prefix) {
				return true
			}
			name = strings.TrimSpace(tail)
			return name == ""
		})
	if name != "" {
		return name
	}

	doc.Find(courseCodeSelector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if !strings.HasPrefix(htmlutil.Text(s), prefix) {
			return true
		}
		name = htmlutil.Text(s.Next())
		return name == ""
	})
	return name
}
