package timetable

import (
	"classsync-backend/pkg/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

const flatBoxSelector = ".details-panel .box, .course-details .box, .ui-accordion-content .box, .date-time, .class-box, .session-box"

// extractFlat walks code elements and meeting boxes in document order, every box belongs to
// the code element seen last before it. It handles pages where the boxes are not nested under
// a recognizable course header.
func extractFlat(doc *goquery.Document) []entry {
	var entries []entry
	currentCode := ""

	doc.Find(courseCodeSelector + ", " + flatBoxSelector).Each(func(_ int, s *goquery.Selection) {
		if !s.Is(flatBoxSelector) {
			if code := htmlutil.Text(s); code != "" {
				currentCode = code
			}
			return
		}

		code := s.AttrOr("data-course-code", "")
		if code == "" {
			code = htmlutil.Text(s.Find(courseCodeSelector).First())
		}
		if code == "" {
			code = currentCode
		}
		if code == "" {
			return
		}

		en, ok := boxEntry(code, s)
		if !ok {
			return
		}
		entries = append(entries, en)
	})
	return entries
}
