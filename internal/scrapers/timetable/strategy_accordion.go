package timetable

import (
	"classsync-backend/internal/classes"
	"classsync-backend/pkg/htmlutil"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	courseHeaderSelector = "li.course-item, .ui-accordion-header, .course-header"
	courseCodeSelector   = ".course-code, .code"
	courseNameSelector   = ".course-name, .name"
	detailsPanelSelector = ".ui-accordion-content, .course-details, .details-panel"
	meetingBoxSelector   = ".class-box, .session-box, .date-time, .box"
)

// statusFromBox reads the attendance state off the css markers of a meeting box.
func statusFromBox(box *goquery.Selection) classes.Status {
	switch {
	case htmlutil.ClassContains(box, "border-danger", "red", "absent"):
		return classes.StatusAbsent
	case htmlutil.ClassContains(box, "border-success", "green", "completed", "attended"):
		return classes.StatusCompleted
	case htmlutil.ClassContains(box, "muted", "grey", "gray", "border-secondary"):
		return classes.StatusUpcoming
	case htmlutil.ClassContains(box, "in-progress", "ongoing"):
		return classes.StatusInProgress
	}
	return classes.StatusPlanned
}

// boxEntry reads a meeting box whose lines are date, time range and location.
func boxEntry(code string, box *goquery.Selection) (entry, bool) {
	lines := htmlutil.BrLines(box)
	if len(lines) < 2 {
		return entry{}, false
	}
	en := entry{
		code:      code,
		date:      lines[0],
		timeRange: lines[1],
		status:    statusFromBox(box),
	}
	if len(lines) >= 3 {
		en.location = strings.Join(lines[2:], " ")
	}
	return en, true
}

// firstWithin finds the first element matching selector inside the header or among the
// siblings that follow it up to the next header.
func firstWithin(header *goquery.Selection, selector string) *goquery.Selection {
	if found := header.Find(selector); found.Length() > 0 {
		return found.First()
	}
	siblings := header.NextUntil(courseHeaderSelector)
	if found := siblings.Filter(selector); found.Length() > 0 {
		return found.First()
	}
	return siblings.Find(selector).First()
}

func detailsPanel(doc *goquery.Document, header *goquery.Selection) *goquery.Selection {
	for _, attr := range []string{"aria-controls", "data-target"} {
		id := strings.TrimPrefix(header.AttrOr(attr, ""), "#")
		if id == "" {
			continue
		}
		panel := doc.Find("[id='" + id + "']")
		if panel.Length() > 0 {
			return panel.First()
		}
	}
	return firstWithin(header, detailsPanelSelector)
}

func extractAccordion(doc *goquery.Document) []entry {
	var entries []entry
	doc.Find(courseHeaderSelector).Each(func(_ int, header *goquery.Selection) {
		code := htmlutil.Text(firstWithin(header, courseCodeSelector))
		if code == "" {
			return
		}
		name := htmlutil.Text(firstWithin(header, courseNameSelector))

		panel := detailsPanel(doc, header)
		if panel.Length() == 0 {
			return
		}
		panel.Find(meetingBoxSelector).Each(func(_ int, box *goquery.Selection) {
			en, ok := boxEntry(code, box)
			if !ok {
				return
			}
			en.name = name
			entries = append(entries, en)
		})
	})
	return entries
}
