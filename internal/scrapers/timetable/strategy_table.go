package timetable

import (
	"classsync-backend/internal/classes"
	"classsync-backend/pkg/htmlutil"
	"classsync-backend/pkg/textutil"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ranked, the first selector that matches anything is used
var scheduleTableSelectors = []string{
	"table[id$='weeklySchedule']",
	"table[id*='7day']",
	"table[id*='7Day']",
	"table[id*='sevenDay']",
	"[id*='7day'] table",
	"[id*='7Day'] table",
	"table.schedule-table",
	"table.timetable",
}

var (
	courseKeywords   = []string{"course", "class", "code", "subject", "unit", "课程"}
	dateKeywords     = []string{"date", "day", "日期"}
	timeKeywords     = []string{"time", "hour", "时间"}
	locationKeywords = []string{"location", "room", "venue", "地点"}
)

type headerScore struct {
	course   bool
	date     bool
	time     bool
	location bool
}

func (s headerScore) schedule() bool {
	return (s.course || s.date) && s.time
}

func scoreCells(cells *goquery.Selection) headerScore {
	var score headerScore
	cells.Each(func(_ int, cell *goquery.Selection) {
		text := htmlutil.Text(cell)
		score.course = score.course || textutil.MatchName(text, courseKeywords)
		score.date = score.date || textutil.MatchName(text, dateKeywords)
		score.time = score.time || textutil.MatchName(text, timeKeywords)
		score.location = score.location || textutil.MatchName(text, locationKeywords)
	})
	return score
}

// headerRow returns the first row when the table labels its columns with td cells instead
// of th, nil otherwise.
func headerRow(table *goquery.Selection) *goquery.Selection {
	if table.Find("th").Length() > 0 {
		return nil
	}
	first := table.Find("tr").First()
	if first.Length() == 0 || !scoreCells(first.Children()).schedule() {
		return nil
	}
	return first
}

func scoreHeader(table *goquery.Selection) headerScore {
	header := table.Find("th")
	if header.Length() == 0 {
		header = table.Find("tr").First().Children()
	}
	return scoreCells(header)
}

func findScheduleTable(doc *goquery.Document) *goquery.Selection {
	for _, selector := range scheduleTableSelectors {
		sel := doc.Find(selector)
		if sel.Length() > 0 {
			return sel.First()
		}
	}

	var found *goquery.Selection
	doc.Find("table").EachWithBreak(func(_ int, table *goquery.Selection) bool {
		score := scoreHeader(table)
		if score.schedule() {
			found = table
			return false
		}
		return true
	})
	return found
}

// splitDateTime splits "26-Mar 1300-1430" on the first space.
func splitDateTime(combined string) (string, string) {
	date, timeRange, _ := strings.Cut(strings.TrimSpace(combined), " ")
	return strings.TrimSpace(date), strings.TrimSpace(timeRange)
}

// rowEntry reads a table row in either the 4 column (code, date, time, location) or the
// 3 column (code, "date time", location) layout.
func rowEntry(cells []string) (entry, bool) {
	if len(cells) < 3 {
		return entry{}, false
	}

	en := entry{
		code:   cells[0],
		status: classes.StatusUpcoming,
	}
	if len(cells) >= 4 {
		en.date = cells[1]
		en.timeRange = cells[2]
		en.location = cells[3]
	} else {
		en.date, en.timeRange = splitDateTime(cells[1])
		en.location = cells[2]
	}

	if en.code == "" || en.date == "" || en.timeRange == "" {
		return entry{}, false
	}
	return en, true
}

func extractTable(doc *goquery.Document) []entry {
	table := findScheduleTable(doc)
	if table == nil {
		return nil
	}

	header := headerRow(table)

	var entries []entry
	table.Find("tr").Each(func(_ int, row *goquery.Selection) {
		if header != nil && row.IsSelection(header) {
			return
		}
		var cells []string
		row.ChildrenFiltered("td").Each(func(_ int, cell *goquery.Selection) {
			cells = append(cells, htmlutil.Text(cell))
		})
		en, ok := rowEntry(cells)
		if !ok {
			return
		}
		entries = append(entries, en)
	})
	return entries
}
