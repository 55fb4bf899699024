// extractor.go runs the layout cascade. the portal has served several different schedule layouts
// over time, each one is handled by a strategy and the first strategy producing anything wins.

package timetable

import (
	"classsync-backend/internal/classes"
	"classsync-backend/internal/components/assert"
	"classsync-backend/internal/components/chrono"
	"classsync-backend/internal/components/telemetry"
	"classsync-backend/internal/scrapers/portal"
	"context"
	"fmt"

	"github.com/PuerkitoBio/goquery"
)

const (
	report_extractor_row         = "extractor.row"
	report_extractor_extract     = "extractor.extract"
	report_extractor_follow_link = "extractor.follow-link"
)

// Fetcher fetches linked pages with the authenticated session, *portal.Client implements it.
type Fetcher interface {
	FetchDocument(ctx context.Context, endpoint string) (portal.Page, error)
}

type Extractor struct {
	clock   chrono.API
	tel     telemetry.API
	fetcher Fetcher
}

// NewExtractor creates an Extractor, fetcher may be nil in which case links are never followed.
func NewExtractor(clock chrono.API, tel telemetry.API, fetcher Fetcher) Extractor {
	assert.NotNil(clock)
	assert.NotNil(tel)
	return Extractor{
		clock:   clock,
		tel:     telemetry.NewScopedAPI("timetable", tel),
		fetcher: fetcher,
	}
}

// entry is one schedule row as it was read off the page, before any parsing.
type entry struct {
	code       string
	name       string
	date       string
	timeRange  string
	location   string
	status     classes.Status
	sourceName string
}

type strategy struct {
	name    string
	extract func(doc *goquery.Document) []entry
}

var strategies = []strategy{
	{name: "table", extract: extractTable},
	{name: "accordion", extract: extractAccordion},
	{name: "flat", extract: extractFlat},
}

// Extract runs the strategy cascade over a single document. Rows that cannot be used are
// reported and skipped, they never fail the whole extraction.
func (e Extractor) Extract(doc *goquery.Document) []classes.ClassRecord {
	for _, s := range strategies {
		entries := s.extract(doc)
		if len(entries) == 0 {
			continue
		}

		records := make([]classes.ClassRecord, 0, len(entries))
		for _, en := range entries {
			en.sourceName = s.name
			record, err := e.toRecord(doc, en)
			if err != nil {
				e.tel.ReportWarning(report_extractor_row, err, s.name, en.code, en.date, en.timeRange)
				continue
			}
			records = append(records, record)
		}
		if len(records) == 0 {
			continue
		}

		e.tel.ReportDebug("extracted classes", s.name, len(records))
		return records
	}
	return nil
}

func (e Extractor) toRecord(doc *goquery.Document, en entry) (classes.ClassRecord, error) {
	if en.code == "" || en.date == "" || en.timeRange == "" {
		return classes.ClassRecord{}, fmt.Errorf("incomplete row")
	}

	now := e.clock.Now()

	date, err := parseDate(en.date, now)
	if err != nil {
		e.tel.ReportWarning(report_extractor_row, fmt.Errorf("date fallback to today: %w", err), en.sourceName)
		date = chrono.StartOfDay(now)
	}
	span, err := parseTimeRange(en.timeRange, date)
	if err != nil {
		e.tel.ReportWarning(report_extractor_row, fmt.Errorf("time fallback to now: %w", err), en.sourceName)
		span = fallbackRange(now)
	}

	name := en.name
	if name == "" {
		name = resolveCourseName(doc, en.code)
	}
	if name == "" {
		name = en.code
	}

	record := classes.ClassRecord{
		CourseCode:  en.code,
		CourseName:  name,
		StartTime:   span.Start,
		EndTime:     span.End,
		Location:    en.location,
		Status:      en.status,
		LastUpdated: now,
	}
	return record, record.Valid()
}

// Result is the outcome of extracting a fetched page.
type Result struct {
	Records []classes.ClassRecord
	// NoClasses is set when nothing was extracted and the page states there are no classes.
	NoClasses bool
	// Source is the url the records came from, it differs from the input page when a
	// link had to be followed.
	Source string
}

// ExtractPage runs the cascade over a page and, if nothing is found and the page does not say
// there are no classes, follows schedule-looking links one hop deep.
func (e Extractor) ExtractPage(ctx context.Context, page portal.Page) Result {
	source := ""
	if page.Url != nil {
		source = page.Url.String()
	}

	records := e.Extract(page.Doc)
	if len(records) > 0 {
		return Result{Records: classes.Dedup(records), Source: source}
	}
	if hasNoClassesMarker(page.Doc) {
		return Result{NoClasses: true, Source: source}
	}
	if e.fetcher == nil {
		return Result{Source: source}
	}

	for _, link := range scheduleLinks(page) {
		linked, err := e.fetchLinked(ctx, link)
		if err != nil {
			e.tel.ReportWarning(report_extractor_follow_link, err, link)
			continue
		}
		records := e.Extract(linked.Doc)
		if len(records) > 0 {
			return Result{Records: classes.Dedup(records), Source: link}
		}
		if hasNoClassesMarker(linked.Doc) {
			return Result{NoClasses: true, Source: link}
		}
	}

	e.tel.ReportWarning(report_extractor_extract, fmt.Errorf("no strategy matched"), source)
	return Result{Source: source}
}

func (e Extractor) fetchLinked(ctx context.Context, link string) (portal.Page, error) {
	ctx, cancel := context.WithTimeout(ctx, portal.DefaultTimeout)
	defer cancel()
	return e.fetcher.FetchDocument(ctx, link)
}
