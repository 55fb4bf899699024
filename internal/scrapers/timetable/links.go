package timetable

import (
	"classsync-backend/internal/scrapers/portal"
	"classsync-backend/pkg/htmlutil"
	"classsync-backend/pkg/textutil"
	"regexp"

	"github.com/PuerkitoBio/goquery"
)

const (
	maxFollowedLinks   = 5
	linkMatchThreshold = 0.92
)

var scheduleLinkKeywords = []string{
	"timetable",
	"schedule",
	"myclasses",
	"classschedule",
	"课程表",
	"课表",
}

var noClassesRegex = regexp.MustCompile(`(?i)\bno\s+(?:scheduled\s+)?class(?:es)?\b`)

var noClassesMarkers = []string{
	"暂无课程",
	"没有课程",
}

// scheduleLinks lists same-host links whose label or path looks like it leads to a
// schedule page, in document order and without duplicates.
func scheduleLinks(page portal.Page) []string {
	if page.Doc == nil {
		return nil
	}

	seen := map[string]struct{}{}
	var links []string
	for _, anchor := range htmlutil.GetAnchors(page.Url, page.Doc.Find("a[href]")) {
		if page.Url != nil && anchor.Url.Host != page.Url.Host {
			continue
		}
		if !textutil.FuzzyMatchName(anchor.Name, scheduleLinkKeywords, linkMatchThreshold) &&
			!textutil.MatchName(anchor.Url.Path, scheduleLinkKeywords) {
			continue
		}

		anchor.Url.Fragment = ""
		link := anchor.Url.String()
		if page.Url != nil && link == page.Url.String() {
			continue
		}
		if _, ok := seen[link]; ok {
			continue
		}
		seen[link] = struct{}{}
		links = append(links, link)

		if len(links) >= maxFollowedLinks {
			break
		}
	}
	return links
}

// hasNoClassesMarker checks if the page explicitly says there is nothing scheduled.
func hasNoClassesMarker(doc *goquery.Document) bool {
	if doc == nil {
		return false
	}
	text := doc.Find("body").Text()
	return noClassesRegex.MatchString(text) || textutil.MatchName(text, noClassesMarkers)
}
