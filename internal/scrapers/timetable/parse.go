package timetable

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var referenceMonths = []string{
	"january",
	"february",
	"march",
	"april",
	"may",
	"june",
	"july",
	"august",
	"september",
	"october",
	"november",
	"december",
}

func parseMonth(text string) time.Month {
	text = strings.ToLower(text)
	if len(text) < 3 {
		return -1
	}
	for i, month := range referenceMonths {
		if strings.HasPrefix(month, text) {
			return time.January + time.Month(i)
		}
	}
	return -1
}

func normalizeYear(year int) int {
	if year < 100 {
		return year + 2000
	}
	return year
}

var dayMonthRegex = regexp.MustCompile(`(\d{1,2})-([A-Za-z]{3,9})(?:-(\d{4}|\d{2}))?`)
var monthDayYearRegex = regexp.MustCompile(`([A-Za-z]{3,9})\.?\s+(\d{1,2}),?\s+(\d{4}|\d{2})\b`)

// parseDate accepts dd-MMM, dd-MMM-yyyy and MMM dd, yy. A missing year is taken
// from now, the result is midnight in now's location.
func parseDate(text string, now time.Time) (time.Time, error) {
	text = strings.TrimSpace(text)

	var day, year int
	var month time.Month

	if match := dayMonthRegex.FindStringSubmatch(text); match != nil {
		day, _ = strconv.Atoi(match[1])
		month = parseMonth(match[2])
		year = now.Year()
		if match[3] != "" {
			y, _ := strconv.Atoi(match[3])
			year = normalizeYear(y)
		}
	} else if match := monthDayYearRegex.FindStringSubmatch(text); match != nil {
		month = parseMonth(match[1])
		day, _ = strconv.Atoi(match[2])
		y, _ := strconv.Atoi(match[3])
		year = normalizeYear(y)
	} else {
		return time.Time{}, fmt.Errorf("unrecognized date %q", text)
	}

	if month < time.January {
		return time.Time{}, fmt.Errorf("unrecognized month in %q", text)
	}
	date := time.Date(year, month, day, 0, 0, 0, 0, now.Location())
	if date.Day() != day || date.Month() != month {
		return time.Time{}, fmt.Errorf("day out of range in %q", text)
	}
	return date, nil
}

// TimeRange is a concrete start and end instant, Start is always before End.
type TimeRange struct {
	Start time.Time
	End   time.Time
}

var timeRangeRegex = regexp.MustCompile(`^(\d{2}):?(\d{2})\s*[-–~]\s*(\d{2}):?(\d{2})$`)

func clockTime(hourStr, minuteStr string) (int, int, error) {
	hour, _ := strconv.Atoi(hourStr)
	minute, _ := strconv.Atoi(minuteStr)
	if hour > 23 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid time %s:%s", hourStr, minuteStr)
	}
	return hour, minute, nil
}

// parseTimeRange accepts HH:MM-HH:MM and HHMM-HHMM and places both ends on date.
func parseTimeRange(text string, date time.Time) (TimeRange, error) {
	match := timeRangeRegex.FindStringSubmatch(strings.TrimSpace(text))
	if match == nil {
		return TimeRange{}, fmt.Errorf("unrecognized time range %q", text)
	}

	startHour, startMinute, err := clockTime(match[1], match[2])
	if err != nil {
		return TimeRange{}, err
	}
	endHour, endMinute, err := clockTime(match[3], match[4])
	if err != nil {
		return TimeRange{}, err
	}

	loc := date.Location()
	start := time.Date(date.Year(), date.Month(), date.Day(), startHour, startMinute, 0, 0, loc)
	end := time.Date(date.Year(), date.Month(), date.Day(), endHour, endMinute, 0, 0, loc)
	if !start.Before(end) {
		return TimeRange{}, fmt.Errorf("time range %q does not end after it starts", text)
	}
	return TimeRange{Start: start, End: end}, nil
}

// fallbackRange is the placeholder used when a time range cannot be parsed, it keeps
// the record valid instead of failing the whole batch.
func fallbackRange(now time.Time) TimeRange {
	return TimeRange{Start: now, End: now.Add(time.Hour)}
}

// String renders the range in the compact HHMM-HHMM form.
func (r TimeRange) String() string {
	return fmt.Sprintf(
		"%02d%02d-%02d%02d",
		r.Start.Hour(), r.Start.Minute(),
		r.End.Hour(), r.End.Minute(),
	)
}
