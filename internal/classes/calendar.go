package classes

import "time"

type Priority int

const (
	PriorityLow Priority = iota
	PriorityMedium
	PriorityHigh
)

func (p Priority) String() string {
	switch p {
	case PriorityHigh:
		return "high"
	case PriorityMedium:
		return "medium"
	default:
		return "low"
	}
}

// ParsePriority is the inverse of Priority.String, unrecognized names are PriorityLow.
func ParsePriority(name string) Priority {
	switch name {
	case "high":
		return PriorityHigh
	case "medium":
		return PriorityMedium
	default:
		return PriorityLow
	}
}

const CategoryStudy = "Study"

// CalendarEntry is the view of a record handed to the schedule sink.
type CalendarEntry struct {
	Title    string
	Category string
	Priority Priority
	Start    time.Time
	End      time.Time
	Location string
}

func PriorityFor(status Status) Priority {
	switch status {
	case StatusAbsent:
		return PriorityHigh
	case StatusPlanned:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

func (r ClassRecord) CalendarEntry() CalendarEntry {
	name := r.CourseName
	if name == "" {
		name = r.CourseCode
	}
	return CalendarEntry{
		Title:    r.CourseCode + " - " + name,
		Category: CategoryStudy,
		Priority: PriorityFor(r.Status),
		Start:    r.StartTime,
		End:      r.EndTime,
		Location: r.Location,
	}
}
