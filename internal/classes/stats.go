package classes

// Statistics is derived from the current set of records and never stored.
type Statistics struct {
	Total     int
	Completed int
	Absent    int
	// Planned counts classes that have not happened yet (planned or upcoming).
	Planned int

	// AttendanceRate is completed / (completed + absent), 0 when nothing was attended or missed.
	AttendanceRate float64
	// WebClassRate and WebCampusRate are the figures the portal itself reports, as 0-1 fractions.
	WebClassRate  float64
	WebCampusRate float64
}

func ComputeStatistics(records []ClassRecord, webClassRate, webCampusRate float64) Statistics {
	stats := Statistics{
		Total:         len(records),
		WebClassRate:  webClassRate,
		WebCampusRate: webCampusRate,
	}
	for _, r := range records {
		switch r.Status {
		case StatusCompleted:
			stats.Completed++
		case StatusAbsent:
			stats.Absent++
		case StatusPlanned, StatusUpcoming:
			stats.Planned++
		}
	}
	attended := stats.Completed + stats.Absent
	if attended > 0 {
		stats.AttendanceRate = float64(stats.Completed) / float64(attended)
	}
	return stats
}
