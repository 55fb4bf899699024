package classes

// Stronger reports whether a status should replace another one for the same identity.
// Attendance statuses always win over anything else, otherwise the newer status wins.
func Stronger(candidate, existing Status) bool {
	if existing.Attendance() && !candidate.Attendance() {
		return false
	}
	return true
}

// Dedup collapses records sharing an Identity into one, keeping first-seen order.
// When two records collide the one carrying an attendance status wins.
func Dedup(records []ClassRecord) []ClassRecord {
	index := make(map[Identity]int, len(records))
	out := make([]ClassRecord, 0, len(records))

	for _, r := range records {
		key := r.Identity()
		i, seen := index[key]
		if !seen {
			index[key] = len(out)
			out = append(out, r)
			continue
		}
		if out[i].Status.Attendance() && !r.Status.Attendance() {
			continue
		}
		if r.Status.Attendance() && !out[i].Status.Attendance() {
			out[i] = r
		}
	}

	return out
}
