package reconcile

import "errors"

// LevelAll is the wildcard tag an event may carry instead of explicit levels.
const LevelAll = "all"

// StatusCompleted marks events whose attendance history is frozen.
const StatusCompleted = "completed"

// ErrNoLevels is returned when an event would end up with an empty
// eligibility set.
var ErrNoLevels = errors.New("event needs at least one level")

// Student is the slice of a student the reconciler cares about.
type Student struct {
	ID    string
	Level string
}

// Event is the slice of an event the reconciler cares about.
type Event struct {
	ID     string
	Status string
	Levels []string
}

// Plan lists the event IDs whose attendance rows must change for one
// student after a level change.
type Plan struct {
	DeleteEventIDs []string
	CreateEventIDs []string
}

// NormalizeLevels collapses the set to just the wildcard when it is
// present and rejects an empty selection. Order of explicit levels is
// preserved; duplicates are dropped.
func NormalizeLevels(levels []string) ([]string, error) {
	seen := make(map[string]bool, len(levels))
	out := make([]string, 0, len(levels))
	for _, l := range levels {
		if l == "" || seen[l] {
			continue
		}
		if l == LevelAll {
			return []string{LevelAll}, nil
		}
		seen[l] = true
		out = append(out, l)
	}
	if len(out) == 0 {
		return nil, ErrNoLevels
	}
	return out, nil
}

// Eligible reports whether a student at studentLevel belongs on an
// event's attendance sheet.
func Eligible(studentLevel string, eventLevels []string) bool {
	for _, l := range eventLevels {
		if l == LevelAll || l == studentLevel {
			return true
		}
	}
	return false
}

// EligibleStudents filters students down to those matching eventLevels.
func EligibleStudents(students []Student, eventLevels []string) []Student {
	var out []Student
	for _, s := range students {
		if Eligible(s.Level, eventLevels) {
			out = append(out, s)
		}
	}
	return out
}

// StudentPlan computes the attendance diff for a student whose level is
// now newLevel. events is the full event catalog; hasRow marks events
// the student already has an attendance row for. Completed events are
// never touched: their rows are history regardless of eligibility.
func StudentPlan(newLevel string, events []Event, hasRow map[string]bool) Plan {
	var p Plan
	for _, e := range events {
		if e.Status == StatusCompleted {
			continue
		}
		switch {
		case Eligible(newLevel, e.Levels) && !hasRow[e.ID]:
			p.CreateEventIDs = append(p.CreateEventIDs, e.ID)
		case !Eligible(newLevel, e.Levels) && hasRow[e.ID]:
			p.DeleteEventIDs = append(p.DeleteEventIDs, e.ID)
		}
	}
	return p
}

// NextWeekNumber gives the sequential number for a club's next week.
// maxExisting is 0 when the club has no weeks yet. Two writers racing
// through here can still pick the same number; there is no lock, matching
// the read-then-increment the store has always done.
func NextWeekNumber(maxExisting int) int {
	return maxExisting + 1
}
