package reconcile

import (
	"errors"
	"reflect"
	"testing"
)

func TestNormalizeLevels(t *testing.T) {
	cases := []struct {
		name    string
		in      []string
		want    []string
		wantErr bool
	}{
		{"explicit set kept", []string{"ปวช.1", "ปวช.2"}, []string{"ปวช.1", "ปวช.2"}, false},
		{"wildcard collapses the rest", []string{"ปวช.1", "all", "ปวส.2"}, []string{"all"}, false},
		{"wildcard alone", []string{"all"}, []string{"all"}, false},
		{"duplicates dropped", []string{"ปวช.1", "ปวช.1"}, []string{"ปวช.1"}, false},
		{"blanks dropped", []string{"", "ปวช.3"}, []string{"ปวช.3"}, false},
		{"empty input rejected", nil, nil, true},
		{"only blanks rejected", []string{"", ""}, nil, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := NormalizeLevels(tc.in)
			if tc.wantErr {
				if !errors.Is(err, ErrNoLevels) {
					t.Fatalf("want ErrNoLevels, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestEligible(t *testing.T) {
	if !Eligible("ปวช.1", []string{"all"}) {
		t.Error("wildcard should admit any level")
	}
	if !Eligible("ปวช.1", []string{"ปวช.1", "ปวช.2"}) {
		t.Error("explicit match should be eligible")
	}
	if Eligible("ปวส.1", []string{"ปวช.1", "ปวช.2"}) {
		t.Error("non-member level should not be eligible")
	}
	if Eligible("ปวช.1", nil) {
		t.Error("empty level set admits nobody")
	}
}

// Scenario: event targeting one level with a mixed roster picks exactly
// the students at that level.
func TestEligibleStudents(t *testing.T) {
	students := []Student{
		{ID: "a", Level: "ปวช.1"},
		{ID: "b", Level: "ปวช.1"},
		{ID: "c", Level: "ปวช.1"},
		{ID: "d", Level: "ปวช.2"},
		{ID: "e", Level: "ปวส.1"},
	}
	got := EligibleStudents(students, []string{"ปวช.1"})
	if len(got) != 3 {
		t.Fatalf("want 3 eligible students, got %d", len(got))
	}
	for _, s := range got {
		if s.Level != "ปวช.1" {
			t.Fatalf("student %s has wrong level %s", s.ID, s.Level)
		}
	}
	if all := EligibleStudents(students, []string{"all"}); len(all) != len(students) {
		t.Fatalf("wildcard should admit everyone, got %d", len(all))
	}
}

func TestStudentPlanLevelChange(t *testing.T) {
	events := []Event{
		{ID: "e1", Status: "upcoming", Levels: []string{"ปวช.1"}},
		{ID: "e2", Status: "ongoing", Levels: []string{"ปวช.2"}},
		{ID: "e3", Status: "upcoming", Levels: []string{"all"}},
		{ID: "e4", Status: "completed", Levels: []string{"ปวช.1"}},
	}
	// Student moved from ปวช.1 to ปวช.2; had rows on e1, e3 and e4.
	hasRow := map[string]bool{"e1": true, "e3": true, "e4": true}

	p := StudentPlan("ปวช.2", events, hasRow)

	if !reflect.DeepEqual(p.DeleteEventIDs, []string{"e1"}) {
		t.Errorf("delete = %v, want [e1]", p.DeleteEventIDs)
	}
	if !reflect.DeepEqual(p.CreateEventIDs, []string{"e2"}) {
		t.Errorf("create = %v, want [e2]", p.CreateEventIDs)
	}
	// e4 is completed: its row survives even though ปวช.2 no longer matches.
	for _, id := range p.DeleteEventIDs {
		if id == "e4" {
			t.Error("completed event rows must never be deleted")
		}
	}
}

func TestStudentPlanNoDuplicates(t *testing.T) {
	events := []Event{{ID: "e1", Status: "upcoming", Levels: []string{"all"}}}
	p := StudentPlan("ปวช.1", events, map[string]bool{"e1": true})
	if len(p.CreateEventIDs) != 0 || len(p.DeleteEventIDs) != 0 {
		t.Fatalf("existing eligible row should be left alone, got %+v", p)
	}
}

func TestNextWeekNumber(t *testing.T) {
	if n := NextWeekNumber(0); n != 1 {
		t.Errorf("first week should be 1, got %d", n)
	}
	if n := NextWeekNumber(7); n != 8 {
		t.Errorf("want 8, got %d", n)
	}
}
