package analysis

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/stepsurvey/steps-survey/internal/domain"
)

func day(s string) time.Time {
	t, err := domain.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return t
}

func entry(date string, steps, energy int, notes string) domain.Entry {
	return domain.Entry{Date: day(date), Steps: steps, Energy: energy, Notes: notes}
}

func allOf(table domain.EntryTable) domain.FilterCriteria {
	b, _ := Bounds(table, 0)
	return DefaultCriteria(b)
}

func TestSanitizeDropsNonPositiveRows(t *testing.T) {
	table := domain.EntryTable{
		entry("2024-01-01", 3000, 2, ""),
		entry("2024-01-02", 0, 5, "coerced steps"),
		entry("2024-01-03", 4000, 0, "coerced energy"),
		entry("2024-01-04", -10, 5, ""),
		entry("2024-01-05", 7000, 9, ""),
	}
	got := Sanitize(table)
	want := domain.EntryTable{table[0], table[4]}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Sanitize mismatch (-want +got):\n%s", diff)
	}
	if len(table) != 5 {
		t.Fatalf("input table was modified")
	}
}

func TestApplyPredicates(t *testing.T) {
	table := domain.EntryTable{
		entry("2024-01-05", 5000, 5, "felt Tired today"),
		entry("2024-01-01", 3000, 2, "energized"),
		entry("2024-01-10", 12000, 8, "tired but ok"),
		entry("2024-01-07", 8000, 7, ""),
	}

	tests := []struct {
		name string
		c    domain.FilterCriteria
		want domain.EntryTable
	}{
		{
			name: "everything",
			c:    allOf(table),
			want: table,
		},
		{
			name: "inclusive date bounds",
			c: domain.FilterCriteria{
				DateStart: day("2024-01-05"), DateEnd: day("2024-01-07"),
				MinSteps: 0, MaxSteps: 100000,
			},
			want: domain.EntryTable{table[0], table[3]},
		},
		{
			name: "inclusive step bounds",
			c: domain.FilterCriteria{
				DateStart: day("2024-01-01"), DateEnd: day("2024-01-31"),
				MinSteps: 3000, MaxSteps: 8000,
			},
			want: domain.EntryTable{table[0], table[1], table[3]},
		},
		{
			name: "keyword is case-insensitive",
			c: domain.FilterCriteria{
				DateStart: day("2024-01-01"), DateEnd: day("2024-01-31"),
				MinSteps: 0, MaxSteps: 100000, Keyword: "TIRED",
			},
			want: domain.EntryTable{table[0], table[2]},
		},
		{
			name: "whitespace keyword is no constraint",
			c: domain.FilterCriteria{
				DateStart: day("2024-01-01"), DateEnd: day("2024-01-31"),
				MinSteps: 0, MaxSteps: 100000, Keyword: "   ",
			},
			want: table,
		},
		{
			name: "nothing matches",
			c: domain.FilterCriteria{
				DateStart: day("2025-01-01"), DateEnd: day("2025-12-31"),
				MinSteps: 0, MaxSteps: 100000,
			},
			want: domain.EntryTable{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Apply(table, tt.c)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("Apply mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestApplyKeywordScenario(t *testing.T) {
	table := domain.EntryTable{
		entry("2024-01-01", 5000, 3, "felt Tired today"),
		entry("2024-01-02", 6000, 8, "energized"),
	}
	c := allOf(table)
	c.Keyword = "tired"

	got := Apply(table, c)
	if len(got) != 1 || got[0].Notes != "felt Tired today" {
		t.Fatalf("keyword filter: got %+v", got)
	}
}

func TestApplyIsIdempotent(t *testing.T) {
	table := domain.EntryTable{
		entry("2024-01-03", 4000, 4, "coffee"),
		entry("2024-01-01", 9000, 9, "Coffee and a run"),
		entry("2024-01-02", 2000, 2, ""),
	}
	c := domain.FilterCriteria{
		DateStart: day("2024-01-01"), DateEnd: day("2024-01-03"),
		MinSteps: 1000, MaxSteps: 9000, Keyword: "coffee",
	}
	first := Apply(table, c)
	second := Apply(table, c)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("Apply not idempotent (-first +second):\n%s", diff)
	}
	if diff := cmp.Diff(first, Apply(first, c)); diff != "" {
		t.Fatalf("re-filtering the subset changed it:\n%s", diff)
	}
}

func TestApplyEmptyTable(t *testing.T) {
	got := Apply(nil, domain.FilterCriteria{MaxSteps: 100})
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil subset, got %#v", got)
	}
}

func TestSortByDateCopiesAndIsStable(t *testing.T) {
	table := domain.EntryTable{
		entry("2024-01-03", 1, 1, "c"),
		entry("2024-01-01", 1, 1, "a1"),
		entry("2024-01-02", 1, 1, "b"),
		entry("2024-01-01", 1, 1, "a2"),
	}
	got := SortByDate(table)

	var notes []string
	for _, e := range got {
		notes = append(notes, e.Notes)
	}
	if diff := cmp.Diff([]string{"a1", "a2", "b", "c"}, notes); diff != "" {
		t.Fatalf("sort order mismatch (-want +got):\n%s", diff)
	}
	if table[0].Notes != "c" {
		t.Fatalf("SortByDate mutated its input")
	}
}

func TestBoundsAndClamp(t *testing.T) {
	table := domain.EntryTable{
		entry("2024-01-05", 5000, 5, ""),
		entry("2024-01-01", 3000, 2, ""),
		entry("2024-01-09", 250000, 8, ""),
	}
	b, ok := Bounds(table, 100000)
	if !ok {
		t.Fatalf("Bounds on non-empty table reported !ok")
	}
	want := domain.FilterBounds{
		MinDate: day("2024-01-01"), MaxDate: day("2024-01-09"),
		MinSteps: 3000, MaxSteps: 100000,
	}
	if diff := cmp.Diff(want, b); diff != "" {
		t.Fatalf("Bounds mismatch (-want +got):\n%s", diff)
	}

	c := Clamp(domain.FilterCriteria{
		DateStart: day("2023-06-01"),
		DateEnd:   day("2030-01-01"),
		MinSteps:  7000,
		MaxSteps:  2000,
		Keyword:   "  tired ",
	}, b, 100000)
	if !c.DateStart.Equal(b.MinDate) || !c.DateEnd.Equal(b.MaxDate) {
		t.Fatalf("dates not clamped: %v..%v", c.DateStart, c.DateEnd)
	}
	if c.MaxSteps != 7000 {
		t.Fatalf("max steps should be raised to min steps, got %d", c.MaxSteps)
	}
	if c.Keyword != "tired" {
		t.Fatalf("keyword not trimmed: %q", c.Keyword)
	}

	if _, ok := Bounds(nil, 100000); ok {
		t.Fatalf("Bounds on empty table reported ok")
	}
}
