package tabular

import (
	"testing"
	"time"

	"doctrack-be/internal/models"
)

func TestCompareNumbersNotLexicographic(t *testing.T) {
	e := NewEngine()
	e.Load([]models.Customer{
		customer("a", 9),
		customer("b", 100),
		customer("c", 20),
	})

	e.SortBy("total")
	got := visibleIDs(e.Snapshot())
	if !equalIDs(got, []string{"a", "c", "b"}) {
		t.Fatalf("numeric sort = %v, want [a c b]", got)
	}
}

func TestCompareDates(t *testing.T) {
	old := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	recent := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	e := NewEngine()
	e.Load([]models.Customer{
		{ID: "new", UpdatedAt: recent},
		{ID: "old", UpdatedAt: old},
	})

	e.SortBy("updatedAt")
	got := visibleIDs(e.Snapshot())
	if !equalIDs(got, []string{"old", "new"}) {
		t.Fatalf("date sort = %v, want [old new]", got)
	}
}

func TestAbsentValuesSortLastAscendingFirstDescending(t *testing.T) {
	e := NewEngine()
	e.Load([]models.Customer{
		{ID: "a", AdminMail: ""},
		{ID: "b", AdminMail: "b@example.test"},
		{ID: "c", AdminMail: "c@example.test"},
	})

	e.SortBy("adminMail")
	asc := visibleIDs(e.Snapshot())
	if asc[len(asc)-1] != "a" {
		t.Fatalf("ascending: absent value not last: %v", asc)
	}

	e.SortBy("adminMail")
	desc := visibleIDs(e.Snapshot())
	if desc[0] != "a" {
		t.Fatalf("descending: absent value not first: %v", desc)
	}
}

func TestStringSortCaseInsensitive(t *testing.T) {
	e := NewEngine()
	e.Load([]models.Customer{
		{ID: "1", Name: "zeta"},
		{ID: "2", Name: "Alpha"},
		{ID: "3", Name: "beta"},
	})

	e.SortBy("name")
	got := visibleIDs(e.Snapshot())
	if !equalIDs(got, []string{"2", "3", "1"}) {
		t.Fatalf("collated sort = %v, want [2 3 1]", got)
	}
}

func TestBoolSort(t *testing.T) {
	e := NewEngine()
	e.Load([]models.Customer{
		{ID: "on", Active: true},
		{ID: "off", Active: false},
	})

	e.SortBy("active")
	got := visibleIDs(e.Snapshot())
	if !equalIDs(got, []string{"off", "on"}) {
		t.Fatalf("bool sort = %v, want [off on]", got)
	}
}

func TestUpdatedBySortsByActorValue(t *testing.T) {
	e := NewEngine()
	e.Load([]models.Customer{
		{ID: "1", UpdatedBy: &models.ActorRef{Kind: models.ActorKindLegacyName, Value: "zoe"}},
		{ID: "2", UpdatedBy: &models.ActorRef{Kind: models.ActorKindID, Value: "anna"}},
		{ID: "3"},
	})

	e.SortBy("updatedBy")
	got := visibleIDs(e.Snapshot())
	// Both actor kinds compare by their value; the nil actor goes last.
	if !equalIDs(got, []string{"2", "1", "3"}) {
		t.Fatalf("updatedBy sort = %v, want [2 1 3]", got)
	}
}

func TestSortStability(t *testing.T) {
	e := NewEngine()
	e.Load([]models.Customer{
		{ID: "first", InProcess: 5, Total: 5},
		{ID: "second", InProcess: 5, Total: 5},
	})

	e.SortBy("total")
	got := visibleIDs(e.Snapshot())
	if !equalIDs(got, []string{"first", "second"}) {
		t.Fatalf("equal keys reordered: %v", got)
	}
}
