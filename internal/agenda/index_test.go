package agenda

import (
	"fmt"
	"sync"
	"testing"
)

func sampleDraft(name string, shift Shift, at string) Draft {
	return Draft{
		ClientName: name,
		Phone:      "11999990000",
		Appliance:  "Lavadora",
		Shift:      shift,
		Time:       at,
	}
}

func TestIndexAddRemoveExample(t *testing.T) {
	ix := NewIndex()
	key := "2024-03-15"

	appt := ix.Add(key, Draft{
		ClientName: "Ana",
		Phone:      "11999990000",
		Appliance:  "Lavadora",
		Time:       "09:00",
		Shift:      Morning,
	})

	if appt.ID == "" {
		t.Fatal("Add() should assign an ID")
	}
	if got := ix.CountFor(key); got != 1 {
		t.Errorf("CountFor() = %d, want 1", got)
	}

	list := ix.ListFor(key)
	if len(list) != 1 || list[0] != appt {
		t.Errorf("ListFor() = %+v, want [%+v]", list, appt)
	}

	if !ix.Remove(key, appt.ID) {
		t.Error("Remove() should report the deletion")
	}
	if got := ix.CountFor(key); got != 0 {
		t.Errorf("CountFor() after Remove = %d, want 0", got)
	}

	// Second remove is a no-op
	if ix.Remove(key, appt.ID) {
		t.Error("Second Remove() should be a no-op")
	}
	if len(ix.Days()) != 0 {
		t.Errorf("Days() = %v, want none", ix.Days())
	}
}

func TestIndexCountForAbsentKey(t *testing.T) {
	ix := NewIndex()
	if got := ix.CountFor("2030-01-01"); got != 0 {
		t.Errorf("CountFor() = %d, want 0", got)
	}
	list := ix.ListFor("2030-01-01")
	if list == nil || len(list) != 0 {
		t.Errorf("ListFor() = %#v, want empty non-nil slice", list)
	}
	if ix.Remove("2030-01-01", "nope") {
		t.Error("Remove() on an absent key should be a no-op")
	}
}

func TestIndexPreservesInsertionOrder(t *testing.T) {
	ix := NewIndex()
	key := "2024-03-15"

	var ids []string
	for i := 0; i < 5; i++ {
		a := ix.Add(key, sampleDraft(fmt.Sprintf("client-%d", i), Morning, "10:00"))
		ids = append(ids, a.ID)
	}

	ix.Remove(key, ids[2])

	want := []string{ids[0], ids[1], ids[3], ids[4]}
	list := ix.ListFor(key)
	if len(list) != len(want) {
		t.Fatalf("ListFor() has %d entries, want %d", len(list), len(want))
	}
	for i, a := range list {
		if a.ID != want[i] {
			t.Errorf("entry %d = %s, want %s", i, a.ID, want[i])
		}
	}
}

func TestIndexRemoveOnlyTouchesKey(t *testing.T) {
	ix := NewIndex()
	a := ix.Add("2024-03-15", sampleDraft("Ana", Morning, "09:00"))
	ix.Add("2024-03-16", sampleDraft("Bia", Morning, "09:00"))

	// Right id under the wrong key is not removed
	if ix.Remove("2024-03-16", a.ID) {
		t.Error("Remove() with the wrong key should be a no-op")
	}
	if ix.CountFor("2024-03-15") != 1 || ix.CountFor("2024-03-16") != 1 {
		t.Error("Remove() with the wrong key changed the index")
	}
}

func TestIndexListForReturnsCopy(t *testing.T) {
	ix := NewIndex()
	ix.Add("2024-03-15", sampleDraft("Ana", Morning, "09:00"))

	list := ix.ListFor("2024-03-15")
	list[0].ClientName = "changed"

	if got := ix.ListFor("2024-03-15")[0].ClientName; got != "Ana" {
		t.Errorf("Index was mutated through ListFor(): %q", got)
	}
}

func TestIndexUniqueIDs(t *testing.T) {
	// Generator that repeats itself must not produce duplicates
	seq := []string{"a", "a", "b", "a", "b", "c"}
	n := 0
	ix := NewIndex(WithIDGenerator(func() string {
		id := seq[n%len(seq)]
		n++
		return id
	}))

	got := []string{
		ix.Add("2024-03-15", sampleDraft("1", Morning, "08:00")).ID,
		ix.Add("2024-03-16", sampleDraft("2", Morning, "08:00")).ID,
		ix.Add("2024-03-15", sampleDraft("3", Morning, "08:00")).ID,
	}
	want := []string{"a", "b", "c"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ID %d = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestIndexCountsAndDays(t *testing.T) {
	ix := NewIndex()
	ix.Add("2024-03-16", sampleDraft("Ana", Morning, "09:00"))
	ix.Add("2024-03-15", sampleDraft("Bia", Afternoon, "14:00"))
	ix.Add("2024-03-15", sampleDraft("Caio", Morning, "08:00"))

	counts := ix.Counts([]string{"2024-03-14", "2024-03-15", "2024-03-16"})
	if len(counts) != 2 || counts["2024-03-15"] != 2 || counts["2024-03-16"] != 1 {
		t.Errorf("Counts() = %v", counts)
	}

	days := ix.Days()
	if len(days) != 2 || days[0] != "2024-03-15" || days[1] != "2024-03-16" {
		t.Errorf("Days() = %v", days)
	}
}

func TestIndexConcurrentAdds(t *testing.T) {
	ix := NewIndex()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ix.Add("2024-03-15", sampleDraft(fmt.Sprint(i), Morning, "09:00"))
		}(i)
	}
	wg.Wait()

	list := ix.ListFor("2024-03-15")
	if len(list) != 50 {
		t.Fatalf("Expected 50 appointments, got %d", len(list))
	}
	seen := map[string]bool{}
	for _, a := range list {
		if seen[a.ID] {
			t.Errorf("Duplicate ID %s", a.ID)
		}
		seen[a.ID] = true
	}
}

func TestPartition(t *testing.T) {
	list := []Appointment{
		{ID: "1", Shift: Afternoon},
		{ID: "2", Shift: Morning},
		{ID: "3", Shift: Afternoon},
		{ID: "4", Shift: Morning},
		{ID: "5", Shift: Morning},
	}

	p := Partition(list)

	wantMorning := []string{"2", "4", "5"}
	wantAfternoon := []string{"1", "3"}
	if len(p.Morning) != len(wantMorning) || len(p.Afternoon) != len(wantAfternoon) {
		t.Fatalf("Partition() = %+v", p)
	}
	for i, id := range wantMorning {
		if p.Morning[i].ID != id {
			t.Errorf("Morning[%d] = %s, want %s", i, p.Morning[i].ID, id)
		}
	}
	for i, id := range wantAfternoon {
		if p.Afternoon[i].ID != id {
			t.Errorf("Afternoon[%d] = %s, want %s", i, p.Afternoon[i].ID, id)
		}
	}

	// Concatenation is a permutation of the input
	seen := map[string]int{}
	for _, a := range append(append([]Appointment{}, p.Morning...), p.Afternoon...) {
		seen[a.ID]++
	}
	for _, a := range list {
		if seen[a.ID] != 1 {
			t.Errorf("ID %s appears %d times", a.ID, seen[a.ID])
		}
	}
	if p.Len() != len(list) {
		t.Errorf("Len() = %d, want %d", p.Len(), len(list))
	}
}

func TestPartitionEmpty(t *testing.T) {
	p := Partition(nil)
	if p.Morning == nil || p.Afternoon == nil || p.Len() != 0 {
		t.Errorf("Partition(nil) = %#v", p)
	}
}
