package tracked

import "testing"

func TestDefaultEqualsScalars(t *testing.T) {
	if !defaultEquals(1, 1) {
		t.Error("expected equal ints")
	}
	if defaultEquals(1, 2) {
		t.Error("expected unequal ints")
	}
	if !defaultEquals("a", "a") {
		t.Error("expected equal strings")
	}
	if !defaultEquals(true, true) {
		t.Error("expected equal bools")
	}
	if !defaultEquals(1.5, 1.5) {
		t.Error("expected equal floats")
	}
}

func TestDefaultEqualsSlices(t *testing.T) {
	if !defaultEquals([]int{1, 2, 3}, []int{1, 2, 3}) {
		t.Error("expected equal slices")
	}
	if defaultEquals([]int{1, 2, 3}, []int{1, 2, 3, 4}) {
		t.Error("expected unequal slices")
	}
}

func TestDefaultEqualsMaps(t *testing.T) {
	if !defaultEquals(map[string]int{"a": 1}, map[string]int{"a": 1}) {
		t.Error("expected equal maps")
	}
	if defaultEquals(map[string]int{"a": 1}, map[string]int{"a": 2}) {
		t.Error("expected unequal maps")
	}
}

func TestDefaultEqualsStructs(t *testing.T) {
	type pair struct{ A, B int }
	if !defaultEquals(pair{1, 2}, pair{1, 2}) {
		t.Error("expected equal structs")
	}
	if defaultEquals(pair{1, 2}, pair{2, 1}) {
		t.Error("expected unequal structs")
	}
}

func TestDefaultEqualsNilPointers(t *testing.T) {
	var a, b *int
	if !defaultEquals(a, b) {
		t.Error("expected equal nil pointers")
	}
	v := 1
	if defaultEquals(&v, b) {
		t.Error("expected nil and non-nil pointers unequal")
	}
}
