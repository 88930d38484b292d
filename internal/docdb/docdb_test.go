package docdb

import (
	"strings"
	"testing"
)

func TestLookup(t *testing.T) {
	t.Run("exact match in first source", func(t *testing.T) {
		doc := Lookup([]string{"motor"}, "speed")
		if !strings.Contains(doc, "velocity") {
			t.Errorf("Lookup(motor, speed) = %q, want the motor table entry", doc)
		}
	})

	t.Run("later source consulted after miss", func(t *testing.T) {
		doc := Lookup([]string{"motor", "areadetector"}, "gain")
		if !strings.Contains(doc, "gain") {
			t.Errorf("Lookup(motor+areadetector, gain) = %q, want the detector entry", doc)
		}
	})

	t.Run("source order decides on overlap", func(t *testing.T) {
		// Both orders must resolve, and the walk stops at the first table
		// containing the field.
		first := Lookup([]string{"areadetector", "motor"}, "acquire")
		second := Lookup([]string{"motor", "areadetector"}, "acquire")
		if first != second {
			t.Errorf("acquire documented differently per order: %q vs %q", first, second)
		}
	})

	t.Run("readback suffix falls back to base entry", func(t *testing.T) {
		base := Lookup([]string{"motor"}, "position")
		readback := Lookup([]string{"motor"}, "position_RBV")
		if readback != base {
			t.Errorf("Lookup(position_RBV) = %q, want base entry %q", readback, base)
		}
	})

	t.Run("unknown table names are skipped", func(t *testing.T) {
		doc := Lookup([]string{"nonexistent", "motor"}, "egu")
		if strings.HasPrefix(doc, "no documentation found") {
			t.Errorf("Lookup skipped valid table after unknown one: %q", doc)
		}
	})

	t.Run("miss returns sentinel naming the field", func(t *testing.T) {
		doc := Lookup([]string{"motor", "areadetector"}, "frobnicate")
		if !strings.Contains(doc, "frobnicate") {
			t.Errorf("sentinel %q does not contain the field name", doc)
		}
	})

	t.Run("no sources returns sentinel", func(t *testing.T) {
		doc := Lookup(nil, "position")
		if !strings.Contains(doc, "position") {
			t.Errorf("sentinel %q does not contain the field name", doc)
		}
	})
}

func TestTableNames(t *testing.T) {
	names := TableNames()
	if len(names) == 0 {
		t.Fatal("no bundled tables loaded")
	}

	found := map[string]bool{}
	for _, n := range names {
		found[n] = true
	}
	for _, want := range []string{"motor", "areadetector"} {
		if !found[want] {
			t.Errorf("bundled table %q missing from %v", want, names)
		}
	}
}

func TestLookupDeterminism(t *testing.T) {
	sources := []string{"areadetector", "motor"}
	first := Lookup(sources, "size_x")
	for i := 0; i < 10; i++ {
		if got := Lookup(sources, "size_x"); got != first {
			t.Fatalf("Lookup not deterministic: %q then %q", first, got)
		}
	}
}
