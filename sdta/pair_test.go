package sdta

import "testing"

func pz(inst string, klo, khi uint8, side string, sample int) PairZone {
	return PairZone{Instrument: inst, KeyLo: klo, KeyHi: khi, VelHi: 127, Side: side, Sample: sample}
}

func TestPair(t *testing.T) {
	zones := []PairZone{
		pz("piano", 0, 60, SideLeft, 0),
		pz("piano", 0, 60, SideRight, 1),
		pz("piano", 61, 127, SideLeft, 2),
		pz("piano", 61, 127, SideRight, 3),
	}
	pairs, warnings := Pair(zones)
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	golden := map[int]int{0: 1, 1: 0, 2: 3, 3: 2}
	if len(pairs) != len(golden) {
		t.Fatalf("pair count mismatch; got %d, want %d", len(pairs), len(golden))
	}
	for a, b := range golden {
		if pairs[a] != b {
			t.Fatalf("pair mismatch for sample %d; got %d, want %d", a, pairs[a], b)
		}
	}
}

func TestPairSkipsBrokenInstrument(t *testing.T) {
	zones := []PairZone{
		// No right counterpart for the left zone.
		pz("broken", 0, 127, SideLeft, 0),
		// A healthy instrument in the same batch still pairs.
		pz("strings", 0, 127, SideLeft, 4),
		pz("strings", 0, 127, SideRight, 5),
	}
	pairs, warnings := Pair(zones)
	if len(warnings) != 1 {
		t.Fatalf("warning count mismatch; got %d, want 1", len(warnings))
	}
	if _, ok := pairs[0]; ok {
		t.Fatal("broken instrument was paired")
	}
	if pairs[4] != 5 || pairs[5] != 4 {
		t.Fatalf("healthy instrument pairing mismatch; got %v", pairs)
	}
}

func TestPairSkipsDuplicatedZone(t *testing.T) {
	zones := []PairZone{
		pz("dup", 0, 127, SideLeft, 0),
		pz("dup", 0, 127, SideLeft, 1),
		pz("dup", 0, 127, SideRight, 2),
	}
	pairs, warnings := Pair(zones)
	if len(pairs) != 0 {
		t.Fatalf("unexpected pairs: %v", pairs)
	}
	if len(warnings) != 1 {
		t.Fatalf("warning count mismatch; got %d, want 1", len(warnings))
	}
}
