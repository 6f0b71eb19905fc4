package sdta

import "fmt"

// Channel sides of a pairing key.
const (
	SideLeft  = "left"
	SideRight = "right"
)

// A PairZone is one instrument zone participating in stereo-pair repair:
// its effective key and velocity ranges, the channel side of its sample,
// and the sample's row index.
type PairZone struct {
	Instrument string
	KeyLo      uint8
	KeyHi      uint8
	VelLo      uint8
	VelHi      uint8
	Side       string
	Sample     int
}

func (z *PairZone) key() string {
	return fmt.Sprintf("%d-%d/%d-%d", z.KeyLo, z.KeyHi, z.VelLo, z.VelHi)
}

// Pair derives left/right sample groupings from zone layout alone, for
// banks whose stereo link metadata is internally inconsistent. For every
// left-tagged (keyRange, velRange) key the corresponding right-tagged key
// supplies the partner. The result maps each paired sample row index to its
// partner in both directions.
//
// The heuristic is advisory: a missing or duplicated counterpart is
// reported as a warning and the whole affected instrument is skipped, never
// aborting the conversion. Stored metadata is not altered.
func Pair(zones []PairZone) (pairs map[int]int, warnings []string) {
	byInst := make(map[string][]PairZone)
	var insts []string
	for _, z := range zones {
		if _, ok := byInst[z.Instrument]; !ok {
			insts = append(insts, z.Instrument)
		}
		byInst[z.Instrument] = append(byInst[z.Instrument], z)
	}

	pairs = make(map[int]int)
	for _, inst := range insts {
		left := make(map[string][]int)
		right := make(map[string][]int)
		for _, z := range byInst[inst] {
			switch z.Side {
			case SideLeft:
				left[z.key()] = append(left[z.key()], z.Sample)
			case SideRight:
				right[z.key()] = append(right[z.key()], z.Sample)
			}
		}
		matched := make(map[int]int)
		ok := true
		for key, ls := range left {
			rs := right[key]
			if len(ls) != 1 || len(rs) != 1 {
				warnings = append(warnings, fmt.Sprintf("instrument %q: zone %s has %d left and %d right samples; skipping instrument", inst, key, len(ls), len(rs)))
				ok = false
				break
			}
			matched[ls[0]] = rs[0]
			matched[rs[0]] = ls[0]
		}
		if !ok {
			continue
		}
		// Right-tagged zones with no left counterpart are just as broken.
		for key, rs := range right {
			if _, found := left[key]; !found {
				warnings = append(warnings, fmt.Sprintf("instrument %q: zone %s has %d right samples and no left; skipping instrument", inst, key, len(rs)))
				ok = false
				break
			}
		}
		if !ok {
			continue
		}
		for a, b := range matched {
			pairs[a] = b
		}
	}
	return pairs, warnings
}
