package convert

import (
	"github.com/mewkiz/sfbk"
	"github.com/mewkiz/sfbk/desc"
	"github.com/mewkiz/sfbk/sdta"
)

// LinksConsistent reports whether the bank's stereo link metadata is
// internally consistent: every left or right tagged sample links a partner
// of the opposite side which links back.
func LinksConsistent(b *sfbk.Bank) bool {
	for i, s := range b.Samples {
		if !desc.IsLeft(s.Type) && !desc.IsRight(s.Type) {
			continue
		}
		if int(s.Link) >= len(b.Samples) {
			return false
		}
		p := b.Samples[s.Link]
		if int(p.Link) != i {
			return false
		}
		if desc.IsLeft(p.Type) == desc.IsLeft(s.Type) {
			return false
		}
	}
	return true
}

// PairZones derives the flat zone inputs of the stereo-pairing heuristic
// from the bank's instruments. Zones whose effective sample is missing or
// not channel tagged are left out.
func PairZones(b *sfbk.Bank) []sdta.PairZone {
	var zones []sdta.PairZone
	for i := range b.Instruments {
		inst := &b.Instruments[i]
		for zi := range inst.Zones {
			sample := -1
			for _, g := range inst.Effective(zi) {
				if g.Oper == sfbk.OperSampleID {
					sample = int(g.Amount.Uint16())
				}
			}
			if sample < 0 || sample >= len(b.Samples) {
				continue
			}
			var side string
			switch s := b.Samples[sample]; {
			case desc.IsLeft(s.Type):
				side = sdta.SideLeft
			case desc.IsRight(s.Type):
				side = sdta.SideRight
			default:
				continue
			}
			keyLo, keyHi, velLo, velHi := inst.KeyVelRange(zi)
			zones = append(zones, sdta.PairZone{
				Instrument: inst.Name,
				KeyLo:      keyLo,
				KeyHi:      keyHi,
				VelLo:      velLo,
				VelHi:      velHi,
				Side:       side,
				Sample:     sample,
			})
		}
	}
	return zones
}
