package sfbk

import "github.com/pkg/errors"

// ErrUnexpectedGlobalZone reports a zone lacking its entity's terminal
// reference generator anywhere but first in the zone list.
var ErrUnexpectedGlobalZone = errors.New("sfbk: unexpected global zone")

// A Zone bundles the generators and modulators scoping one key and velocity
// region of a preset or instrument. Both lists keep their stored order.
type Zone struct {
	Gens []Generator
	Mods []Modulator
}

// terminalRef returns the amount of the zone's trailing terminal reference
// generator, or false if the last generator is not the given operator. A
// zone whose generator list does not end in the terminal operator is a
// global zone.
func (z *Zone) terminalRef(terminal Oper) (int, bool) {
	if len(z.Gens) == 0 {
		return 0, false
	}
	last := z.Gens[len(z.Gens)-1]
	if last.Oper != terminal {
		return 0, false
	}
	return int(last.Amount.Uint16()), true
}

// lookup returns the zone's own generator with the given operator.
func (z *Zone) lookup(op Oper) (Generator, bool) {
	for _, g := range z.Gens {
		if g.Oper == op {
			return g, true
		}
	}
	return Generator{}, false
}

// A ZoneList is the resolved zone structure of one preset or instrument: an
// optional global zone followed by the entity's local zones in stored
// order.
type ZoneList struct {
	// Global zone supplying default generator values, or nil.
	Global *Zone
	// Local zones in stored order. Each ends in the entity's terminal
	// reference generator.
	Zones []Zone
}

// splitZones resolves a flat zone sequence into a global zone and local
// zones. A zone is global if and only if it lacks the terminal reference
// generator as its last generator; at most one global zone is permitted and
// only as the first zone.
func splitZones(zones []Zone, terminal Oper) (ZoneList, error) {
	var zl ZoneList
	for i, z := range zones {
		if _, ok := z.terminalRef(terminal); ok {
			zl.Zones = append(zl.Zones, z)
			continue
		}
		if i != 0 {
			return ZoneList{}, errors.Wrapf(ErrUnexpectedGlobalZone, "zone %d lacks terminal generator %v", i, terminal)
		}
		z := z
		zl.Global = &z
	}
	return zl, nil
}

// Effective returns the generator list of the i'th local zone with
// inheritance applied: any generator present in the global zone but absent
// locally is prepended in the global zone's order. The stored lists are not
// modified.
func (zl *ZoneList) Effective(i int) []Generator {
	z := &zl.Zones[i]
	if zl.Global == nil {
		return z.Gens
	}
	var inherited []Generator
	for _, g := range zl.Global.Gens {
		if _, ok := z.lookup(g.Oper); !ok {
			inherited = append(inherited, g)
		}
	}
	if len(inherited) == 0 {
		return z.Gens
	}
	return append(inherited, z.Gens...)
}

// KeyVelRange returns the effective key and velocity ranges of the i'th
// local zone. Absent ranges default to the full 0-127 span.
func (zl *ZoneList) KeyVelRange(i int) (keyLo, keyHi, velLo, velHi uint8) {
	keyLo, keyHi, velLo, velHi = 0, 127, 0, 127
	for _, g := range zl.Effective(i) {
		switch g.Oper {
		case OperKeyRange:
			keyLo, keyHi = g.Amount.Range()
		case OperVelRange:
			velLo, velHi = g.Amount.Range()
		}
	}
	return keyLo, keyHi, velLo, velHi
}
