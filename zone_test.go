package sfbk

import (
	"testing"

	"github.com/icza/mighty"
	"github.com/mewkiz/sfbk/pdta"
	"github.com/pkg/errors"
)

func gen(op Oper, amount int16) Generator {
	return Generator{Oper: op, Amount: pdta.AmountFromInt16(amount)}
}

func genRange(op Oper, lo, hi uint8) Generator {
	return Generator{Oper: op, Amount: pdta.AmountFromRange(lo, hi)}
}

func TestSplitZones(t *testing.T) {
	global := Zone{Gens: []Generator{gen(17, -500), genRange(OperVelRange, 0, 100)}}
	local := Zone{Gens: []Generator{genRange(OperKeyRange, 0, 60), gen(OperSampleID, 0)}}

	// A leading zone lacking the terminal generator is the global zone.
	zl, err := splitZones([]Zone{global, local}, OperSampleID)
	if err != nil {
		t.Fatalf("error splitting zones; %v", err)
	}
	if zl.Global == nil {
		t.Fatal("expected global zone, got none")
	}
	if len(zl.Zones) != 1 {
		t.Fatalf("local zone count mismatch; got %d, want 1", len(zl.Zones))
	}

	// No global zone when every zone closes with the terminal generator.
	zl, err = splitZones([]Zone{local, local}, OperSampleID)
	if err != nil {
		t.Fatalf("error splitting zones; %v", err)
	}
	if zl.Global != nil {
		t.Fatalf("unexpected global zone %v", zl.Global)
	}

	// A non-terminal zone anywhere but first is a structural violation.
	if _, err := splitZones([]Zone{local, global}, OperSampleID); !errors.Is(err, ErrUnexpectedGlobalZone) {
		t.Fatalf("error mismatch; got %v, want ErrUnexpectedGlobalZone", err)
	}
}

func TestZoneInheritance(t *testing.T) {
	zl := ZoneList{
		Global: &Zone{Gens: []Generator{
			gen(17, -500),                   // pan
			genRange(OperVelRange, 10, 100), // velRange
			gen(56, 50),                     // scaleTuning
		}},
		Zones: []Zone{
			{Gens: []Generator{
				genRange(OperKeyRange, 0, 60),
				gen(17, 250), // local pan shadows the global one
				gen(OperSampleID, 3),
			}},
		},
	}
	eff := zl.Effective(0)
	// Inherited generators precede the local list; shadowed names are not
	// inherited.
	want := []Generator{
		genRange(OperVelRange, 10, 100),
		gen(56, 50),
		genRange(OperKeyRange, 0, 60),
		gen(17, 250),
		gen(OperSampleID, 3),
	}
	if len(eff) != len(want) {
		t.Fatalf("effective generator count mismatch; got %d, want %d", len(eff), len(want))
	}
	for i := range want {
		if eff[i] != want[i] {
			t.Fatalf("effective generator %d mismatch; got %v=%d, want %v=%d", i, eff[i].Oper, eff[i].Amount.Int16(), want[i].Oper, want[i].Amount.Int16())
		}
	}
	// The stored local list is untouched.
	if len(zl.Zones[0].Gens) != 3 {
		t.Fatalf("stored generator count changed; got %d, want 3", len(zl.Zones[0].Gens))
	}

	keyLo, keyHi, velLo, velHi := zl.KeyVelRange(0)
	eq := mighty.Eq(t)
	eq(uint8(0), keyLo)
	eq(uint8(60), keyHi)
	eq(uint8(10), velLo)
	eq(uint8(100), velHi)
}

func TestOperNames(t *testing.T) {
	eq := mighty.Eq(t)
	eq("keyRange", OperKeyRange.String())
	eq("sampleID", OperSampleID.String())
	eq("reserved1", Oper(42).String())
	eq("gen70", Oper(70).String())

	op, ok := OperByName("instrument")
	eq(true, ok)
	eq(OperInstrument, op)
	op, ok = OperByName("gen70")
	eq(true, ok)
	eq(Oper(70), op)
	_, ok = OperByName("noSuchGenerator")
	eq(false, ok)
}

func TestOperKinds(t *testing.T) {
	eq := mighty.Eq(t)
	eq(KindRange, OperKeyRange.Kind())
	eq(KindRange, OperVelRange.Kind())
	eq(KindIndex, OperInstrument.Kind())
	eq(KindIndex, OperSampleID.Kind())
	eq(KindSubstitution, Oper(46).Kind())
	eq(KindSubstitution, Oper(58).Kind())
	eq(KindValue, Oper(17).Kind())
}
