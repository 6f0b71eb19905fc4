package sfbk

import (
	"fmt"

	"github.com/mewkiz/sfbk/pdta"
)

// An Oper is a generator operator code. Codes 0 through 60 carry assigned
// names, reserved and unused codes included; higher codes are unknown but
// still round-trip.
type Oper uint16

// Operator codes referenced by the semantic model.
const (
	// Zone terminal references; their amounts are row indices into the
	// instrument and sample header tables.
	OperInstrument Oper = 41
	OperSampleID   Oper = 53
	// Key and velocity ranges; their amounts are low/high byte pairs.
	OperKeyRange Oper = 43
	OperVelRange Oper = 44
)

// AmountKind selects the applicable interpretation of a generator's raw
// amount cell.
type AmountKind uint8

// Amount interpretations per operator.
const (
	// Generic signed 16-bit amount.
	KindValue AmountKind = iota
	// Low/high byte pair.
	KindRange
	// Unsigned 16-bit row index into another table.
	KindIndex
	// Signed 16-bit note or velocity override.
	KindSubstitution
)

// operNames maps the assigned operator codes to their names.
var operNames = [...]string{
	0:  "startAddrsOffset",
	1:  "endAddrsOffset",
	2:  "startloopAddrsOffset",
	3:  "endloopAddrsOffset",
	4:  "startAddrsCoarseOffset",
	5:  "modLfoToPitch",
	6:  "vibLfoToPitch",
	7:  "modEnvToPitch",
	8:  "initialFilterFc",
	9:  "initialFilterQ",
	10: "modLfoToFilterFc",
	11: "modEnvToFilterFc",
	12: "endAddrsCoarseOffset",
	13: "modLfoToVolume",
	14: "unused1",
	15: "chorusEffectsSend",
	16: "reverbEffectsSend",
	17: "pan",
	18: "unused2",
	19: "unused3",
	20: "unused4",
	21: "delayModLFO",
	22: "freqModLFO",
	23: "delayVibLFO",
	24: "freqVibLFO",
	25: "delayModEnv",
	26: "attackModEnv",
	27: "holdModEnv",
	28: "decayModEnv",
	29: "sustainModEnv",
	30: "releaseModEnv",
	31: "keynumToModEnvHold",
	32: "keynumToModEnvDecay",
	33: "delayVolEnv",
	34: "attackVolEnv",
	35: "holdVolEnv",
	36: "decayVolEnv",
	37: "sustainVolEnv",
	38: "releaseVolEnv",
	39: "keynumToVolEnvHold",
	40: "keynumToVolEnvDecay",
	41: "instrument",
	42: "reserved1",
	43: "keyRange",
	44: "velRange",
	45: "startloopAddrsCoarseOffset",
	46: "keynum",
	47: "velocity",
	48: "initialAttenuation",
	49: "reserved2",
	50: "endloopAddrsCoarseOffset",
	51: "coarseTune",
	52: "fineTune",
	53: "sampleID",
	54: "sampleModes",
	55: "reserved3",
	56: "scaleTuning",
	57: "exclusiveClass",
	58: "overridingRootKey",
	59: "unused5",
	60: "endOper",
}

// operByName is the reverse of operNames, built once at package init.
var operByName = func() map[string]Oper {
	m := make(map[string]Oper, len(operNames))
	for code, name := range operNames {
		m[name] = Oper(code)
	}
	return m
}()

// String returns the assigned name of the operator, or "gen<code>" for
// codes without one.
func (op Oper) String() string {
	if int(op) < len(operNames) {
		return operNames[op]
	}
	return fmt.Sprintf("gen%d", uint16(op))
}

// OperByName returns the operator carrying the given assigned name.
func OperByName(name string) (Oper, bool) {
	if op, ok := operByName[name]; ok {
		return op, true
	}
	// Codes beyond the assigned table render as "gen<code>".
	var code uint16
	if _, err := fmt.Sscanf(name, "gen%d", &code); err == nil && Oper(code).String() == name {
		return Oper(code), true
	}
	return 0, false
}

// Kind returns the amount interpretation applicable to the operator. The
// mapping is static per operator; the raw cell itself stays uninterpreted
// until queried.
func (op Oper) Kind() AmountKind {
	switch op {
	case OperKeyRange, OperVelRange:
		return KindRange
	case OperInstrument, OperSampleID:
		return KindIndex
	case 46, 47, 58: // keynum, velocity, overridingRootKey
		return KindSubstitution
	default:
		return KindValue
	}
}

// A Generator is a named zone parameter: an operator code plus its raw
// amount cell. The order of generators within a zone is semantically
// irrelevant but preserved verbatim for byte-exact reproduction.
type Generator struct {
	Oper   Oper
	Amount pdta.Amount
}

// A Modulator is one modulation binding of a zone. Its five wire fields are
// carried opaquely; the model does not decompose them.
type Modulator struct {
	SrcOper    uint16
	DestOper   uint16
	Amount     int16
	AmtSrcOper uint16
	TransOper  uint16
}
