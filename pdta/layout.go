package pdta

// Field names shared by row accessors across the package and the semantic
// model built on top of it.
const (
	FieldName        = "name"
	FieldPreset      = "preset"
	FieldBank        = "bank"
	FieldBagIndex    = "bagIndex"
	FieldLibrary     = "library"
	FieldGenre       = "genre"
	FieldMorphology  = "morphology"
	FieldGenIndex    = "genIndex"
	FieldModIndex    = "modIndex"
	FieldOper        = "oper"
	FieldAmount      = "amount"
	FieldSrcOper     = "srcOper"
	FieldDestOper    = "destOper"
	FieldAmtSrcOper  = "amtSrcOper"
	FieldTransOper   = "transOper"
	FieldStart       = "start"
	FieldEnd         = "end"
	FieldLoopStart   = "loopStart"
	FieldLoopEnd     = "loopEnd"
	FieldRate        = "rate"
	FieldOriginalKey = "originalKey"
	FieldCorrection  = "correction"
	FieldLink        = "link"
	FieldType        = "type"
)

// bagFields and the modulator/generator field lists are shared between the
// preset and instrument variants of each table; the layouts differ only in
// their chunk identifier.
var (
	bagFields = []FieldSpec{
		{Name: FieldGenIndex, Width: 2, Kind: Uint16},
		{Name: FieldModIndex, Width: 2, Kind: Uint16},
	}
	modFields = []FieldSpec{
		{Name: FieldSrcOper, Width: 2, Kind: Uint16},
		{Name: FieldDestOper, Width: 2, Kind: Uint16},
		{Name: FieldAmount, Width: 2, Kind: Int16},
		{Name: FieldAmtSrcOper, Width: 2, Kind: Uint16},
		{Name: FieldTransOper, Width: 2, Kind: Uint16},
	}
	genFields = []FieldSpec{
		{Name: FieldOper, Width: 2, Kind: Uint16},
		{Name: FieldAmount, Width: 2, Kind: GenAmount},
	}
)

// The nine record table layouts of the pdta chunk, in storage order.
var (
	// Preset headers; 38 byte rows.
	PresetHeader = NewLayout("phdr",
		FieldSpec{Name: FieldName, Width: 20, Kind: Char},
		FieldSpec{Name: FieldPreset, Width: 2, Kind: Uint16},
		FieldSpec{Name: FieldBank, Width: 2, Kind: Uint16},
		FieldSpec{Name: FieldBagIndex, Width: 2, Kind: Uint16},
		FieldSpec{Name: FieldLibrary, Width: 4, Kind: Uint32},
		FieldSpec{Name: FieldGenre, Width: 4, Kind: Uint32},
		FieldSpec{Name: FieldMorphology, Width: 4, Kind: Uint32},
	)
	// Preset zone bags; 4 byte rows.
	PresetBag = NewLayout("pbag", bagFields...)
	// Preset modulators; 10 byte rows.
	PresetMod = NewLayout("pmod", modFields...)
	// Preset generators; 4 byte rows.
	PresetGen = NewLayout("pgen", genFields...)
	// Instrument headers; 22 byte rows.
	InstHeader = NewLayout("inst",
		FieldSpec{Name: FieldName, Width: 20, Kind: Char},
		FieldSpec{Name: FieldBagIndex, Width: 2, Kind: Uint16},
	)
	// Instrument zone bags; 4 byte rows, same shape as pbag.
	InstBag = NewLayout("ibag", bagFields...)
	// Instrument modulators; 10 byte rows, same shape as pmod.
	InstMod = NewLayout("imod", modFields...)
	// Instrument generators; 4 byte rows, same shape as pgen.
	InstGen = NewLayout("igen", genFields...)
	// Sample headers; 46 byte rows.
	SampleHeader = NewLayout("shdr",
		FieldSpec{Name: FieldName, Width: 20, Kind: Char},
		FieldSpec{Name: FieldStart, Width: 4, Kind: Uint32},
		FieldSpec{Name: FieldEnd, Width: 4, Kind: Uint32},
		FieldSpec{Name: FieldLoopStart, Width: 4, Kind: Uint32},
		FieldSpec{Name: FieldLoopEnd, Width: 4, Kind: Uint32},
		FieldSpec{Name: FieldRate, Width: 4, Kind: Uint32},
		FieldSpec{Name: FieldOriginalKey, Width: 1, Kind: Uint8},
		FieldSpec{Name: FieldCorrection, Width: 1, Kind: Int8},
		FieldSpec{Name: FieldLink, Width: 2, Kind: Uint16},
		FieldSpec{Name: FieldType, Width: 2, Kind: Uint16},
	)
)

// Layouts lists the nine table layouts in the storage order of their chunks
// within the pdta chunk.
var Layouts = []*Layout{
	PresetHeader, PresetBag, PresetMod, PresetGen,
	InstHeader, InstBag, InstMod, InstGen,
	SampleHeader,
}
