package oratypes

import (
	"github.com/gcraig/odpi/errors"
)

// MaxBasicBufferSize is the largest per-element wire size that still gets a
// fixed flat buffer. Anything above it is handled with dynamic chunked
// storage. LONG types carry a descriptor size one past this ceiling so they
// always end up dynamic.
const MaxBasicBufferSize = 32767

// Wire sizes of the fixed-width encodings.
const (
	NumberWireSize       = 22
	DateWireSize         = 7
	TimestampWireSize    = 11
	TimestampTZWireSize  = 13
	IntervalDSWireSize   = 11
	IntervalYMWireSize   = 5
	NativeIntWireSize    = 8
	NativeFloatWireSize  = 4
	NativeDoubleWireSize = 8
	BooleanWireSize      = 4
)

// TypeID identifies a portable (wire) type
type TypeID uint8

const (
	None TypeID = iota
	Varchar
	NVarchar
	Char
	NChar
	Rowid
	Raw
	NativeFloat
	NativeDouble
	NativeInt
	NativeUint
	Number
	Date
	Timestamp
	TimestampTZ
	TimestampLTZ
	IntervalDS
	IntervalYM
	CLOB
	NCLOB
	BLOB
	BFile
	Stmt
	Boolean
	Object
	LongVarchar
	LongNVarchar
	LongRaw
)

var typeNames = [...]string{
	None:         "none",
	Varchar:      "varchar",
	NVarchar:     "nvarchar",
	Char:         "char",
	NChar:        "nchar",
	Rowid:        "rowid",
	Raw:          "raw",
	NativeFloat:  "native_float",
	NativeDouble: "native_double",
	NativeInt:    "native_int",
	NativeUint:   "native_uint",
	Number:       "number",
	Date:         "date",
	Timestamp:    "timestamp",
	TimestampTZ:  "timestamp_tz",
	TimestampLTZ: "timestamp_ltz",
	IntervalDS:   "interval_ds",
	IntervalYM:   "interval_ym",
	CLOB:         "clob",
	NCLOB:        "nclob",
	BLOB:         "blob",
	BFile:        "bfile",
	Stmt:         "stmt",
	Boolean:      "boolean",
	Object:       "object",
	LongVarchar:  "long_varchar",
	LongNVarchar: "long_nvarchar",
	LongRaw:      "long_raw",
}

func (t TypeID) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "unknown"
}

// NativeType identifies the host-visible representation of a value
type NativeType uint8

const (
	NativeNone NativeType = iota
	NativeInt64
	NativeUint64
	NativeFloat32
	NativeFloat64
	NativeBytes
	NativeTimestamp
	NativeIntervalDS
	NativeIntervalYM
	NativeLob
	NativeObject
	NativeStmt
	NativeRowid
	NativeBoolean
)

var nativeNames = [...]string{
	NativeNone:       "none",
	NativeInt64:      "int64",
	NativeUint64:     "uint64",
	NativeFloat32:    "float",
	NativeFloat64:    "double",
	NativeBytes:      "bytes",
	NativeTimestamp:  "timestamp",
	NativeIntervalDS: "interval_ds",
	NativeIntervalYM: "interval_ym",
	NativeLob:        "lob",
	NativeObject:     "object",
	NativeStmt:       "stmt",
	NativeRowid:      "rowid",
	NativeBoolean:    "boolean",
}

func (n NativeType) String() string {
	if int(n) < len(nativeNames) {
		return nativeNames[n]
	}
	return "unknown"
}

// IsHandle reports whether the representation is an opaque handle to a
// dependent object rather than a value
func (n NativeType) IsHandle() bool {
	switch n {
	case NativeLob, NativeObject, NativeStmt, NativeRowid:
		return true
	}
	return false
}

// CharsetForm selects which connection character set applies to a type
type CharsetForm uint8

const (
	CharsetFormImplicit CharsetForm = iota
	CharsetFormNChar
)

// Descriptor is the read-only metadata for one portable type
type Descriptor struct {
	ID               TypeID
	DefaultNative    NativeType
	WireSize         uint32 // 0 means caller-supplied sizing
	IsCharacterData  bool
	CanBeInArray     bool
	RequiresPreFetch bool
	CharsetForm      CharsetForm
}

var descriptors = [...]Descriptor{
	Varchar:      {ID: Varchar, DefaultNative: NativeBytes, IsCharacterData: true, CanBeInArray: true},
	NVarchar:     {ID: NVarchar, DefaultNative: NativeBytes, IsCharacterData: true, CanBeInArray: true, CharsetForm: CharsetFormNChar},
	Char:         {ID: Char, DefaultNative: NativeBytes, IsCharacterData: true, CanBeInArray: true},
	NChar:        {ID: NChar, DefaultNative: NativeBytes, IsCharacterData: true, CanBeInArray: true, CharsetForm: CharsetFormNChar},
	Rowid:        {ID: Rowid, DefaultNative: NativeRowid, RequiresPreFetch: true},
	Raw:          {ID: Raw, DefaultNative: NativeBytes, CanBeInArray: true},
	NativeFloat:  {ID: NativeFloat, DefaultNative: NativeFloat32, WireSize: NativeFloatWireSize, CanBeInArray: true},
	NativeDouble: {ID: NativeDouble, DefaultNative: NativeFloat64, WireSize: NativeDoubleWireSize, CanBeInArray: true},
	NativeInt:    {ID: NativeInt, DefaultNative: NativeInt64, WireSize: NativeIntWireSize, CanBeInArray: true},
	NativeUint:   {ID: NativeUint, DefaultNative: NativeUint64, WireSize: NativeIntWireSize, CanBeInArray: true},
	Number:       {ID: Number, DefaultNative: NativeFloat64, WireSize: NumberWireSize, CanBeInArray: true},
	Date:         {ID: Date, DefaultNative: NativeTimestamp, WireSize: DateWireSize, CanBeInArray: true},
	Timestamp:    {ID: Timestamp, DefaultNative: NativeTimestamp, WireSize: TimestampWireSize, CanBeInArray: true},
	TimestampTZ:  {ID: TimestampTZ, DefaultNative: NativeTimestamp, WireSize: TimestampTZWireSize, CanBeInArray: true},
	TimestampLTZ: {ID: TimestampLTZ, DefaultNative: NativeTimestamp, WireSize: TimestampTZWireSize, CanBeInArray: true},
	IntervalDS:   {ID: IntervalDS, DefaultNative: NativeIntervalDS, WireSize: IntervalDSWireSize, CanBeInArray: true},
	IntervalYM:   {ID: IntervalYM, DefaultNative: NativeIntervalYM, WireSize: IntervalYMWireSize, CanBeInArray: true},
	CLOB:         {ID: CLOB, DefaultNative: NativeLob, IsCharacterData: true, RequiresPreFetch: true},
	NCLOB:        {ID: NCLOB, DefaultNative: NativeLob, IsCharacterData: true, RequiresPreFetch: true, CharsetForm: CharsetFormNChar},
	BLOB:         {ID: BLOB, DefaultNative: NativeLob, RequiresPreFetch: true},
	BFile:        {ID: BFile, DefaultNative: NativeLob, RequiresPreFetch: true},
	Stmt:         {ID: Stmt, DefaultNative: NativeStmt, RequiresPreFetch: true},
	Boolean:      {ID: Boolean, DefaultNative: NativeBoolean, WireSize: BooleanWireSize},
	Object:       {ID: Object, DefaultNative: NativeObject, RequiresPreFetch: true},
	LongVarchar:  {ID: LongVarchar, DefaultNative: NativeBytes, WireSize: MaxBasicBufferSize + 1, IsCharacterData: true},
	LongNVarchar: {ID: LongNVarchar, DefaultNative: NativeBytes, WireSize: MaxBasicBufferSize + 1, IsCharacterData: true, CharsetForm: CharsetFormNChar},
	LongRaw:      {ID: LongRaw, DefaultNative: NativeBytes, WireSize: MaxBasicBufferSize + 1},
}

// Lookup returns the descriptor for a portable type identifier
func Lookup(id TypeID) (*Descriptor, error) {
	if int(id) < len(descriptors) && descriptors[id].ID == id {
		return &descriptors[id], nil
	}
	return nil, errors.New(errors.PhaseAllocate, errors.KindNotSupported).
		OracleType(id.String()).
		Detail("unknown oracle type %d", uint8(id)).
		Build()
}

// ValidateConversion checks that an alternate native representation is
// compatible with the type. The default native representation is always
// valid and need not be checked.
func ValidateConversion(d *Descriptor, native NativeType) error {
	switch d.ID {
	case Timestamp, TimestampTZ, TimestampLTZ:
		if native == NativeFloat64 {
			return nil
		}
	case NativeInt:
		if native == NativeUint64 {
			return nil
		}
	case Number:
		if native == NativeInt64 || native == NativeUint64 || native == NativeBytes {
			return nil
		}
	case CLOB, NCLOB, BLOB, BFile:
		if native == NativeBytes {
			return nil
		}
	}
	return errors.UnhandledConversion(errors.PhaseAllocate, d.ID.String(), native.String())
}
