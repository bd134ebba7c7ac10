package variable

import (
	"github.com/gcraig/odpi/oratypes"
)

// Indicator is the per-element null flag shared with the call interface.
type Indicator int16

const (
	IndNull    Indicator = -1
	IndNotNull Indicator = 0
)

// CharsetIDUTF16 identifies the wide character set; number-as-text scratch
// buffers double in width under it.
const CharsetIDUTF16 = 1000

// Encoding carries the connection-level character set parameters consulted
// when sizing character buffers.
type Encoding struct {
	CharsetID        int
	Encoding         string
	NEncoding        string
	MaxBytesPerChar  int
	NMaxBytesPerChar int
}

// Dependent is the reference-counting contract shared by every handle a
// variable can hold.
type Dependent interface {
	AddRef()
	Release()
}

// Conn is the owning database connection. Variables hold one reference on
// it for their lifetime and use it to allocate dependent handles.
type Conn interface {
	Dependent

	Encoding() Encoding

	// NewLob allocates a LOB handle of the given kind (clob, nclob, blob,
	// bfile) owned by the caller.
	NewLob(kind oratypes.TypeID) (Lob, error)

	// NewStmt allocates a statement handle owned by the caller.
	NewStmt() (Stmt, error)

	// NewRowid allocates a row identifier handle owned by the caller.
	NewRowid() (Rowid, error)
}

// Lob is a large object handle provided by the LOB service collaborator.
// Lengths and offsets are in characters for character LOBs and bytes
// otherwise; offsets are 1-based.
type Lob interface {
	Dependent

	Kind() oratypes.TypeID
	Locator() any

	Length() (uint64, error)
	ReadAt(offset, length uint64, buf []byte) (uint64, error)
	SetFromBytes(value []byte) error

	// SetTemporary marks the LOB eligible for implicit cleanup.
	SetTemporary() error
}

// Stmt is a cursor/statement handle.
type Stmt interface {
	Dependent

	Handle() any
}

// Rowid is a row identifier handle.
type Rowid interface {
	Dependent

	Handle() any
}

// ObjectType is the shared, reference-counted descriptor for a structured
// object type.
type ObjectType interface {
	Dependent

	Name() string

	// NewObject materializes a fresh (empty) instance.
	NewObject() (Object, error)

	// Wrap adopts a wire-level instance pointer and its indicator pointer
	// as delivered by the call interface during a fetch.
	Wrap(instance any, indicator *Indicator) (Object, error)
}

// Object is a structured object instance. Its null state lives in an
// embedded indicator rather than the variable's indicator array.
type Object interface {
	Dependent

	Instance() any
	IndicatorPtr() *Indicator
}
