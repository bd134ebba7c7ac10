// Package memdriver provides in-memory implementations of the variable
// package's collaborator interfaces: a connection that mints LOB,
// statement and rowid handles backed by process memory. It backs tests
// and the probe tool; nothing in it talks to a real database.
package memdriver

import (
	"sync"
	"sync/atomic"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/gcraig/odpi/errors"
	"github.com/gcraig/odpi/oratypes"
	"github.com/gcraig/odpi/variable"
)

// Conn is an in-memory connection. It hands out handles and tracks the
// reference count variables hold on it.
type Conn struct {
	refs int32
	enc  variable.Encoding

	mu        sync.Mutex
	lobsMade  int
	stmtsMade int
}

// NewConn returns a connection with a UTF-8 character set on both the
// default and national forms.
func NewConn() *Conn {
	return &Conn{
		refs: 1,
		enc: variable.Encoding{
			CharsetID:        873,
			Encoding:         "UTF-8",
			NEncoding:        "UTF-8",
			MaxBytesPerChar:  4,
			NMaxBytesPerChar: 4,
		},
	}
}

func (c *Conn) AddRef()  { atomic.AddInt32(&c.refs, 1) }
func (c *Conn) Release() { atomic.AddInt32(&c.refs, -1) }

// RefCount returns the current reference count.
func (c *Conn) RefCount() int32 { return atomic.LoadInt32(&c.refs) }

func (c *Conn) Encoding() variable.Encoding { return c.enc }

func (c *Conn) NewLob(kind oratypes.TypeID) (variable.Lob, error) {
	switch kind {
	case oratypes.CLOB, oratypes.NCLOB, oratypes.BLOB, oratypes.BFile:
	default:
		return nil, errors.NotSupported(errors.PhaseAllocate,
			"lob of type "+kind.String())
	}
	c.mu.Lock()
	c.lobsMade++
	c.mu.Unlock()
	return &Lob{refs: 1, kind: kind, locator: uuid.New()}, nil
}

func (c *Conn) NewStmt() (variable.Stmt, error) {
	c.mu.Lock()
	c.stmtsMade++
	c.mu.Unlock()
	return &Stmt{refs: 1, handle: uuid.New()}, nil
}

func (c *Conn) NewRowid() (variable.Rowid, error) {
	return &Rowid{refs: 1, handle: uuid.New()}, nil
}

// Lob is an in-memory large object identified by a uuid locator.
// Character LOBs measure lengths and offsets in runes, binary LOBs in
// bytes, matching locator semantics.
type Lob struct {
	refs    int32
	kind    oratypes.TypeID
	locator uuid.UUID

	mu        sync.Mutex
	content   []byte
	temporary bool
}

func (l *Lob) AddRef()  { atomic.AddInt32(&l.refs, 1) }
func (l *Lob) Release() { atomic.AddInt32(&l.refs, -1) }

// RefCount returns the current reference count.
func (l *Lob) RefCount() int32 { return atomic.LoadInt32(&l.refs) }

func (l *Lob) Kind() oratypes.TypeID { return l.kind }
func (l *Lob) Locator() any          { return l.locator }

func (l *Lob) isCharacter() bool {
	return l.kind == oratypes.CLOB || l.kind == oratypes.NCLOB
}

func (l *Lob) Length() (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.isCharacter() {
		return uint64(utf8.RuneCount(l.content)), nil
	}
	return uint64(len(l.content)), nil
}

// ReadAt copies up to length units of content starting at the 1-based
// offset into buf and returns the number of bytes copied.
func (l *Lob) ReadAt(offset, length uint64, buf []byte) (uint64, error) {
	if offset == 0 {
		return 0, errors.NotSupported(errors.PhaseRead, "zero lob offset")
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	start, end := l.window(offset, length)
	if start >= len(l.content) {
		return 0, nil
	}
	n := copy(buf, l.content[start:end])
	return uint64(n), nil
}

// window translates a unit offset and length into byte bounds.
func (l *Lob) window(offset, length uint64) (start, end int) {
	if !l.isCharacter() {
		start = int(offset - 1)
		end = start + int(length)
		if end > len(l.content) {
			end = len(l.content)
		}
		return start, end
	}

	pos, char := 0, uint64(1)
	for pos < len(l.content) && char < offset {
		_, size := utf8.DecodeRune(l.content[pos:])
		pos += size
		char++
	}
	start = pos
	var copied uint64
	for pos < len(l.content) && copied < length {
		_, size := utf8.DecodeRune(l.content[pos:])
		pos += size
		copied++
	}
	return start, pos
}

func (l *Lob) SetFromBytes(value []byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.content = append(l.content[:0], value...)
	return nil
}

func (l *Lob) SetTemporary() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.temporary = true
	return nil
}

// IsTemporary reports whether the LOB was marked temporary.
func (l *Lob) IsTemporary() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.temporary
}

// Stmt is an in-memory statement handle.
type Stmt struct {
	refs   int32
	handle uuid.UUID
}

func (s *Stmt) AddRef()  { atomic.AddInt32(&s.refs, 1) }
func (s *Stmt) Release() { atomic.AddInt32(&s.refs, -1) }

// RefCount returns the current reference count.
func (s *Stmt) RefCount() int32 { return atomic.LoadInt32(&s.refs) }

func (s *Stmt) Handle() any { return s.handle }

// Rowid is an in-memory row identifier.
type Rowid struct {
	refs   int32
	handle uuid.UUID
}

func (r *Rowid) AddRef()  { atomic.AddInt32(&r.refs, 1) }
func (r *Rowid) Release() { atomic.AddInt32(&r.refs, -1) }

func (r *Rowid) Handle() any { return r.handle }

// ObjectType describes a named structured type whose instances are
// attribute maps.
type ObjectType struct {
	refs int32
	name string
}

// NewObjectType returns a type descriptor with the given name.
func NewObjectType(name string) *ObjectType {
	return &ObjectType{refs: 1, name: name}
}

func (t *ObjectType) AddRef()  { atomic.AddInt32(&t.refs, 1) }
func (t *ObjectType) Release() { atomic.AddInt32(&t.refs, -1) }

// RefCount returns the current reference count.
func (t *ObjectType) RefCount() int32 { return atomic.LoadInt32(&t.refs) }

func (t *ObjectType) Name() string { return t.name }

func (t *ObjectType) NewObject() (variable.Object, error) {
	obj := &Object{refs: 1, typ: t, attrs: map[string]any{}}
	obj.ind = variable.IndNotNull
	return obj, nil
}

func (t *ObjectType) Wrap(instance any, ind *variable.Indicator) (variable.Object, error) {
	attrs, ok := instance.(map[string]any)
	if !ok {
		return nil, errors.InvalidHandle(errors.PhaseRead, "object instance")
	}
	if ind == nil {
		return nil, errors.InvalidHandle(errors.PhaseRead, "object indicator")
	}
	return &Object{refs: 1, typ: t, attrs: attrs, wrapped: ind}, nil
}

// Object is an in-memory structured object instance. Its null state lives
// in an embedded indicator, shared with the wire when the instance was
// adopted from a fetch.
type Object struct {
	refs    int32
	typ     *ObjectType
	attrs   map[string]any
	ind     variable.Indicator
	wrapped *variable.Indicator
}

func (o *Object) AddRef()  { atomic.AddInt32(&o.refs, 1) }
func (o *Object) Release() { atomic.AddInt32(&o.refs, -1) }

// RefCount returns the current reference count.
func (o *Object) RefCount() int32 { return atomic.LoadInt32(&o.refs) }

func (o *Object) Instance() any { return o.attrs }

func (o *Object) IndicatorPtr() *variable.Indicator {
	if o.wrapped != nil {
		return o.wrapped
	}
	return &o.ind
}

// SetAttr stores an attribute value on the instance.
func (o *Object) SetAttr(name string, value any) {
	o.attrs[name] = value
}

// Attr returns an attribute value from the instance.
func (o *Object) Attr(name string) any {
	return o.attrs[name]
}
