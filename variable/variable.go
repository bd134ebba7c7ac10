package variable

import (
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/gcraig/odpi/errors"
	"github.com/gcraig/odpi/oratypes"
)

// Variable is a bind or define variable: an array of elements of one
// database type, exposed to the host through []Data and to the call
// interface through parallel wire buffers.
type Variable struct {
	conn       Conn
	typ        *oratypes.Descriptor
	nativeType oratypes.NativeType
	objectType ObjectType

	maxArraySize    uint32
	actualArraySize uint32
	sizeInBytes     uint32

	isArray          bool
	isDynamic        bool
	requiresPreFetch bool

	refCount int32
	buf      buffers
	log      *zap.Logger
}

// New allocates a variable with room for maxArraySize elements of the given
// type. For variable length types size is the per-element capacity, in bytes
// when sizeIsBytes is set and in characters otherwise. The returned Data
// slice is the host view of the elements; it stays valid for the life of the
// variable. All elements start out null.
func New(conn Conn, typeID oratypes.TypeID, nativeType oratypes.NativeType,
	maxArraySize, size uint32, sizeIsBytes, isArray bool,
	objType ObjectType) (*Variable, []Data, error) {

	typ, err := oratypes.Lookup(typeID)
	if err != nil {
		return nil, nil, err
	}
	if nativeType == oratypes.NativeNone {
		nativeType = typ.DefaultNative
	} else if nativeType != typ.DefaultNative {
		if err := oratypes.ValidateConversion(typ, nativeType); err != nil {
			return nil, nil, err
		}
	}
	if maxArraySize == 0 {
		return nil, nil, errors.ArraySizeZero()
	}
	if isArray && !typ.CanBeInArray {
		return nil, nil, errors.NotSupported(errors.PhaseAllocate,
			"arrays of "+typ.ID.String())
	}

	// determine per-element wire capacity
	if size == 0 {
		size = 1
	}
	var sizeInBytes uint32
	enc := conn.Encoding()
	switch {
	case typ.WireSize > 0:
		sizeInBytes = typ.WireSize
	case sizeIsBytes || !typ.IsCharacterData:
		sizeInBytes = size
	case typ.CharsetForm == oratypes.CharsetFormNChar:
		sizeInBytes = size * uint32(enc.NMaxBytesPerChar)
	default:
		sizeInBytes = size * uint32(enc.MaxBytesPerChar)
	}

	v := &Variable{
		conn:             conn,
		typ:              typ,
		nativeType:       nativeType,
		objectType:       objType,
		maxArraySize:     maxArraySize,
		sizeInBytes:      sizeInBytes,
		isArray:          isArray,
		requiresPreFetch: typ.RequiresPreFetch,
		refCount:         1,
		log:              Logger(),
	}

	// oversized byte capacity cannot ride in a basic buffer; switch to
	// chunked storage filled piecewise during execution
	if sizeInBytes > oratypes.MaxBasicBufferSize &&
		nativeType == oratypes.NativeBytes {
		v.isDynamic = true
		v.requiresPreFetch = true
	}

	conn.AddRef()
	if objType != nil {
		objType.AddRef()
	}

	if err := v.initBuffers(); err != nil {
		v.free()
		return nil, nil, err
	}

	v.log.Debug("variable allocated",
		zap.String("oracleType", typ.ID.String()),
		zap.String("nativeType", nativeType.String()),
		zap.Uint32("maxArraySize", maxArraySize),
		zap.Uint32("sizeInBytes", v.sizeInBytes),
		zap.Bool("dynamic", v.isDynamic))

	return v, v.buf.externalData, nil
}

// AddRef adds a reference to the variable.
func (v *Variable) AddRef() {
	atomic.AddInt32(&v.refCount, 1)
}

// Release releases a reference to the variable. When the last reference is
// released all buffers and dependent references are freed and the variable
// must no longer be used.
func (v *Variable) Release() {
	if atomic.AddInt32(&v.refCount, -1) == 0 {
		v.free()
	}
}

func (v *Variable) free() {
	v.finalizeBuffers()
	if v.objectType != nil {
		v.objectType.Release()
		v.objectType = nil
	}
	if v.conn != nil {
		v.conn.Release()
		v.conn = nil
	}
	v.log.Debug("variable freed",
		zap.String("oracleType", v.typ.ID.String()))
}

// Data returns the host view of the variable's elements.
func (v *Variable) Data() []Data {
	return v.buf.externalData
}

// OracleType returns the variable's database type.
func (v *Variable) OracleType() oratypes.TypeID { return v.typ.ID }

// NativeType returns the variable's host representation.
func (v *Variable) NativeType() oratypes.NativeType { return v.nativeType }

// SizeInBytes returns the per-element wire capacity.
func (v *Variable) SizeInBytes() uint32 { return v.sizeInBytes }

// MaxArraySize returns the allocated element count.
func (v *Variable) MaxArraySize() uint32 { return v.maxArraySize }

// IsDynamic reports whether element storage is chunked and filled
// piecewise during execution rounds.
func (v *Variable) IsDynamic() bool { return v.isDynamic }

// NumElementsInArray returns the in-use element count. The value is only
// meaningful when the variable is bound as an array.
func (v *Variable) NumElementsInArray() uint32 {
	return v.actualArraySize
}

// SetNumElementsInArray sets the in-use element count, distinct from the
// allocated element count.
func (v *Variable) SetNumElementsInArray(n uint32) error {
	if n > v.maxArraySize {
		return errors.ArraySizeExceeded(errors.PhaseBind, v.maxArraySize, n)
	}
	v.actualArraySize = n
	return nil
}

// Resize changes the per-element byte capacity of a bytes variable. Element
// content is discarded; null state is preserved. Dynamic variables grow on
// demand and ignore resizing.
func (v *Variable) Resize(size uint32, sizeIsBytes bool) error {
	if v.nativeType != oratypes.NativeBytes {
		return errors.NotSupported(errors.PhaseResize,
			"resizing "+v.typ.ID.String()+" as "+v.nativeType.String())
	}
	if v.isDynamic {
		return nil
	}
	if v.typ.WireSize > 0 {
		return errors.NotSupported(errors.PhaseResize,
			"resizing "+v.typ.ID.String()+" as "+v.nativeType.String())
	}

	if size == 0 {
		size = 1
	}
	enc := v.conn.Encoding()
	switch {
	case sizeIsBytes || !v.typ.IsCharacterData:
		v.sizeInBytes = size
	case v.typ.CharsetForm == oratypes.CharsetFormNChar:
		v.sizeInBytes = size * uint32(enc.NMaxBytesPerChar)
	default:
		v.sizeInBytes = size * uint32(enc.MaxBytesPerChar)
	}

	// drop the storage whose shape depends on the element size and rebuild;
	// indicators survive so null state is kept
	v.buf.data = nil
	v.buf.actualLength = nil
	v.buf.returnCode = nil
	return v.allocateBuffers()
}

// CopyData copies the element at sourcePos in source into the element at
// pos. Both variables must share the same native representation.
func (v *Variable) CopyData(pos uint32, source *Variable, sourcePos uint32) error {
	if source.nativeType != v.nativeType {
		return errors.NotSupported(errors.PhaseCopy,
			"copy from "+source.nativeType.String()+" to "+v.nativeType.String())
	}
	if sourcePos >= source.maxArraySize {
		return errors.ArraySizeExceeded(errors.PhaseCopy,
			source.maxArraySize, sourcePos)
	}
	if err := v.checkArraySize(errors.PhaseCopy, pos); err != nil {
		return err
	}
	return v.setValue(pos, &source.buf.externalData[sourcePos])
}

// ReadValue returns the host value of the element at pos, unmarshaling the
// wire buffer on demand.
func (v *Variable) ReadValue(pos uint32) (*Data, error) {
	if err := v.checkArraySize(errors.PhaseRead, pos); err != nil {
		return nil, err
	}
	if err := v.getValue(pos); err != nil {
		return nil, err
	}
	return &v.buf.externalData[pos], nil
}

// WriteValue stores the given host value into the element at pos,
// marshaling it into the wire buffer.
func (v *Variable) WriteValue(pos uint32, data *Data) error {
	if err := v.checkArraySize(errors.PhaseWrite, pos); err != nil {
		return err
	}
	return v.setValue(pos, data)
}

// SetFromBytes stores a byte payload into the element at pos.
func (v *Variable) SetFromBytes(pos uint32, value []byte) error {
	if v.nativeType != oratypes.NativeBytes {
		return errors.NotSupported(errors.PhaseWrite,
			"byte payload for "+v.nativeType.String()+" variable")
	}
	if err := v.checkArraySize(errors.PhaseWrite, pos); err != nil {
		return err
	}
	return v.setFromBytes(pos, value)
}

// SetFromLob stores a LOB reference into the element at pos.
func (v *Variable) SetFromLob(pos uint32, lob Lob) error {
	if v.nativeType != oratypes.NativeLob {
		return errors.NotSupported(errors.PhaseWrite,
			"lob for "+v.nativeType.String()+" variable")
	}
	if err := v.checkArraySize(errors.PhaseWrite, pos); err != nil {
		return err
	}
	return v.setFromLob(pos, lob)
}

// SetFromObject stores an object reference into the element at pos.
func (v *Variable) SetFromObject(pos uint32, obj Object) error {
	if v.nativeType != oratypes.NativeObject {
		return errors.NotSupported(errors.PhaseWrite,
			"object for "+v.nativeType.String()+" variable")
	}
	if err := v.checkArraySize(errors.PhaseWrite, pos); err != nil {
		return err
	}
	return v.setFromObject(pos, obj)
}

// SetFromStmt stores a statement reference into the element at pos.
func (v *Variable) SetFromStmt(pos uint32, stmt Stmt) error {
	if v.nativeType != oratypes.NativeStmt {
		return errors.NotSupported(errors.PhaseWrite,
			"statement for "+v.nativeType.String()+" variable")
	}
	if err := v.checkArraySize(errors.PhaseWrite, pos); err != nil {
		return err
	}
	return v.setFromStmt(pos, stmt)
}

// SetFromRowid stores a row identifier reference into the element at pos.
func (v *Variable) SetFromRowid(pos uint32, rowid Rowid) error {
	if v.nativeType != oratypes.NativeRowid {
		return errors.NotSupported(errors.PhaseWrite,
			"rowid for "+v.nativeType.String()+" variable")
	}
	if err := v.checkArraySize(errors.PhaseWrite, pos); err != nil {
		return err
	}
	return v.setFromRowid(pos, rowid)
}

// ConvertToLob rewrites a character or raw variable in place as the
// matching LOB type, migrating any chunked content into fresh temporary
// LOBs. Used when an oversized column turns out to need LOB semantics
// after all.
func (v *Variable) ConvertToLob() error {
	var lobKind oratypes.TypeID
	switch v.typ.ID {
	case oratypes.CLOB, oratypes.NCLOB, oratypes.BLOB, oratypes.BFile:
		return nil
	case oratypes.Raw, oratypes.LongRaw:
		lobKind = oratypes.BLOB
	case oratypes.NVarchar, oratypes.NChar, oratypes.LongNVarchar:
		lobKind = oratypes.NCLOB
	case oratypes.Varchar, oratypes.Char, oratypes.LongVarchar:
		lobKind = oratypes.CLOB
	default:
		return errors.NotSupported(errors.PhaseAllocate,
			"lob conversion of "+v.typ.ID.String())
	}

	typ, err := oratypes.Lookup(lobKind)
	if err != nil {
		return err
	}

	// retype and rebuild; the chunked storage is kept so the fresh LOBs
	// are marked temporary and already-set content can migrate
	v.typ = typ
	v.sizeInBytes = typ.WireSize
	v.isDynamic = false
	v.requiresPreFetch = true
	if err := v.initBuffers(); err != nil {
		return err
	}

	if v.buf.dynamicBytes != nil {
		for i := uint32(0); i < v.maxArraySize; i++ {
			if v.buf.dynamicBytes[i].numChunks == 0 {
				continue
			}
			content := v.buf.dynamicBytes[i].consolidate()
			if err := v.buf.references[i].lob.SetFromBytes(content); err != nil {
				return errors.Wrap(errors.PhaseWrite, errors.KindAllocation,
					err, "migrate content to lob")
			}
		}
	}
	return nil
}

// checkArraySize verifies pos addresses an allocated element.
func (v *Variable) checkArraySize(phase errors.Phase, pos uint32) error {
	if pos >= v.maxArraySize {
		return errors.ArraySizeExceeded(phase, v.maxArraySize, pos)
	}
	return nil
}

// slot returns the element's window into the flat wire buffer.
func (v *Variable) slot(pos uint32) []byte {
	off := pos * v.sizeInBytes
	return v.buf.data[off : off+v.sizeInBytes]
}
