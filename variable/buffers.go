package variable

import (
	"math"

	"github.com/gcraig/odpi/errors"
	"github.com/gcraig/odpi/oratypes"
)

// referenceBuffer holds the dependent handle owned by one array position.
// Only the field matching the variable's native representation is ever set.
type referenceBuffer struct {
	lob   Lob
	obj   Object
	stmt  Stmt
	rowid Rowid
}

func (r *referenceBuffer) handle() Dependent {
	switch {
	case r.lob != nil:
		return r.lob
	case r.obj != nil:
		return r.obj
	case r.stmt != nil:
		return r.stmt
	case r.rowid != nil:
		return r.rowid
	}
	return nil
}

func (r *referenceBuffer) release() {
	if h := r.handle(); h != nil {
		h.Release()
	}
	*r = referenceBuffer{}
}

// buffers holds the parallel per-element arrays exchanged with the call
// interface, indexed by array position.
type buffers struct {
	data            []byte // flat wire buffer, maxArraySize * sizeInBytes
	indicator       []Indicator
	actualLength    []uint32
	returnCode      []uint16
	tempBuffer      []byte // number-as-text scratch, tempBufferWidth per element
	tempBufferWidth uint32
	externalData    []Data
	dynamicBytes    []dynamicBytes
	references      []referenceBuffer
	wireHandles     []any
	objectIndicator []*Indicator
}

// allocateBuffers builds the bulk arrays for the variable's declared
// capacity. It is idempotent for already-allocated sub-arrays so a resize
// only reallocates what changed.
func (v *Variable) allocateBuffers() error {
	enc := v.conn.Encoding()

	if v.isDynamic {
		if v.buf.dynamicBytes == nil {
			v.buf.dynamicBytes = make([]dynamicBytes, v.maxArraySize)
		}
	} else {
		dataLength := uint64(v.maxArraySize) * uint64(v.sizeInBytes)
		if dataLength > math.MaxInt32 {
			return errors.ArraySizeTooBig(v.maxArraySize)
		}
		if v.buf.data == nil && v.sizeInBytes > 0 {
			v.buf.data = make([]byte, dataLength)
		}
	}

	// all values start out null
	if v.buf.indicator == nil {
		v.buf.indicator = make([]Indicator, v.maxArraySize)
		for i := range v.buf.indicator {
			v.buf.indicator[i] = IndNull
		}
	}

	// actual lengths default to the full element size; dynamic variables
	// track lengths inside their chunks instead
	if !v.isDynamic && v.buf.actualLength == nil {
		v.buf.actualLength = make([]uint32, v.maxArraySize)
		for i := range v.buf.actualLength {
			v.buf.actualLength[i] = v.sizeInBytes
		}
	}

	// variable length columns report per-element fetch status
	if v.typ.DefaultNative == oratypes.NativeBytes && !v.isDynamic && v.buf.returnCode == nil {
		v.buf.returnCode = make([]uint16, v.maxArraySize)
	}

	// numbers staged as text round-trip through a fixed scratch area so the
	// packed buffer is never aliased by host-visible text
	if v.typ.ID == oratypes.Number && v.nativeType == oratypes.NativeBytes {
		width := uint32(numberAsTextChars)
		if enc.CharsetID == CharsetIDUTF16 {
			width *= 2
		}
		v.buf.tempBufferWidth = width
		if v.buf.tempBuffer == nil {
			v.buf.tempBuffer = make([]byte, width*v.maxArraySize)
		}
	}

	if v.buf.externalData == nil {
		v.buf.externalData = make([]Data, v.maxArraySize)
		for i := range v.buf.externalData {
			v.buf.externalData[i].IsNull = true
		}
	}

	// byte sequences get their encoding stamped and their payload pointed
	// at backing storage eagerly; dynamic variables resolve lazily on fetch
	if v.nativeType == oratypes.NativeBytes {
		for i := range v.buf.externalData {
			data := &v.buf.externalData[i]
			if v.typ.CharsetForm == oratypes.CharsetFormImplicit {
				data.encoding = enc.Encoding
			} else {
				data.encoding = enc.NEncoding
			}
			if v.buf.tempBuffer != nil {
				off := uint32(i) * v.buf.tempBufferWidth
				data.bytes = v.buf.tempBuffer[off : off : off+v.buf.tempBufferWidth]
			} else if v.buf.actualLength != nil && v.buf.dynamicBytes == nil {
				off := uint32(i) * v.sizeInBytes
				data.bytes = v.buf.data[off : off : off+v.sizeInBytes]
			}
		}
	}

	return nil
}

// extendedInitialize performs type specific setup after the bulk arrays
// exist.
func (v *Variable) extendedInitialize() error {
	if v.typ.RequiresPreFetch && !v.isDynamic && v.buf.references == nil {
		v.buf.references = make([]referenceBuffer, v.maxArraySize)
		v.buf.wireHandles = make([]any, v.maxArraySize)
	}

	switch v.typ.ID {
	case oratypes.CLOB, oratypes.NCLOB, oratypes.BLOB, oratypes.BFile,
		oratypes.Stmt, oratypes.Rowid:
		return v.extendedPreFetch()
	case oratypes.Object:
		if v.objectType == nil {
			return errors.NoObjectType()
		}
		if v.buf.objectIndicator == nil {
			v.buf.objectIndicator = make([]*Indicator, v.maxArraySize)
		}
		return v.extendedPreFetch()
	}
	return nil
}

// initBuffers builds everything a freshly allocated or resized variable
// needs.
func (v *Variable) initBuffers() error {
	if err := v.allocateBuffers(); err != nil {
		return err
	}
	return v.extendedInitialize()
}

// extendedPreFetch prepares dependent elements for the next execution
// round: stale references from a prior round are released and fresh
// instances installed so the call interface never writes through an old
// handle.
func (v *Variable) extendedPreFetch() error {
	if v.isDynamic {
		for i := range v.buf.dynamicBytes {
			v.buf.dynamicBytes[i].numChunks = 0
		}
		return nil
	}

	switch v.typ.ID {
	case oratypes.Stmt:
		for i := uint32(0); i < v.maxArraySize; i++ {
			data := &v.buf.externalData[i]
			v.buf.references[i].release()
			v.buf.wireHandles[i] = nil
			data.stmt = nil
			stmt, err := v.conn.NewStmt()
			if err != nil {
				return errors.AllocationFailed(errors.PhaseAllocate, "allocate statement", err)
			}
			v.buf.references[i].stmt = stmt
			v.buf.wireHandles[i] = stmt.Handle()
			data.stmt = stmt
		}

	case oratypes.CLOB, oratypes.NCLOB, oratypes.BLOB, oratypes.BFile:
		for i := uint32(0); i < v.maxArraySize; i++ {
			data := &v.buf.externalData[i]
			v.buf.references[i].release()
			v.buf.wireHandles[i] = nil
			data.lob = nil
			lob, err := v.conn.NewLob(v.typ.ID)
			if err != nil {
				return errors.AllocationFailed(errors.PhaseAllocate, "allocate lob", err)
			}
			v.buf.references[i].lob = lob
			v.buf.wireHandles[i] = lob.Locator()
			data.lob = lob
			if v.buf.dynamicBytes != nil {
				if err := lob.SetTemporary(); err != nil {
					return errors.AllocationFailed(errors.PhaseAllocate, "create temporary lob", err)
				}
			}
		}

	case oratypes.Rowid:
		for i := uint32(0); i < v.maxArraySize; i++ {
			data := &v.buf.externalData[i]
			v.buf.references[i].release()
			v.buf.wireHandles[i] = nil
			data.rowid = nil
			rowid, err := v.conn.NewRowid()
			if err != nil {
				return errors.AllocationFailed(errors.PhaseAllocate, "allocate rowid", err)
			}
			v.buf.references[i].rowid = rowid
			v.buf.wireHandles[i] = rowid.Handle()
			data.rowid = rowid
		}

	case oratypes.Object:
		for i := uint32(0); i < v.maxArraySize; i++ {
			data := &v.buf.externalData[i]
			v.buf.references[i].release()
			v.buf.wireHandles[i] = nil
			v.buf.objectIndicator[i] = nil
			data.obj = nil
		}
	}

	return nil
}

// finalizeBuffers releases every held sub-object reference, then the bulk
// buffers. Order matters: dependent references first, storage second.
func (v *Variable) finalizeBuffers() {
	if v.buf.references != nil {
		for i := range v.buf.references {
			v.buf.references[i].release()
		}
		v.buf.references = nil
		v.buf.wireHandles = nil
	}

	if v.buf.dynamicBytes != nil {
		for i := range v.buf.dynamicBytes {
			v.buf.dynamicBytes[i].free()
		}
		v.buf.dynamicBytes = nil
	}

	v.buf.indicator = nil
	v.buf.returnCode = nil
	v.buf.actualLength = nil
	v.buf.externalData = nil
	v.buf.data = nil
	v.buf.objectIndicator = nil
	v.buf.tempBuffer = nil
}
