package variable

import (
	"github.com/gcraig/odpi/errors"
	"github.com/gcraig/odpi/oratypes"
)

// RoundKind identifies which side of an execution round the call interface
// is driving through the variable's buffers.
type RoundKind uint8

const (
	// RoundInBind supplies element buffers for values sent with the
	// statement.
	RoundInBind RoundKind = iota

	// RoundOutBind receives values produced by the statement, growing the
	// variable when more rows come back than were allocated for.
	RoundOutBind

	// RoundDefine receives fetched column values into preallocated
	// buffers.
	RoundDefine

	// RoundDynamicDefine receives fetched column values piecewise into
	// chunked storage.
	RoundDynamicDefine
)

var roundKindNames = map[RoundKind]string{
	RoundInBind:        "in bind",
	RoundOutBind:       "out bind",
	RoundDefine:        "define",
	RoundDynamicDefine: "dynamic define",
}

func (k RoundKind) String() string {
	if name, ok := roundKindNames[k]; ok {
		return name
	}
	return "unknown"
}

// BufferRef is the per-element view handed to the call interface during a
// round: direct pointers into the variable's wire buffers. The interface
// writes fetched content through them; the variable sees the result with
// no further copying.
type BufferRef struct {
	Buf        []byte
	Length     *uint32
	Indicator  *Indicator
	ReturnCode *uint16

	// Handle addresses the element's slot in the wire handle array for
	// reference types. ObjectIndicator addresses the object indicator
	// slot; the interface points it at the fetched instance's indicator.
	Handle          *any
	ObjectIndicator **Indicator
}

// Round is one execution round over the variable's buffers. Begin with
// BeginRound, request element buffers in order with SupplyBuffer, then
// End.
type Round struct {
	v            *Variable
	kind         RoundKind
	rowsReturned func() uint32
	rowsChecked  bool
	done         bool
}

// BeginRound starts an execution round. Fetch rounds first refresh
// dependent references so no stale handle from a prior round is written
// through. Out bind rounds need a row count source so the variable can
// grow to fit statement output.
func (v *Variable) BeginRound(kind RoundKind, rowsReturned func() uint32) (*Round, error) {
	switch kind {
	case RoundOutBind:
		if rowsReturned == nil {
			return nil, errors.NotSupported(errors.PhaseBind,
				"out bind round without a row count source")
		}
	case RoundDynamicDefine:
		if !v.isDynamic {
			return nil, errors.NotSupported(errors.PhaseBind,
				"dynamic define on a statically sized variable")
		}
	}

	if kind == RoundDefine || kind == RoundDynamicDefine || kind == RoundOutBind {
		if v.requiresPreFetch || v.isDynamic {
			if err := v.extendedPreFetch(); err != nil {
				return nil, err
			}
		}
	}

	return &Round{v: v, kind: kind, rowsReturned: rowsReturned}, nil
}

// SupplyBuffer returns the buffer view for one element of the round.
func (r *Round) SupplyBuffer(index uint32) (BufferRef, error) {
	if r.done {
		return BufferRef{}, errors.NotSupported(errors.PhaseBind,
			"buffer request on a finished round")
	}
	v := r.v

	// statement output may exceed the allocated capacity; rebuild the
	// buffers at the reported row count before handing out the first one
	if r.kind == RoundOutBind && !r.rowsChecked {
		r.rowsChecked = true
		n := r.rowsReturned()
		if n > v.maxArraySize {
			v.finalizeBuffers()
			v.maxArraySize = n
			if err := v.initBuffers(); err != nil {
				return BufferRef{}, err
			}
		}
		v.actualArraySize = n
	}

	if index >= v.maxArraySize {
		return BufferRef{}, errors.ArraySizeExceeded(errors.PhaseBind,
			v.maxArraySize, index)
	}

	if r.kind == RoundDynamicDefine {
		chunk := v.buf.dynamicBytes[index].nextChunk()
		return BufferRef{
			Buf:       chunk.buf,
			Length:    &chunk.length,
			Indicator: &v.buf.indicator[index],
		}, nil
	}

	// dynamic elements ship their single consolidated chunk outbound;
	// an element never written supplies nothing
	if r.kind == RoundInBind && v.isDynamic {
		ref := BufferRef{Indicator: &v.buf.indicator[index]}
		if db := &v.buf.dynamicBytes[index]; db.numChunks > 0 {
			chunk := &db.chunks[0]
			ref.Buf = chunk.buf[:chunk.length]
			ref.Length = &chunk.length
		}
		return ref, nil
	}

	ref := BufferRef{Indicator: &v.buf.indicator[index]}
	if v.buf.data != nil && !v.isDynamic {
		ref.Buf = v.slot(index)
	}
	if v.buf.actualLength != nil {
		ref.Length = &v.buf.actualLength[index]
	}
	if v.buf.returnCode != nil {
		ref.ReturnCode = &v.buf.returnCode[index]
	}
	if v.buf.wireHandles != nil {
		ref.Handle = &v.buf.wireHandles[index]
	}
	if v.typ.ID == oratypes.Object {
		ref.ObjectIndicator = &v.buf.objectIndicator[index]
	}
	return ref, nil
}

// End closes the round. Further buffer requests fail.
func (r *Round) End() {
	r.done = true
}
