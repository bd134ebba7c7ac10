package variable

import (
	"encoding/binary"
	"math"

	"github.com/gcraig/odpi/errors"
	"github.com/gcraig/odpi/oratypes"
	"github.com/gcraig/odpi/variable/internal/wire"
)

// getValue refreshes the host view of the element at pos from the wire
// buffers.
func (v *Variable) getValue(pos uint32) error {
	data := &v.buf.externalData[pos]

	// objects carry null state in their own indicator, delivered alongside
	// the instance during fetch
	if v.typ.ID == oratypes.Object {
		ind := v.buf.objectIndicator[pos]
		data.IsNull = ind == nil || *ind == IndNull
		if data.IsNull {
			return nil
		}
		if data.obj == nil && v.buf.wireHandles[pos] != nil {
			obj, err := v.objectType.Wrap(v.buf.wireHandles[pos], ind)
			if err != nil {
				return errors.Wrap(errors.PhaseRead, errors.KindAllocation,
					err, "wrap fetched object")
			}
			v.buf.references[pos].obj = obj
			data.obj = obj
		}
		return nil
	}

	data.IsNull = v.buf.indicator[pos] == IndNull
	if data.IsNull {
		return nil
	}

	// surface truncation and conversion failures reported per element
	if v.buf.returnCode != nil && v.buf.returnCode[pos] != 0 {
		return errors.ColumnFetch(pos, v.buf.returnCode[pos])
	}

	switch v.nativeType {
	case oratypes.NativeInt64:
		if v.typ.ID == oratypes.Number {
			n, err := wire.UnpackInt64(v.slot(pos))
			if err != nil {
				return err
			}
			data.i64 = n
		} else {
			data.i64 = int64(binary.LittleEndian.Uint64(v.slot(pos)))
		}

	case oratypes.NativeUint64:
		if v.typ.ID == oratypes.Number {
			n, err := wire.UnpackUint64(v.slot(pos))
			if err != nil {
				return err
			}
			data.u64 = n
		} else {
			data.u64 = binary.LittleEndian.Uint64(v.slot(pos))
		}

	case oratypes.NativeFloat32:
		data.f32 = math.Float32frombits(binary.LittleEndian.Uint32(v.slot(pos)))

	case oratypes.NativeFloat64:
		switch v.typ.ID {
		case oratypes.Number:
			f, err := wire.UnpackFloat64(v.slot(pos))
			if err != nil {
				return err
			}
			data.f64 = f
		case oratypes.Timestamp, oratypes.TimestampTZ, oratypes.TimestampLTZ:
			t, err := wire.DecodeTimestamp(v.slot(pos),
				v.typ.ID != oratypes.Timestamp)
			if err != nil {
				return err
			}
			data.f64 = float64(t.UnixNano()) / float64(1e9)
		default:
			data.f64 = math.Float64frombits(binary.LittleEndian.Uint64(v.slot(pos)))
		}

	case oratypes.NativeBytes:
		return v.getValueBytes(pos, data)

	case oratypes.NativeTimestamp:
		var err error
		if v.typ.ID == oratypes.Date {
			data.t, err = wire.DecodeDate(v.slot(pos))
		} else {
			data.t, err = wire.DecodeTimestamp(v.slot(pos),
				v.typ.ID != oratypes.Timestamp)
		}
		if err != nil {
			return err
		}

	case oratypes.NativeIntervalDS:
		d, err := wire.DecodeIntervalDS(v.slot(pos))
		if err != nil {
			return err
		}
		data.dur = d

	case oratypes.NativeIntervalYM:
		years, months, err := wire.DecodeIntervalYM(v.slot(pos))
		if err != nil {
			return err
		}
		data.ym = IntervalYM{Years: years, Months: months}

	case oratypes.NativeBoolean:
		data.b = binary.LittleEndian.Uint32(v.slot(pos)) != 0

	case oratypes.NativeLob:
		data.lob = v.buf.references[pos].lob

	case oratypes.NativeStmt:
		data.stmt = v.buf.references[pos].stmt

	case oratypes.NativeRowid:
		data.rowid = v.buf.references[pos].rowid

	default:
		return errors.UnhandledConversion(errors.PhaseRead,
			v.typ.ID.String(), v.nativeType.String())
	}

	return nil
}

// getValueBytes resolves the payload view for a bytes element: numbers go
// through the text scratch area, LOBs are read through into chunked
// storage, dynamic elements are consolidated, everything else already
// aliases the flat buffer.
func (v *Variable) getValueBytes(pos uint32, data *Data) error {
	if v.typ.ID == oratypes.Number {
		text, err := wire.UnpackText(v.slot(pos))
		if err != nil {
			return err
		}
		off := pos * v.buf.tempBufferWidth
		scratch := v.buf.tempBuffer[off : off+v.buf.tempBufferWidth]
		n := copy(scratch, text)
		data.bytes = scratch[:n]
		return nil
	}

	switch v.typ.ID {
	case oratypes.CLOB, oratypes.NCLOB, oratypes.BLOB, oratypes.BFile:
		if v.buf.references != nil {
			return v.readFromLob(pos, data)
		}
	}

	if v.buf.dynamicBytes != nil {
		data.bytes = v.buf.dynamicBytes[pos].consolidate()
		return nil
	}

	off := pos * v.sizeInBytes
	data.bytes = v.buf.data[off : off+v.buf.actualLength[pos]]
	return nil
}

// readFromLob copies the element's full LOB content into chunked storage
// and points the payload at it. Content is re-read on every access so the
// view never goes stale against the locator.
func (v *Variable) readFromLob(pos uint32, data *Data) error {
	lob := v.buf.references[pos].lob
	length, err := lob.Length()
	if err != nil {
		return errors.Wrap(errors.PhaseRead, errors.KindColumnFetch, err,
			"read lob length")
	}

	// character LOB lengths are in characters; size the buffer for the
	// widest possible encoding
	sizeInBytes := length
	if v.typ.IsCharacterData {
		enc := v.conn.Encoding()
		if v.typ.CharsetForm == oratypes.CharsetFormNChar {
			sizeInBytes *= uint64(enc.NMaxBytesPerChar)
		} else {
			sizeInBytes *= uint64(enc.MaxBytesPerChar)
		}
	}
	if sizeInBytes > math.MaxInt32 {
		return errors.NotSupported(errors.PhaseRead,
			"lob exceeding maximum buffer size")
	}

	if v.buf.dynamicBytes == nil {
		v.buf.dynamicBytes = make([]dynamicBytes, v.maxArraySize)
	}
	db := &v.buf.dynamicBytes[pos]
	db.ensureCapacity(uint32(sizeInBytes))
	if sizeInBytes == 0 {
		data.bytes = nil
		return nil
	}

	chunk := db.nextChunk()
	n, err := lob.ReadAt(1, length, chunk.buf[:sizeInBytes])
	if err != nil {
		db.numChunks = 0
		return errors.Wrap(errors.PhaseRead, errors.KindColumnFetch, err,
			"read lob content")
	}
	chunk.length = uint32(n)
	data.bytes = chunk.buf[:n]
	return nil
}
