package variable

import (
	"encoding/binary"
	"math"
	"time"

	"github.com/gcraig/odpi/errors"
	"github.com/gcraig/odpi/oratypes"
	"github.com/gcraig/odpi/variable/internal/wire"
)

// setValue marshals the given host value into the element at pos.
func (v *Variable) setValue(pos uint32, data *Data) error {
	if data.IsNull {
		return v.setNull(pos)
	}

	switch v.nativeType {
	case oratypes.NativeInt64:
		if v.typ.ID == oratypes.Number {
			if err := wire.PackInt64(data.i64, v.slot(pos)); err != nil {
				return err
			}
		} else {
			binary.LittleEndian.PutUint64(v.slot(pos), uint64(data.i64))
		}

	case oratypes.NativeUint64:
		if v.typ.ID == oratypes.Number {
			if err := wire.PackUint64(data.u64, v.slot(pos)); err != nil {
				return err
			}
		} else {
			binary.LittleEndian.PutUint64(v.slot(pos), data.u64)
		}

	case oratypes.NativeFloat32:
		binary.LittleEndian.PutUint32(v.slot(pos), math.Float32bits(data.f32))

	case oratypes.NativeFloat64:
		switch v.typ.ID {
		case oratypes.Number:
			if err := wire.PackFloat64(data.f64, v.slot(pos)); err != nil {
				return err
			}
		case oratypes.Timestamp, oratypes.TimestampTZ, oratypes.TimestampLTZ:
			t := time.Unix(0, int64(math.Round(data.f64*1e9))).UTC()
			err := wire.EncodeTimestamp(t, v.slot(pos),
				v.typ.ID != oratypes.Timestamp)
			if err != nil {
				return err
			}
		default:
			binary.LittleEndian.PutUint64(v.slot(pos), math.Float64bits(data.f64))
		}

	case oratypes.NativeBytes:
		return v.setFromBytes(pos, data.bytes)

	case oratypes.NativeTimestamp:
		var err error
		if v.typ.ID == oratypes.Date {
			err = wire.EncodeDate(data.t, v.slot(pos))
		} else {
			err = wire.EncodeTimestamp(data.t, v.slot(pos),
				v.typ.ID != oratypes.Timestamp)
		}
		if err != nil {
			return err
		}

	case oratypes.NativeIntervalDS:
		if err := wire.EncodeIntervalDS(data.dur, v.slot(pos)); err != nil {
			return err
		}

	case oratypes.NativeIntervalYM:
		err := wire.EncodeIntervalYM(data.ym.Years, data.ym.Months, v.slot(pos))
		if err != nil {
			return err
		}

	case oratypes.NativeBoolean:
		var raw uint32
		if data.b {
			raw = 1
		}
		binary.LittleEndian.PutUint32(v.slot(pos), raw)

	case oratypes.NativeLob:
		return v.setFromLob(pos, data.lob)

	case oratypes.NativeObject:
		return v.setFromObject(pos, data.obj)

	case oratypes.NativeStmt:
		return v.setFromStmt(pos, data.stmt)

	case oratypes.NativeRowid:
		return v.setFromRowid(pos, data.rowid)

	default:
		return errors.UnhandledConversion(errors.PhaseWrite,
			v.typ.ID.String(), v.nativeType.String())
	}

	v.buf.indicator[pos] = IndNotNull
	v.buf.externalData[pos] = *data
	v.buf.externalData[pos].IsNull = false
	return nil
}

// setNull marks the element at pos null. Objects need a live instance on
// the wire even for a null write, so one is materialized and its embedded
// indicator cleared instead.
func (v *Variable) setNull(pos uint32) error {
	if v.typ.ID == oratypes.Object {
		if v.buf.references[pos].obj == nil {
			obj, err := v.objectType.NewObject()
			if err != nil {
				return errors.AllocationFailed(errors.PhaseWrite,
					"allocate null object instance", err)
			}
			v.buf.references[pos].obj = obj
			v.buf.wireHandles[pos] = obj.Instance()
			v.buf.objectIndicator[pos] = obj.IndicatorPtr()
		}
		*v.buf.objectIndicator[pos] = IndNull
	} else {
		v.buf.indicator[pos] = IndNull
	}
	v.buf.externalData[pos].IsNull = true
	return nil
}

// setFromBytes stores a byte payload into the element's backing storage:
// the number codec for numbers staged as text, the LOB itself for LOB
// variables, chunked storage for dynamic variables, and the flat buffer
// otherwise. The payload view in the host data is updated to alias the
// stored copy.
func (v *Variable) setFromBytes(pos uint32, value []byte) error {
	if uint64(len(value)) > math.MaxInt32 {
		return errors.BufferTooSmall(math.MaxInt32)
	}
	data := &v.buf.externalData[pos]

	switch {
	case v.buf.tempBuffer != nil:
		if uint32(len(value)) > v.buf.tempBufferWidth {
			return errors.BufferTooSmall(v.buf.tempBufferWidth)
		}
		if err := wire.PackText(string(value), v.slot(pos)); err != nil {
			return err
		}
		off := pos * v.buf.tempBufferWidth
		scratch := v.buf.tempBuffer[off : off+v.buf.tempBufferWidth]
		n := copy(scratch, value)
		data.bytes = scratch[:n]

	case v.buf.references != nil:
		lob := v.buf.references[pos].lob
		if lob == nil {
			return errors.InvalidHandle(errors.PhaseWrite, "lob")
		}
		if err := lob.SetFromBytes(value); err != nil {
			return errors.Wrap(errors.PhaseWrite, errors.KindAllocation, err,
				"write lob content")
		}
		data.lob = lob

	case v.buf.dynamicBytes != nil:
		db := &v.buf.dynamicBytes[pos]
		db.ensureCapacity(uint32(len(value)))
		chunk := db.nextChunk()
		chunk.length = uint32(copy(chunk.buf, value))
		data.bytes = chunk.buf[:chunk.length]

	default:
		if uint32(len(value)) > v.sizeInBytes {
			return errors.BufferTooSmall(v.sizeInBytes)
		}
		slot := v.slot(pos)
		n := copy(slot, value)
		v.buf.actualLength[pos] = uint32(n)
		if v.buf.returnCode != nil {
			v.buf.returnCode[pos] = 0
		}
		data.bytes = slot[:n]
	}

	v.buf.indicator[pos] = IndNotNull
	data.IsNull = false
	return nil
}

func (v *Variable) setFromLob(pos uint32, lob Lob) error {
	if lob == nil {
		return errors.InvalidHandle(errors.PhaseWrite, "lob")
	}
	if v.buf.references[pos].lob != lob {
		lob.AddRef()
		v.buf.references[pos].release()
		v.buf.references[pos].lob = lob
	}
	v.buf.wireHandles[pos] = lob.Locator()
	v.buf.externalData[pos].lob = lob
	v.buf.externalData[pos].IsNull = false
	v.buf.indicator[pos] = IndNotNull
	return nil
}

func (v *Variable) setFromObject(pos uint32, obj Object) error {
	if obj == nil {
		return errors.InvalidHandle(errors.PhaseWrite, "object")
	}
	if v.buf.references[pos].obj != obj {
		obj.AddRef()
		v.buf.references[pos].release()
		v.buf.references[pos].obj = obj
	}
	v.buf.wireHandles[pos] = obj.Instance()
	v.buf.objectIndicator[pos] = obj.IndicatorPtr()
	*v.buf.objectIndicator[pos] = IndNotNull
	v.buf.externalData[pos].obj = obj
	v.buf.externalData[pos].IsNull = false
	return nil
}

func (v *Variable) setFromStmt(pos uint32, stmt Stmt) error {
	if stmt == nil {
		return errors.InvalidHandle(errors.PhaseWrite, "statement")
	}
	if v.buf.references[pos].stmt != stmt {
		stmt.AddRef()
		v.buf.references[pos].release()
		v.buf.references[pos].stmt = stmt
	}
	v.buf.wireHandles[pos] = stmt.Handle()
	v.buf.externalData[pos].stmt = stmt
	v.buf.externalData[pos].IsNull = false
	v.buf.indicator[pos] = IndNotNull
	return nil
}

func (v *Variable) setFromRowid(pos uint32, rowid Rowid) error {
	if rowid == nil {
		return errors.InvalidHandle(errors.PhaseWrite, "rowid")
	}
	if v.buf.references[pos].rowid != rowid {
		rowid.AddRef()
		v.buf.references[pos].release()
		v.buf.references[pos].rowid = rowid
	}
	v.buf.wireHandles[pos] = rowid.Handle()
	v.buf.externalData[pos].rowid = rowid
	v.buf.externalData[pos].IsNull = false
	v.buf.indicator[pos] = IndNotNull
	return nil
}
