package variable

import (
	"time"
)

// IntervalYM is a year-to-month interval value.
type IntervalYM struct {
	Years  int32
	Months int32
}

// Data is the host-visible value of one array element: a tagged union keyed
// by the variable's native representation, plus the element null flag. For
// byte sequences the payload aliases the variable's backing storage (flat
// buffer, consolidated dynamic storage, or the numeric text scratch area)
// and stays valid until the next fetch or resize of the variable.
type Data struct {
	IsNull bool

	i64      int64
	u64      uint64
	f32      float32
	f64      float64
	bytes    []byte
	encoding string
	t        time.Time
	dur      time.Duration
	ym       IntervalYM
	b        bool
	lob      Lob
	obj      Object
	stmt     Stmt
	rowid    Rowid
}

// Setters mark the element not null; writing null goes through SetNull.

func (d *Data) SetNull() { d.IsNull = true }

func (d *Data) SetInt64(v int64) {
	d.IsNull = false
	d.i64 = v
}

func (d *Data) SetUint64(v uint64) {
	d.IsNull = false
	d.u64 = v
}

func (d *Data) SetFloat32(v float32) {
	d.IsNull = false
	d.f32 = v
}

func (d *Data) SetFloat64(v float64) {
	d.IsNull = false
	d.f64 = v
}

func (d *Data) SetBytes(v []byte) {
	d.IsNull = false
	d.bytes = v
}

func (d *Data) SetTime(v time.Time) {
	d.IsNull = false
	d.t = v
}

func (d *Data) SetDuration(v time.Duration) {
	d.IsNull = false
	d.dur = v
}

func (d *Data) SetIntervalYM(v IntervalYM) {
	d.IsNull = false
	d.ym = v
}

func (d *Data) SetBool(v bool) {
	d.IsNull = false
	d.b = v
}

func (d *Data) Int64() int64            { return d.i64 }
func (d *Data) Uint64() uint64          { return d.u64 }
func (d *Data) Float32() float32        { return d.f32 }
func (d *Data) Float64() float64        { return d.f64 }
func (d *Data) Bytes() []byte           { return d.bytes }
func (d *Data) Encoding() string        { return d.encoding }
func (d *Data) Time() time.Time         { return d.t }
func (d *Data) Duration() time.Duration { return d.dur }
func (d *Data) IntervalYM() IntervalYM  { return d.ym }
func (d *Data) Bool() bool              { return d.b }
func (d *Data) Lob() Lob                { return d.lob }
func (d *Data) Object() Object          { return d.obj }
func (d *Data) Stmt() Stmt              { return d.stmt }
func (d *Data) Rowid() Rowid            { return d.rowid }
