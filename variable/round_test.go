package variable

import (
	"bytes"
	stderrors "errors"
	"testing"

	"github.com/gcraig/odpi/errors"
	"github.com/gcraig/odpi/oratypes"
	"github.com/gcraig/odpi/variable/internal/wire"
)

func TestRound_DefineScalarFetch(t *testing.T) {
	conn := newFakeConn()
	v, _ := mustNew(t, conn, oratypes.Number, oratypes.NativeFloat64, 3, 0, true)
	defer v.Release()

	r, err := v.BeginRound(RoundDefine, nil)
	if err != nil {
		t.Fatalf("BeginRound: %v", err)
	}

	// the call interface writes a fetched row directly through the refs
	ref, err := r.SupplyBuffer(0)
	if err != nil {
		t.Fatalf("SupplyBuffer: %v", err)
	}
	if err := wire.PackFloat64(3.25, ref.Buf); err != nil {
		t.Fatalf("PackFloat64: %v", err)
	}
	*ref.Indicator = IndNotNull

	ref, err = r.SupplyBuffer(1)
	if err != nil {
		t.Fatalf("SupplyBuffer: %v", err)
	}
	*ref.Indicator = IndNull
	r.End()

	got, err := v.ReadValue(0)
	if err != nil {
		t.Fatalf("ReadValue(0): %v", err)
	}
	if got.IsNull || got.Float64() != 3.25 {
		t.Fatalf("row 0: null=%v value=%v, want 3.25", got.IsNull, got.Float64())
	}
	got, err = v.ReadValue(1)
	if err != nil {
		t.Fatalf("ReadValue(1): %v", err)
	}
	if !got.IsNull {
		t.Fatal("row 1 should be null")
	}
}

func TestRound_DynamicDefineMultiPieceFetch(t *testing.T) {
	conn := newFakeConn()
	v, _ := mustNew(t, conn, oratypes.LongVarchar, oratypes.NativeNone, 2, 0, true)
	defer v.Release()

	r, err := v.BeginRound(RoundDynamicDefine, nil)
	if err != nil {
		t.Fatalf("BeginRound: %v", err)
	}

	pieces := [][]byte{
		bytes.Repeat([]byte{'x'}, 4000),
		bytes.Repeat([]byte{'y'}, 4000),
		bytes.Repeat([]byte{'z'}, 1000),
	}
	for _, p := range pieces {
		ref, err := r.SupplyBuffer(0)
		if err != nil {
			t.Fatalf("SupplyBuffer: %v", err)
		}
		*ref.Length = uint32(copy(ref.Buf, p))
		*ref.Indicator = IndNotNull
	}
	r.End()

	got, err := v.ReadValue(0)
	if err != nil {
		t.Fatalf("ReadValue: %v", err)
	}
	want := bytes.Join(pieces, nil)
	if !bytes.Equal(got.Bytes(), want) {
		t.Fatalf("fetched %d bytes, want %d", len(got.Bytes()), len(want))
	}

	// a following round starts from empty storage
	r, err = v.BeginRound(RoundDynamicDefine, nil)
	if err != nil {
		t.Fatalf("BeginRound: %v", err)
	}
	ref, err := r.SupplyBuffer(0)
	if err != nil {
		t.Fatalf("SupplyBuffer: %v", err)
	}
	*ref.Length = uint32(copy(ref.Buf, "short"))
	*ref.Indicator = IndNotNull
	r.End()

	got, err = v.ReadValue(0)
	if err != nil {
		t.Fatalf("ReadValue: %v", err)
	}
	if string(got.Bytes()) != "short" {
		t.Fatalf("second fetch = %q, want %q", got.Bytes(), "short")
	}
}

func TestRound_DynamicDefineRequiresDynamicVariable(t *testing.T) {
	conn := newFakeConn()
	v, _ := mustNew(t, conn, oratypes.Varchar, oratypes.NativeNone, 2, 16, true)
	defer v.Release()

	_, err := v.BeginRound(RoundDynamicDefine, nil)
	if !stderrors.Is(err, errors.NotSupported(errors.PhaseBind, "")) {
		t.Fatalf("dynamic define on static variable: got %v", err)
	}
}

func TestRound_InBindSuppliesDynamicContent(t *testing.T) {
	conn := newFakeConn()
	v, _ := mustNew(t, conn, oratypes.LongVarchar, oratypes.NativeNone, 2, 0, true)
	defer v.Release()

	payload := []byte("outbound payload")
	if err := v.SetFromBytes(0, payload); err != nil {
		t.Fatalf("SetFromBytes: %v", err)
	}

	r, err := v.BeginRound(RoundInBind, nil)
	if err != nil {
		t.Fatalf("BeginRound: %v", err)
	}
	ref, err := r.SupplyBuffer(0)
	if err != nil {
		t.Fatalf("SupplyBuffer(0): %v", err)
	}
	if !bytes.Equal(ref.Buf, payload) {
		t.Fatalf("supplied %q, want %q", ref.Buf, payload)
	}
	if ref.Length == nil || *ref.Length != uint32(len(payload)) {
		t.Fatalf("supplied length %v, want %d", ref.Length, len(payload))
	}
	if *ref.Indicator != IndNotNull {
		t.Fatal("written element should not be null")
	}

	// an element never written has no chunk to hand out
	ref, err = r.SupplyBuffer(1)
	if err != nil {
		t.Fatalf("SupplyBuffer(1): %v", err)
	}
	if len(ref.Buf) != 0 {
		t.Fatalf("unwritten element supplied %d bytes, want none", len(ref.Buf))
	}
	if *ref.Indicator != IndNull {
		t.Fatal("unwritten element should be null")
	}
	r.End()
}

func TestRound_OutBindGrowth(t *testing.T) {
	conn := newFakeConn()
	v, _, err := New(conn, oratypes.Varchar, oratypes.NativeNone, 2, 16, true,
		true, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer v.Release()

	r, err := v.BeginRound(RoundOutBind, func() uint32 { return 5 })
	if err != nil {
		t.Fatalf("BeginRound: %v", err)
	}

	rows := []string{"one", "two", "three", "four", "five"}
	for i, row := range rows {
		ref, err := r.SupplyBuffer(uint32(i))
		if err != nil {
			t.Fatalf("SupplyBuffer(%d): %v", i, err)
		}
		*ref.Length = uint32(copy(ref.Buf, row))
		*ref.Indicator = IndNotNull
	}
	r.End()

	if v.MaxArraySize() != 5 {
		t.Fatalf("MaxArraySize = %d, want 5", v.MaxArraySize())
	}
	if len(v.Data()) != 5 {
		t.Fatalf("len(Data) = %d, want 5", len(v.Data()))
	}
	if n := v.NumElementsInArray(); n != 5 {
		t.Fatalf("element count = %d, want 5", n)
	}
	for i, row := range rows {
		got, err := v.ReadValue(uint32(i))
		if err != nil {
			t.Fatalf("ReadValue(%d): %v", i, err)
		}
		if string(got.Bytes()) != row {
			t.Fatalf("row %d = %q, want %q", i, got.Bytes(), row)
		}
	}
}

func TestRound_OutBindWithinCapacity(t *testing.T) {
	conn := newFakeConn()
	v, data, err := New(conn, oratypes.Varchar, oratypes.NativeNone, 4, 16, true,
		true, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer v.Release()

	r, err := v.BeginRound(RoundOutBind, func() uint32 { return 1 })
	if err != nil {
		t.Fatalf("BeginRound: %v", err)
	}
	ref, err := r.SupplyBuffer(0)
	if err != nil {
		t.Fatalf("SupplyBuffer: %v", err)
	}
	*ref.Length = uint32(copy(ref.Buf, "only"))
	*ref.Indicator = IndNotNull
	r.End()

	// no reallocation: the host view handed out at creation stays live
	got, err := v.ReadValue(0)
	if err != nil {
		t.Fatalf("ReadValue: %v", err)
	}
	if string(got.Bytes()) != "only" {
		t.Fatalf("ReadValue = %q, want %q", got.Bytes(), "only")
	}
	if string(data[0].Bytes()) != "only" {
		t.Fatalf("original data view = %q, want %q", data[0].Bytes(), "only")
	}
	if n := v.NumElementsInArray(); n != 1 {
		t.Fatalf("element count = %d, want 1", n)
	}
}

func TestRound_OutBindRequiresRowCountSource(t *testing.T) {
	conn := newFakeConn()
	v, _ := mustNew(t, conn, oratypes.Varchar, oratypes.NativeNone, 2, 16, true)
	defer v.Release()

	if _, err := v.BeginRound(RoundOutBind, nil); err == nil {
		t.Fatal("out bind round without row count source should fail")
	}
}

func TestRound_DefineRefreshesReferences(t *testing.T) {
	conn := newFakeConn()
	v, _ := mustNew(t, conn, oratypes.CLOB, oratypes.NativeNone, 1, 0, true)
	defer v.Release()

	old := v.buf.references[0].lob.(*fakeLob)
	r, err := v.BeginRound(RoundDefine, nil)
	if err != nil {
		t.Fatalf("BeginRound: %v", err)
	}
	r.End()

	if old.refs != 0 {
		t.Fatalf("stale lob refs = %d, want 0", old.refs)
	}
	fresh := v.buf.references[0].lob
	if fresh == nil || fresh == Lob(old) {
		t.Fatal("define round did not install a fresh lob")
	}
}

func TestRound_TruncationReportedOnRead(t *testing.T) {
	conn := newFakeConn()
	v, _ := mustNew(t, conn, oratypes.Varchar, oratypes.NativeNone, 2, 16, true)
	defer v.Release()

	r, err := v.BeginRound(RoundDefine, nil)
	if err != nil {
		t.Fatalf("BeginRound: %v", err)
	}
	ref, err := r.SupplyBuffer(0)
	if err != nil {
		t.Fatalf("SupplyBuffer: %v", err)
	}
	*ref.Length = uint32(copy(ref.Buf, "truncated value!"))
	*ref.Indicator = IndNotNull
	*ref.ReturnCode = 1406
	r.End()

	_, err = v.ReadValue(0)
	if !stderrors.Is(err, errors.ColumnFetch(0, 0)) {
		t.Fatalf("truncated read: got %v", err)
	}
	var fetchErr *errors.Error
	if stderrors.As(err, &fetchErr) && fetchErr.Code != 1406 {
		t.Errorf("reported code = %d, want 1406", fetchErr.Code)
	}
}

func TestRound_NullElementIgnoresReturnCode(t *testing.T) {
	conn := newFakeConn()
	v, _ := mustNew(t, conn, oratypes.Varchar, oratypes.NativeNone, 2, 16, true)
	defer v.Release()

	// fetching a null routinely stamps the element with code 1405; the
	// null state wins
	r, err := v.BeginRound(RoundDefine, nil)
	if err != nil {
		t.Fatalf("BeginRound: %v", err)
	}
	ref, err := r.SupplyBuffer(0)
	if err != nil {
		t.Fatalf("SupplyBuffer: %v", err)
	}
	*ref.Indicator = IndNull
	*ref.ReturnCode = 1405
	r.End()

	got, err := v.ReadValue(0)
	if err != nil {
		t.Fatalf("ReadValue: %v", err)
	}
	if !got.IsNull {
		t.Fatal("element should be null")
	}
}

func TestRound_FinishedRoundRejectsBufferRequests(t *testing.T) {
	conn := newFakeConn()
	v, _ := mustNew(t, conn, oratypes.Varchar, oratypes.NativeNone, 2, 16, true)
	defer v.Release()

	r, err := v.BeginRound(RoundInBind, nil)
	if err != nil {
		t.Fatalf("BeginRound: %v", err)
	}
	if _, err := r.SupplyBuffer(0); err != nil {
		t.Fatalf("SupplyBuffer: %v", err)
	}
	r.End()
	if _, err := r.SupplyBuffer(1); err == nil {
		t.Fatal("buffer request after End should fail")
	}
}
