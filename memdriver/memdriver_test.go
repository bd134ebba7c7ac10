package memdriver

import (
	"bytes"
	"testing"

	"github.com/gcraig/odpi/oratypes"
	"github.com/gcraig/odpi/variable"
)

func TestLob_CharacterSemantics(t *testing.T) {
	conn := NewConn()
	lob, err := conn.NewLob(oratypes.CLOB)
	if err != nil {
		t.Fatalf("NewLob: %v", err)
	}
	content := "héllo wörld" // 11 chars, 13 bytes
	if err := lob.SetFromBytes([]byte(content)); err != nil {
		t.Fatalf("SetFromBytes: %v", err)
	}

	n, err := lob.Length()
	if err != nil {
		t.Fatalf("Length: %v", err)
	}
	if n != 11 {
		t.Fatalf("Length = %d chars, want 11", n)
	}

	// offset and length are in characters
	buf := make([]byte, 16)
	read, err := lob.ReadAt(2, 4, buf)
	if err != nil {
		t.Fatalf("ReadAt: %v", err)
	}
	if string(buf[:read]) != "éllo" {
		t.Fatalf("ReadAt = %q, want %q", buf[:read], "éllo")
	}
}

func TestLob_BinarySemantics(t *testing.T) {
	conn := NewConn()
	lob, err := conn.NewLob(oratypes.BLOB)
	if err != nil {
		t.Fatalf("NewLob: %v", err)
	}
	payload := []byte{0x00, 0x01, 0x02, 0x03, 0x04}
	if err := lob.SetFromBytes(payload); err != nil {
		t.Fatalf("SetFromBytes: %v", err)
	}

	n, err := lob.Length()
	if err != nil {
		t.Fatalf("Length: %v", err)
	}
	if n != 5 {
		t.Fatalf("Length = %d, want 5", n)
	}

	buf := make([]byte, 3)
	read, err := lob.ReadAt(2, 3, buf)
	if err != nil {
		t.Fatalf("ReadAt: %v", err)
	}
	if read != 3 || !bytes.Equal(buf, []byte{0x01, 0x02, 0x03}) {
		t.Fatalf("ReadAt = %v (%d), want [1 2 3]", buf, read)
	}

	if _, err := lob.ReadAt(0, 1, buf); err == nil {
		t.Error("zero offset should be rejected")
	}
}

func TestConn_RejectsNonLobKinds(t *testing.T) {
	conn := NewConn()
	if _, err := conn.NewLob(oratypes.Varchar); err == nil {
		t.Fatal("NewLob(varchar) should fail")
	}
}

func TestVariable_LifecycleAgainstConn(t *testing.T) {
	conn := NewConn()
	v, data, err := variable.New(conn, oratypes.Varchar, oratypes.NativeNone,
		4, 32, true, false, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if conn.RefCount() != 2 {
		t.Fatalf("conn refs with live variable = %d, want 2", conn.RefCount())
	}

	if err := v.SetFromBytes(1, []byte("through memdriver")); err != nil {
		t.Fatalf("SetFromBytes: %v", err)
	}
	got, err := v.ReadValue(1)
	if err != nil {
		t.Fatalf("ReadValue: %v", err)
	}
	if string(got.Bytes()) != "through memdriver" {
		t.Fatalf("Bytes = %q", got.Bytes())
	}
	if len(data) != 4 {
		t.Fatalf("len(data) = %d, want 4", len(data))
	}

	v.Release()
	if conn.RefCount() != 1 {
		t.Fatalf("conn refs after release = %d, want 1", conn.RefCount())
	}
}

func TestVariable_ClobReadThroughMultibyte(t *testing.T) {
	conn := NewConn()
	v, _, err := variable.New(conn, oratypes.CLOB, oratypes.NativeBytes,
		1, 0, true, false, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer v.Release()

	content := "über-großes Tröpfchen"
	if err := v.SetFromBytes(0, []byte(content)); err != nil {
		t.Fatalf("SetFromBytes: %v", err)
	}
	got, err := v.ReadValue(0)
	if err != nil {
		t.Fatalf("ReadValue: %v", err)
	}
	if string(got.Bytes()) != content {
		t.Fatalf("read back %q, want %q", got.Bytes(), content)
	}
}

func TestVariable_StmtPreFetchMintsHandles(t *testing.T) {
	conn := NewConn()
	v, _, err := variable.New(conn, oratypes.Stmt, oratypes.NativeNone,
		3, 0, true, false, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer v.Release()

	r, err := v.BeginRound(variable.RoundDefine, nil)
	if err != nil {
		t.Fatalf("BeginRound: %v", err)
	}
	seen := map[any]bool{}
	for pos := uint32(0); pos < 3; pos++ {
		ref, err := r.SupplyBuffer(pos)
		if err != nil {
			t.Fatalf("SupplyBuffer(%d): %v", pos, err)
		}
		*ref.Indicator = variable.IndNotNull
		if ref.Handle == nil || *ref.Handle == nil {
			t.Fatalf("no statement handle at position %d", pos)
		}
		seen[*ref.Handle] = true
	}
	r.End()
	if len(seen) != 3 {
		t.Fatalf("distinct handles = %d, want 3", len(seen))
	}
}

func TestObjectType_RoundTrip(t *testing.T) {
	conn := NewConn()
	objType := NewObjectType("HR.ADDRESS")
	v, _, err := variable.New(conn, oratypes.Object, oratypes.NativeNone,
		2, 0, true, false, objType)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	obj, err := objType.NewObject()
	if err != nil {
		t.Fatalf("NewObject: %v", err)
	}
	obj.(*Object).SetAttr("CITY", "Lisbon")
	if err := v.SetFromObject(0, obj); err != nil {
		t.Fatalf("SetFromObject: %v", err)
	}

	got, err := v.ReadValue(0)
	if err != nil {
		t.Fatalf("ReadValue: %v", err)
	}
	stored := got.Object().(*Object)
	if stored.Attr("CITY") != "Lisbon" {
		t.Fatalf("CITY = %v, want Lisbon", stored.Attr("CITY"))
	}

	if objType.RefCount() != 2 {
		t.Fatalf("type refs with live variable = %d, want 2", objType.RefCount())
	}
	v.Release()
	if objType.RefCount() != 1 {
		t.Fatalf("type refs after release = %d, want 1", objType.RefCount())
	}
}
