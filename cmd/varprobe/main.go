package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/gcraig/odpi/memdriver"
	"github.com/gcraig/odpi/oratypes"
	"github.com/gcraig/odpi/variable"
)

var typesByName = map[string]oratypes.TypeID{
	"varchar":       oratypes.Varchar,
	"nvarchar":      oratypes.NVarchar,
	"char":          oratypes.Char,
	"nchar":         oratypes.NChar,
	"raw":           oratypes.Raw,
	"number":        oratypes.Number,
	"native_int":    oratypes.NativeInt,
	"native_uint":   oratypes.NativeUint,
	"native_float":  oratypes.NativeFloat,
	"native_double": oratypes.NativeDouble,
	"date":          oratypes.Date,
	"timestamp":     oratypes.Timestamp,
	"timestamp_tz":  oratypes.TimestampTZ,
	"interval_ds":   oratypes.IntervalDS,
	"interval_ym":   oratypes.IntervalYM,
	"boolean":       oratypes.Boolean,
	"clob":          oratypes.CLOB,
	"blob":          oratypes.BLOB,
	"long_varchar":  oratypes.LongVarchar,
	"long_raw":      oratypes.LongRaw,
}

var nativesByName = map[string]oratypes.NativeType{
	"int64":     oratypes.NativeInt64,
	"uint64":    oratypes.NativeUint64,
	"float":     oratypes.NativeFloat32,
	"double":    oratypes.NativeFloat64,
	"bytes":     oratypes.NativeBytes,
	"timestamp": oratypes.NativeTimestamp,
	"duration":  oratypes.NativeIntervalDS,
	"boolean":   oratypes.NativeBoolean,
}

func main() {
	var (
		typeName    = flag.String("type", "varchar", "Database type of the variable")
		nativeName  = flag.String("native", "", "Native representation (defaults to the type's)")
		elems       = flag.Uint("elems", 4, "Number of array elements")
		size        = flag.Uint("size", 64, "Per-element size for variable length types")
		sizeInChars = flag.Bool("chars", false, "Interpret -size as characters, not bytes")
		values      = flag.String("write", "", "Comma-separated values to write ('null' for null)")
		list        = flag.Bool("list", false, "List supported types and exit")
		verbose     = flag.Bool("v", false, "Debug logging")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
	)
	flag.Parse()

	if *list {
		listTypes()
		return
	}

	if *verbose {
		log, err := zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		variable.SetLogger(log)
	}

	if *interactive {
		if err := runInteractive(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(*typeName, *nativeName, uint32(*elems), uint32(*size),
		!*sizeInChars, *values); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func listTypes() {
	fmt.Println("Supported types:")
	names := make([]string, 0, len(typesByName))
	for name := range typesByName {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		typ, _ := oratypes.Lookup(typesByName[name])
		fmt.Printf("  %-14s default native %s\n", name, typ.DefaultNative)
	}
}

func run(typeName, nativeName string, elems, size uint32, sizeIsBytes bool,
	valuesStr string) error {

	typeID, ok := typesByName[typeName]
	if !ok {
		return fmt.Errorf("unknown type %q (use -list)", typeName)
	}
	nativeType := oratypes.NativeNone
	if nativeName != "" {
		if nativeType, ok = nativesByName[nativeName]; !ok {
			return fmt.Errorf("unknown native representation %q", nativeName)
		}
	}

	conn := memdriver.NewConn()
	v, _, err := variable.New(conn, typeID, nativeType, elems, size,
		sizeIsBytes, false, nil)
	if err != nil {
		return err
	}
	defer v.Release()

	fmt.Printf("Variable: %s as %s\n", v.OracleType(), v.NativeType())
	fmt.Printf("Elements: %d\n", v.MaxArraySize())
	fmt.Printf("Element size: %d bytes\n", v.SizeInBytes())
	fmt.Printf("Dynamic storage: %v\n", v.IsDynamic())

	if valuesStr != "" {
		for i, raw := range strings.Split(valuesStr, ",") {
			if uint32(i) >= v.MaxArraySize() {
				return fmt.Errorf("more values than elements (%d)", v.MaxArraySize())
			}
			if err := writeOne(v, uint32(i), raw); err != nil {
				return fmt.Errorf("write element %d: %w", i, err)
			}
		}
	}

	fmt.Println("\nElements:")
	for pos := uint32(0); pos < v.MaxArraySize(); pos++ {
		d, err := v.ReadValue(pos)
		if err != nil {
			return fmt.Errorf("read element %d: %w", pos, err)
		}
		fmt.Printf("  [%d] %s\n", pos, formatValue(v.NativeType(), d))
	}
	return nil
}

func writeOne(v *variable.Variable, pos uint32, raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "null" {
		var d variable.Data
		d.SetNull()
		return v.WriteValue(pos, &d)
	}

	var d variable.Data
	switch v.NativeType() {
	case oratypes.NativeBytes:
		return v.SetFromBytes(pos, []byte(raw))
	case oratypes.NativeInt64:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return err
		}
		d.SetInt64(n)
	case oratypes.NativeUint64:
		n, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return err
		}
		d.SetUint64(n)
	case oratypes.NativeFloat32:
		f, err := strconv.ParseFloat(raw, 32)
		if err != nil {
			return err
		}
		d.SetFloat32(float32(f))
	case oratypes.NativeFloat64:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return err
		}
		d.SetFloat64(f)
	case oratypes.NativeTimestamp:
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return err
		}
		d.SetTime(t)
	case oratypes.NativeIntervalDS:
		dur, err := time.ParseDuration(raw)
		if err != nil {
			return err
		}
		d.SetDuration(dur)
	case oratypes.NativeBoolean:
		d.SetBool(raw == "true" || raw == "1")
	default:
		return fmt.Errorf("cannot write %s values from the command line",
			v.NativeType())
	}
	return v.WriteValue(pos, &d)
}

func formatValue(native oratypes.NativeType, d *variable.Data) string {
	if d.IsNull {
		return "<null>"
	}
	switch native {
	case oratypes.NativeBytes:
		return fmt.Sprintf("%q (%s)", d.Bytes(), d.Encoding())
	case oratypes.NativeInt64:
		return strconv.FormatInt(d.Int64(), 10)
	case oratypes.NativeUint64:
		return strconv.FormatUint(d.Uint64(), 10)
	case oratypes.NativeFloat32:
		return strconv.FormatFloat(float64(d.Float32()), 'g', -1, 32)
	case oratypes.NativeFloat64:
		return strconv.FormatFloat(d.Float64(), 'g', -1, 64)
	case oratypes.NativeTimestamp:
		return d.Time().Format(time.RFC3339Nano)
	case oratypes.NativeIntervalDS:
		return d.Duration().String()
	case oratypes.NativeIntervalYM:
		ym := d.IntervalYM()
		return fmt.Sprintf("%d-%d", ym.Years, ym.Months)
	case oratypes.NativeBoolean:
		return strconv.FormatBool(d.Bool())
	case oratypes.NativeLob:
		return fmt.Sprintf("lob %v", d.Lob().Locator())
	default:
		return fmt.Sprintf("<%s>", native)
	}
}
