package xlsx

import (
	"testing"
	"time"

	"xlc/document"
)

func TestEncodeValue(t *testing.T) {
	divErr, err := document.ErrorValue(document.ErrDiv0)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		in       document.Value
		wantRaw  string
		wantType CellType
		wantOK   bool
	}{
		{"absent", document.Value{}, "", CellTypeNumber, false},
		{"bool true", document.BoolValue(true), "1", CellTypeBoolean, true},
		{"bool false", document.BoolValue(false), "0", CellTypeBoolean, true},
		{"integer", document.IntValue(42), "42", CellTypeNumber, true},
		{"negative integer", document.IntValue(-5), "-5", CellTypeNumber, true},
		{"float", document.NumberValue(2.5), "2.5", CellTypeNumber, true},
		{"error value", divErr, "#DIV/0!", CellTypeError, true},
		{"text", document.TextValue("hello"), "hello", CellTypeSharedString, true},
		{"text spelling error code", document.TextValue("#N/A"), "#N/A", CellTypeError, true},
		{"text spelling true", document.TextValue("TRUE"), "1", CellTypeBoolean, true},
		{"text spelling false", document.TextValue("false"), "0", CellTypeBoolean, true},
		{"date", document.TimeValue(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)), "45292", CellTypeNumber, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, typ, ok := EncodeValue(tt.in)
			if raw != tt.wantRaw || typ != tt.wantType || ok != tt.wantOK {
				t.Errorf("EncodeValue(%v) = (%q, %q, %v), want (%q, %q, %v)",
					tt.in, raw, typ, ok, tt.wantRaw, tt.wantType, tt.wantOK)
			}
		})
	}
}

func TestDecodeValue(t *testing.T) {
	sst := NewSharedStrings()
	sst.Add("first")
	sst.Add("second")

	divErr, _ := document.ErrorValue(document.ErrDiv0)

	tests := []struct {
		name string
		raw  string
		typ  CellType
		want document.Value
	}{
		{"empty raw", "", CellTypeNumber, document.Value{}},
		{"integer", "42", CellTypeNumber, document.IntValue(42)},
		{"float", "2.5", CellTypeNumber, document.NumberValue(2.5)},
		{"scientific", "1e3", CellTypeNumber, document.NumberValue(1000)},
		{"unparseable number", "abc", CellTypeNumber, document.TextValue("abc")},
		{"shared string", "1", CellTypeSharedString, document.TextValue("second")},
		{"shared string out of range", "9", CellTypeSharedString, document.TextValue("9")},
		{"inline string", "inline", CellTypeInlineString, document.TextValue("inline")},
		{"bool one", "1", CellTypeBoolean, document.BoolValue(true)},
		{"bool zero", "0", CellTypeBoolean, document.BoolValue(false)},
		{"bool word", "TRUE", CellTypeBoolean, document.BoolValue(true)},
		{"bool garbage", "maybe", CellTypeBoolean, document.TextValue("maybe")},
		{"error code", "#DIV/0!", CellTypeError, divErr},
		{"unknown error code", "#WAT!", CellTypeError, document.TextValue("#WAT!")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DecodeValue(tt.raw, tt.typ, sst)
			if !got.Equal(tt.want) {
				t.Errorf("DecodeValue(%q, %q) = %v, want %v", tt.raw, tt.typ, got, tt.want)
			}
		})
	}
}

func TestDecodeValueWithoutTable(t *testing.T) {
	// a shared string reference without a table keeps the raw payload
	got := DecodeValue("3", CellTypeSharedString, nil)
	if !got.Equal(document.TextValue("3")) {
		t.Errorf("DecodeValue without table = %v, want text 3", got)
	}
}

func TestIntegerRoundTripKeepsIntness(t *testing.T) {
	raw, typ, ok := EncodeValue(document.IntValue(1234567890123))
	if !ok {
		t.Fatal("encode failed")
	}
	got := DecodeValue(raw, typ, nil)
	if !got.IsInt() || got.Int() != 1234567890123 {
		t.Errorf("round trip = %v, want integer 1234567890123", got)
	}
}

func TestTimeToSerial(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want float64
	}{
		{"epoch", time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC), 0},
		{"first day", time.Date(1899, 12, 31, 0, 0, 0, 0, time.UTC), 1},
		{"noon", time.Date(1899, 12, 30, 12, 0, 0, 0, time.UTC), 0.5},
		{"y2k", time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC), 36526},
		{"quarter day", time.Date(2024, 1, 1, 6, 0, 0, 0, time.UTC), 45292.25},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TimeToSerial(tt.in); got != tt.want {
				t.Errorf("TimeToSerial(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestIsDateFormatCode(t *testing.T) {
	tests := []struct {
		code string
		want bool
	}{
		{"", false},
		{"General", false},
		{"0.00", false},
		{"#,##0.00", false},
		{"0.00%", false},
		{"0.00E+00", false},
		{"yyyy-mm-dd", true},
		{"m/d/yy h:mm", true},
		{"h:mm:ss AM/PM", true},
		{"[h]:mm:ss", true},
		{"[Red]0.00", false},
		{`0.00" m"`, false},
		{`$#,##0.00`, false},
	}
	for _, tt := range tests {
		if got := IsDateFormatCode(tt.code); got != tt.want {
			t.Errorf("IsDateFormatCode(%q) = %v, want %v", tt.code, got, tt.want)
		}
	}
}

func TestSerialRoundTrip(t *testing.T) {
	times := []time.Time{
		time.Date(1900, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 6, 15, 13, 45, 12, 0, time.UTC),
		time.Date(1999, 12, 31, 23, 59, 59, 0, time.UTC),
	}
	for _, in := range times {
		got := SerialToTime(TimeToSerial(in))
		if d := got.Sub(in); d > time.Second || d < -time.Second {
			t.Errorf("round trip of %v drifted to %v", in, got)
		}
	}
}
