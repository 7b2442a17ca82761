// Package xlsx implements the SpreadsheetML package codec: assembling and
// parsing the ZIP container with its XML parts, interning styles and shared
// strings, and converting typed cell values to and from their wire form.
package xlsx

import (
	"strconv"
	"strings"
	"time"

	"xlc/document"
)

// CellType is the value of the cell t attribute. The empty type means
// number, which the format treats as the default.
type CellType string

const (
	CellTypeNumber       CellType = ""
	CellTypeSharedString CellType = "s"
	CellTypeInlineString CellType = "str"
	CellTypeBoolean      CellType = "b"
	CellTypeError        CellType = "e"
)

// serialEpoch is the day-zero anchor of the 1900 date system, shifted two
// days back to absorb the historical Lotus leap-year bug.
var serialEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// TimeToSerial converts a timestamp to its serial day number. Whole days
// carry in the integer part, the time of day in the fraction with one second
// resolution.
func TimeToSerial(t time.Time) float64 {
	d := t.Sub(serialEpoch)
	days := d / (24 * time.Hour)
	rem := d % (24 * time.Hour)
	if rem < 0 {
		days--
		rem += 24 * time.Hour
	}
	return float64(days) + float64(rem/time.Second)/86400.0
}

// SerialToTime converts a serial day number back to a UTC timestamp,
// truncating below one second.
func SerialToTime(serial float64) time.Time {
	days := int64(serial)
	seconds := int64((serial - float64(days)) * 86400)
	return serialEpoch.Add(time.Duration(days)*24*time.Hour + time.Duration(seconds)*time.Second)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// defaultDateTimeFormat is the number format applied to date cells whose
// style does not already carry one (builtin id 22).
const defaultDateTimeFormat = "m/d/yy h:mm"

// IsDateFormatCode reports whether a number format code renders its value as
// a date or time. Bracketed tokens and literal runs do not count: [Red] is a
// color, "mm" inside quotes is text.
func IsDateFormatCode(code string) bool {
	if code == "" || code == "General" {
		return false
	}
	inQuote := false
	for i := 0; i < len(code); i++ {
		c := code[i]
		switch {
		case inQuote:
			if c == '"' {
				inQuote = false
			}
		case c == '"':
			inQuote = true
		case c == '\\' || c == '_' || c == '*':
			i++
		case c == '[':
			for i < len(code) && code[i] != ']' {
				i++
			}
		case c == 'y' || c == 'Y' || c == 'd' || c == 'D' || c == 'h' || c == 'H' || c == 's' || c == 'S' || c == 'm' || c == 'M':
			return true
		}
	}
	return false
}

// EncodeValue converts a typed value into its wire representation. The
// returned ok is false for the absent value, meaning the cell gets no v
// element. Text values that spell an error code or a boolean literal encode
// as that type, everything else textual encodes as a shared-string payload
// (the raw string; the saver swaps in the table index).
func EncodeValue(v document.Value) (raw string, t CellType, ok bool) {
	switch v.Kind() {
	case document.ValueKindNil:
		return "", CellTypeNumber, false
	case document.ValueKindBool:
		if v.Bool() {
			return "1", CellTypeBoolean, true
		}
		return "0", CellTypeBoolean, true
	case document.ValueKindNumber:
		if v.IsInt() {
			return strconv.FormatInt(v.Int(), 10), CellTypeNumber, true
		}
		return formatFloat(v.Float()), CellTypeNumber, true
	case document.ValueKindError:
		return v.Text(), CellTypeError, true
	case document.ValueKindDateTime:
		return formatFloat(TimeToSerial(v.Time())), CellTypeNumber, true
	case document.ValueKindText:
		s := v.Text()
		if document.IsErrorCode(s) || document.IsErrorCode(strings.ToUpper(s)) {
			return s, CellTypeError, true
		}
		switch strings.ToUpper(s) {
		case "TRUE":
			return "1", CellTypeBoolean, true
		case "FALSE":
			return "0", CellTypeBoolean, true
		}
		return s, CellTypeSharedString, true
	}
	return "", CellTypeNumber, false
}

// DecodeValue converts a wire value back to a typed value. Decoding never
// fails: anything that does not parse under its declared type comes back as
// text, preserving the raw payload.
func DecodeValue(raw string, t CellType, sst *SharedStrings) document.Value {
	if raw == "" {
		return document.Value{}
	}
	switch t {
	case CellTypeSharedString:
		if sst != nil {
			if idx, err := strconv.Atoi(raw); err == nil {
				if s, ok := sst.At(idx); ok {
					return document.TextValue(s)
				}
			}
		}
		return document.TextValue(raw)
	case CellTypeInlineString:
		return document.TextValue(raw)
	case CellTypeBoolean:
		if n, err := strconv.Atoi(raw); err == nil {
			return document.BoolValue(n != 0)
		}
		switch strings.ToUpper(raw) {
		case "TRUE":
			return document.BoolValue(true)
		case "FALSE":
			return document.BoolValue(false)
		}
		return document.TextValue(raw)
	case CellTypeError:
		if v, err := document.ErrorValue(raw); err == nil {
			return v
		}
		return document.TextValue(raw)
	default:
		if strings.ContainsAny(raw, ".eE") {
			if f, err := strconv.ParseFloat(raw, 64); err == nil {
				return document.NumberValue(f)
			}
		} else if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return document.IntValue(n)
		}
		return document.TextValue(raw)
	}
}
