package xlsx

import (
	"bytes"
	"testing"

	"github.com/beevik/etree"

	"xlc/document"
)

func boldStyle() document.Style {
	st := document.DefaultStyle()
	st.Font.Bold = true
	return st
}

func TestInternStyleDefault(t *testing.T) {
	ss := newStyleSheet()
	if idx := ss.internStyle(document.DefaultStyle()); idx != 0 {
		t.Errorf("default style = xf %d, want reserved 0", idx)
	}
	if len(ss.xfs) != 0 {
		t.Errorf("default style must not be stored, have %d xfs", len(ss.xfs))
	}
}

func TestInternStyleDeduplication(t *testing.T) {
	ss := newStyleSheet()

	first := ss.internStyle(boldStyle())
	if first != 1 {
		t.Fatalf("first custom style = xf %d, want 1", first)
	}
	if again := ss.internStyle(boldStyle()); again != first {
		t.Errorf("equal style interned twice = xf %d, want %d", again, first)
	}

	st := document.DefaultStyle()
	st.Fill = document.SolidFill("FFFFCC00")
	second := ss.internStyle(st)
	if second != 2 {
		t.Errorf("second custom style = xf %d, want 2", second)
	}
	if len(ss.xfs) != 2 {
		t.Errorf("xfs = %d, want 2", len(ss.xfs))
	}
}

func TestInternStyleSharesComponents(t *testing.T) {
	ss := newStyleSheet()

	left := boldStyle()
	left.Alignment.Horizontal = "left"
	right := boldStyle()
	right.Alignment.Horizontal = "right"

	ss.internStyle(left)
	ss.internStyle(right)

	// one non-default font shared by both styles, on top of the default
	if len(ss.fonts) != 2 {
		t.Errorf("fonts = %d, want 2", len(ss.fonts))
	}
	if len(ss.aligns) != 3 {
		t.Errorf("alignments = %d, want 3", len(ss.aligns))
	}
}

func TestInternNumberFormat(t *testing.T) {
	ss := newStyleSheet()

	if id := ss.internNumberFormat("General"); id != 0 {
		t.Errorf("General = id %d, want builtin 0", id)
	}
	if id := ss.internNumberFormat("0.00"); id != 2 {
		t.Errorf("0.00 = id %d, want builtin 2", id)
	}
	if id := ss.internNumberFormat("0%"); id != 9 {
		t.Errorf("0%% = id %d, want builtin 9", id)
	}

	custom := ss.internNumberFormat(`"$"#,##0.000`)
	if custom != document.CustomNumFmtBase {
		t.Errorf("first custom code = id %d, want %d", custom, document.CustomNumFmtBase)
	}
	if again := ss.internNumberFormat(`"$"#,##0.000`); again != custom {
		t.Errorf("repeated custom code = id %d, want %d", again, custom)
	}
	if next := ss.internNumberFormat("yyyy/mm"); next != document.CustomNumFmtBase+1 {
		t.Errorf("second custom code = id %d, want %d", next, document.CustomNumFmtBase+1)
	}

	if code := ss.resolveNumberFormat(custom); code != `"$"#,##0.000` {
		t.Errorf("resolve custom = %q", code)
	}
	if code := ss.resolveNumberFormat(2); code != "0.00" {
		t.Errorf("resolve builtin 2 = %q", code)
	}
	if code := ss.resolveNumberFormat(9999); code != "General" {
		t.Errorf("resolve unknown = %q, want General fallback", code)
	}
}

func TestStyleAtOutOfRange(t *testing.T) {
	ss := newStyleSheet()
	def := document.DefaultStyle()

	for _, idx := range []int{-1, 0, 1, 99} {
		if got := ss.styleAt(idx); got != def {
			t.Errorf("styleAt(%d) = %+v, want default style", idx, got)
		}
	}
}

func TestStylesRoundTrip(t *testing.T) {
	ss := newStyleSheet()

	st := document.DefaultStyle()
	st.Font.Bold = true
	st.Font.Size = 14
	st.Fill = document.SolidFill("FFFFCC00")
	st.Alignment.Horizontal = "center"
	st.Alignment.WrapText = true
	st.NumberFormat = "0.000"
	idx := ss.internStyle(st)

	var buf bytes.Buffer
	if _, err := ss.buildDoc().WriteTo(&buf); err != nil {
		t.Fatal(err)
	}
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(buf.Bytes()); err != nil {
		t.Fatal(err)
	}

	got := parseStyles(doc).styleAt(idx)
	if !got.Font.Bold || got.Font.Size != 14 {
		t.Errorf("font did not survive: %+v", got.Font)
	}
	if got.Fill.Pattern != "solid" || got.Fill.ForegroundColor != "FFFFCC00" {
		t.Errorf("fill did not survive: %+v", got.Fill)
	}
	if got.Alignment.Horizontal != "center" || !got.Alignment.WrapText {
		t.Errorf("alignment did not survive: %+v", got.Alignment)
	}
	if got.NumberFormat != "0.000" {
		t.Errorf("number format = %q, want 0.000", got.NumberFormat)
	}
}

func TestParseStylesBrokenIndices(t *testing.T) {
	const part = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<styleSheet xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main">
<cellXfs count="2">
<xf numFmtId="0" fontId="0" fillId="0" borderId="0" xfId="0"/>
<xf numFmtId="0" fontId="42" fillId="42" borderId="42" xfId="0"/>
</cellXfs>
</styleSheet>`

	doc := etree.NewDocument()
	if err := doc.ReadFromString(part); err != nil {
		t.Fatal(err)
	}

	got := parseStyles(doc).styleAt(1)
	if got.Font != document.DefaultFont() {
		t.Errorf("broken font index = %+v, want default", got.Font)
	}
	if got.Fill != document.DefaultFill() {
		t.Errorf("broken fill index = %+v, want default", got.Fill)
	}
	if got.Borders != document.DefaultBorders() {
		t.Errorf("broken border index = %+v, want default", got.Borders)
	}
}
