package convert

import (
	"archive/zip"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

func TestDetectUTF(t *testing.T) {
	tests := []struct {
		name string
		buf  []byte
		want srcEncoding
	}{
		{"empty", nil, encUnknown},
		{"plain ascii", []byte("a,b,c"), encUnknown},
		{"utf8 bom", []byte{0xEF, 0xBB, 0xBF, 'a'}, encUTF8},
		{"utf16 be bom", []byte{0xFE, 0xFF, 0x00, 'a'}, encUTF16BigEndian},
		{"utf16 le bom", []byte{0xFF, 0xFE, 'a', 0x00}, encUTF16LittleEndian},
		{"utf32 be bom", []byte{0x00, 0x00, 0xFE, 0xFF}, encUTF32BigEndian},
		{"utf32 le bom", []byte{0xFF, 0xFE, 0x00, 0x00}, encUTF32LittleEndian},
		{"short utf16 le", []byte{0xFF, 0xFE}, encUTF16LittleEndian},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := detectUTF(tt.buf); got != tt.want {
				t.Errorf("detectUTF(% X) = %v, want %v", tt.buf, got, tt.want)
			}
		})
	}
}

func TestSelectReader(t *testing.T) {
	utf16le, err := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder().Bytes([]byte("a,b\n"))
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		data []byte
		enc  srcEncoding
		want string
	}{
		{"passthrough", []byte("a,b\n"), encUnknown, "a,b\n"},
		{"utf8 bom stripped", []byte{0xEF, 0xBB, 0xBF, 'a', ',', 'b', '\n'}, encUTF8, "a,b\n"},
		{"utf16 le decoded", utf16le, encUTF16LittleEndian, "a,b\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := io.ReadAll(selectReader(bytes.NewReader(tt.data), tt.enc))
			if err != nil {
				t.Fatal(err)
			}
			if string(got) != tt.want {
				t.Errorf("selectReader produced %q, want %q", got, tt.want)
			}
		})
	}
}

func writeZip(t *testing.T, path string, parts map[string]string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	zw := zip.NewWriter(f)
	for name, body := range parts {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := io.WriteString(w, body); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestIsArchiveFile(t *testing.T) {
	dir := t.TempDir()

	container := filepath.Join(dir, "inputs.zip")
	writeZip(t, container, map[string]string{"data/a.csv": "1,2\n"})

	workbookZip := filepath.Join(dir, "book.zip")
	writeZip(t, workbookZip, map[string]string{"[Content_Types].xml": "<Types/>", "xl/workbook.xml": "<workbook/>"})

	notZip := filepath.Join(dir, "fake.zip")
	if err := os.WriteFile(notZip, []byte("not an archive"), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		path string
		want bool
	}{
		{"container archive", container, true},
		{"workbook disguised as zip", workbookZip, false},
		{"wrong magic", notZip, false},
		{"wrong extension", filepath.Join(dir, "missing.csv"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := isArchiveFile(tt.path)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("isArchiveFile(%s) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestIsWorkbookFile(t *testing.T) {
	dir := t.TempDir()

	book := filepath.Join(dir, "book.xlsx")
	writeZip(t, book, map[string]string{"[Content_Types].xml": "<Types/>", "xl/workbook.xml": "<workbook/>"})

	encrypted := filepath.Join(dir, "locked.xlsx")
	if err := os.WriteFile(encrypted, append(append([]byte{}, cfbSignature...), make([]byte, 504)...), 0644); err != nil {
		t.Fatal(err)
	}

	garbage := filepath.Join(dir, "garbage.xlsx")
	if err := os.WriteFile(garbage, []byte("nothing here"), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		path string
		want bool
	}{
		{"zip package", book, true},
		{"encrypted compound file", encrypted, true},
		{"garbage content", garbage, false},
		{"wrong extension", filepath.Join(dir, "missing.zip"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := isWorkbookFile(tt.path)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("isWorkbookFile(%s) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestIsDelimitedFile(t *testing.T) {
	dir := t.TempDir()

	plain := filepath.Join(dir, "plain.csv")
	if err := os.WriteFile(plain, []byte("a,b\n"), 0644); err != nil {
		t.Fatal(err)
	}

	bom := filepath.Join(dir, "bom.csv")
	if err := os.WriteFile(bom, []byte{0xEF, 0xBB, 0xBF, 'a', ',', 'b', '\n'}, 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		path    string
		want    bool
		wantEnc srcEncoding
	}{
		{"plain csv", plain, true, encUnknown},
		{"csv with bom", bom, true, encUTF8},
		{"wrong extension", filepath.Join(dir, "missing.xlsx"), false, encUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, enc, err := isDelimitedFile(tt.path)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want || enc != tt.wantEnc {
				t.Errorf("isDelimitedFile(%s) = (%v, %v), want (%v, %v)", tt.path, got, enc, tt.want, tt.wantEnc)
			}
		})
	}
}

func TestSniffInput(t *testing.T) {
	zipHead := []byte{'P', 'K', 0x03, 0x04, 0, 0, 0, 0}

	tests := []struct {
		name          string
		file          string
		head          []byte
		wantWorkbook  bool
		wantDelimited bool
		wantEnc       srcEncoding
	}{
		{"workbook zip", "book.xlsx", zipHead, true, false, encUnknown},
		{"workbook compound file", "locked.xlsx", cfbSignature, true, false, encUnknown},
		{"xlsx with bad content", "bad.xlsx", []byte("junk"), false, false, encUnknown},
		{"csv", "data.csv", []byte("a,b\n"), false, true, encUnknown},
		{"csv with bom", "data.csv", []byte{0xEF, 0xBB, 0xBF, 'a'}, false, true, encUTF8},
		{"unrelated", "readme.md", []byte("# hi"), false, false, encUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			workbook, delimited, enc := sniffInput(tt.file, tt.head)
			if workbook != tt.wantWorkbook || delimited != tt.wantDelimited || enc != tt.wantEnc {
				t.Errorf("sniffInput(%s) = (%v, %v, %v), want (%v, %v, %v)",
					tt.file, workbook, delimited, enc, tt.wantWorkbook, tt.wantDelimited, tt.wantEnc)
			}
		})
	}
}

func TestSelectReaderRoundTrip(t *testing.T) {
	const text = "name,count\nalpha,1\n"
	enc, err := io.ReadAll(transform.NewReader(strings.NewReader(text), unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewEncoder()))
	if err != nil {
		t.Fatal(err)
	}
	detected := detectUTF(enc)
	if detected != encUTF16BigEndian {
		t.Fatalf("detectUTF = %v, want big endian", detected)
	}
	got, err := io.ReadAll(selectReader(bytes.NewReader(enc), detected))
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != text {
		t.Errorf("round trip produced %q, want %q", got, text)
	}
}
