package convert

import (
	"archive/zip"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"
	"github.com/h2non/filetype/matchers"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/encoding/unicode/utf32"
	"golang.org/x/text/transform"
)

type srcEncoding int

const (
	encUnknown srcEncoding = iota
	encUTF8
	encUTF16BigEndian
	encUTF16LittleEndian
	encUTF32BigEndian
	encUTF32LittleEndian
)

// compound file signature, encrypted workbook packages start with it
var cfbSignature = []byte{0xd0, 0xcf, 0x11, 0xe0, 0xa1, 0xb1, 0x1a, 0xe1}

func isUTF8BOM3(buf []byte) bool {
	return len(buf) >= 3 && buf[0] == 0xEF && buf[1] == 0xBB && buf[2] == 0xBF
}

func isUTF16BigEndianBOM2(buf []byte) bool {
	return len(buf) >= 2 && buf[0] == 0xFE && buf[1] == 0xFF
}

func isUTF16LittleEndianBOM2(buf []byte) bool {
	return len(buf) >= 2 && buf[0] == 0xFF && buf[1] == 0xFE
}

func isUTF32BigEndianBOM4(buf []byte) bool {
	return len(buf) >= 4 && buf[0] == 0x00 && buf[1] == 0x00 && buf[2] == 0xFE && buf[3] == 0xFF
}

func isUTF32LittleEndianBOM4(buf []byte) bool {
	return len(buf) >= 4 && buf[0] == 0xFF && buf[1] == 0xFE && buf[2] == 0x00 && buf[3] == 0x00
}

// detectUTF sniffs the byte order mark. UTF-32 LE shares a prefix with
// UTF-16 LE so the longer mark is checked first.
func detectUTF(buf []byte) srcEncoding {
	switch {
	case isUTF8BOM3(buf):
		return encUTF8
	case isUTF32BigEndianBOM4(buf):
		return encUTF32BigEndian
	case isUTF32LittleEndianBOM4(buf):
		return encUTF32LittleEndian
	case isUTF16BigEndianBOM2(buf):
		return encUTF16BigEndian
	case isUTF16LittleEndianBOM2(buf):
		return encUTF16LittleEndian
	}
	return encUnknown
}

// selectReader wraps the reader with a decoder when input carries a BOM of
// one of the unicode transformation formats.
func selectReader(r io.Reader, enc srcEncoding) io.Reader {
	switch enc {
	case encUTF8:
		return transform.NewReader(r, unicode.UTF8BOM.NewDecoder())
	case encUTF16BigEndian:
		return transform.NewReader(r, unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM).NewDecoder())
	case encUTF16LittleEndian:
		return transform.NewReader(r, unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM).NewDecoder())
	case encUTF32BigEndian:
		return transform.NewReader(r, utf32.UTF32(utf32.BigEndian, utf32.ExpectBOM).NewDecoder())
	case encUTF32LittleEndian:
		return transform.NewReader(r, utf32.UTF32(utf32.LittleEndian, utf32.ExpectBOM).NewDecoder())
	default:
		return r
	}
}

// isArchiveFile reports whether the file is a plain zip archive used as a
// container for multiple inputs. Workbook packages are zip files too, so
// anything with a spreadsheet part layout is excluded here.
func isArchiveFile(path string) (bool, error) {
	if !strings.EqualFold(filepath.Ext(path), ".zip") {
		return false, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	head := make([]byte, 262)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return false, err
	}
	if !filetype.IsType(head[:n], matchers.TypeZip) {
		return false, nil
	}
	// a zip with spreadsheet parts is a workbook, not a container
	zr, err := zip.OpenReader(path)
	if err != nil {
		return false, nil
	}
	defer zr.Close()
	for _, zf := range zr.File {
		if zf.Name == "xl/workbook.xml" || zf.Name == "[Content_Types].xml" {
			return false, nil
		}
	}
	return true, nil
}

// isWorkbookFile reports whether the file looks like a workbook package:
// either a zip with spreadsheet parts or an encrypted compound file.
func isWorkbookFile(path string) (bool, error) {
	if !strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return false, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	head := make([]byte, len(cfbSignature))
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return false, err
	}
	if bytes.HasPrefix(head[:n], cfbSignature) {
		return true, nil
	}
	return filetype.IsType(head[:n], matchers.TypeZip), nil
}

// isDelimitedFile reports whether the file should be treated as delimited
// text input, and with what unicode encoding when a BOM is present.
func isDelimitedFile(path string) (bool, srcEncoding, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".csv" && ext != ".tsv" && ext != ".txt" {
		return false, encUnknown, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return false, encUnknown, err
	}
	defer f.Close()

	head := make([]byte, 4)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return false, encUnknown, err
	}
	return true, detectUTF(head[:n]), nil
}

// sniffInput classifies bytes already read from an archive member.
func sniffInput(name string, head []byte) (workbook, delimited bool, enc srcEncoding) {
	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".xlsx":
		if bytes.HasPrefix(head, cfbSignature) || filetype.IsType(head, matchers.TypeZip) {
			return true, false, encUnknown
		}
	case ".csv", ".tsv", ".txt":
		return false, true, detectUTF(head)
	}
	return false, false, encUnknown
}

// isInputInArchive checks a zip member the same way isWorkbookFile and
// isDelimitedFile check loose files.
func isInputInArchive(f *zip.File) (workbook, delimited bool, enc srcEncoding, err error) {
	r, err := f.Open()
	if err != nil {
		return false, false, encUnknown, err
	}
	defer r.Close()

	head := make([]byte, 262)
	n, err := io.ReadFull(r, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return false, false, encUnknown, err
	}
	workbook, delimited, enc = sniffInput(f.FileHeader.Name, head[:n])
	return workbook, delimited, enc, nil
}
