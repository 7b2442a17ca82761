package cfb

import (
	"bytes"
	"encoding/binary"
	"unicode/utf16"
)

// dataSpacesStreams builds the DataSpaces storage tree that office readers
// expect next to the encrypted package. The structures are fixed: a version
// record, a map binding EncryptedPackage to the strong encryption data
// space, and the transform descriptor.
func dataSpacesStreams() []stream {
	version := concat(
		lpUTF16("Microsoft.Container.DataSpaces"),
		le32(1), le32(1), le32(1),
	)

	entry := pad4(concat(
		le32(1), // component count
		le32(0), // component type: stream
		lpUTF16("EncryptedPackage"),
		lpUTF16("StrongEncryptionDataSpace"),
	))
	dataSpaceMap := concat(le32(8), le32(1), le32(uint32(len(entry)+4)), entry)

	dataSpaceInfo := concat(le32(8), le32(1), pad4(lpUTF16("StrongEncryptionTransform")))

	primary := concat(
		le32(88), le32(1),
		lpUTF16("{FF9A3F03-56EF-4613-BDD5-5A41C1D07246}"),
		lpUTF16("Microsoft.Container.EncryptionTransform"),
		[]byte{
			0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00,
			0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
			0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x04, 0x00,
			0x00, 0x00,
		},
	)

	return []stream{
		{path: "\x06DataSpaces/Version", data: version},
		{path: "\x06DataSpaces/DataSpaceMap", data: dataSpaceMap},
		{path: "\x06DataSpaces/DataSpaceInfo/StrongEncryptionDataSpace", data: dataSpaceInfo},
		{path: "\x06DataSpaces/TransformInfo/StrongEncryptionTransform/\x06Primary", data: primary},
	}
}

// lpUTF16 is a length-prefixed UTF-16LE string record.
func lpUTF16(s string) []byte {
	units := utf16.Encode([]rune(s))
	out := make([]byte, 4+len(units)*2)
	binary.LittleEndian.PutUint32(out, uint32(len(units)*2))
	for i, u := range units {
		binary.LittleEndian.PutUint16(out[4+i*2:], u)
	}
	return out
}

func le32(v uint32) []byte {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	return b[:]
}

func pad4(b []byte) []byte {
	if rem := len(b) % 4; rem != 0 {
		return append(b, make([]byte, 4-rem)...)
	}
	return b
}

func concat(parts ...[]byte) []byte {
	return bytes.Join(parts, nil)
}
