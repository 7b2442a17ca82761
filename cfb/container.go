// Package cfb implements the compound file container and the agile
// package encryption carried inside it. An encrypted workbook is a CFB
// file holding an EncryptionInfo descriptor stream and the AES-encrypted
// package bytes in an EncryptedPackage stream.
package cfb

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"sort"
	"strings"
	"unicode/utf16"
)

const (
	sectorSize     = 512
	miniSectorSize = 64
	miniCutoff     = 4096
	dirEntrySize   = 128

	difSect    = 0xFFFFFFFC
	fatSect    = 0xFFFFFFFD
	endOfChain = 0xFFFFFFFE
	freeSect   = 0xFFFFFFFF

	typeStorage = 1
	typeStream  = 2
	typeRoot    = 5
)

var containerSignature = []byte{0xd0, 0xcf, 0x11, 0xe0, 0xa1, 0xb1, 0x1a, 0xe1}

// IsEncrypted reports whether data starts with the compound file signature,
// which marks an encrypted package.
func IsEncrypted(data []byte) bool {
	return len(data) >= len(containerSignature) && bytes.Equal(data[:len(containerSignature)], containerSignature)
}

// stream is one named stream to place in a container. Path components
// separated by slashes become nested storages.
type stream struct {
	path string
	data []byte
}

type dirNode struct {
	name     string
	typ      byte
	data     []byte
	children []*dirNode

	id         int
	left       uint32
	right      uint32
	child      uint32
	start      uint32
	size       uint64
	miniChosen bool
}

// writeContainer serializes the streams into a version 3 compound file.
// Streams below the mini cutoff live in the root mini stream, everything
// else in regular sectors. The FAT spills into DIFAT sectors when the
// header array runs out.
func writeContainer(streams []stream) ([]byte, error) {
	root := &dirNode{name: "Root Entry", typ: typeRoot}
	for _, s := range streams {
		if err := insertStream(root, s.path, s.data); err != nil {
			return nil, err
		}
	}

	nodes := collectNodes(root)
	for i, n := range nodes {
		n.id = i
		n.left, n.right, n.child = freeSect, freeSect, freeSect
	}
	for _, n := range nodes {
		if n.typ == typeStream {
			n.size = uint64(len(n.data))
			n.miniChosen = len(n.data) > 0 && len(n.data) < miniCutoff
		}
		if len(n.children) > 0 {
			n.child = buildSiblingTree(n.children)
		}
	}

	// mini stream assembly: chains are in mini sector units
	var miniStream bytes.Buffer
	var miniFAT []uint32
	for _, n := range nodes {
		if !n.miniChosen {
			continue
		}
		n.start = uint32(len(miniFAT))
		sectors := (len(n.data) + miniSectorSize - 1) / miniSectorSize
		for i := 0; i < sectors; i++ {
			if i == sectors-1 {
				miniFAT = append(miniFAT, endOfChain)
			} else {
				miniFAT = append(miniFAT, uint32(len(miniFAT))+1)
			}
		}
		miniStream.Write(n.data)
		if pad := (miniSectorSize - len(n.data)%miniSectorSize) % miniSectorSize; pad > 0 {
			miniStream.Write(make([]byte, pad))
		}
	}
	root.size = uint64(miniStream.Len())

	var regular []*dirNode
	for _, n := range nodes {
		if n.typ == typeStream && !n.miniChosen && len(n.data) > 0 {
			regular = append(regular, n)
		}
	}

	dirCount := len(nodes)
	if rem := dirCount % (sectorSize / dirEntrySize); rem != 0 {
		dirCount += sectorSize/dirEntrySize - rem
	}
	dirSectors := dirCount * dirEntrySize / sectorSize
	miniFATSectors := (len(miniFAT)*4 + sectorSize - 1) / sectorSize
	miniStreamSectors := (miniStream.Len() + sectorSize - 1) / sectorSize
	regSectors := 0
	for _, n := range regular {
		regSectors += (len(n.data) + sectorSize - 1) / sectorSize
	}

	// fixed point: more FAT sectors may demand DIFAT sectors which in turn
	// grow the FAT
	entriesPerSector := sectorSize / 4
	nFat, nDifat := 1, 0
	for {
		total := nDifat + nFat + dirSectors + miniFATSectors + miniStreamSectors + regSectors
		needFat := (total + entriesPerSector - 1) / entriesPerSector
		needDifat := 0
		if needFat > 109 {
			needDifat = (needFat - 109 + entriesPerSector - 2) / (entriesPerSector - 1)
		}
		if needFat == nFat && needDifat == nDifat {
			break
		}
		nFat, nDifat = needFat, needDifat
	}

	fatBase := uint32(nDifat)
	dirStart := fatBase + uint32(nFat)
	miniFATStart := dirStart + uint32(dirSectors)
	miniStreamStart := miniFATStart + uint32(miniFATSectors)
	dataStart := miniStreamStart + uint32(miniStreamSectors)

	if miniStream.Len() > 0 {
		root.start = miniStreamStart
	} else {
		root.start = endOfChain
	}
	next := dataStart
	for _, n := range regular {
		n.start = next
		next += uint32((len(n.data) + sectorSize - 1) / sectorSize)
	}

	fat := make([]uint32, nFat*entriesPerSector)
	for i := range fat {
		fat[i] = freeSect
	}
	for i := 0; i < nDifat; i++ {
		fat[i] = difSect
	}
	for i := 0; i < nFat; i++ {
		fat[int(fatBase)+i] = fatSect
	}
	chain := func(start uint32, sectors int) {
		for i := 0; i < sectors; i++ {
			if i == sectors-1 {
				fat[int(start)+i] = endOfChain
			} else {
				fat[int(start)+i] = start + uint32(i) + 1
			}
		}
	}
	chain(dirStart, dirSectors)
	if miniFATSectors > 0 {
		chain(miniFATStart, miniFATSectors)
	}
	if miniStreamSectors > 0 {
		chain(miniStreamStart, miniStreamSectors)
	}
	for _, n := range regular {
		chain(n.start, (len(n.data)+sectorSize-1)/sectorSize)
	}

	var out bytes.Buffer
	writeHeader(&out, nFat, nDifat, dirStart, miniFATStart, miniFATSectors, fatBase)

	// DIFAT sectors hold FAT sector numbers past the header array, with the
	// last entry of each sector linking to the next
	for d := 0; d < nDifat; d++ {
		for i := 0; i < entriesPerSector-1; i++ {
			idx := 109 + d*(entriesPerSector-1) + i
			if idx < nFat {
				binary.Write(&out, binary.LittleEndian, fatBase+uint32(idx))
			} else {
				binary.Write(&out, binary.LittleEndian, uint32(freeSect))
			}
		}
		if d == nDifat-1 {
			binary.Write(&out, binary.LittleEndian, uint32(endOfChain))
		} else {
			binary.Write(&out, binary.LittleEndian, uint32(d)+1)
		}
	}

	binary.Write(&out, binary.LittleEndian, fat)

	for i := 0; i < dirCount; i++ {
		if i < len(nodes) {
			writeDirEntry(&out, nodes[i])
		} else {
			out.Write(bytes.Repeat([]byte{0xFF}, dirEntrySize))
		}
	}

	if miniFATSectors > 0 {
		binary.Write(&out, binary.LittleEndian, miniFAT)
		pad := miniFATSectors*sectorSize - len(miniFAT)*4
		out.Write(make([]byte, pad))
	}
	if miniStreamSectors > 0 {
		out.Write(miniStream.Bytes())
		pad := miniStreamSectors*sectorSize - miniStream.Len()
		out.Write(make([]byte, pad))
	}
	for _, n := range regular {
		out.Write(n.data)
		if pad := (sectorSize - len(n.data)%sectorSize) % sectorSize; pad > 0 {
			out.Write(make([]byte, pad))
		}
	}

	return out.Bytes(), nil
}

func writeHeader(out *bytes.Buffer, nFat, nDifat int, dirStart, miniFATStart uint32, miniFATSectors int, fatBase uint32) {
	out.Write(containerSignature)
	out.Write(make([]byte, 16)) // CLSID
	binary.Write(out, binary.LittleEndian, uint16(0x003E))
	binary.Write(out, binary.LittleEndian, uint16(0x0003))
	binary.Write(out, binary.LittleEndian, uint16(0xFFFE))
	binary.Write(out, binary.LittleEndian, uint16(9)) // sector shift
	binary.Write(out, binary.LittleEndian, uint16(6)) // mini sector shift
	out.Write(make([]byte, 6))
	binary.Write(out, binary.LittleEndian, uint32(0)) // dir sector count, v3
	binary.Write(out, binary.LittleEndian, uint32(nFat))
	binary.Write(out, binary.LittleEndian, dirStart)
	binary.Write(out, binary.LittleEndian, uint32(0)) // transaction signature
	binary.Write(out, binary.LittleEndian, uint32(miniCutoff))
	if miniFATSectors > 0 {
		binary.Write(out, binary.LittleEndian, miniFATStart)
	} else {
		binary.Write(out, binary.LittleEndian, uint32(endOfChain))
	}
	binary.Write(out, binary.LittleEndian, uint32(miniFATSectors))
	if nDifat > 0 {
		binary.Write(out, binary.LittleEndian, uint32(0))
	} else {
		binary.Write(out, binary.LittleEndian, uint32(endOfChain))
	}
	binary.Write(out, binary.LittleEndian, uint32(nDifat))
	for i := 0; i < 109; i++ {
		if i < nFat {
			binary.Write(out, binary.LittleEndian, fatBase+uint32(i))
		} else {
			binary.Write(out, binary.LittleEndian, uint32(freeSect))
		}
	}
}

func writeDirEntry(out *bytes.Buffer, n *dirNode) {
	units := utf16.Encode([]rune(n.name))
	if len(units) > 31 {
		units = units[:31]
	}
	nameBuf := make([]byte, 64)
	for i, u := range units {
		binary.LittleEndian.PutUint16(nameBuf[i*2:], u)
	}
	out.Write(nameBuf)
	binary.Write(out, binary.LittleEndian, uint16(len(units)*2+2))
	out.WriteByte(n.typ)
	out.WriteByte(1) // black
	binary.Write(out, binary.LittleEndian, n.left)
	binary.Write(out, binary.LittleEndian, n.right)
	binary.Write(out, binary.LittleEndian, n.child)
	out.Write(make([]byte, 16)) // CLSID
	binary.Write(out, binary.LittleEndian, uint32(0))
	binary.Write(out, binary.LittleEndian, uint64(0)) // created
	binary.Write(out, binary.LittleEndian, uint64(0)) // modified
	start := n.start
	if n.typ == typeStream && len(n.data) == 0 {
		start = endOfChain
	}
	if n.typ == typeStorage {
		start = 0
	}
	binary.Write(out, binary.LittleEndian, start)
	binary.Write(out, binary.LittleEndian, n.size)
}

func insertStream(root *dirNode, path string, data []byte) error {
	parts := strings.Split(path, "/")
	node := root
	for _, part := range parts[:len(parts)-1] {
		var next *dirNode
		for _, c := range node.children {
			if c.name == part && c.typ == typeStorage {
				next = c
				break
			}
		}
		if next == nil {
			next = &dirNode{name: part, typ: typeStorage}
			node.children = append(node.children, next)
		}
		node = next
	}
	name := parts[len(parts)-1]
	for _, c := range node.children {
		if c.name == name {
			return fmt.Errorf("duplicate stream %q", path)
		}
	}
	node.children = append(node.children, &dirNode{name: name, typ: typeStream, data: data})
	return nil
}

func collectNodes(root *dirNode) []*dirNode {
	out := []*dirNode{root}
	for i := 0; i < len(out); i++ {
		out = append(out, out[i].children...)
	}
	return out
}

// buildSiblingTree links a storage's children into the balanced binary tree
// the directory requires, ordered by the container name collation: shorter
// names first, then case-insensitive comparison.
func buildSiblingTree(children []*dirNode) uint32 {
	sorted := make([]*dirNode, len(children))
	copy(sorted, children)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := strings.ToUpper(sorted[i].name), strings.ToUpper(sorted[j].name)
		la, lb := len(utf16.Encode([]rune(a))), len(utf16.Encode([]rune(b)))
		if la != lb {
			return la < lb
		}
		return a < b
	})
	var build func(lo, hi int) uint32
	build = func(lo, hi int) uint32 {
		if lo > hi {
			return freeSect
		}
		mid := (lo + hi) / 2
		n := sorted[mid]
		n.left = build(lo, mid-1)
		n.right = build(mid+1, hi)
		return uint32(n.id)
	}
	return build(0, len(sorted)-1)
}

// container is a parsed compound file.
type container struct {
	data        []byte
	sectorSize  int
	miniSize    int
	miniCutoff  uint32
	fat         []uint32
	miniFAT     []uint32
	entries     []dirEntry
	streamIndex map[string]int
}

type dirEntry struct {
	name  string
	typ   byte
	left  uint32
	right uint32
	child uint32
	start uint32
	size  uint64
}

func openContainer(data []byte) (*container, error) {
	if !IsEncrypted(data) {
		return nil, fmt.Errorf("not a compound file")
	}
	if len(data) < 512 {
		return nil, fmt.Errorf("truncated compound file header")
	}

	sectorShift := binary.LittleEndian.Uint16(data[30:32])
	miniShift := binary.LittleEndian.Uint16(data[32:34])
	c := &container{
		data:        data,
		sectorSize:  1 << sectorShift,
		miniSize:    1 << miniShift,
		miniCutoff:  binary.LittleEndian.Uint32(data[56:60]),
		streamIndex: make(map[string]int),
	}
	if c.sectorSize != 512 && c.sectorSize != 4096 {
		return nil, fmt.Errorf("unsupported sector size %d", c.sectorSize)
	}

	nFat := binary.LittleEndian.Uint32(data[44:48])
	dirStart := binary.LittleEndian.Uint32(data[48:52])
	miniFATStart := binary.LittleEndian.Uint32(data[60:64])
	nMiniFAT := binary.LittleEndian.Uint32(data[64:68])
	difatStart := binary.LittleEndian.Uint32(data[68:72])
	nDifat := binary.LittleEndian.Uint32(data[72:76])

	var difat []uint32
	for i := 0; i < 109; i++ {
		e := binary.LittleEndian.Uint32(data[76+i*4 : 80+i*4])
		if e != freeSect {
			difat = append(difat, e)
		}
	}
	sector := difatStart
	for i := uint32(0); i < nDifat && sector != endOfChain && sector != freeSect; i++ {
		sec, err := c.sector(sector)
		if err != nil {
			return nil, err
		}
		for j := 0; j+4 <= len(sec)-4; j += 4 {
			e := binary.LittleEndian.Uint32(sec[j : j+4])
			if e != freeSect {
				difat = append(difat, e)
			}
		}
		sector = binary.LittleEndian.Uint32(sec[len(sec)-4:])
	}

	for i := uint32(0); i < nFat; i++ {
		if int(i) >= len(difat) {
			return nil, fmt.Errorf("FAT sector %d missing from DIFAT", i)
		}
		sec, err := c.sector(difat[i])
		if err != nil {
			return nil, err
		}
		for j := 0; j+4 <= len(sec); j += 4 {
			c.fat = append(c.fat, binary.LittleEndian.Uint32(sec[j:j+4]))
		}
	}

	dirData, err := c.readChain(dirStart, -1)
	if err != nil {
		return nil, fmt.Errorf("unable to read directory: %w", err)
	}
	for i := 0; i+dirEntrySize <= len(dirData); i += dirEntrySize {
		e := dirData[i : i+dirEntrySize]
		nameLen := int(binary.LittleEndian.Uint16(e[64:66]))
		var name string
		if nameLen >= 2 && nameLen <= 64 {
			units := make([]uint16, (nameLen-2)/2)
			for j := range units {
				units[j] = binary.LittleEndian.Uint16(e[j*2 : j*2+2])
			}
			name = string(utf16.Decode(units))
		}
		c.entries = append(c.entries, dirEntry{
			name:  name,
			typ:   e[66],
			left:  binary.LittleEndian.Uint32(e[68:72]),
			right: binary.LittleEndian.Uint32(e[72:76]),
			child: binary.LittleEndian.Uint32(e[76:80]),
			start: binary.LittleEndian.Uint32(e[116:120]),
			size:  binary.LittleEndian.Uint64(e[120:128]),
		})
	}
	if len(c.entries) == 0 {
		return nil, fmt.Errorf("compound file has no directory entries")
	}
	c.indexTree(0, "")

	if nMiniFAT > 0 {
		miniData, err := c.readChain(miniFATStart, -1)
		if err != nil {
			return nil, fmt.Errorf("unable to read mini FAT: %w", err)
		}
		for i := 0; i+4 <= len(miniData); i += 4 {
			c.miniFAT = append(c.miniFAT, binary.LittleEndian.Uint32(miniData[i:i+4]))
		}
	}
	return c, nil
}

func (c *container) indexTree(idx uint32, prefix string) {
	if idx == freeSect || int(idx) >= len(c.entries) {
		return
	}
	e := &c.entries[idx]
	c.indexTree(e.left, prefix)
	path := e.name
	if prefix != "" {
		path = prefix + "/" + e.name
	}
	c.streamIndex[path] = int(idx)
	switch e.typ {
	case typeRoot:
		c.indexTree(e.child, "")
	case typeStorage:
		c.indexTree(e.child, path)
	}
	c.indexTree(e.right, prefix)
}

func (c *container) sector(idx uint32) ([]byte, error) {
	off := 512 + int(idx)*c.sectorSize
	if off+c.sectorSize > len(c.data) {
		return nil, fmt.Errorf("sector %d out of range", idx)
	}
	return c.data[off : off+c.sectorSize], nil
}

func (c *container) readChain(start uint32, size int) ([]byte, error) {
	var out []byte
	sector := start
	for sector != endOfChain && sector != freeSect {
		if int(sector) >= len(c.fat) {
			return nil, fmt.Errorf("broken sector chain at %d", sector)
		}
		sec, err := c.sector(sector)
		if err != nil {
			return nil, err
		}
		out = append(out, sec...)
		sector = c.fat[sector]
		if len(out) > len(c.data) {
			return nil, fmt.Errorf("sector chain cycle at %d", sector)
		}
	}
	if size >= 0 && size < len(out) {
		out = out[:size]
	}
	return out, nil
}

// readStream returns the bytes of the named stream, following the mini
// stream indirection for small streams.
func (c *container) readStream(name string) ([]byte, error) {
	idx, ok := c.streamIndex[name]
	if !ok {
		return nil, fmt.Errorf("stream %q not found", name)
	}
	e := c.entries[idx]
	if e.size == 0 {
		return nil, nil
	}
	if uint32(e.size) < c.miniCutoff && e.typ == typeStream {
		root := c.entries[0]
		miniStream, err := c.readChain(root.start, int(root.size))
		if err != nil {
			return nil, err
		}
		var out []byte
		sector := e.start
		for sector != endOfChain && sector != freeSect {
			off := int(sector) * c.miniSize
			if off+c.miniSize > len(miniStream) || int(sector) >= len(c.miniFAT) {
				return nil, fmt.Errorf("broken mini chain at %d", sector)
			}
			out = append(out, miniStream[off:off+c.miniSize]...)
			sector = c.miniFAT[sector]
		}
		if int(e.size) < len(out) {
			out = out[:e.size]
		}
		return out, nil
	}
	return c.readChain(e.start, int(e.size))
}
