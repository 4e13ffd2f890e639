// Package stored builds ZIP archives whose entries all use the stored (uncompressed) method.
//
// The output of Build is a local file header plus raw data per entry, followed by one central directory file header
// per entry, followed by a single end of central directory record. Modification times are always zero and no extra
// fields or comments are written, so the same entries always produce byte-identical archives.
package stored

import (
	"io"
	"unicode/utf8"

	"github.com/nguyengg/szip/zip/crc"
	"github.com/valyala/bytebufferpool"
)

// Entry is a named byte blob to be stored in the archive.
//
// Entries are never modified by this package. Names are not required to be unique.
type Entry struct {
	// Name is the file name in the archive, typically a slash-separated relative path.
	Name string
	// Content is the raw file content; nil and empty are both valid.
	Content []byte
	// Method must be Store, which is also the zero value.
	Method uint16
}

// Build returns a new ZIP archive containing the given entries in order.
//
// The empty slice produces a valid 22-byte archive with no entries. All entries are validated before any output is
// produced; on error, the returned slice is nil and the error matches ErrInvalidEntry.
func Build(entries []Entry) ([]byte, error) {
	l, err := plan(entries, defaultLimits)
	if err != nil {
		return nil, err
	}

	return l.build(entries), nil
}

// WriteTo builds the archive and writes it to w in a single Write call.
//
// Nothing is written to w if any entry is invalid.
func WriteTo(w io.Writer, entries []Entry) (int64, error) {
	b, err := Build(entries)
	if err != nil {
		return 0, err
	}

	n, err := w.Write(b)
	return int64(n), err
}

// Size returns the exact length of the archive that Build would return for the same entries.
func Size(entries []Entry) (int64, error) {
	l, err := plan(entries, defaultLimits)
	if err != nil {
		return 0, err
	}

	return l.size, nil
}

// limits are the maximum values of the fixed-width fields; tests lower them to exercise overflow checks.
type limits struct {
	nameLen uint64
	size    uint64
	count   uint64
}

var defaultLimits = limits{nameLen: maxUint16, size: maxUint32, count: maxUint16}

// layout is the validated plan of an archive: everything needed to emit it without further checks.
type layout struct {
	crcs     []uint32
	offsets  []uint32
	cdOffset uint32
	cdSize   uint32
	size     int64
}

// plan validates entries and computes CRCs, local header offsets, and central directory placement.
//
// The local header offsets are a prefix sum over (header + data) lengths so they must be computed in input order.
func plan(entries []Entry, lim limits) (*layout, error) {
	if n := uint64(len(entries)); n > lim.count {
		return nil, &FieldOverflowError{Index: -1, Field: "entry count", Value: n, Max: lim.count}
	}

	l := &layout{
		crcs:    make([]uint32, len(entries)),
		offsets: make([]uint32, len(entries)),
	}

	var offset, cdSize uint64
	for i, e := range entries {
		switch {
		case e.Method != Store:
			return nil, &MethodError{Index: i, Name: e.Name, Method: e.Method}
		case e.Name == "":
			return nil, &EncodingError{Index: i, Name: e.Name, Reason: "empty name"}
		case !utf8.ValidString(e.Name):
			return nil, &EncodingError{Index: i, Name: e.Name, Reason: "invalid UTF-8"}
		}

		nameLen, size := uint64(len(e.Name)), uint64(len(e.Content))
		switch {
		case nameLen > lim.nameLen:
			return nil, &FieldOverflowError{Index: i, Name: e.Name, Field: "file name length", Value: nameLen, Max: lim.nameLen}
		case size > lim.size:
			return nil, &FieldOverflowError{Index: i, Name: e.Name, Field: "size", Value: size, Max: lim.size}
		case offset > lim.size:
			return nil, &FieldOverflowError{Index: i, Name: e.Name, Field: "local header offset", Value: offset, Max: lim.size}
		}

		l.crcs[i] = crc.Checksum(e.Content)
		l.offsets[i] = uint32(offset)
		offset += LocalFileHeaderLen + nameLen + size
		cdSize += CentralDirectoryHeaderLen + nameLen
	}

	switch {
	case offset > lim.size:
		return nil, &FieldOverflowError{Index: -1, Field: "central directory offset", Value: offset, Max: lim.size}
	case cdSize > lim.size:
		return nil, &FieldOverflowError{Index: -1, Field: "central directory size", Value: cdSize, Max: lim.size}
	}

	l.cdOffset, l.cdSize = uint32(offset), uint32(cdSize)
	l.size = int64(offset + cdSize + EOCDLen)
	return l, nil
}

// build emits the archive described by l. entries must be the same slice that was passed to plan.
func (l *layout) build(entries []Entry) []byte {
	out := make([]byte, 0, l.size)

	// the central directory is accumulated separately while the local region is emitted, then appended.
	cd := bytebufferpool.Get()
	defer bytebufferpool.Put(cd)

	for i, e := range entries {
		size := uint32(len(e.Content))

		out = LocalFileHeader{
			ReaderVersion:    zipVersion20,
			Method:           Store,
			CRC32:            l.crcs[i],
			CompressedSize:   size,
			UncompressedSize: size,
			Name:             e.Name,
		}.AppendBinary(out)
		out = append(out, e.Content...)

		cd.B = CentralDirectoryHeader{
			CreatorVersion:   zipVersion20,
			ReaderVersion:    zipVersion20,
			Method:           Store,
			CRC32:            l.crcs[i],
			CompressedSize:   size,
			UncompressedSize: size,
			Offset:           l.offsets[i],
			Name:             e.Name,
		}.AppendBinary(cd.B)
	}

	out = append(out, cd.B...)

	n := uint16(len(entries))
	return EOCDRecord{
		CDCountOnDisk: n,
		CDCount:       n,
		CDSize:        l.cdSize,
		CDOffset:      l.cdOffset,
	}.AppendBinary(out)
}
