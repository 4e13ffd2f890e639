package stored

import (
	"encoding/binary"
)

const (
	// LocalFileHeaderLen is the length of the fixed-size part of a local file header.
	LocalFileHeaderLen = 30
	// CentralDirectoryHeaderLen is the length of the fixed-size part of a central directory file header.
	CentralDirectoryHeaderLen = 46
	// EOCDLen is the length of an end of central directory record without comment.
	EOCDLen = 22

	localFileHeaderSignature = 0x04034b50
	cdFileHeaderSignature    = 0x02014b50
	eocdSignature            = 0x06054b50

	// zipVersion20 is the minimum version (2.0) that supports the stored method and directories.
	zipVersion20 = 20

	maxUint16 = 1<<16 - 1
	maxUint32 = 1<<32 - 1
)

// Store is the only compression method supported: the content is stored as-is.
const Store uint16 = 0

// LocalFileHeader models the local file header that precedes every entry's data.
//
// See https://en.wikipedia.org/wiki/ZIP_(file_format)#Local_file_header.
type LocalFileHeader struct {
	ReaderVersion    uint16
	Flags            uint16
	Method           uint16
	ModifiedTime     uint16
	ModifiedDate     uint16
	CRC32            uint32
	CompressedSize   uint32
	UncompressedSize uint32
	Name             string
}

// Len returns the encoded length of the header, including the file name.
func (h LocalFileHeader) Len() int {
	return LocalFileHeaderLen + len(h.Name)
}

// AppendBinary appends the little-endian encoding of the header to b.
//
// The name length is written as a uint16; callers must have validated it beforehand.
func (h LocalFileHeader) AppendBinary(b []byte) []byte {
	b = binary.LittleEndian.AppendUint32(b, localFileHeaderSignature)
	b = binary.LittleEndian.AppendUint16(b, h.ReaderVersion)
	b = binary.LittleEndian.AppendUint16(b, h.Flags)
	b = binary.LittleEndian.AppendUint16(b, h.Method)
	b = binary.LittleEndian.AppendUint16(b, h.ModifiedTime)
	b = binary.LittleEndian.AppendUint16(b, h.ModifiedDate)
	b = binary.LittleEndian.AppendUint32(b, h.CRC32)
	b = binary.LittleEndian.AppendUint32(b, h.CompressedSize)
	b = binary.LittleEndian.AppendUint32(b, h.UncompressedSize)
	b = binary.LittleEndian.AppendUint16(b, uint16(len(h.Name)))
	b = binary.LittleEndian.AppendUint16(b, 0) // extra field length
	return append(b, h.Name...)
}

// CentralDirectoryHeader models the central directory file header of an entry.
//
// See https://en.wikipedia.org/wiki/ZIP_(file_format)#Central_directory_file_header_(CDFH).
type CentralDirectoryHeader struct {
	CreatorVersion   uint16
	ReaderVersion    uint16
	Flags            uint16
	Method           uint16
	ModifiedTime     uint16
	ModifiedDate     uint16
	CRC32            uint32
	CompressedSize   uint32
	UncompressedSize uint32
	DiskNumber       uint16
	InternalAttrs    uint16
	ExternalAttrs    uint32
	// Offset is the relative offset of the local file header from the start of the archive.
	Offset uint32
	Name   string
}

// Len returns the encoded length of the header, including the file name.
func (h CentralDirectoryHeader) Len() int {
	return CentralDirectoryHeaderLen + len(h.Name)
}

// AppendBinary appends the little-endian encoding of the header to b.
//
// The name length is written as a uint16; callers must have validated it beforehand.
func (h CentralDirectoryHeader) AppendBinary(b []byte) []byte {
	b = binary.LittleEndian.AppendUint32(b, cdFileHeaderSignature)
	b = binary.LittleEndian.AppendUint16(b, h.CreatorVersion)
	b = binary.LittleEndian.AppendUint16(b, h.ReaderVersion)
	b = binary.LittleEndian.AppendUint16(b, h.Flags)
	b = binary.LittleEndian.AppendUint16(b, h.Method)
	b = binary.LittleEndian.AppendUint16(b, h.ModifiedTime)
	b = binary.LittleEndian.AppendUint16(b, h.ModifiedDate)
	b = binary.LittleEndian.AppendUint32(b, h.CRC32)
	b = binary.LittleEndian.AppendUint32(b, h.CompressedSize)
	b = binary.LittleEndian.AppendUint32(b, h.UncompressedSize)
	b = binary.LittleEndian.AppendUint16(b, uint16(len(h.Name)))
	b = binary.LittleEndian.AppendUint16(b, 0) // extra field length
	b = binary.LittleEndian.AppendUint16(b, 0) // file comment length
	b = binary.LittleEndian.AppendUint16(b, h.DiskNumber)
	b = binary.LittleEndian.AppendUint16(b, h.InternalAttrs)
	b = binary.LittleEndian.AppendUint32(b, h.ExternalAttrs)
	b = binary.LittleEndian.AppendUint32(b, h.Offset)
	return append(b, h.Name...)
}

// EOCDRecord models the end of central directory record of a ZIP file.
//
// See https://en.wikipedia.org/wiki/ZIP_(file_format)#End_of_central_directory_record_(EOCD).
type EOCDRecord struct {
	// DiskNumber is number of this disk.
	DiskNumber uint16
	// CDDiskOffset is disk where central directory starts.
	CDDiskOffset uint16
	// CDCountOnDisk is the number of central directory records on this disk.
	CDCountOnDisk uint16
	// CDCount is the total number of central directory records.
	CDCount uint16
	// CDSize is size of central directory in bytes.
	CDSize uint32
	// CDOffset is offset of start of central directory, relative to start of archive.
	CDOffset uint32
}

// AppendBinary appends the little-endian encoding of the record to b. The comment is always empty.
func (r EOCDRecord) AppendBinary(b []byte) []byte {
	b = binary.LittleEndian.AppendUint32(b, eocdSignature)
	b = binary.LittleEndian.AppendUint16(b, r.DiskNumber)
	b = binary.LittleEndian.AppendUint16(b, r.CDDiskOffset)
	b = binary.LittleEndian.AppendUint16(b, r.CDCountOnDisk)
	b = binary.LittleEndian.AppendUint16(b, r.CDCount)
	b = binary.LittleEndian.AppendUint32(b, r.CDSize)
	b = binary.LittleEndian.AppendUint32(b, r.CDOffset)
	return binary.LittleEndian.AppendUint16(b, 0) // comment length
}
