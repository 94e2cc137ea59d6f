package format

var (
	// REGFSignature is the four-byte signature at the start of every hive file.
	REGFSignature = []byte{'r', 'e', 'g', 'f'}
	// HBINSignature is the four-byte signature at the beginning of each hive bin.
	HBINSignature = []byte{'h', 'b', 'i', 'n'}

	NKSignature = []byte{'n', 'k'}
	VKSignature = []byte{'v', 'k'}
	LFSignature = []byte{'l', 'f'}
	LHSignature = []byte{'l', 'h'}
	LISignature = []byte{'l', 'i'}
	RISignature = []byte{'r', 'i'}
	DBSignature = []byte{'d', 'b'}
)

const (
	// HeaderSize is the size of the REGF base block; cell offsets are
	// relative to the first byte after it.
	HeaderSize     = 0x1000
	HBINHeaderSize = 0x20
	HBINAlignment  = 0x1000
	CellHeaderSize = 4
	SignatureSize  = 2

	// InvalidOffset marks unused offset fields.
	InvalidOffset = 0xFFFFFFFF
)

// REGF header field offsets.
const (
	REGFPrimarySeqOffset   = 0x004
	REGFSecondarySeqOffset = 0x008
	REGFTimeStampOffset    = 0x00C
	REGFMajorVersionOffset = 0x014
	REGFMinorVersionOffset = 0x018
	REGFTypeOffset         = 0x01C
	REGFRootCellOffset     = 0x024
	REGFDataSizeOffset     = 0x028
	REGFFileNameOffset     = 0x030
	REGFFileNameSize       = 64
)

// HBIN header field offsets.
const (
	HBINFileOffsetField = 0x04
	HBINSizeOffset      = 0x08
)

// NK field offsets.
const (
	NKFlagsOffset        = 0x02
	NKLastWriteOffset    = 0x04
	NKParentOffset       = 0x10
	NKSubkeyCountOffset  = 0x14
	NKSubkeyListOffset   = 0x1C
	NKValueCountOffset   = 0x24
	NKValueListOffset    = 0x28
	NKSecurityOffset     = 0x2C
	NKClassNameOffset    = 0x30
	NKNameLenOffset      = 0x48
	NKClassLenOffset     = 0x4A
	NKNameOffset         = 0x4C
	NKMinSize            = NKNameOffset
	NKFlagCompressedName = 0x20
	NKFlagRootKey        = 0x04
)

// VK field offsets.
const (
	VKNameLenOffset  = 0x02
	VKDataLenOffset  = 0x04
	VKDataOffOffset  = 0x08
	VKTypeOffset     = 0x0C
	VKFlagsOffset    = 0x10
	VKNameOffset     = 0x14
	VKMinSize        = VKNameOffset
	VKFlagASCIIName  = 0x0001
	VKDataInlineBit  = 0x80000000
	VKDataLengthMask = 0x7FFFFFFF
)

// Subkey/value list layout.
const (
	ListHeaderSize  = 4
	OffsetFieldSize = 4
	LFEntrySize     = 8
)

// DB (big data) layout.
const (
	DBNumBlocksOffset = 0x02
	DBBlocklistOffset = 0x04
	DBMinSize         = 0x08
	// DBBlockDataSize is the usable payload per big-data segment.
	DBBlockDataSize = 16344
)

// Sanity limits applied while decoding untrusted input.
const (
	MaxSubkeyCount  = 1 << 24
	MaxValueCount   = 1 << 24
	MaxNameLen      = 0xFFFF
	MaxValueDataLen = 1 << 30
)
