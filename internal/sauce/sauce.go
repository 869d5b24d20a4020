// Package sauce parses and serializes SAUCE (Standard Architecture for
// Universal Comment Extensions) trailers (spec §3.6, §4.2.3, §6.1).
//
// The record layout and ParseSAUCE's EOF-marker/comment-block handling are
// grounded on the SAUCE reader retrieved from notepid/twilight_bbs
// (other_examples/5471d929_notepid-twilight_bbs__internal-ansi-sauce.go.go),
// which is itself the same 128-byte layout the teacher's
// stlalpha-vision3/internal/ansi/ansi.go stripSAUCE function special-cases
// (magic check + backward EOF-marker search) without fully decoding.
package sauce

import (
	"bytes"
	"encoding/binary"
	"strings"

	"github.com/stlalpha/textmode/internal/logging"
)

const (
	idString        = "SAUCE"
	commentIDString = "COMNT"
	recordSize      = 128
	eofMarker       = 0x1A
)

// DataType and FileType constants relevant to the art formats this engine
// reads (spec §3.6). Not exhaustive of the full SAUCE registry.
const (
	DataTypeCharacter = 1
	DataTypeBinary    = 5
	DataTypeNone      = 0
)

// Capability classifies a SAUCE data type for loader dispatch (spec §4.2.3
// "validate capabilities (Character | Binary | None)").
type Capability int

const (
	CapNone Capability = iota
	CapCharacter
	CapBinary
)

// Flags bits (spec glossary: ice colors, letter spacing, aspect, font).
const (
	FlagICEColors = 0x01
)

// Record is a parsed SAUCE trailer.
type Record struct {
	Version      string
	Title        string
	Author       string
	Group        string
	Date         string
	FileSize     uint32
	DataType     byte
	FileType     byte
	TInfo1       uint16 // width for ANSI/ASCII
	TInfo2       uint16 // height
	TInfo3       uint16
	TInfo4       uint16
	Comments     byte
	Flags        byte
	FontName     string // SAUCE 00.5 TInfoS
	CommentLines []string
}

// Width returns the declared width, defaulting to 80.
func (s *Record) Width() int {
	if s.TInfo1 > 0 {
		return int(s.TInfo1)
	}
	return 80
}

// Height returns the declared height (display line count; may exceed the
// file's actual row count for streamed ANSI, spec §3.1).
func (s *Record) Height() int { return int(s.TInfo2) }

// HasICEColors reports the ice-colors flag.
func (s *Record) HasICEColors() bool { return s.Flags&FlagICEColors != 0 }

// LetterSpacing returns 0 (legacy), 1 (8px) or 2 (9px).
func (s *Record) LetterSpacing() int { return int((s.Flags >> 1) & 0x03) }

// AspectRatio returns 0 (legacy), 1 (stretch) or 2 (square).
func (s *Record) AspectRatio() int { return int((s.Flags >> 3) & 0x03) }

// Capability classifies DataType into the loader-dispatch bucket spec
// §4.2.3 names.
func (s *Record) Capability() Capability {
	switch s.DataType {
	case DataTypeCharacter:
		return CapCharacter
	case DataTypeBinary:
		return CapBinary
	default:
		return CapNone
	}
}

// Parse extracts a SAUCE record from the end of data, returning the record
// and the content with the SAUCE block (and preceding EOF marker, if any)
// stripped. If no SAUCE record is present, Parse returns (nil, data)
// unchanged.
func Parse(data []byte) (*Record, []byte) {
	if len(data) < recordSize {
		return nil, data
	}
	rec := data[len(data)-recordSize:]
	if !bytes.HasPrefix(rec, []byte(idString)) {
		return nil, data
	}

	s := &Record{
		Version:  trim(rec[5:7]),
		Title:    trim(rec[7:42]),
		Author:   trim(rec[42:62]),
		Group:    trim(rec[62:82]),
		Date:     trim(rec[82:90]),
		DataType: rec[94],
		FileType: rec[95],
		Comments: rec[104],
		Flags:    rec[105],
	}
	s.FileSize = binary.LittleEndian.Uint32(rec[90:94])
	s.TInfo1 = binary.LittleEndian.Uint16(rec[96:98])
	s.TInfo2 = binary.LittleEndian.Uint16(rec[98:100])
	s.TInfo3 = binary.LittleEndian.Uint16(rec[100:102])
	s.TInfo4 = binary.LittleEndian.Uint16(rec[102:104])
	s.FontName = trim(rec[106:128])

	contentEnd := len(data) - recordSize

	if s.Comments > 0 {
		commentBlockSize := 5 + int(s.Comments)*64
		commentStart := contentEnd - commentBlockSize
		if commentStart >= 0 {
			block := data[commentStart:contentEnd]
			if bytes.HasPrefix(block, []byte(commentIDString)) {
				s.CommentLines = make([]string, s.Comments)
				for i := 0; i < int(s.Comments); i++ {
					off := 5 + i*64
					end := off + 64
					if end > len(block) {
						break
					}
					s.CommentLines[i] = trim(block[off:end])
				}
				contentEnd = commentStart
			}
		}
	}

	if contentEnd > 0 && data[contentEnd-1] == eofMarker {
		contentEnd--
	}

	logging.Debug("sauce: parsed record title=%q %dx%d comments=%d", s.Title, s.Width(), s.Height(), s.Comments)
	return s, data[:contentEnd]
}

// Strip removes a SAUCE record if present, otherwise returns data
// unchanged. strip_sauce(strip_sauce(x)) == strip_sauce(x) holds because a
// second Strip call finds no "SAUCE" prefix at the new end of the slice.
func Strip(data []byte) []byte {
	_, stripped := Parse(data)
	return stripped
}

// ToBytes appends the EOF marker, then (if CommentLines is non-empty) the
// COMNT block, then this record's 128-byte trailer to content, returning
// the combined byte slice. Savers call this verbatim with a
// caller-provided record (spec §4.2.3, "Saver: append SAUCE trailer
// verbatim").
func (s *Record) ToBytes(content []byte) []byte {
	out := append([]byte(nil), content...)
	out = append(out, eofMarker)

	if len(s.CommentLines) > 0 {
		out = append(out, []byte(commentIDString)...)
		for _, line := range s.CommentLines {
			out = append(out, pad(line, 64)...)
		}
	}

	rec := make([]byte, recordSize)
	copy(rec[0:5], idString)
	copy(rec[5:7], pad(s.Version, 2))
	copy(rec[7:42], pad(s.Title, 35))
	copy(rec[42:62], pad(s.Author, 20))
	copy(rec[62:82], pad(s.Group, 20))
	copy(rec[82:90], pad(s.Date, 8))
	binary.LittleEndian.PutUint32(rec[90:94], s.FileSize)
	rec[94] = s.DataType
	rec[95] = s.FileType
	binary.LittleEndian.PutUint16(rec[96:98], s.TInfo1)
	binary.LittleEndian.PutUint16(rec[98:100], s.TInfo2)
	binary.LittleEndian.PutUint16(rec[100:102], s.TInfo3)
	binary.LittleEndian.PutUint16(rec[102:104], s.TInfo4)
	rec[104] = byte(len(s.CommentLines))
	rec[105] = s.Flags
	copy(rec[106:128], pad(s.FontName, 22))

	return append(out, rec...)
}

func trim(b []byte) string {
	return strings.TrimRight(string(b), "\x00 ")
}

func pad(s string, n int) []byte {
	b := make([]byte, n)
	copy(b, s)
	for i := len(s); i < n && i >= 0; i++ {
		b[i] = ' '
	}
	return b
}
