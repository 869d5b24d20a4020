// Package icydraw implements the IcyDraw v0 (legacy, base64-in-PNG-text)
// and v1 (PNG `icYD` chunks + zstd) container formats (spec §4.2.1,
// §4.2.2, §6.1). No repo in the example pack reads or writes arbitrary PNG
// ancillary chunks — they either consume stdlib image/png's public decode
// API as-is, or only touch pixel data — so the chunk container here is a
// thin stdlib-only reader/writer (encoding/binary, hash/crc32, bytes)
// built directly to the PNG chunk grammar, with image/png used only to
// produce the minimal valid IHDR/IDAT/IEND scaffold a real PNG viewer
// expects around the ancillary payload.
package icydraw

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"

	"github.com/stlalpha/textmode/internal/types"
)

var pngSignature = []byte{137, 80, 78, 71, 13, 10, 26, 10}

// Chunk is a raw PNG chunk: a 4-byte type tag and its payload.
type Chunk struct {
	Type string
	Data []byte
}

// readChunks parses a PNG byte stream into its raw chunk sequence,
// validating the signature and each chunk's CRC32.
func readChunks(data []byte) ([]Chunk, error) {
	if len(data) < 8 || !bytes.Equal(data[:8], pngSignature) {
		return nil, types.NewError(types.KindInvalidPNG, "missing PNG signature")
	}
	var chunks []Chunk
	off := 8
	for off+8 <= len(data) {
		length := binary.BigEndian.Uint32(data[off : off+4])
		typ := string(data[off+4 : off+8])
		start := off + 8
		end := start + int(length)
		if end+4 > len(data) {
			return nil, types.NewError(types.KindInvalidPNG, "chunk runs past end of file")
		}
		payload := data[start:end]
		wantCRC := binary.BigEndian.Uint32(data[end : end+4])
		gotCRC := crc32.ChecksumIEEE(data[off+4 : end])
		if wantCRC != gotCRC {
			return nil, types.NewError(types.KindInvalidPNG, "chunk CRC mismatch in "+typ)
		}
		chunks = append(chunks, Chunk{Type: typ, Data: payload})
		off = end + 4
		if typ == "IEND" {
			break
		}
	}
	return chunks, nil
}

// writeContainer assembles a minimal valid PNG (1x1 IHDR/IDAT scaffold)
// carrying aux as ancillary chunks inserted between IHDR and IDAT.
func writeContainer(aux []Chunk) ([]byte, error) {
	var scaffold bytes.Buffer
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	img.Set(0, 0, color.RGBA{A: 255})
	if err := png.Encode(&scaffold, img); err != nil {
		return nil, types.WrapError(types.KindInvalidPNG, "failed to build PNG scaffold", err)
	}
	base, err := readChunks(scaffold.Bytes())
	if err != nil {
		return nil, err
	}

	var out bytes.Buffer
	out.Write(pngSignature)
	for _, c := range base {
		if c.Type == "IHDR" {
			writeChunk(&out, c)
			for _, a := range aux {
				writeChunk(&out, a)
			}
			continue
		}
		writeChunk(&out, c)
	}
	return out.Bytes(), nil
}

func writeChunk(out *bytes.Buffer, c Chunk) {
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(c.Data)))
	out.Write(lenBuf[:])
	typeAndData := append([]byte(c.Type), c.Data...)
	out.Write(typeAndData)
	var crcBuf [4]byte
	binary.BigEndian.PutUint32(crcBuf[:], crc32.ChecksumIEEE(typeAndData))
	out.Write(crcBuf[:])
}
