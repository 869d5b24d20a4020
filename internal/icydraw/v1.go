package icydraw

import (
	"encoding/binary"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"

	"github.com/stlalpha/textmode/internal/buffer"
	"github.com/stlalpha/textmode/internal/logging"
	"github.com/stlalpha/textmode/internal/sauce"
	"github.com/stlalpha/textmode/internal/types"
)

const (
	v1CompressionNone = 0
	v1CompressionZstd = 2
)

// iceFontModer is satisfied by *buffer.TextBuffer (and any other Screen
// implementation that tracks ice/font mode); it isn't part of the Screen
// interface itself since EditState's ice/font mode lives on the
// underlying buffer it wraps.
type iceFontModer interface {
	IceMode() buffer.IceMode
	FontMode() buffer.FontMode
}

// icedV1 mirrors spec §4.2.2's ICED record fields. font_cell_w/h are
// parsed but not kept: saves always write 8 and 16, and this engine
// derives actual glyph dimensions from the font table, not this header.
type icedV1 struct {
	compression             byte
	bufferType              byte
	iceMode                 byte
	fontMode                byte
	width, height           uint32
	fontCellW, fontCellH    byte
}

func (h icedV1) encode() []byte {
	out := make([]byte, 17)
	binary.LittleEndian.PutUint16(out[0:2], 1)
	out[2] = h.compression
	out[3] = 0 // reserved
	out[4] = h.bufferType
	out[5] = h.iceMode
	out[6] = h.fontMode
	binary.LittleEndian.PutUint32(out[7:11], h.width)
	binary.LittleEndian.PutUint32(out[11:15], h.height)
	out[15] = h.fontCellW
	out[16] = h.fontCellH
	return out
}

func decodeICEDv1(data []byte) (icedV1, error) {
	if len(data) < 17 {
		return icedV1{}, types.NewError(types.KindFileTooShort, "ICED v1 header too small")
	}
	version := binary.LittleEndian.Uint16(data[0:2])
	if version > 1 {
		return icedV1{}, types.NewError(types.KindUnsupportedFormat, "icydraw version newer than this engine supports")
	}
	return icedV1{
		compression: data[2],
		bufferType:  data[4],
		iceMode:     data[5],
		fontMode:    data[6],
		width:       binary.LittleEndian.Uint32(data[7:11]),
		height:      binary.LittleEndian.Uint32(data[11:15]),
		fontCellW:   data[15],
		fontCellH:   data[16],
	}, nil
}

func zstdCompress(data []byte) ([]byte, error) {
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, types.WrapError(types.KindUnsupportedFormat, "zstd encoder init failed", err)
	}
	defer enc.Close()
	return enc.EncodeAll(data, make([]byte, 0, len(data))), nil
}

func zstdDecompress(data []byte) ([]byte, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, types.WrapError(types.KindUnsupportedFormat, "zstd decoder init failed", err)
	}
	defer dec.Close()
	out, err := dec.DecodeAll(data, nil)
	if err != nil {
		return nil, types.WrapError(types.KindUnsupportedFormat, "zstd decompression failed", err)
	}
	return out, nil
}

// icYDChunkData packs one logical record into the icYD chunk body format
// from spec §4.2.2: {version_byte=1, keyword_len u16 LE, keyword, data_len
// u32 LE, data}.
func icYDChunkData(keyword string, payload []byte) []byte {
	out := make([]byte, 0, 1+2+len(keyword)+4+len(payload))
	out = append(out, 1)
	out = append(out, byte(len(keyword)), byte(len(keyword)>>8))
	out = append(out, []byte(keyword)...)
	out = appendU32LE(out, uint32(len(payload)))
	out = append(out, payload...)
	return out
}

func parseICYDChunk(data []byte) (keyword string, payload []byte, ok bool) {
	if len(data) < 1+2 || data[0] != 1 {
		return "", nil, false
	}
	klen := int(data[1]) | int(data[2])<<8
	off := 3
	if len(data) < off+klen+4 {
		return "", nil, false
	}
	keyword = string(data[off : off+klen])
	off += klen
	dlen := int(binary.LittleEndian.Uint32(data[off : off+4]))
	off += 4
	if len(data) < off+dlen {
		return "", nil, false
	}
	return keyword, data[off : off+dlen], true
}

// LoadV1 decodes an IcyDraw v1 file: a PNG carrying `icYD` chunks, each
// wrapping one keyworded record per spec §4.2.2/§6.1.
func LoadV1(data []byte) (*buffer.TextBuffer, *sauce.Record, error) {
	chunks, err := readChunks(data)
	if err != nil {
		return nil, nil, err
	}

	buf := buffer.NewTextBuffer(80, 25)
	buf.SetTerminalBuffer(false)
	for len(buf.LayersMut()) > 0 {
		buf.RemoveLayer(0)
	}

	var hdr icedV1
	sawICED := false
	var sauceRec *sauce.Record

chunkLoop:
	for _, c := range chunks {
		if c.Type != "icYD" {
			continue
		}
		keyword, payload, ok := parseICYDChunk(c.Data)
		if !ok {
			continue
		}
		switch {
		case keyword == "END":
			break chunkLoop
		case keyword == "ICED":
			hdr, err = decodeICEDv1(payload)
			if err != nil {
				return nil, nil, err
			}
			sawICED = true
			buf.SetBufferType(bufferTypeFromByte(hdr.bufferType))
			buf.SetIceMode(iceModeFromByte(hdr.iceMode))
			buf.SetFontMode(fontModeFromByte(hdr.fontMode))
			_ = buf.SetSize(types.Size{Width: int(hdr.width), Height: int(hdr.height)})

		case keyword == "PALETTE":
			colors, _ := decodePaletteBytes(payload)
			buf.PaletteMut().Colors = colors

		case keyword == "SAUCE":
			rec, _ := sauce.Parse(payload)
			if rec != nil {
				sauceRec = rec
				_ = buf.ApplySauce(rec.Width(), rec.Height(), rec.HasICEColors(), rec.FontName)
			}

		case strings.HasPrefix(keyword, "FONT_"):
			slot, convErr := strconv.Atoi(strings.TrimPrefix(keyword, "FONT_"))
			if convErr != nil {
				return nil, nil, types.WrapError(types.KindUnsupportedFormat, "invalid font slot", convErr)
			}
			font, fErr := decodeFontBytes(payload)
			if fErr != nil {
				return nil, nil, fErr
			}
			buf.SetFont(uint8(slot), font)

		case keyword == "LAYER":
			if lErr := decodeV1Layer(payload, hdr, buf); lErr != nil {
				return nil, nil, lErr
			}

		case keyword == "TAG":
			// Tag restoration uses the same shape written by SaveV1; unknown
			// historical variants are skipped per spec §6.1.
			decodeV1Tag(payload, buf)

		case keyword == "SIXEL":
			// Always immediately follows the LAYER chunk it belongs to
			// (encodeV1Layer emits them as a pair), so attach it to the
			// most recently added layer.
			decodeV1Sixel(payload, buf)

		default:
			// Unknown keyword (a future extension): logged and skipped
			// per §6.1.
			logging.Debug("icydraw: skipping unknown v1 record %q", keyword)
		}
	}

	if !sawICED {
		return nil, nil, types.NewError(types.KindIDMismatch, "not a valid IcyDraw v1 file")
	}
	return buf, sauceRec, nil
}

func decodeV1Layer(payload []byte, hdr icedV1, buf *buffer.TextBuffer) error {
	o := 0
	title, used, err := readUTF8String(payload[o:])
	if err != nil {
		return err
	}
	o += used
	if len(payload) < o+1+4+4+4+4+4 {
		return types.NewError(types.KindFileTooShort, "v1 layer header truncated")
	}
	role := payload[o]
	o++
	flags := binary.LittleEndian.Uint32(payload[o : o+4])
	o += 4
	xOff := int32(binary.LittleEndian.Uint32(payload[o : o+4]))
	o += 4
	yOff := int32(binary.LittleEndian.Uint32(payload[o : o+4]))
	o += 4
	width := binary.LittleEndian.Uint32(payload[o : o+4])
	o += 4
	height := binary.LittleEndian.Uint32(payload[o : o+4])
	o += 4

	layer := buffer.NewLayer(title, int(width), int(height))
	layer.Offset = types.Position{X: int(xOff), Y: int(yOff)}
	layer.Visible = flags&0b0001 != 0
	layer.PositionLocked = flags&0b0010 != 0
	layer.Locked = flags&0b0100 != 0
	layer.HasAlpha = flags&0b1000 != 0
	layer.AlphaLocked = flags&0b1_0000 != 0

	if role == 1 {
		layer.Role = buffer.RoleImage
		buf.AddLayer(layer)
		return nil // pixel payload arrives in a following SIXEL chunk
	}

	cellBytes := payload[o:]
	if hdr.compression == v1CompressionZstd {
		cellBytes, err = zstdDecompress(cellBytes)
		if err != nil {
			return err
		}
	}
	if _, _, err := decodeCellRun(cellBytes, layer, int(width), int(height), 0); err != nil {
		return err
	}
	buf.AddLayer(layer)
	return nil
}

// decodeV1Sixel parses a SIXEL chunk payload written by encodeV1Layer
// (width/height/vscale/hscale as u32 LE, then raw RGBA pixels) and
// attaches it to the most recently added layer.
func decodeV1Sixel(payload []byte, buf *buffer.TextBuffer) {
	if len(payload) < 16 {
		return
	}
	layers := buf.LayersMut()
	if len(layers) == 0 {
		return
	}
	width := int32(binary.LittleEndian.Uint32(payload[0:4]))
	height := int32(binary.LittleEndian.Uint32(payload[4:8]))
	vscale := int32(binary.LittleEndian.Uint32(payload[8:12]))
	hscale := int32(binary.LittleEndian.Uint32(payload[12:16]))
	pixels := append([]byte(nil), payload[16:]...)

	target := layers[len(layers)-1]
	target.Sixels = append(target.Sixels, buffer.Sixel{
		Pixels: pixels,
		Width:  int(width),
		Height: int(height),
		VScale: float64(vscale),
		HScale: float64(hscale),
	})
}

func decodeV1Tag(payload []byte, buf *buffer.TextBuffer) {
	o := 0
	preview, used, err := readUTF8String(payload[o:])
	if err != nil {
		return
	}
	o += used
	replacement, used, err := readUTF8String(payload[o:])
	if err != nil {
		return
	}
	o += used
	if len(payload) < o+4+4+2+1+1 {
		return
	}
	x := int32(binary.LittleEndian.Uint32(payload[o : o+4]))
	o += 4
	y := int32(binary.LittleEndian.Uint32(payload[o : o+4]))
	o += 4
	length := binary.LittleEndian.Uint16(payload[o : o+2])
	o += 2
	alignment := payload[o]
	o++
	placement := payload[o]

	t := buffer.NewTag(preview, replacement, types.Position{X: int(x), Y: int(y)}, int(length))
	if alignment <= 2 {
		t.Alignment = buffer.TagAlignment(alignment)
	}
	if placement <= 1 {
		t.Placement = buffer.TagPlacement(placement)
	}
	buf.AddTag(t)
}

// SaveV1 encodes scr as an IcyDraw v1 PNG. Layer cell data is zstd-framed
// when useZstd is true (spec §4.2.2 compression=2); sixel/raster layers
// emit a companion SIXEL chunk that is never compressed.
func SaveV1(scr buffer.Screen, useZstd bool, rec *sauce.Record) ([]byte, error) {
	d := scr.Dimensions()
	compression := byte(v1CompressionNone)
	if useZstd {
		compression = v1CompressionZstd
	}
	var iceMode, fontMode byte
	if ifm, ok := scr.(iceFontModer); ok {
		iceMode = iceModeToByte(ifm.IceMode())
		fontMode = fontModeToByte(ifm.FontMode())
	}
	hdr := icedV1{
		compression: compression,
		bufferType:  bufferTypeToByte(scr.BufferType()),
		iceMode:     iceMode,
		fontMode:    fontMode,
		width:       uint32(d.Width),
		height:      uint32(d.Height),
		fontCellW:   8,
		fontCellH:   16,
	}

	var chunks []Chunk
	chunks = append(chunks, Chunk{Type: "icYD", Data: icYDChunkData("ICED", hdr.encode())})

	if pal := scr.Palette(); pal != nil {
		chunks = append(chunks, Chunk{Type: "icYD", Data: icYDChunkData("PALETTE", encodePaletteBytes(pal))})
	}

	scr.FontIter(func(slot uint8, f *buffer.BitFont) {
		chunks = append(chunks, Chunk{Type: "icYD", Data: icYDChunkData("FONT_"+strconv.Itoa(int(slot)), encodeFontBytes(f))})
	})

	if editable, ok := scr.(buffer.Editable); ok {
		for _, layer := range editable.LayersMut() {
			layerChunk, sixelChunk, err := encodeV1Layer(layer, compression)
			if err != nil {
				return nil, err
			}
			chunks = append(chunks, layerChunk)
			if sixelChunk != nil {
				chunks = append(chunks, *sixelChunk)
			}
		}
	}

	for _, tag := range scr.Tags() {
		chunks = append(chunks, Chunk{Type: "icYD", Data: icYDChunkData("TAG", encodeV1Tag(tag))})
	}

	if rec != nil {
		chunks = append(chunks, Chunk{Type: "icYD", Data: icYDChunkData("SAUCE", rec.ToBytes(nil))})
	}

	chunks = append(chunks, Chunk{Type: "icYD", Data: icYDChunkData("END", nil)})
	return writeContainer(chunks)
}

func encodeV1Layer(layer *buffer.Layer, compression byte) (Chunk, *Chunk, error) {
	out := appendUTF8String(nil, layer.Title)
	role := byte(0)
	if layer.Role == buffer.RoleImage {
		role = 1
	}
	out = append(out, role)

	var flags uint32
	if layer.Visible {
		flags |= 0b0001
	}
	if layer.PositionLocked {
		flags |= 0b0010
	}
	if layer.Locked {
		flags |= 0b0100
	}
	if layer.HasAlpha {
		flags |= 0b1000
	}
	if layer.AlphaLocked {
		flags |= 0b1_0000
	}
	out = appendU32LE(out, flags)
	out = appendU32LE(out, uint32(int32(layer.Offset.X)))
	out = appendU32LE(out, uint32(int32(layer.Offset.Y)))
	out = appendU32LE(out, uint32(layer.Width))
	out = appendU32LE(out, uint32(layer.Height))

	if layer.Role == buffer.RoleImage {
		layerChunk := Chunk{Type: "icYD", Data: icYDChunkData("LAYER", out)}
		var sixelChunk *Chunk
		if len(layer.Sixels) > 0 {
			s := layer.Sixels[0]
			payload := make([]byte, 0, 16+len(s.Pixels))
			payload = appendU32LE(payload, uint32(int32(s.Width)))
			payload = appendU32LE(payload, uint32(int32(s.Height)))
			payload = appendU32LE(payload, uint32(int32(s.VScale)))
			payload = appendU32LE(payload, uint32(int32(s.HScale)))
			payload = append(payload, s.Pixels...)
			c := Chunk{Type: "icYD", Data: icYDChunkData("SIXEL", payload)}
			sixelChunk = &c
		}
		return layerChunk, sixelChunk, nil
	}

	cellBytes := encodeCellRun(layer, layer.Width, layer.Height)
	if compression == v1CompressionZstd {
		compressed, err := zstdCompress(cellBytes)
		if err != nil {
			return Chunk{}, nil, err
		}
		cellBytes = compressed
	}
	out = append(out, cellBytes...)
	return Chunk{Type: "icYD", Data: icYDChunkData("LAYER", out)}, nil, nil
}

func encodeV1Tag(t *buffer.Tag) []byte {
	out := appendUTF8String(nil, t.Preview)
	out = appendUTF8String(out, t.Replacement)
	out = appendU32LE(out, uint32(int32(t.Position.X)))
	out = appendU32LE(out, uint32(int32(t.Position.Y)))
	out = append(out, byte(t.Length), byte(t.Length>>8))
	out = append(out, byte(t.Alignment), byte(t.Placement))
	return out
}
