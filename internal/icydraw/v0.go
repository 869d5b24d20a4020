package icydraw

import (
	"bytes"
	"compress/zlib"
	"encoding/base64"
	"encoding/binary"
	"io"
	"strconv"
	"strings"

	"github.com/stlalpha/textmode/internal/buffer"
	"github.com/stlalpha/textmode/internal/logging"
	"github.com/stlalpha/textmode/internal/sauce"
	"github.com/stlalpha/textmode/internal/types"
)

// LoadV0 decodes an IcyDraw v0 file: a PNG whose tEXt/zTXt chunks carry
// base64-encoded records (spec §4.2.1). Read-only compat, per spec §6.1 —
// there is no SaveV0; current saves always emit v1 (see v1.go).
func LoadV0(data []byte) (*buffer.TextBuffer, *sauce.Record, error) {
	chunks, err := readChunks(data)
	if err != nil {
		return nil, nil, err
	}

	buf := buffer.NewTextBuffer(80, 25)
	buf.SetTerminalBuffer(false)
	for len(buf.LayersMut()) > 0 {
		buf.RemoveLayer(0)
	}

	resumeY := make(map[int]int)
	var sauceRec *sauce.Record
	sawICED := false

	for _, c := range chunks {
		keyword, text, ok := splitTextChunk(c)
		if !ok {
			continue
		}
		decoded, err := base64.StdEncoding.DecodeString(text)
		if err != nil {
			continue // malformed base64 in an unrelated ancillary chunk; not our record
		}
		keepGoing, err := processV0Chunk(keyword, decoded, buf, resumeY, &sawICED, &sauceRec)
		if err != nil {
			return nil, nil, err
		}
		if !keepGoing {
			break
		}
	}

	if !sawICED {
		return nil, nil, types.NewError(types.KindIDMismatch, "not a valid IcyDraw v0 file")
	}
	return buf, sauceRec, nil
}

// splitTextChunk extracts (keyword, text) from a tEXt or zTXt chunk.
func splitTextChunk(c Chunk) (keyword, text string, ok bool) {
	switch c.Type {
	case "tEXt":
		i := bytes.IndexByte(c.Data, 0)
		if i < 0 {
			return "", "", false
		}
		return string(c.Data[:i]), string(c.Data[i+1:]), true
	case "zTXt":
		i := bytes.IndexByte(c.Data, 0)
		if i < 0 || i+1 >= len(c.Data) {
			return "", "", false
		}
		keyword = string(c.Data[:i])
		compressed := c.Data[i+2:] // skip compression-method byte
		r, err := zlib.NewReader(bytes.NewReader(compressed))
		if err != nil {
			return "", "", false
		}
		defer r.Close()
		out, err := io.ReadAll(r)
		if err != nil {
			return "", "", false
		}
		return keyword, string(out), true
	default:
		return "", "", false
	}
}

func processV0Chunk(keyword string, bts []byte, buf *buffer.TextBuffer, resumeY map[int]int, sawICED *bool, sauceOut **sauce.Record) (bool, error) {
	switch {
	case keyword == "END":
		return false, nil

	case keyword == "ICED":
		if len(bts) < 2 {
			return false, types.NewError(types.KindFileTooShort, "ICED header too small")
		}
		version := binary.LittleEndian.Uint16(bts[0:2])
		if version != 0 {
			return true, nil // not our version; let caller treat as unrecognized
		}
		if len(bts) != 19 {
			return false, types.NewError(types.KindUnsupportedFormat, "unsupported ICED v0 header size")
		}
		*sawICED = true
		o := 2
		o += 4 // compression placeholder + sixel_format + reserved, unused in v0
		bufferType := bts[o]
		o++
		iceMode := bts[o]
		o++
		o++ // legacy palette_mode byte
		fontMode := bts[o]
		o++
		width := binary.LittleEndian.Uint32(bts[o : o+4])
		o += 4
		height := binary.LittleEndian.Uint32(bts[o : o+4])

		buf.SetBufferType(bufferTypeFromByte(bufferType))
		buf.SetIceMode(iceModeFromByte(iceMode))
		buf.SetFontMode(fontModeFromByte(fontMode))
		_ = buf.SetSize(types.Size{Width: int(width), Height: int(height)})

	case keyword == "PALETTE":
		colors, err := decodePaletteBytes(bts)
		if err != nil {
			return false, err
		}
		buf.PaletteMut().Colors = colors

	case keyword == "SAUCE":
		rec, _ := sauce.Parse(bts)
		if rec != nil {
			*sauceOut = rec
			_ = buf.ApplySauce(rec.Width(), rec.Height(), rec.HasICEColors(), rec.FontName)
		}

	case strings.HasPrefix(keyword, "FONT_"):
		slot, err := strconv.Atoi(strings.TrimPrefix(keyword, "FONT_"))
		if err != nil {
			return false, types.WrapError(types.KindUnsupportedFormat, "invalid font slot", err)
		}
		font, err := decodeFontBytes(bts)
		if err != nil {
			return false, err
		}
		buf.SetFont(uint8(slot), font)

	case strings.HasPrefix(keyword, "LAYER_"):
		return true, processV0LayerChunk(keyword, bts, buf, resumeY)

	default:
		// Unknown chunk kind; skip per spec §6.1's "unknown keywords logged
		// and skipped" rule (applied here to v0 as well as v1).
		logging.Debug("icydraw: skipping unknown v0 chunk %q", keyword)
	}
	return true, nil
}

func processV0LayerChunk(keyword string, bts []byte, buf *buffer.TextBuffer, resumeY map[int]int) error {
	rest := strings.TrimPrefix(keyword, "LAYER_")
	if idx := strings.IndexByte(rest, '~'); idx >= 0 {
		layerNum, err := strconv.Atoi(rest[:idx])
		if err != nil {
			return types.WrapError(types.KindUnsupportedFormat, "invalid layer continuation index", err)
		}
		layers := buf.LayersMut()
		if layerNum < 0 || layerNum >= len(layers) {
			return types.NewError(types.KindUnsupportedFormat, "layer continuation refers to missing layer")
		}
		layer := layers[layerNum]
		startY := resumeY[layerNum]
		_, y, err := decodeCellRun(bts, layer, layer.Width, layer.Height, startY)
		if err != nil {
			return err
		}
		if y >= layer.Height {
			delete(resumeY, layerNum)
		} else {
			resumeY[layerNum] = y
		}
		return nil
	}

	layerNum, err := strconv.Atoi(rest)
	if err != nil {
		return types.WrapError(types.KindUnsupportedFormat, "invalid layer index", err)
	}
	if layerNum != len(buf.LayersMut()) {
		return types.NewError(types.KindUnsupportedFormat, "unexpected layer index")
	}

	o := 0
	title, used, err := readUTF8String(bts[o:])
	if err != nil {
		return err
	}
	o += used
	if len(bts) < o+1 {
		return types.NewError(types.KindFileTooShort, "layer chunk truncated at role")
	}
	role := bts[o]
	o++
	o += 4 // unused
	if len(bts) < o+1 {
		return types.NewError(types.KindFileTooShort, "layer chunk truncated at mode")
	}
	o++ // composition mode; Normal/Chars/Attributes handling lives in buffer.CompositionMode on save
	if len(bts) < o+4 {
		return types.NewError(types.KindFileTooShort, "layer chunk truncated at color")
	}
	o += 4 // rgba fill color, unused in this read path
	if len(bts) < o+4+1 {
		return types.NewError(types.KindFileTooShort, "layer chunk truncated at flags")
	}
	flags := binary.LittleEndian.Uint32(bts[o : o+4])
	o += 4
	o++ // transparency byte, unused
	if len(bts) < o+4+4+4+4+2+8 {
		return types.NewError(types.KindFileTooShort, "layer chunk truncated at geometry")
	}
	xOff := int32(binary.LittleEndian.Uint32(bts[o : o+4]))
	o += 4
	yOff := int32(binary.LittleEndian.Uint32(bts[o : o+4]))
	o += 4
	width := int32(binary.LittleEndian.Uint32(bts[o : o+4]))
	o += 4
	height := int32(binary.LittleEndian.Uint32(bts[o : o+4]))
	o += 4
	o += 2 // unused legacy default_font_page
	length := binary.LittleEndian.Uint64(bts[o : o+8])
	o += 8

	layer := buffer.NewLayer(title, int(width), int(height))
	layer.Offset = types.Position{X: int(xOff), Y: int(yOff)}
	layer.Visible = flags&0b0001 != 0
	layer.PositionLocked = flags&0b0010 != 0
	layer.Locked = flags&0b0100 != 0
	layer.HasAlpha = flags&0b1000 != 0
	layer.AlphaLocked = flags&0b1_0000 != 0

	if role == 1 {
		if len(bts) < o+16 {
			return types.NewError(types.KindFileTooShort, "sixel layer chunk truncated at header")
		}
		sw := int32(binary.LittleEndian.Uint32(bts[o : o+4]))
		o += 4
		sh := int32(binary.LittleEndian.Uint32(bts[o : o+4]))
		o += 4
		vScale := int32(binary.LittleEndian.Uint32(bts[o : o+4]))
		o += 4
		hScale := int32(binary.LittleEndian.Uint32(bts[o : o+4]))
		o += 4
		if uint64(len(bts)) < uint64(o)+length {
			return types.NewError(types.KindFileTooShort, "sixel layer pixel data truncated")
		}
		layer.Role = buffer.RoleImage
		layer.Sixels = append(layer.Sixels, buffer.Sixel{
			Pixels: append([]byte(nil), bts[o:uint64(o)+length]...),
			Width:  int(sw), Height: int(sh),
			VScale: float64(vScale), HScale: float64(hScale),
		})
		buf.AddLayer(layer)
		return nil
	}

	if uint64(len(bts)) < uint64(o)+length {
		return types.NewError(types.KindFileTooShort, "layer cell data truncated")
	}
	_, y, err := decodeCellRun(bts[o:], layer, int(width), int(height), 0)
	if err != nil {
		return err
	}
	buf.AddLayer(layer)
	if y < int(height) {
		resumeY[layerNum] = y
	}
	return nil
}

func readUTF8String(data []byte) (string, int, error) {
	if len(data) < 4 {
		return "", 0, types.NewError(types.KindOutOfBounds, "string length header truncated")
	}
	size := binary.LittleEndian.Uint32(data[0:4])
	end := 4 + uint64(size)
	if uint64(len(data)) < end {
		return "", 0, types.NewError(types.KindOutOfBounds, "string payload truncated")
	}
	return string(data[4:end]), int(end), nil
}
