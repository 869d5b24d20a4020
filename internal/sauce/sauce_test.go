package sauce

import (
	"bytes"
	"testing"
)

func TestParseNoSauce(t *testing.T) {
	data := []byte("Hello, World!\x1B[1;31mRed Text\x1B[0m")
	rec, content := Parse(data)
	if rec != nil {
		t.Fatalf("expected no record, got %+v", rec)
	}
	if !bytes.Equal(content, data) {
		t.Fatalf("content mutated when no SAUCE present")
	}
}

func TestParseTooShort(t *testing.T) {
	data := []byte("Small file")
	rec, content := Parse(data)
	if rec != nil || !bytes.Equal(content, data) {
		t.Fatalf("short file should be returned unchanged")
	}
}

func buildSauceFile(title string, width, height uint16, ice bool) []byte {
	content := []byte("ANSI art content here\r\n")
	rec := &Record{
		Version: "00", Title: title, Author: "tester", Group: "grp", Date: "20260101",
		DataType: DataTypeCharacter, FileType: 1, TInfo1: width, TInfo2: height,
	}
	if ice {
		rec.Flags |= FlagICEColors
	}
	return rec.ToBytes(content)
}

func TestRoundTripParseToBytes(t *testing.T) {
	file := buildSauceFile("My Art", 80, 25, true)
	rec, content := Parse(file)
	if rec == nil {
		t.Fatal("expected a parsed record")
	}
	if string(content) != "ANSI art content here\r\n" {
		t.Fatalf("content mismatch: %q", content)
	}
	if rec.Title != "My Art" || rec.Width() != 80 || rec.Height() != 25 {
		t.Fatalf("field mismatch: %+v", rec)
	}
	if !rec.HasICEColors() {
		t.Fatal("expected ICE colors flag set")
	}
}

func TestStripIsIdempotent(t *testing.T) {
	file := buildSauceFile("x", 80, 1, false)
	once := Strip(file)
	twice := Strip(once)
	if !bytes.Equal(once, twice) {
		t.Fatalf("Strip not idempotent: once=%q twice=%q", once, twice)
	}
}

func TestParseWithCommentBlock(t *testing.T) {
	content := []byte("body")
	rec := &Record{
		Version: "00", Title: "t", DataType: DataTypeCharacter,
		CommentLines: []string{"first comment line", "second comment line"},
	}
	file := rec.ToBytes(content)
	parsed, stripped := Parse(file)
	if parsed == nil {
		t.Fatal("expected parse to succeed")
	}
	if len(parsed.CommentLines) != 2 {
		t.Fatalf("expected 2 comment lines, got %d", len(parsed.CommentLines))
	}
	if parsed.CommentLines[0] != "first comment line" {
		t.Fatalf("comment line 0 = %q", parsed.CommentLines[0])
	}
	if string(stripped) != "body" {
		t.Fatalf("stripped content = %q", stripped)
	}
}

func TestWidthDefaultsTo80(t *testing.T) {
	r := &Record{}
	if r.Width() != 80 {
		t.Fatalf("expected default width 80, got %d", r.Width())
	}
}
