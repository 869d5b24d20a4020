// internal/logging/logging_test.go
package logging

import (
	"bytes"
	"log"
	"os"
	"testing"

	"github.com/stlalpha/textmode/internal/types"
)

func TestDebugDisabled(t *testing.T) {
	DebugEnabled = false
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	Debug("this should not appear")

	if buf.Len() > 0 {
		t.Errorf("Debug output when disabled: %s", buf.String())
	}
}

func TestDebugEnabled(t *testing.T) {
	DebugEnabled = true
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	Debug("test message %d", 42)

	if !bytes.Contains(buf.Bytes(), []byte("DEBUG: test message 42")) {
		t.Errorf("Expected debug output, got: %s", buf.String())
	}
	DebugEnabled = false
}

func TestRecoveredLogsRegardlessOfDebugEnabled(t *testing.T) {
	DebugEnabled = false
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	Recovered("xbin", types.NewError(types.KindFileTooShort, "EOF mid-run at (3,0), clipping output"))

	if !bytes.Contains(buf.Bytes(), []byte("xbin: recovered from")) {
		t.Errorf("expected Recovered to log even with DebugEnabled=false, got: %s", buf.String())
	}
	if !bytes.Contains(buf.Bytes(), []byte(string(types.KindFileTooShort))) {
		t.Errorf("expected Recovered to include the error kind, got: %s", buf.String())
	}
}
