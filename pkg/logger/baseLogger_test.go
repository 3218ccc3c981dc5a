package logger

import (
	"bytes"
	"io"
	"log"
	"strings"
	"testing"
)

func TestLogWritesPrefixedLine(t *testing.T) {
	log.SetOutput(io.Discard)

	var buf bytes.Buffer
	l := NewLogger(&buf, "[run]")
	l.Log("committed %d file(s)", 3)

	if got := buf.String(); !strings.Contains(got, "[run] committed 3 file(s)") {
		t.Errorf("Log output = %q, want it to contain the prefixed message", got)
	}
}

func TestWithPrefixComposes(t *testing.T) {
	log.SetOutput(io.Discard)

	var buf bytes.Buffer
	l := NewLogger(&buf, "[run]").WithPrefix("[ofanaim.json]")
	l.Log("record %d skipped", 7)

	if got := buf.String(); !strings.Contains(got, "[run] [ofanaim.json] record 7 skipped") {
		t.Errorf("Log output = %q, want the composed prefix", got)
	}
}
