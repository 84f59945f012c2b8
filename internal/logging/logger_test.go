package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger("debug", "json", &buf)
	l.WithFields(Fields{"block": "heroes"}).Debug("synced")

	if !strings.Contains(buf.String(), `"block":"heroes"`) {
		t.Fatalf("expected JSON field in %q", buf.String())
	}
}

func TestNewLogger_BadLevelFallsBackToInfo(t *testing.T) {
	l := NewLogger("loud", "text", &bytes.Buffer{})
	if l.GetLevel() != logrus.InfoLevel {
		t.Fatalf("level = %v, want info", l.GetLevel())
	}
}

func TestOrDiscard(t *testing.T) {
	if OrDiscard(nil) == nil {
		t.Fatal("OrDiscard(nil) returned nil")
	}
	l := Discard()
	if OrDiscard(l) != l {
		t.Fatal("OrDiscard should return the given logger")
	}
}
