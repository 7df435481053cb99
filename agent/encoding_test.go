package agent

import (
	"errors"
	"testing"
)

// failingDetector always reports no confident guess, forcing the lossy
// UTF-8 fallback.
type failingDetector struct{}

func (failingDetector) Detect(_ []byte) (string, error) {
	return "", errors.New("no confident charset guess")
}

// fixedDetector reports a fixed charset name.
type fixedDetector struct{ charset string }

func (d fixedDetector) Detect(_ []byte) (string, error) {
	return d.charset, nil
}

func TestDecodeBytesValidUTF8(t *testing.T) {
	ag := newTestAgent()
	got := ag.decodeBytes([]byte("héllo 世界"))
	if got != "héllo 世界" {
		t.Errorf("valid UTF-8 must pass through, got %q", got)
	}
}

func TestDecodeBytesEmpty(t *testing.T) {
	ag := newTestAgent()
	if got := ag.decodeBytes(nil); got != "" {
		t.Errorf("expected empty string, got %q", got)
	}
}

func TestDecodeBytesDetectedCharset(t *testing.T) {
	// 0xE9 is é in Latin-1 and invalid as a standalone UTF-8 byte.
	ag := New(&mockModel{}, &mockEnv{}, nil, WithDetector(fixedDetector{charset: "ISO-8859-1"}))
	got := ag.decodeBytes([]byte{'c', 'a', 'f', 0xE9})
	if got != "café" {
		t.Errorf("expected Latin-1 decode, got %q", got)
	}
}

func TestDecodeBytesDetectorFailureFallsBack(t *testing.T) {
	ag := New(&mockModel{}, &mockEnv{}, nil, WithDetector(failingDetector{}))
	got := ag.decodeBytes([]byte{'o', 'k', 0xff, 0xfe})
	if got != "ok��" {
		t.Errorf("expected per-byte replacement fallback, got %q", got)
	}
}

func TestDecodeBytesUnknownCharsetFallsBack(t *testing.T) {
	ag := New(&mockModel{}, &mockEnv{}, nil, WithDetector(fixedDetector{charset: "no-such-charset"}))
	got := ag.decodeBytes([]byte{'x', 0xff})
	if got != "x�" {
		t.Errorf("expected lossy fallback for unknown charset, got %q", got)
	}
}

func TestDecodeBytesNeverEmptyOnGarbage(t *testing.T) {
	ag := newTestAgent()
	garbage := []byte{0x00, 0xff, 0xfe, 0xfd, 0x80, 0x81}
	got := ag.decodeBytes(garbage)
	if got == "" {
		t.Error("decoding must never drop all output")
	}
}
