package agent

import (
	"strings"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding/ianaindex"
)

// Detector guesses the charset of a byte sequence. It is a pluggable
// strategy so the detection policy can be swapped or tested
// independently of the executor.
type Detector interface {
	// Detect returns the IANA charset name for the data, or an error if
	// no confident guess exists.
	Detect(data []byte) (string, error)
}

// chardetDetector is the default Detector, backed by a statistical
// charset recognizer.
type chardetDetector struct{}

// NewChardetDetector returns the default heuristic charset detector.
func NewChardetDetector() Detector {
	return chardetDetector{}
}

func (chardetDetector) Detect(data []byte) (string, error) {
	result, err := chardet.NewTextDetector().DetectBest(data)
	if err != nil {
		return "", err
	}
	return result.Charset, nil
}

// decodeBytes turns raw command output into text. It asks the detector
// for a charset guess and decodes with replacement-rune fallback for
// undecodable bytes. When the heuristic path fails at any stage it falls
// back to lossy UTF-8. Decoding never fails: fidelity may be lost on a
// few bytes, correctness of the run is not.
func (a *Agent) decodeBytes(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	if utf8.Valid(data) {
		return string(data)
	}

	name, err := a.detector.Detect(data)
	if err != nil || name == "" {
		return lossyUTF8(data)
	}
	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil || enc == nil {
		return lossyUTF8(data)
	}
	decoded, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return lossyUTF8(data)
	}
	return string(decoded)
}

// lossyUTF8 replaces every invalid byte with the replacement rune.
func lossyUTF8(data []byte) string {
	var sb strings.Builder
	sb.Grow(len(data))
	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		if r == utf8.RuneError && size == 1 {
			sb.WriteRune(utf8.RuneError)
		} else {
			sb.Write(data[:size])
		}
		data = data[size:]
	}
	return sb.String()
}
