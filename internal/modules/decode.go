package modules

import (
	"bytes"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
	"github.com/saintfish/chardet"
	"golang.org/x/net/html/charset"
)

// ErrNotText is returned when a remote body is not textual.
var ErrNotText = errors.New("remote content is not text")

var utf8BOM = []byte("\xef\xbb\xbf")

const (
	// minConfidence is the chardet confidence below which a guess is ignored.
	minConfidence = 30
	// fallbackCharset is what DetermineEncoding reports when nothing is
	// declared.
	fallbackCharset = "windows-1252"
)

// decodeBody converts a fetched body to UTF-8. The charset comes from a
// BOM, the Content-Type header or a meta tag; an undeclared body that is
// not valid UTF-8 is run through charset detection.
func decodeBody(body []byte, contentType string) (string, error) {
	if len(body) == 0 {
		return "", nil
	}
	if !isText(body) {
		return "", fmt.Errorf("%w: %s", ErrNotText, mimetype.Detect(body).String())
	}

	enc, name, certain := charset.DetermineEncoding(body, contentType)
	if !certain {
		if utf8.Valid(body) {
			return string(bytes.TrimPrefix(body, utf8BOM)), nil
		}
		if name == fallbackCharset {
			if detected, ok := detectCharset(body); ok {
				if e, canonical := charset.Lookup(detected); e != nil {
					enc, name = e, canonical
				}
			}
		}
	}
	if name == "utf-8" {
		return string(bytes.TrimPrefix(body, utf8BOM)), nil
	}

	out, err := enc.NewDecoder().Bytes(body)
	if err != nil {
		return "", fmt.Errorf("decode %s body: %w", name, err)
	}
	return string(out), nil
}

// isText reports whether the sniffed type of body descends from text/plain.
func isText(body []byte) bool {
	for m := mimetype.Detect(body); m != nil; m = m.Parent() {
		if m.Is("text/plain") {
			return true
		}
	}
	return false
}

func detectCharset(body []byte) (string, bool) {
	result, err := chardet.NewTextDetector().DetectBest(body)
	if err != nil || result == nil || result.Confidence < minConfidence {
		return "", false
	}
	return result.Charset, true
}
