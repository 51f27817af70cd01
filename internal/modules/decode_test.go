package modules

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeBody(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		contentType string
		want        string
	}{
		{name: "empty", body: "", want: ""},
		{name: "utf-8 without declaration", body: "<p>café</p>", contentType: "text/html", want: "<p>café</p>"},
		{name: "utf-8 bom", body: "\xef\xbb\xbf<p>hi</p>", want: "<p>hi</p>"},
		{name: "declared latin-1", body: "<p>caf\xe9</p>", contentType: "text/html; charset=ISO-8859-1", want: "<p>café</p>"},
		{name: "meta charset", body: `<html><head><meta charset="iso-8859-15"></head><body>caf` + "\xe9</body></html>", want: "café"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeBody([]byte(tt.body), tt.contentType)
			require.NoError(t, err)
			assert.Contains(t, got, tt.want)
		})
	}
}

func TestDecodeBodyDetectsUndeclaredCharset(t *testing.T) {
	latin1 := strings.Repeat("Le caf\xe9 \xe9tait tr\xe8s \xe9l\xe9gant, \xe0 c\xf4t\xe9 de la gare o\xf9 nous \xe9tions d\xe9j\xe0. ", 8)

	got, err := decodeBody([]byte("<p>"+latin1+"</p>"), "text/html")
	require.NoError(t, err)
	assert.Contains(t, got, "café était")
}

func TestDecodeBodyRejectsBinary(t *testing.T) {
	_, err := decodeBody([]byte("%PDF-1.7\n%\xe2\xe3\xcf\xd3\n1 0 obj"), "")
	assert.ErrorIs(t, err, ErrNotText)
}
