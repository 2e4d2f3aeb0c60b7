package document

import (
	"testing"
	"unicode/utf16"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func utf16le(s string) []byte {
	out := make([]byte, 0, len(s)*2)
	for _, u := range utf16.Encode([]rune(s)) {
		out = append(out, byte(u), byte(u>>8))
	}
	return out
}

func TestExtractPlainText(t *testing.T) {
	got, err := Extract("resume.txt", "text/plain; charset=utf-8", []byte("\xEF\xBB\xBFSenior engineer with 5 years Python\r\n\r\n\r\n\r\nGo   \n"))
	require.NoError(t, err)

	assert.Equal(t, TypePlain, got.ContentType)
	assert.Equal(t, "Senior engineer with 5 years Python\n\nGo", got.Text)
}

func TestExtractSniffsWhenDeclaredTypeIsGeneric(t *testing.T) {
	got, err := Extract("upload", "application/octet-stream", []byte("Jane Doe\nBackend developer"))
	require.NoError(t, err)
	assert.Equal(t, TypePlain, got.ContentType)
}

func TestExtractLegacyWordRuns(t *testing.T) {
	data := []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
	data = append(data, utf16le("Senior engineer")...)
	data = append(data, 0xFF, 0xFE)
	data = append(data, utf16le("Kubernetes")...)

	got, err := Extract("cv.doc", TypeWord, data)
	require.NoError(t, err)
	assert.Equal(t, TypeWord, got.ContentType)
	assert.Contains(t, got.Text, "Senior engineer")
	assert.Contains(t, got.Text, "Kubernetes")
}

func TestExtractRejectsEmptyAndUnsupported(t *testing.T) {
	_, err := Extract("cv.pdf", TypePDF, nil)
	assert.ErrorIs(t, err, ErrEmptyDocument)

	png := []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1A, '\n', 0, 0, 0, 0x0D, 'I', 'H', 'D', 'R'}
	_, err = Extract("photo.png", "image/png", png)
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestExtractWhitespaceOnlyHasNoText(t *testing.T) {
	_, err := Extract("blank.txt", TypePlain, []byte("   \n\n  "))
	assert.ErrorIs(t, err, ErrNoText)
}

func TestExtractDropsNULBytes(t *testing.T) {
	got, err := Extract("notes.txt", TypePlain, []byte("Go\x00 engineer\x00\x00\nPython"))
	require.NoError(t, err)
	assert.Equal(t, TypePlain, got.ContentType)
	assert.Equal(t, "Go engineer\nPython", got.Text)
	assert.NotContains(t, got.Text, "\x00")

	_, err = Extract("nul.txt", TypePlain, []byte("\x00\x00\x00"))
	assert.ErrorIs(t, err, ErrNoText)
}

func TestExtractMalformedPDF(t *testing.T) {
	_, err := Extract("broken.pdf", TypePDF, []byte("%PDF-1.4\nthis is not really a pdf"))
	assert.Error(t, err)
}

func TestDetectTypeFallsBackToExtension(t *testing.T) {
	// bytes that sniff as a generic binary
	data := []byte{0x00, 0x9F, 0x92, 0x96, 0x00, 0x01}

	got, err := DetectType("resume.pdf", "", data)
	require.NoError(t, err)
	assert.Equal(t, TypePDF, got)

	_, err = DetectType("resume.bin", "", data)
	assert.ErrorIs(t, err, ErrUnsupportedType)
}
