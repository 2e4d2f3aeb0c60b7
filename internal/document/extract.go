// Package document extracts plain text from uploaded resume files.
package document

import (
	"bytes"
	"errors"
	"fmt"
	"mime"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

// Supported content types
const (
	TypePDF   = "application/pdf"
	TypeDOCX  = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	TypeWord  = "application/msword"
	TypePlain = "text/plain"
)

var (
	// ErrEmptyDocument is returned for zero-byte uploads
	ErrEmptyDocument = errors.New("document is empty")
	// ErrUnsupportedType is returned when neither the declared type nor the sniffed bytes are supported
	ErrUnsupportedType = errors.New("unsupported document type")
	// ErrNoText is returned when a supported document yields no readable text
	ErrNoText = errors.New("no readable text in document")
)

var extensionTypes = map[string]string{
	".pdf":  TypePDF,
	".docx": TypeDOCX,
	".doc":  TypeWord,
	".txt":  TypePlain,
	".md":   TypePlain,
}

var (
	paragraphEnd = regexp.MustCompile(`</w:p>|<w:br/>|<w:tab/>`)
	xmlTag       = regexp.MustCompile(`<[^>]+>`)
	blankLines   = regexp.MustCompile(`\n{3,}`)
)

// Extracted is the text of a document together with the type it was read as
type Extracted struct {
	Text        string
	ContentType string
}

func baseType(contentType string) string {
	if contentType == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return mediaType
}

func supported(contentType string) bool {
	switch contentType {
	case TypePDF, TypeDOCX, TypeWord, TypePlain:
		return true
	}
	return false
}

// DetectType picks the type to read data as: sniffed bytes first, then the
// declared content type, then the file extension.
func DetectType(filename, declared string, data []byte) (string, error) {
	sniffed := mimetype.Detect(data)
	for m := sniffed; m != nil; m = m.Parent() {
		if t := baseType(m.String()); supported(t) {
			return t, nil
		}
	}

	if t := baseType(declared); supported(t) {
		return t, nil
	}

	if t, ok := extensionTypes[strings.ToLower(filepath.Ext(filename))]; ok {
		return t, nil
	}

	return "", fmt.Errorf("%w: %s", ErrUnsupportedType, sniffed.String())
}

// Extract returns the readable text of an uploaded file
func Extract(filename, declared string, data []byte) (*Extracted, error) {
	if len(data) == 0 {
		return nil, ErrEmptyDocument
	}

	contentType, err := DetectType(filename, declared, data)
	if err != nil {
		return nil, err
	}

	var text string
	switch contentType {
	case TypePDF:
		text, err = extractPDFText(data)
	case TypeDOCX:
		text, err = extractDocxText(data)
	case TypeWord:
		text = extractBinaryWordText(data)
	default:
		text = extractPlainText(data)
	}
	if err != nil {
		return nil, err
	}

	text = normalize(text)
	if text == "" {
		return nil, ErrNoText
	}
	return &Extracted{Text: text, ContentType: contentType}, nil
}

func extractPDFText(data []byte) (text string, err error) {
	// the pdf reader panics on some malformed inputs
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("failed to read pdf: %v", r)
		}
	}()

	pdfReader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to read pdf: %w", err)
	}

	var textBuilder strings.Builder
	for i := 1; i <= pdfReader.NumPage(); i++ {
		page := pdfReader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		textBuilder.WriteString(pageText)
		textBuilder.WriteString("\n")
	}
	return textBuilder.String(), nil
}

func extractDocxText(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to parse docx: %w", err)
	}
	defer doc.Close()

	content := doc.Editable().GetContent()
	content = paragraphEnd.ReplaceAllString(content, "\n")
	content = xmlTag.ReplaceAllString(content, "")
	return unescapeXML(content), nil
}

func unescapeXML(s string) string {
	return strings.NewReplacer("&amp;", "&", "&lt;", "<", "&gt;", ">", "&quot;", `"`, "&apos;", "'").Replace(s)
}

// extractBinaryWordText keeps runs of printable characters from a legacy .doc
// file. Word 97-2003 stores body text as plain or UTF-16LE runs.
func extractBinaryWordText(data []byte) string {
	var out strings.Builder

	flush := func(run []rune) {
		if len(run) >= 4 {
			out.WriteString(string(run))
			out.WriteString("\n")
		}
	}

	// UTF-16LE pass: printable ASCII followed by a zero byte
	var run []rune
	for i := 0; i+1 < len(data); i += 2 {
		r := rune(data[i])
		if data[i+1] == 0 && (unicode.IsPrint(r) || r == '\t') {
			run = append(run, r)
			continue
		}
		flush(run)
		run = run[:0]
	}
	flush(run)

	if out.Len() > 0 {
		return out.String()
	}

	// single-byte pass
	run = run[:0]
	for _, b := range data {
		r := rune(b)
		if b < utf8.RuneSelf && (unicode.IsPrint(r) || r == '\t') {
			run = append(run, r)
			continue
		}
		flush(run)
		run = run[:0]
	}
	flush(run)
	return out.String()
}

func extractPlainText(data []byte) string {
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})
	if utf8.Valid(data) {
		return string(data)
	}
	return strings.ToValidUTF8(string(data), "")
}

// normalize also drops NUL bytes, which PostgreSQL text columns reject
func normalize(text string) string {
	text = strings.ReplaceAll(text, "\x00", "")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRightFunc(line, unicode.IsSpace)
	}
	text = strings.Join(lines, "\n")
	text = blankLines.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
