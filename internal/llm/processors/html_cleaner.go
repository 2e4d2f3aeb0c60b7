package processors

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	whitespaceRegex = regexp.MustCompile(`[ \t\f\r]+`)
	newlineRegex    = regexp.MustCompile(`\n\s*\n\s*(\n\s*)+`)
	htmlTagRegex    = regexp.MustCompile(`(?i)<\s*(html|body|div|p|ul|ol|li|br|h[1-6]|span|section|article|table)\b[^>]*>`)
	noisePatterns   = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bJavaScript\s+is\s+disabled\b.*?enabled\.`),
		regexp.MustCompile(`(?i)\bCookies?\s+are\s+disabled\b.*?enabled\.`),
		regexp.MustCompile(`(?i)\bPlease\s+enable\s+JavaScript\b[^.]*\.?`),
	}
)

// HTMLCleaner turns pasted job posting markup into plain text for prompts
type HTMLCleaner struct {
	// Tags to remove completely
	removeTags []string
	// Block-level tags that end a line of text
	blockTags []string
}

// NewHTMLCleaner creates a new HTML cleaner instance
func NewHTMLCleaner() *HTMLCleaner {
	return &HTMLCleaner{
		removeTags: []string{
			"script", "style", "noscript", "iframe", "object", "embed",
			"form", "input", "button", "select", "textarea",
			"nav", "header", "footer", "aside", "menu",
			"svg", "meta", "link", "title", "base",
		},
		blockTags: []string{
			"p", "div", "li", "br", "h1", "h2", "h3", "h4", "h5", "h6", "tr", "section", "article",
		},
	}
}

// LooksLikeHTML reports whether s contains common markup tags
func (hc *HTMLCleaner) LooksLikeHTML(s string) bool {
	return htmlTagRegex.MatchString(s)
}

// ToText strips clutter and markup, keeping one line per block element
func (hc *HTMLCleaner) ToText(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", err
	}

	for _, tag := range hc.removeTags {
		doc.Find(tag).Remove()
	}

	for _, tag := range hc.blockTags {
		doc.Find(tag).Each(func(i int, s *goquery.Selection) {
			s.AppendHtml("\n")
		})
	}
	doc.Find("li").Each(func(i int, s *goquery.Selection) {
		s.PrependHtml("- ")
	})

	return hc.cleanExtractedText(doc.Text()), nil
}

// Normalize returns plain text: markup is converted, plain text is only tidied
func (hc *HTMLCleaner) Normalize(content string) string {
	if !hc.LooksLikeHTML(content) {
		return strings.TrimSpace(content)
	}
	text, err := hc.ToText(content)
	if err != nil || text == "" {
		return strings.TrimSpace(content)
	}
	return text
}

// cleanExtractedText collapses whitespace and drops browser boilerplate
func (hc *HTMLCleaner) cleanExtractedText(text string) string {
	text = whitespaceRegex.ReplaceAllString(text, " ")

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	text = strings.Join(lines, "\n")
	text = newlineRegex.ReplaceAllString(text, "\n\n")

	for _, pattern := range noisePatterns {
		text = pattern.ReplaceAllString(text, "")
	}

	return strings.TrimSpace(text)
}

// Truncate cuts text to roughly maxTokens tokens, estimating 3 characters per token
func (hc *HTMLCleaner) Truncate(text string, maxTokens int) string {
	maxChars := maxTokens * 3
	if maxTokens <= 0 || len(text) <= maxChars {
		return text
	}
	// step back to a rune boundary
	for maxChars > 0 && !isRuneStart(text[maxChars]) {
		maxChars--
	}
	return text[:maxChars] + "..."
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
