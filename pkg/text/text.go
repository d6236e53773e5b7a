// Package text turns chapter pages into plain text and picks out the words
// a reader can highlight.
package text

import (
	"bytes"
	"fmt"
	"io"
	"net/url"
	"regexp"
	"strings"
	"unicode"

	"github.com/go-shiori/go-readability"
	"github.com/rivo/uniseg"
)

// maxPageSize bounds how much of a page Extract reads.
const maxPageSize = 10 * 1024 * 1024

// Article is the readable part of a page.
type Article struct {
	Title string
	Text  string
}

var (
	// Ruby parts, matched case-insensitively across newlines.
	reRT = regexp.MustCompile(`(?si)<rt\b[^>]*>.*?</rt>`)
	reRP = regexp.MustCompile(`(?si)<rp\b[^>]*>.*?</rp>`)
)

// SanitizeRuby removes ruby text (<rt>...</rt>) and ruby parentheses
// (<rp>...</rp>) from HTML content. Without it the Hangul reading of a
// Hanja annotation ends up glued to the Hanja ("愛애").
func SanitizeRuby(content []byte) []byte {
	cleaned := reRT.ReplaceAll(content, []byte{})
	cleaned = reRP.ReplaceAll(cleaned, []byte{})
	return cleaned
}

// Extract reads an XHTML chapter or web page and returns its main text.
// pageURL may be empty.
func Extract(r io.Reader, pageURL string) (Article, error) {
	body, err := io.ReadAll(io.LimitReader(r, maxPageSize+1))
	if err != nil {
		return Article{}, fmt.Errorf("read page: %w", err)
	}
	if len(body) > maxPageSize {
		return Article{}, fmt.Errorf("page exceeds %d bytes", maxPageSize)
	}

	var u *url.URL
	if pageURL != "" {
		if u, err = url.Parse(pageURL); err != nil {
			return Article{}, fmt.Errorf("parse page url: %w", err)
		}
	}

	article, err := readability.FromReader(bytes.NewReader(SanitizeRuby(body)), u)
	if err != nil {
		return Article{}, fmt.Errorf("extract article: %w", err)
	}
	return Article{
		Title: strings.TrimSpace(article.Title),
		Text:  strings.TrimSpace(article.TextContent),
	}, nil
}

// Sentences splits text after sentence-final punctuation and newlines.
// Blank sentences are dropped.
func Sentences(text string) []string {
	var sentences []string
	var current strings.Builder

	flush := func() {
		if s := strings.TrimSpace(current.String()); s != "" {
			sentences = append(sentences, s)
		}
		current.Reset()
	}
	for _, r := range text {
		current.WriteRune(r)
		switch r {
		case '.', '!', '?', '。', '！', '？', '\n':
			flush()
		}
	}
	flush()
	return sentences
}

// Words returns the distinct Korean words of text in reading order, split
// on Unicode word boundaries. Tokens without Hangul are skipped.
func Words(text string) []string {
	var words []string
	seen := make(map[string]bool)
	state := -1
	for len(text) > 0 {
		var w string
		w, text, state = uniseg.FirstWordInString(text, state)
		if !hasHangul(w) || seen[w] {
			continue
		}
		seen[w] = true
		words = append(words, w)
	}
	return words
}

func hasHangul(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Hangul, r) {
			return true
		}
	}
	return false
}
