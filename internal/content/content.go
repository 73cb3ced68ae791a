// Package content renders author-submitted post bodies for display.
//
// Posts are authored in CommonMark. The render pipeline converts Markdown to
// HTML and then sanitizes the result, so whatever raw HTML an author sneaks
// into their Markdown is stripped before it reaches another visitor's browser.
package content

import (
	"html/template"
	"strings"
	"unicode/utf8"
)

// Transformer modifies content, returning modified content or an error.
type Transformer interface {
	// Transform modifies input, returning modified content or an error.
	Transform(input []byte) ([]byte, error)
}

// TransformerFunc is a [Transformer] that can be represented just by the
// [Transform] method.
type TransformerFunc func(input []byte) ([]byte, error)

// Transform satisfies [Transformer].
func (fn TransformerFunc) Transform(input []byte) ([]byte, error) { return fn(input) }

// Chain chains together a set of transformers, failing fast if any transformer
// in the chain errors.
func Chain(transformers ...Transformer) TransformerFunc {
	return func(input []byte) ([]byte, error) {
		var err error
		for _, transformer := range transformers {
			input, err = transformer.Transform(input)
			if err != nil {
				return nil, err
			}
		}
		return input, nil
	}
}

var postPipeline = Chain(MarkdownToHTML(), SanitizeHTML())

// PostHTML renders a post body to HTML that is safe to embed in a page.
func PostHTML(body string) (template.HTML, error) {
	out, err := postPipeline([]byte(body))
	if err != nil {
		return "", err
	}
	return template.HTML(out), nil //nolint:gosec // sanitized by the pipeline
}

// excerptLen is the maximum number of runes shown on list pages.
const excerptLen = 300

// Excerpt returns a plain-text preview of the post body, truncated for list
// pages. The body is shown as written, not rendered.
func Excerpt(body string) string {
	body = strings.TrimSpace(body)
	if utf8.RuneCountInString(body) <= excerptLen {
		return body
	}
	runes := []rune(body)
	return string(runes[:excerptLen]) + "..."
}
