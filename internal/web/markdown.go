package web

import (
	"bytes"
	"html/template"
	"sync"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var (
	markdownInstance goldmark.Markdown
	markdownOnce     sync.Once
)

// getMarkdown returns the shared converter. Raw HTML in the source is
// omitted from the output.
func getMarkdown() goldmark.Markdown {
	markdownOnce.Do(func() {
		markdownInstance = goldmark.New(goldmark.WithExtensions(extension.GFM))
	})
	return markdownInstance
}

// renderMarkdown converts a comment body to HTML. On a conversion error the
// body is shown escaped.
func renderMarkdown(body string) template.HTML {
	var buf bytes.Buffer
	if err := getMarkdown().Convert([]byte(body), &buf); err != nil {
		return template.HTML("<p>" + template.HTMLEscapeString(body) + "</p>")
	}
	return template.HTML(buf.String())
}
