package loader

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

var markdownParser = goldmark.New(
	goldmark.WithExtensions(extension.Table, extension.Strikethrough),
)

func loadMarkdown(path string) (Document, error) {
	content, err := readText(path)
	if err != nil {
		return Document{}, err
	}
	return Document{Text: MarkdownToText(content), Format: FormatMarkdown}, nil
}

// MarkdownToText renders markdown as readable plain text: heading and paragraph
// text, list items prefixed with "- ", code verbatim, table rows as "a | b".
// Markup characters and raw HTML are dropped.
func MarkdownToText(content []byte) string {
	doc := markdownParser.Parser().Parse(text.NewReader(content))

	var b strings.Builder
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		switch node := n.(type) {
		case *ast.Heading, *ast.Paragraph:
			if entering {
				if !firstInListItem(node) {
					startLine(&b)
				}
			} else {
				b.WriteString("\n\n")
			}

		case *ast.TextBlock:
			if entering {
				if !firstInListItem(node) {
					startLine(&b)
				}
			} else {
				b.WriteString("\n")
			}

		case *ast.ListItem:
			if entering {
				startLine(&b)
				b.WriteString("- ")
			}

		case *ast.CodeBlock, *ast.FencedCodeBlock:
			if entering {
				startLine(&b)
				lines := node.Lines()
				for i := 0; i < lines.Len(); i++ {
					line := lines.At(i)
					b.Write(line.Value(content))
				}
			}
			return ast.WalkSkipChildren, nil

		case *ast.HTMLBlock, *ast.RawHTML:
			return ast.WalkSkipChildren, nil

		case *ast.Text:
			if entering {
				b.Write(node.Segment.Value(content))
				if node.HardLineBreak() {
					b.WriteString("\n")
				} else if node.SoftLineBreak() {
					b.WriteString(" ")
				}
			}

		case *ast.String:
			if entering {
				b.Write(node.Value)
			}

		case *east.TableHeader, *east.TableRow:
			if entering {
				startLine(&b)
				b.WriteString(tableRowText(node, content))
				b.WriteString("\n")
			}
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})

	return collapseBlankLines(b.String())
}

// startLine ensures the builder is positioned at the start of a line.
func startLine(b *strings.Builder) {
	if b.Len() == 0 {
		return
	}
	if !strings.HasSuffix(b.String(), "\n") {
		b.WriteString("\n")
	}
}

// firstInListItem reports whether n opens a list item, where the "- " marker
// has already been written on the current line.
func firstInListItem(n ast.Node) bool {
	parent := n.Parent()
	return parent != nil && parent.Kind() == ast.KindListItem && n.PreviousSibling() == nil
}

// tableRowText joins the text of a row's cells with " | ".
func tableRowText(row ast.Node, content []byte) string {
	var cells []string
	for c := row.FirstChild(); c != nil; c = c.NextSibling() {
		cells = append(cells, nodeText(c, content))
	}
	return strings.Join(cells, " | ")
}

// nodeText returns the inline text below n.
func nodeText(n ast.Node, content []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch v := node.(type) {
		case *ast.Text:
			b.Write(v.Segment.Value(content))
		case *ast.String:
			b.Write(v.Value)
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(b.String())
}

// collapseBlankLines trims trailing spaces per line and squeezes runs of blank
// lines to a single blank line.
func collapseBlankLines(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for _, line := range lines {
		line = strings.TrimRight(line, " \t")
		if line == "" {
			if blank || len(out) == 0 {
				continue
			}
			blank = true
			out = append(out, "")
			continue
		}
		blank = false
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
