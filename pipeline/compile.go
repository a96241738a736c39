package pipeline

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// Compile parses the rendered email markup and serializes it back out as a
// well-formed HTML document. The parser recovers from most structural
// problems (unclosed tags, misnesting); what it fixed up silently is not
// observable, so lint complaints about email-client pitfalls stand in as the
// compilation warnings. Warnings never fail a build.
func Compile(markup string) (string, []string, error) {
	if strings.TrimSpace(markup) == "" {
		return "", nil, fmt.Errorf("rendered markup is empty")
	}

	doc, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return "", nil, fmt.Errorf("invalid markup: %w", err)
	}

	warnings := lintDocument(doc)

	var out bytes.Buffer
	if err := html.Render(&out, doc); err != nil {
		return "", nil, fmt.Errorf("failed to serialize document: %w", err)
	}
	return out.String(), warnings, nil
}

// lintDocument walks the parsed tree collecting the complaints an email
// compiler would emit. Email clients are unforgiving about these.
func lintDocument(doc *html.Node) []string {
	var warnings []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "img":
				if attrValue(n, "src") == "" {
					warnings = append(warnings, "img element without src attribute")
				}
				if !hasAttr(n, "alt") {
					warnings = append(warnings, "img element without alt text")
				}
			case "a":
				if attrValue(n, "href") == "" {
					warnings = append(warnings, "anchor without href")
				}
			case "table":
				if attrValue(n, "role") != "presentation" {
					warnings = append(warnings, `layout table without role="presentation"`)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return warnings
}

func attrValue(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if a.Key == key {
			return true
		}
	}
	return false
}
