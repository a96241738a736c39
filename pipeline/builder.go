package pipeline

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"

	"github.com/aymerick/douceur/inliner"
	"github.com/jaytaylor/html2text"
	"github.com/microcosm-cc/bluemonday"

	"github.com/Jvargast/newsletter-fisuc/models"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

const (
	newsletterTemplate = "newsletter.tmpl"

	// textWrapColumn bounds line width in the plain-text fallback.
	textWrapColumn = 80
)

// Artifact is the ephemeral result of one build. Nothing caches it; every
// request re-renders, and identical editions yield byte-identical output.
type Artifact struct {
	HTML     string
	Text     string
	Warnings []string
}

// Builder runs an edition through the render → compile → inline →
// text-extract pipeline. Safe for concurrent use; it holds no per-build
// state.
type Builder struct {
	tmpl     *template.Template
	richText *bluemonday.Policy
}

func NewBuilder() (*Builder, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to parse newsletter template: %w", err)
	}
	return &Builder{
		tmpl:     tmpl,
		richText: bluemonday.UGCPolicy(),
	}, nil
}

// Build normalizes the edition and produces the final HTML plus its
// plain-text fallback. Warnings collected along the way (issue sanitization,
// markup lint) ride along in the artifact; render, compile, and inline
// failures are fatal.
func (b *Builder) Build(edition *models.Edition) (*Artifact, error) {
	if edition == nil {
		return nil, fmt.Errorf("edition payload is required")
	}

	warnings := edition.Normalize()

	var rendered bytes.Buffer
	if err := b.tmpl.ExecuteTemplate(&rendered, newsletterTemplate, b.viewData(edition)); err != nil {
		return nil, fmt.Errorf("template render failed: %w", err)
	}

	compiled, compileWarnings, err := Compile(rendered.String())
	if err != nil {
		return nil, fmt.Errorf("markup compilation failed: %w", err)
	}
	warnings = append(warnings, compileWarnings...)

	inlined, err := inliner.Inline(compiled)
	if err != nil {
		return nil, fmt.Errorf("style inlining failed: %w", err)
	}

	text, err := html2text.FromString(inlined, html2text.Options{})
	if err != nil {
		return nil, fmt.Errorf("plain-text extraction failed: %w", err)
	}

	return &Artifact{
		HTML:     inlined,
		Text:     wrapText(text, textWrapColumn),
		Warnings: warnings,
	}, nil
}

// templateData is the view model handed to the newsletter template. Rich
// text fields are sanitized up front and typed template.HTML so the template
// renders them unescaped; everything else goes through the default escaper.
type templateData struct {
	Meta        models.Meta
	Brand       models.Brand
	Unsubscribe string
	Body        bodyData
	Legal       models.Legal
}

type bodyData struct {
	Preview    string
	Heading    string
	Subheading string
	CTA        *models.CTA
	Hero       string
	Cards      []cardData
}

type cardData struct {
	Title  string
	Body   template.HTML
	Images []string
}

func (b *Builder) viewData(e *models.Edition) templateData {
	cards := make([]cardData, 0, len(e.Body.Cards))
	for _, c := range e.Body.Cards {
		cards = append(cards, cardData{
			Title:  c.Title,
			Body:   template.HTML(b.richText.Sanitize(c.Body)),
			Images: c.URLs(),
		})
	}
	return templateData{
		Meta:        e.Meta,
		Brand:       e.Brand,
		Unsubscribe: e.Unsubscribe,
		Body: bodyData{
			Preview:    e.Body.Preview,
			Heading:    e.Body.Heading,
			Subheading: e.Body.Subheading,
			CTA:        e.Body.CTA,
			Hero:       e.Body.Hero,
			Cards:      cards,
		},
		Legal: e.Legal,
	}
}

// wrapText re-wraps long lines at the given column, preserving existing
// blank lines and short lines as-is.
func wrapText(text string, width int) string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if len(line) <= width {
			out = append(out, line)
			continue
		}
		var cur strings.Builder
		for _, word := range strings.Fields(line) {
			switch {
			case cur.Len() == 0:
				cur.WriteString(word)
			case cur.Len()+1+len(word) > width:
				out = append(out, cur.String())
				cur.Reset()
				cur.WriteString(word)
			default:
				cur.WriteByte(' ')
				cur.WriteString(word)
			}
		}
		if cur.Len() > 0 {
			out = append(out, cur.String())
		}
	}
	return strings.Join(out, "\n")
}
