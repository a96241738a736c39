package models

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// BrandDark is the fixed dark accent color. It is not user-configurable and
// is reasserted on every normalization pass.
const BrandDark = "#111827"

// DefaultCopyright is the fixed legal line appended to every edition.
const DefaultCopyright = "© 2025 FISUC - Todos los derechos reservados."

// Fallback theme colors used when a submitted color fails normalization.
const (
	defaultPrimary = "#2563EB"
	defaultBG      = "#FFFFFF"
	defaultText    = "#111827"
	defaultGray    = "#6B7280"
)

// Edition is the full newsletter payload posted by the admin client.
type Edition struct {
	Meta        Meta   `json:"meta"`
	Brand       Brand  `json:"brand"`
	Unsubscribe string `json:"unsubscribe"`
	Body        Body   `json:"edition"`
	Legal       Legal  `json:"legal"`
}

type Meta struct {
	Issue string `json:"issue"`
	Date  string `json:"date"`
}

// Brand carries the theme applied to the rendered newsletter. All colors are
// normalized 6-digit uppercase hex; Dark is pinned to BrandDark.
type Brand struct {
	Name    string `json:"name"`
	Logo    string `json:"logo"`
	Primary string `json:"primary"`
	BG      string `json:"bg"`
	Text    string `json:"text"`
	Gray    string `json:"gray"`
	Dark    string `json:"dark"`
}

// Body is the edition content. Hero is optional; a nil CTA means the edition
// has no call-to-action.
type Body struct {
	Preview    string `json:"preview"`
	Heading    string `json:"heading"`
	Subheading string `json:"subheading"`
	CTA        *CTA   `json:"cta,omitempty"`
	Hero       string `json:"hero,omitempty"`
	Cards      []Card `json:"cards"`
}

type CTA struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

type Legal struct {
	Copyright string `json:"copyright"`
}

var (
	hexColorRegex = regexp.MustCompile(`^#([0-9A-Fa-f]{3}|[0-9A-Fa-f]{6})$`)
	nonDigitRegex = regexp.MustCompile(`\D`)
)

// NormalizeHex validates val as a 3- or 6-digit hex color, with or without a
// leading '#'. Valid input comes back uppercased in #RRGGBB form, the 3-digit
// form doubling each digit; anything else returns fallback untouched.
func NormalizeHex(val, fallback string) string {
	v := strings.TrimSpace(val)
	if v == "" {
		return fallback
	}
	if !strings.HasPrefix(v, "#") {
		v = "#" + v
	}
	if !hexColorRegex.MatchString(v) {
		return fallback
	}
	if len(v) == 4 {
		v = "#" +
			strings.Repeat(string(v[1]), 2) +
			strings.Repeat(string(v[2]), 2) +
			strings.Repeat(string(v[3]), 2)
	}
	return strings.ToUpper(v)
}

// SanitizeIssue strips everything but digits from the issue number field.
func SanitizeIssue(issue string) string {
	return nonDigitRegex.ReplaceAllString(issue, "")
}

// NewCTA applies the presence law: a CTA exists only when both label and URL
// are non-empty after trimming. Otherwise there is no CTA at all.
func NewCTA(label, url string) *CTA {
	label = strings.TrimSpace(label)
	url = strings.TrimSpace(url)
	if label == "" || url == "" {
		return nil
	}
	return &CTA{Label: label, URL: url}
}

// ParseCards decodes the cards JSON blob from the admin form. Malformed JSON
// degrades to an empty list plus a warning for the user; it never fails.
func ParseCards(blob string) ([]Card, []string) {
	blob = strings.TrimSpace(blob)
	if blob == "" {
		return []Card{}, nil
	}
	var cards []Card
	if err := json.Unmarshal([]byte(blob), &cards); err != nil {
		return []Card{}, []string{"invalid cards JSON: " + err.Error()}
	}
	if cards == nil {
		cards = []Card{}
	}
	return cards, nil
}

// Normalize enforces the payload invariants in place and reports any
// adjustments worth surfacing to the caller. Normalization is idempotent:
// a second pass makes no further changes.
func (e *Edition) Normalize() []string {
	warnings := []string{}

	e.Brand.Primary = NormalizeHex(e.Brand.Primary, defaultPrimary)
	e.Brand.BG = NormalizeHex(e.Brand.BG, defaultBG)
	e.Brand.Text = NormalizeHex(e.Brand.Text, defaultText)
	e.Brand.Gray = NormalizeHex(e.Brand.Gray, defaultGray)
	e.Brand.Dark = BrandDark

	if sanitized := SanitizeIssue(e.Meta.Issue); sanitized != e.Meta.Issue {
		warnings = append(warnings, fmt.Sprintf("issue number %q reduced to %q", e.Meta.Issue, sanitized))
		e.Meta.Issue = sanitized
	}

	if e.Body.CTA != nil {
		e.Body.CTA = NewCTA(e.Body.CTA.Label, e.Body.CTA.URL)
	}

	if e.Body.Cards == nil {
		e.Body.Cards = []Card{}
	}

	if e.Legal.Copyright == "" {
		e.Legal.Copyright = DefaultCopyright
	}

	return warnings
}
