package pipeline_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jvargast/newsletter-fisuc/models"
	"github.com/Jvargast/newsletter-fisuc/pipeline"
)

func testEdition() *models.Edition {
	return &models.Edition{
		Meta: models.Meta{Issue: "12", Date: "Enero 2026"},
		Brand: models.Brand{
			Name:    "FISUC",
			Primary: "#FF0000",
			BG:      "#FFFFFF",
			Text:    "#111111",
			Gray:    "#6B7280",
		},
		Unsubscribe: "https://example.com/unsubscribe",
		Body: models.Body{
			Preview:    "Edición de prueba",
			Heading:    "Hola",
			Subheading: "Qué pasó este mes",
			Cards:      []models.Card{},
		},
	}
}

func TestBuilderBuild(t *testing.T) {
	t.Parallel()

	builder, err := pipeline.NewBuilder()
	require.NoError(t, err)

	t.Run("end to end", func(t *testing.T) {
		t.Parallel()
		artifact, err := builder.Build(testEdition())
		require.NoError(t, err)

		assert.Contains(t, artifact.HTML, "#FF0000")
		assert.Contains(t, artifact.HTML, "Hola")
		assert.Contains(t, strings.ToLower(artifact.Text), "hola")
		assert.Contains(t, artifact.Text, "Edición de prueba")
		assert.Empty(t, artifact.Warnings)
	})

	t.Run("deterministic", func(t *testing.T) {
		t.Parallel()
		first, err := builder.Build(testEdition())
		require.NoError(t, err)
		second, err := builder.Build(testEdition())
		require.NoError(t, err)

		assert.Equal(t, first.HTML, second.HTML)
		assert.Equal(t, first.Text, second.Text)
	})

	t.Run("styles are inlined", func(t *testing.T) {
		t.Parallel()
		artifact, err := builder.Build(testEdition())
		require.NoError(t, err)

		// The heading rule from the stylesheet must end up on the element.
		assert.Contains(t, artifact.HTML, `<h1`)
		h1 := artifact.HTML[strings.Index(artifact.HTML, "<h1"):]
		h1 = h1[:strings.Index(h1, ">")]
		assert.Contains(t, h1, "style=")
	})

	t.Run("card rich text is sanitized, not escaped", func(t *testing.T) {
		t.Parallel()
		edition := testEdition()
		edition.Body.Cards = []models.Card{{
			Title: "Noticias",
			Body:  `<b>importante</b><script>alert(1)</script>`,
		}}

		artifact, err := builder.Build(edition)
		require.NoError(t, err)
		assert.Contains(t, artifact.HTML, "<b>importante</b>")
		assert.NotContains(t, artifact.HTML, "<script>")
	})

	t.Run("card images render in slot order", func(t *testing.T) {
		t.Parallel()
		edition := testEdition()
		edition.Body.Cards = []models.Card{{
			Image: models.SlottedImages{Slots: []string{"https://x/first.png", "", "https://x/second.png"}},
		}}

		artifact, err := builder.Build(edition)
		require.NoError(t, err)
		first := strings.Index(artifact.HTML, "https://x/first.png")
		second := strings.Index(artifact.HTML, "https://x/second.png")
		require.NotEqual(t, -1, first)
		require.NotEqual(t, -1, second)
		assert.Less(t, first, second)
	})

	t.Run("cta presence follows the label/url law", func(t *testing.T) {
		t.Parallel()
		edition := testEdition()
		edition.Body.CTA = &models.CTA{Label: "Leer más", URL: "https://example.com/leer"}
		artifact, err := builder.Build(edition)
		require.NoError(t, err)
		assert.Contains(t, artifact.HTML, "Leer más")

		edition = testEdition()
		edition.Body.CTA = &models.CTA{Label: "Leer más"}
		artifact, err = builder.Build(edition)
		require.NoError(t, err)
		assert.NotContains(t, artifact.HTML, "Leer más")
	})

	t.Run("normalization warnings ride along", func(t *testing.T) {
		t.Parallel()
		edition := testEdition()
		edition.Meta.Issue = "No. 12"
		artifact, err := builder.Build(edition)
		require.NoError(t, err)
		require.NotEmpty(t, artifact.Warnings)
		assert.Contains(t, artifact.Warnings[0], "issue number")
	})

	t.Run("wraps long text lines", func(t *testing.T) {
		t.Parallel()
		edition := testEdition()
		edition.Body.Subheading = strings.Repeat("palabra ", 40)
		artifact, err := builder.Build(edition)
		require.NoError(t, err)
		for _, line := range strings.Split(artifact.Text, "\n") {
			assert.LessOrEqual(t, len(line), 80, "line exceeds wrap column: %q", line)
		}
	})

	t.Run("nil edition is rejected", func(t *testing.T) {
		t.Parallel()
		_, err := builder.Build(nil)
		assert.Error(t, err)
	})
}
