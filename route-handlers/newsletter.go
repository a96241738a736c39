package routehandlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/Jvargast/newsletter-fisuc/delivery"
	"github.com/Jvargast/newsletter-fisuc/models"
	"github.com/Jvargast/newsletter-fisuc/pipeline"
	"github.com/Jvargast/newsletter-fisuc/webutil"
)

const (
	// maxPayloadBytes caps the edition JSON body.
	maxPayloadBytes = 2 << 20

	defaultSubject = "Prueba Newsletter"
)

// NewsletterHandler serves the build and test-send endpoints.
type NewsletterHandler struct {
	Builder *pipeline.Builder
	Mailer  delivery.Mailer
	Store   delivery.Resolver
	TestTo  string
}

func NewNewsletterHandler(builder *pipeline.Builder, mailer delivery.Mailer, store delivery.Resolver, testTo string) *NewsletterHandler {
	return &NewsletterHandler{
		Builder: builder,
		Mailer:  mailer,
		Store:   store,
		TestTo:  testTo,
	}
}

type buildResponse struct {
	Ok     bool     `json:"ok"`
	HTML   string   `json:"html"`
	Text   string   `json:"text"`
	Errors []string `json:"errors"`
}

type sendResponse struct {
	Ok        bool   `json:"ok"`
	MessageID string `json:"messageId"`
	Response  string `json:"response"`
}

// HandleBuild renders an edition to final HTML plus its plain-text fallback.
// Preview and download both go through here; image URLs stay direct so the
// result renders in a browser.
func (h *NewsletterHandler) HandleBuild(w http.ResponseWriter, r *http.Request) error {
	edition, err := decodeEdition(w, r)
	if err != nil {
		return err
	}

	artifact, err := h.Builder.Build(edition)
	if err != nil {
		// Render failures are surfaced verbatim so the admin can fix the payload.
		return webutil.NewHTTPErrorWrap(http.StatusInternalServerError, err.Error(), err)
	}

	webutil.RespondWithJSON(w, http.StatusOK, buildResponse{
		Ok:     true,
		HTML:   artifact.HTML,
		Text:   artifact.Text,
		Errors: artifact.Warnings,
	})
	return nil
}

// HandleSendTest builds the edition, rewrites locally hosted images to cid
// attachments, and sends one test email. A single best-effort attempt, no
// retry.
func (h *NewsletterHandler) HandleSendTest(w http.ResponseWriter, r *http.Request) error {
	edition, err := decodeEdition(w, r)
	if err != nil {
		return err
	}

	to := strings.TrimSpace(r.URL.Query().Get("to"))
	if to == "" {
		to = h.TestTo
	}
	if to == "" {
		return webutil.ErrBadRequest("No recipient: pass ?to= or configure TEST_TO")
	}

	artifact, err := h.Builder.Build(edition)
	if err != nil {
		return webutil.NewHTTPErrorWrap(http.StatusInternalServerError, err.Error(), err)
	}

	htmlBody, attachments := delivery.Cidify(artifact.HTML, h.Store)

	subject := strings.TrimSpace(edition.Body.Preview)
	if subject == "" {
		subject = defaultSubject
	}

	result, err := h.Mailer.Send(&delivery.Message{
		To:          to,
		Subject:     subject,
		Text:        artifact.Text,
		HTML:        htmlBody,
		Attachments: attachments,
	})
	if err != nil {
		return webutil.NewHTTPErrorWrap(http.StatusInternalServerError, err.Error(), err)
	}

	webutil.RespondWithJSON(w, http.StatusOK, sendResponse{
		Ok:        true,
		MessageID: result.MessageID,
		Response:  result.Response,
	})
	return nil
}

func decodeEdition(w http.ResponseWriter, r *http.Request) (*models.Edition, error) {
	defer r.Body.Close()

	var edition models.Edition
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxPayloadBytes))
	if err := decoder.Decode(&edition); err != nil {
		return nil, webutil.ErrBadRequestWrap("Invalid edition payload: "+err.Error(), err)
	}
	return &edition, nil
}
