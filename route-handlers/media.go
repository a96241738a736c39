package routehandlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Jvargast/newsletter-fisuc/models"
	"github.com/Jvargast/newsletter-fisuc/storage"
	"github.com/Jvargast/newsletter-fisuc/webutil"
)

const (
	uploadFieldName = "image"

	// PublicUploadPath is the URL path segment uploaded images are served
	// under.
	PublicUploadPath = "/uploads/"
)

// MediaHandler serves the upload, gallery listing, and deletion endpoints.
type MediaHandler struct {
	Store *storage.MediaStore
}

func NewMediaHandler(store *storage.MediaStore) *MediaHandler {
	return &MediaHandler{Store: store}
}

// HandleUpload accepts one image file under the "image" multipart field and
// stores it under a randomized name.
func (h *MediaHandler) HandleUpload(w http.ResponseWriter, r *http.Request) error {
	file, fh, err := r.FormFile(uploadFieldName)
	if err != nil {
		return webutil.ErrBadRequestWrap("Missing image file", err)
	}
	file.Close()

	name, err := h.Store.Save(fh)
	if err != nil {
		if errors.Is(err, storage.ErrNotAnImage) || errors.Is(err, storage.ErrTooLarge) {
			return webutil.ErrBadRequest(err.Error())
		}
		return fmt.Errorf("failed to store upload: %w", err)
	}

	webutil.RespondWithJSON(w, http.StatusOK, map[string]any{
		"ok":  true,
		"url": assetURL(r, name),
	})
	return nil
}

// HandleListMedia returns every stored asset with a URL resolvable by the
// requesting client.
func (h *MediaHandler) HandleListMedia(w http.ResponseWriter, r *http.Request) error {
	assets, err := h.Store.List()
	if err != nil {
		return fmt.Errorf("failed to list media: %w", err)
	}

	items := make([]models.Asset, 0, len(assets))
	for _, a := range assets {
		a.URL = assetURL(r, a.Name)
		items = append(items, a)
	}

	webutil.RespondWithJSON(w, http.StatusOK, map[string]any{
		"ok":    true,
		"items": items,
	})
	return nil
}

// HandleDeleteMedia deletes a stored asset by name. Immediate and
// unconditional; editions still pointing at the file are not consulted.
func (h *MediaHandler) HandleDeleteMedia(w http.ResponseWriter, r *http.Request) error {
	name := chi.URLParam(r, "name")

	if err := h.Store.Delete(name); err != nil {
		if errors.Is(err, storage.ErrInvalidName) {
			return webutil.ErrBadRequest("Invalid asset name")
		}
		// os.ErrNotExist is mapped to 404 by MakeHandler.
		return err
	}

	webutil.RespondWithJSON(w, http.StatusOK, map[string]any{"ok": true})
	return nil
}

// assetURL builds a fully qualified URL for a stored asset from the request
// host, matching what the admin client pastes into edition payloads.
func assetURL(r *http.Request, name string) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if fwd := r.Header.Get("X-Forwarded-Proto"); fwd != "" {
		scheme = fwd
	}
	return fmt.Sprintf("%s://%s%s%s", scheme, r.Host, PublicUploadPath, name)
}
