package webutil

const (
	// Header Keys
	HeaderContentType = "Content-Type"

	// Content Types
	ContentTypeJSONUTF8 = "application/json; charset=utf-8"
	ContentTypeHTMLUTF8 = "text/html; charset=utf-8"
)
