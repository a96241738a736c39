package models

// Asset is an uploaded image stored under the public uploads directory.
// Editions reference assets only by URL; the media store owns the file.
type Asset struct {
	Name string `json:"name"`
	URL  string `json:"url"`
	Path string `json:"-"`
}

// Attachment pairs a stored upload with the content-id that replaces its URL
// in outgoing mail, so delivered messages do not depend on the server being
// reachable.
type Attachment struct {
	Filename  string
	Path      string
	ContentID string
}
