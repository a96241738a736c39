package delivery

import (
	"fmt"
	"net/url"
	"path"
	"regexp"

	"github.com/Jvargast/newsletter-fisuc/models"
)

// uploadSrcRegex matches img src attributes that point back at our own
// upload path. Anything else (external CDNs, data URIs) is left alone.
var uploadSrcRegex = regexp.MustCompile(`src="(https?://[^"]+/uploads/[^"]+)"`)

// Resolver maps an uploaded asset name to its on-disk path.
type Resolver interface {
	Resolve(name string) (string, bool)
}

// Cidify rewrites image references that resolve to locally stored uploads
// into content-id references and returns the matching attachment list, so
// the delivered mail does not depend on externally reachable image URLs.
// References whose file is missing keep their original URL: a dangling
// external reference beats a broken rewrite. Content-ids are unique within
// one call via a monotonic counter.
func Cidify(htmlIn string, store Resolver) (string, []models.Attachment) {
	attachments := []models.Attachment{}
	next := 0

	rewritten := uploadSrcRegex.ReplaceAllStringFunc(htmlIn, func(match string) string {
		href := uploadSrcRegex.FindStringSubmatch(match)[1]

		u, err := url.Parse(href)
		if err != nil {
			return match
		}
		name := path.Base(u.Path)

		localPath, ok := store.Resolve(name)
		if !ok {
			return match
		}

		cid := fmt.Sprintf("img%d@newsletter", next)
		next++
		attachments = append(attachments, models.Attachment{
			Filename:  name,
			Path:      localPath,
			ContentID: cid,
		})
		return fmt.Sprintf(`src="cid:%s"`, cid)
	})

	return rewritten, attachments
}
