package models

import (
	"encoding/json"
	"errors"
	"fmt"
)

// CardImage is the image payload of a card: either one direct URL or an
// ordered set of slots filled in over time. Callers switch on the concrete
// type; a card never holds both forms.
type CardImage interface {
	isCardImage()
}

// SingleImage holds one direct image URL.
type SingleImage struct {
	URL string
}

func (SingleImage) isCardImage() {}

// SlottedImages holds ordered URL slots. An empty string marks a slot that
// has not been assigned yet.
type SlottedImages struct {
	Slots []string
}

func (SlottedImages) isCardImage() {}

// Card is one repeatable content block of an edition. Body may carry raw
// HTML; the build pipeline sanitizes it before rendering it unescaped.
// Image is nil when the card has no image at all.
type Card struct {
	Title string
	Body  string
	Image CardImage
}

// UnmarshalJSON decodes the two wire shapes a card can take: an "images"
// array (possibly holding nulls for unassigned slots) selects the slotted
// variant, a plain "image" string the single variant.
func (c *Card) UnmarshalJSON(data []byte) error {
	var raw struct {
		Title  string           `json:"title"`
		Body   string           `json:"body"`
		Image  string           `json:"image"`
		Images *json.RawMessage `json:"images"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	c.Title = raw.Title
	c.Body = raw.Body

	switch {
	case raw.Images != nil:
		var slots []*string
		if err := json.Unmarshal(*raw.Images, &slots); err != nil {
			return fmt.Errorf("card images must be an array: %w", err)
		}
		img := SlottedImages{Slots: make([]string, len(slots))}
		for i, s := range slots {
			if s != nil {
				img.Slots[i] = *s
			}
		}
		c.Image = img
	case raw.Image != "":
		c.Image = SingleImage{URL: raw.Image}
	default:
		c.Image = nil
	}
	return nil
}

// MarshalJSON emits the wire shape matching the card's variant. Unassigned
// slots round-trip as nulls.
func (c Card) MarshalJSON() ([]byte, error) {
	switch img := c.Image.(type) {
	case SlottedImages:
		slots := make([]*string, len(img.Slots))
		for i := range img.Slots {
			if img.Slots[i] != "" {
				slots[i] = &img.Slots[i]
			}
		}
		return json.Marshal(struct {
			Title  string    `json:"title,omitempty"`
			Body   string    `json:"body,omitempty"`
			Images []*string `json:"images"`
		}{c.Title, c.Body, slots})
	case SingleImage:
		return json.Marshal(struct {
			Title string `json:"title,omitempty"`
			Body  string `json:"body,omitempty"`
			Image string `json:"image"`
		}{c.Title, c.Body, img.URL})
	default:
		return json.Marshal(struct {
			Title string `json:"title,omitempty"`
			Body  string `json:"body,omitempty"`
		}{c.Title, c.Body})
	}
}

// Assign places url following the auto-assignment rule: a slotted card fills
// its first empty slot, falling back to overwriting the last one when all are
// taken; any other card becomes a single-image card holding url.
func (c *Card) Assign(url string) {
	img, ok := c.Image.(SlottedImages)
	if !ok || len(img.Slots) == 0 {
		c.Image = SingleImage{URL: url}
		return
	}

	pos := -1
	for i, s := range img.Slots {
		if s == "" {
			pos = i
			break
		}
	}
	if pos == -1 {
		pos = len(img.Slots) - 1
	}
	img.Slots[pos] = url
	c.Image = img
}

// AssignSlot sets a specific slot on a slotted card, growing the slot list
// as needed. A card without an image is promoted to the slotted variant;
// single-image cards are not slot-addressable.
func (c *Card) AssignSlot(i int, url string) error {
	if i < 0 {
		return fmt.Errorf("slot index %d out of range", i)
	}

	img, ok := c.Image.(SlottedImages)
	if !ok {
		if c.Image != nil {
			return errors.New("card does not use image slots")
		}
		img = SlottedImages{}
	}

	for len(img.Slots) <= i {
		img.Slots = append(img.Slots, "")
	}
	img.Slots[i] = url
	c.Image = img
	return nil
}

// URLs returns the card's assigned image URLs in slot order, skipping empty
// slots.
func (c Card) URLs() []string {
	switch img := c.Image.(type) {
	case SingleImage:
		if img.URL == "" {
			return nil
		}
		return []string{img.URL}
	case SlottedImages:
		var urls []string
		for _, s := range img.Slots {
			if s != "" {
				urls = append(urls, s)
			}
		}
		return urls
	default:
		return nil
	}
}
