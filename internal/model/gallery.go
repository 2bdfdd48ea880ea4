package model

// GalleryImage is one ranked entry of a feature's photo gallery.
type GalleryImage struct {
	Source      string `json:"s"`
	PageTitle   string `json:"pgTit"`
	Category    string `json:"c,omitempty"`
	Description string `json:"description,omitempty"`
}

// PlaceholderComment marks a gallery envelope whose single entry is a
// street-level imagery placeholder rather than a real photo. The essence
// projector keys off a non-empty gallery comment to emit the no-photo
// marker.
const PlaceholderComment = "Image obtained from street-level imagery; no media gallery was found."

// Gallery returns the envelope's value as a gallery slice, or nil.
func (e *Envelope) Gallery() []GalleryImage {
	g, _ := e.Value.([]GalleryImage)
	return g
}

// IsPlaceholderGallery reports whether the gallery fell back to the
// street-level placeholder.
func (e *Envelope) IsPlaceholderGallery() bool {
	return e.Comments != ""
}
