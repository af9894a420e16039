package catalog

// Sign is one entry of the content catalog. Signs without a media reference
// cannot appear in a quiz.
type Sign struct {
	ID         string `json:"id"`
	Display    string `json:"display"`
	Category   string `json:"category"`
	Difficulty int    `json:"difficulty"`
	MediaRef   string `json:"media_ref"`
}

// Usable reports whether the sign can back a quiz question.
func (s Sign) Usable() bool {
	return s.MediaRef != ""
}

// Filter narrows pool sampling for quiz generation.
type Filter struct {
	// Topic restricts to a category when non-empty (e.g. "Alphabet").
	Topic string
	// MaxDifficulty keeps signs with difficulty <= MaxDifficulty. Zero means 1.
	MaxDifficulty int
}

// Detail is the full record returned for a single sign lookup.
type Detail struct {
	ID          string   `json:"id"`
	Label       string   `json:"label"`
	Category    string   `json:"category"`
	Description string   `json:"description"`
	Aliases     []string `json:"aliases"`
	Tags        []string `json:"tags"`
	Difficulty  int      `json:"difficulty"`
	MediaRef    string   `json:"media_ref"`
}

// ListItem is the trimmed projection used by the browse grid.
type ListItem struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Category string `json:"category"`
	MediaRef string `json:"media_ref"`
}
