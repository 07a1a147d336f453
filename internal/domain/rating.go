package domain

// RatingLabel is a rating value as named by the server (e.g. "KF", "Safe")
type RatingLabel string

// Waiting marks items not yet rated. It is a filter value only and is never
// offered as an assignable rating unless the item currently holds it.
const Waiting RatingLabel = "Waiting"

// RatingKind selects one of the two rating dimensions
type RatingKind int

const (
	RatingContent RatingKind = iota
	RatingSafety
)

// String returns the wire name used by the rate endpoints. The media
// endpoint compares it case-sensitively.
func (k RatingKind) String() string {
	if k == RatingSafety {
		return "Safety"
	}
	return "Content"
}

// ItemKind selects whether a rating change targets a post or a single media
type ItemKind int

const (
	ItemPost ItemKind = iota
	ItemMedia
)

func (k ItemKind) String() string {
	if k == ItemMedia {
		return "media"
	}
	return "post"
}

// RatingCatalog holds the labels the server accepts for each kind.
type RatingCatalog struct {
	Content []RatingLabel
	Safety  []RatingLabel
}

// Labels returns the catalog labels for a kind
func (c RatingCatalog) Labels(kind RatingKind) []RatingLabel {
	if kind == RatingSafety {
		return c.Safety
	}
	return c.Content
}

// RatingChange is a single operator edit
type RatingChange struct {
	ItemID     string // PostID for posts, decimal media ID for media
	ItemKind   ItemKind
	RatingKind RatingKind
	Value      RatingLabel
}
