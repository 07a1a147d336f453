package domain

import (
	"slices"
)

// SortMode controls feed ordering
type SortMode string

const (
	SortNewest SortMode = "newest"
	SortOldest SortMode = "oldest"
	SortRandom SortMode = "random"
)

// SortModes lists the modes in display order
var SortModes = []SortMode{SortNewest, SortOldest, SortRandom}

// Valid reports whether s is a known sort mode
func (s SortMode) Valid() bool {
	return slices.Contains(SortModes, s)
}

// Label returns a display label
func (s SortMode) Label() string {
	switch s {
	case SortOldest:
		return "Oldest"
	case SortRandom:
		return "Random"
	default:
		return "Newest"
	}
}

// FilterState is the active feed filter. An empty set means any label.
type FilterState struct {
	Content []RatingLabel
	Safety  []RatingLabel
	Sort    SortMode
}

// Canonical returns a copy with duplicate labels removed, sets sorted and
// an unknown sort replaced by newest.
func (f FilterState) Canonical() FilterState {
	out := FilterState{
		Content: dedupeLabels(f.Content),
		Safety:  dedupeLabels(f.Safety),
		Sort:    f.Sort,
	}
	if !out.Sort.Valid() {
		out.Sort = SortNewest
	}
	return out
}

// Equal compares two filter states as sets
func (f FilterState) Equal(other FilterState) bool {
	a, b := f.Canonical(), other.Canonical()
	return a.Sort == b.Sort && slices.Equal(a.Content, b.Content) && slices.Equal(a.Safety, b.Safety)
}

// Has reports whether the set for kind contains label
func (f FilterState) Has(kind RatingKind, label RatingLabel) bool {
	if kind == RatingSafety {
		return slices.Contains(f.Safety, label)
	}
	return slices.Contains(f.Content, label)
}

// Toggle adds or removes label from the set for kind
func (f FilterState) Toggle(kind RatingKind, label RatingLabel) FilterState {
	set := &f.Content
	if kind == RatingSafety {
		set = &f.Safety
	}
	if i := slices.Index(*set, label); i >= 0 {
		*set = slices.Delete(slices.Clone(*set), i, i+1)
	} else {
		*set = append(slices.Clone(*set), label)
	}
	return f
}

func dedupeLabels(in []RatingLabel) []RatingLabel {
	out := make([]RatingLabel, 0, len(in))
	for _, l := range in {
		if l == "" || slices.Contains(out, l) {
			continue
		}
		out = append(out, l)
	}
	slices.Sort(out)
	return out
}
