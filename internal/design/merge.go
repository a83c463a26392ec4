package design

import "slices"

// Gap is the horizontal spacing between consecutively placed artifacts.
const Gap = 120

// NextPlacement computes the canvas position for a newly inserted artifact
// of type t. With no previous artifact the screen is centered on the origin.
// Otherwise it is placed to the right of the previous one, separated by Gap.
// Overlap avoidance is only against the immediately preceding artifact;
// manual repositioning elsewhere is not collision-checked.
func NextPlacement(prev *Artifact, t ArtifactType) (x, y float64) {
	if prev == nil {
		return -DefaultWidth(t) / 2, 0
	}
	return prev.X + prev.EffectiveWidth() + Gap, 0
}

// Merge folds newly parsed artifacts into the existing canvas list and
// returns the next full list, ready to be persisted whole.
//
// An incoming artifact whose title already exists replaces only that
// artifact's Content and IsComplete: position, dimensions and user
// annotations are never perturbed by a content update. A genuinely new
// artifact is appended with a position from NextPlacement against the last
// element of the (possibly already extended) list.
func Merge(existing, incoming []Artifact) []Artifact {
	next := slices.Clone(existing)

	byTitle := make(map[string]int, len(next))
	for i, a := range next {
		byTitle[a.Title] = i
	}

	for _, in := range incoming {
		if i, ok := byTitle[in.Title]; ok {
			next[i].Content = in.Content
			next[i].IsComplete = in.IsComplete
			continue
		}

		var prev *Artifact
		if len(next) > 0 {
			prev = &next[len(next)-1]
		}
		in.X, in.Y = NextPlacement(prev, in.Type)

		byTitle[in.Title] = len(next)
		next = append(next, in)
	}

	return next
}
