package design

// ArtifactType determines the default dimensions of a generated screen.
type ArtifactType string

const (
	TypeApp   ArtifactType = "app"
	TypeWeb   ArtifactType = "web"
	TypeOther ArtifactType = "other"
)

// ParseArtifactType maps a raw type attribute onto the closed set of types.
// Anything unrecognized is treated as "other".
func ParseArtifactType(s string) ArtifactType {
	switch ArtifactType(s) {
	case TypeApp, TypeWeb:
		return ArtifactType(s)
	default:
		return TypeOther
	}
}

// Artifact is one generated design screen with its canvas position.
// Title is the merge key: a later artifact with the same title is a
// revision of the earlier one, never a duplicate.
type Artifact struct {
	Title      string       `json:"title"`
	Type       ArtifactType `json:"type"`
	Content    string       `json:"content"`
	IsComplete bool         `json:"is_complete"`
	X          float64      `json:"x"`
	Y          float64      `json:"y"`
	Width      float64      `json:"width,omitempty"`
	Height     float64      `json:"height,omitempty"`
	Liked      *bool        `json:"liked,omitempty"`
}

// DefaultWidth returns the canvas width used for a type when the artifact
// carries none of its own.
func DefaultWidth(t ArtifactType) float64 {
	switch t {
	case TypeApp:
		return 380
	case TypeWeb:
		return 1024
	default:
		return 800
	}
}

// DefaultHeight returns the canvas height used for a type when the artifact
// carries none of its own.
func DefaultHeight(t ArtifactType) float64 {
	switch t {
	case TypeApp:
		return 844
	case TypeWeb:
		return 768
	default:
		return 600
	}
}

// EffectiveWidth is the artifact's own width, or the type default when unset.
func (a Artifact) EffectiveWidth() float64 {
	if a.Width > 0 {
		return a.Width
	}
	return DefaultWidth(a.Type)
}
