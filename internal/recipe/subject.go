package recipe

// IdeaKind selects the prompt used to produce a list of ideas.
type IdeaKind string

const (
	// IdeaKindCategory browses a fixed category such as "Cakes".
	IdeaKindCategory IdeaKind = "category"
	// IdeaKindSearch runs a free-text search query.
	IdeaKindSearch IdeaKind = "search"
)

// Categories are the browseable categories offered on the home screen.
var Categories = []string{"Cakes", "Salads", "Pasta", "Desserts"}

// IdeaQuery is the input for a list of recipe ideas.
type IdeaQuery struct {
	Kind IdeaKind
	Text string
}

// Image is a binary image with its MIME type.
type Image struct {
	MIMEType string
	Data     []byte
}

// VideoContext is everything known about a cooking video.
type VideoContext struct {
	URL     string
	Image   *Image // optional screenshot
	Details string // optional free-text hint
}

// Subject is what a recipe is generated from: either a plain name or a
// video context. Exactly one of Name and Video is set.
type Subject struct {
	Name  string
	Video *VideoContext
}

// FromName returns a Subject for a named recipe.
func FromName(name string) Subject {
	return Subject{Name: name}
}

// FromVideo returns a Subject for a video context.
func FromVideo(v VideoContext) Subject {
	return Subject{Video: &v}
}
