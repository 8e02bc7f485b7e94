package recipe

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TimestampLayout is the ISO-8601 layout used for comment timestamps.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Idea is a lightweight name and description produced by the generator.
// It only becomes a Recipe once selected.
type Idea struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Comment is an immutable remark left on a recipe.
type Comment struct {
	ID        string `json:"id,omitempty"`
	Author    string `json:"author"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
}

// NewComment stamps a comment with a fresh ID and the given time in UTC.
func NewComment(author, text string, at time.Time) Comment {
	return Comment{
		ID:        uuid.NewString(),
		Author:    author,
		Text:      text,
		Timestamp: at.UTC().Format(TimestampLayout),
	}
}

// Content holds the fields that are replaced wholesale on every regeneration.
type Content struct {
	RecipeName   string   `json:"recipeName"`
	Description  string   `json:"description"`
	PrepTime     string   `json:"prepTime"`
	CookTime     string   `json:"cookTime"`
	Servings     string   `json:"servings"`
	Ingredients  []string `json:"ingredients"`
	Instructions []string `json:"instructions"`
	ImageURL     string   `json:"imageUrl,omitempty"`
}

// Interaction holds the per-user state that survives regeneration.
type Interaction struct {
	Likes    int       `json:"likes"`
	IsLiked  bool      `json:"isLiked"`
	IsSaved  bool      `json:"isSaved"`
	Comments []Comment `json:"comments"`
}

// Recipe is the full record kept in the Store, keyed by RecipeName.
type Recipe struct {
	Content
	Interaction
}

// UnmarshalJSON implements the json.Unmarshaler interface for Recipe.
func (r *Recipe) UnmarshalJSON(data []byte) error {
	type Alias Recipe // Create an alias to avoid infinite recursion
	aux := (*Alias)(r)
	if err := json.Unmarshal(data, aux); err != nil {
		return err
	}
	if r.Comments == nil {
		r.Comments = []Comment{}
	}
	if r.Likes < 0 {
		r.Likes = 0
	}
	return nil
}

// Merge builds a Recipe from freshly generated content and the record it
// replaces. Content always comes from c; likes, flags and comments come
// from existing, or start at zero when existing is nil.
func Merge(c Content, existing *Recipe) Recipe {
	r := Recipe{
		Content:     c.clone(),
		Interaction: Interaction{Comments: []Comment{}},
	}
	if existing != nil {
		r.Interaction = existing.Interaction.clone()
	}
	return r
}

// Clone returns a deep copy so callers never share slices with the Store.
func (r Recipe) Clone() Recipe {
	return Recipe{Content: r.Content.clone(), Interaction: r.Interaction.clone()}
}

func (c Content) clone() Content {
	out := c
	out.Ingredients = append([]string(nil), c.Ingredients...)
	out.Instructions = append([]string(nil), c.Instructions...)
	return out
}

func (i Interaction) clone() Interaction {
	out := i
	out.Comments = make([]Comment, len(i.Comments))
	copy(out.Comments, i.Comments)
	return out
}

// Normalize trims every text field and drops blank list entries.
func (c *Content) Normalize() {
	c.RecipeName = strings.TrimSpace(c.RecipeName)
	c.Description = strings.TrimSpace(c.Description)
	c.PrepTime = strings.TrimSpace(c.PrepTime)
	c.CookTime = strings.TrimSpace(c.CookTime)
	c.Servings = strings.TrimSpace(c.Servings)
	c.Ingredients = compact(c.Ingredients)
	c.Instructions = compact(c.Instructions)
}

// Validate reports whether generated content is complete enough to be stored.
func (c Content) Validate() error {
	missing := func(field string) error {
		return fmt.Errorf("%w: missing %s", ErrInvalidRecipe, field)
	}
	switch {
	case c.RecipeName == "":
		return missing("recipeName")
	case c.Description == "":
		return missing("description")
	case c.PrepTime == "":
		return missing("prepTime")
	case c.CookTime == "":
		return missing("cookTime")
	case c.Servings == "":
		return missing("servings")
	case len(c.Ingredients) == 0:
		return missing("ingredients")
	case len(c.Instructions) == 0:
		return missing("instructions")
	}
	return nil
}

// ValidateIdeas rejects empty lists and ideas without a name or description.
func ValidateIdeas(ideas []Idea) error {
	if len(ideas) == 0 {
		return fmt.Errorf("%w: no ideas returned", ErrInvalidIdeas)
	}
	for i, idea := range ideas {
		if strings.TrimSpace(idea.Name) == "" || strings.TrimSpace(idea.Description) == "" {
			return fmt.Errorf("%w: idea %d is incomplete", ErrInvalidIdeas, i)
		}
	}
	return nil
}

func compact(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
