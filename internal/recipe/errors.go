package recipe

import "errors"

// Sentinel errors returned by the recipe package.
var (
	ErrInvalidRecipe    = errors.New("invalid recipe content")
	ErrInvalidIdeas     = errors.New("invalid recipe ideas")
	ErrEmptyComment     = errors.New("comment text is empty")
	ErrAnonymousComment = errors.New("comment author is required")
)
