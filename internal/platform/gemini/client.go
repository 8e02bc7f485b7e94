package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"chefsnap/internal/logger"
	"chefsnap/internal/recipe"
)

// Default model names.
const (
	DefaultTextModel  = "gemini-2.5-flash"
	DefaultImageModel = "gemini-2.5-flash-image"
)

// ErrEmptyResponse is returned when Gemini answers without usable content.
var ErrEmptyResponse = errors.New("empty response from Gemini")

// contentModel is the part of *genai.GenerativeModel the client uses.
type contentModel interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// Client generates recipe ideas, recipes and dish photos with Gemini.
type Client struct {
	client     *genai.Client
	textModel  string
	imageModel string
	log        *logger.Logger

	// newModel builds a model configured for a response schema; a nil
	// schema means free-form output.
	newModel func(name string, schema *genai.Schema) contentModel
}

// Option configures the Client.
type Option func(*Client)

// WithTextModel overrides the model used for ideas and recipes.
func WithTextModel(name string) Option {
	return func(c *Client) {
		if name != "" {
			c.textModel = name
		}
	}
}

// WithImageModel overrides the model used for dish photos.
func WithImageModel(name string) Option {
	return func(c *Client) {
		if name != "" {
			c.imageModel = name
		}
	}
}

// WithLogger sets the logger.
func WithLogger(log *logger.Logger) Option {
	return func(c *Client) { c.log = log }
}

// NewClient creates a new Gemini client.
func NewClient(ctx context.Context, apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}

	c := newClient(opts...)
	c.client = client
	c.newModel = func(name string, schema *genai.Schema) contentModel {
		model := client.GenerativeModel(name)
		if schema != nil {
			model.ResponseMIMEType = "application/json"
			model.ResponseSchema = schema
		}
		return model
	}
	return c, nil
}

func newClient(opts ...Option) *Client {
	c := &Client{
		textModel:  DefaultTextModel,
		imageModel: DefaultImageModel,
		log:        logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Close releases the underlying connection.
func (c *Client) Close() error {
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}

// GenerateIdeas returns recipe ideas for a category or a search query.
func (c *Client) GenerateIdeas(ctx context.Context, q recipe.IdeaQuery, language string) ([]recipe.Idea, error) {
	model := c.newModel(c.textModel, ideasSchema)
	resp, err := model.GenerateContent(ctx, genai.Text(ideasPrompt(q, language)))
	if err != nil {
		return nil, err
	}

	text, err := firstText(resp)
	if err != nil {
		return nil, err
	}

	var ideas []recipe.Idea
	if err := json.Unmarshal([]byte(extractJSON(text, '[', ']')), &ideas); err != nil {
		return nil, fmt.Errorf("failed to unmarshal recipe ideas: %w. Raw response: %s", err, text)
	}
	if err := recipe.ValidateIdeas(ideas); err != nil {
		return nil, err
	}
	return ideas, nil
}

// GenerateRecipe returns recipe content for a name or a video context.
func (c *Client) GenerateRecipe(ctx context.Context, subject recipe.Subject, language string) (recipe.Content, error) {
	parts := []genai.Part{genai.Text(recipePrompt(subject, language))}
	if subject.Video != nil && subject.Video.Image != nil {
		img := subject.Video.Image
		parts = append(parts, genai.Blob{MIMEType: img.MIMEType, Data: img.Data})
	}

	model := c.newModel(c.textModel, recipeSchema)
	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		return recipe.Content{}, err
	}

	text, err := firstText(resp)
	if err != nil {
		return recipe.Content{}, err
	}

	var content recipe.Content
	if err := json.Unmarshal([]byte(extractJSON(text, '{', '}')), &content); err != nil {
		return recipe.Content{}, fmt.Errorf("failed to unmarshal recipe JSON: %w. Raw response: %s", err, text)
	}
	content.ImageURL = ""
	content.Normalize()
	if err := content.Validate(); err != nil {
		return recipe.Content{}, err
	}
	return content, nil
}

// GenerateImage asks the image model for a dish photo. A response without
// inline image data yields nil and no error.
func (c *Client) GenerateImage(ctx context.Context, recipeName string) (*recipe.Image, error) {
	model := c.newModel(c.imageModel, nil)
	resp, err := model.GenerateContent(ctx, genai.Text(imagePrompt(recipeName)))
	if err != nil {
		return nil, err
	}
	if resp == nil {
		return nil, nil
	}
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if blob, ok := part.(genai.Blob); ok && len(blob.Data) > 0 {
				return &recipe.Image{MIMEType: blob.MIMEType, Data: blob.Data}, nil
			}
		}
	}
	c.log.Debug("image model returned no image for %q", recipeName)
	return nil, nil
}

// firstText concatenates the text parts of the first candidate.
func firstText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", ErrEmptyResponse
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	if strings.TrimSpace(b.String()) == "" {
		return "", ErrEmptyResponse
	}
	return b.String(), nil
}

// extractJSON cuts the outermost JSON value out of a reply that might be
// wrapped in markdown.
func extractJSON(text string, open, close byte) string {
	start := strings.IndexByte(text, open)
	end := strings.LastIndexByte(text, close)
	if start == -1 || end == -1 || start > end {
		return strings.TrimSpace(text)
	}
	return text[start : end+1]
}
