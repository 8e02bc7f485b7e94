package localllm

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"chefsnap/internal/logger"
	"chefsnap/internal/recipe"
	"chefsnap/internal/user"
)

// Defaults for a local OpenAI-compatible server such as LM Studio.
const (
	DefaultURL   = "http://localhost:1234/v1/chat/completions"
	DefaultModel = "gemma-3-12b-it:2"
)

// Client represents a client for the local LLM.
type Client struct {
	httpClient *http.Client
	apiURL     string
	model      string
	log        *logger.Logger
}

// NewClient creates a new client for the local LLM. Empty arguments
// fall back to the defaults.
func NewClient(apiURL, model string, log *logger.Logger) *Client {
	if apiURL == "" {
		apiURL = DefaultURL
	}
	if model == "" {
		model = DefaultModel
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Client{
		httpClient: &http.Client{Timeout: 2 * time.Minute},
		apiURL:     apiURL,
		model:      model,
		log:        log,
	}
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// Request represents the request body for the local LLM.
type Request struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
}

// Message represents a message in the request.
type Message struct {
	Role    string    `json:"role"`
	Content []Content `json:"content"`
}

// Content represents the content of a message.
type Content struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *ImageURL `json:"image_url,omitempty"`
}

// ImageURL represents the image URL in the content.
type ImageURL struct {
	URL string `json:"url"`
}

// Response represents the response from the local LLM.
type Response struct {
	Choices []Choice `json:"choices"`
}

// Choice represents a choice in the response.
type Choice struct {
	Message ResponseMessage `json:"message"`
}

// ResponseMessage represents a message in the response.
type ResponseMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// GenerateContent sends a prompt, and optionally an image, to the local
// LLM and returns the reply text.
func (c *Client) GenerateContent(ctx context.Context, text string, image *recipe.Image) (string, error) {
	content := []Content{{Type: "text", Text: text}}
	if image != nil {
		content = append(content, Content{
			Type: "image_url",
			ImageURL: &ImageURL{
				URL: "data:" + image.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(image.Data),
			},
		})
	}

	reqBody := Request{
		Model:       c.model,
		Messages:    []Message{{Role: "user", Content: content}},
		Temperature: 1,
		MaxTokens:   2048,
	}

	reqBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewBuffer(reqBytes))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("received non-OK status code: %d", resp.StatusCode)
	}

	var llmResp Response
	if err := json.NewDecoder(resp.Body).Decode(&llmResp); err != nil {
		return "", fmt.Errorf("failed to decode response body: %w", err)
	}

	if len(llmResp.Choices) > 0 && strings.TrimSpace(llmResp.Choices[0].Message.Content) != "" {
		c.log.Debug("LLM Response: %s", llmResp.Choices[0].Message.Content)
		return llmResp.Choices[0].Message.Content, nil
	}

	return "", fmt.Errorf("no content found in response")
}

// GenerateIdeas returns recipe ideas for a category or a search query.
func (c *Client) GenerateIdeas(ctx context.Context, q recipe.IdeaQuery, language string) ([]recipe.Idea, error) {
	var prompt string
	if q.Kind == recipe.IdeaKindSearch {
		prompt = fmt.Sprintf("Find 8 relevant and creative recipe ideas for the search query %q.", q.Text)
	} else {
		prompt = fmt.Sprintf("Generate 8 popular and creative recipe ideas for the category %q.", q.Text)
	}
	prompt += fmt.Sprintf(" Write every name and description in %s.", user.LanguageName(language))
	prompt += " Return only a JSON array of objects with the keys 'name' (string) and 'description' (one sentence). The JSON response should be clean and not contain any markdown formatting."

	responseText, err := c.GenerateContent(ctx, prompt, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}

	var ideas []recipe.Idea
	if err := json.Unmarshal([]byte(cleanJSON(responseText)), &ideas); err != nil {
		return nil, fmt.Errorf("failed to unmarshal ideas from response: %w", err)
	}
	if err := recipe.ValidateIdeas(ideas); err != nil {
		return nil, err
	}
	return ideas, nil
}

// GenerateRecipe returns recipe content for a name or a video context.
func (c *Client) GenerateRecipe(ctx context.Context, subject recipe.Subject, language string) (recipe.Content, error) {
	var prompt string
	var image *recipe.Image
	if subject.Video != nil {
		prompt = fmt.Sprintf("I need a recipe for the dish cooked in this video: %s.", subject.Video.URL)
		if subject.Video.Image != nil {
			prompt += " The attached image is a screenshot from the video; prioritize it."
			image = subject.Video.Image
		}
		if d := strings.TrimSpace(subject.Video.Details); d != "" {
			prompt += fmt.Sprintf(" Additional user details: %q.", d)
		}
	} else {
		prompt = fmt.Sprintf("I need a complete recipe for %q.", subject.Name)
	}
	prompt += " Use a standard serving size (e.g., 4-6 servings)."
	prompt += fmt.Sprintf(" Write the entire recipe in %s.", user.LanguageName(language))
	prompt += " Please return a single, clean JSON object with the following keys and data types: 'recipeName' (string), 'description' (string), 'prepTime' (string), 'cookTime' (string), 'servings' (string), 'ingredients' (array of strings with quantities), and 'instructions' (array of strings). The JSON response should be clean and not contain any markdown formatting."

	responseText, err := c.GenerateContent(ctx, prompt, image)
	if err != nil {
		return recipe.Content{}, fmt.Errorf("failed to generate content: %w", err)
	}

	var content recipe.Content
	if err := json.Unmarshal([]byte(cleanJSON(responseText)), &content); err != nil {
		return recipe.Content{}, fmt.Errorf("failed to unmarshal recipe from response: %w", err)
	}
	content.ImageURL = ""
	content.Normalize()
	if err := content.Validate(); err != nil {
		return recipe.Content{}, err
	}
	return content, nil
}

// GenerateImage is not supported by text-only local models; it always
// reports no image.
func (c *Client) GenerateImage(ctx context.Context, recipeName string) (*recipe.Image, error) {
	return nil, nil
}

// cleanJSON strips markdown code fences around a reply.
func cleanJSON(input string) string {
	input = strings.TrimSpace(input)
	input = strings.TrimPrefix(input, "```json")
	input = strings.TrimPrefix(input, "```")
	input = strings.TrimSuffix(input, "```")
	return strings.TrimSpace(input)
}
