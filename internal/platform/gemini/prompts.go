package gemini

import (
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"

	"chefsnap/internal/recipe"
	"chefsnap/internal/user"
)

var recipeSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"recipeName":  {Type: genai.TypeString, Description: "The name of the recipe."},
		"description": {Type: genai.TypeString, Description: "A short, enticing description of the dish."},
		"prepTime":    {Type: genai.TypeString, Description: "Estimated preparation time (e.g., '15 minutes')."},
		"cookTime":    {Type: genai.TypeString, Description: "Estimated cooking time (e.g., '25 minutes')."},
		"servings":    {Type: genai.TypeString, Description: "How many servings the recipe makes (e.g., '4 servings')."},
		"ingredients": {
			Type:  genai.TypeArray,
			Items: &genai.Schema{Type: genai.TypeString, Description: "An ingredient with its quantity (e.g., '1 cup all-purpose flour')."},
		},
		"instructions": {
			Type:  genai.TypeArray,
			Items: &genai.Schema{Type: genai.TypeString, Description: "A single step in the cooking instructions."},
		},
	},
	Required: []string{"recipeName", "description", "prepTime", "cookTime", "servings", "ingredients", "instructions"},
}

var ideasSchema = &genai.Schema{
	Type: genai.TypeArray,
	Items: &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"name":        {Type: genai.TypeString, Description: "The catchy name of the recipe idea."},
			"description": {Type: genai.TypeString, Description: "A brief, one-sentence enticing description of the recipe idea."},
		},
		Required: []string{"name", "description"},
	},
}

// IdeaCount is how many ideas the prompts ask for.
const IdeaCount = 8

func ideasPrompt(q recipe.IdeaQuery, language string) string {
	var task string
	switch q.Kind {
	case recipe.IdeaKindSearch:
		task = fmt.Sprintf("You are a recipe search assistant. Find %d relevant and creative recipe ideas based on the user's search query: %q.", IdeaCount, q.Text)
	default:
		task = fmt.Sprintf("You are a recipe assistant. Generate a list of %d popular and creative recipe ideas for the category %q.", IdeaCount, q.Text)
	}
	return strings.Join([]string{
		task,
		"For each idea, provide a catchy name and a brief, enticing one-sentence description.",
		fmt.Sprintf("IMPORTANT: The entire response, including names and descriptions, MUST be in %s.", user.LanguageName(language)),
		"Structure your response in the specified JSON format.",
	}, "\n")
}

func recipePrompt(subject recipe.Subject, language string) string {
	target := user.LanguageName(language)

	if subject.Video == nil {
		return strings.Join([]string{
			fmt.Sprintf("You are a world-class culinary expert. Generate a complete, detailed, and easy-to-follow recipe for %q.", subject.Name),
			`The recipe should have a standard serving size (e.g., 4-6 servings) unless the name implies a different quantity. Ensure the "servings" field in the JSON output reflects this.`,
			fmt.Sprintf("IMPORTANT: The entire recipe, including the recipe name, description, ingredients, and instructions, MUST be in %s.", target),
			"Structure your response in the specified JSON format.",
		}, "\n")
	}

	v := subject.Video
	lines := []string{
		"You are a world-class culinary expert who can figure out a recipe from a video URL.",
		"Your primary goal is to generate a detailed, easy-to-follow recipe.",
		"Base your recipe on the video's title, description, and any additional context provided.",
		"Video URL: " + v.URL,
	}
	if v.Image != nil {
		lines = append(lines, "An image has been provided as crucial context. Analyze it carefully to identify ingredients, the final dish, and cooking style. It is likely a screenshot from the video and should be prioritized.")
	}
	if d := strings.TrimSpace(v.Details); d != "" {
		lines = append(lines, fmt.Sprintf("Additional User Details: %q", d))
	}
	lines = append(lines,
		"Please provide a complete recipe. If the information is vague, use your expertise to create the most plausible recipe.",
		`The recipe should have a standard serving size (e.g., 4-6 servings) based on the video's context. Ensure the "servings" field in the JSON output reflects this.`,
		fmt.Sprintf("IMPORTANT: The entire recipe MUST be in %s.", target),
		"Structure your response in the specified JSON format.",
	)
	return strings.Join(lines, "\n")
}

func imagePrompt(recipeName string) string {
	return fmt.Sprintf("Gourmet food photography of %s, styled for a premium cooking magazine. Natural lighting, vibrant colors, and professional plating.", recipeName)
}
