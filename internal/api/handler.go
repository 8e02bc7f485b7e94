package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"chefsnap/internal/app"
	"chefsnap/internal/imageutil"
	"chefsnap/internal/logger"
	"chefsnap/internal/recipe"
	"chefsnap/internal/user"
)

// Timeouts for generator calls and for plain reads and writes.
const (
	GenerateTimeout = 45 * time.Second
	StoreTimeout    = 5 * time.Second
)

// Handler handles HTTP requests.
type Handler struct {
	App *app.App
	log *logger.Logger
}

// NewHandler creates a new Handler.
func NewHandler(a *app.App, log *logger.Logger) *Handler {
	if log == nil {
		log = logger.Nop()
	}
	return &Handler{App: a, log: log}
}

type signUpRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Language string `json:"language"`
}

type nameRequest struct {
	Name string `json:"name" binding:"required"`
}

type commentRequest struct {
	Text string `json:"text" binding:"required"`
}

// GetSession returns the signed-in user.
func (h *Handler) GetSession(c *gin.Context) {
	u, ok := h.App.Session.Current()
	if !ok {
		c.String(http.StatusNotFound, "Not signed in")
		return
	}
	c.JSON(http.StatusOK, u)
}

// SignUp starts a session.
func (h *Handler) SignUp(c *gin.Context) {
	var req signUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.String(http.StatusBadRequest, fmt.Sprintf("invalid request body: %s", err.Error()))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), StoreTimeout)
	defer cancel()

	u, err := h.App.Session.SignUp(ctx, req.Name, req.Email, req.Language)
	if err != nil {
		h.writeError(c, err, StoreTimeout)
		return
	}
	c.JSON(http.StatusCreated, u)
}

// Logout ends the session.
func (h *Handler) Logout(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), StoreTimeout)
	defer cancel()

	if err := h.App.Session.Logout(ctx); err != nil {
		h.writeError(c, err, StoreTimeout)
		return
	}
	c.Status(http.StatusNoContent)
}

// RecipeFinder generates a recipe from a video URL, an optional
// screenshot and optional details.
func (h *Handler) RecipeFinder(c *gin.Context) {
	req := app.VideoRequest{
		URL:     c.PostForm("url"),
		Details: c.PostForm("details"),
	}

	file, err := c.FormFile("file")
	switch {
	case errors.Is(err, http.ErrMissingFile):
	case err != nil:
		c.String(http.StatusBadRequest, fmt.Sprintf("get form err: %s", err.Error()))
		return
	default:
		if !imageutil.AllowedExtension(file.Filename) {
			c.String(http.StatusBadRequest, "Invalid file type. Only JPEG, JPG, and PNG images are allowed.")
			return
		}
		src, err := file.Open()
		if err != nil {
			c.String(http.StatusInternalServerError, fmt.Sprintf("open file err: %s", err.Error()))
			return
		}
		defer src.Close()

		req.Screenshot, err = io.ReadAll(src)
		if err != nil {
			c.String(http.StatusInternalServerError, fmt.Sprintf("read image err: %s", err.Error()))
			return
		}
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), GenerateTimeout)
	defer cancel()

	r, err := h.App.GenerateFromURL(ctx, req)
	if err != nil {
		h.writeError(c, err, GenerateTimeout)
		return
	}
	c.JSON(http.StatusOK, r)
}

// GetIdeas lists recipe ideas for ?category=.
func (h *Handler) GetIdeas(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), GenerateTimeout)
	defer cancel()

	ideas, err := h.App.BrowseCategory(ctx, c.Query("category"))
	if err != nil {
		h.writeError(c, err, GenerateTimeout)
		return
	}
	c.JSON(http.StatusOK, ideas)
}

// Search lists recipe ideas for ?q=.
func (h *Handler) Search(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), GenerateTimeout)
	defer cancel()

	ideas, err := h.App.Search(ctx, c.Query("q"))
	if err != nil {
		h.writeError(c, err, GenerateTimeout)
		return
	}
	c.JSON(http.StatusOK, ideas)
}

// GetCategories lists the browseable categories.
func (h *Handler) GetCategories(c *gin.Context) {
	c.JSON(http.StatusOK, recipe.Categories)
}

// SelectIdea opens or generates the recipe for an idea.
func (h *Handler) SelectIdea(c *gin.Context) {
	var req nameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.String(http.StatusBadRequest, fmt.Sprintf("invalid request body: %s", err.Error()))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), GenerateTimeout)
	defer cancel()

	r, generated, err := h.App.SelectIdea(ctx, req.Name)
	if err != nil {
		h.writeError(c, err, GenerateTimeout)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipe": r, "generated": generated})
}

// GetRecipes lists every recipe, or only saved ones with ?saved=true.
func (h *Handler) GetRecipes(c *gin.Context) {
	if c.Query("saved") == "true" {
		c.JSON(http.StatusOK, h.App.Saved())
		return
	}
	c.JSON(http.StatusOK, h.App.Store.List())
}

// GetRecipe returns a single recipe by name.
func (h *Handler) GetRecipe(c *gin.Context) {
	r, ok := h.App.Store.GetByName(c.Param("name"))
	if !ok {
		c.String(http.StatusNotFound, "Recipe not found")
		return
	}
	c.JSON(http.StatusOK, r)
}

// GetActive returns the recipe currently shown.
func (h *Handler) GetActive(c *gin.Context) {
	r, ok := h.App.Active()
	if !ok {
		c.String(http.StatusNotFound, "No active recipe")
		return
	}
	c.JSON(http.StatusOK, r)
}

// SetActive opens a stored recipe.
func (h *Handler) SetActive(c *gin.Context) {
	var req nameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.String(http.StatusBadRequest, fmt.Sprintf("invalid request body: %s", err.Error()))
		return
	}
	r, ok := h.App.OpenRecipe(req.Name)
	if !ok {
		c.String(http.StatusNotFound, "Recipe not found")
		return
	}
	c.JSON(http.StatusOK, r)
}

// ClearActive goes back to the home screen.
func (h *Handler) ClearActive(c *gin.Context) {
	h.App.Reset()
	c.Status(http.StatusNoContent)
}

// Like toggles the liked flag.
func (h *Handler) Like(c *gin.Context) {
	h.interact(c, h.App.Like)
}

// Save toggles the saved flag.
func (h *Handler) Save(c *gin.Context) {
	h.interact(c, h.App.Save)
}

// Comment adds a comment by the signed-in user.
func (h *Handler) Comment(c *gin.Context) {
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.String(http.StatusBadRequest, fmt.Sprintf("invalid request body: %s", err.Error()))
		return
	}
	h.interact(c, func(ctx context.Context, name string) (recipe.Recipe, error) {
		return h.App.Comment(ctx, name, req.Text)
	})
}

func (h *Handler) interact(c *gin.Context, fn func(ctx context.Context, name string) (recipe.Recipe, error)) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), StoreTimeout)
	defer cancel()

	r, err := fn(ctx, c.Param("name"))
	if err != nil {
		h.writeError(c, err, StoreTimeout)
		return
	}
	c.JSON(http.StatusOK, r)
}

// writeError maps an error to a plain-text response.
func (h *Handler) writeError(c *gin.Context, err error, timeout time.Duration) {
	status := statusFor(err)
	switch status {
	case http.StatusRequestTimeout:
		c.String(status, fmt.Sprintf("Request timed out after %s", timeout))
		return
	case http.StatusInternalServerError, http.StatusBadGateway:
		h.log.Error("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.String(status, err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusRequestTimeout
	case errors.Is(err, app.ErrNotSignedIn):
		return http.StatusUnauthorized
	case errors.Is(err, app.ErrRecipeNotFound):
		return http.StatusNotFound
	case errors.Is(err, app.ErrBusy):
		return http.StatusConflict
	case errors.Is(err, app.ErrGenerationFailed):
		return http.StatusBadGateway
	case errors.Is(err, app.ErrInvalidURL),
		errors.Is(err, app.ErrInvalidImage),
		errors.Is(err, app.ErrEmptyQuery),
		errors.Is(err, user.ErrMissingName),
		errors.Is(err, user.ErrMissingEmail),
		errors.Is(err, user.ErrInvalidEmail),
		errors.Is(err, recipe.ErrEmptyComment),
		errors.Is(err, recipe.ErrAnonymousComment):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
