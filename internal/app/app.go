// Package app wires the recipe store, the signed-in session and a recipe
// generator into the operations the HTTP and CLI front ends expose.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"chefsnap/internal/imageutil"
	"chefsnap/internal/logger"
	"chefsnap/internal/recipe"
	"chefsnap/internal/user"
)

var (
	ErrNotSignedIn      = errors.New("sign in first")
	ErrInvalidURL       = errors.New("a valid http(s) video URL is required")
	ErrInvalidImage     = errors.New("invalid screenshot")
	ErrEmptyQuery       = errors.New("query must not be empty")
	ErrRecipeNotFound   = errors.New("recipe not found")
	ErrBusy             = errors.New("another generation is in progress")
	ErrGenerationFailed = errors.New("recipe generation failed")
)

// Generator produces recipe ideas, recipes and dish photos.
type Generator interface {
	GenerateIdeas(ctx context.Context, q recipe.IdeaQuery, language string) ([]recipe.Idea, error)
	GenerateRecipe(ctx context.Context, subject recipe.Subject, language string) (recipe.Content, error)
	// GenerateImage returns nil when no image could be produced.
	GenerateImage(ctx context.Context, recipeName string) (*recipe.Image, error)
}

// ImageSink turns a generated image into the URL stored on the recipe.
type ImageSink interface {
	Store(img recipe.Image) (string, error)
}

// VideoRequest is the input of the video-URL flow.
type VideoRequest struct {
	URL        string
	Screenshot []byte // optional JPEG or PNG
	Details    string
}

// App is the application context shared by the front ends.
type App struct {
	Store     *recipe.Store
	Session   *user.Session
	Generator Generator
	Images    ImageSink

	log  *logger.Logger
	busy atomic.Bool
}

// New creates an App. A nil sink inlines images as data URLs.
func New(store *recipe.Store, session *user.Session, gen Generator, images ImageSink, log *logger.Logger) *App {
	if images == nil {
		images = imageutil.DataURLSink{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &App{Store: store, Session: session, Generator: gen, Images: images, log: log}
}

// Busy reports whether a generation is running.
func (a *App) Busy() bool {
	return a.busy.Load()
}

func (a *App) acquire() (func(), error) {
	if !a.busy.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}
	return func() { a.busy.Store(false) }, nil
}

func (a *App) currentUser() (user.User, error) {
	u, ok := a.Session.Current()
	if !ok {
		return user.User{}, ErrNotSignedIn
	}
	return u, nil
}

// GenerateFromURL generates a recipe for the dish in a cooking video and
// makes it the active recipe.
func (a *App) GenerateFromURL(ctx context.Context, req VideoRequest) (recipe.Recipe, error) {
	u, err := a.currentUser()
	if err != nil {
		return recipe.Recipe{}, err
	}
	videoURL, err := parseVideoURL(req.URL)
	if err != nil {
		return recipe.Recipe{}, err
	}

	video := recipe.VideoContext{URL: videoURL, Details: strings.TrimSpace(req.Details)}
	if len(req.Screenshot) > 0 {
		img, err := imageutil.Prepare(req.Screenshot)
		if err != nil {
			return recipe.Recipe{}, fmt.Errorf("%w: %w", ErrInvalidImage, err)
		}
		video.Image = img
	}

	release, err := a.acquire()
	if err != nil {
		return recipe.Recipe{}, err
	}
	defer release()

	a.log.Info("generating recipe from %s (screenshot=%t)", videoURL, video.Image != nil)
	content, err := a.Generator.GenerateRecipe(ctx, recipe.FromVideo(video), u.Language)
	if err != nil {
		a.log.Error("failed to generate recipe from %s: %v", videoURL, err)
		return recipe.Recipe{}, fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}
	return a.store(ctx, content)
}

// BrowseCategory lists recipe ideas for a category.
func (a *App) BrowseCategory(ctx context.Context, category string) ([]recipe.Idea, error) {
	return a.ideas(ctx, recipe.IdeaQuery{Kind: recipe.IdeaKindCategory, Text: category})
}

// Search lists recipe ideas for a free-text query.
func (a *App) Search(ctx context.Context, query string) ([]recipe.Idea, error) {
	return a.ideas(ctx, recipe.IdeaQuery{Kind: recipe.IdeaKindSearch, Text: query})
}

func (a *App) ideas(ctx context.Context, q recipe.IdeaQuery) ([]recipe.Idea, error) {
	q.Text = strings.TrimSpace(q.Text)
	if q.Text == "" {
		return nil, ErrEmptyQuery
	}
	u, err := a.currentUser()
	if err != nil {
		return nil, err
	}

	release, err := a.acquire()
	if err != nil {
		return nil, err
	}
	defer release()

	ideas, err := a.Generator.GenerateIdeas(ctx, q, u.Language)
	if err != nil {
		a.log.Error("failed to generate %s ideas for %q: %v", q.Kind, q.Text, err)
		return nil, fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}
	a.log.Debug("got %d %s ideas for %q", len(ideas), q.Kind, q.Text)
	return ideas, nil
}

// SelectIdea opens the recipe for an idea. A recipe already in the store
// is reused as is; otherwise one is generated. The bool reports whether
// the generator was called.
func (a *App) SelectIdea(ctx context.Context, name string) (recipe.Recipe, bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return recipe.Recipe{}, false, ErrEmptyQuery
	}
	if a.Store.SetActive(name) {
		r, _ := a.Store.GetByName(name)
		a.log.Debug("reusing stored recipe %q", name)
		return r, false, nil
	}

	u, err := a.currentUser()
	if err != nil {
		return recipe.Recipe{}, false, err
	}
	release, err := a.acquire()
	if err != nil {
		return recipe.Recipe{}, false, err
	}
	defer release()

	a.log.Info("generating recipe for %q", name)
	content, err := a.Generator.GenerateRecipe(ctx, recipe.FromName(name), u.Language)
	if err != nil {
		a.log.Error("failed to generate recipe for %q: %v", name, err)
		return recipe.Recipe{}, true, fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}
	r, err := a.store(ctx, content)
	return r, true, err
}

// persistTimeout bounds the write that follows a successful generation.
const persistTimeout = 5 * time.Second

// store attaches a best-effort dish photo and upserts the content. The
// photo is skipped once ctx is done, and the write runs on a context of
// its own so a generated recipe is never dropped by the caller's deadline.
func (a *App) store(ctx context.Context, content recipe.Content) (recipe.Recipe, error) {
	if ctx.Err() == nil {
		content.ImageURL = a.image(ctx, content.RecipeName)
	} else {
		a.log.Warn("skipping image for %q: %v", content.RecipeName, ctx.Err())
	}

	wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
	defer cancel()
	r, err := a.Store.UpsertGenerated(wctx, content)
	if err != nil {
		if errors.Is(err, recipe.ErrInvalidRecipe) {
			return recipe.Recipe{}, fmt.Errorf("%w: %w", ErrGenerationFailed, err)
		}
		a.log.Error("failed to persist recipe %q: %v", content.RecipeName, err)
		return r, err
	}
	return r, nil
}

func (a *App) image(ctx context.Context, name string) string {
	img, err := a.Generator.GenerateImage(ctx, name)
	if err != nil {
		a.log.Warn("image generation failed for %q: %v", name, err)
		return ""
	}
	if img == nil {
		return ""
	}
	u, err := a.Images.Store(*img)
	if err != nil {
		a.log.Warn("failed to store image for %q: %v", name, err)
		return ""
	}
	return u
}

// OpenRecipe makes a stored recipe active.
func (a *App) OpenRecipe(name string) (recipe.Recipe, bool) {
	if !a.Store.SetActive(name) {
		return recipe.Recipe{}, false
	}
	return a.Store.Active()
}

// Like toggles the liked flag of a stored recipe.
func (a *App) Like(ctx context.Context, name string) (recipe.Recipe, error) {
	return found(a.Store.ToggleLike(ctx, name))
}

// Save toggles the saved flag of a stored recipe.
func (a *App) Save(ctx context.Context, name string) (recipe.Recipe, error) {
	return found(a.Store.ToggleSave(ctx, name))
}

// Comment adds a comment by the signed-in user.
func (a *App) Comment(ctx context.Context, name, text string) (recipe.Recipe, error) {
	u, err := a.currentUser()
	if err != nil {
		return recipe.Recipe{}, err
	}
	return found(a.Store.AddComment(ctx, name, u.Name, text))
}

func found(r recipe.Recipe, ok bool, err error) (recipe.Recipe, error) {
	if err != nil {
		return r, err
	}
	if !ok {
		return recipe.Recipe{}, ErrRecipeNotFound
	}
	return r, nil
}

// Saved returns the saved recipes.
func (a *App) Saved() []recipe.Recipe {
	return a.Store.ListSaved()
}

// Active returns the recipe currently shown, if any.
func (a *App) Active() (recipe.Recipe, bool) {
	return a.Store.Active()
}

// Reset returns to the home screen.
func (a *App) Reset() {
	a.Store.ClearActive()
}

func parseVideoURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", ErrInvalidURL
	}
	return raw, nil
}
