package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chefsnap/internal/app"
	"chefsnap/internal/config"
	"chefsnap/internal/imageutil"
	"chefsnap/internal/kv"
	"chefsnap/internal/logger"
	"chefsnap/internal/recipe"
	"chefsnap/internal/user"
)

// mockGenerator is a mock of the recipe generator.
type mockGenerator struct {
	returnError error
	ideas       []recipe.Idea
	image       *recipe.Image
	recipeCalls int
	lastSubject recipe.Subject
}

// GenerateIdeas mocks the GenerateIdeas method.
func (m *mockGenerator) GenerateIdeas(ctx context.Context, q recipe.IdeaQuery, language string) ([]recipe.Idea, error) {
	if m.returnError != nil {
		return nil, m.returnError
	}
	return m.ideas, nil
}

// GenerateRecipe mocks the GenerateRecipe method.
func (m *mockGenerator) GenerateRecipe(ctx context.Context, subject recipe.Subject, language string) (recipe.Content, error) {
	m.recipeCalls++
	m.lastSubject = subject
	if m.returnError != nil {
		return recipe.Content{}, m.returnError
	}
	name := subject.Name
	if subject.Video != nil {
		name = "Mock Video Recipe"
	}
	// Create a mock recipe
	return recipe.Content{
		RecipeName:   name,
		Description:  "Mock description",
		PrepTime:     "5 minutes",
		CookTime:     "10 minutes",
		Servings:     "4 servings",
		Ingredients:  []string{"2 cups flour"},
		Instructions: []string{"Mix ingredients"},
	}, nil
}

// GenerateImage mocks the GenerateImage method.
func (m *mockGenerator) GenerateImage(ctx context.Context, recipeName string) (*recipe.Image, error) {
	return m.image, nil
}

type testServer struct {
	router *gin.Engine
	app    *app.App
	gen    *mockGenerator
}

func newTestServer(t *testing.T, signedIn bool) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ctx := context.Background()
	db := kv.NewMemoryStore()
	if signedIn {
		_, err := user.NewSession(db, nil).SignUp(ctx, "Mock User", "mock@example.com", "en")
		require.NoError(t, err)
	}

	cfg := config.Default()
	cfg.ImagesDir = t.TempDir()

	gen := &mockGenerator{}
	a, err := newApp(ctx, db, gen, imageutil.NewDiskSink(cfg.ImagesDir, "/images"), logger.Nop())
	require.NoError(t, err)

	return &testServer{router: setupRouter(a, cfg, logger.Nop()), app: a, gen: gen}
}

func (s *testServer) do(t *testing.T, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)
	return rr
}

func (s *testServer) postForm(t *testing.T, fields map[string]string, filename string, fileData []byte) *httptest.ResponseRecorder {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	if filename != "" {
		part, err := writer.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = io.Copy(part, bytes.NewReader(fileData))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/recipefinder", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

func pngData(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 4))))
	return buf.Bytes()
}

func TestSessionRoutes(t *testing.T) {
	s := newTestServer(t, false)

	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/session", nil).Code)

	for _, body := range []map[string]string{
		{"name": "Ana", "email": "not-an-email"},
		{"name": "Ana"},
		{"email": "ana@example.com"},
	} {
		rr := s.do(t, http.MethodPost, "/session", body)
		assert.Equal(t, http.StatusBadRequest, rr.Code, body)
	}
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/session", nil).Code)

	rr := s.do(t, http.MethodPost, "/session", map[string]string{"name": "Ana", "email": "ana@example.com", "language": "pt"})
	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, user.User{Name: "Ana", Email: "ana@example.com", Language: "pt"}, decode[user.User](t, rr))

	rr = s.do(t, http.MethodGet, "/session", nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	assert.Equal(t, http.StatusNoContent, s.do(t, http.MethodDelete, "/session", nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/session", nil).Code)
}

func TestRecipeFinder(t *testing.T) {
	s := newTestServer(t, true)
	s.gen.image = &recipe.Image{MIMEType: "image/png", Data: pngData(t)}

	rr := s.postForm(t, map[string]string{"url": "https://www.youtube.com/watch?v=abc", "details": "no nuts"}, "shot.png", pngData(t))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	got := decode[recipe.Recipe](t, rr)
	assert.Equal(t, "Mock Video Recipe", got.RecipeName)
	assert.Equal(t, 0, got.Likes)
	assert.NotNil(t, got.Comments)
	assert.True(t, strings.HasPrefix(got.ImageURL, "/images/"), got.ImageURL)

	require.NotNil(t, s.gen.lastSubject.Video)
	assert.Equal(t, "no nuts", s.gen.lastSubject.Video.Details)
	assert.NotNil(t, s.gen.lastSubject.Video.Image)

	// The stored dish photo is served statically.
	img := s.do(t, http.MethodGet, got.ImageURL, nil)
	assert.Equal(t, http.StatusOK, img.Code)

	active := s.do(t, http.MethodGet, "/recipes/active", nil)
	require.Equal(t, http.StatusOK, active.Code)
	assert.Equal(t, "Mock Video Recipe", decode[recipe.Recipe](t, active).RecipeName)
}

func TestRecipeFinderValidation(t *testing.T) {
	s := newTestServer(t, true)

	rr := s.postForm(t, map[string]string{"url": "https://example.com/v"}, "clip.gif", []byte("GIF89a"))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Invalid file type. Only JPEG, JPG, and PNG images are allowed.", rr.Body.String())

	rr = s.postForm(t, map[string]string{"url": "not a url"}, "", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = s.postForm(t, map[string]string{"url": "https://example.com/v"}, "shot.jpg", []byte("not really a jpeg"))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	assert.Equal(t, 0, s.gen.recipeCalls)

	s = newTestServer(t, false)
	rr = s.postForm(t, map[string]string{"url": "https://example.com/v"}, "", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestRecipeFinderGeneratorErrors(t *testing.T) {
	s := newTestServer(t, true)

	s.gen.returnError = errors.New("model overloaded")
	rr := s.postForm(t, map[string]string{"url": "https://example.com/v"}, "", nil)
	assert.Equal(t, http.StatusBadGateway, rr.Code)

	s.gen.returnError = context.DeadlineExceeded
	rr = s.postForm(t, map[string]string{"url": "https://example.com/v"}, "", nil)
	assert.Equal(t, http.StatusRequestTimeout, rr.Code)
	assert.Equal(t, "Request timed out after 45s", rr.Body.String())

	assert.Equal(t, 0, s.app.Store.Len())
}

func TestIdeasAndSelect(t *testing.T) {
	s := newTestServer(t, true)
	s.gen.ideas = []recipe.Idea{{Name: "Lemon Tart", Description: "Zesty."}}

	rr := s.do(t, http.MethodGet, "/ideas?category=Desserts", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, s.gen.ideas, decode[[]recipe.Idea](t, rr))

	rr = s.do(t, http.MethodGet, "/search?q=lemon", nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/search?q=", nil).Code)

	rr = s.do(t, http.MethodGet, "/categories", nil)
	assert.Equal(t, recipe.Categories, decode[[]string](t, rr))

	type selected struct {
		Recipe    recipe.Recipe `json:"recipe"`
		Generated bool          `json:"generated"`
	}

	rr = s.do(t, http.MethodPost, "/ideas/select", map[string]string{"name": "Lemon Tart"})
	require.Equal(t, http.StatusOK, rr.Code)
	first := decode[selected](t, rr)
	assert.True(t, first.Generated)
	assert.Equal(t, "Lemon Tart", first.Recipe.RecipeName)

	rr = s.do(t, http.MethodPost, "/ideas/select", map[string]string{"name": "Lemon Tart"})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.False(t, decode[selected](t, rr).Generated)
	assert.Equal(t, 1, s.gen.recipeCalls)
}

func TestRecipeInteractions(t *testing.T) {
	s := newTestServer(t, true)
	_, err := s.app.Store.UpsertGenerated(context.Background(), recipe.Content{
		RecipeName:   "Chocolate Cake",
		Description:  "Rich.",
		PrepTime:     "20 minutes",
		CookTime:     "35 minutes",
		Servings:     "8 servings",
		Ingredients:  []string{"cocoa"},
		Instructions: []string{"Bake."},
	})
	require.NoError(t, err)
	path := "/recipes/" + url.PathEscape("Chocolate Cake")

	rr := s.do(t, http.MethodPost, path+"/like", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	liked := decode[recipe.Recipe](t, rr)
	assert.True(t, liked.IsLiked)
	assert.Equal(t, 1, liked.Likes)

	rr = s.do(t, http.MethodPost, path+"/like", nil)
	assert.Equal(t, 0, decode[recipe.Recipe](t, rr).Likes)

	rr = s.do(t, http.MethodPost, path+"/save", nil)
	assert.True(t, decode[recipe.Recipe](t, rr).IsSaved)

	rr = s.do(t, http.MethodPost, path+"/comments", map[string]string{"text": "Moist!"})
	require.Equal(t, http.StatusOK, rr.Code)
	comments := decode[recipe.Recipe](t, rr).Comments
	require.Len(t, comments, 1)
	assert.Equal(t, "Mock User", comments[0].Author)
	assert.Equal(t, "Moist!", comments[0].Text)

	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodPost, path+"/comments", map[string]string{"text": " "}).Code)
	rr = s.do(t, http.MethodPost, path+"/comments", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "invalid request body")
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodPost, "/recipes/Nope/like", nil).Code)

	rr = s.do(t, http.MethodGet, "/recipes?saved=true", nil)
	require.Len(t, decode[[]recipe.Recipe](t, rr), 1)

	rr = s.do(t, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Chocolate Cake", decode[recipe.Recipe](t, rr).RecipeName)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/recipes/Nope", nil).Code)
}

func TestActiveRecipeRoutes(t *testing.T) {
	s := newTestServer(t, true)
	_, _, err := s.app.SelectIdea(context.Background(), "Gazpacho")
	require.NoError(t, err)

	assert.Equal(t, http.StatusNoContent, s.do(t, http.MethodDelete, "/recipes/active", nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/recipes/active", nil).Code)

	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodPut, "/recipes/active", map[string]string{"name": "Nope"}).Code)

	rr := s.do(t, http.MethodPut, "/recipes/active", map[string]string{"name": "Gazpacho"})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Gazpacho", decode[recipe.Recipe](t, rr).RecipeName)

	rr = s.do(t, http.MethodGet, "/recipes", nil)
	assert.Len(t, decode[[]recipe.Recipe](t, rr), 1)
}
