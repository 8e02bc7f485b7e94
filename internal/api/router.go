package api

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RouterConfig holds the router settings that come from configuration.
type RouterConfig struct {
	AllowOrigins []string
	ImagesDir    string // served under /images when set
}

// NewRouter registers every route on a new gin engine.
func NewRouter(h *Handler, cfg RouterConfig) *gin.Engine {
	r := gin.Default()

	// Configure CORS middleware
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/session", h.GetSession)
	r.POST("/session", h.SignUp)
	r.DELETE("/session", h.Logout)

	r.POST("/recipefinder", h.RecipeFinder)
	r.GET("/categories", h.GetCategories)
	r.GET("/ideas", h.GetIdeas)
	r.POST("/ideas/select", h.SelectIdea)
	r.GET("/search", h.Search)

	r.GET("/recipes", h.GetRecipes)
	r.GET("/recipes/active", h.GetActive)
	r.PUT("/recipes/active", h.SetActive)
	r.DELETE("/recipes/active", h.ClearActive)
	r.GET("/recipes/:name", h.GetRecipe)
	r.POST("/recipes/:name/like", h.Like)
	r.POST("/recipes/:name/save", h.Save)
	r.POST("/recipes/:name/comments", h.Comment)

	if cfg.ImagesDir != "" {
		r.Static("/images", cfg.ImagesDir)
	}
	return r
}
