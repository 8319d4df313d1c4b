package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dreamware/petsclaws/internal/catalog"
	"github.com/dreamware/petsclaws/internal/identity"
	"github.com/dreamware/petsclaws/internal/orders"
	"github.com/dreamware/petsclaws/internal/preferences"
	"github.com/dreamware/petsclaws/internal/reviews"
	"github.com/dreamware/petsclaws/internal/storage"
	"github.com/dreamware/petsclaws/internal/storefront"
)

// Server exposes a storefront as a JSON API.
type Server struct {
	shop   *storefront.Storefront
	store  storage.Store
	tokens *Tokens
	log    *zap.Logger
	engine *gin.Engine
}

// New builds the API over shop. store is reported on /stats; when it is a
// *storage.MeteredStore its operation counters are included.
func New(shop *storefront.Storefront, store storage.Store, tokens *Tokens, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{shop: shop, store: store, tokens: tokens, log: logger}

	r := gin.New()
	r.Use(gin.Recovery(), s.requestLog())
	r.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders: []string{"Content-Length", "Content-Disposition"},
		MaxAge:        12 * time.Hour,
	}))
	s.routes(r)
	s.engine = r
	return s
}

// Handler returns the http.Handler serving the API.
func (s *Server) Handler() http.Handler { return s.engine }

func (s *Server) routes(r *gin.Engine) {
	r.GET("/health", s.handleHealth)
	r.GET("/stats", s.handleStats)

	auth := r.Group("/auth")
	auth.POST("/guest", s.handleGuest)
	auth.POST("/register", s.optionalAuth(), s.handleRegister)
	auth.POST("/login", s.optionalAuth(), s.handleLogin)

	products := r.Group("/products")
	products.GET("", s.handleListProducts)
	products.GET("/:id", s.handleGetProduct)
	products.GET("/:id/related", s.handleRelated)
	products.GET("/:id/reviews", s.handleListReviews)
	products.POST("/:id/reviews", s.requireAuth(RoleUser), s.handleAddReview)
	r.POST("/reviews/:id/helpful", s.requireAuth(RoleUser), s.handleToggleHelpful)

	carts := r.Group("/cart", s.requireAuth(RoleUser, RoleGuest))
	carts.GET("", s.handleGetCart)
	carts.POST("", s.handleAddToCart)
	carts.DELETE("", s.handleClearCart)
	carts.PUT("/:productId", s.handleSetQuantity)
	carts.DELETE("/:productId", s.handleRemoveFromCart)

	favs := r.Group("/favorites", s.requireAuth(RoleUser))
	favs.GET("", s.handleListFavorites)
	favs.DELETE("", s.handleClearFavorites)
	favs.PUT("/:productId", s.handleAddFavorite)
	favs.DELETE("/:productId", s.handleRemoveFavorite)

	ords := r.Group("/orders", s.requireAuth(RoleUser))
	ords.POST("", s.handleCheckout)
	ords.GET("", s.handleListOrders)
	ords.GET("/export", s.handleExportOrders)
	ords.GET("/:id", s.handleGetOrder)

	profile := r.Group("/profile", s.requireAuth(RoleUser))
	profile.GET("", s.handleGetProfile)
	profile.PATCH("", s.handleUpdateProfile)

	r.GET("/preferences/theme", s.handleGetTheme)
	r.PUT("/preferences/theme", s.handleSetTheme)
}

// requestLog logs one line per request.
func (s *Server) requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Debug("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)))
	}
}

// fail maps err to a status code and writes the error body. Unrecognised
// errors are logged and reported as 500 without detail.
func (s *Server) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, catalog.ErrProductNotFound):
		status = http.StatusNotFound
	case errors.Is(err, orders.ErrEmptyCart),
		errors.Is(err, reviews.ErrInvalidRating),
		errors.Is(err, preferences.ErrInvalidTheme),
		errors.Is(err, identity.ErrInvalidUser):
		status = http.StatusBadRequest
	case errors.Is(err, storefront.ErrNotSignedIn):
		status = http.StatusUnauthorized
	}
	if status == http.StatusInternalServerError {
		s.log.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err))
		c.AbortWithStatusJSON(status, gin.H{"error": "internal error"})
		return
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": msg})
}

// intParam parses a numeric path parameter, answering 400 when it is not one.
func intParam(c *gin.Context, name string) (int, bool) {
	v, err := strconv.Atoi(c.Param(name))
	if err != nil {
		badRequest(c, name+" must be an integer")
		return 0, false
	}
	return v, true
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleStats(c *gin.Context) {
	stats, err := s.store.Stats(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	body := gin.H{
		"store":    stats,
		"products": s.shop.Catalog.Len(),
	}
	if m, ok := s.store.(*storage.MeteredStore); ok {
		body["operations"] = m.Operations()
	}
	c.JSON(http.StatusOK, body)
}
