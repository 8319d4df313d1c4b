package httpapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/dreamware/petsclaws/internal/catalog"
	"github.com/dreamware/petsclaws/internal/reviews"
)

// filterFromQuery reads the catalog filter of GET /products. category and
// petType may repeat or be comma separated.
func filterFromQuery(c *gin.Context) (catalog.Filter, error) {
	var f catalog.Filter
	f.Categories = listParam(c, "category")
	f.PetTypes = listParam(c, "petType")

	for name, dst := range map[string]**float64{"minPrice": &f.MinPrice, "maxPrice": &f.MaxPrice} {
		raw := c.Query(name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return catalog.Filter{}, err
		}
		*dst = &v
	}

	for name, dst := range map[string]*bool{"inStock": &f.InStock, "isNew": &f.IsNew, "isSale": &f.IsSale} {
		raw := c.Query(name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return catalog.Filter{}, err
		}
		*dst = v
	}
	return f, nil
}

func listParam(c *gin.Context, name string) []string {
	var out []string
	for _, v := range c.QueryArray(name) {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func (s *Server) handleListProducts(c *gin.Context) {
	f, err := filterFromQuery(c)
	if err != nil {
		badRequest(c, "invalid filter: "+err.Error())
		return
	}
	mode := catalog.SortMode(c.DefaultQuery("sort", string(catalog.SortPopular)))

	products := []catalog.Product{}
	for _, p := range s.shop.Catalog.Search(c.Query("q")) {
		if f.Match(p) {
			products = append(products, p)
		}
	}
	catalog.Sort(products, mode)
	c.JSON(http.StatusOK, gin.H{"products": products, "total": len(products)})
}

// productOf resolves the :id path parameter, answering 400 or 404 itself.
func (s *Server) productOf(c *gin.Context) (catalog.Product, bool) {
	id, ok := intParam(c, "id")
	if !ok {
		return catalog.Product{}, false
	}
	p, found := s.shop.Catalog.ByID(id)
	if !found {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": catalog.ErrProductNotFound.Error()})
		return catalog.Product{}, false
	}
	return p, true
}

func (s *Server) handleGetProduct(c *gin.Context) {
	p, ok := s.productOf(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) handleRelated(c *gin.Context) {
	p, ok := s.productOf(c)
	if !ok {
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "0"))
	if err != nil {
		badRequest(c, "limit must be an integer")
		return
	}
	related := s.shop.Catalog.Related(p, limit)
	if related == nil {
		related = []catalog.Product{}
	}
	c.JSON(http.StatusOK, gin.H{"products": related})
}

func (s *Server) handleListReviews(c *gin.Context) {
	p, ok := s.productOf(c)
	if !ok {
		return
	}
	rs, err := s.shop.Reviews.ForProduct(c.Request.Context(), p.ID)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reviews": rs, "summary": reviews.Summarize(rs)})
}

type reviewRequest struct {
	Text   string `json:"text"`
	Rating int    `json:"rating" binding:"required"`
}

func (s *Server) handleAddReview(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid input: "+err.Error())
		return
	}
	r, err := s.shop.AddReview(c.Request.Context(), mustClaims(c).Session(), id, req.Rating, req.Text)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, r)
}

func (s *Server) handleToggleHelpful(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	userID := mustClaims(c).Subject

	found, err := s.shop.Reviews.ToggleHelpful(ctx, id, userID)
	if err != nil {
		s.fail(c, err)
		return
	}
	if !found {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "review not found"})
		return
	}
	marked, err := s.shop.Reviews.IsMarkedHelpful(ctx, id, userID)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reviewId": id, "helpful": marked})
}
