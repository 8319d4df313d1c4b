package httpapi

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dreamware/petsclaws/internal/orders"
	"github.com/dreamware/petsclaws/internal/preferences"
	"github.com/dreamware/petsclaws/internal/storefront"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type cartItemRequest struct {
	ProductID int `json:"productId" binding:"required"`
	Quantity  int `json:"quantity"`
}

type quantityRequest struct {
	Quantity int `json:"quantity"`
}

func (s *Server) respondCart(c *gin.Context, status int, view storefront.CartView, err error) {
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(status, view)
}

func (s *Server) handleGetCart(c *gin.Context) {
	view, err := s.shop.ViewCart(c.Request.Context(), mustClaims(c).Shopper())
	s.respondCart(c, http.StatusOK, view, err)
}

func (s *Server) handleAddToCart(c *gin.Context) {
	var req cartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid input: "+err.Error())
		return
	}
	view, err := s.shop.AddToCart(c.Request.Context(), mustClaims(c).Shopper(), req.ProductID, req.Quantity)
	s.respondCart(c, http.StatusOK, view, err)
}

func (s *Server) handleSetQuantity(c *gin.Context) {
	productID, ok := intParam(c, "productId")
	if !ok {
		return
	}
	var req quantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid input: "+err.Error())
		return
	}
	view, err := s.shop.SetCartQuantity(c.Request.Context(), mustClaims(c).Shopper(), productID, req.Quantity)
	s.respondCart(c, http.StatusOK, view, err)
}

func (s *Server) handleRemoveFromCart(c *gin.Context) {
	productID, ok := intParam(c, "productId")
	if !ok {
		return
	}
	view, err := s.shop.RemoveFromCart(c.Request.Context(), mustClaims(c).Shopper(), productID)
	s.respondCart(c, http.StatusOK, view, err)
}

func (s *Server) handleClearCart(c *gin.Context) {
	if err := s.shop.ClearCart(c.Request.Context(), mustClaims(c).Shopper()); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleListFavorites(c *gin.Context) {
	favs, err := s.shop.Favorites.List(c.Request.Context(), mustClaims(c).Subject)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": favs})
}

func (s *Server) handleAddFavorite(c *gin.Context) {
	productID, ok := intParam(c, "productId")
	if !ok {
		return
	}
	added, err := s.shop.AddFavorite(c.Request.Context(), mustClaims(c).Session(), productID)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"productId": productID, "added": added})
}

func (s *Server) handleRemoveFavorite(c *gin.Context) {
	productID, ok := intParam(c, "productId")
	if !ok {
		return
	}
	removed, err := s.shop.Favorites.Remove(c.Request.Context(), mustClaims(c).Subject, productID)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"productId": productID, "removed": removed})
}

func (s *Server) handleClearFavorites(c *gin.Context) {
	if err := s.shop.Favorites.Clear(c.Request.Context(), mustClaims(c).Subject); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleCheckout(c *gin.Context) {
	var form orders.Checkout
	if err := c.ShouldBindJSON(&form); err != nil {
		badRequest(c, "Invalid input: "+err.Error())
		return
	}
	o, fieldErrs, err := s.shop.Checkout(c.Request.Context(), mustClaims(c).Session(), form)
	if err != nil {
		s.fail(c, err)
		return
	}
	if fieldErrs != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid checkout", "fields": fieldErrs})
		return
	}
	c.JSON(http.StatusCreated, o)
}

func (s *Server) handleListOrders(c *gin.Context) {
	mine, err := s.shop.Orders.ByUser(c.Request.Context(), mustClaims(c).Subject)
	if err != nil {
		s.fail(c, err)
		return
	}
	orders.SortNewestFirst(mine)
	c.JSON(http.StatusOK, gin.H{"orders": mine})
}

func (s *Server) handleGetOrder(c *gin.Context) {
	o, found, err := s.shop.Orders.ByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	// Another user's order is reported as missing
	if !found || o.UserID != mustClaims(c).Subject {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "order not found"})
		return
	}
	c.JSON(http.StatusOK, o)
}

func (s *Server) handleExportOrders(c *gin.Context) {
	mine, err := s.shop.Orders.ByUser(c.Request.Context(), mustClaims(c).Subject)
	if err != nil {
		s.fail(c, err)
		return
	}
	orders.SortNewestFirst(mine)

	var buf bytes.Buffer
	if err := orders.ExportXLSX(&buf, mine); err != nil {
		s.fail(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename=orders.xlsx")
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func (s *Server) handleGetTheme(c *gin.Context) {
	theme, err := s.shop.Prefs.Theme(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"theme": theme})
}

type themeRequest struct {
	Theme string `json:"theme" binding:"required"`
}

func (s *Server) handleSetTheme(c *gin.Context) {
	var req themeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid input: "+err.Error())
		return
	}
	theme, err := preferences.ParseTheme(req.Theme)
	if err == nil {
		err = s.shop.Prefs.SetTheme(c.Request.Context(), theme)
	}
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"theme": theme})
}
