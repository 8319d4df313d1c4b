package httpapi

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/exp/slices"

	"github.com/dreamware/petsclaws/internal/identity"
	"github.com/dreamware/petsclaws/internal/storefront"
)

const claimsKey = "claims"

// bearer extracts the token of the Authorization header. A bare token
// without the "Bearer " prefix is accepted as well.
func bearer(c *gin.Context) string {
	h := strings.TrimSpace(c.GetHeader("Authorization"))
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return h
}

// requireAuth rejects requests without a valid token of one of roles.
func (s *Server) requireAuth(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearer(c)
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is missing"})
			return
		}
		claims, err := s.tokens.Parse(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}
		if !slices.Contains(roles, claims.Role) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "sign in required"})
			return
		}
		c.Set(claimsKey, claims)
		c.Next()
	}
}

// optionalAuth records the claims of a valid token and ignores anything else.
// Register and login use it to find the guest cart to adopt.
func (s *Server) optionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if raw := bearer(c); raw != "" {
			if claims, err := s.tokens.Parse(raw); err == nil {
				c.Set(claimsKey, claims)
			}
		}
		c.Next()
	}
}

func claimsOf(c *gin.Context) (*Claims, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*Claims)
	return claims, ok
}

// mustClaims returns the claims set by requireAuth.
func mustClaims(c *gin.Context) *Claims {
	claims, _ := claimsOf(c)
	return claims
}

// guestOf is the guest id of a guest token on the request. Without one it
// is storefront.NoGuest: the empty id names the local guest cart, which
// remote callers never own.
func guestOf(c *gin.Context) string {
	claims, ok := claimsOf(c)
	if !ok || claims.Role != RoleGuest {
		return storefront.NoGuest
	}
	return claims.Subject
}

type sessionResponse struct {
	User identity.Session `json:"user"`
	Issued
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (s *Server) handleGuest(c *gin.Context) {
	guestID, issued, err := s.tokens.ForGuest()
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"guestId":   guestID,
		"token":     issued.Token,
		"expiresAt": issued.ExpiresAt,
	})
}

func (s *Server) handleRegister(c *gin.Context) {
	var req identity.NewUser
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid input: "+err.Error())
		return
	}
	ctx := c.Request.Context()
	sess, ok, err := s.shop.Register(ctx, req, guestOf(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	if !ok {
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "email already registered"})
		return
	}
	s.respondSession(c, http.StatusCreated, sess)
}

func (s *Server) handleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid input: "+err.Error())
		return
	}
	sess, ok, err := s.shop.Login(c.Request.Context(), req.Email, req.Password, guestOf(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
		return
	}
	s.respondSession(c, http.StatusOK, sess)
}

func (s *Server) respondSession(c *gin.Context, status int, sess identity.Session) {
	issued, err := s.tokens.ForUser(sess)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(status, sessionResponse{User: sess, Issued: issued})
}

func (s *Server) handleGetProfile(c *gin.Context) {
	u, err := s.shop.Profile(c.Request.Context(), mustClaims(c).Session())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (s *Server) handleUpdateProfile(c *gin.Context) {
	var upd identity.ProfileUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		badRequest(c, "Invalid input: "+err.Error())
		return
	}
	u, err := s.shop.UpdateProfile(c.Request.Context(), mustClaims(c).Session(), upd)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}
