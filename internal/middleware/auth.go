package middleware

import (
	"errors"
	"fmt"
	"strings"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/naveen-b26/ams-back/internal/utils"
)

// Claims is the identity extracted from a staff/student bearer token.
type Claims struct {
	UserID string
	Role   string
}

// StaffVerifier validates Auth0-issued bearer tokens against the tenant
// JWKS. Only RS256 is accepted.
type StaffVerifier struct {
	jwks      *keyfunc.JWKS
	issuer    string
	audience  string
	namespace string
}

func NewStaffVerifier(domain, audience, namespace string) (*StaffVerifier, error) {
	jwksURL := fmt.Sprintf("https://%s/.well-known/jwks.json", domain)
	jwks, err := keyfunc.Get(jwksURL, keyfunc.Options{})
	if err != nil {
		return nil, fmt.Errorf("fetch jwks: %w", err)
	}
	return &StaffVerifier{
		jwks:      jwks,
		issuer:    fmt.Sprintf("https://%s/", domain),
		audience:  audience,
		namespace: namespace,
	}, nil
}

// Validate parses and verifies a raw bearer token.
func (v *StaffVerifier) Validate(tokenString string) (*Claims, error) {
	token, err := jwt.Parse(tokenString, v.jwks.Keyfunc,
		jwt.WithAudience(v.audience),
		jwt.WithIssuer(v.issuer),
		jwt.WithValidMethods([]string{"RS256"}),
	)
	if err != nil || !token.Valid {
		return nil, errors.New("invalid token")
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid claims")
	}

	sub, _ := mapClaims["sub"].(string)
	role, _ := mapClaims[v.namespace+"/role"].(string)
	return &Claims{UserID: sub, Role: role}, nil
}

// Middleware authenticates the request and stores userId and role in the
// gin context.
func (v *StaffVerifier) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.ErrorResponse(c, 401, "Unauthorized, token missing or invalid")
			c.Abort()
			return
		}

		tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))

		claims, err := v.Validate(tokenString)
		if err != nil {
			utils.ErrorResponse(c, 401, "Unauthorized, token missing or invalid")
			c.Abort()
			return
		}

		c.Set("userId", claims.UserID)
		c.Set("role", claims.Role)
		c.Next()
	}
}

// RequireRoles gates a route to the given roles. Run it after Middleware.
func RequireRoles(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString("role")
		for _, r := range roles {
			if role == r {
				c.Next()
				return
			}
		}
		utils.ErrorResponse(c, 403, "Forbidden, insufficient role")
		c.Abort()
	}
}
