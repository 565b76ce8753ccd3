package middleware

import (
	"net/http"
	"strings"

	"paucara/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	ClaimsKey = "claims"
)

// JWTClaims are the custom claims embedded in every access token.
// AlmacenID is set only for almaceneros scoped to a single warehouse.
type JWTClaims struct {
	UserID    string `json:"user_id"`
	Username  string `json:"username"`
	Rol       string `json:"rol"`
	AlmacenID string `json:"almacen_id,omitempty"`
	jwt.RegisteredClaims
}

// permisosPorRol maps each role to its capabilities. The transfer lifecycle
// operations are gated individually so a warehouse clerk can build and
// receive transfers but only a supervisor can dispatch or cancel them.
var permisosPorRol = map[string]map[string]bool{
	"almacenero": {
		"inventario.transferencias.crear":   true,
		"inventario.transferencias.recibir": true,
		"inventario.stock.ver":              true,
	},
	"supervisor": {
		"inventario.transferencias.crear":    true,
		"inventario.transferencias.enviar":   true,
		"inventario.transferencias.recibir":  true,
		"inventario.transferencias.cancelar": true,
		"inventario.stock.ver":               true,
		"inventario.stock.ajustar":           true,
		"catalogo.gestionar":                 true,
	},
}

// TienePermiso reports whether rol grants the capability.
// administrador holds every capability implicitly.
func TienePermiso(rol, permiso string) bool {
	if rol == "administrador" {
		return true
	}
	return permisosPorRol[rol][permiso]
}

// JWTAuth validates the Bearer token on every protected route.
func JWTAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("Autenticacion requerida"))
			return
		}

		tokenStr := strings.TrimPrefix(header, "Bearer ")
		claims := &JWTClaims{}
		token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(secret), nil
		})

		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("Token invalido o expirado"))
			return
		}

		c.Set(ClaimsKey, claims)
		c.Next()
	}
}

// RequireRole rejects requests whose JWT role is not in the allowed list.
func RequireRole(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(c *gin.Context) {
		claims, ok := c.MustGet(ClaimsKey).(*JWTClaims)
		if !ok || !allowed[claims.Rol] {
			c.AbortWithStatusJSON(http.StatusForbidden, apierror.New("Permisos insuficientes"))
			return
		}
		c.Next()
	}
}

// RequirePermiso rejects requests whose JWT role lacks the capability.
func RequirePermiso(permiso string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := c.MustGet(ClaimsKey).(*JWTClaims)
		if !ok || !TienePermiso(claims.Rol, permiso) {
			c.AbortWithStatusJSON(http.StatusForbidden, apierror.New("Permisos insuficientes"))
			return
		}
		c.Next()
	}
}

// GetClaims is a helper to retrieve typed claims from the Gin context.
func GetClaims(c *gin.Context) *JWTClaims {
	claims, _ := c.MustGet(ClaimsKey).(*JWTClaims)
	return claims
}
