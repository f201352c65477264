package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"fournil/globals"
	"fournil/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/julienschmidt/httprouter"
)

// JWT claims
type Claims struct {
	UserID string      `json:"userId"`
	Email  string      `json:"email"`
	Role   models.Role `json:"role"`
	jwt.RegisteredClaims
}

// ExtractBearer pulls the token out of an Authorization header, empty string
// when the header is absent or not a Bearer scheme.
func ExtractBearer(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(header, "Bearer ")
}

func ValidateJWT(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, fmt.Errorf("missing token")
	}
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		return globals.JwtSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	if !claims.Role.Valid() {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}

// RequireRoles is the one role-check primitive. Authenticate and the staff
// wrappers below are parameterizations of it: 401 when the token is missing
// or bad, 403 when the role is not in the allowed set.
func RequireRoles(next httprouter.Handle, roles ...models.Role) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		claims, err := ValidateJWT(ExtractBearer(r))
		if err != nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		if len(roles) > 0 && !HasRole(claims.Role, roles) {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}

		ctx := context.WithValue(r.Context(), globals.UserIDKey, claims.UserID)
		ctx = context.WithValue(ctx, globals.RoleKey, claims.Role)
		next(w, r.WithContext(ctx), ps)
	}
}

// HasRole is a pure membership predicate.
func HasRole(role models.Role, allowed []models.Role) bool {
	for _, a := range allowed {
		if a == role {
			return true
		}
	}
	return false
}

// Authenticate admits any valid token regardless of role.
func Authenticate(next httprouter.Handle) httprouter.Handle {
	return RequireRoles(next)
}

// RequireStaff admits storekeepers and admins.
func RequireStaff(next httprouter.Handle) httprouter.Handle {
	return RequireRoles(next, models.RoleAdmin, models.RoleStorekeeper)
}

func RequireAdmin(next httprouter.Handle) httprouter.Handle {
	return RequireRoles(next, models.RoleAdmin)
}
