package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"fournil/globals"
	"fournil/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/julienschmidt/httprouter"
)

func init() {
	globals.JwtSecret = []byte("test-secret")
}

func makeToken(t *testing.T, role models.Role, ttl time.Duration) string {
	t.Helper()
	claims := &Claims{
		UserID: "u123",
		Email:  "client@example.com",
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(globals.JwtSecret)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return signed
}

func TestValidateJWTRoundTrip(t *testing.T) {
	token := makeToken(t, models.RoleClient, time.Hour)

	claims, err := ValidateJWT(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.UserID != "u123" || claims.Role != models.RoleClient {
		t.Errorf("unexpected claims %+v", claims)
	}
}

func TestValidateJWTExpired(t *testing.T) {
	token := makeToken(t, models.RoleClient, -time.Minute)
	if _, err := ValidateJWT(token); err == nil {
		t.Error("expired token should be rejected")
	}
}

func TestValidateJWTTampered(t *testing.T) {
	token := makeToken(t, models.RoleClient, time.Hour)
	if _, err := ValidateJWT(token + "x"); err == nil {
		t.Error("tampered token should be rejected")
	}
	if _, err := ValidateJWT(""); err == nil {
		t.Error("empty token should be rejected")
	}
}

func TestValidateJWTUnknownRole(t *testing.T) {
	token := makeToken(t, models.Role("SUPERUSER"), time.Hour)
	if _, err := ValidateJWT(token); err == nil {
		t.Error("token carrying an unknown role should be rejected")
	}
}

func TestHasRole(t *testing.T) {
	staff := []models.Role{models.RoleAdmin, models.RoleStorekeeper}
	if !HasRole(models.RoleAdmin, staff) {
		t.Error("admin is staff")
	}
	if HasRole(models.RoleClient, staff) {
		t.Error("client is not staff")
	}
}

func doRequest(handler httprouter.Handle, authorization string) *httptest.ResponseRecorder {
	r := httptest.NewRequest("GET", "/protected", nil)
	if authorization != "" {
		r.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	handler(w, r, nil)
	return w
}

func TestRequireRoles(t *testing.T) {
	var sawUserID string
	next := func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		sawUserID, _ = r.Context().Value(globals.UserIDKey).(string)
		w.WriteHeader(http.StatusOK)
	}

	protected := RequireStaff(next)

	if w := doRequest(protected, ""); w.Code != http.StatusUnauthorized {
		t.Errorf("missing token: got %d, want 401", w.Code)
	}
	if w := doRequest(protected, "Bearer garbage"); w.Code != http.StatusUnauthorized {
		t.Errorf("bad token: got %d, want 401", w.Code)
	}

	clientToken := makeToken(t, models.RoleClient, time.Hour)
	if w := doRequest(protected, "Bearer "+clientToken); w.Code != http.StatusForbidden {
		t.Errorf("wrong role: got %d, want 403", w.Code)
	}

	staffToken := makeToken(t, models.RoleStorekeeper, time.Hour)
	if w := doRequest(protected, "Bearer "+staffToken); w.Code != http.StatusOK {
		t.Errorf("staff token: got %d, want 200", w.Code)
	}
	if sawUserID != "u123" {
		t.Errorf("user id not propagated to handler context, got %q", sawUserID)
	}
}

func TestAuthenticateAdmitsAnyRole(t *testing.T) {
	next := func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		w.WriteHeader(http.StatusOK)
	}
	token := makeToken(t, models.RoleClient, time.Hour)
	if w := doRequest(Authenticate(next), "Bearer "+token); w.Code != http.StatusOK {
		t.Errorf("got %d, want 200", w.Code)
	}
}
