package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"buslane/internal/shared/config"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

const testSecret = "test-secret"

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return signed
}

func TestJWTAuthIdentityClaim(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{JWT: config.JWTConfig{Secret: testSecret}}

	engine := gin.New()
	engine.GET("/protected", JWTAuthWithConfig(cfg), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	exp := time.Now().Add(time.Hour).Unix()

	tests := []struct {
		name   string
		claims jwt.MapClaims
		want   int
	}{
		{
			name:   "valid claims",
			claims: jwt.MapClaims{"user_id": uuid.New().String(), "email": "a@b.com", "role": "CUSTOMER", "type": "access", "exp": exp},
			want:   http.StatusOK,
		},
		{
			// Validly signed but with a numeric identity. Must be a clean
			// 401, never a panic in a downstream handler.
			name:   "numeric user id",
			claims: jwt.MapClaims{"user_id": 12345, "type": "access", "exp": exp},
			want:   http.StatusUnauthorized,
		},
		{
			name:   "missing user id",
			claims: jwt.MapClaims{"type": "access", "exp": exp},
			want:   http.StatusUnauthorized,
		},
		{
			name:   "refresh token on access endpoint",
			claims: jwt.MapClaims{"user_id": uuid.New().String(), "type": "refresh", "exp": exp},
			want:   http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			req.Header.Set("Authorization", "Bearer "+signToken(t, tt.claims))
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, req)

			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
		})
	}
}
