package trips

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestCreateTripRejectsMalformedIdentity(t *testing.T) {
	gin.SetMode(gin.TestMode)
	body := `{"origin":"Mumbai","destination":"Pune","departure_at":"2026-09-01T10:00:00Z","seat_rows":2,"seats_per_row":2,"seat_price":450}`

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/trips", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	// A non-string identity claim must be a 401, never a panic.
	c.Set("user_id", 42.0)

	NewController(nil, nil).CreateTrip(c)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}
