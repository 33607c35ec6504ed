package reservations

import (
	"net/http/httptest"
	"testing"

	"buslane/internal/customers"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func TestCurrentActor(t *testing.T) {
	gin.SetMode(gin.TestMode)
	customerID := uuid.New()

	tests := []struct {
		name     string
		setup    func(c *gin.Context)
		wantOK   bool
		operator bool
	}{
		{
			name:  "missing identity",
			setup: func(c *gin.Context) {},
		},
		{
			// A signed token can carry any JSON type in its claims; a
			// non-string identity must be rejected, never trusted.
			name:  "non-string identity",
			setup: func(c *gin.Context) { c.Set("user_id", 42.0) },
		},
		{
			name:  "garbage identity",
			setup: func(c *gin.Context) { c.Set("user_id", "not-a-uuid") },
		},
		{
			name:   "customer",
			setup:  func(c *gin.Context) { c.Set("user_id", customerID.String()) },
			wantOK: true,
		},
		{
			name: "operator",
			setup: func(c *gin.Context) {
				c.Set("user_id", customerID.String())
				c.Set("user_role", string(customers.RoleOperator))
			},
			wantOK:   true,
			operator: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			tt.setup(c)

			actor, ok := currentActor(c)
			if ok != tt.wantOK {
				t.Fatalf("currentActor ok = %v, want %v", ok, tt.wantOK)
			}
			if !tt.wantOK {
				return
			}
			if actor.ID != customerID {
				t.Errorf("actor id = %s, want %s", actor.ID, customerID)
			}
			if actor.IsOperator != tt.operator {
				t.Errorf("is_operator = %v, want %v", actor.IsOperator, tt.operator)
			}
		})
	}
}
