package app

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/notehive/collab-note-service/pkg/code"

	"github.com/gin-gonic/gin"
)

func TestToResponseDetailsHiddenInProduction(t *testing.T) {
	gin.SetMode(gin.TestMode)
	t.Cleanup(func() { SetProductionMode(false) })

	codeObj := code.ErrorDatabase.WithDetails("sql: connection refused")

	render := func() string {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest("GET", "/", nil)
		NewResponse(c).ToResponse(codeObj)
		return w.Body.String()
	}

	SetProductionMode(false)
	if body := render(); !strings.Contains(body, "connection refused") {
		t.Errorf("development response should carry details, got %s", body)
	}

	SetProductionMode(true)
	body := render()
	if strings.Contains(body, "connection refused") {
		t.Errorf("production response should not carry details, got %s", body)
	}
	if strings.Contains(body, "details") {
		t.Errorf("production response should omit the details field, got %s", body)
	}
	if !strings.Contains(body, "Database error") {
		t.Errorf("production response should keep the message, got %s", body)
	}
}
