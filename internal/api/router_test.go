package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"notification-center/internal/config"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func testRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	var cfg config.Config
	cfg.API.BasePath = "/api/v0"
	cfg.Auth.JWTSecret = "test-secret"
	return NewRouter(nil, testLogger(), cfg, nil, nil, nil)
}

func TestRouterRegistersTemplateRoutes(t *testing.T) {
	routes := testRouter().Routes()

	has := func(method, path string) bool {
		for _, r := range routes {
			if r.Method == method && r.Path == path {
				return true
			}
		}
		return false
	}

	assert.True(t, has(http.MethodGet, "/api/v0/notifications/templates"))
	assert.True(t, has(http.MethodGet, "/api/v0/notifications/templates/:id"))
	assert.True(t, has(http.MethodPost, "/api/v0/notifications/templates"))
	assert.True(t, has(http.MethodPut, "/api/v0/notifications/templates/:id"))
	assert.True(t, has(http.MethodDelete, "/api/v0/notifications/templates/:id"))
}

func TestGetTemplateRejectsInvalidID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := &Handler{logger: testLogger()}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/notifications/templates/not-a-uuid", nil)
	c.Params = gin.Params{{Key: "id", Value: "not-a-uuid"}}

	h.GetTemplate(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
