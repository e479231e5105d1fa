package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingRegistrar struct {
	registered bool
}

func (r *recordingRegistrar) RegisterRoutes(rg *gin.RouterGroup) {
	r.registered = true
	rg.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"pong": true})
	})
}

func TestRouter_Setup(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("registers routes under the version prefix", func(t *testing.T) {
		engine := gin.New()
		registrar := &recordingRegistrar{}
		NewRouter(engine).Register(registrar).Setup()

		require.True(t, registrar.registered)

		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("custom API version changes the prefix", func(t *testing.T) {
		engine := gin.New()
		NewRouter(engine, WithAPIVersion("v2")).Register(&recordingRegistrar{}).Setup()

		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v2/ping", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("serves the health endpoint", func(t *testing.T) {
		engine := gin.New()
		NewRouter(engine).Setup()

		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("unknown routes return a JSON 404", func(t *testing.T) {
		engine := gin.New()
		NewRouter(engine).Setup()

		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))
		assert.Equal(t, http.StatusNotFound, w.Code)

		var body map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, false, body["success"])
	})

	t.Run("responses carry a request ID", func(t *testing.T) {
		engine := gin.New()
		NewRouter(engine).Setup()

		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	})
}
