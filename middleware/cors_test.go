package middleware

import (
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

// the API registers GET, POST, PATCH and DELETE routes - a preflight must
// admit all of them or the browser blocks the call
func TestCORSPreflight(t *testing.T) {
	gin.SetMode(gin.TestMode)

	os.Setenv("CORS_ORIGIN", "http://localhost:4200")

	router := gin.New()
	router.Use(CORSMiddleware())
	router.PATCH("/books/:id/rates/:rateId", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest("OPTIONS", "/books/1/rates/2", nil)
	req.Header.Set("Origin", "http://localhost:4200")
	req.Header.Set("Access-Control-Request-Method", "PATCH")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:4200", w.Header().Get("Access-Control-Allow-Origin"))

	methods := w.Header().Get("Access-Control-Allow-Methods")
	for _, m := range []string{"GET", "POST", "PATCH", "DELETE"} {
		assert.True(t, strings.Contains(methods, m), "method %s not admitted", m)
	}
}
