package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luanafs/pantry-api/internal/repository"
)

// newRequestContext builds an echo context carrying an authenticated
// user_id, the way the JWT middleware leaves it for handlers.
func newRequestContext(t *testing.T, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", uint64(42))
	return c, rec
}

func TestCreateProductRejectsBlockingErrors(t *testing.T) {
	h := NewProductHandler(repository.NewProductRepo(nil))
	c, rec := newRequestContext(t, http.MethodPost, "/v1/products",
		`{"name":"","quantity":-1,"suffix":"XX"}`)

	require.NoError(t, h.CreateProduct(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name"`)
	assert.Contains(t, rec.Body.String(), `"quantity"`)
	assert.Contains(t, rec.Body.String(), `"suffix"`)
}

func TestCreateProductRequiresAuth(t *testing.T) {
	h := NewProductHandler(repository.NewProductRepo(nil))
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/products", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec) // no user_id set

	require.NoError(t, h.CreateProduct(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSearchProductsRequiresQuery(t *testing.T) {
	h := NewProductHandler(repository.NewProductRepo(nil))
	c, rec := newRequestContext(t, http.MethodGet, "/v1/products/search?q=%20", "")

	require.NoError(t, h.SearchProducts(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetUserIDAcceptsJWTNumericForms(t *testing.T) {
	e := echo.New()
	for _, v := range []any{uint64(7), int(7), int64(7), float64(7), "7"} {
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
		c.Set("user_id", v)
		id, err := getUserID(c)
		require.NoError(t, err)
		assert.Equal(t, uint64(7), id)
	}

	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	_, err := getUserID(c)
	assert.Error(t, err, "missing user_id must not map to a real user")
}
