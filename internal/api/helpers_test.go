package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"shop_system/internal/db"
	"shop_system/internal/middleware"
	"shop_system/internal/payment"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testJWTSecret = "test-secret"

// testEnv wires the handlers exactly like cmd/server does, backed by an
// in-memory sqlite database and a miniredis instance.
type testEnv struct {
	db     *gorm.DB
	rdb    *redis.Client
	mp     *payment.Client
	router *gin.Engine
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	// Named shared-cache memory DB so the connection pool sees one database
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(gdb))

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	// No token by default; tests point this at an httptest server as needed
	mp := payment.NewClient("", "http://127.0.0.1:1/unused")

	r := gin.New()
	r.GET("/", IndexHandler(gdb, rdb))
	r.POST("/register", RegisterHandler(gdb))
	r.POST("/login", LoginHandler(gdb, testJWTSecret))

	auth := r.Group("/")
	auth.Use(middleware.JWTAuthMiddleware(testJWTSecret, rdb))
	auth.GET("/logout", LogoutHandler(rdb))
	auth.GET("/products", ListProductsHandler(gdb))
	auth.POST("/product/new", CreateProductHandler(gdb, rdb))
	auth.POST("/product/edit/:id", EditProductHandler(gdb, rdb))
	auth.POST("/product/delete/:id", DeleteProductHandler(gdb, rdb))
	auth.POST("/add_to_cart/:productId", AddToCartHandler(gdb))
	auth.POST("/remove_from_cart/:itemId", RemoveFromCartHandler(gdb))
	auth.GET("/cart", GetCartHandler(gdb))
	auth.GET("/order/checkout", CheckoutHandler(gdb))
	auth.POST("/order/pay_local/:orderId", PayLocalHandler(gdb))
	auth.POST("/order/mp_create_preference/:orderId", CreatePreferenceHandler(gdb, mp, "http://localhost:8080"))
	auth.GET("/mp/success/:orderId", MPSuccessHandler(gdb))
	auth.GET("/mp/failure/:orderId", MPFailureHandler(gdb))
	auth.GET("/mp/pending/:orderId", MPPendingHandler(gdb))

	return &testEnv{db: gdb, rdb: rdb, mp: mp, router: r}
}

// doJSON performs a request with a JSON body and optional bearer token.
func (e *testEnv) doJSON(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// doForm performs a request with an urlencoded form body and a bearer token.
func (e *testEnv) doForm(t *testing.T, method, path, token, form string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(form))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// registerAndLogin creates a user and returns a valid token for them.
func (e *testEnv) registerAndLogin(t *testing.T, username string) string {
	t.Helper()
	creds := map[string]string{"username": username, "password": "secret123"}
	w := e.doJSON(t, http.MethodPost, "/register", "", creds)
	require.Equal(t, http.StatusCreated, w.Code)
	w = e.doJSON(t, http.MethodPost, "/login", "", creds)
	require.Equal(t, http.StatusOK, w.Code)
	var resp AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

// createProduct inserts a catalog entry through the API and returns its ID.
func (e *testEnv) createProduct(t *testing.T, token, name string, price float64) uint {
	t.Helper()
	body := map[string]any{"name": name, "description": name + " description", "price": price}
	w := e.doJSON(t, http.MethodPost, "/product/new", token, body)
	require.Equal(t, http.StatusCreated, w.Code)
	var resp struct {
		Product struct {
			ID uint `json:"id"`
		} `json:"product"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Product.ID
}

// decodeBody unmarshals a recorder body into a generic map.
func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &m))
	return m
}
