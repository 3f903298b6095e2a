package api

import (
	"fmt"
	"net/http"
	"testing"

	"shop_system/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckoutEmptyCartRejected(t *testing.T) {
	env := newTestEnv(t)
	token := env.registerAndLogin(t, "alice")

	// No order at all
	w := env.doJSON(t, http.MethodGet, "/order/checkout", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// A pending order with zero items is just as empty
	userOrder := domain.Order{UserID: 1, Status: domain.OrderStatusPending}
	userOrder.ActiveUserID = &userOrder.UserID
	require.NoError(t, env.db.Create(&userOrder).Error)
	w = env.doJSON(t, http.MethodGet, "/order/checkout", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCheckoutTotal(t *testing.T) {
	env := newTestEnv(t)
	token := env.registerAndLogin(t, "alice")
	bookID := env.createProduct(t, token, "Book", 9.99)
	penID := env.createProduct(t, token, "Pen", 1.25)

	w := env.doForm(t, http.MethodPost, fmt.Sprintf("/add_to_cart/%d", bookID), token, "quantity=2")
	require.Equal(t, http.StatusOK, w.Code)
	w = env.doForm(t, http.MethodPost, fmt.Sprintf("/add_to_cart/%d", penID), token, "quantity=4")
	require.Equal(t, http.StatusOK, w.Code)

	w = env.doJSON(t, http.MethodGet, "/order/checkout", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	// 2 * 9.99 + 4 * 1.25
	assert.InDelta(t, 24.98, body["total"].(float64), 1e-9)
}

func TestPayLocal(t *testing.T) {
	env := newTestEnv(t)
	token := env.registerAndLogin(t, "alice")
	productID := env.createProduct(t, token, "Book", 9.99)

	w := env.doForm(t, http.MethodPost, fmt.Sprintf("/add_to_cart/%d", productID), token, "quantity=1")
	require.Equal(t, http.StatusOK, w.Code)
	var order domain.Order
	require.NoError(t, env.db.First(&order).Error)

	w = env.doJSON(t, http.MethodPost, fmt.Sprintf("/order/pay_local/%d", order.ID), token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, env.db.First(&order, order.ID).Error)
	assert.Equal(t, domain.OrderStatusPaid, order.Status)
	assert.Nil(t, order.ActiveUserID)

	// Paying again re-sets paid without error
	w = env.doJSON(t, http.MethodPost, fmt.Sprintf("/order/pay_local/%d", order.ID), token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestPayLocalDeniedForOtherUser(t *testing.T) {
	env := newTestEnv(t)
	aliceToken := env.registerAndLogin(t, "alice")
	bobToken := env.registerAndLogin(t, "bob")
	productID := env.createProduct(t, aliceToken, "Book", 9.99)

	w := env.doForm(t, http.MethodPost, fmt.Sprintf("/add_to_cart/%d", productID), aliceToken, "quantity=1")
	require.Equal(t, http.StatusOK, w.Code)
	var order domain.Order
	require.NoError(t, env.db.First(&order).Error)

	w = env.doJSON(t, http.MethodPost, fmt.Sprintf("/order/pay_local/%d", order.ID), bobToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	require.NoError(t, env.db.First(&order, order.ID).Error)
	assert.Equal(t, domain.OrderStatusPending, order.Status)
}

func TestPayLocalUnknownOrder(t *testing.T) {
	env := newTestEnv(t)
	token := env.registerAndLogin(t, "alice")

	w := env.doJSON(t, http.MethodPost, "/order/pay_local/9999", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// The full scenario from the demo: alice registers, logs in, puts two copies
// of a 9.99 book in her cart, sees one line with subtotal 19.98, and pays
// locally.
func TestAliceBuysABook(t *testing.T) {
	env := newTestEnv(t)
	token := env.registerAndLogin(t, "alice")
	bookID := env.createProduct(t, token, "Book", 9.99)

	w := env.doForm(t, http.MethodPost, fmt.Sprintf("/add_to_cart/%d", bookID), token, "quantity=2")
	require.Equal(t, http.StatusOK, w.Code)

	// The cart shows one line, quantity 2, subtotal 19.98
	w = env.doJSON(t, http.MethodGet, "/cart", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	orderBody := body["order"].(map[string]any)
	items := orderBody["items"].([]any)
	require.Len(t, items, 1)
	assert.EqualValues(t, 2, items[0].(map[string]any)["quantity"])
	assert.InDelta(t, 19.98, body["total"].(float64), 1e-9)

	// Paying locally marks the order paid
	orderID := uint(orderBody["id"].(float64))
	w = env.doJSON(t, http.MethodPost, fmt.Sprintf("/order/pay_local/%d", orderID), token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var order domain.Order
	require.NoError(t, env.db.First(&order, orderID).Error)
	assert.Equal(t, domain.OrderStatusPaid, order.Status)

	// The paid order is no longer her cart; the next add starts a new one
	w = env.doForm(t, http.MethodPost, fmt.Sprintf("/add_to_cart/%d", bookID), token, "quantity=1")
	require.Equal(t, http.StatusOK, w.Code)
	var count int64
	require.NoError(t, env.db.Model(&domain.Order{}).Count(&count).Error)
	assert.EqualValues(t, 2, count)
}
