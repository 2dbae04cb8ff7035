//go:build integration

package integration

import (
	"net/http"
	"testing"

	"github.com/bissquit/bookery/internal/domain"
	"github.com/bissquit/bookery/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckout(t *testing.T) {
	admin, _ := newClientWithRole(t, domain.RoleAdmin)
	categoryID, _ := createCategory(t, admin)
	productID, productSlug := createProduct(t, admin, categoryID, 12.50, 5)

	customer, customerUser := newClientWithRole(t, domain.RoleCustomer)
	order := checkout(t, customer, productID, 2)

	assert.Equal(t, customerUser.ID, order.BuyerID)
	assert.Equal(t, "not-process", order.Status)
	require.Len(t, order.Items, 1)
	assert.Equal(t, productID, order.Items[0].ProductID)
	assert.Equal(t, 12.50, order.Items[0].Price)
	assert.Equal(t, 2, order.Items[0].Quantity)

	// Sandbox gateway approves everything and settles the full total.
	assert.True(t, order.Payment.Success)
	require.NotNil(t, order.Payment.Amount)
	assert.Equal(t, 25.00, *order.Payment.Amount)
	assert.Equal(t, "submitted_for_settlement", order.Payment.Transaction.Status)

	// Stock was decremented.
	resp, err := customer.GET("/api/v1/products/" + productSlug)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var product struct {
		Data struct {
			Quantity int `json:"quantity"`
		} `json:"data"`
	}
	testutil.DecodeJSON(t, resp, &product)
	assert.Equal(t, 3, product.Data.Quantity)
}

func TestCheckoutEmptyCart(t *testing.T) {
	customer, _ := newClientWithRole(t, domain.RoleCustomer)

	resp, err := customer.POST("/api/v1/checkout", map[string]any{
		"items": []map[string]any{},
		"nonce": "fake-nonce",
	})
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCheckoutUnknownProduct(t *testing.T) {
	customer, _ := newClientWithRole(t, domain.RoleCustomer)

	resp, err := customer.POST("/api/v1/checkout", map[string]any{
		"items": []map[string]any{
			{"product_id": "00000000-0000-0000-0000-000000000000", "quantity": 1},
		},
		"nonce": "fake-nonce",
	})
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestClientToken(t *testing.T) {
	customer, _ := newClientWithRole(t, domain.RoleCustomer)

	resp, err := customer.GET("/api/v1/checkout/token")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result struct {
		Data struct {
			ClientToken string `json:"client_token"`
		} `json:"data"`
	}
	testutil.DecodeJSON(t, resp, &result)
	assert.NotEmpty(t, result.Data.ClientToken)
}

func TestOrderListIsolation(t *testing.T) {
	admin, _ := newClientWithRole(t, domain.RoleAdmin)
	categoryID, _ := createCategory(t, admin)
	productID, _ := createProduct(t, admin, categoryID, 9.99, 10)

	first, _ := newClientWithRole(t, domain.RoleCustomer)
	second, _ := newClientWithRole(t, domain.RoleCustomer)

	placed := checkout(t, first, productID, 1)

	resp, err := first.GET("/api/v1/orders")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var mine struct {
		Data []orderPayload `json:"data"`
	}
	testutil.DecodeJSON(t, resp, &mine)
	require.Len(t, mine.Data, 1)
	assert.Equal(t, placed.ID, mine.Data[0].ID)

	// The other buyer sees nothing.
	resp, err = second.GET("/api/v1/orders")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var theirs struct {
		Data []orderPayload `json:"data"`
	}
	testutil.DecodeJSON(t, resp, &theirs)
	assert.Empty(t, theirs.Data)
}

func TestAllOrdersRequiresAdmin(t *testing.T) {
	customer, _ := newClientWithRole(t, domain.RoleCustomer)

	resp, err := customer.GET("/api/v1/all-orders")
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	_ = resp.Body.Close()

	admin, _ := newClientWithRole(t, domain.RoleAdmin)

	resp, err = admin.GET("/api/v1/all-orders")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestUpdateOrderStatus(t *testing.T) {
	admin, _ := newClientWithRole(t, domain.RoleAdmin)
	categoryID, _ := createCategory(t, admin)
	productID, _ := createProduct(t, admin, categoryID, 5.00, 10)

	customer, _ := newClientWithRole(t, domain.RoleCustomer)
	placed := checkout(t, customer, productID, 1)

	resp, err := admin.PUT("/api/v1/order-status/"+placed.ID, map[string]string{
		"status": "processing",
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result struct {
		Data orderPayload `json:"data"`
	}
	testutil.DecodeJSON(t, resp, &result)
	assert.Equal(t, "processing", result.Data.Status)
}

// Legacy spellings are accepted and stored verbatim, not canonicalized.
func TestUpdateOrderStatusLegacySpelling(t *testing.T) {
	admin, _ := newClientWithRole(t, domain.RoleAdmin)
	categoryID, _ := createCategory(t, admin)
	productID, _ := createProduct(t, admin, categoryID, 5.00, 10)

	customer, _ := newClientWithRole(t, domain.RoleCustomer)
	placed := checkout(t, customer, productID, 1)

	resp, err := admin.PUT("/api/v1/order-status/"+placed.ID, map[string]string{
		"status": "deliverd",
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result struct {
		Data orderPayload `json:"data"`
	}
	testutil.DecodeJSON(t, resp, &result)
	assert.Equal(t, "deliverd", result.Data.Status)

	// The buyer reads back the same literal value.
	resp, err = customer.GET("/api/v1/orders")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var mine struct {
		Data []orderPayload `json:"data"`
	}
	testutil.DecodeJSON(t, resp, &mine)
	require.Len(t, mine.Data, 1)
	assert.Equal(t, "deliverd", mine.Data[0].Status)
}

func TestUpdateOrderStatusUnknownValue(t *testing.T) {
	admin, _ := newClientWithRole(t, domain.RoleAdmin)
	categoryID, _ := createCategory(t, admin)
	productID, _ := createProduct(t, admin, categoryID, 5.00, 10)

	customer, _ := newClientWithRole(t, domain.RoleCustomer)
	placed := checkout(t, customer, productID, 1)

	resp, err := admin.PUT("/api/v1/order-status/"+placed.ID, map[string]string{
		"status": "teleported",
	})
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUpdateOrderStatusUnknownOrder(t *testing.T) {
	admin, _ := newClientWithRole(t, domain.RoleAdmin)

	resp, err := admin.PUT("/api/v1/order-status/00000000-0000-0000-0000-000000000000", map[string]string{
		"status": "processing",
	})
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestOrderStatusUpdateRequiresAdmin(t *testing.T) {
	admin, _ := newClientWithRole(t, domain.RoleAdmin)
	categoryID, _ := createCategory(t, admin)
	productID, _ := createProduct(t, admin, categoryID, 5.00, 10)

	customer, _ := newClientWithRole(t, domain.RoleCustomer)
	placed := checkout(t, customer, productID, 1)

	resp, err := customer.PUT("/api/v1/order-status/"+placed.ID, map[string]string{
		"status": "cancel",
	})
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}
