//go:build integration

package integration

import (
	"context"
	"net/http"
	"testing"

	"github.com/bissquit/bookery/internal/domain"
	"github.com/bissquit/bookery/internal/testutil"
	"github.com/stretchr/testify/require"
)

const (
	testPassword = "password123"
	testAnswer   = "blue"
)

// testUser holds the credentials of an account registered through the API.
type testUser struct {
	ID    string
	Name  string
	Email string
}

// registerUser creates a fresh customer account through the public API.
func registerUser(t *testing.T, c *testutil.Client) testUser {
	t.Helper()

	email := testutil.RandomEmail()
	name := testutil.RandomName("User")

	resp, err := c.POST("/api/v1/register", map[string]string{
		"name":     name,
		"email":    email,
		"password": testPassword,
		"phone":    "555-0100",
		"address":  "1 Test Street",
		"answer":   testAnswer,
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var result struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	testutil.DecodeJSON(t, resp, &result)
	require.NotEmpty(t, result.Data.ID)

	return testUser{ID: result.Data.ID, Name: name, Email: email}
}

// setRole changes a user's role directly in the database. There is no
// seeded privileged account, so tests escalate through the store the same
// way an operator would.
func setRole(t *testing.T, userID string, role domain.Role) {
	t.Helper()

	tag, err := testDB.Exec(context.Background(),
		"UPDATE users SET role = $1 WHERE id = $2", int(role), userID)
	require.NoError(t, err)
	require.EqualValues(t, 1, tag.RowsAffected())
}

// newClientWithRole registers a user, promotes it to the given role and
// returns a logged-in client for it.
func newClientWithRole(t *testing.T, role domain.Role) (*testutil.Client, testUser) {
	t.Helper()

	c := newTestClient(t)
	user := registerUser(t, c)
	if role != domain.RoleCustomer {
		setRole(t, user.ID, role)
	}
	c.LoginAs(t, user.Email, testPassword)
	return c, user
}

// createCategory creates a category through the admin API.
func createCategory(t *testing.T, admin *testutil.Client) (id, slug string) {
	t.Helper()

	resp, err := admin.POST("/api/v1/categories", map[string]string{
		"name": testutil.RandomName("Category"),
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var result struct {
		Data struct {
			ID   string `json:"id"`
			Slug string `json:"slug"`
		} `json:"data"`
	}
	testutil.DecodeJSON(t, resp, &result)
	return result.Data.ID, result.Data.Slug
}

// createProduct creates a product with the given price and stock level.
func createProduct(t *testing.T, admin *testutil.Client, categoryID string, price float64, quantity int) (id, slug string) {
	t.Helper()

	resp, err := admin.POST("/api/v1/products", map[string]any{
		"name":        testutil.RandomName("Book"),
		"description": "integration test product",
		"price":       price,
		"quantity":    quantity,
		"shipping":    true,
		"category_id": categoryID,
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var result struct {
		Data struct {
			ID   string `json:"id"`
			Slug string `json:"slug"`
		} `json:"data"`
	}
	testutil.DecodeJSON(t, resp, &result)
	return result.Data.ID, result.Data.Slug
}

// orderPayload mirrors the order response body.
type orderPayload struct {
	ID      string `json:"id"`
	BuyerID string `json:"buyer_id"`
	Items   []struct {
		ProductID string  `json:"product_id"`
		Name      string  `json:"name"`
		Price     float64 `json:"price"`
		Quantity  int     `json:"quantity"`
	} `json:"items"`
	Payment struct {
		Success     bool     `json:"success"`
		Amount      *float64 `json:"amount"`
		Transaction struct {
			ID     string `json:"id"`
			Status string `json:"status"`
		} `json:"transaction"`
	} `json:"payment"`
	Status string `json:"status"`
}

// checkout places an order for the given product and returns the response order.
func checkout(t *testing.T, c *testutil.Client, productID string, quantity int) orderPayload {
	t.Helper()

	resp, err := c.POST("/api/v1/checkout", map[string]any{
		"items": []map[string]any{
			{"product_id": productID, "quantity": quantity},
		},
		"nonce": "fake-nonce",
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var result struct {
		Data orderPayload `json:"data"`
	}
	testutil.DecodeJSON(t, resp, &result)
	require.NotEmpty(t, result.Data.ID)
	return result.Data
}
