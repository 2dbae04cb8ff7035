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

type summaryPayload struct {
	TotalOrders   int            `json:"total_orders"`
	PaidOrders    int            `json:"paid_orders"`
	UnpaidOrders  int            `json:"unpaid_orders"`
	TotalSales    float64        `json:"total_sales"`
	TodayOrders   int            `json:"today_orders"`
	TodaySales    float64        `json:"today_sales"`
	TotalUsers    int            `json:"total_users"`
	UsersByRole   map[string]int `json:"users_by_role"`
	TotalProducts int            `json:"total_products"`
}

func fetchSummary(t *testing.T, admin *testutil.Client) summaryPayload {
	t.Helper()

	resp, err := admin.GET("/api/v1/analytics/summary")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result struct {
		Data summaryPayload `json:"data"`
	}
	testutil.DecodeJSON(t, resp, &result)
	return result.Data
}

func TestAnalyticsSummaryRequiresAdmin(t *testing.T) {
	customer, _ := newClientWithRole(t, domain.RoleCustomer)

	resp, err := customer.GET("/api/v1/analytics/summary")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestAnalyticsSummaryReflectsActivity(t *testing.T) {
	admin, _ := newClientWithRole(t, domain.RoleAdmin)

	before := fetchSummary(t, admin)

	categoryID, _ := createCategory(t, admin)
	productID, _ := createProduct(t, admin, categoryID, 10.00, 10)

	customer, _ := newClientWithRole(t, domain.RoleCustomer)
	checkout(t, customer, productID, 2)

	after := fetchSummary(t, admin)

	// The sandbox gateway settles every sale, so the new order is paid.
	assert.Equal(t, before.TotalOrders+1, after.TotalOrders)
	assert.Equal(t, before.PaidOrders+1, after.PaidOrders)
	assert.Equal(t, before.UnpaidOrders, after.UnpaidOrders)
	assert.InDelta(t, before.TotalSales+20.00, after.TotalSales, 0.001)

	// Orders placed during the test run always land in the today bucket.
	assert.Equal(t, before.TodayOrders+1, after.TodayOrders)
	assert.InDelta(t, before.TodaySales+20.00, after.TodaySales, 0.001)

	assert.Equal(t, before.TotalProducts+1, after.TotalProducts)
	assert.Equal(t, before.TotalUsers+1, after.TotalUsers)
	assert.Equal(t, before.UsersByRole["customer"]+1, after.UsersByRole["customer"])
	assert.GreaterOrEqual(t, after.UsersByRole["admin"], 1)
}
