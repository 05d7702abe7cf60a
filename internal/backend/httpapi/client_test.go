package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"finance-console/internal/backend"
	"finance-console/internal/models"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return New(srv.URL, 5*time.Second, log)
}

func TestListBranchEntriesLowercasesBranch(t *testing.T) {
	var gotPath string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`[
			{"_id":"1","branch":"pune","customer":"Ravi","place":"Pune","mobile":"9876543210","loan":"10000","interest":500,"emi":1000,"date":"2024-01-05T00:00:00.000Z"},
			{"_id":"2","branch":"pune","customer":"Ravi","place":"Payment","mobile":"0000000000","loan":3000,"interest":"","emi":0,"date":"2024-02-05"}
		]`))
	})

	entries, err := c.ListBranchEntries(context.Background(), "Pune")
	require.NoError(t, err)
	assert.Equal(t, "/api/branch-entries/pune", gotPath)
	require.Len(t, entries, 2)
	assert.Equal(t, "10000", entries[0].Loan.String())
	assert.Equal(t, "2024-01-05", entries[0].Date.String())
	assert.True(t, entries[1].IsPayment())
	assert.True(t, entries[1].Interest.IsZero())
}

func TestListNullBodyIsEmpty(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`null`))
	})

	branches, err := c.ListBranches(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, branches)
	assert.Empty(t, branches)
}

func TestCreateExpenseSendsJSON(t *testing.T) {
	var received map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/branch-expenses", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		received["_id"] = "abc"
		_ = json.NewEncoder(w).Encode(received)
	})

	out, err := c.CreateExpense(context.Background(), models.Expense{
		Branch:   "Pune",
		Category: "Rent",
		Amount:   models.AmountFromInt(1200),
		Month:    "January 2024",
		Date:     models.NewDate(2024, time.January, 3),
	})
	require.NoError(t, err)
	assert.Equal(t, "abc", out.ID)
	assert.Equal(t, "pune", received["branch"])
	assert.Equal(t, float64(1200), received["amount"])
	assert.Equal(t, "2024-01-03", received["date"])
}

func TestUpdateAndDeleteUseID(t *testing.T) {
	var calls []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.Method+" "+r.URL.Path)
		w.WriteHeader(http.StatusOK)
	})

	_, err := c.UpdateEmployeeExpense(context.Background(), "e1", models.EmployeeExpense{Branch: "pune", Category: "Fuel"})
	require.NoError(t, err)
	require.NoError(t, c.DeleteEntry(context.Background(), "x9"))

	assert.Equal(t, []string{
		"PUT /api/employee-expenses/e1",
		"DELETE /api/branch-entries/x9",
	}, calls)
}

func TestNotFoundMapsToSentinel(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"no such expense"}`, http.StatusNotFound)
	})

	err := c.DeleteExpense(context.Background(), "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, backend.ErrNotFound)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Contains(t, apiErr.Error(), "DELETE /api/branch-expenses/missing")
}

func TestServerErrorIsNotNotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := c.ListExpenses(context.Background(), "pune")
	require.Error(t, err)
	assert.NotErrorIs(t, err, backend.ErrNotFound)
}

func TestCategorySettings(t *testing.T) {
	t.Run("MissingReadsEmpty", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})
		s, err := c.GetCategorySettings(context.Background(), "Pune")
		require.NoError(t, err)
		assert.Empty(t, s.AddedCategories)
		assert.Empty(t, s.DeletedCategories)
	})

	t.Run("SaveRoundTrip", func(t *testing.T) {
		var body models.CategorySettings
		var path string
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			path = r.URL.Path
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			w.WriteHeader(http.StatusOK)
		})
		err := c.SaveCategorySettings(context.Background(), "Pune", models.CategorySettings{
			AddedCategories:   []string{"Courier"},
			DeletedCategories: []string{"petrol"},
		})
		require.NoError(t, err)
		assert.Equal(t, "/api/branch-category-settings/pune", path)
		assert.Equal(t, []string{"Courier"}, body.AddedCategories)
		assert.Equal(t, []string{"petrol"}, body.DeletedCategories)
	})
}

func TestContextCancellation(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.ListEntries(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
