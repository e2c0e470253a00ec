package procurement

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) (http.Handler, *Service) {
	t.Helper()
	svc, _, _, _ := newTestService(t)
	r := chi.NewRouter()
	r.Route("/api", NewHandler(discardLogger(), svc).MountRoutes)
	return r, svc
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

const submitBody = `{
	"requestorId": "r1",
	"departmentId": "d1",
	"categoryId": "c1",
	"vendorId": "v1",
	"budgetId": "b1",
	"justification": "laptops",
	"neededBy": "2024-03-05T00:00:00Z",
	"items": [{"description": "Laptop", "quantity": 2, "unitPrice": "100000"}]
}`

func TestHandlerLifecycle(t *testing.T) {
	h, _ := newTestRouter(t)

	rec := do(t, h, http.MethodPost, "/api/requisitions", submitBody)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var pr Requisition
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pr))
	require.Equal(t, "PR-0001", pr.ID)
	requireDecimal(t, 200_000, pr.TotalAmount)

	rec = do(t, h, http.MethodPost, "/api/requisitions/PR-0001/levels/0/roles/0/approve", `{"actorId":"m1"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var decided struct {
		Outcome     OutcomeStatus `json:"outcome"`
		Requisition Requisition   `json:"requisition"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decided))
	require.Equal(t, OutcomeApplied, decided.Outcome)
	require.Equal(t, PRStatusApproved, decided.Requisition.Status)

	rec = do(t, h, http.MethodPost, "/api/requisitions/PR-0001/levels/0/roles/0/approve", `{"actorId":"m1"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"outcome":"ignored"`)
	require.Contains(t, rec.Body.String(), `"reason"`)

	rec = do(t, h, http.MethodPost, "/api/requisitions/PR-0001/purchase-order", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Contains(t, rec.Body.String(), `"number":"PO-0001"`)

	rec = do(t, h, http.MethodPost, "/api/purchase-orders/PO-0001/receipts", `{"reference":"DO-1"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, h, http.MethodPost, "/api/purchase-orders/PO-0001/invoices", `{"invoiceNumber":"INV-A"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/api/purchase-orders/PO-0001", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var po PurchaseOrder
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &po))
	require.Equal(t, POStatusClosed, po.Status)

	rec = do(t, h, http.MethodGet, "/api/requisitions?status=Closed", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var closed []Requisition
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &closed))
	require.Len(t, closed, 1)
}

func TestHandlerErrors(t *testing.T) {
	h, _ := newTestRouter(t)

	cases := []struct {
		name   string
		method string
		path   string
		body   string
		status int
	}{
		{"unknown requisition", http.MethodGet, "/api/requisitions/PR-9", "", http.StatusNotFound},
		{"malformed body", http.MethodPost, "/api/requisitions", "{", http.StatusBadRequest},
		{"unknown field", http.MethodPost, "/api/vendors", `{"name":"x","colour":"red"}`, http.StatusBadRequest},
		{"over budget", http.MethodPost, "/api/requisitions", strings.Replace(submitBody, `"quantity": 2`, `"quantity": 20`, 1), http.StatusConflict},
		{"missing budget", http.MethodPost, "/api/requisitions", strings.Replace(submitBody, `"b1"`, `"zz"`, 1), http.StatusUnprocessableEntity},
		{"bad level", http.MethodPost, "/api/requisitions/PR-0001/levels/x/roles/0/approve", `{"actorId":"m1"}`, http.StatusBadRequest},
		{"unknown purchase order", http.MethodPost, "/api/purchase-orders/PO-1/receipts", `{"reference":"a"}`, http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(t, h, tc.method, tc.path, tc.body)
			require.Equal(t, tc.status, rec.Code, rec.Body.String())
			require.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
		})
	}

	rec := do(t, h, http.MethodPost, "/api/requisitions", submitBody)
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = do(t, h, http.MethodPost, "/api/requisitions/PR-0001/levels/0/roles/0/approve", `{}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "actor required")
}

func TestHandlerReadModels(t *testing.T) {
	h, _ := newTestRouter(t)
	for _, path := range []string{
		"/api/departments", "/api/categories", "/api/employees", "/api/approval-rules",
		"/api/roles", "/api/budgets", "/api/vendors", "/api/approvals",
		"/api/dashboard", "/api/analytics", "/api/purchase-orders",
	} {
		rec := do(t, h, http.MethodGet, path, "")
		require.Equal(t, http.StatusOK, rec.Code, path)
		require.True(t, json.Valid(rec.Body.Bytes()), path)
	}

	rec := do(t, h, http.MethodPost, "/api/reset", "")
	require.Equal(t, http.StatusNoContent, rec.Code)
}
