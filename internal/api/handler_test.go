package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xenking/karak-pos/internal/domain/access"
	"github.com/xenking/karak-pos/internal/domain/cart"
	"github.com/xenking/karak-pos/internal/domain/checkout"
	"github.com/xenking/karak-pos/internal/domain/menu"
	"github.com/xenking/karak-pos/internal/domain/order"
	"github.com/xenking/karak-pos/internal/storage/file"
)

type testAPI struct {
	mux     *http.ServeMux
	catalog *menu.Catalog
	journal *order.Journal
	session *checkout.Session
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	store, err := file.New(t.TempDir(), zap.NewNop())
	require.NoError(t, err)
	st, err := store.Load(t.Context())
	require.NoError(t, err)

	lg := zap.NewNop()
	catalog := menu.NewCatalog(store, st.Categories, st.Items, lg)
	journal := order.NewJournal(store, st.Orders, lg)
	directory := access.NewDirectory(store, st.User, st.Users, lg)
	session := checkout.NewSession(cart.New(), journal, nil, time.Hour, lg)
	t.Cleanup(session.Close)

	mux := http.NewServeMux()
	NewHandler(catalog, session, journal, directory).Routes(mux)
	return &testAPI{mux: mux, catalog: catalog, journal: journal, session: session}
}

func (a *testAPI) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	a.mux.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func (a *testAPI) firstItem(t *testing.T) menu.Item {
	t.Helper()
	items := a.catalog.Items()
	require.NotEmpty(t, items)
	return items[0]
}

func TestGetMenu(t *testing.T) {
	a := newTestAPI(t)

	rec := a.do(t, http.MethodGet, "/api/menu", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeBody[menuResponse](t, rec)
	assert.Equal(t, menu.DefaultCategories(), resp.Categories)
	assert.Len(t, resp.Items, 10)
}

func TestMenuItemCRUD(t *testing.T) {
	a := newTestAPI(t)

	rec := a.do(t, http.MethodPost, "/api/menu/items", menuItemRequest{
		Name:     "Masala Karak",
		Price:    decimal.RequireFromString("50"),
		Category: "Karak",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decodeBody[menu.Item](t, rec)
	assert.NotEmpty(t, created.ID)

	rec = a.do(t, http.MethodPut, "/api/menu/items/"+created.ID, menuItemRequest{
		Name:     "Masala Karak",
		Price:    decimal.RequireFromString("55"),
		Category: "Karak",
	})
	require.Equal(t, http.StatusNoContent, rec.Code)

	got, ok := a.catalog.Get(created.ID)
	require.True(t, ok)
	assert.True(t, decimal.RequireFromString("55").Equal(got.Price))

	rec = a.do(t, http.MethodDelete, "/api/menu/items/"+created.ID, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = a.do(t, http.MethodDelete, "/api/menu/items/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAddMenuItem_Validation(t *testing.T) {
	a := newTestAPI(t)

	rec := a.do(t, http.MethodPost, "/api/menu/items", menuItemRequest{
		Name:     "  ",
		Price:    decimal.NewFromInt(10),
		Category: "Karak",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = a.do(t, http.MethodPost, "/api/menu/items", menuItemRequest{
		Name:     "Karak",
		Price:    decimal.NewFromInt(-5),
		Category: "Karak",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestCartFlow(t *testing.T) {
	a := newTestAPI(t)
	item := a.firstItem(t)

	rec := a.do(t, http.MethodPost, "/api/cart/items", addCartItemRequest{ItemID: item.ID})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = a.do(t, http.MethodPost, "/api/cart/items", addCartItemRequest{ItemID: item.ID})
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeBody[cartResponse](t, rec)
	require.Len(t, resp.Lines, 1)
	assert.Equal(t, 2, resp.Lines[0].Quantity)
	assert.True(t, item.Price.Mul(decimal.NewFromInt(2)).Equal(resp.Subtotal))

	rec = a.do(t, http.MethodPut, "/api/cart/gratuity", map[string]any{"gratuity": 5})
	require.Equal(t, http.StatusOK, rec.Code)
	resp = decodeBody[cartResponse](t, rec)
	assert.True(t, decimal.NewFromInt(5).Equal(resp.Gratuity))
	assert.True(t, resp.Subtotal.Add(resp.Gratuity).Equal(resp.Total))

	rec = a.do(t, http.MethodPut, "/api/cart/items/"+item.ID, setQuantityRequest{Quantity: 0})
	require.Equal(t, http.StatusOK, rec.Code)
	resp = decodeBody[cartResponse](t, rec)
	assert.Empty(t, resp.Lines)
}

func TestAddCartItem_UnknownID(t *testing.T) {
	a := newTestAPI(t)
	rec := a.do(t, http.MethodPost, "/api/cart/items", addCartItemRequest{ItemID: "ghost"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSetGratuity_NonNumericCoercedToZero(t *testing.T) {
	a := newTestAPI(t)

	rec := a.do(t, http.MethodPut, "/api/cart/gratuity", map[string]any{"gratuity": "abc"})
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody[cartResponse](t, rec)
	assert.True(t, resp.Gratuity.IsZero())
}

func TestCheckoutCashFlow(t *testing.T) {
	a := newTestAPI(t)
	item := a.firstItem(t)

	require.Equal(t, http.StatusOK, a.do(t, http.MethodPost, "/api/cart/items", addCartItemRequest{ItemID: item.ID}).Code)

	rec := a.do(t, http.MethodPost, "/api/checkout", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	state := decodeBody[checkoutResponse](t, rec)
	assert.Equal(t, checkout.StateSelectingMethod, state.State)

	rec = a.do(t, http.MethodPost, "/api/checkout/method", selectMethodRequest{Method: order.MethodCash})
	require.Equal(t, http.StatusOK, rec.Code)
	state = decodeBody[checkoutResponse](t, rec)
	assert.Equal(t, checkout.StateCompleted, state.State)
	require.NotNil(t, state.Order)
	assert.Equal(t, order.StatusPending, state.Order.Status)
	assert.True(t, item.Price.Equal(state.Order.Total))

	rec = a.do(t, http.MethodGet, "/api/orders?view=active", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decodeBody[ordersResponse](t, rec)
	require.Len(t, list.Orders, 1)
	assert.Equal(t, state.Order.ID, list.Orders[0].ID)
}

func TestCheckoutNoteFlow(t *testing.T) {
	a := newTestAPI(t)
	item := a.firstItem(t)
	require.Equal(t, http.StatusOK, a.do(t, http.MethodPost, "/api/cart/items", addCartItemRequest{ItemID: item.ID}).Code)
	require.Equal(t, http.StatusCreated, a.do(t, http.MethodPost, "/api/checkout", nil).Code)

	rec := a.do(t, http.MethodPost, "/api/checkout/method", selectMethodRequest{Method: order.MethodAccount})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, checkout.StateCapturingDetails, decodeBody[checkoutResponse](t, rec).State)

	rec = a.do(t, http.MethodPost, "/api/checkout/confirm", confirmRequest{Note: ""})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = a.do(t, http.MethodPost, "/api/checkout/confirm", confirmRequest{Note: "table 4"})
	require.Equal(t, http.StatusOK, rec.Code)
	state := decodeBody[checkoutResponse](t, rec)
	assert.Equal(t, checkout.StateCompleted, state.State)
	require.NotNil(t, state.Order)
	assert.Equal(t, "table 4", state.Order.Note)
}

func TestCheckoutGuards(t *testing.T) {
	a := newTestAPI(t)

	// Empty cart.
	assert.Equal(t, http.StatusUnprocessableEntity, a.do(t, http.MethodPost, "/api/checkout", nil).Code)
	// No checkout in progress.
	assert.Equal(t, http.StatusNotFound, a.do(t, http.MethodGet, "/api/checkout", nil).Code)
	assert.Equal(t, http.StatusNotFound, a.do(t, http.MethodPost, "/api/checkout/cancel", nil).Code)

	item := a.firstItem(t)
	require.Equal(t, http.StatusOK, a.do(t, http.MethodPost, "/api/cart/items", addCartItemRequest{ItemID: item.ID}).Code)
	require.Equal(t, http.StatusCreated, a.do(t, http.MethodPost, "/api/checkout", nil).Code)

	// Double begin conflicts.
	assert.Equal(t, http.StatusConflict, a.do(t, http.MethodPost, "/api/checkout", nil).Code)
	// Unknown method.
	assert.Equal(t, http.StatusUnprocessableEntity,
		a.do(t, http.MethodPost, "/api/checkout/method", selectMethodRequest{Method: "Cheque"}).Code)

	// Cancel detaches and preserves the cart.
	assert.Equal(t, http.StatusNoContent, a.do(t, http.MethodPost, "/api/checkout/cancel", nil).Code)
	assert.Equal(t, http.StatusNotFound, a.do(t, http.MethodGet, "/api/checkout", nil).Code)
	resp := decodeBody[cartResponse](t, a.do(t, http.MethodGet, "/api/cart", nil))
	assert.Len(t, resp.Lines, 1)
}

func TestUpdateOrderStatus(t *testing.T) {
	a := newTestAPI(t)
	o, err := a.journal.Append(t.Context(), order.Input{
		Lines:  []order.Line{{ItemID: "i1", Name: "Karak", Price: decimal.NewFromInt(45), Quantity: 1}},
		Total:  decimal.NewFromInt(45),
		Method: order.MethodCash,
	})
	require.NoError(t, err)

	rec := a.do(t, http.MethodPatch, "/api/orders/"+itoa(o.ID)+"/status", updateStatusRequest{Status: order.StatusCompleted})
	require.Equal(t, http.StatusNoContent, rec.Code)

	got, _ := a.journal.Get(o.ID)
	assert.Equal(t, order.StatusCompleted, got.Status)

	assert.Equal(t, http.StatusNotFound,
		a.do(t, http.MethodPatch, "/api/orders/999/status", updateStatusRequest{Status: order.StatusCompleted}).Code)
	assert.Equal(t, http.StatusBadRequest,
		a.do(t, http.MethodPatch, "/api/orders/abc/status", updateStatusRequest{Status: order.StatusCompleted}).Code)
	assert.Equal(t, http.StatusUnprocessableEntity,
		a.do(t, http.MethodPatch, "/api/orders/"+itoa(o.ID)+"/status", updateStatusRequest{Status: "void"}).Code)
}

func TestUpdateOrder_RederivesTotal(t *testing.T) {
	a := newTestAPI(t)
	o, err := a.journal.Append(t.Context(), order.Input{
		Lines:    []order.Line{{ItemID: "i1", Name: "Karak", Price: decimal.NewFromInt(45), Quantity: 1}},
		Gratuity: decimal.NewFromInt(5),
		Total:    decimal.NewFromInt(50),
		Method:   order.MethodCash,
	})
	require.NoError(t, err)

	rec := a.do(t, http.MethodPut, "/api/orders/"+itoa(o.ID), updateOrderRequest{
		Lines: []order.Line{{ItemID: "i1", Name: "Karak", Price: decimal.NewFromInt(45), Quantity: 3}},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	updated := decodeBody[order.Order](t, rec)
	// 45*3 plus the untouched recorded gratuity.
	assert.True(t, decimal.NewFromInt(140).Equal(updated.Total))
	assert.True(t, decimal.NewFromInt(5).Equal(updated.Gratuity))
}

func TestExportOrders(t *testing.T) {
	a := newTestAPI(t)
	_, err := a.journal.Append(t.Context(), order.Input{
		Lines:  []order.Line{{ItemID: "i1", Name: "Karak", Price: decimal.NewFromInt(45), Quantity: 1}},
		Total:  decimal.NewFromInt(45),
		Method: order.MethodCash,
	})
	require.NoError(t, err)

	rec := a.do(t, http.MethodGet, "/api/orders/export", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/gzip", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "orders-all.json.gz")
	assert.NotEmpty(t, rec.Body.Bytes())
}

func TestGetMetrics(t *testing.T) {
	a := newTestAPI(t)
	_, err := a.journal.Append(t.Context(), order.Input{
		Lines:  []order.Line{{ItemID: "i1", Name: "Karak", Price: decimal.NewFromInt(45), Quantity: 2}},
		Total:  decimal.NewFromInt(90),
		Method: order.MethodCash,
	})
	require.NoError(t, err)

	rec := a.do(t, http.MethodGet, "/api/metrics?window=today", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var m struct {
		Revenue    decimal.Decimal `json:"revenue"`
		OrderCount int             `json:"order_count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))
	assert.Equal(t, 1, m.OrderCount)
	assert.True(t, decimal.NewFromInt(90).Equal(m.Revenue))

	assert.Equal(t, http.StatusBadRequest, a.do(t, http.MethodGet, "/api/metrics?window=fortnight", nil).Code)
}

func TestLoginFlow(t *testing.T) {
	a := newTestAPI(t)

	rec := a.do(t, http.MethodPost, "/api/login", loginRequest{Code: "1234"})
	require.Equal(t, http.StatusOK, rec.Code)
	id := decodeBody[identityView](t, rec)
	assert.Equal(t, access.RoleAdmin, id.Role)

	assert.Equal(t, http.StatusUnauthorized, a.do(t, http.MethodPost, "/api/login", loginRequest{Code: "9999"}).Code)
	assert.Equal(t, http.StatusNoContent, a.do(t, http.MethodPost, "/api/logout", nil).Code)
}

func TestListIdentities_HidesCodes(t *testing.T) {
	a := newTestAPI(t)

	rec := a.do(t, http.MethodGet, "/api/identities", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.NotContains(t, rec.Body.String(), `"code"`)
	views := decodeBody[[]identityView](t, rec)
	assert.Len(t, views, 2)
}

func TestResetCode(t *testing.T) {
	a := newTestAPI(t)
	rec := a.do(t, http.MethodGet, "/api/identities", nil)
	views := decodeBody[[]identityView](t, rec)
	require.NotEmpty(t, views)
	id := views[0].ID

	assert.Equal(t, http.StatusNoContent,
		a.do(t, http.MethodPost, "/api/identities/"+id+"/code", resetCodeRequest{Code: "7777"}).Code)
	assert.Equal(t, http.StatusUnprocessableEntity,
		a.do(t, http.MethodPost, "/api/identities/"+id+"/code", resetCodeRequest{Code: "12"}).Code)
	assert.Equal(t, http.StatusNotFound,
		a.do(t, http.MethodPost, "/api/identities/ghost/code", resetCodeRequest{Code: "7777"}).Code)
}

func TestBadJSONBody(t *testing.T) {
	a := newTestAPI(t)

	req := httptest.NewRequest(http.MethodPost, "/api/login", bytes.NewReader([]byte("{broken")))
	rec := httptest.NewRecorder()
	a.mux.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
