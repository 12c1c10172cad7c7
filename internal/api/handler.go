// Package api exposes the terminal core to the device-local presentation
// layer over a JSON HTTP surface. It is glue: every endpoint delegates to
// the domain packages and never reaches into their state directly.
package api

import (
	"net/http"

	"github.com/xenking/karak-pos/internal/domain/access"
	"github.com/xenking/karak-pos/internal/domain/checkout"
	"github.com/xenking/karak-pos/internal/domain/menu"
	"github.com/xenking/karak-pos/internal/domain/order"
)

// Handler implements the presentation contract around the injected domain
// components.
type Handler struct {
	catalog *menu.Catalog
	session *checkout.Session
	journal *order.Journal
	access  *access.Directory
}

// NewHandler constructs a Handler with the required domain dependencies.
func NewHandler(
	catalog *menu.Catalog,
	session *checkout.Session,
	journal *order.Journal,
	directory *access.Directory,
) *Handler {
	return &Handler{
		catalog: catalog,
		session: session,
		journal: journal,
		access:  directory,
	}
}

// Routes registers every API endpoint on mux.
func (h *Handler) Routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/menu", h.getMenu)
	mux.HandleFunc("POST /api/menu/items", h.addMenuItem)
	mux.HandleFunc("PUT /api/menu/items/{id}", h.updateMenuItem)
	mux.HandleFunc("DELETE /api/menu/items/{id}", h.deleteMenuItem)
	mux.HandleFunc("POST /api/menu/categories", h.addCategory)

	mux.HandleFunc("GET /api/cart", h.getCart)
	mux.HandleFunc("POST /api/cart/items", h.addCartItem)
	mux.HandleFunc("PUT /api/cart/items/{id}", h.setCartQuantity)
	mux.HandleFunc("DELETE /api/cart/items/{id}", h.removeCartItem)
	mux.HandleFunc("PUT /api/cart/gratuity", h.setGratuity)
	mux.HandleFunc("DELETE /api/cart", h.clearCart)

	mux.HandleFunc("POST /api/checkout", h.beginCheckout)
	mux.HandleFunc("GET /api/checkout", h.getCheckout)
	mux.HandleFunc("POST /api/checkout/method", h.selectMethod)
	mux.HandleFunc("POST /api/checkout/confirm", h.confirmCheckout)
	mux.HandleFunc("POST /api/checkout/cancel", h.cancelCheckout)

	mux.HandleFunc("GET /api/orders", h.listOrders)
	mux.HandleFunc("GET /api/orders/export", h.exportOrders)
	mux.HandleFunc("PATCH /api/orders/{id}/status", h.updateOrderStatus)
	mux.HandleFunc("PUT /api/orders/{id}", h.updateOrder)

	mux.HandleFunc("GET /api/metrics", h.getMetrics)

	mux.HandleFunc("POST /api/login", h.login)
	mux.HandleFunc("POST /api/logout", h.logout)
	mux.HandleFunc("GET /api/identities", h.listIdentities)
	mux.HandleFunc("POST /api/identities/{id}/code", h.resetCode)
}
