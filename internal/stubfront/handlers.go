package stubfront

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/mskang/shopfront-checkout/internal/storefront"
)

const sessionCookie = "SFSESSION"
const maxCartQuantity = 10

// NewRouter mounts the full REST surface.
func NewRouter(s *Server) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Post("/login", s.handleLogin)
	r.Post("/logout", s.handleLogout)
	r.Get("/auth/me", s.handleMe)
	r.Get("/auth/orders", s.handleOrders)

	r.Get("/products/{productID}", s.handleProduct)

	r.Get("/cartitem", s.handleCart)
	r.Post("/cartitem/{productID}", s.handleAddCartItem)
	r.Patch("/cartitem/{cartID}", s.handleUpdateCartItem)
	r.Delete("/cartitem/{productID}", s.handleRemoveCartItem)
	r.Delete("/cartitem", s.handleClearCart)

	r.Post("/order/cartitem", s.handleCreateCartOrder)
	r.Post("/order/{productID}", s.handleCreateProductOrder)
	r.Get("/order/status/{orderID}", s.handleOrderStatus)

	r.Post("/payment/cancel", s.handleCancelPayment)
	r.Post("/payment/success/cart", s.handleApprovePayment)

	return r
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Username == "" {
		writeError(w, http.StatusBadRequest, "username and password are required")
		return
	}

	token, ok := s.login(req.Username, req.Password)
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: token, Path: "/", HttpOnly: true})
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(sessionCookie); err == nil {
		s.logout(c.Value)
	}
	http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: "", Path: "/", MaxAge: -1})
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	v, _ := s.sessionViewer(r)
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	s.mu.Lock()
	p, ok := s.products[id]
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "product not found")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleCart(w http.ResponseWriter, r *http.Request) {
	v, ok := s.sessionViewer(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "login required")
		return
	}

	s.mu.Lock()
	items := append([]storefront.CartItem(nil), s.carts[v.UserID]...)
	s.mu.Unlock()
	if items == nil {
		items = []storefront.CartItem{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleAddCartItem(w http.ResponseWriter, r *http.Request) {
	v, ok := s.sessionViewer(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "login required")
		return
	}
	productID, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid product id")
		return
	}
	qty, err := strconv.Atoi(r.URL.Query().Get("quantity"))
	if err != nil || qty < 1 || qty > maxCartQuantity {
		writeError(w, http.StatusBadRequest, "quantity must be between 1 and 10")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[productID]
	if !ok {
		writeError(w, http.StatusNotFound, "product not found")
		return
	}

	for i, it := range s.carts[v.UserID] {
		if it.ProductID == productID {
			if it.Quantity+qty > maxCartQuantity {
				writeError(w, http.StatusBadRequest, "quantity must be between 1 and 10")
				return
			}
			s.carts[v.UserID][i].Quantity += qty
			w.WriteHeader(http.StatusCreated)
			return
		}
	}

	s.nextCartID++
	s.carts[v.UserID] = append(s.carts[v.UserID], storefront.CartItem{
		ID:           s.nextCartID,
		ProductID:    productID,
		ProductName:  p.Name,
		ProductPrice: p.Price,
		Quantity:     qty,
	})
	w.WriteHeader(http.StatusCreated)
}

func (s *Server) handleUpdateCartItem(w http.ResponseWriter, r *http.Request) {
	v, ok := s.sessionViewer(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "login required")
		return
	}
	cartID, err := strconv.ParseInt(chi.URLParam(r, "cartID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid cart id")
		return
	}
	op := storefront.CartOp(r.URL.Query().Get("operation"))
	if op != storefront.CartIncrease && op != storefront.CartDecrease {
		writeError(w, http.StatusBadRequest, "operation must be increase or decrease")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i, it := range s.carts[v.UserID] {
		if it.ID != cartID {
			continue
		}
		if op == storefront.CartIncrease {
			if it.Quantity >= maxCartQuantity {
				writeError(w, http.StatusBadRequest, "quantity must be between 1 and 10")
				return
			}
			s.carts[v.UserID][i].Quantity++
		} else {
			if it.Quantity <= 1 {
				writeError(w, http.StatusBadRequest, "quantity must be between 1 and 10")
				return
			}
			s.carts[v.UserID][i].Quantity--
		}
		w.WriteHeader(http.StatusOK)
		return
	}
	writeError(w, http.StatusNotFound, "cart item not found")
}

func (s *Server) handleRemoveCartItem(w http.ResponseWriter, r *http.Request) {
	v, ok := s.sessionViewer(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "login required")
		return
	}
	productID, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.carts[v.UserID]
	for i, it := range items {
		if it.ProductID == productID {
			s.carts[v.UserID] = append(items[:i], items[i+1:]...)
			w.WriteHeader(http.StatusOK)
			return
		}
	}
	writeError(w, http.StatusNotFound, "cart item not found")
}

func (s *Server) handleClearCart(w http.ResponseWriter, r *http.Request) {
	v, ok := s.sessionViewer(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "login required")
		return
	}

	s.mu.Lock()
	delete(s.carts, v.UserID)
	s.mu.Unlock()
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleCreateCartOrder(w http.ResponseWriter, r *http.Request) {
	v, ok := s.sessionViewer(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "login required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cart := s.carts[v.UserID]
	if len(cart) == 0 {
		writeError(w, http.StatusBadRequest, "cart is empty")
		return
	}

	items := make([]storefront.OrderItem, 0, len(cart))
	for _, it := range cart {
		p, ok := s.products[it.ProductID]
		if !ok || p.Stock < it.Quantity {
			writeError(w, http.StatusConflict, "insufficient stock")
			return
		}
		items = append(items, storefront.OrderItem{
			ProductID: it.ProductID,
			Name:      it.ProductName,
			Quantity:  it.Quantity,
			UnitPrice: it.ProductPrice,
		})
	}

	o := s.newOrder(v, items, true)
	writeJSON(w, http.StatusCreated, pendingOrderResponse(o, s.payBase))
}

func (s *Server) handleCreateProductOrder(w http.ResponseWriter, r *http.Request) {
	v, ok := s.sessionViewer(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "login required")
		return
	}
	productID, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid product id")
		return
	}
	qty, err := strconv.Atoi(r.URL.Query().Get("quantity"))
	if err != nil || qty < 1 || qty > maxCartQuantity {
		writeError(w, http.StatusBadRequest, "quantity must be between 1 and 10")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[productID]
	if !ok {
		writeError(w, http.StatusNotFound, "product not found")
		return
	}
	if p.Stock < qty {
		writeError(w, http.StatusConflict, "insufficient stock")
		return
	}

	o := s.newOrder(v, []storefront.OrderItem{{
		ProductID: productID,
		Name:      p.Name,
		Quantity:  qty,
		UnitPrice: p.Price,
	}}, false)
	writeJSON(w, http.StatusCreated, pendingOrderResponse(o, s.payBase))
}

// newOrder must be called with mu held.
func (s *Server) newOrder(v storefront.Viewer, items []storefront.OrderItem, fromCart bool) *order {
	o := &order{
		id:       uuid.NewString(),
		userID:   v.UserID,
		status:   storefront.StatusPending,
		total:    orderTotal(items),
		address:  v.Address,
		tid:      "T" + uuid.NewString(),
		fromCart: fromCart,
		items:    items,
	}
	s.orders[o.id] = o
	return o
}

func pendingOrderResponse(o *order, payBase string) storefront.PendingOrder {
	return storefront.PendingOrder{
		OrderID: o.id,
		Total:   o.total,
		Redirect: storefront.PaymentRedirect{
			URL: payBase + "/pay/" + o.id,
			TID: o.tid,
		},
	}
}

func (s *Server) handleOrderStatus(w http.ResponseWriter, r *http.Request) {
	v, ok := s.sessionViewer(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "login required")
		return
	}
	orderID := chi.URLParam(r, "orderID")

	s.mu.Lock()
	o, ok := s.orders[orderID]
	s.mu.Unlock()
	if !ok || o.userID != v.UserID {
		writeError(w, http.StatusForbidden, "no access to this order")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": string(o.status)})
}

func (s *Server) handleCancelPayment(w http.ResponseWriter, r *http.Request) {
	orderID := r.URL.Query().Get("orderId")

	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[orderID]
	if !ok {
		writeError(w, http.StatusNotFound, "order not found")
		return
	}
	// Never cancel a completed payment; repeating a cancel is fine.
	if o.status == storefront.StatusPaid {
		writeError(w, http.StatusConflict, "order already paid")
		return
	}
	o.status = storefront.StatusCancelled
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleApprovePayment(w http.ResponseWriter, r *http.Request) {
	orderID := r.URL.Query().Get("orderId")
	pgToken := r.URL.Query().Get("pg_token")
	if orderID == "" || pgToken == "" {
		writeError(w, http.StatusBadRequest, "orderId and pg_token are required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[orderID]
	if !ok {
		writeError(w, http.StatusNotFound, "order not found")
		return
	}
	if o.status == storefront.StatusPaid {
		writeError(w, http.StatusConflict, "order already paid")
		return
	}
	if o.status == storefront.StatusCancelled {
		writeError(w, http.StatusConflict, "order already cancelled")
		return
	}

	o.status = storefront.StatusPaid
	for _, it := range o.items {
		if p, ok := s.products[it.ProductID]; ok {
			p.Stock -= it.Quantity
		}
	}
	if o.fromCart {
		delete(s.carts, o.userID)
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleOrders(w http.ResponseWriter, r *http.Request) {
	v, ok := s.sessionViewer(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "login required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	orders := []storefront.Order{}
	for _, o := range s.orders {
		if o.userID != v.UserID {
			continue
		}
		orders = append(orders, storefront.Order{
			ID:         o.id,
			Status:     o.status,
			TotalPrice: o.total,
			Address:    o.address,
			Items:      o.items,
		})
	}
	writeJSON(w, http.StatusOK, orders)
}

func (s *Server) sessionViewer(r *http.Request) (storefront.Viewer, bool) {
	c, err := r.Cookie(sessionCookie)
	if err != nil {
		return storefront.Viewer{Role: storefront.RoleAnonymous}, false
	}
	return s.viewer(c.Value)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	http.Error(w, msg, status)
}
