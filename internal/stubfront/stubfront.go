// Package stubfront is an in-memory storefront backend implementing the REST
// surface the checkout client consumes. Intended for local development and
// end-to-end tests only — state lives in maps and dies with the process.
package stubfront

import (
	"sync"

	"github.com/google/uuid"

	"github.com/mskang/shopfront-checkout/internal/storefront"
)

type account struct {
	viewer   storefront.Viewer
	password string
}

type order struct {
	id       string
	userID   int64
	status   storefront.OrderStatus
	total    int64
	address  string
	tid      string
	fromCart bool
	items    []storefront.OrderItem
}

// Server holds the whole backend state. All access goes through mu.
type Server struct {
	mu sync.Mutex

	// payBase is prepended to the per-order pay path to form the redirect
	// URL handed back on order creation.
	payBase string

	products   map[int64]*storefront.Product
	accounts   map[string]*account // by username
	sessions   map[string]*account // by session cookie value
	carts      map[int64][]storefront.CartItem
	orders     map[string]*order
	nextUserID int64
	nextCartID int64
}

func New(payBase string) *Server {
	s := &Server{
		payBase:  payBase,
		products: make(map[int64]*storefront.Product),
		accounts: make(map[string]*account),
		sessions: make(map[string]*account),
		carts:    make(map[int64][]storefront.CartItem),
		orders:   make(map[string]*order),
	}
	s.seed()
	return s
}

func (s *Server) seed() {
	for _, p := range []*storefront.Product{
		{ID: 1, Name: "Ceramic mug", Description: "350ml stoneware mug", Price: 1000, Stock: 50},
		{ID: 2, Name: "Drip kettle", Description: "600ml gooseneck kettle", Price: 2000, Stock: 20},
		{ID: 3, Name: "Hand grinder", Description: "Conical burr grinder", Price: 45000, Stock: 8},
	} {
		s.products[p.ID] = p
	}
}

// login creates the account on first sight — stub behavior, any credentials
// are accepted for a new username.
func (s *Server) login(username, password string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.accounts[username]
	if !ok {
		s.nextUserID++
		acc = &account{
			viewer: storefront.Viewer{
				UserID:      s.nextUserID,
				Username:    username,
				Role:        storefront.RoleUser,
				Address:     "1 Test Street",
				PhoneNumber: "010-0000-0000",
			},
			password: password,
		}
		s.accounts[username] = acc
	}
	if acc.password != password {
		return "", false
	}

	token := uuid.NewString()
	s.sessions[token] = acc
	return token, true
}

func (s *Server) logout(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
}

func (s *Server) viewer(token string) (storefront.Viewer, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.sessions[token]
	if !ok {
		return storefront.Viewer{Role: storefront.RoleAnonymous}, false
	}
	return acc.viewer, true
}

func orderTotal(items []storefront.OrderItem) int64 {
	var total int64
	for _, it := range items {
		total += it.UnitPrice * int64(it.Quantity)
	}
	return total
}
