// Package apitest runs an in-memory fake of the storefront backend for
// tests: the auth/OTP flow, a seeded catalog, per-user carts and order
// creation, with switches for the response-shape quirks the real
// backend exhibits.
package apitest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OTP is the one-time password the fake backend "mails" to every
// registered account.
const OTP = "123456"

type account struct {
	id       string
	name     string
	email    string
	password string
	verified bool
}

type cartEntry struct {
	productID string
	quantity  int
}

type product struct {
	id          string
	name        string
	description string
	price       float64
	image       string
	owner       string
}

type order struct {
	id         string
	buyer      string
	productIDs []string
	totalPrice float64
	status     string
	createdAt  time.Time
}

type Server struct {
	*httptest.Server

	// WrapLists makes list endpoints answer {products, pagination}
	// instead of a bare array.
	WrapLists bool
	// ExtendedIDs makes document ids go out as {"$oid": "..."}.
	ExtendedIDs bool
	// OrdersListBroken reproduces the backend bug where GET /orders
	// answers {products: [], pagination}.
	OrdersListBroken bool
	// OnRequest, when set, runs before each request is handled. Tests
	// use it to gate response timing.
	OnRequest func(r *http.Request)

	mu       sync.Mutex
	accounts map[string]*account // by email
	tokens   map[string]string   // token -> email
	products []product
	carts    map[string][]cartEntry // by email
	orders   map[string][]order     // by email
}

func NewServer() *Server {
	s := &Server{
		accounts: make(map[string]*account),
		tokens:   make(map[string]string),
		carts:    make(map[string][]cartEntry),
		orders:   make(map[string][]order),
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.hook)

	r.Post("/auth/login", s.handleLogin)
	r.Post("/auth/register", s.handleRegister)
	r.Post("/auth/verify-otp", s.handleVerifyOTP)
	r.Post("/auth/resend-otp", s.handleResendOTP)

	r.Get("/products", s.handleProducts)
	r.Post("/products", s.requireAuth(s.handleCreateProduct))
	r.Get("/products/user/my-products", s.requireAuth(s.handleMyProducts))
	r.Get("/products/{id}", s.handleProduct)
	r.Put("/products/{id}", s.requireAuth(s.handleUpdateProduct))
	r.Delete("/products/{id}", s.requireAuth(s.handleDeleteProduct))

	r.Get("/cart", s.requireAuth(s.handleGetCart))
	r.Post("/cart/add", s.requireAuth(s.handleAddToCart))
	r.Put("/cart/update", s.requireAuth(s.handleUpdateCart))
	r.Delete("/cart/remove/{productID}", s.requireAuth(s.handleRemoveFromCart))

	r.Get("/orders", s.requireAuth(s.handleOrders))
	r.Post("/orders", s.requireAuth(s.handleCreateOrder))
	r.Get("/orders/{id}", s.requireAuth(s.handleOrder))

	s.Server = httptest.NewServer(r)
	return s
}

func (s *Server) hook(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.OnRequest != nil {
			s.OnRequest(r)
		}
		next.ServeHTTP(w, r)
	})
}

// SeedUser registers a verified account and returns a live token.
func (s *Server) SeedUser(name, email, password string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	acct := &account{
		id:       primitive.NewObjectID().Hex(),
		name:     name,
		email:    email,
		password: password,
		verified: true,
	}
	s.accounts[email] = acct
	token := "tok-" + primitive.NewObjectID().Hex()
	s.tokens[token] = email
	return token
}

// SeedProduct adds a catalog entry and returns its id. Owner may be
// empty for products without a seller on record.
func (s *Server) SeedProduct(name string, price float64, owner string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := product{
		id:    primitive.NewObjectID().Hex(),
		name:  name,
		price: price,
		owner: owner,
	}
	s.products = append(s.products, p)
	return p.id
}

// UserID returns the account id for a seeded email.
func (s *Server) UserID(email string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if acct, ok := s.accounts[email]; ok {
		return acct.id
	}
	return ""
}

func (s *Server) authed(r *http.Request) *account {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	email, ok := s.tokens[token]
	if !ok {
		return nil
	}
	return s.accounts[email]
}

func (s *Server) requireAuth(next func(w http.ResponseWriter, r *http.Request, acct *account)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		acct := s.authed(r)
		if acct == nil {
			respond(w, http.StatusUnauthorized, map[string]any{"message": "Not authorized, token failed"})
			return
		}
		next(w, r, acct)
	}
}

func (s *Server) id(hex string) any {
	if s.ExtendedIDs {
		return map[string]string{"$oid": hex}
	}
	return hex
}

func (s *Server) productJSON(p product) map[string]any {
	out := map[string]any{
		"_id":   s.id(p.id),
		"name":  p.name,
		"price": p.price,
	}
	if p.description != "" {
		out["description"] = p.description
	}
	if p.image != "" {
		out["image"] = p.image
	}
	if p.owner != "" {
		out["owner"] = s.id(p.owner)
	}
	return out
}

func respond(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// ---- auth ----

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]any{"message": "Invalid request body"})
		return
	}

	s.mu.Lock()
	acct, ok := s.accounts[req.Email]
	if !ok || acct.password != req.Password {
		s.mu.Unlock()
		respond(w, http.StatusUnauthorized, map[string]any{"message": "Invalid email or password"})
		return
	}
	if !acct.verified {
		s.mu.Unlock()
		respond(w, http.StatusForbidden, map[string]any{"message": "Please verify your email first"})
		return
	}
	token := "tok-" + primitive.NewObjectID().Hex()
	s.tokens[token] = acct.email
	s.mu.Unlock()

	respond(w, http.StatusOK, map[string]any{
		"user": map[string]any{
			"_id":   s.id(acct.id),
			"name":  acct.name,
			"email": acct.email,
		},
		"token": token,
	})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		respond(w, http.StatusBadRequest, map[string]any{"message": "Invalid request body"})
		return
	}

	s.mu.Lock()
	if _, exists := s.accounts[req.Email]; exists {
		s.mu.Unlock()
		respond(w, http.StatusConflict, map[string]any{"message": "User already exists"})
		return
	}
	acct := &account{
		id:       primitive.NewObjectID().Hex(),
		name:     req.Name,
		email:    req.Email,
		password: req.Password,
	}
	s.accounts[req.Email] = acct
	s.mu.Unlock()

	respond(w, http.StatusCreated, map[string]any{
		"userId":  s.id(acct.id),
		"message": "Registration successful. Please check your email for the OTP.",
	})
}

func (s *Server) handleVerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
		OTP   string `json:"otp"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]any{"message": "Invalid request body"})
		return
	}

	s.mu.Lock()
	acct, ok := s.accounts[req.Email]
	if !ok {
		s.mu.Unlock()
		respond(w, http.StatusNotFound, map[string]any{"message": "User not found"})
		return
	}
	if req.OTP != OTP {
		s.mu.Unlock()
		respond(w, http.StatusBadRequest, map[string]any{"message": "Invalid or expired OTP"})
		return
	}
	acct.verified = true
	s.mu.Unlock()

	respond(w, http.StatusOK, map[string]any{"message": "Email verified successfully"})
}

func (s *Server) handleResendOTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]any{"message": "Invalid request body"})
		return
	}

	s.mu.Lock()
	_, ok := s.accounts[req.Email]
	s.mu.Unlock()
	if !ok {
		respond(w, http.StatusNotFound, map[string]any{"message": "User not found"})
		return
	}
	respond(w, http.StatusOK, map[string]any{"message": "OTP resent"})
}

// ---- products ----

const pageSize = 10

func (s *Server) handleProducts(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}

	s.mu.Lock()
	total := len(s.products)
	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}
	list := make([]map[string]any, 0, end-start)
	for _, p := range s.products[start:end] {
		list = append(list, s.productJSON(p))
	}
	s.mu.Unlock()

	if !s.WrapLists {
		respond(w, http.StatusOK, list)
		return
	}
	pages := (total + pageSize - 1) / pageSize
	if pages < 1 {
		pages = 1
	}
	respond(w, http.StatusOK, map[string]any{
		"products":   list,
		"pagination": map[string]any{"total": total, "page": page, "pages": pages},
	})
}

func (s *Server) findProduct(id string) (product, bool) {
	for _, p := range s.products {
		if p.id == id {
			return p, true
		}
	}
	return product{}, false
}

func (s *Server) handleProduct(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	p, ok := s.findProduct(chi.URLParam(r, "id"))
	s.mu.Unlock()
	if !ok {
		respond(w, http.StatusNotFound, map[string]any{"message": "Product not found"})
		return
	}
	respond(w, http.StatusOK, s.productJSON(p))
}

func (s *Server) handleMyProducts(w http.ResponseWriter, r *http.Request, acct *account) {
	s.mu.Lock()
	var list []map[string]any
	for _, p := range s.products {
		if p.owner == acct.id {
			list = append(list, s.productJSON(p))
		}
	}
	s.mu.Unlock()
	if list == nil {
		list = []map[string]any{}
	}
	respond(w, http.StatusOK, list)
}

func (s *Server) handleCreateProduct(w http.ResponseWriter, r *http.Request, acct *account) {
	var req struct {
		Name        string  `json:"name"`
		Description string  `json:"description"`
		Price       float64 `json:"price"`
		Image       string  `json:"image"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		respond(w, http.StatusBadRequest, map[string]any{"message": "Name and price are required"})
		return
	}

	s.mu.Lock()
	p := product{
		id:          primitive.NewObjectID().Hex(),
		name:        req.Name,
		description: req.Description,
		price:       req.Price,
		image:       req.Image,
		owner:       acct.id,
	}
	s.products = append(s.products, p)
	s.mu.Unlock()

	respond(w, http.StatusCreated, s.productJSON(p))
}

func (s *Server) handleUpdateProduct(w http.ResponseWriter, r *http.Request, acct *account) {
	var req struct {
		Name        string  `json:"name"`
		Description string  `json:"description"`
		Price       float64 `json:"price"`
		Image       string  `json:"image"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]any{"message": "Invalid request body"})
		return
	}

	id := chi.URLParam(r, "id")
	s.mu.Lock()
	for i := range s.products {
		if s.products[i].id != id {
			continue
		}
		if s.products[i].owner != acct.id {
			s.mu.Unlock()
			respond(w, http.StatusForbidden, map[string]any{"message": "Not your product"})
			return
		}
		s.products[i].name = req.Name
		s.products[i].description = req.Description
		s.products[i].price = req.Price
		s.products[i].image = req.Image
		p := s.products[i]
		s.mu.Unlock()
		respond(w, http.StatusOK, s.productJSON(p))
		return
	}
	s.mu.Unlock()
	respond(w, http.StatusNotFound, map[string]any{"message": "Product not found"})
}

func (s *Server) handleDeleteProduct(w http.ResponseWriter, r *http.Request, acct *account) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	for i := range s.products {
		if s.products[i].id != id {
			continue
		}
		if s.products[i].owner != acct.id {
			s.mu.Unlock()
			respond(w, http.StatusForbidden, map[string]any{"message": "Not your product"})
			return
		}
		s.products = append(s.products[:i], s.products[i+1:]...)
		s.mu.Unlock()
		respond(w, http.StatusOK, map[string]any{"message": "Product removed"})
		return
	}
	s.mu.Unlock()
	respond(w, http.StatusNotFound, map[string]any{"message": "Product not found"})
}

// ---- cart ----

func (s *Server) cartJSON(email string) map[string]any {
	entries := s.carts[email]
	list := make([]map[string]any, 0, len(entries))
	for _, e := range entries {
		p, ok := s.findProduct(e.productID)
		if !ok {
			continue
		}
		list = append(list, map[string]any{
			"product":  s.productJSON(p),
			"quantity": e.quantity,
		})
	}
	return map[string]any{"products": list}
}

func (s *Server) handleGetCart(w http.ResponseWriter, _ *http.Request, acct *account) {
	s.mu.Lock()
	payload := s.cartJSON(acct.email)
	s.mu.Unlock()
	respond(w, http.StatusOK, payload)
}

func (s *Server) handleAddToCart(w http.ResponseWriter, r *http.Request, acct *account) {
	var req struct {
		ProductID string `json:"productId"`
		Quantity  int    `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ProductID == "" {
		respond(w, http.StatusBadRequest, map[string]any{"message": "productId is required"})
		return
	}
	if req.Quantity < 1 {
		req.Quantity = 1
	}

	s.mu.Lock()
	if _, ok := s.findProduct(req.ProductID); !ok {
		s.mu.Unlock()
		respond(w, http.StatusNotFound, map[string]any{"message": "Product not found"})
		return
	}
	entries := s.carts[acct.email]
	found := false
	for i := range entries {
		if entries[i].productID == req.ProductID {
			entries[i].quantity += req.Quantity
			found = true
		}
	}
	if !found {
		entries = append(entries, cartEntry{productID: req.ProductID, quantity: req.Quantity})
	}
	s.carts[acct.email] = entries
	payload := s.cartJSON(acct.email)
	s.mu.Unlock()

	respond(w, http.StatusOK, payload)
}

func (s *Server) handleUpdateCart(w http.ResponseWriter, r *http.Request, acct *account) {
	var req struct {
		ProductID string `json:"productId"`
		Quantity  int    `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ProductID == "" {
		respond(w, http.StatusBadRequest, map[string]any{"message": "productId is required"})
		return
	}

	s.mu.Lock()
	entries := s.carts[acct.email]
	out := entries[:0]
	found := false
	for _, e := range entries {
		if e.productID == req.ProductID {
			found = true
			if req.Quantity > 0 {
				e.quantity = req.Quantity
				out = append(out, e)
			}
			continue
		}
		out = append(out, e)
	}
	s.carts[acct.email] = out
	payload := s.cartJSON(acct.email)
	s.mu.Unlock()

	if !found {
		respond(w, http.StatusNotFound, map[string]any{"message": "Item not in cart"})
		return
	}
	respond(w, http.StatusOK, payload)
}

func (s *Server) handleRemoveFromCart(w http.ResponseWriter, r *http.Request, acct *account) {
	productID := chi.URLParam(r, "productID")

	s.mu.Lock()
	entries := s.carts[acct.email]
	out := entries[:0]
	for _, e := range entries {
		if e.productID != productID {
			out = append(out, e)
		}
	}
	s.carts[acct.email] = out
	payload := s.cartJSON(acct.email)
	s.mu.Unlock()

	respond(w, http.StatusOK, payload)
}

// ---- orders ----

func (s *Server) orderJSON(o order) map[string]any {
	products := make([]any, 0, len(o.productIDs))
	for _, id := range o.productIDs {
		if p, ok := s.findProduct(id); ok {
			products = append(products, s.productJSON(p))
			continue
		}
		products = append(products, s.id(id))
	}
	return map[string]any{
		"_id":        s.id(o.id),
		"buyer":      s.id(o.buyer),
		"products":   products,
		"totalPrice": o.totalPrice,
		"status":     o.status,
		"createdAt":  o.createdAt.UTC().Format(time.RFC3339),
	}
}

func (s *Server) handleOrders(w http.ResponseWriter, _ *http.Request, acct *account) {
	if s.OrdersListBroken {
		respond(w, http.StatusOK, map[string]any{
			"products":   []any{},
			"pagination": map[string]any{"total": 0, "page": 1, "pages": 1},
		})
		return
	}

	s.mu.Lock()
	list := make([]map[string]any, 0, len(s.orders[acct.email]))
	for _, o := range s.orders[acct.email] {
		list = append(list, s.orderJSON(o))
	}
	s.mu.Unlock()
	respond(w, http.StatusOK, list)
}

func (s *Server) handleOrder(w http.ResponseWriter, r *http.Request, acct *account) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	for _, o := range s.orders[acct.email] {
		if o.id == id {
			payload := s.orderJSON(o)
			s.mu.Unlock()
			respond(w, http.StatusOK, payload)
			return
		}
	}
	s.mu.Unlock()
	respond(w, http.StatusNotFound, map[string]any{"message": "Order not found"})
}

func (s *Server) handleCreateOrder(w http.ResponseWriter, _ *http.Request, acct *account) {
	s.mu.Lock()
	entries := s.carts[acct.email]
	if len(entries) == 0 {
		s.mu.Unlock()
		respond(w, http.StatusBadRequest, map[string]any{"message": "Cart is empty"})
		return
	}

	o := order{
		id:        primitive.NewObjectID().Hex(),
		buyer:     acct.id,
		status:    "pending",
		createdAt: time.Now(),
	}
	for _, e := range entries {
		o.productIDs = append(o.productIDs, e.productID)
		if p, ok := s.findProduct(e.productID); ok {
			o.totalPrice += p.price * float64(e.quantity)
		}
	}
	s.orders[acct.email] = append(s.orders[acct.email], o)
	s.carts[acct.email] = nil
	payload := s.orderJSON(o)
	s.mu.Unlock()

	respond(w, http.StatusCreated, payload)
}
