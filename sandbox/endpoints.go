package sandbox

import (
	"fmt"
	"net/http"

	"github.com/lborres/agromart/core"
)

// Endpoint describes one route independently of the HTTP framework.
// Adapters bind a handler to each OperationID.
type Endpoint struct {
	Method      string
	Path        string
	OperationID string
	Description string

	// Auth requires a bearer token; Roles further restricts the caller
	Auth  bool
	Roles []core.Role

	// RateLimited routes are throttled per client IP
	RateLimited bool
}

// BaseEndpoints is the marketplace API served under the base path
func BaseEndpoints() []Endpoint {
	return []Endpoint{
		{Method: http.MethodPost, Path: "/auth/register", OperationID: "register", Description: "Create an account and open a session", RateLimited: true},
		{Method: http.MethodPost, Path: "/auth/login", OperationID: "login", Description: "Authenticate with email and password", RateLimited: true},
		{Method: http.MethodGet, Path: "/auth/me", OperationID: "me", Description: "Profile of the current credential", Auth: true},
		{Method: http.MethodPost, Path: "/auth/logout", OperationID: "logout", Description: "Revoke the current session", Auth: true},
		{Method: http.MethodGet, Path: "/farms", OperationID: "listFarms", Description: "The caller's farms", Auth: true, Roles: []core.Role{core.RoleFarmer}},
		{Method: http.MethodPost, Path: "/farms", OperationID: "createFarm", Description: "Create a farm", Auth: true, Roles: []core.Role{core.RoleFarmer}},
		{Method: http.MethodGet, Path: "/listings", OperationID: "listListings", Description: "All active listings"},
		{Method: http.MethodPost, Path: "/listings", OperationID: "createListing", Description: "Create a produce listing", Auth: true, Roles: []core.Role{core.RoleFarmer}},
		{Method: http.MethodGet, Path: "/kyc/status", OperationID: "kycStatus", Description: "The caller's latest KYC application", Auth: true},
		{Method: http.MethodPost, Path: "/kyc/upload", OperationID: "kycUpload", Description: "Submit KYC documents (multipart)", Auth: true},
		{Method: http.MethodGet, Path: "/kyc/admin/queue", OperationID: "kycQueue", Description: "All KYC applications", Auth: true, Roles: []core.Role{core.RoleAdmin}},
		{Method: http.MethodGet, Path: "/kyc/admin/documents", OperationID: "kycDocument", Description: "Download a stored KYC document by ?ref=", Auth: true, Roles: []core.Role{core.RoleAdmin}},
		{Method: http.MethodPut, Path: "/kyc/admin/:id/review", OperationID: "kycReview", Description: "Approve or reject an application", Auth: true, Roles: []core.Role{core.RoleAdmin}},
		{Method: http.MethodGet, Path: "/health", OperationID: "health", Description: "Service and storage health"},
	}
}

// EndpointRegistry holds endpoints in registration order and rejects
// duplicate METHOD:PATH pairs.
type EndpointRegistry struct {
	order []*Endpoint
	index map[string]*Endpoint
}

func NewEndpointRegistry() *EndpointRegistry {
	reg := &EndpointRegistry{index: make(map[string]*Endpoint)}
	// base endpoints are unique by construction
	_ = reg.Register(BaseEndpoints()...)
	return reg
}

func endpointKey(ep Endpoint) string {
	return ep.Method + ":" + ep.Path
}

// Register adds endpoints. Nothing is added if any of them conflicts with
// a registered endpoint or with another in the same call.
func (r *EndpointRegistry) Register(endpoints ...Endpoint) error {
	seen := make(map[string]bool, len(endpoints))
	for _, ep := range endpoints {
		key := endpointKey(ep)
		if _, exists := r.index[key]; exists {
			return fmt.Errorf("endpoint conflict: %s %s already registered", ep.Method, ep.Path)
		}
		if seen[key] {
			return fmt.Errorf("duplicate endpoint: %s %s", ep.Method, ep.Path)
		}
		seen[key] = true
	}

	for i := range endpoints {
		ep := endpoints[i]
		r.order = append(r.order, &ep)
		r.index[endpointKey(ep)] = &ep
	}
	return nil
}

func (r *EndpointRegistry) Endpoints() []Endpoint {
	out := make([]Endpoint, len(r.order))
	for i, ep := range r.order {
		out[i] = *ep
	}
	return out
}

func (r *EndpointRegistry) Lookup(method, path string) (Endpoint, bool) {
	ep, ok := r.index[method+":"+path]
	if !ok {
		return Endpoint{}, false
	}
	return *ep, true
}
