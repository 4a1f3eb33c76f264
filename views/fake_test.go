package views

import (
	"context"
	"sync"

	"github.com/lborres/agromart/core"
)

// fakeAPI records calls per endpoint. A gate registered for an endpoint
// blocks that call until the gate is closed.
type fakeAPI struct {
	mu    sync.Mutex
	calls map[string]int
	gates map[string]chan struct{}

	farms       []core.Farm
	listings    []core.Listing
	application *core.KYCApplication
	queue       []core.KYCApplication
	err         map[string]error

	authResult *core.AuthResult
	lastReview core.ReviewInput
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		calls: make(map[string]int),
		gates: make(map[string]chan struct{}),
		err:   make(map[string]error),
	}
}

var _ core.API = (*fakeAPI)(nil)

func (f *fakeAPI) gate(name string) chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	g := make(chan struct{})
	f.gates[name] = g
	return g
}

func (f *fakeAPI) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeAPI) enter(ctx context.Context, name string) error {
	f.mu.Lock()
	f.calls[name]++
	g := f.gates[name]
	f.mu.Unlock()

	if g != nil {
		select {
		case <-g:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err[name]
}

func (f *fakeAPI) Login(ctx context.Context, _, _ string) (*core.AuthResult, error) {
	if err := f.enter(ctx, "login"); err != nil {
		return nil, err
	}
	return f.authResult, nil
}

func (f *fakeAPI) Register(ctx context.Context, _ core.RegisterInput) (*core.AuthResult, error) {
	if err := f.enter(ctx, "register"); err != nil {
		return nil, err
	}
	return f.authResult, nil
}

func (f *fakeAPI) Me(ctx context.Context, _ string) (*core.User, error) {
	if err := f.enter(ctx, "me"); err != nil {
		return nil, err
	}
	return f.authResult.User, nil
}

func (f *fakeAPI) Logout(ctx context.Context, _ string) error {
	return f.enter(ctx, "logout")
}

func (f *fakeAPI) Farms(ctx context.Context, _ string) ([]core.Farm, error) {
	if err := f.enter(ctx, "farms"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.farms, nil
}

func (f *fakeAPI) CreateFarm(ctx context.Context, _ string, input core.FarmInput) (*core.Farm, error) {
	if err := f.enter(ctx, "createFarm"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	farm := core.Farm{ID: int64(len(f.farms) + 1), Name: input.Name, Description: input.Description, Location: input.Location, SizeHectares: input.SizeHectares, IsActive: true}
	f.farms = append(f.farms, farm)
	return &farm, nil
}

func (f *fakeAPI) Listings(ctx context.Context, _ string) ([]core.Listing, error) {
	if err := f.enter(ctx, "listings"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listings, nil
}

func (f *fakeAPI) CreateListing(ctx context.Context, _ string, input core.ListingInput) (*core.Listing, error) {
	if err := f.enter(ctx, "createListing"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	listing := core.Listing{
		ID:            int64(len(f.listings) + 1),
		Title:         input.Title,
		ProduceType:   input.ProduceType,
		QuantityKg:    input.QuantityKg,
		UnitPriceNGN:  input.UnitPriceNGN,
		TotalPriceNGN: input.QuantityKg * input.UnitPriceNGN,
		Status:        core.ListingActive,
		FarmID:        input.FarmID,
	}
	f.listings = append([]core.Listing{listing}, f.listings...)
	return &listing, nil
}

func (f *fakeAPI) KYCStatus(ctx context.Context, _ string) (*core.KYCApplication, error) {
	if err := f.enter(ctx, "kycStatus"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.application, nil
}

func (f *fakeAPI) SubmitKYC(ctx context.Context, _ string, sub core.KYCSubmission) (*core.KYCApplication, error) {
	if err := f.enter(ctx, "submitKYC"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.application = &core.KYCApplication{ID: 1, DocumentType: sub.DocumentType, DocumentNumber: sub.DocumentNumber, Status: core.KYCStatusPending}
	return f.application, nil
}

func (f *fakeAPI) KYCQueue(ctx context.Context, _ string) ([]core.KYCApplication, error) {
	if err := f.enter(ctx, "kycQueue"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.queue, nil
}

func (f *fakeAPI) ReviewKYC(ctx context.Context, _ string, id int64, input core.ReviewInput) (*core.KYCApplication, error) {
	if err := f.enter(ctx, "reviewKYC"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastReview = input
	for i := range f.queue {
		if f.queue[i].ID == id {
			f.queue[i].Status = input.Status
			f.queue[i].AdminNotes = input.AdminNotes
			app := f.queue[i]
			return &app, nil
		}
	}
	return nil, &core.APIError{Status: 404, Detail: "KYC not found"}
}

var (
	farmer = &core.User{ID: 1, Username: "alice", FullName: "Alice Farmer", Email: "alice@example.com", Role: core.RoleFarmer, KYCStatus: core.KYCStatusPending}
	buyer  = &core.User{ID: 2, Username: "bob", FullName: "Bob Buyer", Email: "bob@example.com", Role: core.RoleBuyer, BusinessName: "Bob's", KYCStatus: core.KYCStatusPending}
	admin  = &core.User{ID: 3, Username: "admin", FullName: "System Administrator", Email: "admin@example.com", Role: core.RoleAdmin, IsVerified: true, KYCStatus: core.KYCStatusApproved}
)

func sessionAs(user *core.User) *core.SessionStore {
	s := core.NewSessionStore(nil, nil)
	if user != nil {
		_ = s.Establish(context.Background(), "token-"+user.Username, user)
	}
	return s
}
