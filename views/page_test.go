package views

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lborres/agromart/core"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	require.Eventually(t, cond, 2*time.Second, time.Millisecond)
}

// Requirement: a page never fetches for a caller its gate refuses.
func TestPage_GateBlocksFetch(t *testing.T) {
	tests := []struct {
		name        string
		user        *core.User
		mount       func(*core.SessionStore, *fakeAPI) (func(context.Context) error, func() State, func() string)
		endpoint    string
		wantState   State
		wantMessage string
	}{
		{
			name: "buyer on farms",
			user: buyer,
			mount: func(s *core.SessionStore, api *fakeAPI) (func(context.Context) error, func() State, func() string) {
				p := NewFarmsPage(s, api, nil)
				return p.Mount, p.State, p.Message
			},
			endpoint:    "farms",
			wantState:   StateForbidden,
			wantMessage: "Access denied: this page is only available to farmers.",
		},
		{
			name: "farmer on admin queue",
			user: farmer,
			mount: func(s *core.SessionStore, api *fakeAPI) (func(context.Context) error, func() State, func() string) {
				p := NewAdminKYCPage(s, api, nil)
				return p.Mount, p.State, p.Message
			},
			endpoint:    "kycQueue",
			wantState:   StateForbidden,
			wantMessage: "Access denied: this page is only available to admins.",
		},
		{
			name: "anonymous on kyc",
			user: nil,
			mount: func(s *core.SessionStore, api *fakeAPI) (func(context.Context) error, func() State, func() string) {
				p := NewKYCPage(s, api, nil)
				return p.Mount, p.State, p.Message
			},
			endpoint:    "kycStatus",
			wantState:   StateUnauthenticated,
			wantMessage: MessageLogin,
		},
		{
			name: "anonymous on home",
			user: nil,
			mount: func(s *core.SessionStore, api *fakeAPI) (func(context.Context) error, func() State, func() string) {
				p := NewHomePage(s, nil)
				return p.Mount, p.State, p.Message
			},
			wantState:   StateUnauthenticated,
			wantMessage: MessageLogin,
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			// Arrange
			api := newFakeAPI()
			mount, state, message := test.mount(sessionAs(test.user), api)

			// Act
			err := mount(context.Background())

			// Assert
			require.Error(t, err)
			assert.Equal(t, test.wantState, state())
			assert.Equal(t, test.wantMessage, message())
			if test.endpoint != "" {
				assert.Zero(t, api.count(test.endpoint))
			}
		})
	}
}

// Requirement: a page follows the session; signing out drops its data.
func TestPage_FollowsSession(t *testing.T) {
	api := newFakeAPI()
	api.queue = []core.KYCApplication{{ID: 1, Status: core.KYCStatusPending}}
	session := sessionAs(admin)
	page := NewAdminKYCPage(session, api, nil)
	require.NoError(t, page.Mount(context.Background()))
	defer page.Close()
	require.Len(t, page.Data(), 1)

	require.NoError(t, session.ClearCredential(context.Background()))

	assert.Equal(t, StateUnauthenticated, page.State())
	assert.Nil(t, page.Data())
	assert.Equal(t, 1, api.count("kycQueue"))

	require.NoError(t, session.Establish(context.Background(), "token-admin", admin))

	assert.Equal(t, StateReady, page.State())
	assert.Equal(t, 2, api.count("kycQueue"))
}

func TestHomePage_FollowsLogin(t *testing.T) {
	session := sessionAs(nil)
	page := NewHomePage(session, nil)
	_ = page.Mount(context.Background())
	defer page.Close()
	require.Equal(t, StateUnauthenticated, page.State())

	require.NoError(t, session.Establish(context.Background(), "tok", farmer))

	assert.Equal(t, StateReady, page.State())
	assert.Equal(t, farmer, page.Data())
}

// Requirement: a response for a superseded session is discarded.
func TestPage_StaleResponseDropped(t *testing.T) {
	tests := []struct {
		name      string
		change    func(*core.SessionStore) error
		wantState State
	}{
		{
			name:      "logout mid-load",
			change:    func(s *core.SessionStore) error { return s.ClearCredential(context.Background()) },
			wantState: StateUnauthenticated,
		},
		{
			name:      "switch to a buyer mid-load",
			change:    func(s *core.SessionStore) error { return s.Establish(context.Background(), "token-bob", buyer) },
			wantState: StateForbidden,
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			// Arrange
			api := newFakeAPI()
			api.farms = []core.Farm{{ID: 1, Name: "North Field"}}
			gate := api.gate("farms")
			session := sessionAs(farmer)
			page := NewFarmsPage(session, api, nil)
			defer page.Close()

			done := make(chan error, 1)
			go func() { done <- page.Mount(context.Background()) }()
			waitFor(t, func() bool { return api.count("farms") == 1 })

			// Act
			require.NoError(t, test.change(session))
			close(gate)
			err := <-done

			// Assert
			assert.NoError(t, err)
			assert.Equal(t, test.wantState, page.State())
			assert.Nil(t, page.Data())
		})
	}
}

// Requirement: a response arriving after the page closed changes nothing.
func TestPage_ResponseAfterClose(t *testing.T) {
	api := newFakeAPI()
	api.listings = []core.Listing{{ID: 1, ProduceType: "Maize"}}
	gate := api.gate("listings")
	page := NewListingsPage(sessionAs(nil), api, nil)

	done := make(chan error, 1)
	go func() { done <- page.Mount(context.Background()) }()
	waitFor(t, func() bool { return api.count("listings") == 1 })

	page.Close()
	close(gate)

	assert.ErrorIs(t, <-done, core.ErrClosed)
	assert.Equal(t, StateLoading, page.State())
	assert.Nil(t, page.Data())
	assert.ErrorIs(t, page.Mount(context.Background()), core.ErrClosed)
}

// Requirement: a failed load lands in Error with a retry that reloads.
func TestPage_ErrorAndRetry(t *testing.T) {
	api := newFakeAPI()
	api.err["farms"] = &core.APIError{Status: 500, Detail: "Internal server error"}
	page := NewFarmsPage(sessionAs(farmer), api, nil)
	defer page.Close()

	err := page.Mount(context.Background())

	require.Error(t, err)
	assert.Equal(t, StateError, page.State())
	assert.Contains(t, page.Message(), MessageRetry)

	api.mu.Lock()
	delete(api.err, "farms")
	api.farms = []core.Farm{{ID: 1, Name: "North Field"}}
	api.mu.Unlock()

	require.NoError(t, page.Retry(context.Background()))
	assert.Equal(t, StateReady, page.State())
	assert.Len(t, page.Data(), 1)
	assert.NoError(t, page.Err())
	assert.Equal(t, 2, page.Loads())
}

// Requirement: an action is locked while its request is in flight and
// a success reloads the page.
func TestPage_ActionLock(t *testing.T) {
	// Arrange
	api := newFakeAPI()
	page := NewFarmsPage(sessionAs(farmer), api, nil)
	require.NoError(t, page.Mount(context.Background()))
	defer page.Close()
	gate := api.gate("createFarm")
	input := core.FarmInput{Name: "North Field", Location: "Kaduna", SizeHectares: 2.5}

	done := make(chan error, 1)
	go func() { done <- page.CreateFarm(context.Background(), input) }()
	waitFor(t, func() bool { return api.count("createFarm") == 1 })

	// Act
	second := page.CreateFarm(context.Background(), input)
	locked := page.Locked(ActionCreateFarm)
	close(gate)
	first := <-done

	// Assert
	assert.ErrorIs(t, second, core.ErrActionInProgress)
	assert.True(t, locked)
	require.NoError(t, first)
	assert.False(t, page.Locked(ActionCreateFarm))
	assert.Equal(t, 1, api.count("createFarm"))
	assert.Equal(t, 2, page.Loads())
	assert.Len(t, page.Data(), 1)
}

// Requirement: a refused action unlocks and keeps the server's reason.
func TestPage_ActionFailure(t *testing.T) {
	api := newFakeAPI()
	api.err["createFarm"] = &core.APIError{Status: 403, Detail: "Complete KYC verification before adding farms"}
	page := NewFarmsPage(sessionAs(farmer), api, nil)
	require.NoError(t, page.Mount(context.Background()))
	defer page.Close()

	err := page.CreateFarm(context.Background(), core.FarmInput{Name: "North Field", Location: "Kaduna", SizeHectares: 1})

	require.Error(t, err)
	assert.False(t, page.Locked(ActionCreateFarm))
	assert.Equal(t, 1, page.Loads())
	assert.Equal(t, "Complete KYC verification before adding farms", core.UserMessage(page.ActionErr()))
}

// Requirement: anonymous callers may browse listings but not add to them.
func TestListingsPage(t *testing.T) {
	tests := []struct {
		name      string
		user      *core.User
		wantErr   func(error) bool
		wantCalls int
	}{
		{
			name:    "anonymous",
			wantErr: func(err error) bool { return errors.Is(err, core.ErrNotAuthenticated) },
		},
		{
			name:    "buyer",
			user:    buyer,
			wantErr: func(err error) bool { var a *core.AuthorizationError; return errors.As(err, &a) },
		},
		{
			name:      "farmer",
			user:      farmer,
			wantCalls: 1,
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			api := newFakeAPI()
			page := NewListingsPage(sessionAs(test.user), api, nil)
			require.NoError(t, page.Mount(context.Background()))
			defer page.Close()

			err := page.CreateListing(context.Background(), core.ListingInput{
				Title:        "Yellow maize",
				ProduceType:  core.ProduceGrains,
				QuantityKg:   10,
				UnitPriceNGN: 2,
				HarvestDate:  "2026-03-01",
				ExpiryDate:   "2026-04-01",
				FarmID:       1,
			})

			assert.Equal(t, StateReady, page.State())
			assert.Equal(t, test.wantCalls, api.count("createListing"))
			if test.wantErr != nil {
				assert.True(t, test.wantErr(err), "CreateListing() error = %v", err)
				assert.Equal(t, err, page.ActionErr())
				return
			}
			require.NoError(t, err)
			assert.Len(t, page.Data(), 1)
		})
	}
}

func TestListingsPage_InvalidInputNeverSent(t *testing.T) {
	api := newFakeAPI()
	page := NewListingsPage(sessionAs(farmer), api, nil)
	require.NoError(t, page.Mount(context.Background()))
	defer page.Close()

	err := page.CreateListing(context.Background(), core.ListingInput{Title: "Maize", ProduceType: core.ProduceGrains, QuantityKg: 1, UnitPriceNGN: 1, FarmID: 1, HarvestDate: "2026-03-01", ExpiryDate: "2026-03-01"})

	assert.ErrorIs(t, err, core.ErrExpiryBeforeHarvest)
	assert.Zero(t, api.count("createListing"))
}

// Requirement: a farmer may submit while no application is active.
func TestKYCPage_Submit(t *testing.T) {
	// Arrange
	api := newFakeAPI()
	page := NewKYCPage(sessionAs(farmer), api, nil)
	require.NoError(t, page.Mount(context.Background()))
	defer page.Close()
	require.True(t, page.CanSubmit())
	sub := core.KYCSubmission{
		DocumentType:   core.DocumentNationalID,
		DocumentNumber: "NIN-1",
		DocumentFile:   &core.Upload{Name: "id.png", Reader: bytesReader("png")},
	}

	// Act
	err := page.Submit(context.Background(), sub)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, core.KYCStatusPending, page.Data().Status)
	assert.False(t, page.CanSubmit())

	again := page.Submit(context.Background(), sub)
	assert.ErrorIs(t, again, core.ErrApplicationActive)
	assert.Equal(t, 1, api.count("submitKYC"))
}

func TestKYCPage_CanSubmit(t *testing.T) {
	tests := []struct {
		status core.KYCStatus
		want   bool
	}{
		{status: core.KYCStatusPending, want: false},
		{status: core.KYCStatusUnderReview, want: false},
		{status: core.KYCStatusApproved, want: false},
		{status: core.KYCStatusRejected, want: true},
	}

	for _, test := range tests {
		test := test
		t.Run(string(test.status), func(t *testing.T) {
			api := newFakeAPI()
			api.application = &core.KYCApplication{ID: 1, Status: test.status}
			page := NewKYCPage(sessionAs(farmer), api, nil)
			require.NoError(t, page.Mount(context.Background()))
			defer page.Close()

			assert.Equal(t, test.want, page.CanSubmit())
		})
	}
}

// Requirement: an admin reviews only a selected application; success
// clears the selection and reloads the queue.
func TestAdminKYCPage_Review(t *testing.T) {
	// Arrange
	api := newFakeAPI()
	api.queue = []core.KYCApplication{
		{ID: 1, UserID: 10, Status: core.KYCStatusPending},
		{ID: 2, UserID: 11, Status: core.KYCStatusApproved},
	}
	page := NewAdminKYCPage(sessionAs(admin), api, nil)
	require.NoError(t, page.Mount(context.Background()))
	defer page.Close()
	require.Len(t, page.Pending(), 1)

	// Act
	noSelection := page.Review(context.Background(), core.KYCStatusApproved, "")
	badSelect := page.Select(99)
	require.NoError(t, page.Select(1))
	badDecision := page.Review(context.Background(), core.KYCStatusPending, "")
	err := page.Review(context.Background(), core.KYCStatusApproved, "looks good")

	// Assert
	assert.ErrorIs(t, noSelection, core.ErrNoSelection)
	assert.ErrorIs(t, badSelect, core.ErrNoSelection)
	assert.ErrorIs(t, badDecision, core.ErrInvalidDecision)
	require.NoError(t, err)
	assert.Equal(t, 1, api.count("reviewKYC"))
	assert.Equal(t, core.ReviewInput{Status: core.KYCStatusApproved, AdminNotes: "looks good"}, api.lastReview)
	assert.Zero(t, page.Selected())
	assert.Empty(t, page.Pending())
	assert.Equal(t, 2, page.Loads())
}

// Requirement: a server refusal is surfaced and the selection is kept.
func TestAdminKYCPage_ReviewRefused(t *testing.T) {
	api := newFakeAPI()
	api.queue = []core.KYCApplication{{ID: 1, Status: core.KYCStatusPending}}
	api.err["reviewKYC"] = &core.APIError{Status: 409, Detail: "KYC application has already been reviewed"}
	page := NewAdminKYCPage(sessionAs(admin), api, nil)
	require.NoError(t, page.Mount(context.Background()))
	defer page.Close()
	require.NoError(t, page.Select(1))

	err := page.Review(context.Background(), core.KYCStatusRejected, "blurry")

	require.Error(t, err)
	assert.Equal(t, int64(1), page.Selected())
	assert.Equal(t, "KYC application has already been reviewed", core.UserMessage(page.ActionErr()))
	assert.Equal(t, 1, page.Loads())
}

// Requirement: a non-admin can never trigger a review request.
func TestAdminKYCPage_NonAdminReview(t *testing.T) {
	api := newFakeAPI()
	page := NewAdminKYCPage(sessionAs(farmer), api, nil)
	_ = page.Mount(context.Background())
	defer page.Close()

	err := page.Review(context.Background(), core.KYCStatusApproved, "")

	var authz *core.AuthorizationError
	assert.ErrorAs(t, err, &authz)
	assert.Zero(t, api.count("reviewKYC"))
	assert.Zero(t, api.count("kycQueue"))
}

// Requirement: when the session changes while an action is in flight,
// the reload after it succeeds goes through the gate again.
func TestAdminKYCPage_SessionChangesDuringReview(t *testing.T) {
	// Arrange
	api := newFakeAPI()
	api.queue = []core.KYCApplication{{ID: 1, UserID: 10, Status: core.KYCStatusPending}}
	session := sessionAs(admin)
	page := NewAdminKYCPage(session, api, nil)
	require.NoError(t, page.Mount(context.Background()))
	defer page.Close()
	require.NoError(t, page.Select(1))
	gate := api.gate("reviewKYC")

	done := make(chan error, 1)
	go func() { done <- page.Review(context.Background(), core.KYCStatusApproved, "") }()
	waitFor(t, func() bool { return api.count("reviewKYC") == 1 })

	// Act
	require.NoError(t, session.Establish(context.Background(), "token-bob", buyer))
	waitFor(t, func() bool { return page.State() == StateForbidden })
	queueLoads := api.count("kycQueue")
	close(gate)
	err := <-done

	// Assert
	require.NoError(t, err)
	assert.Equal(t, queueLoads, api.count("kycQueue"))
	assert.Equal(t, 1, queueLoads)
	assert.Equal(t, StateForbidden, page.State())
	assert.Empty(t, page.Data())
}
