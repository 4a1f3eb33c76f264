package agromart_test

import (
	"context"
	"errors"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lborres/agromart"
	fiberadapter "github.com/lborres/agromart/adapters/fiber"
	"github.com/lborres/agromart/adapters/rest"
	"github.com/lborres/agromart/core"
	"github.com/lborres/agromart/pkg/credstore"
	"github.com/lborres/agromart/pkg/crypto"
	"github.com/lborres/agromart/sandbox"
	"github.com/lborres/agromart/views"
)

const (
	adminEmail    = "admin@agromart.local"
	adminPassword = "adminpass"
)

// startSandbox serves a fresh sandbox on a loopback port and returns its
// API base URL.
func startSandbox(t *testing.T) string {
	t.Helper()
	app := fiber.New()
	s, err := sandbox.New(sandbox.Config{
		Storage:        sandbox.NewMemoryStorage(),
		HTTP:           fiberadapter.New(app, fiberadapter.Options{}),
		PasswordHasher: &crypto.Argon2{Memory: 64, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32},
	})
	require.NoError(t, err)
	_, err = s.Auth.EnsureAdmin(context.Background(), sandbox.AdminInput{Email: adminEmail, Password: adminPassword})
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = app.Listener(ln, fiber.ListenConfig{DisableStartupMessage: true}) }()
	t.Cleanup(func() { _ = app.ShutdownWithTimeout(time.Second) })

	return "http://" + ln.Addr().String() + s.BasePath
}

func newClient(t *testing.T, baseURL string, store agromart.CredentialStore) *agromart.Client {
	t.Helper()
	c, err := agromart.New(agromart.Config{
		API:         rest.New(rest.Config{BaseURL: baseURL, Timeout: 5 * time.Second}),
		Credentials: store,
	})
	require.NoError(t, err)
	return c
}

func render(t *testing.T, r views.Renderer) string {
	t.Helper()
	var out strings.Builder
	require.NoError(t, r.Render(&out))
	return out.String()
}

func TestNewRequiresAPI(t *testing.T) {
	_, err := agromart.New(agromart.Config{})
	assert.ErrorIs(t, err, agromart.ErrAPIRequired)
}

// Requirement: a farmer registers, gets verified by an admin, and only
// then adds farms and listings that everyone can see.
func TestMarketplaceFlow(t *testing.T) {
	ctx := context.Background()
	baseURL := startSandbox(t)

	// Register a farmer
	farmerStore := credstore.NewMemory()
	farmerClient := newClient(t, baseURL, farmerStore)
	register := farmerClient.RegisterForm()
	require.NoError(t, register.Submit(ctx, core.RegisterInput{
		Email:           "alice@example.com",
		Username:        "alice",
		Password:        "secret123",
		ConfirmPassword: "secret123",
		FullName:        "Alice Farmer",
		Phone:           "+2348000000000",
		Role:            core.RoleFarmer,
	}))
	assert.Equal(t, "Account created for alice (farmer).\n", render(t, register))

	// Unverified farmers are refused by the server
	farms := farmerClient.FarmsPage()
	require.NoError(t, farms.Mount(ctx))
	defer farms.Close()
	err := farms.CreateFarm(ctx, core.FarmInput{Name: "North Field", Location: "Kaduna", SizeHectares: 2})
	var apiErr *core.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 403, apiErr.Status)

	// Submit KYC documents
	kyc := farmerClient.KYCPage()
	require.NoError(t, kyc.Mount(ctx))
	defer kyc.Close()
	require.True(t, kyc.CanSubmit())
	require.NoError(t, kyc.Submit(ctx, core.KYCSubmission{
		DocumentType:   core.DocumentNationalID,
		DocumentNumber: "NIN-12345",
		DocumentFile:   &core.Upload{Name: "id.png", Reader: strings.NewReader("\x89PNG\r\n\x1a\nfake")},
		SelfieFile:     &core.Upload{Name: "selfie.jpg", Reader: strings.NewReader("selfie")},
	}))
	require.Equal(t, core.KYCStatusPending, kyc.Data().Status)
	assert.False(t, kyc.CanSubmit())

	// An admin approves it
	adminClient := newClient(t, baseURL, nil)
	login := adminClient.LoginForm()
	require.NoError(t, login.Submit(ctx, adminEmail, adminPassword))
	queue := adminClient.AdminKYCPage()
	require.NoError(t, queue.Mount(ctx))
	defer queue.Close()
	pending := queue.Pending()
	require.Len(t, pending, 1)
	require.NoError(t, queue.Select(pending[0].ID))
	require.NoError(t, queue.Review(ctx, core.KYCStatusApproved, "looks good"))
	assert.Empty(t, queue.Pending())

	// The farmer sees the decision and can now trade
	user, err := farmerClient.Auth.FetchCurrentUser(ctx)
	require.NoError(t, err)
	assert.True(t, user.IsVerified)
	assert.Equal(t, core.KYCStatusApproved, user.KYCStatus)

	require.NoError(t, kyc.Refresh(ctx))
	assert.Contains(t, render(t, kyc), "Reviewer notes:   looks good")

	require.NoError(t, farms.CreateFarm(ctx, core.FarmInput{Name: "North Field", Location: "Kaduna", SizeHectares: 2}))
	assert.Len(t, farms.Data(), 1)

	listings := farmerClient.ListingsPage()
	require.NoError(t, listings.Mount(ctx))
	defer listings.Close()
	require.NoError(t, listings.CreateListing(ctx, core.ListingInput{
		Title:        "Yellow maize",
		ProduceType:  core.ProduceGrains,
		QuantityKg:   50,
		UnitPriceNGN: 1.5,
		HarvestDate:  "2026-03-01",
		ExpiryDate:   "2026-06-01",
		QualityGrade: "A",
		FarmID:       farms.Data()[0].ID,
	}))

	// Anyone may browse
	anonymous := newClient(t, baseURL, nil).ListingsPage()
	require.NoError(t, anonymous.Mount(ctx))
	defer anonymous.Close()
	require.Len(t, anonymous.Data(), 1)
	assert.Contains(t, render(t, anonymous), "50 kg")
	assert.Equal(t, 75.0, anonymous.Data()[0].TotalPriceNGN)

	// The admin page stays closed to the farmer on both sides
	forbidden := farmerClient.AdminKYCPage()
	defer forbidden.Close()
	var authz *core.AuthorizationError
	assert.ErrorAs(t, forbidden.Mount(ctx), &authz)
	token, _ := farmerClient.Session.Credential()
	_, err = farmerClient.API.KYCQueue(ctx, token)
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 403, apiErr.Status)
}

// Requirement: a stored credential is confirmed on restore and dropped
// once the server revokes it.
func TestRestore(t *testing.T) {
	ctx := context.Background()
	baseURL := startSandbox(t)
	store := credstore.NewMemory()

	first := newClient(t, baseURL, store)
	_, err := first.Auth.Login(ctx, adminEmail, adminPassword)
	require.NoError(t, err)
	token, _ := first.Session.Credential()

	// a second process picks the session up from the store
	second := newClient(t, baseURL, store)
	user, err := second.Restore(ctx)
	require.NoError(t, err)
	assert.Equal(t, core.RoleAdmin, user.Role)

	second.Auth.Logout(ctx)
	stored, _ := store.Load(ctx)
	assert.Empty(t, stored)

	// the revoked token is rejected and cleared
	stale := credstore.NewMemory()
	require.NoError(t, stale.Save(ctx, token))
	third := newClient(t, baseURL, stale)
	_, err = third.Restore(ctx)
	var invalid *core.SessionInvalidError
	require.True(t, errors.As(err, &invalid), "Restore() error = %v", err)
	assert.Equal(t, "Your session has expired. Please log in again.", agromart.UserMessage(err))
	stored, _ = stale.Load(ctx)
	assert.Empty(t, stored)

	// nothing stored is not an error
	user, err = newClient(t, baseURL, nil).Restore(ctx)
	assert.NoError(t, err)
	assert.Nil(t, user)
}
