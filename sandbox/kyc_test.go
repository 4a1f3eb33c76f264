package sandbox

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lborres/agromart/core"
)

// Requirement: Submit stores the documents and opens a pending application.
func TestKYCService_Submit(t *testing.T) {
	// Arrange
	s, storage := newTestSandbox(t)
	farmer := signUp(t, s, farmerInput("alice")).User

	// Act
	app, err := s.KYC.Submit(context.Background(), farmer, submission("A123"))

	// Assert
	require.NoError(t, err)
	assert.NotZero(t, app.ID)
	assert.Equal(t, core.KYCStatusPending, app.Status)
	assert.Equal(t, "A123", app.DocumentNumber)
	assert.True(t, strings.HasPrefix(app.DocumentFilePath, "kyc/"), app.DocumentFilePath)
	assert.True(t, strings.HasSuffix(app.SelfieFilePath, "-selfie.jpg"), app.SelfieFilePath)
	assert.Empty(t, app.BusinessRegistration)

	doc, err := s.KYC.Document(context.Background(), app.DocumentFilePath)
	require.NoError(t, err)
	assert.Equal(t, "image/png", doc.ContentType)

	user, err := storage.GetUserByID(context.Background(), farmer.ID)
	require.NoError(t, err)
	assert.Equal(t, core.KYCStatusPending, user.KYCStatus)
}

// Requirement: a user holds at most one application awaiting review, and approval is final.
func TestKYCService_SubmitRules(t *testing.T) {
	tests := []struct {
		name     string
		decision core.KYCStatus // applied to a first application; "" leaves it pending
		wantErr  error
	}{
		{name: "refuses while an application is pending", wantErr: core.ErrApplicationActive},
		{name: "refuses after approval", decision: core.KYCStatusApproved, wantErr: core.ErrAlreadyVerified},
		{name: "accepts a new application after rejection", decision: core.KYCStatusRejected},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			// Arrange
			s, _ := newTestSandbox(t)
			admin := seedAdmin(t, s)
			farmer := signUp(t, s, farmerInput("alice")).User
			first, err := s.KYC.Submit(context.Background(), farmer, submission("A1"))
			require.NoError(t, err)
			if test.decision != "" {
				_, err := s.KYC.Review(context.Background(), admin, first.ID, core.ReviewInput{Status: test.decision})
				require.NoError(t, err)
			}

			// Act
			second, err := s.KYC.Submit(context.Background(), farmer, submission("A2"))

			// Assert
			if test.wantErr != nil {
				assert.ErrorIs(t, err, test.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Greater(t, second.ID, first.ID)

			latest, err := s.KYC.Status(context.Background(), farmer)
			require.NoError(t, err)
			assert.Equal(t, second.ID, latest.ID)
		})
	}
}

// Requirement: concurrent submissions from one user open exactly one application.
func TestKYCService_SubmitConcurrent(t *testing.T) {
	docs := NewMemoryDocuments(0)
	s, err := New(Config{Storage: NewMemoryStorage(), PasswordHasher: cheapHasher(), Documents: docs})
	require.NoError(t, err)
	farmer := signUp(t, s, farmerInput("alice")).User

	const attempts = 8
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		oks  int
		errs []error
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.KYC.Submit(context.Background(), farmer, submission("A1"))
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				oks++
				return
			}
			errs = append(errs, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, oks)
	for _, err := range errs {
		assert.ErrorIs(t, err, core.ErrApplicationActive)
	}
	queue, err := s.KYC.Queue(context.Background())
	require.NoError(t, err)
	assert.Len(t, queue, 1)
	assert.Equal(t, 2, docs.Len(), "only the recorded submission keeps its files")
}

// Requirement: submissions are validated before anything is stored.
func TestKYCService_SubmitValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*core.KYCSubmission)
		wantErr error
	}{
		{name: "unknown document type", mutate: func(s *core.KYCSubmission) { s.DocumentType = "library_card" }, wantErr: core.ErrDocumentType},
		{name: "blank document number", mutate: func(s *core.KYCSubmission) { s.DocumentNumber = "  " }, wantErr: core.ErrDocumentNumber},
		{name: "missing document file", mutate: func(s *core.KYCSubmission) { s.DocumentFile = nil }, wantErr: core.ErrDocumentFile},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			s, _ := newTestSandbox(t)
			farmer := signUp(t, s, farmerInput("alice")).User
			sub := submission("A1")
			test.mutate(&sub)

			_, err := s.KYC.Submit(context.Background(), farmer, sub)

			assert.ErrorIs(t, err, test.wantErr)
			_, err = s.KYC.Status(context.Background(), farmer)
			assert.ErrorIs(t, err, ErrApplicationNotFound)
		})
	}
}

// Requirement: oversized uploads are refused, no application is opened and nothing is left stored.
func TestKYCService_SubmitTooLarge(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*core.KYCSubmission)
	}{
		{
			name: "document",
			mutate: func(sub *core.KYCSubmission) {
				sub.DocumentFile = &core.Upload{Name: "big.pdf", Reader: strings.NewReader(strings.Repeat("x", 64))}
			},
		},
		{
			name: "selfie after a stored document",
			mutate: func(sub *core.KYCSubmission) {
				sub.SelfieFile = &core.Upload{Name: "big.jpg", Reader: strings.NewReader(strings.Repeat("x", 64))}
			},
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			docs := NewMemoryDocuments(32)
			s, err := New(Config{Storage: NewMemoryStorage(), PasswordHasher: cheapHasher(), Documents: docs})
			require.NoError(t, err)
			farmer := signUp(t, s, farmerInput("alice")).User
			sub := submission("A1")
			test.mutate(&sub)

			_, err = s.KYC.Submit(context.Background(), farmer, sub)

			assert.ErrorIs(t, err, ErrDocumentTooLarge)
			queue, err := s.KYC.Queue(context.Background())
			require.NoError(t, err)
			assert.Empty(t, queue)
			assert.Zero(t, docs.Len())
		})
	}
}

// Requirement: Review records a terminal decision once and mirrors it onto the user.
func TestKYCService_Review(t *testing.T) {
	tests := []struct {
		name         string
		input        core.ReviewInput
		wantVerified bool
	}{
		{name: "approval verifies the user", input: core.ReviewInput{Status: core.KYCStatusApproved, AdminNotes: "looks good"}, wantVerified: true},
		{name: "rejection leaves the user unverified", input: core.ReviewInput{Status: core.KYCStatusRejected, AdminNotes: "blurry scan"}},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			// Arrange
			s, storage := newTestSandbox(t)
			admin := seedAdmin(t, s)
			farmer := signUp(t, s, farmerInput("alice")).User
			app, err := s.KYC.Submit(context.Background(), farmer, submission("A1"))
			require.NoError(t, err)

			// Act
			reviewed, err := s.KYC.Review(context.Background(), admin, app.ID, test.input)

			// Assert
			require.NoError(t, err)
			assert.Equal(t, test.input.Status, reviewed.Status)
			assert.Equal(t, test.input.AdminNotes, reviewed.AdminNotes)
			require.NotNil(t, reviewed.ReviewedAt)
			require.NotNil(t, reviewed.ReviewedBy)
			assert.Equal(t, admin.ID, *reviewed.ReviewedBy)

			user, err := storage.GetUserByID(context.Background(), farmer.ID)
			require.NoError(t, err)
			assert.Equal(t, test.input.Status, user.KYCStatus)
			assert.Equal(t, test.wantVerified, user.IsVerified)

			_, err = s.KYC.Review(context.Background(), admin, app.ID, core.ReviewInput{Status: core.KYCStatusApproved})
			assert.ErrorIs(t, err, ErrNotReviewable)
		})
	}
}

// Requirement: Review refuses non-terminal decisions and unknown applications.
func TestKYCService_ReviewErrors(t *testing.T) {
	tests := []struct {
		name    string
		id      int64
		status  core.KYCStatus
		wantErr error
	}{
		{name: "pending is not a decision", id: 1, status: core.KYCStatusPending, wantErr: core.ErrInvalidDecision},
		{name: "under review is not a decision", id: 1, status: core.KYCStatusUnderReview, wantErr: core.ErrInvalidDecision},
		{name: "no application selected", id: 0, status: core.KYCStatusApproved, wantErr: core.ErrNoSelection},
		{name: "unknown application", id: 99, status: core.KYCStatusApproved, wantErr: ErrApplicationNotFound},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			s, _ := newTestSandbox(t)
			admin := seedAdmin(t, s)
			farmer := signUp(t, s, farmerInput("alice")).User
			_, err := s.KYC.Submit(context.Background(), farmer, submission("A1"))
			require.NoError(t, err)

			_, err = s.KYC.Review(context.Background(), admin, test.id, core.ReviewInput{Status: test.status})

			assert.ErrorIs(t, err, test.wantErr)
		})
	}
}

// Requirement: the queue lists every application, decided or not, oldest first.
func TestKYCService_Queue(t *testing.T) {
	s, _ := newTestSandbox(t)
	admin := seedAdmin(t, s)

	empty, err := s.KYC.Queue(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	alice := signUp(t, s, farmerInput("alice")).User
	bob := signUp(t, s, farmerInput("bob")).User
	first, err := s.KYC.Submit(context.Background(), alice, submission("A1"))
	require.NoError(t, err)
	_, err = s.KYC.Submit(context.Background(), bob, submission("B1"))
	require.NoError(t, err)
	_, err = s.KYC.Review(context.Background(), admin, first.ID, core.ReviewInput{Status: core.KYCStatusRejected})
	require.NoError(t, err)

	queue, err := s.KYC.Queue(context.Background())

	require.NoError(t, err)
	require.Len(t, queue, 2)
	assert.Equal(t, core.KYCStatusRejected, queue[0].Status)
	assert.Equal(t, core.KYCStatusPending, queue[1].Status)
}
