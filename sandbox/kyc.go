package sandbox

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/lborres/agromart/core"
)

// KYCService runs identity verification: applicants submit documents,
// admins decide.
type KYCService struct {
	db        KYCStorage
	documents DocumentStore
	logger    *zap.Logger
	now       func() time.Time
}

func NewKYCService(db KYCStorage, documents DocumentStore, logger *zap.Logger) *KYCService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &KYCService{db: db, documents: documents, logger: logger, now: time.Now}
}

// Submit stores the uploaded files and opens a pending application.
// A user may hold one application awaiting review at a time, and an
// approved user cannot apply again.
func (s *KYCService) Submit(ctx context.Context, user *core.User, sub core.KYCSubmission) (*core.KYCApplication, error) {
	current, err := s.Status(ctx, user)
	if err != nil && !errors.Is(err, ErrApplicationNotFound) {
		return nil, err
	}
	if err := core.ValidateKYCSubmission(sub, current); err != nil {
		return nil, err
	}

	app := &core.KYCApplication{
		UserID:          user.ID,
		DocumentType:    sub.DocumentType,
		DocumentNumber:  strings.TrimSpace(sub.DocumentNumber),
		BusinessAddress: sub.BusinessAddress,
		Status:          core.KYCStatusPending,
	}

	var stored []string
	fail := func(err error) (*core.KYCApplication, error) {
		s.discard(stored)
		return nil, err
	}
	for _, part := range []struct {
		upload *core.Upload
		ref    *string
	}{
		{sub.DocumentFile, &app.DocumentFilePath},
		{sub.SelfieFile, &app.SelfieFilePath},
		{sub.BusinessRegistration, &app.BusinessRegistration},
	} {
		ref, err := s.store(ctx, user.ID, part.upload)
		if err != nil {
			return fail(err)
		}
		if ref != "" {
			stored = append(stored, ref)
		}
		*part.ref = ref
	}

	if err := s.db.CreateApplication(ctx, app); err != nil {
		if errors.Is(err, core.ErrApplicationActive) {
			return fail(err)
		}
		return fail(fmt.Errorf("failed to create application: %w", err))
	}

	s.logger.Info("kyc submitted",
		zap.Int64("application_id", app.ID),
		zap.Int64("user_id", user.ID),
		zap.String("document_type", string(app.DocumentType)))

	return app, nil
}

func (s *KYCService) store(ctx context.Context, ownerID int64, up *core.Upload) (string, error) {
	if up == nil || up.Reader == nil {
		return "", nil
	}
	ref, err := s.documents.Put(ctx, ownerID, up.Name, up.Reader)
	if err != nil {
		if errors.Is(err, ErrDocumentTooLarge) {
			return "", err
		}
		return "", fmt.Errorf("failed to store %s: %w", up.Name, err)
	}
	return ref, nil
}

// discard removes documents of a submission that was not recorded
func (s *KYCService) discard(refs []string) {
	for _, ref := range refs {
		// a request context may already be done here
		if err := s.documents.Delete(context.Background(), ref); err != nil {
			s.logger.Warn("failed to discard document", zap.String("ref", ref), zap.Error(err))
		}
	}
}

// Document returns a stored upload for review
func (s *KYCService) Document(ctx context.Context, ref string) (*Document, error) {
	return s.documents.Get(ctx, ref)
}

// Status returns the user's latest application or ErrApplicationNotFound
func (s *KYCService) Status(ctx context.Context, user *core.User) (*core.KYCApplication, error) {
	return s.db.LatestApplication(ctx, user.ID)
}

// Queue lists every application, oldest first
func (s *KYCService) Queue(ctx context.Context) ([]core.KYCApplication, error) {
	queue, err := s.db.ListApplications(ctx)
	return nonNil(queue), err
}

// Review records an admin decision. Only pending or under-review
// applications can be decided, and only as approved or rejected.
func (s *KYCService) Review(ctx context.Context, admin *core.User, id int64, input core.ReviewInput) (*core.KYCApplication, error) {
	if err := core.ValidateReview(id, input); err != nil {
		return nil, err
	}

	app, err := s.db.ReviewApplication(ctx, id, admin.ID, input, s.now())
	if err != nil {
		if errors.Is(err, ErrApplicationNotFound) || errors.Is(err, ErrNotReviewable) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to review application: %w", err)
	}

	s.logger.Info("kyc reviewed",
		zap.Int64("application_id", app.ID),
		zap.Int64("admin_id", admin.ID),
		zap.String("status", string(app.Status)))

	return app, nil
}
