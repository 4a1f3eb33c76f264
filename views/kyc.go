package views

import (
	"context"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/lborres/agromart/core"
)

const ActionSubmitKYC = "submit-kyc"

// KYCPage shows a farmer's own application and accepts new documents
type KYCPage struct {
	*Page[*core.KYCApplication]
	api core.MarketAPI
}

func NewKYCPage(session *core.SessionStore, api core.MarketAPI, logger *zap.Logger) *KYCPage {
	return &KYCPage{
		Page: NewPage(PageConfig[*core.KYCApplication]{
			Name:  "kyc",
			Roles: []core.Role{core.RoleFarmer},
			Fetch: api.KYCStatus,
		}, session, logger),
		api: api,
	}
}

// CanSubmit reports whether the loaded application leaves room for a
// new submission.
func (k *KYCPage) CanSubmit() bool {
	if k.State() != StateReady {
		return false
	}
	current := k.Data()
	return current == nil || current.Status == core.KYCStatusRejected
}

// Submit uploads documents. It is refused locally while an application
// awaits review or after approval; the API enforces the same rule.
func (k *KYCPage) Submit(ctx context.Context, sub core.KYCSubmission) error {
	if err := k.Gate(); err != nil {
		return k.reject(err)
	}

	var current *core.KYCApplication
	if k.State() == StateReady {
		current = k.Data()
	}
	if err := core.ValidateKYCSubmission(sub, current); err != nil {
		return k.reject(err)
	}

	return k.Mutate(ctx, ActionSubmitKYC, func(ctx context.Context, token string) error {
		_, err := k.api.SubmitKYC(ctx, token, sub)
		return err
	})
}

func (k *KYCPage) Render(w io.Writer) error {
	if err := renderActionErr(w, k.Page); err != nil {
		return err
	}
	if ok, err := renderState(w, k.Page); !ok || err != nil {
		return err
	}

	app := k.Data()
	if app == nil {
		fmt.Fprintln(w, "You have not submitted KYC documents yet.")
		return renderDocumentTypes(w)
	}

	fmt.Fprintf(w, "Application:      #%d\n", app.ID)
	fmt.Fprintf(w, "Status:           %s\n", statusLabel(app.Status))
	fmt.Fprintf(w, "Document:         %s (%s)\n", documentLabel(app.DocumentType), app.DocumentNumber)
	fmt.Fprintf(w, "Submitted:        %s\n", formatDate(app.CreatedAt.Time))
	if app.ReviewedAt != nil {
		fmt.Fprintf(w, "Reviewed:         %s\n", formatDate(app.ReviewedAt.Time))
	}
	if app.AdminNotes != "" {
		fmt.Fprintf(w, "Reviewer notes:   %s\n", app.AdminNotes)
	}

	switch app.Status {
	case core.KYCStatusRejected:
		fmt.Fprintln(w, "Your application was rejected. You may submit a new one.")
		return renderDocumentTypes(w)
	case core.KYCStatusApproved:
		_, err := fmt.Fprintln(w, "Your identity is verified.")
		return err
	}
	_, err := fmt.Fprintln(w, "Your documents are awaiting review.")
	return err
}

func renderDocumentTypes(w io.Writer) error {
	names := make([]string, len(core.DocumentTypes))
	for i, d := range core.DocumentTypes {
		names[i] = string(d)
	}
	_, err := fmt.Fprintf(w, "Accepted documents: %s\n", strings.Join(names, ", "))
	return err
}
