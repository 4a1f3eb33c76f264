package views

import (
	"context"
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"

	"github.com/lborres/agromart/core"
)

const ActionReviewKYC = "review-kyc"

// AdminKYCPage is the admin review queue
type AdminKYCPage struct {
	*Page[[]core.KYCApplication]
	api core.MarketAPI

	mu       sync.Mutex
	selected int64
}

func NewAdminKYCPage(session *core.SessionStore, api core.MarketAPI, logger *zap.Logger) *AdminKYCPage {
	return &AdminKYCPage{
		Page: NewPage(PageConfig[[]core.KYCApplication]{
			Name:  "admin-kyc",
			Roles: []core.Role{core.RoleAdmin},
			Fetch: api.KYCQueue,
		}, session, logger),
		api: api,
	}
}

// Pending filters the queue down to applications awaiting a decision
func (a *AdminKYCPage) Pending() []core.KYCApplication {
	var out []core.KYCApplication
	for _, app := range a.Data() {
		if app.Status.Active() {
			out = append(out, app)
		}
	}
	return out
}

// Select picks the application to review. It must be in the loaded queue.
func (a *AdminKYCPage) Select(id int64) error {
	for _, app := range a.Data() {
		if app.ID == id {
			a.mu.Lock()
			a.selected = id
			a.mu.Unlock()
			return nil
		}
	}
	return a.reject(&core.ValidationError{Field: "id", Err: core.ErrNoSelection})
}

func (a *AdminKYCPage) Selected() int64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.selected
}

// Review submits a terminal decision for the selected application. A
// server refusal (for example, the application was already decided) is
// returned as is; success is never assumed.
func (a *AdminKYCPage) Review(ctx context.Context, decision core.KYCStatus, notes string) error {
	if err := a.Gate(); err != nil {
		return a.reject(err)
	}

	id := a.Selected()
	input := core.ReviewInput{Status: decision, AdminNotes: notes}
	if err := core.ValidateReview(id, input); err != nil {
		return a.reject(err)
	}

	err := a.Mutate(ctx, ActionReviewKYC, func(ctx context.Context, token string) error {
		_, err := a.api.ReviewKYC(ctx, token, id, input)
		return err
	})
	if err == nil {
		a.mu.Lock()
		a.selected = 0
		a.mu.Unlock()
	}
	return err
}

func (a *AdminKYCPage) Render(w io.Writer) error {
	if err := renderActionErr(w, a.Page); err != nil {
		return err
	}
	if ok, err := renderState(w, a.Page); !ok || err != nil {
		return err
	}

	queue := a.Data()
	if len(queue) == 0 {
		_, err := fmt.Fprintln(w, "No KYC applications to review.")
		return err
	}

	selected := a.Selected()
	tw := newTable(w)
	fmt.Fprintln(tw, " \tID\tUSER\tDOCUMENT\tNUMBER\tSTATUS\tSUBMITTED\tNOTES")
	for _, app := range queue {
		marker := " "
		if app.ID == selected {
			marker = ">"
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%s\t%s\t%s\t%s\t%s\n",
			marker,
			app.ID,
			app.UserID,
			documentLabel(app.DocumentType),
			app.DocumentNumber,
			statusLabel(app.Status),
			formatDate(app.CreatedAt.Time),
			orDash(app.AdminNotes),
		)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%d of %d awaiting review\n", len(a.Pending()), len(queue))
	return err
}
