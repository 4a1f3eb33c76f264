package views

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/lborres/agromart/core"
)

// HomePage greets the signed-in user. It needs nothing beyond the session.
type HomePage struct {
	*Page[*core.User]
}

func NewHomePage(session *core.SessionStore, logger *zap.Logger) *HomePage {
	return &HomePage{Page: NewPage(PageConfig[*core.User]{
		Name: "home",
		Fetch: func(context.Context, string) (*core.User, error) {
			user := session.CurrentUser()
			if user == nil {
				return nil, core.ErrNotAuthenticated
			}
			return user, nil
		},
	}, session, logger)}
}

func (h *HomePage) Render(w io.Writer) error {
	if ok, err := renderState(w, h.Page); !ok || err != nil {
		return err
	}

	user := h.Data()
	fmt.Fprintf(w, "Welcome, %s (%s)\n", orDash(user.FullName), user.Username)
	fmt.Fprintf(w, "Role:         %s\n", user.Role)
	fmt.Fprintf(w, "Email:        %s\n", user.Email)
	if user.BusinessName != "" {
		fmt.Fprintf(w, "Business:     %s\n", user.BusinessName)
	}

	verified := "no"
	if user.IsVerified {
		verified = "yes"
	}
	fmt.Fprintf(w, "Verified:     %s\n", verified)
	_, err := fmt.Fprintf(w, "KYC status:   %s\n", statusLabel(user.KYCStatus))
	return err
}
