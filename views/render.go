package views

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/lborres/agromart/core"
)

// Renderer is implemented by every page and form
type Renderer interface {
	Render(w io.Writer) error
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

// renderState writes the message for every state except Ready and
// reports whether the caller should render data.
func renderState[T any](w io.Writer, p *Page[T]) (bool, error) {
	if p.State() == StateReady {
		return true, nil
	}
	_, err := fmt.Fprintln(w, p.Message())
	return false, err
}

func renderActionErr[T any](w io.Writer, p *Page[T]) error {
	if err := p.ActionErr(); err != nil {
		_, werr := fmt.Fprintf(w, "Error: %s\n", core.UserMessage(err))
		return werr
	}
	return nil
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("02 Jan 2006")
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func formatMoney(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

func formatQuantity(v float64, unit string) string {
	q := strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", v), "0"), ".")
	if unit == "" {
		return q
	}
	return q + " " + unit
}

func statusLabel(s core.KYCStatus) string {
	switch s {
	case core.KYCStatusPending:
		return "Pending"
	case core.KYCStatusUnderReview:
		return "Under review"
	case core.KYCStatusApproved:
		return "Approved"
	case core.KYCStatusRejected:
		return "Rejected"
	case "":
		return "Not submitted"
	}
	return string(s)
}

func documentLabel(d core.DocumentType) string {
	return strings.ReplaceAll(string(d), "_", " ")
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
