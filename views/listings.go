package views

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/lborres/agromart/core"
)

const ActionCreateListing = "create-listing"

// ListingsPage shows every active listing. Anonymous callers may view
// it; only farmers may add to it.
type ListingsPage struct {
	*Page[[]core.Listing]
	api     core.MarketAPI
	session *core.SessionStore
}

func NewListingsPage(session *core.SessionStore, api core.MarketAPI, logger *zap.Logger) *ListingsPage {
	return &ListingsPage{
		Page: NewPage(PageConfig[[]core.Listing]{
			Name:   "listings",
			Public: true,
			Fetch:  api.Listings,
		}, session, logger),
		api:     api,
		session: session,
	}
}

func (l *ListingsPage) CreateListing(ctx context.Context, input core.ListingInput) error {
	if err := core.RequireRole(l.session.CurrentUser(), core.RoleFarmer); err != nil {
		return l.reject(err)
	}
	if err := core.ValidateListing(input); err != nil {
		return l.reject(err)
	}
	return l.Mutate(ctx, ActionCreateListing, func(ctx context.Context, token string) error {
		_, err := l.api.CreateListing(ctx, token, input)
		return err
	})
}

func (l *ListingsPage) Render(w io.Writer) error {
	if err := renderActionErr(w, l.Page); err != nil {
		return err
	}
	if ok, err := renderState(w, l.Page); !ok || err != nil {
		return err
	}

	listings := l.Data()
	if len(listings) == 0 {
		_, err := fmt.Fprintln(w, "No produce listed yet.")
		return err
	}

	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tTITLE\tPRODUCE\tQUANTITY\tNGN/KG\tTOTAL NGN\tGRADE\tORGANIC\tHARVESTED\tEXPIRES")
	for _, item := range listings {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			item.ID,
			item.Title,
			item.ProduceType,
			formatQuantity(item.QuantityKg, "kg"),
			formatMoney(item.UnitPriceNGN),
			formatMoney(item.TotalPriceNGN),
			orDash(item.QualityGrade),
			yesNo(item.IsOrganic),
			formatDate(item.HarvestDate.Time),
			formatDate(item.ExpiryDate.Time),
		)
	}
	return tw.Flush()
}
