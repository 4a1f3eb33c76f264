package views

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/lborres/agromart/core"
)

const ActionCreateFarm = "create-farm"

// FarmsPage lists the signed-in farmer's farms
type FarmsPage struct {
	*Page[[]core.Farm]
	api core.MarketAPI
}

func NewFarmsPage(session *core.SessionStore, api core.MarketAPI, logger *zap.Logger) *FarmsPage {
	return &FarmsPage{
		Page: NewPage(PageConfig[[]core.Farm]{
			Name:  "farms",
			Roles: []core.Role{core.RoleFarmer},
			Fetch: api.Farms,
		}, session, logger),
		api: api,
	}
}

func (f *FarmsPage) CreateFarm(ctx context.Context, input core.FarmInput) error {
	if err := f.Gate(); err != nil {
		return f.reject(err)
	}
	if err := core.ValidateFarm(input); err != nil {
		return f.reject(err)
	}
	return f.Mutate(ctx, ActionCreateFarm, func(ctx context.Context, token string) error {
		_, err := f.api.CreateFarm(ctx, token, input)
		return err
	})
}

func (f *FarmsPage) Render(w io.Writer) error {
	if err := renderActionErr(w, f.Page); err != nil {
		return err
	}
	if ok, err := renderState(w, f.Page); !ok || err != nil {
		return err
	}

	farms := f.Data()
	if len(farms) == 0 {
		_, err := fmt.Fprintln(w, "You have not added any farms yet.")
		return err
	}

	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tNAME\tLOCATION\tSIZE (HA)\tSOIL\tIRRIGATION")
	for _, farm := range farms {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
			farm.ID,
			farm.Name,
			farm.Location,
			formatQuantity(farm.SizeHectares, ""),
			orDash(farm.SoilType),
			orDash(farm.IrrigationType),
		)
	}
	return tw.Flush()
}
