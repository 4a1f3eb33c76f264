package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/lborres/agromart"
	"github.com/lborres/agromart/core"
)

type command struct {
	client *agromart.Client
	out    io.Writer
}

// screen is what every page exposes to the CLI
type screen interface {
	Mount(ctx context.Context) error
	Close()
	Render(w io.Writer) error
}

// show mounts p once, renders whatever state it settled in and reports
// a failed load as already shown.
func show(ctx context.Context, w io.Writer, p screen) error {
	defer p.Close()

	mountErr := p.Mount(ctx)
	if err := p.Render(w); err != nil {
		return err
	}
	if mountErr != nil {
		return errReported
	}
	return nil
}

func (c *command) login(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	_ = fs.Parse(args)

	form := c.client.LoginForm()
	err := form.Submit(ctx, *email, *password)
	if rerr := form.Render(c.out); rerr != nil {
		return rerr
	}
	if err != nil {
		return errReported
	}
	return nil
}

func (c *command) register(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	var input core.RegisterInput
	var role string
	fs.StringVar(&input.Email, "email", "", "account email")
	fs.StringVar(&input.Username, "username", "", "username")
	fs.StringVar(&input.Password, "password", "", "password")
	fs.StringVar(&input.ConfirmPassword, "confirm", "", "password again")
	fs.StringVar(&input.FullName, "name", "", "full name")
	fs.StringVar(&input.Phone, "phone", "", "phone number")
	fs.StringVar(&role, "role", string(core.RoleFarmer), "farmer, aggregator, buyer or logistics")
	fs.StringVar(&input.BusinessName, "business-name", "", "business name")
	fs.StringVar(&input.BusinessAddress, "business-address", "", "business address")
	fs.StringVar(&input.BusinessRegistration, "business-registration", "", "business registration number")
	_ = fs.Parse(args)
	input.Role = core.Role(role)

	form := c.client.RegisterForm()
	err := form.Submit(ctx, input)
	if rerr := form.Render(c.out); rerr != nil {
		return rerr
	}
	if err != nil {
		return errReported
	}
	return nil
}

func (c *command) logout(ctx context.Context) error {
	if !c.client.Session.Authenticated() {
		_, err := fmt.Fprintln(c.out, "Not logged in.")
		return err
	}
	c.client.Auth.Logout(ctx)
	_, err := fmt.Fprintln(c.out, "Logged out.")
	return err
}

func (c *command) listings(ctx context.Context, args []string) error {
	page := c.client.ListingsPage()
	if len(args) == 0 {
		return show(ctx, c.out, page)
	}
	if args[0] != "add" {
		return fmt.Errorf("unknown listings command %q", args[0])
	}

	fs := flag.NewFlagSet("listings add", flag.ExitOnError)
	var input core.ListingInput
	var produce string
	fs.StringVar(&input.Title, "title", "", "listing title")
	fs.StringVar(&input.Description, "description", "", "description")
	fs.StringVar(&produce, "produce", "", "grains, vegetables, fruits, tubers, legumes or other")
	fs.Float64Var(&input.QuantityKg, "quantity", 0, "quantity in kg")
	fs.Float64Var(&input.UnitPriceNGN, "price", 0, "price per kg in naira")
	fs.StringVar(&input.HarvestDate, "harvest", "", "harvest date, YYYY-MM-DD")
	fs.StringVar(&input.ExpiryDate, "expiry", "", "expiry date, YYYY-MM-DD")
	fs.BoolVar(&input.IsOrganic, "organic", false, "organically grown")
	fs.StringVar(&input.QualityGrade, "grade", "", "quality grade")
	fs.Int64Var(&input.FarmID, "farm", 0, "id of the farm the produce comes from")
	_ = fs.Parse(args[1:])
	input.ProduceType = core.ProduceType(produce)

	return mutate(ctx, c.out, page, func(ctx context.Context) error {
		return page.CreateListing(ctx, input)
	})
}

func (c *command) farms(ctx context.Context, args []string) error {
	page := c.client.FarmsPage()
	if len(args) == 0 {
		return show(ctx, c.out, page)
	}
	if args[0] != "add" {
		return fmt.Errorf("unknown farms command %q", args[0])
	}

	fs := flag.NewFlagSet("farms add", flag.ExitOnError)
	var input core.FarmInput
	fs.StringVar(&input.Name, "name", "", "farm name")
	fs.StringVar(&input.Description, "description", "", "description")
	fs.StringVar(&input.Location, "location", "", "farm location")
	fs.Float64Var(&input.SizeHectares, "size", 0, "size in hectares")
	fs.StringVar(&input.SoilType, "soil", "", "soil type")
	fs.StringVar(&input.IrrigationType, "irrigation", "", "irrigation type")
	_ = fs.Parse(args[1:])

	return mutate(ctx, c.out, page, func(ctx context.Context) error {
		return page.CreateFarm(ctx, input)
	})
}

func (c *command) kyc(ctx context.Context, args []string) error {
	page := c.client.KYCPage()
	if len(args) == 0 || args[0] == "status" {
		return show(ctx, c.out, page)
	}
	if args[0] != "submit" {
		return fmt.Errorf("unknown kyc command %q", args[0])
	}

	fs := flag.NewFlagSet("kyc submit", flag.ExitOnError)
	docType := fs.String("type", "", "document type")
	number := fs.String("number", "", "document number")
	document := fs.String("document", "", "path to the document scan")
	selfie := fs.String("selfie", "", "path to the selfie")
	business := fs.String("business-registration", "", "path to the business registration")
	address := fs.String("address", "", "business address")
	_ = fs.Parse(args[1:])

	sub := core.KYCSubmission{
		DocumentType:    core.DocumentType(*docType),
		DocumentNumber:  *number,
		BusinessAddress: *address,
	}
	for _, part := range []struct {
		path string
		dst  **core.Upload
	}{
		{*document, &sub.DocumentFile},
		{*selfie, &sub.SelfieFile},
		{*business, &sub.BusinessRegistration},
	} {
		if part.path == "" {
			continue
		}
		f, err := os.Open(part.path)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", part.path, err)
		}
		defer f.Close()
		*part.dst = &core.Upload{Name: filepath.Base(part.path), Reader: f}
	}

	return mutate(ctx, c.out, page, func(ctx context.Context) error {
		return page.Submit(ctx, sub)
	})
}

func (c *command) admin(ctx context.Context, args []string) error {
	page := c.client.AdminKYCPage()
	if len(args) == 0 || args[0] == "queue" {
		return show(ctx, c.out, page)
	}
	if args[0] != "review" {
		return fmt.Errorf("unknown admin command %q", args[0])
	}

	fs := flag.NewFlagSet("admin review", flag.ExitOnError)
	id := fs.Int64("id", 0, "application id")
	decision := fs.String("decision", "", "approved or rejected")
	notes := fs.String("notes", "", "notes for the applicant")
	_ = fs.Parse(args[1:])

	return mutate(ctx, c.out, page, func(ctx context.Context) error {
		if err := page.Select(*id); err != nil {
			return err
		}
		return page.Review(ctx, core.KYCStatus(*decision), *notes)
	})
}

// mutate loads the page, runs one action on it and renders the result.
// The page's own gate decides whether the action may run.
func mutate(ctx context.Context, w io.Writer, p screen, action func(ctx context.Context) error) error {
	defer p.Close()

	if err := p.Mount(ctx); err != nil {
		if rerr := p.Render(w); rerr != nil {
			return rerr
		}
		return errReported
	}

	err := action(ctx)
	if rerr := p.Render(w); rerr != nil {
		return rerr
	}
	if err != nil {
		return errReported
	}
	return nil
}
