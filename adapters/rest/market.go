package rest

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/gofiber/fiber/v3/client"

	"github.com/lborres/agromart/core"
)

// Collection paths keep their trailing slash; the API redirects the bare
// form, and a redirect is not followed.

func (c *Client) Farms(ctx context.Context, token string) ([]core.Farm, error) {
	farms := []core.Farm{}
	if err := c.do(c.request(ctx, token), http.MethodGet, "farms/", &farms); err != nil {
		return nil, err
	}
	return farms, nil
}

func (c *Client) CreateFarm(ctx context.Context, token string, input core.FarmInput) (*core.Farm, error) {
	var out core.Farm
	req := c.request(ctx, token).SetJSON(input)
	if err := c.do(req, http.MethodPost, "farms/", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Listings(ctx context.Context, token string) ([]core.Listing, error) {
	listings := []core.Listing{}
	if err := c.do(c.request(ctx, token), http.MethodGet, "listings/", &listings); err != nil {
		return nil, err
	}
	return listings, nil
}

func (c *Client) CreateListing(ctx context.Context, token string, input core.ListingInput) (*core.Listing, error) {
	var out core.Listing
	req := c.request(ctx, token).SetJSON(listingBody{
		ListingInput: input,
		HarvestDate:  wireDate(input.HarvestDate),
		ExpiryDate:   wireDate(input.ExpiryDate),
	})
	if err := c.do(req, http.MethodPost, "listings/", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// KYCStatus returns nil, nil when the caller has never applied
func (c *Client) KYCStatus(ctx context.Context, token string) (*core.KYCApplication, error) {
	var out core.KYCApplication
	if err := c.do(c.request(ctx, token), http.MethodGet, "kyc/status", &out); err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &out, nil
}

// SubmitKYC sends the documents as multipart/form-data. The text fields
// go in both the form and the query string, which is where the API
// reads them.
func (c *Client) SubmitKYC(ctx context.Context, token string, sub core.KYCSubmission) (*core.KYCApplication, error) {
	req := c.request(ctx, token)
	fields := [][2]string{
		{"document_type", string(sub.DocumentType)},
		{"document_number", sub.DocumentNumber},
		{"business_address", sub.BusinessAddress},
	}
	for _, f := range fields {
		if f[1] == "" {
			continue
		}
		req.SetFormData(f[0], f[1])
		req.SetParam(f[0], f[1])
	}

	files := []struct {
		field  string
		upload *core.Upload
	}{
		{"document_file", sub.DocumentFile},
		{"selfie_file", sub.SelfieFile},
		{"business_registration", sub.BusinessRegistration},
	}
	for _, f := range files {
		if f.upload == nil || f.upload.Reader == nil {
			continue
		}
		req.AddFiles(client.AcquireFile(
			client.SetFileFieldName(f.field),
			client.SetFileName(uploadName(f.upload, f.field)),
			client.SetFileReader(io.NopCloser(f.upload.Reader)),
		))
	}

	var out core.KYCApplication
	if err := c.do(req, http.MethodPost, "kyc/upload", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) KYCQueue(ctx context.Context, token string) ([]core.KYCApplication, error) {
	queue := []core.KYCApplication{}
	if err := c.do(c.request(ctx, token), http.MethodGet, "kyc/admin/queue", &queue); err != nil {
		return nil, err
	}
	return queue, nil
}

// ReviewKYC sends the decision as query parameters and repeats it as a
// JSON body.
func (c *Client) ReviewKYC(ctx context.Context, token string, id int64, input core.ReviewInput) (*core.KYCApplication, error) {
	var out core.KYCApplication
	req := c.request(ctx, token).
		SetParam("status", string(input.Status)).
		SetJSON(input)
	if input.AdminNotes != "" {
		req.SetParam("admin_notes", input.AdminNotes)
	}
	if err := c.do(req, http.MethodPut, fmt.Sprintf("kyc/admin/%d/review", id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// listingBody carries the dates as zone-less datetimes
type listingBody struct {
	core.ListingInput
	HarvestDate string `json:"harvest_date,omitempty"`
	ExpiryDate  string `json:"expiry_date,omitempty"`
}

// wireDate passes through anything it cannot parse; the server reports it
func wireDate(s string) string {
	t, err := core.ParseTimestamp(s)
	if err != nil || t.IsZero() {
		return s
	}
	return t.Format("2006-01-02T15:04:05")
}

func uploadName(u *core.Upload, field string) string {
	if u.Name != "" {
		return u.Name
	}
	return field
}
