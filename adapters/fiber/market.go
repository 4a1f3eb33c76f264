package fiber

import (
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v3"

	"github.com/lborres/agromart/core"
	"github.com/lborres/agromart/sandbox"
)

func (a *Adapter) listFarms(c fiber.Ctx) error {
	farms, err := a.sandbox.Market.Farms(c.Context(), currentUser(c))
	if err != nil {
		return a.fail(c, err)
	}
	return c.Status(http.StatusOK).JSON(farms)
}

func (a *Adapter) createFarm(c fiber.Ctx) error {
	var input core.FarmInput
	if err := c.Bind().Body(&input); err != nil {
		return handleError(c, sandbox.ErrInvalidRequest)
	}

	farm, err := a.sandbox.Market.CreateFarm(c.Context(), currentUser(c), input)
	if err != nil {
		return a.fail(c, err)
	}
	return c.Status(http.StatusCreated).JSON(farm)
}

func (a *Adapter) listListings(c fiber.Ctx) error {
	listings, err := a.sandbox.Market.Listings(c.Context())
	if err != nil {
		return a.fail(c, err)
	}
	return c.Status(http.StatusOK).JSON(listings)
}

func (a *Adapter) createListing(c fiber.Ctx) error {
	var input core.ListingInput
	if err := c.Bind().Body(&input); err != nil {
		return handleError(c, sandbox.ErrInvalidRequest)
	}

	listing, err := a.sandbox.Market.CreateListing(c.Context(), currentUser(c), input)
	if err != nil {
		return a.fail(c, err)
	}
	return c.Status(http.StatusCreated).JSON(listing)
}

func (a *Adapter) kycStatus(c fiber.Ctx) error {
	app, err := a.sandbox.KYC.Status(c.Context(), currentUser(c))
	if err != nil {
		return a.fail(c, err)
	}
	return c.Status(http.StatusOK).JSON(app)
}

func (a *Adapter) kycUpload(c fiber.Ctx) error {
	sub := core.KYCSubmission{
		DocumentType:    core.DocumentType(strings.Clone(c.FormValue("document_type"))),
		DocumentNumber:  strings.Clone(c.FormValue("document_number")),
		BusinessAddress: strings.Clone(c.FormValue("business_address")),
	}

	var opened []multipart.File
	defer func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}()

	for _, part := range []struct {
		field string
		dst   **core.Upload
	}{
		{"document_file", &sub.DocumentFile},
		{"selfie_file", &sub.SelfieFile},
		{"business_registration", &sub.BusinessRegistration},
	} {
		fh, err := c.FormFile(part.field)
		if err != nil {
			// absent parts are optional here; the service decides
			continue
		}
		f, err := fh.Open()
		if err != nil {
			return a.fail(c, err)
		}
		opened = append(opened, f)
		*part.dst = &core.Upload{Name: fh.Filename, Reader: f}
	}

	app, err := a.sandbox.KYC.Submit(c.Context(), currentUser(c), sub)
	if err != nil {
		return a.fail(c, err)
	}
	return c.Status(http.StatusCreated).JSON(app)
}

func (a *Adapter) kycQueue(c fiber.Ctx) error {
	queue, err := a.sandbox.KYC.Queue(c.Context())
	if err != nil {
		return a.fail(c, err)
	}
	return c.Status(http.StatusOK).JSON(queue)
}

func (a *Adapter) kycDocument(c fiber.Ctx) error {
	ref := c.Query("ref")
	if ref == "" {
		return handleError(c, sandbox.ErrDocumentNotFound)
	}
	doc, err := a.sandbox.KYC.Document(c.Context(), strings.Clone(ref))
	if err != nil {
		return a.fail(c, err)
	}
	c.Set(fiber.HeaderContentType, doc.ContentType)
	return c.Status(http.StatusOK).Send(doc.Data)
}

// kycReview takes the decision as a JSON body, or as status and
// admin_notes query parameters when the body is empty.
func (a *Adapter) kycReview(c fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return handleError(c, sandbox.ErrApplicationNotFound)
	}

	var input core.ReviewInput
	if len(c.Body()) > 0 {
		if err := c.Bind().Body(&input); err != nil {
			return handleError(c, sandbox.ErrInvalidRequest)
		}
	} else {
		input.Status = core.KYCStatus(strings.Clone(c.Query("status")))
		input.AdminNotes = strings.Clone(c.Query("admin_notes"))
	}

	app, err := a.sandbox.KYC.Review(c.Context(), currentUser(c), id, input)
	if err != nil {
		return a.fail(c, err)
	}
	return c.Status(http.StatusOK).JSON(app)
}
