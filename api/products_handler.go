package api

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/papercomputeco/shelf/pkg/catalog"
	"github.com/papercomputeco/shelf/pkg/storage"
)

const productPart = "product"

// imageParts are the accepted names of the image part, in order of
// preference.
var imageParts = []string{"imageFile", "image"}

func (s *Server) handleListProducts(c *fiber.Ctx) error {
	list, err := s.config.Products.List(c.UserContext())
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(list)
}

func (s *Server) handleGetProduct(c *fiber.Ctx) error {
	id, err := productID(c)
	if err != nil {
		return s.fail(c, err)
	}

	p, err := s.config.Products.Get(c.UserContext(), id)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(p)
}

// handleGetProductImage writes the raw image with its stored content type.
func (s *Server) handleGetProductImage(c *fiber.Ctx) error {
	id, err := productID(c)
	if err != nil {
		return s.fail(c, err)
	}

	img, err := s.config.Products.Image(c.UserContext(), id)
	if err != nil {
		return s.fail(c, err)
	}

	if img.Type != "" {
		c.Set(fiber.HeaderContentType, img.Type)
	}
	return c.Send(img.Data)
}

// handleSearchProducts handles GET /api/products/search?keyword=
func (s *Server) handleSearchProducts(c *fiber.Ctx) error {
	list, err := s.config.Products.Search(c.UserContext(), c.Query("keyword"))
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(list)
}

// handleAddProduct creates a product from a multipart request carrying a JSON
// "product" part and an optional "imageFile" (or "image") part.
func (s *Server) handleAddProduct(c *fiber.Ctx) error {
	p, img, err := readProductForm(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	p.ID = 0

	saved, err := s.config.Products.Save(c.UserContext(), p, img)
	if err != nil {
		return s.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(saved)
}

// handleUpdateProduct replaces a product. Without an "imageFile" part the
// stored image is kept.
func (s *Server) handleUpdateProduct(c *fiber.Ctx) error {
	id, err := productID(c)
	if err != nil {
		return s.fail(c, err)
	}

	p, img, err := readProductForm(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	p.ID = id

	saved, err := s.config.Products.Save(c.UserContext(), p, img)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(saved)
}

func (s *Server) handleDeleteProduct(c *fiber.Ctx) error {
	id, err := productID(c)
	if err != nil {
		return s.fail(c, err)
	}

	if err := s.config.Products.Delete(c.UserContext(), id); err != nil {
		return s.fail(c, err)
	}
	return c.SendString("Deleted")
}

// handleGenerateDescription handles
// POST /api/product/generate-description?name=&category=
func (s *Server) handleGenerateDescription(c *fiber.Ctx) error {
	name := c.Query("name")
	if name == "" {
		return badRequest(c, "name parameter is required")
	}

	desc, err := s.config.Products.GenerateDescription(c.UserContext(), name, c.Query("category"))
	if err != nil {
		return s.fail(c, err)
	}
	return c.SendString(desc)
}

// handleGenerateImage handles
// POST /api/product/generate-image?name=&category=&description=
func (s *Server) handleGenerateImage(c *fiber.Ctx) error {
	name := c.Query("name")
	if name == "" {
		return badRequest(c, "name parameter is required")
	}

	img, err := s.config.Products.GenerateImage(c.UserContext(),
		name,
		c.Query("category"),
		c.Query("description"),
	)
	if err != nil {
		return s.fail(c, err)
	}

	c.Set(fiber.HeaderContentType, img.MediaType)
	return c.Send(img.Data)
}

// productID parses the :id route parameter. Anything that is not a positive
// integer can never match a product.
func productID(c *fiber.Ctx) (int64, error) {
	raw := c.Params("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, storage.NotFoundError{Kind: storage.KindProduct, Key: raw}
	}
	return id, nil
}

// readProductForm decodes the multipart product form. Browsers often send
// the JSON part as a Blob, which arrives as a file part.
func readProductForm(c *fiber.Ctx) (*catalog.Product, *catalog.Image, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, nil, fmt.Errorf("expected multipart form: %w", err)
	}

	var raw []byte
	switch {
	case len(form.Value[productPart]) > 0:
		raw = []byte(form.Value[productPart][0])
	case len(form.File[productPart]) > 0:
		raw, err = readPart(form.File[productPart][0])
		if err != nil {
			return nil, nil, err
		}
	default:
		return nil, nil, fmt.Errorf("missing %q part", productPart)
	}

	p := &catalog.Product{}
	if err := json.Unmarshal(raw, p); err != nil {
		return nil, nil, fmt.Errorf("decoding product: %w", err)
	}

	var files []*multipart.FileHeader
	for _, name := range imageParts {
		if files = form.File[name]; len(files) > 0 {
			break
		}
	}
	if len(files) == 0 {
		return p, nil, nil
	}

	data, err := readPart(files[0])
	if err != nil {
		return nil, nil, err
	}
	if len(data) == 0 {
		return p, nil, nil
	}

	return p, &catalog.Image{
		Name: files[0].Filename,
		Type: files[0].Header.Get(fiber.HeaderContentType),
		Data: data,
	}, nil
}

func readPart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", fh.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", fh.Filename, err)
	}
	return data, nil
}
