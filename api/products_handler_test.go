package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gofiber/fiber/v2"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/shelf/pkg/catalog"
	"github.com/papercomputeco/shelf/pkg/logger"
	"github.com/papercomputeco/shelf/pkg/products"
	"github.com/papercomputeco/shelf/pkg/prompt"
	"github.com/papercomputeco/shelf/pkg/storage/inmemory"
	testutils "github.com/papercomputeco/shelf/pkg/utils/test"
)

var _ = Describe("product routes", func() {
	var ts *testServer

	BeforeEach(func() {
		ts = newTestServer(nil)
	})

	create := func(product map[string]any, image []byte) *catalog.Product {
		resp, body := ts.do(productForm(http.MethodPost, "/api/product", product, image))
		Expect(resp.StatusCode).To(Equal(fiber.StatusCreated), body)

		p := &catalog.Product{}
		Expect(json.Unmarshal([]byte(body), p)).To(Succeed())
		return p
	}

	Describe("POST /api/product", func() {
		It("creates a product with its image", func() {
			p := create(lamp(), []byte("png-bytes"))
			Expect(p.ID).To(Equal(int64(1)))
			Expect(p.Name).To(Equal("Desk Lamp"))
			Expect(p.Price.StringFixed(2)).To(Equal("19.99"))
			Expect(p.ImageName).To(Equal("lamp.png"))
			Expect(p.ImageType).To(Equal("image/png"))
			Expect(ts.indexer.Calls()).To(Equal([]string{"product_saved:1"}))
		})

		It("accepts the image under the image part name", func() {
			resp, body := ts.do(productFormWithPart(http.MethodPost, "/api/product", lamp(), "image", []byte("png-bytes")))
			Expect(resp.StatusCode).To(Equal(fiber.StatusCreated), body)

			p := &catalog.Product{}
			Expect(json.Unmarshal([]byte(body), p)).To(Succeed())
			Expect(p.ImageName).To(Equal("lamp.png"))

			resp, body = ts.get("/api/product/1/image")
			Expect(resp.StatusCode).To(Equal(fiber.StatusOK))
			Expect(body).To(Equal("png-bytes"))
		})

		It("ignores a client supplied ID", func() {
			product := lamp()
			product["id"] = 42
			p := create(product, nil)
			Expect(p.ID).To(Equal(int64(1)))
		})

		It("rejects a request without a product part", func() {
			resp, body := ts.do(productForm(http.MethodPost, "/api/product", nil, []byte("png")))
			Expect(resp.StatusCode).To(Equal(fiber.StatusBadRequest))
			Expect(decodeError(body)).To(ContainSubstring(`missing "product" part`))
		})

		It("rejects a non multipart request", func() {
			req, err := http.NewRequest(http.MethodPost, "/api/product", nil)
			Expect(err).NotTo(HaveOccurred())
			req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

			resp, _ := ts.do(req)
			Expect(resp.StatusCode).To(Equal(fiber.StatusBadRequest))
		})

		It("rejects an invalid product", func() {
			product := lamp()
			product["name"] = " "
			resp, body := ts.do(productForm(http.MethodPost, "/api/product", product, nil))
			Expect(resp.StatusCode).To(Equal(fiber.StatusBadRequest))
			Expect(decodeError(body)).To(ContainSubstring("name is required"))
		})
	})

	Describe("GET /api/product/:id", func() {
		It("returns a stored product", func() {
			create(lamp(), nil)

			resp, body := ts.get("/api/product/1")
			Expect(resp.StatusCode).To(Equal(fiber.StatusOK))
			Expect(body).To(ContainSubstring(`"name":"Desk Lamp"`))
			Expect(body).To(ContainSubstring(`"releaseDate":"2024-05-01"`))
		})

		It("answers 404 for unknown and non positive IDs", func() {
			for _, path := range []string{"/api/product/9", "/api/product/0", "/api/product/-1", "/api/product/abc"} {
				resp, body := ts.get(path)
				Expect(resp.StatusCode).To(Equal(fiber.StatusNotFound), path)
				Expect(decodeError(body)).To(ContainSubstring("product not found"))
			}
		})
	})

	Describe("GET /api/product/:id/image", func() {
		It("serves the image with its content type", func() {
			create(lamp(), []byte("png-bytes"))

			resp, body := ts.get("/api/product/1/image")
			Expect(resp.StatusCode).To(Equal(fiber.StatusOK))
			Expect(resp.Header.Get(fiber.HeaderContentType)).To(Equal("image/png"))
			Expect(body).To(Equal("png-bytes"))
		})

		It("answers 404 when the product has no image", func() {
			create(lamp(), nil)

			resp, body := ts.get("/api/product/1/image")
			Expect(resp.StatusCode).To(Equal(fiber.StatusNotFound))
			Expect(decodeError(body)).To(Equal("product has no image"))
		})
	})

	Describe("GET /api/products", func() {
		It("returns an empty list", func() {
			resp, body := ts.get("/api/products")
			Expect(resp.StatusCode).To(Equal(fiber.StatusOK))
			Expect(body).To(Equal("[]"))
		})

		It("lists stored products", func() {
			create(lamp(), nil)
			create(lamp(), nil)

			_, body := ts.get("/api/products")
			var list []catalog.Product
			Expect(json.Unmarshal([]byte(body), &list)).To(Succeed())
			Expect(list).To(HaveLen(2))
		})
	})

	Describe("GET /api/products/search", func() {
		It("matches the keyword", func() {
			create(lamp(), nil)
			Expect(ts.driver.SaveProduct(context.Background(), testutils.NewTestProduct("Headphones"))).To(Succeed())

			_, body := ts.get("/api/products/search?keyword=lamp")
			var list []catalog.Product
			Expect(json.Unmarshal([]byte(body), &list)).To(Succeed())
			Expect(list).To(HaveLen(1))
			Expect(list[0].Name).To(Equal("Desk Lamp"))
		})

		It("returns everything for a blank keyword", func() {
			create(lamp(), nil)
			create(lamp(), nil)

			_, body := ts.get("/api/products/search?keyword=")
			var list []catalog.Product
			Expect(json.Unmarshal([]byte(body), &list)).To(Succeed())
			Expect(list).To(HaveLen(2))
		})
	})

	Describe("PUT /api/product/:id", func() {
		It("updates the product and keeps the stored image", func() {
			create(lamp(), []byte("png-bytes"))

			update := lamp()
			update["name"] = "Floor Lamp"
			resp, body := ts.do(productForm(http.MethodPut, "/api/product/1", update, nil))
			Expect(resp.StatusCode).To(Equal(fiber.StatusOK), body)
			Expect(body).To(ContainSubstring(`"name":"Floor Lamp"`))

			resp, body = ts.get("/api/product/1/image")
			Expect(resp.StatusCode).To(Equal(fiber.StatusOK))
			Expect(body).To(Equal("png-bytes"))
		})

		It("replaces the image when one is sent", func() {
			create(lamp(), []byte("old"))

			resp, _ := ts.do(productForm(http.MethodPut, "/api/product/1", lamp(), []byte("new")))
			Expect(resp.StatusCode).To(Equal(fiber.StatusOK))

			_, body := ts.get("/api/product/1/image")
			Expect(body).To(Equal("new"))
		})

		It("answers 404 for an unknown product", func() {
			resp, _ := ts.do(productForm(http.MethodPut, "/api/product/7", lamp(), nil))
			Expect(resp.StatusCode).To(Equal(fiber.StatusNotFound))

			resp, _ = ts.do(productForm(http.MethodPut, "/api/product/7", lamp(), []byte("png")))
			Expect(resp.StatusCode).To(Equal(fiber.StatusNotFound))
		})
	})

	Describe("DELETE /api/product/:id", func() {
		It("deletes the product", func() {
			create(lamp(), nil)

			req, err := http.NewRequest(http.MethodDelete, "/api/product/1", nil)
			Expect(err).NotTo(HaveOccurred())
			resp, body := ts.do(req)
			Expect(resp.StatusCode).To(Equal(fiber.StatusOK))
			Expect(body).To(Equal("Deleted"))
			Expect(ts.indexer.Calls()).To(ContainElement("product_deleted:1"))

			resp, _ = ts.get("/api/product/1")
			Expect(resp.StatusCode).To(Equal(fiber.StatusNotFound))
		})

		It("answers 404 for an unknown product", func() {
			req, err := http.NewRequest(http.MethodDelete, "/api/product/3", nil)
			Expect(err).NotTo(HaveOccurred())
			resp, _ := ts.do(req)
			Expect(resp.StatusCode).To(Equal(fiber.StatusNotFound))
		})
	})

	Describe("generation routes", func() {
		It("returns a trimmed description", func() {
			ts.completer.Response = "  Lights up any desk.\n"

			req, err := http.NewRequest(http.MethodPost, "/api/product/generate-description?name=Lamp&category=Home", nil)
			Expect(err).NotTo(HaveOccurred())
			resp, body := ts.do(req)
			Expect(resp.StatusCode).To(Equal(fiber.StatusOK))
			Expect(body).To(Equal("Lights up any desk."))
			Expect(ts.completer.Prompts[0]).To(ContainSubstring("Lamp"))
		})

		It("requires a name", func() {
			req, err := http.NewRequest(http.MethodPost, "/api/product/generate-description?category=Home", nil)
			Expect(err).NotTo(HaveOccurred())
			resp, _ := ts.do(req)
			Expect(resp.StatusCode).To(Equal(fiber.StatusBadRequest))
		})

		It("returns generated image bytes", func() {
			req, err := http.NewRequest(http.MethodPost, "/api/product/generate-image?name=Lamp&category=Home&description=bright", nil)
			Expect(err).NotTo(HaveOccurred())
			resp, body := ts.do(req)
			Expect(resp.StatusCode).To(Equal(fiber.StatusOK))
			Expect(resp.Header.Get(fiber.HeaderContentType)).To(Equal("image/png"))
			Expect([]byte(body)).To(Equal(ts.images.Image.Data))
		})

		It("answers 503 when generation is not configured", func() {
			ts = newTestServer(func(c *Config) {
				svc, err := products.New(products.Config{
					Driver:  inmemory.NewDriver(),
					Prompts: prompt.NewLoader("", logger.Nop()),
					Logger:  logger.Nop(),
				})
				Expect(err).NotTo(HaveOccurred())
				c.Products = svc
			})

			for _, path := range []string{
				"/api/product/generate-description?name=Lamp",
				"/api/product/generate-image?name=Lamp",
			} {
				req, err := http.NewRequest(http.MethodPost, path, nil)
				Expect(err).NotTo(HaveOccurred())
				resp, body := ts.do(req)
				Expect(resp.StatusCode).To(Equal(fiber.StatusServiceUnavailable), path)
				Expect(decodeError(body)).To(ContainSubstring("not configured"))
			}
		})
	})
})
