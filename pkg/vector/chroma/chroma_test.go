package chroma_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	shelflogger "github.com/papercomputeco/shelf/pkg/logger"
	"github.com/papercomputeco/shelf/pkg/vector"
	"github.com/papercomputeco/shelf/pkg/vector/chroma"
)

var _ = Describe("Driver", func() {
	var logger *slog.Logger

	BeforeEach(func() {
		logger = shelflogger.Nop()
	})

	Describe("NewDriver", func() {
		It("should return an error when URL is empty", func() {
			_, err := chroma.NewDriver(chroma.Config{URL: ""}, logger)
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("chroma URL is required"))
		})

		It("should use default collection name when not specified", func() {
			var createdName string
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method == http.MethodGet {
					http.NotFound(w, r)
					return
				}
				var body map[string]any
				_ = json.NewDecoder(r.Body).Decode(&body)
				createdName, _ = body["name"].(string)
				json.NewEncoder(w).Encode(map[string]string{"id": "cid", "name": createdName})
			}))
			defer server.Close()

			_, err := chroma.NewDriver(chroma.Config{URL: server.URL}, logger)
			Expect(err).NotTo(HaveOccurred())
			Expect(createdName).To(Equal(chroma.DefaultCollectionName))
		})

		It("should succeed after retrying when Chroma becomes available", func() {
			var attempts atomic.Int32

			// The GET request for the collection and the POST to create it
			// are separate requests. Each retry attempt may hit both endpoints.
			// We track total requests and fail the first few to simulate Chroma
			// still starting up.
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				attempt := attempts.Add(1)

				// Fail the first 4 requests (2 retry cycles: GET+POST each),
				// succeed on the 5th (the GET of the 3rd retry cycle).
				if attempt <= 4 {
					http.Error(w, "service unavailable", http.StatusServiceUnavailable)
					return
				}

				// Return a valid collection response
				w.Header().Set("Content-Type", "application/json")
				json.NewEncoder(w).Encode(map[string]string{
					"id":   "test-collection-id",
					"name": "shelf",
				})
			}))
			defer server.Close()

			driver, err := chroma.NewDriver(chroma.Config{
				URL:           server.URL,
				MaxRetries:    5,
				RetryDelay:    10 * time.Millisecond,
				MaxRetryDelay: 50 * time.Millisecond,
			}, logger)
			Expect(err).NotTo(HaveOccurred())
			Expect(driver).NotTo(BeNil())
			Expect(attempts.Load()).To(BeNumerically(">=", int32(5)))
		})

		It("should return an error after exhausting all retries", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "service unavailable", http.StatusServiceUnavailable)
			}))
			defer server.Close()

			_, err := chroma.NewDriver(chroma.Config{
				URL:           server.URL,
				MaxRetries:    3,
				RetryDelay:    10 * time.Millisecond,
				MaxRetryDelay: 50 * time.Millisecond,
			}, logger)
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("after 3 attempts"))
		})
	})

	Describe("document operations", func() {
		var (
			server   *httptest.Server
			driver   *chroma.Driver
			mu       sync.Mutex
			requests map[string]map[string]any
		)

		BeforeEach(func() {
			requests = map[string]map[string]any{}
			server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				if r.Method == http.MethodGet {
					json.NewEncoder(w).Encode(map[string]string{"id": "cid", "name": "shelf"})
					return
				}

				var body map[string]any
				_ = json.NewDecoder(r.Body).Decode(&body)
				op := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]
				mu.Lock()
				requests[op] = body
				mu.Unlock()

				switch op {
				case "query":
					w.Write([]byte(`{
						"ids": [["product-1"]],
						"distances": [[0.25]],
						"metadatas": [[{"type": "product", "productId": 1}]],
						"documents": [["Product Information: ..."]]
					}`))
				default:
					w.Write([]byte(`{}`))
				}
			}))

			var err error
			driver, err = chroma.NewDriver(chroma.Config{URL: server.URL}, logger)
			Expect(err).NotTo(HaveOccurred())
		})

		AfterEach(func() {
			server.Close()
		})

		It("upserts content and metadata", func() {
			err := driver.Add(context.Background(), []vector.Document{{
				ID:        "product-1",
				Content:   "Laptop",
				Metadata:  map[string]string{"type": "product"},
				Embedding: []float32{1, 0},
			}})
			Expect(err).NotTo(HaveOccurred())

			body := requests["upsert"]
			Expect(body["ids"]).To(ConsistOf("product-1"))
			Expect(body["documents"]).To(ConsistOf("Laptop"))
		})

		It("converts cosine distance into a similarity score", func() {
			results, err := driver.Query(context.Background(), []float32{1, 0}, 3)
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(HaveLen(1))
			Expect(results[0].ID).To(Equal("product-1"))
			Expect(results[0].Score).To(BeNumerically("~", 0.75, 1e-6))
			Expect(results[0].Content).To(Equal("Product Information: ..."))
			Expect(results[0].Metadata).To(HaveKeyWithValue("productId", "1"))
			Expect(requests["query"]).To(HaveKeyWithValue("n_results", BeNumerically("==", 3)))
		})

		It("deletes by a single-pair where clause", func() {
			Expect(driver.DeleteWhere(context.Background(), vector.Filter{"productId": "7"})).To(Succeed())
			Expect(requests["delete"]).To(HaveKeyWithValue("where", HaveKeyWithValue("productId", "7")))
		})

		It("combines multiple pairs with $and", func() {
			err := driver.DeleteWhere(context.Background(), vector.Filter{"type": "order", "orderId": "ORD1"})
			Expect(err).NotTo(HaveOccurred())
			Expect(requests["delete"]).To(HaveKeyWithValue("where", HaveKey("$and")))
		})

		It("rejects an empty filter", func() {
			Expect(driver.DeleteWhere(context.Background(), vector.Filter{})).To(MatchError(vector.ErrEmptyFilter))
		})
	})

	Describe("Interface compliance", func() {
		It("should implement vector.Driver interface", func() {
			// Compile-time check that Driver implements vector.Driver
			var _ vector.Driver = (*chroma.Driver)(nil)
		})
	})
})
