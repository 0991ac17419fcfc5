package provider_test

import (
	"context"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/shelf/pkg/credentials"
	"github.com/papercomputeco/shelf/pkg/llm/provider"
	"github.com/papercomputeco/shelf/pkg/llm/provider/anthropic"
	"github.com/papercomputeco/shelf/pkg/llm/provider/ollama"
	"github.com/papercomputeco/shelf/pkg/llm/provider/openai"
	"github.com/papercomputeco/shelf/pkg/logger"
)

var _ = Describe("Provider factory", func() {
	var (
		ctx     context.Context
		credMgr *credentials.Manager
	)

	BeforeEach(func() {
		ctx = context.Background()
		GinkgoT().Setenv("OPENAI_API_KEY", "")
		GinkgoT().Setenv("ANTHROPIC_API_KEY", "")
		GinkgoT().Setenv("GEMINI_API_KEY", "")

		dir := GinkgoT().TempDir()
		Expect(os.MkdirAll(filepath.Join(dir, ".shelf"), 0o755)).To(Succeed())

		var err error
		credMgr, err = credentials.NewManager(filepath.Join(dir, ".shelf"))
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("ResolveAPIKey", func() {
		It("prefers the explicit key", func() {
			Expect(credMgr.SetKey("openai", "stored")).To(Succeed())
			GinkgoT().Setenv("OPENAI_API_KEY", "env")

			key := provider.ResolveAPIKey(provider.Config{Provider: "openai", APIKey: "explicit", CredMgr: credMgr})
			Expect(key).To(Equal("explicit"))
		})

		It("prefers stored credentials over the environment", func() {
			Expect(credMgr.SetKey("anthropic", "stored")).To(Succeed())
			GinkgoT().Setenv("ANTHROPIC_API_KEY", "env")

			Expect(provider.ResolveAPIKey(provider.Config{Provider: "Anthropic", CredMgr: credMgr})).To(Equal("stored"))
		})

		It("falls back to the environment", func() {
			GinkgoT().Setenv("GEMINI_API_KEY", "env")
			Expect(provider.ResolveAPIKey(provider.Config{Provider: "gemini"})).To(Equal("env"))
		})
	})

	Describe("New", func() {
		It("defaults to OpenAI", func() {
			c, err := provider.New(ctx, provider.Config{APIKey: "sk", Logger: logger.Nop()})
			Expect(err).NotTo(HaveOccurred())
			Expect(c).To(BeAssignableToTypeOf(&openai.Client{}))
		})

		It("builds Anthropic from stored credentials", func() {
			Expect(credMgr.SetKey("anthropic", "sk-ant")).To(Succeed())
			c, err := provider.New(ctx, provider.Config{Provider: "anthropic", CredMgr: credMgr, Logger: logger.Nop()})
			Expect(err).NotTo(HaveOccurred())
			Expect(c).To(BeAssignableToTypeOf(&anthropic.Client{}))
		})

		It("builds Ollama without a key", func() {
			c, err := provider.New(ctx, provider.Config{Provider: "ollama", Logger: logger.Nop()})
			Expect(err).NotTo(HaveOccurred())
			Expect(c).To(BeAssignableToTypeOf(&ollama.Client{}))
		})

		It("fails without a key for hosted providers", func() {
			_, err := provider.New(ctx, provider.Config{Provider: "openai", CredMgr: credMgr, Logger: logger.Nop()})
			Expect(err).To(MatchError(ContainSubstring("API key is required")))
		})

		It("rejects unknown providers", func() {
			_, err := provider.New(ctx, provider.Config{Provider: "bard", Logger: logger.Nop()})
			Expect(err).To(MatchError(ContainSubstring(`unknown provider type: "bard"`)))
		})
	})
})
