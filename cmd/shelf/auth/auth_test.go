package authcmder_test

import (
	"bytes"
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/cobra"

	authcmder "github.com/papercomputeco/shelf/cmd/shelf/auth"
	"github.com/papercomputeco/shelf/pkg/credentials"
)

func newAuthCmd(out *bytes.Buffer) *cobra.Command {
	cmd := authcmder.NewAuthCmd()
	cmd.SetOut(out)
	cmd.PersistentFlags().String("config-dir", "", "Override path to .shelf/ config directory")
	return cmd
}

var _ = Describe("Auth Command", func() {
	var (
		tmpDir string
		out    *bytes.Buffer
	)

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "shelf-auth-test-*")
		Expect(err).NotTo(HaveOccurred())
		out = &bytes.Buffer{}
	})

	AfterEach(func() {
		os.RemoveAll(tmpDir)
	})

	Describe("NewAuthCmd", func() {
		It("creates a command with expected properties", func() {
			cmd := authcmder.NewAuthCmd()
			Expect(cmd.Use).To(Equal("auth [provider]"))
			Expect(cmd.Short).NotTo(BeEmpty())
			Expect(cmd.Flags().Lookup("list")).NotTo(BeNil())
			Expect(cmd.Flags().Lookup("remove")).NotTo(BeNil())
		})
	})

	Describe("storing a key", func() {
		It("reads a piped key and stores it", func() {
			cmd := newAuthCmd(out)
			cmd.SetIn(bytes.NewBufferString("  sk-test  \n"))
			cmd.SetArgs([]string{"openai", "--config-dir", tmpDir})

			Expect(cmd.Execute()).To(Succeed())

			mgr, err := credentials.NewManager(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			key, err := mgr.GetKey("openai")
			Expect(err).NotTo(HaveOccurred())
			Expect(key).To(Equal("sk-test"))
			Expect(out.String()).To(ContainSubstring("OPENAI_API_KEY"))
		})

		It("normalizes the provider name", func() {
			cmd := newAuthCmd(out)
			cmd.SetIn(bytes.NewBufferString("gm-key\n"))
			cmd.SetArgs([]string{"Gemini", "--config-dir", tmpDir})

			Expect(cmd.Execute()).To(Succeed())

			mgr, err := credentials.NewManager(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(mgr.GetKey("gemini")).To(Equal("gm-key"))
		})

		It("rejects an empty key", func() {
			cmd := newAuthCmd(out)
			cmd.SetIn(bytes.NewBufferString("   \n"))
			cmd.SetArgs([]string{"openai", "--config-dir", tmpDir})

			err := cmd.Execute()
			Expect(err).To(MatchError(ContainSubstring("API key cannot be empty")))
		})

		It("rejects missing input", func() {
			cmd := newAuthCmd(out)
			cmd.SetIn(bytes.NewBufferString(""))
			cmd.SetArgs([]string{"openai", "--config-dir", tmpDir})

			err := cmd.Execute()
			Expect(err).To(MatchError(ContainSubstring("no input received")))
		})
	})

	Describe("--list flag", func() {
		It("shows no credentials when none stored", func() {
			cmd := newAuthCmd(out)
			cmd.SetArgs([]string{"--list", "--config-dir", tmpDir})

			Expect(cmd.Execute()).To(Succeed())
			Expect(out.String()).To(ContainSubstring("No stored credentials."))
		})

		It("lists stored credentials", func() {
			mgr, err := credentials.NewManager(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(mgr.SetKey("anthropic", "sk-ant")).To(Succeed())

			cmd := newAuthCmd(out)
			cmd.SetArgs([]string{"--list", "--config-dir", tmpDir})

			Expect(cmd.Execute()).To(Succeed())
			Expect(out.String()).To(ContainSubstring("anthropic"))
			Expect(out.String()).To(ContainSubstring("ANTHROPIC_API_KEY"))
		})
	})

	Describe("--remove flag", func() {
		It("removes stored credentials", func() {
			mgr, err := credentials.NewManager(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(mgr.SetKey("openai", "sk-test")).To(Succeed())

			cmd := newAuthCmd(out)
			cmd.SetArgs([]string{"--remove", "openai", "--config-dir", tmpDir})

			Expect(cmd.Execute()).To(Succeed())

			key, err := mgr.GetKey("openai")
			Expect(err).NotTo(HaveOccurred())
			Expect(key).To(BeEmpty())
		})
	})

	Describe("provider argument validation", func() {
		It("returns error when no provider given", func() {
			cmd := newAuthCmd(out)
			cmd.SetArgs([]string{})

			err := cmd.Execute()
			Expect(err).To(MatchError(ContainSubstring("provider argument required")))
		})

		It("returns error for unsupported provider", func() {
			cmd := newAuthCmd(out)
			cmd.SetIn(bytes.NewBufferString("sk-test\n"))
			cmd.SetArgs([]string{"ollama", "--config-dir", tmpDir})

			err := cmd.Execute()
			Expect(err).To(MatchError(ContainSubstring("unsupported provider")))
		})
	})
})
