package chatcmder

import (
	"context"
	"errors"

	bubbletea "github.com/charmbracelet/bubbletea"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/shelf/pkg/dotdir"
	"github.com/papercomputeco/shelf/pkg/logger"
)

type fakeAsker struct {
	answer string
	err    error
	asked  []string
}

func (f *fakeAsker) Ask(_ context.Context, message string) (string, error) {
	f.asked = append(f.asked, message)
	return f.answer, f.err
}

// runCmd executes cmd and returns the first answerMsg it yields, unpacking
// batches.
func runCmd(cmd bubbletea.Cmd) (answerMsg, bool) {
	if cmd == nil {
		return answerMsg{}, false
	}
	switch msg := cmd().(type) {
	case answerMsg:
		return msg, true
	case bubbletea.BatchMsg:
		for _, c := range msg {
			if a, ok := runCmd(c); ok {
				return a, true
			}
		}
	}
	return answerMsg{}, false
}

func typeText(m chatModel, text string) chatModel {
	m.input.SetValue(text)
	return m
}

func enter(m chatModel) (chatModel, bubbletea.Cmd) {
	updated, cmd := m.Update(bubbletea.KeyMsg{Type: bubbletea.KeyEnter})
	return updated.(chatModel), cmd
}

var _ = Describe("NewChatCmd", func() {
	It("creates a command with the correct use string", func() {
		cmd := NewChatCmd()
		Expect(cmd.Use).To(Equal("chat"))
	})

	It("has --api-target and --new flags", func() {
		cmd := NewChatCmd()
		Expect(cmd.Flags().Lookup("api-target").DefValue).To(Equal("http://localhost:8080"))
		Expect(cmd.Flags().Lookup("new")).NotTo(BeNil())
	})
})

var _ = Describe("chatModel", func() {
	var (
		api     *fakeAsker
		saved   []*dotdir.ChatHistory
		cleared int
		model   chatModel
	)

	BeforeEach(func() {
		api = &fakeAsker{answer: "We have **two** laptops."}
		saved = nil
		cleared = 0
		store := historyStore{
			save: func(h *dotdir.ChatHistory) error {
				snapshot := *h
				saved = append(saved, &snapshot)
				return nil
			},
			clear: func() error {
				cleared++
				return nil
			},
		}
		model = newChatModel(context.Background(), api, store, &dotdir.ChatHistory{}, "http://localhost:8080", logger.Nop())
	})

	It("ignores blank input", func() {
		m, cmd := enter(typeText(model, "   "))
		Expect(cmd).To(BeNil())
		Expect(m.waiting).To(BeFalse())
		Expect(api.asked).To(BeEmpty())
	})

	It("asks the API and records the exchange", func() {
		m, cmd := enter(typeText(model, "laptops?"))
		Expect(m.waiting).To(BeTrue())
		Expect(m.input.Value()).To(BeEmpty())

		msg, ok := runCmd(cmd)
		Expect(ok).To(BeTrue())
		Expect(api.asked).To(Equal([]string{"laptops?"}))

		updated, _ := m.Update(msg)
		m = updated.(chatModel)
		Expect(m.waiting).To(BeFalse())
		Expect(m.history.Messages).To(Equal([]dotdir.ChatMessage{
			{Role: roleUser, Content: "laptops?"},
			{Role: roleAssistant, Content: "We have **two** laptops."},
		}))
		Expect(saved).To(HaveLen(1))
		Expect(m.transcript()).To(ContainSubstring("laptops?"))
	})

	It("keeps the transcript unchanged when the API fails", func() {
		api.err = errors.New("request failed (HTTP 503): chat is not configured")

		m, cmd := enter(typeText(model, "laptops?"))
		msg, ok := runCmd(cmd)
		Expect(ok).To(BeTrue())

		updated, _ := m.Update(msg)
		m = updated.(chatModel)
		Expect(m.lastErr).To(MatchError(ContainSubstring("chat is not configured")))
		Expect(m.history.Messages).To(BeEmpty())
		Expect(saved).To(BeEmpty())
		Expect(m.View()).To(ContainSubstring("chat is not configured"))
	})

	It("does not send while an answer is pending", func() {
		m, _ := enter(typeText(model, "first"))
		m, cmd := enter(typeText(m, "second"))
		Expect(cmd).To(BeNil())
		Expect(api.asked).To(BeEmpty())
	})

	It("clears the transcript with /clear", func() {
		model.history.Messages = []dotdir.ChatMessage{{Role: roleUser, Content: "old"}}

		m, cmd := enter(typeText(model, "/clear"))
		Expect(cmd).To(BeNil())
		Expect(m.history.Messages).To(BeEmpty())
		Expect(cleared).To(Equal(1))
		Expect(m.transcript()).To(ContainSubstring("No messages yet."))
	})

	It("quits with /exit", func() {
		_, cmd := enter(typeText(model, "/exit"))
		Expect(cmd).NotTo(BeNil())
		Expect(cmd()).To(Equal(bubbletea.Quit()))
	})

	It("sizes the transcript to the window", func() {
		updated, _ := model.Update(bubbletea.WindowSizeMsg{Width: 100, Height: 30})
		m := updated.(chatModel)
		Expect(m.viewport.Width).To(Equal(100))
		Expect(m.viewport.Height).To(Equal(30 - headerHeight - footerHeight))
	})
})
