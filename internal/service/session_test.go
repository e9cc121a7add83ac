package service_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/youngsunson/updatev2/common/llm"
	"github.com/youngsunson/updatev2/internal/model"
	"github.com/youngsunson/updatev2/internal/proofread"
	"github.com/youngsunson/updatev2/internal/service"
	"github.com/youngsunson/updatev2/internal/settings"
)

const letter = "আমি আজ সকালে একটি ভূল করেছি কিন্তু পরে তা শুধরেছি।"

var _ = Describe("SessionService", func() {
	var (
		ctx      context.Context
		analyzer *mockAnalyzer
		saved    *memorySettings
		live     *settings.Live
		runs     *mockRunStore
		sessions service.SessionService
	)

	BeforeEach(func() {
		ctx = context.Background()
		analyzer = newMockAnalyzer()
		saved = &memorySettings{current: settings.Settings{APIKey: "key", Model: "gemini-2.0-flash", Tone: model.ToneFormal}}
		var err error
		live, err = settings.NewLive(ctx, saved, "")
		Expect(err).NotTo(HaveOccurred())
		runs = &mockRunStore{}
		sessions = service.NewSessionService(analyzer, live, runs)
	})

	It("creates, fetches and deletes sessions", func() {
		sess, err := sessions.Create(ctx, letter, "")
		Expect(err).NotTo(HaveOccurred())

		got, err := sessions.Get(ctx, sess.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(got.View().Body).To(Equal(letter))
		Expect(got.View().State).To(Equal(proofread.StateIdle))
		Expect(got.View().Stats).To(BeNil())

		Expect(sessions.Delete(ctx, sess.ID)).To(Succeed())
		_, err = sessions.Get(ctx, sess.ID)
		Expect(err).To(MatchError(service.ErrSessionNotFound))
		Expect(sessions.Delete(ctx, sess.ID)).To(MatchError(service.ErrSessionNotFound))
	})

	It("uses saved default selections when the check names none", func() {
		sess, err := sessions.Create(ctx, letter, "")
		Expect(err).NotTo(HaveOccurred())

		result, err := sessions.Check(ctx, sess.ID, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Stats.Accuracy).To(Equal(90))
		Expect(analyzer.calls).To(Equal([]string{"correctness", "tone", "content"}))

		view := sess.View()
		Expect(view.Stats).NotTo(BeNil())
		Expect(view.Suggestions.Spelling).To(HaveLen(1))
		Expect(view.Highlights).NotTo(BeEmpty())
	})

	It("honours an explicit task", func() {
		sess, err := sessions.Create(ctx, letter, "")
		Expect(err).NotTo(HaveOccurred())

		_, err = sessions.Check(ctx, sess.ID, &model.TaskConfig{Register: model.RegisterCholito})
		Expect(err).NotTo(HaveOccurred())
		Expect(analyzer.calls).To(Equal([]string{"correctness", "style", "content"}))
	})

	It("accepts and dismisses suggestions", func() {
		sess, err := sessions.Create(ctx, letter, "")
		Expect(err).NotTo(HaveOccurred())
		_, err = sessions.Check(ctx, sess.ID, nil)
		Expect(err).NotTo(HaveOccurred())

		_, err = sessions.Accept(ctx, sess.ID, "ভূল", "ভুল")
		Expect(err).NotTo(HaveOccurred())
		Expect(sess.View().Body).To(ContainSubstring("একটি ভুল"))
		Expect(sess.View().Suggestions.Spelling).To(BeEmpty())

		_, err = sessions.Dismiss(ctx, sess.ID, model.CategoryTone, "করেছি")
		Expect(err).NotTo(HaveOccurred())
		Expect(sess.View().Suggestions.Tone).To(BeEmpty())

		_, err = sessions.Accept(ctx, sess.ID, "অনুপস্থিত", "x")
		Expect(err).To(MatchError(proofread.ErrMutationNotFound))
	})

	Context("while a check is running", func() {
		var (
			sess    *service.Session
			release chan struct{}
			done    chan error
		)

		BeforeEach(func() {
			var err error
			sess, err = sessions.Create(ctx, "একটি ভূল কথা", "")
			Expect(err).NotTo(HaveOccurred())

			release = make(chan struct{})
			started := make(chan struct{})
			analyzer.generateFn = func(_ context.Context, req llm.Request) (*llm.Response, error) {
				if req.SchemaName == "correctness" {
					close(started)
					<-release
				}
				return &llm.Response{Content: analyzer.responses[req.SchemaName]}, nil
			}

			done = make(chan error, 1)
			go func() {
				defer GinkgoRecover()
				_, err := sessions.Check(ctx, sess.ID, &model.TaskConfig{})
				done <- err
			}()
			Eventually(started).Should(BeClosed())
			Expect(sess.View().Busy).To(BeTrue())
		})

		It("refuses to accept and leaves no stale suggestion behind", func() {
			_, err := sessions.Accept(ctx, sess.ID, "ভূল", "ভুল")
			Expect(err).To(MatchError(proofread.ErrRunInProgress))

			close(release)
			Eventually(done).Should(Receive(BeNil()))

			view := sess.View()
			Expect(view.Body).To(Equal("একটি ভূল কথা"))
			Expect(view.Suggestions.Spelling).To(HaveLen(1))
			Expect(view.Busy).To(BeFalse())

			_, err = sessions.Accept(ctx, sess.ID, "ভূল", "ভুল")
			Expect(err).NotTo(HaveOccurred())
			Expect(sess.View().Body).To(Equal("একটি ভুল কথা"))
			Expect(sess.View().Suggestions.Spelling).To(BeEmpty())
		})

		It("refuses dismissals and document re-syncs", func() {
			_, err := sessions.Dismiss(ctx, sess.ID, model.CategorySpelling, "ভূল")
			Expect(err).To(MatchError(proofread.ErrRunInProgress))

			_, err = sessions.UpdateDocument(ctx, sess.ID, "নতুন লেখা", "")
			Expect(err).To(MatchError(proofread.ErrRunInProgress))

			close(release)
			Eventually(done).Should(Receive(BeNil()))
			Expect(sess.View().Body).To(Equal("একটি ভূল কথা"))
		})
	})

	It("checks only the selection when one is given", func() {
		sess, err := sessions.Create(ctx, "প্রথম অংশ। দ্বিতীয় অংশ।", "দ্বিতীয় অংশ।")
		Expect(err).NotTo(HaveOccurred())

		result, err := sessions.Check(ctx, sess.ID, &model.TaskConfig{})
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Stats.TotalWords).To(Equal(2))
	})

	It("re-syncs the document without dropping suggestions", func() {
		sess, err := sessions.Create(ctx, letter, "")
		Expect(err).NotTo(HaveOccurred())
		_, err = sessions.Check(ctx, sess.ID, nil)
		Expect(err).NotTo(HaveOccurred())

		_, err = sessions.UpdateDocument(ctx, sess.ID, "নতুন লেখা", "")
		Expect(err).NotTo(HaveOccurred())
		Expect(sess.View().Body).To(Equal("নতুন লেখা"))
		Expect(sess.View().Suggestions.Spelling).To(HaveLen(1))
	})

	It("lists recorded runs for the session", func() {
		sess, err := sessions.Create(ctx, letter, "")
		Expect(err).NotTo(HaveOccurred())
		result, err := sessions.Check(ctx, sess.ID, nil)
		Expect(err).NotTo(HaveOccurred())

		list, err := sessions.Runs(ctx, sess.ID, 10)
		Expect(err).NotTo(HaveOccurred())
		Expect(list).To(HaveLen(1))
		Expect(list[0].ID).To(Equal(result.RunID))
		Expect(list[0].SessionID).To(Equal(sess.ID))
	})

	It("returns an empty history when runs are not persisted", func() {
		sessions = service.NewSessionService(analyzer, live, nil)
		sess, err := sessions.Create(ctx, letter, "")
		Expect(err).NotTo(HaveOccurred())

		list, err := sessions.Runs(ctx, sess.ID, 10)
		Expect(err).NotTo(HaveOccurred())
		Expect(list).To(BeEmpty())
	})

	It("surfaces a missing credential", func() {
		saved.current = settings.Settings{}
		live, err := settings.NewLive(ctx, saved, "")
		Expect(err).NotTo(HaveOccurred())
		sessions = service.NewSessionService(analyzer, live, nil)

		sess, err := sessions.Create(ctx, letter, "")
		Expect(err).NotTo(HaveOccurred())
		_, err = sessions.Check(ctx, sess.ID, nil)
		Expect(err).To(MatchError(proofread.ErrConfigurationMissing))
	})
})

var _ = Describe("SettingsService", func() {
	var (
		ctx   context.Context
		saved *memorySettings
		svc   service.SettingsService
	)

	BeforeEach(func() {
		ctx = context.Background()
		saved = &memorySettings{current: settings.Settings{APIKey: "AIzaSecretKey123", Model: "gemini-2.0-flash"}}
		live, err := settings.NewLive(ctx, saved, "")
		Expect(err).NotTo(HaveOccurred())
		svc = service.NewSettingsService(live)
	})

	It("masks the key", func() {
		Expect(svc.Get(ctx).APIKey).To(Equal("AIza********y123"))
	})

	It("keeps the saved key when an update omits it", func() {
		out, err := svc.Update(ctx, settings.Settings{Model: "gemini-1.5-pro"})
		Expect(err).NotTo(HaveOccurred())
		Expect(out.Model).To(Equal("gemini-1.5-pro"))
		Expect(saved.current.APIKey).To(Equal("AIzaSecretKey123"))
	})

	It("rejects unsupported models", func() {
		_, err := svc.Update(ctx, settings.Settings{Model: "gpt-9"})
		Expect(err).To(MatchError(settings.ErrInvalid))
	})
})
