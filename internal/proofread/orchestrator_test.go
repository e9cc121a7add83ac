package proofread_test

import (
	"context"
	"errors"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/youngsunson/updatev2/common/llm"
	"github.com/youngsunson/updatev2/internal/document"
	"github.com/youngsunson/updatev2/internal/model"
	"github.com/youngsunson/updatev2/internal/proofread"
)

var _ = Describe("Orchestrator", func() {
	var (
		ctx          context.Context
		doc          *flakyDocument
		analyzer     *mockAnalyzer
		recorder     *mockRecorder
		store        *proofread.Store
		orchestrator *proofread.Orchestrator
		cfg          proofread.OrchestratorConfig
		statesMu     sync.Mutex
		states       []proofread.State
	)

	build := func() {
		orchestrator = proofread.NewOrchestrator(cfg, doc, analyzer, store)
	}

	seenStates := func() []proofread.State {
		statesMu.Lock()
		defer statesMu.Unlock()
		return append([]proofread.State(nil), states...)
	}

	BeforeEach(func() {
		ctx = context.Background()
		doc = &flakyDocument{Memory: document.NewMemory("আমি স্কুলে যাব।")}
		analyzer = newMockAnalyzer()
		recorder = &mockRecorder{}
		store = proofread.NewStore()
		states = nil
		cfg = proofread.OrchestratorConfig{
			SessionID:   42,
			Credentials: staticCredentials{key: "test-key", model: "gemini-1.5-pro"},
			Recorder:    recorder,
			OnState: func(s proofread.State) {
				statesMu.Lock()
				states = append(states, s)
				statesMu.Unlock()
			},
		}
		build()
	})

	Describe("Run", func() {
		Context("clean text with no optional categories", func() {
			It("computes stats and runs only correctness and content", func() {
				result, err := orchestrator.Run(ctx, model.TaskConfig{})

				Expect(err).NotTo(HaveOccurred())
				Expect(result.Stats).To(Equal(model.Stats{TotalWords: 3, ErrorCount: 0, Accuracy: 100}))
				Expect(result.Status).To(Equal(model.RunSucceeded))
				Expect(analyzer.schemas()).To(Equal([]string{"correctness", "content"}))
				Expect(result.Stages).To(Equal([]model.StageOutcome{
					{Stage: "correctness", Status: model.StageSucceeded},
					{Stage: "tone", Status: model.StageSkipped},
					{Stage: "style", Status: model.StageSkipped},
					{Stage: "content", Status: model.StageSucceeded},
				}))
				Expect(result.Suggestions.Content).NotTo(BeNil())
				Expect(result.Suggestions.Content.ContentType).To(Equal("চিঠি"))
				Expect(orchestrator.State()).To(Equal(proofread.StateIdle))
			})

			It("passes the configured credential and model on every call", func() {
				_, err := orchestrator.Run(ctx, model.TaskConfig{})
				Expect(err).NotTo(HaveOccurred())

				for _, req := range analyzer.requests {
					Expect(req.APIKey).To(Equal("test-key"))
					Expect(req.Model).To(Equal("gemini-1.5-pro"))
					Expect(req.Schema).NotTo(BeNil())
				}
			})

			It("records the run", func() {
				result, err := orchestrator.Run(ctx, model.TaskConfig{})
				Expect(err).NotTo(HaveOccurred())

				Expect(recorder.runs).To(HaveLen(1))
				run := recorder.runs[0]
				Expect(run.ID).To(Equal(result.RunID))
				Expect(run.SessionID).To(Equal(int64(42)))
				Expect(run.Model).To(Equal("gemini-1.5-pro"))
				Expect(run.ScopeChars).To(Equal(len([]rune("আমি স্কুলে যাব।"))))
				Expect(run.Status).To(Equal(model.RunSucceeded))
				Expect(run.Error).To(BeNil())
			})
		})

		Context("text with a spelling error", func() {
			BeforeEach(func() {
				doc.SetBody("আমি আজ সকালে একটি ভূল করেছি কিন্তু পরে তা শুধরেছি।")
				analyzer.responses["correctness"] = `{"spellingErrors":[{"wrong":"ভূল","suggestions":["ভুল"]}],"punctuationIssues":[],"euphonyImprovements":[]}`
				analyzer.responses["tone"] = `{"toneConversions":[{"current":"করেছি","suggestion":"করিয়াছি","reason":"আনুষ্ঠানিক"}]}`
			})

			It("derives accuracy and lets accepting the fix purge only that entry", func() {
				result, err := orchestrator.Run(ctx, model.TaskConfig{Tone: model.ToneFormal})
				Expect(err).NotTo(HaveOccurred())
				Expect(result.Stats).To(Equal(model.Stats{TotalWords: 10, ErrorCount: 1, Accuracy: 90}))
				Expect(result.Suggestions.Spelling).To(HaveLen(1))
				Expect(result.Suggestions.Tone).To(HaveLen(1))

				applier := proofread.NewApplier(doc, store)
				ok, err := applier.Apply(ctx, "ভূল", "ভুল")
				Expect(err).NotTo(HaveOccurred())
				Expect(ok).To(BeTrue())

				s := store.Snapshot()
				Expect(s.Spelling).To(BeEmpty())
				Expect(s.Tone).To(HaveLen(1))
				Expect(doc.Text()).To(ContainSubstring("একটি ভুল করেছি"))
			})

			It("highlights subjects with their category colour", func() {
				_, err := orchestrator.Run(ctx, model.TaskConfig{Tone: model.ToneFormal})
				Expect(err).NotTo(HaveOccurred())

				colours := map[string]int{}
				for _, h := range doc.Highlights() {
					colours[h.Color]++
				}
				Expect(colours).To(Equal(map[string]int{
					model.CategorySpelling.HighlightColor(): 1,
					model.CategoryTone.HighlightColor():     1,
				}))
			})

			It("clears earlier highlights when a new run starts", func() {
				Expect(doc.SetHighlight(ctx, document.Span{Start: 0, End: 3}, "#000000")).To(Succeed())

				_, err := orchestrator.Run(ctx, model.TaskConfig{})
				Expect(err).NotTo(HaveOccurred())

				for _, h := range doc.Highlights() {
					Expect(h.Color).NotTo(Equal("#000000"))
				}
			})

			It("ignores highlight failures", func() {
				doc.failHighlight = true

				result, err := orchestrator.Run(ctx, model.TaskConfig{})
				Expect(err).NotTo(HaveOccurred())
				Expect(result.Suggestions.Spelling).To(HaveLen(1))
			})

			It("keeps suggestions whose subject is not in the document", func() {
				analyzer.responses["correctness"] = `{"spellingErrors":[{"wrong":"অনুপস্থিত","suggestions":["অনুপস্থিতি"]}]}`

				result, err := orchestrator.Run(ctx, model.TaskConfig{})
				Expect(err).NotTo(HaveOccurred())
				Expect(result.Suggestions.Spelling).To(HaveLen(1))
				Expect(doc.Highlights()).To(BeEmpty())
			})
		})

		Context("all categories enabled", func() {
			It("runs the stages strictly in order", func() {
				result, err := orchestrator.Run(ctx, model.TaskConfig{Tone: model.ToneAcademic, Register: model.RegisterSadhu})

				Expect(err).NotTo(HaveOccurred())
				Expect(analyzer.schemas()).To(Equal([]string{"correctness", "tone", "style", "content"}))
				Expect(result.Stages).To(HaveLen(4))
				Expect(seenStates()).To(Equal([]proofread.State{
					proofread.StateExtracting,
					proofread.StateRunningCorrectness,
					proofread.StateRunningTone,
					proofread.StateRunningStyle,
					proofread.StateRunningContentSummary,
					proofread.StateIdle,
				}))
			})

			It("normalizes task selections", func() {
				_, err := orchestrator.Run(ctx, model.TaskConfig{Tone: " Formal ", Register: "CHOLITO"})
				Expect(err).NotTo(HaveOccurred())
				Expect(analyzer.schemas()).To(Equal([]string{"correctness", "tone", "style", "content"}))
			})
		})

		Context("scope", func() {
			It("analyzes only the selection when one exists", func() {
				doc.SetBody("প্রথম অংশ। দ্বিতীয় অংশ।")
				Expect(doc.SelectText("দ্বিতীয় অংশ।")).To(BeTrue())

				result, err := orchestrator.Run(ctx, model.TaskConfig{})
				Expect(err).NotTo(HaveOccurred())
				Expect(result.Stats.TotalWords).To(Equal(2))
				Expect(analyzer.requests[0].Prompt).To(ContainSubstring("দ্বিতীয় অংশ।"))
				Expect(analyzer.requests[0].Prompt).NotTo(ContainSubstring("প্রথম"))
			})

			It("falls back to the body when the selection cannot be read", func() {
				doc.failSelection = true

				result, err := orchestrator.Run(ctx, model.TaskConfig{})
				Expect(err).NotTo(HaveOccurred())
				Expect(result.Stats.TotalWords).To(Equal(3))
			})

			It("fails with empty scope on a blank document and leaves the store alone", func() {
				doc.SetBody("  \n\t ")
				store.SetTone([]model.ToneSuggestion{{SubjectText: "তুমি", Candidate: "আপনি"}})

				_, err := orchestrator.Run(ctx, model.TaskConfig{})
				Expect(err).To(MatchError(proofread.ErrEmptyScope))
				Expect(proofread.UserVisible(err)).To(BeTrue())
				Expect(analyzer.requests).To(BeEmpty())
				Expect(store.Snapshot().Tone).To(HaveLen(1))
				Expect(recorder.runs).To(BeEmpty())
				Expect(orchestrator.State()).To(Equal(proofread.StateIdle))
			})
		})

		Context("configuration", func() {
			It("requires a credential", func() {
				cfg.Credentials = staticCredentials{key: "  "}
				build()

				_, err := orchestrator.Run(ctx, model.TaskConfig{})
				Expect(err).To(MatchError(proofread.ErrConfigurationMissing))
				Expect(analyzer.requests).To(BeEmpty())
				Expect(seenStates()).To(BeEmpty())
				Expect(orchestrator.Busy()).To(BeFalse())
			})

			It("falls back to the client model when none is configured", func() {
				cfg.Credentials = staticCredentials{key: "k"}
				build()

				_, err := orchestrator.Run(ctx, model.TaskConfig{})
				Expect(err).NotTo(HaveOccurred())
				Expect(analyzer.requests[0].Model).To(Equal(llm.DefaultModel))
			})

			It("rejects an unknown tone", func() {
				_, err := orchestrator.Run(ctx, model.TaskConfig{Tone: "sarcastic"})
				Expect(err).To(MatchError(proofread.ErrInvalidTask))
				Expect(orchestrator.Busy()).To(BeFalse())
				Expect(seenStates()).To(BeEmpty())
			})
		})

		Context("correctness failure", func() {
			It("aborts with analysis unavailable after one retry", func() {
				analyzer.errs["correctness"] = errors.New("connection reset")

				result, err := orchestrator.Run(ctx, model.TaskConfig{Tone: model.ToneFormal})
				Expect(result).To(BeNil())
				Expect(err).To(MatchError(proofread.ErrAnalysisUnavailable))
				Expect(analyzer.schemas()).To(Equal([]string{"correctness", "correctness"}))
				Expect(orchestrator.State()).To(Equal(proofread.StateIdle))

				Expect(recorder.runs).To(HaveLen(1))
				Expect(recorder.runs[0].Status).To(Equal(model.RunAborted))
				Expect(recorder.runs[0].Error).NotTo(BeNil())
			})

			It("treats an undecodable payload as unavailable without retrying", func() {
				analyzer.responses["correctness"] = "দুঃখিত, উত্তর দিতে পারছি না।"

				_, err := orchestrator.Run(ctx, model.TaskConfig{})
				Expect(err).To(MatchError(proofread.ErrAnalysisUnavailable))
				Expect(errors.Is(err, proofread.ErrDecode)).To(BeTrue())
				Expect(analyzer.schemas()).To(Equal([]string{"correctness"}))
			})

			It("recovers when the retry succeeds", func() {
				calls := 0
				analyzer.generateFn = func(_ context.Context, req llm.Request) (*llm.Response, error) {
					if req.SchemaName == "correctness" {
						calls++
						if calls == 1 {
							return nil, errors.New("temporary network error")
						}
					}
					return &llm.Response{Content: emptyResponses[req.SchemaName]}, nil
				}

				_, err := orchestrator.Run(ctx, model.TaskConfig{})
				Expect(err).NotTo(HaveOccurred())
				Expect(calls).To(Equal(2))
			})
		})

		Context("optional stage failure", func() {
			It("degrades the stage and keeps the rest of the run", func() {
				analyzer.responses["correctness"] = `{"spellingErrors":[{"wrong":"স্কুলে","suggestions":["ইস্কুলে"]}]}`
				analyzer.responses["tone"] = "not json"

				result, err := orchestrator.Run(ctx, model.TaskConfig{Tone: model.ToneFriendly, Register: model.RegisterCholito})
				Expect(err).NotTo(HaveOccurred())
				Expect(result.Status).To(Equal(model.RunPartial))
				Expect(result.Stages[1].Stage).To(Equal("tone"))
				Expect(result.Stages[1].Status).To(Equal(model.StageDegraded))
				Expect(result.Stages[2].Status).To(Equal(model.StageSucceeded))
				Expect(result.Suggestions.Spelling).To(HaveLen(1))
				Expect(result.Suggestions.Tone).To(BeEmpty())
				Expect(analyzer.schemas()).To(Equal([]string{"correctness", "tone", "style", "content"}))
			})

			It("keeps earlier categories and the content summary when style fails", func() {
				analyzer.responses["correctness"] = `{"spellingErrors":[{"wrong":"স্কুলে","suggestions":["ইস্কুলে"]}]}`
				analyzer.responses["tone"] = `{"toneConversions":[{"current":"যাব","suggestion":"যাইব"}]}`
				analyzer.errs["style"] = errors.New("upstream 503")

				result, err := orchestrator.Run(ctx, model.TaskConfig{Tone: model.ToneFormal, Register: model.RegisterSadhu})
				Expect(err).NotTo(HaveOccurred())
				Expect(result.Status).To(Equal(model.RunPartial))
				Expect(result.Stages[2]).To(Equal(model.StageOutcome{Stage: "style", Status: model.StageDegraded, Error: result.Stages[2].Error}))
				Expect(result.Stages[2].Error).To(ContainSubstring("upstream 503"))
				Expect(result.Stages[3]).To(Equal(model.StageOutcome{Stage: "content", Status: model.StageSucceeded}))

				Expect(result.Suggestions.Spelling).To(HaveLen(1))
				Expect(result.Suggestions.Tone).To(HaveLen(1))
				Expect(result.Suggestions.Style).To(BeEmpty())
				Expect(result.Suggestions.Content).NotTo(BeNil())
				Expect(store.Snapshot().Tone).To(HaveLen(1))
			})

			It("ignores a failing content summary", func() {
				analyzer.errs["content"] = errors.New("unavailable")

				result, err := orchestrator.Run(ctx, model.TaskConfig{})
				Expect(err).NotTo(HaveOccurred())
				Expect(result.Status).To(Equal(model.RunPartial))
				Expect(result.Suggestions.Content).To(BeNil())
			})

			It("logs recorder failures without failing the run", func() {
				recorder.err = errors.New("db down")

				_, err := orchestrator.Run(ctx, model.TaskConfig{})
				Expect(err).NotTo(HaveOccurred())
			})
		})

		Context("concurrency", func() {
			It("rejects a second run while one is active", func() {
				release := make(chan struct{})
				started := make(chan struct{})
				analyzer.generateFn = func(_ context.Context, req llm.Request) (*llm.Response, error) {
					if req.SchemaName == "correctness" {
						close(started)
						<-release
					}
					return &llm.Response{Content: emptyResponses[req.SchemaName]}, nil
				}

				done := make(chan error, 1)
				go func() {
					defer GinkgoRecover()
					_, err := orchestrator.Run(ctx, model.TaskConfig{})
					done <- err
				}()

				Eventually(started).Should(BeClosed())
				Expect(orchestrator.Busy()).To(BeTrue())
				Expect(orchestrator.State()).To(Equal(proofread.StateRunningCorrectness))

				_, err := orchestrator.Run(ctx, model.TaskConfig{})
				Expect(err).To(MatchError(proofread.ErrRunInProgress))

				close(release)
				Eventually(done).Should(Receive(BeNil()))
				Expect(orchestrator.Busy()).To(BeFalse())
			})

			It("refuses exclusive edits while a run is active", func() {
				release := make(chan struct{})
				started := make(chan struct{})
				analyzer.generateFn = func(_ context.Context, req llm.Request) (*llm.Response, error) {
					if req.SchemaName == "correctness" {
						close(started)
						<-release
					}
					return &llm.Response{Content: emptyResponses[req.SchemaName]}, nil
				}

				done := make(chan error, 1)
				go func() {
					defer GinkgoRecover()
					_, err := orchestrator.Run(ctx, model.TaskConfig{})
					done <- err
				}()
				Eventually(started).Should(BeClosed())

				called := false
				err := orchestrator.Exclusive(func() error {
					called = true
					return nil
				})
				Expect(err).To(MatchError(proofread.ErrRunInProgress))
				Expect(called).To(BeFalse())

				close(release)
				Eventually(done).Should(Receive(BeNil()))
			})

			It("keeps runs out while an exclusive edit holds the session", func() {
				var runErr error
				err := orchestrator.Exclusive(func() error {
					Expect(orchestrator.Busy()).To(BeTrue())
					Expect(orchestrator.State()).To(Equal(proofread.StateIdle))
					_, runErr = orchestrator.Run(ctx, model.TaskConfig{})
					return errors.New("edit failed")
				})

				Expect(err).To(MatchError("edit failed"))
				Expect(runErr).To(MatchError(proofread.ErrRunInProgress))
				Expect(analyzer.requests).To(BeEmpty())
				Expect(orchestrator.Busy()).To(BeFalse())
			})
		})
	})
})

var _ = Describe("Notice", func() {
	DescribeTable("maps user-visible errors to messages",
		func(err error, visible bool) {
			Expect(proofread.UserVisible(err)).To(Equal(visible))
			if visible {
				Expect(proofread.Notice(err)).NotTo(BeEmpty())
			} else {
				Expect(proofread.Notice(err)).To(BeEmpty())
			}
		},
		Entry("missing configuration", proofread.ErrConfigurationMissing, true),
		Entry("empty scope", proofread.ErrEmptyScope, true),
		Entry("wrapped analysis failure", errors.Join(proofread.ErrAnalysisUnavailable, errors.New("x")), true),
		Entry("mutation not found", proofread.ErrMutationNotFound, true),
		Entry("decode failure stays internal", proofread.ErrDecode, false),
		Entry("host failure stays internal", errHost, false),
	)
})
