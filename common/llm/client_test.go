package llm_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/youngsunson/updatev2/common/llm"
)

type sampleBatch struct {
	Items []string `json:"items" jsonschema:"required"`
}

var _ = Describe("Client", func() {
	var (
		server      *httptest.Server
		status      int
		reply       string
		lastBody    map[string]any
		lastAuth    string
		requestSeen int
	)

	BeforeEach(func() {
		status = http.StatusOK
		reply = `{"items":["a"]}`
		lastBody = nil
		lastAuth = ""
		requestSeen = 0

		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestSeen++
			lastAuth = r.Header.Get("Authorization")
			raw, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(raw, &lastBody)

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			if status != http.StatusOK {
				_, _ = w.Write([]byte(`{"error":{"message":"boom","type":"server_error"}}`))
				return
			}
			content, _ := json.Marshal(reply)
			_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","created":1,"model":"gemini-2.0-flash",` +
				`"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":` + string(content) + `}}],` +
				`"usage":{"prompt_tokens":11,"completion_tokens":5,"total_tokens":16}}`))
		}))
	})

	AfterEach(func() {
		server.Close()
	})

	newClient := func(format string) llm.Client {
		c, err := llm.New(llm.Config{
			APIKey:         "default-key",
			BaseURL:        server.URL + "/",
			ResponseFormat: format,
		})
		Expect(err).NotTo(HaveOccurred())
		return c
	}

	It("defaults to the gemini flash model", func() {
		Expect(newClient(llm.FormatJSONObject).Model()).To(Equal(llm.DefaultModel))
	})

	It("rejects unknown response formats", func() {
		_, err := llm.New(llm.Config{ResponseFormat: "xml"})
		Expect(err).To(HaveOccurred())
	})

	It("returns raw content and token usage", func() {
		resp, err := newClient(llm.FormatJSONObject).Generate(context.Background(), llm.Request{Prompt: "check"})

		Expect(err).NotTo(HaveOccurred())
		Expect(resp.Content).To(Equal(`{"items":["a"]}`))
		Expect(resp.PromptTokens).To(Equal(11))
		Expect(resp.CompletionTokens).To(Equal(5))
		Expect(lastBody["response_format"]).To(HaveKeyWithValue("type", "json_object"))
	})

	It("uses the per-request credential and model", func() {
		_, err := newClient(llm.FormatJSONObject).Generate(context.Background(), llm.Request{
			Prompt: "check",
			APIKey: "user-key",
			Model:  "gemini-1.5-pro",
		})

		Expect(err).NotTo(HaveOccurred())
		Expect(lastAuth).To(Equal("Bearer user-key"))
		Expect(lastBody["model"]).To(Equal("gemini-1.5-pro"))
	})

	It("sends the schema in json_schema mode", func() {
		_, err := newClient(llm.FormatJSONSchema).Generate(context.Background(), llm.Request{
			Prompt:     "check",
			SchemaName: "sample_batch",
			Schema:     llm.GenerateSchema[sampleBatch](),
		})

		Expect(err).NotTo(HaveOccurred())
		format, ok := lastBody["response_format"].(map[string]any)
		Expect(ok).To(BeTrue())
		Expect(format["type"]).To(Equal("json_schema"))
		Expect(format["json_schema"]).To(HaveKeyWithValue("name", "sample_batch"))
	})

	It("omits response_format in text mode", func() {
		_, err := newClient(llm.FormatText).Generate(context.Background(), llm.Request{Prompt: "check"})

		Expect(err).NotTo(HaveOccurred())
		Expect(lastBody).NotTo(HaveKey("response_format"))
	})

	It("reports no content for an empty answer", func() {
		reply = ""
		_, err := newClient(llm.FormatJSONObject).Generate(context.Background(), llm.Request{Prompt: "check"})

		Expect(err).To(MatchError(llm.ErrNoContent))
		Expect(llm.IsRetryable(context.Background(), err)).To(BeFalse())
	})

	It("does not retry on its own and classifies server errors as retryable", func() {
		status = http.StatusInternalServerError
		_, err := newClient(llm.FormatJSONObject).Generate(context.Background(), llm.Request{Prompt: "check"})

		Expect(err).To(HaveOccurred())
		Expect(requestSeen).To(Equal(1))
		Expect(llm.IsRetryable(context.Background(), err)).To(BeTrue())
	})

	It("treats bad requests as not retryable", func() {
		status = http.StatusBadRequest
		_, err := newClient(llm.FormatJSONObject).Generate(context.Background(), llm.Request{Prompt: "check"})

		Expect(err).To(HaveOccurred())
		Expect(llm.IsRetryable(context.Background(), err)).To(BeFalse())
	})
})

var _ = Describe("IsRetryable", func() {
	It("is false for nil and cancelled contexts", func() {
		Expect(llm.IsRetryable(context.Background(), nil)).To(BeFalse())
		Expect(llm.IsRetryable(context.Background(), context.Canceled)).To(BeFalse())
	})
})

var _ = Describe("GenerateSchema", func() {
	It("inlines required properties", func() {
		data, err := json.Marshal(llm.GenerateSchema[sampleBatch]())
		Expect(err).NotTo(HaveOccurred())
		Expect(string(data)).To(ContainSubstring(`"items"`))
		Expect(string(data)).NotTo(ContainSubstring(`"$ref"`))
	})
})

var _ = Describe("IsSupportedModel", func() {
	DescribeTable("recognises the offered models",
		func(model string, want bool) {
			Expect(llm.IsSupportedModel(model)).To(Equal(want))
		},
		Entry("flash 2.0", "gemini-2.0-flash", true),
		Entry("pro 1.5", "gemini-1.5-pro", true),
		Entry("unknown", "gpt-4o", false),
		Entry("empty", "", false),
	)
})
