package handler_test

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/youngsunson/updatev2/internal/http/handler"
	"github.com/youngsunson/updatev2/internal/service"
	"github.com/youngsunson/updatev2/internal/settings"
)

var _ = Describe("SettingsHandler", func() {
	var (
		saved *memorySettings
		r     *gin.Engine
	)

	BeforeEach(func() {
		saved = &memorySettings{current: settings.Settings{
			APIKey: "AIzaSyExampleKey1234",
			Model:  "gemini-2.0-flash",
		}}
		live, err := settings.NewLive(context.Background(), saved, "")
		Expect(err).NotTo(HaveOccurred())

		h := handler.NewSettingsHandler(service.NewSettingsService(live))
		r = gin.New()
		r.GET("/settings", h.Get)
		r.PUT("/settings", h.Update)
	})

	It("never returns the raw key", func() {
		w := do(r, http.MethodGet, "/settings", "")

		Expect(w.Code).To(Equal(http.StatusOK))
		body := decode(w)
		Expect(body["api_key"]).NotTo(Equal("AIzaSyExampleKey1234"))
		Expect(body["api_key"]).To(HavePrefix("AIza"))
		Expect(body["has_api_key"]).To(BeTrue())
		Expect(body["models"]).NotTo(BeEmpty())
	})

	It("keeps the saved key when the update omits it", func() {
		w := do(r, http.MethodPut, "/settings", `{"model":"gemini-1.5-pro","tone":"formal","register":"none"}`)

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(saved.current.APIKey).To(Equal("AIzaSyExampleKey1234"))
		Expect(saved.current.Model).To(Equal("gemini-1.5-pro"))
	})

	It("rejects an unknown tone", func() {
		w := do(r, http.MethodPut, "/settings", `{"tone":"angry"}`)

		Expect(w.Code).To(Equal(http.StatusUnprocessableEntity))
		Expect(saved.current.Tone).To(BeEmpty())
	})
})
