package scanning

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/ghttp"
)

var _ = Describe("Ollama", func() {
	var (
		server  *ghttp.Server
		scanner *Ollama
		text    string
		err     error
	)

	BeforeEach(func() {
		server = ghttp.NewServer()
		var newErr error
		scanner, newErr = NewOllama(server.URL()+"/", "llava")
		Expect(newErr).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		server.Close()
	})

	JustBeforeEach(func() {
		text, err = scanner.ScanText(context.Background(), []byte("png bytes"), "image/png")
	})

	When("the model answers", func() {
		var received ollamaChatRequest

		BeforeEach(func() {
			server.AppendHandlers(ghttp.CombineHandlers(
				ghttp.VerifyRequest(http.MethodPost, "/api/chat"),
				ghttp.VerifyContentType("application/json"),
				func(w http.ResponseWriter, r *http.Request) {
					_ = json.NewDecoder(r.Body).Decode(&received)
				},
				ghttp.RespondWithJSONEncoded(http.StatusOK, ollamaChatResponse{
					Message: ollamaMessage{Role: "assistant", Content: "```\nBIG MART\nMilk $2.49\n```"},
					Done:    true,
				}),
			))
		})

		It("returns the cleaned transcript", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(text).To(Equal("BIG MART\nMilk $2.49"))
		})

		It("sends the image on the user message", func() {
			Expect(received.Model).To(Equal("llava"))
			Expect(received.Stream).To(BeFalse())
			Expect(received.Messages).To(HaveLen(2))
			Expect(received.Messages[1].Images).To(ConsistOf(base64.StdEncoding.EncodeToString([]byte("png bytes"))))
		})
	})

	When("the API returns an error status", func() {
		BeforeEach(func() {
			server.AppendHandlers(ghttp.RespondWith(http.StatusInternalServerError, "model not loaded"))
		})

		It("returns the error", func() {
			Expect(err).To(MatchError(ContainSubstring("status 500")))
			Expect(err).To(MatchError(ContainSubstring("model not loaded")))
		})
	})

	When("the response is not JSON", func() {
		BeforeEach(func() {
			server.AppendHandlers(ghttp.RespondWith(http.StatusOK, "not json"))
		})

		It("returns the error", func() {
			Expect(err).To(MatchError(ContainSubstring("decoding response")))
		})
	})
})

var _ = Describe("NewOllama", func() {
	It("applies defaults", func() {
		scanner, err := NewOllama("", "")
		Expect(err).NotTo(HaveOccurred())
		Expect(scanner.baseURL).To(Equal("http://localhost:11434"))
		Expect(scanner.model).To(Equal("llava"))
		Expect(scanner.Name()).To(Equal("ollama"))
		Expect(scanner.Close()).To(Succeed())
	})
})

var _ = Describe("NewGemini", func() {
	It("requires an API key", func() {
		_, err := NewGemini("", "")
		Expect(err).To(MatchError("gemini api key is required"))
	})
})

var _ = Describe("Tesseract", func() {
	It("defaults to English", func() {
		Expect(NewTesseract().languages).To(Equal([]string{"eng"}))
		Expect(NewTesseract("eng", "deu").languages).To(Equal([]string{"eng", "deu"}))
	})

	It("reports its name", func() {
		Expect(NewTesseract().Name()).To(Equal("tesseract"))
	})

	It("rejects data that is not an image", func() {
		_, err := NewTesseract().ScanText(context.Background(), []byte("nope"), "image/jpeg")
		Expect(err).To(HaveOccurred())
	})
})
