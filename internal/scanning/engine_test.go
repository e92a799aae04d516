package scanning

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("New", func() {
	It("defaults to tesseract", func() {
		s, err := New(Config{})
		Expect(err).NotTo(HaveOccurred())
		Expect(s.Name()).To(Equal(EngineTesseract))
	})

	It("passes languages to tesseract", func() {
		s, err := New(Config{Engine: EngineTesseract, TesseractLanguages: []string{"eng", "deu"}})
		Expect(err).NotTo(HaveOccurred())
		Expect(s.(*Tesseract).languages).To(Equal([]string{"eng", "deu"}))
	})

	It("builds an ollama scanner", func() {
		s, err := New(Config{Engine: EngineOllama, OllamaURL: "http://ollama:11434/", OllamaModel: "qwen2-vl"})
		Expect(err).NotTo(HaveOccurred())
		o := s.(*Ollama)
		Expect(o.baseURL).To(Equal("http://ollama:11434"))
		Expect(o.model).To(Equal("qwen2-vl"))
	})

	It("requires a gemini key", func() {
		GinkgoT().Setenv("GEMINI_API_KEY", "")
		_, err := New(Config{Engine: EngineGemini})
		Expect(err).To(MatchError(ContainSubstring("api key is required")))
	})

	It("rejects unknown engines", func() {
		_, err := New(Config{Engine: "textract"})
		Expect(err).To(MatchError(ContainSubstring(`unknown scanner "textract"`)))
	})
})
