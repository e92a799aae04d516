package receipt

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("LocalStorage", func() {
	var (
		tmpDir  string
		storage Storage
	)

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()
		var err error
		storage, err = NewLocalStorage(filepath.Join(tmpDir, "uploads"))
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("NewLocalStorage", func() {
		It("should create the directory", func() {
			stat, err := os.Stat(filepath.Join(tmpDir, "uploads"))
			Expect(err).NotTo(HaveOccurred())
			Expect(stat.IsDir()).To(BeTrue())
		})
	})

	Describe("Save", func() {
		var (
			filename  string
			savedName string
			err       error
		)

		BeforeEach(func() {
			filename = "test.jpg"
		})

		JustBeforeEach(func() {
			savedName, err = storage.Save(filename, []byte("test file content"))
		})

		When("saving succeeds", func() {
			It("should return the stored name", func() {
				Expect(err).NotTo(HaveOccurred())
				Expect(savedName).To(Equal(filename))
			})

			It("should save the file to disk", func() {
				content, err := os.ReadFile(filepath.Join(tmpDir, "uploads", filename))
				Expect(err).NotTo(HaveOccurred())
				Expect(string(content)).To(Equal("test file content"))
			})
		})

		When("the name escapes the directory", func() {
			BeforeEach(func() {
				filename = "../escape.jpg"
			})

			It("should return ErrInvalidData", func() {
				Expect(err).To(MatchError(ErrInvalidData))
				_, statErr := os.Stat(filepath.Join(tmpDir, "escape.jpg"))
				Expect(os.IsNotExist(statErr)).To(BeTrue())
			})
		})

		When("the name has a directory", func() {
			BeforeEach(func() {
				filename = "nested/file.jpg"
			})

			It("should return ErrInvalidData", func() {
				Expect(err).To(MatchError(ErrInvalidData))
			})
		})
	})

	Describe("Get", func() {
		When("the file exists", func() {
			BeforeEach(func() {
				_, err := storage.Save("test.jpg", []byte("content"))
				Expect(err).NotTo(HaveOccurred())
			})

			It("should return its data", func() {
				data, err := storage.Get("test.jpg")
				Expect(err).NotTo(HaveOccurred())
				Expect(data).To(Equal([]byte("content")))
			})
		})

		When("the file does not exist", func() {
			It("should return ErrNotFound", func() {
				_, err := storage.Get("missing.jpg")
				Expect(err).To(MatchError(ErrNotFound))
			})
		})

		When("the path escapes the directory", func() {
			It("should return ErrInvalidData", func() {
				_, err := storage.Get("../../etc/passwd")
				Expect(err).To(MatchError(ErrInvalidData))
			})
		})
	})

	Describe("Delete", func() {
		It("should remove the file", func() {
			_, err := storage.Save("test.jpg", []byte("content"))
			Expect(err).NotTo(HaveOccurred())
			Expect(storage.Delete("test.jpg")).To(Succeed())
			_, err = storage.Get("test.jpg")
			Expect(err).To(MatchError(ErrNotFound))
		})

		It("should return ErrNotFound for missing files", func() {
			Expect(storage.Delete("missing.jpg")).To(MatchError(ErrNotFound))
		})
	})

	Describe("Path", func() {
		It("should point inside the storage directory", func() {
			Expect(storage.Path("file-1.jpg")).To(Equal(filepath.Join(tmpDir, "uploads", "file-1.jpg")))
		})
	})
})
