package receipt

import (
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"

	"github.com/zombor/receipt-parser/internal/extraction"
)

var _ = Describe("BoltDB", func() {
	var (
		tmpDir string
		dbPath string
		db     *BoltDB
	)

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()
		dbPath = filepath.Join(tmpDir, "test.db")
		var err error
		db, err = NewBoltDB(dbPath)
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		if db != nil {
			db.Close()
		}
	})

	newReceipt := func(id string, createdAt time.Time) *Receipt {
		return &Receipt{
			ReceiptRecord: extraction.ReceiptRecord{
				ReceiptID:   id,
				ReceiptName: "lunch",
				Products: []extraction.LineItem{{
					ProductName: "PIZZA",
					Quantity:    decimal.NewFromInt(1),
					UnitPrice:   decimal.RequireFromString("50.00"),
					Total:       decimal.RequireFromString("50.00"),
				}},
				Summary: extraction.FinancialSummary{Total: decimal.RequireFromString("54.25")},
			},
			Filename:    "file-1.jpg",
			ContentType: "image/jpeg",
			Provider:    "tesseract",
			CreatedAt:   createdAt,
		}
	}

	Describe("SaveReceipt and GetReceipt", func() {
		var (
			receipt *Receipt
			err     error
		)

		BeforeEach(func() {
			receipt = newReceipt("r-1", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC))
		})

		JustBeforeEach(func() {
			err = db.SaveReceipt(receipt)
		})

		When("saving succeeds", func() {
			It("should not return an error", func() {
				Expect(err).NotTo(HaveOccurred())
			})

			It("should round trip the receipt", func() {
				got, err := db.GetReceipt("r-1")
				Expect(err).NotTo(HaveOccurred())
				Expect(got.ReceiptName).To(Equal("lunch"))
				Expect(got.Provider).To(Equal("tesseract"))
				Expect(got.Products).To(HaveLen(1))
				Expect(got.Products[0].Total.Equal(decimal.RequireFromString("50"))).To(BeTrue())
				Expect(got.Summary.Total.String()).To(Equal("54.25"))
				Expect(got.CreatedAt.Equal(receipt.CreatedAt)).To(BeTrue())
			})
		})

		When("the receipt has no ID", func() {
			BeforeEach(func() {
				receipt.ReceiptID = ""
			})

			It("should return ErrInvalidData", func() {
				Expect(err).To(MatchError(ErrInvalidData))
			})
		})
	})

	Describe("GetReceipt", func() {
		It("should return ErrNotFound for unknown IDs", func() {
			_, err := db.GetReceipt("missing")
			Expect(err).To(MatchError(ErrNotFound))
		})
	})

	Describe("ListReceipts", func() {
		When("the database is empty", func() {
			It("should return an empty list", func() {
				receipts, err := db.ListReceipts()
				Expect(err).NotTo(HaveOccurred())
				Expect(receipts).NotTo(BeNil())
				Expect(receipts).To(BeEmpty())
			})
		})

		When("receipts exist", func() {
			BeforeEach(func() {
				base := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
				Expect(db.SaveReceipt(newReceipt("a", base))).To(Succeed())
				Expect(db.SaveReceipt(newReceipt("b", base.Add(2*time.Hour)))).To(Succeed())
				Expect(db.SaveReceipt(newReceipt("c", base.Add(time.Hour)))).To(Succeed())
			})

			It("should return them newest first", func() {
				receipts, err := db.ListReceipts()
				Expect(err).NotTo(HaveOccurred())
				ids := make([]string, 0, len(receipts))
				for _, r := range receipts {
					ids = append(ids, r.ReceiptID)
				}
				Expect(ids).To(Equal([]string{"b", "c", "a"}))
			})
		})
	})

	Describe("DeleteReceipt", func() {
		It("should remove the receipt", func() {
			Expect(db.SaveReceipt(newReceipt("r-1", time.Now()))).To(Succeed())
			Expect(db.DeleteReceipt("r-1")).To(Succeed())
			_, err := db.GetReceipt("r-1")
			Expect(err).To(MatchError(ErrNotFound))
		})

		It("should return ErrNotFound for unknown IDs", func() {
			Expect(db.DeleteReceipt("missing")).To(MatchError(ErrNotFound))
		})
	})

	Describe("uploads", func() {
		var info *FileInfo

		BeforeEach(func() {
			info = &FileInfo{
				ID:           "u-1",
				Filename:     "file-1.jpg",
				OriginalName: "lunch.jpg",
				Path:         "/uploads/file-1.jpg",
				Size:         42,
				ContentType:  "image/jpeg",
				UploadedAt:   time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC),
			}
			Expect(db.SaveUpload(info)).To(Succeed())
		})

		It("should look uploads up by stored filename", func() {
			got, err := db.GetUpload("file-1.jpg")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.ID).To(Equal("u-1"))
			Expect(got.OriginalName).To(Equal("lunch.jpg"))
			Expect(got.Size).To(Equal(int64(42)))
		})

		It("should forget deleted uploads", func() {
			Expect(db.DeleteUpload("file-1.jpg")).To(Succeed())
			_, err := db.GetUpload("file-1.jpg")
			Expect(err).To(MatchError(ErrNotFound))
		})

		It("should keep uploads apart from receipts", func() {
			_, err := db.GetReceipt("file-1.jpg")
			Expect(err).To(MatchError(ErrNotFound))
		})
	})

	Describe("reopening", func() {
		It("should keep saved data", func() {
			Expect(db.SaveReceipt(newReceipt("r-1", time.Now()))).To(Succeed())
			Expect(db.Close()).To(Succeed())

			var err error
			db, err = NewBoltDB(dbPath)
			Expect(err).NotTo(HaveOccurred())
			_, err = db.GetReceipt("r-1")
			Expect(err).NotTo(HaveOccurred())
		})
	})
})
