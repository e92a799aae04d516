package extraction

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("extractMerchantInfo", func() {
	var (
		lines    []string
		matchers Matchers
		info     MerchantInfo
	)

	BeforeEach(func() {
		matchers = DefaultMatchers()
	})

	JustBeforeEach(func() {
		info = extractMerchantInfo(lines, matchers, discardLogger)
	})

	When("the leading lines are a price and a date", func() {
		BeforeEach(func() {
			lines = []string{"$45.00", "03/14/2024", "BIG MART", "Aisle 4"}
		})

		It("skips them and picks the first name-shaped line", func() {
			Expect(info.Name).To(Equal("BIG MART"))
		})
	})

	When("a line carries the name keyword", func() {
		BeforeEach(func() {
			lines = []string{"Welcome", "FAST FOOD #12"}
			matchers.NameKeywords = []string{"FAST FOOD"}
		})

		It("accepts the first name-shaped line before it", func() {
			Expect(info.Name).To(Equal("Welcome"))
		})
	})

	When("the keyword line contains digits", func() {
		BeforeEach(func() {
			lines = []string{"No. 7", "FAST FOOD #12"}
		})

		It("accepts it because of the keyword", func() {
			Expect(info.Name).To(Equal("FAST FOOD #12"))
		})
	})

	When("lines are too short or too long", func() {
		BeforeEach(func() {
			lines = []string{
				"ABC",
				"A very long heading that goes on and on past the limit",
				"Good Shop",
			}
		})

		It("skips them", func() {
			Expect(info.Name).To(Equal("Good Shop"))
		})
	})

	When("the name appears after the tenth line", func() {
		BeforeEach(func() {
			lines = []string{"1", "2", "3", "4", "5", "6", "7", "8", "9", "10", "LATE NAME"}
		})

		It("does not find it", func() {
			Expect(info.Name).To(BeEmpty())
		})
	})

	When("address and phone hints are configured", func() {
		BeforeEach(func() {
			lines = []string{"SHOP", "1 Main St, Springfield", "Tel (413) 555-0100", "Springfield MA 01103"}
			matchers.AddressHints = []string{"Springfield"}
			matchers.PhoneHints = []string{"(413)"}
		})

		It("keeps the last matching address line", func() {
			Expect(info.Address).To(Equal("Springfield MA 01103"))
		})

		It("finds the phone", func() {
			Expect(info.Phone).To(Equal("Tel (413) 555-0100"))
		})
	})

	When("no hints are configured", func() {
		BeforeEach(func() {
			lines = []string{"SHOP", "1 Main St, Springfield"}
		})

		It("leaves address and phone empty", func() {
			Expect(info.Address).To(BeEmpty())
			Expect(info.Phone).To(BeEmpty())
		})
	})

	When("there are no lines", func() {
		BeforeEach(func() {
			lines = nil
		})

		It("returns empty info", func() {
			Expect(info).To(Equal(MerchantInfo{}))
		})
	})
})
