package extraction

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("extractDate", func() {
	DescribeTable("recognized formats",
		func(line, want string) {
			Expect(extractDate([]string{line})).To(Equal(want))
		},
		Entry("slashes", "Date: 3/4/24", "3/4/24"),
		Entry("dashes", "14-03-2024 12:01", "14-03-2024"),
		Entry("iso", "2024-03-15 10:00", "2024-03-15"),
		Entry("day month year", "14 March 2024", "14 March 2024"),
		Entry("glued to a leading word", "DATE03/14/2024", "03/14/2024"),
		Entry("glued to a trailing word", "03/14/2024PM", "03/14/2024"),
		Entry("glued dashes", "Date:14-03-2024Time", "14-03-2024"),
	)

	It("returns the date from the first line that has one", func() {
		Expect(extractDate([]string{"Store", "03/14/2024", "2024-03-15"})).To(Equal("03/14/2024"))
	})

	It("prefers line order over pattern order", func() {
		Expect(extractDate([]string{"2024-03-15", "03/14/2024"})).To(Equal("2024-03-15"))
	})

	It("tries the slash pattern first within a line", func() {
		Expect(extractDate([]string{"2024-03-15 or 03/14/2024"})).To(Equal("03/14/2024"))
	})

	It("does not read a date out of a longer number", func() {
		Expect(extractDate([]string{"REF 1203/14/20245"})).To(BeEmpty())
	})

	It("does not validate the calendar", func() {
		Expect(extractDate([]string{"99/99/9999"})).To(Equal("99/99/9999"))
	})

	It("returns empty when nothing matches", func() {
		Expect(extractDate([]string{"no dates here"})).To(BeEmpty())
		Expect(extractDate(nil)).To(BeEmpty())
	})
})
