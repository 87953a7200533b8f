package common_test

import (
	"academy/common"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Strings", func() {
	Describe("StringReader", func() {
		It("should be able to build a bytes.Reader from a string", func() {
			str := "test string"
			reader := common.StringReader(str)
			buf := make([]byte, len(str))
			n, err := reader.Read(buf)
			Expect(n).To(Equal(len(str)))
			Expect(err).To(BeNil())
			Expect(string(buf)).To(Equal(str))
		})
	})

	Describe("Slugify", func() {
		It("should derive lower case ascii slugs", func() {
			Expect(common.Slugify("Demo University")).To(Equal("demo-university"))
			Expect(common.Slugify("  ACME Corp.  ")).To(Equal("acme-corp"))
			Expect(common.Slugify("a -- b__c")).To(Equal("a-b-c"))
			Expect(common.Slugify("System")).To(Equal("system"))
			Expect(common.Slugify("!!!")).To(Equal(""))
		})
	})
})
