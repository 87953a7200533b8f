package common_test

import (
	"academy/common"
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Env", func() {
	AfterEach(func() {
		os.Unsetenv("ACADEMY_TEST_VALUE")
	})

	It("should fall back to defaults for absent or malformed values", func() {
		Expect(common.EnvString("ACADEMY_TEST_VALUE", "def")).To(Equal("def"))
		Expect(common.EnvInt("ACADEMY_TEST_VALUE", 3)).To(Equal(3))

		os.Setenv("ACADEMY_TEST_VALUE", "abc")
		Expect(common.EnvString("ACADEMY_TEST_VALUE", "def")).To(Equal("abc"))
		Expect(common.EnvInt("ACADEMY_TEST_VALUE", 3)).To(Equal(3))
		Expect(common.EnvBool("ACADEMY_TEST_VALUE", true)).To(BeTrue())
		Expect(common.EnvDuration("ACADEMY_TEST_VALUE", time.Minute)).To(Equal(time.Minute))
	})

	It("should parse typed values", func() {
		os.Setenv("ACADEMY_TEST_VALUE", "15")
		Expect(common.EnvInt("ACADEMY_TEST_VALUE", 3)).To(Equal(15))
		os.Setenv("ACADEMY_TEST_VALUE", "false")
		Expect(common.EnvBool("ACADEMY_TEST_VALUE", true)).To(BeFalse())
		os.Setenv("ACADEMY_TEST_VALUE", "90s")
		Expect(common.EnvDuration("ACADEMY_TEST_VALUE", time.Minute)).To(Equal(90 * time.Second))
	})

	It("should load env files without overriding present variables", func() {
		dir, err := os.MkdirTemp("", "academy-env")
		Expect(err).To(BeNil())
		defer os.RemoveAll(dir)

		f := filepath.Join(dir, ".env")
		Expect(os.WriteFile(f, []byte("ACADEMY_TEST_VALUE=from-file\n"), 0600)).To(Succeed())

		common.LoadDotEnv(f, filepath.Join(dir, "missing.env"))
		Expect(os.Getenv("ACADEMY_TEST_VALUE")).To(Equal("from-file"))

		os.Setenv("ACADEMY_TEST_VALUE", "from-env")
		common.LoadDotEnv(f)
		Expect(os.Getenv("ACADEMY_TEST_VALUE")).To(Equal("from-env"))
	})
})
