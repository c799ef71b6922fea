package validation_test

import (
	"testing"
	"time"

	"github.com/frahmantamala/leave-management/internal"
	"github.com/frahmantamala/leave-management/internal/core/common/validation"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestValidation(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Validation Suite")
}

var _ = Describe("ValidationBuilder", func() {
	Context("when every rule passes", func() {
		It("should return nil", func() {
			v := validation.NewValidator()
			v.Field("email", "jane@example.com").Required().Email()
			v.Field("start_date", "2025-08-01").Required().Date()
			v.Field("default_balance", 25).MinInt(0, internal.ErrCodeInvalidValue)

			Expect(v.Validate()).To(BeNil())
		})
	})

	Context("when several fields fail", func() {
		It("should report the first violation as the public message", func() {
			// Given
			v := validation.NewValidator()
			v.Field("start_date", "").Required().Date()
			v.Field("end_date", "01/08/2025").Required().Date()

			// When
			err := v.Validate()

			// Then
			Expect(err).NotTo(BeNil())
			Expect(err.Code).To(Equal(internal.ErrCodeValidationFailed))
			Expect(err.PublicMessage()).To(Equal("start_date is required"))

			details, ok := err.Details.(internal.ValidationErrors)
			Expect(ok).To(BeTrue())
			Expect(details.Errors).To(HaveLen(2))
			Expect(details.Errors[1].Field).To(Equal("end_date"))
			Expect(details.Errors[1].Code).To(Equal(string(internal.ErrCodeInvalidDate)))
		})

		It("should stop at the first failing rule of a field", func() {
			v := validation.NewValidator()
			v.Field("password", "").Required().MinLength(10)

			err := v.Validate()

			Expect(err).NotTo(BeNil())
			details := err.Details.(internal.ValidationErrors)
			Expect(details.Errors).To(HaveLen(1))
		})
	})

	Describe("rules", func() {
		It("should reject malformed emails", func() {
			v := validation.NewValidator()
			v.Field("email", "not-an-email").Email()
			Expect(v.Validate()).NotTo(BeNil())
		})

		It("should enforce length limits", func() {
			v := validation.NewValidator()
			v.Field("password", "short").MinLength(10)
			Expect(v.Validate().PublicMessage()).To(Equal("password must be at least 10 characters"))
		})

		It("should match one-of values ignoring case", func() {
			v := validation.NewValidator()
			v.Field("role", "Manager").OneOf("admin", "manager", "staff")
			Expect(v.Validate()).To(BeNil())

			v = validation.NewValidator()
			v.Field("role", "owner").OneOf("admin", "manager", "staff")
			Expect(v.Validate()).NotTo(BeNil())
		})

		It("should reject negative numbers below the minimum", func() {
			v := validation.NewValidator()
			v.Field("max_rollover", -1).MinInt(0, internal.ErrCodeInvalidValue)
			Expect(v.Validate().PublicMessage()).To(Equal("max_rollover must be at least 0"))
		})
	})

	Describe("ParseDate", func() {
		It("should parse calendar dates at UTC midnight", func() {
			d, err := validation.ParseDate("2025-08-01")
			Expect(err).NotTo(HaveOccurred())
			Expect(d).To(Equal(time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)))
		})

		It("should reject impossible dates", func() {
			_, err := validation.ParseDate("2025-02-30")
			Expect(err).To(HaveOccurred())
		})
	})
})
