package models_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"fixit/models"
)

var _ = Describe("Time slots", func() {
	It("accepts only catalogue labels", func() {
		Expect(models.TimeSlots).To(HaveLen(11))
		Expect(models.IsValidSlot("8:00 AM")).To(BeTrue())
		Expect(models.IsValidSlot("6:00 PM")).To(BeTrue())
		Expect(models.IsValidSlot("7:00 PM")).To(BeFalse())
		Expect(models.IsValidSlot("08:00 AM")).To(BeFalse())
	})

	Describe("IsBeforeToday", func() {
		loc := time.FixedZone("IST", 5*3600+1800)
		now := time.Date(2026, 3, 10, 1, 0, 0, 0, loc)

		It("compares calendar days in the service zone", func() {
			yesterday, err := models.ParseScheduledDate("2026-03-09", loc)
			Expect(err).NotTo(HaveOccurred())
			today, _ := models.ParseScheduledDate("2026-03-10", loc)
			tomorrow, _ := models.ParseScheduledDate("2026-03-11", loc)

			Expect(models.IsBeforeToday(yesterday, now, loc)).To(BeTrue())
			Expect(models.IsBeforeToday(today, now, loc)).To(BeFalse())
			Expect(models.IsBeforeToday(tomorrow, now, loc)).To(BeFalse())
		})

		It("uses the zone's date even when UTC is still on the previous day", func() {
			// 01:00 IST is 19:30 UTC on the 9th.
			today, _ := models.ParseScheduledDate("2026-03-10", loc)
			Expect(models.IsBeforeToday(today, now.UTC(), loc)).To(BeFalse())
		})

		It("rejects malformed dates", func() {
			_, err := models.ParseScheduledDate("10/03/2026", loc)
			Expect(err).To(HaveOccurred())
		})
	})
})
