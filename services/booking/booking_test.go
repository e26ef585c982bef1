package booking_test

import (
	"context"
	"strings"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	bookingRepo "fixit/database/repository/booking"
	userRepo "fixit/database/repository/user"
	"fixit/models"
	"fixit/services/booking"
	"fixit/services/mirror"
	"fixit/services/payment"
	"fixit/utils"
)

var fixedNow = time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)

var _ = Describe("DefaultBookingService", func() {
	var (
		ctx        context.Context
		cancel     context.CancelFunc
		users      *userRepo.MemoryUserRepo
		repo       *bookingRepo.MemoryBookingRepo
		gateway    *payment.SimulatedGateway
		dispatcher *recordingDispatcher
		svc        *booking.DefaultBookingService

		customer, provider, otherCustomer *models.Actor
	)

	seed := func(a *models.Actor) *models.Actor {
		Expect(users.Create(ctx, a)).To(Succeed())
		return a
	}

	request := func() models.BookingRequest {
		return models.BookingRequest{
			ProviderID:      provider.ID,
			ServiceCategory: models.CategoryPlumbing,
			ScheduledDate:   "2026-05-12",
			ScheduledSlot:   "9:00 AM",
			DurationHours:   3,
			Notes:           "Kitchen sink leaks",
		}
	}

	BeforeEach(func() {
		ctx, cancel = context.WithCancel(context.Background())
		users = userRepo.NewMemoryUserRepo()
		repo = bookingRepo.NewMemoryBookingRepo()
		gateway = payment.NewSimulatedGateway()
		dispatcher = &recordingDispatcher{}

		m := mirror.New[models.Booking]("bookings", repo, 10*time.Millisecond, nil)
		m.Start(ctx)
		Expect(m.WaitReady(ctx)).To(Succeed())

		svc = &booking.DefaultBookingService{
			Repo:        repo,
			Users:       users,
			Payments:    gateway,
			Mirror:      m,
			Notifier:    dispatcher,
			Idempotency: booking.NewMemoryIdempotencyStore(),
			Now:         func() time.Time { return fixedNow },
		}

		customer = seed(&models.Actor{ID: "cust-1", Role: models.RoleCustomer, DisplayName: "Asha", Email: "asha@example.com"})
		otherCustomer = seed(&models.Actor{ID: "cust-2", Role: models.RoleCustomer, DisplayName: "Dev", Email: "dev@example.com"})
		provider = seed(&models.Actor{
			ID: "prov-1", Role: models.RoleProvider, DisplayName: "Ravi", Email: "ravi@example.com",
			ServiceCategory: models.CategoryPlumbing, HourlyRate: 400, Availability: true,
		})
	})

	AfterEach(func() {
		cancel()
	})

	Describe("CreateBooking", func() {
		It("charges rate times hours and stores a pending booking", func() {
			b, err := svc.CreateBooking(ctx, customer.ID, request())
			Expect(err).NotTo(HaveOccurred())
			Expect(b.Status).To(Equal(models.StatusPending))
			Expect(b.TotalAmount).To(BeEquivalentTo(1200))
			Expect(b.Version).To(BeEquivalentTo(1))
			Expect(b.CustomerName).To(Equal("Asha"))
			Expect(b.ProviderName).To(Equal("Ravi"))

			charged, ok := gateway.Charged(b.PaymentReference)
			Expect(ok).To(BeTrue())
			Expect(charged).To(BeEquivalentTo(1200))

			Expect(dispatcher.Sent()).To(ContainElement(HaveField("ActorID", provider.ID)))
		})

		It("keeps the frozen total when the provider changes rate", func() {
			b, err := svc.CreateBooking(ctx, customer.ID, request())
			Expect(err).NotTo(HaveOccurred())

			rate := int64(900)
			_, err = users.ApplyPatch(ctx, provider.ID, models.ProfilePatch{HourlyRate: &rate})
			Expect(err).NotTo(HaveOccurred())

			stored, err := repo.GetByID(ctx, b.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.TotalAmount).To(BeEquivalentTo(1200))
		})

		DescribeTable("request validation",
			func(mutate func(*models.BookingRequest)) {
				req := request()
				mutate(&req)
				_, err := svc.CreateBooking(ctx, customer.ID, req)
				Expect(utils.KindOf(err)).To(Equal(utils.KindValidation))
				Expect(svc.BookingsFor(customer.ID, models.RoleCustomer)).To(BeEmpty())
			},
			Entry("blank provider", func(r *models.BookingRequest) { r.ProviderID = "  " }),
			Entry("unknown category", func(r *models.BookingRequest) { r.ServiceCategory = "roofing" }),
			Entry("malformed date", func(r *models.BookingRequest) { r.ScheduledDate = "12/05/2026" }),
			Entry("date in the past", func(r *models.BookingRequest) { r.ScheduledDate = "2026-05-09" }),
			Entry("unknown slot", func(r *models.BookingRequest) { r.ScheduledSlot = "7:30 PM" }),
			Entry("zero hours", func(r *models.BookingRequest) { r.DurationHours = 0 }),
			Entry("nine hours", func(r *models.BookingRequest) { r.DurationHours = 9 }),
			Entry("long notes", func(r *models.BookingRequest) { r.Notes = strings.Repeat("x", 501) }),
			Entry("category the provider does not offer", func(r *models.BookingRequest) { r.ServiceCategory = models.CategoryElectrical }),
		)

		It("accepts bookings for today", func() {
			req := request()
			req.ScheduledDate = "2026-05-10"
			_, err := svc.CreateBooking(ctx, customer.ID, req)
			Expect(err).NotTo(HaveOccurred())
		})

		It("refuses unavailable providers", func() {
			off := false
			_, err := users.ApplyPatch(ctx, provider.ID, models.ProfilePatch{Availability: &off})
			Expect(err).NotTo(HaveOccurred())

			_, err = svc.CreateBooking(ctx, customer.ID, request())
			Expect(utils.KindOf(err)).To(Equal(utils.KindValidation))
		})

		It("reports unknown providers", func() {
			req := request()
			req.ProviderID = "prov-404"
			_, err := svc.CreateBooking(ctx, customer.ID, req)
			Expect(utils.KindOf(err)).To(Equal(utils.KindNotFound))
		})

		It("does not let providers book", func() {
			_, err := svc.CreateBooking(ctx, provider.ID, request())
			Expect(utils.KindOf(err)).To(Equal(utils.KindUnauthorized))
		})

		It("stores nothing when the card is declined", func() {
			req := request()
			req.PaymentMethod = payment.SimulatedDeclineMethod
			_, err := svc.CreateBooking(ctx, customer.ID, req)
			Expect(utils.KindOf(err)).To(Equal(utils.KindPaymentFailed))

			Consistently(func() []models.Booking {
				return svc.BookingsFor(customer.ID, models.RoleCustomer)
			}, 50*time.Millisecond).Should(BeEmpty())
			Expect(dispatcher.Sent()).To(BeEmpty())
		})

		It("refunds the charge when the booking cannot be stored", func() {
			svc.Repo = failingInsertRepo{repo}
			var captured string
			svc.Payments = &refCapturingGateway{SimulatedGateway: gateway, ref: &captured}

			_, err := svc.CreateBooking(ctx, customer.ID, request())
			Expect(utils.KindOf(err)).To(Equal(utils.KindRemoteUnavailable))
			Expect(captured).NotTo(BeEmpty())
			Expect(gateway.Refunded(captured)).To(BeTrue())
		})

		Context("with an idempotency key", func() {
			It("replays the first booking and charges once", func() {
				req := request()
				req.IdempotencyKey = "tap-1"

				first, err := svc.CreateBooking(ctx, customer.ID, req)
				Expect(err).NotTo(HaveOccurred())
				second, err := svc.CreateBooking(ctx, customer.ID, req)
				Expect(err).NotTo(HaveOccurred())

				Expect(second.ID).To(Equal(first.ID))
				Expect(second.PaymentReference).To(Equal(first.PaymentReference))
				Eventually(func() []models.Booking {
					return svc.BookingsFor(customer.ID, models.RoleCustomer)
				}).Should(HaveLen(1))
			})

			It("lets the key be reused after a failed attempt", func() {
				req := request()
				req.IdempotencyKey = "tap-2"
				req.PaymentMethod = payment.SimulatedDeclineMethod
				_, err := svc.CreateBooking(ctx, customer.ID, req)
				Expect(utils.KindOf(err)).To(Equal(utils.KindPaymentFailed))

				req.PaymentMethod = ""
				_, err = svc.CreateBooking(ctx, customer.ID, req)
				Expect(err).NotTo(HaveOccurred())
			})

			It("does not leave a key stuck when recording it fails", func() {
				store := &failingCompleteStore{IdempotencyStore: booking.NewMemoryIdempotencyStore()}
				svc.Idempotency = store
				req := request()
				req.IdempotencyKey = "tap-3"

				first, err := svc.CreateBooking(ctx, customer.ID, req)
				Expect(err).NotTo(HaveOccurred())
				Expect(store.completeCalls).To(Equal(2))

				req.ScheduledDate = "2026-05-13"
				second, err := svc.CreateBooking(ctx, customer.ID, req)
				Expect(err).NotTo(HaveOccurred())
				Expect(second.ID).NotTo(Equal(first.ID))
			})

			It("scopes keys per customer", func() {
				req := request()
				req.IdempotencyKey = "shared"
				a, err := svc.CreateBooking(ctx, customer.ID, req)
				Expect(err).NotTo(HaveOccurred())
				b, err := svc.CreateBooking(ctx, otherCustomer.ID, req)
				Expect(err).NotTo(HaveOccurred())
				Expect(a.ID).NotTo(Equal(b.ID))
			})
		})
	})

	Describe("TransitionStatus", func() {
		var b *models.Booking

		BeforeEach(func() {
			var err error
			b, err = svc.CreateBooking(ctx, customer.ID, request())
			Expect(err).NotTo(HaveOccurred())
		})

		It("walks the happy path and bumps the version", func() {
			confirmed, err := svc.TransitionStatus(ctx, b.ID, provider.ID, models.StatusConfirmed)
			Expect(err).NotTo(HaveOccurred())
			Expect(confirmed.Version).To(BeEquivalentTo(2))

			_, err = svc.TransitionStatus(ctx, b.ID, provider.ID, models.StatusOngoing)
			Expect(err).NotTo(HaveOccurred())
			done, err := svc.TransitionStatus(ctx, b.ID, customer.ID, models.StatusCompleted)
			Expect(err).NotTo(HaveOccurred())
			Expect(done.Status).To(Equal(models.StatusCompleted))

			Expect(dispatcher.Sent()).To(ContainElement(And(
				HaveField("ActorID", customer.ID),
				HaveField("Kind", models.PushBookingStatus),
			)))
		})

		It("only lets the provider confirm", func() {
			_, err := svc.TransitionStatus(ctx, b.ID, customer.ID, models.StatusConfirmed)
			Expect(utils.KindOf(err)).To(Equal(utils.KindUnauthorized))
		})

		It("rejects outsiders", func() {
			_, err := svc.TransitionStatus(ctx, b.ID, otherCustomer.ID, models.StatusCancelled)
			Expect(utils.KindOf(err)).To(Equal(utils.KindUnauthorized))
		})

		It("rejects skipped steps", func() {
			_, err := svc.TransitionStatus(ctx, b.ID, provider.ID, models.StatusCompleted)
			Expect(utils.KindOf(err)).To(Equal(utils.KindInvalidTransition))
		})

		It("treats cancelled as terminal", func() {
			_, err := svc.TransitionStatus(ctx, b.ID, customer.ID, models.StatusCancelled)
			Expect(err).NotTo(HaveOccurred())
			_, err = svc.TransitionStatus(ctx, b.ID, provider.ID, models.StatusConfirmed)
			Expect(utils.KindOf(err)).To(Equal(utils.KindInvalidTransition))
		})

		It("rejects a customer confirming an already confirmed booking", func() {
			rate := int64(350)
			_, err := users.ApplyPatch(ctx, provider.ID, models.ProfilePatch{HourlyRate: &rate})
			Expect(err).NotTo(HaveOccurred())
			req := request()
			req.ScheduledDate = "2026-05-13"
			req.DurationHours = 2
			fresh, err := svc.CreateBooking(ctx, customer.ID, req)
			Expect(err).NotTo(HaveOccurred())
			Expect(fresh.TotalAmount).To(BeEquivalentTo(700))

			_, err = svc.TransitionStatus(ctx, fresh.ID, provider.ID, models.StatusConfirmed)
			Expect(err).NotTo(HaveOccurred())
			_, err = svc.TransitionStatus(ctx, fresh.ID, customer.ID, models.StatusConfirmed)
			Expect(utils.KindOf(err)).To(Equal(utils.KindInvalidTransition))

			stored, err := repo.GetByID(ctx, fresh.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.Status).To(Equal(models.StatusConfirmed))
			Expect(stored.Version).To(BeEquivalentTo(2))
		})

		Context("once a booking is terminal", func() {
			drive := func(path ...models.BookingStatus) {
				for _, next := range path {
					actor := provider.ID
					if next == models.StatusCancelled {
						actor = customer.ID
					}
					_, err := svc.TransitionStatus(ctx, b.ID, actor, next)
					Expect(err).NotTo(HaveOccurred())
				}
			}

			allTargets := []models.BookingStatus{
				models.StatusPending, models.StatusConfirmed, models.StatusOngoing,
				models.StatusCompleted, models.StatusCancelled,
			}

			DescribeTable("every target status is an invalid transition for both parties",
				func(path []models.BookingStatus) {
					drive(path...)
					before, err := repo.GetByID(ctx, b.ID)
					Expect(err).NotTo(HaveOccurred())

					for _, target := range allTargets {
						for _, actor := range []string{customer.ID, provider.ID} {
							_, err := svc.TransitionStatus(ctx, b.ID, actor, target)
							Expect(utils.KindOf(err)).To(Equal(utils.KindInvalidTransition), "%s -> %s by %s", before.Status, target, actor)
						}
					}

					after, err := repo.GetByID(ctx, b.ID)
					Expect(err).NotTo(HaveOccurred())
					Expect(after.Status).To(Equal(before.Status))
					Expect(after.Version).To(Equal(before.Version))
				},
				Entry("completed", []models.BookingStatus{models.StatusConfirmed, models.StatusOngoing, models.StatusCompleted}),
				Entry("cancelled while pending", []models.BookingStatus{models.StatusCancelled}),
				Entry("cancelled after confirmation", []models.BookingStatus{models.StatusConfirmed, models.StatusCancelled}),
			)
		})

		It("rejects unknown statuses", func() {
			_, err := svc.TransitionStatus(ctx, b.ID, provider.ID, "archived")
			Expect(utils.KindOf(err)).To(Equal(utils.KindValidation))
		})

		It("reports missing bookings", func() {
			_, err := svc.TransitionStatus(ctx, "missing", provider.ID, models.StatusConfirmed)
			Expect(utils.KindOf(err)).To(Equal(utils.KindNotFound))
		})

		It("lets exactly one of several concurrent confirmations win", func() {
			const writers = 10
			var (
				wg   sync.WaitGroup
				mu   sync.Mutex
				wins int
			)
			for i := 0; i < writers; i++ {
				wg.Add(1)
				go func() {
					defer GinkgoRecover()
					defer wg.Done()
					_, err := svc.TransitionStatus(ctx, b.ID, provider.ID, models.StatusConfirmed)
					if err == nil {
						mu.Lock()
						wins++
						mu.Unlock()
						return
					}
					Expect(utils.KindOf(err)).To(BeElementOf(utils.KindConflict, utils.KindInvalidTransition))
				}()
			}
			wg.Wait()
			Expect(wins).To(Equal(1))

			stored, err := repo.GetByID(ctx, b.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.Version).To(BeEquivalentTo(2))
		})
	})

	Describe("BookingsFor", func() {
		It("scopes by participant role, newest first", func() {
			first, err := svc.CreateBooking(ctx, customer.ID, request())
			Expect(err).NotTo(HaveOccurred())
			time.Sleep(2 * time.Millisecond)
			second, err := svc.CreateBooking(ctx, customer.ID, request())
			Expect(err).NotTo(HaveOccurred())
			_, err = svc.CreateBooking(ctx, otherCustomer.ID, request())
			Expect(err).NotTo(HaveOccurred())

			Eventually(func() []string {
				var ids []string
				for _, b := range svc.BookingsFor(customer.ID, models.RoleCustomer) {
					ids = append(ids, b.ID)
				}
				return ids
			}).Should(Equal([]string{second.ID, first.ID}))

			Eventually(func() []models.Booking {
				return svc.BookingsFor(provider.ID, models.RoleProvider)
			}).Should(HaveLen(3))
			Expect(svc.BookingsFor(provider.ID, models.RoleCustomer)).To(BeEmpty())
		})

		It("streams scoped snapshots to subscribers", func() {
			subCtx, stop := context.WithCancel(ctx)
			defer stop()
			updates := svc.Subscribe(subCtx, provider.ID, models.RoleProvider)

			_, err := svc.CreateBooking(ctx, customer.ID, request())
			Expect(err).NotTo(HaveOccurred())

			Eventually(updates).Should(Receive(HaveLen(1)))
			stop()
			Eventually(updates).Should(BeClosed())
		})
	})
})

var _ = Describe("EarningsFor", func() {
	loc := time.UTC
	now := time.Date(2026, 5, 20, 9, 0, 0, 0, loc)

	mk := func(id string, status models.BookingStatus, amount int64, created time.Time) models.Booking {
		return models.Booking{ID: id, CustomerID: "c", ProviderID: "p", Status: status, TotalAmount: amount, CreatedAt: created}
	}

	It("counts money on completed bookings only", func() {
		svc := &booking.DefaultBookingService{Mirror: staticSnapshot{items: []models.Booking{
			mk("1", models.StatusCompleted, 1000, time.Date(2026, 5, 2, 0, 0, 0, 0, loc)),
			mk("2", models.StatusCompleted, 501, time.Date(2026, 4, 28, 0, 0, 0, 0, loc)),
			mk("3", models.StatusPending, 700, now),
			mk("4", models.StatusConfirmed, 800, now),
			mk("5", models.StatusOngoing, 900, now),
			mk("6", models.StatusCancelled, 999, now),
			{ID: "7", CustomerID: "c", ProviderID: "someone-else", Status: models.StatusCompleted, TotalAmount: 5000, CreatedAt: now},
		}}}

		e := svc.EarningsFor("p", now)
		Expect(e).To(Equal(models.Earnings{
			PendingCount:      1,
			ActiveCount:       2,
			CompletedCount:    2,
			TotalEarnings:     1501,
			ThisMonthEarnings: 1000,
			AveragePerBooking: 751,
		}))
	})

	It("is all zeros without completed work", func() {
		svc := &booking.DefaultBookingService{Mirror: staticSnapshot{}}
		Expect(svc.EarningsFor("p", now)).To(Equal(models.Earnings{}))
	})
})
