package conversationRepo_test

import (
	"context"
	"fmt"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"fixit/database/repository"
	conversationRepo "fixit/database/repository/conversation"
	"fixit/models"
)

var _ = Describe("MemoryConversationRepo", func() {
	var (
		repo *conversationRepo.MemoryConversationRepo
		ctx  context.Context
		conv *models.Conversation
	)

	BeforeEach(func() {
		repo = conversationRepo.NewMemoryConversationRepo()
		ctx = context.Background()
		conv = &models.Conversation{ID: "conv-1", CustomerID: "c1", ProviderID: "p1", CreatedAt: time.Now()}
	})

	It("creates once and returns the stored record afterwards", func() {
		stored, created, err := repo.CreateIfAbsent(ctx, conv)
		Expect(err).NotTo(HaveOccurred())
		Expect(created).To(BeTrue())
		Expect(stored.NextSeq).To(Equal(int64(1)))
		Expect(stored.Unread).To(HaveKeyWithValue("c1", 0))

		again := *conv
		again.CustomerName = "other"
		stored, created, err = repo.CreateIfAbsent(ctx, &again)
		Expect(err).NotTo(HaveOccurred())
		Expect(created).To(BeFalse())
		Expect(stored.CustomerName).To(BeEmpty())
	})

	It("converges concurrent creators on one record", func() {
		var (
			wg      sync.WaitGroup
			mu      sync.Mutex
			winners int
		)
		for i := 0; i < 16; i++ {
			wg.Add(1)
			go func() {
				defer GinkgoRecover()
				defer wg.Done()
				c := *conv
				_, created, err := repo.CreateIfAbsent(ctx, &c)
				Expect(err).NotTo(HaveOccurred())
				if created {
					mu.Lock()
					winners++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()
		Expect(winners).To(Equal(1))
	})

	Describe("AppendMessage", func() {
		BeforeEach(func() {
			_, _, err := repo.CreateIfAbsent(ctx, conv)
			Expect(err).NotTo(HaveOccurred())
		})

		It("assigns increasing sequence numbers and bumps the recipient's unread", func() {
			m1, err := repo.AppendMessage(ctx, "conv-1", models.Message{ID: "m1", SenderID: "c1", Text: "hi", SentAt: time.Now()}, "p1")
			Expect(err).NotTo(HaveOccurred())
			m2, err := repo.AppendMessage(ctx, "conv-1", models.Message{ID: "m2", SenderID: "c1", Text: "there", SentAt: time.Now()}, "p1")
			Expect(err).NotTo(HaveOccurred())

			Expect(m1.Seq).To(Equal(int64(1)))
			Expect(m2.Seq).To(Equal(int64(2)))

			stored, _ := repo.GetByID(ctx, "conv-1")
			Expect(stored.Unread["p1"]).To(Equal(2))
			Expect(stored.Unread["c1"]).To(Equal(0))
			Expect(stored.LastMessagePreview).To(Equal("there"))
		})

		It("keeps every concurrent message with a unique sequence", func() {
			var wg sync.WaitGroup
			for i := 0; i < 25; i++ {
				wg.Add(1)
				go func(i int) {
					defer GinkgoRecover()
					defer wg.Done()
					_, err := repo.AppendMessage(ctx, "conv-1", models.Message{ID: fmt.Sprint(i), SenderID: "p1", Text: "x"}, "c1")
					Expect(err).NotTo(HaveOccurred())
				}(i)
			}
			wg.Wait()

			stored, _ := repo.GetByID(ctx, "conv-1")
			Expect(stored.Messages).To(HaveLen(25))
			seen := map[int64]bool{}
			for i, m := range stored.Messages {
				Expect(m.Seq).To(Equal(int64(i + 1)))
				seen[m.Seq] = true
			}
			Expect(seen).To(HaveLen(25))
			Expect(stored.Unread["c1"]).To(Equal(25))
		})

		It("resets only the reader's counter", func() {
			_, _ = repo.AppendMessage(ctx, "conv-1", models.Message{ID: "m1", SenderID: "c1", Text: "hi"}, "p1")
			Expect(repo.ResetUnread(ctx, "conv-1", "p1")).To(Succeed())
			Expect(repo.ResetUnread(ctx, "conv-1", "p1")).To(Succeed())

			stored, _ := repo.GetByID(ctx, "conv-1")
			Expect(stored.Unread["p1"]).To(Equal(0))
		})

		It("fails for an unknown conversation", func() {
			_, err := repo.AppendMessage(ctx, "missing", models.Message{}, "p1")
			Expect(err).To(MatchError(repository.ErrNotFound))
		})
	})
})
