package handlers_test

import (
	"context"
	"io"
	"time"

	"github.com/gin-gonic/gin"

	"fixit/middleware"
	"fixit/models"
	"fixit/services/user"
)

// asActor stands in for JWTAuthMiddleware.
func asActor(id string, role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ActorIDKey, id)
		c.Set(middleware.RoleKey, role)
		c.Next()
	}
}

type mockBookingService struct {
	createBookingFn    func(ctx context.Context, customerID string, req models.BookingRequest) (*models.Booking, error)
	transitionStatusFn func(ctx context.Context, bookingID, actorID string, next models.BookingStatus) (*models.Booking, error)
	bookingsForFn      func(actorID string, role models.Role) []models.Booking
	earningsForFn      func(providerID string, now time.Time) models.Earnings
	subscribeFn        func(ctx context.Context, actorID string, role models.Role) <-chan []models.Booking
}

func (m *mockBookingService) CreateBooking(ctx context.Context, customerID string, req models.BookingRequest) (*models.Booking, error) {
	return m.createBookingFn(ctx, customerID, req)
}

func (m *mockBookingService) TransitionStatus(ctx context.Context, bookingID, actorID string, next models.BookingStatus) (*models.Booking, error) {
	return m.transitionStatusFn(ctx, bookingID, actorID, next)
}

func (m *mockBookingService) BookingsFor(actorID string, role models.Role) []models.Booking {
	return m.bookingsForFn(actorID, role)
}

func (m *mockBookingService) EarningsFor(providerID string, now time.Time) models.Earnings {
	return m.earningsForFn(providerID, now)
}

func (m *mockBookingService) Subscribe(ctx context.Context, actorID string, role models.Role) <-chan []models.Booking {
	if m.subscribeFn != nil {
		return m.subscribeFn(ctx, actorID, role)
	}
	ch := make(chan []models.Booking)
	go func() {
		<-ctx.Done()
		close(ch)
	}()
	return ch
}

type mockChatService struct {
	getOrCreateFn      func(ctx context.Context, actorID, customerID, providerID string, meta models.DisplayMetadata) (*models.Conversation, error)
	appendMessageFn    func(ctx context.Context, conversationID, senderID, text string) (*models.Message, error)
	markReadFn         func(ctx context.Context, conversationID, readerID string) error
	conversationsForFn func(actorID string, role models.Role) []models.ConversationView
	getFn              func(ctx context.Context, actorID, conversationID string) (*models.ConversationView, error)
}

func (m *mockChatService) GetOrCreate(ctx context.Context, actorID, customerID, providerID string, meta models.DisplayMetadata) (*models.Conversation, error) {
	return m.getOrCreateFn(ctx, actorID, customerID, providerID, meta)
}

func (m *mockChatService) AppendMessage(ctx context.Context, conversationID, senderID, text string) (*models.Message, error) {
	return m.appendMessageFn(ctx, conversationID, senderID, text)
}

func (m *mockChatService) MarkRead(ctx context.Context, conversationID, readerID string) error {
	return m.markReadFn(ctx, conversationID, readerID)
}

func (m *mockChatService) ConversationsFor(actorID string, role models.Role) []models.ConversationView {
	return m.conversationsForFn(actorID, role)
}

func (m *mockChatService) Get(ctx context.Context, actorID, conversationID string) (*models.ConversationView, error) {
	return m.getFn(ctx, actorID, conversationID)
}

func (m *mockChatService) Subscribe(ctx context.Context, _ string, _ models.Role) <-chan []models.ConversationView {
	ch := make(chan []models.ConversationView)
	go func() {
		<-ctx.Done()
		close(ch)
	}()
	return ch
}

type mockUserService struct {
	signUpFn        func(ctx context.Context, req models.SignUpRequest) (*user.AuthResponse, error)
	signInFn        func(ctx context.Context, email, password string) (*user.AuthResponse, error)
	signOutFn       func(ctx context.Context, actorID string) error
	getActorFn      func(ctx context.Context, actorID string) (*models.Actor, error)
	updateProfileFn func(ctx context.Context, actorID string, patch models.ProfilePatch) (*models.Actor, error)
	listProvidersFn func(ctx context.Context, filter models.ProviderFilter) ([]models.PublicProfile, error)
	getProviderFn   func(ctx context.Context, providerID string) (*models.PublicProfile, error)
	observeFn       func(ctx context.Context, actorID string) <-chan models.SessionEvent
}

func (m *mockUserService) SignUp(ctx context.Context, req models.SignUpRequest) (*user.AuthResponse, error) {
	return m.signUpFn(ctx, req)
}

func (m *mockUserService) SignIn(ctx context.Context, email, password string) (*user.AuthResponse, error) {
	return m.signInFn(ctx, email, password)
}

func (m *mockUserService) SignOut(ctx context.Context, actorID string) error {
	return m.signOutFn(ctx, actorID)
}

func (m *mockUserService) Authenticate(context.Context, string) (string, models.Role, error) {
	return "", "", nil
}

func (m *mockUserService) Observe(ctx context.Context, actorID string) <-chan models.SessionEvent {
	if m.observeFn != nil {
		return m.observeFn(ctx, actorID)
	}
	ch := make(chan models.SessionEvent)
	go func() {
		<-ctx.Done()
		close(ch)
	}()
	return ch
}

func (m *mockUserService) GetActor(ctx context.Context, actorID string) (*models.Actor, error) {
	return m.getActorFn(ctx, actorID)
}

func (m *mockUserService) UpdateProfile(ctx context.Context, actorID string, patch models.ProfilePatch) (*models.Actor, error) {
	return m.updateProfileFn(ctx, actorID, patch)
}

func (m *mockUserService) ListProviders(ctx context.Context, filter models.ProviderFilter) ([]models.PublicProfile, error) {
	return m.listProvidersFn(ctx, filter)
}

func (m *mockUserService) GetProvider(ctx context.Context, providerID string) (*models.PublicProfile, error) {
	return m.getProviderFn(ctx, providerID)
}

type mockStorage struct {
	uploadAvatarFn func(ctx context.Context, actorID string, file io.Reader) (string, error)
}

func (m *mockStorage) UploadAvatar(ctx context.Context, actorID string, file io.Reader) (string, error) {
	return m.uploadAvatarFn(ctx, actorID, file)
}
