package middleware_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"fixit/middleware"
	"fixit/models"
	"fixit/utils"
)

type mockAuthenticator struct {
	authenticateFn func(ctx context.Context, token string) (string, models.Role, error)
}

func (m *mockAuthenticator) Authenticate(ctx context.Context, token string) (string, models.Role, error) {
	return m.authenticateFn(ctx, token)
}

func whoAmI(c *gin.Context) {
	id, role := middleware.ActorFrom(c)
	c.JSON(http.StatusOK, gin.H{"id": id, "role": role})
}

var _ = Describe("JWTAuthMiddleware", func() {
	var (
		auth   *mockAuthenticator
		router *gin.Engine
	)

	BeforeEach(func() {
		auth = &mockAuthenticator{authenticateFn: func(_ context.Context, token string) (string, models.Role, error) {
			if token == "good" {
				return "p1", models.RoleProvider, nil
			}
			return "", "", utils.NewUnauthorized("session has been replaced")
		}}
		router = gin.New()
		router.GET("/me", middleware.JWTAuthMiddleware(auth), whoAmI)
		router.GET("/earnings", middleware.JWTAuthMiddleware(auth), middleware.RequireRole(models.RoleCustomer), whoAmI)
	})

	serve := func(req *http.Request) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	It("returns 401 without a token", func() {
		w := serve(httptest.NewRequest(http.MethodGet, "/me", nil))
		Expect(w.Code).To(Equal(http.StatusUnauthorized))
	})

	It("returns 401 for a rejected token", func() {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer stale")
		w := serve(req)
		Expect(w.Code).To(Equal(http.StatusUnauthorized))

		var body utils.ErrorResponse
		Expect(json.Unmarshal(w.Body.Bytes(), &body)).To(Succeed())
		Expect(body.Kind).To(Equal(utils.KindUnauthorized))
	})

	It("returns 503 when the session store is down", func() {
		auth.authenticateFn = func(context.Context, string) (string, models.Role, error) {
			return "", "", utils.NewRemoteUnavailable("authenticate failed", nil)
		}
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer good")
		Expect(serve(req).Code).To(Equal(http.StatusServiceUnavailable))
	})

	It("sets the actor for the handler", func() {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer good")
		w := serve(req)
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.String()).To(MatchJSON(`{"id":"p1","role":"provider"}`))
	})

	It("accepts the token as a query parameter", func() {
		w := serve(httptest.NewRequest(http.MethodGet, "/me?token=good", nil))
		Expect(w.Code).To(Equal(http.StatusOK))
	})

	It("forbids the wrong role", func() {
		req := httptest.NewRequest(http.MethodGet, "/earnings", nil)
		req.Header.Set("Authorization", "Bearer good")
		Expect(serve(req).Code).To(Equal(http.StatusForbidden))
	})
})

var _ = Describe("RateLimitMiddleware", func() {
	It("limits each client separately", func() {
		router := gin.New()
		router.Use(middleware.RateLimitMiddleware(2))
		router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

		hit := func(ip string) int {
			req := httptest.NewRequest(http.MethodGet, "/ping", nil)
			req.Header.Set("X-Forwarded-For", ip+", 10.0.0.1")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			return w.Code
		}

		Expect(hit("1.1.1.1")).To(Equal(http.StatusOK))
		Expect(hit("1.1.1.1")).To(Equal(http.StatusOK))
		Expect(hit("1.1.1.1")).To(Equal(http.StatusTooManyRequests))
		Expect(hit("2.2.2.2")).To(Equal(http.StatusOK))
	})
})
