package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/frahmantamala/drive-sharing/internal"
	"github.com/frahmantamala/drive-sharing/internal/directory"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
)

var _ = ginkgo.Describe("Auth Handler", func() {
	var (
		handler  *Handler
		tokenGen *JWTTokenGenerator
		users    *mockUserLookup
	)

	ginkgo.BeforeEach(func() {
		tokenGen = NewJWTTokenGenerator(
			"access-secret-for-tests-0123456789abcdef",
			"refresh-secret-for-tests-0123456789abcdef",
			15*time.Minute,
			24*time.Hour,
		)
		hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.MinCost)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())

		users = newMockUserLookup(
			&directory.User{ID: 1, Email: "usuario@ejemplo.com", PasswordHash: string(hash), IsActive: true},
			&directory.User{ID: 4, Email: "ana.martinez@ejemplo.com", PasswordHash: string(hash), IsActive: false},
		)
		handler = NewHandler(NewService(users, tokenGen, bcrypt.MinCost))
	})

	errorCode := func(w *httptest.ResponseRecorder) string {
		var resp struct {
			Error struct {
				Code string `json:"code"`
			} `json:"error"`
		}
		gomega.Expect(json.NewDecoder(w.Body).Decode(&resp)).To(gomega.Succeed())
		return resp.Error.Code
	}

	ginkgo.Describe("Login", func() {
		ginkgo.It("returns a token pair", func() {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"email":"usuario@ejemplo.com","password":"password"}`))
			w := httptest.NewRecorder()

			handler.Login(w, req)

			gomega.Expect(w.Code).To(gomega.Equal(http.StatusOK))
			var tokens AuthTokens
			gomega.Expect(json.NewDecoder(w.Body).Decode(&tokens)).To(gomega.Succeed())
			gomega.Expect(tokens.AccessToken).NotTo(gomega.BeEmpty())
			gomega.Expect(tokens.RefreshToken).NotTo(gomega.BeEmpty())
		})

		ginkgo.It("rejects a wrong password with 401", func() {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"email":"usuario@ejemplo.com","password":"nope"}`))
			w := httptest.NewRecorder()

			handler.Login(w, req)

			gomega.Expect(w.Code).To(gomega.Equal(http.StatusUnauthorized))
			gomega.Expect(errorCode(w)).To(gomega.Equal("INVALID_CREDENTIALS"))
		})

		ginkgo.It("rejects an inactive account with 403", func() {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"email":"ana.martinez@ejemplo.com","password":"password"}`))
			w := httptest.NewRecorder()

			handler.Login(w, req)

			gomega.Expect(w.Code).To(gomega.Equal(http.StatusForbidden))
			gomega.Expect(errorCode(w)).To(gomega.Equal("USER_INACTIVE"))
		})

		ginkgo.It("rejects malformed JSON", func() {
			w := httptest.NewRecorder()

			handler.Login(w, httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{`)))

			gomega.Expect(w.Code).To(gomega.Equal(http.StatusBadRequest))
		})
	})

	ginkgo.Describe("AuthMiddleware", func() {
		var (
			caller *internal.User
			next   http.Handler
		)

		ginkgo.BeforeEach(func() {
			caller = nil
			next = handler.AuthMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				caller, _ = internal.UserFromContext(r.Context())
				w.WriteHeader(http.StatusNoContent)
			}))
		})

		serve := func(authorization string) *httptest.ResponseRecorder {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
			if authorization != "" {
				req.Header.Set("Authorization", authorization)
			}
			w := httptest.NewRecorder()
			next.ServeHTTP(w, req)
			return w
		}

		ginkgo.It("attaches the caller for a valid access token", func() {
			token, err := tokenGen.GenerateAccessToken("1", "usuario@ejemplo.com")
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			w := serve("Bearer " + token)

			gomega.Expect(w.Code).To(gomega.Equal(http.StatusNoContent))
			gomega.Expect(caller).To(gomega.Equal(&internal.User{ID: 1, Email: "usuario@ejemplo.com"}))
		})

		ginkgo.It("requires a bearer token", func() {
			gomega.Expect(serve("").Code).To(gomega.Equal(http.StatusUnauthorized))
			gomega.Expect(serve("Basic dXNlcjpwYXNz").Code).To(gomega.Equal(http.StatusUnauthorized))
			gomega.Expect(caller).To(gomega.BeNil())
		})

		ginkgo.It("refuses a refresh token", func() {
			token, err := tokenGen.GenerateRefreshToken("1", "usuario@ejemplo.com")
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			w := serve("Bearer " + token)

			gomega.Expect(w.Code).To(gomega.Equal(http.StatusUnauthorized))
			gomega.Expect(errorCode(w)).To(gomega.Equal("INVALID_TOKEN"))
		})

		ginkgo.It("refuses tokens of deactivated users", func() {
			token, err := tokenGen.GenerateAccessToken("4", "ana.martinez@ejemplo.com")
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			w := serve("Bearer " + token)

			gomega.Expect(w.Code).To(gomega.Equal(http.StatusForbidden))
			gomega.Expect(caller).To(gomega.BeNil())
		})

		ginkgo.It("refuses tokens of unknown users", func() {
			token, err := tokenGen.GenerateAccessToken("99", "ghost@ejemplo.com")
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			gomega.Expect(serve("Bearer " + token).Code).To(gomega.Equal(http.StatusUnauthorized))
		})
	})
})
