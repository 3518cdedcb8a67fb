package internal_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/frahmantamala/drive-sharing/internal"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("AppError", func() {
	It("is found through wrapping", func() {
		err := fmt.Errorf("refresh: %w", internal.ErrInvalidToken)

		appErr, ok := internal.IsAppError(err)

		Expect(ok).To(BeTrue())
		Expect(appErr.Code).To(Equal(internal.ErrCodeInvalidToken))
		Expect(errors.Is(err, internal.ErrInvalidToken)).To(BeTrue())
	})

	It("does not match plain errors", func() {
		_, ok := internal.IsAppError(errors.New("boom"))

		Expect(ok).To(BeFalse())
	})

	It("renders the response envelope without the cause", func() {
		appErr := internal.NewInternalError("internal server error", errors.New("dial tcp: refused"))

		status, body := appErr.ToHTTPResponse()
		raw, err := json.Marshal(body)

		Expect(err).NotTo(HaveOccurred())
		Expect(status).To(Equal(http.StatusInternalServerError))
		Expect(string(raw)).To(MatchJSON(`{"error":{"type":"INTERNAL_ERROR","code":"INTERNAL_ERROR","message":"internal server error"}}`))
		Expect(appErr.Error()).To(ContainSubstring("dial tcp"))
	})

	It("joins field messages in the detailed message", func() {
		appErr := internal.NewValidationError("Validation failed", internal.ErrCodeValidationFailed).
			WithDetails(internal.ValidationErrors{Errors: []internal.ValidationError{
				{Field: "email", Message: "email is required"},
				{Field: "access_level_id", Message: "access_level_id is required"},
			}})

		Expect(appErr.Error()).To(Equal("email is required"))
		Expect(appErr.GetDetailedMessage()).To(Equal("email is required; access_level_id is required"))
	})

	It("carries the caller through the request context", func() {
		ctx := internal.ContextWithUser(GinkgoT().Context(), &internal.User{ID: 4, Email: "ana.martinez@ejemplo.com"})

		u, ok := internal.UserFromContext(ctx)

		Expect(ok).To(BeTrue())
		Expect(u.ID).To(Equal(int64(4)))
	})
})
