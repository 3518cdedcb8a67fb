package swagger

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/frahmantamala/drive-sharing/internal"
	"github.com/frahmantamala/drive-sharing/internal/transport"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/legacy"
)

// Document is a validated OpenAPI document together with its raw bytes.
type Document struct {
	raw    []byte
	spec   *openapi3.T
	router routers.Router
}

// LoadDocument reads and validates the OpenAPI document at path.
func LoadDocument(ctx context.Context, path string) (*Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read openapi document: %w", err)
	}

	loader := openapi3.NewLoader()
	loader.Context = ctx
	spec, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("parse openapi document: %w", err)
	}
	if err := spec.Validate(ctx); err != nil {
		return nil, fmt.Errorf("invalid openapi document: %w", err)
	}

	router, err := legacy.NewRouter(spec)
	if err != nil {
		return nil, fmt.Errorf("build openapi router: %w", err)
	}

	return &Document{raw: raw, spec: spec, router: router}, nil
}

func (d *Document) Spec() *openapi3.T {
	return d.spec
}

// ServeHTTP serves the document as loaded.
func (d *Document) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(d.raw)
}

// ValidateRequests rejects requests whose parameters or body do not match the
// document. Requests to routes the document does not describe pass through.
// Authentication is left to the auth middleware.
func (d *Document) ValidateRequests(next http.Handler) http.Handler {
	base := transport.NewBaseHandler(nil)
	opts := &openapi3filter.Options{
		AuthenticationFunc: openapi3filter.NoopAuthenticationFunc,
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route, pathParams, err := d.router.FindRoute(r)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		input := &openapi3filter.RequestValidationInput{
			Request:    r,
			PathParams: pathParams,
			Route:      route,
			Options:    opts,
		}
		if err := openapi3filter.ValidateRequest(r.Context(), input); err != nil {
			base.HandleServiceError(w, internal.NewValidationError(requestErrorMessage(err), internal.ErrCodeValidationFailed))
			return
		}

		next.ServeHTTP(w, r)
	})
}

func requestErrorMessage(err error) string {
	var reqErr *openapi3filter.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.Error()
	}
	return "request does not match the API description"
}
