package http

import (
	"fmt"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/gorillamux"

	"github.com/aretw0/tendril/api"
)

// loadSpec parses the embedded OpenAPI document and builds a request router
// over it. The document is validated so drift between YAML and handlers
// fails at startup, not per request.
func loadSpec() (*openapi3.T, routers.Router, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(api.Spec)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot parse openapi document: %w", err)
	}
	if err := doc.Validate(loader.Context); err != nil {
		return nil, nil, fmt.Errorf("invalid openapi document: %w", err)
	}
	router, err := gorillamux.NewRouter(doc)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot build openapi router: %w", err)
	}
	return doc, router, nil
}

// validateRequests rejects requests that do not conform to the OpenAPI
// document. Routes outside the document (swagger UI, health, SSE streams)
// pass through untouched.
func (s *Server) validateRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route, pathParams, err := s.router.FindRoute(r)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		input := &openapi3filter.RequestValidationInput{
			Request:    r,
			PathParams: pathParams,
			Route:      route,
		}
		if err := openapi3filter.ValidateRequest(r.Context(), input); err != nil {
			s.writeError(w, http.StatusBadRequest, err.Error())
			s.logger.Warn("request rejected by openapi validation",
				"method", r.Method, "path", r.URL.Path, "error", err)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// serveSpec handles GET /openapi.yaml.
func serveSpec(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/yaml")
	w.Write(api.Spec)
}
