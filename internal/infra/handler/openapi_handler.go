package handler

import "net/http"

// OpenAPIHandler serves the API description.
type OpenAPIHandler struct {
	spec []byte
}

// NewOpenAPIHandler builds an OpenAPIHandler serving spec.
func NewOpenAPIHandler(spec []byte) *OpenAPIHandler {
	return &OpenAPIHandler{spec: spec}
}

// RegisterRoutes adds the document route.
func (h *OpenAPIHandler) RegisterRoutes(r chiRouter) {
	r.Get("/openapi.yaml", h.serve)
}

func (h *OpenAPIHandler) serve(w http.ResponseWriter, r *http.Request) {
	if len(h.spec) == 0 {
		writeError(w, http.StatusNotFound, errNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/yaml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(h.spec)
}
