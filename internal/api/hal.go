package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const (
	halContentType  = "application/hal+json"
	alpsContentType = "application/alps+json"
)

// Link is a HAL link object.
type Link struct {
	Href      string `json:"href"`
	Templated bool   `json:"templated,omitempty"`
}

// Links maps link relations to links.
type Links map[string]Link

// ErrorResponse is the body of a failed request. Cause mirrors the wrapped error chain.
type ErrorResponse struct {
	Cause   *ErrorResponse `json:"cause"`
	Message string         `json:"message"`
}

func newErrorResponse(err error) *ErrorResponse {
	if err == nil {
		return nil
	}
	resp := &ErrorResponse{Message: err.Error()}
	if inner := errors.Unwrap(err); inner != nil {
		resp.Cause = newErrorResponse(inner)
	}
	return resp
}

// PageMetadata describes the page returned by a collection resource.
type PageMetadata struct {
	Size          int   `json:"size"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
	Number        int   `json:"number"`
}

type collectionModel struct {
	Embedded map[string][]entityModel `json:"_embedded"`
	Links    Links                    `json:"_links"`
	Page     *PageMetadata            `json:"page,omitempty"`
}

type linksModel struct {
	Links Links `json:"_links"`
}

// entityModel is an entity's JSON properties plus its _links.
type entityModel map[string]json.RawMessage

func newEntityModel(entity any, links Links) (entityModel, error) {
	raw, err := json.Marshal(entity)
	if err != nil {
		return nil, fmt.Errorf("failed to encode entity: %w", err)
	}
	model := entityModel{}
	if err := json.Unmarshal(raw, &model); err != nil {
		return nil, fmt.Errorf("failed to encode entity: %w", err)
	}
	encoded, err := json.Marshal(links)
	if err != nil {
		return nil, fmt.Errorf("failed to encode links: %w", err)
	}
	model["_links"] = encoded
	return model, nil
}

// baseURL returns the absolute URL the client used to reach the server,
// honouring X-Forwarded-Proto and X-Forwarded-Host from a reverse proxy.
func baseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = strings.TrimSpace(strings.Split(proto, ",")[0])
	}

	host := r.Host
	if fwd := r.Header.Get("X-Forwarded-Host"); fwd != "" {
		host = strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	return scheme + "://" + host
}

// decodeBody decodes a JSON request body onto v. Fields already set on v
// survive unless the body names them, which gives PATCH its merge semantics.
func decodeBody(r *http.Request, v any) error {
	if r.Body == nil {
		return errors.New("required request body is missing")
	}
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("required request body is missing")
		}
		return fmt.Errorf("JSON parse error: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return errors.New("JSON parse error: unexpected data after the request body")
	}
	return nil
}

func (a *API) respondJSON(w http.ResponseWriter, status int, contentType string, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		a.logger.Error("failed to marshal response", "error", err)
		http.Error(w, `{"cause":null,"message":"Internal server error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	if _, err := w.Write(response); err != nil {
		a.logger.Debug("failed to write response", "error", err)
	}
}

func (a *API) respondHAL(w http.ResponseWriter, status int, payload any) {
	a.respondJSON(w, status, halContentType, payload)
}

func (a *API) respondError(w http.ResponseWriter, status int, err error) {
	a.respondJSON(w, status, "application/json", newErrorResponse(err))
}

// respondInternalError hides err from the client and logs it instead.
func (a *API) respondInternalError(w http.ResponseWriter, r *http.Request, err error) {
	a.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	a.respondJSON(w, http.StatusInternalServerError, "application/json", ErrorResponse{Message: "Internal server error"})
}
