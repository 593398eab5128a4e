// Package api builds the huma API that every HTTP operation registers on.
package api

import (
	"encoding/json"
	"io"
	"maps"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	_ "github.com/danielgtaylor/huma/v2/formats/cbor"
	"github.com/go-chi/chi/v5"

	"github.com/janisto/orangutan-api/internal/platform/respond"
)

const (
	// Title is the OpenAPI document title.
	Title = "Orangutan API"
	// DocsPath serves the interactive API docs.
	DocsPath = "/api-docs"

	contentTypeJSON = "application/json"
	contentTypeCBOR = "application/cbor"
)

// jsonFormat writes JSON without HTML escaping so path values containing
// <, > or & are echoed byte for byte.
var jsonFormat = huma.Format{
	Marshal: func(w io.Writer, v any) error {
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		return enc.Encode(v)
	},
	Unmarshal: huma.DefaultJSONFormat.Unmarshal,
}

// NewConfig returns the huma configuration for the service.
//
// The default create hooks are dropped: they add a $schema member to every
// object body, and the root payload must be exactly {"message": ...}.
// Wildcard and unsupported Accept values fall back to JSON.
func NewConfig(version string) huma.Config {
	cfg := huma.DefaultConfig(Title, version)
	cfg.DocsPath = DocsPath
	cfg.CreateHooks = nil

	formats := maps.Clone(huma.DefaultFormats)
	formats[contentTypeJSON] = jsonFormat
	formats["json"] = jsonFormat
	cfg.Formats = formats
	cfg.DefaultFormat = contentTypeJSON
	return cfg
}

// New mounts a huma API on router and advertises CBOR next to JSON in the
// generated OpenAPI document. Operations registered on the returned API pick
// their response format with the same Accept rules as problem responses.
func New(router chi.Router, version string) huma.API {
	api := humachi.New(router, NewConfig(version))
	api.OpenAPI().OnAddOperation = append(api.OpenAPI().OnAddOperation, addCBORContent)
	return negotiatingAPI{API: api}
}

// negotiatingAPI overrides huma's exact-match negotiation: CBOR is chosen
// only when the Accept header ranks it above JSON, so q=0 refuses it.
type negotiatingAPI struct {
	huma.API
}

func (a negotiatingAPI) Negotiate(accept string) (string, error) {
	if respond.PrefersCBOR(accept) {
		return contentTypeCBOR, nil
	}
	return contentTypeJSON, nil
}

func addCBORContent(_ *huma.OpenAPI, op *huma.Operation) {
	if op.RequestBody != nil && op.RequestBody.Content != nil {
		if jsonContent, ok := op.RequestBody.Content["application/json"]; ok {
			op.RequestBody.Content["application/cbor"] = jsonContent
		}
	}
	for _, resp := range op.Responses {
		if resp.Content == nil {
			continue
		}
		if jsonContent, ok := resp.Content["application/json"]; ok {
			resp.Content["application/cbor"] = jsonContent
		}
	}
}
