package http

import (
	"context"
	_ "embed"
	"encoding/json"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/m-mizutani/goerr/v2"
)

//go:embed openapi.yaml
var openapiYAML []byte

type openapiDoc struct {
	yaml []byte
	json []byte
}

// loadOpenAPI parses and validates the embedded API description
func loadOpenAPI(ctx context.Context) (*openapiDoc, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(openapiYAML)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to parse openapi.yaml")
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, goerr.Wrap(err, "invalid openapi.yaml")
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to encode OpenAPI document")
	}

	return &openapiDoc{yaml: openapiYAML, json: raw}, nil
}

func (d *openapiDoc) serveYAML(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(d.yaml)
}

func (d *openapiDoc) serveJSON(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(d.json)
}
