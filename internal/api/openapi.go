package api

import _ "embed"

// OpenAPISpec is the YAML API description served at /openapi.json.
//
//go:embed openapi.yaml
var OpenAPISpec []byte
