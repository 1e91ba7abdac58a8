// Package api carries the OpenAPI document for the session HTTP surface.
// The YAML file is the single source of truth: the HTTP adapter embeds it,
// validates inbound requests against it, and serves it at /openapi.yaml.
package api

import _ "embed"

//go:embed openapi.yaml
var Spec []byte
