// Package swagger serves the OpenAPI document of the scorebook API.
package swagger

import _ "embed"

// OpenAPI contains the embedded OpenAPI YAML document.
//
//go:embed openapi.yaml
var OpenAPI []byte

// redocScriptURL is the pinned ReDoc bundle the docs page loads.
const redocScriptURL = "https://cdn.redoc.ly/redoc/v2.1.5/bundles/redoc.standalone.js"
