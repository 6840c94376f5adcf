// Copyright (c) 2025 Chainledger
// Licensed under the MIT License. See LICENSE file in the project root for details.

package backend

import (
	"time"
)

// Endpoints holds the issuer paths relative to the base URL.
type Endpoints struct {
	Token   string // e.g. "/api/token/"
	Refresh string // e.g. "/api/token/refresh/"
	Profile string // e.g. "/api/user/update/"
}

// New creates the HTTP issuer client.
func New(baseURL string, endpoints Endpoints, timeout time.Duration, userAgent string) *HTTP {
	return newHTTP(baseURL, endpoints, newHTTPClient(timeout), userAgent)
}
