// Package httputil provides HTTP plumbing shared by the SectorLock API.
//
// # Responses
//
// [WriteJSON] encodes a value with a status code. [WriteError] maps a
// structured error from pkg/errors onto a status and writes it as
//
//	{"code": "INVALID_DIMENSIONS", "message": "dimension must be positive, got 0"}
//
// Validation failures become 400, missing resources 404, store failures
// 503 and everything else 500. Placement refusals (OVERSIZED,
// NO_VALID_BAND) are not errors at this layer: handlers report them inside
// a 200 response.
//
// # Requests
//
// [DecodeJSON] reads a size-limited JSON body and rejects unknown fields,
// so a typo in a field name fails loudly instead of being ignored.
//
// # Middleware
//
// [Logger] logs each request through charmbracelet/log and reports it to
// the observability HTTP hooks. [RateLimit] answers 429 once a token
// bucket shared by all clients runs dry; press-and-hold frontends poll
// fast, so the bucket should allow a burst of a few dozen requests.
package httputil
