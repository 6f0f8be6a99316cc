// Package middleware groups the fiber middleware mounted by the start command.
//
// rayid tags each request with an X-Ray-ID (kept from the caller when
// present) that logger.WithRayID adds to log lines. auth guards every
// feature route behind the X-API-Key header; /health and /swagger are mounted
// before it and stay public.
package middleware
