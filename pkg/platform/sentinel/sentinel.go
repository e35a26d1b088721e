package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores, caches and the D&B client
// return these (optionally wrapped) so services can translate them into domain
// errors without depending on a particular backend.
//
//   - ErrNotFound: the record does not exist upstream or in a store
//   - ErrExpired: a cached artifact or token has outlived its TTL
//   - ErrUnavailable: a dependency is temporarily unreachable
//   - ErrRateLimited: the upstream API rejected the call for quota reasons
var (
	ErrNotFound    = errors.New("not found")
	ErrExpired     = errors.New("expired")
	ErrUnavailable = errors.New("unavailable")
	ErrRateLimited = errors.New("rate limited")
)
