package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores and outbound clients
// return these (optionally wrapped) so services can translate them into
// domain errors.
//
// These represent factual states about resources, not validation failures:
// - ErrNotFound: entity does not exist (row missing, guild member 404)
//
// For validation errors (bad input, missing fields), use pkg/domain-errors
// directly.
var ErrNotFound = errors.New("not found")
