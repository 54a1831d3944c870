// Package domain defines the data types mirrored from the Gatherly REST API
// and the interfaces the rest of the client is built against.
//
// The types here are plain DTOs: the server owns all invariants, and the
// client only tracks optional-field presence (pointers + omitempty). The
// interfaces decouple the high-level services from the HTTP transport and
// from the on-disk credential vault.
package domain
