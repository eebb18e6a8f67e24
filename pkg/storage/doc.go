// Package storage provides utilities shared across user repository
// implementations, currently the sentinel errors.
//
// Repository adapters (memory, postgres) implement the users.Repository
// interface defined in pkg/users. This package contains only shared
// types and helpers, not the interface itself.
package storage
