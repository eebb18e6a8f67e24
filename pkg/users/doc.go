// Package users defines the user identity that portier authenticates and
// the repository contract schemes use to find it.
//
// A User carries the stored credential (a bcrypt hash, never plaintext)
// and two optional opaque tokens whose lifecycle belongs to whatever
// session or reset workflow the hosting application runs. The repository
// is always passed in explicitly; there is no package-level store.
package users
