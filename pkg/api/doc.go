// Package api defines the JSON wire types of the portier HTTP surface:
// structured errors and the public view of a user.
//
// The package has zero external dependencies and performs no I/O.
//
// Core types:
//   - [APIError]: Structured error with type, code, param, and message
//   - [User]: Public projection of users.User without credential material
package api
