// Package session turns stored accounts into an authenticated platform
// session.
//
// Manager.Acquire lists the stored accounts and lets the operator pick one,
// add a new one or remove one. A picked account's stored session is reused
// when the platform still accepts it; otherwise the password is requested
// and the refreshed token is written back. With no stored accounts the
// operator is enrolled directly. Acquire only ever returns a session the
// platform has accepted.
package session
