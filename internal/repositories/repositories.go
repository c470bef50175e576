// package repositories provides the persistence layer for the badge service.
//
// The token repository is a plain keyed store: one row per user id holding
// the user's OAuth token material. Rows are created out-of-band (operator
// CLI), partially updated on every token refresh, and deleted when the
// refresh token is revoked upstream.
package repositories
