// Package models contains the shared data types of the badge service:
// persisted token records, the per-request track view, and parsed render
// options.
package models
