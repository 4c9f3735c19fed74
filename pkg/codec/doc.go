// Package codec holds the byte-level helpers shared by the OTP, PKCE, token
// and vault packages: big-endian counter packing, base64 variants, strict
// ASCII and UTF-8 conversion and SHA-256 hashing.
//
// Helpers that can fail return sentinel errors declared in errors.go so
// callers can match them with errors.Is.
package codec
