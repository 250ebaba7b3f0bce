// Package digest computes stable fingerprints for check definitions and
// results.
//
// Fingerprints are SHA-256 over RFC 8785 canonical JSON with domain
// separation:
//
//	SHA256(domain || 0x00 || canonical_json)
//
// Canonical JSON sorts object keys by UTF-16 code units, NFC-normalizes
// strings, disables HTML escaping and rejects floats and nulls, so the same
// logical value always hashes the same way regardless of map iteration order
// or input normalization.
package digest
