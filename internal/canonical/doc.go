// Package canonical produces RFC 8785 canonical JSON and content hashes.
//
// Canonical JSON is used wherever bytes must be stable across runs: catalog
// identity in the journal, notification payloads, and golden transcripts.
//
// Rules:
//   - object keys sorted by UTF-16 code units
//   - strings NFC normalized, no HTML escaping
//   - integers only (floats are rejected)
//   - null is rejected
package canonical
