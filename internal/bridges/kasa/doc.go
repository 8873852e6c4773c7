// Package kasa drives TP-Link Kasa smartplugs over their local TCP
// protocol on port 9999.
//
// The wire format is a 4-byte big-endian length prefix followed by the
// JSON command obscured with an XOR autokey stream (initial key 171,
// each ciphertext byte keying the next). It is obfuscation rather than
// encryption, but it is what the plugs speak.
package kasa
