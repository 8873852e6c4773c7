package kasa

import "encoding/binary"

// initialKey seeds the XOR autokey stream on both directions.
const initialKey byte = 171

// maxFrame caps accepted response bodies. Sysinfo documents run a few
// hundred bytes; anything larger is a corrupt length prefix.
const maxFrame = 1 << 20

// encrypt wraps a JSON body in the plug's wire frame: a big-endian
// length prefix followed by the autokey XOR stream, where each
// ciphertext byte keys the next.
func encrypt(data []byte) []byte {
	frame := make([]byte, 4+len(data))
	binary.BigEndian.PutUint32(frame, uint32(len(data)))

	key := initialKey
	for i, c := range data {
		key ^= c
		frame[4+i] = key
	}
	return frame
}

// decryptBody reverses the autokey stream for a frame body, the length
// prefix already stripped.
func decryptBody(body []byte) []byte {
	data := make([]byte, len(body))

	key := initialKey
	for i, c := range body {
		data[i] = key ^ c
		key = c
	}
	return data
}
