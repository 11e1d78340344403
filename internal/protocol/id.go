package protocol

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
)

// Serialize renders the canonical form an event id is derived from:
// [0, pubkey, created_at, kind, tags, content] with minimal string
// escaping. encoding/json is deliberately not used here: its HTML-safe
// escaping of <, > and & would change the bytes under the hash and
// break id agreement with every other client on the log.
func Serialize(e *Event) []byte {
	var b bytes.Buffer
	b.WriteString(`[0,"`)
	b.WriteString(e.Pubkey)
	b.WriteString(`",`)
	b.WriteString(strconv.FormatInt(e.CreatedAt, 10))
	b.WriteByte(',')
	b.WriteString(strconv.Itoa(e.Kind))
	b.WriteString(`,[`)
	for i, tag := range e.Tags {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('[')
		for j, item := range tag {
			if j > 0 {
				b.WriteByte(',')
			}
			escapeString(&b, item)
		}
		b.WriteByte(']')
	}
	b.WriteString(`],`)
	escapeString(&b, e.Content)
	b.WriteByte(']')
	return b.Bytes()
}

func escapeString(b *bytes.Buffer, s string) {
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '"':
			b.WriteString(`\"`)
		case c == '\\':
			b.WriteString(`\\`)
		case c == '\b':
			b.WriteString(`\b`)
		case c == '\t':
			b.WriteString(`\t`)
		case c == '\n':
			b.WriteString(`\n`)
		case c == '\f':
			b.WriteString(`\f`)
		case c == '\r':
			b.WriteString(`\r`)
		case c < 0x20:
			b.WriteString(fmt.Sprintf(`\u%04x`, c))
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte('"')
}

// ComputeID returns the lowercase hex sha256 of the canonical serialization.
func ComputeID(e *Event) string {
	sum := sha256.Sum256(Serialize(e))
	return hex.EncodeToString(sum[:])
}

// CheckID verifies that the event's id matches its content.
func CheckID(e *Event) bool {
	return e.ID == ComputeID(e)
}
