package game

import "crypto/rand"

const roomCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

const roomCodeLength = 6

// NewRoomCode returns a random public room identifier.
func NewRoomCode() string {
	buf := make([]byte, roomCodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "AAAAAA"
	}
	for i := range buf {
		buf[i] = roomCodeAlphabet[int(buf[i])%len(roomCodeAlphabet)]
	}
	return string(buf)
}

func pickColor(index int) string {
	palette := []string{
		"#ff6b6b",
		"#4dabf7",
		"#51cf66",
		"#ffa94d",
		"#ffd43b",
		"#845ef7",
		"#20c997",
		"#e64980",
		"#868e96",
		"#15aabf",
		"#82c91e",
		"#be4bdb",
	}
	if index < 0 {
		index = 0
	}
	return palette[index%len(palette)]
}
