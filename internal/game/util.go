package game

import (
	"crypto/rand"
	"sort"
	"strings"
)

// newJoinCode returns a 6-character code drawn from an alphabet without
// ambiguous glyphs, so codes survive being read aloud or typed from a
// screen across the room.
func newJoinCode() string {
	const alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		return "AAAAAA"
	}
	for i := range buf {
		buf[i] = alphabet[int(buf[i])%len(alphabet)]
	}
	return string(buf)
}

// normalizeCode folds a join code to its canonical uppercase form; codes
// are matched case-insensitively.
func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func sortPredictions(list []Prediction) {
	sort.Slice(list, func(i, j int) bool {
		if list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].ID < list[j].ID
		}
		return list[i].CreatedAt.Before(list[j].CreatedAt)
	})
}
