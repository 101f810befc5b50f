package catalog

import (
	"fmt"
	"strings"

	"github.com/clausops/escaperoom/internal/models"
)

// MaxHints is the per-room hint ceiling.
const MaxHints = 3

// Answers maps each room key to its correct answer, stored lowercase.
var Answers = map[string]string{
	"room1": "candy",
	"room2": "bells",
	"room3": "rudolph",
	"room4": "treats",
	"room5": "magic",
}

// Hints holds the ordered hint texts for each room.
var Hints = map[string][]string{
	"room1": {
		"The Ancient Elves honored these children by preserving more than just their words. Every detail was recorded for a reason.",
		"Home is where the heart is — and perhaps where the answer hides. Look beyond the letters themselves.",
		"The brass nameplates hold the key. Take the first letter of each child's hometown, ordered from oldest to newest: Caramel Creek, Anchorage, Nashville, Denver, Yakima.",
	},
	"room2": {
		"Stage 1: Identify which Christmas carol each conveyor belt represents from the toys shown",
		"Stage 2: Look up the lyrics for each carol and find the 5th word. Enter it to reveal a letter",
		"Stage 3: Rearrange the revealed letters to spell a festive 5-letter word",
	},
	"room3": {
		"Each clue describes a reindeer's personality or ability. Think about what each name means — DASHER dashes, DANCER dances, PRANCER prances...",
		"Some trickier ones: VIXEN means a clever female fox. COMET streaks across the sky. DONNER means 'thunder' in German, BLITZEN means 'lightning'.",
	},
	"room4": {
		"Mrs. Claus's recipe holds the key. The quantity numbers aren't just for measuring...",
		"Each quantity tells you which letter position to look at in that ingredient's name.",
	},
	"room5": {
		"The Ancient Elves loved wordplay. Look carefully at how each room's lesson is described — the answer is woven into the words themselves.",
		"Each lesson has one word highlighted. What do those words have in common? Look at how they begin.",
		"Take the first letter of each lesson: Memories, Artistry, Guide, Ingredients, Claus = M-A-G-I-C",
	},
}

// RoomKey converts a room index (1..5) to its catalog key. It returns ""
// for indices outside the puzzle range.
func RoomKey(room int) string {
	if room < models.RoomFirst || room > models.RoomLast {
		return ""
	}
	return fmt.Sprintf("room%d", room)
}

// Rooms returns the puzzle room keys in play order.
func Rooms() []string {
	keys := make([]string, 0, models.RoomLast)
	for r := models.RoomFirst; r <= models.RoomLast; r++ {
		keys = append(keys, RoomKey(r))
	}
	return keys
}

// Normalize trims surrounding whitespace and lowercases an answer.
func Normalize(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// Validate reports whether raw is the correct answer for the given room
// key. Comparison is exact after Normalize; unknown rooms never match.
func Validate(room, raw string) bool {
	want, ok := Answers[room]
	if !ok {
		return false
	}
	return Normalize(raw) == want
}

// HintText returns the 1-based nth hint for a room.
func HintText(room string, n int) (string, bool) {
	hints, ok := Hints[room]
	if !ok || n < 1 || n > len(hints) {
		return "", false
	}
	return hints[n-1], true
}
