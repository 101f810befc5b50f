package flow

import (
	"fmt"

	"github.com/clausops/escaperoom/internal/models"
)

// Screen identifies which view the client should render.
type Screen string

const (
	ScreenIntro      Screen = "INTRO"
	ScreenTeamEntry  Screen = "TEAM_ENTRY"
	ScreenRoom1      Screen = "ROOM_1"
	ScreenRoom2      Screen = "ROOM_2"
	ScreenRoom3      Screen = "ROOM_3"
	ScreenRoom4      Screen = "ROOM_4"
	ScreenRoom5      Screen = "ROOM_5"
	ScreenCompletion Screen = "COMPLETION"
	ScreenUnknown    Screen = "UNKNOWN"
)

// View is the resolved render decision for a room index. WithLayout
// selects the shared timer/progress chrome around puzzle rooms.
type View struct {
	Screen     Screen `json:"screen"`
	WithLayout bool   `json:"with_layout"`
}

var roomScreens = map[int]Screen{
	models.RoomIntro:      ScreenIntro,
	models.RoomTeamEntry:  ScreenTeamEntry,
	1:                     ScreenRoom1,
	2:                     ScreenRoom2,
	3:                     ScreenRoom3,
	4:                     ScreenRoom4,
	5:                     ScreenRoom5,
	models.RoomCompletion: ScreenCompletion,
}

// Route maps a room index to its view. Out-of-domain indices resolve to
// the fallback screen; they are reachable only through the dev-mode room
// jump and must not crash.
func Route(room int) View {
	screen, ok := roomScreens[room]
	if !ok {
		return View{Screen: ScreenUnknown, WithLayout: false}
	}
	return View{
		Screen:     screen,
		WithLayout: room >= models.RoomFirst && room <= models.RoomLast,
	}
}

// Progress reports completed vs total puzzle rooms for the progress
// indicator. Pre-game screens count zero; completion counts all.
func Progress(room int) (completed, total int) {
	total = models.RoomLast
	switch {
	case room < models.RoomFirst:
		return 0, total
	case room > models.RoomLast:
		return total, total
	default:
		return room - 1, total
	}
}

// Label returns a human-readable name for a screen, used in logs.
func Label(room int) string {
	v := Route(room)
	if v.Screen == ScreenUnknown {
		return fmt.Sprintf("unknown(%d)", room)
	}
	return string(v.Screen)
}
