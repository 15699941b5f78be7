package core

import "math/rand/v2"

// Tip is a single wellness reminder.
type Tip struct {
	Title   string `yaml:"title"`
	Message string `yaml:"message"`
}

// TipTable is an ordered, read-only list of reminders.
type TipTable []Tip

// DefaultTips is the built-in reminder list.
var DefaultTips = TipTable{
	{"Hydration Reminder", "Time to grab a glass of water!"},
	{"Stretch Break", "Stand up, stretch your arms overhead, and roll your shoulders."},
	{"Eye Rest", "Look away from the screen for 20 seconds at something 20 feet away"},
	{"Mindful Minute", "Take 60 seconds to close your eyes and focus only on your breath."},
	{"Posture Check", "Sit up straight! Are your feet flat and your screen at eye level?"},
	{"Walk Around", "Do a quick 2-minute walk around your room or desk area."},
	{"Productivity Pause", "Take 2-minute nap and recall your progress up till now"},
	{"Wrist and Finger Exercise", "Gently rotate your wrists and stretch your fingers to prevent strain."},
	{"Digital Detox", "Put your phone facedown for the next 5 minutes. No notifications!"},
	{"Breathing Exercise", "Try 4-7-8 breathing: Inhale for 4, hold for 7, Exhale for 8."},
	{"Quick Tidy", "Spend 60 seconds organizing your immediate desk area for better focus."},
	{"Shoulder Release", "Perform 5 shoulder rolls backward and 5 forward to release tension."},
}

// Pick returns one tip chosen by intn, which must return a value in [0, n).
// A nil intn uses math/rand/v2. Pick on an empty table returns false.
func (t TipTable) Pick(intn func(n int) int) (Tip, bool) {
	if len(t) == 0 {
		return Tip{}, false
	}
	if intn == nil {
		intn = rand.IntN
	}
	return t[intn(len(t))], true
}

// Contains reports whether tip is one of the table's entries.
func (t TipTable) Contains(tip Tip) bool {
	for _, x := range t {
		if x == tip {
			return true
		}
	}
	return false
}
