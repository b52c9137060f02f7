package next_available_slot

import "time"

// Response ближайший свободный слот
type Response struct {
	NextSlot time.Time // момент начала слота
	Date     string    // "YYYY-MM-DD" в зоне календаря
	Time     string    // "HH:MM"
	Timezone string
}
