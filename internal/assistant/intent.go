package assistant

import (
	"fmt"
	"regexp"
	"time"
)

var appointmentPattern = regexp.MustCompile(`(?i)(available|appointment|book|schedule|slot|next time|next opening)`)

// IsAppointmentQuery сообщает, что вопрос посетителя касается записи на приём
func IsAppointmentQuery(text string) bool {
	return appointmentPattern.MatchString(text)
}

// DescribeNextSlot текст ответа о ближайшем свободном слоте. nil означает, что слотов нет
func DescribeNextSlot(slot *time.Time, loc *time.Location) string {
	if slot == nil {
		return "We're currently fully booked for the next few weeks, but new slots open daily."
	}
	return fmt.Sprintf("Our next available appointment is %s.", slot.In(loc).Format("Monday, January 2 at 3:04 PM"))
}
