package domain

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-SlotBooking/pkg/types"
)

// SlotKey естественный ключ слота: дата и время суток в зоне календаря
type SlotKey struct {
	YMD  string
	Time types.TimeString
}

func (k SlotKey) String() string {
	return fmt.Sprintf("%s %s", k.YMD, k.Time)
}

// SlotCounter счетчик занятости слота. Строка создается при первой попытке бронирования и не удаляется
type SlotCounter struct {
	Key       SlotKey
	Count     int
	UpdatedAt time.Time
}

// DayAvailability доступность слотов на дату
type DayAvailability struct {
	Date            string
	Slots           []types.TimeString       // доступные для бронирования часы по возрастанию
	Taken           map[types.TimeString]int // занятость каждого кандидата, включая заполненные
	CapacityPerSlot int
}

// FirstSlot возвращает первый доступный час
func (a *DayAvailability) FirstSlot() (types.TimeString, bool) {
	if a == nil || len(a.Slots) == 0 {
		return "", false
	}
	return a.Slots[0], true
}

// IsFull сообщает, что в слоте не осталось мест
func (a *DayAvailability) IsFull(hh types.TimeString) bool {
	return a.Taken[hh] >= a.CapacityPerSlot
}
