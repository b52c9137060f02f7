package reconcile_slot_counters

// Request параметры сверки
type Request struct {
	HorizonDays int // сколько дней после сегодняшнего проверять
}

// Correction исправленный счетчик
type Correction struct {
	Date string `json:"date"`
	Time string `json:"time"`
	Was  int    `json:"was"`
	Now  int    `json:"now"`
}

// Response результат сверки
type Response struct {
	From        string       `json:"from"`
	To          string       `json:"to"`
	Checked     int          `json:"checked"`
	Corrections []Correction `json:"corrections"`
}
