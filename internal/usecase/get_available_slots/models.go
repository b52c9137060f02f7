package get_available_slots

// Request модель запроса на получение доступных слотов
type Request struct {
	Date string // Дата в формате YYYY-MM-DD в зоне календаря
}

// Response модель ответа со списком доступных слотов
type Response struct {
	Date            string         `json:"date"`
	Timezone        string         `json:"timezone"`
	Slots           []string       `json:"slots"`           // свободные часы "HH:MM" по возрастанию
	Taken           map[string]int `json:"taken"`           // занятость каждого часа, включая заполненные
	CapacityPerSlot int            `json:"capacityPerSlot"` // текущая вместимость слота
}
