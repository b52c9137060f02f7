package accountservice

import (
	"strings"
	"time"
)

// Статусы подписок, дающие право на бронирование
const (
	SubscriptionActive   = "active"
	SubscriptionTrialing = "trialing"
)

// Address адрес аккаунта
type Address struct {
	ID     int64  `json:"id"`
	Label  string `json:"label"`
	Line1  string `json:"line1"`
	City   string `json:"city"`
	State  string `json:"state"`
	Zip    string `json:"zip"`
	County string `json:"county"`
}

// Account модель аккаунта из AccountService
type Account struct {
	ID               int64      `json:"id"`
	Name             string     `json:"name"`
	Email            string     `json:"email"`
	Phone            string     `json:"phone"`
	Addresses        []Address  `json:"addresses"`
	DefaultAddressID *int64     `json:"default_address_id"`
	LegacyPlan       string     `json:"legacy_plan"`        // устаревший тариф на уровне аккаунта
	LegacyPlanExpiry *time.Time `json:"legacy_plan_expiry"` // nil = бессрочно
}

// FindAddress ищет адрес аккаунта по ID
func (a *Account) FindAddress(addressID int64) (*Address, bool) {
	for i := range a.Addresses {
		if a.Addresses[i].ID == addressID {
			return &a.Addresses[i], true
		}
	}
	return nil, false
}

// IsDefaultAddress сообщает, что addressID является адресом по умолчанию
func (a *Account) IsDefaultAddress(addressID int64) bool {
	return a.DefaultAddressID != nil && *a.DefaultAddressID == addressID
}

// Subscription модель подписки из AccountService
type Subscription struct {
	ID        int64  `json:"id"`
	Plan      string `json:"plan"`
	AddressID *int64 `json:"address_id"` // nil у подписок, созданных до привязки к адресам
	Status    string `json:"status"`
}

// IsEntitling сообщает, что подписка активна или в пробном периоде
func (s Subscription) IsEntitling() bool {
	status := strings.ToLower(s.Status)
	return status == SubscriptionActive || status == SubscriptionTrialing
}

type blacklistResponse struct {
	Blacklisted bool `json:"blacklisted"`
}

// ErrorResponse модель ошибки от AccountService
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
