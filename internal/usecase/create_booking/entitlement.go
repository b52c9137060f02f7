package create_booking

import (
	"strings"
	"time"

	"github.com/m04kA/SMC-SlotBooking/internal/integrations/accountservice"
)

const legacyPlanNone = "none"

// resolvePlan определяет тариф, по которому аккаунт может бронировать на адрес.
// Порядок: подписка на этот адрес -> подписка без адреса (только для адреса по умолчанию) ->
// устаревший тариф аккаунта (только для адреса по умолчанию)
func resolvePlan(account *accountservice.Account, subs []accountservice.Subscription, addressID int64, now time.Time) (string, bool) {
	for _, sub := range subs {
		if sub.AddressID != nil && *sub.AddressID == addressID && sub.IsEntitling() {
			return sub.Plan, true
		}
	}

	if !account.IsDefaultAddress(addressID) {
		return "", false
	}

	for _, sub := range subs {
		if sub.AddressID == nil && sub.IsEntitling() {
			return sub.Plan, true
		}
	}

	plan := strings.TrimSpace(account.LegacyPlan)
	if plan == "" || strings.EqualFold(plan, legacyPlanNone) {
		return "", false
	}
	if account.LegacyPlanExpiry != nil && !account.LegacyPlanExpiry.After(now) {
		return "", false
	}
	return plan, true
}
