package get_bookings

import (
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/m04kA/SMC-SlotBooking/internal/domain"
	"github.com/m04kA/SMC-SlotBooking/internal/service/bookings/models"
)

// ToServiceRequest формирует фильтр из query параметров.
// from/to принимают RFC 3339 или YYYY-MM-DD (UTC), дата в to включается целиком
func ToServiceRequest(query url.Values) (*models.GetBookingsRequest, error) {
	req := &models.GetBookingsRequest{}

	for _, p := range []struct {
		name string
		dst  **int64
	}{
		{"accountId", &req.AccountID},
		{"addressId", &req.AddressID},
	} {
		raw := query.Get(p.name)
		if raw == "" {
			continue
		}
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid %s: %q", p.name, raw)
		}
		*p.dst = &id
	}

	if raw := query.Get("from"); raw != "" {
		from, _, err := parseInstant(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid from: %w", err)
		}
		req.From = &from
	}

	if raw := query.Get("to"); raw != "" {
		to, dateOnly, err := parseInstant(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid to: %w", err)
		}
		if dateOnly {
			to = to.AddDate(0, 0, 1)
		}
		req.To = &to
	}

	if raw := query.Get("status"); raw != "" {
		req.Status = &raw
	}

	if raw := query.Get("includeInactive"); raw != "" {
		includeInactive, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid includeInactive value: %w", err)
		}
		req.IncludeInactive = includeInactive
	}

	return req, nil
}

func parseInstant(raw string) (time.Time, bool, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, false, nil
	}
	t, err := time.Parse(domain.DateFormat, raw)
	if err != nil {
		return time.Time{}, false, err
	}
	return t, true, nil
}
