package next_available_slot

import "errors"

// ErrInternal возвращается при внутренних ошибках usecase
var ErrInternal = errors.New("next_available_slot: internal error")
