package slotcounter

import "github.com/m04kA/SMC-SlotBooking/pkg/dbmetrics"

type DBExecutor = dbmetrics.DBExecutor
