package util

import "time"

// FromUnix converts an epoch-seconds timestamp to UTC.
func FromUnix(ts int64) time.Time {
	return time.Unix(ts, 0).UTC()
}

// TradingDate formats a unix timestamp as the UTC calendar date it falls on.
func TradingDate(ts int64) string {
	return FromUnix(ts).Format("2006-01-02")
}
