package novatel

import "time"

var gpsEpoch = time.Date(1980, time.January, 6, 0, 0, 0, 0, time.UTC)

// GPSTime converts a GPS week and millisecond of week to a time. Leap
// seconds are not applied, so the result is GPS time expressed in the UTC
// location.
func GPSTime(week uint16, msec uint32) time.Time {
	return gpsEpoch.Add(time.Duration(week)*7*24*time.Hour + time.Duration(msec)*time.Millisecond)
}
