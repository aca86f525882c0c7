package sqlite

import (
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// FormatBoolForDB converts a bool to the INTEGER stored in the completed column.
func FormatBoolForDB(b bool) int {
	if b {
		return 1
	}
	return 0
}

// ParseBoolFromDB converts a stored INTEGER back to a bool. Any non-zero value is true.
func ParseBoolFromDB(v int64) bool {
	return v != 0
}

// ValidateDateForDB checks that s is a YYYY-MM-DD calendar date before it is written.
func ValidateDateForDB(s string) error {
	t, err := time.Parse(dateLayout, s)
	if err != nil || t.Format(dateLayout) != s {
		return fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return nil
}

// CompletionID derives the record id of a completion from its natural key.
func CompletionID(taskID int64, date string) string {
	return fmt.Sprintf("%d_%s", taskID, date)
}
