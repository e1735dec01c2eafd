package entities

import (
	"os"
	"strings"
	"time"
)

// DateLayout is the canonical due-date layout. Zero-padded and
// date-ordered, so plain string comparison orders dates correctly.
const DateLayout = "2006-01-02"

// Today returns the device-local calendar date as YYYY-MM-DD.
func Today() string {
	return time.Now().Format(DateLayout)
}

// ValidDueDate reports whether s is a well-formed YYYY-MM-DD date.
// The empty string is valid and means unscheduled.
func ValidDueDate(s string) bool {
	if s == "" {
		return true
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return false
	}
	// time.Parse accepts unpadded fields; require the exact form back.
	return t.Format(DateLayout) == s
}

// ResolveDateFormat maps the auto setting to a concrete display
// format: DD-MM-YYYY for French-language locales, YYYY-MM-DD
// otherwise.
func ResolveDateFormat(f DateFormat, locale string) DateFormat {
	if f != DateFormatAuto {
		return f
	}
	if strings.HasPrefix(strings.ToLower(locale), "fr") {
		return DateFormatDMY
	}
	return DateFormatYMD
}

// FormatDisplayDate renders a stored YYYY-MM-DD date for display
// according to the document's date format setting and the host locale.
func FormatDisplayDate(date string, f DateFormat, locale string) string {
	if date == "" {
		return ""
	}
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return date
	}
	switch ResolveDateFormat(f, locale) {
	case DateFormatDMY:
		return t.Format("02-01-2006")
	default:
		return t.Format(DateLayout)
	}
}

// SystemLocale returns the host locale from the environment, used by
// the auto date format.
func SystemLocale() string {
	for _, key := range []string{"LC_ALL", "LC_TIME", "LANG"} {
		if v := os.Getenv(key); v != "" {
			return v
		}
	}
	return ""
}
