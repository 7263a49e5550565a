package privacy

import (
	"strings"

	"unifiedinbox/internal/constants"

	"github.com/sirupsen/logrus"
)

// MaskPhoneNumber keeps the last digits of a phone number and an optional
// leading plus. Example: "+905551112233" -> "+********2233"
func MaskPhoneNumber(phone string) string {
	if phone == "" {
		return ""
	}

	prefix := ""
	if strings.HasPrefix(phone, "+") {
		prefix = "+"
		phone = phone[1:]
	}
	return prefix + maskString(phone, constants.DefaultPhoneMaskLength)
}

// MaskText hides message bodies while keeping their length visible
func MaskText(text string) string {
	if text == "" {
		return ""
	}
	return "[" + strings.Repeat("*", min(len([]rune(text)), 8)) + "]"
}

func maskString(s string, keepLast int) string {
	if len(s) <= keepLast {
		return strings.Repeat("*", len(s))
	}
	return strings.Repeat("*", len(s)-keepLast) + s[len(s)-keepLast:]
}

// MaskFields masks the well-known sensitive keys of a logrus field set.
// Verbose mode logs the fields unmasked.
func MaskFields(fields logrus.Fields, verbose bool) logrus.Fields {
	if fields == nil || verbose {
		return fields
	}

	masked := make(logrus.Fields, len(fields))
	for k, v := range fields {
		s, ok := v.(string)
		if !ok {
			masked[k] = v
			continue
		}
		switch k {
		case "phone", "from", "to", "recipient_id", "counterpart":
			masked[k] = MaskPhoneNumber(s)
		case "text", "body":
			masked[k] = MaskText(s)
		case "access_token", "verify_token", "token":
			masked[k] = "[REDACTED]"
		default:
			masked[k] = v
		}
	}
	return masked
}
