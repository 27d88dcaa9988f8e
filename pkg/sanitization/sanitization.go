package sanitization

import (
	"fmt"
	"strings"
	"unicode"
)

const redactedValue = "[REDACTED]"

const (
	emptyMaskedValue = "(empty)"
	maskedValue      = "***masked***"
)

// AllowedFields are field names that should bypass sanitization.
var AllowedFields = map[string]bool{
	"bucket":          true,
	"distribution_id": true,
	"hosted_zone_id":  true,
	"region":          true,
	"stack":           true,
}

// SanitizationType defines how to sanitize a field.
type SanitizationType int

const (
	FullyRedact SanitizationType = iota
	PartialMask
)

// SensitiveFields defines fields that require explicit sanitization behavior.
//
// This list is intentionally keyed by lowercased field name.
var SensitiveFields = map[string]SanitizationType{
	"secret_access_key": FullyRedact,
	"secretaccesskey":   FullyRedact,
	"session_token":     FullyRedact,
	"sessiontoken":      FullyRedact,

	"password":    FullyRedact,
	"secret":      FullyRedact,
	"private_key": FullyRedact,
	"secret_key":  FullyRedact,

	"api_token":            FullyRedact,
	"authorization":        FullyRedact,
	"authorization_header": FullyRedact,

	"access_key_id": PartialMask,
	"accesskeyid":   PartialMask,
	"account":       PartialMask,
	"account_id":    PartialMask,
	"secret_arn":    PartialMask,
}

// SanitizeLogString removes control characters that could enable log forging.
func SanitizeLogString(value string) string {
	if value == "" {
		return value
	}
	value = strings.ReplaceAll(value, "\r", "")
	value = strings.ReplaceAll(value, "\n", "")
	return value
}

// SanitizeFieldValue sanitizes a field value based on its key name.
//
// This function is intentionally deterministic and safe-by-default for known sensitive keys.
func SanitizeFieldValue(key string, value any) any {
	keyLower := strings.ToLower(strings.TrimSpace(key))
	if keyLower == "" {
		return sanitizeValue(value)
	}
	if AllowedFields[keyLower] {
		return sanitizeValue(value)
	}

	if typ, ok := SensitiveFields[keyLower]; ok {
		switch typ {
		case FullyRedact:
			return redactedValue
		case PartialMask:
			if keyLower == "access_key_id" || keyLower == "accesskeyid" {
				return maskAccessKeyValue(value)
			}
			return maskRestrictedValue(value)
		default:
			return redactedValue
		}
	}

	// Substring-based fallback: treat obvious secrets/tokens as fully redacted.
	blockedSubstrings := []string{
		"secret",
		"token",
		"password",
		"private_key",
		"credential",
		"api_key",
		"authorization",
	}
	for _, substr := range blockedSubstrings {
		if strings.Contains(keyLower, substr) {
			return redactedValue
		}
	}

	return sanitizeValue(value)
}

// MaskFirstLast keeps the first prefixLen and last suffixLen characters and masks the middle.
func MaskFirstLast(value string, prefixLen, suffixLen int) string {
	if value == "" {
		return emptyMaskedValue
	}
	if prefixLen < 0 || suffixLen < 0 {
		return maskedValue
	}
	if len(value) <= prefixLen+suffixLen {
		return maskedValue
	}
	return value[:prefixLen] + "***" + value[len(value)-suffixLen:]
}

// MaskFirstLast4 keeps the first and last 4 characters and masks the middle.
func MaskFirstLast4(value string) string {
	return MaskFirstLast(value, 4, 4)
}

// MaskAccessKeyID keeps the key prefix (AKIA/ASIA) and the last 4 characters.
// Access key IDs are not secrets on their own but identify a principal, so
// only enough survives for log correlation.
func MaskAccessKeyID(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return emptyMaskedValue
	}
	if len(value) <= 8 {
		return maskedValue
	}
	return MaskFirstLast4(value)
}

func sanitizeValue(value any) any {
	switch typed := value.(type) {
	case nil:
		return nil
	case string:
		return SanitizeLogString(typed)
	case []byte:
		return SanitizeLogString(string(typed))
	case map[string]any:
		out := make(map[string]any, len(typed))
		for k, v := range typed {
			out[k] = SanitizeFieldValue(k, v)
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for i := range typed {
			out[i] = sanitizeValue(typed[i])
		}
		return out
	default:
		return SanitizeLogString(fmt.Sprintf("%v", typed))
	}
}

func maskAccessKeyValue(value any) string {
	switch v := value.(type) {
	case string:
		return MaskAccessKeyID(v)
	case []byte:
		return MaskAccessKeyID(string(v))
	default:
		return redactedValue
	}
}

func maskRestrictedValue(value any) string {
	switch v := value.(type) {
	case string:
		return maskRestrictedString(v)
	case []byte:
		return maskRestrictedString(string(v))
	default:
		return redactedValue
	}
}

func maskRestrictedString(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return redactedValue
	}

	// For numeric-ish strings (account IDs), mask all but last 4 digits.
	cleaned := stripNonDigits(value)
	if len(cleaned) >= 4 && len(cleaned) == len(value) {
		if len(cleaned) == 4 {
			return strings.Repeat("*", 4)
		}
		return strings.Repeat("*", len(cleaned)-4) + cleaned[len(cleaned)-4:]
	}

	// For ARNs and other identifiers, show last 4.
	if len(value) >= 4 {
		return "..." + value[len(value)-4:]
	}
	return redactedValue
}

func stripNonDigits(value string) string {
	var b strings.Builder
	b.Grow(len(value))
	for _, r := range value {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
