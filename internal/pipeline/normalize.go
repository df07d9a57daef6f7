package pipeline

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/rjdelrosario/gastos/internal/domain"
)

// Named defaults substituted during draft repair. The model is treated as
// untrusted: whatever it returns, Normalize terminates in a well-typed draft.
const (
	fallbackMerchant    = "Unknown"
	fallbackCategory    = "Other"
	fallbackDescription = "Could not parse receipt clearly"
	repairedDescription = "Parsed with errors"

	// fallbackConfidence is reported when the response is not JSON at all.
	fallbackConfidence = 0.1

	// repairedConfidence is reported when the response parsed but carried a
	// non-numeric confidence score.
	repairedConfidence = 0.3
)

// ExtractJSON strips a Markdown code fence wrapper from the model response
// if present. Models routinely ignore the "no fences" instruction.
func ExtractJSON(raw string) string {
	s := strings.TrimSpace(raw)

	// Handle ```json ... ``` or ``` ... ``` wrappers.
	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			return s
		}
		s = strings.TrimSpace(s)
	}

	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}

	s = strings.TrimSpace(s)

	// Extra safety: if there's still junk around the JSON object,
	// keep only from the first '{' to the last '}'.
	if start := strings.Index(s, "{"); start != -1 {
		if end := strings.LastIndex(s, "}"); end != -1 && end > start {
			s = strings.TrimSpace(s[start : end+1])
		}
	}

	return s
}

// Normalize turns raw model response text into a usable draft. It never
// fails: unparsable text yields a deterministic low-confidence fallback, and
// a parsable-but-invalid object is repaired field by field. Repair, never
// rejection — the user reviewing the draft is the real validation gate.
func Normalize(raw, defaultCurrency string, today time.Time) domain.ReceiptDraft {
	if defaultCurrency == "" {
		defaultCurrency = domain.DefaultCurrency
	}
	todayStr := today.Format(time.DateOnly)

	var parsed map[string]interface{}
	if err := json.Unmarshal([]byte(ExtractJSON(raw)), &parsed); err != nil {
		return domain.ReceiptDraft{
			Amount:          0,
			Currency:        defaultCurrency,
			MerchantName:    fallbackMerchant,
			Category:        fallbackCategory,
			TransactionDate: todayStr,
			Description:     fallbackDescription,
			ConfidenceScore: fallbackConfidence,
		}
	}

	return domain.ReceiptDraft{
		Amount:          numberOr(parsed, "amount", 0),
		Currency:        currencyOr(parsed, defaultCurrency),
		Type:            typeOr(parsed),
		MerchantName:    stringOr(parsed, "merchant_name", fallbackMerchant),
		Category:        stringOr(parsed, "category", fallbackCategory),
		TransactionDate: dateOr(parsed, todayStr),
		Description:     stringOr(parsed, "description", repairedDescription),
		ConfidenceScore: confidenceOr(parsed),
	}
}

func numberOr(m map[string]interface{}, key string, def float64) float64 {
	if v, ok := m[key].(float64); ok {
		return v
	}
	return def
}

func stringOr(m map[string]interface{}, key, def string) string {
	if v, ok := m[key].(string); ok && strings.TrimSpace(v) != "" {
		return v
	}
	return def
}

// currencyOr keeps the model's currency only when it is exactly 3 characters.
func currencyOr(m map[string]interface{}, def string) string {
	if v, ok := m["currency"].(string); ok && len(v) == 3 {
		return v
	}
	return def
}

// typeOr keeps an explicit income/expense hint and drops anything else.
func typeOr(m map[string]interface{}) domain.TransactionType {
	if v, ok := m["transaction_type"].(string); ok {
		t := domain.TransactionType(v)
		if t.Valid() {
			return t
		}
	}
	return ""
}

// dateOr keeps the model's date only when it parses as YYYY-MM-DD.
func dateOr(m map[string]interface{}, def string) string {
	if v, ok := m["transaction_date"].(string); ok {
		if _, err := time.Parse(time.DateOnly, strings.TrimSpace(v)); err == nil {
			return strings.TrimSpace(v)
		}
	}
	return def
}

// confidenceOr clamps a numeric confidence into [0,1] and substitutes a
// fixed mid-low default for anything non-numeric.
func confidenceOr(m map[string]interface{}) float64 {
	v, ok := m["confidence_score"].(float64)
	if !ok {
		return repairedConfidence
	}
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
