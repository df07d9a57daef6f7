package gemini

import "strings"

// buildPrompt constructs the extraction prompt sent alongside the receipt
// image. The model must return a single JSON object matching the draft
// shape; the normalizer repairs anything that deviates.
func buildPrompt(defaultCurrency, instructions string) string {
	if defaultCurrency == "" {
		defaultCurrency = "PHP"
	}

	var b strings.Builder
	b.WriteString("You are an expert at extracting transaction data from receipt images.\n")
	b.WriteString("Analyze the image and return ONLY a valid JSON object with the following exact structure:\n\n")
	b.WriteString("{\n")
	b.WriteString("  \"amount\": 0.00,\n")
	b.WriteString("  \"currency\": \"" + defaultCurrency + "\",\n")
	b.WriteString("  \"merchant_name\": \"Store Name\",\n")
	b.WriteString("  \"category\": \"Category\",\n")
	b.WriteString("  \"transaction_date\": \"2025-01-19\",\n")
	b.WriteString("  \"description\": \"Brief description\",\n")
	b.WriteString("  \"confidence_score\": 0.95\n")
	b.WriteString("}\n\n")
	b.WriteString("CRITICAL RULES:\n")
	b.WriteString("- Return ONLY valid JSON, absolutely no other text, explanations, or markdown formatting\n")
	b.WriteString("- Do not wrap the JSON in code blocks or backticks\n")
	b.WriteString("- Extract the TOTAL amount paid, not individual items\n")
	b.WriteString("- Use " + defaultCurrency + " as default currency unless clearly stated otherwise\n")
	b.WriteString("- Date format must be YYYY-MM-DD\n")
	b.WriteString("- Confidence score: 0.0 to 1.0 based on image clarity and data extraction certainty\n")
	b.WriteString("- Categories: Food, Transportation, Shopping, Utilities, Entertainment, Healthcare, etc.\n")
	b.WriteString("- If any field is unclear, make a reasonable guess but lower the confidence score\n")
	b.WriteString("- If the image is completely unreadable, set confidence_score to 0.1\n")

	if instructions != "" {
		b.WriteString("\nAdditionally, follow these user-specific instructions:\n")
		b.WriteString(instructions)
		b.WriteString("\n")
	}

	return b.String()
}
