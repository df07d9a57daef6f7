package domain

// ReceiptDraft is the provisional transaction-shaped object produced by the
// receipt parser and normalizer. It is what the user reviews and edits before
// committing a Transaction; it is never stored as-is.
type ReceiptDraft struct {
	Amount          float64         `json:"amount"`
	Currency        string          `json:"currency"`
	Type            TransactionType `json:"transaction_type,omitempty"`
	MerchantName    string          `json:"merchant_name"`
	Category        string          `json:"category"`
	TransactionDate string          `json:"transaction_date"`
	Description     string          `json:"description"`
	ConfidenceScore float64         `json:"confidence_score"`
	ImageURL        string          `json:"image_url,omitempty"`
}
