package pipeline

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/rjdelrosario/gastos/internal/gemini"
	"github.com/rjdelrosario/gastos/internal/logger"
)

// mockParser is a ReceiptParser returning canned text or a canned error.
type mockParser struct {
	response string
	err      error
	calls    int
	lastReq  gemini.Request
}

func (m *mockParser) ParseReceipt(ctx context.Context, req gemini.Request) (string, error) {
	m.calls++
	m.lastReq = req
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}

// mockImageStore records Save calls.
type mockImageStore struct {
	enabled bool
	url     string
	err     error
	saved   []string
}

func (m *mockImageStore) Enabled() bool { return m.enabled }

func (m *mockImageStore) Save(ctx context.Context, objectName, contentType string, data []byte) (string, error) {
	m.saved = append(m.saved, objectName)
	return m.url, m.err
}

func testUpload() Upload {
	return Upload{Filename: "receipt.jpg", MIMEType: "image/jpeg", Data: []byte("fake image bytes")}
}

func TestValidateUpload(t *testing.T) {
	tests := []struct {
		name    string
		upload  Upload
		wantErr bool
	}{
		{"valid jpeg", testUpload(), false},
		{"valid png", Upload{Filename: "r.png", MIMEType: "image/png", Data: []byte("x")}, false},
		{"pdf rejected", Upload{Filename: "r.pdf", MIMEType: "application/pdf", Data: []byte("x")}, true},
		{"empty mime rejected", Upload{Filename: "r", MIMEType: "", Data: []byte("x")}, true},
		{"empty payload rejected", Upload{Filename: "r.jpg", MIMEType: "image/jpeg"}, true},
		{"oversized rejected", Upload{Filename: "r.jpg", MIMEType: "image/jpeg", Data: bytes.Repeat([]byte("a"), MaxUploadBytes+1)}, true},
		{"at limit accepted", Upload{Filename: "r.jpg", MIMEType: "image/jpeg", Data: bytes.Repeat([]byte("a"), MaxUploadBytes)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUpload(tt.upload)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateUpload() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidUpload) {
				t.Errorf("validation error should wrap ErrInvalidUpload, got %v", err)
			}
		})
	}
}

func TestParseReceipt_GarbageOutputStillYieldsDraft(t *testing.T) {
	parser := &mockParser{response: "sorry, I cannot read this image"}
	ing := NewIngestor(parser, nil, logger.NewWithWriter(&bytes.Buffer{}))

	draft, err := ing.ParseReceipt(context.Background(), testUpload(), Options{DefaultCurrency: "PHP"})
	if err != nil {
		t.Fatalf("ParseReceipt failed: %v", err)
	}
	if draft.Currency != "PHP" || len(draft.Currency) != 3 {
		t.Errorf("Currency = %q, want 3-letter default", draft.Currency)
	}
	if draft.ConfidenceScore < 0 || draft.ConfidenceScore > 1 {
		t.Errorf("ConfidenceScore = %v, want within [0,1]", draft.ConfidenceScore)
	}
	if draft.ConfidenceScore != 0.1 {
		t.Errorf("ConfidenceScore = %v, want fallback 0.1", draft.ConfidenceScore)
	}
}

func TestParseReceipt_RejectsBeforeRemoteCall(t *testing.T) {
	parser := &mockParser{response: "{}"}
	ing := NewIngestor(parser, nil, logger.NewWithWriter(&bytes.Buffer{}))

	_, err := ing.ParseReceipt(context.Background(), Upload{
		Filename: "doc.pdf",
		MIMEType: "application/pdf",
		Data:     []byte("x"),
	}, Options{})

	if !errors.Is(err, ErrInvalidUpload) {
		t.Fatalf("expected ErrInvalidUpload, got %v", err)
	}
	if parser.calls != 0 {
		t.Errorf("parser called %d times for invalid upload, want 0", parser.calls)
	}
}

func TestParseReceipt_UpstreamErrorSurfaced(t *testing.T) {
	parser := &mockParser{err: gemini.ErrQuotaExceeded}
	ing := NewIngestor(parser, nil, logger.NewWithWriter(&bytes.Buffer{}))

	_, err := ing.ParseReceipt(context.Background(), testUpload(), Options{})
	if !errors.Is(err, gemini.ErrQuotaExceeded) {
		t.Fatalf("expected quota error to surface, got %v", err)
	}
}

func TestParseReceipt_UserOptionsForwarded(t *testing.T) {
	parser := &mockParser{response: `{"amount":10,"currency":"PHP","confidence_score":0.8}`}
	ing := NewIngestor(parser, nil, logger.NewWithWriter(&bytes.Buffer{}))

	opts := Options{
		ProfileID:       "profile-1",
		DefaultCurrency: "USD",
		Instructions:    "prefer short descriptions",
		APIKey:          "user-key",
	}
	if _, err := ing.ParseReceipt(context.Background(), testUpload(), opts); err != nil {
		t.Fatalf("ParseReceipt failed: %v", err)
	}

	if parser.lastReq.DefaultCurrency != "USD" {
		t.Errorf("DefaultCurrency = %q, want USD", parser.lastReq.DefaultCurrency)
	}
	if parser.lastReq.Instructions != "prefer short descriptions" {
		t.Errorf("Instructions not forwarded: %q", parser.lastReq.Instructions)
	}
	if parser.lastReq.APIKey != "user-key" {
		t.Errorf("APIKey not forwarded: %q", parser.lastReq.APIKey)
	}
}

func TestParseReceipt_ImageStorage(t *testing.T) {
	t.Run("stored image URL attached to draft", func(t *testing.T) {
		parser := &mockParser{response: `{"amount":10,"currency":"PHP","confidence_score":0.8}`}
		store := &mockImageStore{enabled: true, url: "https://storage.googleapis.com/b/receipts/p/x.jpg"}
		ing := NewIngestor(parser, store, logger.NewWithWriter(&bytes.Buffer{}))

		draft, err := ing.ParseReceipt(context.Background(), testUpload(), Options{ProfileID: "profile-1"})
		if err != nil {
			t.Fatalf("ParseReceipt failed: %v", err)
		}
		if draft.ImageURL != store.url {
			t.Errorf("ImageURL = %q, want %q", draft.ImageURL, store.url)
		}
		if len(store.saved) != 1 {
			t.Fatalf("Save called %d times, want 1", len(store.saved))
		}
	})

	t.Run("storage failure does not fail the parse", func(t *testing.T) {
		parser := &mockParser{response: `{"amount":10,"currency":"PHP","confidence_score":0.8}`}
		store := &mockImageStore{enabled: true, err: errors.New("bucket unavailable")}
		ing := NewIngestor(parser, store, logger.NewWithWriter(&bytes.Buffer{}))

		draft, err := ing.ParseReceipt(context.Background(), testUpload(), Options{})
		if err != nil {
			t.Fatalf("ParseReceipt should tolerate storage failure, got %v", err)
		}
		if draft.ImageURL != "" {
			t.Errorf("ImageURL = %q, want empty after storage failure", draft.ImageURL)
		}
	})

	t.Run("disabled store skipped", func(t *testing.T) {
		parser := &mockParser{response: `{"amount":10,"currency":"PHP","confidence_score":0.8}`}
		store := &mockImageStore{enabled: false}
		ing := NewIngestor(parser, store, logger.NewWithWriter(&bytes.Buffer{}))

		if _, err := ing.ParseReceipt(context.Background(), testUpload(), Options{}); err != nil {
			t.Fatalf("ParseReceipt failed: %v", err)
		}
		if len(store.saved) != 0 {
			t.Errorf("Save called on disabled store")
		}
	})
}
