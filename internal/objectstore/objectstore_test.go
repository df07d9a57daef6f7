package objectstore

import (
	"strings"
	"testing"
)

func TestReceiptObjectName(t *testing.T) {
	name := ReceiptObjectName("profile-1", "lunch.jpg")
	if !strings.HasPrefix(name, "receipts/profile-1/") {
		t.Errorf("object name %q missing owner prefix", name)
	}
	if !strings.HasSuffix(name, "-lunch.jpg") {
		t.Errorf("object name %q missing filename suffix", name)
	}
}

func TestReceiptObjectName_StripsClientPath(t *testing.T) {
	name := ReceiptObjectName("profile-1", "../../etc/passwd")
	if strings.Contains(name, "..") {
		t.Errorf("object name %q should not contain path traversal", name)
	}
	if !strings.HasSuffix(name, "-passwd") {
		t.Errorf("object name %q should keep only the base name", name)
	}
}

func TestReceiptObjectName_EmptyFilename(t *testing.T) {
	name := ReceiptObjectName("profile-1", "")
	if !strings.HasSuffix(name, "-receipt") {
		t.Errorf("object name %q should fall back to a generic name", name)
	}
}

func TestGCSStore_Enabled(t *testing.T) {
	if NewGCS("").Enabled() {
		t.Error("store with empty bucket should be disabled")
	}
	if !NewGCS("receipt-images").Enabled() {
		t.Error("store with bucket should be enabled")
	}
}
