package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractReference(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"labeled ref", "ref INV-2025-001", "INV-2025-001"},
		{"labeled reference", "reference: ABC-12345 for March", "ABC-12345"},
		{"labeled no", "payment no. 987654321", "987654321"},
		{"label case insensitive", "REF #QR-550123", "QR-550123"},
		{"standalone long token", "paid TXN12345678 at lunch", "TXN12345678"},
		{"labeled wins over standalone", "ref AB-123 then TXN12345678", "AB-123"},
		{"label target too short", "ref ab", ""},
		{"dashes break standalone token", "invoice INV-2025-001", ""},
		{"plain text", "lunch meeting with client", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractReference(tt.text))
		})
	}
}
