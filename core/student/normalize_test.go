package student

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeID(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{name: "canonical passes through", raw: "MMC2025-00109", want: "MMC2025-00109"},
		{name: "four digit suffix is zero padded", raw: "MMC2021-0653", want: "MMC2021-00653"},
		{name: "spacing around dash collapses", raw: "MMC2025 - 00101", want: "MMC2025-00101"},
		{name: "inner whitespace stripped", raw: " MMC 2025-00109 ", want: "MMC2025-00109"},
		{name: "lowercase is uppercased", raw: "mmc2025-00109", want: "MMC2025-00109"},
		{name: "legacy short form passes through", raw: "C12-34", want: "C12-34"},
		{name: "malformed", raw: "not-an-id", wantErr: true},
		{name: "empty", raw: "", wantErr: true},
		{name: "too short suffix", raw: "MMC2025-109", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeID(tt.raw)
			if tt.wantErr {
				assert.Equal(t, ErrInvalidID, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)

			// idempotence
			again, err := NormalizeID(got)
			assert.NoError(t, err)
			assert.Equal(t, got, again)
		})
	}
}
