package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitList(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"blank", "   ", nil},
		{"only separators", ", ,", nil},
		{"trims and dedupes", " 10.0.0.0/8,,10.0.0.0/8 , 127.0.0.1", []string{"10.0.0.0/8", "127.0.0.1"}},
		{"keeps order", "https://b.example,https://a.example", []string{"https://b.example", "https://a.example"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitList(tt.raw))
		})
	}
}
