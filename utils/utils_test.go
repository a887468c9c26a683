package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatPrice(t *testing.T) {
	assert.Equal(t, "$1.250.000", FormatPrice(1250000))
	assert.Equal(t, "$0", FormatPrice(0))
	assert.Equal(t, "-$2.500.000", FormatPrice(-2500000))
}

func TestSumLines(t *testing.T) {
	assert.Equal(t, int64(0), SumLines())
	assert.Equal(t, int64(60), SumLines(10, 20, 30))
}

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Cámara Domo 4MP.PNG", "c-mara-domo-4mp.png"},
		{"../../etc/passwd.png", "passwd.png"},
		{`C:\Users\me\foto final.jpg`, "foto-final.jpg"},
		{"  ---.webp", "image.webp"},
		{"", "image"},
		{"kit__nvr--8ch.jpeg", "kit__nvr-8ch.jpeg"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeFileName(tt.in))
		})
	}
}

func TestPublicURLPath(t *testing.T) {
	assert.Equal(t, "/images/products/a.png", PublicURLPath("public/images/products/a.png"))
}
