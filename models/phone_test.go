package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0712345678", "254712345678"},
		{"+254712345678", "254712345678"},
		{"712345678", "254712345678"},
		{"254712345678", "254712345678"},
		{"0712 345 678", "254712345678"},
		{"(+254) 712-345-678", "254712345678"},
		{"", ""},
		{"abc", ""},
		{"12345", "25412345"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizePhone(tt.in))
		})
	}
}

func TestNormalizePhoneIdempotent(t *testing.T) {
	inputs := []string{
		"0712345678", "+254712345678", "712345678", "0", "00", "254",
		"2540712345678", "+1 (555) 010-9999", "phone", "07-12", "0254712345678",
	}
	for _, in := range inputs {
		once := NormalizePhone(in)
		assert.Equal(t, once, NormalizePhone(once), "input %q", in)
	}
}

func TestIsMobileMoneyPhone(t *testing.T) {
	assert.True(t, IsMobileMoneyPhone(NormalizePhone("0712345678")))
	assert.False(t, IsMobileMoneyPhone(NormalizePhone("12345")))
	assert.False(t, IsMobileMoneyPhone(""))
}

func TestSamePhone(t *testing.T) {
	assert.True(t, SamePhone("0712345678", "+254 712 345 678"))
	assert.False(t, SamePhone("0712345678", "0799999999"))
	assert.False(t, SamePhone("", ""))
}
