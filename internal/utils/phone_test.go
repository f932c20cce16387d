package utils

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePhone(t *testing.T) {
	cases := map[string]string{
		"0712345678":    "254712345678",
		"+254712345678": "254712345678",
		"254712345678":  "254712345678",
		"712345678":     "254712345678",
		" 0712345678 ":  "254712345678",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizePhone(in), "input %q", in)
	}
}

func TestNormalizePhoneIdempotent(t *testing.T) {
	inputs := []string{"0712345678", "+254712345678", "712345678"}
	for _, in := range inputs {
		once := NormalizePhone(in)
		assert.Equal(t, once, NormalizePhone(once))
	}
}

func TestPhoneSuffix(t *testing.T) {
	assert.Equal(t, "712345678", PhoneSuffix("0712345678"))
	assert.Equal(t, "712345678", PhoneSuffix("+254712345678"))
	assert.Equal(t, "712345678", PhoneSuffix("254712345678"))
}

func TestIsPlausiblePhone(t *testing.T) {
	assert.True(t, IsPlausiblePhone("0712345678"))
	assert.True(t, IsPlausiblePhone("254712345678"))
	assert.False(t, IsPlausiblePhone("12345"))
	assert.False(t, IsPlausiblePhone("not-a-phone"))
	assert.False(t, IsPlausiblePhone("2547123456789999"))
}

func TestValidatePhoneNumberLocalOnly(t *testing.T) {
	ok, err := ValidatePhoneNumber(context.Background(), "0712345678", false, nil)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = ValidatePhoneNumber(context.Background(), "12345", false, nil)
	require.NoError(t, err)
	assert.False(t, ok)
}
