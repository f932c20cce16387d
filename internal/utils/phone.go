package utils

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	twilio "github.com/twilio/twilio-go"
	twilioclient "github.com/twilio/twilio-go/client"
	lookupsv2 "github.com/twilio/twilio-go/rest/lookups/v2"
)

// CountryCallingCode is the Kenyan calling code every normalized
// number must carry. M-Pesa (Daraja) only accepts MSISDNs in the
// 2547XXXXXXXX form.
const CountryCallingCode = "254"

var digitsOnly = regexp.MustCompile(`^\d+$`)

// NormalizePhone converts a subscriber-entered phone number into the
// bare-country-code form the payment provider expects:
//
//	"0712345678"    -> "254712345678"
//	"+254712345678" -> "254712345678"
//	"712345678"     -> "254712345678"
//
// Normalization is idempotent: an already-normalized number comes back
// unchanged.
func NormalizePhone(number string) string {
	n := strings.TrimSpace(number)
	n = strings.TrimPrefix(n, "+")
	if strings.HasPrefix(n, "0") {
		n = CountryCallingCode + n[1:]
	}
	if !strings.HasPrefix(n, CountryCallingCode) {
		n = CountryCallingCode + n
	}
	return n
}

// PhoneSuffix returns the last nine digits of the number, the portion
// used to match a payer to a tenant. Shorter inputs are returned whole.
func PhoneSuffix(number string) string {
	n := NormalizePhone(number)
	if len(n) <= 9 {
		return n
	}
	return n[len(n)-9:]
}

// IsPlausiblePhone is the local sanity check applied before any remote
// lookup: normalized Kenyan MSISDNs are 12 digits (254 + 9).
func IsPlausiblePhone(number string) bool {
	n := NormalizePhone(number)
	return len(n) == 12 && digitsOnly.MatchString(n)
}

// ValidatePhoneNumber validates `number`.
//
//   - If validateWithTwilio == true *and* a non-nil Twilio RestClient is
//     provided, the function performs a Twilio Lookups V2 fetch.
//   - Otherwise it validates locally via IsPlausiblePhone.
func ValidatePhoneNumber(
	ctx context.Context,
	number string,
	validateWithTwilio bool,
	tw *twilio.RestClient,
) (bool, error) {
	if !IsPlausiblePhone(number) {
		return false, nil
	}

	if validateWithTwilio && tw != nil {
		e164 := "+" + NormalizePhone(number)
		_, err := tw.LookupsV2.FetchPhoneNumber(e164, &lookupsv2.FetchPhoneNumberParams{})
		if err == nil {
			return true, nil
		}

		if restErr, ok := err.(*twilioclient.TwilioRestError); ok {
			if restErr.Status == 404 { // unable to find that phone number
				return false, nil
			}
			return false, fmt.Errorf("%w: twilio lookup failed: %d %s",
				ErrExternalServiceFailure, restErr.Status, restErr.Error())
		}
		// Context cancel, network failure, etc.
		return false, fmt.Errorf("%w: %v", ErrExternalServiceFailure, err)
	}

	return true, nil
}
