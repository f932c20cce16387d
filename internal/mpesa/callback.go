package mpesa

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// CallbackEnvelope is the payload Daraja POSTs to the callback URL
// after the customer completes or abandons the STK prompt.
type CallbackEnvelope struct {
	Body struct {
		StkCallback STKCallback `json:"stkCallback"`
	} `json:"Body"`
}

// STKCallback carries the final result of one push. ResultCode 0 means
// the customer paid; anything else is a failure or cancellation and
// CallbackMetadata is absent.
type STKCallback struct {
	MerchantRequestID string           `json:"MerchantRequestID"`
	CheckoutRequestID string           `json:"CheckoutRequestID"`
	ResultCode        int              `json:"ResultCode"`
	ResultDesc        string           `json:"ResultDesc"`
	CallbackMetadata  CallbackMetadata `json:"CallbackMetadata"`
}

func (c *STKCallback) Successful() bool {
	return c.ResultCode == 0
}

type CallbackMetadata struct {
	Item []MetadataItem `json:"Item"`
}

// MetadataItem values arrive as strings or numbers depending on the
// field, so Value stays untyped until an accessor interprets it.
type MetadataItem struct {
	Name  string          `json:"Name"`
	Value json.RawMessage `json:"Value"`
}

// PaymentDetails is the subset of callback metadata the matcher needs.
// ReceiptNumber can be empty; a payment without one is still money.
type PaymentDetails struct {
	Amount        decimal.Decimal
	ReceiptNumber string
	PhoneNumber   string
}

// PaymentDetails extracts the amount, receipt number and payer phone
// from a successful callback's metadata items. The amount must be
// present and positive; the receipt is optional.
func (c *STKCallback) PaymentDetails() (PaymentDetails, error) {
	var d PaymentDetails
	for _, item := range c.CallbackMetadata.Item {
		switch item.Name {
		case "Amount":
			amt, err := item.decimalValue()
			if err != nil {
				return d, fmt.Errorf("callback Amount: %w", err)
			}
			d.Amount = amt
		case "MpesaReceiptNumber":
			d.ReceiptNumber = item.stringValue()
		case "PhoneNumber":
			d.PhoneNumber = item.stringValue()
		}
	}
	if !d.Amount.GreaterThan(decimal.Zero) {
		return d, fmt.Errorf("callback metadata missing a positive Amount")
	}
	return d, nil
}

func (i MetadataItem) stringValue() string {
	if len(i.Value) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(i.Value, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(i.Value, &n); err == nil {
		return n.String()
	}
	return ""
}

func (i MetadataItem) decimalValue() (decimal.Decimal, error) {
	s := i.stringValue()
	if s == "" {
		return decimal.Zero, fmt.Errorf("empty value")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, err
	}
	return d, nil
}

// Ack is the body returned to Daraja from the callback endpoint.
// Daraja retries deliveries that are not acknowledged with code 0.
type Ack struct {
	ResultCode int    `json:"ResultCode"`
	ResultDesc string `json:"ResultDesc"`
}

func AckAccepted() Ack {
	return Ack{ResultCode: 0, ResultDesc: "Accepted"}
}

func AckRejected(reason string) Ack {
	if reason == "" {
		reason = "Rejected"
	}
	return Ack{ResultCode: 1, ResultDesc: reason}
}
