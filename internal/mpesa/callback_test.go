package mpesa

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const successCallbackJSON = `{
  "Body": {
    "stkCallback": {
      "MerchantRequestID": "29115-34620561-1",
      "CheckoutRequestID": "ws_CO_191220191020363925",
      "ResultCode": 0,
      "ResultDesc": "The service request is processed successfully.",
      "CallbackMetadata": {
        "Item": [
          {"Name": "Amount", "Value": 25000.00},
          {"Name": "MpesaReceiptNumber", "Value": "NLJ7RT61SV"},
          {"Name": "TransactionDate", "Value": 20191219102115},
          {"Name": "PhoneNumber", "Value": 254712345678}
        ]
      }
    }
  }
}`

const failureCallbackJSON = `{
  "Body": {
    "stkCallback": {
      "MerchantRequestID": "29115-34620561-1",
      "CheckoutRequestID": "ws_CO_191220191020363925",
      "ResultCode": 1032,
      "ResultDesc": "Request cancelled by user"
    }
  }
}`

func TestCallbackEnvelopeSuccess(t *testing.T) {
	var env CallbackEnvelope
	require.NoError(t, json.Unmarshal([]byte(successCallbackJSON), &env))

	cb := env.Body.StkCallback
	assert.True(t, cb.Successful())
	assert.Equal(t, "ws_CO_191220191020363925", cb.CheckoutRequestID)

	details, err := cb.PaymentDetails()
	require.NoError(t, err)
	assert.Equal(t, "NLJ7RT61SV", details.ReceiptNumber)
	assert.Equal(t, "254712345678", details.PhoneNumber)
	assert.True(t, details.Amount.Equal(decimal.NewFromInt(25000)))
}

func TestCallbackEnvelopeFailure(t *testing.T) {
	var env CallbackEnvelope
	require.NoError(t, json.Unmarshal([]byte(failureCallbackJSON), &env))

	cb := env.Body.StkCallback
	assert.False(t, cb.Successful())
	assert.Equal(t, 1032, cb.ResultCode)
	assert.Empty(t, cb.CallbackMetadata.Item)
}

func TestPaymentDetailsStringAmount(t *testing.T) {
	cb := STKCallback{
		ResultCode: 0,
		CallbackMetadata: CallbackMetadata{Item: []MetadataItem{
			{Name: "Amount", Value: json.RawMessage(`"1500.50"`)},
			{Name: "MpesaReceiptNumber", Value: json.RawMessage(`"ABC123"`)},
			{Name: "PhoneNumber", Value: json.RawMessage(`"254700000000"`)},
		}},
	}
	details, err := cb.PaymentDetails()
	require.NoError(t, err)
	assert.True(t, details.Amount.Equal(decimal.NewFromFloat(1500.5)))
	assert.Equal(t, "254700000000", details.PhoneNumber)
}

func TestPaymentDetailsMissingAmount(t *testing.T) {
	cb := STKCallback{
		ResultCode: 0,
		CallbackMetadata: CallbackMetadata{Item: []MetadataItem{
			{Name: "MpesaReceiptNumber", Value: json.RawMessage(`"ABC123"`)},
			{Name: "PhoneNumber", Value: json.RawMessage(`"254700000000"`)},
		}},
	}
	// Money we cannot quantify must never reach the ledger.
	_, err := cb.PaymentDetails()
	assert.Error(t, err)
}

func TestPaymentDetailsZeroAmount(t *testing.T) {
	cb := STKCallback{
		ResultCode: 0,
		CallbackMetadata: CallbackMetadata{Item: []MetadataItem{
			{Name: "Amount", Value: json.RawMessage(`0`)},
			{Name: "MpesaReceiptNumber", Value: json.RawMessage(`"ABC123"`)},
		}},
	}
	_, err := cb.PaymentDetails()
	assert.Error(t, err)
}

func TestPaymentDetailsReceiptOptional(t *testing.T) {
	cb := STKCallback{
		ResultCode: 0,
		CallbackMetadata: CallbackMetadata{Item: []MetadataItem{
			{Name: "Amount", Value: json.RawMessage(`1500`)},
			{Name: "PhoneNumber", Value: json.RawMessage(`"254700000000"`)},
		}},
	}
	details, err := cb.PaymentDetails()
	require.NoError(t, err)
	assert.Empty(t, details.ReceiptNumber)
	assert.True(t, details.Amount.Equal(decimal.NewFromInt(1500)))
}

func TestAcks(t *testing.T) {
	assert.Equal(t, 0, AckAccepted().ResultCode)
	rej := AckRejected("bad payload")
	assert.Equal(t, 1, rej.ResultCode)
	assert.Equal(t, "bad payload", rej.ResultDesc)
}
