package mpesa

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

const (
	stkPushPath = "mpesa/stkpush/v1/processrequest"

	// transactionType is fixed for paybill collections.
	transactionType = "CustomerPayBillOnline"

	timestampLayout = "20060102150405"
)

type stkPushRequest struct {
	BusinessShortCode string `json:"BusinessShortCode"`
	Password          string `json:"Password"`
	Timestamp         string `json:"Timestamp"`
	TransactionType   string `json:"TransactionType"`
	Amount            string `json:"Amount"`
	PartyA            string `json:"PartyA"`
	PartyB            string `json:"PartyB"`
	PhoneNumber       string `json:"PhoneNumber"`
	CallBackURL       string `json:"CallBackURL"`
	AccountReference  string `json:"AccountReference"`
	TransactionDesc   string `json:"TransactionDesc"`
}

// STKPushResponse is Daraja's synchronous acknowledgment. ResponseCode
// "0" means the push was accepted for processing; the actual payment
// outcome arrives later on the callback URL.
type STKPushResponse struct {
	MerchantRequestID   string `json:"MerchantRequestID"`
	CheckoutRequestID   string `json:"CheckoutRequestID"`
	ResponseCode        string `json:"ResponseCode"`
	ResponseDescription string `json:"ResponseDescription"`
	CustomerMessage     string `json:"CustomerMessage"`
}

func (r *STKPushResponse) Accepted() bool {
	return r.ResponseCode == "0"
}

// STKPush asks Daraja to pop a payment prompt on the customer's phone.
// phone must already be normalized to 254XXXXXXXXX. Daraja only takes
// whole shillings, so the amount is truncated to its integer part.
func (c *Client) STKPush(ctx context.Context, phone string, amount decimal.Decimal, accountReference, description string) (*STKPushResponse, error) {
	ts := time.Now().Format(timestampLayout)

	req := stkPushRequest{
		BusinessShortCode: c.ShortCode,
		Password:          c.password(ts),
		Timestamp:         ts,
		TransactionType:   transactionType,
		Amount:            amount.Truncate(0).String(),
		PartyA:            phone,
		PartyB:            c.ShortCode,
		PhoneNumber:       phone,
		CallBackURL:       c.CallbackURL,
		AccountReference:  accountReference,
		TransactionDesc:   description,
	}

	var resp STKPushResponse
	if err := c.doRequest(ctx, stkPushPath, req, &resp); err != nil {
		return nil, err
	}
	if !resp.Accepted() {
		return &resp, fmt.Errorf("stk push rejected: %s (%s)", resp.ResponseDescription, resp.ResponseCode)
	}
	return &resp, nil
}
