package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Provider operations.
const (
	ActionPay               = "Pay"
	ActionPaymentDetails    = "PaymentDetails"
	ActionSetPaymentOptions = "SetPaymentOptions"
	ActionExecutePayment    = "ExecutePayment"
	ActionGetVerifiedStatus = "GetVerifiedStatus"
	ActionRefund            = "Refund"
	ActionAddressVerify     = "AddressVerify"
)

// Acknowledgement codes.
const (
	AckSuccess            = "Success"
	AckSuccessWithWarning = "SuccessWithWarning"
	AckFailure            = "Failure"
)

// Payment execution statuses.
const (
	ExecStatusCreated       = "CREATED"
	ExecStatusCompleted     = "COMPLETED"
	ExecStatusIncomplete    = "INCOMPLETE"
	ExecStatusError         = "ERROR"
	ExecStatusReversalError = "REVERSALERROR"
)

// TransactionRecord is the audit entry written for every provider call.
// Records are never mutated after creation.
type TransactionRecord struct {
	ID        string `json:"id"`
	IsSandbox bool   `json:"is_sandbox"`
	Action    string `json:"action"`

	Amount   decimal.NullDecimal `json:"amount"`
	Currency string              `json:"currency,omitempty"`

	Ack               string `json:"ack"`
	CorrelationID     string `json:"correlation_id"`
	PayKey            string `json:"pay_key,omitempty"`
	PaymentExecStatus string `json:"payment_exec_status,omitempty"`
	ErrorCode         string `json:"error_code,omitempty"`
	ErrorMessage      string `json:"error_message,omitempty"`

	RawRequest   string  `json:"raw_request"`
	RawResponse  string  `json:"raw_response"`
	ResponseTime float64 `json:"response_time_ms"`

	CreatedAt time.Time `json:"created_at"`
}

// IsSuccessful reports whether the provider acknowledged the call.
func (t *TransactionRecord) IsSuccessful() bool {
	return t.Ack == AckSuccess || t.Ack == AckSuccessWithWarning
}

// IsPaymentSuccessful is the stricter check for Pay calls: an acknowledged
// Pay does not guarantee the payment was created. Other actions only need
// the acknowledgement.
func (t *TransactionRecord) IsPaymentSuccessful() bool {
	if t.Action != ActionPay {
		return true
	}
	return strings.EqualFold(t.PaymentExecStatus, ExecStatusCreated) ||
		strings.EqualFold(t.PaymentExecStatus, ExecStatusCompleted)
}

// RedirectURL is where the buyer approves the payment identified by the pay key.
func (t *TransactionRecord) RedirectURL() string {
	if t.IsSandbox {
		return fmt.Sprintf("https://www.sandbox.paypal.com/cgi-bin/webscr?cmd=_ap-payment&paykey=%s", t.PayKey)
	}
	return fmt.Sprintf("https://www.paypal.com/cgi-bin/webscr?cmd=_ap-payment&paykey=%s", t.PayKey)
}

// PayRequest describes a Pay call.
type PayRequest struct {
	Receivers   []Receiver
	Currency    string
	ReturnURL   string
	CancelURL   string
	FeesPayer   string
	TrackingID  string
	Memo        string
	SenderEmail string
	IPNURL      string
}

// PaymentDetails is the provider's view of a payment, fetched on the
// return leg.
type PaymentDetails struct {
	Record   *TransactionRecord
	Status   string
	Currency string
	// Memo holds the order total sent with the Pay call.
	Memo        string
	SenderEmail string
}
