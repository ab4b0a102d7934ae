package models

// PaymentLink is returned to the client, which redirects the browser to it.
type PaymentLink struct {
	PaymentURL string `json:"paymentUrl"`
	Provider   string `json:"provider"`
	Reference  string `json:"reference,omitempty"`
}

// PaymentResult is the outcome of a verified gateway callback.
type PaymentResult struct {
	BookingID string `json:"booking_id"`
	Paid      bool   `json:"paid"`
	Code      string `json:"code,omitempty"`
}

// PaymentReceipt is what a gateway reports for a settled payment. Amount is
// in VND.
type PaymentReceipt struct {
	Method    string
	Reference string
	Amount    int64
}
