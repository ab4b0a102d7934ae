package payment

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

// VNPay response code for a successful transaction.
const VNPaySuccessCode = "00"

// vnpayTimeLayout is the yyyyMMddHHmmss layout VNPay expects, in GMT+7.
const vnpayTimeLayout = "20060102150405"

var vnpayZone = time.FixedZone("GMT+7", 7*60*60)

// VNPayConfig holds the merchant settings.
type VNPayConfig struct {
	TmnCode    string
	HashSecret string
	PayURL     string
	ReturnURL  string
	// ExpireAfter bounds how long the payment page stays valid.
	ExpireAfter time.Duration
}

// VNPaySigner builds and verifies VNPay redirect URLs.
type VNPaySigner struct {
	cfg VNPayConfig
}

func NewVNPaySigner(cfg VNPayConfig) *VNPaySigner {
	if cfg.ExpireAfter <= 0 {
		cfg.ExpireAfter = 15 * time.Minute
	}
	return &VNPaySigner{cfg: cfg}
}

// VNPayOrder is one payment to request.
type VNPayOrder struct {
	TxnRef    string
	Amount    int64 // VND
	OrderInfo string
	ClientIP  string
	Created   time.Time
}

// PaymentURL returns the signed redirect URL for the order.
func (s *VNPaySigner) PaymentURL(o VNPayOrder) (string, error) {
	if s.cfg.TmnCode == "" || s.cfg.HashSecret == "" {
		return "", errors.New("vnpay is not configured")
	}
	created := o.Created.In(vnpayZone)
	params := url.Values{}
	params.Set("vnp_Version", "2.1.0")
	params.Set("vnp_Command", "pay")
	params.Set("vnp_TmnCode", s.cfg.TmnCode)
	// VNPay amounts carry two implied decimals.
	params.Set("vnp_Amount", strconv.FormatInt(o.Amount*100, 10))
	params.Set("vnp_CurrCode", "VND")
	params.Set("vnp_TxnRef", o.TxnRef)
	params.Set("vnp_OrderInfo", o.OrderInfo)
	params.Set("vnp_OrderType", "other")
	params.Set("vnp_Locale", "vn")
	params.Set("vnp_ReturnUrl", s.cfg.ReturnURL)
	params.Set("vnp_IpAddr", o.ClientIP)
	params.Set("vnp_CreateDate", created.Format(vnpayTimeLayout))
	params.Set("vnp_ExpireDate", created.Add(s.cfg.ExpireAfter).Format(vnpayTimeLayout))

	query := canonicalQuery(params)
	return s.cfg.PayURL + "?" + query + "&vnp_SecureHash=" + s.sign(query), nil
}

// Verify checks vnp_SecureHash against the other vnp_ parameters.
func (s *VNPaySigner) Verify(params url.Values) bool {
	given := params.Get("vnp_SecureHash")
	if given == "" {
		return false
	}
	signed := url.Values{}
	for k, v := range params {
		if !strings.HasPrefix(k, "vnp_") || k == "vnp_SecureHash" || k == "vnp_SecureHashType" {
			continue
		}
		if len(v) > 0 && v[0] != "" {
			signed.Set(k, v[0])
		}
	}
	expected := s.sign(canonicalQuery(signed))
	return hmac.Equal([]byte(strings.ToLower(given)), []byte(expected))
}

func (s *VNPaySigner) sign(data string) string {
	mac := hmac.New(sha512.New, []byte(s.cfg.HashSecret))
	mac.Write([]byte(data))
	return hex.EncodeToString(mac.Sum(nil))
}

// canonicalQuery joins the parameters sorted by key with query-escaped
// values, the exact string VNPay signs.
func canonicalQuery(params url.Values) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(k))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(params.Get(k)))
	}
	return b.String()
}
