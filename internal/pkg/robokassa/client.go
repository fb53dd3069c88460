package robokassa

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

const checkoutURL = "https://auth.robokassa.ru/Merchant/Index.aspx"

// Config holds RoboKassa configuration
type Config struct {
	MerchantLogin string
	Password1     string
	TestMode      bool
	HashAlgo      HashAlgorithm
}

// Client builds signed checkout links. RoboKassa has no create-payment API:
// the customer is redirected to a signed GET URL.
type Client struct {
	config Config
}

// CheckoutRequest describes one invoice
type CheckoutRequest struct {
	Amount      float64
	InvID       int64
	Description string
	Culture     string
	Shp         map[string]string // custom parameters, with or without the Shp_ prefix
}

// NewClient creates new RoboKassa client
func NewClient(cfg Config) *Client {
	return &Client{config: cfg}
}

// Configured reports whether merchant credentials are present
func (c *Client) Configured() bool {
	return strings.TrimSpace(c.config.MerchantLogin) != "" && strings.TrimSpace(c.config.Password1) != ""
}

// CheckoutURL returns the signed redirect URL for req
func (c *Client) CheckoutURL(req CheckoutRequest) (string, error) {
	if req.Amount <= 0 {
		return "", errors.New("robokassa: amount must be > 0")
	}
	if req.InvID <= 0 {
		return "", errors.New("robokassa: invoice ID must be > 0")
	}
	if !c.Configured() {
		return "", errors.New("robokassa: merchant credentials are not configured")
	}

	outSum := strconv.FormatFloat(req.Amount, 'f', 2, 64)
	invID := strconv.FormatInt(req.InvID, 10)

	shp := make(map[string]string, len(req.Shp))
	for k, v := range req.Shp {
		if !strings.HasPrefix(strings.ToLower(k), "shp_") {
			k = "Shp_" + k
		}
		shp[k] = v
	}

	signature, err := sign(checkoutSignatureBase(c.config.MerchantLogin, outSum, invID, c.config.Password1, shp), c.config.HashAlgo)
	if err != nil {
		return "", fmt.Errorf("robokassa: sign checkout: %w", err)
	}

	params := url.Values{}
	params.Set("MerchantLogin", c.config.MerchantLogin)
	params.Set("OutSum", outSum)
	params.Set("InvId", invID)
	params.Set("Description", req.Description)
	params.Set("SignatureValue", signature)
	culture := req.Culture
	if culture == "" {
		culture = "ru"
	}
	params.Set("Culture", culture)
	if c.config.TestMode {
		params.Set("IsTest", "1")
	}
	for k, v := range shp {
		params.Set(k, v)
	}

	return checkoutURL + "?" + params.Encode(), nil
}
