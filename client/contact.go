package client

import (
	"context"
	"net/http"

	"medbook/models"
	"medbook/validation"
)

// SubmitContact sends the contact form and returns the server's thank-you
// message. A form with missing fields is rejected locally.
func (c *Client) SubmitContact(ctx context.Context, req models.ContactRequest) (string, error) {
	if err := validation.Struct(req); err != nil {
		return "", err
	}
	return c.do(ctx, request{method: http.MethodPost, path: "/contacts", body: req}, nil)
}
