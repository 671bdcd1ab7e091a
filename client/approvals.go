package client

import (
	"context"
	"net/http"
	"net/url"
)

// ListApprovals returns approval records, optionally limited to one state
// such as "pending".
func (c *Client) ListApprovals(ctx context.Context, state string) ([]Approval, error) {
	path := "/api/approvals"
	if state != "" {
		path += "?" + url.Values{"status": {state}}.Encode()
	}

	var approvals []Approval
	if err := c.getJSON(ctx, path, &approvals); err != nil {
		return nil, err
	}
	return approvals, nil
}

// ApproveChange accepts a pending change.
func (c *Client) ApproveChange(ctx context.Context, id string) (*Approval, error) {
	var approval Approval
	path := "/api/approvals/" + url.PathEscape(id) + "/approve"
	if err := c.sendJSON(ctx, http.MethodPost, path, struct{}{}, &approval); err != nil {
		return nil, err
	}
	return &approval, nil
}

// RejectChange declines a pending change with a reason for the requester.
func (c *Client) RejectChange(ctx context.Context, id, reason string) (*Approval, error) {
	payload := map[string]string{"reason": reason}
	var approval Approval
	path := "/api/approvals/" + url.PathEscape(id) + "/reject"
	if err := c.sendJSON(ctx, http.MethodPost, path, payload, &approval); err != nil {
		return nil, err
	}
	return &approval, nil
}
