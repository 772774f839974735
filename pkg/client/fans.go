package client

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/xkong/wechatbackends/pkg/contenttype"
)

// LatestMessage returns the most recent message a subscriber sent to the
// account, or nil when there is none. The item carries the sender's fakeid.
func (c *Client) LatestMessage(ctx context.Context) (Document, error) {
	if err := c.requireToken(); err != nil {
		return nil, err
	}

	doc, err := c.do(ctx, &request{
		path: "/cgi-bin/message",
		query: url.Values{
			"lang":         {"zh-CN"},
			"t":            {"message/list"},
			"count":        {"1"},
			"day":          {"0"},
			"filterivrmsg": {"1"},
			"token":        {c.token},
			"f":            {"json"},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("listing messages: %w", err)
	}
	if _, err := c.check(doc); err != nil {
		return nil, fmt.Errorf("listing messages: %w", err)
	}

	raw, ok := doc.Get("msg_items")
	if !ok {
		return nil, &DecodeError{Category: contenttype.JSON, Err: errors.New("missing msg_items")}
	}
	// msg_items is itself a JSON document encoded as a string.
	encoded, ok := raw.(string)
	if !ok {
		return nil, &DecodeError{Category: contenttype.JSON, Err: fmt.Errorf("msg_items is %T, not a string", raw)}
	}

	items, err := unmarshalDocument([]byte(encoded))
	if err != nil {
		return nil, &DecodeError{Category: contenttype.JSON, Snippet: encoded, Err: err}
	}
	return items.Object("msg_item", "0"), nil
}

// LatestFakeID returns the fakeid of the latest sender, or "".
func (c *Client) LatestFakeID(ctx context.Context) (string, error) {
	item, err := c.LatestMessage(ctx)
	if err != nil || item == nil {
		return "", err
	}
	return item.String("fakeid"), nil
}
