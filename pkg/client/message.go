package client

import (
	"context"
	"fmt"
	"net/url"
)

// MessageType is the type discriminator the send endpoint expects.
type MessageType int

// Message types.
const (
	MessageText   MessageType = 1
	MessageImage  MessageType = 2
	MessageAppMsg MessageType = 10
)

func (t MessageType) String() string {
	switch t {
	case MessageText:
		return "text"
	case MessageImage:
		return "image"
	case MessageAppMsg:
		return "appmsg"
	default:
		return fmt.Sprintf("MessageType(%d)", int(t))
	}
}

// Message is one of TextMessage, ImageMessage or AppMessage.
type Message interface {
	Type() MessageType
	fields() url.Values
}

// TextMessage is a plain text message.
type TextMessage struct {
	Content string
}

// Type implements Message.
func (TextMessage) Type() MessageType { return MessageText }

func (m TextMessage) fields() url.Values {
	return url.Values{
		"type":    {"1"},
		"content": {m.Content},
	}
}

// ImageMessage sends an image previously stored with UploadImage.
type ImageMessage struct {
	FileID string
}

// Type implements Message.
func (ImageMessage) Type() MessageType { return MessageImage }

func (m ImageMessage) fields() url.Values {
	return url.Values{
		"type":    {"2"},
		"content": {""},
		"fid":     {m.FileID},
		"fileid":  {m.FileID},
	}
}

// AppMessage sends an existing article batch.
type AppMessage struct {
	AppMsgID string
}

// Type implements Message.
func (AppMessage) Type() MessageType { return MessageAppMsg }

func (m AppMessage) fields() url.Values {
	return url.Values{
		"type":     {"10"},
		"fid":      {m.AppMsgID},
		"appmsgid": {m.AppMsgID},
	}
}

// SendMessage sends msg to a single subscriber identified by fakeID.
func (c *Client) SendMessage(ctx context.Context, fakeID string, msg Message) (Document, error) {
	if err := c.requireToken(); err != nil {
		return nil, err
	}
	if msg == nil {
		return nil, fmt.Errorf("sending message: nil message")
	}

	referer := url.Values{
		"fromfakeid": {fakeID},
		"msgid":      {""},
		"source":     {""},
		"count":      {"20"},
		"t":          {"wxm-singlechat"},
		"lang":       {c.lang},
	}
	c.setReferer(c.baseURL + "/cgi-bin/singlemsgpage?" + referer.Encode())

	form := url.Values{
		"error":    {"false"},
		"token":    {c.token},
		"tofakeid": {fakeID},
		"ajax":     {"1"},
	}
	for k, v := range msg.fields() {
		form[k] = v
	}

	doc, err := c.do(ctx, &request{
		path: "/cgi-bin/singlesend",
		query: url.Values{
			"t":    {"ajax-response"},
			"lang": {c.lang},
		},
		form: form,
	})
	if err != nil {
		return nil, fmt.Errorf("sending %s message to %q: %w", msg.Type(), fakeID, err)
	}
	return c.check(doc)
}

// SendMessageToMany sends msg to each subscriber in order, one request per
// recipient. It stops at the first error and returns the responses collected
// so far.
func (c *Client) SendMessageToMany(ctx context.Context, fakeIDs []string, msg Message) ([]Document, error) {
	results := make([]Document, 0, len(fakeIDs))
	for _, fakeID := range fakeIDs {
		doc, err := c.SendMessage(ctx, fakeID, msg)
		if err != nil {
			return results, err
		}
		results = append(results, doc)
	}
	return results, nil
}
