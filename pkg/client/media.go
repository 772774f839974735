package client

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/xkong/wechatbackends/pkg/textquery"
)

// Patterns for the upload credentials embedded in the listing page script.
const (
	ticketPattern   = `ticket:"(.*?)",`
	userNamePattern = `user_name:"(.*?)",`
)

// UploadImage stores an image in the media library and returns its file id.
// The first upload of a session scrapes the upload ticket from the article
// listing page; later uploads reuse it.
func (c *Client) UploadImage(ctx context.Context, data []byte) (string, error) {
	if err := c.requireToken(); err != nil {
		return "", err
	}
	if err := c.ensureTicket(ctx); err != nil {
		return "", err
	}

	name := uploadName()
	doc, err := c.do(ctx, &request{
		path: "/cgi-bin/filetransfer",
		query: url.Values{
			"action":    {"upload_material"},
			"lang":      {c.lang},
			"f":         {"json"},
			"ticket_id": {c.weixinID},
			"ticket":    {c.ticket},
			"token":     {c.token},
		},
		form: url.Values{
			"Filename": {name},
			"folder":   {"/cgi-bin/uploads"},
			"Upload":   {"Submit Query"},
		},
		files: []formFile{{field: "file", name: name, data: data}},
	})
	if err != nil {
		return "", fmt.Errorf("uploading image: %w", err)
	}
	if _, err := c.check(doc); err != nil {
		return "", fmt.Errorf("uploading image: %w", err)
	}
	return doc.String("content"), nil
}

// ensureTicket fetches and caches the upload ticket once per session.
func (c *Client) ensureTicket(ctx context.Context) error {
	if c.ticket != "" && c.weixinID != "" {
		return nil
	}

	page, _, err := c.send(ctx, &request{
		path: "/cgi-bin/appmsg",
		query: url.Values{
			"begin":  {"0"},
			"count":  {"10"},
			"t":      {"media/appmsg_list"},
			"type":   {"10"},
			"action": {"list"},
			"token":  {c.token},
			"lang":   {c.lang},
		},
	})
	if err != nil {
		return fmt.Errorf("fetching upload ticket: %w", err)
	}

	ticket, ok := textquery.FirstMatch(page, ticketPattern)
	if !ok {
		return ErrTicketNotFound
	}
	weixinID, ok := textquery.FirstMatch(page, userNamePattern)
	if !ok {
		return ErrTicketNotFound
	}
	c.ticket, c.weixinID = ticket, weixinID

	slog.Debug("upload ticket cached", slog.String("weixin_id", weixinID))
	return nil
}

// DeleteImage removes a media library file.
func (c *Client) DeleteImage(ctx context.Context, fileID string) (Document, error) {
	if err := c.requireToken(); err != nil {
		return nil, err
	}

	doc, err := c.do(ctx, &request{
		path: "/cgi-bin/modifyfile",
		form: url.Values{
			"fileid": {fileID},
			"token":  {c.token},
			"lang":   {c.lang},
			"random": {randomParam()},
			"f":      {"json"},
			"ajax":   {"1"},
			"oper":   {"del"},
			"t":      {"ajax-response"},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("deleting image %q: %w", fileID, err)
	}
	return c.check(doc)
}

// UploadContentImage uploads an image that is embedded in an article body
// and returns the CDN URL to reference it with.
func (c *Client) UploadContentImage(ctx context.Context, data []byte) (*ContentImage, error) {
	if err := c.requireToken(); err != nil {
		return nil, err
	}

	name := uploadName()
	doc, err := c.do(ctx, &request{
		path: "/cgi-bin/uploadimg2cdn",
		query: url.Values{
			"lang":  {c.lang},
			"t":     {"ajax-editor-upload-img"},
			"token": {c.token},
		},
		form: url.Values{
			"Filename": {name},
			"param1":   {"value1"},
			"param2":   {"value2"},
			"fileName": {name},
			"pictitle": {name},
			"Upload":   {"Submit Query"},
		},
		files: []formFile{{field: "upfile", name: name, data: data}},
	})
	if err != nil {
		return nil, fmt.Errorf("uploading content image: %w", err)
	}

	img := &ContentImage{URL: doc.String("url"), State: doc.String("state")}
	if c.strict && img.State != ContentImageOK {
		return img, fmt.Errorf("uploading content image: %w", &ServerError{Ret: -1, Msg: img.State})
	}
	return img, nil
}
