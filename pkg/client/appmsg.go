package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Article is the read-only view of an article the batch endpoints need.
// Content management systems adapt their own models to it.
type Article interface {
	Title() string
	Content() string
	Digest() string
	AuthorName() string
	CoverFileID() string
	ShowCover() bool
	RelativeURL() string
}

// Post is a plain Article.
type Post struct {
	PostTitle   string `json:"title"`
	PostContent string `json:"content"`
	PostDigest  string `json:"digest"`
	Author      string `json:"author"`
	CoverID     string `json:"cover_file_id"`
	Cover       bool   `json:"show_cover"`
	URL         string `json:"url"`
}

func (p *Post) Title() string       { return p.PostTitle }
func (p *Post) Content() string     { return p.PostContent }
func (p *Post) Digest() string      { return p.PostDigest }
func (p *Post) AuthorName() string  { return p.Author }
func (p *Post) CoverFileID() string { return p.CoverID }
func (p *Post) ShowCover() bool     { return p.Cover }
func (p *Post) RelativeURL() string { return p.URL }

// CreateAppMsg submits a batch of up to MaxArticles articles as one app
// message. The new batch id is not in the response; use LatestAppMsgID.
func (c *Client) CreateAppMsg(ctx context.Context, articles []Article) (Document, error) {
	if err := c.requireToken(); err != nil {
		return nil, err
	}
	form, err := c.appMsgForm(articles)
	if err != nil {
		return nil, err
	}

	doc, err := c.do(ctx, &request{path: "/cgi-bin/operate_appmsg", form: form})
	if err != nil {
		return nil, fmt.Errorf("creating app message: %w", err)
	}
	return c.check(doc)
}

// appMsgForm flattens articles into the indexed fields title0, content0, ...
func (c *Client) appMsgForm(articles []Article) (url.Values, error) {
	switch {
	case len(articles) == 0:
		return nil, ErrNoArticles
	case len(articles) > MaxArticles:
		return nil, ErrTooManyArticles
	}

	form := url.Values{
		"AppMsgId": {""},
		"count":    {strconv.Itoa(len(articles))},
	}
	for i, a := range articles {
		idx := strconv.Itoa(i)
		show := "0"
		if a.ShowCover() {
			show = "1"
		}
		form.Set("title"+idx, a.Title())
		form.Set("content"+idx, a.Content())
		form.Set("digest"+idx, a.Digest())
		form.Set("author"+idx, a.AuthorName())
		form.Set("fileid"+idx, a.CoverFileID())
		form.Set("show_cover_pic"+idx, show)
		form.Set("sourceurl"+idx, c.sourceURL(a.RelativeURL()))
	}

	form.Set("ajax", "1")
	form.Set("token", c.token)
	form.Set("lang", c.lang)
	form.Set("random", randomParam())
	form.Set("f", "json")
	form.Set("t", "ajax-response")
	form.Set("sub", "create")
	form.Set("type", "10")
	return form, nil
}

// sourceURL makes an article path absolute against the site domain.
func (c *Client) sourceURL(rel string) string {
	if rel == "" || strings.HasPrefix(rel, "http://") || strings.HasPrefix(rel, "https://") {
		return rel
	}
	if c.siteDomain == "" {
		return rel
	}
	if !strings.HasPrefix(rel, "/") {
		rel = "/" + rel
	}
	return "http://" + c.siteDomain + rel
}

// ListAppMsgs returns one page of the batch listing, newest first. Batches
// are under app_msg_info.item, each with its articles in multi_item.
func (c *Client) ListAppMsgs(ctx context.Context, begin, count int) (Document, error) {
	doc, err := c.listAppMsgs(ctx, begin, count)
	if err != nil {
		return nil, err
	}
	return c.check(doc)
}

// LatestAppMsgID returns the id of the most recently created batch, or ""
// when the listing does not report ok or is empty.
func (c *Client) LatestAppMsgID(ctx context.Context) (string, error) {
	doc, err := c.listAppMsgs(ctx, 0, 1)
	if err != nil {
		return "", err
	}
	if doc.String("base_resp", "err_msg") != "ok" {
		return "", nil
	}
	return doc.String("app_msg_info", "item", "0", "app_id"), nil
}

func (c *Client) listAppMsgs(ctx context.Context, begin, count int) (Document, error) {
	if err := c.requireToken(); err != nil {
		return nil, err
	}

	doc, err := c.do(ctx, &request{
		path: "/cgi-bin/appmsg",
		query: url.Values{
			"action": {"list"},
			"ajax":   {"1"},
			"begin":  {strconv.Itoa(begin)},
			"count":  {strconv.Itoa(count)},
			"f":      {"json"},
			"lang":   {c.lang},
			"random": {randomParam()},
			"token":  {c.token},
			"type":   {"10"},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("listing app messages: %w", err)
	}
	return doc, nil
}

// DeleteAppMsg deletes an article batch.
func (c *Client) DeleteAppMsg(ctx context.Context, appMsgID string) (Document, error) {
	if err := c.requireToken(); err != nil {
		return nil, err
	}

	doc, err := c.do(ctx, &request{
		path: "/cgi-bin/operate_appmsg",
		form: url.Values{
			"ajax":     {"1"},
			"AppMsgId": {appMsgID},
			"f":        {"json"},
			"lang":     {c.lang},
			"random":   {randomParam()},
			"sub":      {"del"},
			"t":        {"ajax-response"},
			"token":    {c.token},
			"type":     {"10"},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("deleting app message %q: %w", appMsgID, err)
	}
	return c.check(doc)
}

// PublishAppMsg broadcasts a batch to every subscriber of the account.
// This cannot be undone.
func (c *Client) PublishAppMsg(ctx context.Context, appMsgID string) (Document, error) {
	if err := c.requireToken(); err != nil {
		return nil, err
	}

	page := url.Values{
		"t":     {"mass/send"},
		"token": {c.token},
		"lang":  {c.lang},
	}
	c.setReferer(c.baseURL + "/cgi-bin/masssendpage?" + page.Encode())

	doc, err := c.do(ctx, &request{
		path: "/cgi-bin/masssend",
		form: url.Values{
			"type":        {"10"},
			"appmsgid":    {appMsgID},
			"sex":         {"0"},
			"groupid":     {"-1"},
			"synctxweibo": {"0"},
			"synctxnews":  {"0"},
			"country":     {""},
			"province":    {""},
			"city":        {""},
			"imgcode":     {""},
			"token":       {c.token},
			"lang":        {c.lang},
			"random":      {randomParam()},
			"f":           {"json"},
			"ajax":        {"1"},
			"t":           {"ajax-response"},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("publishing app message %q: %w", appMsgID, err)
	}
	return c.check(doc)
}
