package client

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkong/wechatbackends/internal/consoletest"
	"github.com/xkong/wechatbackends/pkg/contenttype"
)

const testPasswordMD5 = "5ebe2294ecd0e0f08eab7690d2a6ee69"

func loggedIn(t *testing.T, srv *consoletest.Server, opts ...Option) *Client {
	t.Helper()
	opts = append([]Option{WithBaseURL(srv.URL)}, opts...)
	c, err := Login(context.Background(), "me@example.com", testPasswordMD5, opts...)
	require.NoError(t, err)
	srv.Reset()
	return c
}

func TestLogin(t *testing.T) {
	tests := []struct {
		name    string
		ret     int
		wantErr bool
	}{
		{"ok", RetOK, false},
		{"already logged in", RetAlreadyLoggedIn, false},
		{"wrong password", -3, true},
		{"captcha required", -8, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := consoletest.New(t)
			srv.LoginRet = tt.ret

			c, err := Login(context.Background(), "me@example.com", testPasswordMD5, WithBaseURL(srv.URL))
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrLogin))
				var loginErr *LoginError
				require.True(t, errors.As(err, &loginErr))
				assert.Equal(t, tt.ret, loginErr.Ret)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, consoletest.Token, c.Token())

			reqs := srv.RequestsTo("/cgi-bin/login")
			require.Len(t, reqs, 1)
			assert.Equal(t, http.MethodPost, reqs[0].Method)
			assert.Equal(t, "me@example.com", reqs[0].Form.Get("username"))
			assert.Equal(t, testPasswordMD5, reqs[0].Form.Get("pwd"))
			assert.Equal(t, "json", reqs[0].Form.Get("f"))
			assert.Equal(t, DefaultLang, reqs[0].Query.Get("lang"))
		})
	}
}

func TestLogin_MissingToken(t *testing.T) {
	srv := consoletest.New(t)
	srv.SetJSON("/cgi-bin/login", `{"base_resp":{"ret":0,"err_msg":"ok"},"redirect_url":""}`)

	_, err := Login(context.Background(), "me@example.com", testPasswordMD5, WithBaseURL(srv.URL))
	assert.ErrorIs(t, err, ErrLogin)
}

func TestLogin_EmptyCredentials(t *testing.T) {
	c, err := New()
	require.NoError(t, err)
	assert.ErrorIs(t, c.Login(context.Background(), "", ""), ErrLogin)
}

func TestTokenFromRedirect(t *testing.T) {
	tests := []struct {
		redirect string
		want     string
	}{
		{"/cgi-bin/home?t=home/index&lang=zh_CN&token=123", "123"},
		{"/cgi-bin/home?token=456&lang=zh_CN", "456"},
		{"/cgi-bin/indexpage?t=wxm-index&lang=zh_CN&token=789", "789"},
		{"/weird?x=1&tok=999", "999"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.redirect, func(t *testing.T) {
			assert.Equal(t, tt.want, tokenFromRedirect(tt.redirect))
		})
	}
}

func TestHashPassword(t *testing.T) {
	assert.Equal(t, testPasswordMD5, HashPassword("secret"))
}

func TestNotLoggedIn(t *testing.T) {
	srv := consoletest.New(t)
	c, err := New(WithBaseURL(srv.URL))
	require.NoError(t, err)
	ctx := context.Background()

	_, err = c.SendMessage(ctx, "f", TextMessage{Content: "hi"})
	assert.ErrorIs(t, err, ErrNotLoggedIn)
	_, err = c.UploadImage(ctx, []byte("x"))
	assert.ErrorIs(t, err, ErrNotLoggedIn)
	_, err = c.CreateAppMsg(ctx, []Article{&Post{PostTitle: "t"}})
	assert.ErrorIs(t, err, ErrNotLoggedIn)
	_, err = c.PublishAppMsg(ctx, "1")
	assert.ErrorIs(t, err, ErrNotLoggedIn)
	_, err = c.LatestFakeID(ctx)
	assert.ErrorIs(t, err, ErrNotLoggedIn)

	assert.Empty(t, srv.Requests())
}

func TestSendMessage(t *testing.T) {
	tests := []struct {
		name   string
		msg    Message
		fields map[string]string
	}{
		{"text", TextMessage{Content: "hello"}, map[string]string{"type": "1", "content": "hello"}},
		{"image", ImageMessage{FileID: "200000001"}, map[string]string{"type": "2", "content": "", "fid": "200000001", "fileid": "200000001"}},
		{"appmsg", AppMessage{AppMsgID: "10000021"}, map[string]string{"type": "10", "fid": "10000021", "appmsgid": "10000021"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := consoletest.New(t)
			c := loggedIn(t, srv)

			doc, err := c.SendMessage(context.Background(), "oFAKE", tt.msg)
			require.NoError(t, err)
			assert.Equal(t, "ok", doc.String("base_resp", "err_msg"))

			reqs := srv.RequestsTo("/cgi-bin/singlesend")
			require.Len(t, reqs, 1)
			r := reqs[0]
			assert.Equal(t, "ajax-response", r.Query.Get("t"))
			assert.Equal(t, consoletest.Token, r.Form.Get("token"))
			assert.Equal(t, "oFAKE", r.Form.Get("tofakeid"))
			assert.Equal(t, "false", r.Form.Get("error"))
			assert.Equal(t, "1", r.Form.Get("ajax"))
			for k, v := range tt.fields {
				assert.Equal(t, v, r.Form.Get(k), k)
			}

			referer, err := url.Parse(r.Referer)
			require.NoError(t, err)
			assert.Equal(t, "/cgi-bin/singlemsgpage", referer.Path)
			assert.Equal(t, "oFAKE", referer.Query().Get("fromfakeid"))
			assert.Equal(t, "wxm-singlechat", referer.Query().Get("t"))
		})
	}
}

func TestSendMessageToMany(t *testing.T) {
	t.Run("empty list sends nothing", func(t *testing.T) {
		srv := consoletest.New(t)
		c := loggedIn(t, srv)

		docs, err := c.SendMessageToMany(context.Background(), nil, TextMessage{Content: "hi"})
		require.NoError(t, err)
		assert.Empty(t, docs)
		assert.Empty(t, srv.Requests())
	})

	t.Run("one request per recipient in order", func(t *testing.T) {
		srv := consoletest.New(t)
		c := loggedIn(t, srv)

		ids := []string{"a", "b", "c"}
		docs, err := c.SendMessageToMany(context.Background(), ids, ImageMessage{FileID: "1"})
		require.NoError(t, err)
		assert.Len(t, docs, 3)

		reqs := srv.RequestsTo("/cgi-bin/singlesend")
		require.Len(t, reqs, 3)
		for i, id := range ids {
			assert.Equal(t, id, reqs[i].Form.Get("tofakeid"))
		}
	})

	t.Run("stops at first failure", func(t *testing.T) {
		srv := consoletest.New(t)
		c := loggedIn(t, srv)
		srv.SetJSON("/cgi-bin/singlesend", `{"base_resp":{"ret":10706,"err_msg":"customer block"}}`)

		docs, err := c.SendMessageToMany(context.Background(), []string{"a", "b"}, TextMessage{Content: "hi"})
		var serverErr *ServerError
		require.True(t, errors.As(err, &serverErr))
		assert.Equal(t, 10706, serverErr.Ret)
		assert.Empty(t, docs)
		assert.Equal(t, 1, srv.Count("/cgi-bin/singlesend"))
	})
}

func TestStrictStatus(t *testing.T) {
	body := `{"base_resp":{"ret":200013,"err_msg":"freq control"}}`

	t.Run("strict returns ServerError with document", func(t *testing.T) {
		srv := consoletest.New(t)
		c := loggedIn(t, srv)
		srv.SetJSON("/cgi-bin/masssend", body)

		doc, err := c.PublishAppMsg(context.Background(), "1")
		var serverErr *ServerError
		require.True(t, errors.As(err, &serverErr))
		assert.Equal(t, "freq control", serverErr.Msg)
		assert.Equal(t, "freq control", doc.String("base_resp", "err_msg"))
	})

	t.Run("lenient passes the document through", func(t *testing.T) {
		srv := consoletest.New(t)
		c := loggedIn(t, srv, WithStrictStatus(false))
		srv.SetJSON("/cgi-bin/masssend", body)

		doc, err := c.PublishAppMsg(context.Background(), "1")
		require.NoError(t, err)
		ret, _ := doc.Int("base_resp", "ret")
		assert.Equal(t, 200013, ret)
	})
}

func TestDecodeError(t *testing.T) {
	srv := consoletest.New(t)
	c := loggedIn(t, srv)
	srv.SetResponse("/cgi-bin/singlesend", http.StatusOK, "text/html", "<html><body>please log in</body></html>")

	_, err := c.SendMessage(context.Background(), "f", TextMessage{Content: "hi"})
	var decodeErr *DecodeError
	require.True(t, errors.As(err, &decodeErr))
	assert.Equal(t, contenttype.HTML, decodeErr.Category)
	assert.Contains(t, decodeErr.Snippet, "please log in")
	assert.Contains(t, err.Error(), "session may have expired")
}

func TestHTTPError(t *testing.T) {
	srv := consoletest.New(t)
	c := loggedIn(t, srv)
	srv.SetResponse("/cgi-bin/masssend", http.StatusBadGateway, "text/plain", "upstream down")

	_, err := c.PublishAppMsg(context.Background(), "1")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Equal(t, "upstream down", apiErr.Message)
}

func TestUploadImage(t *testing.T) {
	srv := consoletest.New(t)
	c := loggedIn(t, srv)
	ctx := context.Background()

	id, err := c.UploadImage(ctx, []byte("first"))
	require.NoError(t, err)
	assert.Equal(t, "200000001", id)
	assert.Equal(t, 1, srv.Count("/cgi-bin/appmsg"), "ticket is scraped on first upload")

	weixinID, ticket := c.Ticket()
	assert.Equal(t, consoletest.WeixinID, weixinID)
	assert.Equal(t, consoletest.Ticket, ticket)

	_, err = c.UploadImage(ctx, []byte("second"))
	require.NoError(t, err)
	assert.Equal(t, 1, srv.Count("/cgi-bin/appmsg"), "ticket is reused")

	uploads := srv.RequestsTo("/cgi-bin/filetransfer")
	require.Len(t, uploads, 2)
	r := uploads[0]
	assert.Equal(t, http.MethodPost, r.Method)
	assert.Equal(t, "upload_material", r.Query.Get("action"))
	assert.Equal(t, consoletest.Ticket, r.Query.Get("ticket"))
	assert.Equal(t, consoletest.WeixinID, r.Query.Get("ticket_id"))
	assert.Equal(t, consoletest.Token, r.Query.Get("token"))
	assert.Equal(t, "/cgi-bin/uploads", r.Form.Get("folder"))
	assert.True(t, strings.HasSuffix(r.Form.Get("Filename"), ".jpg"))
	assert.Equal(t, []byte("first"), r.Files["file"])
}

func TestUploadImage_SeededTicket(t *testing.T) {
	srv := consoletest.New(t)
	c := loggedIn(t, srv, WithTicket("gh_seeded", "seeded"))

	_, err := c.UploadImage(context.Background(), []byte("x"))
	require.NoError(t, err)
	assert.Zero(t, srv.Count("/cgi-bin/appmsg"))
	assert.Equal(t, "seeded", srv.RequestsTo("/cgi-bin/filetransfer")[0].Query.Get("ticket"))
}

func TestUploadImage_TicketNotFound(t *testing.T) {
	srv := consoletest.New(t)
	c := loggedIn(t, srv)
	srv.SetResponse("/cgi-bin/appmsg", http.StatusOK, "text/html", "<html>nothing here</html>")

	_, err := c.UploadImage(context.Background(), []byte("x"))
	assert.ErrorIs(t, err, ErrTicketNotFound)
	assert.Zero(t, srv.Count("/cgi-bin/filetransfer"))
}

func TestDeleteImage(t *testing.T) {
	srv := consoletest.New(t)
	c := loggedIn(t, srv)

	_, err := c.DeleteImage(context.Background(), "200000001")
	require.NoError(t, err)

	r := srv.RequestsTo("/cgi-bin/modifyfile")[0]
	assert.Equal(t, "200000001", r.Form.Get("fileid"))
	assert.Equal(t, "del", r.Form.Get("oper"))
}

func TestUploadContentImage(t *testing.T) {
	srv := consoletest.New(t)
	c := loggedIn(t, srv)

	img, err := c.UploadContentImage(context.Background(), []byte("inline"))
	require.NoError(t, err)
	assert.Equal(t, ContentImageOK, img.State)
	assert.Equal(t, "https://mmbiz.qpic.cn/mmbiz/200000001/0", img.URL)

	r := srv.RequestsTo("/cgi-bin/uploadimg2cdn")[0]
	assert.Equal(t, "ajax-editor-upload-img", r.Query.Get("t"))
	assert.Equal(t, []byte("inline"), r.Files["upfile"])

	srv.SetJSON("/cgi-bin/uploadimg2cdn", `{"state":"ERROR_SIZE","url":""}`)
	img, err = c.UploadContentImage(context.Background(), []byte("big"))
	var serverErr *ServerError
	require.True(t, errors.As(err, &serverErr))
	assert.Equal(t, "ERROR_SIZE", img.State)
}

func TestCreateAppMsg(t *testing.T) {
	srv := consoletest.New(t)
	c := loggedIn(t, srv, WithSiteDomain("blog.example.com"))

	articles := []Article{
		&Post{PostTitle: "A0", PostContent: "<p>0</p>", PostDigest: "d0", Author: "me", CoverID: "1", Cover: true, URL: "/a0.html"},
		&Post{PostTitle: "A1", PostContent: "<p>1</p>", URL: "https://elsewhere/a1"},
	}
	_, err := c.CreateAppMsg(context.Background(), articles)
	require.NoError(t, err)

	reqs := srv.RequestsTo("/cgi-bin/operate_appmsg")
	require.Len(t, reqs, 1)
	f := reqs[0].Form

	assert.Equal(t, "2", f.Get("count"))
	assert.Equal(t, "create", f.Get("sub"))
	assert.Equal(t, "10", f.Get("type"))
	assert.Equal(t, "A0", f.Get("title0"))
	assert.Equal(t, "A1", f.Get("title1"))
	assert.Equal(t, "<p>0</p>", f.Get("content0"))
	assert.Equal(t, "<p>1</p>", f.Get("content1"))
	assert.Equal(t, "d0", f.Get("digest0"))
	assert.Equal(t, "me", f.Get("author0"))
	assert.Equal(t, "1", f.Get("fileid0"))
	assert.Equal(t, "1", f.Get("show_cover_pic0"))
	assert.Equal(t, "0", f.Get("show_cover_pic1"))
	assert.Equal(t, "http://blog.example.com/a0.html", f.Get("sourceurl0"))
	assert.Equal(t, "https://elsewhere/a1", f.Get("sourceurl1"))
	assert.False(t, f.Has("title2"))
}

func TestCreateAppMsg_BatchSize(t *testing.T) {
	srv := consoletest.New(t)
	c := loggedIn(t, srv)

	_, err := c.CreateAppMsg(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoArticles)

	many := make([]Article, MaxArticles+1)
	for i := range many {
		many[i] = &Post{PostTitle: "t"}
	}
	_, err = c.CreateAppMsg(context.Background(), many)
	assert.ErrorIs(t, err, ErrTooManyArticles)
	assert.Empty(t, srv.Requests())
}

func TestSourceURL(t *testing.T) {
	c := &Client{}
	assert.Equal(t, "a.html", c.sourceURL("a.html"))

	c.siteDomain = "blog.example.com"
	assert.Equal(t, "http://blog.example.com/a.html", c.sourceURL("a.html"))
	assert.Equal(t, "http://blog.example.com/a.html", c.sourceURL("/a.html"))
	assert.Equal(t, "https://x/y", c.sourceURL("https://x/y"))
	assert.Equal(t, "", c.sourceURL(""))
}

func TestLatestAppMsgID(t *testing.T) {
	srv := consoletest.New(t)
	c := loggedIn(t, srv)

	id, err := c.LatestAppMsgID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, consoletest.LatestAppMsgID, id)

	r := srv.RequestsTo("/cgi-bin/appmsg")[0]
	assert.Equal(t, "list", r.Query.Get("action"))
	assert.Equal(t, "1", r.Query.Get("count"))

	srv.SetJSON("/cgi-bin/appmsg", `{"base_resp":{"ret":0,"err_msg":"sys busy"}}`)
	id, err = c.LatestAppMsgID(context.Background())
	require.NoError(t, err)
	assert.Empty(t, id)
}

func TestDeleteAppMsg(t *testing.T) {
	srv := consoletest.New(t)
	c := loggedIn(t, srv)

	doc, err := c.DeleteAppMsg(context.Background(), "10000021")
	require.NoError(t, err)
	assert.Equal(t, "OK", doc.String("msg"))

	f := srv.RequestsTo("/cgi-bin/operate_appmsg")[0].Form
	assert.Equal(t, "del", f.Get("sub"))
	assert.Equal(t, "10000021", f.Get("AppMsgId"))
}

func TestPublishAppMsg(t *testing.T) {
	srv := consoletest.New(t)
	c := loggedIn(t, srv)

	_, err := c.PublishAppMsg(context.Background(), "10000021")
	require.NoError(t, err)

	require.Len(t, srv.Requests(), 1)
	r := srv.RequestsTo("/cgi-bin/masssend")[0]
	assert.Equal(t, http.MethodPost, r.Method)
	assert.Equal(t, "10000021", r.Form.Get("appmsgid"))
	assert.Equal(t, "-1", r.Form.Get("groupid"))
	assert.Equal(t, "10", r.Form.Get("type"))

	referer, err := url.Parse(r.Referer)
	require.NoError(t, err)
	assert.Equal(t, "/cgi-bin/masssendpage", referer.Path)
	assert.Equal(t, "mass/send", referer.Query().Get("t"))
	assert.Equal(t, r.Referer, c.Header("Referer"))
}

func TestLatestFakeID(t *testing.T) {
	srv := consoletest.New(t)
	c := loggedIn(t, srv)

	id, err := c.LatestFakeID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, consoletest.FakeID, id)

	r := srv.RequestsTo("/cgi-bin/message")[0]
	assert.Equal(t, http.MethodGet, r.Method)
	assert.Equal(t, "message/list", r.Query.Get("t"))

	srv.SetJSON("/cgi-bin/message", `{"base_resp":{"ret":0},"msg_items":"{\"msg_item\":[]}"}`)
	id, err = c.LatestFakeID(context.Background())
	require.NoError(t, err)
	assert.Empty(t, id)

	srv.SetJSON("/cgi-bin/message", `{"base_resp":{"ret":0}}`)
	_, err = c.LatestFakeID(context.Background())
	var decodeErr *DecodeError
	assert.True(t, errors.As(err, &decodeErr))
}

func TestListAppMsgs(t *testing.T) {
	srv := consoletest.New(t)
	c := loggedIn(t, srv)

	doc, err := c.ListAppMsgs(context.Background(), 10, 5)
	require.NoError(t, err)
	assert.Len(t, doc.Items("app_msg_info", "item"), 2)

	r := srv.RequestsTo("/cgi-bin/appmsg")[0]
	assert.Equal(t, "10", r.Query.Get("begin"))
	assert.Equal(t, "5", r.Query.Get("count"))

	srv.SetJSON("/cgi-bin/appmsg", `{"base_resp":{"ret":-1,"err_msg":"system error"}}`)
	_, err = c.ListAppMsgs(context.Background(), 0, 5)
	var serverErr *ServerError
	assert.ErrorAs(t, err, &serverErr)

	id, err := c.LatestAppMsgID(context.Background())
	require.NoError(t, err)
	assert.Empty(t, id)
}

func TestSessionCookieReplayed(t *testing.T) {
	tests := []struct {
		name string
		opts []Option
	}{
		{"default client", nil},
		{"caller http client", []Option{WithHTTPClient(&http.Client{})}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := consoletest.New(t)
			c := loggedIn(t, srv, tt.opts...)

			_, err := c.LatestFakeID(context.Background())
			require.NoError(t, err)
			_, err = c.SendMessage(context.Background(), "oFAKE", TextMessage{Content: "hi"})
			require.NoError(t, err)

			reqs := srv.Requests()
			require.Len(t, reqs, 2)
			for _, r := range reqs {
				assert.Equal(t, consoletest.SessionID, r.Cookies[consoletest.SessionCookie], r.Path)
			}
		})
	}
}

func TestLatestFakeID_LargeID(t *testing.T) {
	srv := consoletest.New(t)
	c := loggedIn(t, srv)

	srv.SetJSON("/cgi-bin/message", `{"base_resp":{"ret":0},"msg_items":"{\"msg_item\":[{\"fakeid\":9007199254740993}]}"}`)
	id, err := c.LatestFakeID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "9007199254740993", id)
}

func TestListAppMsgs_LargeAppID(t *testing.T) {
	srv := consoletest.New(t)
	c := loggedIn(t, srv)

	srv.SetJSON("/cgi-bin/appmsg", `{"base_resp":{"ret":0,"err_msg":"ok"},"app_msg_info":{"item":[{"app_id":9007199254740993}]}}`)
	id, err := c.LatestAppMsgID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "9007199254740993", id)
}

func TestListAppMsgs_NullBody(t *testing.T) {
	srv := consoletest.New(t)
	c := loggedIn(t, srv)

	srv.SetJSON("/cgi-bin/appmsg", `null`)
	doc, err := c.ListAppMsgs(context.Background(), 0, 5)
	assert.Nil(t, doc)
	var decodeErr *DecodeError
	require.ErrorAs(t, err, &decodeErr)
	assert.Equal(t, contenttype.JSON, decodeErr.Category)

	_, err = c.LatestAppMsgID(context.Background())
	assert.ErrorAs(t, err, &decodeErr)
}
