// Package consoletest runs an in-process imitation of the admin console for
// tests. It answers every endpoint the client uses with canned bodies and
// records the requests it received.
package consoletest

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"
)

// Token is the session token issued by a successful login.
const Token = "1234567890"

// Ticket and WeixinID are embedded in the listing page.
const (
	Ticket   = "4f3b2c1d0e"
	WeixinID = "gh_0123456789ab"
)

// SessionCookie is set by a successful login and expected on later calls.
const (
	SessionCookie = "slave_sid"
	SessionID     = "c2Vzc2lvbi0xMjM0"
)

// FakeID is the sender of the latest subscriber message.
const FakeID = "oABCD1234efgh"

// LatestAppMsgID is the newest batch in the listing.
const LatestAppMsgID = "10000021"

// ListingPage is the HTML the console serves for the article listing. The
// upload credentials sit in an inline script.
var ListingPage = `<!DOCTYPE html><html><head><script>
wx.cgiData = {
	user_name:"` + WeixinID + `",
	nick_name:"Test Account",
	ticket:"` + Ticket + `",
	time:"1382250000",
};
</script></head><body></body></html>`

// Request is one recorded call.
type Request struct {
	Method      string
	Path        string
	Query       url.Values
	Form        url.Values
	Files       map[string][]byte
	Referer     string
	ContentType string
	Cookies     map[string]string
}

type reply struct {
	status      int
	contentType string
	body        string
}

// Server is the fake console.
type Server struct {
	*httptest.Server

	mu        sync.Mutex
	requests  []Request
	overrides map[string]reply
	funcs     map[string]func(Request) string
	uploads   int

	// LoginRet is the base_resp.ret returned by /cgi-bin/login.
	LoginRet int
}

// New starts a fake console that stops when the test ends.
func New(t testing.TB) *Server {
	s := &Server{overrides: make(map[string]reply), funcs: make(map[string]func(Request) string)}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Close)
	return s
}

// SetResponse replaces the reply for path.
func (s *Server) SetResponse(path string, status int, contentType, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overrides[path] = reply{status: status, contentType: contentType, body: body}
}

// SetJSON replaces the reply for path with a 200 JSON body.
func (s *Server) SetJSON(path, body string) {
	s.SetResponse(path, http.StatusOK, "application/json", body)
}

// SetFunc answers path with the JSON body fn computes for each request.
func (s *Server) SetFunc(path string, fn func(Request) string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.funcs[path] = fn
}

// Requests returns every recorded request.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// RequestsTo returns the recorded requests for path.
func (s *Server) RequestsTo(path string) []Request {
	var out []Request
	for _, r := range s.Requests() {
		if r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

// Count returns how many requests hit path.
func (s *Server) Count(path string) int {
	return len(s.RequestsTo(path))
}

// Reset forgets the recorded requests.
func (s *Server) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = nil
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	rec := Request{
		Method:      r.Method,
		Path:        r.URL.Path,
		Query:       r.URL.Query(),
		Referer:     r.Header.Get("Referer"),
		ContentType: r.Header.Get("Content-Type"),
		Cookies:     make(map[string]string),
	}
	for _, c := range r.Cookies() {
		rec.Cookies[c.Name] = c.Value
	}
	if strings.HasPrefix(rec.ContentType, "multipart/form-data") {
		if err := r.ParseMultipartForm(32 << 20); err == nil {
			rec.Form = url.Values(r.MultipartForm.Value)
			rec.Files = make(map[string][]byte)
			for field, headers := range r.MultipartForm.File {
				f, err := headers[0].Open()
				if err != nil {
					continue
				}
				data, _ := io.ReadAll(f)
				f.Close()
				rec.Files[field] = data
			}
		}
	} else if err := r.ParseForm(); err == nil {
		rec.Form = r.PostForm
	}

	s.mu.Lock()
	s.requests = append(s.requests, rec)
	override, overridden := s.overrides[rec.Path]
	fn := s.funcs[rec.Path]
	loginOK := s.LoginRet == 0 || s.LoginRet == 65202
	s.mu.Unlock()

	if rec.Path == "/cgi-bin/login" && loginOK {
		http.SetCookie(w, &http.Cookie{Name: SessionCookie, Value: SessionID, Path: "/", HttpOnly: true})
	}

	if fn != nil {
		write(w, reply{status: http.StatusOK, contentType: "application/json", body: fn(rec)})
		return
	}
	if overridden {
		write(w, override)
		return
	}
	write(w, s.defaultReply(rec))
}

func (s *Server) defaultReply(r Request) reply {
	ok := func(body string) reply {
		return reply{status: http.StatusOK, contentType: "text/html; charset=UTF-8", body: body}
	}

	switch r.Path {
	case "/cgi-bin/login":
		return ok(fmt.Sprintf(`{"base_resp":{"ret":%d,"err_msg":"ok"},"redirect_url":"/cgi-bin/home?t=home/index&lang=zh_CN&token=%s"}`, s.LoginRet, Token))
	case "/cgi-bin/singlesend", "/cgi-bin/masssend", "/cgi-bin/modifyfile":
		return ok(`{"base_resp":{"ret":0,"err_msg":"ok"}}`)
	case "/cgi-bin/appmsg":
		if r.Query.Get("t") == "media/appmsg_list" {
			return ok(ListingPage)
		}
		return ok(`{"base_resp":{"ret":0,"err_msg":"ok"},"app_msg_info":{"item":[{"app_id":` + LatestAppMsgID + `,"title":"weekly"},{"app_id":10000020,"title":"launch"}],"file_cnt":{"app_msg_cnt":2}}}`)
	case "/cgi-bin/filetransfer":
		return ok(`{"base_resp":{"ret":0,"err_msg":"ok"},"location":"bizfile","type":"image","content":"` + s.nextUpload() + `"}`)
	case "/cgi-bin/uploadimg2cdn":
		return ok(`{"state":"SUCCESS","url":"https://mmbiz.qpic.cn/mmbiz/` + s.nextUpload() + `/0","original":"a.jpg"}`)
	case "/cgi-bin/operate_appmsg":
		return ok(`{"ret":"0","msg":"OK"}`)
	case "/cgi-bin/message":
		return ok(`{"base_resp":{"ret":0,"err_msg":"ok"},"msg_items":"{\"msg_item\":[{\"id\":200163,\"type\":1,\"fakeid\":\"` + FakeID + `\",\"nick_name\":\"Reader\",\"content\":\"hello\"}]}"}`)
	default:
		return reply{status: http.StatusNotFound, contentType: "text/plain", body: "not found"}
	}
}

func (s *Server) nextUpload() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uploads++
	return strconv.Itoa(200000000 + s.uploads)
}

func write(w http.ResponseWriter, r reply) {
	if r.contentType != "" {
		w.Header().Set("Content-Type", r.contentType)
	}
	w.WriteHeader(r.status)
	_, _ = io.WriteString(w, r.body)
}
