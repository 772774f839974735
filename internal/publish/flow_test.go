package publish

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/xkong/wechatbackends/internal/consoletest"
	"github.com/xkong/wechatbackends/internal/manifest"
	"github.com/xkong/wechatbackends/pkg/client"
)

// BatchFlowTestSuite drives the publisher against the fake console with a
// real logged-in client.
type BatchFlowTestSuite struct {
	suite.Suite
	console *consoletest.Server
	pub     *Publisher
	dir     string
}

func (s *BatchFlowTestSuite) SetupTest() {
	s.console = consoletest.New(s.T())
	c, err := client.Login(context.Background(), "me@example.com", client.HashPassword("secret"), client.WithBaseURL(s.console.URL))
	s.Require().NoError(err)
	s.console.Reset()

	s.pub, err = New(c, 16)
	s.Require().NoError(err)
	s.dir = s.T().TempDir()
}

func (s *BatchFlowTestSuite) write(name, content string) {
	s.Require().NoError(os.WriteFile(filepath.Join(s.dir, name), []byte(content), 0o644))
}

func (s *BatchFlowTestSuite) TestCreatePreviewPublish() {
	s.write("cover.jpg", "cover")
	m := &manifest.Manifest{
		SiteDomain: "blog.example.com",
		Articles: []manifest.Entry{
			{Title: "One", Content: "<p>1</p>", Cover: "cover.jpg", ShowCover: true, URL: "one.html"},
		},
	}
	ctx := context.Background()

	articles, err := s.pub.Prepare(ctx, m, s.dir)
	s.Require().NoError(err)
	id, err := s.pub.Submit(ctx, articles)
	s.Require().NoError(err)
	s.Equal(consoletest.LatestAppMsgID, id)

	docs, err := s.pub.Preview(ctx, id, []string{"oTEST"})
	s.Require().NoError(err)
	s.Len(docs, 1)

	_, err = s.pub.Publish(ctx, id)
	s.Require().NoError(err)

	var paths []string
	for _, r := range s.console.Requests() {
		paths = append(paths, r.Path)
	}
	s.Equal([]string{
		"/cgi-bin/appmsg",         // ticket
		"/cgi-bin/filetransfer",   // cover
		"/cgi-bin/operate_appmsg", // create
		"/cgi-bin/appmsg",         // latest id
		"/cgi-bin/singlesend",     // preview
		"/cgi-bin/masssend",       // publish
	}, paths)

	form := s.console.RequestsTo("/cgi-bin/operate_appmsg")[0].Form
	s.Equal("200000001", form.Get("fileid0"))
	s.Equal("http://blog.example.com/one.html", form.Get("sourceurl0"))
	s.Equal(id, s.console.RequestsTo("/cgi-bin/singlesend")[0].Form.Get("appmsgid"))
}

func (s *BatchFlowTestSuite) TestCoversDedupedAcrossBatches() {
	s.write("cover.jpg", "same bytes")
	s.write("copy.jpg", "same bytes")
	ctx := context.Background()

	for _, cover := range []string{"cover.jpg", "copy.jpg"} {
		m := &manifest.Manifest{Articles: []manifest.Entry{{Title: "t", Content: "<p>x</p>", Cover: cover}}}
		_, err := s.pub.Prepare(ctx, m, s.dir)
		s.Require().NoError(err)
	}
	s.Equal(1, s.console.Count("/cgi-bin/filetransfer"))
}

func (s *BatchFlowTestSuite) TestInlineImagesRewritten() {
	s.write("chart.png", "chart")
	m := &manifest.Manifest{Articles: []manifest.Entry{
		{Title: "a", Content: `<p><img src="chart.png"></p>`},
		{Title: "b", Content: `<p><img src="chart.png"><img src="https://cdn/x.png"></p>`},
	}}

	articles, err := s.pub.Prepare(context.Background(), m, s.dir)
	s.Require().NoError(err)
	s.Len(articles, 2)
	s.Equal(1, s.console.Count("/cgi-bin/uploadimg2cdn"))
	s.Contains(articles[1].Content(), "https://mmbiz.qpic.cn/mmbiz/200000001/0")
	s.Contains(articles[1].Content(), "https://cdn/x.png")
	s.NotContains(articles[0].Content(), `src="chart.png"`)
}

func (s *BatchFlowTestSuite) TestPreviewStopsAtFailure() {
	s.console.SetFunc("/cgi-bin/singlesend", func(r consoletest.Request) string {
		if r.Form.Get("tofakeid") == "bad" {
			return `{"base_resp":{"ret":10703,"err_msg":"not subscribed"}}`
		}
		return `{"base_resp":{"ret":0,"err_msg":"ok"}}`
	})

	docs, err := s.pub.Preview(context.Background(), "1", []string{"good", "bad", "never"})
	s.Require().Error(err)
	s.Contains(err.Error(), "1 of 3 sent")
	s.Len(docs, 1)
	s.Equal(2, s.console.Count("/cgi-bin/singlesend"))
}

func TestBatchFlowTestSuite(t *testing.T) {
	suite.Run(t, new(BatchFlowTestSuite))
}
