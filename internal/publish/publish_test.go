package publish

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkong/wechatbackends/internal/manifest"
	"github.com/xkong/wechatbackends/pkg/client"
)

type fakeConsole struct {
	uploads        int
	contentUploads int
	created        [][]client.Article
	latestID       string
	sent           []string
	sendErrAt      int
	published      []string
}

func (f *fakeConsole) UploadImage(_ context.Context, data []byte) (string, error) {
	f.uploads++
	return "file-" + string(data), nil
}

func (f *fakeConsole) UploadContentImage(_ context.Context, data []byte) (*client.ContentImage, error) {
	f.contentUploads++
	return &client.ContentImage{URL: "https://mmbiz.qpic.cn/" + string(data), State: client.ContentImageOK}, nil
}

func (f *fakeConsole) CreateAppMsg(_ context.Context, articles []client.Article) (client.Document, error) {
	f.created = append(f.created, articles)
	return client.Document{"ret": "0"}, nil
}

func (f *fakeConsole) LatestAppMsgID(context.Context) (string, error) {
	return f.latestID, nil
}

func (f *fakeConsole) SendMessageToMany(_ context.Context, fakeIDs []string, msg client.Message) ([]client.Document, error) {
	var docs []client.Document
	for i, id := range fakeIDs {
		if f.sendErrAt > 0 && i == f.sendErrAt {
			return docs, &client.ServerError{Ret: 10706, Msg: "customer block"}
		}
		f.sent = append(f.sent, id+":"+msg.(client.AppMessage).AppMsgID)
		docs = append(docs, client.Document{})
	}
	return docs, nil
}

func (f *fakeConsole) PublishAppMsg(_ context.Context, id string) (client.Document, error) {
	f.published = append(f.published, id)
	return client.Document{"ret": "0"}, nil
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestPrepare(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "cover.jpg", "same")
	writeFile(t, dir, "copy.jpg", "same")
	writeFile(t, dir, "img/a.png", "a")
	writeFile(t, dir, "one.html", `<p>one</p><img src="img/a.png">`)

	m := &manifest.Manifest{
		SiteDomain: "blog.example.com",
		Articles: []manifest.Entry{
			{Title: "one", ContentFile: "one.html", Cover: "cover.jpg", URL: "/p/1"},
			{Title: "two", Content: `<img src="img/a.png"><img src="https://x/y.png">`, Cover: "copy.jpg"},
			{Title: "three", Content: "<p>3</p>", CoverFileID: "existing", URL: "https://elsewhere/3"},
		},
	}

	fake := &fakeConsole{}
	p, err := New(fake, 16)
	require.NoError(t, err)

	articles, err := p.Prepare(context.Background(), m, dir)
	require.NoError(t, err)
	require.Len(t, articles, 3)

	assert.Equal(t, 1, fake.uploads, "identical covers upload once")
	assert.Equal(t, 1, fake.contentUploads, "identical inline images upload once")

	assert.Equal(t, "file-same", articles[0].CoverFileID())
	assert.Equal(t, "file-same", articles[1].CoverFileID())
	assert.Equal(t, "existing", articles[2].CoverFileID())

	assert.Contains(t, articles[0].Content(), `src="https://mmbiz.qpic.cn/a"`)
	assert.Contains(t, articles[1].Content(), `src="https://mmbiz.qpic.cn/a"`)
	assert.Contains(t, articles[1].Content(), `src="https://x/y.png"`)
	assert.Equal(t, "<p>3</p>", articles[2].Content())

	assert.Equal(t, "http://blog.example.com/p/1", articles[0].RelativeURL())
	assert.Equal(t, "https://elsewhere/3", articles[2].RelativeURL())
}

func TestPrepare_MissingCover(t *testing.T) {
	m := &manifest.Manifest{Articles: []manifest.Entry{{Title: "t", Content: "c", Cover: "nope.jpg"}}}
	p, err := New(&fakeConsole{}, 4)
	require.NoError(t, err)

	_, err = p.Prepare(context.Background(), m, t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "article 0")
}

func TestSubmit(t *testing.T) {
	fake := &fakeConsole{latestID: "10000021"}
	p, err := New(fake, 4)
	require.NoError(t, err)

	id, err := p.Submit(context.Background(), []client.Article{&client.Post{PostTitle: "t"}})
	require.NoError(t, err)
	assert.Equal(t, "10000021", id)
	assert.Len(t, fake.created, 1)

	fake.latestID = ""
	_, err = p.Submit(context.Background(), []client.Article{&client.Post{PostTitle: "t"}})
	assert.ErrorIs(t, err, ErrNoBatchID)
}

func TestPreview(t *testing.T) {
	fake := &fakeConsole{}
	p, err := New(fake, 4)
	require.NoError(t, err)

	docs, err := p.Preview(context.Background(), "42", []string{"a", "b"})
	require.NoError(t, err)
	assert.Len(t, docs, 2)
	assert.Equal(t, []string{"a:42", "b:42"}, fake.sent)

	fake.sendErrAt = 1
	docs, err = p.Preview(context.Background(), "42", []string{"c", "d", "e"})
	require.Error(t, err)
	assert.Len(t, docs, 1)
	var serr *client.ServerError
	assert.True(t, errors.As(err, &serr))
	assert.Contains(t, err.Error(), "1 of 3 sent")
}

func TestPublish(t *testing.T) {
	fake := &fakeConsole{}
	p, err := New(fake, 4)
	require.NoError(t, err)

	_, err = p.Publish(context.Background(), "42")
	require.NoError(t, err)
	assert.Equal(t, []string{"42"}, fake.published)
}

func TestAbsoluteURL(t *testing.T) {
	assert.Equal(t, "", absoluteURL("d", ""))
	assert.Equal(t, "/p", absoluteURL("", "/p"))
	assert.Equal(t, "http://d/p", absoluteURL("d/", "/p"))
	assert.Equal(t, "http://d/p", absoluteURL("d", "p"))
	assert.Equal(t, "https://x/p", absoluteURL("d", "https://x/p"))
}
