// Package publish turns a manifest into an article batch on the console:
// it uploads covers and inline images, creates the batch, previews it to
// test subscribers and finally broadcasts it.
package publish

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/xkong/wechatbackends/internal/cache"
	"github.com/xkong/wechatbackends/internal/manifest"
	"github.com/xkong/wechatbackends/internal/richtext"
	"github.com/xkong/wechatbackends/pkg/client"
)

// Console is the part of *client.Client the publisher drives.
type Console interface {
	UploadImage(ctx context.Context, data []byte) (string, error)
	UploadContentImage(ctx context.Context, data []byte) (*client.ContentImage, error)
	CreateAppMsg(ctx context.Context, articles []client.Article) (client.Document, error)
	LatestAppMsgID(ctx context.Context) (string, error)
	SendMessageToMany(ctx context.Context, fakeIDs []string, msg client.Message) ([]client.Document, error)
	PublishAppMsg(ctx context.Context, appMsgID string) (client.Document, error)
}

// ErrNoBatchID is returned when the new batch does not show up in the listing.
var ErrNoBatchID = errors.New("created batch not found in listing")

// Publisher uploads manifests through a Console.
type Publisher struct {
	console Console
	covers  *cache.MediaCache
	inline  *cache.MediaCache
}

// New creates a Publisher remembering up to cacheSize uploads of each kind.
func New(console Console, cacheSize int) (*Publisher, error) {
	covers, err := cache.NewMediaCache(cacheSize)
	if err != nil {
		return nil, fmt.Errorf("creating cover cache: %w", err)
	}
	inline, err := cache.NewMediaCache(cacheSize)
	if err != nil {
		return nil, fmt.Errorf("creating inline image cache: %w", err)
	}
	return &Publisher{console: console, covers: covers, inline: inline}, nil
}

// Prepare loads article bodies, uploads local covers and inline images and
// returns the articles ready for Submit. Identical images are uploaded once.
func (p *Publisher) Prepare(ctx context.Context, m *manifest.Manifest, baseDir string) ([]client.Article, error) {
	if err := m.ReadContent(baseDir); err != nil {
		return nil, err
	}

	articles := make([]client.Article, 0, len(m.Articles))
	for i := range m.Articles {
		e := &m.Articles[i]

		coverID := ""
		if e.Cover != "" {
			id, err := p.uploadCover(ctx, manifest.Resolve(baseDir, e.Cover))
			if err != nil {
				return nil, fmt.Errorf("article %d: %w", i, err)
			}
			coverID = id
		}

		content, err := p.rewriteInline(ctx, e.Content, baseDir)
		if err != nil {
			return nil, fmt.Errorf("article %d: %w", i, err)
		}
		e.Content = content

		post, err := e.Post(coverID)
		if err != nil {
			return nil, fmt.Errorf("article %d: %w", i, err)
		}
		post.URL = absoluteURL(m.SiteDomain, post.URL)
		articles = append(articles, post)
	}
	return articles, nil
}

func (p *Publisher) uploadCover(ctx context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading cover: %w", err)
	}
	if id, ok := p.covers.Lookup(data); ok {
		slog.Debug("cover already uploaded", slog.String("path", path), slog.String("file_id", id))
		return id, nil
	}

	id, err := p.console.UploadImage(ctx, data)
	if err != nil {
		return "", fmt.Errorf("uploading cover %s: %w", path, err)
	}
	p.covers.Store(data, id)
	slog.Info("cover uploaded", slog.String("path", path), slog.String("file_id", id))
	return id, nil
}

func (p *Publisher) rewriteInline(ctx context.Context, html, baseDir string) (string, error) {
	srcs, err := richtext.LocalImages(html)
	if err != nil {
		return "", err
	}
	if len(srcs) == 0 {
		return html, nil
	}

	replacements := make(map[string]string, len(srcs))
	for _, src := range srcs {
		path := manifest.Resolve(baseDir, src)
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("reading inline image: %w", err)
		}
		if u, ok := p.inline.Lookup(data); ok {
			replacements[src] = u
			continue
		}

		img, err := p.console.UploadContentImage(ctx, data)
		if err != nil {
			return "", fmt.Errorf("uploading inline image %s: %w", path, err)
		}
		p.inline.Store(data, img.URL)
		replacements[src] = img.URL
		slog.Info("inline image uploaded", slog.String("path", path), slog.String("url", img.URL))
	}
	return richtext.RewriteImages(html, replacements)
}

// absoluteURL makes rel absolute against domain. Without a domain the
// client's own site domain applies.
func absoluteURL(domain, rel string) string {
	if domain == "" || rel == "" || strings.Contains(rel, "://") {
		return rel
	}
	return "http://" + strings.TrimSuffix(domain, "/") + "/" + strings.TrimPrefix(rel, "/")
}

// Submit creates the batch and returns its id.
func (p *Publisher) Submit(ctx context.Context, articles []client.Article) (string, error) {
	if _, err := p.console.CreateAppMsg(ctx, articles); err != nil {
		return "", err
	}
	id, err := p.console.LatestAppMsgID(ctx)
	if err != nil {
		return "", err
	}
	if id == "" {
		return "", ErrNoBatchID
	}
	slog.Info("article batch created", slog.String("app_msg_id", id), slog.Int("articles", len(articles)))
	return id, nil
}

// Preview sends the batch to each test subscriber.
func (p *Publisher) Preview(ctx context.Context, appMsgID string, fakeIDs []string) ([]client.Document, error) {
	docs, err := p.console.SendMessageToMany(ctx, fakeIDs, client.AppMessage{AppMsgID: appMsgID})
	if err != nil {
		return docs, fmt.Errorf("previewing batch %s (%d of %d sent): %w", appMsgID, len(docs), len(fakeIDs), err)
	}
	slog.Info("article batch previewed", slog.String("app_msg_id", appMsgID), slog.Int("recipients", len(docs)))
	return docs, nil
}

// Publish broadcasts the batch to every subscriber.
func (p *Publisher) Publish(ctx context.Context, appMsgID string) (client.Document, error) {
	doc, err := p.console.PublishAppMsg(ctx, appMsgID)
	if err != nil {
		return doc, err
	}
	slog.Info("article batch published", slog.String("app_msg_id", appMsgID))
	return doc, nil
}
