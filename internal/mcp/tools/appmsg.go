package tools

import (
	"context"
	"fmt"
	"path/filepath"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/xkong/wechatbackends/internal/manifest"
	"github.com/xkong/wechatbackends/pkg/client"
)

// ArticleInput is one article of an inline batch.
type ArticleInput struct {
	Title       string `json:"title" jsonschema:"Article title"`
	Content     string `json:"content,omitempty" jsonschema:"Article HTML; local img src paths are uploaded and rewritten"`
	ContentFile string `json:"content_file,omitempty" jsonschema:"Path to the article HTML, used when content is empty"`
	Author      string `json:"author,omitempty"`
	Digest      string `json:"digest,omitempty" jsonschema:"Summary shown in the message card"`
	Cover       string `json:"cover,omitempty" jsonschema:"Local cover image path"`
	CoverFileID string `json:"cover_file_id,omitempty" jsonschema:"File id of an uploaded cover"`
	ShowCover   bool   `json:"show_cover,omitempty" jsonschema:"Show the cover at the top of the article"`
	URL         string `json:"url,omitempty" jsonschema:"Original article URL or a path on the site domain"`
}

func (a ArticleInput) entry() manifest.Entry {
	return manifest.Entry{
		Title:       a.Title,
		Author:      a.Author,
		Digest:      a.Digest,
		Content:     a.Content,
		ContentFile: a.ContentFile,
		Cover:       a.Cover,
		CoverFileID: a.CoverFileID,
		ShowCover:   a.ShowCover,
		URL:         a.URL,
	}
}

// CreateAppMsgInput is the input for mp_create_appmsg.
type CreateAppMsgInput struct {
	ManifestPath string         `json:"manifest_path,omitempty" jsonschema:"YAML or JSON batch manifest; relative paths in it resolve against its directory"`
	Articles     []ArticleInput `json:"articles,omitempty" jsonschema:"Inline articles, used when manifest_path is empty"`
	SiteDomain   string         `json:"site_domain,omitempty" jsonschema:"Domain for relative article URLs of inline articles"`
}

// CreateAppMsgOutput is the output for mp_create_appmsg.
type CreateAppMsgOutput struct {
	AppMsgID string `json:"app_msg_id"`
	Articles int    `json:"articles"`
	Hint     string `json:"hint,omitempty"`
}

// ToolCreateAppMsg uploads covers and inline images, then creates the batch.
func ToolCreateAppMsg(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input CreateAppMsgInput) (*sdkmcp.CallToolResult, CreateAppMsgOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input CreateAppMsgInput) (*sdkmcp.CallToolResult, CreateAppMsgOutput, error) {
		m, baseDir, err := loadBatch(input)
		if err != nil {
			return nil, CreateAppMsgOutput{}, err
		}

		unlock := d.Lock()
		defer unlock()

		articles, err := d.Publisher.Prepare(ctx, m, baseDir)
		if err != nil {
			return nil, CreateAppMsgOutput{}, WrapConsoleError(err)
		}
		id, err := d.Publisher.Submit(ctx, articles)
		if err != nil {
			return nil, CreateAppMsgOutput{}, WrapConsoleError(err)
		}
		return nil, CreateAppMsgOutput{
			AppMsgID: id,
			Articles: len(articles),
			Hint:     "preview with mp_send_appmsg before mp_publish_appmsg",
		}, nil
	}
}

func loadBatch(input CreateAppMsgInput) (*manifest.Manifest, string, error) {
	switch {
	case input.ManifestPath != "" && len(input.Articles) > 0:
		return nil, "", ErrInvalidInput("give either manifest_path or articles, not both")
	case input.ManifestPath != "":
		m, err := manifest.Load(input.ManifestPath)
		if err != nil {
			return nil, "", ErrInvalidInput(err.Error())
		}
		return m, filepath.Dir(input.ManifestPath), nil
	case len(input.Articles) == 0:
		return nil, "", ErrInvalidInput("manifest_path or articles is required")
	case len(input.Articles) > client.MaxArticles:
		return nil, "", ErrInvalidInput(fmt.Sprintf("at most %d articles per batch", client.MaxArticles))
	}

	m := &manifest.Manifest{SiteDomain: input.SiteDomain}
	for i, a := range input.Articles {
		if a.Title == "" {
			return nil, "", ErrInvalidInput(fmt.Sprintf("articles[%d]: title is required", i))
		}
		if a.Content == "" && a.ContentFile == "" {
			return nil, "", ErrInvalidInput(fmt.Sprintf("articles[%d]: content or content_file is required", i))
		}
		m.Articles = append(m.Articles, a.entry())
	}
	return m, "", nil
}

// LatestAppMsgInput is the input for mp_latest_appmsg.
type LatestAppMsgInput struct{}

// LatestAppMsgOutput is the output for mp_latest_appmsg.
type LatestAppMsgOutput struct {
	AppMsgID string `json:"app_msg_id,omitempty"`
	Hint     string `json:"hint,omitempty"`
}

// ToolLatestAppMsg returns the id of the newest batch.
func ToolLatestAppMsg(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input LatestAppMsgInput) (*sdkmcp.CallToolResult, LatestAppMsgOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input LatestAppMsgInput) (*sdkmcp.CallToolResult, LatestAppMsgOutput, error) {
		unlock := d.Lock()
		id, err := d.Client.LatestAppMsgID(ctx)
		unlock()
		if err != nil {
			return nil, LatestAppMsgOutput{}, WrapConsoleError(err)
		}
		if id == "" {
			return nil, LatestAppMsgOutput{Hint: "the account has no article batches"}, nil
		}
		return nil, LatestAppMsgOutput{AppMsgID: id}, nil
	}
}

// AppMsgInput is the input for mp_delete_appmsg.
type AppMsgInput struct {
	AppMsgID string `json:"app_msg_id" jsonschema:"Article batch id"`
	Select   string `json:"select,omitempty" jsonschema:"Optional jq expression applied to the response"`
}

// ToolDeleteAppMsg deletes a batch.
func ToolDeleteAppMsg(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input AppMsgInput) (*sdkmcp.CallToolResult, ResponseOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input AppMsgInput) (*sdkmcp.CallToolResult, ResponseOutput, error) {
		if input.AppMsgID == "" {
			return nil, ResponseOutput{}, ErrInvalidInput("app_msg_id is required")
		}

		unlock := d.Lock()
		doc, err := d.Client.DeleteAppMsg(ctx, input.AppMsgID)
		unlock()
		if err != nil {
			return nil, ResponseOutput{}, WrapConsoleError(err)
		}
		out, err := d.respond(doc, input.Select)
		return nil, out, err
	}
}

// PublishAppMsgInput is the input for mp_publish_appmsg.
type PublishAppMsgInput struct {
	AppMsgID string `json:"app_msg_id" jsonschema:"Article batch id"`
	Confirm  bool   `json:"confirm" jsonschema:"Must be true; the broadcast reaches every subscriber and cannot be recalled"`
	Select   string `json:"select,omitempty" jsonschema:"Optional jq expression applied to the response"`
}

// ToolPublishAppMsg broadcasts a batch. It is refused unless the server
// runs with MP_ALLOW_PUBLISH and the caller sets confirm.
func ToolPublishAppMsg(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input PublishAppMsgInput) (*sdkmcp.CallToolResult, ResponseOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input PublishAppMsgInput) (*sdkmcp.CallToolResult, ResponseOutput, error) {
		if !d.Config.AllowPublish {
			return nil, ResponseOutput{}, ErrForbidden("publishing is disabled; start the server with MP_ALLOW_PUBLISH=true")
		}
		if !input.Confirm {
			return nil, ResponseOutput{}, ErrForbidden("set confirm=true to broadcast to all subscribers")
		}
		if input.AppMsgID == "" {
			return nil, ResponseOutput{}, ErrInvalidInput("app_msg_id is required")
		}

		unlock := d.Lock()
		doc, err := d.Publisher.Publish(ctx, input.AppMsgID)
		unlock()
		if err != nil {
			return nil, ResponseOutput{}, WrapConsoleError(err)
		}
		out, err := d.respond(doc, input.Select)
		return nil, out, err
	}
}
