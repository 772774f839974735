package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/xkong/wechatbackends/internal/manifest"
	"github.com/xkong/wechatbackends/internal/mcp/tools"
)

// Resource URIs:
//
//	mp://manifest/schema   JSON schema of article batch manifests
//	mp://session           state of the logged-in console session
const (
	uriManifestSchema = "mp://manifest/schema"
	uriSession        = "mp://session"
)

// registerResources registers the static resources and their handlers.
func (s *Server) registerResources() {
	s.mcpServer.AddResource(&sdkmcp.Resource{
		URI:         uriManifestSchema,
		Name:        "Batch Manifest Schema",
		Description: "JSON schema for the manifest files accepted by mp_create_appmsg. Read it before writing a manifest.",
		MIMEType:    tools.MimeJSON,
		Annotations: &sdkmcp.Annotations{
			Audience: []sdkmcp.Role{"assistant"},
			Priority: 0.6,
		},
	}, s.handleManifestSchema)

	s.mcpServer.AddResource(&sdkmcp.Resource{
		URI:         uriSession,
		Name:        "Console Session",
		Description: "Login state, upload ticket presence, site domain and whether publishing is enabled.",
		MIMEType:    tools.MimeJSON,
		Annotations: &sdkmcp.Annotations{
			Audience: []sdkmcp.Role{"assistant"},
			Priority: 0.4,
		},
	}, s.handleSession)
}

func (s *Server) handleManifestSchema(ctx context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
	return toResourceResult(req.Params.URI, manifest.Schema())
}

// sessionInfo is the body of mp://session. The token and ticket themselves
// are never exposed.
type sessionInfo struct {
	LoggedIn     bool   `json:"logged_in"`
	WeixinID     string `json:"weixin_id,omitempty"`
	HasTicket    bool   `json:"has_ticket"`
	SiteDomain   string `json:"site_domain,omitempty"`
	AllowPublish bool   `json:"allow_publish"`
	CachedImages int    `json:"cached_images"`
}

func (s *Server) handleSession(ctx context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
	unlock := s.deps.Lock()
	weixinID, ticket := s.deps.Client.Ticket()
	info := sessionInfo{
		LoggedIn:     s.deps.Client.Token() != "",
		WeixinID:     weixinID,
		HasTicket:    ticket != "",
		SiteDomain:   s.deps.Client.SiteDomain(),
		AllowPublish: s.deps.Config.AllowPublish,
		CachedImages: s.deps.Media.Len(),
	}
	unlock()

	return toResourceResult(req.Params.URI, info)
}

// toResourceResult serializes content to a ReadResourceResult.
func toResourceResult(uri string, content any) (*sdkmcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(content, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("serializing resource: %w", err)
	}

	return &sdkmcp.ReadResourceResult{
		Contents: []*sdkmcp.ResourceContents{
			{
				URI:      uri,
				MIMEType: tools.MimeJSON,
				Text:     string(data),
			},
		},
	}, nil
}
