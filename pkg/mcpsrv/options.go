package mcpsrv

import (
	"context"

	mcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/xkong/wechatbackends/internal/config"
)

type serverConfig struct {
	config *config.Config

	logLevel     string
	logFile      string
	allowPublish *bool

	disableBuiltinTools   bool
	disableBuiltinPrompts bool

	toolRegistrations     []func(*mcp.Server)
	promptRegistrations   []func(*mcp.Server)
	resourceRegistrations []func(*mcp.Server)

	// Registered after Deps exist.
	deferredToolRegistrations []func(*mcp.Server, *Deps)
}

// Option configures NewServer.
type Option func(*serverConfig)

// WithLogLevel overrides LOG_LEVEL.
func WithLogLevel(level string) Option {
	return func(cfg *serverConfig) {
		cfg.logLevel = level
	}
}

// WithLogFile overrides LOG_FILE.
func WithLogFile(path string) Option {
	return func(cfg *serverConfig) {
		cfg.logFile = path
	}
}

// WithConfig uses c instead of the environment. NewServer works on a copy.
func WithConfig(c *config.Config) Option {
	return func(cfg *serverConfig) {
		cfg.config = c
	}
}

// WithAllowPublish overrides MP_ALLOW_PUBLISH, which gates mp_publish_appmsg.
func WithAllowPublish(allow bool) Option {
	return func(cfg *serverConfig) {
		cfg.allowPublish = &allow
	}
}

// WithoutBuiltinTools leaves out the mp_* console tools.
func WithoutBuiltinTools() Option {
	return func(cfg *serverConfig) {
		cfg.disableBuiltinTools = true
	}
}

// WithoutBuiltinPrompts leaves out mp_usage_guide, publish_batch and
// message_subscribers.
func WithoutBuiltinPrompts() Option {
	return func(cfg *serverConfig) {
		cfg.disableBuiltinPrompts = true
	}
}

// WithTool registers a tool that does not touch the console, for example
// one that drafts an article digest:
//
//	mcpsrv.WithTool(&mcp.Tool{Name: "article_digest", Description: "Suggest a digest"}, digest)
//
// Output types go through the same schema check as the builtin tools.
func WithTool[In, Out any](tool *mcp.Tool, handler func(context.Context, *mcp.CallToolRequest, In) (*mcp.CallToolResult, Out, error)) Option {
	return func(cfg *serverConfig) {
		cfg.toolRegistrations = append(cfg.toolRegistrations, func(srv *mcp.Server) {
			AddTool(srv, tool, handler)
		})
	}
}

// WithDepsTool registers a tool built from Deps. Calls on Deps.Client must
// hold Deps.Lock, which the builtin tools share:
//
//	mcpsrv.WithDepsTool(&mcp.Tool{Name: "latest_batch"},
//	    func(d *mcpsrv.Deps) func(context.Context, *mcp.CallToolRequest, In) (*mcp.CallToolResult, Out, error) {
//	        return func(ctx context.Context, req *mcp.CallToolRequest, in In) (*mcp.CallToolResult, Out, error) {
//	            unlock := d.Lock()
//	            defer unlock()
//	            id, err := d.Client.LatestAppMsgID(ctx)
//	            return nil, Out{AppMsgID: id}, err
//	        }
//	    })
func WithDepsTool[In, Out any](tool *mcp.Tool, builder func(*Deps) func(context.Context, *mcp.CallToolRequest, In) (*mcp.CallToolResult, Out, error)) Option {
	return func(cfg *serverConfig) {
		cfg.deferredToolRegistrations = append(cfg.deferredToolRegistrations, func(srv *mcp.Server, deps *Deps) {
			AddTool(srv, tool, builder(deps))
		})
	}
}

// WithPrompt registers a prompt next to the builtin ones.
func WithPrompt(prompt *mcp.Prompt, handler func(context.Context, *mcp.GetPromptRequest) (*mcp.GetPromptResult, error)) Option {
	return func(cfg *serverConfig) {
		cfg.promptRegistrations = append(cfg.promptRegistrations, func(srv *mcp.Server) {
			srv.AddPrompt(prompt, handler)
		})
	}
}

// WithResourceTemplate registers a resource template, such as one serving
// batches by id next to mp://session.
func WithResourceTemplate(template *mcp.ResourceTemplate, handler func(context.Context, *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error)) Option {
	return func(cfg *serverConfig) {
		cfg.resourceRegistrations = append(cfg.resourceRegistrations, func(srv *mcp.Server) {
			srv.AddResourceTemplate(template, handler)
		})
	}
}
