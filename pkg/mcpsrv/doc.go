// Package mcpsrv provides an extensible MCP server for the admin console.
//
// The server exposes the console operations as MCP tools (mp_send_text,
// mp_create_appmsg, ...), a few workflow prompts and the manifest schema as
// a resource. Users can extend it with their own tools, prompts and
// resources using functional options.
//
// # Basic Usage
//
// Log in, then serve over stdio:
//
//	c, err := client.Login(ctx, email, client.HashPassword(pw))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	server, err := mcpsrv.NewServer(c)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer server.Close()
//	server.Run(ctx)
//
// # Extension
//
// Add custom tools using MCP SDK types directly:
//
//	import mcp "github.com/modelcontextprotocol/go-sdk/mcp"
//
//	type MyInput struct {
//	    FakeID string `json:"fake_id"`
//	}
//
//	type MyOutput struct {
//	    Greeted bool `json:"greeted"`
//	}
//
//	server, err := mcpsrv.NewServer(c,
//	    mcpsrv.WithDepsTool(&mcp.Tool{Name: "greet", Description: "Say hello"},
//	        func(d *mcpsrv.Deps) func(ctx context.Context, req *mcp.CallToolRequest, in MyInput) (*mcp.CallToolResult, MyOutput, error) {
//	            return func(ctx context.Context, req *mcp.CallToolRequest, in MyInput) (*mcp.CallToolResult, MyOutput, error) {
//	                unlock := d.Lock()
//	                defer unlock()
//	                _, err := d.Client.SendMessage(ctx, in.FakeID, client.TextMessage{Content: "hello"})
//	                return nil, MyOutput{Greeted: err == nil}, err
//	            }
//	        }),
//	)
//
// # Configuration
//
// Configuration is read from the environment (see internal/config) and can
// be overridden:
//
//	server, err := mcpsrv.NewServer(c,
//	    mcpsrv.WithLogLevel("debug"),
//	    mcpsrv.WithLogFile("/var/log/mpadmin-mcp.log"),
//	    mcpsrv.WithAllowPublish(true),
//	)
package mcpsrv
