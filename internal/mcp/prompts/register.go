package prompts

import (
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// Register registers all prompts with the MCP server.
func Register(srv *sdkmcp.Server, cfg *Config) {
	srv.AddPrompt(&sdkmcp.Prompt{
		Name:        "mp_usage_guide",
		Description: "Short guide to the console tools: ids, ordering rules and error codes. Read once per conversation.",
	}, HandleUsageGuide(cfg))

	srv.AddPrompt(&sdkmcp.Prompt{
		Name:        "publish_batch",
		Description: "RECOMMENDED: Create an article batch from a manifest, preview it to a test subscriber, then optionally publish it.",
		Arguments: []*sdkmcp.PromptArgument{
			{
				Name:        "manifest_path",
				Description: "Path to a YAML or JSON batch manifest",
				Required:    false,
			},
			{
				Name:        "test_fakeid",
				Description: "Fakeid of the subscriber who receives the preview",
				Required:    false,
			},
		},
	}, HandlePublishBatch(cfg))

	srv.AddPrompt(&sdkmcp.Prompt{
		Name:        "message_subscribers",
		Description: "Send a text or image message to a list of subscribers and report who received it.",
		Arguments: []*sdkmcp.PromptArgument{
			{
				Name:        "fake_ids",
				Description: "Comma separated fakeids",
				Required:    false,
			},
			{
				Name:        "image_path",
				Description: "Local image to send instead of text",
				Required:    false,
			},
		},
	}, HandleMessageSubscribers(cfg))
}
