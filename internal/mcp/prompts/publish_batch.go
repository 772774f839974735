package prompts

import (
	"context"
	"fmt"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// HandlePublishBatch implements the create, preview and publish workflow.
func HandlePublishBatch(cfg *Config) func(ctx context.Context, req *sdkmcp.GetPromptRequest) (*sdkmcp.GetPromptResult, error) {
	return func(ctx context.Context, req *sdkmcp.GetPromptRequest) (*sdkmcp.GetPromptResult, error) {
		manifestPath := argument(req, "manifest_path")
		testFakeID := argument(req, "test_fakeid")

		var sb strings.Builder

		sb.WriteString("# Publish an Article Batch\n\n")
		sb.WriteString("You are helping the owner of an official account put a batch of articles in front of subscribers. ")
		sb.WriteString("A broadcast cannot be recalled, so every batch is previewed on a test subscriber first.\n\n")

		sb.WriteString("## Workflow Steps\n\n")
		sb.WriteString("1. **Check the manifest** - read `mp://manifest/schema` and make sure every article has a title and content or content_file\n")
		sb.WriteString("2. **Create the batch** - covers and inline images are uploaded, then the batch is created\n")
		sb.WriteString("3. **Find the test subscriber** - the test account must have messaged the official account recently\n")
		sb.WriteString("4. **Preview** - send the batch to the test subscriber and ask the user to check it on their phone\n")
		sb.WriteString("5. **Publish or clean up** - publish after approval, or delete the batch if it needs changes\n\n")

		sb.WriteString("## Suggested Tools\n\n")
		sb.WriteString("```\n")
		sb.WriteString("# Step 2: Create\n")
		if manifestPath != "" {
			sb.WriteString(fmt.Sprintf("mp_create_appmsg(manifest_path=%q)\n", manifestPath))
		} else {
			sb.WriteString("mp_create_appmsg(manifest_path=\"<path to batch.yaml>\")\n")
		}
		sb.WriteString("\n# Step 3: Test subscriber\n")
		if testFakeID != "" {
			sb.WriteString(fmt.Sprintf("# using fake_id %s\n", testFakeID))
		} else {
			sb.WriteString("mp_latest_fakeid()\n")
		}
		sb.WriteString("\n# Step 4: Preview\n")
		if testFakeID != "" {
			sb.WriteString(fmt.Sprintf("mp_send_appmsg(app_msg_id=\"<from step 2>\", fake_ids=[%q])\n", testFakeID))
		} else {
			sb.WriteString("mp_send_appmsg(app_msg_id=\"<from step 2>\", fake_ids=[\"<from step 3>\"])\n")
		}
		sb.WriteString("\n# Step 5a: Publish (after approval)\n")
		sb.WriteString("mp_publish_appmsg(app_msg_id=\"<from step 2>\", confirm=true)\n")
		sb.WriteString("\n# Step 5b: Or discard\n")
		sb.WriteString("mp_delete_appmsg(app_msg_id=\"<from step 2>\")\n")
		sb.WriteString("```\n\n")

		sb.WriteString("## Rules\n\n")
		sb.WriteString("- Never call `mp_publish_appmsg` without the user's explicit approval of the preview\n")
		if !cfg.AllowPublish {
			sb.WriteString("- Publishing is disabled on this server: stop after the preview and give the user the `app_msg_id`\n")
		}
		if cfg.SiteDomain != "" {
			sb.WriteString(fmt.Sprintf("- Relative article urls become http://%s/<path>\n", cfg.SiteDomain))
		} else {
			sb.WriteString("- No site domain is configured: give absolute article urls or set `site_domain` in the manifest\n")
		}
		sb.WriteString("- If creation fails with DECODE_ERROR the session has expired; nothing was created\n")
		sb.WriteString("- If the preview fails with SERVER_ERROR the test subscriber is probably outside the 48 hour reply window\n")

		return &sdkmcp.GetPromptResult{
			Description: "Guide for creating, previewing and publishing an article batch",
			Messages: []*sdkmcp.PromptMessage{
				{
					Role:    "user",
					Content: &sdkmcp.TextContent{Text: sb.String()},
				},
			},
		}, nil
	}
}

// argument returns a prompt argument or "".
func argument(req *sdkmcp.GetPromptRequest, name string) string {
	if req == nil || req.Params == nil || req.Params.Arguments == nil {
		return ""
	}
	return strings.TrimSpace(req.Params.Arguments[name])
}
