package prompts

import (
	"context"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// HandleUsageGuide serves the tool usage guide.
// The publishing section depends on whether publishing is enabled.
func HandleUsageGuide(cfg *Config) func(ctx context.Context, req *sdkmcp.GetPromptRequest) (*sdkmcp.GetPromptResult, error) {
	return func(ctx context.Context, req *sdkmcp.GetPromptRequest) (*sdkmcp.GetPromptResult, error) {
		var sb strings.Builder

		sb.WriteString("# Admin Console Tool Guide\n\n")

		sb.WriteString("## Identifiers\n\n")
		sb.WriteString("| Id | Where it comes from | Used by |\n")
		sb.WriteString("|----|---------------------|---------|\n")
		sb.WriteString("| `fake_id` | `mp_latest_fakeid` (the last subscriber who wrote to the account) | `mp_send_text`, `mp_send_image`, `mp_send_appmsg` |\n")
		sb.WriteString("| `file_id` | `mp_upload_image` | `mp_send_image`, `mp_delete_image`, manifest `cover_file_id` |\n")
		sb.WriteString("| `app_msg_id` | `mp_create_appmsg` or `mp_latest_appmsg` | `mp_send_appmsg`, `mp_delete_appmsg`, `mp_publish_appmsg` |\n\n")

		sb.WriteString("## Sending Rules\n\n")
		sb.WriteString("- Recipients are messaged one at a time in the order given\n")
		sb.WriteString("- Sending stops at the first failure. Compare `sent` with `requested`; recipients after `sent` were not messaged\n")
		sb.WriteString("- A subscriber can only be messaged within 48 hours of their last message to the account\n\n")

		sb.WriteString("## Responses\n\n")
		sb.WriteString("- Tools that return the console response accept `select`, a jq expression applied to it\n")
		sb.WriteString("  - `select: \".base_resp\"` keeps only the status block\n")
		sb.WriteString("- Image uploads are cached by content: re-uploading the same bytes returns the same `file_id` with `cached: true`\n\n")

		sb.WriteString("## Article Batches\n\n")
		sb.WriteString("- Read the `mp://manifest/schema` resource before writing a manifest\n")
		sb.WriteString("- A batch holds 1 to 8 articles; local `cover` and `<img src>` paths are uploaded automatically\n")
		if cfg.SiteDomain != "" {
			sb.WriteString("- Relative article `url` values are resolved against `" + cfg.SiteDomain + "`\n")
		}
		sb.WriteString("- Always preview with `mp_send_appmsg` before publishing\n\n")

		sb.WriteString("## Publishing\n\n")
		if cfg.AllowPublish {
			sb.WriteString("`mp_publish_appmsg` is enabled. It broadcasts to every subscriber and cannot be recalled. ")
			sb.WriteString("Ask the user for explicit approval, then call it with `confirm: true`.\n\n")
		} else {
			sb.WriteString("`mp_publish_appmsg` is disabled on this server and returns FORBIDDEN. ")
			sb.WriteString("Hand the `app_msg_id` to the user to publish from the console.\n\n")
		}

		sb.WriteString("## Error Codes\n\n")
		sb.WriteString("| Code | Meaning | Action |\n")
		sb.WriteString("|------|---------|--------|\n")
		sb.WriteString("| NOT_LOGGED_IN / LOGIN_FAILED | No valid session | Restart the server with correct credentials |\n")
		sb.WriteString("| DECODE_ERROR | Console returned a page instead of JSON | The session probably expired; restart the server |\n")
		sb.WriteString("| SERVER_ERROR | Console rejected the call (see ret) | Check ids; do not retry blindly |\n")
		sb.WriteString("| HTTP_ERROR / TIMEOUT | Transport failure | Retry once |\n")
		sb.WriteString("| INVALID_INPUT | Bad arguments or unreadable file | Fix the input |\n")
		sb.WriteString("| FORBIDDEN | Publishing gate | See Publishing above |\n")

		return &sdkmcp.GetPromptResult{
			Description: "Guide to the admin console tools",
			Messages: []*sdkmcp.PromptMessage{
				{
					Role:    "user",
					Content: &sdkmcp.TextContent{Text: sb.String()},
				},
			},
		}, nil
	}
}
