package prompts

import (
	"context"
	"fmt"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// HandleMessageSubscribers implements the direct messaging workflow.
func HandleMessageSubscribers(cfg *Config) func(ctx context.Context, req *sdkmcp.GetPromptRequest) (*sdkmcp.GetPromptResult, error) {
	return func(ctx context.Context, req *sdkmcp.GetPromptRequest) (*sdkmcp.GetPromptResult, error) {
		var fakeIDs []string
		for _, id := range strings.Split(argument(req, "fake_ids"), ",") {
			if id = strings.TrimSpace(id); id != "" {
				fakeIDs = append(fakeIDs, id)
			}
		}
		imagePath := argument(req, "image_path")

		var sb strings.Builder

		sb.WriteString("# Message Subscribers\n\n")
		sb.WriteString("Send one message to each listed subscriber and report exactly who received it.\n\n")

		sb.WriteString("## Suggested Tools\n\n")
		sb.WriteString("```\n")
		ids := `["<fake_id>", ...]`
		if len(fakeIDs) > 0 {
			quoted := make([]string, len(fakeIDs))
			for i, id := range fakeIDs {
				quoted[i] = fmt.Sprintf("%q", id)
			}
			ids = "[" + strings.Join(quoted, ", ") + "]"
		} else {
			sb.WriteString("# No recipients given: start with the latest sender\n")
			sb.WriteString("mp_latest_fakeid()\n\n")
		}
		if imagePath != "" {
			sb.WriteString(fmt.Sprintf("mp_upload_image(path=%q)\n", imagePath))
			sb.WriteString(fmt.Sprintf("mp_send_image(file_id=\"<from upload>\", fake_ids=%s, select=\".base_resp\")\n", ids))
		} else {
			sb.WriteString(fmt.Sprintf("mp_send_text(content=\"<message>\", fake_ids=%s, select=\".base_resp\")\n", ids))
		}
		sb.WriteString("```\n\n")

		sb.WriteString("## Reporting\n\n")
		sb.WriteString("- `sent` recipients from the start of the list got the message\n")
		sb.WriteString("- If `error` is set, the recipient at position `sent` failed and the rest were skipped\n")
		sb.WriteString("- Retry only the skipped tail, never the whole list, or earlier recipients get duplicates\n")

		return &sdkmcp.GetPromptResult{
			Description: "Guide for messaging a list of subscribers",
			Messages: []*sdkmcp.PromptMessage{
				{
					Role:    "user",
					Content: &sdkmcp.TextContent{Text: sb.String()},
				},
			},
		}, nil
	}
}
