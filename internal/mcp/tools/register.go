package tools

import (
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// Register registers all tools with the MCP server.
func Register(srv *sdkmcp.Server, d *Deps) {
	AddTool(srv, &sdkmcp.Tool{
		Name:        "mp_send_text",
		Description: "Send a text message to one or more subscribers by fakeid. Messages go out one at a time in the given order and sending stops at the first failure; check sent against requested. Use mp_latest_fakeid to find a fakeid.",
	}, ToolSendText(d))

	AddTool(srv, &sdkmcp.Tool{
		Name:        "mp_send_image",
		Description: "Send a media library image (file_id from mp_upload_image) to one or more subscribers, sequentially.",
	}, ToolSendImage(d))

	AddTool(srv, &sdkmcp.Tool{
		Name:        "mp_send_appmsg",
		Description: "Preview an article batch by sending it to specific subscribers. Use this on a test account before mp_publish_appmsg.",
	}, ToolSendAppMsg(d))

	AddTool(srv, &sdkmcp.Tool{
		Name:        "mp_upload_image",
		Description: "Upload an image to the media library from a local path or base64 data. Returns the file_id used by mp_send_image and as an article cover. Re-uploading identical bytes returns the cached id.",
	}, ToolUploadImage(d))

	AddTool(srv, &sdkmcp.Tool{
		Name:        "mp_delete_image",
		Description: "Delete a media library image by file_id.",
	}, ToolDeleteImage(d))

	AddTool(srv, &sdkmcp.Tool{
		Name:        "mp_upload_content_image",
		Description: "Upload an image for use inside article HTML. Returns the CDN url to put in an img src. mp_create_appmsg does this automatically for local img paths.",
	}, ToolUploadContentImage(d))

	AddTool(srv, &sdkmcp.Tool{
		Name:        "mp_create_appmsg",
		Description: "Create an article batch (1 to 8 articles) from a manifest file or inline articles. Local covers and inline images are uploaded first. Returns the new app_msg_id.",
	}, ToolCreateAppMsg(d))

	AddTool(srv, &sdkmcp.Tool{
		Name:        "mp_latest_appmsg",
		Description: "Return the id of the most recently created article batch.",
	}, ToolLatestAppMsg(d))

	AddTool(srv, &sdkmcp.Tool{
		Name:        "mp_delete_appmsg",
		Description: "Delete an article batch by app_msg_id.",
	}, ToolDeleteAppMsg(d))

	AddTool(srv, &sdkmcp.Tool{
		Name:        "mp_publish_appmsg",
		Description: "Broadcast an article batch to ALL subscribers. Irreversible. Requires confirm=true and a server started with MP_ALLOW_PUBLISH=true; otherwise fails with FORBIDDEN.",
	}, ToolPublishAppMsg(d))

	AddTool(srv, &sdkmcp.Tool{
		Name:        "mp_latest_fakeid",
		Description: "Return the fakeid of the subscriber who most recently messaged the account, with the message itself.",
	}, ToolLatestFakeID(d))
}
