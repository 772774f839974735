package tools

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// UploadImageInput is the input for mp_upload_image.
type UploadImageInput = ImageInput

// UploadImageOutput is the output for mp_upload_image.
type UploadImageOutput struct {
	FileID string `json:"file_id"`
	Cached bool   `json:"cached,omitempty"`
}

// ToolUploadImage stores an image in the media library. Identical bytes
// uploaded earlier in this server's lifetime return the earlier file id.
func ToolUploadImage(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input UploadImageInput) (*sdkmcp.CallToolResult, UploadImageOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input UploadImageInput) (*sdkmcp.CallToolResult, UploadImageOutput, error) {
		data, err := input.Read()
		if err != nil {
			return nil, UploadImageOutput{}, err
		}
		if id, ok := d.Media.Lookup(data); ok {
			return nil, UploadImageOutput{FileID: id, Cached: true}, nil
		}

		unlock := d.Lock()
		id, err := d.Client.UploadImage(ctx, data)
		unlock()
		if err != nil {
			return nil, UploadImageOutput{}, WrapConsoleError(err)
		}
		d.Media.Store(data, id)
		return nil, UploadImageOutput{FileID: id}, nil
	}
}

// DeleteImageInput is the input for mp_delete_image.
type DeleteImageInput struct {
	FileID string `json:"file_id" jsonschema:"Media library file id"`
	Select string `json:"select,omitempty" jsonschema:"Optional jq expression applied to the response"`
}

// ToolDeleteImage removes a media library file.
func ToolDeleteImage(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input DeleteImageInput) (*sdkmcp.CallToolResult, ResponseOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input DeleteImageInput) (*sdkmcp.CallToolResult, ResponseOutput, error) {
		if input.FileID == "" {
			return nil, ResponseOutput{}, ErrInvalidInput("file_id is required")
		}

		unlock := d.Lock()
		doc, err := d.Client.DeleteImage(ctx, input.FileID)
		unlock()
		if err != nil {
			return nil, ResponseOutput{}, WrapConsoleError(err)
		}
		d.Media.Forget(input.FileID)

		out, err := d.respond(doc, input.Select)
		return nil, out, err
	}
}

// UploadContentImageInput is the input for mp_upload_content_image.
type UploadContentImageInput = ImageInput

// UploadContentImageOutput is the output for mp_upload_content_image.
type UploadContentImageOutput struct {
	URL   string `json:"url"`
	State string `json:"state"`
}

// ToolUploadContentImage uploads an image for use inside article HTML.
func ToolUploadContentImage(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input UploadContentImageInput) (*sdkmcp.CallToolResult, UploadContentImageOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input UploadContentImageInput) (*sdkmcp.CallToolResult, UploadContentImageOutput, error) {
		data, err := input.Read()
		if err != nil {
			return nil, UploadContentImageOutput{}, err
		}

		unlock := d.Lock()
		img, err := d.Client.UploadContentImage(ctx, data)
		unlock()
		if err != nil {
			return nil, UploadContentImageOutput{}, WrapConsoleError(err)
		}
		return nil, UploadContentImageOutput{URL: img.URL, State: img.State}, nil
	}
}
