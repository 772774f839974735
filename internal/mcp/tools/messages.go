package tools

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/xkong/wechatbackends/pkg/client"
)

// SendTextInput is the input for mp_send_text.
type SendTextInput struct {
	FakeIDs []string `json:"fake_ids" jsonschema:"Subscriber fakeids to message in order"`
	Content string   `json:"content" jsonschema:"Message text"`
	Select  string   `json:"select,omitempty" jsonschema:"Optional jq expression applied to each response"`
}

// SendImageInput is the input for mp_send_image.
type SendImageInput struct {
	FakeIDs []string `json:"fake_ids" jsonschema:"Subscriber fakeids to message in order"`
	FileID  string   `json:"file_id" jsonschema:"Media library file id from mp_upload_image"`
	Select  string   `json:"select,omitempty" jsonschema:"Optional jq expression applied to each response"`
}

// SendAppMsgInput is the input for mp_send_appmsg.
type SendAppMsgInput struct {
	FakeIDs  []string `json:"fake_ids" jsonschema:"Subscriber fakeids to preview the batch to"`
	AppMsgID string   `json:"app_msg_id" jsonschema:"Article batch id"`
	Select   string   `json:"select,omitempty" jsonschema:"Optional jq expression applied to each response"`
}

// SendOutput reports a sequential send. Sending stops at the first failure,
// so Sent may be less than the number of recipients.
type SendOutput struct {
	Sent      int              `json:"sent"`
	Requested int              `json:"requested"`
	Responses []ResponseOutput `json:"responses,omitzero"`
	Error     string           `json:"error,omitempty"`
}

// ToolSendText sends a text message to each recipient.
func ToolSendText(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input SendTextInput) (*sdkmcp.CallToolResult, SendOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input SendTextInput) (*sdkmcp.CallToolResult, SendOutput, error) {
		if input.Content == "" {
			return nil, SendOutput{}, ErrInvalidInput("content is required")
		}
		out, err := d.send(ctx, input.FakeIDs, client.TextMessage{Content: input.Content}, input.Select)
		return nil, out, err
	}
}

// ToolSendImage sends a stored image to each recipient.
func ToolSendImage(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input SendImageInput) (*sdkmcp.CallToolResult, SendOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input SendImageInput) (*sdkmcp.CallToolResult, SendOutput, error) {
		if input.FileID == "" {
			return nil, SendOutput{}, ErrInvalidInput("file_id is required")
		}
		out, err := d.send(ctx, input.FakeIDs, client.ImageMessage{FileID: input.FileID}, input.Select)
		return nil, out, err
	}
}

// ToolSendAppMsg previews an article batch to each recipient.
func ToolSendAppMsg(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input SendAppMsgInput) (*sdkmcp.CallToolResult, SendOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input SendAppMsgInput) (*sdkmcp.CallToolResult, SendOutput, error) {
		if input.AppMsgID == "" {
			return nil, SendOutput{}, ErrInvalidInput("app_msg_id is required")
		}
		if len(input.FakeIDs) == 0 {
			return nil, SendOutput{}, ErrInvalidInput("fake_ids is required")
		}

		unlock := d.Lock()
		docs, err := d.Publisher.Preview(ctx, input.AppMsgID, input.FakeIDs)
		unlock()

		return d.sendOutput(docs, len(input.FakeIDs), input.Select, err)
	}
}

func (d *Deps) send(ctx context.Context, fakeIDs []string, msg client.Message, selector string) (SendOutput, error) {
	if len(fakeIDs) == 0 {
		return SendOutput{}, ErrInvalidInput("fake_ids is required")
	}

	unlock := d.Lock()
	docs, err := d.Client.SendMessageToMany(ctx, fakeIDs, msg)
	unlock()

	_, out, err := d.sendOutput(docs, len(fakeIDs), selector, err)
	return out, err
}

// sendOutput reports partial progress in the output and only fails the call
// when nothing was sent.
func (d *Deps) sendOutput(docs []client.Document, requested int, selector string, sendErr error) (*sdkmcp.CallToolResult, SendOutput, error) {
	responses, err := d.respondMany(docs, selector)
	if err != nil {
		return nil, SendOutput{}, err
	}
	out := SendOutput{Sent: len(docs), Requested: requested, Responses: responses}
	if sendErr != nil {
		wrapped := WrapConsoleError(sendErr)
		if len(docs) == 0 {
			return nil, SendOutput{}, wrapped
		}
		out.Error = wrapped.Error()
	}
	return nil, out, nil
}

// LatestFakeIDInput is the input for mp_latest_fakeid.
type LatestFakeIDInput struct{}

// LatestFakeIDOutput is the output for mp_latest_fakeid.
type LatestFakeIDOutput struct {
	FakeID  string         `json:"fake_id,omitempty"`
	Message map[string]any `json:"message,omitempty"`
	Hint    string         `json:"hint,omitempty"`
}

// ToolLatestFakeID returns the fakeid of the subscriber who wrote last.
func ToolLatestFakeID(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input LatestFakeIDInput) (*sdkmcp.CallToolResult, LatestFakeIDOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input LatestFakeIDInput) (*sdkmcp.CallToolResult, LatestFakeIDOutput, error) {
		unlock := d.Lock()
		item, err := d.Client.LatestMessage(ctx)
		unlock()
		if err != nil {
			return nil, LatestFakeIDOutput{}, WrapConsoleError(err)
		}
		if item == nil {
			return nil, LatestFakeIDOutput{Hint: "no subscriber messages yet; send a message to the account from the target account first"}, nil
		}
		return nil, LatestFakeIDOutput{FakeID: item.String("fakeid"), Message: item}, nil
	}
}
