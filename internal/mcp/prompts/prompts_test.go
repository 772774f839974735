package prompts

import (
	"context"
	"testing"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func promptText(t *testing.T, res *sdkmcp.GetPromptResult) string {
	t.Helper()
	require.Len(t, res.Messages, 1)
	text, ok := res.Messages[0].Content.(*sdkmcp.TextContent)
	require.True(t, ok)
	return text.Text
}

func getRequest(args map[string]string) *sdkmcp.GetPromptRequest {
	return &sdkmcp.GetPromptRequest{Params: &sdkmcp.GetPromptParams{Arguments: args}}
}

func TestUsageGuide_PublishGate(t *testing.T) {
	res, err := HandleUsageGuide(&Config{})(context.Background(), getRequest(nil))
	require.NoError(t, err)
	assert.Contains(t, promptText(t, res), "disabled on this server")

	res, err = HandleUsageGuide(&Config{AllowPublish: true, SiteDomain: "blog.example.com"})(context.Background(), getRequest(nil))
	require.NoError(t, err)
	text := promptText(t, res)
	assert.Contains(t, text, "confirm: true")
	assert.Contains(t, text, "blog.example.com")
}

func TestPublishBatch_Arguments(t *testing.T) {
	res, err := HandlePublishBatch(&Config{})(context.Background(), getRequest(map[string]string{
		"manifest_path": "posts/batch.yaml",
		"test_fakeid":   "oTEST",
	}))
	require.NoError(t, err)
	text := promptText(t, res)
	assert.Contains(t, text, `mp_create_appmsg(manifest_path="posts/batch.yaml")`)
	assert.Contains(t, text, `fake_ids=["oTEST"]`)
	assert.NotContains(t, text, "mp_latest_fakeid()")
	assert.Contains(t, text, "stop after the preview")
}

func TestPublishBatch_NoArguments(t *testing.T) {
	res, err := HandlePublishBatch(&Config{AllowPublish: true})(context.Background(), getRequest(nil))
	require.NoError(t, err)
	text := promptText(t, res)
	assert.Contains(t, text, "mp_latest_fakeid()")
	assert.NotContains(t, text, "stop after the preview")
}

func TestMessageSubscribers(t *testing.T) {
	res, err := HandleMessageSubscribers(&Config{})(context.Background(), getRequest(map[string]string{
		"fake_ids":   "a, b,,c",
		"image_path": "/tmp/x.jpg",
	}))
	require.NoError(t, err)
	text := promptText(t, res)
	assert.Contains(t, text, `["a", "b", "c"]`)
	assert.Contains(t, text, `mp_upload_image(path="/tmp/x.jpg")`)

	res, err = HandleMessageSubscribers(&Config{})(context.Background(), getRequest(nil))
	require.NoError(t, err)
	assert.Contains(t, promptText(t, res), "mp_send_text")
}

func TestRegister(t *testing.T) {
	srv := sdkmcp.NewServer(&sdkmcp.Implementation{Name: "test", Version: "0"}, nil)
	assert.NotPanics(t, func() {
		Register(srv, &Config{})
	})
}
