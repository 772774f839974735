// Package prompts contains MCP prompts that walk an assistant through
// common admin console workflows.
package prompts

// Config holds configuration needed by prompts.
type Config struct {
	AllowPublish bool
	SiteDomain   string
}
