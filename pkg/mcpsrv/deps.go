package mcpsrv

import (
	"github.com/xkong/wechatbackends/internal/cache"
	"github.com/xkong/wechatbackends/internal/config"
	"github.com/xkong/wechatbackends/internal/mcp/tools"
	"github.com/xkong/wechatbackends/internal/publish"
	"github.com/xkong/wechatbackends/internal/query"
	"github.com/xkong/wechatbackends/pkg/client"
)

// Deps contains all dependencies available to custom tools.
// This gives custom tools access to the same infrastructure as builtin tools.
//
// Client keeps per-session state; wrap every call on it in Lock.
type Deps struct {
	Client    *client.Client
	Config    *config.Config
	Publisher *publish.Publisher
	Query     *query.Engine
	Media     *cache.MediaCache

	lock func() func()
}

func newDeps(d *tools.Deps) *Deps {
	return &Deps{
		Client:    d.Client,
		Config:    d.Config,
		Publisher: d.Publisher,
		Query:     d.Query,
		Media:     d.Media,
		lock:      d.Lock,
	}
}

// Lock acquires the console session shared with the builtin tools and
// returns the function that releases it.
func (d *Deps) Lock() func() {
	return d.lock()
}
