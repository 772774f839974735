package tools

import (
	"sync"

	"github.com/xkong/wechatbackends/internal/cache"
	"github.com/xkong/wechatbackends/internal/config"
	"github.com/xkong/wechatbackends/internal/publish"
	"github.com/xkong/wechatbackends/internal/query"
	"github.com/xkong/wechatbackends/pkg/client"
)

// Deps contains all dependencies needed by tool handlers.
type Deps struct {
	Client    *client.Client
	Config    *config.Config
	Publisher *publish.Publisher
	Query     *query.Engine
	Media     *cache.MediaCache // file ids of images uploaded through mp_upload_image

	// console serializes calls on Client, which keeps per-session state.
	console sync.Mutex
}

// NewDeps builds the tool dependencies around a logged-in client.
func NewDeps(c *client.Client, cfg *config.Config) (*Deps, error) {
	pub, err := publish.New(c, cfg.MediaCacheMaxItems)
	if err != nil {
		return nil, err
	}
	engine, err := query.NewEngine(cfg.QueryCacheMaxItems)
	if err != nil {
		return nil, err
	}
	media, err := cache.NewMediaCache(cfg.MediaCacheMaxItems)
	if err != nil {
		return nil, err
	}
	return &Deps{
		Client:    c,
		Config:    cfg,
		Publisher: pub,
		Query:     engine,
		Media:     media,
	}, nil
}

// Lock acquires exclusive use of the console session.
func (d *Deps) Lock() func() {
	d.console.Lock()
	return d.console.Unlock
}
