// Package client provides a Go SDK for the web admin console of an official
// account on the WeChat public platform.
//
// The console has no public API. The client drives the same form-encoded
// endpoints the browser does: it logs in once, keeps the session cookies and
// the rotating token, and threads both through every later call.
//
// # Quick Start
//
// Log in with the md5 hex of the account password:
//
//	c, err := client.Login(ctx, "me@example.com", client.HashPassword(pw))
//
// Use custom configuration:
//
//	c, err := client.Login(ctx, email, pwdMD5,
//	    client.WithSiteDomain("blog.example.com"),
//	    client.WithDebugProxy("http://127.0.0.1:8888"),
//	)
//
// # Messages
//
// Messages are a closed set of variants:
//
//	c.SendMessage(ctx, fakeID, client.TextMessage{Content: "hi"})
//	c.SendMessage(ctx, fakeID, client.ImageMessage{FileID: id})
//	c.SendMessageToMany(ctx, fakeIDs, client.AppMessage{AppMsgID: batch})
//
// # Article Batches
//
// A batch of up to MaxArticles articles is created in one call. The console
// does not return the new id, so read it back:
//
//	_, err := c.CreateAppMsg(ctx, articles)
//	id, err := c.LatestAppMsgID(ctx)
//
// PublishAppMsg broadcasts a batch to every subscriber and cannot be undone.
//
// # Responses
//
// Responses are returned as a Document, a decoded JSON object read through
// path accessors or jq:
//
//	doc.String("base_resp", "err_msg")
//	doc.Query(".app_msg_info.item[].app_id")
//
// By default a non-zero ret in the body is also returned as a *ServerError;
// WithStrictStatus(false) turns that off.
package client
