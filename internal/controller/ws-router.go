package controller

import (
	"github.com/danmakutv/server/pkg/wsrouter"
)

func (c controller) getWSRouter() *wsrouter.WSRouter {
	mux := wsrouter.New(
		c.wsRequestIdWSMw(),
		c.loggerWSMw(),
	)

	wsrouter.Handle(mux, "ALIVE", c.handleAlive)
	wsrouter.Handle(mux, "COMMENT", c.handleComment)
	wsrouter.Handle(mux, "DELETE_COMMENT", c.handleDeleteComment)

	return mux
}
