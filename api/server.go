package api

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/river2spring/monad-agent-dating-app/api/handlers"
	"github.com/river2spring/monad-agent-dating-app/core"
)

// StartServer runs the observer REST API. Blocks.
func StartServer(port int, engine *core.Engine) error {
	handlers.Init(engine)
	r := gin.Default()
	SetupRoutes(r)
	return r.Run(fmt.Sprintf(":%d", port))
}
