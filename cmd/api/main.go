package main

// @title repost-bridge APIs
// @version 1.0
// @description OAuth callback and chat webhooks of the Mastodon repost bridge.

// @contact.name API Support

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:9089
// @BasePath /
// @schemes http
import (
	_ "repost-bridge/docs"
	protocol "repost-bridge/protocal"

	"github.com/sirupsen/logrus"
)

func main() {
	err := protocol.ServeHTTP()
	if err != nil {
		logrus.Fatalln(err)
	}
}
