// @title Community Backend API
// @version 1.0
// @description Moderated community posts with a daily submission quota.
// @host localhost:8000
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

package main

import "community-backend/cmd/communityd/commands"

func main() {
	commands.Execute()
}
