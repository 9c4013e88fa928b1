/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package main

import "github.com/voxnote/transcript-api/cmd"

// @title           VoxNote Transcript API
// @version         1.0.0
// @description     Persistence and lifecycle API for speech-to-text transcripts
// @termsOfService  http://swagger.io/terms/
// @contact.name    API Support
// @contact.url     https://github.com/voxnote/transcript-api
// @contact.email   support@voxnote.local
// @license.name    MIT
// @license.url     https://opensource.org/licenses/MIT
// @host            localhost:8080
// @BasePath        /
// @schemes         http https
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Supabase JWT, sent as "Bearer <token>"
func main() {
	cmd.Execute()
}
