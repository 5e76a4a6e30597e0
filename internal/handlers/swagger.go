package handlers

// @title Bedrock Agent API
// @version 1.0
// @description Forwards a prompt to an Amazon Bedrock model and returns the completion
// @termsOfService http://swagger.io/terms/

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8081
// @BasePath /

// @tag.name agent
// @tag.description Prompt completion

// @tag.name system
// @tag.description Service health
