package main

import (
	"context"
	"net/http"

	"bedrock-agent-api/pkg/lambda"
	"bedrock-agent-api/pkg/server"

	"github.com/aws/aws-lambda-go/events"
	awslambda "github.com/aws/aws-lambda-go/lambda"
	"github.com/sirupsen/logrus"
)

var manager = server.NewDefaultContainerManager()

func handler(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	container, err := manager.GetContainer()
	if err != nil {
		logrus.WithError(err).Error("Failed to initialize container")
		return events.APIGatewayProxyResponse{
			StatusCode: http.StatusInternalServerError,
			Headers:    map[string]string{"content-type": "application/json"},
			Body:       `{"error":"Internal server error"}`,
		}, nil
	}

	resp, err := container.AgentHandler.HandleConverse(ctx, lambda.FromAPIGatewayProxyRequest(event))
	if err != nil {
		return events.APIGatewayProxyResponse{
			StatusCode: http.StatusInternalServerError,
			Headers:    map[string]string{"content-type": "application/json"},
			Body:       `{"error":"Internal server error"}`,
		}, nil
	}

	return lambda.ToAPIGatewayProxyResponse(resp), nil
}

func main() {
	awslambda.Start(handler)
}
