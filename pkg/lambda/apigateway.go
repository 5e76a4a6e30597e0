package lambda

import (
	"github.com/aws/aws-lambda-go/events"
)

// FromAPIGatewayProxyRequest converts an API Gateway proxy event to a generic request
func FromAPIGatewayProxyRequest(event events.APIGatewayProxyRequest) *Request {
	return &Request{
		Method:          event.HTTPMethod,
		Path:            event.Path,
		Headers:         event.Headers,
		Body:            []byte(event.Body),
		IsBase64Encoded: event.IsBase64Encoded,
		RequestID:       event.RequestContext.RequestID,
	}
}

// ToAPIGatewayProxyResponse converts a generic response to an API Gateway proxy response
func ToAPIGatewayProxyResponse(resp *Response) events.APIGatewayProxyResponse {
	return events.APIGatewayProxyResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Headers,
		Body:       string(resp.Body),
	}
}
