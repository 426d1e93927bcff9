package capabilities

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/mcp-starter/schema"
	"github.com/felixgeelhaar/mcp-starter/server"
)

// Tones accepted by the summarize prompt.
var Tones = []string{"formal", "casual", "technical"}

// RegisterSummarize adds the summarize prompt, which asks the model for a
// summary of a topic, optionally in a given tone.
func RegisterSummarize(srv *server.Server) error {
	return srv.Prompt("summarize").
		Description("Generate a prompt that asks for a summary of a given topic").
		Arguments(schema.Shape{
			"topic": schema.String().Describe("The topic to summarize"),
			"tone":  schema.Enum(Tones...).Optional().Describe("Desired tone for the summary"),
		}).
		Handler(func(ctx context.Context, args server.Arguments) (*server.PromptResult, error) {
			return &server.PromptResult{
				Messages: []server.PromptMessage{server.UserMessage(summaryRequest(args.String("topic"), args.String("tone")))},
			}, nil
		}).
		Err()
}

func summaryRequest(topic, tone string) string {
	text := fmt.Sprintf("Provide a concise summary about the following topic: \"%s\".", topic)
	if tone != "" {
		text += fmt.Sprintf(" Use a %s tone.", tone)
	}
	return text
}
