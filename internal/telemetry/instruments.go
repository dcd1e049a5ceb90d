package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Counters for the comment pipeline and tool layer. Populated by
// initInstruments once providers are installed; before Init they are nil and
// the Count* helpers are no-ops.
var (
	commentsPosted  metric.Int64Counter
	commentsFailed  metric.Int64Counter
	toolInvocations metric.Int64Counter
)

func initInstruments() {
	meter := Meter("")
	commentsPosted, _ = meter.Int64Counter("groomer.comments.posted",
		metric.WithDescription("Comments successfully posted to the tracker"))
	commentsFailed, _ = meter.Int64Counter("groomer.comments.failed",
		metric.WithDescription("Comment posts that failed"))
	toolInvocations, _ = meter.Int64Counter("groomer.tool.invocations",
		metric.WithDescription("MCP tool invocations by tool name"))
}

// CountCommentPosted increments the posted-comments counter.
func CountCommentPosted(ctx context.Context) {
	if commentsPosted != nil {
		commentsPosted.Add(ctx, 1)
	}
}

// CountCommentFailed increments the failed-comments counter.
func CountCommentFailed(ctx context.Context) {
	if commentsFailed != nil {
		commentsFailed.Add(ctx, 1)
	}
}

// CountToolInvocation records one MCP tool call.
func CountToolInvocation(ctx context.Context, tool string) {
	if toolInvocations != nil {
		toolInvocations.Add(ctx, 1, metric.WithAttributes(attribute.String("tool", tool)))
	}
}
