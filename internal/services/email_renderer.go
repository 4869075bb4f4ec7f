package services

import (
	"fmt"
	"html"
	"strings"

	"github.com/rocjay1/ledger-sync/internal/models"
)

// RenderFailedItemSection renders the failed item callout.
func RenderFailedItemSection(item models.QueueItem) string {
	reason := item.LastError
	if reason == "" {
		reason = "unknown error"
	}

	return fmt.Sprintf(`
		<div style="background-color: #fff4f4; border-left: 5px solid #d13438; padding: 15px; margin-bottom: 20px;">
			<h3 style="color: #d13438; margin-top: 0; font-size: 18px;">⚠️ %s: %s</h3>
			<p style="margin: 0 0 8px 0;">%s</p>
			<code>%s</code>
		</div>
	`, html.EscapeString(string(item.Type)), html.EscapeString(item.Title),
		html.EscapeString(item.Description), html.EscapeString(reason))
}

// RenderPendingSection lists the items waiting behind the failed one.
func RenderPendingSection(items []models.QueueItem) string {
	if len(items) == 0 {
		return ""
	}

	var rows strings.Builder
	for _, item := range items {
		rows.WriteString(fmt.Sprintf("<li>%s - %s</li>", html.EscapeString(item.Title), html.EscapeString(item.Description)))
	}

	return fmt.Sprintf(`
		<p>%d more change(s) are waiting behind it:</p>
		<ul style="padding-left: 20px;">
			%s
		</ul>
	`, len(items), rows.String())
}

// RenderQueueHaltBody renders the full HTML body for a halted queue email.
// The first item is the one that failed.
func RenderQueueHaltBody(items []models.QueueItem) string {
	var failed, pending string
	if len(items) > 0 {
		failed = RenderFailedItemSection(items[0])
		pending = RenderPendingSection(items[1:])
	}

	return fmt.Sprintf(`
		<html>
		<body style="font-family: 'Segoe UI', sans-serif; color: #333; line-height: 1.6; background-color: #f4f4f4; margin: 0; padding: 20px;">
			<div style="max-width: 600px; margin: 0 auto; background: white; border-radius: 8px; overflow: hidden; box-shadow: 0 2px 8px rgba(0,0,0,0.1);">
				<div style="background-color: #d13438; padding: 20px; text-align: center; color: white;">
					<h2 style="margin: 0;">Sync Queue Halted</h2>
				</div>
				<div style="padding: 20px;">
					<p>A pending change could not be written to the ledger. No further changes will sync until it is retried or the queue is cleared.</p>
					%s
					%s
				</div>
			</div>
		</body>
		</html>
	`, failed, pending)
}
