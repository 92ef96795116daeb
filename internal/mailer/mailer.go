package mailer

import "embed"

const (
	FromName            = "JeffreysPrompts"
	maxRetries          = 3
	TicketReplyTemplate = "ticket_reply.tmpl"
	WelcomeTemplate     = "user_welcome.tmpl"
)

//go:embed "templates"
var FS embed.FS

type Client interface {
	Send(templateFile, username, email string, data any) (int, error)
}
