package notifications

import (
	"context"
	"fmt"

	"github.com/9ssi7/exponent"
)

// SendAuthorResponseNotification tells a reviewer that the content author
// replied to their review. token is the reviewer's Expo push token.
func SendAuthorResponseNotification(ctx context.Context, push PushSender, token, contentTitle, reviewID string) error {
	t := exponent.Token(token)
	msg := &exponent.Message{
		To:    []*exponent.Token{&t},
		Title: "The author replied to your review",
		Body:  fmt.Sprintf("You got a response on your review of %q", contentTitle),
		Data: map[string]string{
			"type":     "review-response",
			"reviewId": reviewID,
			"screen":   "review-detail",
		},
	}
	_, err := push.PublishSingle(ctx, msg)
	return err
}
