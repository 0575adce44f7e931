// Package welcomeemail implements the example reactor: when a TermsAccepted
// event is observed, a WelcomeEmailSent event is emitted and, only after it
// is durably recorded, the welcome email itself is sent.
package welcomeemail

import (
	"context"

	"github.com/marketboomer/event-sourcery-postgres/example/core"
	"github.com/marketboomer/event-sourcery-postgres/reactor"
)

// ProcessorName is the tracking key of the welcome email reactor.
const ProcessorName = "welcome_email"

// EmailSender sends the actual email. Implementations talk to the mail
// infrastructure; the reactor only cares that sending can fail.
type EmailSender interface {
	Send(ctx context.Context, recipient string, subject string) error
}

// NewDefinition builds the welcome email reactor definition around the
// given sender.
func NewDefinition(sender EmailSender) (*reactor.Definition, error) {
	return reactor.NewDefinition(ProcessorName,
		reactor.Process(core.TermsAcceptedEventType, sendWelcomeEmail(sender)),
		reactor.EmitsEvents(core.WelcomeEmailSentEventType),
	)
}

func sendWelcomeEmail(sender EmailSender) reactor.Handler {
	return func(ctx context.Context, event reactor.Event, emitter *reactor.Emitter, state reactor.State) error {
		email, _ := event.Body["email"].(string)

		_, err := emitter.Emit(ctx,
			core.BuildWelcomeEmailSent(event.AggregateID, email),
			reactor.WithPostAppendAction(func() error {
				return sender.Send(ctx, email, "Welcome!")
			}),
		)
		if err != nil {
			return err
		}

		state["last_welcomed_user_id"] = event.AggregateID

		return nil
	}
}
