// Package core defines the domain events of the example signup flow.
package core

import "github.com/marketboomer/event-sourcery-postgres/reactor"

// TermsAcceptedEventType is emitted by the signup flow when a user accepts
// the terms of service.
const TermsAcceptedEventType = "terms_accepted"

// WelcomeEmailSentEventType is emitted by the welcome email reactor once a
// welcome email for a signup has been recorded.
const WelcomeEmailSentEventType = "welcome_email_sent"

// BuildTermsAccepted creates a TermsAccepted event for the given user.
func BuildTermsAccepted(userID string, email string) reactor.Event {
	return reactor.NewEvent(TermsAcceptedEventType, userID, reactor.Body{
		"email": email,
	})
}

// BuildWelcomeEmailSent creates a WelcomeEmailSent event for the given user.
func BuildWelcomeEmailSent(userID string, email string) reactor.Event {
	return reactor.NewEvent(WelcomeEmailSentEventType, userID, reactor.Body{
		"email": email,
	})
}
