// Package service holds outbound integrations: push notifications,
// billing and the message queue publisher. Everything here is
// best-effort from the caller's point of view; errors are logged and
// returned so callers can choose to ignore them without interrupting
// the main request flow.
package service

import (
	"context"
	"fmt"
	"log"
	"strconv"

	"github.com/movieexplorer/movie-explorer-api/internal/model"
)

// PushGateway abstracts the external push provider. A single call
// delivers one message to a batch of device tokens.
type PushGateway interface {
	Send(ctx context.Context, deviceTokens []string, title, body string, data map[string]string) error
}

// NotifiableLister yields the device tokens of users who opted in.
// *repository.UserRepo satisfies it.
type NotifiableLister interface {
	ListNotifiable(ctx context.Context) ([]string, error)
}

// Notifier fans a new-movie announcement out to opted-in devices.
type Notifier struct {
	Users   NotifiableLister
	Gateway PushGateway
}

func NewNotifier(users NotifiableLister, gw PushGateway) *Notifier {
	return &Notifier{Users: users, Gateway: gw}
}

// MovieCreated announces a newly added movie. With zero opted-in
// devices no external call is made; otherwise the gateway is invoked
// exactly once with the full token batch. Failures are logged and
// returned, never escalated: by the time this runs the movie is
// already persisted and the creating request must succeed regardless.
func (n *Notifier) MovieCreated(ctx context.Context, movie model.Movie) error {
	tokens, err := n.Users.ListNotifiable(ctx)
	if err != nil {
		log.Printf("notifier: list notifiable users failed: %v", err)
		return err
	}
	if len(tokens) == 0 {
		return nil
	}
	body := fmt.Sprintf("%s has been added to the Movie Explorer collection.", movie.Title)
	data := map[string]string{"movie_id": strconv.FormatUint(movie.ID, 10)}
	if err := n.Gateway.Send(ctx, tokens, "New Movie Added!", body, data); err != nil {
		log.Printf("notifier: push dispatch failed: %v", err)
		return err
	}
	return nil
}
