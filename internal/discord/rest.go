package discord

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/norinorin/discord-slash-command/pkg/retrylimit"
)

// RESTClient performs a raw call against the Discord REST API and returns the
// response body.
type RESTClient interface {
	Request(ctx context.Context, method, url string, body any) ([]byte, error)
}

type sessionClient struct {
	s *discordgo.Session
}

// NewRESTClient adapts a session. Requests are bucketed by URL.
func NewRESTClient(s *discordgo.Session) RESTClient {
	return sessionClient{s: s}
}

func (c sessionClient) Request(ctx context.Context, method, url string, body any) ([]byte, error) {
	return c.s.RequestWithBucketID(method, url, body, url, discordgo.WithContext(ctx))
}

// statusError exposes the status code of a discordgo REST error to the retry
// classifier.
type statusError struct {
	err  *discordgo.RESTError
	code int
}

func (e *statusError) Error() string   { return e.err.Error() }
func (e *statusError) Unwrap() error   { return e.err }
func (e *statusError) StatusCode() int { return e.code }

// classify marks 4xx other than 429 as fatal so they are not retried.
func classify(err error) error {
	var rest *discordgo.RESTError
	if !errors.As(err, &rest) || rest.Response == nil {
		return err
	}
	code := rest.Response.StatusCode
	if code >= 400 && code < 500 && code != 429 {
		return &retrylimit.FatalError{Err: fmt.Errorf("discord returned %d: %w", code, err)}
	}
	return &statusError{err: rest, code: code}
}
