package model

import (
	"context"
	"encoding/json"
	"errors"
)

// JobConfirmation asks the mail worker to send a verification email.
const JobConfirmation = "confirmation"

// ErrUnprocessableJob marks a job that fails the same way on every delivery.
// Workers drop such jobs instead of retrying them.
var ErrUnprocessableJob = errors.New("unprocessable job")

// Dispatcher enqueues background jobs. Delivery is not awaited.
type Dispatcher interface {
	Enqueue(ctx context.Context, jobName string, payload any) error
}

// Job is the envelope published on the mail queue.
type Job struct {
	Name    string          `json:"name"`
	Payload json.RawMessage `json:"payload"`
}

// ConfirmationJob is the payload of JobConfirmation.
type ConfirmationJob struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Token string `json:"token"`
}
