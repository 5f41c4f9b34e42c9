package resource

import (
	"context"
	"fmt"

	"github.com/jrsteele09/hisabi-admin/gateway"
	apperrors "github.com/jrsteele09/hisabi-admin/internal/errors"
	"github.com/jrsteele09/hisabi-admin/models"
	"github.com/jrsteele09/hisabi-admin/query"
	"github.com/rs/zerolog/log"
)

// Notifier shows transient success and error acknowledgements.
type Notifier interface {
	Success(message string)
	Error(message string)
}

// Confirmer blocks until the user accepts or declines a destructive action.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}

// NotifierFuncs adapts two functions into a Notifier.
type NotifierFuncs struct {
	OnSuccess func(string)
	OnError   func(string)
}

func (n NotifierFuncs) Success(message string) {
	if n.OnSuccess != nil {
		n.OnSuccess(message)
	}
}

func (n NotifierFuncs) Error(message string) {
	if n.OnError != nil {
		n.OnError(message)
	}
}

// Messages are the acknowledgements shown for one command.
type Messages struct {
	Success string
	// Failure is used when the server sends no message of its own.
	Failure string
}

// Mutation runs confirmed writes. Writes are never retried; on success
// every cache entry under the affected resource prefixes is invalidated.
type Mutation struct {
	cache     *query.Cache
	notifier  Notifier
	confirmer Confirmer
}

func NewMutation(cache *query.Cache, notifier Notifier, confirmer Confirmer) *Mutation {
	return &Mutation{cache: cache, notifier: notifier, confirmer: confirmer}
}

// Submit validates item, then runs write. A validation failure never
// reaches the server. The returned error keeps the editing surface open.
func (m *Mutation) Submit(ctx context.Context, item models.Validator, write func(context.Context) error, msgs Messages, invalidate ...string) error {
	if item != nil {
		if err := item.Validate(); err != nil {
			m.notifier.Error(err.Error())
			return err
		}
	}
	return m.run(ctx, write, msgs, invalidate)
}

// Delete asks for confirmation and runs write only if the user accepts.
// Declining returns ErrConfirmationDeclined without a request.
func (m *Mutation) Delete(ctx context.Context, prompt string, write func(context.Context) error, msgs Messages, invalidate ...string) error {
	if m.confirmer == nil {
		return apperrors.Wrapf(apperrors.ErrConfirmationDeclined, "[Mutation Delete] no confirmation step")
	}
	ok, err := m.confirmer.Confirm(ctx, prompt)
	if err != nil {
		log.Debug().Err(err).Strs("resources", invalidate).Msg("confirmation failed")
		m.notifier.Error(msgs.Failure)
		return fmt.Errorf("[Mutation Delete] confirm: %w", err)
	}
	if !ok {
		return apperrors.ErrConfirmationDeclined
	}
	return m.run(ctx, write, msgs, invalidate)
}

func (m *Mutation) run(ctx context.Context, write func(context.Context) error, msgs Messages, invalidate []string) error {
	if err := write(ctx); err != nil {
		log.Debug().Err(err).Strs("resources", invalidate).Msg("mutation failed")
		m.notifier.Error(gateway.Message(err, msgs.Failure))
		return err
	}
	for _, prefix := range invalidate {
		m.cache.Invalidate(prefix)
	}
	m.notifier.Success(msgs.Success)
	return nil
}
