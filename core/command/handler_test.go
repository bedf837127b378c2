package command_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/conduithq/conduit/core/command"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type CreateUser struct {
	UserID string
	Email  string
}

func TestNewHandlerFunc(t *testing.T) {
	t.Parallel()

	t.Run("derives command name from payload type", func(t *testing.T) {
		t.Parallel()

		handler := command.NewHandlerFunc(func(ctx context.Context, cmd CreateUser) error {
			return nil
		})

		assert.Equal(t, "CreateUser", handler.Name())
	})

	t.Run("executes handler with correct payload", func(t *testing.T) {
		t.Parallel()

		var capturedCmd CreateUser
		handler := command.NewHandlerFunc(func(ctx context.Context, cmd CreateUser) error {
			capturedCmd = cmd
			return nil
		})

		payload := CreateUser{UserID: "123", Email: "test@example.com"}
		err := handler.Handle(context.Background(), payload)

		require.NoError(t, err)
		assert.Equal(t, payload, capturedCmd)
	})

	t.Run("propagates handler errors", func(t *testing.T) {
		t.Parallel()

		expectedErr := errors.New("validation failed")
		handler := command.NewHandlerFunc(func(ctx context.Context, cmd CreateUser) error {
			return expectedErr
		})

		err := handler.Handle(context.Background(), CreateUser{})
		assert.ErrorIs(t, err, expectedErr)
	})

	t.Run("returns error for invalid payload type", func(t *testing.T) {
		t.Parallel()

		handler := command.NewHandlerFunc(func(ctx context.Context, cmd CreateUser) error {
			return nil
		})

		err := handler.Handle(context.Background(), "invalid-payload")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid payload type")
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		handler := command.NewHandlerFunc(func(ctx context.Context, cmd CreateUser) error {
			<-ctx.Done()
			return ctx.Err()
		})

		err := handler.Handle(ctx, CreateUser{})
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestHandlerConcurrency(t *testing.T) {
	t.Parallel()

	t.Run("handler is safe for concurrent use", func(t *testing.T) {
		t.Parallel()

		var counter atomic.Int32
		handler := command.NewHandlerFunc(func(ctx context.Context, cmd CreateUser) error {
			counter.Add(1)
			return nil
		})

		const concurrency = 100
		done := make(chan error, concurrency)

		for i := 0; i < concurrency; i++ {
			go func() {
				done <- handler.Handle(context.Background(), CreateUser{})
			}()
		}

		for i := 0; i < concurrency; i++ {
			err := <-done
			require.NoError(t, err)
		}

		assert.Equal(t, int32(concurrency), counter.Load())
	})
}

func TestGetCommandName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "CreateUser", command.GetCommandName(CreateUser{}))
	assert.Equal(t, "CreateUser", command.GetCommandName(&CreateUser{}))
}

func TestUnmarshalCommand(t *testing.T) {
	t.Parallel()

	command.NewHandlerFunc(func(ctx context.Context, cmd CreateUser) error { return nil })

	data := []byte(`{"UserID":"1","Email":"a@b.com"}`)
	cmd, err := command.UnmarshalCommand("CreateUser", data)
	require.NoError(t, err)
	assert.Equal(t, CreateUser{UserID: "1", Email: "a@b.com"}, cmd)

	_, err = command.UnmarshalCommand("Unregistered", data)
	assert.Error(t, err)
}
