package activity_test

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mfakit/pkg/activity"
)

func TestRecorder(t *testing.T) {
	t.Parallel()

	t.Run("record and list newest first", func(t *testing.T) {
		t.Parallel()

		recorder := activity.NewRecorder(activity.NewMemoryStorage())
		userID := uuid.New()

		recorder.Record(context.Background(), userID, activity.ActionEnabled, "", activity.Meta{IPAddress: "203.0.113.7"})
		recorder.Record(context.Background(), userID, activity.ActionLoginSuccess, "", activity.Meta{})

		entries, err := recorder.List(context.Background(), userID, 10, 0)
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, activity.ActionLoginSuccess, entries[0].Action)
		assert.Equal(t, activity.ActionEnabled, entries[1].Action)
		assert.Equal(t, "203.0.113.7", entries[1].IPAddress)
	})

	t.Run("list is scoped to the user", func(t *testing.T) {
		t.Parallel()

		recorder := activity.NewRecorder(activity.NewMemoryStorage())
		alice := uuid.New()
		bob := uuid.New()

		recorder.Record(context.Background(), alice, activity.ActionEnabled, "", activity.Meta{})
		recorder.Record(context.Background(), bob, activity.ActionDisabled, "", activity.Meta{})

		entries, err := recorder.List(context.Background(), alice, 10, 0)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, alice, entries[0].UserID)
	})

	t.Run("nil user lists across users", func(t *testing.T) {
		t.Parallel()

		recorder := activity.NewRecorder(activity.NewMemoryStorage())

		recorder.Record(context.Background(), uuid.New(), activity.ActionEnabled, "", activity.Meta{})
		recorder.Record(context.Background(), uuid.New(), activity.ActionDisabled, "", activity.Meta{})

		entries, err := recorder.List(context.Background(), uuid.Nil, 10, 0)
		require.NoError(t, err)
		assert.Len(t, entries, 2)
	})

	t.Run("limit and offset", func(t *testing.T) {
		t.Parallel()

		recorder := activity.NewRecorder(activity.NewMemoryStorage())
		userID := uuid.New()

		for range 5 {
			recorder.Record(context.Background(), userID, activity.ActionLoginFailed, "", activity.Meta{})
		}

		entries, err := recorder.List(context.Background(), userID, 2, 0)
		require.NoError(t, err)
		assert.Len(t, entries, 2)

		entries, err = recorder.List(context.Background(), userID, 10, 4)
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})

	t.Run("oversized user agent is truncated", func(t *testing.T) {
		t.Parallel()

		recorder := activity.NewRecorder(activity.NewMemoryStorage())
		userID := uuid.New()

		recorder.Record(context.Background(), userID, activity.ActionLoginFailed, "", activity.Meta{
			UserAgent: strings.Repeat("x", 1000),
		})

		entries, err := recorder.List(context.Background(), userID, 1, 0)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Len(t, entries[0].UserAgent, 255)
	})
}
