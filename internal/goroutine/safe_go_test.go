package goroutine

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroup_RecoversPanic(t *testing.T) {
	log, hook := test.NewNullLogger()
	g := NewRecoveryHandler(log).NewGroup()

	ran := false
	g.Go(context.Background(), "panicker", func(context.Context) { panic("boom") })
	g.Go(context.Background(), "worker", func(context.Context) { ran = true })
	g.Wait()

	assert.True(t, ran)
	require.Len(t, hook.AllEntries(), 1)
	entry := hook.LastEntry()
	assert.Equal(t, logrus.ErrorLevel, entry.Level)
	assert.Equal(t, "panicker", entry.Data["goroutine"])
}

func TestSafeGoWithContext_PassesContext(t *testing.T) {
	type key struct{}
	ctx := context.WithValue(context.Background(), key{}, "v")
	done := make(chan string, 1)

	NewRecoveryHandler(nil).SafeGoWithContext(ctx, "ctx", func(ctx context.Context) {
		done <- ctx.Value(key{}).(string)
	})

	assert.Equal(t, "v", <-done)
}
