package database

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRedactDBURL(t *testing.T) {
	assert.Equal(t, "ws://root:xxxxx@localhost:8000/rpc", redactDBURL("ws://root:secret@localhost:8000/rpc"))
	assert.Equal(t, "ws://localhost:8000/rpc", redactDBURL("ws://localhost:8000/rpc"))
	assert.Equal(t, "invalid-url", redactDBURL("://bad"))
}

func TestIsConnectionError(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{errors.New("dial tcp: connection refused"), true},
		{fmt.Errorf("write: %w", errors.New("broken pipe")), true},
		{errors.New("unexpected EOF"), true},
		{NewDBError(ErrNotConnected, "x"), true},
		{context.DeadlineExceeded, false},
		{errors.New("Parse error: unexpected token"), false},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, isConnectionError(c.err), "%v", c.err)
	}
}

func TestWithTimeout(t *testing.T) {
	ctx, cancel := withTimeout(context.Background(), time.Hour, queryTimeoutKey)
	defer cancel()
	deadline, ok := ctx.Deadline()
	assert.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(time.Hour), deadline, time.Second)

	override := WithQueryTimeout(context.Background(), time.Minute)
	ctx2, cancel2 := withTimeout(override, time.Hour, queryTimeoutKey)
	defer cancel2()
	deadline, _ = ctx2.Deadline()
	assert.WithinDuration(t, time.Now().Add(time.Minute), deadline, time.Second)

	// An execute override does not affect reads.
	other := WithExecuteTimeout(context.Background(), time.Minute)
	ctx3, cancel3 := withTimeout(other, time.Hour, queryTimeoutKey)
	defer cancel3()
	deadline, _ = ctx3.Deadline()
	assert.WithinDuration(t, time.Now().Add(time.Hour), deadline, time.Second)
}

func TestLimitOne(t *testing.T) {
	assert.Equal(t, "SELECT * FROM user WHERE email = $email LIMIT 1", limitOne("SELECT * FROM user WHERE email = $email"))
	assert.Equal(t, "SELECT * FROM user LIMIT 5", limitOne("SELECT * FROM user LIMIT 5"))
	assert.Equal(t, "UPSERT $id CONTENT $data", limitOne("UPSERT $id CONTENT $data"))
	assert.False(t, hasLimitClause("SELECT * FROM unlimited"))
}

func TestDBError(t *testing.T) {
	err := NewDBError(ErrQueryFailed, "failed to select user").WithQuery("SELECT *\n\tFROM $id")
	assert.Equal(t, "failed to select user (query: SELECT * FROM $id): query execution failed", err.Error())
	assert.True(t, errors.Is(err, ErrQueryFailed))

	assert.True(t, isUniqueViolation(errors.New("index `user_email` already contains 'a'")))
	assert.False(t, isUniqueViolation(errors.New("boom")))
	assert.False(t, isUniqueViolation(nil))
}

func TestNewClient_RequiresConnection(t *testing.T) {
	_, err := NewClient[struct{}](nil)
	assert.True(t, errors.Is(err, ErrNotConnected))
}
