package container

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xraph/strand/pkg/errors"
)

func TestEventBindingViaReference(t *testing.T) {
	c, _ := newTestContainer(t, `
listener: {$class: Recorder}
server:
  $class: Server
  $on:
    started: {$ref: listener, $handler: record}
`)

	instance, err := c.Get("server")
	require.NoError(t, err)
	server := instance.(*Server)

	helper, err := c.Get("listener")
	require.NoError(t, err)
	recorder := helper.(*Recorder)

	// Binding must not invoke the handler.
	assert.Empty(t, recorder.recorded())

	server.Emit("started", "boot")
	assert.Equal(t, []interface{}{"boot"}, recorder.recorded())

	server.Emit("started", "again")
	assert.Equal(t, []interface{}{"boot", "again"}, recorder.recorded())
}

func TestEventBindingHelperIsShared(t *testing.T) {
	c, counts := newTestContainer(t, `
listener: {$class: Recorder}
a:
  $class: Server
  $on:
    started: {$ref: listener, $handler: record}
b:
  $class: Server
  $on:
    started: {$ref: listener, $handler: record}
`)

	_, err := c.Get("a")
	require.NoError(t, err)
	_, err = c.Get("b")
	require.NoError(t, err)
	assert.Equal(t, 1, counts.count("Recorder"))
}

func TestEventBindingInlineHelper(t *testing.T) {
	c, counts := newTestContainer(t, `
server:
  $class: Server
  $on:
    started: {$class: Recorder, $handler: record}
`)

	instance, err := c.Get("server")
	require.NoError(t, err)
	assert.Equal(t, 1, counts.count("Recorder"))

	// The inline recorder is reachable only through the binding; the
	// emit must still dispatch without error.
	assert.NotPanics(t, func() {
		instance.(*Server).Emit("started", "x")
	})
}

func TestEventBindingHandlerErrorDoesNotPropagate(t *testing.T) {
	c, _ := newTestContainer(t, `
listener: {$class: Recorder}
server:
  $class: Server
  $on:
    started: {$ref: listener, $handler: fail}
`)

	instance, err := c.Get("server")
	require.NoError(t, err)
	assert.NotPanics(t, func() {
		instance.(*Server).Emit("started", nil)
	})
}

func TestEventBindingOnNonEmitter(t *testing.T) {
	c, _ := newTestContainer(t, `
listener: {$class: Recorder}
db:
  $class: Conn
  dsn: x
  $on:
    started: {$ref: listener, $handler: record}
`)

	_, err := c.Get("db")
	requireErrorCode(t, err, errors.IsConstruction)
}

func TestEventBindingUnknownHandler(t *testing.T) {
	c, _ := newTestContainer(t, `
listener: {$class: Recorder}
server:
  $class: Server
  $on:
    started: {$ref: listener, $handler: nope}
`)

	_, err := c.Get("server")
	requireErrorCode(t, err, errors.IsUnknownTarget)
}

func TestCapabilityCompositionLaterWins(t *testing.T) {
	c, _ := newTestContainer(t, `
server: {$class: Server, $with: [retry, metrics]}
`)

	out, err := c.Invoke("server", "describe", nil)
	require.NoError(t, err)
	assert.Equal(t, "metrics", out)
}

func TestCapabilityPerInstance(t *testing.T) {
	c, _ := newTestContainer(t, `
a: {$class: Server, $with: [retry]}
b: {$class: Server, $with: [metrics]}
plain: {$class: Server}
`)

	out, err := c.Invoke("a", "describe", nil)
	require.NoError(t, err)
	assert.Equal(t, "retry", out)

	out, err = c.Invoke("b", "describe", nil)
	require.NoError(t, err)
	assert.Equal(t, "metrics", out)

	// Without composition the base method answers.
	out, err = c.Invoke("plain", "describe", nil)
	require.NoError(t, err)
	assert.Equal(t, "base", out)
}

func TestCapabilityFallsBackToBaseMethods(t *testing.T) {
	c, _ := newTestContainer(t, `
server: {$class: Server, $with: [retry]}
`)

	out, err := c.Invoke("server", "ping", nil)
	require.NoError(t, err)
	assert.Equal(t, "pong", out)
}

func TestCapabilityUnknownName(t *testing.T) {
	c, _ := newTestContainer(t, `
server: {$class: Server, $with: [nope]}
`)

	_, err := c.Get("server")
	requireErrorCode(t, err, errors.IsUnknownTarget)
}

func TestCapabilityOnNonHolder(t *testing.T) {
	c, _ := newTestContainer(t, `
db: {$class: Conn, dsn: x, $with: [retry]}
`)

	_, err := c.Get("db")
	requireErrorCode(t, err, errors.IsConstruction)
}

func TestInvokeUnknownMethod(t *testing.T) {
	c, _ := newTestContainer(t, `server: {$class: Server}`)

	_, err := c.Invoke("server", "nope", nil)
	requireErrorCode(t, err, errors.IsUnknownTarget)
}

func TestInvokeOnAlias(t *testing.T) {
	c, _ := newTestContainer(t, `
server: {$class: Server}
srv: {$ref: server}
`)

	out, err := c.Invoke("srv", "ping", nil)
	require.NoError(t, err)
	assert.Equal(t, "pong", out)
}
