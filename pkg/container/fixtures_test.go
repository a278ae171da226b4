package container

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/xraph/strand/pkg/capability"
	"github.com/xraph/strand/pkg/document"
	"github.com/xraph/strand/pkg/events"
	"github.com/xraph/strand/pkg/registry"
)

// Conn is a fake connection with attribute access for $path tests
type Conn struct {
	dsn      string
	user     string
	password string
	options  map[string]interface{}
}

func (c *Conn) Attribute(name string) (interface{}, bool) {
	switch name {
	case "dsn":
		return c.dsn, true
	case "user":
		return c.user, true
	default:
		return nil, false
	}
}

// App holds a Conn dependency
type App struct {
	name string
	db   *Conn
}

// Recorder captures handler invocations
type Recorder struct {
	mu     sync.Mutex
	events []interface{}
}

func (r *Recorder) record(payload interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, payload)
}

func (r *Recorder) recorded() []interface{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]interface{}, len(r.events))
	copy(out, r.events)
	return out
}

// Server emits events and accepts capability composition
type Server struct {
	events.SyncEmitter
	capability.Mixin
}

// buildCounts tracks constructor invocations per class
type buildCounts struct {
	mu     sync.Mutex
	counts map[string]int
	trace  []interface{}
}

func newBuildCounts() *buildCounts {
	return &buildCounts{counts: make(map[string]int)}
}

func (b *buildCounts) inc(class string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.counts[class]++
}

func (b *buildCounts) count(class string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.counts[class]
}

func (b *buildCounts) total() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	total := 0
	for _, n := range b.counts {
		total += n
	}
	return total
}

func (b *buildCounts) mark(value interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.trace = append(b.trace, value)
}

func (b *buildCounts) marks() []interface{} {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]interface{}, len(b.trace))
	copy(out, b.trace)
	return out
}

// newTestRegistry registers the fixture targets against counts
func newTestRegistry(counts *buildCounts) *registry.Registry {
	reg := registry.New()

	reg.MustRegister(registry.Target{
		Name: "Conn",
		New: func(args registry.Args) (interface{}, error) {
			counts.inc("Conn")
			conn := &Conn{
				dsn:      args.String("dsn"),
				user:     args.String("user"),
				password: args.String("password"),
			}
			if v, ok := args.Get("options"); ok {
				conn.options, _ = v.(map[string]interface{})
			}
			return conn, nil
		},
		Methods: map[string]registry.Factory{
			"connect": func(args []interface{}) (interface{}, error) {
				counts.inc("Conn")
				conn := &Conn{}
				if len(args) > 0 {
					conn.dsn, _ = args[0].(string)
				}
				if len(args) > 1 {
					conn.user, _ = args[1].(string)
				}
				if len(args) > 2 {
					conn.password, _ = args[2].(string)
				}
				if len(args) > 3 {
					conn.options, _ = args[3].(map[string]interface{})
				}
				return conn, nil
			},
		},
	})

	reg.MustRegister(registry.Target{
		Name: "App",
		New: func(args registry.Args) (interface{}, error) {
			counts.inc("App")
			app := &App{name: args.String("name")}
			if v, ok := args.Get("db"); ok {
				db, ok := v.(*Conn)
				if !ok {
					return nil, fmt.Errorf("db argument is %T, want *Conn", v)
				}
				app.db = db
			}
			return app, nil
		},
	})

	reg.MustRegister(registry.Target{
		Name: "Recorder",
		New: func(args registry.Args) (interface{}, error) {
			counts.inc("Recorder")
			return &Recorder{}, nil
		},
		InstanceMethods: map[string]registry.Method{
			"record": func(recv interface{}, args []interface{}) (interface{}, error) {
				var payload interface{}
				if len(args) > 0 {
					payload = args[0]
				}
				recv.(*Recorder).record(payload)
				return nil, nil
			},
			"fail": func(recv interface{}, args []interface{}) (interface{}, error) {
				return nil, fmt.Errorf("handler refused")
			},
		},
	})

	reg.MustRegister(registry.Target{
		Name: "Server",
		New: func(args registry.Args) (interface{}, error) {
			counts.inc("Server")
			return &Server{}, nil
		},
		InstanceMethods: map[string]registry.Method{
			"ping": func(recv interface{}, args []interface{}) (interface{}, error) {
				return "pong", nil
			},
			"describe": func(recv interface{}, args []interface{}) (interface{}, error) {
				return "base", nil
			},
		},
	})

	reg.MustRegister(registry.Target{
		Name: "Probe",
		New: func(args registry.Args) (interface{}, error) {
			counts.inc("Probe")
			counts.mark(args.Int("id"))
			return args.Int("id"), nil
		},
	})

	reg.MustRegister(registry.Target{
		Name: "Slow",
		New: func(args registry.Args) (interface{}, error) {
			counts.inc("Slow")
			time.Sleep(50 * time.Millisecond)
			return &Conn{dsn: "slow"}, nil
		},
	})

	reg.MustRegister(registry.Target{
		Name: "Boom",
		New: func(args registry.Args) (interface{}, error) {
			counts.inc("Boom")
			return nil, fmt.Errorf("refused to start")
		},
	})

	reg.MustRegister(registry.Target{
		Name: "Panicky",
		New: func(args registry.Args) (interface{}, error) {
			panic("constructor exploded")
		},
	})

	return reg
}

// newTestContainer loads source and builds a container over the fixture
// registry, failing the test on any setup error.
func newTestContainer(t *testing.T, source string) (*Container, *buildCounts) {
	t.Helper()
	counts := newBuildCounts()
	c, err := newTestContainerErr(t, source, counts)
	require.NoError(t, err)
	return c, counts
}

func newTestContainerErr(t *testing.T, source string, counts *buildCounts) (*Container, error) {
	t.Helper()
	doc, err := document.Load([]byte(source))
	require.NoError(t, err)

	caps := capability.NewRegistry()
	caps.MustRegister(capability.Capability{
		Name: "retry",
		Methods: map[string]capability.Method{
			"describe": func(recv interface{}, args []interface{}) (interface{}, error) {
				return "retry", nil
			},
		},
	})
	caps.MustRegister(capability.Capability{
		Name: "metrics",
		Methods: map[string]capability.Method{
			"describe": func(recv interface{}, args []interface{}) (interface{}, error) {
				return "metrics", nil
			},
		},
	})

	return New(doc, Options{
		Registry:     newTestRegistry(counts),
		Capabilities: caps,
	})
}

// requireErrorCode asserts err matches the given sentinel check
func requireErrorCode(t *testing.T, err error, check func(error) bool) {
	t.Helper()
	require.Error(t, err)
	require.True(t, check(err), "unexpected error: %v", err)
}
