package container

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xraph/strand/pkg/document"
)

func analyze(t *testing.T, source string) *Graph {
	t.Helper()
	doc, err := document.Load([]byte(source))
	require.NoError(t, err)
	return Analyze(doc)
}

func TestAnalyzeCollectsEdges(t *testing.T) {
	g := analyze(t, `
db: {$class: Conn, dsn: x}
cache: {$class: Conn, dsn: y}
app:
  $class: App
  db: {$ref: db}
  fallback: {$ref: cache}
`)

	assert.Equal(t, []string{"db", "cache", "app"}, g.Names())
	assert.Empty(t, g.Edges("db"))
	assert.Equal(t, []string{"db", "cache"}, g.Edges("app"))
	assert.Empty(t, g.Issues())
	assert.Empty(t, g.Unknown())
	assert.Nil(t, g.Cycle())
}

func TestAnalyzeFindsNestedReferences(t *testing.T) {
	g := analyze(t, `
db: {$class: Conn, dsn: x}
listener: {$class: Recorder}
app:
  $class: Conn
  $method: connect
  $args:
    - {$ref: db}
    - plain
  $on:
    started: {$ref: listener, $handler: record}
settings:
  nested:
    deep: {$ref: db}
`)

	assert.Equal(t, []string{"db", "listener"}, g.Edges("app"))
	assert.Equal(t, []string{"db"}, g.Edges("settings"))
}

func TestAnalyzeUnknownReferences(t *testing.T) {
	g := analyze(t, `
app:
  $class: App
  db: {$ref: missing}
`)

	unknown := g.Unknown()
	require.Contains(t, unknown, "app")
	assert.Equal(t, []string{"missing"}, unknown["app"])
	// An undeclared target never closes a cycle.
	assert.Nil(t, g.Cycle())
}

func TestAnalyzeReportsIssues(t *testing.T) {
	g := analyze(t, `
bad:
  $class: Conn
  $args: [x]
  dsn: y
`)

	issues := g.Issues()
	require.Contains(t, issues, "bad")
	assert.NotEmpty(t, issues["bad"])
}

func TestCycleSelfReference(t *testing.T) {
	g := analyze(t, `
a:
  $class: App
  db: {$ref: a}
`)

	assert.Equal(t, []string{"a", "a"}, g.Cycle())
}

func TestCycleMultiHop(t *testing.T) {
	g := analyze(t, `
a:
  $class: App
  db: {$ref: b}
b:
  $class: App
  db: {$ref: c}
c:
  $class: App
  db: {$ref: a}
`)

	cycle := g.Cycle()
	require.Len(t, cycle, 4)
	assert.Equal(t, cycle[0], cycle[len(cycle)-1])
}

func TestSharedDependencyIsNotACycle(t *testing.T) {
	g := analyze(t, `
db: {$class: Conn, dsn: x}
a:
  $class: App
  db: {$ref: db}
b:
  $class: App
  db: {$ref: db}
`)

	assert.Nil(t, g.Cycle())
}

func TestAnalyzeNonMappingRoot(t *testing.T) {
	g := analyze(t, `[1, 2, 3]`)
	assert.Empty(t, g.Names())
	assert.Nil(t, g.Cycle())
}
