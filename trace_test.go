package postfix

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-postfix/adapter"
	"github.com/goliatone/go-postfix/source"
)

func layeredEngine(t *testing.T) *Engine {
	return loadEngine(t, adapter.NewJSON(), map[string]string{
		"":    `{"database":{"host":"localhost","port":5432},"servers":["server1"],"name":"app"}`,
		"dev": `{"database":{"debug":true},"servers":["dev-server1"]}`,
		"ci":  `{"database":{"host":"ci-db"}}`,
	}, WithPriorities("dev"))
}

func TestTraceReportsEveryProbedSource(t *testing.T) {
	e := layeredEngine(t)

	trace, err := e.Trace("ci", "database.host")
	require.NoError(t, err)
	assert.Equal(t, []string{"ci", "dev", ""}, trace.Chain)
	require.Len(t, trace.Layers, 3)

	assert.Equal(t, Provenance{Postfix: "ci", Loaded: true, Path: "database.host", Value: "ci-db", Found: true}, trace.Layers[0])
	assert.Equal(t, Provenance{Postfix: "dev", Loaded: true, Path: "database.host"}, trace.Layers[1])
	assert.Equal(t, Provenance{Postfix: "", Loaded: true, Path: "database.host", Value: "localhost", Found: true}, trace.Layers[2])

	assert.True(t, trace.Found)
	assert.Equal(t, "ci-db", trace.Value)
	assert.Equal(t, []string{"ci", ""}, trace.Contributors())
}

func TestTraceOfMergedValues(t *testing.T) {
	e := layeredEngine(t)

	trace, err := e.Trace("", "servers")
	require.NoError(t, err)
	assert.Equal(t, []string{"dev", ""}, trace.Chain)
	assert.Equal(t, []any{"server1", "dev-server1"}, trace.Value)

	trace, err = e.Trace("fr", "missing")
	require.NoError(t, err)
	assert.False(t, trace.Found)
	assert.False(t, trace.Layers[0].Loaded, "fr has no source")
	assert.Empty(t, trace.Contributors())
}

func TestTraceKeepsSourceNames(t *testing.T) {
	e, err := New(adapter.NewJSON())
	require.NoError(t, err)
	provider := source.NewMemory(
		source.Document{Postfix: "", Name: "config.json", Content: []byte(`{"a":1}`)},
		source.Document{Postfix: "cs", Name: "config_cs.json", Content: []byte(`{"a":2}`)},
	)
	require.NoError(t, e.LoadFrom(t.Context(), provider))

	trace, err := e.Trace("cs", "a")
	require.NoError(t, err)
	assert.Equal(t, "config_cs.json", trace.Layers[0].Name)
	assert.Equal(t, "config.json", trace.Layers[1].Name)
}

func TestTraceJSONRoundTrip(t *testing.T) {
	e := layeredEngine(t)
	trace, err := e.Trace("dev", "database")
	require.NoError(t, err)

	payload, err := trace.ToJSON()
	require.NoError(t, err)

	decoded, err := TraceFromJSON(payload)
	require.NoError(t, err)
	assert.Equal(t, trace.Postfix, decoded.Postfix)
	assert.Equal(t, trace.Chain, decoded.Chain)
	assert.Equal(t, trace.Contributors(), decoded.Contributors())
	assert.Equal(t, map[string]any{"host": "localhost", "port": float64(5432), "debug": true}, decoded.Value)

	_, err = TraceFromJSON([]byte("{"))
	assert.Error(t, err)
}

func TestDescribeFlattensMergedDocument(t *testing.T) {
	e := layeredEngine(t)

	fields, err := e.Describe()
	require.NoError(t, err)
	assert.Equal(t, []FieldDescriptor{
		{Path: "database.host", Type: "string", Sources: []string{""}},
		{Path: "database.port", Type: "int64", Sources: []string{""}},
		{Path: "database.debug", Type: "bool", Sources: []string{"dev"}},
		{Path: "servers", Type: "[]string", Sources: []string{"dev", ""}},
		{Path: "name", Type: "string", Sources: []string{""}},
	}, fields)

	fields, err = e.DescribeFor("ci")
	require.NoError(t, err)
	require.NotEmpty(t, fields)
	assert.Equal(t, FieldDescriptor{Path: "database.host", Type: "string", Sources: []string{"ci", ""}}, fields[0])
}

func TestDescribePlainText(t *testing.T) {
	e := loadEngine(t, adapter.NewProperties(), map[string]string{
		"":   "robot.greeting=Hi\nname=app\n",
		"cs": "robot.greeting=Ahoj\n",
	}, WithPriorities("cs"))

	fields, err := e.Describe()
	require.NoError(t, err)
	assert.Equal(t, []FieldDescriptor{
		{Path: "robot.greeting", Type: "string", Sources: []string{"cs", ""}},
		{Path: "name", Type: "string", Sources: []string{""}},
	}, fields)
}

func TestDescribeEmptyDocument(t *testing.T) {
	e := loadEngine(t, adapter.NewJSON(), map[string]string{"": `{}`})
	fields, err := e.Describe()
	require.NoError(t, err)
	assert.Empty(t, fields)
	assert.NotNil(t, fields)
}

func TestDescribeDuringReloadSeesOneRegistry(t *testing.T) {
	generations := [][]source.Document{
		{{Postfix: "", Content: []byte(`{"alpha":1}`)}, {Postfix: "dev", Content: []byte(`{"alpha":2}`)}},
		{{Postfix: "", Content: []byte(`{"beta":1}`)}, {Postfix: "dev", Content: []byte(`{"beta":2}`)}},
	}
	e, err := New(adapter.NewJSON(), WithPriorities("dev"))
	require.NoError(t, err)
	require.NoError(t, e.Reload(context.Background(), generations[0]))

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				fields, err := e.Describe()
				if err != nil {
					errs <- err
					return
				}
				if len(fields) != 1 || len(fields[0].Sources) != 2 {
					errs <- fmt.Errorf("worker %d: mixed registries in %+v", i, fields)
					return
				}
			}
		}(i)
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		for j := 0; j < 200; j++ {
			if err := e.Reload(context.Background(), generations[j%2]); err != nil {
				errs <- err
				return
			}
		}
	}()
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}
