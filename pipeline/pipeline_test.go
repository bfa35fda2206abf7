package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/filmtaste/core"
)

func appendNode(name string) Node {
	return &NodeFunc{
		NodeName: name,
		NodeKind: KindPostProcess,
		Fn: func(_ context.Context, _ *core.RecommendContext, items []*core.Candidate) ([]*core.Candidate, error) {
			return append(items, core.NewCandidate(&core.Film{Title: name})), nil
		},
	}
}

func TestPipeline_Run(t *testing.T) {
	p := &Pipeline{Nodes: []Node{appendNode("a"), &NodeFunc{NodeName: "noop"}, appendNode("b")}}
	out, err := p.Run(context.Background(), &core.RecommendContext{}, nil)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "a", out[0].Title)
	assert.Equal(t, "b", out[1].Title)
}

func TestPipeline_RunError(t *testing.T) {
	boom := errors.New("boom")
	p := &Pipeline{Nodes: []Node{
		&NodeFunc{
			NodeName: "broken",
			NodeKind: KindRank,
			Fn: func(context.Context, *core.RecommendContext, []*core.Candidate) ([]*core.Candidate, error) {
				return nil, boom
			},
		},
		appendNode("never"),
	}}
	_, err := p.Run(context.Background(), nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "node broken")
}

func TestPipeline_RunCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := (&Pipeline{Nodes: []Node{appendNode("a")}}).Run(ctx, nil, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

const yamlConfig = `
pipeline:
  name: films
  nodes:
    - type: test.append
      config:
        title: first
    - type: test.append
`

func testFactory() *NodeFactory {
	f := NewNodeFactory()
	f.Register("test.append", func(cfg map[string]any) (Node, error) {
		title, _ := cfg["title"].(string)
		if title == "" {
			title = "default"
		}
		return appendNode(title), nil
	})
	return f
}

func TestConfig_BuildPipeline(t *testing.T) {
	cfg, err := ParseYAML([]byte(yamlConfig))
	require.NoError(t, err)
	assert.Equal(t, "films", cfg.Pipeline.Name)

	p, err := cfg.BuildPipeline(testFactory())
	require.NoError(t, err)
	out, err := p.Run(context.Background(), nil, nil)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "first", out[0].Title)
	assert.Equal(t, "default", out[1].Title)

	cfg.Pipeline.Nodes = append(cfg.Pipeline.Nodes, NodeConfig{Type: "unknown"})
	_, err = cfg.BuildPipeline(testFactory())
	assert.ErrorContains(t, err, "unknown node type")
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "p.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"pipeline":{"name":"j","nodes":[{"type":"test.append"}]}}`), 0o600))
	yamlPath := filepath.Join(dir, "p.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(yamlConfig), 0o600))

	cfg, err := Load(jsonPath)
	require.NoError(t, err)
	assert.Equal(t, "j", cfg.Pipeline.Name)

	cfg, err = Load(yamlPath)
	require.NoError(t, err)
	assert.Len(t, cfg.Pipeline.Nodes, 2)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
