package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/atal/internal/app"
	"github.com/MrSnakeDoc/atal/internal/domain"
	"github.com/MrSnakeDoc/atal/internal/hybrid"
)

type fakeApp struct {
	ran     bool
	closed  bool
	reset   bool
	lastReq domain.GenerateRequest
}

func (f *fakeApp) Run() error { f.ran = true; return nil }

func (f *fakeApp) Seed(context.Context) (hybrid.Result[bool], error) {
	return hybrid.Result[bool]{Value: true, Source: hybrid.SourceLocal}, nil
}

func (f *fakeApp) Ideas(_ context.Context, req domain.GenerateRequest) (hybrid.Result[[]domain.ProjectIdea], error) {
	f.lastReq = req
	return hybrid.Result[[]domain.ProjectIdea]{
		Value:  []domain.ProjectIdea{{ID: "1", Title: "Smart Plant Monitor"}},
		Source: hybrid.SourceLocal,
	}, nil
}

func (f *fakeApp) Status(context.Context) hybrid.ConnectionStatus {
	return hybrid.ConnectionStatus{RemoteConfigured: true}
}

func (f *fakeApp) ResetLocal(context.Context) error { f.reset = true; return nil }

func (f *fakeApp) Close() { f.closed = true }

func run(t *testing.T, fake *fakeApp, args ...string) (*bytes.Buffer, app.Options, error) {
	t.Helper()
	var got app.Options
	root := NewRootCommand(func(opts app.Options) (Application, error) {
		got = opts
		return fake, nil
	})
	out := &bytes.Buffer{}
	root.SetOut(out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out, got, err
}

func TestServeIsDefault(t *testing.T) {
	fake := &fakeApp{}
	_, opts, err := run(t, fake, "--local-only")
	require.NoError(t, err)
	assert.True(t, fake.ran)
	assert.True(t, opts.LocalOnly)

	fake = &fakeApp{}
	_, opts, err = run(t, fake, "serve", "--ephemeral")
	require.NoError(t, err)
	assert.True(t, fake.ran)
	assert.True(t, opts.Ephemeral)
}

func TestSeedCommand(t *testing.T) {
	fake := &fakeApp{}
	out, _, err := run(t, fake, "seed")
	require.NoError(t, err)
	assert.True(t, fake.closed)

	var got map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, true, got["seeded"])
	assert.Equal(t, "local", got["source"])
}

func TestIdeasCommand(t *testing.T) {
	fake := &fakeApp{}
	out, _, err := run(t, fake, "ideas",
		"--skill", "beginner",
		"--time", "2-5h",
		"--category", "Home Automation",
		"--component", "Arduino Uno",
		"--component", "DHT22")
	require.NoError(t, err)

	assert.Equal(t, domain.GenerateRequest{
		Skill:      "beginner",
		Time:       "2-5h",
		Categories: []string{"Home Automation"},
		Components: []string{"Arduino Uno", "DHT22"},
	}, fake.lastReq)

	var ideas []domain.ProjectIdea
	require.NoError(t, json.Unmarshal(out.Bytes(), &ideas))
	require.Len(t, ideas, 1)
	assert.Equal(t, "Smart Plant Monitor", ideas[0].Title)
}

func TestStatusCommand(t *testing.T) {
	fake := &fakeApp{}
	out, _, err := run(t, fake, "status")
	require.NoError(t, err)
	assert.Contains(t, out.String(), `"remote_configured": true`)
	assert.True(t, fake.closed)
}

func TestResetLocalCommand(t *testing.T) {
	fake := &fakeApp{}
	_, _, err := run(t, fake, "reset-local")
	require.Error(t, err, "refuses without --yes")
	assert.False(t, fake.reset)

	out, _, err := run(t, fake, "reset-local", "--yes")
	require.NoError(t, err)
	assert.True(t, fake.reset)
	assert.True(t, fake.closed)
	assert.Contains(t, out.String(), `"cleared": true`)
}

func TestFactoryErrorSurfaces(t *testing.T) {
	boom := errors.New("boom")
	root := NewRootCommand(func(app.Options) (Application, error) { return nil, boom })
	root.SetArgs([]string{"status"})
	root.SetOut(&bytes.Buffer{})
	assert.ErrorIs(t, root.ExecuteContext(context.Background()), boom)
}

func TestRejectsUnknownArgs(t *testing.T) {
	_, _, err := run(t, &fakeApp{}, "seed", "extra")
	assert.Error(t, err)
}
