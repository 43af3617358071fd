package session

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-rod/rod/lib/proto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleState() *State {
	return &State{
		Cookies: []*proto.NetworkCookie{
			{Name: "sid", Value: "abc", Domain: "example.com", Path: "/", HTTPOnly: true, Secure: true},
		},
		Origins: []Origin{
			{Origin: "https://example.com", LocalStorage: []Entry{{Name: "theme", Value: "dark"}}},
		},
	}
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()

	s := Load(filepath.Join(t.TempDir(), "absent.json"))
	require.NotNil(t, s)
	assert.True(t, s.Empty())
}

func TestLoad_CorruptFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	s := Load(path)
	require.NotNil(t, s)
	assert.True(t, s.Empty())

	_, err := Read(path)
	assert.Error(t, err)
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "state.json")
	want := sampleState()
	require.NoError(t, Save(path, want))

	got := Load(path)
	assert.False(t, got.Empty())

	wantJSON, err := json.Marshal(want)
	require.NoError(t, err)
	gotJSON, err := json.Marshal(got)
	require.NoError(t, err)
	assert.JSONEq(t, string(wantJSON), string(gotJSON))

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestSave_Overwrites(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, Save(path, sampleState()))
	require.NoError(t, Save(path, &State{}))

	assert.True(t, Load(path).Empty())
}

func TestSave_FailureIsReturned(t *testing.T) {
	t.Parallel()

	// a regular file where the parent directory should be
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o600))

	err := Save(filepath.Join(blocker, "state.json"), sampleState())
	assert.Error(t, err)
}

type fakeTarget struct {
	cookies    []*proto.NetworkCookie
	setCookies []*proto.NetworkCookie
	scripts    []string
	storage    Origin
	err        error
}

func (f *fakeTarget) Cookies(context.Context) ([]*proto.NetworkCookie, error) {
	return f.cookies, f.err
}

func (f *fakeTarget) SetCookies(_ context.Context, c []*proto.NetworkCookie) error {
	f.setCookies = c
	return f.err
}

func (f *fakeTarget) EvalInto(_ context.Context, out any, _ string, _ ...any) error {
	if f.err != nil {
		return f.err
	}
	*(out.(*Origin)) = f.storage
	return nil
}

func (f *fakeTarget) AddScriptOnNewDocument(_ context.Context, js string) error {
	f.scripts = append(f.scripts, js)
	return f.err
}

func TestApply(t *testing.T) {
	t.Parallel()

	target := &fakeTarget{}
	require.NoError(t, Apply(context.Background(), target, sampleState()))

	require.Len(t, target.setCookies, 1)
	assert.Equal(t, "sid", target.setCookies[0].Name)
	require.Len(t, target.scripts, 1)
	assert.True(t, strings.Contains(target.scripts[0], `"origin":"https://example.com"`))
	assert.True(t, strings.Contains(target.scripts[0], `"theme"`))
}

func TestApply_EmptyStateDoesNothing(t *testing.T) {
	t.Parallel()

	target := &fakeTarget{err: errors.New("must not be called")}
	assert.NoError(t, Apply(context.Background(), target, &State{}))
}

func TestCapture(t *testing.T) {
	t.Parallel()

	target := &fakeTarget{
		cookies: []*proto.NetworkCookie{{Name: "sid", Value: "new"}},
		storage: Origin{Origin: "https://example.com", LocalStorage: []Entry{{Name: "k", Value: "v"}}},
	}
	prev := &State{Origins: []Origin{
		{Origin: "https://example.com", LocalStorage: []Entry{{Name: "k", Value: "old"}}},
		{Origin: "https://other.test", LocalStorage: []Entry{{Name: "x", Value: "y"}}},
	}}

	s, err := Capture(context.Background(), target, prev)
	require.NoError(t, err)

	require.Len(t, s.Cookies, 1)
	assert.Equal(t, "new", s.Cookies[0].Value)
	assert.Equal(t, []Origin{
		{Origin: "https://other.test", LocalStorage: []Entry{{Name: "x", Value: "y"}}},
		{Origin: "https://example.com", LocalStorage: []Entry{{Name: "k", Value: "v"}}},
	}, s.Origins)
}

func TestCapture_OpaqueOrigin(t *testing.T) {
	t.Parallel()

	target := &fakeTarget{storage: Origin{Origin: "null"}}
	s, err := Capture(context.Background(), target, nil)
	require.NoError(t, err)
	assert.Empty(t, s.Origins)
}

func TestCapture_Error(t *testing.T) {
	t.Parallel()

	_, err := Capture(context.Background(), &fakeTarget{err: errors.New("page crashed")}, nil)
	assert.Error(t, err)
}
