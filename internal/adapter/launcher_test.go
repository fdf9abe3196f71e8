package adapter

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLauncherCommandFor(t *testing.T) {
	l := NewLauncher("", nil, NullLogger())

	name, args := l.commandFor("linux", "https://x.example.com/a.png")
	assert.Equal(t, "xdg-open", name)
	assert.Equal(t, []string{"https://x.example.com/a.png"}, args)

	name, _ = l.commandFor("darwin", "https://x.example.com/a.png")
	assert.Equal(t, "open", name)

	name, args = l.commandFor("windows", "https://x.example.com/a.png")
	assert.Equal(t, "cmd", name)
	assert.Equal(t, []string{"/c", "start", "", "https://x.example.com/a.png"}, args)

	custom := NewLauncher("firefox", []string{"--new-tab"}, NullLogger())
	name, args = custom.commandFor("linux", "https://x.example.com")
	assert.Equal(t, "firefox", name)
	assert.Equal(t, []string{"--new-tab", "https://x.example.com"}, args)
}

func TestLauncherOpen(t *testing.T) {
	t.Run("Should start the browser for http links", func(t *testing.T) {
		var gotName string
		var gotArgs []string
		l := NewLauncher("browser", nil, NullLogger())
		l.start = func(name string, args ...string) error {
			gotName, gotArgs = name, args
			return nil
		}

		require.NoError(t, l.Open("https://img.example.com/mug.png"))
		assert.Equal(t, "browser", gotName)
		assert.Equal(t, []string{"https://img.example.com/mug.png"}, gotArgs)
	})

	t.Run("Should reject non-http links", func(t *testing.T) {
		l := NewLauncher("browser", nil, NullLogger())
		l.start = func(string, ...string) error {
			t.Fatal("should not start")
			return nil
		}
		assert.Error(t, l.Open("file:///etc/passwd"))
		assert.Error(t, l.Open(""))
		assert.Error(t, l.Open("mug.png"))
	})

	t.Run("Should wrap start failures", func(t *testing.T) {
		l := NewLauncher("browser", nil, NullLogger())
		l.start = func(string, ...string) error { return errors.New("boom") }
		err := l.Open("http://img.example.com")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to open link")
	})
}
