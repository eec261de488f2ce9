package adapter

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLauncher_ConfiguredCommand(t *testing.T) {
	l := NewLauncher(BrowserConfig{Command: "firefox", Args: []string{"--new-tab"}}, NullLogger())

	name, args := l.commandFor("https://www.flickr.com/photos/me/1")

	assert.Equal(t, "firefox", name)
	assert.Equal(t, []string{"--new-tab", "https://www.flickr.com/photos/me/1"}, args)

	// Configured args are not mutated between launches.
	_, args = l.commandFor("https://example.com")
	assert.Equal(t, []string{"--new-tab", "https://example.com"}, args)
}

func TestLauncher_SystemDefault(t *testing.T) {
	l := NewLauncher(BrowserConfig{}, NullLogger())

	name, args := l.commandFor("https://example.com")

	switch runtime.GOOS {
	case "darwin":
		assert.Equal(t, "open", name)
	case "windows":
		assert.Equal(t, "cmd", name)
	default:
		assert.Equal(t, "xdg-open", name)
	}
	assert.Equal(t, "https://example.com", args[len(args)-1])
}

func TestLauncher_MissingCommand(t *testing.T) {
	l := NewLauncher(BrowserConfig{Command: "definitely-not-a-browser-xyz"}, NullLogger())
	assert.Error(t, l.Launch("https://example.com"))
}
