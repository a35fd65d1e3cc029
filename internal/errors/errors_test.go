package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	err := New("test error")
	assert.NotNil(t, err)
	assert.Equal(t, "test error", err.Error())

	err = Newf("formatted %s", "error")
	assert.Equal(t, "formatted error", err.Error())

	var appErr *ApplicationError
	assert.True(t, As(err, &appErr))
	assert.Equal(t, Unknown, appErr.Kind())
}

func TestWrapping(t *testing.T) {
	origErr := New("original error")
	wrappedErr := Wrap(origErr, "wrapped")
	assert.Equal(t, "wrapped: original error", wrappedErr.Error())
	assert.Equal(t, origErr, Unwrap(wrappedErr))

	wrappedFormatted := Wrapf(origErr, "formatted %s", "wrapper")
	assert.Equal(t, "formatted wrapper: original error", wrappedFormatted.Error())

	// Wrapping nil stays nil
	assert.Nil(t, Wrap(nil, "wrapper"))
	assert.Nil(t, Wrapf(nil, "formatted %s", "wrapper"))

	deepWrapped := Wrap(wrappedErr, "deeper")
	assert.Equal(t, "deeper: wrapped: original error", deepWrapped.Error())
	assert.True(t, Is(deepWrapped, origErr))
}

func TestFileError(t *testing.T) {
	fileErr := NewFileError("not a directory", "/tmp/notes.txt", NotADirectory, nil)
	assert.Equal(t, "not a directory: /tmp/notes.txt", fileErr.Error())
	assert.Equal(t, "/tmp/notes.txt", fileErr.Path())
	assert.Equal(t, NotADirectory, fileErr.Kind())
	assert.True(t, IsNotADirectory(fileErr))
	assert.False(t, IsFileNotFound(fileErr))

	origErr := fmt.Errorf("permission denied")
	fileErr = NewFileError("cannot access", "/tmp/x", FileAccessDenied, origErr)
	assert.Equal(t, "cannot access: /tmp/x: permission denied", fileErr.Error())
	assert.Equal(t, origErr, Unwrap(fileErr))

	notFound := NewFileError("directory does not exist", "/missing", FileNotFound, nil)
	assert.True(t, IsFileNotFound(notFound))
}

func TestConfigError(t *testing.T) {
	configErr := NewConfigError("unknown config key", "colour", UnknownConfigKey, nil)
	assert.Equal(t, "unknown config key: colour", configErr.Error())
	assert.Equal(t, "colour", configErr.Param())
	assert.True(t, IsUnknownConfigKey(configErr))
	assert.False(t, IsUnknownConfigKey(New("some other error")))

	origErr := fmt.Errorf("invalid syntax")
	configErr = NewConfigError("invalid value", "verbose", InvalidConfigValue, origErr)
	assert.Equal(t, "invalid value: verbose: invalid syntax", configErr.Error())
	assert.False(t, IsUnknownConfigKey(configErr))
}

func TestPluginError(t *testing.T) {
	loadErr := NewPluginError("failed to load", "broken.go", PluginLoadFailed, fmt.Errorf("1:1: expected 'package'"))
	assert.Equal(t, "failed to load: broken.go: 1:1: expected 'package'", loadErr.Error())
	assert.Equal(t, "broken.go", loadErr.Source())
	assert.Equal(t, "failed to load", loadErr.Message())
	assert.True(t, IsPluginLoadFailed(loadErr))
	assert.False(t, IsDuplicatePlugin(loadErr))

	dup := NewPluginError("duplicate plugin name", "organize", DuplicatePlugin, nil)
	assert.True(t, IsDuplicatePlugin(dup))
	assert.Equal(t, "duplicate plugin name: organize", dup.Error())
}

func TestKindOf(t *testing.T) {
	baseErr := errors.New("base error")
	fileErr := NewFileError("move failed", "/a/b.jpg", FileOperationFailed, baseErr)
	pluginErr := NewPluginError("plugin failed", "organize", PluginLoadFailed, fileErr)

	assert.Equal(t, PluginLoadFailed, KindOf(pluginErr))
	assert.Equal(t, FileOperationFailed, KindOf(fileErr))
	assert.Equal(t, FileOperationFailed, KindOf(fmt.Errorf("context: %w", fileErr)))
	assert.Equal(t, Unknown, KindOf(baseErr))
	assert.Equal(t, Unknown, KindOf(nil))

	// Predicates see through the chain
	assert.True(t, Is(pluginErr, baseErr))
	var fe *FileError
	assert.True(t, As(pluginErr, &fe))
	assert.Equal(t, "/a/b.jpg", fe.Path())
}
