package plugin

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"text/template"

	apperrors "lazy/internal/errors"
)

//go:embed templates/plugin.go.tmpl
var scriptTemplate string

var validName = regexp.MustCompile(`^[a-z][a-z0-9-]*$`)

// ScriptFileName returns the file a script plugin called name is written to
func ScriptFileName(name string) string {
	return strings.ReplaceAll(name, "-", "_") + ".go"
}

// NewScript writes a starter script plugin called name into dir and returns
// its path. An existing file is never replaced.
func NewScript(dir, name, help string) (string, error) {
	if !validName.MatchString(name) {
		return "", apperrors.NewPluginError(
			"plugin names use lowercase letters, digits and dashes", name, apperrors.PluginContract, nil)
	}
	for _, reserved := range ReservedNames {
		if name == reserved {
			return "", apperrors.NewPluginError("reserved command name", name, apperrors.DuplicatePlugin, nil)
		}
	}
	if help == "" {
		help = fmt.Sprintf("%s plugin - replace with your description", name)
	}

	tmpl, err := template.New("plugin").Parse(scriptTemplate)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", apperrors.NewFileError("cannot create plugin directory", dir, apperrors.FileAccessDenied, err)
	}

	path := filepath.Join(dir, ScriptFileName(name))
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return "", apperrors.NewFileError("plugin file already exists", path, apperrors.FileOperationFailed, nil)
		}
		return "", apperrors.NewFileError("cannot create plugin file", path, apperrors.FileAccessDenied, err)
	}

	if err := tmpl.Execute(f, struct{ Name, Help string }{name, help}); err != nil {
		f.Close()
		_ = os.Remove(path)
		return "", err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return "", err
	}
	return path, nil
}
