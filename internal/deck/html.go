package deck

import (
	_ "embed"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
)

const DeckVersion = "~8.9.*"

//go:embed scene.html.tmpl
var sceneTemplateText string

var sceneTemplate = template.Must(template.New("scene").Parse(sceneTemplateText))

type htmlData struct {
	Title        string
	DeckVersion  string
	Libraries    []Library
	LibraryNames []string
	Scene        template.JS
	Tooltip      bool
}

// WriteHTML renders the scene as a standalone HTML document.
func (s *Scene) WriteHTML(w io.Writer, title string) error {
	data, err := s.JSON()
	if err != nil {
		return err
	}
	names := make([]string, 0, len(s.libraries))
	for _, lib := range s.libraries {
		names = append(names, lib.Name)
	}
	if err := sceneTemplate.Execute(w, htmlData{
		Title:        title,
		DeckVersion:  DeckVersion,
		Libraries:    s.libraries,
		LibraryNames: names,
		// json.Marshal escapes <, > and &, so the payload cannot close the script tag.
		Scene:   template.JS(data),
		Tooltip: s.tooltip,
	}); err != nil {
		return fmt.Errorf("rendering html: %w", err)
	}
	return nil
}

// ToHTML writes the scene to path and, when open is set, points browser at
// it. It returns the absolute path written. The file appears only once
// fully written.
func (s *Scene) ToHTML(path string, open bool, browser Browser) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving output path: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(abs), ".cartomap-*.html")
	if err != nil {
		return "", fmt.Errorf("creating output file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	title := filepath.Base(abs)
	if err := s.WriteHTML(tmp, title); err != nil {
		tmp.Close()
		cleanup()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return "", fmt.Errorf("closing output file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		cleanup()
		return "", fmt.Errorf("setting output permissions: %w", err)
	}
	if err := os.Rename(tmpName, abs); err != nil {
		cleanup()
		return "", fmt.Errorf("writing %s: %w", abs, err)
	}

	if open {
		if browser == nil {
			browser = SystemBrowser{}
		}
		if err := browser.Open("file://" + filepath.ToSlash(abs)); err != nil {
			return abs, fmt.Errorf("opening browser: %w", err)
		}
	}
	return abs, nil
}
