package render

import (
	"fmt"
	"os"
	"path/filepath"

	securejoin "github.com/cyphar/filepath-securejoin"
)

// Workspace writes files confined to a project directory.
type Workspace struct {
	root string
}

// NewWorkspace returns a Workspace rooted at dir. dir is made absolute.
func NewWorkspace(dir string) (*Workspace, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve project directory: %w", err)
	}
	return &Workspace{root: abs}, nil
}

// Root returns the absolute project directory.
func (w *Workspace) Root() string { return w.root }

// Path resolves rel inside the workspace. Symlinks and ".." components are
// evaluated as if the workspace root were the filesystem root.
func (w *Workspace) Path(rel string) (string, error) {
	path, err := securejoin.SecureJoin(w.root, rel)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", rel, err)
	}
	return path, nil
}

// Exists reports whether rel exists inside the workspace.
func (w *Workspace) Exists(rel string) bool {
	path, err := w.Path(rel)
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

// ReadFile reads rel from the workspace.
func (w *Workspace) ReadFile(rel string) ([]byte, error) {
	path, err := w.Path(rel)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(path)
}

// WriteFile writes data to rel, creating parent directories as needed.
func (w *Workspace) WriteFile(rel string, data []byte) error {
	path, err := w.Path(rel)
	if err != nil {
		return err
	}
	// 0755 for directories is the standard permission for project files.
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", rel, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", rel, err)
	}
	return nil
}

// AppendFile appends data to rel, creating it when missing.
func (w *Workspace) AppendFile(rel string, data []byte) error {
	path, err := w.Path(rel)
	if err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", rel, err)
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to append to %s: %w", rel, err)
	}
	return f.Close()
}

// CopyFile copies src to dst, both relative to the workspace.
func (w *Workspace) CopyFile(src, dst string) error {
	data, err := w.ReadFile(src)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", src, err)
	}
	return w.WriteFile(dst, data)
}
