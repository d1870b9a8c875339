// Package formats provides readers and writers for triangle mesh files.
package formats

// Note: OFF (Object File Format) is implemented in off.go
// Note: OFFPM (text progressive mesh) is implemented in offpm.go
// Note: PMB (binary progressive mesh) is implemented in pmbin.go
// Note: STL import/export is implemented in stl.go

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"
)

// Kind identifies a mesh file format.
type Kind int

// Known file kinds.
const (
	KindUnknown Kind = iota
	KindOFF
	KindOFFPM
	KindPMB
	KindSTL
)

// String returns the conventional name of the format.
func (k Kind) String() string {
	switch k {
	case KindOFF:
		return "OFF"
	case KindOFFPM:
		return "OFFPM"
	case KindPMB:
		return "PMB"
	case KindSTL:
		return "STL"
	default:
		return "unknown"
	}
}

// Sniff guesses the format of data from its leading bytes. The name is
// consulted only for STL, whose binary form has no magic.
func Sniff(name string, data []byte) Kind {
	switch {
	case bytes.HasPrefix(data, []byte(pmbMagic)):
		return KindPMB
	case bytes.HasPrefix(data, []byte("OFFPM")):
		return KindOFFPM
	case bytes.HasPrefix(data, []byte("OFF")):
		return KindOFF
	case bytes.HasPrefix(data, []byte("solid")):
		return KindSTL
	}
	if ext := filepath.Ext(name); ext == ".stl" || ext == ".STL" {
		return KindSTL
	}
	return KindUnknown
}

// writeFileAtomic renders a file in memory and swaps it into place with
// atomic.WriteFile, so a failed write never leaves a truncated file behind.
// New files get mode 0644; replaced files keep their mode.
func writeFileAtomic(path string, write func(w io.Writer) error) error {
	if _, err := os.Stat(filepath.Dir(path)); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	var buf bytes.Buffer
	if err := write(&buf); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	mode := os.FileMode(0644)
	if fi, err := os.Stat(path); err == nil {
		mode = fi.Mode().Perm()
	}
	if err := atomic.WriteFile(path, &buf); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Chmod(path, mode); err != nil {
		return fmt.Errorf("chmod %s: %w", path, err)
	}
	return nil
}
