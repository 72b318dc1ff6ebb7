package buildid

import (
	"fmt"
	"os"
)

// DefaultSourceFile is where the build id is written, relative to the node checkout
const DefaultSourceFile = "src/node_build_id.cc"

// IOError reports that the generated source file could not be written.
// It is fatal to the build.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("failed to write build id source %s: %v", e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// SourceStatement returns the C++ definition compiled into node to embed id
func SourceStatement(id Identifier) string {
	return fmt.Sprintf(`namespace node { char gBuildId[] = "%s"; }`, id)
}

// Inject overwrites targetPath with the definition of gBuildId for id.
// Any previous content is discarded.
func Inject(id Identifier, targetPath string) error {
	if err := os.WriteFile(targetPath, []byte(SourceStatement(id)), 0644); err != nil {
		return &IOError{Path: targetPath, Err: err}
	}
	return nil
}
