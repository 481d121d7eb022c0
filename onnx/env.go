package onnx

import (
	"fmt"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

var (
	envMu   sync.Mutex
	envRefs int
)

// InitEnvironment loads the onnxruntime shared library and initializes the
// runtime. Calls are reference counted; each successful call must be paired
// with DestroyEnvironment. An empty libPath keeps the library default.
func InitEnvironment(libPath string) error {
	envMu.Lock()
	defer envMu.Unlock()

	if envRefs == 0 {
		if libPath != "" {
			ort.SetSharedLibraryPath(libPath)
		}
		if err := ort.InitializeEnvironment(); err != nil {
			return fmt.Errorf("failed to init ONNX env: %w", err)
		}
	}
	envRefs++
	return nil
}

// DestroyEnvironment releases one reference taken by InitEnvironment and
// tears the runtime down when the last one is gone.
func DestroyEnvironment() error {
	envMu.Lock()
	defer envMu.Unlock()

	if envRefs == 0 {
		return nil
	}
	envRefs--
	if envRefs > 0 {
		return nil
	}
	return ort.DestroyEnvironment()
}
