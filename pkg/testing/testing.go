package testing

import (
	"os"
	"path"
	"runtime"
)

func init() {
	// cd to the project root so relative paths (logs/, pipeline.db) resolve the same way in
	// every package's tests.
	//
	//   in some_test.go,
	//   import (
	//     _ "liyu1981.xyz/sensor-pipeline/pkg/testing"
	//   )

	_, filename, _, _ := runtime.Caller(0)
	dir := path.Join(path.Dir(filename), "..", "..")
	err := os.Chdir(dir)
	if err != nil {
		panic(err)
	}
}
