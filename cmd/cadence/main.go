// Command cadence classifies and benchmarks campaigns offline against a
// snapshot file, without the service's database, storage or cache.
package main

import (
	"context"
	"os"
)

func main() {
	if err := newRootCommand().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
