// Package main provides the atlasmeta CLI: operator tooling for the
// versioned geographic metadata store.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/cartolab/atlasmeta/pkg/types"
)

func main() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if errors.Is(err, types.ErrUnavailable) || errors.Is(err, types.ErrDetached) {
			os.Exit(exitSysError)
		}
		os.Exit(exitUserError)
	}
}
