// Command v8n validates HTTP requests against per-route schemas.
//
//	v8n serve --routes routes.yaml              run the validating server
//	v8n check --routes routes.yaml --request r.json
//	v8n routes --openapi openapi.yaml
package main

import (
	"errors"
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if !errors.Is(err, errInvalid) {
			fmt.Fprintln(os.Stderr, "v8n:", err)
		}
		os.Exit(exitCode(err))
	}
}
