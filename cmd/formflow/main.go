// Command formflow serves, lints and fills declarative forms.
package main

import (
	"context"
	"fmt"
	"os"
)

var exit = os.Exit

func main() {
	cmd := newRootCmd(newApp())
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		exit(1)
	}
}
