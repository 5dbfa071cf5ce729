// Command docsmile-cli is the operator console: sign in, list today's
// agenda, search patients, price a bill and compute ages from a shell.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	root := newRootCmd(newApp(os.Stdin, os.Stdout, os.Stderr))
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
