package main

import (
	"os"

	"github.com/oneid-io/oneid/app"
)

func main() {
	err := app.Execute()
	if err != nil {
		os.Exit(1)
	}
}
