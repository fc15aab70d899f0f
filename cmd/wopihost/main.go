package main

import (
	"fmt"
	"os"
)

//go:generate swag init -g internal/wopi/http/router.go -d ../.. -o ../../api/wopi --instanceName swagger

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}
