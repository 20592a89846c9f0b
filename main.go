package main

import (
	"log"

	"github.com/fitseek/fitseek/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
