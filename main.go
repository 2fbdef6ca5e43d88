package main

import (
	"log"

	"github.com/decisionhq/recruit-ranker/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
