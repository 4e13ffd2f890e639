package main

import (
	"log"

	"github.com/nguyengg/szip/internal/cmd"
)

func main() {
	log.SetFlags(0)

	p, err := cmd.NewParser()
	if err != nil {
		log.Fatalf("create parser error: %v", err)
	}

	_, err = p.Parse()
	exit(err)
}
