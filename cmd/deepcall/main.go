package main

import (
	"context"
	"os"
)

func main() {
	c := &cli{}
	if err := c.execute(context.Background(), c.command()); err != nil {
		os.Exit(1)
	}
}
