package main

import "github.com/interviewcoach/backend/internal/cli"

func main() {
	cli.Execute()
}
