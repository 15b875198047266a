package main

import "elder-risk-aggregator/internal/cli"

func main() {
	cli.Execute()
}
