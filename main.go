// Package main is the entry point for marquee.
package main

import (
	"github.com/marquee-cli/marquee/cmd"
	"github.com/marquee-cli/marquee/config"
	"github.com/marquee-cli/marquee/internal/cache"
	"github.com/marquee-cli/marquee/log"
	"github.com/marquee-cli/marquee/where"
	"github.com/samber/lo"
)

func main() {
	lo.Must0(config.Setup())
	lo.Must0(log.Setup())

	cache.Prune(where.Logs(), where.Cache())

	cmd.Execute()
}
