package main

import (
	"fmt"

	"github.com/arborcode/agentcore"
)

// VersionCmd prints the orchestration core's build version.
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Println(agentcore.GetVersion().String())
	return nil
}
