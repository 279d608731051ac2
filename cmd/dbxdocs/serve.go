package main

import (
	"github.com/fwojciec/dbxdocs/mcp"
	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

// Run executes the serve command. Stdout belongs to the MCP transport;
// logs go to stderr.
func (c *ServeCmd) Run(deps *Dependencies) error {
	deps.Logger.Info("serving MCP over stdio", "version", deps.Version)
	return mcp.NewServer(deps.Retrieval, deps.Version).Run(deps.Ctx, &sdk.StdioTransport{})
}
