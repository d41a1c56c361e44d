// Package cli implements the command-line subcommands.
package cli

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/partbridge/partbridge/internal/config"
	"github.com/partbridge/partbridge/internal/entities"
	"github.com/partbridge/partbridge/internal/entrypoint"
)

// FetchCommand looks up a part at a supplier and prints the canonical form
// as JSON. Useful for debugging adapter normalization without a running
// server or a destination system.
type FetchCommand struct {
	fs *flag.FlagSet

	supplier   string
	timeout    time.Duration
	partNumber string
}

func NewFetchCommand() *FetchCommand {
	cmd := &FetchCommand{
		fs: flag.NewFlagSet("fetch", flag.ContinueOnError),
	}
	cmd.fs.StringVar(&cmd.supplier, "supplier", "mouser", "supplier to query (mouser or digikey)")
	cmd.fs.DurationVar(&cmd.timeout, "timeout", 30*time.Second, "fetch timeout")
	return cmd
}

func (cmd *FetchCommand) ParseFlags(args []string) error {
	if err := cmd.fs.Parse(args); err != nil {
		return err
	}
	if cmd.fs.NArg() != 1 {
		return fmt.Errorf("usage: fetch [-supplier mouser|digikey] <part-number>")
	}
	cmd.partNumber = cmd.fs.Arg(0)

	supplier := entities.Supplier(cmd.supplier)
	if !supplier.Valid() {
		return fmt.Errorf("unknown supplier %q", cmd.supplier)
	}
	return nil
}

func (cmd *FetchCommand) Run() error {
	cfg := config.NewConfig()
	registry := entrypoint.BuildRegistry(cfg)

	adapter, err := registry.Get(entities.Supplier(cmd.supplier))
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), cmd.timeout)
	defer cancel()

	part, err := adapter.Fetch(ctx, cmd.partNumber)
	if err != nil {
		return err
	}

	warnings := part.Finalize()
	for _, warning := range warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", warning)
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(part)
}
