package main

import (
	"context"
	"fmt"

	"github.com/dynastyops/valuekeeper/config"
	"github.com/dynastyops/valuekeeper/types"

	"github.com/jessevdk/go-flags"
	"github.com/pkg/errors"
)

type VerifyCmd struct {
	config.HomeFlag

	Args struct {
		Epoch string `positional-arg-name:"epoch" required:"true"`
	} `positional-args:"true"`

	ctx context.Context
}

var verifyCmd VerifyCmd

func (opts *VerifyCmd) Execute(_ []string) error {
	app, err := newApp(opts.ctx, opts.RootPath())
	if err != nil {
		return err
	}
	defer app.Close()

	epoch := types.Epoch(opts.Args.Epoch)
	ok, err := app.verify.VerifyChecksum(opts.ctx, epoch)
	if err != nil {
		return err
	}
	if !ok {
		return errors.Errorf("epoch %s failed verification", epoch)
	}

	fmt.Printf("epoch %s verified\n", epoch)
	return nil
}

func Verify(ctx context.Context, parser *flags.Parser) error {
	verifyCmd = VerifyCmd{ctx: ctx}

	short := "Verifies the checksum of an epoch"
	long := "Recompute the digest of an epoch's versioned entries and compare it against the stored checksum record"

	_, err := parser.AddCommand("verify", short, long, &verifyCmd)
	return err
}
