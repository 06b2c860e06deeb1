package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"

	"game-translator/src/singleinstance"
)

type stressOptions struct {
	n        int
	command  string
	deadline time.Duration
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	opts := &stressOptions{}
	cmd := newRootCmd(opts)
	return cmd.Execute()
}

func newRootCmd(opts *stressOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "stress-control",
		Short:         "Send many concurrent control commands to the resident",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, ok := singleinstance.ParseCommand(opts.command)
			if !ok {
				return fmt.Errorf("unknown command %q", opts.command)
			}
			res := stress(singleinstance.NewClient(), c, opts.n, opts.deadline)
			res.print(cmd.OutOrStdout())
			return nil
		},
	}

	cmd.Flags().IntVar(&opts.n, "n", 50, "number of clients to launch")
	cmd.Flags().StringVar(&opts.command, "command", "status", "status|copy|action|configure")
	cmd.Flags().DurationVar(&opts.deadline, "deadline", 5*time.Second, "per-client timeout")

	return cmd
}

type stressResult struct {
	launched int
	ok       int32
	missing  int32
	errs     int32
	elapsed  time.Duration
}

func (r stressResult) print(w io.Writer) {
	fmt.Fprintf(w, "launched=%d ok=%d no-resident=%d err=%d elapsed=%s\n", r.launched, r.ok, r.missing, r.errs, r.elapsed)
}

func stress(client singleinstance.Client, c singleinstance.Command, n int, deadline time.Duration) stressResult {
	var wg sync.WaitGroup
	res := stressResult{launched: n}

	start := time.Now()
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), deadline)
			defer cancel()
			delegated, _, err := client.Send(ctx, c)
			switch {
			case err != nil:
				atomic.AddInt32(&res.errs, 1)
			case !delegated:
				atomic.AddInt32(&res.missing, 1)
			default:
				atomic.AddInt32(&res.ok, 1)
			}
		}()
	}
	wg.Wait()
	res.elapsed = time.Since(start)
	return res
}
