package shell

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/squiredb/squire"
	"github.com/squiredb/squire/internal/version"
)

// Run runs the squire interactive shell.
func Run(ctx context.Context) error {
	conf := MustParse(os.Args)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Println(version.ShellVersion())

	builder := squire.NewConnection().BusyTimeout(conf.BusyTimeout)
	if conf.ReadOnly {
		builder = builder.ReadOnly()
	}
	if conf.URI {
		builder = builder.URIFilenames()
	}

	db := squire.File(conf.Database)
	if conf.Database == ":memory:" {
		db = squire.Memory()
	}

	conn, err := builder.Open(db)
	if err != nil {
		return err
	}
	defer conn.Close()

	rp := NewRepl(ctx, stop, conf, conn)
	defer rp.Shutdown()
	go func() {
		if err := rp.Start(); err != nil {
			fmt.Println(err)
			stop()
		}
	}()

	<-ctx.Done()
	fmt.Printf("\nGoodbye!\n\n")
	return nil
}
