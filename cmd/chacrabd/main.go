// Command chacrabd is the per-user session daemon: it holds the derived
// vault key in memory, behind a UNIX socket restricted to the owning uid,
// so a session survives across separate chacrab invocations.
package main

import (
	"context"
	"log"

	"github.com/imadenugraha/chacrab/sessionholder/daemon"
)

func main() {
	if err := daemon.Run(context.Background(), daemon.SocketPath()); err != nil {
		log.Fatalf("chacrabd: %v", err)
	}
}
