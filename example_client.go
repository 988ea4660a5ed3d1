package main

import (
	"context"
	"flag"
	"log"
	"net"
	"os"
	"os/signal"
	"strconv"

	"github.com/go-mclib/polymer/pkg/engine"
	protomod "github.com/go-mclib/polymer/pkg/engine/modules/protocol"
	worldmod "github.com/go-mclib/polymer/pkg/engine/modules/world"
)

func main() {
	var serverAddr string
	var username string
	var jarPath string
	var blocksPath string

	flag.StringVar(&serverAddr, "server", "localhost:25565", "Server address (host:port)")
	flag.StringVar(&username, "username", "polymer", "Username for offline mode")
	flag.StringVar(&jarPath, "jar", "", "Path to the Minecraft client jar (optional, enables meshing)")
	flag.StringVar(&blocksPath, "blocks", "blocks.json", "Path to the block state id index")
	flag.Parse()

	host, portStr, err := net.SplitHostPort(serverAddr)
	if err != nil {
		host, portStr = serverAddr, "25565"
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		log.Fatalf("bad port %q: %v", portStr, err)
	}

	e := engine.New(engine.Config{
		Host:           host,
		Port:           port,
		Username:       username,
		JarPath:        jarPath,
		BlocksJSONPath: blocksPath,
	})
	e.Register(protomod.New())

	w := worldmod.New()
	w.OnBlockUpdate(func(x, y, z int, stateID int32) {
		e.Logger.Printf("block update at (%d, %d, %d) -> %d", x, y, z, stateID)
	})
	e.Register(w)

	if err := e.LoadAssets(); err != nil {
		log.Fatalf("asset load: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := e.Run(ctx); err != nil {
		log.Fatalf("session ended: %v", err)
	}
}
