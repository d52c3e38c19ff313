// File: cmd/wl-echo-server/main.go
// Command wl-echo-server listens on a display socket and exposes one
// wl_echo global whose resources echo back every message they
// receive, demonstrating server.Listen/AddGlobal/Serve end to end.
//
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package main

import (
	"log"
	"strings"

	"github.com/momentics/wlrt/api"
	"github.com/momentics/wlrt/examples/echo"
	"github.com/momentics/wlrt/server"
)

func main() {
	srv, err := server.Listen()
	if err != nil {
		log.Fatalf("wl-echo-server: listen: %v", err)
	}
	defer srv.Close()

	srv.AddGlobal(echo.Interface, echo.Interface.Version, api.ImplementationFunc(echoHandler), nil)

	log.Println("wl-echo-server: listening")
	if err := srv.Serve(); err != nil {
		log.Fatalf("wl-echo-server: serve: %v", err)
	}
}

// echoHandler returns the per-opcode handler for a wl_echo resource.
func echoHandler(opcode uint16) any {
	switch opcode {
	case echo.OpMessage:
		return handleMessage
	default:
		return nil
	}
}

// handleMessage replies on the same object id with the text it was
// given, uppercased, so the roundtrip is visibly distinct.
func handleMessage(r *server.Resource, text string) error {
	log.Printf("wl-echo-server: received %q", text)
	reply := strings.ToUpper(text)
	msg := &echo.Interface.Events[echo.EvReply]
	return r.Client().Post(r.ID(), echo.EvReply, msg, []api.Value{{Kind: api.ArgString, S: reply}})
}
