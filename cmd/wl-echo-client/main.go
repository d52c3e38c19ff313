// File: cmd/wl-echo-client/main.go
// Command wl-echo-client connects to a display socket, binds the
// wl_echo global, sends one message, and waits for its reply.
//
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package main

import (
	"fmt"
	"log"
	"os"

	"github.com/momentics/wlrt/api"
	"github.com/momentics/wlrt/client"
	"github.com/momentics/wlrt/examples/echo"
	"github.com/momentics/wlrt/wire"
)

func main() {
	d, err := client.Connect()
	if err != nil {
		log.Fatalf("wl-echo-client: connect: %v", err)
	}
	defer d.Close()

	var echoName uint32
	haveEcho := false
	d.AddGlobalListener(func(name uint32, interfaceName string, version uint32) {
		if interfaceName == echo.Interface.Name {
			echoName = name
			haveEcho = true
		}
	})

	// One roundtrip guarantees every global/remove event the server
	// had queued at connect time has already been delivered.
	if err := d.Roundtrip(); err != nil {
		log.Fatalf("wl-echo-client: roundtrip: %v", err)
	}
	if !haveEcho {
		fmt.Fprintln(os.Stderr, "wl-echo-client: server does not advertise wl_echo")
		os.Exit(1)
	}

	p, err := d.Bind(echoName, echo.Interface)
	if err != nil {
		log.Fatalf("wl-echo-client: bind: %v", err)
	}

	done := false
	p.SetImplementation(api.ImplementationFunc(func(opcode uint16) any {
		if opcode != echo.EvReply {
			return nil
		}
		return func(_ any, reply string) error {
			fmt.Println("reply:", reply)
			done = true
			return nil
		}
	}), nil)

	msg := &echo.Interface.Methods[echo.OpMessage]
	if _, err := p.Marshal(echo.OpMessage, msg, []api.Value{{Kind: api.ArgString, S: "hello"}}); err != nil {
		log.Fatalf("wl-echo-client: marshal: %v", err)
	}
	if err := d.Flush(); err != nil {
		log.Fatalf("wl-echo-client: flush: %v", err)
	}

	for !done {
		if err := d.Iterate(wire.Readable); err != nil {
			log.Fatalf("wl-echo-client: iterate: %v", err)
		}
	}
}
