// File: proto/marshal.go
// Package proto
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package proto

import (
	"fmt"

	"github.com/momentics/wlrt/api"
	"github.com/momentics/wlrt/wire"
)

// Marshal encodes one outgoing request or event: sender is the
// object's id, opcode and msg describe the message, and args carries
// one api.Value per signature argument in order.
//
// For every 'n' argument, Marshal allocates a fresh id on side (the
// local peer's own segment) via objmap, writes it into the frame, and
// returns it in newIDs in argument order — the caller uses it to
// finish constructing its local Proxy/Resource. Types carried inline
// (bind's generic new_id) need no special handling here: the
// signature already spells out the preceding string/uint pair as
// ordinary 's'/'u' codes.
func Marshal(conn *wire.Connection, objmap *wire.ObjectMap, side wire.Side, sender api.ID, opcode uint16, msg *api.Message, args []api.Value) ([]api.ID, error) {
	sig := api.ParseSignature(msg.Signature)
	if len(args) != sig.Count() {
		return nil, fmt.Errorf("proto: %s expects %d arguments, got %d", msg.Name, sig.Count(), len(args))
	}

	var body []byte
	var newIDs []api.ID

	for i, a := range sig {
		v := args[i]
		switch a.Kind {
		case api.ArgInt:
			body = appendU32(body, uint32(v.I))
		case api.ArgUint:
			body = appendU32(body, v.U)
		case api.ArgFixed:
			body = appendU32(body, uint32(v.F))
		case api.ArgString:
			if v.Null {
				if !a.Nullable {
					return nil, fmt.Errorf("proto: %s argument %d: null string on non-nullable argument", msg.Name, i)
				}
				body = appendU32(body, 0)
				continue
			}
			body = appendString(body, v.S)
		case api.ArgArray:
			if v.Null {
				if !a.Nullable {
					return nil, fmt.Errorf("proto: %s argument %d: null array on non-nullable argument", msg.Name, i)
				}
				body = appendU32(body, 0)
				continue
			}
			body = appendArray(body, v.A)
		case api.ArgObject:
			if v.Null || v.Obj == nil {
				if !a.Nullable {
					return nil, fmt.Errorf("proto: %s argument %d: null object on non-nullable argument", msg.Name, i)
				}
				body = appendU32(body, 0)
				continue
			}
			body = appendU32(body, v.Obj.ID())
		case api.ArgNewID:
			if v.Obj == nil {
				return nil, fmt.Errorf("proto: %s argument %d: new_id requires an object to register", msg.Name, i)
			}
			id := objmap.InsertNew(side, v.Obj)
			newIDs = append(newIDs, id)
			body = appendU32(body, id)
		case api.ArgFD:
			if err := conn.WriteFD(v.FD); err != nil {
				return nil, fmt.Errorf("proto: %s argument %d: %w", msg.Name, i, err)
			}
			// fd travels out-of-band; no in-band bytes.
		default:
			return nil, fmt.Errorf("proto: %s argument %d: unknown signature code %q", msg.Name, i, a.Kind)
		}
	}

	size := HeaderSize + len(body)
	if size > MaxFrameSize {
		return nil, fmt.Errorf("proto: %s: frame size %d exceeds %d", msg.Name, size, MaxFrameSize)
	}
	frame := EncodeHeader(sender, size, opcode)
	frame = append(frame, body...)

	if err := conn.Write(frame); err != nil {
		return nil, err
	}
	return newIDs, nil
}

func appendString(buf []byte, s string) []byte {
	n := len(s) + 1 // wire length includes the terminating NUL
	buf = appendU32(buf, uint32(n))
	buf = append(buf, s...)
	buf = append(buf, 0)
	for len(buf)%4 != 0 {
		buf = append(buf, 0)
	}
	return buf
}

func appendArray(buf []byte, a []byte) []byte {
	buf = appendU32(buf, uint32(len(a)))
	buf = append(buf, a...)
	for len(buf)%4 != 0 {
		buf = append(buf, 0)
	}
	return buf
}
