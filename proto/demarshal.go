// File: proto/demarshal.go
// Package proto
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package proto

import (
	"github.com/momentics/wlrt/api"
	"github.com/momentics/wlrt/wire"
)

// Demarshal decodes body (the frame's args region, already peeked out
// of the connection's in-ring by the caller and exactly `size -
// HeaderSize` bytes long) into a typed argument vector per msg's
// signature.
//
// 'o' arguments are resolved against objmap immediately, since the
// referenced object must already exist. 'n' arguments are NOT
// resolved here: the returned Value carries the raw wire id in New
// with Obj left nil; the caller's create_proxies pass (C6/C7) is
// responsible for constructing the local proxy/resource and
// registering it at that id via objmap.InsertAt — this mirrors the
// original implementation's two-pass decode/create_proxies split.
func Demarshal(conn *wire.Connection, objmap *wire.ObjectMap, msg *api.Message, body []byte) ([]api.Value, error) {
	sig := api.ParseSignature(msg.Signature)
	out := make([]api.Value, 0, sig.Count())
	pos := 0

	need := func(n int) bool { return pos+n <= len(body) }

	for i, a := range sig {
		switch a.Kind {
		case api.ArgInt:
			if !need(4) {
				return nil, shortFrame(msg, i)
			}
			out = append(out, api.Value{Kind: a.Kind, I: int32(readU32(body[pos:]))})
			pos += 4
		case api.ArgUint:
			if !need(4) {
				return nil, shortFrame(msg, i)
			}
			out = append(out, api.Value{Kind: a.Kind, U: readU32(body[pos:])})
			pos += 4
		case api.ArgFixed:
			if !need(4) {
				return nil, shortFrame(msg, i)
			}
			out = append(out, api.Value{Kind: a.Kind, F: api.Fixed(readU32(body[pos:]))})
			pos += 4
		case api.ArgString:
			v, n, err := decodeString(msg, i, body[pos:], a.Nullable)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
			pos += n
		case api.ArgArray:
			v, n, err := decodeArray(msg, i, body[pos:], a.Nullable)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
			pos += n
		case api.ArgObject:
			if !need(4) {
				return nil, shortFrame(msg, i)
			}
			id := readU32(body[pos:])
			pos += 4
			if id == 0 {
				if !a.Nullable {
					return nil, api.NewProtocolError(api.ErrProtocolInvalid, 0, 0, "null object on non-nullable argument")
				}
				out = append(out, api.Value{Kind: a.Kind, Null: true})
				continue
			}
			obj, ok := objmap.Lookup(id)
			if !ok {
				return nil, api.NewProtocolError(api.ErrProtocolInvalid, id, 0, "reference to unknown object")
			}
			out = append(out, api.Value{Kind: a.Kind, Obj: obj})
		case api.ArgNewID:
			if !need(4) {
				return nil, shortFrame(msg, i)
			}
			id := readU32(body[pos:])
			pos += 4
			out = append(out, api.Value{Kind: a.Kind, New: id})
		case api.ArgFD:
			fd, ok := conn.TakeFD()
			if !ok {
				return nil, api.NewProtocolError(api.ErrProtocolInvalid, 0, 0, "fd exhaustion mid-decode")
			}
			out = append(out, api.Value{Kind: a.Kind, FD: fd})
		default:
			return nil, api.NewProtocolError(api.ErrProtocolInvalid, 0, 0, "unknown signature code")
		}
	}
	return out, nil
}

func shortFrame(msg *api.Message, arg int) error {
	return api.NewProtocolError(api.ErrProtocolInvalid, 0, 0,
		"frame too short for "+msg.Name+" argument")
}

func decodeString(msg *api.Message, arg int, b []byte, nullable bool) (api.Value, int, error) {
	if len(b) < 4 {
		return api.Value{}, 0, shortFrame(msg, arg)
	}
	n := int(readU32(b))
	if n == 0 {
		if !nullable {
			return api.Value{}, 0, api.NewProtocolError(api.ErrProtocolInvalid, 0, 0, "null string on non-nullable argument")
		}
		return api.Value{Kind: api.ArgString, Null: true}, 4, nil
	}
	total := 4 + pad4(n)
	if len(b) < total {
		return api.Value{}, 0, shortFrame(msg, arg)
	}
	raw := b[4 : 4+n]
	if raw[n-1] != 0 {
		return api.Value{}, 0, api.NewProtocolError(api.ErrProtocolInvalid, 0, 0, "string not NUL-terminated")
	}
	s := raw[:n-1]
	for _, c := range s {
		if c == 0 {
			return api.Value{}, 0, api.NewProtocolError(api.ErrProtocolInvalid, 0, 0, "string contains embedded NUL")
		}
	}
	return api.Value{Kind: api.ArgString, S: string(s)}, total, nil
}

func decodeArray(msg *api.Message, arg int, b []byte, nullable bool) (api.Value, int, error) {
	if len(b) < 4 {
		return api.Value{}, 0, shortFrame(msg, arg)
	}
	n := int(readU32(b))
	if n == 0 && nullable {
		return api.Value{Kind: api.ArgArray, Null: true}, 4, nil
	}
	total := 4 + pad4(n)
	if len(b) < total {
		return api.Value{}, 0, shortFrame(msg, arg)
	}
	data := make([]byte, n)
	copy(data, b[4:4+n])
	return api.Value{Kind: api.ArgArray, A: data}, total, nil
}
