// File: proto/dispatch.go
// Package proto
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Invoke performs the C5 dispatcher's job: turning a decoded Closure
// into a host-ABI call of a user-supplied handler function, using
// reflection to build the argument list from the typed Value vector.
// Grounded on the reflect.Method/reflect.Value.Call dispatch shim in
// the pack's dominikh/go-libwayland reference binding, since the
// teacher repo's own Handler contract (api.Handler.Handle(data any))
// is a single fixed signature and cannot express one handler per
// opcode with its own typed parameter list.

package proto

import (
	"fmt"
	"reflect"

	"github.com/momentics/wlrt/api"
)

// Invoke calls handler with context as its first argument followed by
// one argument per entry in c.Args, converted to handler's declared
// parameter types. handler == nil is a no-op (the message is still
// considered dispatched; the caller has already consumed the frame).
// Any non-nil error returned by handler is passed back to the caller.
func Invoke(c *Closure, handler any, context any) error {
	if handler == nil {
		return nil
	}
	fv := reflect.ValueOf(handler)
	ft := fv.Type()
	if ft.Kind() != reflect.Func {
		return fmt.Errorf("proto: handler for %s is not a function", c.Message.Name)
	}
	want := len(c.Args) + 1
	if ft.NumIn() != want {
		return fmt.Errorf("proto: handler for %s expects %d parameters, has %d", c.Message.Name, want, ft.NumIn())
	}

	in := make([]reflect.Value, want)
	if context == nil {
		in[0] = reflect.Zero(ft.In(0))
	} else {
		in[0] = reflect.ValueOf(context)
	}

	for i, v := range c.Args {
		pt := ft.In(i + 1)
		switch v.Kind {
		case api.ArgInt:
			in[i+1] = reflect.ValueOf(v.I)
		case api.ArgUint:
			in[i+1] = reflect.ValueOf(v.U)
		case api.ArgFixed:
			in[i+1] = reflect.ValueOf(v.F)
		case api.ArgString:
			in[i+1] = reflect.ValueOf(v.S)
		case api.ArgArray:
			in[i+1] = reflect.ValueOf(v.A)
		case api.ArgFD:
			in[i+1] = reflect.ValueOf(v.FD)
		case api.ArgObject, api.ArgNewID:
			if v.Obj == nil {
				in[i+1] = reflect.Zero(pt)
				continue
			}
			ov := reflect.ValueOf(v.Obj)
			if !ov.Type().AssignableTo(pt) {
				return fmt.Errorf("proto: %s argument %d: %s not assignable to %s", c.Message.Name, i, ov.Type(), pt)
			}
			in[i+1] = ov
		default:
			return fmt.Errorf("proto: %s argument %d: unknown kind %q", c.Message.Name, i, v.Kind)
		}
	}

	out := fv.Call(in)
	for _, r := range out {
		if err, ok := r.Interface().(error); ok && err != nil {
			return err
		}
	}
	return nil
}
