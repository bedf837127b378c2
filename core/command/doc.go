// Package command provides typed command handlers: each command is a plain
// struct, routed to its handler by a name derived from the struct's type.
//
// Commands represent intent with a one-to-one handler relationship. Rather
// than a dispatcher owning a registry and a transport, callers that need
// routing (such as core/manager.ChannelManager) build their own small
// map[string]Handler keyed by GetCommandName and look handlers up directly;
// this package only supplies the Handler contract and the reflection-based
// naming and (de)serialization it takes to make that map workable across a
// process boundary.
//
// # Quick Start
//
//	type CreateUser struct {
//	    Email string
//	    Name  string
//	}
//
//	func createUserHandler(ctx context.Context, cmd CreateUser) error {
//	    return db.Insert(ctx, cmd.Email, cmd.Name)
//	}
//
//	handlers := map[string]command.Handler{
//	    command.GetCommandName(CreateUser{}): command.NewHandlerFunc(createUserHandler),
//	}
//
//	h := handlers[command.GetCommandName(cmd)]
//	err := h.Handle(ctx, cmd)
//
// # Deserialization
//
// UnmarshalCommand looks a command's type up in the registry NewHandlerFunc
// populated at handler-construction time and unmarshals JSON into a fresh
// instance of it. This is how a durable or networked command source (one
// that only carries a name and a JSON payload) gets back a typed value.
package command
