// Package interpreter assembles a runtime from its parts: configuration, the
// builtins namespace, the call stack used by zero-argument super, the
// exception router, open() over the I/O stack and a shared cache of compiled
// patterns. Client code drives it through Call, Method and Run.
package interpreter
