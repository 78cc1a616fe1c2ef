package router

import (
	"errors"
	"fmt"
	"sync"

	"github.com/superposition/marigraph/internal/ipc"
)

// Action produces the frame a wiring rule's target should receive, given
// the triggering event's payload. Most actions simply forward the payload
// unchanged as a named message type; the registry exists so new actions can
// be added without touching dispatch code.
type Action func(payload []byte) (msgType ipc.MessageType, out []byte, err error)

var (
	// ErrActionExists is returned by RegisterAction for a name already taken.
	ErrActionExists = errors.New("router: action already registered")
	// ErrActionNotFound is returned when a wiring rule names an unregistered action.
	ErrActionNotFound = errors.New("router: action not found")
)

var actionRegistry = struct {
	mu sync.RWMutex
	m  map[string]Action
}{
	m: make(map[string]Action),
}

func init() {
	mustRegisterAction("SET_DATA", func(payload []byte) (ipc.MessageType, []byte, error) {
		return ipc.MsgSetData, payload, nil
	})
	mustRegisterAction("FOCUS", func(payload []byte) (ipc.MessageType, []byte, error) {
		return ipc.MsgFocus, payload, nil
	})
	mustRegisterAction("CLEAR", func(payload []byte) (ipc.MessageType, []byte, error) {
		return ipc.MsgClear, payload, nil
	})
}

// RegisterAction adds a named action. Action names are the `action_name`
// strings a template's wiring table refers to.
func RegisterAction(name string, action Action) error {
	actionRegistry.mu.Lock()
	defer actionRegistry.mu.Unlock()
	if _, exists := actionRegistry.m[name]; exists {
		return fmt.Errorf("%w: %s", ErrActionExists, name)
	}
	actionRegistry.m[name] = action
	return nil
}

func mustRegisterAction(name string, action Action) {
	if err := RegisterAction(name, action); err != nil {
		panic(err)
	}
}

// LookupAction resolves a registered action by name.
func LookupAction(name string) (Action, error) {
	actionRegistry.mu.RLock()
	defer actionRegistry.mu.RUnlock()
	action, ok := actionRegistry.m[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrActionNotFound, name)
	}
	return action, nil
}

// Actions returns the names of every registered action.
func Actions() []string {
	actionRegistry.mu.RLock()
	defer actionRegistry.mu.RUnlock()
	names := make([]string, 0, len(actionRegistry.m))
	for name := range actionRegistry.m {
		names = append(names, name)
	}
	return names
}
