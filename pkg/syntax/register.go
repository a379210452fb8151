package syntax

import (
	"sync"
	"sync/atomic"
)

// nextKind tracks the next available dynamic kind.
// Dynamic kinds start after maxBuiltin.
var nextKind = uint32(maxBuiltin)

var (
	dynamicMu     sync.RWMutex
	dynamicNames  = make(map[Kind]string)
	dynamicByName = make(map[string]Kind)
)

// Register registers a dialect specific kind with the given name.
// Registering the same name twice returns the same kind, and a name that is
// already built in resolves to the built-in constant.
func Register(name string) Kind {
	if k, ok := Lookup(name); ok {
		return k
	}

	dynamicMu.Lock()
	defer dynamicMu.Unlock()

	if k, ok := dynamicByName[name]; ok {
		return k
	}
	k := Kind(atomic.AddUint32(&nextKind, 1))
	dynamicNames[k] = name
	dynamicByName[name] = k
	return k
}

func dynamicName(k Kind) (string, bool) {
	dynamicMu.RLock()
	defer dynamicMu.RUnlock()
	name, ok := dynamicNames[k]
	return name, ok
}

func lookupDynamic(name string) (Kind, bool) {
	dynamicMu.RLock()
	defer dynamicMu.RUnlock()
	k, ok := dynamicByName[name]
	return k, ok
}

// Registered returns a copy of all dynamically registered kinds.
func Registered() map[Kind]string {
	dynamicMu.RLock()
	defer dynamicMu.RUnlock()
	result := make(map[Kind]string, len(dynamicNames))
	for k, v := range dynamicNames {
		result[k] = v
	}
	return result
}
