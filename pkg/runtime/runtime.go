// Package runtime is the embedder-facing entry point: a JVM value wraps
// a class registry and a thread, and exposes RegisterClass/Invoke/
// CurrentThread/ThrowException the way a host program drives the core
// without reaching into pkg/class, pkg/translator, or pkg/interp
// directly. Grounded on daimatz-gojvm/pkg/vm/vm.go's VM struct
// (ClassLoader, staticFields, initializedClasses fields) and
// cmd/gojvm/main.go's wiring order, generalized into a reusable type
// instead of a single main-only flow.
package runtime

import (
	"log/slog"
	"sync"

	"github.com/hornetvm/hornet/pkg/class"
	"github.com/hornetvm/hornet/pkg/interp"
	"github.com/hornetvm/hornet/pkg/jvmerrors"
)

// defaultBlockSize is the allocator block size used by the thread a JVM
// creates for itself, chosen generously enough that ordinary test and
// example programs never swap blocks.
const defaultBlockSize = 1 << 16

// registryKey pairs a loader with a class name: spec §5 requires
// registration to be idempotent per (loader, name), not per name alone,
// since two loaders may define classes of the same name independently.
type registryKey struct {
	loader class.Loader
	name   string
}

// JVM is the embedder's handle on one running core instance: one class
// registry guarded by a single mutex (spec §5), and one thread (this
// embedder only models a single thread of execution; a multi-threaded
// embedding would keep one JVM per OS thread or extend CurrentThread to
// consult goroutine-local state).
type JVM struct {
	mu       sync.Mutex
	registry map[registryKey]*class.Class
	log      *slog.Logger
	thread   *interp.Thread
}

// New creates a JVM. A nil logger falls back to slog.Default().
func New(log *slog.Logger) *JVM {
	if log == nil {
		log = slog.Default()
	}
	return &JVM{
		registry: make(map[registryKey]*class.Class),
		log:      log,
		thread:   interp.NewThread(defaultBlockSize),
	}
}

// CurrentThread returns the thread allocations and invocations run on.
func (j *JVM) CurrentThread() *interp.Thread {
	return j.thread
}

// RegisterClass records c as the definition of name under loader,
// idempotently: a second registration of the same (loader, name) pair
// is a no-op that returns the first class registered, never replacing
// it — mirroring a real JVM's "a class is defined by a loader exactly
// once" rule.
func (j *JVM) RegisterClass(loader class.Loader, name string, c *class.Class) *class.Class {
	j.mu.Lock()
	defer j.mu.Unlock()

	key := registryKey{loader, name}
	if existing, ok := j.registry[key]; ok {
		j.log.Debug("class already registered, ignoring duplicate", "class", name)
		return existing
	}
	j.registry[key] = c
	j.log.Info("registered class", "class", name)
	return c
}

// LoadAndRegister resolves name through loader, registering the result
// (or returning the already-registered class for this (loader, name)
// pair without touching the loader again).
func (j *JVM) LoadAndRegister(loader class.Loader, name string) (*class.Class, error) {
	j.mu.Lock()
	if existing, ok := j.registry[registryKey{loader, name}]; ok {
		j.mu.Unlock()
		return existing, nil
	}
	j.mu.Unlock()

	c, err := loader.LoadClass(name)
	if err != nil {
		j.log.Warn("class load failed", "class", name, "error", err)
		return nil, jvmerrors.Wrap(jvmerrors.NoClassDefFoundError, err, "loading class %s", name)
	}
	return j.RegisterClass(loader, name, c), nil
}

// Invoke resolves className.methodName+descriptor through loader and
// runs it with no arguments, the calling convention spec §4.5 describes
// (Open Question (c)): frame allocation, zero args, run to return or
// exception. It does not check that the method is static or nullary: a
// method that declares parameters runs with those locals zeroed.
// Widening this to take arguments only requires replacing the nil args
// passed to interp.Invoke here, not restructuring the frame or translator.
func (j *JVM) Invoke(loader class.Loader, className, methodName, descriptor string) (interp.Value, bool, error) {
	c, err := j.LoadAndRegister(loader, className)
	if err != nil {
		return interp.Value{}, false, err
	}
	method, err := class.ResolveMethod(c, methodName, descriptor)
	if err != nil {
		return interp.Value{}, false, err
	}
	j.log.Info("invoking", "class", className, "method", methodName, "descriptor", descriptor)
	return interp.Invoke(j.thread, loader, method, nil)
}

// ThrowException constructs a typed error of kind describing a runtime
// exception, the embedder-facing equivalent of a real JVM's throw: this
// core has no user-visible exception objects, only the fixed Kind
// enumeration from spec §7, so raising one is just building the error
// the caller returns or propagates.
func (j *JVM) ThrowException(kind jvmerrors.Kind, format string, args ...any) error {
	return jvmerrors.New(kind, format, args...)
}
