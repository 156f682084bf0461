package class

import "github.com/hornetvm/hornet/pkg/jvmerrors"

// ResolveClass resolves a class name through loader, wrapping a load
// failure as NoClassDefFoundError (spec §4.2) rather than surfacing
// whatever the loader itself returned.
func ResolveClass(loader Loader, name string) (*Class, error) {
	c, err := loader.LoadClass(name)
	if err != nil {
		return nil, jvmerrors.Wrap(jvmerrors.NoClassDefFoundError, err, "resolving class %s", name)
	}
	return c, nil
}

// ResolveField searches c and its superclass chain for a field named
// name, per spec §4.2's field resolution order: declared on the class
// itself first, then each superclass in turn.
func ResolveField(c *Class, name string) (*Field, error) {
	for cur := c; cur != nil; cur = cur.Super {
		if f, ok := cur.LookupField(name); ok {
			return f, nil
		}
	}
	return nil, jvmerrors.New(jvmerrors.NoSuchFieldError, "no field %s in %s or its supers", name, c.Name)
}

// ResolveMethod searches c and its superclass chain for a method with
// the given name and descriptor, per spec §4.2's method resolution
// order: declared on the class itself first, then each superclass.
// Interface default methods are out of scope (spec Non-goals).
func ResolveMethod(c *Class, name, descriptor string) (*Method, error) {
	for cur := c; cur != nil; cur = cur.Super {
		if m, ok := cur.LookupMethod(name, descriptor); ok {
			return m, nil
		}
	}
	return nil, jvmerrors.New(jvmerrors.NoSuchMethodError, "no method %s%s in %s or its supers", name, descriptor, c.Name)
}

// ResolveMethodRef resolves a Methodref constant-pool entry on owning:
// it reads the entry's class name and name_and_type, resolves the named
// class through loader, and looks up the method on it (and its supers).
// It returns both the resolved method and the statically-named target
// class, since invokespecial's ACC_SUPER re-lookup needs the latter.
func ResolveMethodRef(owning *Class, loader Loader, cpIndex uint16) (method *Method, target *Class, err error) {
	ref, err := owning.ConstantPool.MethodrefAt(cpIndex)
	if err != nil {
		return nil, nil, err
	}
	target, err = ResolveClass(loader, ref.ClassName)
	if err != nil {
		return nil, nil, err
	}
	method, err = ResolveMethod(target, ref.Name, ref.Descriptor)
	if err != nil {
		return nil, nil, err
	}
	return method, target, nil
}

// ResolveSpecialMethod implements invokespecial's resolution rule (spec
// §4.4): start from an ordinary ResolveMethod lookup against the
// statically-named target class; if the owning class has ACC_SUPER set,
// the resolved target is declared in a superclass of owning, and the
// target is not an initializer, re-resolve starting from owning's
// superclass instead (this is what makes `super.foo()` dispatch dynamically
// even though invokespecial is otherwise a static binding).
func ResolveSpecialMethod(owning, target *Class, name, descriptor string) (*Method, error) {
	resolved, err := ResolveMethod(target, name, descriptor)
	if err != nil {
		return nil, err
	}
	if owning.IsSuper() && owning.Super != nil &&
		resolved.Owning != nil && owning.Super.IsSubclassOf(resolved.Owning) &&
		!resolved.IsInitializer() {
		return ResolveMethod(owning.Super, name, descriptor)
	}
	return resolved, nil
}
