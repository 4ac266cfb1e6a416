// Package composer assembles composed types from heterogeneous elements.
//
// An Engine takes a type name, an ordered list of elements and an Options
// record, and produces a *Type:
//
//	eng := composer.New()
//	greeter, err := eng.Compose("Greeter", []composer.Element{
//		composer.Named{Name: "greet", Fn: func(name string) string { return "Hello, " + name + "!" }},
//		composer.Property{Name: "title"},
//	}, composer.Options{Conflict: behavior.Fail})
//
//	inst, _ := greeter.New()
//	inst.Call("greet", "Alice")
//	v, _ := inst.Result("greet") // "Hello, Alice!"
//
// Every bound method returns the instance it was called on; the callable's
// own result is captured and read back with Instance.Result. Hooks from
// registered Bundles run around assembly and around every call, contracts
// from Options guard arguments and property writes, and declared
// dependencies are resolved from the engine's dependency registry each
// time an instance is created.
//
// Classification: a Go func value is always a standalone callable; any
// other value with a non-empty exported method set is a behavior source
// whose methods are merged one by one; strings are textual callables when
// they start with a function block and property names otherwise.
package composer
