// Package manifest loads composed-type declarations from HCL files.
//
// A manifest file may hold function, contract and type blocks:
//
//	function "greet" {
//	  params = [name]
//	  result = "Hello, ${name}!"
//	}
//
//	contract "greet" {
//	  type = string
//	}
//
//	type "Greeter" {
//	  methods    = ["greet"]
//	  properties = ["title"]
//	  conflict   = "fail"
//	}
//
// Functions become the methods of the types that list them; a type that
// lists no methods gets every function in the manifest.
package manifest
