// Package schema is the in-memory model of a group of protobuf files.
//
// Files are built by a parser (see pkg/api/protobuf) or directly by tests
// and are not modified afterwards. Build indexes every declared message,
// enum and service across the group and then resolves each type
// reference using protobuf scoping rules:
//
//	set := schema.Build(files)
//	if set.Failed("user.proto") {
//		for _, err := range set.StructuralErrors("user.proto") {
//			fmt.Println(err)
//		}
//	}
//
// Structural errors cover duplicate names and numbers, field numbers
// outside the legal or implementation-reserved ranges, reserved numbers
// and names, and proto3 enums that do not start at zero.
//
// Resolutions live in the Set, so the same *File can be shared between
// runs and goroutines.
package schema
