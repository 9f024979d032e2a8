// Package cpydist provides the lifecycle command overrides used by the
// connector packages: build_ext, install, install_lib, sdist, bdist,
// bdist_solaris and, unless built with the nowheel tag, bdist_wheel.
//
// Commands shell out to the C/C++ toolchain and to platform packaging tools;
// commands that do so implement ToolChecker and fail fast when a tool is missing.
//
//	registry := setup.NewCommandRegistry(cpydist.Required()...)
//	registry.RegisterOptional(setup.CmdBdistWheel, cpydist.Lookup)
package cpydist
