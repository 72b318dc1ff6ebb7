// Package strategy selects and runs the build for the current host.
//
// Linux hosts build inside the node-build container so the result links
// against a consistent glibc; every other host runs make natively. Each
// strategy step is a single supervised subprocess, and the first failing
// step stops the build.
//
// The command lines are fixed:
//
//	docker build . -f Dockerfile.build -t node-build
//	docker run -v <workdir>:/node node-build
//	make -j<N> -C out BUILDTYPE=Release
package strategy
