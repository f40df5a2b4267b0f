// Package buildinfo exposes build-time version information for respkv.
//
// Values are injected via ldflags:
//
//	go build -ldflags "-X github.com/yndnr/respkv/internal/infra/buildinfo.Version=v1.0.0 \
//	  -X github.com/yndnr/respkv/internal/infra/buildinfo.Commit=abc123"
//
// The information is reported by the INFO command, the version flag of
// both binaries and the respkv_build_info metric. Builds without ldflags
// fall back to the VCS stamp recorded by the go command.
package buildinfo
