package boxplatform

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeArch(t *testing.T) {
	cases := map[string]string{
		"x86_64":  ArchAMD64,
		"X64":     ArchAMD64,
		"amd64":   ArchAMD64,
		"i686":    Arch386,
		"aarch64": ArchARM64,
		"arm":     ArchARM,
		"riscv64": "riscv64",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeArch(in), "input %q", in)
	}
}

func TestIsUnknownArch(t *testing.T) {
	assert.False(t, IsUnknownArch("amd64"))
	assert.False(t, IsUnknownArch("aarch64"))
	assert.True(t, IsUnknownArch("solaris-sparc"))
	assert.True(t, IsUnknownArch(""))
}
