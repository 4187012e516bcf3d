package buildinfo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSimplifyKernel(t *testing.T) {
	assert.Equal(t, "10.0.19044", simplifyKernel("10.0.19044 Build 19044"))
	assert.Equal(t, "10.0.19044 Build 1", simplifyKernel("10.0.19044 Build 1"))
	assert.Equal(t, "6.1.0-18-amd64", simplifyKernel("6.1.0-18-amd64"))
}

func TestAddArch(t *testing.T) {
	osVersion, osKernel := addArch("debian 12", "6.1.0", "x86_64")
	assert.Equal(t, "debian 12 (64 bit)", osVersion)
	assert.Equal(t, "6.1.0 (x86_64)", osKernel)

	osVersion, osKernel = addArch("", "", "i386")
	assert.Equal(t, "", osVersion)
	assert.Equal(t, "", osKernel)
}

func TestGetLinkingAndTags(t *testing.T) {
	old := Tags
	defer func() { Tags = old }()

	Tags = nil
	linking, tags := GetLinkingAndTags()
	assert.Equal(t, "static", linking)
	assert.Equal(t, "none", tags)

	Tags = []string{"osusergo", "cgo", "netgo"}
	linking, tags = GetLinkingAndTags()
	assert.Equal(t, "dynamic", linking)
	assert.Equal(t, "netgo osusergo", tags)
}
