// Package buildinfo describes the platform and the build of the binary
package buildinfo

import (
	"regexp"
	"strings"

	"github.com/shirou/gopsutil/v3/host"
)

var kernelBuildRe = regexp.MustCompile(`^([\d\.]+?\.)(\d+) Build (\d+)$`)

// GetOSVersion returns OS version, kernel and bitness
//
// Either may be "" if the platform can't be read.
func GetOSVersion() (osVersion, osKernel string) {
	if platform, _, version, err := host.PlatformInformation(); err == nil && platform != "" {
		osVersion = platform
		if version != "" {
			osVersion += " " + version
		}
	}
	if version, err := host.KernelVersion(); err == nil && version != "" {
		osKernel = version
		// Windows puts the kernel version in the platform version too
		if strings.Contains(osVersion, osKernel) {
			deduped := strings.TrimSpace(strings.Replace(osVersion, osKernel, "", 1))
			if deduped != "" {
				osVersion = deduped
			}
		}
		osKernel = simplifyKernel(osKernel)
	}
	if arch, err := host.KernelArch(); err == nil && arch != "" {
		osVersion, osKernel = addArch(osVersion, osKernel, arch)
	}
	return osVersion, osKernel
}

// simplifyKernel turns `RELEASE.BUILD Build BUILD` into `RELEASE.BUILD`
func simplifyKernel(kernel string) string {
	match := kernelBuildRe.FindStringSubmatch(kernel)
	if len(match) == 4 && match[2] == match[3] {
		return match[1] + match[2]
	}
	return kernel
}

func addArch(osVersion, osKernel, arch string) (string, string) {
	if strings.HasSuffix(arch, "64") && osVersion != "" {
		osVersion += " (64 bit)"
	}
	if osKernel != "" {
		osKernel += " (" + arch + ")"
	}
	return osVersion, osKernel
}
