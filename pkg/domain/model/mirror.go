package model

// MirrorStatus is the health report of the local archive mirror
type MirrorStatus struct {
	Status   string   `json:"status"`
	Service  string   `json:"service"`
	Version  string   `json:"version"`
	Archives []string `json:"archives"`
}

// IsArchive reports whether name has an extension the pipeline can extract or produces
func IsArchive(name string) bool {
	return Toolchain(name).Format() != FormatUnknown
}
