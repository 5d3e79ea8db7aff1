package model

// DefaultChunkCount is the number of chunks a transfer of known size is split into
const DefaultChunkCount = 50

// Progress is a transient snapshot of a running transfer
type Progress struct {
	Name       string
	Downloaded int64
	Expected   int64 // 0 when the server did not declare a length
	Chunks     int
	MaxChunks  int
}

// Ratio returns completion in [0, 1], or -1 when the size is unknown
func (p Progress) Ratio() float64 {
	if p.Expected <= 0 {
		return -1
	}
	r := float64(p.Downloaded) / float64(p.Expected)
	if r > 1 {
		return 1
	}
	return r
}
