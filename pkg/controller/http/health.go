package http

import (
	"encoding/json"
	"net/http"
	"os"
	"sort"

	"github.com/m-mizutani/armtoolchain/pkg/domain/model"
	"github.com/m-mizutani/armtoolchain/pkg/domain/types"
	"github.com/m-mizutani/armtoolchain/pkg/utils/logging"
)

// handleHealth reports whether the mirror directory is readable and which archives it offers
func handleHealth(dir string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := logging.From(r.Context())

		status := &model.MirrorStatus{
			Status:   "healthy",
			Service:  "armtoolchain",
			Version:  types.Version,
			Archives: []string{},
		}
		code := http.StatusOK

		entries, err := os.ReadDir(dir)
		if err != nil {
			logger.Warn("Mirror directory is not readable", "dir", dir, "error", err)
			status.Status = "unavailable"
			code = http.StatusServiceUnavailable
		}
		for _, entry := range entries {
			if entry.Type().IsRegular() && model.IsArchive(entry.Name()) {
				status.Archives = append(status.Archives, entry.Name())
			}
		}
		sort.Strings(status.Archives)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		if err := json.NewEncoder(w).Encode(status); err != nil {
			logger.Error("Failed to encode health response", "error", err)
		}
	}
}
