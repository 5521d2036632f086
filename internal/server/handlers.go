package server

import (
	"fmt"

	"github.com/screengrab/snapshot-mcp/internal/capture"
	"github.com/screengrab/snapshot-mcp/internal/snapshot"
)

func handleEnumScreenSources(svc *snapshot.Service) Handler {
	return func(args map[string]interface{}) (interface{}, error) {
		return svc.EnumSources()
	}
}

func handleCreateSnapshot(svc *snapshot.Service) Handler {
	return func(args map[string]interface{}) (interface{}, error) {
		sourceID := args["source_id"].(int)
		size, err := sizeArg(args["snapshot_size"])
		if err != nil {
			return nil, err
		}
		return svc.CreateSnapshot(sourceID, size)
	}
}

func handleSaveSnapshot(svc *snapshot.Service) Handler {
	return func(args map[string]interface{}) (interface{}, error) {
		sourceID := args["source_id"].(int)
		size, err := sizeArg(args["snapshot_size"])
		if err != nil {
			return nil, err
		}
		filePath := args["file_path"].(string)

		quality := snapshot.DefaultSaveQuality
		if q, ok := args["quality"].(int); ok {
			quality = q
		}
		format := snapshot.FormatJPEG
		if f, ok := args["format"].(string); ok {
			format = f
		}

		if err := svc.SaveSnapshot(sourceID, size, filePath, quality, format); err != nil {
			return nil, err
		}
		return map[string]interface{}{"saved": true, "file_path": filePath}, nil
	}
}

// sizeArg converts a coerced snapshot_size argument into a capture.Size.
// The dispatcher guarantees the value is []int; the pair shape is a tool
// contract, checked here before the backend is touched.
func sizeArg(raw interface{}) (capture.Size, error) {
	pair := raw.([]int)
	if len(pair) != 2 {
		return capture.Size{}, fmt.Errorf("%w: snapshot_size must be [width, height], got %d elements",
			capture.ErrInvalidArgument, len(pair))
	}
	return capture.Size{Width: pair[0], Height: pair[1]}, nil
}
