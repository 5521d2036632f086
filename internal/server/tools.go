package server

import (
	"github.com/screengrab/snapshot-mcp/internal/schema"
	"github.com/screengrab/snapshot-mcp/internal/snapshot"
)

// Handler executes a tool against already-validated, coerced arguments.
// Argument values carry the Go types produced by the schema coercion table.
type Handler func(args map[string]interface{}) (interface{}, error)

// Tool is one registered tool: its wire-visible descriptor plus the handler
// that executes it.
type Tool struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	InputSchema schema.InputSchema `json:"inputSchema"`

	Handler Handler `json:"-"`
}

// Registry holds the tool set. It is built once at startup and never mutated
// afterwards; sessions share it read-only, so no locking is needed.
type Registry struct {
	tools []Tool
	index map[string]int
}

// NewRegistry builds the registry of snapshot tools over the given service.
func NewRegistry(svc *snapshot.Service) *Registry {
	tools := []Tool{
		{
			Name:        "enum_screen_sources",
			Description: "Enumerate all screen and window sources available on the system and return a list of source descriptors",
			InputSchema: schema.Object(map[string]schema.Property{}),
			Handler:     handleEnumScreenSources(svc),
		},
		{
			Name:        "create_snapshot",
			Description: "Create a snapshot of the screen source with the given ID and return it as an image",
			InputSchema: schema.Object(map[string]schema.Property{
				"source_id": {
					Type:        schema.TypeInteger,
					Description: "ID of the screen source to capture",
				},
				"snapshot_size": {
					Type:        schema.TypeArray,
					Description: "Desired snapshot size as [width, height]",
					Items:       &schema.Property{Type: schema.TypeInteger},
				},
			}, "source_id", "snapshot_size"),
			Handler: handleCreateSnapshot(svc),
		},
		{
			Name:        "save_snapshot",
			Description: "Save a snapshot of the screen source with the given ID to a file",
			InputSchema: schema.Object(map[string]schema.Property{
				"source_id": {
					Type:        schema.TypeInteger,
					Description: "ID of the screen source to capture",
				},
				"snapshot_size": {
					Type:        schema.TypeArray,
					Description: "Desired snapshot size as [width, height]",
					Items:       &schema.Property{Type: schema.TypeInteger},
				},
				"file_path": {
					Type:        schema.TypeString,
					Description: "Path where the image should be saved; parent directories are created as needed",
				},
				"quality": {
					Type:        schema.TypeInteger,
					Description: "Encoding quality for lossy formats (default 80)",
					Default:     snapshot.DefaultSaveQuality,
				},
				"format": {
					Type:        schema.TypeString,
					Description: "Image format to save as (default \"jpeg\")",
					Default:     snapshot.FormatJPEG,
					Enum:        []string{snapshot.FormatJPEG, snapshot.FormatPNG},
				},
			}, "source_id", "snapshot_size", "file_path"),
			Handler: handleSaveSnapshot(svc),
		},
	}

	index := make(map[string]int, len(tools))
	for i, tool := range tools {
		index[tool.Name] = i
	}
	return &Registry{tools: tools, index: index}
}

// Tools returns the registered tools in registration order.
func (r *Registry) Tools() []Tool {
	return r.tools
}

// Lookup finds a tool by name.
func (r *Registry) Lookup(name string) (*Tool, bool) {
	i, ok := r.index[name]
	if !ok {
		return nil, false
	}
	return &r.tools[i], true
}
